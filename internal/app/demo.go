package app

import (
	"context"
	"math/rand"
	"time"

	"github.com/blackwell-systems/flowwatch/internal/attention"
	"github.com/blackwell-systems/flowwatch/internal/clock"
	"github.com/blackwell-systems/flowwatch/internal/config"
	"github.com/blackwell-systems/flowwatch/internal/session"
	sig "github.com/blackwell-systems/flowwatch/internal/signal"
)

// demoKeys is the key population for the synthetic stream. Backspace appears
// often enough to exercise the error-rate ladder rules.
var demoKeys = []string{"a", "s", "d", "f", "j", "k", "l", " ", "e", "t", "Backspace"}

// runDemoSource feeds a synthetic interaction stream into the engine:
// typing bursts with jittered cadence, a drifting pointer, and occasional
// tab switches. Useful for demos and for eyeballing the scorer without a
// real event source.
func runDemoSource(ctx context.Context, clk clock.Clock, mgr *session.Manager, est *attention.Estimator, att config.Attention) error {
	rng := rand.New(rand.NewSource(clk.Now().UnixNano()))

	x := att.ViewportWidth / 2
	y := att.ViewportHeight / 2

	ticker := clk.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	typing := true
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C():
			// Alternate typing bursts and pauses.
			if rng.Float64() < 0.02 {
				typing = !typing
			}

			if typing && rng.Float64() < 0.7 {
				mgr.Record(sig.Event{
					Kind: sig.KeyDown,
					Key:  demoKeys[rng.Intn(len(demoKeys))],
					Time: now,
				})
			}

			if rng.Float64() < 0.4 {
				x += (rng.Float64() - 0.5) * 60
				y += (rng.Float64() - 0.5) * 40
				x = clampRange(x, 0, att.ViewportWidth)
				y = clampRange(y, 0, att.ViewportHeight)
				mgr.Record(sig.Event{Kind: sig.PointerMove, X: x, Y: y, Time: now})
				if est != nil {
					est.Observe(x, y, att.ViewportWidth, att.ViewportHeight)
				}
			}

			if rng.Float64() < 0.005 {
				mgr.Record(sig.Event{Kind: sig.WindowBlur, Time: now})
			}
		}
	}
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
