package attention

import (
	"math"
	"math/rand"
	"sync"
)

// Defaults for the estimator heuristic.
const (
	DefaultExponent        = 3.0
	DefaultSmoothingFactor = 0.15
	DefaultNoiseScale      = 0.02

	// centerScale weighs the two distance-from-center classes against the
	// four corner classes before normalization.
	centerScale = 0.5
)

// Estimator converts a 2-D input position into a six-class attention
// distribution. It keeps two versions: a target distribution recomputed on
// every observation and a display distribution exponentially smoothed toward
// it on a periodic step.
type Estimator struct {
	mu       sync.Mutex
	target   Distribution
	display  Distribution
	exponent float64
	factor   float64
	noise    float64
	rand     func() float64 // symmetric sampler in [-1, 1]
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithExponent overrides the corner-proximity exponent.
func WithExponent(e float64) Option {
	return func(est *Estimator) { est.exponent = e }
}

// WithSmoothing overrides the smoothing factor and noise scale.
func WithSmoothing(factor, noiseScale float64) Option {
	return func(est *Estimator) {
		est.factor = factor
		est.noise = noiseScale
	}
}

// WithRand injects the noise sampler. The sampler must return values in
// [-1, 1]. Tests inject a deterministic source.
func WithRand(fn func() float64) Option {
	return func(est *Estimator) { est.rand = fn }
}

// NewEstimator creates an estimator with default parameters. Until the
// first observation both distributions are uniform, so the engagement
// scalar degrades to a neutral value rather than failing.
func NewEstimator(opts ...Option) *Estimator {
	est := &Estimator{
		target:   Uniform(),
		display:  Uniform(),
		exponent: DefaultExponent,
		factor:   DefaultSmoothingFactor,
		noise:    DefaultNoiseScale,
		rand:     func() float64 { return rand.Float64()*2 - 1 },
	}
	for _, opt := range opts {
		opt(est)
	}
	return est
}

// Observe recomputes the target distribution from a pointer position and
// the current viewport extents. Out-of-capability input (non-positive
// extents) leaves the target at the uniform fallback.
func (e *Estimator) Observe(x, y, width, height float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if width <= 0 || height <= 0 {
		e.target = Uniform()
		return
	}
	e.target = Target(x, y, width, height, e.exponent)
}

// Step advances the display distribution one smoothing tick toward the
// target and returns the result.
func (e *Estimator) Step() Distribution {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.display = Smooth(e.display, e.target, e.factor, e.noise, e.rand)
	return e.display
}

// Display returns the current smoothed distribution.
func (e *Estimator) Display() Distribution {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.display
}

// Engagement returns the [0, 1] engagement scalar for the current display
// distribution.
func (e *Estimator) Engagement() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Engagement(e.display)
}

// Target computes the raw class distribution for a position within the
// viewport. The four corners map to ActivelyLooking, Confused, Distracted
// and Drowsy via inverted normalized corner distance raised to the given
// exponent; TalkingToPeers and Bored come from horizontal and vertical
// distance from center. The result is normalized to sum to 1.
func Target(x, y, width, height, exponent float64) Distribution {
	maxDiag := math.Hypot(width, height)
	if maxDiag <= 0 {
		return Uniform()
	}

	corner := func(cx, cy float64) float64 {
		proximity := 1 - math.Hypot(x-cx, y-cy)/maxDiag
		if proximity < 0 {
			proximity = 0
		}
		return math.Pow(proximity, exponent)
	}

	var d Distribution
	d[ActivelyLooking] = corner(0, 0)
	d[Confused] = corner(width, 0)
	d[Distracted] = corner(0, height)
	d[Drowsy] = corner(width, height)
	d[TalkingToPeers] = centerScale * math.Abs(x-width/2) / (width / 2)
	d[Bored] = centerScale * math.Abs(y-height/2) / (height / 2)

	return d.Normalize()
}
