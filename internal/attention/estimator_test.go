package attention

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func assertValidDistribution(t *testing.T, d Distribution) {
	t.Helper()
	if math.Abs(d.Sum()-1) > 1e-6 {
		t.Errorf("distribution sums to %v, want 1", d.Sum())
	}
	for i, p := range d {
		if p < 0 || p > 1 {
			t.Errorf("component %s = %v out of [0,1]", Class(i), p)
		}
	}
}

func TestUniform(t *testing.T) {
	d := Uniform()
	assertValidDistribution(t, d)
	for i, p := range d {
		if math.Abs(p-1.0/6) > epsilon {
			t.Errorf("component %s = %v, want 1/6", Class(i), p)
		}
	}
}

func TestTarget_Valid(t *testing.T) {
	positions := [][2]float64{
		{0, 0}, {1920, 0}, {0, 1080}, {1920, 1080},
		{960, 540}, {500, 300}, {1919, 1},
	}
	for _, pos := range positions {
		d := Target(pos[0], pos[1], 1920, 1080, DefaultExponent)
		assertValidDistribution(t, d)
	}
}

// distanceFromUniform is the L1 distance to the uniform distribution.
func distanceFromUniform(d Distribution) float64 {
	total := 0.0
	for _, p := range d {
		total += math.Abs(p - 1.0/6)
	}
	return total
}

func TestTarget_CenterCloserToUniformThanCorner(t *testing.T) {
	center := Target(960, 540, 1920, 1080, DefaultExponent)
	corner := Target(0, 0, 1920, 1080, DefaultExponent)

	// At the center all four corner scores are equal and low.
	for _, pair := range [][2]Class{
		{ActivelyLooking, Confused},
		{Confused, Distracted},
		{Distracted, Drowsy},
	} {
		if math.Abs(center[pair[0]]-center[pair[1]]) > epsilon {
			t.Errorf("center corner scores differ: %s=%v %s=%v",
				pair[0], center[pair[0]], pair[1], center[pair[1]])
		}
	}

	if distanceFromUniform(center) >= distanceFromUniform(corner) {
		t.Errorf("center input should be closer to uniform: center %v, corner %v",
			distanceFromUniform(center), distanceFromUniform(corner))
	}

	// A corner input is dominated by that corner's class.
	for i, p := range corner {
		if Class(i) != ActivelyLooking && p >= corner[ActivelyLooking] {
			t.Errorf("top-left input should be dominated by actively_looking, got %v", corner)
			break
		}
	}
	if corner[ActivelyLooking] < 0.4 {
		t.Errorf("actively_looking weight too low for corner input: %v", corner[ActivelyLooking])
	}
}

func TestTarget_DegenerateViewport(t *testing.T) {
	d := Target(10, 10, 0, 0, DefaultExponent)
	assertValidDistribution(t, d)
	if math.Abs(d[0]-1.0/6) > epsilon {
		t.Errorf("degenerate viewport should fall back to uniform, got %v", d)
	}
}

func TestSmooth_ConvergesWithoutNoise(t *testing.T) {
	target := Target(0, 0, 1920, 1080, DefaultExponent)
	d := Uniform()

	for i := 0; i < 200; i++ {
		d = Smooth(d, target, 0.15, 0, nil)
		assertValidDistribution(t, d)
	}

	for i := range d {
		if math.Abs(d[i]-target[i]) > 1e-3 {
			t.Errorf("component %s = %v did not converge to target %v", Class(i), d[i], target[i])
		}
	}
}

func TestSmooth_DeterministicWithInjectedNoise(t *testing.T) {
	target := Target(500, 300, 1920, 1080, DefaultExponent)

	// The same noise sequence must produce the same result.
	mk := func() func() float64 {
		vals := []float64{0.5, -0.3, 0.1, -0.9, 0.7, 0.2}
		i := 0
		return func() float64 {
			v := vals[i%len(vals)]
			i++
			return v
		}
	}

	a := Smooth(Uniform(), target, 0.15, 0.02, mk())
	b := Smooth(Uniform(), target, 0.15, 0.02, mk())
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("smoothing is not reproducible: %v vs %v", a, b)
		}
	}
	assertValidDistribution(t, a)
}

func TestEngagement_Bounds(t *testing.T) {
	var focused Distribution
	focused[ActivelyLooking] = 1
	if got := Engagement(focused); math.Abs(got-1.0) > epsilon {
		t.Errorf("fully focused engagement = %v, want 1", got)
	}

	var drowsy Distribution
	drowsy[Drowsy] = 1
	if got := Engagement(drowsy); math.Abs(got-0.1) > epsilon {
		t.Errorf("fully drowsy engagement = %v, want 0.1", got)
	}

	// Uniform fallback degrades to a neutral mid value.
	neutral := Engagement(Uniform())
	if neutral < 0.3 || neutral > 0.7 {
		t.Errorf("uniform engagement = %v, want a neutral mid value", neutral)
	}
}

func TestEstimator_Lifecycle(t *testing.T) {
	est := NewEstimator(
		WithRand(func() float64 { return 0 }),
	)

	// No observation yet: uniform display, neutral engagement.
	assertValidDistribution(t, est.Display())
	if e := est.Engagement(); e < 0.3 || e > 0.7 {
		t.Errorf("engagement before any observation = %v, want neutral", e)
	}

	est.Observe(0, 0, 1920, 1080)
	var last Distribution
	for i := 0; i < 100; i++ {
		last = est.Step()
	}
	assertValidDistribution(t, last)

	if last[ActivelyLooking] < 0.4 {
		t.Errorf("display should have moved toward the corner target, got %v", last)
	}
	if e := est.Engagement(); e <= 0.5 {
		t.Errorf("engagement should rise with a focused target, got %v", e)
	}
}

func TestEstimator_MissingCapabilityFallsBackToUniform(t *testing.T) {
	est := NewEstimator(WithRand(func() float64 { return 0 }))
	est.Observe(100, 100, 0, 0)

	for i := 0; i < 50; i++ {
		est.Step()
	}
	d := est.Display()
	for i, p := range d {
		if math.Abs(p-1.0/6) > 1e-3 {
			t.Errorf("component %s = %v, want ~1/6 after fallback", Class(i), p)
		}
	}
}
