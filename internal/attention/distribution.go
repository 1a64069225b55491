// Package attention estimates an engagement distribution from a 2-D input
// position. The corner-proximity heuristic is a deterministic stand-in for
// an external perceptual classifier; it is bounded and reproducible, which
// is what makes it testable, but it does not model genuine attention.
package attention

// Class labels the six fixed attention states.
type Class int

const (
	ActivelyLooking Class = iota
	Confused
	TalkingToPeers
	Distracted
	Bored
	Drowsy

	NumClasses = 6
)

// String returns the class label.
func (c Class) String() string {
	switch c {
	case ActivelyLooking:
		return "actively_looking"
	case Confused:
		return "confused"
	case TalkingToPeers:
		return "talking_to_peers"
	case Distracted:
		return "distracted"
	case Bored:
		return "bored"
	case Drowsy:
		return "drowsy"
	default:
		return "unknown"
	}
}

// Distribution holds one probability per class. A valid distribution has
// every component in [0, 1] and components summing to 1.
type Distribution [NumClasses]float64

// engagementWeights scale each class's contribution to the engagement
// scalar, from fully engaged (1.0) down to drowsy (0.1).
var engagementWeights = Distribution{1.0, 0.6, 0.4, 0.3, 0.2, 0.1}

// Uniform returns the fallback distribution used when no input signal is
// available: every class equally likely.
func Uniform() Distribution {
	var d Distribution
	for i := range d {
		d[i] = 1.0 / NumClasses
	}
	return d
}

// Sum returns the total probability mass.
func (d Distribution) Sum() float64 {
	total := 0.0
	for _, v := range d {
		total += v
	}
	return total
}

// Normalize clamps negative components to zero and rescales the result to
// sum to 1. A distribution with no mass normalizes to Uniform.
func (d Distribution) Normalize() Distribution {
	var out Distribution
	total := 0.0
	for i, v := range d {
		if v < 0 {
			v = 0
		}
		out[i] = v
		total += v
	}
	if total <= 0 {
		return Uniform()
	}
	for i := range out {
		out[i] /= total
	}
	return out
}

// Engagement collapses the distribution into a single [0, 1] scalar using
// the fixed per-class weights.
func Engagement(d Distribution) float64 {
	total := 0.0
	for i, p := range d {
		total += p * engagementWeights[i]
	}
	if total < 0 {
		return 0
	}
	if total > 1 {
		return 1
	}
	return total
}

// Smooth moves prev toward target by the given factor, perturbing each
// component with small symmetric noise, then renormalizes. It is a pure
// function of its inputs: noise is an injected sampler returning values in
// [-1, 1] so smoothing is reproducible in tests.
func Smooth(prev, target Distribution, factor, noiseScale float64, noise func() float64) Distribution {
	var out Distribution
	for i := range out {
		out[i] = prev[i] + factor*(target[i]-prev[i])
		if noise != nil && noiseScale > 0 {
			out[i] += noise() * noiseScale
		}
	}
	return out.Normalize()
}
