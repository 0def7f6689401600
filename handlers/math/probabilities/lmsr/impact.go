package lmsr

import "math"

// Probabilities are clamped into [MinProbability, MaxProbability] before
// the log-odds transform so the transform never sees 0 or 1. Out-of-range
// inputs are corrected silently rather than rejected; transient glitches
// in a price feed must not break chart rendering.
const (
	MinProbability = 0.01
	MaxProbability = 0.99
)

// Defaults for the sampled impact curve.
const (
	DefaultCurveSteps  = 50
	DefaultCurveWindow = 0.40
)

// DefaultImpactScale is the display calibration applied to move costs.
// It has no financial derivation; it exists so chart magnitudes look
// plausible next to realistic market volumes. Override it per Pricer
// when calibration changes.
const DefaultImpactScale = 0.42

// CurvePoint is one sample of the impact curve: the dollar cost of
// moving the market from its current probability to TargetProb.
type CurvePoint struct {
	TargetProb float64 `json:"targetProb"`
	Cost       float64 `json:"cost"`
}

// CurveOptions tunes MoveCostCurve sampling. Zero values select the
// defaults.
type CurveOptions struct {
	// Window is the total probability span sampled around the current
	// probability.
	Window float64
	// Steps is the number of samples returned.
	Steps int
}

// Pricer computes display move costs. It is stateless; a zero-value
// Pricer is unusable, construct with NewPricer.
//
// The move cost is a simplified approximation of the exact LMSR cost
// function: cost = scale * |b * (logit(pTo) - logit(pFrom))|. It tracks
// the shape of the exact C(q) delta well enough for impact charts and
// "cost to move" figures, but it is NOT settlement-grade pricing; trade
// execution goes through MarketMaker.
type Pricer struct {
	scale float64
}

// NewPricer returns a Pricer with the given display calibration scale.
// Non-positive scales fall back to DefaultImpactScale.
func NewPricer(scale float64) Pricer {
	if scale <= 0 {
		scale = DefaultImpactScale
	}
	return Pricer{scale: scale}
}

// Scale returns the calibration factor applied to move costs.
func (p Pricer) Scale() float64 {
	return p.scale
}

// ClampProbability normalizes a probability into the safe sub-interval
// [MinProbability, MaxProbability]. The engine owns this step; callers
// pass raw values and never pre-clamp.
func ClampProbability(p float64) float64 {
	if math.IsNaN(p) {
		return MinProbability
	}
	return math.Min(MaxProbability, math.Max(MinProbability, p))
}

// logOdds is the logit transform ln(p / (1-p)), defined on (0, 1).
func logOdds(p float64) float64 {
	return math.Log(p / (1 - p))
}

// MoveCost returns the dollar cost of moving the market probability
// from pFrom to pTo at liquidity b.
//
// Both probabilities are clamped before the transform, so the result is
// finite for any real input. The cost is symmetric in direction, zero
// for a no-op move, and grows as b shrinks. A non-positive b returns an
// *InvalidParameterError.
func (p Pricer) MoveCost(pFrom, pTo, b float64) (float64, error) {
	if b <= 0 || math.IsNaN(b) {
		return 0, &InvalidParameterError{Param: "liquidity", Value: b}
	}
	from := ClampProbability(pFrom)
	to := ClampProbability(pTo)
	return p.scale * math.Abs(b*(logOdds(to)-logOdds(from))), nil
}

// MoveCostCurve samples the impact curve around pCurrent: evenly spaced
// target probabilities across a window centered on pCurrent, each paired
// with its MoveCost. Points come back in ascending target order, so the
// costs form a V with minimum zero at the sample nearest pCurrent.
//
// The window is clipped to the clamped probability range; near a bound
// the curve is therefore asymmetric around pCurrent. Output length is
// exactly the requested step count and the first and last points sit on
// the window edges.
func (p Pricer) MoveCostCurve(pCurrent, b float64, opts CurveOptions) ([]CurvePoint, error) {
	if b <= 0 || math.IsNaN(b) {
		return nil, &InvalidParameterError{Param: "liquidity", Value: b}
	}

	window := opts.Window
	if window <= 0 || window > 1 {
		window = DefaultCurveWindow
	}
	steps := opts.Steps
	if steps < 2 {
		steps = DefaultCurveSteps
	}

	current := ClampProbability(pCurrent)
	lo := ClampProbability(current - window/2)
	hi := ClampProbability(current + window/2)

	points := make([]CurvePoint, steps)
	span := hi - lo
	for i := 0; i < steps; i++ {
		target := lo + span*float64(i)/float64(steps-1)
		cost, err := p.MoveCost(current, target, b)
		if err != nil {
			return nil, err
		}
		points[i] = CurvePoint{TargetProb: target, Cost: cost}
	}
	return points, nil
}

// MoveCost computes a single move cost with the default calibration.
func MoveCost(pFrom, pTo, b float64) (float64, error) {
	return NewPricer(DefaultImpactScale).MoveCost(pFrom, pTo, b)
}

// MoveCostCurve samples the default-calibration impact curve with
// default window and step count.
func MoveCostCurve(pCurrent, b float64) ([]CurvePoint, error) {
	return NewPricer(DefaultImpactScale).MoveCostCurve(pCurrent, b, CurveOptions{})
}
