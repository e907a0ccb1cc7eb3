package muxer

import "math"

// minTempoFactor and maxTempoFactor bound each atempo filter stage,
// ffmpeg's own supported range for a single atempo invocation (spec §4.6
// step 2: "each factor ∈ [0.5, 2.0]").
const (
	minTempoFactor = 0.5
	maxTempoFactor = 2.0
	tempoTolerance = 1e-4
)

// BuildAtempoChain decomposes ratio into a sequence of factors, each within
// [minTempoFactor, maxTempoFactor], whose product equals ratio. ffmpeg's
// atempo filter rejects factors outside that range, so achieving an
// arbitrary ratio requires chaining multiple stages.
func BuildAtempoChain(ratio float64) []float64 {
	if ratio <= 0 {
		return nil
	}

	var factors []float64
	remaining := ratio

	for remaining > maxTempoFactor {
		factors = append(factors, maxTempoFactor)
		remaining /= maxTempoFactor
	}
	for remaining < minTempoFactor {
		factors = append(factors, minTempoFactor)
		remaining /= minTempoFactor
	}
	factors = append(factors, remaining)

	return factors
}

// ChainProduct multiplies the factors back together, used to verify
// BuildAtempoChain's output against the requested ratio.
func ChainProduct(factors []float64) float64 {
	p := 1.0
	for _, f := range factors {
		p *= f
	}
	return p
}

// withinTolerance reports whether a and b differ by no more than
// tempoTolerance, spec §8's "product equals r ± 1e-4".
func withinTolerance(a, b float64) bool {
	return math.Abs(a-b) <= tempoTolerance
}
