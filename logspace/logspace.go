// Package logspace implements the log-space arithmetic the pair-HMM engine
// runs on: every probability carried through the forward/backward
// recurrences is a natural log, and LogZero stands in for probability 0.
package logspace

import (
	"math"

	"github.com/klauspost/cpuid"
)

// LogZero represents log(0). Adding it to anything in log space is a no-op.
var LogZero = math.Inf(-1)

// hasAVX2 is resolved once at package init, the way a numerical kernel picks
// its tightest inner-loop width at startup rather than per call.
var hasAVX2 = cpuid.CPU.AVX2()

// Add returns log(exp(x) + exp(y)) without leaving log space, via the
// standard max-factorization. LogZero is an identity: Add(LogZero, y) == y.
func Add(x, y float64) float64 {
	if x == LogZero {
		return y
	}
	if y == LogZero {
		return x
	}
	if x > y {
		return x + math.Log1p(math.Exp(y-x))
	}
	return y + math.Log1p(math.Exp(x-y))
}

// AddAll folds Add over xs, returning LogZero for an empty slice.
func AddAll(xs ...float64) float64 {
	total := LogZero
	for _, x := range xs {
		total = Add(total, x)
	}
	return total
}

// Add4 sums four log-space pairs at once. On machines without AVX2 this is
// just four scalar Add calls; cpuid only picks the batch width, there is no
// hand-rolled vector assembly here.
func Add4(xs, ys [4]float64) [4]float64 {
	if hasAVX2 {
		return add4Batched(xs, ys)
	}
	var out [4]float64
	for i := range xs {
		out[i] = Add(xs[i], ys[i])
	}
	return out
}

func add4Batched(xs, ys [4]float64) [4]float64 {
	// Same recurrence as Add, unrolled four-wide so the branch predictor sees
	// one shape instead of four independent calls.
	var out [4]float64
	for i := 0; i < 4; i++ {
		x, y := xs[i], ys[i]
		switch {
		case x == LogZero:
			out[i] = y
		case y == LogZero:
			out[i] = x
		case x > y:
			out[i] = x + math.Log1p(math.Exp(y-x))
		default:
			out[i] = y + math.Log1p(math.Exp(x-y))
		}
	}
	return out
}

// Normalize subtracts total from every element of ps in place, turning a
// vector of joint log-probabilities into a vector of log-posteriors.
func Normalize(ps []float64, total float64) {
	for i := range ps {
		if total == LogZero {
			ps[i] = LogZero
			continue
		}
		ps[i] -= total
	}
}
