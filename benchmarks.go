package goevo

import "math"

// Benchmark fitness functions (spec's "concrete fitness functions" are an
// external collaborator, but a handful of textbook ones ship here for
// examples and tests). All benchmarks follow the maximize convention: each
// is the negation of the textbook minimization form, so an engine
// configured to maximize fitness still finds the textbook optimum.

// SphereMax is -sum(x_i^2); optimum is 0 at the origin.
func SphereMax(x Chromosome) ([]float64, error) {
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}
	return []float64{-sum}, nil
}

// RastriginMax is -[10n + sum(x_i^2 - 10cos(2*pi*x_i))]; optimum is 0 at
// the origin.
func RastriginMax(x Chromosome) ([]float64, error) {
	const a = 10.0
	n := float64(len(x))
	sum := 0.0
	for _, v := range x {
		sum += v*v - a*math.Cos(2*math.Pi*v)
	}
	return []float64{-(n*a + sum)}, nil
}

// AckleyMax is the negated Ackley function; optimum is 0 at the origin.
func AckleyMax(x Chromosome) ([]float64, error) {
	n := float64(len(x))
	sum1, sum2 := 0.0, 0.0
	for _, v := range x {
		sum1 += v * v
		sum2 += math.Cos(2 * math.Pi * v)
	}
	val := -20*math.Exp(-0.2*math.Sqrt(sum1/n)) - math.Exp(sum2/n) + 20 + math.E
	return []float64{-val}, nil
}

// OneMax counts the number of 1-bits in a binary chromosome; optimum is
// len(x) when every bit is 1.
func OneMax(x Chromosome) ([]float64, error) {
	count := 0.0
	for _, g := range x {
		if g != 0 {
			count++
		}
	}
	return []float64{count}, nil
}

// ZDT1Surrogate is a two-objective real-encoded benchmark, negated from
// Zitzler-Deb-Thiele's first test function so both objectives are
// maximized: f1 = -x[0], f2 = -g*(1 - sqrt(x[0]/g)) where
// g = 1 + 9/(n-1) * sum(x[1:]). The true Pareto front is g == 1, i.e.
// every gene but the first at 0.
func ZDT1Surrogate(x Chromosome) ([]float64, error) {
	if len(x) < 2 {
		return nil, newOperatorError("ZDT1Surrogate", "requires at least 2 genes")
	}
	f1 := x[0]
	sum := 0.0
	for _, v := range x[1:] {
		sum += v
	}
	g := 1 + 9*sum/float64(len(x)-1)
	ratio := f1 / g
	if ratio < 0 {
		ratio = 0
	}
	f2 := g * (1 - math.Sqrt(ratio))
	return []float64{-f1, -f2}, nil
}
