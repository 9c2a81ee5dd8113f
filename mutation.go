package goevo

import "math"

// Mutation perturbs a single candidate in place with per-gene probability
// Pm (spec §4.E.4). The engine clears Evaluated iff the chromosome
// actually changed; Mutate implementations only need to write the new
// chromosome, MutateCandidate (below) takes care of the flag.
type Mutation interface {
	Mutate(chromosome Chromosome, rng *Source)
}

// MutateCandidate applies m to candidate.Chromosome in place and clears
// Evaluated iff the chromosome's bits actually changed, per spec §3's
// invariant ("a candidate mutated by any operator has evaluated cleared
// iff its chromosome actually changed").
func MutateCandidate(m Mutation, candidate *Candidate, rng *Source) {
	before := candidate.Chromosome.Clone()
	m.Mutate(candidate.Chromosome, rng)
	if !candidate.Chromosome.Equal(before) {
		candidate.Evaluated = false
	}
}

// --- binary ---

// BitFlipMutation flips each bit independently with probability Pm.
type BitFlipMutation struct{ Pm float64 }

func (m BitFlipMutation) Mutate(chromosome Chromosome, rng *Source) {
	for i := range chromosome {
		if rng.Bernoulli(m.Pm) {
			chromosome[i] = 1 - chromosome[i]
		}
	}
}

// --- integer ---

// IntegerSwapMutation swaps two loci independently with probability Pm
// (evaluated once per candidate, not per gene).
type IntegerSwapMutation struct{ Pm float64 }

func (m IntegerSwapMutation) Mutate(chromosome Chromosome, rng *Source) {
	if !rng.Bernoulli(m.Pm) || len(chromosome) < 2 {
		return
	}
	i, j := rng.UniformInt(0, len(chromosome)-1), rng.UniformInt(0, len(chromosome)-1)
	chromosome[i], chromosome[j] = chromosome[j], chromosome[i]
}

// IntegerInversionMutation reverses a random segment with probability Pm.
type IntegerInversionMutation struct{ Pm float64 }

func (m IntegerInversionMutation) Mutate(chromosome Chromosome, rng *Source) {
	if !rng.Bernoulli(m.Pm) || len(chromosome) < 2 {
		return
	}
	i, j := rng.UniformInt(0, len(chromosome)-1), rng.UniformInt(0, len(chromosome)-1)
	if i > j {
		i, j = j, i
	}
	for i < j {
		chromosome[i], chromosome[j] = chromosome[j], chromosome[i]
		i++
		j--
	}
}

// IntegerRandomReplaceMutation replaces each gene independently with
// probability Pm by a fresh uniform draw in [0, Base).
type IntegerRandomReplaceMutation struct {
	Pm   float64
	Base int
}

func (m IntegerRandomReplaceMutation) Mutate(chromosome Chromosome, rng *Source) {
	for i := range chromosome {
		if rng.Bernoulli(m.Pm) {
			chromosome[i] = float64(rng.UniformInt(0, m.Base-1))
		}
	}
}

// --- real ---

// RealRandomMutation replaces each gene independently with probability Pm
// by a fresh uniform draw within its bounds.
type RealRandomMutation struct {
	Pm       float64
	Encoding RealEncoding
}

func (m RealRandomMutation) Mutate(chromosome Chromosome, rng *Source) {
	for i := range chromosome {
		if rng.Bernoulli(m.Pm) {
			b := m.Encoding.Bounds[i]
			chromosome[i] = rng.UniformFloat(b.Low, b.High)
		}
	}
}

// RealBoundaryMutation replaces each gene independently with probability
// Pm by one of its two bounds, chosen with equal probability.
type RealBoundaryMutation struct {
	Pm       float64
	Encoding RealEncoding
}

func (m RealBoundaryMutation) Mutate(chromosome Chromosome, rng *Source) {
	for i := range chromosome {
		if rng.Bernoulli(m.Pm) {
			b := m.Encoding.Bounds[i]
			if rng.Bernoulli(0.5) {
				chromosome[i] = b.Low
			} else {
				chromosome[i] = b.High
			}
		}
	}
}

// RealNonUniformMutation perturbs each selected gene by a magnitude that
// shrinks as generation approaches MaxGen, per
// scale *= (1 - g/MaxGen)^B.
type RealNonUniformMutation struct {
	Pm, B    float64
	Encoding RealEncoding

	Generation, MaxGen int
}

func (m RealNonUniformMutation) Mutate(chromosome Chromosome, rng *Source) {
	shrink := math.Pow(1-float64(m.Generation)/float64(m.MaxGen), m.B)
	for i := range chromosome {
		if !rng.Bernoulli(m.Pm) {
			continue
		}
		b := m.Encoding.Bounds[i]
		var delta float64
		if rng.Bernoulli(0.5) {
			delta = (b.High - chromosome[i]) * rng.Float64() * shrink
		} else {
			delta = -(chromosome[i] - b.Low) * rng.Float64() * shrink
		}
		chromosome[i] += delta
	}
	m.Encoding.Repair(chromosome)
}

// RealPolynomialMutation perturbs each selected gene using the polynomial
// mutation distribution with distribution index Eta.
type RealPolynomialMutation struct {
	Pm, Eta  float64
	Encoding RealEncoding
}

func (m RealPolynomialMutation) Mutate(chromosome Chromosome, rng *Source) {
	for i := range chromosome {
		if !rng.Bernoulli(m.Pm) {
			continue
		}
		b := m.Encoding.Bounds[i]
		x := chromosome[i]
		rangeW := b.High - b.Low
		if rangeW < 1e-12 {
			continue
		}
		delta1 := (x - b.Low) / rangeW
		delta2 := (b.High - x) / rangeW
		u := rng.Float64()
		mutPow := 1 / (m.Eta + 1)
		var deltaq float64
		if u <= 0.5 {
			xy := 1 - delta1
			val := 2*u + (1-2*u)*math.Pow(xy, m.Eta+1)
			deltaq = math.Pow(val, mutPow) - 1
		} else {
			xy := 1 - delta2
			val := 2*(1-u) + 2*(u-0.5)*math.Pow(xy, m.Eta+1)
			deltaq = 1 - math.Pow(val, mutPow)
		}
		chromosome[i] = x + deltaq*rangeW
	}
	m.Encoding.Repair(chromosome)
}

// RealGaussMutation perturbs each selected gene with a Gaussian of stddev
// SigmaFraction*(high-low).
type RealGaussMutation struct {
	Pm, SigmaFraction float64
	Encoding          RealEncoding
}

func (m RealGaussMutation) Mutate(chromosome Chromosome, rng *Source) {
	for i := range chromosome {
		if !rng.Bernoulli(m.Pm) {
			continue
		}
		b := m.Encoding.Bounds[i]
		sigma := m.SigmaFraction * (b.High - b.Low)
		chromosome[i] += sigma * rng.Normal()
	}
	m.Encoding.Repair(chromosome)
}

// --- permutation ---

// PermutationSwapMutation swaps two random positions with probability Pm
// (spec allows permutation mutation to reuse the integer-swap shape).
type PermutationSwapMutation struct{ Pm float64 }

func (m PermutationSwapMutation) Mutate(chromosome Chromosome, rng *Source) {
	if !rng.Bernoulli(m.Pm) || len(chromosome) < 2 {
		return
	}
	i, j := rng.UniformInt(0, len(chromosome)-1), rng.UniformInt(0, len(chromosome)-1)
	chromosome[i], chromosome[j] = chromosome[j], chromosome[i]
}
