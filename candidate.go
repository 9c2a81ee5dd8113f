package goevo

import "math"

// Chromosome is a fixed-length ordered sequence of genes (spec component
// data model). The same concrete representation, []float64, is shared by
// every encoding: bit genes are 0/1, integer genes are exact integers
// stored as floats, real genes carry their native value, and permutation
// genes are exact integers in [0, L) naming a position in the permutation.
// Encoding implementations are responsible for enforcing the per-kind
// invariant after any operator runs.
type Chromosome []float64

// Clone returns an independent copy of the chromosome.
func (c Chromosome) Clone() Chromosome {
	out := make(Chromosome, len(c))
	copy(out, c)
	return out
}

// Equal reports whether two chromosomes hold bit-identical genes.
func (c Chromosome) Equal(other Chromosome) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i] != other[i] {
			return false
		}
	}
	return true
}

// Candidate is a (chromosome, fitness) pair plus an evaluated flag (spec
// §3). Reading Fitness while Evaluated is false is a programmer error.
type Candidate struct {
	Chromosome Chromosome
	Fitness    []float64
	Evaluated  bool
}

// NewCandidate wraps chromosome as an unevaluated candidate.
func NewCandidate(chromosome Chromosome) Candidate {
	return Candidate{Chromosome: chromosome}
}

// Clone deep-copies a candidate.
func (c Candidate) Clone() Candidate {
	clone := Candidate{
		Chromosome: c.Chromosome.Clone(),
		Evaluated:  c.Evaluated,
	}
	if c.Fitness != nil {
		clone.Fitness = append([]float64(nil), c.Fitness...)
	}
	return clone
}

// Valid reports whether the candidate satisfies spec §3's validity
// invariant: chromosome length equals L, and either it is unevaluated or
// its fitness has length M with every component finite.
func (c Candidate) Valid(chromosomeLength, objectives int) bool {
	if len(c.Chromosome) != chromosomeLength {
		return false
	}
	if !c.Evaluated {
		return true
	}
	if len(c.Fitness) != objectives {
		return false
	}
	for _, f := range c.Fitness {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// Population is an ordered, fixed-size sequence of candidates (spec §3).
// Insertion order is an identity used to index into a FitnessMatrix, but
// the engine makes no promise that order is stable across generations.
type Population []Candidate

// Clone deep-copies every candidate in the population.
func (p Population) Clone() Population {
	out := make(Population, len(p))
	for i, c := range p {
		out[i] = c.Clone()
	}
	return out
}

// FitnessMatrix is the read-only N×M matrix obtained by stacking candidate
// fitnesses in population order.
type FitnessMatrix [][]float64

// BuildFitnessMatrix stacks the fitness vectors of pop in population order.
// Every candidate must already be evaluated.
func BuildFitnessMatrix(pop Population) FitnessMatrix {
	m := make(FitnessMatrix, len(pop))
	for i, c := range pop {
		if !c.Evaluated {
			panic("goevo: BuildFitnessMatrix requires every candidate to be evaluated")
		}
		m[i] = c.Fitness
	}
	return m
}

// ParetoFront is the output of non-dominated sorting: one (candidate index,
// rank) pair per candidate, grouped by ascending rank.
type ParetoFront struct {
	Index int
	Rank  int
}

// Archive is an accumulating, duplicate-free set of non-dominated
// candidates across generations (spec §3's "archive of optimal
// solutions"). Chromosome equality is the de-duplication identity.
type Archive struct {
	candidates []Candidate
}

// NewArchive returns an empty archive.
func NewArchive() *Archive {
	return &Archive{}
}

// Candidates returns a snapshot of the archive's current members.
func (a *Archive) Candidates() []Candidate {
	out := make([]Candidate, len(a.candidates))
	copy(out, a.candidates)
	return out
}

// Len returns the number of candidates currently archived.
func (a *Archive) Len() int {
	return len(a.candidates)
}

// Update folds pop into the archive: new candidates that are not dominated
// by anything already archived (or by each other) are added, archived
// candidates dominated by an incoming one are dropped, and exact
// chromosome duplicates are never stored twice.
func (a *Archive) Update(pop Population) {
	pool := make([]Candidate, 0, len(a.candidates)+len(pop))
	pool = append(pool, a.candidates...)
	for _, c := range pop {
		if c.Evaluated {
			pool = append(pool, c)
		}
	}

	kept := make([]Candidate, 0, len(pool))
	for i, ci := range pool {
		dominated := false
		duplicate := false
		for j, cj := range pool {
			if i == j {
				continue
			}
			if ci.Chromosome.Equal(cj.Chromosome) {
				if j < i {
					duplicate = true
					break
				}
				continue
			}
			if ParetoCompare(ci.Fitness, cj.Fitness) < 0 {
				dominated = true
				break
			}
		}
		if !dominated && !duplicate {
			kept = append(kept, ci)
		}
	}
	a.candidates = kept
}
