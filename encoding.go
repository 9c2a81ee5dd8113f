package goevo

import "fmt"

// Encoding is the per-gene-kind trait of spec §4.D: it knows how to draw a
// random chromosome of a given length and how to repair a chromosome back
// into its kind's invariant after an operator has touched it (bounds
// clamping for real genes, rounding for integer genes, permutation repair
// for permutation genes). Operators do not check the encoding themselves;
// EngineConfig.Build pairs each operator with the encoding it needs by a
// type assertion on the configured Encoding and rejects a mismatch, so a
// configured BitFlip mutation never runs against a real-valued chromosome.
type Encoding interface {
	// Name identifies the encoding, e.g. "binary", "integer", "real",
	// "permutation".
	Name() string

	// Random draws a chromosome of length L uniformly at random, already
	// satisfying the encoding's invariant.
	Random(rng *Source, length int) Chromosome

	// Repair mutates chromosome in place so it once again satisfies the
	// encoding's invariant (clamping, rounding, or permutation repair).
	// It must not change a chromosome that already satisfies the
	// invariant.
	Repair(chromosome Chromosome)
}

// BinaryEncoding represents chromosomes of 0/1 genes.
type BinaryEncoding struct{}

func (BinaryEncoding) Name() string { return "binary" }

func (BinaryEncoding) Random(rng *Source, length int) Chromosome {
	c := make(Chromosome, length)
	for i := range c {
		if rng.Bernoulli(0.5) {
			c[i] = 1
		}
	}
	return c
}

func (BinaryEncoding) Repair(chromosome Chromosome) {
	for i, g := range chromosome {
		if g != 0 {
			chromosome[i] = 1
		}
	}
}

// IntegerEncoding represents chromosomes of genes in [0, Base) for a fixed
// Base >= 2.
type IntegerEncoding struct {
	Base int
}

// NewIntegerEncoding validates Base and returns an IntegerEncoding.
func NewIntegerEncoding(base int) (IntegerEncoding, error) {
	if base < 2 {
		return IntegerEncoding{}, fmt.Errorf("goevo: integer encoding base must be >= 2, got %d", base)
	}
	return IntegerEncoding{Base: base}, nil
}

func (e IntegerEncoding) Name() string { return "integer" }

func (e IntegerEncoding) Random(rng *Source, length int) Chromosome {
	c := make(Chromosome, length)
	for i := range c {
		c[i] = float64(rng.UniformInt(0, e.Base-1))
	}
	return c
}

func (e IntegerEncoding) Repair(chromosome Chromosome) {
	for i, g := range chromosome {
		v := float64(int(g + 0.5))
		if v < 0 {
			v = 0
		}
		if v > float64(e.Base-1) {
			v = float64(e.Base - 1)
		}
		chromosome[i] = v
	}
}

// Bounds holds a per-locus [Low, High] pair for a bounded real encoding.
type Bounds struct {
	Low, High float64
}

// RealEncoding represents chromosomes of real genes, each bounded by its
// own [Low, High] interval.
type RealEncoding struct {
	Bounds []Bounds
}

// NewRealEncoding validates bounds (each Low <= High) and returns a
// RealEncoding.
func NewRealEncoding(bounds []Bounds) (RealEncoding, error) {
	for i, b := range bounds {
		if b.Low > b.High {
			return RealEncoding{}, fmt.Errorf("goevo: real encoding bounds[%d] has low %g > high %g", i, b.Low, b.High)
		}
	}
	return RealEncoding{Bounds: bounds}, nil
}

func (e RealEncoding) Name() string { return "real" }

func (e RealEncoding) Random(rng *Source, length int) Chromosome {
	if length != len(e.Bounds) {
		panic("goevo: real encoding length must match bounds vector length")
	}
	c := make(Chromosome, length)
	for i := range c {
		c[i] = rng.UniformFloat(e.Bounds[i].Low, e.Bounds[i].High)
	}
	return c
}

func (e RealEncoding) Repair(chromosome Chromosome) {
	for i, g := range chromosome {
		b := e.Bounds[i]
		if g < b.Low {
			chromosome[i] = b.Low
		} else if g > b.High {
			chromosome[i] = b.High
		}
	}
}

// PermutationEncoding represents chromosomes that are permutations of
// 0..L-1.
type PermutationEncoding struct{}

func (PermutationEncoding) Name() string { return "permutation" }

func (PermutationEncoding) Random(rng *Source, length int) Chromosome {
	perm := rng.UniqueInts(length, length)
	c := make(Chromosome, length)
	for i, v := range perm {
		c[i] = float64(v)
	}
	return c
}

// Repair restores the permutation invariant: every value in [0, L) appears
// exactly once. Missing values are inserted into the positions that held a
// duplicate, in ascending order of missing value and ascending order of
// duplicate position, which keeps repair deterministic.
func (PermutationEncoding) Repair(chromosome Chromosome) {
	n := len(chromosome)
	seen := make([]bool, n)
	dupPositions := make([]int, 0)
	for i, g := range chromosome {
		v := int(g + 0.5)
		if v < 0 || v >= n || seen[v] {
			dupPositions = append(dupPositions, i)
			continue
		}
		seen[v] = true
	}
	missing := make([]int, 0, len(dupPositions))
	for v := 0; v < n; v++ {
		if !seen[v] {
			missing = append(missing, v)
		}
	}
	for i, pos := range dupPositions {
		chromosome[pos] = float64(missing[i])
	}
}

// IsPermutation reports whether chromosome is a permutation of 0..L-1.
func IsPermutation(chromosome Chromosome) bool {
	n := len(chromosome)
	seen := make([]bool, n)
	for _, g := range chromosome {
		v := int(g + 0.5)
		if v < 0 || v >= n || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}
