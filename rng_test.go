package goevo

import (
	"math"
	"testing"
)

func TestSourceDeterministic(t *testing.T) {
	a := NewSource(42)
	b := NewSource(42)
	for i := 0; i < 20; i++ {
		if a.Float64() != b.Float64() {
			t.Fatalf("two Sources built from the same seed diverged at draw %d", i)
		}
	}
}

func TestSourceSplitDeterministic(t *testing.T) {
	a := NewSource(7).Split(3)
	b := NewSource(7).Split(3)
	for i := 0; i < 10; i++ {
		if a.UniformInt(0, 1000) != b.UniformInt(0, 1000) {
			t.Fatalf("Split(3) of two identically seeded Sources diverged at draw %d", i)
		}
	}
}

func TestSourceSplitDiffers(t *testing.T) {
	s := NewSource(7)
	a := s.Split(0)
	b := s.Split(1)
	same := true
	for i := 0; i < 10; i++ {
		if a.UniformInt(0, 1<<30) != b.UniformInt(0, 1<<30) {
			same = false
			break
		}
	}
	if same {
		t.Fatal("Split(0) and Split(1) produced identical sub-streams")
	}
}

func TestUniformFloatRange(t *testing.T) {
	rng := NewSource(1)
	for i := 0; i < 200; i++ {
		v := rng.UniformFloat(-3, 5)
		if v < -3 || v > 5 {
			t.Fatalf("UniformFloat(-3,5) returned %v, out of range", v)
		}
	}
}

func TestUniformFloatSwapsReversedBounds(t *testing.T) {
	rng := NewSource(1)
	for i := 0; i < 50; i++ {
		v := rng.UniformFloat(5, -3)
		if v < -3 || v > 5 {
			t.Fatalf("UniformFloat(5,-3) returned %v, out of range", v)
		}
	}
}

func TestUniformIntInclusive(t *testing.T) {
	rng := NewSource(2)
	seenLow, seenHigh := false, false
	for i := 0; i < 500; i++ {
		v := rng.UniformInt(0, 2)
		if v < 0 || v > 2 {
			t.Fatalf("UniformInt(0,2) returned %d, out of range", v)
		}
		if v == 0 {
			seenLow = true
		}
		if v == 2 {
			seenHigh = true
		}
	}
	if !seenLow || !seenHigh {
		t.Fatalf("UniformInt(0,2) over 500 draws never hit both bounds (low=%v, high=%v)", seenLow, seenHigh)
	}
}

func TestUniqueIntsAreDistinct(t *testing.T) {
	rng := NewSource(3)
	for trial := 0; trial < 20; trial++ {
		picked := rng.UniqueInts(5, 10)
		if len(picked) != 5 {
			t.Fatalf("UniqueInts(5,10) returned %d values, want 5", len(picked))
		}
		seen := make(map[int]bool, 5)
		for _, v := range picked {
			if v < 0 || v >= 10 {
				t.Fatalf("UniqueInts(5,10) returned out-of-range value %d", v)
			}
			if seen[v] {
				t.Fatalf("UniqueInts(5,10) returned duplicate value %d", v)
			}
			seen[v] = true
		}
	}
}

func TestUniqueIntsPanicsWhenKExceedsN(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("UniqueInts(5,3) did not panic")
		}
	}()
	NewSource(1).UniqueInts(5, 3)
}

func TestSampleCDFRespectsWeights(t *testing.T) {
	// cdf encodes three buckets of near-zero, near-zero, and ~1 mass.
	cdf := []float64{0.001, 0.002, 1.0}
	rng := NewSource(9)
	counts := make([]int, 3)
	for i := 0; i < 1000; i++ {
		counts[rng.SampleCDF(cdf)]++
	}
	if counts[2] < 900 {
		t.Fatalf("SampleCDF under-sampled the dominant bucket: counts=%v", counts)
	}
}

func TestSampleCDFPanicsOnEmpty(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("SampleCDF(nil) did not panic")
		}
	}()
	NewSource(1).SampleCDF(nil)
}

func TestSimplexSumsToOne(t *testing.T) {
	rng := NewSource(4)
	for trial := 0; trial < 20; trial++ {
		p := rng.Simplex(4)
		sum := 0.0
		for _, v := range p {
			if v < 0 {
				t.Fatalf("Simplex(4) produced a negative component %v", v)
			}
			sum += v
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Fatalf("Simplex(4) components summed to %v, want 1", sum)
		}
	}
}

func TestBernoulliBounds(t *testing.T) {
	rng := NewSource(5)
	trueCount := 0
	for i := 0; i < 1000; i++ {
		if rng.Bernoulli(0) {
			trueCount++
		}
	}
	if trueCount != 0 {
		t.Fatalf("Bernoulli(0) returned true %d times, want 0", trueCount)
	}
	trueCount = 0
	for i := 0; i < 1000; i++ {
		if !rng.Bernoulli(1) {
			t.Fatal("Bernoulli(1) returned false")
		}
		trueCount++
	}
	if trueCount != 1000 {
		t.Fatalf("Bernoulli(1) returned true %d times, want 1000", trueCount)
	}
}
