package goevo

import "testing"

func TestBinaryEncodingRandomIsBits(t *testing.T) {
	rng := NewSource(1)
	c := BinaryEncoding{}.Random(rng, 50)
	for _, g := range c {
		if g != 0 && g != 1 {
			t.Fatalf("binary chromosome contains non-bit gene %v", g)
		}
	}
}

func TestBinaryEncodingRepairClampsToBits(t *testing.T) {
	c := Chromosome{0, 1, 5, -2}
	BinaryEncoding{}.Repair(c)
	want := Chromosome{0, 1, 1, 1}
	if !c.Equal(want) {
		t.Errorf("BinaryEncoding.Repair(%v) = %v, want %v", Chromosome{0, 1, 5, -2}, c, want)
	}
}

func TestNewIntegerEncodingValidatesBase(t *testing.T) {
	if _, err := NewIntegerEncoding(1); err == nil {
		t.Error("NewIntegerEncoding(1) should have rejected base < 2")
	}
	if _, err := NewIntegerEncoding(2); err != nil {
		t.Errorf("NewIntegerEncoding(2) returned unexpected error: %v", err)
	}
}

func TestIntegerEncodingRandomWithinBase(t *testing.T) {
	enc, _ := NewIntegerEncoding(5)
	rng := NewSource(2)
	c := enc.Random(rng, 30)
	for _, g := range c {
		if g < 0 || g > 4 {
			t.Fatalf("integer gene %v out of [0,4]", g)
		}
	}
}

func TestIntegerEncodingRepairClamps(t *testing.T) {
	enc, _ := NewIntegerEncoding(4)
	c := Chromosome{-1, 2.6, 10}
	enc.Repair(c)
	want := Chromosome{0, 3, 3}
	if !c.Equal(want) {
		t.Errorf("IntegerEncoding.Repair = %v, want %v", c, want)
	}
}

func TestNewRealEncodingValidatesBounds(t *testing.T) {
	if _, err := NewRealEncoding([]Bounds{{Low: 5, High: 1}}); err == nil {
		t.Error("NewRealEncoding should reject Low > High")
	}
}

func TestRealEncodingRandomWithinBounds(t *testing.T) {
	enc, _ := NewRealEncoding([]Bounds{{Low: -1, High: 1}, {Low: 0, High: 10}})
	rng := NewSource(3)
	for trial := 0; trial < 20; trial++ {
		c := enc.Random(rng, 2)
		if c[0] < -1 || c[0] > 1 || c[1] < 0 || c[1] > 10 {
			t.Fatalf("RealEncoding.Random produced out-of-bounds chromosome %v", c)
		}
	}
}

func TestRealEncodingRandomPanicsOnLengthMismatch(t *testing.T) {
	enc, _ := NewRealEncoding([]Bounds{{Low: 0, High: 1}})
	defer func() {
		if recover() == nil {
			t.Fatal("RealEncoding.Random did not panic on a length/bounds mismatch")
		}
	}()
	enc.Random(NewSource(1), 2)
}

func TestRealEncodingRepairClamps(t *testing.T) {
	enc, _ := NewRealEncoding([]Bounds{{Low: -1, High: 1}})
	c := Chromosome{5}
	enc.Repair(c)
	if c[0] != 1 {
		t.Errorf("RealEncoding.Repair clamped to %v, want 1", c[0])
	}
	c = Chromosome{-5}
	enc.Repair(c)
	if c[0] != -1 {
		t.Errorf("RealEncoding.Repair clamped to %v, want -1", c[0])
	}
}

func TestPermutationEncodingRandomIsPermutation(t *testing.T) {
	rng := NewSource(4)
	for trial := 0; trial < 10; trial++ {
		c := PermutationEncoding{}.Random(rng, 8)
		if !IsPermutation(c) {
			t.Fatalf("PermutationEncoding.Random produced a non-permutation: %v", c)
		}
	}
}

func TestPermutationEncodingRepairFixesDuplicates(t *testing.T) {
	c := Chromosome{0, 0, 2, 2}
	PermutationEncoding{}.Repair(c)
	if !IsPermutation(c) {
		t.Fatalf("PermutationEncoding.Repair did not restore a valid permutation: %v", c)
	}
}

func TestPermutationEncodingRepairNoopOnValidInput(t *testing.T) {
	c := Chromosome{2, 0, 1, 3}
	before := c.Clone()
	PermutationEncoding{}.Repair(c)
	if !c.Equal(before) {
		t.Errorf("PermutationEncoding.Repair changed an already-valid permutation: %v -> %v", before, c)
	}
}

func TestIsPermutation(t *testing.T) {
	if !IsPermutation(Chromosome{2, 0, 1}) {
		t.Error("IsPermutation({2,0,1}) = false, want true")
	}
	if IsPermutation(Chromosome{0, 0, 1}) {
		t.Error("IsPermutation({0,0,1}) = true, want false (duplicate)")
	}
	if IsPermutation(Chromosome{0, 1, 3}) {
		t.Error("IsPermutation({0,1,3}) = true, want false (out of range)")
	}
}
