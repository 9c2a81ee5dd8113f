package goevo

import "math"

// Selection is the single-objective parent-selection contract of spec
// §4.E.1. Prepare runs once per generation, given the read-only fitness
// matrix; Select is then called 2*ceil(N/2) times and must return a
// population index using only the state Prepare computed and draws from
// rng.
type Selection interface {
	Prepare(fitness FitnessMatrix, rng *Source)
	Select(fitness FitnessMatrix, rng *Source) int
}

// RouletteSelection samples a parent with probability proportional to its
// (offset) fitness, offset so every candidate has a positive weight even
// when fitnesses are negative.
type RouletteSelection struct {
	cdf []float64
}

func (s *RouletteSelection) Prepare(fitness FitnessMatrix, rng *Source) {
	fvec := firstObjective(fitness)
	minF := fvec[0]
	for _, f := range fvec[1:] {
		if f < minF {
			minF = f
		}
	}
	offset := math.Min(0, 2*minF)
	adjusted := make([]float64, len(fvec))
	for i, f := range fvec {
		adjusted[i] = f - offset
	}
	s.cdf = WeightsToCDF(adjusted)
}

func (s *RouletteSelection) Select(_ FitnessMatrix, rng *Source) int {
	return rng.SampleCDF(s.cdf)
}

// TournamentSelection picks the best of Size uniformly sampled unique
// candidates, by first-objective fitness; ties favor the first candidate
// drawn.
type TournamentSelection struct {
	Size int

	fvec []float64
}

// NewTournamentSelection validates size and returns a TournamentSelection.
func NewTournamentSelection(size int) (*TournamentSelection, error) {
	if size < 2 {
		return nil, newConfigError("tournament_size", "must be >= 2")
	}
	return &TournamentSelection{Size: size}, nil
}

func (s *TournamentSelection) Prepare(fitness FitnessMatrix, rng *Source) {
	s.fvec = firstObjective(fitness)
}

func (s *TournamentSelection) Select(_ FitnessMatrix, rng *Source) int {
	candidates := rng.UniqueInts(s.Size, len(s.fvec))
	best := candidates[0]
	for _, c := range candidates[1:] {
		if s.fvec[c] > s.fvec[best] {
			best = c
		}
	}
	return best
}

// RankSelection samples proportional to a linear interpolation between
// MinWeight (worst rank) and MaxWeight (best rank).
type RankSelection struct {
	MinWeight, MaxWeight float64

	cdf []float64
}

// NewRankSelection validates 0 <= MinWeight <= MaxWeight.
func NewRankSelection(minWeight, maxWeight float64) (*RankSelection, error) {
	if !(0 <= minWeight && minWeight <= maxWeight) {
		return nil, newConfigError("rank_weights", "require 0 <= min_weight <= max_weight")
	}
	return &RankSelection{MinWeight: minWeight, MaxWeight: maxWeight}, nil
}

func (s *RankSelection) Prepare(fitness FitnessMatrix, rng *Source) {
	fvec := firstObjective(fitness)
	order := Argsort(fvec)
	n := len(order)
	weights := make([]float64, n)
	for i, idx := range order {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		weights[idx] = s.MinWeight + t*(s.MaxWeight-s.MinWeight)
	}
	s.cdf = WeightsToCDF(weights)
}

func (s *RankSelection) Select(_ FitnessMatrix, rng *Source) int {
	return rng.SampleCDF(s.cdf)
}

// SigmaSelection scales selection pressure by the population's standard
// deviation: weight = max(0, 1 + (f-mean)/(Scale*stddev)).
type SigmaSelection struct {
	Scale float64

	cdf []float64
}

// NewSigmaSelection validates Scale > 1.
func NewSigmaSelection(scale float64) (*SigmaSelection, error) {
	if scale <= 1 {
		return nil, newConfigError("sigma_scale", "must be > 1")
	}
	return &SigmaSelection{Scale: scale}, nil
}

func (s *SigmaSelection) Prepare(fitness FitnessMatrix, rng *Source) {
	fvec := firstObjective(fitness)
	mean := Mean(fvec)
	sigma := math.Max(StdDev(fvec, mean), 1e-6)
	weights := make([]float64, len(fvec))
	for i, f := range fvec {
		weights[i] = math.Max(0, 1+(f-mean)/(s.Scale*sigma))
	}
	s.cdf = WeightsToCDF(weights)
}

func (s *SigmaSelection) Select(_ FitnessMatrix, rng *Source) int {
	return rng.SampleCDF(s.cdf)
}

// TemperatureFunc computes the Boltzmann temperature for generation g of G.
type TemperatureFunc func(g, maxGen int) float64

// DefaultBoltzmannTemperature is T(g,G) = -4/(1+exp(-10g/G+3)) + 4.25.
func DefaultBoltzmannTemperature(g, maxGen int) float64 {
	ratio := float64(g) / float64(maxGen)
	return -4/(1+math.Exp(-10*ratio+3)) + 4.25
}

// BoltzmannSelection samples proportional to exp(fnorm/T(g,G)), annealing
// selection pressure over the run via the temperature function.
type BoltzmannSelection struct {
	Temperature TemperatureFunc

	generation, maxGen int
	cdf                []float64
}

// NewBoltzmannSelection validates that temperature is non-nil.
func NewBoltzmannSelection(temperature TemperatureFunc) (*BoltzmannSelection, error) {
	if temperature == nil {
		return nil, newConfigError("boltzmann_temperature", "temperature function must not be nil")
	}
	return &BoltzmannSelection{Temperature: temperature}, nil
}

// SetGeneration lets the engine tell the operator which generation it is
// about to prepare for, so Prepare can evaluate Temperature(g, maxGen).
func (s *BoltzmannSelection) SetGeneration(generation, maxGen int) {
	s.generation, s.maxGen = generation, maxGen
}

func (s *BoltzmannSelection) Prepare(fitness FitnessMatrix, rng *Source) {
	fvec := firstObjective(fitness)
	fmin, fmax := fvec[0], fvec[0]
	for _, f := range fvec[1:] {
		if f < fmin {
			fmin = f
		}
		if f > fmax {
			fmax = f
		}
	}
	temperature := s.Temperature(s.generation, s.maxGen)
	df := math.Max(fmax-fmin, 1e-6)
	weights := make([]float64, len(fvec))
	for i, f := range fvec {
		fnorm := (f - fmin) / df
		weights[i] = math.Exp(fnorm / temperature)
	}
	s.cdf = WeightsToCDF(weights)
}

func (s *BoltzmannSelection) Select(_ FitnessMatrix, rng *Source) int {
	return rng.SampleCDF(s.cdf)
}

func firstObjective(fitness FitnessMatrix) []float64 {
	out := make([]float64, len(fitness))
	for i, f := range fitness {
		out[i] = f[0]
	}
	return out
}
