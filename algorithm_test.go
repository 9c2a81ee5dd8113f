package goevo

import "testing"

func TestSingleObjectiveAlgorithmDelegates(t *testing.T) {
	tournament, _ := NewTournamentSelection(2)
	alg := &SingleObjectiveAlgorithm{Selection: tournament, Survivor: KeepBestSurvivor{}}
	fitness := singleObjectiveFitness(1, 2, 3)
	rng := NewSource(1)
	alg.Prepare(fitness, 0, 10, rng)
	idx := alg.Select(fitness, rng)
	if idx < 0 || idx > 2 {
		t.Fatalf("SingleObjectiveAlgorithm.Select returned out-of-range index %d", idx)
	}
	parents := popFromFitness([]float64{1}, []float64{2})
	children := popFromFitness([]float64{5}, []float64{0})
	survivors := alg.Survive(parents, children, 2, rng)
	if len(survivors) != 2 {
		t.Fatalf("SingleObjectiveAlgorithm.Survive returned %d indices, want 2", len(survivors))
	}
}

func TestSingleObjectiveAlgorithmPrepareSetsBoltzmannGeneration(t *testing.T) {
	boltzmann, _ := NewBoltzmannSelection(DefaultBoltzmannTemperature)
	alg := &SingleObjectiveAlgorithm{Selection: boltzmann, Survivor: KeepBestSurvivor{}}
	fitness := singleObjectiveFitness(1, 2, 3)
	rng := NewSource(1)
	alg.Prepare(fitness, 50, 100, rng) // must not divide by zero maxGen
	if boltzmann.generation != 50 || boltzmann.maxGen != 100 {
		t.Fatalf("SingleObjectiveAlgorithm.Prepare did not forward generation/maxGen to BoltzmannSelection: got (%d,%d)", boltzmann.generation, boltzmann.maxGen)
	}
}

func TestNSGA2AlgorithmSelectFavorsLowerRank(t *testing.T) {
	alg := &NSGA2Algorithm{TournamentSize: 3} // covers the whole population deterministically
	fitness := FitnessMatrix{{3, 3}, {1, 1}, {0, 0}}
	rng := NewSource(1)
	alg.Prepare(fitness, 0, 10, rng)
	if got := alg.Select(fitness, rng); got != 0 {
		t.Fatalf("NSGA2Algorithm.Select with a full-population tournament should always return the rank-0 candidate; got %d", got)
	}
}

func TestNSGA2AlgorithmSurviveReturnsN(t *testing.T) {
	alg := &NSGA2Algorithm{}
	parents := popFromFitness([]float64{3, 3}, []float64{1, 1})
	children := popFromFitness([]float64{2, 2}, []float64{0, 0})
	out := alg.Survive(parents, children, 3, NewSource(1))
	if len(out) != 3 {
		t.Fatalf("NSGA2Algorithm.Survive returned %d, want 3", len(out))
	}
}

func TestNewNSGA3AlgorithmGeneratesRefPoints(t *testing.T) {
	alg := NewNSGA3Algorithm(NewSource(1), 3)
	if len(alg.RefPoints) != referencePointCountFor(3) {
		t.Fatalf("NewNSGA3Algorithm(objectives=3) generated %d reference points, want %d", len(alg.RefPoints), referencePointCountFor(3))
	}
}

func TestNSGA3AlgorithmPrepareAssignsNiches(t *testing.T) {
	alg := NewNSGA3Algorithm(NewSource(1), 3)
	fitness := FitnessMatrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {0.5, 0.5, 0}}
	rng := NewSource(2)
	alg.Prepare(fitness, 0, 10, rng)
	if len(alg.refIdx) != len(fitness) {
		t.Fatalf("NSGA3Algorithm.Prepare assigned %d reference indices, want %d", len(alg.refIdx), len(fitness))
	}
	sum := 0
	for _, n := range alg.niche {
		sum += n
	}
	if sum != len(fitness) {
		t.Fatalf("NSGA3Algorithm niche counts summed to %d, want %d", sum, len(fitness))
	}
}

func TestNSGA3AlgorithmSurviveReturnsN(t *testing.T) {
	alg := NewNSGA3Algorithm(NewSource(1), 2)
	parents := popFromFitness([]float64{3, 0}, []float64{0, 3})
	children := popFromFitness([]float64{2, 1}, []float64{1, 2})
	out := alg.Survive(parents, children, 3, NewSource(2))
	if len(out) != 3 {
		t.Fatalf("NSGA3Algorithm.Survive returned %d, want 3", len(out))
	}
}

func TestNewAlgorithmRegistry(t *testing.T) {
	rng := NewSource(1)
	if _, err := NewAlgorithm("single-objective", 1, rng); err != nil {
		t.Errorf("NewAlgorithm(single-objective, 1) returned error: %v", err)
	}
	if _, err := NewAlgorithm("single-objective", 2, rng); err == nil {
		t.Error("NewAlgorithm(single-objective, 2) should have been rejected")
	}
	if _, err := NewAlgorithm("nsga2", 2, rng); err != nil {
		t.Errorf("NewAlgorithm(nsga2, 2) returned error: %v", err)
	}
	if _, err := NewAlgorithm("nsga2", 1, rng); err == nil {
		t.Error("NewAlgorithm(nsga2, 1) should have been rejected")
	}
	if _, err := NewAlgorithm("nsga3", 3, rng); err != nil {
		t.Errorf("NewAlgorithm(nsga3, 3) returned error: %v", err)
	}
	if _, err := NewAlgorithm("bogus", 1, rng); err == nil {
		t.Error("NewAlgorithm(bogus, 1) should have been rejected")
	}
}
