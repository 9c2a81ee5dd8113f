package goevo

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewEngineValidatesCollaborators(t *testing.T) {
	tournament, _ := NewTournamentSelection(2)
	alg := &SingleObjectiveAlgorithm{Selection: tournament, Survivor: KeepBestSurvivor{}}
	enc := BinaryEncoding{}
	cross := UniformCrossover{Pc: 0.9}
	mut := BitFlipMutation{Pm: 0.05}
	fit := OneMax
	stop := MaxGenerations{Max: 5}

	_, err := NewEngine(nil, alg, cross, mut, fit, stop, 1, 10, 8, 1)
	require.Error(t, err, "NewEngine should reject a nil encoding")

	_, err = NewEngine(enc, nil, cross, mut, fit, stop, 1, 10, 8, 1)
	require.Error(t, err, "NewEngine should reject a nil algorithm")

	_, err = NewEngine(enc, alg, cross, mut, fit, stop, 1, 0, 8, 1)
	require.Error(t, err, "NewEngine should reject a non-positive population size")

	_, err = NewEngine(enc, alg, cross, mut, fit, stop, 1, 10, 8, 0)
	require.Error(t, err, "NewEngine should reject a non-positive objectives count")

	engine, err := NewEngine(enc, alg, cross, mut, fit, stop, 1, 10, 8, 1)
	require.NoError(t, err)
	require.Len(t, engine.Population(), 10)
	require.Equal(t, 0, engine.Generation())
}

func buildOneMaxEngine(t *testing.T, seed int64, popSize, length, maxGen int) *Engine {
	t.Helper()
	tournament, err := NewTournamentSelection(3)
	require.NoError(t, err)
	alg := &SingleObjectiveAlgorithm{Selection: tournament, Survivor: KeepBestSurvivor{}}
	engine, err := NewEngine(BinaryEncoding{}, alg, UniformCrossover{Pc: 0.9}, BitFlipMutation{Pm: 0.05}, OneMax, MaxGenerations{Max: maxGen}, seed, popSize, length, 1)
	require.NoError(t, err)
	return engine
}

func TestEngineRunImprovesOneMax(t *testing.T) {
	engine := buildOneMaxEngine(t, 42, 30, 16, 60)
	require.NoError(t, engine.Run(context.Background()))
	require.Equal(t, 60, engine.Generation())

	best := negInf
	for _, c := range engine.Population() {
		if c.Evaluated && c.Fitness[0] > best {
			best = c.Fitness[0]
		}
	}
	if best < 14 {
		t.Errorf("OneMax over 60 generations only reached best fitness %v out of 16, expected near-optimal", best)
	}
}

func TestEngineRunIsDeterministicForAGivenSeed(t *testing.T) {
	a := buildOneMaxEngine(t, 7, 20, 10, 20)
	b := buildOneMaxEngine(t, 7, 20, 10, 20)
	require.NoError(t, a.Run(context.Background()))
	require.NoError(t, b.Run(context.Background()))

	popA, popB := a.Population(), b.Population()
	require.Len(t, popB, len(popA))
	for i := range popA {
		if !popA[i].Chromosome.Equal(popB[i].Chromosome) {
			t.Fatalf("two engines built from the same seed diverged at candidate %d: %v != %v", i, popA[i].Chromosome, popB[i].Chromosome)
		}
	}
}

func TestEngineRunRespectsContextCancellation(t *testing.T) {
	engine := buildOneMaxEngine(t, 1, 10, 8, 1000000)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := engine.Run(ctx)
	require.Error(t, err, "Run should return an error once the context is already cancelled")
}

func TestEngineContinueForIgnoresStopCondition(t *testing.T) {
	engine := buildOneMaxEngine(t, 1, 10, 8, 1) // StopCond already satisfied at generation 1
	require.NoError(t, engine.Run(context.Background()))
	require.Equal(t, 1, engine.Generation())

	require.NoError(t, engine.ContinueFor(context.Background(), 5))
	require.Equal(t, 6, engine.Generation(), "ContinueFor must run exactly k more generations regardless of StopCond")
}

func TestEngineArchiveAccumulates(t *testing.T) {
	engine := buildOneMaxEngine(t, 3, 20, 10, 10)
	require.NoError(t, engine.Run(context.Background()))
	if engine.Archive().Len() == 0 {
		t.Error("Archive should contain at least one non-dominated candidate after a completed run")
	}
}

func TestEngineRunNSGA2OnZDT1Surrogate(t *testing.T) {
	bounds := make([]Bounds, 5)
	for i := range bounds {
		bounds[i] = Bounds{Low: 0, High: 1}
	}
	enc, err := NewRealEncoding(bounds)
	require.NoError(t, err)
	alg := &NSGA2Algorithm{}
	crossover := SBXCrossover{Pc: 0.9, Eta: 20, Encoding: enc}
	mutation := RealPolynomialMutation{Pm: 0.1, Eta: 20, Encoding: enc}
	engine, err := NewEngine(enc, alg, crossover, mutation, ZDT1Surrogate, MaxGenerations{Max: 20}, 5, 40, 5, 2)
	require.NoError(t, err)
	require.NoError(t, engine.Run(context.Background()))
	require.Greater(t, engine.Archive().Len(), 0, "the archive should hold non-dominated solutions after a multi-objective run")
}

func TestEngineRunAbortsOnShortFitnessVector(t *testing.T) {
	tournament, err := NewTournamentSelection(3)
	require.NoError(t, err)
	alg := &SingleObjectiveAlgorithm{Selection: tournament, Survivor: KeepBestSurvivor{}}
	shortFitness := func(chromosome Chromosome) ([]float64, error) {
		return []float64{1}, nil // engine is configured for 2 objectives
	}
	engine, err := NewEngine(BinaryEncoding{}, alg, UniformCrossover{Pc: 0.9}, BitFlipMutation{Pm: 0.05}, shortFitness, MaxGenerations{Max: 5}, 1, 10, 8, 2)
	require.NoError(t, err)

	err = engine.Run(context.Background())
	require.Error(t, err, "a fitness vector shorter than the configured objective count should abort the generation")
	var evalErr *EvaluationError
	require.True(t, errors.As(err, &evalErr), "error should unwrap to an *EvaluationError, got %v", err)
}

func TestEngineRunAbortsOnNaNFitness(t *testing.T) {
	tournament, err := NewTournamentSelection(3)
	require.NoError(t, err)
	alg := &SingleObjectiveAlgorithm{Selection: tournament, Survivor: KeepBestSurvivor{}}
	nanFitness := func(chromosome Chromosome) ([]float64, error) {
		return []float64{math.NaN()}, nil
	}
	engine, err := NewEngine(BinaryEncoding{}, alg, UniformCrossover{Pc: 0.9}, BitFlipMutation{Pm: 0.05}, nanFitness, MaxGenerations{Max: 5}, 1, 10, 8, 1)
	require.NoError(t, err)

	err = engine.Run(context.Background())
	require.Error(t, err, "a NaN fitness component should abort the generation")
	var evalErr *EvaluationError
	require.True(t, errors.As(err, &evalErr), "error should unwrap to an *EvaluationError, got %v", err)
}

func TestEngineRunWithOddPopulationSizePreservesExactCount(t *testing.T) {
	engine := buildOneMaxEngine(t, 11, 7, 10, 15) // odd population size exercises the n+1 child-buffer path
	require.NoError(t, engine.Run(context.Background()))
	require.Len(t, engine.Population(), 7, "survivor selection must trim the odd-sized parent+child pool back to exactly n")
}
