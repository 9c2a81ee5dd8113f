package goevo

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FitnessFunc evaluates one chromosome, returning an M-length fitness
// vector to maximize. It must be safe for concurrent use by multiple
// goroutines; the engine calls it once per unevaluated candidate per
// generation, possibly from several workers at once.
type FitnessFunc func(chromosome Chromosome) ([]float64, error)

// RepairFunc is an optional problem-specific repair step run after an
// encoding's own Repair, for invariants the encoding itself cannot know
// about (e.g. a knapsack capacity constraint).
type RepairFunc func(chromosome Chromosome)

// Engine drives the generation loop of spec §4.G: evaluate, select,
// recombine, mutate, repair, re-evaluate, survive, archive, repeat. Every
// phase that fans out over the population does so with errgroup and a
// split sub-stream per worker, so a run is reproducible regardless of how
// goroutines get scheduled.
type Engine struct {
	Encoding    Encoding
	Algorithm   Algorithm
	Crossover   Crossover
	Mutation    Mutation
	FitnessFunc FitnessFunc
	RepairFunc  RepairFunc
	StopCond    StopCondition
	Observer    *EngineObserver

	// Workers bounds the number of goroutines used per fan-out phase.
	// Defaults to 1 (sequential) when <= 0.
	Workers int
	// MaxGen is passed through to algorithms/operators that scale their
	// behavior with progress toward a maximum generation count (e.g.
	// Boltzmann annealing, non-uniform mutation). It is informational
	// only; StopCond is what actually stops the run.
	MaxGen int

	rng              *Source
	population       Population
	archive          *Archive
	generation       int
	evaluations      int
	chromosomeLength int
	objectives       int
}

// NewEngine validates the required collaborators and seeds an initial
// random population of size n. chromosomeLength and objectives are the L
// and M of spec §3's validity invariant, checked against every candidate
// as it is evaluated.
func NewEngine(encoding Encoding, algorithm Algorithm, crossover Crossover, mutation Mutation, fitnessFn FitnessFunc, stopCond StopCondition, seed int64, n, chromosomeLength, objectives int) (*Engine, error) {
	if encoding == nil {
		return nil, newConfigError("encoding", "must not be nil")
	}
	if algorithm == nil {
		return nil, newConfigError("algorithm", "must not be nil")
	}
	if crossover == nil {
		return nil, newConfigError("crossover", "must not be nil")
	}
	if mutation == nil {
		return nil, newConfigError("mutation", "must not be nil")
	}
	if fitnessFn == nil {
		return nil, newConfigError("fitness_fn", "must not be nil")
	}
	if stopCond == nil {
		return nil, newConfigError("stop_condition", "must not be nil")
	}
	if n <= 0 {
		return nil, newConfigError("population_size", "must be > 0")
	}
	if objectives <= 0 {
		return nil, newConfigError("objectives", "must be > 0")
	}

	e := &Engine{
		Encoding:         encoding,
		Algorithm:        algorithm,
		Crossover:        crossover,
		Mutation:         mutation,
		FitnessFunc:      fitnessFn,
		StopCond:         stopCond,
		rng:              NewSource(seed),
		archive:          NewArchive(),
		chromosomeLength: chromosomeLength,
		objectives:       objectives,
	}

	pop := make(Population, n)
	for i := range pop {
		pop[i] = NewCandidate(encoding.Random(e.rng, chromosomeLength))
	}
	e.population = pop
	return e, nil
}

// Population returns a snapshot of the current population.
func (e *Engine) Population() Population { return e.population.Clone() }

// Archive returns the engine's non-dominated archive.
func (e *Engine) Archive() *Archive { return e.archive }

// Generation returns the number of completed generations.
func (e *Engine) Generation() int { return e.generation }

func (e *Engine) workerCount() int {
	if e.Workers > 0 {
		return e.Workers
	}
	return 1
}

// evaluateAll evaluates every unevaluated candidate in pop concurrently,
// fanning out across e.workerCount() goroutines (spec §5). A fitness
// function error aborts the whole phase; partial evaluation results from
// other in-flight workers are discarded along with it.
func (e *Engine) evaluateAll(ctx context.Context, pop Population) error {
	pending := make([]int, 0, len(pop))
	for i, c := range pop {
		if !c.Evaluated {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	workers := e.workerCount()
	if workers > len(pending) {
		workers = len(pending)
	}
	chunk := (len(pending) + workers - 1) / workers

	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if start >= len(pending) {
			break
		}
		if end > len(pending) {
			end = len(pending)
		}
		slice := pending[start:end]
		g.Go(func() error {
			for _, idx := range slice {
				select {
				case <-gCtx.Done():
					return gCtx.Err()
				default:
				}
				fitness, err := e.FitnessFunc(pop[idx].Chromosome)
				if err != nil {
					return &EvaluationError{Index: idx, Reason: err.Error()}
				}
				pop[idx].Fitness = fitness
				pop[idx].Evaluated = true
				if !pop[idx].Valid(e.chromosomeLength, e.objectives) {
					return &EvaluationError{Index: idx, Reason: fmt.Sprintf("fitness must have length %d with every component finite, got %v", e.objectives, fitness)}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	e.evaluations += len(pending)
	return nil
}

// repair applies the encoding's own Repair and then, if set, the
// problem-specific RepairFunc, to every candidate in pop.
func (e *Engine) repair(pop Population) {
	for i := range pop {
		e.Encoding.Repair(pop[i].Chromosome)
		if e.RepairFunc != nil {
			e.RepairFunc(pop[i].Chromosome)
		}
	}
}

// step runs exactly one generation: evaluate, prepare, select parent
// pairs, cross, mutate, repair, evaluate children, survive, archive.
func (e *Engine) step(ctx context.Context) error {
	stepStart := time.Now()
	evalsBefore := e.evaluations
	if err := e.evaluateAll(ctx, e.population); err != nil {
		return fmt.Errorf("goevo: generation %d evaluation: %w", e.generation, err)
	}

	fitness := BuildFitnessMatrix(e.population)
	e.Algorithm.Prepare(fitness, e.generation, e.MaxGen, e.rng)

	n := len(e.population)
	pairs := (n + 1) / 2
	type parentPair struct{ a, b int }
	parents := make([]parentPair, pairs)
	for i := 0; i < pairs; i++ {
		parents[i] = parentPair{e.Algorithm.Select(fitness, e.rng), e.Algorithm.Select(fitness, e.rng)}
	}

	children := make(Population, 0, pairs*2)
	g, gCtx := errgroup.WithContext(ctx)
	workers := e.workerCount()
	if workers > pairs {
		workers = pairs
	}
	results := make([][2]Candidate, pairs)
	mutation := e.Mutation
	if nu, ok := mutation.(RealNonUniformMutation); ok {
		if e.MaxGen > 0 {
			nu.MaxGen = e.MaxGen
		}
		if nu.MaxGen > 0 {
			nu.Generation = min(e.generation, nu.MaxGen)
		}
		mutation = nu
	}
	chunk := (pairs + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if start >= pairs {
			break
		}
		if end > pairs {
			end = pairs
		}
		workerRNG := e.rng.Split(w)
		g.Go(func() error {
			for i := start; i < end; i++ {
				select {
				case <-gCtx.Done():
					return gCtx.Err()
				default:
				}
				p1, p2 := e.population[parents[i].a], e.population[parents[i].b]
				c1, c2, err := e.Crossover.Cross(p1, p2, workerRNG)
				if err != nil {
					return err
				}
				MutateCandidate(mutation, &c1, workerRNG)
				MutateCandidate(mutation, &c2, workerRNG)
				results[i] = [2]Candidate{c1, c2}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("goevo: generation %d recombination: %w", e.generation, err)
	}
	for _, pair := range results {
		children = append(children, pair[0], pair[1])
	}
	// children may hold n+1 candidates when n is odd (pairs*2 = 2*ceil(n/2));
	// the full buffer is repaired, evaluated, and handed to the survivor
	// strategy, which already trims parents∪children down to exactly n.

	e.repair(children)
	if err := e.evaluateAll(ctx, children); err != nil {
		return fmt.Errorf("goevo: generation %d child evaluation: %w", e.generation, err)
	}

	survivors := e.Algorithm.Survive(e.population, children, n, e.rng)
	next := make(Population, len(survivors))
	for i, idx := range survivors {
		if idx < len(e.population) {
			next[i] = e.population[idx]
		} else {
			next[i] = children[idx-len(e.population)]
		}
	}
	e.population = next
	e.archive.Update(e.population)
	e.generation++

	if e.Observer != nil {
		e.Observer.OnGeneration(e.generation, e.evaluations, e.evaluations-evalsBefore, e.archive.Len(), time.Since(stepStart))
	}
	return nil
}

// Run advances the engine generation by generation until StopCond
// reports true or ctx is cancelled, whichever comes first.
func (e *Engine) Run(ctx context.Context) error {
	for {
		state := EngineState{Generation: e.generation, Evaluations: e.evaluations, Population: e.population, Archive: e.archive}
		if e.StopCond.ShouldStop(state) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.step(ctx); err != nil {
			return err
		}
	}
}

// continueFor runs exactly k more generations regardless of StopCond,
// which is useful for interactive or notebook-style use where the caller
// wants to keep iterating past a configured stop condition. This mirrors
// an already-stopped run simply being re-entered: StopCond is consulted
// only by Run, never by continueFor, so calling continueFor after Run has
// already stopped silently resumes the search rather than erroring.
func (e *Engine) continueFor(ctx context.Context, k int) error {
	for i := 0; i < k; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// ContinueFor is the exported form of continueFor.
func (e *Engine) ContinueFor(ctx context.Context, k int) error {
	return e.continueFor(ctx, k)
}

// EngineObserver reports generation-boundary events to structured
// logging and, optionally, Prometheus metrics (spec's ambient
// observability concern). It is never consulted inside an operator.
type EngineObserver struct {
	Logger  *zap.Logger
	Metrics *Metrics
}

// OnGeneration logs and records metrics for one completed generation.
// evaluationsDelta is the number of fitness evaluations performed during
// this generation alone (not the running total); duration is the
// generation's wall-clock time.
func (o *EngineObserver) OnGeneration(generation, evaluations, evaluationsDelta, archiveSize int, duration time.Duration) {
	if o.Logger != nil {
		o.Logger.Info("generation complete",
			zap.Int("generation", generation),
			zap.Int("evaluations", evaluations),
			zap.Int("archive_size", archiveSize),
			zap.Duration("duration", duration),
		)
	}
	if o.Metrics != nil {
		o.Metrics.ObserveGeneration(archiveSize)
		o.Metrics.AddEvaluations(evaluationsDelta)
		o.Metrics.ObserveGenerationDuration(duration.Seconds())
	}
}
