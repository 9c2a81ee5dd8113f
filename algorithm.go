package goevo

import "fmt"

// Algorithm is the polymorphic driver of spec §4.F: it couples a
// parent-selection policy with a survivor strategy and is prepared once
// per generation against the current fitness matrix.
type Algorithm interface {
	// Prepare runs once per generation, before any Select calls.
	Prepare(fitness FitnessMatrix, generation, maxGen int, rng *Source)
	// Select returns one parent index; called 2*ceil(N/2) times per
	// generation.
	Select(fitness FitnessMatrix, rng *Source) int
	// Survive returns indices of the next population drawn from
	// parents∪children.
	Survive(parents, children Population, n int, rng *Source) []int
}

// SingleObjectiveAlgorithm expects M=1 and couples any Selection with any
// Survivor (spec §4.F).
type SingleObjectiveAlgorithm struct {
	Selection Selection
	Survivor  Survivor
}

func (a *SingleObjectiveAlgorithm) Prepare(fitness FitnessMatrix, generation, maxGen int, rng *Source) {
	if bs, ok := a.Selection.(*BoltzmannSelection); ok {
		bs.SetGeneration(generation, maxGen)
	}
	a.Selection.Prepare(fitness, rng)
}

func (a *SingleObjectiveAlgorithm) Select(fitness FitnessMatrix, rng *Source) int {
	return a.Selection.Select(fitness, rng)
}

func (a *SingleObjectiveAlgorithm) Survive(parents, children Population, n int, rng *Source) []int {
	return a.Survivor.Survive(parents, children, n, rng)
}

// rankedState is the per-generation (rank, crowding distance) bookkeeping
// shared by the NSGA-II and NSGA-III tournament selections.
type rankedState struct {
	rank            []int
	crowding        []float64
	tournamentSize  int
}

func (s *rankedState) prepareRankAndCrowding(fitness FitnessMatrix) {
	n := len(fitness)
	s.rank = make([]int, n)
	s.crowding = make([]float64, n)

	sorted := FastNonDominatedSort(fitness)
	for _, pf := range sorted {
		s.rank[pf.Index] = pf.Rank
	}
	for _, front := range FrontsByRank(sorted) {
		dist := CrowdingDistance(fitness, front)
		for idx, d := range dist {
			s.crowding[idx] = d
		}
	}
}

func (s *rankedState) selectByRankCrowding(rng *Source) int {
	candidates := rng.UniqueInts(s.tournamentSize, len(s.rank))
	best := candidates[0]
	for _, c := range candidates[1:] {
		if betterRankCrowding(s.rank[c], s.crowding[c], s.rank[best], s.crowding[best]) {
			best = c
		}
	}
	return best
}

func betterRankCrowding(rankA int, crowdA float64, rankB int, crowdB float64) bool {
	if rankA != rankB {
		return rankA < rankB
	}
	return crowdA > crowdB
}

// NSGA2Algorithm selects via binary tournament on (rank, crowding
// distance) and survives via NSGA2Survivor (spec §4.F).
type NSGA2Algorithm struct {
	TournamentSize int // defaults to 2 (binary tournament) if 0

	state rankedState
}

func (a *NSGA2Algorithm) Prepare(fitness FitnessMatrix, generation, maxGen int, rng *Source) {
	a.state.tournamentSize = a.TournamentSize
	if a.state.tournamentSize == 0 {
		a.state.tournamentSize = 2
	}
	a.state.prepareRankAndCrowding(fitness)
}

func (a *NSGA2Algorithm) Select(fitness FitnessMatrix, rng *Source) int {
	return a.state.selectByRankCrowding(rng)
}

func (a *NSGA2Algorithm) Survive(parents, children Population, n int, rng *Source) []int {
	return NSGA2Survivor{}.Survive(parents, children, n, rng)
}

// NSGA3Algorithm adds niche-count tie-breaking to the NSGA-II tournament
// key and survives via NSGA3Survivor, using a reference-point set sized
// proportional to the objective count (spec §4.F).
type NSGA3Algorithm struct {
	TournamentSize int
	RefPoints      [][]float64

	state    rankedState
	niche    []int
	refIdx   []int
	distSq   []float64
}

// NewNSGA3Algorithm generates n reference points in d dimensions (spec
// §4.C.3) and returns a ready algorithm.
func NewNSGA3Algorithm(rng *Source, objectives int) *NSGA3Algorithm {
	n := referencePointCountFor(objectives)
	return &NSGA3Algorithm{RefPoints: GenerateReferencePoints(rng, n, objectives)}
}

func referencePointCountFor(objectives int) int {
	n := 4 * objectives
	if n < 12 {
		n = 12
	}
	return n
}

func (a *NSGA3Algorithm) Prepare(fitness FitnessMatrix, generation, maxGen int, rng *Source) {
	a.state.tournamentSize = a.TournamentSize
	if a.state.tournamentSize == 0 {
		a.state.tournamentSize = 2
	}
	a.state.prepareRankAndCrowding(fitness)

	n := len(fitness)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	normalized := normalizeObjectives(fitness, idx)
	assign := AssignReferenceDirections(normalized, a.RefPoints)

	a.niche = make([]int, len(a.RefPoints))
	a.refIdx = make([]int, n)
	a.distSq = make([]float64, n)
	for i, as := range assign {
		a.refIdx[i] = as.RefIndex
		a.distSq[i] = as.DistSq
		a.niche[as.RefIndex]++
	}
}

func (a *NSGA3Algorithm) Select(fitness FitnessMatrix, rng *Source) int {
	candidates := rng.UniqueInts(a.state.tournamentSize, len(a.state.rank))
	best := candidates[0]
	for _, c := range candidates[1:] {
		if a.better(c, best) {
			best = c
		}
	}
	return best
}

func (a *NSGA3Algorithm) better(c, best int) bool {
	if a.state.rank[c] != a.state.rank[best] {
		return a.state.rank[c] < a.state.rank[best]
	}
	if a.niche[a.refIdx[c]] != a.niche[a.refIdx[best]] {
		return a.niche[a.refIdx[c]] < a.niche[a.refIdx[best]]
	}
	return a.distSq[c] < a.distSq[best]
}

func (a *NSGA3Algorithm) Survive(parents, children Population, n int, rng *Source) []int {
	return NSGA3Survivor{RefPoints: a.RefPoints}.Survive(parents, children, n, rng)
}

// AlgorithmFactory names a registered driver constructor. This mirrors
// the teacher's variant-registry pattern (mayfly's variantRegistry /
// AlgorithmVariant in selector.go), retargeted from Mayfly variants to GA
// drivers.
type AlgorithmFactory func(objectives int, rng *Source) (Algorithm, error)

var algorithmRegistry = map[string]AlgorithmFactory{
	"single-objective": func(objectives int, rng *Source) (Algorithm, error) {
		if objectives != 1 {
			return nil, fmt.Errorf("goevo: single-objective algorithm requires exactly 1 objective, got %d", objectives)
		}
		tournament, err := NewTournamentSelection(2)
		if err != nil {
			return nil, err
		}
		return &SingleObjectiveAlgorithm{Selection: tournament, Survivor: KeepBestSurvivor{}}, nil
	},
	"nsga2": func(objectives int, rng *Source) (Algorithm, error) {
		if objectives < 2 {
			return nil, fmt.Errorf("goevo: nsga2 requires >= 2 objectives, got %d", objectives)
		}
		return &NSGA2Algorithm{}, nil
	},
	"nsga3": func(objectives int, rng *Source) (Algorithm, error) {
		if objectives < 2 {
			return nil, fmt.Errorf("goevo: nsga3 requires >= 2 objectives, got %d", objectives)
		}
		return NewNSGA3Algorithm(rng, objectives), nil
	},
}

// NewAlgorithm builds a registered algorithm driver by name ("single-objective",
// "nsga2", "nsga3"). Names are the public seam mentioned in spec §9 for
// dynamic dispatch at the outermost configuration layer; the drivers
// themselves are ordinary statically-typed structs.
func NewAlgorithm(name string, objectives int, rng *Source) (Algorithm, error) {
	factory, ok := algorithmRegistry[name]
	if !ok {
		return nil, fmt.Errorf("goevo: unknown algorithm %q", name)
	}
	return factory(objectives, rng)
}
