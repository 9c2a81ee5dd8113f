package goevo

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// RunResult holds the outcome of one engine run.
type RunResult struct {
	BestFitness   float64
	Evaluations   int
	Generations   int
	ExecutionTime float64 // seconds
}

// AlgorithmStatistics summarizes a set of runs for one configuration.
type AlgorithmStatistics struct {
	Mean         float64
	Median       float64
	StdDev       float64
	Best         float64
	Worst        float64
	AvgEvals     float64
	AvgTime      float64
}

// WilcoxonResult holds a pairwise Wilcoxon signed-rank test outcome.
type WilcoxonResult struct {
	Name1, Name2 string
	Winner       string
	WStatistic   float64
	PValue       float64
	Significant  bool
}

// FriedmanTestResult holds the outcome of a Friedman test across every
// configuration under comparison.
type FriedmanTestResult struct {
	ChiSquare        float64
	PValue           float64
	Significant      bool
	DegreesOfFreedom int
}

// ComparisonResult is the full output of running ComparisonRunner.Compare.
type ComparisonResult struct {
	BenchmarkName string
	Names         []string
	RunResults    [][]RunResult
	Statistics    []AlgorithmStatistics
	Rankings      []int
	WilcoxonTests [][]WilcoxonResult
	Friedman      *FriedmanTestResult
	BestIndex     int
}

// namedConfig pairs a human-readable label with the EngineConfig it runs.
type namedConfig struct {
	name string
	cfg  *EngineConfig
}

// ComparisonRunner runs several EngineConfigs against the same fitness
// function over many seeds, and reports which performs best with
// statistical backing (Wilcoxon signed-rank pairwise tests, a Friedman
// test across all configurations).
type ComparisonRunner struct {
	configs []namedConfig
	Runs    int
	Verbose bool
}

// NewComparisonRunner returns a runner with 30 runs per configuration,
// the sample size the teacher's own comparison harness used for
// statistical significance.
func NewComparisonRunner() *ComparisonRunner {
	return &ComparisonRunner{Runs: 30}
}

// WithConfig registers one named configuration to compare. Seed is
// overwritten per run so every run gets an independent sub-stream.
func (cr *ComparisonRunner) WithConfig(name string, cfg *EngineConfig) *ComparisonRunner {
	cr.configs = append(cr.configs, namedConfig{name: name, cfg: cfg})
	return cr
}

// WithRuns sets the number of runs per configuration.
func (cr *ComparisonRunner) WithRuns(runs int) *ComparisonRunner {
	cr.Runs = runs
	return cr
}

// WithVerbose toggles progress printing.
func (cr *ComparisonRunner) WithVerbose(verbose bool) *ComparisonRunner {
	cr.Verbose = verbose
	return cr
}

// Compare runs every registered configuration cr.Runs times against
// fitnessFn and returns the full statistical comparison. Fitness is
// maximized, so higher BestFitness ranks better (rank 1).
func (cr *ComparisonRunner) Compare(ctx context.Context, benchmarkName string, fitnessFn FitnessFunc) (*ComparisonResult, error) {
	names := make([]string, len(cr.configs))
	runResults := make([][]RunResult, len(cr.configs))

	for i, nc := range cr.configs {
		names[i] = nc.name
		runResults[i] = make([]RunResult, cr.Runs)

		if cr.Verbose {
			fmt.Printf("running %s (%d runs)...\n", nc.name, cr.Runs)
		}

		for run := 0; run < cr.Runs; run++ {
			cfgCopy := *nc.cfg
			cfgCopy.Seed = int64(run) + 1

			engine, err := cfgCopy.Build(fitnessFn, nil)
			if err != nil {
				return nil, fmt.Errorf("goevo: building %q run %d: %w", nc.name, run, err)
			}

			start := time.Now()
			if err := engine.Run(ctx); err != nil {
				return nil, fmt.Errorf("goevo: running %q run %d: %w", nc.name, run, err)
			}
			elapsed := time.Since(start).Seconds()

			best := negInf
			for _, c := range engine.Population() {
				if c.Evaluated && c.Fitness[0] > best {
					best = c.Fitness[0]
				}
			}

			runResults[i][run] = RunResult{
				BestFitness:   best,
				Evaluations:   engine.evaluations,
				Generations:   engine.Generation(),
				ExecutionTime: elapsed,
			}
		}
	}

	statistics := make([]AlgorithmStatistics, len(cr.configs))
	for i := range cr.configs {
		statistics[i] = calculateAlgorithmStatistics(runResults[i])
	}

	rankings := rankByMeanFitnessDescending(statistics)
	bestIndex := 0
	for i, rank := range rankings {
		if rank == 1 {
			bestIndex = i
			break
		}
	}

	wilcoxon := make([][]WilcoxonResult, len(cr.configs))
	for i := range cr.configs {
		wilcoxon[i] = make([]WilcoxonResult, len(cr.configs))
		for j := range cr.configs {
			if i != j {
				wilcoxon[i][j] = wilcoxonSignedRankTest(names[i], names[j], runResults[i], runResults[j])
			}
		}
	}

	friedman := friedmanTest(runResults)

	return &ComparisonResult{
		BenchmarkName: benchmarkName,
		Names:         names,
		RunResults:    runResults,
		Statistics:    statistics,
		Rankings:      rankings,
		WilcoxonTests: wilcoxon,
		Friedman:      friedman,
		BestIndex:     bestIndex,
	}, nil
}

func calculateAlgorithmStatistics(runs []RunResult) AlgorithmStatistics {
	if len(runs) == 0 {
		return AlgorithmStatistics{}
	}
	fits := make([]float64, len(runs))
	evals, execTime := 0.0, 0.0
	for i, r := range runs {
		fits[i] = r.BestFitness
		evals += float64(r.Evaluations)
		execTime += r.ExecutionTime
	}
	sorted := append([]float64(nil), fits...)
	sort.Float64s(sorted)

	mean := Mean(fits)
	median := sorted[len(sorted)/2]
	if len(sorted)%2 == 0 {
		median = (sorted[len(sorted)/2-1] + sorted[len(sorted)/2]) / 2
	}

	return AlgorithmStatistics{
		Mean:     mean,
		Median:   median,
		StdDev:   StdDev(fits, mean),
		Best:     sorted[len(sorted)-1],
		Worst:    sorted[0],
		AvgEvals: evals / float64(len(runs)),
		AvgTime:  execTime / float64(len(runs)),
	}
}

func rankByMeanFitnessDescending(statistics []AlgorithmStatistics) []int {
	type indexedStat struct {
		index int
		mean  float64
	}
	indexed := make([]indexedStat, len(statistics))
	for i, s := range statistics {
		indexed[i] = indexedStat{i, s.Mean}
	}
	sort.Slice(indexed, func(i, j int) bool { return indexed[i].mean > indexed[j].mean })
	rankings := make([]int, len(statistics))
	for rank, item := range indexed {
		rankings[item.index] = rank + 1
	}
	return rankings
}

func wilcoxonSignedRankTest(name1, name2 string, runs1, runs2 []RunResult) WilcoxonResult {
	if len(runs1) != len(runs2) {
		return WilcoxonResult{Name1: name1, Name2: name2, Winner: "error: unequal sample sizes"}
	}
	n := len(runs1)
	var diffs, absDiffs []float64
	for i := 0; i < n; i++ {
		diff := runs1[i].BestFitness - runs2[i].BestFitness
		if math.Abs(diff) > 1e-10 {
			diffs = append(diffs, diff)
			absDiffs = append(absDiffs, math.Abs(diff))
		}
	}
	if len(diffs) == 0 {
		return WilcoxonResult{Name1: name1, Name2: name2, Winner: "tie"}
	}

	ranks := rankValues(absDiffs)
	wPlus, wMinus := 0.0, 0.0
	for i, diff := range diffs {
		if diff > 0 {
			wPlus += ranks[i]
		} else {
			wMinus += ranks[i]
		}
	}
	w := math.Min(wPlus, wMinus)

	nEff := float64(len(diffs))
	meanW := nEff * (nEff + 1) / 4
	stdW := math.Sqrt(nEff * (nEff + 1) * (2*nEff + 1) / 24)
	z := math.Abs((w - meanW) / stdW)
	pValue := 2 * (1 - normalCDF(z))
	significant := pValue < 0.05

	winner := "tie"
	if significant {
		if wPlus > wMinus {
			winner = name1 // higher fitness sums favor name1
		} else {
			winner = name2
		}
	}

	return WilcoxonResult{Name1: name1, Name2: name2, WStatistic: w, PValue: pValue, Significant: significant, Winner: winner}
}

func friedmanTest(runResults [][]RunResult) *FriedmanTestResult {
	if len(runResults) < 2 {
		return nil
	}
	k := len(runResults)
	n := len(runResults[0])

	ranks := make([][]float64, n)
	for run := 0; run < n; run++ {
		fits := make([]float64, k)
		for alg := 0; alg < k; alg++ {
			fits[alg] = -runResults[alg][run].BestFitness // rankValues ranks ascending; negate so higher fitness ranks better
		}
		ranks[run] = rankValues(fits)
	}

	rankSums := make([]float64, k)
	for alg := 0; alg < k; alg++ {
		for run := 0; run < n; run++ {
			rankSums[alg] += ranks[run][alg]
		}
	}

	sumSquares := 0.0
	for _, s := range rankSums {
		sumSquares += s * s
	}
	chiSquare := (12.0/(float64(n)*float64(k)*float64(k+1)))*sumSquares - 3*float64(n)*float64(k+1)
	df := k - 1
	pValue := 1 - chiSquareCDF(chiSquare, df)

	return &FriedmanTestResult{ChiSquare: chiSquare, PValue: pValue, Significant: pValue < 0.05, DegreesOfFreedom: df}
}

func rankValues(values []float64) []float64 {
	type indexedValue struct {
		index int
		value float64
	}
	indexed := make([]indexedValue, len(values))
	for i, v := range values {
		indexed[i] = indexedValue{i, v}
	}
	sort.Slice(indexed, func(i, j int) bool { return indexed[i].value < indexed[j].value })

	ranks := make([]float64, len(values))
	i := 0
	for i < len(indexed) {
		j := i
		for j < len(indexed) && math.Abs(indexed[j].value-indexed[i].value) < 1e-10 {
			j++
		}
		avgRank := 0.0
		for k := i; k < j; k++ {
			avgRank += float64(k + 1)
		}
		avgRank /= float64(j - i)
		for k := i; k < j; k++ {
			ranks[indexed[k].index] = avgRank
		}
		i = j
	}
	return ranks
}

func normalCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// chiSquareCDF approximates the chi-square CDF: a normal approximation for
// large df, a rough exponential approximation otherwise. Good enough for
// a significance flag, not meant for publication-grade p-values.
func chiSquareCDF(x float64, df int) float64 {
	if x <= 0 {
		return 0
	}
	if df > 30 {
		z := (x - float64(df)) / math.Sqrt(2*float64(df))
		return normalCDF(z)
	}
	return math.Min(math.Exp(-x/2)*math.Pow(x/2, float64(df)/2), 1.0)
}

// PrintReport prints a formatted comparison report to stdout.
func (cr *ComparisonResult) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Printf("Benchmark Comparison: %s\n", cr.BenchmarkName)
	fmt.Println(strings.Repeat("=", 80))

	fmt.Printf("%-20s | %10s | %10s | %10s | %10s | %10s | %5s\n",
		"Config", "Mean", "Median", "StdDev", "Best", "Worst", "Rank")
	fmt.Println(strings.Repeat("-", 80))
	for i, name := range cr.Names {
		s := cr.Statistics[i]
		fmt.Printf("%-20s | %10.4g | %10.4g | %10.4g | %10.4g | %10.4g | %5d\n",
			name, s.Mean, s.Median, s.StdDev, s.Best, s.Worst, cr.Rankings[i])
	}

	fmt.Printf("\nBest configuration: %s (rank 1)\n", cr.Names[cr.BestIndex])

	fmt.Println("\nSignificant pairwise differences (Wilcoxon signed-rank, alpha=0.05):")
	found := false
	for i := range cr.Names {
		for j := i + 1; j < len(cr.Names); j++ {
			t := cr.WilcoxonTests[i][j]
			if t.Significant {
				found = true
				fmt.Printf("%s vs %s: p=%.4f, winner: %s\n", t.Name1, t.Name2, t.PValue, t.Winner)
			}
		}
	}
	if !found {
		fmt.Println("no significant differences found.")
	}

	if cr.Friedman != nil {
		fmt.Printf("\nFriedman test: chi2=%.4f df=%d p=%.4f significant=%v\n",
			cr.Friedman.ChiSquare, cr.Friedman.DegreesOfFreedom, cr.Friedman.PValue, cr.Friedman.Significant)
	}
	fmt.Println(strings.Repeat("=", 80))
}
