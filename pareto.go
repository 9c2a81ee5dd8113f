package goevo

import (
	"math"
	"sort"
)

// FastNonDominatedSort implements Deb's fast non-dominated sort (spec
// §4.C.1) over an N×M fitness matrix. The result covers every index in
// fitness exactly once, grouped by ascending rank; within a rank, entries
// are emitted in ascending index order so the output is deterministic.
func FastNonDominatedSort(fitness FitnessMatrix) []ParetoFront {
	n := len(fitness)
	if n == 0 {
		return nil
	}

	dominatedBy := make([]int, n)     // count of candidates that dominate i
	dominates := make([][]int, n)     // indices that i dominates

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			switch ParetoCompare(fitness[i], fitness[j]) {
			case -1: // i dominated by j
				dominatedBy[i]++
				dominates[j] = append(dominates[j], i)
			case 1: // j dominated by i
				dominatedBy[j]++
				dominates[i] = append(dominates[i], j)
			}
		}
	}

	result := make([]ParetoFront, 0, n)
	front := make([]int, 0)
	for i := 0; i < n; i++ {
		if dominatedBy[i] == 0 {
			front = append(front, i)
		}
	}

	rank := 0
	for len(front) > 0 {
		sort.Ints(front)
		next := make([]int, 0)
		for _, i := range front {
			result = append(result, ParetoFront{Index: i, Rank: rank})
			for _, j := range dominates[i] {
				dominatedBy[j]--
				if dominatedBy[j] == 0 {
					next = append(next, j)
				}
			}
		}
		front = next
		rank++
	}

	return result
}

// FrontsByRank regroups the flat output of FastNonDominatedSort into one
// index slice per rank, ordered by rank and, within a rank, by index.
func FrontsByRank(sorted []ParetoFront) [][]int {
	if len(sorted) == 0 {
		return nil
	}
	maxRank := 0
	for _, pf := range sorted {
		if pf.Rank > maxRank {
			maxRank = pf.Rank
		}
	}
	fronts := make([][]int, maxRank+1)
	for _, pf := range sorted {
		fronts[pf.Rank] = append(fronts[pf.Rank], pf.Index)
	}
	for _, f := range fronts {
		sort.Ints(f)
	}
	return fronts
}

// CrowdingDistance computes the NSGA-II crowding distance (spec §4.C.2) for
// every index in front, given the full fitness matrix. Boundary members of
// the front (min/max per objective) receive +Inf; this is intentional and
// preserves boundary diversity. The result maps front index -> distance,
// covering exactly the indices passed in.
func CrowdingDistance(fitness FitnessMatrix, front []int) map[int]float64 {
	dist := make(map[int]float64, len(front))
	for _, i := range front {
		dist[i] = 0
	}
	if len(front) == 0 {
		return dist
	}
	if len(front) <= 2 {
		for _, i := range front {
			dist[i] = posInf
		}
		return dist
	}

	m := len(fitness[front[0]])
	for d := 0; d < m; d++ {
		ordered := append([]int(nil), front...)
		sort.Slice(ordered, func(a, b int) bool {
			fa, fb := fitness[ordered[a]][d], fitness[ordered[b]][d]
			if fa != fb {
				return fa < fb
			}
			return ordered[a] < ordered[b]
		})

		dist[ordered[0]] = posInf
		dist[ordered[len(ordered)-1]] = posInf

		lo := fitness[ordered[0]][d]
		hi := fitness[ordered[len(ordered)-1]][d]
		rng := hi - lo
		if rng < 1e-6 {
			rng = 1e-6
		}

		for k := 1; k < len(ordered)-1; k++ {
			if dist[ordered[k]] == posInf {
				continue
			}
			gap := fitness[ordered[k+1]][d] - fitness[ordered[k-1]][d]
			dist[ordered[k]] += gap / rng
		}
	}
	return dist
}

var posInf = math.Inf(1)

// GenerateReferencePoints produces n points on the standard d-simplex with
// maximally spaced coverage (spec §4.C.3), built greedily from a candidate
// pool of size ratio*n-1 (ratio = max(10, 2d)).
func GenerateReferencePoints(rng *Source, n, d int) [][]float64 {
	ratio := 2 * d
	if ratio < 10 {
		ratio = 10
	}
	poolSize := ratio*n - 1
	if poolSize < 1 {
		poolSize = 1
	}

	candidates := make([][]float64, poolSize)
	for i := range candidates {
		candidates[i] = rng.Simplex(d)
	}

	selected := make([][]float64, 0, n)
	startIdx := rng.UniformInt(0, len(candidates)-1)
	selected = append(selected, candidates[startIdx])
	candidates = append(candidates[:startIdx], candidates[startIdx+1:]...)

	minDist := make([]float64, len(candidates))
	for i, c := range candidates {
		minDist[i] = SquaredEuclidean(c, selected[0])
	}

	for len(selected) < n && len(candidates) > 0 {
		best := 0
		for i := 1; i < len(candidates); i++ {
			if minDist[i] > minDist[best] {
				best = i
			}
		}
		chosen := candidates[best]
		selected = append(selected, chosen)

		candidates = append(candidates[:best], candidates[best+1:]...)
		minDist = append(minDist[:best], minDist[best+1:]...)

		for i, c := range candidates {
			d := SquaredEuclidean(c, chosen)
			if d < minDist[i] {
				minDist[i] = d
			}
		}
	}

	for len(selected) < n {
		selected = append(selected, rng.Simplex(d))
	}

	return selected
}

// ReferenceAssignment records, for one normalized objective vector, the
// index of its closest reference direction and the squared perpendicular
// distance to it (spec §4.C.4).
type ReferenceAssignment struct {
	RefIndex int
	DistSq   float64
}

// AssignReferenceDirections assigns each row of normalized (one normalized
// objective vector per candidate) to the reference direction in refs
// minimizing squared perpendicular distance, breaking ties by reference
// index.
func AssignReferenceDirections(normalized [][]float64, refs [][]float64) []ReferenceAssignment {
	out := make([]ReferenceAssignment, len(normalized))
	for i, p := range normalized {
		bestRef, bestDist := 0, SquaredPerpendicularDistance(p, refs[0])
		for r := 1; r < len(refs); r++ {
			d := SquaredPerpendicularDistance(p, refs[r])
			if d < bestDist {
				bestRef, bestDist = r, d
			}
		}
		out[i] = ReferenceAssignment{RefIndex: bestRef, DistSq: bestDist}
	}
	return out
}
