package goevo

import "sort"

// Survivor picks which N of parents∪children make up the next generation
// (spec §4.E.2). It returns indices into the combined pool, where indices
// [0, len(parents)) name parents and [len(parents), len(parents)+len(children))
// name children.
type Survivor interface {
	Survive(parents, children Population, n int, rng *Source) []int
}

// KeepChildrenSurvivor takes the first n children, discarding parents.
type KeepChildrenSurvivor struct{}

func (KeepChildrenSurvivor) Survive(parents, children Population, n int, rng *Source) []int {
	out := make([]int, 0, n)
	offset := len(parents)
	for i := 0; i < n && i < len(children); i++ {
		out = append(out, offset+i)
	}
	return out
}

// ElitismSurvivor keeps the best K parents by first-objective fitness
// (stable by index), then fills the remainder with children in order.
type ElitismSurvivor struct {
	K int
}

func (s ElitismSurvivor) Survive(parents, children Population, n int, rng *Source) []int {
	k := s.K
	if k > len(parents) {
		k = len(parents)
	}
	if k > n {
		k = n
	}
	elite := bestByFirstObjective(parents, k)

	out := make([]int, 0, n)
	out = append(out, elite...)
	offset := len(parents)
	for i := 0; len(out) < n && i < len(children); i++ {
		out = append(out, offset+i)
	}
	return out
}

// KeepBestSurvivor keeps the overall best n of parents∪children by
// first-objective fitness, stable by index.
type KeepBestSurvivor struct{}

func (KeepBestSurvivor) Survive(parents, children Population, n int, rng *Source) []int {
	pool := append(Population{}, parents...)
	pool = append(pool, children...)
	return bestByFirstObjective(pool, n)
}

func bestByFirstObjective(pool Population, n int) []int {
	idx := make([]int, len(pool))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		fa, fb := pool[idx[a]].Fitness[0], pool[idx[b]].Fitness[0]
		if fa != fb {
			return fa > fb
		}
		return idx[a] < idx[b]
	})
	if n > len(idx) {
		n = len(idx)
	}
	return idx[:n]
}

// NSGA2Survivor fills the next population front-by-front from the
// non-dominated sort of parents∪children, splitting an overflowing front
// by descending crowding distance (ties by index).
type NSGA2Survivor struct{}

func (NSGA2Survivor) Survive(parents, children Population, n int, rng *Source) []int {
	pool := append(Population{}, parents...)
	pool = append(pool, children...)
	fitness := BuildFitnessMatrix(pool)

	sorted := FastNonDominatedSort(fitness)
	fronts := FrontsByRank(sorted)

	out := make([]int, 0, n)
	for _, front := range fronts {
		if len(out)+len(front) <= n {
			out = append(out, front...)
			continue
		}
		remaining := n - len(out)
		if remaining <= 0 {
			break
		}
		dist := CrowdingDistance(fitness, front)
		sort.Slice(front, func(a, b int) bool {
			da, db := dist[front[a]], dist[front[b]]
			if da != db {
				return da > db
			}
			return front[a] < front[b]
		})
		out = append(out, front[:remaining]...)
		break
	}
	return out
}

// NSGA3Survivor fills the next population front-by-front, splitting an
// overflowing front via normalization against the ideal point, ASF-derived
// intercepts, perpendicular assignment to reference directions, and niche
// counts (spec §4.E.2).
type NSGA3Survivor struct {
	RefPoints [][]float64
}

func (s NSGA3Survivor) Survive(parents, children Population, n int, rng *Source) []int {
	pool := append(Population{}, parents...)
	pool = append(pool, children...)
	fitness := BuildFitnessMatrix(pool)

	sorted := FastNonDominatedSort(fitness)
	fronts := FrontsByRank(sorted)

	out := make([]int, 0, n)
	var splitFront []int
	var committed []int
	for fi, front := range fronts {
		if len(out)+len(front) <= n {
			out = append(out, front...)
			continue
		}
		splitFront = front
		committed = append([]int(nil), out...)
		_ = fi
		break
	}
	if splitFront == nil {
		return out
	}
	remaining := n - len(committed)
	if remaining <= 0 {
		return committed
	}

	allSelected := append(append([]int(nil), committed...), splitFront...)
	normalized := normalizeObjectives(fitness, allSelected)

	assign := AssignReferenceDirections(normalized, s.RefPoints)

	niche := make([]int, len(s.RefPoints))
	committedSet := make(map[int]bool, len(committed))
	for _, idx := range committed {
		committedSet[idx] = true
	}
	for i, idx := range allSelected {
		if committedSet[idx] {
			niche[assign[i].RefIndex]++
		}
	}

	splitAssign := assign[len(committed):]
	remainingIdx := append([]int(nil), splitFront...)

	chosen := make([]int, 0, remaining)
	for len(chosen) < remaining && len(remainingIdx) > 0 {
		refIdx := minNicheRef(niche, splitAssign, remainingIdx, splitFront)
		best, bestPos := -1, -1
		bestDist := posInf
		for pos, idx := range remainingIdx {
			localPos := indexOf(splitFront, idx)
			if splitAssign[localPos].RefIndex != refIdx {
				continue
			}
			d := splitAssign[localPos].DistSq
			if d < bestDist || (d == bestDist && (best == -1 || idx < best)) {
				best, bestPos, bestDist = idx, pos, d
			}
		}
		if best == -1 {
			// no remaining member references refIdx; force it ineligible
			// by bumping its niche count so the next pass skips it.
			niche[refIdx] = 1 << 30
			continue
		}
		chosen = append(chosen, best)
		niche[refIdx]++
		remainingIdx = append(remainingIdx[:bestPos], remainingIdx[bestPos+1:]...)
	}

	out = append(committed, chosen...)
	return out
}

func minNicheRef(niche []int, assign []ReferenceAssignment, remainingIdx, splitFront []int) int {
	eligible := make(map[int]bool)
	for _, idx := range remainingIdx {
		pos := indexOf(splitFront, idx)
		eligible[assign[pos].RefIndex] = true
	}
	best, bestCount := -1, 1<<31-1
	for r, count := range niche {
		if !eligible[r] {
			continue
		}
		if count < bestCount {
			best, bestCount = r, count
		}
	}
	return best
}

func indexOf(xs []int, v int) int {
	for i, x := range xs {
		if x == v {
			return i
		}
	}
	return -1
}

// normalizeObjectives normalizes the fitness rows named by idx against the
// current ideal point (componentwise max, since fitness is maximized) and
// ASF-derived intercepts with unit-axis weights.
func normalizeObjectives(fitness FitnessMatrix, idx []int) [][]float64 {
	m := len(fitness[idx[0]])
	ideal := make([]float64, m)
	for j := range ideal {
		ideal[j] = fitness[idx[0]][j]
	}
	for _, i := range idx {
		for j := 0; j < m; j++ {
			if fitness[i][j] > ideal[j] {
				ideal[j] = fitness[i][j]
			}
		}
	}

	translated := make(map[int][]float64, len(idx))
	for _, i := range idx {
		row := make([]float64, m)
		for j := 0; j < m; j++ {
			row[j] = ideal[j] - fitness[i][j] // non-negative, 0 at the ideal point
		}
		translated[i] = row
	}

	intercepts := make([]float64, m)
	for j := 0; j < m; j++ {
		w := make([]float64, m)
		for k := range w {
			if k == j {
				w[k] = 1
			}
		}
		worst := 0.0
		for _, i := range idx {
			a := ASF(translated[i], make([]float64, m), w)
			if a > worst {
				worst = a
			}
		}
		if worst < 1e-10 {
			worst = 1e-10
		}
		intercepts[j] = worst
	}

	out := make([][]float64, len(idx))
	for k, i := range idx {
		row := make([]float64, m)
		for j := 0; j < m; j++ {
			row[j] = translated[i][j] / intercepts[j]
		}
		out[k] = row
	}
	return out
}
