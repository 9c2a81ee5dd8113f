package goevo

import "math"

// Crossover recombines two parents into two children (spec §4.E.3).
// Implementations must trigger with probability Pc; when not triggered
// they return the parents unchanged. Children always satisfy the
// encoding's invariants.
type Crossover interface {
	Cross(p1, p2 Candidate, rng *Source) (Candidate, Candidate, error)
}

func checkSameLength(operator string, p1, p2 Candidate) error {
	if len(p1.Chromosome) != len(p2.Chromosome) {
		return newOperatorError(operator, "parent chromosomes must be the same length")
	}
	return nil
}

func unchanged(p1, p2 Candidate) (Candidate, Candidate) {
	return p1.Clone(), p2.Clone()
}

// --- binary ---

// SinglePointCrossover swaps the tail of both chromosomes after one cut
// point.
type SinglePointCrossover struct{ Pc float64 }

func (c SinglePointCrossover) Cross(p1, p2 Candidate, rng *Source) (Candidate, Candidate, error) {
	if err := checkSameLength("SinglePointCrossover", p1, p2); err != nil {
		return Candidate{}, Candidate{}, err
	}
	if !rng.Bernoulli(c.Pc) {
		a, b := unchanged(p1, p2)
		return a, b, nil
	}
	cut := rng.UniformInt(1, len(p1.Chromosome)-1)
	return splitAt(p1, p2, []int{cut})
}

// TwoPointCrossover swaps the segment between two cut points.
type TwoPointCrossover struct{ Pc float64 }

func (c TwoPointCrossover) Cross(p1, p2 Candidate, rng *Source) (Candidate, Candidate, error) {
	if err := checkSameLength("TwoPointCrossover", p1, p2); err != nil {
		return Candidate{}, Candidate{}, err
	}
	if !rng.Bernoulli(c.Pc) {
		a, b := unchanged(p1, p2)
		return a, b, nil
	}
	l := len(p1.Chromosome)
	c1 := rng.UniformInt(1, l-1)
	c2 := rng.UniformInt(1, l-1)
	if c1 > c2 {
		c1, c2 = c2, c1
	}
	return splitAt(p1, p2, []int{c1, c2})
}

// NPointCrossover swaps alternating segments delimited by N distinct cut
// points.
type NPointCrossover struct {
	Pc float64
	N  int
}

func (c NPointCrossover) Cross(p1, p2 Candidate, rng *Source) (Candidate, Candidate, error) {
	if err := checkSameLength("NPointCrossover", p1, p2); err != nil {
		return Candidate{}, Candidate{}, err
	}
	if !rng.Bernoulli(c.Pc) {
		a, b := unchanged(p1, p2)
		return a, b, nil
	}
	l := len(p1.Chromosome)
	n := c.N
	if n > l-1 {
		n = l - 1
	}
	cuts := rng.UniqueInts(n, l-1)
	for i := range cuts {
		cuts[i]++ // shift into [1, l-1]
	}
	return splitAt(p1, p2, cuts)
}

func splitAt(p1, p2 Candidate, cuts []int) (Candidate, Candidate, error) {
	sortInts(cuts)
	child1 := p1.Chromosome.Clone()
	child2 := p2.Chromosome.Clone()
	swap := false
	lastCut := 0
	for _, cut := range append(cuts, len(child1)) {
		if swap {
			for i := lastCut; i < cut; i++ {
				child1[i], child2[i] = child2[i], child1[i]
			}
		}
		swap = !swap
		lastCut = cut
	}
	return candidateFrom(child1, p1, p2), candidateFrom(child2, p1, p2), nil
}

func sortInts(xs []int) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}

// UniformCrossover swaps each gene independently with probability 0.5.
type UniformCrossover struct{ Pc float64 }

func (c UniformCrossover) Cross(p1, p2 Candidate, rng *Source) (Candidate, Candidate, error) {
	if err := checkSameLength("UniformCrossover", p1, p2); err != nil {
		return Candidate{}, Candidate{}, err
	}
	if !rng.Bernoulli(c.Pc) {
		a, b := unchanged(p1, p2)
		return a, b, nil
	}
	child1 := p1.Chromosome.Clone()
	child2 := p2.Chromosome.Clone()
	for i := range child1 {
		if rng.Bernoulli(0.5) {
			child1[i], child2[i] = child2[i], child1[i]
		}
	}
	return candidateFrom(child1, p1, p2), candidateFrom(child2, p1, p2), nil
}

func candidateFrom(chromosome Chromosome, parentForEquality ...Candidate) Candidate {
	c := NewCandidate(chromosome)
	for _, p := range parentForEquality {
		if p.Evaluated && p.Chromosome.Equal(chromosome) {
			c.Evaluated = true
			c.Fitness = append([]float64(nil), p.Fitness...)
			return c
		}
	}
	return c
}

// --- real bounded ---

// ArithmeticCrossover produces children as convex combinations of the
// parents: child1 = a*p1+(1-a)*p2, child2 = (1-a)*p1+a*p2, a ~ U[0,1).
type ArithmeticCrossover struct{ Pc float64 }

func (c ArithmeticCrossover) Cross(p1, p2 Candidate, rng *Source) (Candidate, Candidate, error) {
	if err := checkSameLength("ArithmeticCrossover", p1, p2); err != nil {
		return Candidate{}, Candidate{}, err
	}
	if !rng.Bernoulli(c.Pc) {
		a, b := unchanged(p1, p2)
		return a, b, nil
	}
	alpha := rng.Float64()
	child1 := make(Chromosome, len(p1.Chromosome))
	child2 := make(Chromosome, len(p1.Chromosome))
	for i := range child1 {
		x1, x2 := p1.Chromosome[i], p2.Chromosome[i]
		child1[i] = alpha*x1 + (1-alpha)*x2
		child2[i] = (1-alpha)*x1 + alpha*x2
	}
	return NewCandidate(child1), NewCandidate(child2), nil
}

// BLXAlphaCrossover samples each child gene uniformly on
// [min-alpha*r, max+alpha*r] where r is the parents' gap, then clamps to
// bounds.
type BLXAlphaCrossover struct {
	Pc, Alpha float64
	Encoding  RealEncoding
}

func (c BLXAlphaCrossover) Cross(p1, p2 Candidate, rng *Source) (Candidate, Candidate, error) {
	if err := checkSameLength("BLXAlphaCrossover", p1, p2); err != nil {
		return Candidate{}, Candidate{}, err
	}
	if len(p1.Chromosome) != len(c.Encoding.Bounds) {
		return Candidate{}, Candidate{}, newOperatorError("BLXAlphaCrossover", "chromosome length must match bounds vector length")
	}
	if !rng.Bernoulli(c.Pc) {
		a, b := unchanged(p1, p2)
		return a, b, nil
	}
	child1 := make(Chromosome, len(p1.Chromosome))
	child2 := make(Chromosome, len(p1.Chromosome))
	for i := range child1 {
		lo, hi := p1.Chromosome[i], p2.Chromosome[i]
		if lo > hi {
			lo, hi = hi, lo
		}
		ext := c.Alpha * (hi - lo)
		child1[i] = rng.UniformFloat(lo-ext, hi+ext)
		child2[i] = rng.UniformFloat(lo-ext, hi+ext)
	}
	c.Encoding.Repair(child1)
	c.Encoding.Repair(child2)
	return NewCandidate(child1), NewCandidate(child2), nil
}

// SBXCrossover is simulated binary crossover with distribution index Eta.
type SBXCrossover struct {
	Pc, Eta  float64
	Encoding RealEncoding
}

func (c SBXCrossover) Cross(p1, p2 Candidate, rng *Source) (Candidate, Candidate, error) {
	if err := checkSameLength("SBXCrossover", p1, p2); err != nil {
		return Candidate{}, Candidate{}, err
	}
	if len(p1.Chromosome) != len(c.Encoding.Bounds) {
		return Candidate{}, Candidate{}, newOperatorError("SBXCrossover", "chromosome length must match bounds vector length")
	}
	if !rng.Bernoulli(c.Pc) {
		a, b := unchanged(p1, p2)
		return a, b, nil
	}
	u := rng.Float64()
	var beta float64
	if u <= 0.5 {
		beta = math.Pow(2*u, 1/(c.Eta+1))
	} else {
		beta = math.Pow(1/(2*(1-u)), 1/(c.Eta+1))
	}
	child1 := make(Chromosome, len(p1.Chromosome))
	child2 := make(Chromosome, len(p1.Chromosome))
	for i := range child1 {
		x1, x2 := p1.Chromosome[i], p2.Chromosome[i]
		child1[i] = 0.5 * ((1-beta)*x1 + (1+beta)*x2)
		child2[i] = 0.5 * ((1+beta)*x1 + (1-beta)*x2)
	}
	c.Encoding.Repair(child1)
	c.Encoding.Repair(child2)
	return NewCandidate(child1), NewCandidate(child2), nil
}

// WrightCrossover extrapolates from the better parent (by strict Pareto
// domination; parent1 wins ties) toward/away from the worse one.
type WrightCrossover struct {
	Pc       float64
	Encoding RealEncoding
}

func (c WrightCrossover) Cross(p1, p2 Candidate, rng *Source) (Candidate, Candidate, error) {
	if err := checkSameLength("WrightCrossover", p1, p2); err != nil {
		return Candidate{}, Candidate{}, err
	}
	if len(p1.Chromosome) != len(c.Encoding.Bounds) {
		return Candidate{}, Candidate{}, newOperatorError("WrightCrossover", "chromosome length must match bounds vector length")
	}
	if !rng.Bernoulli(c.Pc) {
		a, b := unchanged(p1, p2)
		return a, b, nil
	}
	better, worse := p1, p2
	if p1.Evaluated && p2.Evaluated && ParetoCompare(p1.Fitness, p2.Fitness) < 0 {
		better, worse = p2, p1
	}
	w1, w2 := rng.Float64(), rng.Float64()
	child1 := make(Chromosome, len(better.Chromosome))
	child2 := make(Chromosome, len(better.Chromosome))
	for i := range child1 {
		diff := better.Chromosome[i] - worse.Chromosome[i]
		child1[i] = w1*diff + better.Chromosome[i]
		child2[i] = w2*diff + better.Chromosome[i]
	}
	c.Encoding.Repair(child1)
	c.Encoding.Repair(child2)
	return NewCandidate(child1), NewCandidate(child2), nil
}

// --- permutation ---

// OrderCrossover (OX) copies a random segment from parent1 then fills the
// remaining positions with parent2's genes in their relative order.
type OrderCrossover struct{ Pc float64 }

func (c OrderCrossover) Cross(p1, p2 Candidate, rng *Source) (Candidate, Candidate, error) {
	if err := checkSameLength("OrderCrossover", p1, p2); err != nil {
		return Candidate{}, Candidate{}, err
	}
	if !rng.Bernoulli(c.Pc) {
		a, b := unchanged(p1, p2)
		return a, b, nil
	}
	child1 := orderCrossoverChild(p1.Chromosome, p2.Chromosome, rng)
	child2 := orderCrossoverChild(p2.Chromosome, p1.Chromosome, rng)
	return NewCandidate(child1), NewCandidate(child2), nil
}

func orderCrossoverChild(a, b Chromosome, rng *Source) Chromosome {
	n := len(a)
	c1, c2 := rng.UniformInt(0, n-1), rng.UniformInt(0, n-1)
	if c1 > c2 {
		c1, c2 = c2, c1
	}
	child := make(Chromosome, n)
	taken := make(map[int]bool, n)
	for i := c1; i <= c2; i++ {
		child[i] = a[i]
		taken[int(a[i]+0.5)] = true
	}
	pos := (c2 + 1) % n
	for _, g := range b {
		v := int(g + 0.5)
		if taken[v] {
			continue
		}
		child[pos] = float64(v)
		pos = (pos + 1) % n
	}
	return child
}

// PMXCrossover (partially-mapped crossover) exchanges a segment between
// two cut points and repairs conflicts via the segment's value mapping.
type PMXCrossover struct{ Pc float64 }

func (c PMXCrossover) Cross(p1, p2 Candidate, rng *Source) (Candidate, Candidate, error) {
	if err := checkSameLength("PMXCrossover", p1, p2); err != nil {
		return Candidate{}, Candidate{}, err
	}
	if !rng.Bernoulli(c.Pc) {
		a, b := unchanged(p1, p2)
		return a, b, nil
	}
	n := len(p1.Chromosome)
	c1, c2 := rng.UniformInt(0, n-1), rng.UniformInt(0, n-1)
	if c1 > c2 {
		c1, c2 = c2, c1
	}
	child1 := pmxChild(p1.Chromosome, p2.Chromosome, c1, c2)
	child2 := pmxChild(p2.Chromosome, p1.Chromosome, c1, c2)
	return NewCandidate(child1), NewCandidate(child2), nil
}

func pmxChild(a, b Chromosome, c1, c2 int) Chromosome {
	n := len(a)
	child := make(Chromosome, n)
	for i := range child {
		child[i] = -1
	}
	posOfInA := make(map[int]int, n)
	for i, g := range a {
		posOfInA[int(g+0.5)] = i
	}
	for i := c1; i <= c2; i++ {
		child[i] = a[i]
	}
	for i := c1; i <= c2; i++ {
		v := int(b[i] + 0.5)
		if contains(child, float64(v)) {
			continue
		}
		pos := i
		for {
			mappedVal := int(a[pos] + 0.5)
			newPos, ok := findValuePos(b, mappedVal)
			if !ok || newPos < c1 || newPos > c2 {
				pos = newPos
				break
			}
			pos = newPos
		}
		child[pos] = float64(v)
	}
	for i := range child {
		if child[i] == -1 {
			child[i] = b[i]
		}
	}
	return child
}

func contains(c Chromosome, v float64) bool {
	for _, g := range c {
		if g == v {
			return true
		}
	}
	return false
}

func findValuePos(c Chromosome, v int) (int, bool) {
	for i, g := range c {
		if int(g+0.5) == v {
			return i, true
		}
	}
	return -1, false
}

// CycleCrossover (CX) partitions positions into cycles linking parent1 and
// parent2, then alternates which parent fills each cycle per child.
type CycleCrossover struct{ Pc float64 }

func (c CycleCrossover) Cross(p1, p2 Candidate, rng *Source) (Candidate, Candidate, error) {
	if err := checkSameLength("CycleCrossover", p1, p2); err != nil {
		return Candidate{}, Candidate{}, err
	}
	if !rng.Bernoulli(c.Pc) {
		a, b := unchanged(p1, p2)
		return a, b, nil
	}
	n := len(p1.Chromosome)
	posOfInP1 := make(map[int]int, n)
	for i, g := range p1.Chromosome {
		posOfInP1[int(g+0.5)] = i
	}
	assigned := make([]bool, n)
	fromP1 := make([]bool, n)
	cycleIdx := 0
	for start := 0; start < n; start++ {
		if assigned[start] {
			continue
		}
		pos := start
		for {
			assigned[pos] = true
			fromP1[pos] = cycleIdx%2 == 0
			v := int(p2.Chromosome[pos] + 0.5)
			next := posOfInP1[v]
			if next == start {
				break
			}
			pos = next
		}
		cycleIdx++
	}
	child1 := make(Chromosome, n)
	child2 := make(Chromosome, n)
	for i := 0; i < n; i++ {
		if fromP1[i] {
			child1[i], child2[i] = p1.Chromosome[i], p2.Chromosome[i]
		} else {
			child1[i], child2[i] = p2.Chromosome[i], p1.Chromosome[i]
		}
	}
	return NewCandidate(child1), NewCandidate(child2), nil
}

// EdgeRecombinationCrossover (ERX) builds a neighbor-list per city from
// both parents and greedily walks it, preferring the neighbor with the
// fewest remaining edges.
type EdgeRecombinationCrossover struct{ Pc float64 }

func (c EdgeRecombinationCrossover) Cross(p1, p2 Candidate, rng *Source) (Candidate, Candidate, error) {
	if err := checkSameLength("EdgeRecombinationCrossover", p1, p2); err != nil {
		return Candidate{}, Candidate{}, err
	}
	if !rng.Bernoulli(c.Pc) {
		a, b := unchanged(p1, p2)
		return a, b, nil
	}
	child1 := erxChild(p1.Chromosome, p2.Chromosome, rng)
	child2 := erxChild(p2.Chromosome, p1.Chromosome, rng)
	return NewCandidate(child1), NewCandidate(child2), nil
}

func erxChild(a, b Chromosome, rng *Source) Chromosome {
	n := len(a)
	neighbors := make(map[int]map[int]bool, n)
	addEdges := func(c Chromosome) {
		for i, g := range c {
			v := int(g + 0.5)
			left := int(c[(i-1+n)%n] + 0.5)
			right := int(c[(i+1)%n] + 0.5)
			if neighbors[v] == nil {
				neighbors[v] = make(map[int]bool)
			}
			neighbors[v][left] = true
			neighbors[v][right] = true
		}
	}
	addEdges(a)
	addEdges(b)

	current := int(a[0] + 0.5)
	child := make([]int, 0, n)
	visited := make(map[int]bool, n)
	child = append(child, current)
	visited[current] = true
	for len(child) < n {
		for v := range neighbors {
			delete(neighbors[v], current)
		}
		list := neighbors[current]
		best, bestCount := -1, 1<<30
		candidates := make([]int, 0, len(list))
		for v := range list {
			if !visited[v] {
				candidates = append(candidates, v)
			}
		}
		sortInts(candidates)
		for _, v := range candidates {
			count := len(neighbors[v])
			if count < bestCount {
				best, bestCount = v, count
			}
		}
		if best == -1 {
			for v := 0; v < n; v++ {
				if !visited[v] {
					best = v
					break
				}
			}
		}
		current = best
		child = append(child, current)
		visited[current] = true
	}
	out := make(Chromosome, n)
	for i, v := range child {
		out[i] = float64(v)
	}
	return out
}
