package goevo

import "testing"

func TestMaxGenerationsStopsAtMax(t *testing.T) {
	s := MaxGenerations{Max: 10}
	if s.ShouldStop(EngineState{Generation: 9}) {
		t.Error("MaxGenerations(10) stopped one generation early")
	}
	if !s.ShouldStop(EngineState{Generation: 10}) {
		t.Error("MaxGenerations(10) did not stop at the maximum")
	}
}

func TestMaxEvaluationsStopsAtMax(t *testing.T) {
	s := MaxEvaluations{Max: 100}
	if s.ShouldStop(EngineState{Evaluations: 99}) {
		t.Error("MaxEvaluations(100) stopped one evaluation early")
	}
	if !s.ShouldStop(EngineState{Evaluations: 100}) {
		t.Error("MaxEvaluations(100) did not stop at the maximum")
	}
}

func TestStallDetectorStopsAfterPatience(t *testing.T) {
	s := &StallDetector{Patience: 3, MinDelta: 0.01}
	pop := func(best float64) Population {
		return Population{{Chromosome: Chromosome{0}, Fitness: []float64{best}, Evaluated: true}}
	}
	if s.ShouldStop(EngineState{Population: pop(1.0)}) {
		t.Error("StallDetector stopped on its first (initializing) call")
	}
	if s.ShouldStop(EngineState{Population: pop(1.0)}) {
		t.Error("StallDetector stopped after only 1 stalled generation")
	}
	if s.ShouldStop(EngineState{Population: pop(1.0)}) {
		t.Error("StallDetector stopped after only 2 stalled generations")
	}
	if !s.ShouldStop(EngineState{Population: pop(1.0)}) {
		t.Error("StallDetector did not stop after Patience stalled generations")
	}
}

func TestStallDetectorResetsOnImprovement(t *testing.T) {
	s := &StallDetector{Patience: 2, MinDelta: 0.01}
	pop := func(best float64) Population {
		return Population{{Chromosome: Chromosome{0}, Fitness: []float64{best}, Evaluated: true}}
	}
	s.ShouldStop(EngineState{Population: pop(1.0)})
	s.ShouldStop(EngineState{Population: pop(1.0)}) // one stall
	if s.ShouldStop(EngineState{Population: pop(5.0)}) {
		t.Error("StallDetector should reset its stall counter on improvement")
	}
	if s.ShouldStop(EngineState{Population: pop(5.0)}) {
		t.Error("StallDetector should need a fresh Patience window after improving")
	}
}

// countingStopCondition records how many times ShouldStop was called, to
// verify And/Or never short-circuit.
type countingStopCondition struct {
	calls int
	stop  bool
}

func (c *countingStopCondition) ShouldStop(EngineState) bool {
	c.calls++
	return c.stop
}

func TestAndStopConditionEvaluatesEveryMember(t *testing.T) {
	a := &countingStopCondition{stop: false}
	b := &countingStopCondition{stop: true}
	and := AndStopCondition{Conditions: []StopCondition{a, b}}
	if and.ShouldStop(EngineState{}) {
		t.Error("AndStopCondition stopped when one member disagreed")
	}
	if a.calls != 1 || b.calls != 1 {
		t.Errorf("AndStopCondition should evaluate every member every call; calls=(%d,%d)", a.calls, b.calls)
	}
}

func TestAndStopConditionStopsWhenAllAgree(t *testing.T) {
	a := &countingStopCondition{stop: true}
	b := &countingStopCondition{stop: true}
	and := AndStopCondition{Conditions: []StopCondition{a, b}}
	if !and.ShouldStop(EngineState{}) {
		t.Error("AndStopCondition did not stop when every member agreed")
	}
}

func TestOrStopConditionEvaluatesEveryMember(t *testing.T) {
	a := &countingStopCondition{stop: true}
	b := &countingStopCondition{stop: false}
	or := OrStopCondition{Conditions: []StopCondition{a, b}}
	if !or.ShouldStop(EngineState{}) {
		t.Error("OrStopCondition did not stop when one member agreed")
	}
	if a.calls != 1 || b.calls != 1 {
		t.Errorf("OrStopCondition should evaluate every member every call, even after an early true; calls=(%d,%d)", a.calls, b.calls)
	}
}

func TestOrStopConditionFalseWhenNoneAgree(t *testing.T) {
	a := &countingStopCondition{stop: false}
	b := &countingStopCondition{stop: false}
	or := OrStopCondition{Conditions: []StopCondition{a, b}}
	if or.ShouldStop(EngineState{}) {
		t.Error("OrStopCondition stopped when no member agreed")
	}
}
