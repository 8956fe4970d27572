// Package satsolver implements a small DPLL boolean satisfiability solver:
// unit propagation plus chronological backtracking over a CNF clause set.
//
// No third-party SAT/SMT library appears anywhere in the retrieved example
// pack (see DESIGN.md), and every constraint the encoder emits (section 4.6)
// is in fact propositional, not theory-specific, so a compact hand-rolled
// solver is the right scope for this component rather than a dependency on
// an external SMT binary.
package satsolver

import "fmt"

// Literal is a signed variable reference: positive n asserts variable n,
// negative n asserts its negation. Variables are numbered from 1.
type Literal int

// Clause is a disjunction of literals.
type Clause []Literal

// Solver holds a growing CNF instance over variables 1..nVars; EnsureVar
// can raise nVars after construction.
type Solver struct {
	nVars   int
	clauses []Clause
}

// New creates a solver over variables 1..nVars.
func New(nVars int) *Solver {
	return &Solver{nVars: nVars}
}

// AddClause appends a disjunction to the instance.
func (s *Solver) AddClause(lits ...Literal) {
	s.clauses = append(s.clauses, append(Clause(nil), lits...))
}

// EnsureVar grows the variable count to at least n, for callers that
// allocate variable ids before knowing the final count.
func (s *Solver) EnsureVar(n int) {
	if n > s.nVars {
		s.nVars = n
	}
}

// Model is a satisfying assignment, 1-indexed by variable; Model[0] is
// unused.
type Model []bool

// True reports the truth value assigned to variable v.
func (m Model) True(v int) bool {
	if v <= 0 || v >= len(m) {
		return false
	}
	return m[v]
}

const (
	unassigned int8 = 0
	assignedT  int8 = 1
	assignedF  int8 = -1
)

// Solve runs DPLL with unit propagation and returns the first satisfying
// model found, or ok=false if the instance is unsatisfiable.
func (s *Solver) Solve() (Model, bool) {
	assign := make([]int8, s.nVars+1)
	ok := s.search(assign)
	if !ok {
		return nil, false
	}
	model := make(Model, s.nVars+1)
	for v := 1; v <= s.nVars; v++ {
		model[v] = assign[v] == assignedT
	}
	return model, true
}

func (s *Solver) search(assign []int8) bool {
	work := append([]int8(nil), assign...)
	if !s.propagate(work) {
		return false
	}

	v := s.pickUnassigned(work)
	if v == 0 {
		copy(assign, work)
		return true
	}

	for _, val := range [2]int8{assignedT, assignedF} {
		trial := append([]int8(nil), work...)
		trial[v] = val
		if s.search(trial) {
			copy(assign, trial)
			return true
		}
	}
	return false
}

// propagate applies unit propagation to a fixed point, reporting false on
// conflict. It mutates assign in place.
func (s *Solver) propagate(assign []int8) bool {
	changed := true
	for changed {
		changed = false
		for _, cl := range s.clauses {
			status, unit := evalClause(cl, assign)
			switch status {
			case clauseConflict:
				return false
			case clauseUnit:
				v, val := litVar(unit), litSign(unit)
				assign[v] = val
				changed = true
			}
		}
	}
	return true
}

func (s *Solver) pickUnassigned(assign []int8) int {
	for v := 1; v <= s.nVars; v++ {
		if assign[v] == unassigned {
			return v
		}
	}
	return 0
}

const (
	clauseSAT = iota
	clauseUnit
	clauseConflict
	clauseUnresolved
)

func evalClause(cl Clause, assign []int8) (int, Literal) {
	unassignedCount := 0
	var lastUnassigned Literal
	for _, lit := range cl {
		v := litVar(lit)
		val := assign[v]
		if val == unassigned {
			unassignedCount++
			lastUnassigned = lit
			continue
		}
		if (lit > 0 && val == assignedT) || (lit < 0 && val == assignedF) {
			return clauseSAT, 0
		}
	}
	switch unassignedCount {
	case 0:
		return clauseConflict, 0
	case 1:
		return clauseUnit, lastUnassigned
	default:
		return clauseUnresolved, 0
	}
}

func litVar(l Literal) int {
	if l < 0 {
		return int(-l)
	}
	return int(l)
}

func litSign(l Literal) int8 {
	if l < 0 {
		return assignedF
	}
	return assignedT
}

func (s *Solver) String() string {
	return fmt.Sprintf("satsolver: %d vars, %d clauses", s.nVars, len(s.clauses))
}
