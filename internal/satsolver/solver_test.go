package satsolver

import "testing"

func TestSolveSatisfiable(t *testing.T) {
	s := New(3)
	s.AddClause(1, 2, 3)
	s.AddClause(-1, 2)
	s.AddClause(-2, 3)
	model, ok := s.Solve()
	if !ok {
		t.Fatal("expected satisfiable instance")
	}
	for _, cl := range s.clauses {
		sat := false
		for _, lit := range cl {
			v := litVar(lit)
			if (lit > 0) == model.True(v) {
				sat = true
			}
		}
		if !sat {
			t.Fatalf("model does not satisfy clause %v", cl)
		}
	}
}

func TestSolveUnsatisfiable(t *testing.T) {
	s := New(1)
	s.AddClause(1)
	s.AddClause(-1)
	if _, ok := s.Solve(); ok {
		t.Fatal("expected unsatisfiable instance")
	}
}

func TestSolveUnitPropagationChain(t *testing.T) {
	s := New(4)
	s.AddClause(1)
	s.AddClause(-1, 2)
	s.AddClause(-2, 3)
	s.AddClause(-3, 4)
	model, ok := s.Solve()
	if !ok {
		t.Fatal("expected satisfiable instance")
	}
	for v := 1; v <= 4; v++ {
		if !model.True(v) {
			t.Errorf("variable %d should be forced true by unit propagation", v)
		}
	}
}
