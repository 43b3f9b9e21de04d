package engine

import (
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/chazu/miter/pkg/geom"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-6
}

func TestEvaluateEmptyString(t *testing.T) {
	eng := NewEngine()

	rep, evalErrs, err := eng.Evaluate("")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if rep == nil {
		t.Fatal("expected non-nil report")
	}
	if rep.Count() != 0 {
		t.Errorf("expected empty report, got %d queries", rep.Count())
	}
}

func TestEvaluateWhitespaceOnly(t *testing.T) {
	eng := NewEngine()

	rep, evalErrs, err := eng.Evaluate("   \n\t  \n  ")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if rep == nil {
		t.Fatal("expected non-nil report")
	}
	if rep.Count() != 0 {
		t.Errorf("expected empty report, got %d queries", rep.Count())
	}
}

func TestEvaluatePlainExpression(t *testing.T) {
	eng := NewEngine()

	// Valid Lisp that performs no intersection queries.
	rep, evalErrs, err := eng.Evaluate("(+ 1 2)")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if rep.Count() != 0 {
		t.Errorf("expected empty report, got %d queries", rep.Count())
	}
}

func TestEvaluateParseError(t *testing.T) {
	eng := NewEngine()

	rep, evalErrs, err := eng.Evaluate("(intersect (segment")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors for unbalanced input")
	}
	if rep != nil {
		t.Errorf("expected nil report on eval failure, got %+v", rep)
	}
}

func TestEvaluateCrossingSegments(t *testing.T) {
	eng := NewEngine()

	rep, evalErrs, err := eng.Evaluate(`
		(intersect (segment (point 1 0 0) (point -1 0 0))
		           (segment (point 0 1 0) (point 0 -1 0)))
	`)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if rep.Count() != 1 {
		t.Fatalf("expected 1 query, got %d", rep.Count())
	}

	q := rep.Queries[0]
	if q.Kind != geom.KindPoint {
		t.Fatalf("kind = %v, want %v", q.Kind, geom.KindPoint)
	}
	if !almostEqual(q.Point.X, 0) || !almostEqual(q.Point.Y, 0) || !almostEqual(q.Point.Z, 0) {
		t.Errorf("point = (%g, %g, %g), want (0, 0, 0)", q.Point.X, q.Point.Y, q.Point.Z)
	}
	if !almostEqual(q.T, 0.5) || !almostEqual(q.S, 0.5) {
		t.Errorf("parameters = (%g, %g), want (0.5, 0.5)", q.T, q.S)
	}
}

func TestEvaluateParallelMiss(t *testing.T) {
	eng := NewEngine()

	rep, evalErrs, err := eng.Evaluate(`
		(intersect (segment (point 0 0 0) (point 1 0 0))
		           (segment (point 0 1 0) (point 1 1 0)))
	`)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if rep.Count() != 1 {
		t.Fatalf("expected 1 query, got %d", rep.Count())
	}
	if rep.Queries[0].Kind != geom.KindNone {
		t.Errorf("kind = %v, want %v", rep.Queries[0].Kind, geom.KindNone)
	}
}

func TestEvaluateCollinearOverlap(t *testing.T) {
	eng := NewEngine()

	rep, evalErrs, err := eng.Evaluate(`
		(intersect (segment (point 0 0 0) (point 1 1 1))
		           (segment (point 1 1 1) (point 2 2 2)))
	`)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if rep.Count() != 1 {
		t.Fatalf("expected 1 query, got %d", rep.Count())
	}

	q := rep.Queries[0]
	if q.Kind != geom.KindOverlap {
		t.Fatalf("kind = %v, want %v", q.Kind, geom.KindOverlap)
	}
	if !almostEqual(q.Point.X, 1) || !almostEqual(q.Point.Y, 1) || !almostEqual(q.Point.Z, 1) {
		t.Errorf("point = (%g, %g, %g), want (1, 1, 1)", q.Point.X, q.Point.Y, q.Point.Z)
	}
}

func TestEvaluateDegenerateSegment(t *testing.T) {
	eng := NewEngine()

	rep, evalErrs, err := eng.Evaluate(`
		(intersect (segment (point 1 1 1) (point 1 1 1))
		           (segment (point 0 1 0) (point 0 -1 0)))
	`)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors for degenerate segment")
	}
	found := false
	for _, e := range evalErrs {
		if strings.Contains(e.Message, "degenerate") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a degenerate-segment message, got %v", evalErrs)
	}
	if rep != nil {
		t.Errorf("expected nil report on eval failure, got %+v", rep)
	}
}

func TestEvaluateToleranceBuiltin(t *testing.T) {
	eng := NewEngine()

	// A 0.01 gap in z is a miss at the default tolerance but a hit
	// after widening it.
	rep, evalErrs, err := eng.Evaluate(`
		(tolerance 0.1)
		(intersect (segment (point 1 0 0.01) (point -1 0 0.01))
		           (segment (point 0 1 0) (point 0 -1 0)))
	`)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if rep.Count() != 1 {
		t.Fatalf("expected 1 query, got %d", rep.Count())
	}
	if rep.Queries[0].Kind != geom.KindPoint {
		t.Errorf("kind = %v, want %v", rep.Queries[0].Kind, geom.KindPoint)
	}
}

func TestEvaluateMultipleQueries(t *testing.T) {
	eng := NewEngine()

	rep, evalErrs, err := eng.Evaluate(`
		(intersect (segment (point 1 0 0) (point -1 0 0))
		           (segment (point 0 1 0) (point 0 -1 0)))
		(intersect (segment (point 0 0 0) (point 1 1 1))
		           (segment (point 2 2 2) (point 3 3 3)))
	`)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if rep.Count() != 2 {
		t.Fatalf("expected 2 queries, got %d", rep.Count())
	}
	if rep.Queries[0].Index != 0 || rep.Queries[1].Index != 1 {
		t.Errorf("query indices = %d, %d, want 0, 1", rep.Queries[0].Index, rep.Queries[1].Index)
	}
	if rep.Queries[0].Kind != geom.KindPoint {
		t.Errorf("first kind = %v, want %v", rep.Queries[0].Kind, geom.KindPoint)
	}
	if rep.Queries[1].Kind != geom.KindNone {
		t.Errorf("second kind = %v, want %v", rep.Queries[1].Kind, geom.KindNone)
	}
}

func TestEvaluateUndefinedSymbol(t *testing.T) {
	eng := NewEngine()

	rep, evalErrs, err := eng.Evaluate("(+ 1 undefined-symbol)")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if rep != nil {
		t.Fatal("expected nil report on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for undefined symbol")
	}
}

func TestEvalErrorImplementsError(t *testing.T) {
	e := EvalError{Line: 5, Message: "something went wrong"}
	s := e.Error()
	if !strings.Contains(s, "line 5") {
		t.Errorf("Error() should contain line info, got: %s", s)
	}
	if !strings.Contains(s, "something went wrong") {
		t.Errorf("Error() should contain message, got: %s", s)
	}

	e2 := EvalError{Message: "no location"}
	if strings.Contains(e2.Error(), "line") {
		t.Errorf("Error() with no line should not contain 'line', got: %s", e2.Error())
	}
}

func TestEvaluateGenerationDiscardsStale(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(2) // current generation

	ch := make(chan evalResult, 1)
	ch <- evalResult{}

	// Pass generation 1 (stale).
	_, _, err := waitWithTimeout(ch, 1, &mu, &gen)
	if err == nil {
		t.Fatal("expected error for stale generation")
	}
	if !strings.Contains(err.Error(), "superseded") {
		t.Errorf("expected superseded error, got: %v", err)
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{
			name:     "error on line format",
			msg:      "Error on line 5: unexpected token\n",
			wantLine: 5,
			wantMsg:  "unexpected token",
		},
		{
			name:     "no line info",
			msg:      "some generic error",
			wantLine: 0,
			wantMsg:  "some generic error",
		},
		{
			name:     "line format lowercase",
			msg:      "error on line 12: missing paren",
			wantLine: 12,
			wantMsg:  "missing paren",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errString(tt.msg))
			if len(errs) == 0 {
				t.Fatal("expected at least one error")
			}
			e := errs[0]
			if e.Line != tt.wantLine {
				t.Errorf("line = %d, want %d", e.Line, tt.wantLine)
			}
			if !strings.Contains(e.Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", e.Message, tt.wantMsg)
			}
		})
	}
}

// errString is a simple error type for testing.
type errString string

func (e errString) Error() string { return string(e) }

func TestEvaluateConcurrent(t *testing.T) {
	eng := NewEngine()
	src := `
		(intersect (segment (point 1 0 0) (point -1 0 0))
		           (segment (point 0 1 0) (point 0 -1 0)))
	`

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Concurrent evaluations may supersede each other; a
			// successful one must still produce a correct report.
			rep, evalErrs, err := eng.Evaluate(src)
			if err != nil || len(evalErrs) > 0 {
				return
			}
			if rep.Count() != 1 || rep.Queries[0].Kind != geom.KindPoint {
				t.Errorf("bad concurrent report: %+v", rep)
			}
		}()
	}
	wg.Wait()
}
