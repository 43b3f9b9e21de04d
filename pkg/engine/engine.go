// Package engine provides the Lisp evaluation engine for miter.
// It wraps zygomys in a sandboxed environment and evaluates geometry
// query scripts against the segment intersection routines, producing
// a Report of every query in the script.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/miter/pkg/geom"
)

// EvalError represents a non-fatal error encountered during
// evaluation, such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Query records one intersection query evaluated in a script. T and
// S are the parameters of Point along the two segments; they hold
// zeroes when Kind is KindNone.
type Query struct {
	Index int
	Kind  geom.Kind
	Point geom.Point3
	T     float64
	S     float64
}

// Report is the product of evaluating a script: the ordered record
// of every intersection query it performed.
type Report struct {
	Queries []Query
}

// Count returns the number of recorded queries.
func (r *Report) Count() int {
	return len(r.Queries)
}

// Engine wraps the zygomys interpreter for miter evaluation.
// It is safe for concurrent use; each call to Evaluate creates a
// fresh sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
}

// NewEngine creates a new Engine instance.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate takes Lisp source code and produces a Report of the
// intersection queries it performs. Each call creates a fresh
// zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns report + nil errors + nil error
//   - On parse/eval failure: returns nil report + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Report, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		rep, evalErrs, err := e.evaluate(source)
		ch <- evalResult{report: rep, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*Report, []EvalError, error) {
	// Empty source is a valid program that produces an empty report.
	if strings.TrimSpace(source) == "" {
		return &Report{}, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem
	// or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	rep := &Report{}
	st := &evalState{ix: geom.New(0)}
	registerBuiltins(env, rep, st)

	err := env.LoadString(preprocessSource(source))
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	_, err = env.Run()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	return rep, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more
// EvalError values, extracting line numbers where the message
// carries them.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{
			Line:    line,
			Message: strings.TrimSpace(m[2]),
		}}
	}

	if m := linePatternShort.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{
			Line:    line,
			Message: strings.TrimSpace(m[2]),
		}}
	}

	return []EvalError{{
		Message: strings.TrimSpace(msg),
	}}
}
