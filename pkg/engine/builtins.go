package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/miter/pkg/geom"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms miter Lisp source code before passing
// it to zygomys:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal),
//     so keyword arguments like :from / :to need no global symbols.
//
//  2. Kebab-case to underscore: my-segment -> my_segment. zygomys
//     reads a hyphen inside an identifier as subtraction.
//
//  3. ; line comments become // comments, which is what zygomys
//     expects.
//
// All transformations respect string literal boundaries.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; comments to // comments.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when the hyphen sits between identifier characters, so
		// the minus operator survives.
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpPoint wraps a geom.Point3 so it can be passed between builtins.
type sexpPoint struct {
	pt geom.Point3
}

func (p *sexpPoint) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(point %g %g %g)", p.pt.X, p.pt.Y, p.pt.Z)
}
func (p *sexpPoint) Type() *zygo.RegisteredType { return nil }

// sexpSegment wraps a geom.Segment.
type sexpSegment struct {
	seg geom.Segment
}

func (s *sexpSegment) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(segment (point %g %g %g) (point %g %g %g))",
		s.seg.Start.X, s.seg.Start.Y, s.seg.Start.Z,
		s.seg.End.X, s.seg.End.Y, s.seg.End.Z)
}
func (s *sexpSegment) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string. Returns
// the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword
// argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value, treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toPoint extracts a Point3 from a sexpPoint.
func toPoint(s zygo.Sexp) (geom.Point3, error) {
	if p, ok := s.(*sexpPoint); ok {
		return p.pt, nil
	}
	return geom.Point3{}, fmt.Errorf("expected point, got %T (%s)", s, s.SexpString(nil))
}

// toSegment extracts a Segment from a sexpSegment.
func toSegment(s zygo.Sexp) (geom.Segment, error) {
	if seg, ok := s.(*sexpSegment); ok {
		return seg.seg, nil
	}
	return geom.Segment{}, fmt.Errorf("expected segment, got %T (%s)", s, s.SexpString(nil))
}

// twoSegments extracts the two segment arguments every query builtin
// takes.
func twoSegments(name string, args []zygo.Sexp) (geom.Segment, geom.Segment, error) {
	if len(args) != 2 {
		return geom.Segment{}, geom.Segment{},
			fmt.Errorf("%s requires exactly 2 segments, got %d arguments", name, len(args))
	}
	s1, err := toSegment(args[0])
	if err != nil {
		return geom.Segment{}, geom.Segment{}, fmt.Errorf("%s: first: %w", name, err)
	}
	s2, err := toSegment(args[1])
	if err != nil {
		return geom.Segment{}, geom.Segment{}, fmt.Errorf("%s: second: %w", name, err)
	}
	return s1, s2, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// evalState carries the per-evaluation intersector, so a script can
// adjust the tolerance for subsequent queries.
type evalState struct {
	ix *geom.Intersector
}

// registerBuiltins installs the miter DSL builtins into a zygomys
// environment. Query builtins record into rep as they run.
//
// Source code must be preprocessed with preprocessSource() before
// evaluation so that :keyword tokens are recognizable.
func registerBuiltins(env *zygo.Zlisp, rep *Report, st *evalState) {

	// -----------------------------------------------------------------------
	// (point 1 0 0)
	// -----------------------------------------------------------------------
	env.AddFunction("point", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("point requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("point: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("point: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("point: z: %w", err)
		}

		return &sexpPoint{pt: geom.Pt(x, y, z)}, nil
	})

	// -----------------------------------------------------------------------
	// (segment :from (point 0 0 0) :to (point 1 1 1))
	// (segment (point 0 0 0) (point 1 1 1))
	// -----------------------------------------------------------------------
	env.AddFunction("segment", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var start, end zygo.Sexp

		switch {
		case len(pa.kw) > 0:
			v, ok := pa.kw["from"]
			if !ok {
				return zygo.SexpNull, fmt.Errorf("segment: missing :from")
			}
			start = v
			v, ok = pa.kw["to"]
			if !ok {
				return zygo.SexpNull, fmt.Errorf("segment: missing :to")
			}
			end = v
		case len(pa.positional) == 2:
			start, end = pa.positional[0], pa.positional[1]
		default:
			return zygo.SexpNull, fmt.Errorf("segment requires :from/:to or two points, got %d arguments", len(args))
		}

		from, err := toPoint(start)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("segment: from: %w", err)
		}
		to, err := toPoint(end)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("segment: to: %w", err)
		}

		return &sexpSegment{seg: geom.Seg(from, to)}, nil
	})

	// -----------------------------------------------------------------------
	// (intersect s1 s2) -> intersection point, or nil when the
	// segments do not meet. Every call is recorded in the report.
	// -----------------------------------------------------------------------
	env.AddFunction("intersect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		s1, s2, err := twoSegments("intersect", args)
		if err != nil {
			return zygo.SexpNull, err
		}

		res, err := st.ix.Intersect(s1, s2)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("intersect: %w", err)
		}

		rep.Queries = append(rep.Queries, Query{
			Index: len(rep.Queries),
			Kind:  res.Kind,
			Point: res.Point,
			T:     res.T,
			S:     res.S,
		})

		if res.Kind == geom.KindNone {
			return zygo.SexpNull, nil
		}
		return &sexpPoint{pt: res.Point}, nil
	})

	// -----------------------------------------------------------------------
	// (intersects s1 s2) -> true/false
	// -----------------------------------------------------------------------
	env.AddFunction("intersects", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		s1, s2, err := twoSegments("intersects", args)
		if err != nil {
			return zygo.SexpNull, err
		}

		res, err := st.ix.Intersect(s1, s2)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("intersects: %w", err)
		}

		return &zygo.SexpBool{Val: res.Kind != geom.KindNone}, nil
	})

	// -----------------------------------------------------------------------
	// (separation s1 s2) -> distance between the carrying lines
	// -----------------------------------------------------------------------
	env.AddFunction("separation", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		s1, s2, err := twoSegments("separation", args)
		if err != nil {
			return zygo.SexpNull, err
		}

		dist, err := st.ix.LineSeparation(s1, s2)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("separation: %w", err)
		}

		return &zygo.SexpFloat{Val: dist}, nil
	})

	// -----------------------------------------------------------------------
	// (tolerance 1e-3) adjusts the tolerance for subsequent queries.
	// -----------------------------------------------------------------------
	env.AddFunction("tolerance", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("tolerance requires exactly 1 argument, got %d", len(args))
		}

		eps, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("tolerance: %w", err)
		}
		if eps <= 0 {
			return zygo.SexpNull, fmt.Errorf("tolerance must be positive, got %g", eps)
		}

		st.ix = geom.New(eps)
		return zygo.SexpNull, nil
	})
}
