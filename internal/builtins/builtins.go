// Package builtins implements the Language's top-level callable
// surface (spec §6): OneOf, Shuffle, Length, Find, Random, Floor, Fn,
// and the Http/Base64/Hex/Jwt tagged-object constructors. The chainable
// methods on those constructed objects (.send(), .sign(), .encode(), …)
// live in internal/value's per-content-type dispatch tables — this
// package only covers the bare calls that build or reduce values,
// grounded on internal/executor/tools.go's registry-of-callables
// pattern.
package builtins

import (
	"math"
	"math/rand"

	"github.com/csml-lang/csml-go/internal/data"
	"github.com/csml-lang/csml-go/internal/langerr"
	"github.com/csml-lang/csml-go/internal/script"
	"github.com/csml-lang/csml-go/internal/value"
)

// Func is one registered callable: it receives the turn's Context (for
// builtins that need api_info, e.g. Fn) plus the already-evaluated
// positional arguments.
type Func func(ctx *data.Context, args []*value.Literal, iv script.Interval) (*value.Literal, error)

// Registry is the name -> Func table consulted by the interpreter when
// a bare call does not resolve to a user-defined function, import, or
// closure binding.
type Registry map[string]Func

// Names reports the registry's callable names, used by the linter to
// populate its builtins set (spec §4.E rule 4).
func (r Registry) Names() map[string]bool {
	out := make(map[string]bool, len(r))
	for k := range r {
		out[k] = true
	}
	return out
}

// Default returns the registry specified by spec §6.
func Default() Registry {
	return Registry{
		"OneOf":   oneOf,
		"Shuffle": shuffle,
		"Length":  length,
		"Find":    find,
		"Random":  random,
		"Floor":   floor,
		"Fn":      fn,
		"Http":    httpCtor,
		"Base64":  base64Ctor,
		"Hex":     hexCtor,
		"Jwt":     jwtCtor,
	}
}

func oneOf(_ *data.Context, args []*value.Literal, iv script.Interval) (*value.Literal, error) {
	if len(args) == 0 {
		return value.Null(), nil
	}
	return args[rand.Intn(len(args))], nil
}

func shuffle(_ *data.Context, args []*value.Literal, iv script.Interval) (*value.Literal, error) {
	if len(args) != 1 || args[0].Kind != value.ArrayKind {
		return nil, langerr.New(langerr.TypeMismatch, iv, "Shuffle expects a single array argument")
	}
	src := args[0].Arr
	out := make([]*value.Literal, len(src))
	copy(out, src)
	rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return value.Array(out), nil
}

func length(_ *data.Context, args []*value.Literal, iv script.Interval) (*value.Literal, error) {
	if len(args) != 1 {
		return nil, langerr.New(langerr.TypeMismatch, iv, "Length expects one argument")
	}
	switch a := args[0]; a.Kind {
	case value.ArrayKind:
		return value.Int(int64(len(a.Arr))), nil
	case value.ObjectKind:
		return value.Int(int64(len(a.ObjKeys))), nil
	case value.StringKind:
		return value.Int(int64(len([]rune(a.Str)))), nil
	default:
		return nil, langerr.New(langerr.TypeMismatch, iv, "Length does not apply to %s", a.Kind)
	}
}

func find(_ *data.Context, args []*value.Literal, iv script.Interval) (*value.Literal, error) {
	if len(args) != 2 {
		return nil, langerr.New(langerr.TypeMismatch, iv, "Find expects (needle, in)")
	}
	needle, in := args[0], args[1]
	switch in.Kind {
	case value.ArrayKind:
		for i, e := range in.Arr {
			if value.IsEq(e, needle) {
				return value.Int(int64(i)), nil
			}
		}
		return value.Int(-1), nil
	case value.ObjectKind:
		_, ok := in.Get(value.ToDisplayString(needle))
		return value.Bool(ok), nil
	case value.StringKind:
		idx := indexOfRune(in.Str, value.ToDisplayString(needle))
		return value.Int(int64(idx)), nil
	default:
		return nil, langerr.New(langerr.TypeMismatch, iv, "Find does not apply to %s", in.Kind)
	}
}

func indexOfRune(haystack, needle string) int {
	hr, nr := []rune(haystack), []rune(needle)
	if len(nr) == 0 {
		return 0
	}
	for i := 0; i+len(nr) <= len(hr); i++ {
		match := true
		for j := range nr {
			if hr[i+j] != nr[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func random(_ *data.Context, args []*value.Literal, iv script.Interval) (*value.Literal, error) {
	return value.Float(rand.Float64()), nil
}

func floor(_ *data.Context, args []*value.Literal, iv script.Interval) (*value.Literal, error) {
	if len(args) != 1 {
		return nil, langerr.New(langerr.TypeMismatch, iv, "Floor expects one numeric argument")
	}
	var f float64
	switch args[0].Kind {
	case value.IntKind:
		return args[0], nil
	case value.FloatKind:
		f = args[0].Float
	default:
		return nil, langerr.New(langerr.TypeMismatch, iv, "Floor expects a numeric argument")
	}
	return value.Int(int64(math.Floor(f))), nil
}
