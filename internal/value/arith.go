package value

import (
	"math"
	"strconv"

	"github.com/csml-lang/csml-go/internal/langerr"
	"github.com/csml-lang/csml-go/internal/script"
)

// numeric attempts to read l as a float64, trying a numeric parse for
// Strings first (per spec §4.D: "String tries numeric parse").
func numeric(l *Literal) (float64, bool) {
	switch l.Kind {
	case IntKind:
		return float64(l.Int), true
	case FloatKind:
		return l.Float, true
	case StringKind:
		if f, err := strconv.ParseFloat(l.Str, 64); err == nil {
			return f, true
		}
		return 0, false
	case BoolKind:
		if l.Bool {
			return 1, false
		}
		return 0, false
	}
	return 0, false
}

// isIntish reports whether both operands should be combined as Int
// rather than widened to Float.
func isIntish(a, b *Literal) bool {
	return a.Kind == IntKind && b.Kind == IntKind
}

// IsEq implements total equality: two primitives of different kinds
// compare equal only when semantically equivalent (Int 3 == Float 3.0,
// String "3" == Int 3 via numeric parse).
func IsEq(a, b *Literal) bool {
	if a.Kind == b.Kind {
		switch a.Kind {
		case StringKind:
			return a.Str == b.Str
		case IntKind:
			return a.Int == b.Int
		case FloatKind:
			return a.Float == b.Float
		case BoolKind:
			return a.Bool == b.Bool
		case NullKind:
			return true
		case ArrayKind:
			if len(a.Arr) != len(b.Arr) {
				return false
			}
			for i := range a.Arr {
				if !IsEq(a.Arr[i], b.Arr[i]) {
					return false
				}
			}
			return true
		case ObjectKind:
			if len(a.ObjKeys) != len(b.ObjKeys) {
				return false
			}
			for _, k := range a.ObjKeys {
				bv, ok := b.Get(k)
				if !ok || !IsEq(a.Obj[k], bv) {
					return false
				}
			}
			return true
		case ClosureKind:
			return a.Closure == b.Closure
		}
	}
	// Cross-kind: numeric equivalence only.
	af, aok := numericStrict(a)
	bf, bok := numericStrict(b)
	if aok && bok {
		return af == bf
	}
	return false
}

// numericStrict is like numeric but does not coerce Bool, matching the
// "Int 3 == Float 3.0, String '3' == Int 3" cross-kind rule precisely.
func numericStrict(l *Literal) (float64, bool) {
	switch l.Kind {
	case IntKind:
		return float64(l.Int), true
	case FloatKind:
		return l.Float, true
	case StringKind:
		f, err := strconv.ParseFloat(l.Str, 64)
		return f, err == nil
	}
	return 0, false
}

// CmpResult is the outcome of a partial ordering comparison.
type CmpResult int

const (
	Less CmpResult = iota
	Equal
	Greater
	Incomparable
)

// Cmp implements partial ordering; returns Incomparable for object vs.
// scalar etc. Strings attempt numeric parse first for cross-kind
// comparison.
func Cmp(a, b *Literal) CmpResult {
	if a.Kind == StringKind && b.Kind == StringKind {
		if af, aok := numericStrict(a); aok {
			if bf, bok := numericStrict(b); bok {
				return cmpFloat(af, bf)
			}
		}
		switch {
		case a.Str < b.Str:
			return Less
		case a.Str > b.Str:
			return Greater
		default:
			return Equal
		}
	}
	if af, aok := numericStrict(a); aok {
		if bf, bok := numericStrict(b); bok {
			return cmpFloat(af, bf)
		}
	}
	if a.Kind == BoolKind && b.Kind == BoolKind {
		switch {
		case a.Bool == b.Bool:
			return Equal
		case !a.Bool:
			return Less
		default:
			return Greater
		}
	}
	return Incomparable
}

func cmpFloat(a, b float64) CmpResult {
	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		return Equal
	}
}

// Add implements `+`. Numeric primitives widen (Int+Float->Float);
// String tries a numeric parse, otherwise concatenates; two Objects
// merge (right wins on key conflict); two Arrays concatenate.
func Add(a, b *Literal, iv script.Interval) (*Literal, error) {
	if a.Kind == ObjectKind && b.Kind == ObjectKind {
		out := NewObject(a.ContentType)
		for _, k := range a.ObjKeys {
			out.Set(k, a.Obj[k].Clone())
		}
		for _, k := range b.ObjKeys {
			out.Set(k, b.Obj[k].Clone())
		}
		return out, nil
	}
	if a.Kind == ArrayKind && b.Kind == ArrayKind {
		out := append(append([]*Literal{}, a.Arr...), b.Arr...)
		return Array(out), nil
	}
	if a.Kind == StringKind || b.Kind == StringKind {
		if af, aok := numericStrict(a); aok {
			if bf, bok := numericStrict(b); bok {
				return numResult(af+bf, isIntish(a, b)), nil
			}
		}
		return String(ToDisplayString(a) + ToDisplayString(b)), nil
	}
	if isNumeric(a) && isNumeric(b) {
		af, _ := numeric(a)
		bf, _ := numeric(b)
		return numResult(af+bf, isIntish(a, b)), nil
	}
	return nil, langerr.New(langerr.IllegalOperation, iv, "cannot add %s and %s", a.Kind, b.Kind)
}

func isNumeric(l *Literal) bool { return l.Kind == IntKind || l.Kind == FloatKind || l.Kind == BoolKind }

func numResult(f float64, intish bool) *Literal {
	if intish {
		return Int(int64(f))
	}
	return Float(f)
}

func binaryArith(name string, a, b *Literal, iv script.Interval, op func(x, y float64) (float64, error)) (*Literal, error) {
	af, aok := numeric(a)
	bf, bok := numeric(b)
	if !aok || !bok {
		return nil, langerr.New(langerr.IllegalOperation, iv, "cannot %s %s and %s", name, a.Kind, b.Kind)
	}
	r, err := op(af, bf)
	if err != nil {
		return nil, err
	}
	return numResult(r, isIntish(a, b)), nil
}

func Sub(a, b *Literal, iv script.Interval) (*Literal, error) {
	return binaryArith("subtract", a, b, iv, func(x, y float64) (float64, error) { return x - y, nil })
}

func Mul(a, b *Literal, iv script.Interval) (*Literal, error) {
	return binaryArith("multiply", a, b, iv, func(x, y float64) (float64, error) { return x * y, nil })
}

func Div(a, b *Literal, iv script.Interval) (*Literal, error) {
	return binaryArith("divide", a, b, iv, func(x, y float64) (float64, error) {
		if y == 0 {
			return 0, langerr.New(langerr.DivisionByZero, iv, "division by zero")
		}
		return x / y, nil
	})
}

// Mod implements true mathematical remainder for every numeric
// combination, including the Float%Int and Int%Float cross-kind cases
// the source implementation confuses with multiplication (see
// DESIGN.md open question 3 — that bug is intentionally not
// reproduced here).
func Mod(a, b *Literal, iv script.Interval) (*Literal, error) {
	return binaryArith("take the remainder of", a, b, iv, func(x, y float64) (float64, error) {
		if y == 0 {
			return 0, langerr.New(langerr.DivisionByZero, iv, "division by zero")
		}
		return math.Mod(x, y), nil
	})
}
