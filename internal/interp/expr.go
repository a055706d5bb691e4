package interp

import (
	"github.com/csml-lang/csml-go/internal/langerr"
	"github.com/csml-lang/csml-go/internal/script"
	"github.com/csml-lang/csml-go/internal/value"
)

// evalExpr reduces any expression node to a Literal.
func evalExpr(ip *Interp, fr *frame, e script.Expr) (*value.Literal, error) {
	switch n := e.(type) {
	case *script.IntLit:
		return value.Int(n.Value), nil
	case *script.FloatLit:
		return value.Float(n.Value), nil
	case *script.BoolLit:
		return value.Bool(n.Value), nil
	case *script.NullLit:
		return value.Null(), nil
	case *script.StringLit:
		return value.String(n.Value), nil
	case *script.ComplexString:
		s := ""
		for _, piece := range n.Pieces {
			if piece.Expr == nil {
				s += piece.Text
				continue
			}
			v, err := evalExpr(ip, fr, piece.Expr)
			if err != nil {
				return nil, err
			}
			s += value.ToDisplayString(v)
		}
		return value.String(s), nil
	case *script.IdentExpr:
		v, _, err := fr.resolveIdent(ip, n.Name, n.IV)
		return v, err
	case *script.ArrayLit:
		items := make([]*value.Literal, len(n.Elements))
		for i, el := range n.Elements {
			v, err := evalExpr(ip, fr, el)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return value.Array(items), nil
	case *script.ObjectLit:
		obj := value.NewObject(value.CTObject)
		for _, ent := range n.Entries {
			v, err := evalExpr(ip, fr, ent.Value)
			if err != nil {
				return nil, err
			}
			obj.Set(ent.Key, v)
		}
		return obj, nil
	case *script.InfixExpr:
		return evalInfix(ip, fr, n)
	case *script.PrefixNot:
		v, err := evalExpr(ip, fr, n.Operand)
		if err != nil {
			return nil, err
		}
		b := value.AsBool(v)
		for i := 0; i < n.Count; i++ {
			b = !b
		}
		return value.Bool(b), nil
	case *script.ClosureExpr:
		params := make([]string, len(n.Params))
		for i, p := range n.Params {
			params[i] = p.Text
		}
		return value.Closure_(cloneVars(fr.stepVars), params, n.Body), nil
	case *script.PathExpr:
		return evalPath(ip, fr, n)
	default:
		return nil, langerr.New(langerr.Internal, e.Interval(), "unhandled expression node %T", e)
	}
}

func evalInfix(ip *Interp, fr *frame, n *script.InfixExpr) (*value.Literal, error) {
	a, err := evalExpr(ip, fr, n.Left)
	if err != nil {
		return nil, err
	}
	b, err := evalExpr(ip, fr, n.Right)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case script.OrOr:
		return value.Bool(value.AsBool(a) || value.AsBool(b)), nil
	case script.AndAnd:
		return value.Bool(value.AsBool(a) && value.AsBool(b)), nil
	case script.Eq:
		return value.Bool(value.IsEq(a, b)), nil
	case script.NotEq:
		return value.Bool(!value.IsEq(a, b)), nil
	case script.MATCH:
		m := value.MatchRelation(a, b)
		if n.Not {
			m = !m
		}
		return value.Bool(m), nil
	case script.Lt, script.LtEq, script.Gt, script.GtEq:
		cmp := value.Cmp(a, b)
		if cmp == value.Incomparable {
			return nil, langerr.New(langerr.IllegalOperation, n.IV, "cannot compare %s and %s", a.Kind, b.Kind)
		}
		switch n.Op {
		case script.Lt:
			return value.Bool(cmp == value.Less), nil
		case script.LtEq:
			return value.Bool(cmp == value.Less || cmp == value.Equal), nil
		case script.Gt:
			return value.Bool(cmp == value.Greater), nil
		default:
			return value.Bool(cmp == value.Greater || cmp == value.Equal), nil
		}
	case script.Plus:
		return value.Add(a, b, n.IV)
	case script.Minus:
		return value.Sub(a, b, n.IV)
	case script.Star:
		return value.Mul(a, b, n.IV)
	case script.Slash:
		return value.Div(a, b, n.IV)
	case script.Percent:
		return value.Mod(a, b, n.IV)
	default:
		return nil, langerr.New(langerr.Internal, n.IV, "unhandled operator %s", n.Op)
	}
}

// evalPath reads a path expression per spec §4.G variable-resolution
// step 3: a nil Base marks a bare call (component/function/builtin
// invocation with no receiver); otherwise the base is reduced to a
// value and each segment is applied in turn (index, field lookup, or
// method call).
func evalPath(ip *Interp, fr *frame, e *script.PathExpr) (*value.Literal, error) {
	if e.Base == nil {
		seg := e.Segments[0]
		values, err := evalArgValues(ip, fr, seg.Args)
		if err != nil {
			return nil, err
		}
		return callBare(ip, fr, seg.Field, values, e.IV)
	}
	cur, err := evalExpr(ip, fr, e.Base)
	if err != nil {
		return nil, err
	}
	for _, seg := range e.Segments {
		cur, err = fr.readSegment(ip, cur, seg)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

// readSegment applies one non-final (or read-only) path segment to
// cur: index access, field lookup, or method dispatch.
func (fr *frame) readSegment(ip *Interp, cur *value.Literal, seg script.PathSegment) (*value.Literal, error) {
	if seg.Index != nil {
		idx, err := evalExpr(ip, fr, *seg.Index)
		if err != nil {
			return nil, err
		}
		return indexRead(cur, idx, seg.IV)
	}
	if seg.Call {
		values, names, err := evalArgsNamed(ip, fr, seg.Args)
		if err != nil {
			return nil, err
		}
		args, err := value.BuildArgs(values, names)
		if err != nil {
			return nil, langerr.New(langerr.TypeMismatch, seg.IV, "%s", err)
		}
		return value.DoExec(cur, seg.Field, args, seg.IV)
	}
	return fieldRead(cur, seg.Field, seg.IV)
}

func fieldRead(cur *value.Literal, field string, iv script.Interval) (*value.Literal, error) {
	if cur.Kind != value.ObjectKind {
		return nil, langerr.New(langerr.TypeMismatch, iv, "cannot access field %q on %s", field, cur.Kind)
	}
	if v, ok := cur.Get(field); ok {
		return v, nil
	}
	return value.Null(), nil
}

func indexRead(cur, idx *value.Literal, iv script.Interval) (*value.Literal, error) {
	switch cur.Kind {
	case value.ArrayKind:
		i, err := asIndex(idx, iv)
		if err != nil {
			return nil, err
		}
		if i < 0 || i >= len(cur.Arr) {
			return nil, langerr.New(langerr.IndexOutOfBounds, iv, "array index %d out of bounds (len %d)", i, len(cur.Arr))
		}
		return cur.Arr[i], nil
	case value.ObjectKind:
		key := value.ToDisplayString(idx)
		if v, ok := cur.Get(key); ok {
			return v, nil
		}
		return value.Null(), nil
	case value.StringKind:
		i, err := asIndex(idx, iv)
		if err != nil {
			return nil, err
		}
		runes := []rune(cur.Str)
		if i < 0 || i >= len(runes) {
			return nil, langerr.New(langerr.IndexOutOfBounds, iv, "string index %d out of bounds (len %d)", i, len(runes))
		}
		return value.String(string(runes[i])), nil
	default:
		return nil, langerr.New(langerr.TypeMismatch, iv, "cannot index into %s", cur.Kind)
	}
}

// evalArgValues evaluates a call's arguments positionally, used for
// bare calls (user functions, closures, builtins) which bind only by
// position, per spec §4.G "positional arguments bind to the
// function's declared parameter names".
func evalArgValues(ip *Interp, fr *frame, args []script.Arg) ([]*value.Literal, error) {
	out := make([]*value.Literal, len(args))
	for i, a := range args {
		v, err := evalExpr(ip, fr, a.Value)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// evalArgsNamed is like evalArgValues but also returns each argument's
// declared name (empty for positional), for method dispatch's
// positional-or-named binding (spec §4.D).
func evalArgsNamed(ip *Interp, fr *frame, args []script.Arg) ([]*value.Literal, []string, error) {
	values := make([]*value.Literal, len(args))
	names := make([]string, len(args))
	for i, a := range args {
		v, err := evalExpr(ip, fr, a.Value)
		if err != nil {
			return nil, nil, err
		}
		values[i] = v
		names[i] = a.Name
	}
	return values, names, nil
}
