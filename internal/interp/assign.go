package interp

import (
	"github.com/csml-lang/csml-go/internal/langerr"
	"github.com/csml-lang/csml-go/internal/script"
	"github.com/csml-lang/csml-go/internal/value"
)

// pathAssign implements spec §4.G's write path: resolve the target's
// base identifier, navigate through all but the final segment
// (mutating containers in place, since Array/Object payloads are
// reference types owned by their Literal), apply the final segment as
// a write, then write the (possibly still-identical, for in-place
// container mutation) base value back to its source tier so a
// persistent-tier write emits its memory side effect.
func pathAssign(ip *Interp, fr *frame, target *script.PathExpr, val *value.Literal) error {
	ident, ok := target.Base.(*script.IdentExpr)
	if !ok {
		return langerr.New(langerr.Internal, target.IV, "assignment target has no identifier base")
	}
	baseVal, t, err := fr.resolveIdent(ip, ident.Name, ident.IV)
	if err != nil {
		return err
	}
	if len(target.Segments) == 0 {
		fr.writeBack(ident.Name, t, val)
		return nil
	}
	cur := baseVal
	for _, seg := range target.Segments[:len(target.Segments)-1] {
		cur, err = fr.readSegment(ip, cur, seg)
		if err != nil {
			return err
		}
	}
	last := target.Segments[len(target.Segments)-1]
	if err := writeFinalSegment(ip, fr, cur, last, val); err != nil {
		return err
	}
	fr.writeBack(ident.Name, t, baseVal)
	return nil
}

func writeFinalSegment(ip *Interp, fr *frame, cur *value.Literal, seg script.PathSegment, val *value.Literal) error {
	if seg.Index != nil {
		idx, err := evalExpr(ip, fr, *seg.Index)
		if err != nil {
			return err
		}
		return writeIndexed(cur, idx, val, seg.IV)
	}
	if cur.Kind != value.ObjectKind {
		return langerr.New(langerr.TypeMismatch, seg.IV, "cannot assign field %q on %s", seg.Field, cur.Kind)
	}
	cur.Set(seg.Field, val)
	return nil
}

func writeIndexed(cur, idx, val *value.Literal, iv script.Interval) error {
	switch cur.Kind {
	case value.ArrayKind:
		i, err := asIndex(idx, iv)
		if err != nil {
			return err
		}
		if i < 0 || i >= len(cur.Arr) {
			return langerr.New(langerr.IndexOutOfBounds, iv, "array index %d out of bounds (len %d)", i, len(cur.Arr))
		}
		cur.Arr[i] = val
		return nil
	case value.ObjectKind:
		cur.Set(value.ToDisplayString(idx), val)
		return nil
	case value.StringKind:
		i, err := asIndex(idx, iv)
		if err != nil {
			return err
		}
		runes := []rune(cur.Str)
		if i < 0 || i >= len(runes) {
			return langerr.New(langerr.IndexOutOfBounds, iv, "string index %d out of bounds (len %d)", i, len(runes))
		}
		repl := []rune(value.ToDisplayString(val))
		if len(repl) == 0 {
			return langerr.New(langerr.TypeMismatch, iv, "cannot write an empty string into a character index")
		}
		runes[i] = repl[0]
		cur.Str = string(runes)
		return nil
	default:
		return langerr.New(langerr.TypeMismatch, iv, "cannot index-assign into %s", cur.Kind)
	}
}
