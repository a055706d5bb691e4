// Package value implements the Language's polymorphic runtime value
// system (spec §4.D): a tagged sum of primitive kinds, each exposing a
// uniform operation contract plus a per-kind method-dispatch table.
package value

import (
	"github.com/csml-lang/csml-go/internal/script"
)

// Kind is the primitive variant tag.
type Kind int

const (
	StringKind Kind = iota
	IntKind
	FloatKind
	BoolKind
	NullKind
	ArrayKind
	ObjectKind
	ClosureKind
)

func (k Kind) String() string {
	switch k {
	case StringKind:
		return "string"
	case IntKind:
		return "int"
	case FloatKind:
		return "float"
	case BoolKind:
		return "boolean"
	case NullKind:
		return "null"
	case ArrayKind:
		return "array"
	case ObjectKind:
		return "object"
	case ClosureKind:
		return "closure"
	}
	return "unknown"
}

// Closure is the payload of a ClosureKind Literal: a captured
// environment snapshot plus the declared parameters and body.
type Closure struct {
	Env    map[string]*Literal
	Params []string
	Body   *script.Block
}

// Literal is the runtime value: (content_type, primitive, interval).
// content_type is an orthogonal string label used for method dispatch
// and serialization; the Kind/payload fields determine the value's
// operational type. Literals are value types: Clone performs a
// structural (non-aliasing) copy so Arrays/Objects are safely owned by
// their enclosing Literal.
type Literal struct {
	ContentType string
	Kind        Kind
	Str         string
	Int         int64
	Float       float64
	Bool        bool
	Arr         []*Literal
	ObjKeys     []string // insertion order
	Obj         map[string]*Literal
	Closure     *Closure
	IV          script.Interval
}

// well-known content types used for dispatch-table selection and JSON framing.
const (
	CTText    = "text"
	CTString  = "string"
	CTObject  = "object"
	CTArray   = "array"
	CTInt     = "int"
	CTFloat   = "float"
	CTBoolean = "boolean"
	CTNull    = "null"
	CTEvent   = "event"
	CTHttp    = "http"
	CTJwt     = "jwt"
	CTBase64  = "base64"
	CTHex     = "hex"
	CTError   = "error"
)

func String(s string) *Literal { return &Literal{ContentType: CTString, Kind: StringKind, Str: s} }
func Int(n int64) *Literal     { return &Literal{ContentType: CTInt, Kind: IntKind, Int: n} }
func Float(f float64) *Literal { return &Literal{ContentType: CTFloat, Kind: FloatKind, Float: f} }
func Bool(b bool) *Literal     { return &Literal{ContentType: CTBoolean, Kind: BoolKind, Bool: b} }
func Null() *Literal           { return &Literal{ContentType: CTNull, Kind: NullKind} }

func Array(items []*Literal) *Literal {
	return &Literal{ContentType: CTArray, Kind: ArrayKind, Arr: items}
}

// NewObject returns an empty Object with the given content_type
// (defaults to CTObject when ct == "").
func NewObject(ct string) *Literal {
	if ct == "" {
		ct = CTObject
	}
	return &Literal{ContentType: ct, Kind: ObjectKind, Obj: map[string]*Literal{}}
}

// Set inserts or updates a key, preserving insertion order.
func (l *Literal) Set(key string, v *Literal) {
	if l.Obj == nil {
		l.Obj = map[string]*Literal{}
	}
	if _, exists := l.Obj[key]; !exists {
		l.ObjKeys = append(l.ObjKeys, key)
	}
	l.Obj[key] = v
}

// Get reads a key; ok is false when absent.
func (l *Literal) Get(key string) (*Literal, bool) {
	v, ok := l.Obj[key]
	return v, ok
}

func Closure_(env map[string]*Literal, params []string, body *script.Block) *Literal {
	return &Literal{ContentType: CTObject, Kind: ClosureKind, Closure: &Closure{Env: env, Params: params, Body: body}}
}

// Clone performs a structural (non-aliasing) deep copy.
func (l *Literal) Clone() *Literal {
	if l == nil {
		return nil
	}
	out := *l
	if l.Arr != nil {
		out.Arr = make([]*Literal, len(l.Arr))
		for i, e := range l.Arr {
			out.Arr[i] = e.Clone()
		}
	}
	if l.Obj != nil {
		out.Obj = make(map[string]*Literal, len(l.Obj))
		out.ObjKeys = append([]string(nil), l.ObjKeys...)
		for k, v := range l.Obj {
			out.Obj[k] = v.Clone()
		}
	}
	if l.Closure != nil {
		cl := &Closure{Params: append([]string(nil), l.Closure.Params...), Body: l.Closure.Body}
		cl.Env = make(map[string]*Literal, len(l.Closure.Env))
		for k, v := range l.Closure.Env {
			cl.Env[k] = v.Clone()
		}
		out.Closure = cl
	}
	return &out
}
