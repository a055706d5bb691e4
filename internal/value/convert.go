package value

import (
	"encoding/json"
	"strconv"
)

// AsBool implements truthiness: String always true, Int positive,
// Float normal (non-zero), Array/Object always true, Null false.
func AsBool(l *Literal) bool {
	switch l.Kind {
	case StringKind:
		return true
	case IntKind:
		return l.Int > 0
	case FloatKind:
		return l.Float != 0
	case BoolKind:
		return l.Bool
	case NullKind:
		return false
	case ArrayKind, ObjectKind, ClosureKind:
		return true
	}
	return false
}

// ToDisplayString stringifies a Literal for use in string
// concatenation and interpolation.
func ToDisplayString(l *Literal) string {
	switch l.Kind {
	case StringKind:
		return l.Str
	case IntKind:
		return strconv.FormatInt(l.Int, 10)
	case FloatKind:
		return strconv.FormatFloat(l.Float, 'g', -1, 64)
	case BoolKind:
		return strconv.FormatBool(l.Bool)
	case NullKind:
		return "null"
	case ArrayKind, ObjectKind:
		b, _ := json.Marshal(ToJSON(l))
		return string(b)
	case ClosureKind:
		return "<closure>"
	}
	return ""
}

// ToJSON produces the deep JSON projection. Objects whose content_type
// is not in the well-known primitive set are wrapped as
// {content_type, content}.
func ToJSON(l *Literal) any {
	switch l.Kind {
	case StringKind:
		return l.Str
	case IntKind:
		return l.Int
	case FloatKind:
		return l.Float
	case BoolKind:
		return l.Bool
	case NullKind:
		return nil
	case ArrayKind:
		out := make([]any, len(l.Arr))
		for i, e := range l.Arr {
			out[i] = ToJSON(e)
		}
		return out
	case ObjectKind:
		body := map[string]any{}
		for _, k := range l.ObjKeys {
			body[k] = ToJSON(l.Obj[k])
		}
		if l.ContentType == CTObject || l.ContentType == "" {
			return body
		}
		return map[string]any{"content_type": l.ContentType, "content": body}
	case ClosureKind:
		return map[string]any{"content_type": CTObject, "content": "<closure>"}
	}
	return nil
}

// FromJSON is the inverse of ToJSON, reconstructing primitives
// (Closures cannot round-trip, per spec §8).
func FromJSON(v any) *Literal {
	switch x := v.(type) {
	case nil:
		return Null()
	case string:
		return String(x)
	case bool:
		return Bool(x)
	case float64:
		if x == float64(int64(x)) {
			return Int(int64(x))
		}
		return Float(x)
	case int:
		return Int(int64(x))
	case int64:
		return Int(x)
	case []any:
		items := make([]*Literal, len(x))
		for i, e := range x {
			items[i] = FromJSON(e)
		}
		return Array(items)
	case map[string]any:
		if ct, ok := x["content_type"].(string); ok {
			if content, ok := x["content"].(map[string]any); ok {
				obj := NewObject(ct)
				for k, v := range content {
					obj.Set(k, FromJSON(v))
				}
				return obj
			}
		}
		obj := NewObject(CTObject)
		for k, v := range x {
			obj.Set(k, FromJSON(v))
		}
		return obj
	}
	return Null()
}

// FormatMem implements the memory-store projection: at the root,
// objects wrap as {_content_type, _content}; at nested levels, only
// content is projected. Used for persistence round-trip.
func FormatMem(l *Literal, first bool) any {
	switch l.Kind {
	case ObjectKind:
		body := map[string]any{}
		for _, k := range l.ObjKeys {
			body[k] = FormatMem(l.Obj[k], false)
		}
		if first {
			return map[string]any{"_content_type": l.ContentType, "_content": body}
		}
		return body
	case ArrayKind:
		out := make([]any, len(l.Arr))
		for i, e := range l.Arr {
			out[i] = FormatMem(e, false)
		}
		return out
	default:
		return ToJSON(l)
	}
}

// LoadMem is the inverse of FormatMem: reconstructs the content_type
// tag from a root `{_content_type, _content}` wrapper.
func LoadMem(v any) *Literal {
	switch x := v.(type) {
	case map[string]any:
		if ct, ok := x["_content_type"].(string); ok {
			if content, ok := x["_content"].(map[string]any); ok {
				obj := NewObject(ct)
				for k, cv := range content {
					obj.Set(k, loadMemNested(cv))
				}
				return obj
			}
		}
		obj := NewObject(CTObject)
		for k, cv := range x {
			obj.Set(k, loadMemNested(cv))
		}
		return obj
	default:
		return FromJSON(v)
	}
}

func loadMemNested(v any) *Literal {
	switch x := v.(type) {
	case map[string]any:
		obj := NewObject(CTObject)
		for k, cv := range x {
			obj.Set(k, loadMemNested(cv))
		}
		return obj
	case []any:
		items := make([]*Literal, len(x))
		for i, e := range x {
			items[i] = loadMemNested(e)
		}
		return Array(items)
	default:
		return FromJSON(v)
	}
}
