package value

import (
	"fmt"
	"strconv"

	"github.com/csml-lang/csml-go/internal/langerr"
	"github.com/csml-lang/csml-go/internal/script"
)

// AccessRight marks whether a method may mutate its receiver.
type AccessRight int

const (
	Read AccessRight = iota
	Write
)

// Args binds a method call's arguments, either positionally
// ("arg0", "arg1", …) or by name — never a mixture (spec §4.D).
type Args map[string]*Literal

// BuildArgs binds values to Args. names[i] == "" marks a positional
// argument; a mixture of positional and named values is an error.
func BuildArgs(values []*Literal, names []string) (Args, error) {
	anyNamed, anyPositional := false, false
	for _, n := range names {
		if n == "" {
			anyPositional = true
		} else {
			anyNamed = true
		}
	}
	if anyNamed && anyPositional {
		return nil, fmt.Errorf("cannot mix positional and named arguments")
	}
	out := Args{}
	for i, v := range values {
		if anyNamed {
			out[names[i]] = v
		} else {
			out[fmt.Sprintf("arg%d", i)] = v
		}
	}
	return out, nil
}

// Pos returns the i-th positional argument.
func (a Args) Pos(i int) (*Literal, bool) {
	v, ok := a["arg"+strconv.Itoa(i)]
	return v, ok
}

// Named returns a named argument.
func (a Args) Named(name string) (*Literal, bool) {
	v, ok := a[name]
	return v, ok
}

// MethodFunc is a dispatched method: it may read and, if its table
// entry grants Write, mutate self.
type MethodFunc func(self *Literal, args Args, iv script.Interval) (*Literal, error)

// MethodEntry pairs a method with its access right.
type MethodEntry struct {
	Fn     MethodFunc
	Access AccessRight
}

type methodTable map[string]MethodEntry

var (
	stringMethods  methodTable
	arrayMethods   methodTable
	objectGeneric  methodTable
	objectHTTP     methodTable
	objectJWT      methodTable
	objectBase64   methodTable
	objectHex      methodTable
	objectEvent    methodTable
	intFloatShared methodTable
)

// tableForObject selects the per-content-type dispatch table for an
// Object Literal, per spec §4.D.
func tableForObject(contentType string) methodTable {
	switch contentType {
	case CTHttp:
		return objectHTTP
	case CTJwt:
		return objectJWT
	case CTBase64:
		return objectBase64
	case CTHex:
		return objectHex
	case CTEvent:
		return objectEvent
	default:
		return objectGeneric
	}
}

func tableFor(l *Literal) methodTable {
	switch l.Kind {
	case StringKind:
		return stringMethods
	case ArrayKind:
		return arrayMethods
	case ObjectKind:
		return tableForObject(l.ContentType)
	case IntKind, FloatKind:
		return intFloatShared
	}
	return nil
}

// DoExec dispatches a method call by name against self, per spec
// §4.D. For an event object whose method is not found in the event
// table, dispatch cascades to the event's "text" or "payload" member's
// own dispatch table — this cascading lookup is a contract an
// implementation must reproduce.
func DoExec(self *Literal, name string, args Args, iv script.Interval) (*Literal, error) {
	table := tableFor(self)
	if table != nil {
		if entry, ok := table[name]; ok {
			return entry.Fn(self, args, iv)
		}
	}
	if self.Kind == ObjectKind && self.ContentType == CTEvent {
		if fallback, ok := self.Get("text"); ok {
			if v, err := DoExec(fallback, name, args, iv); err == nil {
				return v, nil
			}
		}
		if fallback, ok := self.Get("payload"); ok {
			if v, err := DoExec(fallback, name, args, iv); err == nil {
				return v, nil
			}
		}
	}
	return nil, langerr.New(langerr.UndefinedMethod, iv, "no method %q on %s", name, self.Kind)
}
