package interp

import (
	"github.com/csml-lang/csml-go/internal/data"
	"github.com/csml-lang/csml-go/internal/langerr"
	"github.com/csml-lang/csml-go/internal/script"
	"github.com/csml-lang/csml-go/internal/value"
)

// frame is the interpreter's mutable per-turn (or per-call) working
// state: the persisted Context plus the step-local tier the spec
// calls step_vars, which never survives past the current turn/call.
type frame struct {
	ctx      *data.Context
	sink     data.Sink
	stepVars map[string]*value.Literal
}

func newFrame(ctx *data.Context, sink data.Sink) *frame {
	return &frame{ctx: ctx, sink: sink, stepVars: map[string]*value.Literal{}}
}

// callFrame builds the fresh scope a user-defined/imported/closure
// call runs in: shares api_info/step/flow/metadata/event, starts with
// an empty current and step_vars (spec §4.G "Function call scoping").
func (fr *frame) callFrame() *frame {
	child := fr.ctx.Clone()
	child.Current = value.NewObject(value.CTObject)
	return &frame{ctx: child, sink: fr.sink, stepVars: map[string]*value.Literal{}}
}

func cloneVars(m map[string]*value.Literal) map[string]*value.Literal {
	out := make(map[string]*value.Literal, len(m))
	for k, v := range m {
		out[k] = v.Clone()
	}
	return out
}

// tier identifies which memory tier an identifier resolved from, used
// to decide where a write lands and whether it is a persistent memory
// side-effect.
type tier int

const (
	tierStepVars tier = iota
	tierCurrent
	tierSynthetic // read-only accessor: _env, _metadata, _memory, event, component, flow_context
)

// resolveIdent implements spec §4.G "Variable resolution" steps 1-2:
// synthetic accessors first, then step_vars, then context.current,
// lazily creating a Null in step_vars when absent so path writes can
// build structure on demand.
func (fr *frame) resolveIdent(ip *Interp, name string, iv script.Interval) (*value.Literal, tier, error) {
	switch name {
	case "_env":
		return fr.envLiteral(), tierSynthetic, nil
	case "_metadata":
		return fr.metadataLiteral(), tierSynthetic, nil
	case "_memory":
		return fr.ctx.Current, tierSynthetic, nil
	case "flow_context":
		return fr.ctx.FlowContextLiteral(), tierSynthetic, nil
	case "event":
		if ip.Event == nil {
			return value.Null(), tierSynthetic, nil
		}
		return ip.Event.ToLiteral(), tierSynthetic, nil
	case "component":
		return fr.componentLiteral(), tierSynthetic, nil
	}
	if v, ok := fr.stepVars[name]; ok {
		return v, tierStepVars, nil
	}
	if v, ok := fr.ctx.Current.Get(name); ok {
		return v, tierCurrent, nil
	}
	n := value.Null()
	fr.stepVars[name] = n
	return n, tierStepVars, nil
}

func (fr *frame) envLiteral() *value.Literal {
	obj := value.NewObject(value.CTObject)
	if fr.ctx.APIInfo != nil {
		obj.Set("endpoint", value.String(fr.ctx.APIInfo.Endpoint))
	}
	return obj
}

func (fr *frame) metadataLiteral() *value.Literal {
	obj := value.NewObject(value.CTObject)
	for k, v := range fr.ctx.Metadata {
		obj.Set(k, v)
	}
	return obj
}

func (fr *frame) componentLiteral() *value.Literal {
	obj := value.NewObject(value.CTObject)
	obj.Set("flow", value.String(fr.ctx.Flow))
	obj.Set("step", value.String(fr.ctx.Step))
	return obj
}

// writeBack stores v into the tier an identifier was resolved from,
// emitting a persistent memory side-effect when the tier is
// context.current (spec §4.G "After resolution... if write, the
// source tier is updated and a memory side-effect is emitted if the
// tier was persistent").
func (fr *frame) writeBack(name string, t tier, v *value.Literal) {
	switch t {
	case tierStepVars:
		fr.stepVars[name] = v
	case tierCurrent:
		fr.ctx.Current.Set(name, v)
		fr.sink.Memory(data.MemoryUpdate{Key: name, Value: v})
	}
}

// asIndex coerces a numeric Literal to an int index, for Array/String
// indexed access; negative values are returned as-is and rejected by
// the callers' bounds checks.
func asIndex(l *value.Literal, iv script.Interval) (int, error) {
	switch l.Kind {
	case value.IntKind:
		return int(l.Int), nil
	case value.FloatKind:
		return int(l.Float), nil
	default:
		return 0, langerr.New(langerr.TypeMismatch, iv, "index must be numeric, got %s", l.Kind)
	}
}
