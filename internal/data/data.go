// Package data implements the Language's runtime data model (spec
// §3): Context, Event, Hold point, Message, and the memory tiers.
package data

import "github.com/csml-lang/csml-go/internal/value"

// APIInfo carries the credentials/endpoint used by the Http()/Fn()
// builtins, threaded through Context across turns.
type APIInfo struct {
	Endpoint    string
	Credentials map[string]string
}

// Hold is the atomic unit of resumability: an instruction_index into
// some step's block, plus the step-local variables captured at
// suspension time.
type Hold struct {
	InstructionIndex int
	StepVars         map[string]*value.Literal
}

// Context is the persisted execution state threaded across turns.
type Context struct {
	Current  *value.Literal // Object tier: `remember` writes land here
	Metadata map[string]*value.Literal
	APIInfo  *APIInfo
	Hold     *Hold
	Step     string
	Flow     string

	PreviousStep string
	PreviousFlow string
}

// NewContext returns an empty Context positioned at flow/step.
func NewContext(flow, step string) *Context {
	return &Context{
		Current:  value.NewObject(value.CTObject),
		Metadata: map[string]*value.Literal{},
		Step:     step,
		Flow:     flow,
	}
}

// FlowContextLiteral builds the read-only synthetic `flow_context`
// accessor object exposing current/previous flow and step.
func (c *Context) FlowContextLiteral() *value.Literal {
	obj := value.NewObject(value.CTObject)
	obj.Set("current_flow", value.String(c.Flow))
	obj.Set("current_step", value.String(c.Step))
	obj.Set("previous_flow", value.String(c.PreviousFlow))
	obj.Set("previous_step", value.String(c.PreviousStep))
	return obj
}

// Clone performs a structural copy, used when building a fresh
// function-call scope that shares api_info/step/flow/metadata but
// starts with empty current/step_vars.
func (c *Context) Clone() *Context {
	out := *c
	out.Current = c.Current.Clone()
	out.Metadata = make(map[string]*value.Literal, len(c.Metadata))
	for k, v := range c.Metadata {
		out.Metadata[k] = v.Clone()
	}
	if c.Hold != nil {
		h := *c.Hold
		out.Hold = &h
	}
	return &out
}

// Event is one inbound user message plus its payload, per spec §6.
type Event struct {
	ContentType  string
	Content      map[string]any
	ContentValue string
}

// ToLiteral exposes the Event inside the Language as the synthetic
// `event` object: event.get_type()/.get_content()/.match()/.match_array().
func (e *Event) ToLiteral() *value.Literal {
	obj := value.NewObject(value.CTEvent)
	obj.ContentType = e.ContentType
	obj.Set("text", value.String(e.ContentValue))
	obj.Set("content", value.FromJSON(map[string]any(e.Content)))
	return obj
}

// Message is one outbound message: (content_type, content JSON value).
type Message struct {
	ContentType string
	Content     any
}

// NewSayMessage wraps a Literal as emitted by a `say` statement,
// respecting its content_type (e.g. a plain string becomes
// {content_type: "text", content: {text: s}}).
func NewSayMessage(l *value.Literal) Message {
	if l.Kind == value.StringKind {
		return Message{ContentType: value.CTText, Content: map[string]any{"text": l.Str}}
	}
	return Message{ContentType: l.ContentType, Content: value.ToJSON(l)}
}

// NewDebugMessage builds the developer-inspection message for a
// `debug (...)` statement.
func NewDebugMessage(args []*value.Literal) Message {
	items := make([]any, len(args))
	for i, a := range args {
		items[i] = value.ToJSON(a)
	}
	return Message{ContentType: "debug", Content: map[string]any{"values": items}}
}

// NewErrorMessage builds the final message of a turn that ended in
// error (spec §7: content_type "error", content {error: message}).
func NewErrorMessage(msg string) Message {
	return Message{ContentType: value.CTError, Content: map[string]any{"error": msg}}
}

// MemoryUpdate is one side-channel record of a `remember`/`forget`/
// path-write that touched a persistent tier.
type MemoryUpdate struct {
	Key     string
	Value   *value.Literal // nil on forget
	Forget  bool
}

// Next is the turn's next-state directive.
type Next struct {
	Kind NextKind
	Flow string
	Step string
}

type NextKind int

const (
	NextContinue NextKind = iota
	NextGoto
	NextHold
	NextEnd
	NextError
)
