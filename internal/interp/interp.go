// Package interp implements the tree-walking interpreter (spec §4.G):
// statement evaluation over the AST, scoped variable resolution across
// the three memory tiers, path-based read/write, loop and conditional
// control flow, function-call scoping, and the hold/resume protocol.
// Grounded on internal/executor's statement-dispatch-loop idiom and
// per-turn span shape, generalized from LLM-workflow steps to the
// Language's say/remember/goto/hold statements.
package interp

import (
	"context"

	"github.com/csml-lang/csml-go/internal/builtins"
	"github.com/csml-lang/csml-go/internal/data"
	"github.com/csml-lang/csml-go/internal/langerr"
	"github.com/csml-lang/csml-go/internal/logging"
	"github.com/csml-lang/csml-go/internal/script"
	"github.com/csml-lang/csml-go/internal/tracing"
	"github.com/csml-lang/csml-go/internal/value"
)

// maxGotoHops bounds the number of step transitions a single turn may
// perform before the interpreter aborts with an Internal error. The
// linter's cycle detection catches structurally infinite loops ahead
// of time; this is a last-resort runtime safety valve for gotos the
// linter cannot prove terminate (e.g. data-dependent targets),
// mirrored on executor/converge.go's bounded-iteration idiom.
const maxGotoHops = 1000

// Bot is the full set of parsed flows a turn may reference.
type Bot map[string]*script.Flow

// exitKind is the interpreter's non-error control-transfer sum (spec
// §4.G's exit_condition), orthogonal to langerr.Error.
type exitKind int

const (
	exitNone exitKind = iota
	exitBreak
	exitContinue
	exitGoto
	exitHold
	exitEnd
	exitReturn
)

// exitState carries the payload of whichever exitKind is set.
type exitState struct {
	kind      exitKind
	returnVal *value.Literal
	holdIndex int
}

// Interp holds the immutable inputs to one turn's evaluation: the bot,
// the registered builtins, and the inbound event.
type Interp struct {
	Bot      Bot
	Builtins builtins.Registry
	Event    *data.Event
	Sink     data.Sink
	Log      *logging.Logger
}

// New builds an Interp ready to run turns against bot.
func New(bot Bot, reg builtins.Registry) *Interp {
	if reg == nil {
		reg = builtins.Default()
	}
	return &Interp{Bot: bot, Builtins: reg, Log: logging.Default.WithComponent("interp")}
}

// Run drives one turn to completion: it resolves the entry step (the
// context's hold target if set, otherwise context.Step), walks it
// (resuming mid-block when a hold is present), and follows any Goto
// exits until the turn lands on Hold, End, Return, or Error.
func (ip *Interp) Run(ctx *data.Context, event *data.Event, sink data.Sink) (result data.Next) {
	if sink == nil {
		sink = data.DiscardSink{}
	}
	ip.Event = event
	ip.Sink = sink
	if ip.Log == nil {
		ip.Log = logging.Default.WithComponent("interp")
	}
	ip.Log.TurnStart(ctx.Flow, ctx.Step)
	if ctx.Hold != nil {
		ip.Log.HoldResume(ctx.Flow, ctx.Step, ctx.Hold.InstructionIndex)
	}

	tctx, turnSpan := tracing.StartTurnSpan(context.Background(), ctx.Flow, ctx.Step)
	var turnErr error
	defer func() {
		kind := [...]string{"Continue", "Goto", "Hold", "End", "Error"}[result.Kind]
		tracing.EndTurnSpan(turnSpan, kind, turnErr)
		ip.Log.TurnComplete(ctx.Flow, ctx.Step, kind, turnErr)
	}()

	fr := newFrame(ctx, sink)
	resumeIndex := -1
	if ctx.Hold != nil {
		resumeIndex = ctx.Hold.InstructionIndex
		for k, v := range ctx.Hold.StepVars {
			fr.stepVars[k] = v
		}
	}

	for hop := 0; ; hop++ {
		if hop >= maxGotoHops {
			turnErr = langerr.New(langerr.Internal, script.Interval{}, "exceeded maximum goto hops (%d)", maxGotoHops)
			return ip.finishError(ctx, sink, turnErr)
		}
		flow, ok := ip.Bot[ctx.Flow]
		if !ok {
			turnErr = langerr.New(langerr.Internal, script.Interval{}, "unknown flow %q", ctx.Flow)
			return ip.finishError(ctx, sink, turnErr)
		}
		step := findStep(flow, ctx.Step)
		if step == nil {
			turnErr = langerr.New(langerr.Internal, script.Interval{}, "unknown step %q in flow %q", ctx.Step, ctx.Flow)
			return ip.finishError(ctx, sink, turnErr)
		}

		ip.Log.StepStart(ctx.Flow, ctx.Step, resumeIndex >= 0)
		_, stepSpan := tracing.StartStepSpan(tctx, ctx.Flow, ctx.Step, resumeIndex >= 0)
		es, err := ip.execBlock(fr, step.Body, resumeIndex)
		tracing.EndStepSpan(stepSpan, err)
		resumeIndex = -1 // only the entry step honors a resume target
		if err != nil {
			turnErr = err
			ip.Log.StepEnd(ctx.Flow, ctx.Step, "Error", err)
			return ip.finishError(ctx, sink, err)
		}

		switch es.kind {
		case exitGoto:
			ip.Log.StepEnd(ctx.Flow, ctx.Step, "Goto", nil)
			ctx.Hold = nil
			sink.Next(data.Next{Kind: data.NextGoto, Flow: ctx.Flow, Step: ctx.Step})
			continue
		case exitHold:
			ip.Log.StepEnd(ctx.Flow, ctx.Step, "Hold", nil)
			ctx.Hold = &data.Hold{InstructionIndex: es.holdIndex, StepVars: cloneVars(fr.stepVars)}
			ip.Log.HoldSet(ctx.Flow, ctx.Step, es.holdIndex)
			next := data.Next{Kind: data.NextHold, Flow: ctx.Flow, Step: ctx.Step}
			sink.Hold(*ctx.Hold)
			sink.Next(next)
			return next
		default:
			// exitEnd, or normal fall-off-the-end-of-block completion
			// (spec scenario 1: a step with no goto/hold ends the
			// turn), or a defensive catch of Return/Break/Continue
			// escaping a bare step body — the linter guarantees those
			// cannot occur here, so they are treated the same as a
			// plain end rather than silently dropped.
			ip.Log.StepEnd(ctx.Flow, ctx.Step, "End", nil)
			ctx.Hold = nil
			next := data.Next{Kind: data.NextEnd}
			sink.Next(next)
			return next
		}
	}
}

func (ip *Interp) finishError(ctx *data.Context, sink data.Sink, err error) data.Next {
	msg := err.Error()
	sink.Message(data.NewErrorMessage(msg))
	sink.Error(msg)
	ctx.Hold = nil
	next := data.Next{Kind: data.NextError}
	sink.Next(next)
	return next
}

func findStep(flow *script.Flow, name string) *script.StepScope {
	for _, inst := range flow.Instructions {
		if ss, ok := inst.(*script.StepScope); ok && ss.Name.Text == name {
			return ss
		}
	}
	return nil
}

func findFunction(flow *script.Flow, name string) *script.FunctionScope {
	for _, inst := range flow.Instructions {
		if fs, ok := inst.(*script.FunctionScope); ok && fs.Name.Text == name {
			return fs
		}
	}
	return nil
}

func findImport(flow *script.Flow, name string) *script.ImportScope {
	for _, inst := range flow.Instructions {
		if is, ok := inst.(*script.ImportScope); ok && is.Name.Text == name {
			return is
		}
	}
	return nil
}
