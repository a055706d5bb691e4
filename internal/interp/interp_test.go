package interp

import (
	"testing"

	"github.com/csml-lang/csml-go/internal/builtins"
	"github.com/csml-lang/csml-go/internal/data"
	"github.com/csml-lang/csml-go/internal/script"
)

func mustParse(t *testing.T, flowName, src string) *script.Flow {
	t.Helper()
	flow, errs := script.ParseFlow(flowName, src)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors in %q: %v", flowName, errs)
	}
	return flow
}

func newInterp(bot Bot) *Interp {
	return New(bot, builtins.Default())
}

// Scenario 1: a step with a single say and no goto/hold ends the turn
// with a single say message and Next{End}.
func TestRun_SimpleSay(t *testing.T) {
	flow := mustParse(t, "main", `
start: {
  say "hello"
}
`)
	ip := newInterp(Bot{"main": flow})
	ctx := data.NewContext("main", "start")
	sink := &data.CollectingSink{}

	next := ip.Run(ctx, nil, sink)

	if next.Kind != data.NextEnd {
		t.Fatalf("expected NextEnd, got %v", next.Kind)
	}
	if len(sink.Messages) != 1 {
		t.Fatalf("expected exactly one message, got %d: %v", len(sink.Messages), sink.Messages)
	}
	if sink.Messages[0].ContentType != "text" {
		t.Fatalf("expected a text message, got %+v", sink.Messages[0])
	}
}

// Scenario 2: remember writes to context.current and the value is
// readable back through string interpolation in a later say.
func TestRun_RememberAndInterpolate(t *testing.T) {
	flow := mustParse(t, "main", `
start: {
  remember name = "Ada"
  say "hi {{name}}"
}
`)
	ip := newInterp(Bot{"main": flow})
	ctx := data.NewContext("main", "start")
	sink := &data.CollectingSink{}

	next := ip.Run(ctx, nil, sink)

	if next.Kind != data.NextEnd {
		t.Fatalf("expected NextEnd, got %v", next.Kind)
	}
	if len(sink.Memory_) != 1 || sink.Memory_[0].Key != "name" {
		t.Fatalf("expected one memory update for %q, got %v", "name", sink.Memory_)
	}
	if v, ok := ctx.Current.Get("name"); !ok || v.Str != "Ada" {
		t.Fatalf("expected context.current[name] == Ada, got %v (ok=%v)", v, ok)
	}
	if len(sink.Messages) != 1 {
		t.Fatalf("expected one message, got %d", len(sink.Messages))
	}
	got := sink.Messages[0].Content.(map[string]any)["text"]
	if got != "hi Ada" {
		t.Fatalf("expected interpolated text %q, got %q", "hi Ada", got)
	}
}

// Scenario 3: a conditional goto moves execution into another step
// within the same flow, and Next reports the destination.
func TestRun_ConditionalGoto(t *testing.T) {
	flow := mustParse(t, "main", `
start: {
  if (1 < 2) {
    goto step landed
  }
  say "unreachable"
}
landed: {
  say "arrived"
}
`)
	ip := newInterp(Bot{"main": flow})
	ctx := data.NewContext("main", "start")
	sink := &data.CollectingSink{}

	next := ip.Run(ctx, nil, sink)

	if next.Kind != data.NextEnd {
		t.Fatalf("expected NextEnd, got %v", next.Kind)
	}
	if ctx.Step != "landed" {
		t.Fatalf("expected context.step == landed, got %q", ctx.Step)
	}
	if len(sink.Messages) != 1 || sink.Messages[0].Content.(map[string]any)["text"] != "arrived" {
		t.Fatalf("expected only the landed step's say to run, got %v", sink.Messages)
	}
}

// Scenario 4: hold suspends the turn, and a later Run with the
// recorded Hold resumes immediately past the hold statement without
// re-running anything before it.
func TestRun_HoldAndResume(t *testing.T) {
	flow := mustParse(t, "main", `
start: {
  remember count = 1
  hold
  say "resumed"
}
`)
	ip := newInterp(Bot{"main": flow})
	ctx := data.NewContext("main", "start")
	sink := &data.CollectingSink{}

	next := ip.Run(ctx, nil, sink)
	if next.Kind != data.NextHold {
		t.Fatalf("expected NextHold, got %v", next.Kind)
	}
	if len(sink.Messages) != 0 {
		t.Fatalf("expected no say before the hold, got %v", sink.Messages)
	}
	if ctx.Hold == nil {
		t.Fatalf("expected a recorded hold on the context")
	}

	sink2 := &data.CollectingSink{}
	next2 := ip.Run(ctx, nil, sink2)

	if next2.Kind != data.NextEnd {
		t.Fatalf("expected NextEnd on resume, got %v", next2.Kind)
	}
	if len(sink2.Messages) != 1 || sink2.Messages[0].Content.(map[string]any)["text"] != "resumed" {
		t.Fatalf("expected only the post-hold say to run on resume, got %v", sink2.Messages)
	}
	if ctx.Hold != nil {
		t.Fatalf("expected the hold to be cleared after a successful resume")
	}
}

// Scenario 5: foreach iterates an array, binding item and index, and
// break exits early.
func TestRun_ForEach(t *testing.T) {
	flow := mustParse(t, "main", `
start: {
  foreach (item, idx) in [10, 20, 30] {
    if (idx == 1) {
      break
    }
    say item
  }
}
`)
	ip := newInterp(Bot{"main": flow})
	ctx := data.NewContext("main", "start")
	sink := &data.CollectingSink{}

	next := ip.Run(ctx, nil, sink)

	if next.Kind != data.NextEnd {
		t.Fatalf("expected NextEnd, got %v", next.Kind)
	}
	if len(sink.Messages) != 1 {
		t.Fatalf("expected break to stop the loop after one say, got %d messages: %v", len(sink.Messages), sink.Messages)
	}
}
