package linter

import (
	"testing"

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

// Scenario 6: a two-step cycle with no Hold is an infinite loop.
func TestFindCycles_SimpleLoop(t *testing.T) {
	src := `
start: {
  goto step a
}
a: {
  goto start
}
`
	flow := mustParse(t, "main", src)
	bot := Bot{"main": flow}
	idx := BuildIndices(bot)

	issues := FindCycles(bot, idx, "main")
	if len(issues) != 1 {
		t.Fatalf("expected exactly one cycle warning, got %d: %v", len(issues), issues)
	}
}

// A Hold between the two steps breaks the cycle: no warning.
func TestFindCycles_HoldBreaksLoop(t *testing.T) {
	src := `
start: {
  hold
  goto step a
}
a: {
  goto start
}
`
	flow := mustParse(t, "main", src)
	bot := Bot{"main": flow}
	idx := BuildIndices(bot)

	issues := FindCycles(bot, idx, "main")
	if len(issues) != 0 {
		t.Fatalf("expected no cycle warning when a hold breaks the loop, got %v", issues)
	}
}

// A three-step chain ending at `goto end` is not a cycle.
func TestFindCycles_LinearChainNoCycle(t *testing.T) {
	src := `
start: {
  goto step a
}
a: {
  goto step b
}
b: {
  goto end
}
`
	flow := mustParse(t, "main", src)
	bot := Bot{"main": flow}
	idx := BuildIndices(bot)

	issues := FindCycles(bot, idx, "main")
	if len(issues) != 0 {
		t.Fatalf("expected no cycle warning for a linear chain, got %v", issues)
	}
}

func TestValidate_MissingStartStep(t *testing.T) {
	src := `
a: {
  say "hi"
}
`
	flow := mustParse(t, "main", src)
	bot := Bot{"main": flow}
	idx := BuildIndices(bot)

	issues := Validate(bot, idx, map[string]bool{})
	found := false
	for _, iss := range issues {
		if iss.Message == `flow "main" has no start step` {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected missing-start-step issue, got %v", issues)
	}
}

func TestValidate_UnknownGotoTarget(t *testing.T) {
	src := `
start: {
  goto step nowhere
}
`
	flow := mustParse(t, "main", src)
	bot := Bot{"main": flow}
	idx := BuildIndices(bot)

	issues := Validate(bot, idx, map[string]bool{})
	if len(issues) == 0 {
		t.Fatalf("expected an unknown-goto-target issue")
	}
}

func TestValidate_UndefinedFunctionCall(t *testing.T) {
	src := `
start: {
  do mystery_fn()
}
`
	flow := mustParse(t, "main", src)
	bot := Bot{"main": flow}
	idx := BuildIndices(bot)

	issues := Validate(bot, idx, map[string]bool{})
	found := false
	for _, iss := range issues {
		if iss.Message == `call to undefined function "mystery_fn"` {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected undefined-function issue, got %v", issues)
	}
}

func TestValidate_BuiltinCallAllowed(t *testing.T) {
	src := `
start: {
  do length()
}
`
	flow := mustParse(t, "main", src)
	bot := Bot{"main": flow}
	idx := BuildIndices(bot)

	issues := Validate(bot, idx, map[string]bool{"length": true})
	for _, iss := range issues {
		if iss.Message == `call to undefined function "length"` {
			t.Fatalf("did not expect a built-in call to be flagged: %v", issues)
		}
	}
}

func TestValidate_ReturnOutsideFunctionFlagged(t *testing.T) {
	src := `
start: {
  return
}
`
	flow := mustParse(t, "main", src)
	bot := Bot{"main": flow}
	idx := BuildIndices(bot)

	issues := Validate(bot, idx, map[string]bool{})
	found := false
	for _, iss := range issues {
		if iss.Message == "return used outside function scope" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected return-outside-function issue, got %v", issues)
	}
}

func TestValidate_BreakOutsideLoopFlagged(t *testing.T) {
	src := `
start: {
  break
}
`
	flow := mustParse(t, "main", src)
	bot := Bot{"main": flow}
	idx := BuildIndices(bot)

	issues := Validate(bot, idx, map[string]bool{})
	found := false
	for _, iss := range issues {
		if iss.Message == "break used outside loop scope" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected break-outside-loop issue, got %v", issues)
	}
}

func TestValidate_BreakInsideForEachAllowed(t *testing.T) {
	src := `
start: {
  foreach (v) in [1, 2, 3] {
    break
  }
}
`
	flow := mustParse(t, "main", src)
	bot := Bot{"main": flow}
	idx := BuildIndices(bot)

	issues := Validate(bot, idx, map[string]bool{})
	for _, iss := range issues {
		if iss.Message == "break used outside loop scope" {
			t.Fatalf("did not expect break inside foreach to be flagged: %v", issues)
		}
	}
}

func TestValidate_DuplicateStepReported(t *testing.T) {
	src := `
start: {
  say "one"
}
start: {
  say "two"
}
`
	flow := mustParse(t, "main", src)
	bot := Bot{"main": flow}
	idx := BuildIndices(bot)

	issues := Validate(bot, idx, map[string]bool{})
	found := false
	for _, iss := range issues {
		if iss.Message == `duplicate step "start" in flow "main"` {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected duplicate-step issue, got %v", issues)
	}
}

func TestValidate_ImportUnresolvedFlagged(t *testing.T) {
	src := `
import helper from other
start: {
  do helper()
}
`
	flow := mustParse(t, "main", src)
	bot := Bot{"main": flow}
	idx := BuildIndices(bot)

	issues := Validate(bot, idx, map[string]bool{})
	found := false
	for _, iss := range issues {
		if iss.Message == `import "helper" does not resolve to a function "helper" in flow "other"` {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected unresolved-import issue, got %v", issues)
	}
}

func TestValidate_ImportResolvesAcrossFlows(t *testing.T) {
	mainFlow := mustParse(t, "main", `
import helper from other
start: {
  do helper()
}
`)
	otherFlow := mustParse(t, "other", `
start: { say "unused" }
fn helper() {
  return 1
}
`)
	bot := Bot{"main": mainFlow, "other": otherFlow}
	idx := BuildIndices(bot)

	issues := Validate(bot, idx, map[string]bool{})
	for _, iss := range issues {
		if iss.Message == `import "helper" does not resolve to a function "helper" in flow "other"` {
			t.Fatalf("did not expect import to be flagged: %v", issues)
		}
		if iss.Message == `call to undefined function "helper"` {
			t.Fatalf("did not expect imported call to be flagged: %v", issues)
		}
	}
}
