package script

import "testing"

func mustParse(t *testing.T, src string) *Flow {
	t.Helper()
	flow, errs := ParseFlow("test", src)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	return flow
}

func TestParseFlow_SimpleStep(t *testing.T) {
	flow := mustParse(t, `start: { say "hi" }`)
	if len(flow.Instructions) != 1 {
		t.Fatalf("expected 1 instruction, got %d", len(flow.Instructions))
	}
	step, ok := flow.Instructions[0].(*StepScope)
	if !ok {
		t.Fatalf("expected *StepScope, got %T", flow.Instructions[0])
	}
	if step.Name.Text != "start" {
		t.Errorf("expected step name 'start', got %q", step.Name.Text)
	}
	if len(step.Body.Items) != 1 {
		t.Fatalf("expected 1 statement in body, got %d", len(step.Body.Items))
	}
	say, ok := step.Body.Items[0].Stmt.(*SayStmt)
	if !ok {
		t.Fatalf("expected *SayStmt, got %T", step.Body.Items[0].Stmt)
	}
	lit, ok := say.Expr.(*StringLit)
	if !ok || lit.Value != "hi" {
		t.Errorf("expected say \"hi\", got %+v", say.Expr)
	}
}

func TestParseFlow_InstructionIndexing(t *testing.T) {
	flow := mustParse(t, `
start: {
  if (true) {
    say "a"
    say "b"
  }
  say "c"
}
`)
	step := flow.Instructions[0].(*StepScope)
	if len(step.Body.Items) != 2 {
		t.Fatalf("expected 2 top-level statements, got %d", len(step.Body.Items))
	}

	ifItem := step.Body.Items[0]
	if ifItem.Index != 0 {
		t.Errorf("expected if statement at index 0, got %d", ifItem.Index)
	}
	if ifItem.Total != 3 {
		t.Errorf("expected if subtree total 3 (if + 2 says), got %d", ifItem.Total)
	}

	ifStmt := ifItem.Stmt.(*IfStmt)
	if len(ifStmt.Then.Items) != 2 {
		t.Fatalf("expected 2 statements inside if-block, got %d", len(ifStmt.Then.Items))
	}
	if ifStmt.Then.Items[0].Index != 1 || ifStmt.Then.Items[1].Index != 2 {
		t.Errorf("expected nested indices 1,2, got %d,%d",
			ifStmt.Then.Items[0].Index, ifStmt.Then.Items[1].Index)
	}

	outerSay := step.Body.Items[1]
	if outerSay.Index != 3 {
		t.Errorf("expected trailing say at index 3, got %d", outerSay.Index)
	}
}

func TestParseFlow_IfElseIfElse(t *testing.T) {
	flow := mustParse(t, `
start: {
  if (a == 1) {
    say "one"
  } else if (a == 2) {
    say "two"
  } else {
    say "other"
  }
}
`)
	step := flow.Instructions[0].(*StepScope)
	ifStmt := step.Body.Items[0].Stmt.(*IfStmt)
	if len(ifStmt.ElseIfs) != 1 {
		t.Fatalf("expected 1 else-if, got %d", len(ifStmt.ElseIfs))
	}
	if ifStmt.Else == nil {
		t.Fatal("expected a trailing else block")
	}
}

func TestParseFlow_ForEachWithIndex(t *testing.T) {
	flow := mustParse(t, `
start: {
  foreach (item, i) in items {
    say item
  }
}
`)
	step := flow.Instructions[0].(*StepScope)
	fe := step.Body.Items[0].Stmt.(*ForEachStmt)
	if fe.Item.Text != "item" {
		t.Errorf("expected item binding 'item', got %q", fe.Item.Text)
	}
	if fe.Index == nil || fe.Index.Text != "i" {
		t.Fatalf("expected index binding 'i', got %+v", fe.Index)
	}
}

func TestParseFlow_WhileLoop(t *testing.T) {
	flow := mustParse(t, `
start: {
  while (x < 10) {
    do x = x + 1
  }
}
`)
	step := flow.Instructions[0].(*StepScope)
	ws, ok := step.Body.Items[0].Stmt.(*WhileStmt)
	if !ok {
		t.Fatalf("expected *WhileStmt, got %T", step.Body.Items[0].Stmt)
	}
	if len(ws.Body.Items) != 1 {
		t.Fatalf("expected 1 statement in while body, got %d", len(ws.Body.Items))
	}
}

func TestParseFlow_RememberAndForget(t *testing.T) {
	flow := mustParse(t, `
start: {
  remember name = event
  forget name
  forget *
  forget [a, b]
}
`)
	step := flow.Instructions[0].(*StepScope)
	items := step.Body.Items
	if len(items) != 4 {
		t.Fatalf("expected 4 statements, got %d", len(items))
	}
	rem := items[0].Stmt.(*RememberStmt)
	if rem.Name != "name" {
		t.Errorf("expected remember name, got %q", rem.Name)
	}
	if _, ok := rem.Value.(*IdentExpr); !ok {
		t.Errorf("expected event identifier RHS, got %T", rem.Value)
	}

	single := items[1].Stmt.(*ForgetStmt)
	if single.All || len(single.Names) != 1 || single.Names[0].Text != "name" {
		t.Errorf("expected forget name, got %+v", single)
	}

	all := items[2].Stmt.(*ForgetStmt)
	if !all.All {
		t.Error("expected forget * to set All")
	}

	list := items[3].Stmt.(*ForgetStmt)
	if len(list.Names) != 2 || list.Names[0].Text != "a" || list.Names[1].Text != "b" {
		t.Errorf("expected forget [a, b], got %+v", list.Names)
	}
}

func TestParseFlow_GotoTargets(t *testing.T) {
	flow := mustParse(t, `
start: {
  goto next
  goto step other @ flow_b
  goto flow flow_c
  goto end
}
`)
	step := flow.Instructions[0].(*StepScope)
	items := step.Body.Items
	if len(items) != 4 {
		t.Fatalf("expected 4 goto statements, got %d", len(items))
	}

	g0 := items[0].Stmt.(*GotoStmt)
	if g0.Target.Step == nil || g0.Target.Step.Text != "next" {
		t.Errorf("expected goto next, got %+v", g0.Target)
	}

	g1 := items[1].Stmt.(*GotoStmt)
	if g1.Target.Step == nil || g1.Target.Step.Text != "other" || g1.Target.Flow == nil || g1.Target.Flow.Text != "flow_b" {
		t.Errorf("expected goto step other @ flow_b, got %+v", g1.Target)
	}

	g2 := items[2].Stmt.(*GotoStmt)
	if g2.Target.Flow == nil || g2.Target.Flow.Text != "flow_c" || g2.Target.Step != nil {
		t.Errorf("expected goto flow flow_c, got %+v", g2.Target)
	}

	g3 := items[3].Stmt.(*GotoStmt)
	if !g3.Target.End {
		t.Errorf("expected goto end, got %+v", g3.Target)
	}
}

func TestParseFlow_FunctionScope(t *testing.T) {
	flow := mustParse(t, `
fn greet(name) {
  return "hi " + name
}
start: { say greet("world") }
`)
	if len(flow.Instructions) != 2 {
		t.Fatalf("expected 2 instructions, got %d", len(flow.Instructions))
	}
	fn, ok := flow.Instructions[0].(*FunctionScope)
	if !ok {
		t.Fatalf("expected *FunctionScope, got %T", flow.Instructions[0])
	}
	if fn.Name.Text != "greet" || len(fn.Params) != 1 || fn.Params[0].Text != "name" {
		t.Errorf("unexpected function signature: %+v", fn)
	}

	step := flow.Instructions[1].(*StepScope)
	say := step.Body.Items[0].Stmt.(*SayStmt)
	call, ok := say.Expr.(*PathExpr)
	if !ok || len(call.Segments) != 1 || !call.Segments[0].Call || call.Segments[0].Field != "greet" {
		t.Errorf("expected bare call path to greet(), got %+v", say.Expr)
	}
}

func TestParseFlow_ImportScope(t *testing.T) {
	flow := mustParse(t, `
import helper as h from utils
start: { say "ok" }
`)
	imp, ok := flow.Instructions[0].(*ImportScope)
	if !ok {
		t.Fatalf("expected *ImportScope, got %T", flow.Instructions[0])
	}
	if imp.Name.Text != "helper" {
		t.Errorf("expected imported name 'helper', got %q", imp.Name.Text)
	}
	if imp.OriginalName == nil || imp.OriginalName.Text != "h" {
		t.Errorf("expected original name 'h', got %+v", imp.OriginalName)
	}
	if imp.FromFlow == nil || imp.FromFlow.Text != "utils" {
		t.Errorf("expected from flow 'utils', got %+v", imp.FromFlow)
	}
}

func TestParseFlow_DuplicateStepDetected(t *testing.T) {
	flow := mustParse(t, `
start: { say "1" }
start: { say "2" }
`)
	if len(flow.Instructions) != 2 {
		t.Fatalf("expected 2 instructions, got %d", len(flow.Instructions))
	}
	if _, ok := flow.Instructions[1].(*DuplicateInstruction); !ok {
		t.Fatalf("expected second 'start' to be a DuplicateInstruction, got %T", flow.Instructions[1])
	}
}

func TestParseFlow_MissingColonAfterStepName(t *testing.T) {
	_, errs := ParseFlow("test", `start { say "hi" }`)
	if len(errs) == 0 {
		t.Fatal("expected a parse error for missing colon")
	}
	if errs[0].Code != ErrMissingColonAfterStepName {
		t.Errorf("expected ErrMissingColonAfterStepName, got %v", errs[0].Code)
	}
}

func TestParseFlow_UnmatchedBrace(t *testing.T) {
	_, errs := ParseFlow("test", `start: { say "hi"`)
	if len(errs) == 0 {
		t.Fatal("expected a parse error for unmatched brace")
	}
	if errs[0].Code != ErrUnmatchedBrace {
		t.Errorf("expected ErrUnmatchedBrace, got %v", errs[0].Code)
	}
}

func TestParseFlow_ReservedIdentifierAsRememberTarget(t *testing.T) {
	_, errs := ParseFlow("test", `start: { remember event = 1 }`)
	if len(errs) == 0 {
		t.Fatal("expected a parse error for reserved remember target")
	}
	if errs[0].Code != ErrReservedIdentifier {
		t.Errorf("expected ErrReservedIdentifier, got %v", errs[0].Code)
	}
}

func TestParseFlow_InvalidNumberLiteral(t *testing.T) {
	// Lexer would not normally emit an out-of-range literal for Int
	// tokens, but the parser itself must still guard strconv failures;
	// exercise it through a value wide enough to overflow int64.
	_, errs := ParseFlow("test", `start: { do x = 99999999999999999999 }`)
	if len(errs) == 0 {
		t.Fatal("expected a parse error for an out-of-range integer literal")
	}
	if errs[0].Code != ErrInvalidNumberLiteral {
		t.Errorf("expected ErrInvalidNumberLiteral, got %v", errs[0].Code)
	}
}

func TestParseFlow_ParseTerminatesAtFirstHardFailure(t *testing.T) {
	flow, errs := ParseFlow("test", `
start: { say "ok" }
broken {
  say "never parsed"
}
`)
	if len(errs) != 1 {
		t.Fatalf("expected exactly 1 error, got %d: %v", len(errs), errs)
	}
	if len(flow.Instructions) != 1 {
		t.Fatalf("expected the prior valid step to remain, got %d instructions", len(flow.Instructions))
	}
}

func TestParseExpr_OperatorPrecedence(t *testing.T) {
	flow := mustParse(t, `start: { do x = 1 + 2 * 3 }`)
	step := flow.Instructions[0].(*StepScope)
	doStmt := step.Body.Items[0].Stmt.(*DoStmt)
	infix, ok := doStmt.Value.(*InfixExpr)
	if !ok || infix.Op != Plus {
		t.Fatalf("expected top-level '+' infix, got %+v", doStmt.Value)
	}
	rhs, ok := infix.Right.(*InfixExpr)
	if !ok || rhs.Op != Star {
		t.Fatalf("expected right operand to be a '*' infix (precedence), got %+v", infix.Right)
	}
}

func TestParseExpr_MatchAndNotMatch(t *testing.T) {
	flow := mustParse(t, `
start: {
  if (a match b) { say "yes" }
  if (a !match b) { say "no" }
}
`)
	step := flow.Instructions[0].(*StepScope)
	first := step.Body.Items[0].Stmt.(*IfStmt)
	cond1 := first.Cond.(*InfixExpr)
	if cond1.Op != MATCH || cond1.Not {
		t.Errorf("expected match without Not, got %+v", cond1)
	}

	second := step.Body.Items[1].Stmt.(*IfStmt)
	cond2 := second.Cond.(*InfixExpr)
	if cond2.Op != MATCH || !cond2.Not {
		t.Errorf("expected !match with Not=true, got %+v", cond2)
	}
}

func TestParseExpr_PathChainWithIndexAndCall(t *testing.T) {
	flow := mustParse(t, `start: { say obj.items[0].upper() }`)
	step := flow.Instructions[0].(*StepScope)
	say := step.Body.Items[0].Stmt.(*SayStmt)
	path, ok := say.Expr.(*PathExpr)
	if !ok {
		t.Fatalf("expected *PathExpr, got %T", say.Expr)
	}
	if len(path.Segments) != 3 {
		t.Fatalf("expected 3 path segments, got %d", len(path.Segments))
	}
	if path.Segments[0].Field != "items" {
		t.Errorf("expected first segment .items, got %+v", path.Segments[0])
	}
	if path.Segments[1].Index == nil {
		t.Errorf("expected second segment to be an index, got %+v", path.Segments[1])
	}
	if path.Segments[2].Field != "upper" || !path.Segments[2].Call {
		t.Errorf("expected third segment .upper(), got %+v", path.Segments[2])
	}
}

func TestParseExpr_ComplexStringInterpolation(t *testing.T) {
	flow := mustParse(t, `start: { say "hi {{ name }}!" }`)
	step := flow.Instructions[0].(*StepScope)
	say := step.Body.Items[0].Stmt.(*SayStmt)
	cs, ok := say.Expr.(*ComplexString)
	if !ok {
		t.Fatalf("expected *ComplexString, got %T", say.Expr)
	}
	if len(cs.Pieces) != 3 {
		t.Fatalf("expected 3 pieces (text, expr, text), got %d", len(cs.Pieces))
	}
	if cs.Pieces[0].Text != "hi " {
		t.Errorf("expected leading text 'hi ', got %q", cs.Pieces[0].Text)
	}
	ident, ok := cs.Pieces[1].Expr.(*IdentExpr)
	if !ok || ident.Name != "name" {
		t.Errorf("expected spliced identifier 'name', got %+v", cs.Pieces[1].Expr)
	}
	if cs.Pieces[2].Text != "!" {
		t.Errorf("expected trailing text '!', got %q", cs.Pieces[2].Text)
	}
}

func TestParseExpr_ArrayAndObjectLiterals(t *testing.T) {
	flow := mustParse(t, `start: { do x = [1, 2, {a: "b"}] }`)
	step := flow.Instructions[0].(*StepScope)
	doStmt := step.Body.Items[0].Stmt.(*DoStmt)
	arr, ok := doStmt.Value.(*ArrayLit)
	if !ok || len(arr.Elements) != 3 {
		t.Fatalf("expected a 3-element array literal, got %+v", doStmt.Value)
	}
	obj, ok := arr.Elements[2].(*ObjectLit)
	if !ok || len(obj.Entries) != 1 || obj.Entries[0].Key != "a" {
		t.Errorf("expected trailing object literal {a: \"b\"}, got %+v", arr.Elements[2])
	}
}

func TestParseExpr_PrefixNot(t *testing.T) {
	flow := mustParse(t, `start: { if (!!flag) { say "on" } }`)
	step := flow.Instructions[0].(*StepScope)
	ifStmt := step.Body.Items[0].Stmt.(*IfStmt)
	not, ok := ifStmt.Cond.(*PrefixNot)
	if !ok || not.Count != 2 {
		t.Fatalf("expected PrefixNot with Count 2, got %+v", ifStmt.Cond)
	}
}

func TestParseExpr_ClosureLiteral(t *testing.T) {
	flow := mustParse(t, `start: { do f = fn(x) { return x + 1 } }`)
	step := flow.Instructions[0].(*StepScope)
	doStmt := step.Body.Items[0].Stmt.(*DoStmt)
	closure, ok := doStmt.Value.(*ClosureExpr)
	if !ok {
		t.Fatalf("expected *ClosureExpr, got %T", doStmt.Value)
	}
	if len(closure.Params) != 1 || closure.Params[0].Text != "x" {
		t.Errorf("expected single param 'x', got %+v", closure.Params)
	}
}

func TestParseStatement_AssignmentToPath(t *testing.T) {
	flow := mustParse(t, `start: { obj.field = 5 }`)
	step := flow.Instructions[0].(*StepScope)
	assign, ok := step.Body.Items[0].Stmt.(*AssignStmt)
	if !ok {
		t.Fatalf("expected *AssignStmt, got %T", step.Body.Items[0].Stmt)
	}
	if len(assign.Target.Segments) != 1 || assign.Target.Segments[0].Field != "field" {
		t.Errorf("expected assignment target obj.field, got %+v", assign.Target)
	}
}

func TestParseStatement_DoExecVsDoAssign(t *testing.T) {
	flow := mustParse(t, `
start: {
  do sendEvent()
  do y = 3
}
`)
	step := flow.Instructions[0].(*StepScope)
	exec := step.Body.Items[0].Stmt.(*DoStmt)
	if exec.Assign != nil {
		t.Errorf("expected do-exec form with nil Assign, got %+v", exec.Assign)
	}
	assign := step.Body.Items[1].Stmt.(*DoStmt)
	if assign.Assign == nil {
		t.Fatal("expected do-assign form with non-nil Assign")
	}
}

func TestParseStatement_NamedArgs(t *testing.T) {
	flow := mustParse(t, `start: { say fmt(template="hi", count=3) }`)
	step := flow.Instructions[0].(*StepScope)
	say := step.Body.Items[0].Stmt.(*SayStmt)
	path := say.Expr.(*PathExpr)
	args := path.Segments[0].Args
	if len(args) != 2 || args[0].Name != "template" || args[1].Name != "count" {
		t.Errorf("expected named args template,count, got %+v", args)
	}
}
