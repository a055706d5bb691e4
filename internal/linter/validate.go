package linter

import (
	"fmt"

	"github.com/csml-lang/csml-go/internal/script"
)

// Issue is one linter finding.
type Issue struct {
	Interval script.Interval
	Message  string
}

func (i Issue) Error() string { return fmt.Sprintf("line %d: %s", i.Interval.Start.Line, i.Message) }

// Validate runs the six validation rules (spec §4.E), rule 6 being
// duplicate reporting, against a fully-indexed Bot. builtins names every
// top-level callable the host registers (built-ins + native
// components) so rule 4 can resolve bare calls that aren't
// user-defined.
func Validate(bot Bot, idx *Indices, builtins map[string]bool) []Issue {
	var issues []Issue

	issues = append(issues, checkStartSteps(bot)...)
	issues = append(issues, checkDuplicates(bot)...)
	issues = append(issues, checkGotoTargets(bot, idx)...)
	issues = append(issues, checkImports(bot, idx)...)
	issues = append(issues, checkFunctionCalls(bot, idx, builtins)...)
	issues = append(issues, checkScoping(bot)...)

	return issues
}

// Rule 1: every flow contains a `start` step.
func checkStartSteps(bot Bot) []Issue {
	var issues []Issue
	for name, flow := range bot {
		found := false
		for _, inst := range flow.Instructions {
			if ss, ok := inst.(*script.StepScope); ok && ss.Name.Text == "start" {
				found = true
				break
			}
		}
		if !found {
			issues = append(issues, Issue{Message: fmt.Sprintf("flow %q has no start step", name)})
		}
	}
	return issues
}

// Rule 6: duplicate step/function definitions (parser surfaces a
// DuplicateInstruction sentinel; the linter reports it).
func checkDuplicates(bot Bot) []Issue {
	var issues []Issue
	for name, flow := range bot {
		for _, inst := range flow.Instructions {
			if dup, ok := inst.(*script.DuplicateInstruction); ok {
				issues = append(issues, Issue{
					Interval: dup.IV,
					Message:  fmt.Sprintf("duplicate %s %q in flow %q", dup.Kind, dup.Name, name),
				})
			}
		}
	}
	return issues
}

// Rule 2: every goto step/flow/step@flow references an existing
// target or `end`.
func checkGotoTargets(bot Bot, idx *Indices) []Issue {
	var issues []Issue
	for flowName, flow := range bot {
		for _, inst := range flow.Instructions {
			ss, ok := inst.(*script.StepScope)
			if !ok {
				continue
			}
			walkBlock(ss.Body, func(stmt script.Statement) {
				g, ok := stmt.(*script.GotoStmt)
				if !ok || g.Target.End {
					return
				}
				targetFlow := flowName
				if g.Target.Flow != nil {
					targetFlow = g.Target.Flow.Text
				}
				targetStep := "start"
				if g.Target.Step != nil {
					targetStep = g.Target.Step.Text
				}
				if _, ok := bot[targetFlow]; !ok {
					issues = append(issues, Issue{Interval: g.IV, Message: fmt.Sprintf("goto references unknown flow %q", targetFlow)})
					return
				}
				if _, ok := idx.Steps[stepKey{targetFlow, targetStep}]; !ok {
					issues = append(issues, Issue{Interval: g.IV, Message: fmt.Sprintf("goto references unknown step %q in flow %q", targetStep, targetFlow)})
				}
			})
		}
	}
	return issues
}

// Rule 3: every import resolves to a function in the named flow (or
// any flow if `from` omitted), with no name collision in the
// importing flow.
func checkImports(bot Bot, idx *Indices) []Issue {
	var issues []Issue
	for _, imp := range idx.Imports {
		if _, collide := idx.Functions[fnKey{imp.ImportingFlow, imp.Name}]; collide {
			issues = append(issues, Issue{Interval: imp.IV, Message: fmt.Sprintf("import %q collides with a local function in flow %q", imp.Name, imp.ImportingFlow)})
			continue
		}
		if imp.FromFlow != "" {
			if _, ok := idx.Functions[fnKey{imp.FromFlow, imp.OriginalName}]; !ok {
				issues = append(issues, Issue{Interval: imp.IV, Message: fmt.Sprintf("import %q does not resolve to a function %q in flow %q", imp.Name, imp.OriginalName, imp.FromFlow)})
			}
			continue
		}
		resolved := false
		for key := range idx.Functions {
			if key.Name == imp.OriginalName {
				resolved = true
				break
			}
		}
		if !resolved {
			issues = append(issues, Issue{Interval: imp.IV, Message: fmt.Sprintf("import %q does not resolve to any function named %q", imp.Name, imp.OriginalName)})
		}
	}
	return issues
}

// Rule 4: every function call resolves to a built-in, native
// component, closure binding visible from the call site, local
// function, or imported name. Only bare calls (no base expression) are
// checked here; calls on a path base are object-method dispatch,
// resolved dynamically by component D.
func checkFunctionCalls(bot Bot, idx *Indices, builtins map[string]bool) []Issue {
	var issues []Issue
	for flowName, flow := range bot {
		imported := map[string]bool{}
		for _, imp := range idx.Imports {
			if imp.ImportingFlow == flowName {
				imported[imp.Name] = true
			}
		}
		for _, inst := range flow.Instructions {
			var body *script.Block
			switch n := inst.(type) {
			case *script.StepScope:
				body = n.Body
			case *script.FunctionScope:
				body = n.Body
			default:
				continue
			}
			walkExprInBlock(body, func(e script.Expr) {
				path, ok := e.(*script.PathExpr)
				if !ok || path.Base != nil || len(path.Segments) != 1 || !path.Segments[0].Call {
					return
				}
				name := path.Segments[0].Field
				if builtins[name] || imported[name] || idx.Closures[name] {
					return
				}
				if _, ok := idx.Functions[fnKey{flowName, name}]; ok {
					return
				}
				issues = append(issues, Issue{Interval: path.IV, Message: fmt.Sprintf("call to undefined function %q", name)})
			})
		}
	}
	return issues
}

// Rule 5: control-flow keywords occur only in legal scopes.
func checkScoping(bot Bot) []Issue {
	var issues []Issue
	for _, flow := range bot {
		for _, inst := range flow.Instructions {
			switch n := inst.(type) {
			case *script.StepScope:
				checkScopeBlock(n.Body, false, 0, &issues)
			case *script.FunctionScope:
				checkScopeBlock(n.Body, true, 0, &issues)
			}
		}
	}
	return issues
}

func checkScopeBlock(b *script.Block, inFunction bool, loopDepth int, issues *[]Issue) {
	if b == nil {
		return
	}
	for _, item := range b.Items {
		switch s := item.Stmt.(type) {
		case *script.ReturnStmt:
			if !inFunction {
				*issues = append(*issues, Issue{Interval: s.IV, Message: "return used outside function scope"})
			}
		case *script.BreakStmt:
			if loopDepth == 0 {
				*issues = append(*issues, Issue{Interval: s.IV, Message: "break used outside loop scope"})
			}
		case *script.ContinueStmt:
			if loopDepth == 0 {
				*issues = append(*issues, Issue{Interval: s.IV, Message: "continue used outside loop scope"})
			}
		case *script.HoldStmt:
			if inFunction {
				*issues = append(*issues, Issue{Interval: s.IV, Message: "hold used inside function scope"})
			}
		case *script.RememberStmt:
			if inFunction {
				*issues = append(*issues, Issue{Interval: s.IV, Message: "remember used inside function scope"})
			}
		case *script.SayStmt:
			if inFunction {
				*issues = append(*issues, Issue{Interval: s.IV, Message: "say used inside function scope"})
			}
		case *script.GotoStmt:
			if inFunction {
				*issues = append(*issues, Issue{Interval: s.IV, Message: "goto used inside function scope"})
			}
		case *script.IfStmt:
			checkScopeBlock(s.Then, inFunction, loopDepth, issues)
			for _, ei := range s.ElseIfs {
				checkScopeBlock(ei.Body, inFunction, loopDepth, issues)
			}
			checkScopeBlock(s.Else, inFunction, loopDepth, issues)
		case *script.ForEachStmt:
			checkScopeBlock(s.Body, inFunction, loopDepth+1, issues)
		case *script.WhileStmt:
			checkScopeBlock(s.Body, inFunction, loopDepth+1, issues)
		}
	}
}

// walkBlock visits every statement in b, recursing into nested blocks.
func walkBlock(b *script.Block, visit func(script.Statement)) {
	if b == nil {
		return
	}
	for _, item := range b.Items {
		visit(item.Stmt)
		switch s := item.Stmt.(type) {
		case *script.IfStmt:
			walkBlock(s.Then, visit)
			for _, ei := range s.ElseIfs {
				walkBlock(ei.Body, visit)
			}
			walkBlock(s.Else, visit)
		case *script.ForEachStmt:
			walkBlock(s.Body, visit)
		case *script.WhileStmt:
			walkBlock(s.Body, visit)
		}
	}
}

// walkExprInBlock visits every expression reachable from statements in
// b, descending through call arguments, index expressions, infix and
// not operands, and array/object literal elements. Closure bodies are
// not entered.
func walkExprInBlock(b *script.Block, visit func(script.Expr)) {
	walkBlock(b, func(stmt script.Statement) {
		for _, e := range exprsOf(stmt) {
			walkExpr(e, visit)
		}
	})
}

func exprsOf(stmt script.Statement) []script.Expr {
	switch s := stmt.(type) {
	case *script.SayStmt:
		return []script.Expr{s.Expr}
	case *script.DebugStmt:
		return s.Args
	case *script.RememberStmt:
		return []script.Expr{s.Value}
	case *script.DoStmt:
		return []script.Expr{s.Value}
	case *script.UseStmt:
		return []script.Expr{s.Expr}
	case *script.AssignStmt:
		return []script.Expr{s.Value}
	case *script.ExprStmt:
		return []script.Expr{s.Expr}
	case *script.ReturnStmt:
		if s.Value != nil {
			return []script.Expr{s.Value}
		}
	case *script.IfStmt:
		return []script.Expr{s.Cond}
	case *script.ForEachStmt:
		return []script.Expr{s.Expr}
	case *script.WhileStmt:
		return []script.Expr{s.Cond}
	}
	return nil
}

func walkExpr(e script.Expr, visit func(script.Expr)) {
	if e == nil {
		return
	}
	visit(e)
	switch v := e.(type) {
	case *script.PathExpr:
		for _, seg := range v.Segments {
			if seg.Call {
				for _, a := range seg.Args {
					walkExpr(a.Value, visit)
				}
			}
			if seg.Index != nil {
				walkExpr(*seg.Index, visit)
			}
		}
	case *script.InfixExpr:
		walkExpr(v.Left, visit)
		walkExpr(v.Right, visit)
	case *script.PrefixNot:
		walkExpr(v.Operand, visit)
	case *script.ArrayLit:
		for _, el := range v.Elements {
			walkExpr(el, visit)
		}
	case *script.ObjectLit:
		for _, ent := range v.Entries {
			walkExpr(ent.Value, visit)
		}
	}
}
