package interp

import (
	"github.com/csml-lang/csml-go/internal/langerr"
	"github.com/csml-lang/csml-go/internal/script"
	"github.com/csml-lang/csml-go/internal/value"
)

// lookupVarNoCreate reads a step_vars/current binding without the
// lazy-Null-creation side effect resolveIdent performs, so callBare
// can test "is this name bound to a closure" without accidentally
// shadowing a later real binding with a stray Null.
func lookupVarNoCreate(fr *frame, name string) (*value.Literal, bool) {
	if v, ok := fr.stepVars[name]; ok {
		return v, true
	}
	if v, ok := fr.ctx.Current.Get(name); ok {
		return v, true
	}
	return nil, false
}

// callBare resolves and invokes a name-only call, in the precedence
// order: local function, imported name, closure binding, built-in.
// This mirrors internal/linter/validate.go's checkFunctionCalls rule 4
// resolution set, made concrete with a single runtime order.
func callBare(ip *Interp, fr *frame, name string, args []*value.Literal, iv script.Interval) (*value.Literal, error) {
	flow := ip.Bot[fr.ctx.Flow]
	if flow != nil {
		if fn := findFunction(flow, name); fn != nil {
			return ip.callFunction(fr, fn, args)
		}
		if imp := findImport(flow, name); imp != nil {
			return ip.callImport(fr, imp, args, iv)
		}
	}
	if v, ok := lookupVarNoCreate(fr, name); ok && v.Kind == value.ClosureKind {
		return ip.callClosure(fr, v, args)
	}
	if f, ok := ip.Builtins[name]; ok {
		return f(fr.ctx, args, iv)
	}
	return nil, langerr.New(langerr.UndefinedMethod, iv, "call to undefined function %q", name)
}

func (ip *Interp) callImport(fr *frame, imp *script.ImportScope, args []*value.Literal, iv script.Interval) (*value.Literal, error) {
	originalName := imp.Name.Text
	if imp.OriginalName != nil {
		originalName = imp.OriginalName.Text
	}
	if imp.FromFlow != nil {
		target, ok := ip.Bot[imp.FromFlow.Text]
		if !ok {
			return nil, langerr.New(langerr.UndefinedVariable, iv, "import references unknown flow %q", imp.FromFlow.Text)
		}
		fn := findFunction(target, originalName)
		if fn == nil {
			return nil, langerr.New(langerr.UndefinedMethod, iv, "import %q does not resolve in flow %q", imp.Name.Text, imp.FromFlow.Text)
		}
		return ip.callFunction(fr, fn, args)
	}
	for _, flow := range ip.Bot {
		if fn := findFunction(flow, originalName); fn != nil {
			return ip.callFunction(fr, fn, args)
		}
	}
	return nil, langerr.New(langerr.UndefinedMethod, iv, "import %q does not resolve to any function", imp.Name.Text)
}

// callFunction builds a fresh call scope (spec §4.G "Function call
// scoping") and runs fn's body to completion. Errors propagate to the
// caller unchanged; a bare Return supplies the result, any other
// terminal exit (the linter forbids goto/hold/say/remember inside
// function scope, so only Break/Continue/End/falling off the end can
// occur) yields Null.
func (ip *Interp) callFunction(fr *frame, fn *script.FunctionScope, args []*value.Literal) (*value.Literal, error) {
	child := fr.callFrame()
	for i, p := range fn.Params {
		if i < len(args) {
			child.stepVars[p.Text] = args[i]
		} else {
			child.stepVars[p.Text] = value.Null()
		}
	}
	es, err := ip.execBlock(child, fn.Body, -1)
	if err != nil {
		return nil, err
	}
	if es.kind == exitReturn {
		return es.returnVal, nil
	}
	return value.Null(), nil
}

// callClosure invokes a closure literal: its captured environment
// snapshot pre-populates step_vars, then positional args bind to its
// declared parameters (spec §4.G).
func (ip *Interp) callClosure(fr *frame, closureVal *value.Literal, args []*value.Literal) (*value.Literal, error) {
	cl := closureVal.Closure
	child := fr.callFrame()
	for k, v := range cl.Env {
		child.stepVars[k] = v
	}
	for i, p := range cl.Params {
		if i < len(args) {
			child.stepVars[p] = args[i]
		} else {
			child.stepVars[p] = value.Null()
		}
	}
	es, err := ip.execBlock(child, cl.Body, -1)
	if err != nil {
		return nil, err
	}
	if es.kind == exitReturn {
		return es.returnVal, nil
	}
	return value.Null(), nil
}
