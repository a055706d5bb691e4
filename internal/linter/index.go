// Package linter implements the post-parse static validation pass
// (spec §4.E): four cross-reference indices, six validation rules, and
// infinite-loop cycle detection over the step graph.
package linter

import "github.com/csml-lang/csml-go/internal/script"

// Bot is the full set of parsed flows, keyed by flow name.
type Bot map[string]*script.Flow

type stepKey struct{ Flow, Step string }
type fnKey struct{ Flow, Name string }

// ImportInfo records one resolved or unresolved import declaration.
type ImportInfo struct {
	ImportingFlow string
	Name          string
	OriginalName  string // defaults to Name when no `as` clause
	FromFlow      string // empty when `from` was omitted
	IV            script.Interval
}

// Indices is the linter's four cross-reference tables (spec §4.E).
type Indices struct {
	Steps     map[stepKey]*script.StepScope
	Functions map[fnKey]*script.FunctionScope
	Imports   []ImportInfo
	// Closures is the set of variable names statically observed being
	// bound to a closure literal (remember/do-assign RHS is a
	// ClosureExpr), used to validate function-call binding.
	Closures map[string]bool
}

// BuildIndices walks every flow once and populates Indices.
func BuildIndices(bot Bot) *Indices {
	idx := &Indices{
		Steps:     map[stepKey]*script.StepScope{},
		Functions: map[fnKey]*script.FunctionScope{},
		Closures:  map[string]bool{},
	}
	for flowName, flow := range bot {
		for _, inst := range flow.Instructions {
			switch n := inst.(type) {
			case *script.StepScope:
				idx.Steps[stepKey{flowName, n.Name.Text}] = n
				scanClosureBindings(n.Body, idx.Closures)
			case *script.FunctionScope:
				idx.Functions[fnKey{flowName, n.Name.Text}] = n
				scanClosureBindings(n.Body, idx.Closures)
			case *script.ImportScope:
				info := ImportInfo{ImportingFlow: flowName, Name: n.Name.Text, IV: n.IV}
				if n.OriginalName != nil {
					info.OriginalName = n.OriginalName.Text
				} else {
					info.OriginalName = n.Name.Text
				}
				if n.FromFlow != nil {
					info.FromFlow = n.FromFlow.Text
				}
				idx.Imports = append(idx.Imports, info)
			}
		}
	}
	return idx
}

// scanClosureBindings records every `remember x = <closure>` /
// `do x = <closure>` / bare `x = <closure>` target name found anywhere
// in block, recursing into nested blocks but not into nested function
// or closure bodies (those introduce their own scope).
func scanClosureBindings(b *script.Block, out map[string]bool) {
	if b == nil {
		return
	}
	for _, item := range b.Items {
		switch s := item.Stmt.(type) {
		case *script.RememberStmt:
			if _, ok := s.Value.(*script.ClosureExpr); ok {
				out[s.Name] = true
			}
		case *script.DoStmt:
			if s.Assign != nil {
				if _, ok := s.Value.(*script.ClosureExpr); ok {
					if name, ok := simpleName(s.Assign); ok {
						out[name] = true
					}
				}
			}
		case *script.AssignStmt:
			if _, ok := s.Value.(*script.ClosureExpr); ok {
				if name, ok := simpleName(s.Target); ok {
					out[name] = true
				}
			}
		case *script.IfStmt:
			scanClosureBindings(s.Then, out)
			for _, ei := range s.ElseIfs {
				scanClosureBindings(ei.Body, out)
			}
			scanClosureBindings(s.Else, out)
		case *script.ForEachStmt:
			scanClosureBindings(s.Body, out)
		case *script.WhileStmt:
			scanClosureBindings(s.Body, out)
		}
	}
}

func simpleName(p *script.PathExpr) (string, bool) {
	if len(p.Segments) != 0 {
		return "", false
	}
	if id, ok := p.Base.(*script.IdentExpr); ok {
		return id.Name, true
	}
	return "", false
}
