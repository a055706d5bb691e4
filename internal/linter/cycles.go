package linter

import (
	"fmt"

	"github.com/csml-lang/csml-go/internal/script"
)

// breaker is one control-transfer point reachable from a step's body
// that can end the step's execution without passing through a Hold:
// either a Goto (which may re-enter the cycle) or a Hold (which always
// breaks it). Entries are recorded in source order.
type breaker struct {
	isHold bool
	flow   string // goto target flow (resolved), empty for hold
	step   string // goto target step (resolved, "end" sentinel below)
	iv     script.Interval
}

const endStep = "\x00end"

// stepBreakers computes, for one step body, the ordered list of
// breakers reachable without diving into a nested function scope
// (functions don't inherit the caller's control-flow graph position).
func stepBreakers(flowName string, b *script.Block) []breaker {
	var out []breaker
	var walk func(b *script.Block)
	walk = func(b *script.Block) {
		if b == nil {
			return
		}
		for _, item := range b.Items {
			switch s := item.Stmt.(type) {
			case *script.HoldStmt:
				out = append(out, breaker{isHold: true, iv: s.IV})
			case *script.GotoStmt:
				tf := flowName
				if s.Target.Flow != nil {
					tf = s.Target.Flow.Text
				}
				ts := "start"
				if s.Target.Step != nil {
					ts = s.Target.Step.Text
				}
				if s.Target.End {
					ts = endStep
				}
				out = append(out, breaker{flow: tf, step: ts, iv: s.IV})
			case *script.IfStmt:
				walk(s.Then)
				for _, ei := range s.ElseIfs {
					walk(ei.Body)
				}
				walk(s.Else)
			case *script.ForEachStmt:
				walk(s.Body)
			case *script.WhileStmt:
				walk(s.Body)
			}
		}
	}
	walk(b)
	return out
}

// FindCycles runs infinite-loop detection (spec §4.E) starting from
// defaultFlow's start step. It performs a depth-first walk over the
// step graph induced by Goto breakers, maintaining a cycle path that
// is cleared whenever a Hold is encountered (a Hold always suspends
// the turn, so no cycle can run past it), and a closed set of steps
// already proven not to loop. Reaching a step already on the current
// cycle path is reported once, at the offending Goto.
func FindCycles(bot Bot, idx *Indices, defaultFlow string) []Issue {
	var issues []Issue
	closed := map[stepKey]bool{}
	onStack := map[stepKey]bool{}

	var visit func(key stepKey, path []stepKey, via script.Interval)
	visit = func(key stepKey, path []stepKey, via script.Interval) {
		if closed[key] {
			return
		}
		for i, p := range path {
			if p == key {
				cyclePath := append(append([]stepKey{}, path[i:]...), key)
				issues = append(issues, Issue{Interval: via, Message: formatCycle(cyclePath)})
				return
			}
		}
		if onStack[key] {
			return
		}
		ss, ok := idx.Steps[key]
		if !ok {
			return
		}
		onStack[key] = true
		nextPath := append(append([]stepKey{}, path...), key)
		for _, br := range stepBreakers(key.Flow, ss.Body) {
			if br.isHold {
				nextPath = nil
				continue
			}
			if br.step == endStep {
				continue
			}
			target := stepKey{br.flow, br.step}
			if _, ok := bot[target.Flow]; !ok {
				continue
			}
			visit(target, nextPath, br.iv)
		}
		closed[key] = true
	}

	visit(stepKey{defaultFlow, "start"}, nil, script.Interval{})
	for flowName := range bot {
		if flowName == defaultFlow {
			continue
		}
		visit(stepKey{flowName, "start"}, nil, script.Interval{})
	}
	return issues
}

func formatCycle(path []stepKey) string {
	s := "infinite loop detected: "
	for i, k := range path {
		if i > 0 {
			s += " -> "
		}
		s += fmt.Sprintf("(%s,%s)", k.Flow, k.Step)
	}
	return s
}
