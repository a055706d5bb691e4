package interp

import (
	"github.com/csml-lang/csml-go/internal/data"
	"github.com/csml-lang/csml-go/internal/langerr"
	"github.com/csml-lang/csml-go/internal/script"
	"github.com/csml-lang/csml-go/internal/value"
)

// maxWhileIterations bounds a single `while` statement's iteration
// count as a runtime safety valve against a condition that never
// turns false, mirrored on maxGotoHops.
const maxWhileIterations = 100000

// execBlock walks one block's statements in source order (spec §4.G's
// per-block statement loop), honoring a resume target: items whose
// entire subtree lies before resumeIndex are skipped outright: once an
// item containing (or equal to) resumeIndex has been processed, the
// resume target is considered consumed and every later item in this
// block runs normally.
func (ip *Interp) execBlock(fr *frame, b *script.Block, resumeIndex int) (exitState, error) {
	if b == nil {
		return exitState{}, nil
	}
	active := resumeIndex
	for _, item := range b.Items {
		if active >= 0 && active >= item.Index+item.Total {
			continue
		}
		es, err := ip.execStmt(fr, item, active)
		active = -1
		if err != nil {
			return exitState{}, err
		}
		if es.kind != exitNone {
			return es, nil
		}
	}
	return exitState{}, nil
}

func (ip *Interp) execStmt(fr *frame, item script.BlockItem, resumeIndex int) (exitState, error) {
	switch s := item.Stmt.(type) {
	case *script.SayStmt:
		v, err := evalExpr(ip, fr, s.Expr)
		if err != nil {
			return exitState{}, err
		}
		fr.sink.Message(data.NewSayMessage(v))
		return exitState{}, nil

	case *script.DebugStmt:
		vals := make([]*value.Literal, len(s.Args))
		for i, a := range s.Args {
			v, err := evalExpr(ip, fr, a)
			if err != nil {
				return exitState{}, err
			}
			vals[i] = v
		}
		fr.sink.Message(data.NewDebugMessage(vals))
		return exitState{}, nil

	case *script.RememberStmt:
		v, err := evalExpr(ip, fr, s.Value)
		if err != nil {
			return exitState{}, err
		}
		fr.ctx.Current.Set(s.Name, v)
		fr.sink.Memory(data.MemoryUpdate{Key: s.Name, Value: v})
		return exitState{}, nil

	case *script.ForgetStmt:
		if s.All {
			keys := append([]string(nil), fr.ctx.Current.ObjKeys...)
			for _, k := range keys {
				deleteKey(fr.ctx.Current, k)
				fr.sink.Memory(data.MemoryUpdate{Key: k, Forget: true})
			}
			return exitState{}, nil
		}
		for _, id := range s.Names {
			deleteKey(fr.ctx.Current, id.Text)
			fr.sink.Memory(data.MemoryUpdate{Key: id.Text, Forget: true})
		}
		return exitState{}, nil

	case *script.GotoStmt:
		if s.Target.End {
			return exitState{kind: exitEnd}, nil
		}
		targetFlow := fr.ctx.Flow
		if s.Target.Flow != nil {
			targetFlow = s.Target.Flow.Text
		}
		targetStep := "start"
		if s.Target.Step != nil {
			targetStep = s.Target.Step.Text
		}
		fr.ctx.PreviousFlow, fr.ctx.PreviousStep = fr.ctx.Flow, fr.ctx.Step
		fr.ctx.Flow, fr.ctx.Step = targetFlow, targetStep
		return exitState{kind: exitGoto}, nil

	case *script.PreviousStmt:
		prevFlow, prevStep := fr.ctx.PreviousFlow, fr.ctx.PreviousStep
		if prevFlow == "" {
			prevFlow = fr.ctx.Flow
		}
		if prevStep == "" {
			prevStep = "start"
		}
		fr.ctx.PreviousFlow, fr.ctx.PreviousStep = fr.ctx.Flow, fr.ctx.Step
		fr.ctx.Flow, fr.ctx.Step = prevFlow, prevStep
		return exitState{kind: exitGoto}, nil

	case *script.DoStmt:
		v, err := evalExpr(ip, fr, s.Value)
		if err != nil {
			return exitState{}, err
		}
		if s.Assign != nil {
			if err := pathAssign(ip, fr, s.Assign, v); err != nil {
				return exitState{}, err
			}
		}
		return exitState{}, nil

	case *script.UseStmt:
		if _, err := evalExpr(ip, fr, s.Expr); err != nil {
			return exitState{}, err
		}
		return exitState{}, nil

	case *script.AssignStmt:
		v, err := evalExpr(ip, fr, s.Value)
		if err != nil {
			return exitState{}, err
		}
		if err := pathAssign(ip, fr, s.Target, v); err != nil {
			return exitState{}, err
		}
		return exitState{}, nil

	case *script.ExprStmt:
		if _, err := evalExpr(ip, fr, s.Expr); err != nil {
			return exitState{}, err
		}
		return exitState{}, nil

	case *script.HoldStmt:
		if resumeIndex == item.Index {
			// This is the hold we are resuming past; it has already
			// been consumed by the prior turn.
			return exitState{}, nil
		}
		return exitState{kind: exitHold, holdIndex: item.Index}, nil

	case *script.BreakStmt:
		return exitState{kind: exitBreak}, nil

	case *script.ContinueStmt:
		return exitState{kind: exitContinue}, nil

	case *script.ReturnStmt:
		if s.Value == nil {
			return exitState{kind: exitReturn, returnVal: value.Null()}, nil
		}
		v, err := evalExpr(ip, fr, s.Value)
		if err != nil {
			return exitState{}, err
		}
		return exitState{kind: exitReturn, returnVal: v}, nil

	case *script.IfStmt:
		return ip.execIf(fr, s, resumeIndex)

	case *script.ForEachStmt:
		return ip.execForEach(fr, s)

	case *script.WhileStmt:
		return ip.execWhile(fr, s)

	default:
		return exitState{}, langerr.New(langerr.Internal, item.Stmt.Interval(), "unhandled statement %T", item.Stmt)
	}
}

// execIf implements spec §4.G's if-semantics, including the
// resume-dive rule: on a fresh evaluation (resumeIndex < 0) it
// evaluates conditions in order; on resume it never re-evaluates a
// condition (the event that drove the original branch choice may have
// changed) and instead dives into whichever branch's instruction range
// contains the resume target.
func (ip *Interp) execIf(fr *frame, s *script.IfStmt, resumeIndex int) (exitState, error) {
	if resumeIndex < 0 {
		cond, err := evalExpr(ip, fr, s.Cond)
		if err != nil {
			return exitState{}, err
		}
		if value.AsBool(cond) {
			return ip.execBlock(fr, s.Then, -1)
		}
		for _, ei := range s.ElseIfs {
			cv, err := evalExpr(ip, fr, ei.Cond)
			if err != nil {
				return exitState{}, err
			}
			if value.AsBool(cv) {
				return ip.execBlock(fr, ei.Body, -1)
			}
		}
		if s.Else != nil {
			return ip.execBlock(fr, s.Else, -1)
		}
		return exitState{}, nil
	}

	if s.Then != nil && s.Then.LastIndex() >= resumeIndex {
		return ip.execBlock(fr, s.Then, resumeIndex)
	}
	for _, ei := range s.ElseIfs {
		if ei.Body.LastIndex() >= resumeIndex {
			return ip.execBlock(fr, ei.Body, resumeIndex)
		}
	}
	if s.Else != nil && s.Else.LastIndex() >= resumeIndex {
		return ip.execBlock(fr, s.Else, resumeIndex)
	}
	return exitState{}, nil
}

// execForEach and execWhile always run their body from a fresh
// position (resumeIndex == -1): a hold recorded inside a loop body
// restarts the loop from the top on resume, a documented limitation
// (spec §4.G, §9).
func (ip *Interp) execForEach(fr *frame, s *script.ForEachStmt) (exitState, error) {
	arr, err := evalExpr(ip, fr, s.Expr)
	if err != nil {
		return exitState{}, err
	}
	if arr.Kind != value.ArrayKind {
		return exitState{}, langerr.New(langerr.TypeMismatch, s.IV, "foreach expects an array, got %s", arr.Kind)
	}
	for i, elem := range arr.Arr {
		fr.stepVars[s.Item.Text] = elem
		if s.Index != nil {
			fr.stepVars[s.Index.Text] = value.Int(int64(i))
		}
		es, err := ip.execBlock(fr, s.Body, -1)
		if err != nil {
			return exitState{}, err
		}
		switch es.kind {
		case exitBreak:
			return exitState{}, nil
		case exitContinue, exitNone:
			continue
		default:
			return es, nil
		}
	}
	return exitState{}, nil
}

func (ip *Interp) execWhile(fr *frame, s *script.WhileStmt) (exitState, error) {
	for i := 0; ; i++ {
		if i >= maxWhileIterations {
			return exitState{}, langerr.New(langerr.Internal, s.IV, "exceeded maximum while iterations (%d)", maxWhileIterations)
		}
		cond, err := evalExpr(ip, fr, s.Cond)
		if err != nil {
			return exitState{}, err
		}
		if !value.AsBool(cond) {
			return exitState{}, nil
		}
		es, err := ip.execBlock(fr, s.Body, -1)
		if err != nil {
			return exitState{}, err
		}
		switch es.kind {
		case exitBreak:
			return exitState{}, nil
		case exitContinue, exitNone:
			continue
		default:
			return es, nil
		}
	}
}

func deleteKey(obj *value.Literal, key string) {
	if _, ok := obj.Get(key); !ok {
		return
	}
	delete(obj.Obj, key)
	for i, k := range obj.ObjKeys {
		if k == key {
			obj.ObjKeys = append(obj.ObjKeys[:i], obj.ObjKeys[i+1:]...)
			break
		}
	}
}
