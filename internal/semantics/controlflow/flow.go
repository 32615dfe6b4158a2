// Package controlflow derives the control flow facts the checker needs from
// the statement structure: whether a body returns on every path, which
// branches fall off the end, and which statements can never execute.
package controlflow

import (
	"github.com/spicelang/spice-sub000/internal/frontend/ast"
	"github.com/spicelang/spice-sub000/internal/source"
)

// ControlFlowKind represents how control leaves a statement
type ControlFlowKind int

const (
	FlowFallthrough ControlFlowKind = iota // Normal flow to the next statement
	FlowReturn                             // Every path returns
	FlowJump                               // Every path breaks, continues or falls through to the next case
)

func (k ControlFlowKind) String() string {
	switch k {
	case FlowReturn:
		return "return"
	case FlowJump:
		return "jump"
	default:
		return "fallthrough"
	}
}

// Analysis is the result of analyzing one function or lambda body
type Analysis struct {
	Flow ControlFlowKind
	// Unreachable holds the first statement after a return, break or continue, per block
	Unreachable []ast.Statement
	// MissingReturn holds the branches that reach the end of the body without returning
	MissingReturn []*source.Location
}

func (a *Analysis) ReturnsOnAllPaths() bool {
	return a.Flow == FlowReturn
}

// AnalyzeBody analyzes a callable body
func AnalyzeBody(body *ast.Block) *Analysis {
	a := &Analysis{}
	if body == nil {
		return a
	}
	a.Flow = a.block(body)
	if a.Flow != FlowReturn {
		a.collectMissing(body)
	}
	return a
}

func (a *Analysis) block(b *ast.Block) ControlFlowKind {
	flow := FlowFallthrough
	for i, stmt := range b.Stmts {
		if flow != FlowFallthrough {
			a.Unreachable = append(a.Unreachable, b.Stmts[i])
			break
		}
		flow = a.stmt(stmt)
	}
	return flow
}

func (a *Analysis) stmt(stmt ast.Statement) ControlFlowKind {
	switch s := stmt.(type) {
	case *ast.ReturnStmt:
		return FlowReturn
	case *ast.BreakStmt, *ast.ContinueStmt, *ast.FallthroughStmt:
		return FlowJump
	case *ast.Block:
		return a.block(s)
	case *ast.UnsafeStmt:
		return a.block(s.Body)
	case *ast.IfStmt:
		then := a.block(s.Then)
		if s.Else == nil {
			return FlowFallthrough
		}
		return join(then, a.stmt(s.Else))
	case *ast.WhileStmt:
		a.loopBody(s.Body)
		return FlowFallthrough
	case *ast.ForStmt:
		a.loopBody(s.Body)
		return FlowFallthrough
	case *ast.ForeachStmt:
		a.loopBody(s.Body)
		return FlowFallthrough
	case *ast.DoWhileStmt:
		// The body runs at least once
		if a.block(s.Body) == FlowReturn {
			return FlowReturn
		}
		return FlowFallthrough
	case *ast.SwitchStmt:
		return a.switchStmt(s)
	}
	return FlowFallthrough
}

func (a *Analysis) loopBody(body *ast.Block) {
	a.block(body)
}

func (a *Analysis) switchStmt(s *ast.SwitchStmt) ControlFlowKind {
	flows := make([]ControlFlowKind, len(s.Cases))
	for i, c := range s.Cases {
		flows[i] = a.block(c.Body)
	}
	if s.Default == nil {
		return FlowFallthrough
	}
	result := a.block(s.Default)
	// A case ending in fallthrough continues with the next branch
	for i := len(s.Cases) - 1; i >= 0; i-- {
		if endsInFallthrough(s.Cases[i].Body) {
			if i+1 < len(s.Cases) {
				flows[i] = flows[i+1]
			} else {
				flows[i] = result
			}
		}
		result = join(result, flows[i])
	}
	return result
}

func endsInFallthrough(b *ast.Block) bool {
	if len(b.Stmts) == 0 {
		return false
	}
	_, ok := b.Stmts[len(b.Stmts)-1].(*ast.FallthroughStmt)
	return ok
}

func join(a, b ControlFlowKind) ControlFlowKind {
	switch {
	case a == FlowReturn && b == FlowReturn:
		return FlowReturn
	case a == FlowFallthrough || b == FlowFallthrough:
		return FlowFallthrough
	}
	return FlowJump
}

// collectMissing records the innermost branches through which the end of b is reachable
func (a *Analysis) collectMissing(b *ast.Block) {
	if len(b.Stmts) == 0 {
		a.MissingReturn = append(a.MissingReturn, b.Loc())
		return
	}
	last := b.Stmts[len(b.Stmts)-1]
	scratch := &Analysis{}
	if scratch.stmt(last) == FlowReturn {
		return
	}
	switch s := last.(type) {
	case *ast.IfStmt:
		if s.Else == nil {
			a.MissingReturn = append(a.MissingReturn, s.Loc())
			return
		}
		a.collectMissing(s.Then)
		switch e := s.Else.(type) {
		case *ast.Block:
			a.collectMissing(e)
		case *ast.IfStmt:
			a.collectMissing(&ast.Block{Stmts: []ast.Statement{e}, Location: e.Location})
		}
	case *ast.Block:
		a.collectMissing(s)
	case *ast.UnsafeStmt:
		a.collectMissing(s.Body)
	default:
		a.MissingReturn = append(a.MissingReturn, last.Loc())
	}
}
