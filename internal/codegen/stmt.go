package codegen

import (
	"github.com/llir/llvm/ir"

	"github.com/hades-lang/hades/internal/typedast"
)

// generateStmt lowers one typed statement. It returns terminated=true when
// the statement is guaranteed to end its block with a terminator (return,
// break, continue, or an if/block whose every path terminates), so callers
// know not to append a fallthrough terminator of their own.
func (g *Codegen) generateStmt(stmt typedast.Stmt) (bool, error) {
	switch stmt.Kind {
	case typedast.StmtLet:
		return g.generateLet(stmt)
	case typedast.StmtExpr:
		_, err := g.generateExpr(stmt.Expr)
		return false, err
	case typedast.StmtBlock:
		return g.generateBlockStmts(stmt.Stmts)
	case typedast.StmtIf:
		return g.generateIf(stmt)
	case typedast.StmtWhile:
		return g.generateWhile(stmt)
	case typedast.StmtFor:
		return g.generateFor(stmt)
	case typedast.StmtReturn:
		return g.generateReturn(stmt)
	case typedast.StmtBreak:
		return g.generateBreak()
	case typedast.StmtContinue:
		return g.generateContinue()
	default:
		return false, errf("unsupported statement kind %v", stmt.Kind)
	}
}

func (g *Codegen) generateLet(stmt typedast.Stmt) (bool, error) {
	val, err := g.generateExpr(stmt.LetValue)
	if err != nil {
		return false, err
	}
	ptr := g.cur.NewAlloca(g.llvmType(stmt.LetType))
	ptr.SetName(stmt.LetName + ".addr")
	g.cur.NewStore(val, ptr)
	g.declareLocal(stmt.LetName, ptr, stmt.LetType)
	return false, nil
}

func (g *Codegen) generateBlockStmts(stmts []typedast.Stmt) (bool, error) {
	g.enterScope()
	defer g.exitScope()
	for _, s := range stmts {
		terminated, err := g.generateStmt(s)
		if err != nil {
			return false, err
		}
		if terminated {
			return true, nil
		}
	}
	return false, nil
}

func (g *Codegen) generateIf(stmt typedast.Stmt) (bool, error) {
	cond, err := g.generateExpr(*stmt.Cond)
	if err != nil {
		return false, err
	}
	thenBlock := g.fn.NewBlock("if.then")
	mergeBlock := g.fn.NewBlock("if.merge")

	var elseBlock *ir.Block
	if stmt.Else != nil {
		elseBlock = g.fn.NewBlock("if.else")
		g.cur.NewCondBr(cond, thenBlock, elseBlock)
	} else {
		g.cur.NewCondBr(cond, thenBlock, mergeBlock)
	}

	g.cur = thenBlock
	thenTerm, err := g.generateStmt(*stmt.Then)
	if err != nil {
		return false, err
	}
	if !thenTerm {
		g.cur.NewBr(mergeBlock)
	}

	elseTerm := false
	if stmt.Else != nil {
		g.cur = elseBlock
		elseTerm, err = g.generateStmt(*stmt.Else)
		if err != nil {
			return false, err
		}
		if !elseTerm {
			g.cur.NewBr(mergeBlock)
		}
	}

	g.cur = mergeBlock
	if stmt.Else != nil && thenTerm && elseTerm {
		// No path reaches the merge block, but it still needs a terminator
		// for the module to verify.
		mergeBlock.NewUnreachable()
		return true, nil
	}
	return false, nil
}

func (g *Codegen) generateWhile(stmt typedast.Stmt) (bool, error) {
	headerBlock := g.fn.NewBlock("while.header")
	bodyBlock := g.fn.NewBlock("while.body")
	exitBlock := g.fn.NewBlock("while.exit")

	g.cur.NewBr(headerBlock)

	g.cur = headerBlock
	cond, err := g.generateExpr(*stmt.WhileCond)
	if err != nil {
		return false, err
	}
	g.cur.NewCondBr(cond, bodyBlock, exitBlock)

	g.loopStack = append(g.loopStack, loopFrame{continueTarget: headerBlock, breakTarget: exitBlock})
	g.cur = bodyBlock
	bodyTerm, err := g.generateStmt(*stmt.WhileBody)
	g.loopStack = g.loopStack[:len(g.loopStack)-1]
	if err != nil {
		return false, err
	}
	if !bodyTerm {
		g.cur.NewBr(headerBlock)
	}

	g.cur = exitBlock
	return false, nil
}

func (g *Codegen) generateFor(stmt typedast.Stmt) (bool, error) {
	g.enterScope()
	defer g.exitScope()

	if stmt.ForInit != nil {
		if _, err := g.generateStmt(*stmt.ForInit); err != nil {
			return false, err
		}
	}

	headerBlock := g.fn.NewBlock("for.header")
	bodyBlock := g.fn.NewBlock("for.body")
	updateBlock := g.fn.NewBlock("for.update")
	exitBlock := g.fn.NewBlock("for.exit")

	g.cur.NewBr(headerBlock)

	g.cur = headerBlock
	if stmt.ForCond != nil {
		cond, err := g.generateExpr(*stmt.ForCond)
		if err != nil {
			return false, err
		}
		g.cur.NewCondBr(cond, bodyBlock, exitBlock)
	} else {
		g.cur.NewBr(bodyBlock)
	}

	g.loopStack = append(g.loopStack, loopFrame{continueTarget: updateBlock, breakTarget: exitBlock})
	g.cur = bodyBlock
	bodyTerm, err := g.generateStmt(*stmt.ForBody)
	g.loopStack = g.loopStack[:len(g.loopStack)-1]
	if err != nil {
		return false, err
	}
	if !bodyTerm {
		g.cur.NewBr(updateBlock)
	}

	g.cur = updateBlock
	if stmt.ForUpdate != nil {
		if _, err := g.generateStmt(*stmt.ForUpdate); err != nil {
			return false, err
		}
	}
	g.cur.NewBr(headerBlock)

	g.cur = exitBlock
	return false, nil
}

func (g *Codegen) generateReturn(stmt typedast.Stmt) (bool, error) {
	if stmt.ReturnValue == nil {
		g.cur.NewRet(nil)
		return true, nil
	}
	val, err := g.generateExpr(*stmt.ReturnValue)
	if err != nil {
		return false, err
	}
	g.cur.NewRet(val)
	return true, nil
}

func (g *Codegen) generateBreak() (bool, error) {
	if len(g.loopStack) == 0 {
		return false, errf("break outside of a loop")
	}
	g.cur.NewBr(g.loopStack[len(g.loopStack)-1].breakTarget)
	return true, nil
}

func (g *Codegen) generateContinue() (bool, error) {
	if len(g.loopStack) == 0 {
		return false, errf("continue outside of a loop")
	}
	g.cur.NewBr(g.loopStack[len(g.loopStack)-1].continueTarget)
	return true, nil
}
