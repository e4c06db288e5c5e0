package walker

import (
	"fmt"

	"github.com/hades-lang/hades/internal/ast"
	"github.com/hades-lang/hades/internal/typedast"
	"github.com/hades-lang/hades/internal/types"
)

func (w *walker) walkStmt(stmt ast.Stmt) (typedast.Stmt, error) {
	switch stmt.Kind {
	case ast.StmtLet:
		return w.walkLet(stmt)
	case ast.StmtContinue:
		return typedast.Stmt{Kind: typedast.StmtContinue, Span: stmt.Span}, nil
	case ast.StmtBreak:
		return typedast.Stmt{Kind: typedast.StmtBreak, Span: stmt.Span}, nil
	case ast.StmtExpr:
		e, err := w.walkExpr(stmt.Expr)
		if err != nil {
			return typedast.Stmt{}, err
		}
		return typedast.Stmt{Kind: typedast.StmtExpr, Span: stmt.Span, Expr: e}, nil
	case ast.StmtIf:
		return w.walkIf(stmt)
	case ast.StmtWhile:
		return w.walkWhile(stmt)
	case ast.StmtFor:
		return w.walkFor(stmt)
	case ast.StmtBlock:
		return w.walkBlock(stmt)
	case ast.StmtReturn:
		return w.walkReturn(stmt)
	default:
		return typedast.Stmt{}, newError(InvalidType, fmt.Sprintf("unsupported statement kind %v", stmt.Kind), stmt.Span)
	}
}

func (w *walker) walkLet(stmt ast.Stmt) (typedast.Stmt, error) {
	value, err := w.walkExpr(stmt.LetValue)
	if err != nil {
		return typedast.Stmt{}, err
	}
	declared := value.Type
	if stmt.LetType != nil {
		dt, err := w.resolveType(*stmt.LetType, stmt.Span)
		if err != nil {
			return typedast.Stmt{}, err
		}
		if !dt.Equal(value.Type) {
			return typedast.Stmt{}, newError(TypeMismatch,
				fmt.Sprintf("let %q: declared type %s does not match value type %s", stmt.LetName.Name, dt, value.Type),
				stmt.Span)
		}
		declared = dt
	}
	if declared.Kind == types.Void {
		return typedast.Stmt{}, newError(InvalidType, fmt.Sprintf("let %q cannot have type void", stmt.LetName.Name), stmt.Span)
	}
	if !w.ctx.declareLocal(stmt.LetName.Name, declared) {
		return typedast.Stmt{}, newError(RedefinedVariable, fmt.Sprintf("variable %q redefined in this scope", stmt.LetName.Name), stmt.Span)
	}
	return typedast.Stmt{
		Kind: typedast.StmtLet, Span: stmt.Span,
		LetName: stmt.LetName.Name, LetType: declared, LetValue: value,
	}, nil
}

func (w *walker) walkBlock(stmt ast.Stmt) (typedast.Stmt, error) {
	w.ctx.enterScope()
	defer w.ctx.exitScope()
	out := make([]typedast.Stmt, 0, len(stmt.Stmts))
	for _, s := range stmt.Stmts {
		ts, err := w.walkStmt(s)
		if err != nil {
			return typedast.Stmt{}, err
		}
		out = append(out, ts)
	}
	return typedast.Stmt{Kind: typedast.StmtBlock, Span: stmt.Span, Stmts: out}, nil
}

func (w *walker) walkIf(stmt ast.Stmt) (typedast.Stmt, error) {
	cond, err := w.walkExpr(*stmt.Cond)
	if err != nil {
		return typedast.Stmt{}, err
	}
	if cond.Type.Kind != types.Bool {
		return typedast.Stmt{}, newError(TypeMismatch, fmt.Sprintf("if condition must be bool, found %s", cond.Type), stmt.Cond.Span)
	}
	then, err := w.walkBlock(*stmt.Then)
	if err != nil {
		return typedast.Stmt{}, err
	}
	out := typedast.Stmt{Kind: typedast.StmtIf, Span: stmt.Span, Cond: &cond, Then: &then}
	if stmt.Else != nil {
		var elseStmt typedast.Stmt
		var err error
		if stmt.Else.Kind == ast.StmtIf {
			elseStmt, err = w.walkIf(*stmt.Else)
		} else {
			elseStmt, err = w.walkBlock(*stmt.Else)
		}
		if err != nil {
			return typedast.Stmt{}, err
		}
		out.Else = &elseStmt
	}
	return out, nil
}

func (w *walker) walkWhile(stmt ast.Stmt) (typedast.Stmt, error) {
	cond, err := w.walkExpr(*stmt.WhileCond)
	if err != nil {
		return typedast.Stmt{}, err
	}
	if cond.Type.Kind != types.Bool {
		return typedast.Stmt{}, newError(TypeMismatch, fmt.Sprintf("while condition must be bool, found %s", cond.Type), stmt.WhileCond.Span)
	}
	body, err := w.walkBlock(*stmt.WhileBody)
	if err != nil {
		return typedast.Stmt{}, err
	}
	return typedast.Stmt{Kind: typedast.StmtWhile, Span: stmt.Span, WhileCond: &cond, WhileBody: &body}, nil
}

func (w *walker) walkFor(stmt ast.Stmt) (typedast.Stmt, error) {
	w.ctx.enterScope()
	defer w.ctx.exitScope()

	var init *typedast.Stmt
	if stmt.ForInit != nil {
		i, err := w.walkForInit(*stmt.ForInit)
		if err != nil {
			return typedast.Stmt{}, err
		}
		initType := i.LetType
		if i.Kind == typedast.StmtExpr {
			initType = i.Expr.Type
		}
		if !initType.IsNumeric() {
			return typedast.Stmt{}, newError(TypeMismatch, "for-loop init must be int or float", stmt.ForInit.Span)
		}
		init = &i
	}
	var cond *typedast.Expr
	if stmt.ForCond != nil {
		c, err := w.walkExpr(*stmt.ForCond)
		if err != nil {
			return typedast.Stmt{}, err
		}
		if c.Type.Kind != types.Bool {
			return typedast.Stmt{}, newError(TypeMismatch, fmt.Sprintf("for condition must be bool, found %s", c.Type), stmt.ForCond.Span)
		}
		cond = &c
	}
	var update *typedast.Stmt
	if stmt.ForUpdate != nil {
		u, err := w.walkStmt(*stmt.ForUpdate)
		if err != nil {
			return typedast.Stmt{}, err
		}
		update = &u
	}
	body, err := w.walkBlock(*stmt.ForBody)
	if err != nil {
		return typedast.Stmt{}, err
	}
	return typedast.Stmt{
		Kind: typedast.StmtFor, Span: stmt.Span,
		ForInit: init, ForCond: cond, ForUpdate: update, ForBody: &body,
	}, nil
}

// walkForInit handles the init clause's implicit declaration form:
// `for i = 0; ...` introduces i in the loop's scope when no binding of
// that name exists yet, so a loop counter does not require a prior let.
// Every other init shape walks as an ordinary statement.
func (w *walker) walkForInit(stmt ast.Stmt) (typedast.Stmt, error) {
	if stmt.Kind == ast.StmtExpr && stmt.Expr.Kind == ast.ExprAssign &&
		stmt.Expr.AssignOp == ast.AssignSet && stmt.Expr.Target.Kind == ast.ExprIdent {
		name := stmt.Expr.Target.Name.Name
		if _, exists := w.ctx.lookupLocal(name); !exists {
			value, err := w.walkExpr(*stmt.Expr.RHS)
			if err != nil {
				return typedast.Stmt{}, err
			}
			w.ctx.declareLocal(name, value.Type)
			return typedast.Stmt{
				Kind: typedast.StmtLet, Span: stmt.Span,
				LetName: name, LetType: value.Type, LetValue: value,
			}, nil
		}
	}
	return w.walkStmt(stmt)
}

func (w *walker) walkReturn(stmt ast.Stmt) (typedast.Stmt, error) {
	var retType = types.TVoid
	var val *typedast.Expr
	if stmt.ReturnValue != nil {
		v, err := w.walkExpr(*stmt.ReturnValue)
		if err != nil {
			return typedast.Stmt{}, err
		}
		retType = v.Type
		val = &v
	}
	if w.ctx.current == nil {
		return typedast.Stmt{}, newError(InvalidType, "return outside of a function", stmt.Span)
	}
	if !retType.Equal(w.ctx.current.Return) {
		return typedast.Stmt{}, newError(ReturnTypeMismatch,
			fmt.Sprintf("function %q returns %s, found %s", w.ctx.current.Name, w.ctx.current.Return, retType), stmt.Span)
	}
	return typedast.Stmt{Kind: typedast.StmtReturn, Span: stmt.Span, ReturnValue: val}, nil
}
