package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hades-lang/hades/internal/ast"
	"github.com/hades-lang/hades/internal/lexer"
)

func mustParse(t *testing.T, src string) ast.Program {
	t.Helper()
	toks, err := lexer.Tokenize("test.hd", []byte(src))
	require.NoError(t, err)
	prog, errs := Parse("test.hd", toks)
	require.Empty(t, errs)
	return prog
}

func TestParseFuncDef(t *testing.T) {
	prog := mustParse(t, "fn main(): int { return 0; }")
	require.Len(t, prog.Stmts, 1)
	fn := prog.Stmts[0]
	require.Equal(t, ast.StmtFuncDef, fn.Kind)
	assert.Equal(t, "main", fn.FuncName.Name)
	assert.Empty(t, fn.Params)
	assert.Equal(t, ast.TypeInt, fn.ReturnType.Kind)
	require.Len(t, fn.FuncBody.Stmts, 1)
	ret := fn.FuncBody.Stmts[0]
	require.Equal(t, ast.StmtReturn, ret.Kind)
	require.NotNil(t, ret.ReturnValue)
	assert.Equal(t, ast.ExprLiteral, ret.ReturnValue.Kind)
	assert.Equal(t, int64(0), ret.ReturnValue.Value.Int)
}

func TestParsePrecedence(t *testing.T) {
	prog := mustParse(t, "let x = 1 + 2 * 3;")
	require.Len(t, prog.Stmts, 1)
	let := prog.Stmts[0]
	require.Equal(t, ast.StmtLet, let.Kind)
	val := let.LetValue
	require.Equal(t, ast.ExprBinary, val.Kind)
	assert.Equal(t, ast.OpAdd, val.BinOp)
	assert.Equal(t, int64(1), val.Left.Value.Int)
	require.Equal(t, ast.ExprBinary, val.Right.Kind)
	assert.Equal(t, ast.OpMul, val.Right.BinOp)
}

func TestStructLiteralDisabledInCondition(t *testing.T) {
	toks, err := lexer.Tokenize("test.hd", []byte("fn f(): int { if Point{x:0,y:0}.x < 1 { } return 0; }"))
	require.NoError(t, err)
	_, errs := Parse("test.hd", toks)
	assert.NotEmpty(t, errs, "bare struct literal in an if-condition should fail to parse")
}

func TestStructLiteralAllowedParenthesized(t *testing.T) {
	prog := mustParse(t, "fn f(): int { if (Point{x:0,y:0}.x < 1) { } return 0; }")
	require.Len(t, prog.Stmts, 1)
}

func TestParseErrorRecoveryContinuesToLaterStatements(t *testing.T) {
	toks, err := lexer.Tokenize("test.hd", []byte("let = ; let y = 1;"))
	require.NoError(t, err)
	prog, errs := Parse("test.hd", toks)
	assert.NotEmpty(t, errs)
	require.Len(t, prog.Stmts, 1)
	assert.Equal(t, "y", prog.Stmts[0].LetName.Name)
}

func TestAssignmentToFieldChain(t *testing.T) {
	prog := mustParse(t, "fn f(): void { p.x = 1; }")
	body := prog.Stmts[0].FuncBody.Stmts
	require.Len(t, body, 1)
	require.Equal(t, ast.StmtExpr, body[0].Kind)
	e := body[0].Expr
	require.Equal(t, ast.ExprAssign, e.Kind)
	require.Equal(t, ast.ExprField, e.Target.Kind)
}

func TestStructLiteralAllowedInCallArgsInsideCondition(t *testing.T) {
	prog := mustParse(t, "fn f(): int { if check(Point{x: 0}) { } return 0; }")
	require.Len(t, prog.Stmts, 1)
}

func TestBitwiseOperatorsKeepTheirOwnKinds(t *testing.T) {
	prog := mustParse(t, "let x = 1 ^ 2;")
	val := prog.Stmts[0].LetValue
	require.Equal(t, ast.ExprBinary, val.Kind)
	assert.Equal(t, ast.OpBitXor, val.BinOp)

	prog = mustParse(t, "let y = 1 & 2;")
	assert.Equal(t, ast.OpBitAnd, prog.Stmts[0].LetValue.BinOp)
}

func TestForInitWithoutLetParses(t *testing.T) {
	prog := mustParse(t, "fn f(): void { for i = 0; i < 3; i += 1 { } }")
	body := prog.Stmts[0].FuncBody.Stmts
	require.Len(t, body, 1)
	forStmt := body[0]
	require.Equal(t, ast.StmtFor, forStmt.Kind)
	require.NotNil(t, forStmt.ForInit)
	assert.Equal(t, ast.StmtExpr, forStmt.ForInit.Kind)
	assert.Equal(t, ast.ExprAssign, forStmt.ForInit.Expr.Kind)
}

func TestInvalidAssignmentTarget(t *testing.T) {
	toks, err := lexer.Tokenize("test.hd", []byte("fn f(): void { 1 + 2 = 3; }"))
	require.NoError(t, err)
	_, errs := Parse("test.hd", toks)
	assert.NotEmpty(t, errs)
}
