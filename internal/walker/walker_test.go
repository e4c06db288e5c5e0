package walker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hades-lang/hades/internal/lexer"
	"github.com/hades-lang/hades/internal/parser"
	"github.com/hades-lang/hades/internal/typedast"
	"github.com/hades-lang/hades/internal/types"
)

func mustWalk(t *testing.T, src string) (typedast.Program, *Context, error) {
	t.Helper()
	toks, err := lexer.Tokenize("test.hd", []byte(src))
	require.NoError(t, err)
	prog, errs := parser.Parse("test.hd", toks)
	require.Empty(t, errs)
	return Walk(prog)
}

func TestLetTypeMismatch(t *testing.T) {
	_, _, err := mustWalk(t, "fn f(): void { let x: int = 3.14; }")
	require.Error(t, err)
	semErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, TypeMismatch, semErr.Kind)
}

func TestShadowingInNestedBlockIsLegal(t *testing.T) {
	_, _, err := mustWalk(t, `
		fn f(): int {
			let x = 1;
			{
				let x = 2;
			}
			return x;
		}
	`)
	require.NoError(t, err)
}

func TestIfConditionMustBeBool(t *testing.T) {
	_, _, err := mustWalk(t, "fn f(): void { if 1 { } }")
	require.Error(t, err)
	semErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, TypeMismatch, semErr.Kind)
}

func TestVariadicPrintfAccepted(t *testing.T) {
	_, _, err := mustWalk(t, `fn f(): void { printf("%d", 1, 2); }`)
	require.NoError(t, err)
}

func TestFixedArityMismatch(t *testing.T) {
	_, _, err := mustWalk(t, `
		fn add(a: int, b: int): int { return a + b; }
		fn f(): int { return add(1); }
	`)
	require.Error(t, err)
	semErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ArgumentCountMismatch, semErr.Kind)
}

func TestReturnTypeMismatch(t *testing.T) {
	_, _, err := mustWalk(t, `fn f(): int { return true; }`)
	require.Error(t, err)
	semErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ReturnTypeMismatch, semErr.Kind)
}

func TestIntFloatPromotion(t *testing.T) {
	_, _, err := mustWalk(t, `fn f(): float { return 1 + 2.0; }`)
	require.NoError(t, err)
}

func TestReservedModuleName(t *testing.T) {
	_, _, err := mustWalk(t, "module main;\nfn f(): void { }")
	require.Error(t, err)
	semErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, InvalidModuleName, semErr.Kind)
}

func TestForInitImplicitlyDeclaresCounter(t *testing.T) {
	_, _, err := mustWalk(t, `
		fn f(): int {
			let s = 0;
			for i = 0; i < 5; i += 1 {
				s += i;
			}
			return s;
		}
	`)
	require.NoError(t, err)
}

func TestForCounterNotVisibleAfterLoop(t *testing.T) {
	_, _, err := mustWalk(t, `
		fn f(): int {
			for i = 0; i < 5; i += 1 { }
			return i;
		}
	`)
	require.Error(t, err)
	semErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, UndefinedVariable, semErr.Kind)
}

func TestStringComparisonRejected(t *testing.T) {
	_, _, err := mustWalk(t, `fn f(): bool { return "a" == "a"; }`)
	require.Error(t, err)
	semErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, InvalidBinaryOperation, semErr.Kind)

	_, _, err = mustWalk(t, `fn f(): bool { return "a" < "b"; }`)
	require.Error(t, err)
}

func TestStructComparisonRejected(t *testing.T) {
	_, _, err := mustWalk(t, `
		struct P { x: int }
		fn f(): bool { return P{x: 1} == P{x: 1}; }
	`)
	require.Error(t, err)
	semErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, InvalidBinaryOperation, semErr.Kind)
}

func TestBoolEqualityAllowedButNotOrdering(t *testing.T) {
	_, _, err := mustWalk(t, `fn f(): bool { return true == false; }`)
	require.NoError(t, err)

	_, _, err = mustWalk(t, `fn f(): bool { return true < false; }`)
	require.Error(t, err)
}

func TestBitwiseOperatorsRequireInts(t *testing.T) {
	_, _, err := mustWalk(t, `fn f(): int { return 1 & 2; }`)
	require.NoError(t, err)

	_, _, err = mustWalk(t, `fn f(): bool { return true & false; }`)
	require.Error(t, err)
	semErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, InvalidBinaryOperation, semErr.Kind)
}

func TestStructFieldMayReferenceLaterStruct(t *testing.T) {
	_, _, err := mustWalk(t, `
		struct Outer { inner: Inner }
		struct Inner { v: int }
		fn f(): int {
			let o = Outer{inner: Inner{v: 7}};
			return o.inner.v;
		}
	`)
	require.NoError(t, err)
}

func TestTopLevelStatementRejected(t *testing.T) {
	_, _, err := mustWalk(t, "let x = 1;")
	require.Error(t, err)
}

func TestRequireMainCheck(t *testing.T) {
	prog, ctx, err := mustWalk(t, `fn helper(): int { return 1; }`)
	require.NoError(t, err)
	require.Error(t, RunChecks(prog, ctx, []CheckFunc{RequireMain}))

	prog, ctx, err = mustWalk(t, `fn main(): int { return 0; }`)
	require.NoError(t, err)
	require.NoError(t, RunChecks(prog, ctx, []CheckFunc{RequireMain}))
}

func TestStructFieldAccess(t *testing.T) {
	_, ctx, err := mustWalk(t, `
		struct Point { x: int, y: int }
		fn f(): int {
			let p = Point{x: 10, y: 32};
			return p.x + p.y;
		}
	`)
	require.NoError(t, err)
	fields := ctx.Structs["Point"]
	require.Len(t, fields, 2)
	assert.Equal(t, types.TInt, fields[0].Type)
}
