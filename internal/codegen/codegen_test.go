package codegen_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hades-lang/hades/internal/codegen"
	"github.com/hades-lang/hades/internal/lexer"
	"github.com/hades-lang/hades/internal/parser"
	"github.com/hades-lang/hades/internal/walker"
)

func generate(t *testing.T, src string) string {
	t.Helper()
	toks, err := lexer.Tokenize("test.hd", []byte(src))
	require.NoError(t, err)
	prog, errs := parser.Parse("test.hd", toks)
	require.Empty(t, errs)
	typed, _, err := walker.Walk(prog)
	require.NoError(t, err)
	module, err := codegen.Generate(typed, "test.hd")
	require.NoError(t, err)
	return module.String()
}

func TestArithmeticFunctionLowersToAddAndRet(t *testing.T) {
	ir := generate(t, `fn add(a: int, b: int): int { return a + b; }`)
	require.Contains(t, ir, "define i64 @add")
	require.Contains(t, ir, "add i64")
	require.Contains(t, ir, "ret i64")
}

func TestPrintfCallLowersToVariadicCall(t *testing.T) {
	ir := generate(t, `fn f(): void { printf("%d", 1); }`)
	require.Contains(t, ir, "declare i32 @printf(i8* %format, ...)")
	require.Contains(t, ir, "call i32 (i8*, ...) @printf")
}

func TestStructFieldAccessLowersToGEPAndLoad(t *testing.T) {
	ir := generate(t, `
		struct Point { x: int, y: int }
		fn sum(p: Point): int { return p.x + p.y; }
	`)
	require.Contains(t, ir, "%Point = type { i64, i64 }")
	require.Contains(t, ir, "getelementptr")
}

func TestWhileLoopLowersToThreeBlocks(t *testing.T) {
	ir := generate(t, `
		fn countdown(n: int): int {
			while n > 0 {
				n = n - 1;
			}
			return n;
		}
	`)
	require.Contains(t, ir, "while.header")
	require.Contains(t, ir, "while.body")
	require.Contains(t, ir, "while.exit")
}

func TestForLoopWithContinueBranchesToUpdateBlock(t *testing.T) {
	ir := generate(t, `
		fn sumEven(): int {
			let total = 0;
			for let i = 0; i < 10; i += 1 {
				if i % 2 != 0 {
					continue;
				}
				total += i;
			}
			return total;
		}
	`)
	require.Contains(t, ir, "for.update")
	// continue must branch directly to the update block, not the header:
	// one such branch comes from continue, the other from the body's end.
	require.Equal(t, 2, strings.Count(ir, "br label %for.update"))
}

func TestBreakBranchesToExitBlock(t *testing.T) {
	ir := generate(t, `
		fn firstNegative(): int {
			let i = 0;
			while true {
				if i < 0 {
					break;
				}
				i = i - 1;
			}
			return i;
		}
	`)
	require.Contains(t, ir, "br label %while.exit")
}

func TestForInitWithoutLetDeclaresCounter(t *testing.T) {
	ir := generate(t, `
		fn sum(): int {
			let s = 0;
			for i = 0; i < 5; i += 1 {
				if i == 2 {
					continue;
				}
				s += i;
			}
			return s;
		}
	`)
	require.Contains(t, ir, "for.header")
	require.Contains(t, ir, "br label %for.update")
}

func TestBothBranchesReturning(t *testing.T) {
	ir := generate(t, `
		fn pick(c: bool): int {
			if c {
				return 1;
			} else {
				return 2;
			}
		}
	`)
	require.Contains(t, ir, "unreachable")
}

func TestBitwiseOperatorsLowerToIntegerInstructions(t *testing.T) {
	ir := generate(t, `
		fn mix(a: int, b: int): int {
			return ((a & b) | (a ^ b)) + ((a << 1) - (b >> 1));
		}
	`)
	require.Contains(t, ir, "and i64")
	require.Contains(t, ir, "or i64")
	require.Contains(t, ir, "xor i64")
	require.Contains(t, ir, "shl i64")
	require.Contains(t, ir, "ashr i64")
}

func TestIntFloatPromotionInsertsSIToFP(t *testing.T) {
	ir := generate(t, `fn f(): float { return 1 + 2.0; }`)
	require.Contains(t, ir, "sitofp")
	require.Contains(t, ir, "fadd")
}

func TestStructLiteralZeroInitializesOmittedFields(t *testing.T) {
	ir := generate(t, `
		struct Pair { a: int, b: int }
		fn f(): int {
			let p = Pair{a: 5};
			return p.b;
		}
	`)
	// every field slot is zero-initialized before the explicit a:5 store;
	// both the zero store and the store of 5 must be present.
	require.Contains(t, ir, "store i64 0")
	require.Contains(t, ir, "store i64 5")
}

func TestArrayIndexLowersToGEP(t *testing.T) {
	ir := generate(t, `
		fn first(): int {
			let xs: [int; 3] = [1, 2, 3];
			return xs[0];
		}
	`)
	require.Contains(t, ir, "[3 x i64]")
	require.Contains(t, ir, "getelementptr")
}
