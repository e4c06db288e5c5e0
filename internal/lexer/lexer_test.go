package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hades-lang/hades/internal/token"
)

func kinds(t *testing.T, src string) []token.Kind {
	t.Helper()
	toks, err := Tokenize("test.hd", []byte(src))
	require.NoError(t, err)
	var ks []token.Kind
	for _, tok := range toks {
		ks = append(ks, tok.Kind)
	}
	return ks
}

func TestTokenizeSpansCoverInput(t *testing.T) {
	src := "let x = 1 + 2;"
	toks, err := Tokenize("test.hd", []byte(src))
	require.NoError(t, err)

	covered := make([]bool, len(src))
	prevEnd := -1
	for _, tok := range toks {
		if tok.Kind == token.EOF {
			continue
		}
		assert.GreaterOrEqual(t, tok.Span.Start, prevEnd)
		prevEnd = tok.Span.End
		for i := tok.Span.Start; i < tok.Span.End; i++ {
			covered[i] = true
		}
	}
	for i := 0; i < len(src); i++ {
		if src[i] != ' ' {
			assert.True(t, covered[i], "byte %d (%q) is not covered by a token", i, src[i])
		}
	}
}

func TestKeywords(t *testing.T) {
	for word, kind := range token.Keywords {
		ks := kinds(t, word)
		require.Len(t, ks, 2) // keyword + EOF
		assert.Equal(t, kind, ks[0])
	}
}

func TestOperatorMaximalMunch(t *testing.T) {
	cases := map[string]token.Kind{
		"==": token.Eq,
		"!=": token.Ne,
		"+=": token.PlusAssign,
		"-=": token.MinusAssign,
		"<=": token.Le,
		">=": token.Ge,
		"&&": token.AndAnd,
		"||": token.OrOr,
		"..": token.DotDot,
		"<":  token.Lt,
		">":  token.Gt,
		"&":  token.And,
		"|":  token.Or,
		".":  token.Dot,
		"=":  token.Assign,
		"!":  token.Bang,
		"-":  token.Minus,
		"+":  token.Plus,
	}
	for op, kind := range cases {
		ks := kinds(t, op)
		require.Len(t, ks, 2, "operator %q", op)
		assert.Equal(t, kind, ks[0], "operator %q", op)
	}
}

func TestStringEscapes(t *testing.T) {
	toks, err := Tokenize("test.hd", []byte(`"abc\n"`))
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, token.String, toks[0].Kind)
	assert.Equal(t, "abc\n", toks[0].Value)
}

func TestNumberKinds(t *testing.T) {
	toks, err := Tokenize("test.hd", []byte("3.14"))
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, token.Float, toks[0].Kind)

	toks, err = Tokenize("test.hd", []byte("314"))
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, token.Number, toks[0].Kind)
}

func TestUnterminatedString(t *testing.T) {
	_, err := Tokenize("test.hd", []byte(`"unterminated`))
	require.Error(t, err)
	lexErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Contains(t, lexErr.Message, "unterminated")
}

func TestUnexpectedCharacter(t *testing.T) {
	_, err := Tokenize("test.hd", []byte("@"))
	require.Error(t, err)
	lexErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Contains(t, lexErr.Message, "unexpected character")
}

func TestPercentHasOwnKind(t *testing.T) {
	ks := kinds(t, "5 % 2")
	require.Len(t, ks, 4)
	assert.Equal(t, token.Percent, ks[1])
}
