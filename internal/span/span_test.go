package span

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMergesRanges(t *testing.T) {
	a := New("f.hd", 4, 8)
	b := New("f.hd", 10, 14)
	merged := a.To(b)
	assert.Equal(t, 4, merged.Start)
	assert.Equal(t, 14, merged.End)
	assert.Equal(t, "f.hd", merged.File)
}

func TestShrinkAndContains(t *testing.T) {
	s := New("f.hd", 3, 7)
	assert.True(t, s.ShrinkToLo().IsEmpty())
	assert.Equal(t, 7, s.ShrinkToHi().Start)
	assert.True(t, s.Contains(3))
	assert.True(t, s.Contains(6))
	assert.False(t, s.Contains(7))
	assert.Equal(t, 4, s.Len())
}

func TestPrinterRendersCaretSnippet(t *testing.T) {
	cache := NewCache()
	cache.Put("main.hd", []byte("let x = 1;\nlet y = oops;\n"))

	d := NewDiagnostic("undefined variable \"oops\"", New("main.hd", 19, 23)).
		WithHelp("declare it with let first")

	var out strings.Builder
	NewPrinter(cache).Print(&out, d)
	rendered := out.String()

	require.Contains(t, rendered, "error: undefined variable \"oops\"")
	require.Contains(t, rendered, "main.hd")
	require.Contains(t, rendered, "let y = oops;")
	require.Contains(t, rendered, "^^^^")
	require.Contains(t, rendered, "help: declare it with let first")
}
