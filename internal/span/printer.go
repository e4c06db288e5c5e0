package span

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Cache lazily loads and remembers source file contents by path, so the
// printer never reads the same file twice across a batch of diagnostics.
type Cache struct {
	files map[string][]byte
}

// NewCache returns an empty file cache.
func NewCache() *Cache {
	return &Cache{files: make(map[string][]byte)}
}

// Put seeds the cache with in-memory source text for a path (used for
// standard-library modules, which have no file on disk).
func (c *Cache) Put(path string, content []byte) {
	c.files[path] = content
}

func (c *Cache) load(path string) ([]byte, error) {
	if data, ok := c.files[path]; ok {
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "loading source for diagnostic: %s", path)
	}
	c.files[path] = data
	return data, nil
}

// Printer renders Diagnostics as caret-annotated source snippets.
type Printer struct {
	cache *Cache
}

// NewPrinter creates a Printer backed by cache.
func NewPrinter(cache *Cache) *Printer {
	return &Printer{cache: cache}
}

// Print writes a rendered diagnostic to w.
func (p *Printer) Print(w io.Writer, d Diagnostic) {
	fmt.Fprintf(w, "%s: %s\n", d.Severity, d.Message)
	fmt.Fprintf(w, "  --> %s\n", d.Span)

	content, err := p.cache.load(d.Span.File)
	if err != nil {
		fmt.Fprintf(w, "  (source unavailable: %v)\n", err)
		return
	}

	line, col, lineText := locate(content, d.Span.Start)
	fmt.Fprintf(w, "%5d | %s\n", line, lineText)

	markerLen := d.Span.Len()
	if markerLen <= 0 {
		markerLen = 1
	}
	if col-1+markerLen > len(lineText) {
		markerLen = len(lineText) - (col - 1)
		if markerLen <= 0 {
			markerLen = 1
		}
	}
	fmt.Fprintf(w, "      | %s%s\n", strings.Repeat(" ", col-1), strings.Repeat("^", markerLen))

	if d.Help != "" {
		fmt.Fprintf(w, "  help: %s\n", d.Help)
	}
	if d.Note != "" {
		fmt.Fprintf(w, "  note: %s\n", d.Note)
	}
}

// PrintAll renders a batch of diagnostics in encounter order, separated by
// blank lines.
func (p *Printer) PrintAll(w io.Writer, ds []Diagnostic) {
	for i, d := range ds {
		if i > 0 {
			fmt.Fprintln(w)
		}
		p.Print(w, d)
	}
}

// locate returns the 1-indexed line and column of byte offset pos within
// content, along with the full text of that line (without its terminator).
func locate(content []byte, pos int) (line, col int, lineText string) {
	if pos > len(content) {
		pos = len(content)
	}
	line = 1
	lineStart := 0
	for i := 0; i < pos; i++ {
		if content[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	col = pos - lineStart + 1

	scanner := bufio.NewScanner(strings.NewReader(string(content[lineStart:])))
	scanner.Buffer(make([]byte, 0, 1024), 1<<20)
	if scanner.Scan() {
		lineText = scanner.Text()
	}
	return line, col, lineText
}
