package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hades-lang/hades/internal/ast"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDiamondImportOrdersDependenciesFirst(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "c.hd", "module c;\nfn cFunc(): int { return 1; }\n")
	writeFile(t, dir, "a.hd", "module a;\nimport c;\nfn aFunc(): int { return cFunc(); }\n")
	writeFile(t, dir, "b.hd", "module b;\nimport c;\nfn bFunc(): int { return cFunc(); }\n")
	entry := writeFile(t, dir, "main.hd", "import a;\nimport b;\nfn main(): int { return aFunc() + bFunc(); }\n")

	prog, err := Load(entry)
	require.NoError(t, err)

	indexOf := func(fnName string) int {
		for i, stmt := range prog.Stmts {
			if stmt.Kind == ast.StmtFuncDef && stmt.FuncName.Name == fnName {
				return i
			}
		}
		return -1
	}
	cIdx := indexOf("cFunc")
	aIdx := indexOf("aFunc")
	bIdx := indexOf("bFunc")
	mainIdx := indexOf("main")

	require.True(t, cIdx >= 0 && aIdx >= 0 && bIdx >= 0 && mainIdx >= 0)
	assert.Less(t, cIdx, aIdx)
	assert.Less(t, cIdx, bIdx)
	assert.Less(t, aIdx, mainIdx)
	assert.Less(t, bIdx, mainIdx)
}

func TestCircularImportDetected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.hd", "module a;\nimport b;\n")
	writeFile(t, dir, "b.hd", "module b;\nimport a;\n")
	entry := writeFile(t, dir, "main.hd", "import a;\n")

	_, err := Load(entry)
	require.Error(t, err)
	modErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ErrCircularDependency, modErr.Kind)
}

func TestMissingLocalImportFails(t *testing.T) {
	dir := t.TempDir()
	entry := writeFile(t, dir, "main.hd", "import nope;\nfn main(): int { return 0; }\n")

	_, err := Load(entry)
	require.Error(t, err)
	modErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ErrNotFound, modErr.Kind)
}

func TestLoadAcceptsProjectDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.hd", "fn main(): int { return 0; }\n")

	prog, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, prog.Stmts, 1)
	assert.Equal(t, ast.StmtFuncDef, prog.Stmts[0].Kind)
}

func TestStdImportResolvesToBundledSource(t *testing.T) {
	dir := t.TempDir()
	entry := writeFile(t, dir, "main.hd", "import std.math;\nfn main(): int { return abs(-1); }\n")

	prog, err := Load(entry)
	require.NoError(t, err)
	assert.NotEmpty(t, prog.Stmts)
}
