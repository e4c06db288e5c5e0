package driver_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hades-lang/hades/internal/driver"
)

func writeSource(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

// TestCompileEmitsLLVMIRWithoutToolchain exercises the pipeline through IR
// generation only (EmitIR: true), since llc/clang may not be present in
// the environment this runs in.
func TestCompileEmitsLLVMIRWithoutToolchain(t *testing.T) {
	dir := t.TempDir()
	entry := writeSource(t, dir, "main.hd", `
		fn main(): int {
			return 0;
		}
	`)

	res, err := driver.Compile(driver.Options{
		EntryFile: entry,
		OutputDir: dir,
		EmitIR:    true,
	})
	require.NoError(t, err)
	require.FileExists(t, res.IRPath)
	require.Empty(t, res.ObjPath)
	require.Empty(t, res.ExePath)

	ir, err := os.ReadFile(res.IRPath)
	require.NoError(t, err)
	require.Contains(t, string(ir), "define i64 @main")
}

func TestCompileNamesIRFileAfterEntryBaseName(t *testing.T) {
	dir := t.TempDir()
	entry := writeSource(t, dir, "hello.hd", `fn main(): int { return 0; }`)

	res, err := driver.Compile(driver.Options{
		EntryFile: entry,
		OutputDir: dir,
		EmitIR:    true,
	})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "hello.ll"), res.IRPath)
}

func TestCompileAcceptsProjectDirectory(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "main.hd", `
		fn main(): int {
			let x = 1 + 2;
			return x;
		}
	`)

	res, err := driver.Compile(driver.Options{
		EntryFile: dir,
		OutputDir: dir,
		EmitIR:    true,
	})
	require.NoError(t, err)
	require.FileExists(t, res.IRPath)
}

func TestCompileRequiresMainFunction(t *testing.T) {
	dir := t.TempDir()
	entry := writeSource(t, dir, "main.hd", `fn helper(): int { return 1; }`)

	_, err := driver.Compile(driver.Options{
		EntryFile: entry,
		OutputDir: dir,
		EmitIR:    true,
	})
	require.Error(t, err)
}

func TestCheckSucceedsOnWellTypedProgram(t *testing.T) {
	dir := t.TempDir()
	entry := writeSource(t, dir, "main.hd", `
		fn add(a: int, b: int): int { return a + b; }
	`)
	require.NoError(t, driver.Check(entry))
}

func TestCheckFailsOnTypeError(t *testing.T) {
	dir := t.TempDir()
	entry := writeSource(t, dir, "main.hd", `
		fn f(): int { return "not an int"; }
	`)
	err := driver.Check(entry)
	require.Error(t, err)
}

func TestCheckFailsOnMissingEntryFile(t *testing.T) {
	err := driver.Check(filepath.Join(t.TempDir(), "does-not-exist.hd"))
	require.Error(t, err)
}

func TestRunReturnsErrorWhenEmitIRSet(t *testing.T) {
	dir := t.TempDir()
	entry := writeSource(t, dir, "main.hd", `fn main(): int { return 0; }`)

	_, err := driver.Run(driver.Options{
		EntryFile: entry,
		OutputDir: dir,
		EmitIR:    true,
	})
	require.Error(t, err)
}
