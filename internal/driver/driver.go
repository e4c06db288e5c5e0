// Package driver wires the pipeline together: lex, parse, resolve imports
// through the module registry, type-check, emit LLVM IR, and invoke the
// system toolchain (llc, then a C compiler) to produce a native binary.
package driver

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/hades-lang/hades/internal/codegen"
	"github.com/hades-lang/hades/internal/registry"
	"github.com/hades-lang/hades/internal/walker"
)

// Options controls one compile invocation.
type Options struct {
	EntryFile string // a main.hd file, or a directory containing one
	OutputDir string // defaults to "build"
	OutputExe string // executable name inside OutputDir; defaults to "output"
	EmitIR    bool   // stop after writing the .ll file, skip llc/link
	KeepObj   bool   // keep the intermediate .o instead of removing it after linking
	CC        string // C compiler used to link; defaults to "clang"
}

// Result records the artifacts a successful compile produced.
type Result struct {
	IRPath  string
	ObjPath string
	ExePath string
}

// Compile runs the full pipeline for Options and returns the artifact paths.
func Compile(opts Options) (*Result, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = "build"
	}
	if opts.CC == "" {
		opts.CC = "clang"
	}

	entryFile, err := registry.ResolveEntry(opts.EntryFile)
	if err != nil {
		return nil, err
	}

	prog, err := registry.Load(entryFile)
	if err != nil {
		return nil, errors.Wrap(err, "resolving imports")
	}

	typed, sctx, err := walker.Walk(prog)
	if err != nil {
		return nil, errors.Wrap(err, "type-checking")
	}
	if err := walker.RunChecks(typed, sctx, []walker.CheckFunc{walker.RequireMain}); err != nil {
		return nil, errors.Wrap(err, "type-checking")
	}

	module, err := codegen.Generate(typed, filepath.Base(entryFile))
	if err != nil {
		return nil, errors.Wrap(err, "generating LLVM IR")
	}

	base := stripExt(filepath.Base(entryFile))
	exe := opts.OutputExe
	if exe == "" {
		exe = "output"
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating output directory")
	}

	res := &Result{IRPath: filepath.Join(opts.OutputDir, base+".ll")}
	if err := os.WriteFile(res.IRPath, []byte(module.String()), 0o644); err != nil {
		return nil, errors.Wrap(err, "writing LLVM IR")
	}
	if opts.EmitIR {
		return res, nil
	}

	// llc runs at its default optimization level, whose pipeline includes
	// mem2reg; that is what promotes the codegen's alloca-per-local slots
	// into SSA registers.
	res.ObjPath = filepath.Join(opts.OutputDir, base+".o")
	if out, err := exec.Command("llc", res.IRPath, "-filetype=obj", "-o", res.ObjPath).CombinedOutput(); err != nil {
		return nil, fmt.Errorf("llc failed: %w\n%s", err, out)
	}

	res.ExePath = filepath.Join(opts.OutputDir, exe)
	if out, err := exec.Command(opts.CC, res.ObjPath, "-o", res.ExePath, "-lc").CombinedOutput(); err != nil {
		return nil, fmt.Errorf("linking failed: %w\n%s", err, out)
	}
	if !opts.KeepObj {
		_ = os.Remove(res.ObjPath)
	}
	return res, nil
}

// Run compiles opts then executes the resulting binary, returning its exit
// code (or an error if the binary could not be started).
func Run(opts Options) (int, error) {
	res, err := Compile(opts)
	if err != nil {
		return 0, err
	}
	if res.ExePath == "" {
		return 0, fmt.Errorf("nothing to run: EmitIR was set")
	}
	cmd := exec.Command(res.ExePath)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), nil
		}
		return 0, err
	}
	return 0, nil
}

// Check runs the pipeline through type-checking only, for the `hades check`
// subcommand; no LLVM IR is emitted.
func Check(entry string) error {
	prog, err := registry.Load(entry)
	if err != nil {
		return errors.Wrap(err, "resolving imports")
	}
	if _, _, err := walker.Walk(prog); err != nil {
		return errors.Wrap(err, "type-checking")
	}
	return nil
}

func stripExt(name string) string {
	ext := filepath.Ext(name)
	return name[:len(name)-len(ext)]
}
