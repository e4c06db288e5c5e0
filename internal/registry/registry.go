// Package registry loads a Hades entry module and every module it
// transitively imports, orders them by dependency via Kahn's algorithm,
// and concatenates their statements into one merged Program for the
// walker to consume.
package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/hades-lang/hades/internal/ast"
	"github.com/hades-lang/hades/internal/lexer"
	"github.com/hades-lang/hades/internal/parser"
	"github.com/hades-lang/hades/internal/span"
	"github.com/hades-lang/hades/internal/stdlib"
)

// Error is a ModuleError: not-found, circular-dependency, I/O, or a
// per-module parse failure with its inner message preserved.
type Error struct {
	Kind    ErrorKind
	Message string
	Path    string
	Diags   []span.Diagnostic // underlying lex/parse diagnostics, if any
}

// ErrorKind tags a ModuleError's variant.
type ErrorKind int

const (
	ErrNotFound ErrorKind = iota
	ErrCircularDependency
	ErrIO
	ErrParse
)

func (e *Error) Error() string {
	return fmt.Sprintf("module error (%s): %s", e.pathSuffix(), e.Message)
}

func (e *Error) pathSuffix() string {
	if e.Path == "" {
		return "?"
	}
	return e.Path
}

// Source holds where local modules are read from; standard-library modules
// come from the bundled stdlib package instead.
type Source struct {
	// ProjectDir is the directory local imports resolve against:
	// <ProjectDir>/<module>.hd
	ProjectDir string
}

// modulePath uniquely identifies a loaded module: "local:<abs path>" or
// "std:<name>", so a local file and a std module of the same name never
// collide in the dependency graph.
type modulePath string

func localPath(p string) modulePath { return modulePath("local:" + p) }
func stdPath(name string) modulePath { return modulePath("std:" + name) }

type loadedModule struct {
	path  modulePath
	prog  ast.Program
	deps  []modulePath
}

// Registry accumulates loaded modules and their dependency edges as Load
// recurses.
type Registry struct {
	src     Source
	loaded  map[modulePath]*loadedModule
	cache   *span.Cache
}

// New returns a Registry resolving local imports relative to projectDir.
func New(projectDir string) *Registry {
	return &Registry{
		src:    Source{ProjectDir: projectDir},
		loaded: make(map[modulePath]*loadedModule),
		cache:  span.NewCache(),
	}
}

// Cache returns the source cache populated as modules were loaded, for
// reuse by the diagnostic printer.
func (r *Registry) Cache() *span.Cache { return r.cache }

// ResolveEntry normalizes an entry argument: a directory resolves to the
// main.hd inside it, a file path is used as given.
func ResolveEntry(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", &Error{Kind: ErrNotFound, Message: errors.Wrap(err, "locating entry").Error(), Path: path}
	}
	if info.IsDir() {
		return filepath.Join(path, "main.hd"), nil
	}
	return path, nil
}

// Load parses the entry (a main.hd file, or a directory containing one)
// and every module it transitively imports, then returns the statements of
// all modules merged in dependency order.
func Load(entry string) (ast.Program, error) {
	entryFile, err := ResolveEntry(entry)
	if err != nil {
		return ast.Program{}, err
	}
	r := New(filepath.Dir(entryFile))
	entryPath := localPath(entryFile)
	if err := r.loadRecursive(entryPath, entryFile, "", make(map[modulePath]bool)); err != nil {
		return ast.Program{}, err
	}
	order, err := r.topoSort()
	if err != nil {
		return ast.Program{}, err
	}
	return r.merge(order), nil
}

func (r *Registry) loadRecursive(path modulePath, file string, stdName string, onStack map[modulePath]bool) error {
	if _, ok := r.loaded[path]; ok {
		return nil
	}
	if onStack[path] {
		return &Error{Kind: ErrCircularDependency, Message: "circular dependency detected", Path: string(path)}
	}
	onStack[path] = true
	defer delete(onStack, path)

	var src []byte
	if stdName != "" {
		text, ok := stdlib.Lookup(stdName)
		if !ok {
			return &Error{Kind: ErrNotFound, Message: "unknown standard library module", Path: stdName}
		}
		src = []byte(text)
	} else {
		data, err := os.ReadFile(file)
		if err != nil {
			return &Error{Kind: ErrNotFound, Message: errors.Wrap(err, "reading module").Error(), Path: file}
		}
		src = data
	}
	r.cache.Put(file, src)

	toks, err := lexer.Tokenize(file, src)
	if err != nil {
		merr := &Error{Kind: ErrParse, Message: err.Error(), Path: file}
		if lexErr, ok := err.(*lexer.Error); ok {
			merr.Diags = []span.Diagnostic{lexErr.Diagnostic}
		}
		return merr
	}
	prog, perrs := parser.Parse(file, toks)
	if len(perrs) > 0 {
		merr := &Error{Kind: ErrParse, Message: perrs[0].Error(), Path: file}
		for _, pe := range perrs {
			merr.Diags = append(merr.Diags, pe.Diagnostic)
		}
		return merr
	}

	lm := &loadedModule{path: path, prog: prog}
	r.loaded[path] = lm

	for _, stmt := range prog.Stmts {
		if stmt.Kind != ast.StmtImport {
			continue
		}
		depName := stmt.ImportModule.Name
		var depPath modulePath
		var depFile, depStd string
		if stmt.ImportPrefix == ast.ImportStd {
			depPath = stdPath(depName)
			depStd = depName
			depFile = "std:" + depName
		} else {
			depFile = filepath.Join(r.src.ProjectDir, depName+".hd")
			depPath = localPath(depFile)
		}
		lm.deps = append(lm.deps, depPath)
		if err := r.loadRecursive(depPath, depFile, depStd, onStack); err != nil {
			return err
		}
	}
	return nil
}

// topoSort performs Kahn's algorithm over the loaded module graph so the
// merge can place every module after the modules it depends on.
func (r *Registry) topoSort() ([]modulePath, error) {
	inDegree := make(map[modulePath]int)
	// edge dep -> dependent, since we want dependencies to sort first
	dependents := make(map[modulePath][]modulePath)

	for path := range r.loaded {
		inDegree[path] = 0
	}
	for path, lm := range r.loaded {
		for _, dep := range lm.deps {
			inDegree[path]++
			dependents[dep] = append(dependents[dep], path)
		}
	}

	var queue []modulePath
	for path, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, path)
		}
	}

	var order []modulePath
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		order = append(order, next)
		for _, dependent := range dependents[next] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(order) != len(r.loaded) {
		return nil, &Error{Kind: ErrCircularDependency, Message: "circular dependency detected among loaded modules"}
	}
	return order, nil
}

// merge concatenates module statements in dependency order (dependencies
// before dependents), so a definition always precedes its first use.
func (r *Registry) merge(order []modulePath) ast.Program {
	var stmts []ast.Stmt
	for _, path := range order {
		stmts = append(stmts, r.loaded[path].prog.Stmts...)
	}
	return ast.Program{Stmts: stmts}
}
