// Package walker performs name resolution and type checking, turning a
// merged raw ast.Program into a typedast.Program plus a fully populated
// Context. It is the single point where semantic rules are enforced; it is
// fatal at the first SemanticError.
package walker

import (
	"fmt"

	"github.com/hades-lang/hades/internal/ast"
	"github.com/hades-lang/hades/internal/span"
	"github.com/hades-lang/hades/internal/typedast"
	"github.com/hades-lang/hades/internal/types"
)

var reservedModuleNames = map[string]bool{"main": true, "std": true, "core": true}

// Walk type-checks prog from a fresh Context and returns the typed program.
func Walk(prog ast.Program) (typedast.Program, *Context, error) {
	ctx := NewContext()
	w := &walker{ctx: ctx}
	w.ctx.enterScope()
	defer w.ctx.exitScope()

	// Struct and function headers are registered in a first pass so
	// mutually-recursive calls and forward field references type-check
	// regardless of declaration order within the merged program.
	if err := w.registerHeaders(prog); err != nil {
		return typedast.Program{}, nil, err
	}

	var out []typedast.Stmt
	for _, stmt := range prog.Stmts {
		ts, skip, err := w.walkTopLevel(stmt)
		if err != nil {
			return typedast.Program{}, nil, err
		}
		if !skip {
			out = append(out, ts)
		}
	}
	return typedast.Program{Stmts: out}, ctx, nil
}

type walker struct {
	ctx *Context
}

func (w *walker) registerHeaders(prog ast.Program) error {
	// Struct names are claimed before any field type resolves, so a field
	// may reference a struct declared later in the same file.
	for _, stmt := range prog.Stmts {
		if stmt.Kind != ast.StmtStructDef {
			continue
		}
		if _, exists := w.ctx.Structs[stmt.StructName.Name]; exists {
			return newError(RedefinedStruct, fmt.Sprintf("struct %q redefined", stmt.StructName.Name), stmt.Span)
		}
		w.ctx.Structs[stmt.StructName.Name] = nil
	}
	for _, stmt := range prog.Stmts {
		if stmt.Kind != ast.StmtStructDef {
			continue
		}
		fields := make([]types.Param, 0, len(stmt.Fields))
		for _, f := range stmt.Fields {
			ft, err := w.resolveType(f.Type, stmt.Span)
			if err != nil {
				return err
			}
			fields = append(fields, types.Param{Name: f.Name.Name, Type: ft})
		}
		w.ctx.Structs[stmt.StructName.Name] = fields
	}
	for _, stmt := range prog.Stmts {
		if stmt.Kind != ast.StmtFuncDef {
			continue
		}
		if _, exists := w.ctx.Funcs[stmt.FuncName.Name]; exists {
			return newError(RedefinedFunction, fmt.Sprintf("function %q redefined", stmt.FuncName.Name), stmt.Span)
		}
		params := make([]types.Param, 0, len(stmt.Params))
		for _, p := range stmt.Params {
			pt, err := w.resolveType(p.Type, stmt.Span)
			if err != nil {
				return err
			}
			params = append(params, types.Param{Name: p.Name.Name, Type: pt})
		}
		retType, err := w.resolveType(stmt.ReturnType, stmt.Span)
		if err != nil {
			return err
		}
		w.ctx.Funcs[stmt.FuncName.Name] = types.Signature{
			Params: types.Params{Fixed: params},
			Return: retType,
		}
	}
	return nil
}

// resolveType turns a surface ast.Type into a checker-level types.Type,
// validating that any named struct type actually exists.
func (w *walker) resolveType(t ast.Type, sp span.Span) (types.Type, error) {
	switch t.Kind {
	case ast.TypeInt:
		return types.TInt, nil
	case ast.TypeFloat:
		return types.TFloat, nil
	case ast.TypeBool:
		return types.TBool, nil
	case ast.TypeString:
		return types.TString, nil
	case ast.TypeVoid:
		return types.TVoid, nil
	case ast.TypeStruct:
		if _, ok := w.ctx.Structs[t.Struct.Name]; !ok {
			return types.Type{}, newError(UndefinedStruct, fmt.Sprintf("undefined struct %q", t.Struct.Name), t.Struct.Span)
		}
		return types.TStruct(t.Struct.Name), nil
	case ast.TypeArray:
		elem, err := w.resolveType(*t.Elem, sp)
		if err != nil {
			return types.Type{}, err
		}
		return types.TArray(elem, t.Size), nil
	default:
		return types.Type{}, newError(InvalidType, "unknown type annotation", sp)
	}
}

// walkTopLevel dispatches the statements that may appear at merged-program
// level: module/import declarations carry no typed form and are skipped;
// struct/function definitions were already registered by registerHeaders,
// so functions still have their bodies walked and structs are re-emitted
// from the struct table; any other statement at this level is rejected.
func (w *walker) walkTopLevel(stmt ast.Stmt) (typedast.Stmt, bool, error) {
	switch stmt.Kind {
	case ast.StmtModuleDecl:
		if reservedModuleNames[stmt.ModuleName.Name] {
			return typedast.Stmt{}, false, newError(InvalidModuleName,
				fmt.Sprintf("module name %q is reserved", stmt.ModuleName.Name), stmt.ModuleName.Span)
		}
		return typedast.Stmt{}, true, nil
	case ast.StmtImport:
		return typedast.Stmt{}, true, nil
	case ast.StmtStructDef:
		return w.walkStructDef(stmt)
	case ast.StmtFuncDef:
		ts, err := w.walkFuncDef(stmt)
		return ts, false, err
	default:
		return typedast.Stmt{}, false, newError(InvalidType,
			"only module, import, struct and function declarations are allowed at the top level", stmt.Span)
	}
}

func (w *walker) walkStructDef(stmt ast.Stmt) (typedast.Stmt, bool, error) {
	fields := make([]typedast.Field, 0, len(stmt.Fields))
	for _, f := range w.ctx.Structs[stmt.StructName.Name] {
		fields = append(fields, typedast.Field{Name: f.Name, Type: f.Type})
	}
	return typedast.Stmt{
		Kind:       typedast.StmtStructDef,
		Span:       stmt.Span,
		StructName: stmt.StructName.Name,
		Fields:     fields,
	}, false, nil
}

func (w *walker) walkFuncDef(stmt ast.Stmt) (typedast.Stmt, error) {
	sig := w.ctx.Funcs[stmt.FuncName.Name]
	prevFunc := w.ctx.current
	w.ctx.current = &currentFunction{Name: stmt.FuncName.Name, Return: sig.Return}
	defer func() { w.ctx.current = prevFunc }()

	w.ctx.enterScope()
	defer w.ctx.exitScope()
	for _, p := range sig.Params.Fixed {
		w.ctx.declareLocal(p.Name, p.Type)
	}

	body, err := w.walkBlock(*stmt.FuncBody)
	if err != nil {
		return typedast.Stmt{}, err
	}
	return typedast.Stmt{
		Kind:     typedast.StmtFuncDef,
		Span:     stmt.Span,
		FuncName: stmt.FuncName.Name,
		Sig:      sig,
		FuncBody: &body,
	}, nil
}
