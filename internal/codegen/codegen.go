// Package codegen is a visitor over the typed AST that emits LLVM IR:
// struct layout, alloca-per-local variable strategy, control-flow blocks
// with a loop stack for continue/break, and the variadic printf builtin,
// declared eagerly and selected at call sites by callee name.
package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	irtypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/hades-lang/hades/internal/typedast"
	"github.com/hades-lang/hades/internal/types"
)

// Error is a CodegenError: type-conversion, undefined-variable (an
// analyser bug if it ever fires here), function-not-found, LLVM build
// failure, invalid-field, or similar. Fatal on first occurrence.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

func errf(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// loopFrame is one entry in the codegen's loop stack: the blocks
// `continue` and `break` branch to.
type loopFrame struct {
	continueTarget *ir.Block
	breakTarget    *ir.Block
}

// local is a scoped binding to a stack slot plus its semantic type, needed
// to resolve field/array lvalues and to pick the right load/store width.
type local struct {
	ptr value.Value
	typ types.Type
}

// Codegen holds everything the LLVM context needs across one module's
// worth of typed-AST visiting. It owns the *ir.Module; callers hand it off
// to object emission once Generate returns successfully.
type Codegen struct {
	module *ir.Module
	cur    *ir.Block
	fn     *ir.Func

	funcs       map[string]*ir.Func
	structTypes map[string]*irtypes.StructType
	structDefs  map[string][]typedast.Field

	scopes    []map[string]*local
	loopStack []loopFrame

	printfFunc *ir.Func
	strCount   int
}

// New returns a Codegen with an empty module and the printf builtin
// declared. The declaration is eager; the call-site lowering happens per
// call, routed by name.
func New() *Codegen {
	g := &Codegen{
		module:      ir.NewModule(),
		funcs:       make(map[string]*ir.Func),
		structTypes: make(map[string]*irtypes.StructType),
		structDefs:  make(map[string][]typedast.Field),
	}
	g.declarePrintf()
	return g
}

func (g *Codegen) declarePrintf() {
	fn := g.module.NewFunc("printf", irtypes.I32, ir.NewParam("format", irtypes.NewPointer(irtypes.I8)))
	fn.Sig.Variadic = true
	g.printfFunc = fn
}

// Generate lowers a fully type-checked program into an LLVM module.
func Generate(prog typedast.Program, sourceName string) (*ir.Module, error) {
	g := New()
	g.module.SourceFilename = sourceName
	if err := g.generateProgram(prog); err != nil {
		return nil, err
	}
	return g.module, nil
}

func (g *Codegen) generateProgram(prog typedast.Program) error {
	// Pass 1: struct layouts, so field GEP indices are available before
	// any function body (which may reference a struct declared later in
	// the merged program) is generated. Names are registered before any
	// field list is filled in, so struct-typed fields may reference a
	// struct declared later.
	for _, stmt := range prog.Stmts {
		if stmt.Kind == typedast.StmtStructDef {
			g.declareStruct(stmt)
		}
	}
	for _, stmt := range prog.Stmts {
		if stmt.Kind == typedast.StmtStructDef {
			g.defineStructFields(stmt)
		}
	}
	// Pass 2: function declarations (signatures only), so mutually
	// recursive calls resolve regardless of order.
	for _, stmt := range prog.Stmts {
		if stmt.Kind == typedast.StmtFuncDef {
			if err := g.declareFunc(stmt); err != nil {
				return err
			}
		}
	}
	// Pass 3: function bodies.
	for _, stmt := range prog.Stmts {
		if stmt.Kind == typedast.StmtFuncDef {
			if err := g.generateFunc(stmt); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Codegen) declareStruct(stmt typedast.Stmt) {
	st := irtypes.NewStruct()
	g.module.NewTypeDef(stmt.StructName, st)
	g.structTypes[stmt.StructName] = st
	g.structDefs[stmt.StructName] = stmt.Fields
}

func (g *Codegen) defineStructFields(stmt typedast.Stmt) {
	st := g.structTypes[stmt.StructName]
	st.Fields = make([]irtypes.Type, len(stmt.Fields))
	for i, f := range stmt.Fields {
		st.Fields[i] = g.llvmType(f.Type)
	}
}

func (g *Codegen) declareFunc(stmt typedast.Stmt) error {
	retType := g.llvmType(stmt.Sig.Return)
	params := make([]*ir.Param, len(stmt.Sig.Params.Fixed))
	for i, p := range stmt.Sig.Params.Fixed {
		params[i] = ir.NewParam(p.Name, g.llvmType(p.Type))
	}
	fn := g.module.NewFunc(stmt.FuncName, retType, params...)
	g.funcs[stmt.FuncName] = fn
	return nil
}

func (g *Codegen) generateFunc(stmt typedast.Stmt) error {
	fn := g.funcs[stmt.FuncName]
	entry := fn.NewBlock("entry")
	g.cur = entry
	g.fn = fn

	g.scopes = []map[string]*local{make(map[string]*local)}

	for i, p := range stmt.Sig.Params.Fixed {
		ptr := g.cur.NewAlloca(fn.Params[i].Type())
		ptr.SetName(p.Name + ".addr")
		g.cur.NewStore(fn.Params[i], ptr)
		g.declareLocal(p.Name, ptr, p.Type)
	}

	terminated, err := g.generateStmt(*stmt.FuncBody)
	if err != nil {
		return err
	}
	if !terminated && g.cur.Term == nil {
		if stmt.Sig.Return.Kind == types.Void {
			g.cur.NewRet(nil)
		} else {
			zero, err := g.zeroValue(stmt.Sig.Return)
			if err != nil {
				return err
			}
			g.cur.NewRet(zero)
		}
	}
	return nil
}

func (g *Codegen) enterScope() { g.scopes = append(g.scopes, make(map[string]*local)) }
func (g *Codegen) exitScope()  { g.scopes = g.scopes[:len(g.scopes)-1] }

func (g *Codegen) declareLocal(name string, ptr value.Value, t types.Type) {
	g.scopes[len(g.scopes)-1][name] = &local{ptr: ptr, typ: t}
}

func (g *Codegen) lookupLocal(name string) (*local, error) {
	for i := len(g.scopes) - 1; i >= 0; i-- {
		if l, ok := g.scopes[i][name]; ok {
			return l, nil
		}
	}
	return nil, errf("undefined variable: %s", name)
}

// llvmType lowers a checker-level type to its LLVM representation.
func (g *Codegen) llvmType(t types.Type) irtypes.Type {
	switch t.Kind {
	case types.Int:
		return irtypes.I64
	case types.Float:
		return irtypes.Double
	case types.Bool:
		return irtypes.I1
	case types.String:
		return irtypes.NewPointer(irtypes.I8)
	case types.Void:
		return irtypes.Void
	case types.Struct:
		return g.structTypes[t.StructName]
	case types.Array:
		return irtypes.NewArray(uint64(t.Size), g.llvmType(*t.Elem))
	default:
		return irtypes.I64
	}
}

// zeroValue returns the zero-valued LLVM constant for t, used both for a
// function falling off its end and for zero-initializing struct fields a
// literal omits.
func (g *Codegen) zeroValue(t types.Type) (value.Value, error) {
	switch t.Kind {
	case types.Int:
		return constant.NewInt(irtypes.I64, 0), nil
	case types.Float:
		return constant.NewFloat(irtypes.Double, 0), nil
	case types.Bool:
		return constant.NewInt(irtypes.I1, 0), nil
	case types.String:
		return constant.NewNull(irtypes.NewPointer(irtypes.I8)), nil
	case types.Struct:
		st, ok := g.structTypes[t.StructName]
		if !ok {
			return nil, errf("unknown struct type %s", t.StructName)
		}
		fields := g.structDefs[t.StructName]
		vals := make([]constant.Constant, len(fields))
		for i, f := range fields {
			v, err := g.zeroValue(f.Type)
			if err != nil {
				return nil, err
			}
			c, ok := v.(constant.Constant)
			if !ok {
				return nil, errf("zero value for field %s is not constant", f.Name)
			}
			vals[i] = c
		}
		return constant.NewStruct(st, vals...), nil
	case types.Array:
		elemZero, err := g.zeroValue(*t.Elem)
		if err != nil {
			return nil, err
		}
		c, ok := elemZero.(constant.Constant)
		if !ok {
			return nil, errf("zero value for array element is not constant")
		}
		elems := make([]constant.Constant, t.Size)
		for i := range elems {
			elems[i] = c
		}
		return constant.NewArray(g.llvmType(t).(*irtypes.ArrayType), elems...), nil
	default:
		return nil, errf("no zero value for type %s", t)
	}
}
