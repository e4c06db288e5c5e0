// Package typedast mirrors internal/ast but with every expression carrying
// its resolved types.Type, produced only by internal/walker and consumed
// only by internal/codegen.
package typedast

import (
	"github.com/hades-lang/hades/internal/ast"
	"github.com/hades-lang/hades/internal/span"
	"github.com/hades-lang/hades/internal/types"
)

// Program is the merged, fully type-checked translation unit, in the same
// dependency order the registry produced.
type Program struct {
	Stmts []Stmt
}

// StmtKind mirrors ast.StmtKind for every statement the walker re-emits
// into the typed tree; ModuleDecl and Import statements carry no further
// typed information and are dropped rather than re-emitted, since codegen
// never visits them.
type StmtKind int

const (
	StmtLet StmtKind = iota
	StmtContinue
	StmtBreak
	StmtExpr
	StmtIf
	StmtWhile
	StmtFor
	StmtStructDef
	StmtFuncDef
	StmtBlock
	StmtReturn
)

// Field is one resolved struct field, in declaration order; its index in
// the owning StructDef's Fields slice is its LLVM element index.
type Field struct {
	Name string
	Type types.Type
}

// Param is one resolved, typed function parameter.
type Param struct {
	Name string
	Type types.Type
}

// Stmt is a fully type-checked statement.
type Stmt struct {
	Kind StmtKind
	Span span.Span

	// StmtLet
	LetName string
	LetType types.Type
	LetValue Expr

	// StmtExpr
	Expr Expr

	// StmtIf
	Cond *Expr
	Then *Stmt
	Else *Stmt

	// StmtWhile
	WhileCond *Expr
	WhileBody *Stmt

	// StmtFor
	ForInit   *Stmt
	ForCond   *Expr
	ForUpdate *Stmt
	ForBody   *Stmt

	// StmtStructDef
	StructName string
	Fields     []Field

	// StmtFuncDef
	FuncName string
	Sig      types.Signature
	FuncBody *Stmt

	// StmtBlock
	Stmts []Stmt

	// StmtReturn
	ReturnValue *Expr
}

// ExprKind mirrors ast.ExprKind.
type ExprKind int

const (
	ExprLiteral ExprKind = iota
	ExprIdent
	ExprStructInit
	ExprBinary
	ExprUnary
	ExprAssign
	ExprField
	ExprIndex
	ExprCall
)

// FieldInit is one resolved `name: expr` entry in a struct literal, in the
// order written in the literal; Index is the field's position in the
// struct's declared field order.
type FieldInit struct {
	Name  string
	Index int
	Value Expr
}

// Expr is a fully type-checked expression: every node carries the
// types.Type it evaluates to.
type Expr struct {
	Kind ExprKind
	Span span.Span
	Type types.Type

	// ExprLiteral: Value carries the scalar payload (Int/Float/Bool/Str);
	// for a ValueArray literal, Elements holds the typed, walked element
	// expressions instead of Value.Elements (which stays untyped ast.Expr).
	Value    ast.Value
	Elements []Expr

	// ExprIdent
	Name string

	// ExprStructInit
	StructName string
	Fields     []FieldInit

	// ExprBinary
	BinOp ast.BinOp
	Left  *Expr
	Right *Expr

	// ExprUnary
	UnOp    ast.UnaryOp
	Operand *Expr

	// ExprAssign
	AssignOp ast.AssignOp
	Target   *Expr
	RHS      *Expr

	// ExprField: FieldIndex is the position of Field within the base
	// struct's declared field order (the LLVM GEP index).
	Base       *Expr
	Field      string
	FieldIndex int

	// ExprIndex
	Array *Expr
	Idx   *Expr

	// ExprCall
	Callee string
	Args   []Expr
}
