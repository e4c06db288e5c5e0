package walker

import (
	"fmt"

	"github.com/hades-lang/hades/internal/ast"
	"github.com/hades-lang/hades/internal/span"
	"github.com/hades-lang/hades/internal/typedast"
	"github.com/hades-lang/hades/internal/types"
)

func (w *walker) walkExpr(e ast.Expr) (typedast.Expr, error) {
	switch e.Kind {
	case ast.ExprLiteral:
		return w.walkLiteral(e)
	case ast.ExprIdent:
		return w.walkIdent(e)
	case ast.ExprStructInit:
		return w.walkStructInit(e)
	case ast.ExprBinary:
		return w.walkBinary(e)
	case ast.ExprUnary:
		return w.walkUnary(e)
	case ast.ExprAssign:
		return w.walkAssign(e)
	case ast.ExprField:
		return w.walkField(e)
	case ast.ExprIndex:
		return w.walkIndex(e)
	case ast.ExprCall:
		return w.walkCall(e)
	default:
		return typedast.Expr{}, newError(InvalidType, fmt.Sprintf("unsupported expression kind %v", e.Kind), e.Span)
	}
}

func (w *walker) walkLiteral(e ast.Expr) (typedast.Expr, error) {
	var t types.Type
	switch e.Value.Kind {
	case ast.ValueInt:
		t = types.TInt
	case ast.ValueFloat:
		t = types.TFloat
	case ast.ValueBool:
		t = types.TBool
	case ast.ValueString:
		t = types.TString
	case ast.ValueArray:
		var elemType types.Type
		elems := make([]typedast.Expr, len(e.Value.Elements))
		for i, el := range e.Value.Elements {
			te, err := w.walkExpr(el)
			if err != nil {
				return typedast.Expr{}, err
			}
			if i == 0 {
				elemType = te.Type
			} else if !te.Type.Equal(elemType) {
				return typedast.Expr{}, newError(TypeMismatch,
					fmt.Sprintf("array element %d has type %s, expected %s", i, te.Type, elemType), el.Span)
			}
			elems[i] = te
		}
		t = types.TArray(elemType, e.Value.Size)
		return typedast.Expr{Kind: typedast.ExprLiteral, Span: e.Span, Type: t, Elements: elems}, nil
	}
	return typedast.Expr{Kind: typedast.ExprLiteral, Span: e.Span, Type: t, Value: e.Value}, nil
}

func (w *walker) walkIdent(e ast.Expr) (typedast.Expr, error) {
	t, ok := w.ctx.lookupLocal(e.Name.Name)
	if !ok {
		return typedast.Expr{}, newError(UndefinedVariable, fmt.Sprintf("undefined variable %q", e.Name.Name), e.Span)
	}
	return typedast.Expr{Kind: typedast.ExprIdent, Span: e.Span, Type: t, Name: e.Name.Name}, nil
}

func (w *walker) walkStructInit(e ast.Expr) (typedast.Expr, error) {
	if _, ok := w.ctx.Structs[e.StructName.Name]; !ok {
		return typedast.Expr{}, newError(UndefinedStruct, fmt.Sprintf("undefined struct %q", e.StructName.Name), e.Span)
	}
	out := make([]typedast.FieldInit, 0, len(e.Fields))
	for _, fi := range e.Fields {
		idx, ft, ok := w.ctx.fieldIndex(e.StructName.Name, fi.Name.Name)
		if !ok {
			return typedast.Expr{}, newError(UnknownField,
				fmt.Sprintf("struct %q has no field %q", e.StructName.Name, fi.Name.Name), fi.Name.Span)
		}
		val, err := w.walkExpr(fi.Value)
		if err != nil {
			return typedast.Expr{}, err
		}
		if !val.Type.Equal(ft) {
			return typedast.Expr{}, newError(TypeMismatch,
				fmt.Sprintf("field %q: expected %s, found %s", fi.Name.Name, ft, val.Type), fi.Value.Span)
		}
		out = append(out, typedast.FieldInit{Name: fi.Name.Name, Index: idx, Value: val})
	}
	return typedast.Expr{
		Kind: typedast.ExprStructInit, Span: e.Span, Type: types.TStruct(e.StructName.Name),
		StructName: e.StructName.Name, Fields: out,
	}, nil
}

func (w *walker) walkUnary(e ast.Expr) (typedast.Expr, error) {
	operand, err := w.walkExpr(*e.Operand)
	if err != nil {
		return typedast.Expr{}, err
	}
	var resultType types.Type
	switch e.UnOp {
	case ast.OpNeg:
		if operand.Type.Kind != types.Int && operand.Type.Kind != types.Float {
			return typedast.Expr{}, newError(InvalidUnaryOperation, fmt.Sprintf("cannot negate %s", operand.Type), e.Span)
		}
		resultType = operand.Type
	case ast.OpNot:
		if operand.Type.Kind != types.Bool {
			return typedast.Expr{}, newError(InvalidUnaryOperation, fmt.Sprintf("cannot apply ! to %s", operand.Type), e.Span)
		}
		resultType = types.TBool
	case ast.OpBitNot:
		if operand.Type.Kind != types.Int {
			return typedast.Expr{}, newError(InvalidUnaryOperation, fmt.Sprintf("cannot apply ~ to %s", operand.Type), e.Span)
		}
		resultType = types.TInt
	}
	return typedast.Expr{Kind: typedast.ExprUnary, Span: e.Span, Type: resultType, UnOp: e.UnOp, Operand: &operand}, nil
}

// walkBinary types a binary expression: arithmetic accepts Int/Float in
// any combination (mixed pairs implicitly promote to Float; codegen
// inserts the sitofp cast), string `+` is a dedicated case, equality
// accepts numeric pairs or two Bools, ordering accepts numeric pairs
// only, &&/|| require Bool on both sides, and the bitwise family
// requires Int on both sides. Strings are rejected by every comparison:
// a Hades string is a pointer to constant byte data, so an icmp on it
// would test identity, not content.
func (w *walker) walkBinary(e ast.Expr) (typedast.Expr, error) {
	left, err := w.walkExpr(*e.Left)
	if err != nil {
		return typedast.Expr{}, err
	}
	right, err := w.walkExpr(*e.Right)
	if err != nil {
		return typedast.Expr{}, err
	}

	resultType, err := binaryResultType(e.BinOp, left.Type, right.Type, e.Span)
	if err != nil {
		return typedast.Expr{}, err
	}
	return typedast.Expr{Kind: typedast.ExprBinary, Span: e.Span, Type: resultType, BinOp: e.BinOp, Left: &left, Right: &right}, nil
}

func binaryResultType(op ast.BinOp, lt, rt types.Type, sp span.Span) (types.Type, error) {
	numericPair := func() bool {
		return lt.IsNumeric() && rt.IsNumeric()
	}
	promoted := func() types.Type {
		if lt.Kind == types.Float || rt.Kind == types.Float {
			return types.TFloat
		}
		return types.TInt
	}

	switch op {
	case ast.OpAdd:
		if lt.Kind == types.String && rt.Kind == types.String {
			return types.TString, nil
		}
		if numericPair() {
			return promoted(), nil
		}
		return types.Type{}, newError(InvalidBinaryOperation, fmt.Sprintf("cannot add %s and %s", lt, rt), sp)
	case ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		if numericPair() {
			return promoted(), nil
		}
		return types.Type{}, newError(InvalidBinaryOperation, fmt.Sprintf("cannot apply %s to %s and %s", op, lt, rt), sp)
	case ast.OpEq, ast.OpNe:
		if numericPair() || (lt.Kind == types.Bool && rt.Kind == types.Bool) {
			return types.TBool, nil
		}
		if lt.Kind == types.String && rt.Kind == types.String {
			return types.Type{}, newError(InvalidBinaryOperation,
				fmt.Sprintf("cannot compare strings with %s", op), sp)
		}
		return types.Type{}, newError(InvalidBinaryOperation, fmt.Sprintf("cannot compare %s and %s", lt, rt), sp)
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		if numericPair() {
			return types.TBool, nil
		}
		return types.Type{}, newError(InvalidBinaryOperation, fmt.Sprintf("cannot order %s and %s with %s", lt, rt, op), sp)
	case ast.OpAnd, ast.OpOr:
		if lt.Kind == types.Bool && rt.Kind == types.Bool {
			return types.TBool, nil
		}
		return types.Type{}, newError(InvalidBinaryOperation, fmt.Sprintf("%s requires bool operands, found %s and %s", op, lt, rt), sp)
	case ast.OpBitAnd, ast.OpBitOr, ast.OpBitXor, ast.OpShl, ast.OpShr:
		if lt.Kind == types.Int && rt.Kind == types.Int {
			return types.TInt, nil
		}
		return types.Type{}, newError(InvalidBinaryOperation, fmt.Sprintf("%s requires int operands, found %s and %s", op, lt, rt), sp)
	default:
		return types.Type{}, newError(InvalidBinaryOperation, "unknown binary operator", sp)
	}
}

func (w *walker) walkAssign(e ast.Expr) (typedast.Expr, error) {
	target, err := w.walkExpr(*e.Target)
	if err != nil {
		return typedast.Expr{}, err
	}
	rhs, err := w.walkExpr(*e.RHS)
	if err != nil {
		return typedast.Expr{}, err
	}

	var resultType types.Type
	switch e.AssignOp {
	case ast.AssignSet:
		if !target.Type.Equal(rhs.Type) {
			return typedast.Expr{}, newError(TypeMismatch, fmt.Sprintf("cannot assign %s to %s", rhs.Type, target.Type), e.Span)
		}
		resultType = target.Type
	case ast.AssignAdd:
		resultType, err = binaryResultType(ast.OpAdd, target.Type, rhs.Type, e.Span)
	case ast.AssignSub:
		resultType, err = binaryResultType(ast.OpSub, target.Type, rhs.Type, e.Span)
	}
	if err != nil {
		return typedast.Expr{}, err
	}
	return typedast.Expr{
		Kind: typedast.ExprAssign, Span: e.Span, Type: resultType,
		AssignOp: e.AssignOp, Target: &target, RHS: &rhs,
	}, nil
}

func (w *walker) walkField(e ast.Expr) (typedast.Expr, error) {
	base, err := w.walkExpr(*e.Base)
	if err != nil {
		return typedast.Expr{}, err
	}
	structName := base.Type.StructName
	if base.Type.Kind == types.Array && base.Type.Elem != nil && base.Type.Elem.Kind == types.Struct {
		structName = base.Type.Elem.StructName
	} else if base.Type.Kind != types.Struct {
		return typedast.Expr{}, newError(NotAStruct, fmt.Sprintf("%s is not a struct", base.Type), e.Base.Span)
	}
	idx, ft, ok := w.ctx.fieldIndex(structName, e.Field.Name)
	if !ok {
		return typedast.Expr{}, newError(UnknownField, fmt.Sprintf("struct %q has no field %q", structName, e.Field.Name), e.Field.Span)
	}
	return typedast.Expr{
		Kind: typedast.ExprField, Span: e.Span, Type: ft,
		Base: &base, Field: e.Field.Name, FieldIndex: idx,
	}, nil
}

func (w *walker) walkIndex(e ast.Expr) (typedast.Expr, error) {
	arr, err := w.walkExpr(*e.Array)
	if err != nil {
		return typedast.Expr{}, err
	}
	idx, err := w.walkExpr(*e.Idx)
	if err != nil {
		return typedast.Expr{}, err
	}
	if idx.Type.Kind != types.Int {
		return typedast.Expr{}, newError(TypeMismatch, fmt.Sprintf("array index must be int, found %s", idx.Type), e.Idx.Span)
	}
	if arr.Type.Kind != types.Array {
		return typedast.Expr{}, newError(TypeMismatch, fmt.Sprintf("%s is not an array", arr.Type), e.Array.Span)
	}
	return typedast.Expr{Kind: typedast.ExprIndex, Span: e.Span, Type: *arr.Type.Elem, Array: &arr, Idx: &idx}, nil
}

func (w *walker) walkCall(e ast.Expr) (typedast.Expr, error) {
	sig, ok := w.ctx.Funcs[e.Callee.Name]
	if !ok {
		return typedast.Expr{}, newError(UndefinedFunction, fmt.Sprintf("undefined function %q", e.Callee.Name), e.Span)
	}
	args := make([]typedast.Expr, len(e.Args))
	for i, a := range e.Args {
		ta, err := w.walkExpr(a)
		if err != nil {
			return typedast.Expr{}, err
		}
		args[i] = ta
	}
	if err := checkArgs(e.Callee.Name, sig.Params, args, e.Span); err != nil {
		return typedast.Expr{}, err
	}
	return typedast.Expr{Kind: typedast.ExprCall, Span: e.Span, Type: sig.Return, Callee: e.Callee.Name, Args: args}, nil
}

func checkArgs(name string, params types.Params, args []typedast.Expr, sp span.Span) error {
	if params.Variadic {
		if len(args) < len(params.Fixed) {
			return newError(ArgumentCountMismatch,
				fmt.Sprintf("%q expects at least %d arguments, found %d", name, len(params.Fixed), len(args)), sp)
		}
	} else if len(args) != len(params.Fixed) {
		return newError(ArgumentCountMismatch,
			fmt.Sprintf("%q expects %d arguments, found %d", name, len(params.Fixed), len(args)), sp)
	}
	for i, p := range params.Fixed {
		if i >= len(args) {
			break
		}
		if !args[i].Type.Matches(p.Type) {
			return newError(TypeMismatch, fmt.Sprintf("%q argument %d: expected %s, found %s", name, i, p.Type, args[i].Type), sp)
		}
	}
	return nil
}
