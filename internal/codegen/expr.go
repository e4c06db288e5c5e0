package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	irtypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/hades-lang/hades/internal/ast"
	"github.com/hades-lang/hades/internal/typedast"
	"github.com/hades-lang/hades/internal/types"
)

func (g *Codegen) generateExpr(e typedast.Expr) (value.Value, error) {
	switch e.Kind {
	case typedast.ExprLiteral:
		return g.generateLiteral(e)
	case typedast.ExprIdent:
		return g.generateIdent(e)
	case typedast.ExprStructInit:
		return g.generateStructInit(e)
	case typedast.ExprBinary:
		return g.generateBinary(e)
	case typedast.ExprUnary:
		return g.generateUnary(e)
	case typedast.ExprAssign:
		return g.generateAssign(e)
	case typedast.ExprField:
		return g.generateFieldLoad(e)
	case typedast.ExprIndex:
		return g.generateIndexLoad(e)
	case typedast.ExprCall:
		return g.generateCall(e)
	default:
		return nil, errf("unsupported expression kind %v", e.Kind)
	}
}

func (g *Codegen) generateLiteral(e typedast.Expr) (value.Value, error) {
	if e.Type.Kind == types.Array {
		arrType := g.llvmType(e.Type)
		arrAlloca := g.cur.NewAlloca(arrType)
		for i, elemExpr := range e.Elements {
			elemVal, err := g.generateExpr(elemExpr)
			if err != nil {
				return nil, err
			}
			ptr := g.cur.NewGetElementPtr(arrType, arrAlloca,
				constant.NewInt(irtypes.I32, 0), constant.NewInt(irtypes.I32, int64(i)))
			g.cur.NewStore(elemVal, ptr)
		}
		return g.cur.NewLoad(arrType, arrAlloca), nil
	}
	v := e.Value
	switch v.Kind {
	case ast.ValueInt:
		return constant.NewInt(irtypes.I64, v.Int), nil
	case ast.ValueFloat:
		return constant.NewFloat(irtypes.Double, v.Float), nil
	case ast.ValueBool:
		if v.Bool {
			return constant.NewInt(irtypes.I1, 1), nil
		}
		return constant.NewInt(irtypes.I1, 0), nil
	case ast.ValueString:
		charArray := constant.NewCharArrayFromString(v.Str + "\x00")
		global := g.module.NewGlobalDef(fmt.Sprintf(".str.%d", g.strCount), charArray)
		g.strCount++
		global.Immutable = true
		return g.cur.NewGetElementPtr(charArray.Type(), global,
			constant.NewInt(irtypes.I64, 0), constant.NewInt(irtypes.I64, 0)), nil
	default:
		return nil, errf("unsupported literal kind %v", v.Kind)
	}
}

func (g *Codegen) generateIdent(e typedast.Expr) (value.Value, error) {
	l, err := g.lookupLocal(e.Name)
	if err != nil {
		return nil, err
	}
	return g.cur.NewLoad(g.llvmType(l.typ), l.ptr), nil
}

func (g *Codegen) generateStructInit(e typedast.Expr) (value.Value, error) {
	structType, ok := g.structTypes[e.StructName]
	if !ok {
		return nil, errf("unknown struct type %s", e.StructName)
	}
	alloca := g.cur.NewAlloca(structType)
	alloca.SetName(e.StructName + ".lit")

	fields := g.structDefs[e.StructName]
	for i, f := range fields {
		zero, err := g.zeroValue(f.Type)
		if err != nil {
			return nil, err
		}
		ptr := g.cur.NewGetElementPtr(structType, alloca,
			constant.NewInt(irtypes.I32, 0), constant.NewInt(irtypes.I32, int64(i)))
		g.cur.NewStore(zero, ptr)
	}

	for _, fi := range e.Fields {
		val, err := g.generateExpr(fi.Value)
		if err != nil {
			return nil, err
		}
		ptr := g.cur.NewGetElementPtr(structType, alloca,
			constant.NewInt(irtypes.I32, 0), constant.NewInt(irtypes.I32, int64(fi.Index)))
		g.cur.NewStore(val, ptr)
	}

	return g.cur.NewLoad(structType, alloca), nil
}

func (g *Codegen) generateUnary(e typedast.Expr) (value.Value, error) {
	operand, err := g.generateExpr(*e.Operand)
	if err != nil {
		return nil, err
	}
	switch e.UnOp {
	case ast.OpNot:
		return g.cur.NewXor(operand, constant.NewInt(irtypes.I1, 1)), nil
	case ast.OpBitNot:
		return g.cur.NewXor(operand, constant.NewInt(irtypes.I64, -1)), nil
	case ast.OpNeg:
		if e.Type.Kind == types.Float {
			return g.cur.NewFSub(constant.NewFloat(irtypes.Double, 0), operand), nil
		}
		return g.cur.NewSub(constant.NewInt(irtypes.I64, 0), operand), nil
	default:
		return nil, errf("unsupported unary operator %v", e.UnOp)
	}
}

// generateBinary lowers a binary expression, inserting an explicit sitofp
// cast on an Int operand when the other side is Float.
func (g *Codegen) generateBinary(e typedast.Expr) (value.Value, error) {
	left, err := g.generateExpr(*e.Left)
	if err != nil {
		return nil, err
	}
	right, err := g.generateExpr(*e.Right)
	if err != nil {
		return nil, err
	}

	leftIsFloat := e.Left.Type.Kind == types.Float
	rightIsFloat := e.Right.Type.Kind == types.Float
	isFloat := leftIsFloat || rightIsFloat
	if isFloat && !leftIsFloat && e.Left.Type.Kind == types.Int {
		left = g.cur.NewSIToFP(left, irtypes.Double)
	}
	if isFloat && !rightIsFloat && e.Right.Type.Kind == types.Int {
		right = g.cur.NewSIToFP(right, irtypes.Double)
	}

	switch e.BinOp {
	case ast.OpAdd:
		if e.Type.Kind == types.String {
			return nil, errf("string concatenation is not yet lowered")
		}
		if isFloat {
			return g.cur.NewFAdd(left, right), nil
		}
		return g.cur.NewAdd(left, right), nil
	case ast.OpSub:
		if isFloat {
			return g.cur.NewFSub(left, right), nil
		}
		return g.cur.NewSub(left, right), nil
	case ast.OpMul:
		if isFloat {
			return g.cur.NewFMul(left, right), nil
		}
		return g.cur.NewMul(left, right), nil
	case ast.OpDiv:
		if isFloat {
			return g.cur.NewFDiv(left, right), nil
		}
		return g.cur.NewSDiv(left, right), nil
	case ast.OpMod:
		if isFloat {
			return g.cur.NewFRem(left, right), nil
		}
		return g.cur.NewSRem(left, right), nil
	case ast.OpEq:
		if isFloat {
			return g.cur.NewFCmp(enum.FPredOEQ, left, right), nil
		}
		return g.cur.NewICmp(enum.IPredEQ, left, right), nil
	case ast.OpNe:
		if isFloat {
			return g.cur.NewFCmp(enum.FPredONE, left, right), nil
		}
		return g.cur.NewICmp(enum.IPredNE, left, right), nil
	case ast.OpLt:
		if isFloat {
			return g.cur.NewFCmp(enum.FPredOLT, left, right), nil
		}
		return g.cur.NewICmp(enum.IPredSLT, left, right), nil
	case ast.OpLe:
		if isFloat {
			return g.cur.NewFCmp(enum.FPredOLE, left, right), nil
		}
		return g.cur.NewICmp(enum.IPredSLE, left, right), nil
	case ast.OpGt:
		if isFloat {
			return g.cur.NewFCmp(enum.FPredOGT, left, right), nil
		}
		return g.cur.NewICmp(enum.IPredSGT, left, right), nil
	case ast.OpGe:
		if isFloat {
			return g.cur.NewFCmp(enum.FPredOGE, left, right), nil
		}
		return g.cur.NewICmp(enum.IPredSGE, left, right), nil
	case ast.OpAnd, ast.OpBitAnd:
		return g.cur.NewAnd(left, right), nil
	case ast.OpOr, ast.OpBitOr:
		return g.cur.NewOr(left, right), nil
	case ast.OpBitXor:
		return g.cur.NewXor(left, right), nil
	case ast.OpShl:
		return g.cur.NewShl(left, right), nil
	case ast.OpShr:
		return g.cur.NewAShr(left, right), nil
	default:
		return nil, errf("unsupported binary operator %v", e.BinOp)
	}
}

func (g *Codegen) lvaluePtr(e typedast.Expr) (value.Value, types.Type, error) {
	switch e.Kind {
	case typedast.ExprIdent:
		l, err := g.lookupLocal(e.Name)
		if err != nil {
			return nil, types.Type{}, err
		}
		return l.ptr, l.typ, nil
	case typedast.ExprField:
		return g.fieldPtr(*e.Base, e.FieldIndex)
	case typedast.ExprIndex:
		return g.indexPtr(*e.Array, *e.Idx)
	default:
		return nil, types.Type{}, errf("expression is not assignable")
	}
}

// addressOf returns a pointer to e's value: the slot behind an lvalue
// chain, or a fresh temporary slot holding the materialized value for any
// other expression (a call result, a struct literal, a nested aggregate).
func (g *Codegen) addressOf(e typedast.Expr) (value.Value, error) {
	switch e.Kind {
	case typedast.ExprIdent, typedast.ExprField, typedast.ExprIndex:
		ptr, _, err := g.lvaluePtr(e)
		return ptr, err
	default:
		val, err := g.generateExpr(e)
		if err != nil {
			return nil, err
		}
		tmp := g.cur.NewAlloca(g.llvmType(e.Type))
		g.cur.NewStore(val, tmp)
		return tmp, nil
	}
}

func (g *Codegen) generateAssign(e typedast.Expr) (value.Value, error) {
	ptr, targetType, err := g.lvaluePtr(*e.Target)
	if err != nil {
		return nil, err
	}
	rhs, err := g.generateExpr(*e.RHS)
	if err != nil {
		return nil, err
	}
	var result value.Value
	switch e.AssignOp {
	case ast.AssignSet:
		result = rhs
	case ast.AssignAdd, ast.AssignSub:
		if targetType.Kind == types.String {
			return nil, errf("string concatenation is not yet lowered")
		}
		current := g.cur.NewLoad(g.llvmType(targetType), ptr)
		isFloat := targetType.Kind == types.Float
		if isFloat && e.RHS.Type.Kind == types.Int {
			rhs = g.cur.NewSIToFP(rhs, irtypes.Double)
		}
		if e.AssignOp == ast.AssignAdd {
			if isFloat {
				result = g.cur.NewFAdd(current, rhs)
			} else {
				result = g.cur.NewAdd(current, rhs)
			}
		} else {
			if isFloat {
				result = g.cur.NewFSub(current, rhs)
			} else {
				result = g.cur.NewSub(current, rhs)
			}
		}
	default:
		return nil, errf("unsupported assignment operator %v", e.AssignOp)
	}
	g.cur.NewStore(result, ptr)
	return result, nil
}

func (g *Codegen) fieldPtr(base typedast.Expr, fieldIndex int) (value.Value, types.Type, error) {
	structName := base.Type.StructName
	if base.Type.Kind == types.Array && base.Type.Elem != nil && base.Type.Elem.Kind == types.Struct {
		structName = base.Type.Elem.StructName
	}
	structType, ok := g.structTypes[structName]
	if !ok {
		return nil, types.Type{}, errf("unknown struct type %s", structName)
	}
	basePtr, err := g.addressOf(base)
	if err != nil {
		return nil, types.Type{}, err
	}
	ptr := g.cur.NewGetElementPtr(structType, basePtr,
		constant.NewInt(irtypes.I32, 0), constant.NewInt(irtypes.I32, int64(fieldIndex)))
	fieldType := g.structDefs[structName][fieldIndex].Type
	return ptr, fieldType, nil
}

func (g *Codegen) generateFieldLoad(e typedast.Expr) (value.Value, error) {
	ptr, fieldType, err := g.fieldPtr(*e.Base, e.FieldIndex)
	if err != nil {
		return nil, err
	}
	return g.cur.NewLoad(g.llvmType(fieldType), ptr), nil
}

func (g *Codegen) indexPtr(arr typedast.Expr, idx typedast.Expr) (value.Value, types.Type, error) {
	arrPtr, err := g.addressOf(arr)
	if err != nil {
		return nil, types.Type{}, err
	}
	idxVal, err := g.generateExpr(idx)
	if err != nil {
		return nil, types.Type{}, err
	}
	elemType := *arr.Type.Elem
	ptr := g.cur.NewGetElementPtr(g.llvmType(arr.Type), arrPtr,
		constant.NewInt(irtypes.I32, 0), idxVal)
	return ptr, elemType, nil
}

func (g *Codegen) generateIndexLoad(e typedast.Expr) (value.Value, error) {
	ptr, elemType, err := g.indexPtr(*e.Array, *e.Idx)
	if err != nil {
		return nil, err
	}
	return g.cur.NewLoad(g.llvmType(elemType), ptr), nil
}

func (g *Codegen) generateCall(e typedast.Expr) (value.Value, error) {
	if e.Callee == "printf" {
		return g.generatePrintfCall(e)
	}
	fn, ok := g.funcs[e.Callee]
	if !ok {
		return nil, errf("undefined function %s", e.Callee)
	}
	args := make([]value.Value, len(e.Args))
	for i, a := range e.Args {
		v, err := g.generateExpr(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return g.cur.NewCall(fn, args...), nil
}

func (g *Codegen) generatePrintfCall(e typedast.Expr) (value.Value, error) {
	args := make([]value.Value, len(e.Args))
	for i, a := range e.Args {
		v, err := g.generateExpr(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return g.cur.NewCall(g.printfFunc, args...), nil
}
