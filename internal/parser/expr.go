package parser

import (
	"strconv"

	"github.com/hades-lang/hades/internal/ast"
	"github.com/hades-lang/hades/internal/token"
)

var binOpFromKind = map[token.Kind]ast.BinOp{
	token.Plus:    ast.OpAdd,
	token.Minus:   ast.OpSub,
	token.Star:    ast.OpMul,
	token.Slash:   ast.OpDiv,
	token.Percent: ast.OpMod,
	token.Eq:      ast.OpEq,
	token.Ne:      ast.OpNe,
	token.Lt:      ast.OpLt,
	token.Le:      ast.OpLe,
	token.Gt:      ast.OpGt,
	token.Ge:      ast.OpGe,
	token.AndAnd:  ast.OpAnd,
	token.And:     ast.OpBitAnd,
	token.OrOr:    ast.OpOr,
	token.Or:      ast.OpBitOr,
	token.Caret:   ast.OpBitXor,
	token.Shl:     ast.OpShl,
	token.Shr:     ast.OpShr,
}

// parseExpr is the Pratt entry point: minPrec is the lowest operator
// precedence the caller will accept continuing to fold into its left
// operand (0 when starting a fresh expression).
func (p *Parser) parseExpr(minPrec int) (ast.Expr, bool) {
	left, ok := p.parseAssignOrUnary()
	if !ok {
		return ast.Expr{}, false
	}
	for {
		info, isBin := token.BinaryOps[p.cur().Kind]
		if !isBin || info.Precedence < minPrec {
			break
		}
		opTok := p.advance()
		nextMin := info.Precedence + 1
		if info.Assoc == token.RightAssoc {
			nextMin = info.Precedence
		}
		right, ok := p.parseExpr(nextMin)
		if !ok {
			return ast.Expr{}, false
		}
		op := binOpFromKind[opTok.Kind]
		lhs := left
		left = ast.Expr{
			Kind: ast.ExprBinary, BinOp: op, Left: &lhs, Right: &right,
			Span: lhs.Span.To(right.Span),
		}
	}
	return left, true
}

// parseAssignOrUnary parses a unary/postfix expression and, if followed by
// an assignment operator, turns it into an ExprAssign with the parsed
// expression as the (lvalue) target. Assignment binds looser than every
// binary operator and is right-associative.
func (p *Parser) parseAssignOrUnary() (ast.Expr, bool) {
	left, ok := p.parseUnary()
	if !ok {
		return ast.Expr{}, false
	}
	if !token.IsAssignOp(p.cur().Kind) {
		return left, true
	}
	if !isLvalue(left) {
		p.errorf(left.Span, "invalid assignment target")
		return ast.Expr{}, false
	}
	opTok := p.advance()
	var op ast.AssignOp
	switch opTok.Kind {
	case token.Assign:
		op = ast.AssignSet
	case token.PlusAssign:
		op = ast.AssignAdd
	case token.MinusAssign:
		op = ast.AssignSub
	}
	rhs, ok := p.parseExpr(0) // right-associative: re-enter at the bottom
	if !ok {
		return ast.Expr{}, false
	}
	targetCopy := left
	return ast.Expr{
		Kind: ast.ExprAssign, AssignOp: op, Target: &targetCopy, RHS: &rhs,
		Span: left.Span.To(rhs.Span),
	}, true
}

func isLvalue(e ast.Expr) bool {
	return e.Kind == ast.ExprIdent || e.Kind == ast.ExprField || e.Kind == ast.ExprIndex
}

// parenthesized re-enables struct-literal parsing for the duration of f.
// The restriction in condition position exists only to keep `if x {` from
// being read as a struct literal followed by garbage; an explicit (...) or
// [...] delimiter removes that ambiguity.
func (p *Parser) parenthesized(f func() (ast.Expr, bool)) (ast.Expr, bool) {
	saved := p.noStruct
	p.noStruct = 0
	e, ok := f()
	p.noStruct = saved
	return e, ok
}

func (p *Parser) parseUnary() (ast.Expr, bool) {
	switch p.cur().Kind {
	case token.Minus:
		tok := p.advance()
		operand, ok := p.parseUnary()
		if !ok {
			return ast.Expr{}, false
		}
		return ast.Expr{Kind: ast.ExprUnary, UnOp: ast.OpNeg, Operand: &operand, Span: tok.Span.To(operand.Span)}, true
	case token.Bang:
		tok := p.advance()
		operand, ok := p.parseUnary()
		if !ok {
			return ast.Expr{}, false
		}
		return ast.Expr{Kind: ast.ExprUnary, UnOp: ast.OpNot, Operand: &operand, Span: tok.Span.To(operand.Span)}, true
	case token.Tilde:
		tok := p.advance()
		operand, ok := p.parseUnary()
		if !ok {
			return ast.Expr{}, false
		}
		return ast.Expr{Kind: ast.ExprUnary, UnOp: ast.OpBitNot, Operand: &operand, Span: tok.Span.To(operand.Span)}, true
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() (ast.Expr, bool) {
	e, ok := p.parsePrimary()
	if !ok {
		return ast.Expr{}, false
	}
	for {
		switch p.cur().Kind {
		case token.Dot:
			p.advance()
			fieldTok, ok := p.expect(token.Ident, "field name")
			if !ok {
				return ast.Expr{}, false
			}
			base := e
			e = ast.Expr{
				Kind: ast.ExprField, Base: &base, Field: ast.NewIdent(fieldTok.Text, fieldTok.Span),
				Span: e.Span.To(fieldTok.Span),
			}
		case token.LBracket:
			p.advance()
			idx, ok := p.parenthesized(func() (ast.Expr, bool) { return p.parseExpr(0) })
			if !ok {
				return ast.Expr{}, false
			}
			close, ok := p.expect(token.RBracket, "']'")
			if !ok {
				return ast.Expr{}, false
			}
			arr := e
			e = ast.Expr{Kind: ast.ExprIndex, Array: &arr, Idx: &idx, Span: e.Span.To(close.Span)}
		default:
			return e, true
		}
	}
}

func (p *Parser) parsePrimary() (ast.Expr, bool) {
	tok := p.cur()
	switch tok.Kind {
	case token.Number:
		p.advance()
		n, _ := strconv.ParseInt(tok.Text, 10, 64)
		return ast.NewLiteral(ast.Value{Kind: ast.ValueInt, Int: n}, tok.Span), true
	case token.Float:
		p.advance()
		f, _ := strconv.ParseFloat(tok.Text, 64)
		return ast.NewLiteral(ast.Value{Kind: ast.ValueFloat, Float: f}, tok.Span), true
	case token.String:
		p.advance()
		return ast.NewLiteral(ast.Value{Kind: ast.ValueString, Str: tok.Value}, tok.Span), true
	case token.KwTrue:
		p.advance()
		return ast.NewLiteral(ast.Value{Kind: ast.ValueBool, Bool: true}, tok.Span), true
	case token.KwFalse:
		p.advance()
		return ast.NewLiteral(ast.Value{Kind: ast.ValueBool, Bool: false}, tok.Span), true
	case token.LBracket:
		return p.parseArrayLiteral()
	case token.LParen:
		p.advance()
		inner, ok := p.parenthesized(func() (ast.Expr, bool) { return p.parseExpr(0) })
		if !ok {
			return ast.Expr{}, false
		}
		if _, ok := p.expect(token.RParen, "')'"); !ok {
			return ast.Expr{}, false
		}
		return inner, true
	case token.Ident:
		return p.parseIdentStarting()
	default:
		p.errorf(tok.Span, "unexpected token %s in expression", tok)
		return ast.Expr{}, false
	}
}

func (p *Parser) parseArrayLiteral() (ast.Expr, bool) {
	open := p.advance()
	var elems []ast.Expr
	for !p.check(token.RBracket) && !p.atEnd() {
		el, ok := p.parenthesized(func() (ast.Expr, bool) { return p.parseExpr(0) })
		if !ok {
			return ast.Expr{}, false
		}
		elems = append(elems, el)
		if _, ok := p.match(token.Comma); !ok {
			break
		}
	}
	close, ok := p.expect(token.RBracket, "']'")
	if !ok {
		return ast.Expr{}, false
	}
	val := ast.Value{Kind: ast.ValueArray, Elements: elems, Size: len(elems)}
	return ast.NewLiteral(val, open.Span.To(close.Span)), true
}

// parseIdentStarting handles the three productions that begin with a bare
// identifier: a call `name(args)`, a struct literal `name{fields}`
// (suppressed inside if/while/for condition position), or a plain
// variable reference.
func (p *Parser) parseIdentStarting() (ast.Expr, bool) {
	nameTok := p.advance()
	name := ast.NewIdent(nameTok.Text, nameTok.Span)

	if p.check(token.LParen) {
		p.advance()
		var args []ast.Expr
		for !p.check(token.RParen) && !p.atEnd() {
			a, ok := p.parenthesized(func() (ast.Expr, bool) { return p.parseExpr(0) })
			if !ok {
				return ast.Expr{}, false
			}
			args = append(args, a)
			if _, ok := p.match(token.Comma); !ok {
				break
			}
		}
		close, ok := p.expect(token.RParen, "')'")
		if !ok {
			return ast.Expr{}, false
		}
		return ast.Expr{Kind: ast.ExprCall, Callee: name, Args: args, Span: nameTok.Span.To(close.Span)}, true
	}

	if p.check(token.LBrace) && p.noStruct == 0 {
		p.advance()
		var fields []ast.FieldInit
		for !p.check(token.RBrace) && !p.atEnd() {
			fnameTok, ok := p.expect(token.Ident, "field name")
			if !ok {
				return ast.Expr{}, false
			}
			if _, ok := p.expect(token.Colon, "':'"); !ok {
				return ast.Expr{}, false
			}
			val, ok := p.parseExpr(0)
			if !ok {
				return ast.Expr{}, false
			}
			fields = append(fields, ast.FieldInit{Name: ast.NewIdent(fnameTok.Text, fnameTok.Span), Value: val})
			if _, ok := p.match(token.Comma); !ok {
				break
			}
		}
		close, ok := p.expect(token.RBrace, "'}'")
		if !ok {
			return ast.Expr{}, false
		}
		return ast.Expr{Kind: ast.ExprStructInit, StructName: name, Fields: fields, Span: nameTok.Span.To(close.Span)}, true
	}

	return ast.NewIdentExpr(name), true
}
