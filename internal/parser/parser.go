// Package parser builds a raw AST from a Hades token stream: a
// recursive-descent statement dispatcher over a Pratt expression parser,
// with error recovery that resynchronises at statement boundaries so a
// single source file can report more than one ParseError.
package parser

import (
	"fmt"

	"github.com/hades-lang/hades/internal/ast"
	"github.com/hades-lang/hades/internal/span"
	"github.com/hades-lang/hades/internal/token"
)

// Error is a single ParseError.
type Error struct {
	span.Diagnostic
}

func (e *Error) Error() string { return e.Diagnostic.Error() }

// Parser turns a token stream into a Program, collecting every ParseError
// along the way instead of stopping at the first one.
type Parser struct {
	file   string
	toks   []token.Token
	pos    int
	errs   []*Error
	noStruct int // >0 disables struct-literal parsing (if/while/for conditions)
}

// New returns a Parser over toks, a token stream already lexed from file.
func New(file string, toks []token.Token) *Parser {
	// Newlines carry no grammatical meaning yet; strip them so the
	// recursive-descent dispatcher never has to skip them explicitly.
	filtered := make([]token.Token, 0, len(toks))
	for _, t := range toks {
		if t.Kind != token.Newline {
			filtered = append(filtered, t)
		}
	}
	return &Parser{file: file, toks: filtered}
}

// Parse runs the parser to completion. The returned Program is only
// meaningful when errs is empty.
func Parse(file string, toks []token.Token) (ast.Program, []*Error) {
	p := New(file, toks)
	return p.parseProgram(), p.errs
}

func (p *Parser) parseProgram() ast.Program {
	var stmts []ast.Stmt
	for !p.atEnd() {
		start := p.pos
		stmt, ok := p.parseTopLevelStmt()
		if ok {
			stmts = append(stmts, stmt)
		}
		if p.pos == start {
			// Guard against an infinite loop if a production consumes
			// nothing on a failure path.
			p.advance()
		}
	}
	return ast.Program{Stmts: stmts}
}

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) at(k token.Kind) bool { return p.cur().Kind == k }

func (p *Parser) atEnd() bool { return p.at(token.EOF) }

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) check(k token.Kind) bool { return p.cur().Kind == k }

func (p *Parser) match(k token.Kind) (token.Token, bool) {
	if p.check(k) {
		return p.advance(), true
	}
	return token.Token{}, false
}

func (p *Parser) expect(k token.Kind, what string) (token.Token, bool) {
	if tok, ok := p.match(k); ok {
		return tok, true
	}
	p.errorf(p.cur().Span, "expected %s, found %s", what, p.cur())
	return token.Token{}, false
}

func (p *Parser) errorf(sp span.Span, format string, args ...any) {
	p.errs = append(p.errs, &Error{span.NewDiagnostic(fmt.Sprintf(format, args...), sp)})
}

// synchronize discards tokens until a statement boundary so later
// statements can still be parsed after an error.
func (p *Parser) synchronize() {
	for !p.atEnd() {
		switch p.cur().Kind {
		case token.Semicolon:
			p.advance()
			return
		case token.RBrace, token.KwLet, token.KwIf, token.KwWhile, token.KwFor,
			token.KwFn, token.KwStruct, token.KwReturn, token.KwBreak,
			token.KwContinue, token.KwModule, token.KwImport:
			return
		}
		p.advance()
	}
}

func (p *Parser) parseTopLevelStmt() (ast.Stmt, bool) {
	stmt, ok := p.parseStmt()
	if !ok {
		p.synchronize()
	}
	return stmt, ok
}

func (p *Parser) parseStmt() (ast.Stmt, bool) {
	switch p.cur().Kind {
	case token.KwModule:
		return p.parseModuleDecl()
	case token.KwImport:
		return p.parseImport()
	case token.KwStruct:
		return p.parseStructDef()
	case token.KwFn:
		return p.parseFuncDef()
	case token.KwLet:
		return p.parseLet()
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwFor:
		return p.parseFor()
	case token.KwReturn:
		return p.parseReturn()
	case token.KwBreak:
		tok := p.advance()
		p.expect(token.Semicolon, "';'")
		return ast.Stmt{Kind: ast.StmtBreak, Span: tok.Span}, true
	case token.KwContinue:
		tok := p.advance()
		p.expect(token.Semicolon, "';'")
		return ast.Stmt{Kind: ast.StmtContinue, Span: tok.Span}, true
	case token.LBrace:
		return p.parseBlock()
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseModuleDecl() (ast.Stmt, bool) {
	kw := p.advance()
	nameTok, ok := p.expect(token.Ident, "module name")
	if !ok {
		return ast.Stmt{}, false
	}
	p.expect(token.Semicolon, "';'")
	name := ast.NewIdent(nameTok.Text, nameTok.Span)
	return ast.Stmt{Kind: ast.StmtModuleDecl, ModuleName: name, Span: kw.Span.To(nameTok.Span)}, true
}

func (p *Parser) parseImport() (ast.Stmt, bool) {
	kw := p.advance()
	prefix := ast.ImportLocal
	var nameTok token.Token
	if tok, ok := p.match(token.Ident); ok {
		nameTok = tok
		if _, hasDot := p.match(token.Dot); hasDot {
			if tok.Text != "std" {
				p.errorf(tok.Span, "only the 'std' import prefix is recognized, found %q", tok.Text)
				return ast.Stmt{}, false
			}
			prefix = ast.ImportStd
			next, ok := p.expect(token.Ident, "module name after 'std.'")
			if !ok {
				return ast.Stmt{}, false
			}
			nameTok = next
		}
	} else {
		p.errorf(p.cur().Span, "expected module name, found %s", p.cur())
		return ast.Stmt{}, false
	}
	p.expect(token.Semicolon, "';'")
	name := ast.NewIdent(nameTok.Text, nameTok.Span)
	return ast.Stmt{Kind: ast.StmtImport, ImportModule: name, ImportPrefix: prefix, Span: kw.Span.To(nameTok.Span)}, true
}

func (p *Parser) parseType() (ast.Type, bool) {
	switch p.cur().Kind {
	case token.LBracket:
		p.advance()
		elem, ok := p.parseType()
		if !ok {
			return ast.Type{}, false
		}
		p.expect(token.Semicolon, "';'")
		sizeTok, ok := p.expect(token.Number, "array size")
		if !ok {
			return ast.Type{}, false
		}
		p.expect(token.RBracket, "']'")
		size := parseIntLiteral(sizeTok.Text)
		return ast.Type{Kind: ast.TypeArray, Elem: &elem, Size: size}, true
	case token.Ident:
		tok := p.advance()
		switch tok.Text {
		case "int":
			return ast.Type{Kind: ast.TypeInt}, true
		case "float":
			return ast.Type{Kind: ast.TypeFloat}, true
		case "bool":
			return ast.Type{Kind: ast.TypeBool}, true
		case "string":
			return ast.Type{Kind: ast.TypeString}, true
		case "void":
			return ast.Type{Kind: ast.TypeVoid}, true
		default:
			return ast.Type{Kind: ast.TypeStruct, Struct: ast.NewIdent(tok.Text, tok.Span)}, true
		}
	default:
		p.errorf(p.cur().Span, "expected type, found %s", p.cur())
		return ast.Type{}, false
	}
}

func (p *Parser) parseStructDef() (ast.Stmt, bool) {
	kw := p.advance()
	nameTok, ok := p.expect(token.Ident, "struct name")
	if !ok {
		return ast.Stmt{}, false
	}
	if _, ok := p.expect(token.LBrace, "'{'"); !ok {
		return ast.Stmt{}, false
	}
	var fields []ast.Field
	for !p.check(token.RBrace) && !p.atEnd() {
		fnameTok, ok := p.expect(token.Ident, "field name")
		if !ok {
			return ast.Stmt{}, false
		}
		if _, ok := p.expect(token.Colon, "':'"); !ok {
			return ast.Stmt{}, false
		}
		ftype, ok := p.parseType()
		if !ok {
			return ast.Stmt{}, false
		}
		fields = append(fields, ast.Field{Name: ast.NewIdent(fnameTok.Text, fnameTok.Span), Type: ftype})
		if _, ok := p.match(token.Comma); !ok {
			break
		}
	}
	end, ok := p.expect(token.RBrace, "'}'")
	if !ok {
		return ast.Stmt{}, false
	}
	return ast.Stmt{
		Kind:       ast.StmtStructDef,
		StructName: ast.NewIdent(nameTok.Text, nameTok.Span),
		Fields:     fields,
		Span:       kw.Span.To(end.Span),
	}, true
}

func (p *Parser) parseFuncDef() (ast.Stmt, bool) {
	kw := p.advance()
	nameTok, ok := p.expect(token.Ident, "function name")
	if !ok {
		return ast.Stmt{}, false
	}
	if _, ok := p.expect(token.LParen, "'('"); !ok {
		return ast.Stmt{}, false
	}
	var params []ast.Param
	for !p.check(token.RParen) && !p.atEnd() {
		pnameTok, ok := p.expect(token.Ident, "parameter name")
		if !ok {
			return ast.Stmt{}, false
		}
		if _, ok := p.expect(token.Colon, "':'"); !ok {
			return ast.Stmt{}, false
		}
		ptype, ok := p.parseType()
		if !ok {
			return ast.Stmt{}, false
		}
		params = append(params, ast.Param{Name: ast.NewIdent(pnameTok.Text, pnameTok.Span), Type: ptype})
		if _, ok := p.match(token.Comma); !ok {
			break
		}
	}
	if _, ok := p.expect(token.RParen, "')'"); !ok {
		return ast.Stmt{}, false
	}
	returnType := ast.Type{Kind: ast.TypeVoid}
	if _, ok := p.match(token.Colon); ok {
		rt, ok := p.parseType()
		if !ok {
			return ast.Stmt{}, false
		}
		returnType = rt
	}
	body, ok := p.parseBlock()
	if !ok {
		return ast.Stmt{}, false
	}
	return ast.Stmt{
		Kind:       ast.StmtFuncDef,
		FuncName:   ast.NewIdent(nameTok.Text, nameTok.Span),
		Params:     params,
		ReturnType: returnType,
		FuncBody:   &body,
		Span:       kw.Span.To(body.Span),
	}, true
}

func (p *Parser) parseLet() (ast.Stmt, bool) {
	kw := p.advance()
	nameTok, ok := p.expect(token.Ident, "variable name")
	if !ok {
		return ast.Stmt{}, false
	}
	var declType *ast.Type
	if _, ok := p.match(token.Colon); ok {
		t, ok := p.parseType()
		if !ok {
			return ast.Stmt{}, false
		}
		declType = &t
	}
	if _, ok := p.expect(token.Assign, "'='"); !ok {
		return ast.Stmt{}, false
	}
	value, ok := p.parseExpr(0)
	if !ok {
		return ast.Stmt{}, false
	}
	end, _ := p.expect(token.Semicolon, "';'")
	return ast.Stmt{
		Kind:     ast.StmtLet,
		LetName:  ast.NewIdent(nameTok.Text, nameTok.Span),
		LetType:  declType,
		LetValue: value,
		Span:     kw.Span.To(end.Span),
	}, true
}

func (p *Parser) parseBlock() (ast.Stmt, bool) {
	open, ok := p.expect(token.LBrace, "'{'")
	if !ok {
		return ast.Stmt{}, false
	}
	var stmts []ast.Stmt
	for !p.check(token.RBrace) && !p.atEnd() {
		start := p.pos
		stmt, ok := p.parseStmt()
		if ok {
			stmts = append(stmts, stmt)
		} else {
			p.synchronize()
		}
		if p.pos == start {
			p.advance()
		}
	}
	close, ok := p.expect(token.RBrace, "'}'")
	if !ok {
		return ast.Stmt{}, false
	}
	return ast.NewBlock(stmts, open.Span.To(close.Span)), true
}

func (p *Parser) parseIf() (ast.Stmt, bool) {
	kw := p.advance()
	p.noStruct++
	cond, ok := p.parseExpr(0)
	p.noStruct--
	if !ok {
		return ast.Stmt{}, false
	}
	then, ok := p.parseBlock()
	if !ok {
		return ast.Stmt{}, false
	}
	stmt := ast.Stmt{Kind: ast.StmtIf, Cond: &cond, Then: &then, Span: kw.Span.To(then.Span)}
	if _, ok := p.match(token.KwElse); ok {
		if p.check(token.KwIf) {
			elseIf, ok := p.parseIf()
			if !ok {
				return ast.Stmt{}, false
			}
			stmt.Else = &elseIf
			stmt.Span = kw.Span.To(elseIf.Span)
		} else {
			elseBlock, ok := p.parseBlock()
			if !ok {
				return ast.Stmt{}, false
			}
			stmt.Else = &elseBlock
			stmt.Span = kw.Span.To(elseBlock.Span)
		}
	}
	return stmt, true
}

func (p *Parser) parseWhile() (ast.Stmt, bool) {
	kw := p.advance()
	p.noStruct++
	cond, ok := p.parseExpr(0)
	p.noStruct--
	if !ok {
		return ast.Stmt{}, false
	}
	body, ok := p.parseBlock()
	if !ok {
		return ast.Stmt{}, false
	}
	return ast.Stmt{Kind: ast.StmtWhile, WhileCond: &cond, WhileBody: &body, Span: kw.Span.To(body.Span)}, true
}

func (p *Parser) parseFor() (ast.Stmt, bool) {
	kw := p.advance()
	p.noStruct++
	var init *ast.Stmt
	if !p.check(token.Semicolon) {
		if p.check(token.KwLet) {
			s, ok := p.parseLet()
			if !ok {
				p.noStruct--
				return ast.Stmt{}, false
			}
			init = &s
		} else {
			s, ok := p.parseExprStmtNoSemi()
			if !ok {
				p.noStruct--
				return ast.Stmt{}, false
			}
			init = &s
			p.expect(token.Semicolon, "';'")
		}
	} else {
		p.advance()
	}
	var cond *ast.Expr
	if !p.check(token.Semicolon) {
		c, ok := p.parseExpr(0)
		if !ok {
			p.noStruct--
			return ast.Stmt{}, false
		}
		cond = &c
	}
	p.expect(token.Semicolon, "';'")
	var update *ast.Stmt
	if !p.check(token.LBrace) {
		u, ok := p.parseExprStmtNoSemi()
		if !ok {
			p.noStruct--
			return ast.Stmt{}, false
		}
		update = &u
	}
	p.noStruct--
	body, ok := p.parseBlock()
	if !ok {
		return ast.Stmt{}, false
	}
	return ast.Stmt{
		Kind: ast.StmtFor, ForInit: init, ForCond: cond, ForUpdate: update, ForBody: &body,
		Span: kw.Span.To(body.Span),
	}, true
}

func (p *Parser) parseReturn() (ast.Stmt, bool) {
	kw := p.advance()
	if _, ok := p.match(token.Semicolon); ok {
		return ast.Stmt{Kind: ast.StmtReturn, Span: kw.Span}, true
	}
	val, ok := p.parseExpr(0)
	if !ok {
		return ast.Stmt{}, false
	}
	end, _ := p.expect(token.Semicolon, "';'")
	return ast.Stmt{Kind: ast.StmtReturn, ReturnValue: &val, Span: kw.Span.To(end.Span)}, true
}

func (p *Parser) parseExprStmt() (ast.Stmt, bool) {
	e, ok := p.parseExprStmtNoSemi()
	if !ok {
		return ast.Stmt{}, false
	}
	p.expect(token.Semicolon, "';'")
	return e, true
}

func (p *Parser) parseExprStmtNoSemi() (ast.Stmt, bool) {
	e, ok := p.parseExpr(0)
	if !ok {
		return ast.Stmt{}, false
	}
	return ast.Stmt{Kind: ast.StmtExpr, Expr: e, Span: e.Span}, true
}

func parseIntLiteral(text string) int {
	n := 0
	for _, c := range text {
		n = n*10 + int(c-'0')
	}
	return n
}
