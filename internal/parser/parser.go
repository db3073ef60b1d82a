// Package parser builds an internal/ast syntax tree from a token stream,
// by recursive descent with an explicit precedence table for binary
// operators — the same match/check/advance cursor idiom as a hand-rolled
// scanner, one level up.
package parser

import (
	"strconv"

	"asteria/internal/ast"
	"asteria/internal/failure"
	"asteria/internal/lexer"
)

type Parser struct {
	tokens  []lexer.Token
	current int
	file    string
}

func New(file string, tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens, file: file}
}

// Parse parses a whole source file: a sequence of top-level statements.
func Parse(file, source string) ([]ast.Stmt, *failure.Failure) {
	toks, err := lexer.ScanTokens(file, source)
	if err != nil {
		return nil, err
	}
	p := New(file, toks)
	return p.ParseProgram()
}

func (p *Parser) ParseProgram() (stmts []ast.Stmt, ferr *failure.Failure) {
	defer func() {
		if r := recover(); r != nil {
			if f, ok := r.(*failure.Failure); ok {
				ferr = f
				return
			}
			panic(r)
		}
	}()
	for !p.isAtEnd() {
		stmts = append(stmts, p.statement())
	}
	return stmts, nil
}

// --- token cursor ---

func (p *Parser) peek() lexer.Token     { return p.tokens[p.current] }
func (p *Parser) previous() lexer.Token { return p.tokens[p.current-1] }
func (p *Parser) isAtEnd() bool         { return p.peek().Type == lexer.TokenEOF }

func (p *Parser) check(t lexer.TokenType) bool {
	if p.isAtEnd() {
		return t == lexer.TokenEOF
	}
	return p.peek().Type == t
}

func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) match(types ...lexer.TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(t lexer.TokenType, what string) lexer.Token {
	if p.check(t) {
		return p.advance()
	}
	p.fail("expected %s, got %s", what, p.peek())
	panic("unreachable")
}

func (p *Parser) fail(format string, args ...interface{}) {
	f := failure.New(failure.Parse, format, args...)
	panic(f.PushFrame(failure.Frame{Location: p.peek().Location()}))
}

func (p *Parser) loc() failure.Location { return p.peek().Location() }

// --- statements ---

func (p *Parser) statement() ast.Stmt {
	switch {
	case p.match(lexer.TokenVar):
		return p.varDecl(false)
	case p.match(lexer.TokenConst):
		return p.varDecl(true)
	case p.match(lexer.TokenFunc):
		return p.funcDecl()
	case p.match(lexer.TokenIf):
		return p.ifStmt()
	case p.match(lexer.TokenSwitch):
		return p.switchStmt()
	case p.match(lexer.TokenWhile):
		return p.whileStmt()
	case p.match(lexer.TokenDo):
		return p.doWhileStmt()
	case p.match(lexer.TokenFor):
		return p.forStmt()
	case p.match(lexer.TokenTry):
		return p.tryStmt()
	case p.match(lexer.TokenThrow):
		return p.throwStmt()
	case p.match(lexer.TokenReturn):
		return p.returnStmt()
	case p.match(lexer.TokenBreak):
		loc := p.previous().Location()
		p.match(lexer.TokenSemicolon)
		return &ast.Break{Location: loc}
	case p.match(lexer.TokenContinue):
		loc := p.previous().Location()
		p.match(lexer.TokenSemicolon)
		return &ast.Continue{Location: loc}
	case p.check(lexer.TokenLBrace):
		return p.block()
	default:
		loc := p.loc()
		e := p.expression()
		p.match(lexer.TokenSemicolon)
		return &ast.ExprStmt{Expr: e, Location: loc}
	}
}

func (p *Parser) block() *ast.Block {
	loc := p.loc()
	p.consume(lexer.TokenLBrace, "'{'")
	var stmts []ast.Stmt
	for !p.check(lexer.TokenRBrace) && !p.isAtEnd() {
		stmts = append(stmts, p.statement())
	}
	p.consume(lexer.TokenRBrace, "'}'")
	return &ast.Block{Stmts: stmts, Location: loc}
}

func (p *Parser) varDecl(immutable bool) ast.Stmt {
	loc := p.previous().Location()
	name := p.consume(lexer.TokenIdent, "identifier").Lexeme
	var init ast.Expr
	if p.match(lexer.TokenAssign) {
		init = p.expression()
	}
	p.match(lexer.TokenSemicolon)
	return &ast.VarDecl{Name: name, Immutable: immutable, Init: init, Location: loc}
}

func (p *Parser) paramList() ([]string, bool) {
	p.consume(lexer.TokenLParen, "'('")
	var params []string
	variadic := false
	for !p.check(lexer.TokenRParen) {
		if p.match(lexer.TokenEllipsis) {
			variadic = true
			break
		}
		params = append(params, p.consume(lexer.TokenIdent, "parameter name").Lexeme)
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	p.consume(lexer.TokenRParen, "')'")
	return params, variadic
}

func (p *Parser) funcDecl() ast.Stmt {
	loc := p.previous().Location()
	name := p.consume(lexer.TokenIdent, "function name").Lexeme
	params, variadic := p.paramList()
	body := p.block()
	return &ast.FuncDecl{Name: name, Params: params, Variadic: variadic, Body: body, Location: loc}
}

func (p *Parser) ifStmt() ast.Stmt {
	loc := p.previous().Location()
	p.consume(lexer.TokenLParen, "'('")
	cond := p.expression()
	p.consume(lexer.TokenRParen, "')'")
	then := p.block()
	var els *ast.Block
	if p.match(lexer.TokenElse) {
		if p.match(lexer.TokenIf) {
			els = &ast.Block{Stmts: []ast.Stmt{p.ifStmt()}, Location: p.loc()}
		} else {
			els = p.block()
		}
	}
	return &ast.If{Cond: cond, Then: then, Else: els, Location: loc}
}

func (p *Parser) switchStmt() ast.Stmt {
	loc := p.previous().Location()
	p.consume(lexer.TokenLParen, "'('")
	subject := p.expression()
	p.consume(lexer.TokenRParen, "')'")
	p.consume(lexer.TokenLBrace, "'{'")
	var cases []ast.CaseClause
	for !p.check(lexer.TokenRBrace) && !p.isAtEnd() {
		var clauseExpr ast.Expr
		if p.match(lexer.TokenCase) {
			clauseExpr = p.expression()
			p.consume(lexer.TokenColon, "':'")
		} else {
			p.consume(lexer.TokenDefault, "'case' or 'default'")
			p.consume(lexer.TokenColon, "':'")
		}
		var stmts []ast.Stmt
		for !p.check(lexer.TokenCase) && !p.check(lexer.TokenDefault) && !p.check(lexer.TokenRBrace) {
			stmts = append(stmts, p.statement())
		}
		cases = append(cases, ast.CaseClause{Expr: clauseExpr, Body: &ast.Block{Stmts: stmts, Location: loc}})
	}
	p.consume(lexer.TokenRBrace, "'}'")
	return &ast.Switch{Subject: subject, Cases: cases, Location: loc}
}

func (p *Parser) whileStmt() ast.Stmt {
	loc := p.previous().Location()
	p.consume(lexer.TokenLParen, "'('")
	cond := p.expression()
	p.consume(lexer.TokenRParen, "')'")
	body := p.block()
	return &ast.While{Cond: cond, Body: body, Location: loc}
}

func (p *Parser) doWhileStmt() ast.Stmt {
	loc := p.previous().Location()
	body := p.block()
	p.consume(lexer.TokenWhile, "'while'")
	p.consume(lexer.TokenLParen, "'('")
	cond := p.expression()
	p.consume(lexer.TokenRParen, "')'")
	p.match(lexer.TokenSemicolon)
	return &ast.While{Cond: cond, Body: body, DoWhile: true, Location: loc}
}

func (p *Parser) forStmt() ast.Stmt {
	loc := p.previous().Location()
	p.consume(lexer.TokenLParen, "'('")

	// for-each: for (k, v in subject) { } or for (v in subject) { }
	if p.check(lexer.TokenIdent) {
		save := p.current
		first := p.advance().Lexeme
		if p.match(lexer.TokenIn) {
			subject := p.expression()
			p.consume(lexer.TokenRParen, "')'")
			body := p.block()
			return &ast.ForEach{ValueName: first, Subject: subject, Body: body, Location: loc}
		}
		if p.match(lexer.TokenComma) {
			second := p.consume(lexer.TokenIdent, "identifier").Lexeme
			p.consume(lexer.TokenIn, "'in'")
			subject := p.expression()
			p.consume(lexer.TokenRParen, "')'")
			body := p.block()
			return &ast.ForEach{KeyName: first, ValueName: second, Subject: subject, Body: body, Location: loc}
		}
		p.current = save
	}

	var init ast.Stmt
	if !p.check(lexer.TokenSemicolon) {
		switch {
		case p.match(lexer.TokenVar):
			init = p.varDecl(false)
		case p.match(lexer.TokenConst):
			init = p.varDecl(true)
		default:
			eloc := p.loc()
			init = &ast.ExprStmt{Expr: p.expression(), Location: eloc}
			p.consume(lexer.TokenSemicolon, "';'")
		}
	} else {
		p.advance()
	}
	var cond ast.Expr
	if !p.check(lexer.TokenSemicolon) {
		cond = p.expression()
	}
	p.consume(lexer.TokenSemicolon, "';'")
	var step ast.Expr
	if !p.check(lexer.TokenRParen) {
		step = p.expression()
	}
	p.consume(lexer.TokenRParen, "')'")
	body := p.block()
	return &ast.For{Init: init, Cond: cond, Step: step, Body: body, Location: loc}
}

func (p *Parser) tryStmt() ast.Stmt {
	loc := p.previous().Location()
	body := p.block()
	p.consume(lexer.TokenCatch, "'catch'")
	p.consume(lexer.TokenLParen, "'('")
	name := p.consume(lexer.TokenIdent, "exception name").Lexeme
	p.consume(lexer.TokenRParen, "')'")
	catch := p.block()
	return &ast.Try{Body: body, ExceptionName: name, Catch: catch, Location: loc}
}

func (p *Parser) throwStmt() ast.Stmt {
	loc := p.previous().Location()
	e := p.expression()
	p.match(lexer.TokenSemicolon)
	return &ast.Throw{Expr: e, Location: loc}
}

func (p *Parser) returnStmt() ast.Stmt {
	loc := p.previous().Location()
	var e ast.Expr
	if !p.check(lexer.TokenSemicolon) && !p.check(lexer.TokenRBrace) {
		e = p.expression()
	}
	p.match(lexer.TokenSemicolon)
	return &ast.Return{Expr: e, Location: loc}
}

// --- expressions, lowest to highest precedence ---

func (p *Parser) expression() ast.Expr { return p.assignment() }

var compoundOps = map[lexer.TokenType]string{
	lexer.TokenPlusAssign:    "+",
	lexer.TokenMinusAssign:   "-",
	lexer.TokenStarAssign:    "*",
	lexer.TokenSlashAssign:   "/",
	lexer.TokenPercentAssign: "%",
}

func (p *Parser) assignment() ast.Expr {
	left := p.ternary()
	if p.check(lexer.TokenAssign) {
		loc := p.advance().Location()
		value := p.assignment()
		return &ast.Assign{Target: left, Value: value, Location: loc}
	}
	for tok, op := range compoundOps {
		if p.check(tok) {
			loc := p.advance().Location()
			value := p.assignment()
			return &ast.Assign{Op: op, Target: left, Value: value, Location: loc}
		}
	}
	return left
}

func (p *Parser) ternary() ast.Expr {
	cond := p.coalesce()
	if p.match(lexer.TokenQuestion) {
		loc := p.previous().Location()
		then := p.assignment()
		p.consume(lexer.TokenColon, "':'")
		els := p.assignment()
		return &ast.Ternary{Cond: cond, Then: then, Else: els, Location: loc}
	}
	return cond
}

func (p *Parser) coalesce() ast.Expr {
	left := p.logicalOr()
	for p.match(lexer.TokenCoalesce) {
		loc := p.previous().Location()
		right := p.logicalOr()
		left = &ast.Coalesce{Left: left, Right: right, Location: loc}
	}
	return left
}

func (p *Parser) logicalOr() ast.Expr {
	left := p.logicalAnd()
	for p.match(lexer.TokenOrOr) {
		loc := p.previous().Location()
		right := p.logicalAnd()
		left = &ast.Logical{IsOr: true, Left: left, Right: right, Location: loc}
	}
	return left
}

func (p *Parser) logicalAnd() ast.Expr {
	left := p.equality()
	for p.match(lexer.TokenAndAnd) {
		loc := p.previous().Location()
		right := p.equality()
		left = &ast.Logical{Left: left, Right: right, Location: loc}
	}
	return left
}

func (p *Parser) equality() ast.Expr {
	left := p.relational()
	for p.check(lexer.TokenEq) || p.check(lexer.TokenNe) {
		op := p.advance()
		right := p.relational()
		left = &ast.Binary{Op: string(op.Type), Left: left, Right: right, Location: op.Location()}
	}
	return left
}

func (p *Parser) relational() ast.Expr {
	left := p.additive()
	for p.check(lexer.TokenLt) || p.check(lexer.TokenGt) || p.check(lexer.TokenLe) || p.check(lexer.TokenGe) {
		op := p.advance()
		right := p.additive()
		left = &ast.Binary{Op: string(op.Type), Left: left, Right: right, Location: op.Location()}
	}
	return left
}

func (p *Parser) additive() ast.Expr {
	left := p.multiplicative()
	for p.check(lexer.TokenPlus) || p.check(lexer.TokenMinus) {
		op := p.advance()
		right := p.multiplicative()
		left = &ast.Binary{Op: string(op.Type), Left: left, Right: right, Location: op.Location()}
	}
	return left
}

func (p *Parser) multiplicative() ast.Expr {
	left := p.unary()
	for p.check(lexer.TokenStar) || p.check(lexer.TokenSlash) || p.check(lexer.TokenPercent) {
		op := p.advance()
		right := p.unary()
		left = &ast.Binary{Op: string(op.Type), Left: left, Right: right, Location: op.Location()}
	}
	return left
}

func (p *Parser) unary() ast.Expr {
	if p.check(lexer.TokenMinus) || p.check(lexer.TokenNot) {
		op := p.advance()
		operand := p.unary()
		return &ast.Unary{Op: string(op.Type), Operand: operand, Location: op.Location()}
	}
	if p.check(lexer.TokenPlusPlus) || p.check(lexer.TokenMinusMinus) {
		op := p.advance()
		operand := p.unary()
		return &ast.IncDec{Op: string(op.Type), Prefix: true, Operand: operand, Location: op.Location()}
	}
	return p.postfix()
}

func (p *Parser) postfix() ast.Expr {
	e := p.primary()
	for {
		switch {
		case p.match(lexer.TokenDot):
			loc := p.previous().Location()
			name := p.consume(lexer.TokenIdent, "member name").Lexeme
			e = &ast.Subscript{Base: e, Key: &name, Location: loc}
		case p.match(lexer.TokenLBracket):
			loc := p.previous().Location()
			idx := p.expression()
			p.consume(lexer.TokenRBracket, "']'")
			e = &ast.Subscript{Base: e, Index: idx, Location: loc}
		case p.match(lexer.TokenLParen):
			loc := p.previous().Location()
			var args []ast.Expr
			for !p.check(lexer.TokenRParen) {
				args = append(args, p.assignment())
				if !p.match(lexer.TokenComma) {
					break
				}
			}
			p.consume(lexer.TokenRParen, "')'")
			e = &ast.Call{Callee: e, Args: args, Location: loc}
		case p.check(lexer.TokenPlusPlus) || p.check(lexer.TokenMinusMinus):
			op := p.advance()
			e = &ast.IncDec{Op: string(op.Type), Prefix: false, Operand: e, Location: op.Location()}
		default:
			return e
		}
	}
}

func (p *Parser) primary() ast.Expr {
	loc := p.loc()
	switch {
	case p.match(lexer.TokenNull):
		return &ast.Literal{Kind: ast.LitNull, Location: loc}
	case p.match(lexer.TokenTrue):
		return &ast.Literal{Kind: ast.LitBool, Bool: true, Location: loc}
	case p.match(lexer.TokenFalse):
		return &ast.Literal{Kind: ast.LitBool, Bool: false, Location: loc}
	case p.match(lexer.TokenInteger):
		n, _ := strconv.ParseInt(p.previous().StringValue, 10, 64)
		return &ast.Literal{Kind: ast.LitInt, Int: n, Location: loc}
	case p.match(lexer.TokenReal):
		f, _ := strconv.ParseFloat(p.previous().StringValue, 64)
		return &ast.Literal{Kind: ast.LitReal, Real: f, Location: loc}
	case p.match(lexer.TokenString):
		return &ast.Literal{Kind: ast.LitString, Str: p.previous().StringValue, Location: loc}
	case p.match(lexer.TokenIdent):
		return &ast.Ident{Name: p.previous().Lexeme, Location: loc}
	case p.match(lexer.TokenFunc):
		return p.funcExpr(loc)
	case p.match(lexer.TokenLParen):
		e := p.expression()
		p.consume(lexer.TokenRParen, "')'")
		return e
	case p.match(lexer.TokenLBracket):
		return p.arrayLit(loc)
	case p.match(lexer.TokenLBrace):
		return p.objectLit(loc)
	default:
		p.fail("unexpected token %s", p.peek())
		panic("unreachable")
	}
}

func (p *Parser) funcExpr(loc failure.Location) ast.Expr {
	name := ""
	if p.check(lexer.TokenIdent) {
		name = p.advance().Lexeme
	}
	params, variadic := p.paramList()
	body := p.block()
	return &ast.FuncExpr{Name: name, Params: params, Variadic: variadic, Body: body, Location: loc}
}

func (p *Parser) arrayLit(loc failure.Location) ast.Expr {
	var elems []ast.Expr
	for !p.check(lexer.TokenRBracket) {
		elems = append(elems, p.assignment())
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	p.consume(lexer.TokenRBracket, "']'")
	return &ast.ArrayLit{Elements: elems, Location: loc}
}

func (p *Parser) objectLit(loc failure.Location) ast.Expr {
	var keys []string
	var values []ast.Expr
	for !p.check(lexer.TokenRBrace) {
		var key string
		switch {
		case p.check(lexer.TokenString):
			key = p.advance().StringValue
		case p.check(lexer.TokenIdent):
			key = p.advance().Lexeme
		default:
			p.fail("expected object key, got %s", p.peek())
		}
		p.consume(lexer.TokenColon, "':'")
		values = append(values, p.assignment())
		keys = append(keys, key)
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	p.consume(lexer.TokenRBrace, "'}'")
	return &ast.ObjectLit{Keys: keys, Values: values, Location: loc}
}
