// Package parser implements Ralix's recursive-descent, Pratt-style
// parser: a two-token lookahead window over the lexer's token stream,
// producing the ast package's Statement/Expression tree.
package parser

import (
	"fmt"
	"strconv"

	"github.com/ralix-lang/ralix/internal/ast"
	"github.com/ralix-lang/ralix/internal/lexer"
	"github.com/ralix-lang/ralix/internal/symboltable"
	"github.com/ralix-lang/ralix/internal/token"
	"github.com/ralix-lang/ralix/internal/types"
)

// precedence levels, lowest to highest binding power.
const (
	_ int = iota
	LOWEST
	OR
	AND
	EQUALS
	LESSGREATER
	SUM
	PRODUCT
	PREFIX
	TRY
	CALL
	INDEX
)

var precedences = map[token.Type]int{
	token.OR:       OR,
	token.AND:      AND,
	token.EQ:       EQUALS,
	token.NOT_EQ:   EQUALS,
	token.LT:       LESSGREATER,
	token.GT:       LESSGREATER,
	token.LT_EQ:    LESSGREATER,
	token.GT_EQ:    LESSGREATER,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.ASTERISK: PRODUCT,
	token.SLASH:    PRODUCT,
	token.PERCENT:  PRODUCT,
	token.QUESTION: TRY,
	token.LPAREN:   CALL,
	token.LBRACKET: INDEX,
}

// Error is a single parse failure, positioned at its offending token.
type Error struct {
	Message string
	Pos     token.Position
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %d:%d", e.Message, e.Pos.Line, e.Pos.Column)
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parser consumes a Lexer's token stream and builds an ast.Program. It
// carries its own SymbolTable alongside the lexer so that a `type Name
// = T;` alias declared earlier in the source is recognized as a valid
// type-starting token in later statements, ahead of full type checking.
type Parser struct {
	l *lexer.Lexer

	current token.Token
	peek    token.Token

	errors []*Error

	symbols *symboltable.SymbolTable

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn
}

// New primes the two-token lookahead window and registers the
// prefix/infix dispatch tables.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l, symbols: symboltable.New()}
	p.prefixParseFns = map[token.Type]prefixParseFn{}
	p.infixParseFns = map[token.Type]infixParseFn{}

	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.INT, p.parseIntegerLiteral)
	p.registerPrefix(token.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.CHAR, p.parseCharLiteral)
	p.registerPrefix(token.TRUE, p.parseBooleanLiteral)
	p.registerPrefix(token.FALSE, p.parseBooleanLiteral)
	p.registerPrefix(token.NULL, p.parseNullLiteral)
	p.registerPrefix(token.BANG, p.parsePrefixExpression)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)
	p.registerPrefix(token.AMP, p.parseAddrOf)
	p.registerPrefix(token.COPY, p.parseCopyExpression)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(token.LBRACE, p.parseScopeExpression)
	p.registerPrefix(token.LBRACKET, p.parseArrayLiteral)
	p.registerPrefix(token.IF, p.parseIfElseExpression)
	p.registerPrefix(token.FN, p.parseFunctionLiteral)
	p.registerPrefix(token.TYPEOF, p.parseTypeOf)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	for _, tt := range typeKeywordTokens {
		p.registerPrefix(tt, p.parseTypeLiteral)
	}

	p.registerInfix(token.PLUS, p.parseInfixExpression)
	p.registerInfix(token.MINUS, p.parseInfixExpression)
	p.registerInfix(token.ASTERISK, p.parseInfixExpression)
	p.registerInfix(token.SLASH, p.parseInfixExpression)
	p.registerInfix(token.PERCENT, p.parseInfixExpression)
	p.registerInfix(token.EQ, p.parseInfixExpression)
	p.registerInfix(token.NOT_EQ, p.parseInfixExpression)
	p.registerInfix(token.LT, p.parseInfixExpression)
	p.registerInfix(token.GT, p.parseInfixExpression)
	p.registerInfix(token.LT_EQ, p.parseInfixExpression)
	p.registerInfix(token.GT_EQ, p.parseInfixExpression)
	p.registerInfix(token.AND, p.parseInfixExpression)
	p.registerInfix(token.OR, p.parseInfixExpression)
	p.registerInfix(token.LPAREN, p.parseCallExpression)
	p.registerInfix(token.LBRACKET, p.parseIndexExpression)
	p.registerInfix(token.QUESTION, p.parseTryExpression)

	p.next()
	p.next()
	return p
}

var typeKeywordTokens = []token.Type{
	token.TYPE_BOOL, token.TYPE_CHAR, token.TYPE_INT, token.TYPE_FLOAT,
	token.TYPE_STRING, token.TYPE_VOID, token.TYPE_NEVER, token.TYPE_UNKNOWN,
	token.TYPE_ARR, token.TYPE_MAP, token.TYPE_ADDR, token.TYPE_TYPE,
}

func (p *Parser) registerPrefix(tt token.Type, fn prefixParseFn) { p.prefixParseFns[tt] = fn }
func (p *Parser) registerInfix(tt token.Type, fn infixParseFn)   { p.infixParseFns[tt] = fn }

// Errors returns every parse error accumulated so far.
func (p *Parser) Errors() []*Error { return p.errors }

func (p *Parser) next() {
	p.current = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) currentIs(tt token.Type) bool { return p.current.Type == tt }
func (p *Parser) peekIs(tt token.Type) bool    { return p.peek.Type == tt }

func (p *Parser) expectPeek(tt token.Type) bool {
	if p.peekIs(tt) {
		p.next()
		return true
	}
	p.errorf("expected next token to be %s, got %s instead", tt, p.peek.Type)
	return false
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.errors = append(p.errors, &Error{Message: fmt.Sprintf(format, args...), Pos: token.Position{Line: p.current.Pos.Line, Column: p.current.Pos.Column}})
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peek.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) currentPrecedence() int {
	if pr, ok := precedences[p.current.Type]; ok {
		return pr
	}
	return LOWEST
}

// ParseProgram parses every statement until EOF, accumulating errors
// across statements rather than stopping at the first one.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	for !p.currentIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.next()
	}
	return program
}

func (p *Parser) parseStatement() ast.Statement {
	switch {
	case p.current.Type == token.CONST:
		return p.parseBinding()
	case p.current.Type == token.LET:
		return p.parseBinding()
	case p.current.Type == token.RETURN:
		return p.parseReturn()
	case p.current.Type == token.TYPE_TYPE && p.peek.Type == token.IDENT:
		return p.parseAlias()
	case p.isTypeStart(p.current):
		return p.parseBinding()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	tok := p.current
	expr := p.parseExpression(LOWEST)

	if p.peekIs(token.ASSIGN) {
		switch expr.(type) {
		case *ast.Identifier, *ast.Index:
			return p.finishAssign(tok, expr)
		}
	}

	stmt := &ast.ExpressionStatement{Token: tok, Expression: expr}
	if p.peekIs(token.SEMICOLON) {
		p.next()
	}
	return stmt
}

// finishAssign consumes a pending `=` after an already-parsed lvalue
// expression (an Identifier or an Index chain), completing it into an
// Assign statement.
func (p *Parser) finishAssign(tok token.Token, target ast.Expression) ast.Statement {
	p.next() // consume the lvalue, now on '='
	p.next() // consume '=', now on value's first token
	value := p.parseExpression(LOWEST)
	if p.peekIs(token.SEMICOLON) {
		p.next()
	}
	return &ast.Assign{Token: tok, Target: target, Value: value}
}

// parseBinding parses `[const] Type name = value;` or `[const] let name
// = value;`. The `let` form omits the type annotation entirely and
// leaves it to the checker to infer from value's type; every other
// form names its type explicitly, matching the symbol table's
// (Type, is_constant) entry shape.
func (p *Parser) parseBinding() ast.Statement {
	tok := p.current
	isConst := tok.Type == token.CONST
	b := &ast.Binding{Token: tok, IsConstant: isConst}

	if isConst {
		p.next() // move onto `let` or the type
	}

	if p.current.Type == token.LET {
		b.HasType = false
	} else {
		b.TypeAnnotation = p.parseTypeExpression()
		b.HasType = true
	}

	if !p.expectPeek(token.IDENT) {
		return b
	}
	b.Name = &ast.Identifier{Token: p.current, Value: p.current.Lexeme}

	if !p.expectPeek(token.ASSIGN) {
		return b
	}
	p.next()
	b.Value = p.parseExpression(LOWEST)

	if p.peekIs(token.SEMICOLON) {
		p.next()
	}
	return b
}

func (p *Parser) parseReturn() ast.Statement {
	tok := p.current
	r := &ast.Return{Token: tok}
	if p.peekIs(token.SEMICOLON) {
		p.next()
		return r
	}
	p.next()
	r.Value = p.parseExpression(LOWEST)
	if p.peekIs(token.SEMICOLON) {
		p.next()
	}
	return r
}

// parseAlias parses `type Name = Type;`, the TYPE_TYPE keyword
// followed directly by an identifier rather than `[`. It also defines
// Name in the parser's own symbol table as AsValue(Type) so that a
// later statement can use Name itself as a type-starting token.
func (p *Parser) parseAlias() ast.Statement {
	tok := p.current
	a := &ast.Alias{Token: tok}
	if !p.expectPeek(token.IDENT) {
		return a
	}
	a.Name = &ast.Identifier{Token: p.current, Value: p.current.Lexeme}
	if !p.expectPeek(token.ASSIGN) {
		return a
	}
	p.next()
	a.Type = p.parseTypeExpression()
	if p.peekIs(token.SEMICOLON) {
		p.next()
	}
	resolved := p.resolveAliasType(a.Type)
	if err := p.symbols.Define(a.Name.Value, &types.AsValue{Elem: resolved}, true); err != nil {
		p.errorf("%s", err)
	}
	return a
}

// resolveAliasType resolves a TypeExpression to a concrete Type at
// parse time, used only to populate the parser's symbol table for
// alias-as-type-name dispatch. Full resolution (generics, nested
// aliases against the checker's own alias table) happens later in the
// checker; here an unresolvable identifier just falls back to Unknown.
func (p *Parser) resolveAliasType(te ast.TypeExpression) types.Type {
	var base types.Type
	switch {
	case te.HasKeyValue:
		base = &types.HashMap{Key: p.resolveAliasType(te.Key), Value: p.resolveAliasType(te.Value)}
	case te.HasElem:
		inner := p.resolveAliasType(te.Elem)
		switch te.Name {
		case "arr":
			base = &types.Array{Elem: inner}
		case "addr":
			base = &types.Addr{Elem: inner}
		case "type":
			base = &types.AsValue{Elem: inner}
		default:
			base = types.Unknown
		}
	case te.Generic != "":
		if entry, ok := p.symbols.Resolve(te.Generic); ok {
			if av, ok := entry.Type.(*types.AsValue); ok {
				base = av.Elem
			}
		}
		if base == nil {
			base = types.Unknown
		}
	default:
		base = primitiveTypeByName(te.Name)
	}
	if te.Nullable {
		return &types.Nullable{Elem: base}
	}
	return base
}

func primitiveTypeByName(name string) types.Type {
	switch name {
	case "bool":
		return types.Bool
	case "char":
		return types.Char
	case "int":
		return types.Int
	case "float":
		return types.Float
	case "string":
		return types.String
	case "null":
		return types.Null
	case "void":
		return types.Void
	case "never":
		return types.Never
	case "unknown":
		return types.Unknown
	}
	return types.Unknown
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.current.Type]
	if prefix == nil {
		p.errorf("no prefix parse function for %s found", p.current.Type)
		return nil
	}
	left := prefix()

	for !p.peekIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peek.Type]
		if infix == nil {
			return left
		}
		p.next()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.current, Value: p.current.Lexeme}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	tok := p.current
	v, err := strconv.ParseInt(tok.Lexeme, 10, 64)
	if err != nil {
		p.errorf("could not parse %q as integer", tok.Lexeme)
	}
	return &ast.IntegerLiteral{Token: tok, Value: v}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	tok := p.current
	v, err := strconv.ParseFloat(tok.Lexeme, 64)
	if err != nil {
		p.errorf("could not parse %q as float", tok.Lexeme)
	}
	return &ast.FloatLiteral{Token: tok, Value: v}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.current, Value: p.current.Literal}
}

func (p *Parser) parseCharLiteral() ast.Expression {
	r := []rune(p.current.Literal)
	var v rune
	if len(r) > 0 {
		v = r[0]
	}
	return &ast.CharLiteral{Token: p.current, Value: v}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.BooleanLiteral{Token: p.current, Value: p.currentIs(token.TRUE)}
}

func (p *Parser) parseNullLiteral() ast.Expression {
	return &ast.NullLiteral{Token: p.current}
}

func (p *Parser) parseTypeLiteral() ast.Expression {
	tok := p.current
	te := p.parseTypeExpression()
	return &ast.TypeLiteral{Token: tok, Type: te}
}

func (p *Parser) parseTypeOf() ast.Expression {
	tok := p.current
	if !p.expectPeek(token.LPAREN) {
		return &ast.TypeOf{Token: tok}
	}
	p.next()
	val := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return &ast.TypeOf{Token: tok, Value: val}
	}
	return &ast.TypeOf{Token: tok, Value: val}
}

func (p *Parser) parseAddrOf() ast.Expression {
	tok := p.current
	p.next()
	return &ast.AddrOf{Token: tok, Value: p.parseExpression(PREFIX)}
}

func (p *Parser) parseCopyExpression() ast.Expression {
	tok := p.current
	p.next()
	return &ast.Copy{Token: tok, Value: p.parseExpression(PREFIX)}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	tok := p.current
	op := tok.Lexeme
	p.next()
	return &ast.Prefix{Token: tok, Operator: op, Right: p.parseExpression(PREFIX)}
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	tok := p.current
	op := tok.Lexeme
	prec := p.currentPrecedence()
	p.next()
	right := p.parseExpression(prec)
	return &ast.Infix{Token: tok, Left: left, Operator: op, Right: right}
}

func (p *Parser) parseTryExpression(left ast.Expression) ast.Expression {
	return &ast.Try{Token: p.current, Value: left}
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.next()
	expr := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return expr
	}
	return expr
}

func (p *Parser) parseScopeExpression() ast.Expression {
	tok := p.current
	scope := &ast.Scope{Token: tok}
	p.next()
	for !p.currentIs(token.RBRACE) && !p.currentIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			scope.Statements = append(scope.Statements, stmt)
		}
		p.next()
	}
	return scope
}

func (p *Parser) parseIfElseExpression() ast.Expression {
	tok := p.current
	p.next()
	cond := p.parseExpression(LOWEST)
	if !p.expectPeek(token.LBRACE) {
		return &ast.IfElse{Token: tok, Condition: cond}
	}
	cons := p.parseScopeExpression().(*ast.Scope)
	ie := &ast.IfElse{Token: tok, Condition: cond, Consequence: cons}
	if p.peekIs(token.ELSE) {
		p.next()
		if p.peekIs(token.IF) {
			p.next()
			ie.Alternative = p.parseIfElseExpression()
		} else if p.expectPeek(token.LBRACE) {
			ie.Alternative = p.parseScopeExpression()
		}
	}
	return ie
}

func (p *Parser) parseFunctionLiteral() ast.Expression {
	tok := p.current
	fn := &ast.FunctionLiteral{Token: tok}

	if p.peekIs(token.IDENT) {
		p.next()
		fn.Name = p.current.Lexeme
	}

	if p.peekIs(token.LBRACKET) {
		p.next()
		fn.Generics = p.parseGenericsList()
	}

	if !p.expectPeek(token.LPAREN) {
		return fn
	}
	fn.Params = p.parseFunctionParams()

	if !p.expectPeek(token.ARROW) {
		return fn
	}
	p.next()
	fn.ReturnType = p.parseTypeExpression()

	if p.peekIs(token.COLON) {
		fn.Body = p.parseColonBody()
		return fn
	}

	if !p.expectPeek(token.LBRACE) {
		return fn
	}
	fn.Body = p.parseScopeExpression()
	return fn
}

// parseColonBody parses the single-expression function-body sugar
// `: expr ;`, equivalent to `{ expr }`.
func (p *Parser) parseColonBody() ast.Expression {
	tok := p.current
	p.next() // move onto ':'
	p.next() // consume ':', now on the body's first token
	body := p.parseExpression(LOWEST)
	if p.peekIs(token.SEMICOLON) {
		p.next()
	}
	return &ast.Scope{Token: tok, Statements: []ast.Statement{
		&ast.ExpressionStatement{Token: tok, Expression: body},
	}}
}

func (p *Parser) parseGenericsList() []string {
	var names []string
	p.next()
	if p.currentIs(token.RBRACKET) {
		return names
	}
	names = append(names, p.current.Lexeme)
	for p.peekIs(token.COMMA) {
		p.next()
		p.next()
		names = append(names, p.current.Lexeme)
	}
	p.expectPeek(token.RBRACKET)
	return names
}

func (p *Parser) parseFunctionParams() []ast.Param {
	var params []ast.Param
	if p.peekIs(token.RPAREN) {
		p.next()
		return params
	}
	p.next()
	params = append(params, p.parseOneParam())
	for p.peekIs(token.COMMA) {
		p.next()
		p.next()
		params = append(params, p.parseOneParam())
	}
	p.expectPeek(token.RPAREN)
	return params
}

func (p *Parser) parseOneParam() ast.Param {
	te := p.parseTypeExpression()
	p.next()
	name := &ast.Identifier{Token: p.current, Value: p.current.Lexeme}
	return ast.Param{Name: name, Type: te}
}

func (p *Parser) parseCallExpression(fn ast.Expression) ast.Expression {
	tok := p.current
	call := &ast.Call{Token: tok, Function: fn}
	call.Arguments = p.parseExpressionList(token.RPAREN)
	return call
}

func (p *Parser) parseExpressionList(end token.Type) []ast.Expression {
	var list []ast.Expression
	if p.peekIs(end) {
		p.next()
		return list
	}
	p.next()
	list = append(list, p.parseExpression(LOWEST))
	for p.peekIs(token.COMMA) {
		p.next()
		p.next()
		list = append(list, p.parseExpression(LOWEST))
	}
	p.expectPeek(end)
	return list
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	tok := p.current
	arr := &ast.Array{Token: tok}
	arr.Elements = p.parseExpressionList(token.RBRACKET)
	return arr
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	tok := p.current
	p.next()
	idx := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RBRACKET) {
		return &ast.Index{Token: tok, Left: left, Index: idx}
	}
	return &ast.Index{Token: tok, Left: left, Index: idx}
}

// isTypeStart reports whether tok can begin a TypeExpression: one of
// the fixed type keywords, or an identifier that a previous `type Name
// = T;` declaration registered in the symbol table as AsValue(_).
func (p *Parser) isTypeStart(tok token.Token) bool {
	switch tok.Type {
	case token.TYPE_BOOL, token.TYPE_CHAR, token.TYPE_INT, token.TYPE_FLOAT,
		token.TYPE_STRING, token.TYPE_VOID, token.TYPE_NEVER, token.TYPE_UNKNOWN,
		token.TYPE_ARR, token.TYPE_MAP, token.TYPE_ADDR, token.TYPE_TYPE:
		return true
	case token.IDENT:
		entry, ok := p.symbols.Resolve(tok.Lexeme)
		if !ok {
			return false
		}
		_, isAlias := entry.Type.(*types.AsValue)
		return isAlias
	}
	return false
}

// parseTypeExpression parses a type annotation/literal starting at the
// current token, leaving current positioned at the type's last token.
func (p *Parser) parseTypeExpression() ast.TypeExpression {
	tok := p.current
	var te ast.TypeExpression
	te.Token = tok

	switch tok.Type {
	case token.TYPE_ARR:
		te.Name = "arr"
		p.expectPeek(token.LBRACKET)
		p.next()
		elem := p.parseTypeExpression()
		te.Elem = elem
		te.HasElem = true
		p.expectPeek(token.RBRACKET)
	case token.TYPE_MAP:
		te.Name = "map"
		p.expectPeek(token.LBRACKET)
		p.next()
		key := p.parseTypeExpression()
		p.expectPeek(token.COMMA)
		p.next()
		val := p.parseTypeExpression()
		te.Key = key
		te.Value = val
		te.HasKeyValue = true
		p.expectPeek(token.RBRACKET)
	case token.TYPE_TYPE:
		te.Name = "type"
		p.expectPeek(token.LBRACKET)
		p.next()
		elem := p.parseTypeExpression()
		te.Elem = elem
		te.HasElem = true
		p.expectPeek(token.RBRACKET)
	case token.IDENT:
		te.Generic = tok.Lexeme
	default:
		te.Name = tok.Lexeme
	}

	if p.peekIs(token.ASTERISK) {
		p.next()
		wrapped := te
		te = ast.TypeExpression{Token: tok, Name: "addr", Elem: wrapped, HasElem: true}
	}
	if p.peekIs(token.QUESTION) {
		p.next()
		te.Nullable = true
	}
	return te
}
