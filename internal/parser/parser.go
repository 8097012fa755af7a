// internal/parser/parser.go
package parser

import (
	"strconv"
	"strings"

	"ember/internal/errors"
	"ember/internal/lexer"
)

var precedence = map[lexer.TokenType]int{
	// Logical operators (lowest precedence)
	lexer.TokenOr:  1, // ||
	lexer.TokenAnd: 2, // &&
	// Comparison operators
	lexer.TokenDoubleEqual: 3, // ==
	lexer.TokenNotEqual:    3, // !=
	lexer.TokenLT:          3, // <
	lexer.TokenGT:          3, // >
	lexer.TokenLE:          3, // <=
	lexer.TokenGE:          3, // >=
	// Arithmetic operators
	lexer.TokenPlus:    4, // +
	lexer.TokenMinus:   4, // -
	lexer.TokenStar:    5, // *
	lexer.TokenSlash:   5, // /
	lexer.TokenPercent: 5, // %
}

type Parser struct {
	tokens      []lexer.Token
	current     int
	Errors      []error
	file        string
	sourceLines []string // Source lines for error reporting
}

func NewParser(tokens []lexer.Token) *Parser {
	return &Parser{
		tokens:  tokens,
		current: 0,
		Errors:  []error{},
	}
}

func NewParserWithSource(tokens []lexer.Token, source string, file string) *Parser {
	return &Parser{
		tokens:      tokens,
		current:     0,
		Errors:      []error{},
		file:        file,
		sourceLines: strings.Split(source, "\n"),
	}
}

func (p *Parser) Parse() []Stmt {
	var stmts []Stmt
	for !p.isAtEnd() {
		if p.match(lexer.TokenFn) {
			stmts = append(stmts, p.function())
		} else {
			stmts = append(stmts, p.statement())
		}
		if len(p.Errors) > 0 {
			break
		}
	}
	return stmts
}

func (p *Parser) statement() Stmt {
	// If statement
	if p.match(lexer.TokenIf) {
		return p.ifStatement()
	}

	// While loop
	if p.match(lexer.TokenWhile) {
		return p.whileStatement()
	}

	// Log/print statement
	if p.match(lexer.TokenLog) {
		p.consume(lexer.TokenLParen, "Expect '(' after log")
		expr := p.expression()
		p.consume(lexer.TokenRParen, "Expect ')' after log argument")
		return &PrintStmt{Expr: expr}
	}

	// Variable declaration
	if p.match(lexer.TokenLet) {
		nameTok := p.consume(lexer.TokenIdent, "Expect variable name")
		p.consume(lexer.TokenEqual, "Expect '=' after variable name")
		expr := p.expression()
		return &LetStmt{Name: nameTok.Lexeme, Expr: expr, Line: nameTok.Line, Column: nameTok.Column}
	}

	// Return statement
	if p.match(lexer.TokenReturn) {
		var value Expr
		if !p.check(lexer.TokenRBrace) && !p.isAtEnd() {
			value = p.expression()
		}
		return &ReturnStmt{Value: value}
	}

	// Assignment statement (name = expr), distinguished by lookahead
	if p.check(lexer.TokenIdent) && p.checkNext(lexer.TokenEqual) {
		nameTok := p.advance()
		p.advance() // '='
		expr := p.expression()
		return &AssignStmt{Name: nameTok.Lexeme, Expr: expr, Line: nameTok.Line, Column: nameTok.Column}
	}

	expr := p.expression()
	return &ExpressionStmt{Expr: expr}
}

func (p *Parser) function() Stmt {
	nameTok := p.consume(lexer.TokenIdent, "Expect function name")
	p.consume(lexer.TokenLParen, "Expect '(' after function name")

	var params []Param
	if !p.check(lexer.TokenRParen) {
		for {
			paramTok := p.consume(lexer.TokenIdent, "Expect parameter name")
			p.consume(lexer.TokenColon, "Expect ':' after parameter name")
			params = append(params, Param{Name: paramTok.Lexeme, Type: p.typeName()})
			if !p.match(lexer.TokenComma) {
				break
			}
		}
	}
	p.consume(lexer.TokenRParen, "Expect ')' after parameters")

	returnType := ""
	if p.match(lexer.TokenColon) {
		returnType = p.typeName()
	}

	p.consume(lexer.TokenLBrace, "Expect '{' before function body")
	body := p.block()

	return &FunctionStmt{
		Name:       nameTok.Lexeme,
		Params:     params,
		ReturnType: returnType,
		Body:       body,
		Line:       nameTok.Line,
		Column:     nameTok.Column,
	}
}

func (p *Parser) typeName() string {
	tok := p.advance()
	switch tok.Type {
	case lexer.TokenInt:
		return "int"
	case lexer.TokenFloat:
		return "float"
	case lexer.TokenBool:
		return "bool"
	case lexer.TokenStringT:
		return "string"
	default:
		p.errorAt(tok, "Expect type name (int, float, bool or string)")
		return ""
	}
}

func (p *Parser) ifStatement() Stmt {
	cond := p.expression()
	p.consume(lexer.TokenLBrace, "Expect '{' after if condition")
	then := p.block()

	var elseBranch []Stmt
	if p.match(lexer.TokenElse) {
		if p.match(lexer.TokenIf) {
			elseBranch = []Stmt{p.ifStatement()}
		} else {
			p.consume(lexer.TokenLBrace, "Expect '{' after else")
			elseBranch = p.block()
		}
	}
	return &IfStmt{Cond: cond, Then: then, Else: elseBranch}
}

func (p *Parser) whileStatement() Stmt {
	cond := p.expression()
	p.consume(lexer.TokenLBrace, "Expect '{' after while condition")
	body := p.block()
	return &WhileStmt{Cond: cond, Body: body}
}

func (p *Parser) block() []Stmt {
	var stmts []Stmt
	for !p.check(lexer.TokenRBrace) && !p.isAtEnd() {
		stmts = append(stmts, p.statement())
		if len(p.Errors) > 0 {
			break
		}
	}
	p.consume(lexer.TokenRBrace, "Expect '}' after block")
	return stmts
}

func (p *Parser) expression() Expr {
	return p.binary(0)
}

func (p *Parser) binary(minPrec int) Expr {
	left := p.unary()
	for {
		opTok := p.peek()
		prec, ok := precedence[opTok.Type]
		if !ok || prec < minPrec {
			return left
		}
		p.advance()
		right := p.binary(prec + 1)
		if opTok.Type == lexer.TokenAnd || opTok.Type == lexer.TokenOr {
			left = &Logical{Left: left, Operator: opTok.Lexeme, Right: right, Line: opTok.Line, Column: opTok.Column}
		} else {
			left = &Binary{Left: left, Operator: opTok.Lexeme, Right: right, Line: opTok.Line, Column: opTok.Column}
		}
	}
}

func (p *Parser) unary() Expr {
	if p.check(lexer.TokenMinus) || p.check(lexer.TokenNot) {
		opTok := p.advance()
		operand := p.unary()
		return &Unary{Operator: opTok.Lexeme, Operand: operand, Line: opTok.Line, Column: opTok.Column}
	}
	return p.primary()
}

func (p *Parser) primary() Expr {
	tok := p.advance()
	switch tok.Type {
	case lexer.TokenNumber:
		if strings.Contains(tok.Lexeme, ".") {
			f, _ := strconv.ParseFloat(tok.Lexeme, 64)
			return &Literal{Value: f}
		}
		n, _ := strconv.ParseInt(tok.Lexeme, 10, 64)
		return &Literal{Value: n}
	case lexer.TokenString:
		return &Literal{Value: tok.Lexeme}
	case lexer.TokenTrue:
		return &Literal{Value: true}
	case lexer.TokenFalse:
		return &Literal{Value: false}
	case lexer.TokenIdent:
		if p.match(lexer.TokenLParen) {
			return p.finishCall(tok)
		}
		return &Variable{Name: tok.Lexeme, Line: tok.Line, Column: tok.Column}
	case lexer.TokenLParen:
		expr := p.expression()
		p.consume(lexer.TokenRParen, "Expect ')' after expression")
		return expr
	default:
		p.errorAt(tok, "Expect expression")
		return &Literal{Value: nil}
	}
}

func (p *Parser) finishCall(nameTok lexer.Token) Expr {
	var args []Expr
	if !p.check(lexer.TokenRParen) {
		for {
			args = append(args, p.expression())
			if !p.match(lexer.TokenComma) {
				break
			}
		}
	}
	p.consume(lexer.TokenRParen, "Expect ')' after arguments")
	return &CallExpr{Name: nameTok.Lexeme, Args: args, Line: nameTok.Line, Column: nameTok.Column}
}

func (p *Parser) match(t lexer.TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) check(t lexer.TokenType) bool {
	return p.peek().Type == t
}

func (p *Parser) checkNext(t lexer.TokenType) bool {
	if p.current+1 >= len(p.tokens) {
		return false
	}
	return p.tokens[p.current+1].Type == t
}

func (p *Parser) consume(t lexer.TokenType, msg string) lexer.Token {
	if p.check(t) {
		return p.advance()
	}
	tok := p.peek()
	p.errorAt(tok, msg)
	return tok
}

func (p *Parser) errorAt(tok lexer.Token, msg string) {
	err := errors.NewSyntaxError(msg, p.file, tok.Line, tok.Column)
	if tok.Line-1 >= 0 && tok.Line-1 < len(p.sourceLines) {
		err = err.WithSource(p.sourceLines[tok.Line-1])
	}
	p.Errors = append(p.Errors, err)
}

func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.tokens[p.current-1]
}

func (p *Parser) peek() lexer.Token {
	return p.tokens[p.current]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == lexer.TokenEOF
}
