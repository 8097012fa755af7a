package lexer

import (
	"unicode"
)

type TokenType string

const (
	// Keywords
	TokenFn     TokenType = "FN"
	TokenLet    TokenType = "LET"
	TokenIf     TokenType = "IF"
	TokenElse   TokenType = "ELSE"
	TokenReturn TokenType = "RETURN"
	TokenWhile  TokenType = "WHILE"
	TokenLog    TokenType = "LOG"

	// Literals & Types
	TokenTrue    TokenType = "TRUE"
	TokenFalse   TokenType = "FALSE"
	TokenIdent   TokenType = "IDENT"
	TokenString  TokenType = "STRING"
	TokenNumber  TokenType = "NUMBER"
	TokenInt     TokenType = "INT"
	TokenFloat   TokenType = "FLOAT"
	TokenBool    TokenType = "BOOL"
	TokenStringT TokenType = "STRING_T"

	// Symbols
	TokenLParen      TokenType = "("
	TokenRParen      TokenType = ")"
	TokenLBrace      TokenType = "{"
	TokenRBrace      TokenType = "}"
	TokenPlus        TokenType = "+"
	TokenMinus       TokenType = "-"
	TokenStar        TokenType = "*"
	TokenSlash       TokenType = "/"
	TokenPercent     TokenType = "%"
	TokenEqual       TokenType = "="
	TokenColon       TokenType = ":"
	TokenComma       TokenType = ","
	TokenDoubleEqual TokenType = "=="
	TokenNotEqual    TokenType = "!="
	TokenLT          TokenType = "<"
	TokenGT          TokenType = ">"
	TokenLE          TokenType = "<="
	TokenGE          TokenType = ">="
	TokenNot         TokenType = "!"
	TokenAnd         TokenType = "&&"
	TokenOr          TokenType = "||"

	TokenEOF TokenType = "EOF"
)

type Token struct {
	Type   TokenType
	Lexeme string
	Line   int
	Column int
}

type Scanner struct {
	source  string
	tokens  []Token
	start   int
	current int
	line    int
	col     int
}

func NewScanner(source string) *Scanner {
	return &Scanner{
		source: source,
		tokens: []Token{},
		line:   1,
		col:    1,
	}
}

func (s *Scanner) ScanTokens() []Token {
	for !s.isAtEnd() {
		s.skipWhitespace()
		s.start = s.current
		if s.isAtEnd() { // Prevent scanToken from running at EOF
			break
		}
		s.scanToken()
	}
	s.tokens = append(s.tokens, Token{Type: TokenEOF, Lexeme: "", Line: s.line, Column: s.col})
	return s.tokens
}

func (s *Scanner) scanToken() {
	c := s.advance()
	switch c {
	case '(':
		s.addToken(TokenLParen)
	case ')':
		s.addToken(TokenRParen)
	case '{':
		s.addToken(TokenLBrace)
	case '}':
		s.addToken(TokenRBrace)
	case '+':
		s.addToken(TokenPlus)
	case '-':
		s.addToken(TokenMinus)
	case '*':
		s.addToken(TokenStar)
	case '/':
		if s.match('/') {
			// Skip to end of line (ignore comments)
			for s.peek() != '\n' && !s.isAtEnd() {
				s.advance()
			}
		} else {
			s.addToken(TokenSlash)
		}
	case '%':
		s.addToken(TokenPercent)
	case '=':
		if s.match('=') {
			s.addToken(TokenDoubleEqual)
		} else {
			s.addToken(TokenEqual)
		}
	case '!':
		if s.match('=') {
			s.addToken(TokenNotEqual)
		} else {
			s.addToken(TokenNot)
		}
	case '<':
		if s.match('=') {
			s.addToken(TokenLE)
		} else {
			s.addToken(TokenLT)
		}
	case '>':
		if s.match('=') {
			s.addToken(TokenGE)
		} else {
			s.addToken(TokenGT)
		}
	case ':':
		s.addToken(TokenColon)
	case ',':
		s.addToken(TokenComma)
	case '"':
		s.string()
	case '&':
		if s.match('&') {
			s.addToken(TokenAnd)
		}
	case '|':
		if s.match('|') {
			s.addToken(TokenOr)
		}
	default:
		if isDigit(c) {
			s.number()
		} else if isAlpha(c) {
			s.identifier()
		}
	}
}

func (s *Scanner) match(expected byte) bool {
	if s.isAtEnd() || s.source[s.current] != expected {
		return false
	}
	s.current++
	s.col++
	return true
}

func (s *Scanner) identifier() {
	for isAlphaNumeric(s.peek()) {
		s.advance()
	}
	text := s.source[s.start:s.current]
	switch text {
	case "fn":
		s.addToken(TokenFn)
	case "let":
		s.addToken(TokenLet)
	case "if":
		s.addToken(TokenIf)
	case "else":
		s.addToken(TokenElse)
	case "return":
		s.addToken(TokenReturn)
	case "while":
		s.addToken(TokenWhile)
	case "log":
		s.addToken(TokenLog)
	case "true":
		s.addToken(TokenTrue)
	case "false":
		s.addToken(TokenFalse)
	case "int":
		s.addToken(TokenInt)
	case "float":
		s.addToken(TokenFloat)
	case "bool":
		s.addToken(TokenBool)
	case "string":
		s.addToken(TokenStringT)
	default:
		s.addToken(TokenIdent)
	}
}

func (s *Scanner) number() {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	s.addToken(TokenNumber)
}

func (s *Scanner) string() {
	for s.peek() != '"' && !s.isAtEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.isAtEnd() {
		return // Unterminated string; the parser reports it at EOF
	}
	s.advance()
	value := s.source[s.start+1 : s.current-1]
	s.tokens = append(s.tokens, Token{Type: TokenString, Lexeme: value, Line: s.line, Column: s.startCol()})
}

func (s *Scanner) addToken(t TokenType) {
	text := s.source[s.start:s.current]
	s.tokens = append(s.tokens, Token{Type: t, Lexeme: text, Line: s.line, Column: s.startCol()})
}

func (s *Scanner) startCol() int {
	return s.col - (s.current - s.start)
}

func (s *Scanner) advance() byte {
	s.current++
	s.col++
	return s.source[s.current-1]
}

func (s *Scanner) peek() byte {
	if s.isAtEnd() {
		return '\000'
	}
	return s.source[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.source) {
		return '\000'
	}
	return s.source[s.current+1]
}

func (s *Scanner) isAtEnd() bool {
	return s.current >= len(s.source)
}

func (s *Scanner) skipWhitespace() {
	for !s.isAtEnd() && unicode.IsSpace(rune(s.peek())) {
		if s.peek() == '\n' {
			s.line++
			s.col = 0
		}
		s.advance()
	}
}

func isAlpha(c byte) bool {
	return unicode.IsLetter(rune(c)) || c == '_'
}

func isAlphaNumeric(c byte) bool {
	return isAlpha(c) || unicode.IsDigit(rune(c))
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
