// Package frontend turns one turn's source text into a checked statement
// list: scanning, parsing, name binding against the session scope, type
// checking and overload resolution, plus the link-symbol mangler.
package frontend

import (
	"ember/internal/lexer"
	"ember/internal/logging"
	"ember/internal/parser"

	"github.com/kr/pretty"
)

type Frontend struct{}

func New() *Frontend {
	return &Frontend{}
}

// ParseAndCheck compiles text into a checked statement list for a synthetic
// module named moduleName. Any returned diagnostics abort the turn; nothing
// is committed.
func (f *Frontend) ParseAndCheck(text, moduleName string, scope Scope) (*Checked, []error) {
	scanner := lexer.NewScanner(text)
	tokens := scanner.ScanTokens()

	p := parser.NewParserWithSource(tokens, text, moduleName)
	stmts := p.Parse()
	if len(p.Errors) > 0 {
		return nil, p.Errors
	}

	if logging.ShouldLog(logging.AreaAST, logging.PriorityInfo) {
		logging.Log(logging.AreaAST, "AST before modification:\n"+pretty.Sprint(stmts))
	}

	checked, errs := check(stmts, moduleName, text, scope)
	if len(errs) > 0 {
		return nil, errs
	}
	return checked, nil
}
