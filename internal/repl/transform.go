package repl

import (
	"fmt"

	"ember/internal/frontend"
	"ember/internal/parser"
)

// Shaped is one turn's compilation plan: the declaration units in link
// order plus the entry and result symbols, when the turn has them.
type Shaped struct {
	Module     string
	Decls      []*frontend.Decl
	Entry      string // entry wrapper symbol, "" when the turn only declares
	Result     string // synthesized result global, "" when nothing is captured
	ResultType frontend.Type

	entry *frontend.Decl
}

// Shape applies the source transforms that turn one checked input into
// linkable units:
//
//   - every top-level declaration is split into its own unit
//   - a top-level `let` becomes a zero-valued global plus an initializing
//     assignment inside the entry wrapper
//   - a final top-level expression with a value is captured into a
//     synthesized result global
//   - the remaining top-level statements become the body of the turn's
//     entry function, and every declaration is promoted to public
//
// Units come back in link order: variables, then functions in source
// order, then the entry wrapper.
func Shape(checked *frontend.Checked, turn int) *Shaped {
	sh := &Shaped{Module: fmt.Sprintf("__repl_%d", turn)}

	capture := captureIndex(checked)

	var vars, funcs []*frontend.Decl
	var body []parser.Stmt

	for i, stmt := range checked.Stmts {
		switch s := stmt.(type) {
		case *parser.FunctionStmt:
			funcs = append(funcs, &frontend.Decl{
				Kind:   frontend.DeclFunc,
				Name:   s.Name,
				Fn:     s,
				Sig:    frontend.SignatureOf(s),
				Public: true,
			})

		case *parser.LetStmt:
			init := &parser.AssignStmt{
				Name: s.Name, Expr: s.Expr, Line: s.Line, Column: s.Column,
			}
			vars = append(vars, &frontend.Decl{
				Kind:    frontend.DeclVar,
				Name:    s.Name,
				VarType: checked.TurnGlobals()[s.Name],
				Init:    init,
				Public:  true,
			})
			body = append(body, init)

		default:
			if i != capture {
				body = append(body, stmt)
				continue
			}
			expr := stmt.(*parser.ExpressionStmt).Expr
			name := fmt.Sprintf("__res_%d", turn)
			t := checked.TypeOf(expr)
			checked.DeclareGlobal(name, t)
			vars = append(vars, &frontend.Decl{
				Kind:    frontend.DeclVar,
				Name:    name,
				VarType: t,
				Public:  true,
			})
			body = append(body, &parser.AssignStmt{Name: name, Expr: expr})
			sh.Result = name
			sh.ResultType = t
		}
	}

	sh.Decls = append(sh.Decls, vars...)
	sh.Decls = append(sh.Decls, funcs...)

	if len(body) > 0 {
		entry := &frontend.Decl{
			Kind:   frontend.DeclFunc,
			Name:   sh.Module,
			Fn:     &parser.FunctionStmt{Name: sh.Module, Body: body},
			Sig:    frontend.FuncSig{Return: frontend.TypeVoid},
			Public: true,
		}
		sh.Entry = frontend.Mangle(entry)
		sh.Decls = append(sh.Decls, entry)
		sh.entry = entry
	}
	return sh
}

// DropInit removes a rejected declaration's initializing assignment from
// the entry wrapper, so a skipped declaration has no effect when the
// wrapper runs.
func (sh *Shaped) DropInit(d *frontend.Decl) {
	if d.Init == nil || sh.entry == nil {
		return
	}
	body := sh.entry.Fn.Body
	for i, stmt := range body {
		if stmt == d.Init {
			sh.entry.Fn.Body = append(body[:i], body[i+1:]...)
			return
		}
	}
}

// captureIndex reports which statement to capture: the turn's final
// statement, when it is an expression that produces a value. -1 means the
// turn has no result to capture.
func captureIndex(checked *frontend.Checked) int {
	if len(checked.Stmts) == 0 {
		return -1
	}
	last := len(checked.Stmts) - 1
	es, ok := checked.Stmts[last].(*parser.ExpressionStmt)
	if !ok {
		return -1
	}
	if t := checked.TypeOf(es.Expr); t == frontend.TypeVoid || t == frontend.TypeInvalid {
		return -1
	}
	return last
}
