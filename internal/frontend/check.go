package frontend

import (
	"fmt"
	"strings"

	"ember/internal/errors"
	"ember/internal/parser"
)

// Checked is the result of binding and type checking one turn's source
// against the session scope. It answers the static-type and call-target
// questions the shaping transforms and the code generator ask.
type Checked struct {
	Module string
	Stmts  []parser.Stmt

	types       map[parser.Expr]Type
	callTargets map[*parser.CallExpr]Overload
	globals     map[string]Type       // globals declared by this turn
	funcs       map[string][]Overload // function signatures declared by this turn
	scope       Scope
}

// TypeOf returns the checked static type of an expression.
func (c *Checked) TypeOf(e parser.Expr) Type {
	return c.types[e]
}

// CallTarget returns the overload a call expression resolved to.
func (c *Checked) CallTarget(e *parser.CallExpr) (Overload, bool) {
	ov, ok := c.callTargets[e]
	return ov, ok
}

// GlobalType resolves a global variable's type, this turn's declarations
// shadowing the session scope.
func (c *Checked) GlobalType(name string) (Type, bool) {
	if t, ok := c.globals[name]; ok {
		return t, true
	}
	return c.scope.GlobalType(name)
}

// TurnGlobals returns the names of globals declared by this turn.
func (c *Checked) TurnGlobals() map[string]Type {
	return c.globals
}

// DeclareGlobal registers a synthesized global (the result-capture cell) so
// codegen can type it. Shaping calls this after checking.
func (c *Checked) DeclareGlobal(name string, t Type) {
	c.globals[name] = t
}

// checker walks the statement list once, hoisting function signatures so a
// turn's functions can reference each other regardless of textual order.
type checker struct {
	out  *Checked
	errs []error

	file        string
	sourceLines []string

	// Block scope stack for locals. At the top level the stack is empty and
	// `let` declares a turn global; inside any block (a function body or a
	// nested if/while block, which later lands in the entry wrapper) it
	// declares a local.
	scopes     []map[string]Type
	returnType Type
	inFunction bool
}

func (c *checker) pushScope() {
	c.scopes = append(c.scopes, make(map[string]Type))
}

func (c *checker) popScope() {
	c.scopes = c.scopes[:len(c.scopes)-1]
}

func (c *checker) lookupLocal(name string) (Type, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if t, ok := c.scopes[i][name]; ok {
			return t, true
		}
	}
	return TypeInvalid, false
}

func check(stmts []parser.Stmt, module, source string, scope Scope) (*Checked, []error) {
	c := &checker{
		out: &Checked{
			Module:      module,
			Stmts:       stmts,
			types:       make(map[parser.Expr]Type),
			callTargets: make(map[*parser.CallExpr]Overload),
			globals:     make(map[string]Type),
			funcs:       make(map[string][]Overload),
			scope:       scope,
		},
		file:        module,
		sourceLines: strings.Split(source, "\n"),
	}

	c.hoistFunctions(stmts)
	for _, stmt := range stmts {
		c.checkStmt(stmt)
	}
	return c.out, c.errs
}

// hoistFunctions registers every function signature before any body or
// statement is checked.
func (c *checker) hoistFunctions(stmts []parser.Stmt) {
	for _, stmt := range stmts {
		fn, ok := stmt.(*parser.FunctionStmt)
		if !ok {
			continue
		}
		sig := FuncSig{Return: TypeVoid}
		for _, p := range fn.Params {
			t, ok := TypeFromName(p.Type)
			if !ok {
				c.errorAt(fn.Line, fn.Column, errors.TypeError,
					fmt.Sprintf("unknown parameter type %q", p.Type))
			}
			sig.Params = append(sig.Params, t)
		}
		if fn.ReturnType != "" {
			t, ok := TypeFromName(fn.ReturnType)
			if !ok {
				c.errorAt(fn.Line, fn.Column, errors.TypeError,
					fmt.Sprintf("unknown return type %q", fn.ReturnType))
			}
			sig.Return = t
		}

		symbol := MangleFunction(fn.Name, sig.Params)
		for _, prev := range c.out.funcs[fn.Name] {
			if prev.Symbol == symbol {
				c.errorAt(fn.Line, fn.Column, errors.TypeError,
					fmt.Sprintf("duplicate declaration of %s in one input", fn.Name))
			}
		}
		c.out.funcs[fn.Name] = append(c.out.funcs[fn.Name], Overload{Symbol: symbol, Sig: sig})
	}
}

func (c *checker) checkStmt(stmt parser.Stmt) {
	switch s := stmt.(type) {
	case *parser.FunctionStmt:
		if c.inFunction {
			c.errorAt(s.Line, s.Column, errors.SyntaxError, "nested functions are not supported")
			return
		}
		c.checkFunction(s)

	case *parser.LetStmt:
		t := c.checkExpr(s.Expr)
		if t == TypeVoid {
			c.errorAt(s.Line, s.Column, errors.TypeError,
				fmt.Sprintf("cannot bind %s to a void expression", s.Name))
		}
		if len(c.scopes) > 0 {
			top := c.scopes[len(c.scopes)-1]
			if _, exists := top[s.Name]; exists {
				c.errorAt(s.Line, s.Column, errors.TypeError,
					fmt.Sprintf("duplicate local %s", s.Name))
			}
			top[s.Name] = t
		} else {
			if _, exists := c.out.globals[s.Name]; exists {
				c.errorAt(s.Line, s.Column, errors.TypeError,
					fmt.Sprintf("duplicate declaration of %s in one input", s.Name))
			}
			c.out.globals[s.Name] = t
		}

	case *parser.AssignStmt:
		t := c.checkExpr(s.Expr)
		target, found := c.lookupLocal(s.Name)
		if !found {
			target, found = c.out.GlobalType(s.Name)
		}
		if !found {
			c.errorAt(s.Line, s.Column, errors.ReferenceError,
				fmt.Sprintf("undefined name %s", s.Name))
			return
		}
		if target != t && t != TypeInvalid {
			c.errorAt(s.Line, s.Column, errors.TypeError,
				fmt.Sprintf("cannot assign %s to %s of type %s", t, s.Name, target))
		}

	case *parser.ExpressionStmt:
		c.checkExpr(s.Expr)

	case *parser.PrintStmt:
		if t := c.checkExpr(s.Expr); t == TypeVoid {
			c.errorf(errors.TypeError, "cannot log a void expression")
		}

	case *parser.ReturnStmt:
		if !c.inFunction {
			c.errorf(errors.SyntaxError, "return outside of a function")
			return
		}
		if s.Value == nil {
			if c.returnType != TypeVoid {
				c.errorf(errors.TypeError,
					fmt.Sprintf("missing return value, expected %s", c.returnType))
			}
			return
		}
		if t := c.checkExpr(s.Value); t != c.returnType && t != TypeInvalid {
			c.errorf(errors.TypeError,
				fmt.Sprintf("cannot return %s, expected %s", t, c.returnType))
		}

	case *parser.IfStmt:
		c.condition(s.Cond)
		c.pushScope()
		for _, inner := range s.Then {
			c.checkStmt(inner)
		}
		c.popScope()
		c.pushScope()
		for _, inner := range s.Else {
			c.checkStmt(inner)
		}
		c.popScope()

	case *parser.WhileStmt:
		c.condition(s.Cond)
		c.pushScope()
		for _, inner := range s.Body {
			c.checkStmt(inner)
		}
		c.popScope()
	}
}

func (c *checker) checkFunction(fn *parser.FunctionStmt) {
	sig := c.signatureOf(fn)

	c.inFunction = true
	c.returnType = sig.Return
	c.pushScope()
	for i, p := range fn.Params {
		if i < len(sig.Params) {
			c.scopes[len(c.scopes)-1][p.Name] = sig.Params[i]
		}
	}
	for _, stmt := range fn.Body {
		c.checkStmt(stmt)
	}
	c.popScope()
	c.inFunction = false
}

func (c *checker) signatureOf(fn *parser.FunctionStmt) FuncSig {
	for _, ov := range c.out.funcs[fn.Name] {
		if ov.Symbol == MangleFunction(fn.Name, paramTypes(fn)) {
			return ov.Sig
		}
	}
	return FuncSig{Return: TypeVoid}
}

func paramTypes(fn *parser.FunctionStmt) []Type {
	var params []Type
	for _, p := range fn.Params {
		t, _ := TypeFromName(p.Type)
		params = append(params, t)
	}
	return params
}

func (c *checker) condition(cond parser.Expr) {
	if t := c.checkExpr(cond); t != TypeBool && t != TypeInvalid {
		c.errorf(errors.TypeError, fmt.Sprintf("condition must be bool, got %s", t))
	}
}

func (c *checker) checkExpr(expr parser.Expr) Type {
	t := c.typeExpr(expr)
	c.out.types[expr] = t
	return t
}

func (c *checker) typeExpr(expr parser.Expr) Type {
	switch e := expr.(type) {
	case *parser.Literal:
		switch e.Value.(type) {
		case int64:
			return TypeInt
		case float64:
			return TypeFloat
		case string:
			return TypeString
		case bool:
			return TypeBool
		}
		return TypeInvalid

	case *parser.Variable:
		if t, ok := c.lookupLocal(e.Name); ok {
			return t
		}
		if t, ok := c.out.GlobalType(e.Name); ok {
			return t
		}
		if len(c.overloadsOf(e.Name)) > 0 {
			c.errorAt(e.Line, e.Column, errors.TypeError,
				fmt.Sprintf("%s is a function, not a value", e.Name))
			return TypeInvalid
		}
		c.errorAt(e.Line, e.Column, errors.ReferenceError,
			fmt.Sprintf("undefined name %s", e.Name))
		return TypeInvalid

	case *parser.Unary:
		t := c.checkExpr(e.Operand)
		if t == TypeInvalid {
			return TypeInvalid
		}
		if e.Operator == "-" {
			if !t.Numeric() {
				c.errorAt(e.Line, e.Column, errors.TypeError,
					fmt.Sprintf("operand of '-' must be numeric, got %s", t))
				return TypeInvalid
			}
			return t
		}
		if t != TypeBool {
			c.errorAt(e.Line, e.Column, errors.TypeError,
				fmt.Sprintf("operand of '!' must be bool, got %s", t))
			return TypeInvalid
		}
		return TypeBool

	case *parser.Binary:
		return c.typeBinary(e)

	case *parser.Logical:
		lt := c.checkExpr(e.Left)
		rt := c.checkExpr(e.Right)
		if (lt != TypeBool && lt != TypeInvalid) || (rt != TypeBool && rt != TypeInvalid) {
			c.errorAt(e.Line, e.Column, errors.TypeError,
				fmt.Sprintf("operands of '%s' must be bool", e.Operator))
		}
		return TypeBool

	case *parser.CallExpr:
		return c.typeCall(e)
	}
	return TypeInvalid
}

func (c *checker) typeBinary(e *parser.Binary) Type {
	lt := c.checkExpr(e.Left)
	rt := c.checkExpr(e.Right)
	if lt == TypeInvalid || rt == TypeInvalid {
		return TypeInvalid
	}
	if lt != rt {
		c.errorAt(e.Line, e.Column, errors.TypeError,
			fmt.Sprintf("operand type mismatch: %s %s %s", lt, e.Operator, rt))
		return TypeInvalid
	}

	switch e.Operator {
	case "+":
		if lt.Numeric() || lt == TypeString {
			return lt
		}
	case "-", "*", "/":
		if lt.Numeric() {
			return lt
		}
	case "%":
		if lt == TypeInt {
			return lt
		}
	case "==", "!=":
		return TypeBool
	case "<", ">", "<=", ">=":
		if lt.Ordered() {
			return TypeBool
		}
	}
	c.errorAt(e.Line, e.Column, errors.TypeError,
		fmt.Sprintf("'%s' is not defined for %s", e.Operator, lt))
	return TypeInvalid
}

func (c *checker) typeCall(e *parser.CallExpr) Type {
	var args []Type
	valid := true
	for _, a := range e.Args {
		t := c.checkExpr(a)
		if t == TypeInvalid {
			valid = false
		}
		args = append(args, t)
	}
	if !valid {
		return TypeInvalid
	}

	candidates := c.overloadsOf(e.Name)
	if len(candidates) == 0 {
		if _, isVar := c.out.GlobalType(e.Name); isVar {
			c.errorAt(e.Line, e.Column, errors.TypeError,
				fmt.Sprintf("%s is not a function", e.Name))
		} else {
			c.errorAt(e.Line, e.Column, errors.ReferenceError,
				fmt.Sprintf("undefined function %s", e.Name))
		}
		return TypeInvalid
	}

	for _, ov := range candidates {
		if sameParams(ov.Sig.Params, args) {
			c.out.callTargets[e] = ov
			return ov.Sig.Return
		}
	}
	c.errorAt(e.Line, e.Column, errors.TypeError,
		fmt.Sprintf("no overload of %s matches (%s)", e.Name, typeList(args)))
	return TypeInvalid
}

// overloadsOf merges this turn's function signatures with the session
// scope's; a turn-local signature shadows an identical symbol from the
// scope (redefinition of the same signature).
func (c *checker) overloadsOf(name string) []Overload {
	local := c.out.funcs[name]
	merged := append([]Overload{}, local...)
	for _, ov := range c.out.scope.Overloads(name) {
		shadowed := false
		for _, l := range local {
			if l.Symbol == ov.Symbol {
				shadowed = true
				break
			}
		}
		if !shadowed {
			merged = append(merged, ov)
		}
	}
	return merged
}

func sameParams(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func typeList(ts []Type) string {
	var names []string
	for _, t := range ts {
		names = append(names, t.String())
	}
	return strings.Join(names, ", ")
}

func (c *checker) errorf(kind errors.ErrorType, msg string) {
	c.errorAt(0, 0, kind, msg)
}

func (c *checker) errorAt(line, col int, kind errors.ErrorType, msg string) {
	err := &errors.EmberError{
		Type:     kind,
		Message:  msg,
		Location: errors.SourceLocation{File: c.file, Line: line, Column: col},
	}
	if line-1 >= 0 && line-1 < len(c.sourceLines) {
		err = err.WithSource(c.sourceLines[line-1])
	}
	c.errs = append(c.errs, err)
}
