// internal/parser/stmt.go
package parser

// Stmt represents a top-level statement.
type Stmt interface {
	Accept(visitor StmtVisitor) interface{}
}

// PrintStmt wraps an expression to print: log(expr)
type PrintStmt struct {
	Expr Expr
}

func (p *PrintStmt) Accept(visitor StmtVisitor) interface{} {
	return visitor.VisitPrintStmt(p)
}

// LetStmt represents a variable declaration: let x = expr
type LetStmt struct {
	Name   string
	Expr   Expr
	Line   int
	Column int
}

func (l *LetStmt) Accept(visitor StmtVisitor) interface{} {
	return visitor.VisitLetStmt(l)
}

// AssignStmt represents assignment to an existing global: x = expr
type AssignStmt struct {
	Name   string
	Expr   Expr
	Line   int
	Column int
}

func (a *AssignStmt) Accept(visitor StmtVisitor) interface{} {
	return visitor.VisitAssignStmt(a)
}

// ExpressionStmt wraps a raw expression as a statement.
type ExpressionStmt struct {
	Expr Expr
}

func (e *ExpressionStmt) Accept(visitor StmtVisitor) interface{} {
	return visitor.VisitExpressionStmt(e)
}

// Param is one typed function parameter.
type Param struct {
	Name string
	Type string
}

// FunctionStmt represents a function declaration.
type FunctionStmt struct {
	Name       string
	Params     []Param
	ReturnType string
	Body       []Stmt
	Line       int
	Column     int
}

func (f *FunctionStmt) Accept(visitor StmtVisitor) interface{} {
	return visitor.VisitFunctionStmt(f)
}

// ReturnStmt represents a return statement.
type ReturnStmt struct {
	Value Expr
}

func (r *ReturnStmt) Accept(visitor StmtVisitor) interface{} {
	return visitor.VisitReturnStmt(r)
}

// IfStmt represents an if/else statement.
type IfStmt struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
}

func (i *IfStmt) Accept(visitor StmtVisitor) interface{} {
	return visitor.VisitIfStmt(i)
}

// WhileStmt represents a while loop.
type WhileStmt struct {
	Cond Expr
	Body []Stmt
}

func (w *WhileStmt) Accept(visitor StmtVisitor) interface{} {
	return visitor.VisitWhileStmt(w)
}

// StmtVisitor handles all statement types.
type StmtVisitor interface {
	VisitPrintStmt(stmt *PrintStmt) interface{}
	VisitLetStmt(stmt *LetStmt) interface{}
	VisitAssignStmt(stmt *AssignStmt) interface{}
	VisitExpressionStmt(stmt *ExpressionStmt) interface{}
	VisitFunctionStmt(stmt *FunctionStmt) interface{}
	VisitReturnStmt(stmt *ReturnStmt) interface{}
	VisitIfStmt(stmt *IfStmt) interface{}
	VisitWhileStmt(stmt *WhileStmt) interface{}
}
