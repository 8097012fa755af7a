package parser

type Expr interface {
	Accept(visitor ExprVisitor) interface{}
}

// Binary expression: a + b
type Binary struct {
	Left     Expr
	Operator string
	Right    Expr
	Line     int
	Column   int
}

func (b *Binary) Accept(visitor ExprVisitor) interface{} {
	return visitor.VisitBinaryExpr(b)
}

// Logical expression: a && b, a || b (short-circuiting)
type Logical struct {
	Left     Expr
	Operator string
	Right    Expr
	Line     int
	Column   int
}

func (l *Logical) Accept(visitor ExprVisitor) interface{} {
	return visitor.VisitLogicalExpr(l)
}

// Unary expression: -x, !x
type Unary struct {
	Operator string
	Operand  Expr
	Line     int
	Column   int
}

func (u *Unary) Accept(visitor ExprVisitor) interface{} {
	return visitor.VisitUnaryExpr(u)
}

// Literal expression: int, float, string or bool constant
type Literal struct {
	Value interface{}
}

func (l *Literal) Accept(visitor ExprVisitor) interface{} {
	return visitor.VisitLiteralExpr(l)
}

// Variable expression: x
type Variable struct {
	Name   string
	Line   int
	Column int
}

func (v *Variable) Accept(visitor ExprVisitor) interface{} {
	return visitor.VisitVariableExpr(v)
}

// CallExpr is a call to a named function: callee(args...). Callees are
// always identifiers; overload selection happens during checking.
type CallExpr struct {
	Name   string
	Args   []Expr
	Line   int
	Column int
}

func (c *CallExpr) Accept(visitor ExprVisitor) interface{} {
	return visitor.VisitCallExpr(c)
}

// ExprVisitor handles all expression types.
type ExprVisitor interface {
	VisitBinaryExpr(expr *Binary) interface{}
	VisitLogicalExpr(expr *Logical) interface{}
	VisitUnaryExpr(expr *Unary) interface{}
	VisitLiteralExpr(expr *Literal) interface{}
	VisitVariableExpr(expr *Variable) interface{}
	VisitCallExpr(expr *CallExpr) interface{}
}
