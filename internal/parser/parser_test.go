package parser

import (
	"testing"

	"ember/internal/lexer"
)

func parse(t *testing.T, source string) []Stmt {
	t.Helper()
	p := NewParserWithSource(lexer.NewScanner(source).ScanTokens(), source, "test")
	stmts := p.Parse()
	if len(p.Errors) > 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors)
	}
	return stmts
}

func TestParseLet(t *testing.T) {
	stmts := parse(t, "let x = 42")
	if len(stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(stmts))
	}
	let, ok := stmts[0].(*LetStmt)
	if !ok {
		t.Fatalf("got %T, want *LetStmt", stmts[0])
	}
	if let.Name != "x" {
		t.Errorf("name: got %q, want x", let.Name)
	}
	lit, ok := let.Expr.(*Literal)
	if !ok || lit.Value != int64(42) {
		t.Errorf("initializer: got %#v, want int64 42", let.Expr)
	}
}

func TestParseFloatLiteral(t *testing.T) {
	stmts := parse(t, "let f = 2.5")
	lit := stmts[0].(*LetStmt).Expr.(*Literal)
	if lit.Value != float64(2.5) {
		t.Errorf("got %#v, want float64 2.5", lit.Value)
	}
}

func TestParseFunction(t *testing.T) {
	stmts := parse(t, `fn add(a: int, b: int): int {
	return a + b
}`)
	fn, ok := stmts[0].(*FunctionStmt)
	if !ok {
		t.Fatalf("got %T, want *FunctionStmt", stmts[0])
	}
	if fn.Name != "add" {
		t.Errorf("name: got %q, want add", fn.Name)
	}
	if len(fn.Params) != 2 || fn.Params[0].Type != "int" || fn.Params[1].Name != "b" {
		t.Errorf("params: got %#v", fn.Params)
	}
	if fn.ReturnType != "int" {
		t.Errorf("return type: got %q, want int", fn.ReturnType)
	}
	ret, ok := fn.Body[0].(*ReturnStmt)
	if !ok {
		t.Fatalf("body: got %T, want *ReturnStmt", fn.Body[0])
	}
	if _, ok := ret.Value.(*Binary); !ok {
		t.Errorf("return value: got %T, want *Binary", ret.Value)
	}
}

func TestParseVoidFunction(t *testing.T) {
	stmts := parse(t, "fn greet() { log(\"hi\") }")
	fn := stmts[0].(*FunctionStmt)
	if fn.ReturnType != "" {
		t.Errorf("return type: got %q, want empty", fn.ReturnType)
	}
	if _, ok := fn.Body[0].(*PrintStmt); !ok {
		t.Errorf("body: got %T, want *PrintStmt", fn.Body[0])
	}
}

func TestParsePrecedence(t *testing.T) {
	stmts := parse(t, "1 + 2 * 3")
	expr := stmts[0].(*ExpressionStmt).Expr.(*Binary)
	if expr.Operator != "+" {
		t.Fatalf("root operator: got %q, want +", expr.Operator)
	}
	right, ok := expr.Right.(*Binary)
	if !ok || right.Operator != "*" {
		t.Errorf("right: got %#v, want * binary", expr.Right)
	}
}

func TestParseLogicalPrecedence(t *testing.T) {
	stmts := parse(t, "a < b && c < d || e < f")
	or, ok := stmts[0].(*ExpressionStmt).Expr.(*Logical)
	if !ok || or.Operator != "||" {
		t.Fatalf("root: got %#v, want || logical", stmts[0])
	}
	and, ok := or.Left.(*Logical)
	if !ok || and.Operator != "&&" {
		t.Errorf("left: got %#v, want && logical", or.Left)
	}
}

func TestParseAssignVsExpression(t *testing.T) {
	stmts := parse(t, "x = 1\nx")
	if _, ok := stmts[0].(*AssignStmt); !ok {
		t.Errorf("first: got %T, want *AssignStmt", stmts[0])
	}
	if _, ok := stmts[1].(*ExpressionStmt); !ok {
		t.Errorf("second: got %T, want *ExpressionStmt", stmts[1])
	}
}

func TestParseIfElse(t *testing.T) {
	stmts := parse(t, `if x < 10 {
	log(x)
} else {
	x = 0
}`)
	ifStmt, ok := stmts[0].(*IfStmt)
	if !ok {
		t.Fatalf("got %T, want *IfStmt", stmts[0])
	}
	if len(ifStmt.Then) != 1 || len(ifStmt.Else) != 1 {
		t.Errorf("branches: then=%d else=%d, want 1 and 1", len(ifStmt.Then), len(ifStmt.Else))
	}
}

func TestParseWhile(t *testing.T) {
	stmts := parse(t, "while i < 10 { i = i + 1 }")
	while, ok := stmts[0].(*WhileStmt)
	if !ok {
		t.Fatalf("got %T, want *WhileStmt", stmts[0])
	}
	if len(while.Body) != 1 {
		t.Errorf("body: got %d statements, want 1", len(while.Body))
	}
}

func TestParseCall(t *testing.T) {
	stmts := parse(t, "add(1, 2.5)")
	call, ok := stmts[0].(*ExpressionStmt).Expr.(*CallExpr)
	if !ok {
		t.Fatalf("got %T, want *CallExpr", stmts[0].(*ExpressionStmt).Expr)
	}
	if call.Name != "add" || len(call.Args) != 2 {
		t.Errorf("got %q with %d args", call.Name, len(call.Args))
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"missing let initializer", "let x"},
		{"missing function name", "fn (a: int) {}"},
		{"unclosed block", "if x < 1 { log(x)"},
		{"bad parameter type", "fn f(a: widget) {}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParserWithSource(lexer.NewScanner(tt.source).ScanTokens(), tt.source, "test")
			p.Parse()
			if len(p.Errors) == 0 {
				t.Error("expected parse errors, got none")
			}
		})
	}
}
