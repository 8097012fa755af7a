// Package codegen lowers one checked declaration at a time into an
// independently linkable executable unit of stack bytecode.
package codegen

import (
	"ember/internal/bytecode"
	"ember/internal/errors"
	"ember/internal/frontend"
	"ember/internal/logging"
	"ember/internal/parser"
	"ember/internal/vm"
)

type Compiler struct{}

func New() *Compiler {
	return &Compiler{}
}

// Lower produces the executable unit for one declaration. The unit's module
// name is the declaration's link symbol, mirroring the per-declaration
// module split done upstream.
func (c *Compiler) Lower(d *frontend.Decl, checked *frontend.Checked) (*ExecutableUnit, error) {
	symbol := frontend.Mangle(d)
	unit := &ExecutableUnit{Module: symbol}

	if d.Kind == frontend.DeclVar {
		unit.Symbols = append(unit.Symbols, SymbolDef{
			Name:   symbol,
			Kind:   SymbolVar,
			Global: &vm.Global{Name: symbol, Value: zeroValue(d.VarType)},
			Public: d.Public,
		})
		return unit, nil
	}

	fc := &fnCompiler{
		chunk:   bytecode.NewChunk(),
		checked: checked,
		unit:    unit,
	}
	fn, err := fc.compileFunction(d.Fn, symbol)
	if err != nil {
		return nil, err
	}
	unit.Symbols = append(unit.Symbols, SymbolDef{
		Name:   symbol,
		Kind:   SymbolFunc,
		Fn:     fn,
		Public: d.Public,
	})

	if logging.ShouldLog(logging.AreaCodegen, logging.PriorityInfo) {
		logging.Log(logging.AreaCodegen, bytecode.Disassemble(symbol, fn.Chunk))
	}
	return unit, nil
}

type localVar struct {
	name  string
	depth int
}

// fnCompiler lowers one function body. It implements the parser visitor
// interfaces; the first emission error wins and aborts the declaration.
type fnCompiler struct {
	chunk   *bytecode.Chunk
	checked *frontend.Checked
	unit    *ExecutableUnit
	fn      *vm.Function

	locals     []localVar
	scopeDepth int
	pos        bytecode.DebugInfo
	err        error
}

func (c *fnCompiler) compileFunction(decl *parser.FunctionStmt, symbol string) (*vm.Function, error) {
	c.fn = &vm.Function{
		Name:  symbol,
		Arity: len(decl.Params),
		Chunk: c.chunk,
	}
	for _, p := range decl.Params {
		c.locals = append(c.locals, localVar{name: p.Name, depth: 0})
	}
	for _, stmt := range decl.Body {
		stmt.Accept(c)
	}
	c.emit(bytecode.OpReturnNil)

	if c.err != nil {
		return nil, c.err
	}
	return c.fn, nil
}

// ---- statements ----

func (c *fnCompiler) VisitPrintStmt(stmt *parser.PrintStmt) interface{} {
	stmt.Expr.Accept(c)
	c.emit(bytecode.OpPrint)
	return nil
}

func (c *fnCompiler) VisitLetStmt(stmt *parser.LetStmt) interface{} {
	// The initializer value stays on the stack as the local's slot.
	stmt.Expr.Accept(c)
	c.locals = append(c.locals, localVar{name: stmt.Name, depth: c.scopeDepth})
	return nil
}

func (c *fnCompiler) VisitAssignStmt(stmt *parser.AssignStmt) interface{} {
	stmt.Expr.Accept(c)
	c.at(stmt.Line, stmt.Column)
	if slot, ok := c.resolveLocal(stmt.Name); ok {
		c.emit(bytecode.OpSetLocal)
		c.chunk.WriteByte(byte(slot))
		return nil
	}
	c.globalOp(bytecode.OpSetGlobal, stmt.Name)
	return nil
}

func (c *fnCompiler) VisitExpressionStmt(stmt *parser.ExpressionStmt) interface{} {
	stmt.Expr.Accept(c)
	if c.checked.TypeOf(stmt.Expr) != frontend.TypeVoid {
		c.emit(bytecode.OpPop)
	}
	return nil
}

func (c *fnCompiler) VisitFunctionStmt(stmt *parser.FunctionStmt) interface{} {
	c.fail("nested function " + stmt.Name + " survived checking")
	return nil
}

func (c *fnCompiler) VisitReturnStmt(stmt *parser.ReturnStmt) interface{} {
	if stmt.Value == nil {
		c.emit(bytecode.OpReturnNil)
		return nil
	}
	stmt.Value.Accept(c)
	c.emit(bytecode.OpReturn)
	return nil
}

func (c *fnCompiler) VisitIfStmt(stmt *parser.IfStmt) interface{} {
	stmt.Cond.Accept(c)
	elseJump := c.emitJump(bytecode.OpJumpIfFalse)

	c.beginScope()
	for _, inner := range stmt.Then {
		inner.Accept(c)
	}
	c.endScope()

	if len(stmt.Else) == 0 {
		c.patchJump(elseJump)
		return nil
	}
	endJump := c.emitJump(bytecode.OpJump)
	c.patchJump(elseJump)

	c.beginScope()
	for _, inner := range stmt.Else {
		inner.Accept(c)
	}
	c.endScope()
	c.patchJump(endJump)
	return nil
}

func (c *fnCompiler) VisitWhileStmt(stmt *parser.WhileStmt) interface{} {
	loopStart := len(c.chunk.Code)
	stmt.Cond.Accept(c)
	exitJump := c.emitJump(bytecode.OpJumpIfFalse)

	c.beginScope()
	for _, inner := range stmt.Body {
		inner.Accept(c)
	}
	c.endScope()

	c.emitLoop(loopStart)
	c.patchJump(exitJump)
	return nil
}

// ---- expressions ----

func (c *fnCompiler) VisitLiteralExpr(expr *parser.Literal) interface{} {
	idx := c.constant(expr.Value)
	c.emit(bytecode.OpConstant)
	c.chunk.WriteByte(byte(idx))
	return nil
}

func (c *fnCompiler) VisitVariableExpr(expr *parser.Variable) interface{} {
	c.at(expr.Line, expr.Column)
	if slot, ok := c.resolveLocal(expr.Name); ok {
		c.emit(bytecode.OpGetLocal)
		c.chunk.WriteByte(byte(slot))
		return nil
	}
	c.globalOp(bytecode.OpGetGlobal, expr.Name)
	return nil
}

func (c *fnCompiler) VisitUnaryExpr(expr *parser.Unary) interface{} {
	expr.Operand.Accept(c)
	c.at(expr.Line, expr.Column)
	if expr.Operator == "-" {
		c.emit(bytecode.OpNegate)
	} else {
		c.emit(bytecode.OpNot)
	}
	return nil
}

func (c *fnCompiler) VisitBinaryExpr(expr *parser.Binary) interface{} {
	expr.Left.Accept(c)
	expr.Right.Accept(c)
	c.at(expr.Line, expr.Column)

	switch expr.Operator {
	case "+":
		c.emit(bytecode.OpAdd)
	case "-":
		c.emit(bytecode.OpSub)
	case "*":
		c.emit(bytecode.OpMul)
	case "/":
		c.emit(bytecode.OpDiv)
	case "%":
		c.emit(bytecode.OpMod)
	case "==":
		c.emit(bytecode.OpEqual)
	case "!=":
		c.emit(bytecode.OpNotEqual)
	case ">":
		c.emit(bytecode.OpGreater)
	case "<":
		c.emit(bytecode.OpLess)
	case ">=":
		c.emit(bytecode.OpGreaterEqual)
	case "<=":
		c.emit(bytecode.OpLessEqual)
	}
	return nil
}

func (c *fnCompiler) VisitLogicalExpr(expr *parser.Logical) interface{} {
	c.at(expr.Line, expr.Column)
	expr.Left.Accept(c)
	if expr.Operator == "&&" {
		shortJump := c.emitJump(bytecode.OpJumpIfFalse)
		expr.Right.Accept(c)
		endJump := c.emitJump(bytecode.OpJump)
		c.patchJump(shortJump)
		idx := c.constant(false)
		c.emit(bytecode.OpConstant)
		c.chunk.WriteByte(byte(idx))
		c.patchJump(endJump)
	} else {
		shortJump := c.emitJump(bytecode.OpJumpIfTrue)
		expr.Right.Accept(c)
		endJump := c.emitJump(bytecode.OpJump)
		c.patchJump(shortJump)
		idx := c.constant(true)
		c.emit(bytecode.OpConstant)
		c.chunk.WriteByte(byte(idx))
		c.patchJump(endJump)
	}
	return nil
}

func (c *fnCompiler) VisitCallExpr(expr *parser.CallExpr) interface{} {
	target, ok := c.checked.CallTarget(expr)
	if !ok {
		c.fail("call to " + expr.Name + " was not resolved during checking")
		return nil
	}
	for _, arg := range expr.Args {
		arg.Accept(c)
	}
	c.at(expr.Line, expr.Column)

	// All calls start direct; the rewriter flips those with indirection
	// slots before the unit links.
	idx := c.constant(&bytecode.SymbolRef{Name: target.Symbol})
	offset := c.emit(bytecode.OpCallDirect)
	c.chunk.WriteByte(byte(idx))
	c.chunk.WriteByte(byte(len(expr.Args)))
	c.unit.CallSites = append(c.unit.CallSites, CallSite{
		Fn:         c.fn,
		Offset:     offset,
		ConstIndex: idx,
		Target:     target.Symbol,
	})
	return nil
}

// ---- helpers ----

// emit writes op stamped with the current source position, so runtime
// errors can report where the faulting instruction came from.
func (c *fnCompiler) emit(op bytecode.OpCode) int {
	return c.chunk.WriteOpWithDebug(op, c.pos)
}

// at moves the current source position. Synthesized nodes carry line 0 and
// keep the position of the surrounding source.
func (c *fnCompiler) at(line, column int) {
	if line != 0 {
		c.pos = bytecode.DebugInfo{Line: line, Column: column}
	}
}

func (c *fnCompiler) globalOp(op bytecode.OpCode, name string) {
	idx := c.constant(&bytecode.SymbolRef{Name: name})
	c.emit(op)
	c.chunk.WriteByte(byte(idx))
	c.unit.GlobalRefs = append(c.unit.GlobalRefs, GlobalRef{
		Fn:         c.fn,
		ConstIndex: idx,
		Target:     name,
	})
}

func (c *fnCompiler) resolveLocal(name string) (int, bool) {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			return i, true
		}
	}
	return 0, false
}

func (c *fnCompiler) beginScope() {
	c.scopeDepth++
}

func (c *fnCompiler) endScope() {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		c.emit(bytecode.OpPop)
		c.locals = c.locals[:len(c.locals)-1]
	}
}

func (c *fnCompiler) constant(v interface{}) int {
	idx := c.chunk.AddConstant(v)
	if idx > 255 {
		c.fail("too many constants in one declaration")
		return 0
	}
	return idx
}

func (c *fnCompiler) emitJump(op bytecode.OpCode) int {
	c.emit(op)
	c.chunk.WriteByte(0xff)
	c.chunk.WriteByte(0xff)
	return len(c.chunk.Code) - 2
}

func (c *fnCompiler) patchJump(operandPos int) {
	jump := len(c.chunk.Code) - (operandPos + 2)
	if jump > 0xffff {
		c.fail("jump distance too large")
		return
	}
	c.chunk.Code[operandPos] = byte(jump >> 8)
	c.chunk.Code[operandPos+1] = byte(jump & 0xff)
}

func (c *fnCompiler) emitLoop(loopStart int) {
	c.emit(bytecode.OpLoop)
	// Offset back to loopStart, measured from after the operand.
	offset := len(c.chunk.Code) + 2 - loopStart
	if offset > 0xffff {
		c.fail("loop body too large")
	}
	c.chunk.WriteByte(byte(offset >> 8))
	c.chunk.WriteByte(byte(offset & 0xff))
}

func (c *fnCompiler) fail(msg string) {
	if c.err == nil {
		c.err = errors.NewCompileError(msg)
	}
}

func zeroValue(t frontend.Type) vm.Value {
	switch t {
	case frontend.TypeInt:
		return int64(0)
	case frontend.TypeFloat:
		return float64(0)
	case frontend.TypeString:
		return ""
	case frontend.TypeBool:
		return false
	default:
		return nil
	}
}

var _ parser.StmtVisitor = (*fnCompiler)(nil)
var _ parser.ExprVisitor = (*fnCompiler)(nil)
