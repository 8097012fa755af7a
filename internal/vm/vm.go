package vm

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"ember/internal/bytecode"
	"ember/internal/errors"
)

const maxFrames = 256

// Resolver supplies lazy symbol resolution for direct call sites whose
// constant still holds a SymbolRef when first executed.
type Resolver interface {
	ResolveFunction(symbol string) (*Function, bool)
}

type CallFrame struct {
	ip       int
	slotBase int
	fn       *Function
}

type VM struct {
	stack    []Value
	frames   []CallFrame
	out      io.Writer
	resolver Resolver
}

func New(out io.Writer, resolver Resolver) *VM {
	if out == nil {
		out = os.Stdout
	}
	return &VM{
		stack:    []Value{},
		frames:   []CallFrame{},
		out:      out,
		resolver: resolver,
	}
}

func (vm *VM) push(val Value) {
	vm.stack = append(vm.stack, val)
}

func (vm *VM) pop() Value {
	val := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return val
}

func (vm *VM) currentFrame() *CallFrame {
	return &vm.frames[len(vm.frames)-1]
}

func (vm *VM) readByte() byte {
	frame := vm.currentFrame()
	b := frame.fn.Chunk.Code[frame.ip]
	frame.ip++
	return b
}

func (vm *VM) readShort() int {
	frame := vm.currentFrame()
	high := int(frame.fn.Chunk.Code[frame.ip])
	low := int(frame.fn.Chunk.Code[frame.ip+1])
	frame.ip += 2
	return (high << 8) | low
}

// Run executes fn to completion and returns its result value. The stack and
// frame state never survive between calls, so a failed turn cannot corrupt a
// later one.
func (vm *VM) Run(fn *Function, args ...Value) (result Value, err error) {
	if len(args) != fn.Arity {
		return nil, errors.NewRuntimeError(
			fmt.Sprintf("%s expects %d arguments, got %d", fn.Name, fn.Arity, len(args)))
	}

	vm.stack = vm.stack[:0]
	vm.frames = vm.frames[:0]
	for _, a := range args {
		vm.push(a)
	}
	vm.frames = append(vm.frames, CallFrame{fn: fn, slotBase: 0})

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = errors.NewRuntimeError(fmt.Sprintf("%v", r))
		}
	}()

	for {
		frame := vm.currentFrame()
		ip := frame.ip
		op := bytecode.OpCode(frame.fn.Chunk.Code[ip])
		frame.ip++

		switch op {
		case bytecode.OpConstant:
			idx := vm.readByte()
			vm.push(frame.fn.Chunk.Constants[idx])

		case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpMod:
			b := vm.pop()
			a := vm.pop()
			v, err := arith(op, a, b)
			if err != nil {
				return nil, errAt(frame.fn, ip, err)
			}
			vm.push(v)

		case bytecode.OpNegate:
			switch v := vm.pop().(type) {
			case int64:
				vm.push(-v)
			case float64:
				vm.push(-v)
			default:
				return nil, errAt(frame.fn, ip, errors.NewRuntimeError("operand of '-' must be numeric"))
			}

		case bytecode.OpNot:
			v, ok := vm.pop().(bool)
			if !ok {
				return nil, errAt(frame.fn, ip, errors.NewRuntimeError("operand of '!' must be bool"))
			}
			vm.push(!v)

		case bytecode.OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(a == b)

		case bytecode.OpNotEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(a != b)

		case bytecode.OpGreater, bytecode.OpLess, bytecode.OpGreaterEqual, bytecode.OpLessEqual:
			b := vm.pop()
			a := vm.pop()
			v, err := compare(op, a, b)
			if err != nil {
				return nil, errAt(frame.fn, ip, err)
			}
			vm.push(v)

		case bytecode.OpPop:
			vm.pop()

		case bytecode.OpPrint:
			fmt.Fprintln(vm.out, FormatValue(vm.pop()))

		case bytecode.OpJump:
			offset := vm.readShort()
			frame.ip += offset

		case bytecode.OpJumpIfFalse:
			offset := vm.readShort()
			if cond, ok := vm.pop().(bool); ok && !cond {
				frame.ip += offset
			}

		case bytecode.OpJumpIfTrue:
			offset := vm.readShort()
			if cond, ok := vm.pop().(bool); ok && cond {
				frame.ip += offset
			}

		case bytecode.OpLoop:
			offset := vm.readShort()
			frame.ip -= offset

		case bytecode.OpGetGlobal:
			idx := vm.readByte()
			cell, ok := frame.fn.Chunk.Constants[idx].(*Global)
			if !ok {
				return nil, errAt(frame.fn, ip, unresolvedConstant(frame.fn.Chunk.Constants[idx]))
			}
			vm.push(cell.Value)

		case bytecode.OpSetGlobal:
			idx := vm.readByte()
			cell, ok := frame.fn.Chunk.Constants[idx].(*Global)
			if !ok {
				return nil, errAt(frame.fn, ip, unresolvedConstant(frame.fn.Chunk.Constants[idx]))
			}
			cell.Value = vm.pop()

		case bytecode.OpGetLocal:
			slot := int(vm.readByte())
			vm.push(vm.stack[frame.slotBase+slot])

		case bytecode.OpSetLocal:
			slot := int(vm.readByte())
			vm.stack[frame.slotBase+slot] = vm.pop()

		case bytecode.OpCallDirect:
			idx := vm.readByte()
			argc := int(vm.readByte())
			callee, err := vm.resolveDirect(frame.fn.Chunk, int(idx))
			if err != nil {
				return nil, errAt(frame.fn, ip, err)
			}
			if err := vm.call(callee, argc); err != nil {
				return nil, errAt(frame.fn, ip, err)
			}

		case bytecode.OpCallIndirect:
			idx := vm.readByte()
			argc := int(vm.readByte())
			slot, ok := frame.fn.Chunk.Constants[idx].(*Slot)
			if !ok {
				return nil, errAt(frame.fn, ip, unresolvedConstant(frame.fn.Chunk.Constants[idx]))
			}
			if slot.Fn == nil {
				return nil, errAt(frame.fn, ip, errors.NewLinkError("unresolved symbol "+slot.Symbol))
			}
			if err := vm.call(slot.Fn, argc); err != nil {
				return nil, errAt(frame.fn, ip, err)
			}

		case bytecode.OpReturn:
			ret := vm.pop()
			if done := vm.popFrame(ret); done {
				return ret, nil
			}

		case bytecode.OpReturnNil:
			if done := vm.popFrame(nil); done {
				return nil, nil
			}

		default:
			return nil, errors.NewRuntimeError(fmt.Sprintf("unknown opcode %d", op))
		}
	}
}

// resolveDirect handles a direct call site. A SymbolRef still present in the
// constant means the defining unit linked after the caller; resolve it now
// and memoize, matching lazy relocation in an on-request JIT.
func (vm *VM) resolveDirect(chunk *bytecode.Chunk, idx int) (*Function, error) {
	switch c := chunk.Constants[idx].(type) {
	case *Function:
		return c, nil
	case *bytecode.SymbolRef:
		if vm.resolver != nil {
			if fn, ok := vm.resolver.ResolveFunction(c.Name); ok {
				chunk.Constants[idx] = fn
				return fn, nil
			}
		}
		return nil, errors.NewLinkError("unresolved symbol " + c.Name)
	default:
		return nil, unresolvedConstant(c)
	}
}

func (vm *VM) call(fn *Function, argc int) error {
	if argc != fn.Arity {
		return errors.NewRuntimeError(
			fmt.Sprintf("%s expects %d arguments, got %d", fn.Name, fn.Arity, argc))
	}
	if len(vm.frames) >= maxFrames {
		return errors.NewRuntimeError("call stack overflow")
	}
	vm.frames = append(vm.frames, CallFrame{fn: fn, slotBase: len(vm.stack) - argc})
	return nil
}

// popFrame unwinds one call frame, pushing ret for the caller. It reports
// whether the outermost frame just returned.
func (vm *VM) popFrame(ret Value) bool {
	frame := vm.currentFrame()
	vm.stack = vm.stack[:frame.slotBase]
	vm.frames = vm.frames[:len(vm.frames)-1]
	if len(vm.frames) == 0 {
		return true
	}
	vm.push(ret)
	return false
}

func arith(op bytecode.OpCode, a, b Value) (Value, error) {
	switch av := a.(type) {
	case int64:
		bv, ok := b.(int64)
		if !ok {
			return nil, typeMismatch(a, b)
		}
		switch op {
		case bytecode.OpAdd:
			return av + bv, nil
		case bytecode.OpSub:
			return av - bv, nil
		case bytecode.OpMul:
			return av * bv, nil
		case bytecode.OpDiv:
			if bv == 0 {
				return nil, errors.NewRuntimeError("division by zero")
			}
			return av / bv, nil
		case bytecode.OpMod:
			if bv == 0 {
				return nil, errors.NewRuntimeError("division by zero")
			}
			return av % bv, nil
		}
	case float64:
		bv, ok := b.(float64)
		if !ok {
			return nil, typeMismatch(a, b)
		}
		switch op {
		case bytecode.OpAdd:
			return av + bv, nil
		case bytecode.OpSub:
			return av - bv, nil
		case bytecode.OpMul:
			return av * bv, nil
		case bytecode.OpDiv:
			return av / bv, nil
		case bytecode.OpMod:
			return nil, errors.NewRuntimeError("'%' is not defined for float")
		}
	case string:
		bv, ok := b.(string)
		if !ok || op != bytecode.OpAdd {
			return nil, typeMismatch(a, b)
		}
		return av + bv, nil
	}
	return nil, typeMismatch(a, b)
}

func compare(op bytecode.OpCode, a, b Value) (Value, error) {
	switch av := a.(type) {
	case int64:
		if bv, ok := b.(int64); ok {
			return compareOrdered(op, av, bv), nil
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return compareOrdered(op, av, bv), nil
		}
	case string:
		if bv, ok := b.(string); ok {
			return compareOrdered(op, av, bv), nil
		}
	}
	return nil, typeMismatch(a, b)
}

func compareOrdered[T int64 | float64 | string](op bytecode.OpCode, a, b T) bool {
	switch op {
	case bytecode.OpGreater:
		return a > b
	case bytecode.OpLess:
		return a < b
	case bytecode.OpGreaterEqual:
		return a >= b
	default:
		return a <= b
	}
}

// errAt stamps the faulting instruction's recorded source position onto
// the error, naming the function symbol as the location file. Errors that
// already carry a location keep it.
func errAt(fn *Function, ip int, err error) error {
	var ee *errors.EmberError
	if !stderrors.As(err, &ee) || ee.Location.Line != 0 {
		return err
	}
	d := fn.Chunk.GetDebugInfo(ip)
	if d.Line == 0 {
		return err
	}
	ee.Location = errors.SourceLocation{File: fn.Name, Line: d.Line, Column: d.Column}
	return err
}

func typeMismatch(a, b Value) error {
	return errors.NewRuntimeError(fmt.Sprintf("operand type mismatch: %T and %T", a, b))
}

func unresolvedConstant(c interface{}) error {
	if ref, ok := c.(*bytecode.SymbolRef); ok {
		return errors.NewLinkError("unresolved symbol " + ref.Name)
	}
	return errors.NewRuntimeError(fmt.Sprintf("malformed constant %v", c))
}
