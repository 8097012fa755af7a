package bytecode

type OpCode byte

const (
	OpConstant OpCode = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpNegate
	OpNot
	OpEqual
	OpNotEqual
	OpGreater
	OpLess
	OpGreaterEqual
	OpLessEqual
	OpPop
	OpPrint
	OpJump
	OpJumpIfFalse
	OpJumpIfTrue
	OpLoop
	OpGetGlobal
	OpSetGlobal
	OpGetLocal
	OpSetLocal
	// OpCallDirect calls the *vm.Function stored in its constant operand. A
	// SymbolRef left in that constant is resolved through the linker on first
	// execution, the way a lazily materialized relocation would be.
	OpCallDirect
	// OpCallIndirect calls through an indirection slot: the current function
	// address is loaded out of the *vm.Slot constant at every call.
	OpCallIndirect
	OpReturn
	OpReturnNil
)

var opNames = map[OpCode]string{
	OpConstant:     "CONSTANT",
	OpAdd:          "ADD",
	OpSub:          "SUB",
	OpMul:          "MUL",
	OpDiv:          "DIV",
	OpMod:          "MOD",
	OpNegate:       "NEGATE",
	OpNot:          "NOT",
	OpEqual:        "EQUAL",
	OpNotEqual:     "NOT_EQUAL",
	OpGreater:      "GREATER",
	OpLess:         "LESS",
	OpGreaterEqual: "GREATER_EQUAL",
	OpLessEqual:    "LESS_EQUAL",
	OpPop:          "POP",
	OpPrint:        "PRINT",
	OpJump:         "JUMP",
	OpJumpIfFalse:  "JUMP_IF_FALSE",
	OpJumpIfTrue:   "JUMP_IF_TRUE",
	OpLoop:         "LOOP",
	OpGetGlobal:    "GET_GLOBAL",
	OpSetGlobal:    "SET_GLOBAL",
	OpGetLocal:     "GET_LOCAL",
	OpSetLocal:     "SET_LOCAL",
	OpCallDirect:   "CALL_DIRECT",
	OpCallIndirect: "CALL_INDIRECT",
	OpReturn:       "RETURN",
	OpReturnNil:    "RETURN_NIL",
}

func (op OpCode) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return "UNKNOWN"
}
