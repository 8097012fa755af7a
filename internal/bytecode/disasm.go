package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble renders a chunk as one instruction per line, for the codegen
// logging area.
func Disassemble(name string, c *Chunk) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "== %s ==\n", name)
	for offset := 0; offset < len(c.Code); {
		offset = disassembleInstruction(&sb, c, offset)
	}
	return sb.String()
}

func disassembleInstruction(sb *strings.Builder, c *Chunk, offset int) int {
	fmt.Fprintf(sb, "%04d %s", offset, OpCode(c.Code[offset]))
	op := OpCode(c.Code[offset])
	switch op {
	case OpConstant, OpGetGlobal, OpSetGlobal:
		idx := int(c.Code[offset+1])
		fmt.Fprintf(sb, " %d (%s)\n", idx, constantName(c, idx))
		return offset + 2
	case OpGetLocal, OpSetLocal:
		fmt.Fprintf(sb, " %d\n", c.Code[offset+1])
		return offset + 2
	case OpCallDirect, OpCallIndirect:
		idx := int(c.Code[offset+1])
		argc := int(c.Code[offset+2])
		fmt.Fprintf(sb, " %d (%s) argc=%d\n", idx, constantName(c, idx), argc)
		return offset + 3
	case OpJump, OpJumpIfFalse, OpJumpIfTrue, OpLoop:
		jump := int(c.Code[offset+1])<<8 | int(c.Code[offset+2])
		fmt.Fprintf(sb, " %d\n", jump)
		return offset + 3
	default:
		sb.WriteByte('\n')
		return offset + 1
	}
}

func constantName(c *Chunk, idx int) string {
	if idx < 0 || idx >= len(c.Constants) {
		return "?"
	}
	switch v := c.Constants[idx].(type) {
	case *SymbolRef:
		return "@" + v.Name
	case string:
		return fmt.Sprintf("%q", v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
