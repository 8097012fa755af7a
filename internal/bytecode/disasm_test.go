package bytecode

import (
	"strings"
	"testing"
)

func TestDisassemble(t *testing.T) {
	c := NewChunk()
	idx := c.AddConstant(int64(42))
	c.WriteOp(OpConstant)
	c.WriteByte(byte(idx))
	ref := c.AddConstant(&SymbolRef{Name: "_EF1f"})
	c.WriteOp(OpCallDirect)
	c.WriteByte(byte(ref))
	c.WriteByte(1)
	c.WriteOp(OpReturn)

	out := Disassemble("_EF4test", c)
	for _, want := range []string{
		"== _EF4test ==",
		"0000 CONSTANT 0 (42)",
		"0002 CALL_DIRECT 1 (@_EF1f) argc=1",
		"0005 RETURN",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestWriteOpReturnsOffset(t *testing.T) {
	c := NewChunk()
	if off := c.WriteOp(OpAdd); off != 0 {
		t.Errorf("first offset: got %d, want 0", off)
	}
	c.WriteByte(7)
	if off := c.WriteOp(OpSub); off != 2 {
		t.Errorf("second offset: got %d, want 2", off)
	}
}
