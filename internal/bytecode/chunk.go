package bytecode

// SymbolRef is a link-time placeholder constant: it names a symbol whose
// address is patched in (or resolved lazily) by the linker. No SymbolRef
// should survive into a constant the VM reads before linking.
type SymbolRef struct {
	Name string
}

// DebugInfo stores the source location for a bytecode instruction
type DebugInfo struct {
	Line   int
	Column int
}

type Chunk struct {
	Code      []byte
	Constants []interface{}
	Debug     []DebugInfo // Debug info for each instruction byte
}

func NewChunk() *Chunk {
	return &Chunk{
		Code:      []byte{},
		Constants: []interface{}{},
		Debug:     []DebugInfo{},
	}
}

func (c *Chunk) WriteOp(op OpCode) int {
	c.Code = append(c.Code, byte(op))
	c.Debug = append(c.Debug, DebugInfo{})
	return len(c.Code) - 1
}

func (c *Chunk) WriteOpWithDebug(op OpCode, debug DebugInfo) int {
	c.Code = append(c.Code, byte(op))
	c.Debug = append(c.Debug, debug)
	return len(c.Code) - 1
}

func (c *Chunk) WriteByte(b byte) {
	c.Code = append(c.Code, b)
	c.Debug = append(c.Debug, DebugInfo{})
}

func (c *Chunk) AddConstant(val interface{}) int {
	c.Constants = append(c.Constants, val)
	return len(c.Constants) - 1
}

func (c *Chunk) GetDebugInfo(ip int) DebugInfo {
	if ip >= 0 && ip < len(c.Debug) {
		return c.Debug[ip]
	}
	return DebugInfo{}
}
