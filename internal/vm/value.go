package vm

import (
	"fmt"
	"strconv"

	"ember/internal/bytecode"
)

type Value interface{}

// Function represents one linked function body. Redefinition produces a new
// *Function; existing pointers keep the old body alive.
type Function struct {
	Name  string // link symbol
	Arity int
	Chunk *bytecode.Chunk
}

func (f *Function) String() string {
	return "<fn " + f.Name + ">"
}

// Global is the authoritative storage cell for one global variable. The
// linker binds the variable's symbol to this cell, so every unit (and the
// inspector) reads and writes the same storage.
type Global struct {
	Name  string
	Value Value
}

func (g *Global) String() string {
	return "<global " + g.Name + ">"
}

// Slot is an indirection cell for a redefinable function: it holds the most
// recently linked implementation, or nil when that implementation has not
// been resolved yet. Slot cells are allocated once per symbol and never
// relocated, so call sites can hold onto the pointer across redefinitions.
type Slot struct {
	Symbol string
	Fn     *Function
}

func (s *Slot) String() string {
	return "<slot " + s.Symbol + ">"
}

// FormatValue renders a value the way the REPL prints results.
func FormatValue(v Value) string {
	switch val := v.(type) {
	case nil:
		return "()"
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
