package codegen

import (
	"ember/internal/vm"
)

type SymbolKind int

const (
	SymbolFunc SymbolKind = iota
	SymbolVar
)

// SymbolDef is one symbol an executable unit defines: either a function
// body or a global variable cell.
type SymbolDef struct {
	Name   string
	Kind   SymbolKind
	Fn     *vm.Function // SymbolFunc
	Global *vm.Global   // SymbolVar
	Public bool
}

// CallSite records one call instruction and the symbol it targets. Offset is
// the opcode byte, so the rewriter can flip a direct call to an indirect one;
// ConstIndex is the operand constant holding the target reference.
type CallSite struct {
	Fn         *vm.Function
	Offset     int
	ConstIndex int
	Target     string
}

// GlobalRef records one global load or store and the variable symbol it
// targets. Global cells are patched at link time; they are not redefinable,
// so they never go through indirection.
type GlobalRef struct {
	Fn         *vm.Function
	ConstIndex int
	Target     string
}

// ExecutableUnit is the loadable output of lowering one declaration unit:
// relocatable code plus the symbol and call-site lists the linker and the
// call rewriter consume.
type ExecutableUnit struct {
	Module     string
	Symbols    []SymbolDef
	CallSites  []CallSite
	GlobalRefs []GlobalRef
}

// CodeBytes is the total bytecode size of the unit.
func (u *ExecutableUnit) CodeBytes() int {
	total := 0
	for _, s := range u.Symbols {
		if s.Fn != nil {
			total += len(s.Fn.Chunk.Code)
		}
	}
	return total
}
