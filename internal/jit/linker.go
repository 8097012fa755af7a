// Package jit links executable units into a live session: a symbol table
// with remove-before-add redefinition, an indirection table of slot cells
// for redefinable functions, and a call rewriter that redirects call sites
// through those cells.
package jit

import (
	"ember/internal/codegen"
	"ember/internal/errors"
	"ember/internal/logging"
	"ember/internal/vm"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// binding is one linked definition: a function body or a global cell.
type binding struct {
	fn     *vm.Function
	global *vm.Global
}

// Linker owns the session symbol table. Exactly one definition per symbol
// is visible at a time; redefinition removes the old binding first.
type Linker struct {
	table map[string]binding
}

func NewLinker() *Linker {
	return &Linker{table: make(map[string]binding)}
}

// Add binds a symbol definition. Private symbols are invisible to the
// linker and bind nothing. Adding a public symbol that is already bound is
// a link error; redefinition goes through Remove first.
func (l *Linker) Add(def codegen.SymbolDef) error {
	if !def.Public {
		return nil
	}
	if _, exists := l.table[def.Name]; exists {
		return errors.NewLinkError("duplicate symbol " + def.Name)
	}
	l.table[def.Name] = binding{fn: def.Fn, global: def.Global}
	logging.Log(logging.AreaJIT, "defined "+def.Name)
	return nil
}

// Remove unbinds a symbol. Removing a symbol that was never bound is a
// no-op, so a redefining turn does not need to know whether the name's
// previous turn linked successfully.
func (l *Linker) Remove(symbol string) {
	if _, exists := l.table[symbol]; !exists {
		return
	}
	delete(l.table, symbol)
	logging.Log(logging.AreaJIT, "removed "+symbol)
}

// Function returns the function bound to symbol, if any.
func (l *Linker) Function(symbol string) (*vm.Function, bool) {
	b, ok := l.table[symbol]
	if !ok || b.fn == nil {
		return nil, false
	}
	return b.fn, true
}

// Global returns the global cell bound to symbol, if any.
func (l *Linker) Global(symbol string) (*vm.Global, bool) {
	b, ok := l.table[symbol]
	if !ok || b.global == nil {
		return nil, false
	}
	return b.global, true
}

// Symbols returns every bound symbol in sorted order.
func (l *Linker) Symbols() []string {
	syms := maps.Keys(l.table)
	slices.Sort(syms)
	return syms
}

func (l *Linker) Len() int {
	return len(l.table)
}
