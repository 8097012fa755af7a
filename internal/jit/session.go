package jit

import (
	"io"

	pkgerrors "github.com/pkg/errors"

	"ember/internal/codegen"
	"ember/internal/errors"
	"ember/internal/logging"
	"ember/internal/vm"
)

// Session is the live linked program. Units are added one at a time and
// stay alive for the life of the session; removing a symbol only unbinds
// the name, it never reclaims the old body, so stale slot cells and frames
// already running an old definition remain safe.
//
// There is no rollback: if a unit fails partway through linking, symbols
// it already bound stay bound. The turn controller reports the error and
// the next turn proceeds against whatever state remains.
type Session struct {
	linker  *Linker
	slots   *IndirectionTable
	units   []*codegen.ExecutableUnit
	machine *vm.VM
}

// Stats summarizes what the session has linked so far.
type Stats struct {
	Units     int
	CodeBytes int
	Symbols   int
	Slots     int
}

func NewSession(out io.Writer) *Session {
	s := &Session{
		linker: NewLinker(),
		slots:  NewIndirectionTable(),
	}
	s.machine = vm.New(out, s)
	return s
}

// AddUnit links one executable unit into the session:
//
//  1. remove every symbol the unit defines, so redefinition is just
//     remove-then-add and a fresh definition removes nothing
//  2. rewrite the unit's call sites through the indirection table
//  3. bind the unit's public symbols; private ones stay invisible
//  4. patch global references against the symbol table
//  5. repoint the slot cell of each function the unit defines
//
// Global references must resolve here; an unresolved one fails the unit and
// the defining slot cells stay as they were.
func (s *Session) AddUnit(unit *codegen.ExecutableUnit) error {
	logging.Log(logging.AreaJIT, "linking unit "+unit.Module)

	for _, def := range unit.Symbols {
		s.linker.Remove(def.Name)
	}

	RewriteCalls(unit, s.slots)

	for _, def := range unit.Symbols {
		if err := s.linker.Add(def); err != nil {
			return pkgerrors.Wrapf(err, "linking %s", unit.Module)
		}
	}

	for _, ref := range unit.GlobalRefs {
		cell, ok := s.linker.Global(ref.Target)
		if !ok {
			return pkgerrors.Wrapf(
				errors.NewLinkError("unresolved symbol "+ref.Target),
				"linking %s", unit.Module)
		}
		ref.Fn.Chunk.Constants[ref.ConstIndex] = cell
	}

	for _, def := range unit.Symbols {
		if def.Kind != codegen.SymbolFunc || !def.Public {
			continue
		}
		slot := s.slots.Ensure(def.Name)
		slot.Fn = def.Fn
		logging.Log(logging.AreaJIT, "slot "+def.Name+" -> "+def.Fn.String())
	}

	s.units = append(s.units, unit)
	return nil
}

// Invoke looks up a function symbol and runs it on the session VM.
func (s *Session) Invoke(symbol string, args ...vm.Value) (vm.Value, error) {
	fn, ok := s.linker.Function(symbol)
	if !ok {
		return nil, errors.NewLinkError("unresolved symbol " + symbol)
	}
	return s.machine.Run(fn, args...)
}

// ResolveFunction lets the VM resolve a direct call site that was never
// rewritten, such as code executed outside a linked turn.
func (s *Session) ResolveFunction(symbol string) (*vm.Function, bool) {
	return s.linker.Function(symbol)
}

// GlobalValue reads the current value of a global variable cell.
func (s *Session) GlobalValue(symbol string) (vm.Value, bool) {
	cell, ok := s.linker.Global(symbol)
	if !ok {
		return nil, false
	}
	return cell.Value, true
}

// Symbols returns every bound symbol in sorted order.
func (s *Session) Symbols() []string {
	return s.linker.Symbols()
}

// Slot exposes a symbol's indirection cell, mainly for inspection.
func (s *Session) Slot(symbol string) (*vm.Slot, bool) {
	return s.slots.Get(symbol)
}

func (s *Session) Stats() Stats {
	st := Stats{
		Units:   len(s.units),
		Symbols: s.linker.Len(),
		Slots:   s.slots.Len(),
	}
	for _, u := range s.units {
		st.CodeBytes += u.CodeBytes()
	}
	return st
}

var _ vm.Resolver = (*Session)(nil)
