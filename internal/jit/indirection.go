package jit

import (
	"ember/internal/vm"
)

// IndirectionTable allocates one slot cell per redefinable function symbol.
// A cell is created the first time its symbol is defined or called and is
// never removed or relocated afterwards, so rewritten call sites stay valid
// across any number of redefinitions.
type IndirectionTable struct {
	slots map[string]*vm.Slot
}

func NewIndirectionTable() *IndirectionTable {
	return &IndirectionTable{slots: make(map[string]*vm.Slot)}
}

// Ensure returns the slot for symbol, creating an unset one if needed.
func (t *IndirectionTable) Ensure(symbol string) *vm.Slot {
	if slot, ok := t.slots[symbol]; ok {
		return slot
	}
	slot := &vm.Slot{Symbol: symbol}
	t.slots[symbol] = slot
	return slot
}

// Get returns the slot for symbol without creating one.
func (t *IndirectionTable) Get(symbol string) (*vm.Slot, bool) {
	slot, ok := t.slots[symbol]
	return slot, ok
}

func (t *IndirectionTable) Len() int {
	return len(t.slots)
}
