package jit

import (
	stderrors "errors"
	"testing"

	"ember/internal/bytecode"
	"ember/internal/codegen"
	"ember/internal/errors"
	"ember/internal/frontend"
	"ember/internal/parser"
	"ember/internal/vm"
)

// lower compiles one source of function declarations into units, one per
// declaration, using the given scope for names from "earlier turns".
func lower(t *testing.T, source string, scope frontend.Scope) []*codegen.ExecutableUnit {
	t.Helper()
	if scope == nil {
		scope = frontend.EmptyScope()
	}
	checked, errs := frontend.New().ParseAndCheck(source, "test", scope)
	if len(errs) > 0 {
		t.Fatalf("check failed: %v", errs)
	}
	var units []*codegen.ExecutableUnit
	for _, stmt := range checked.Stmts {
		fn, ok := stmt.(*parser.FunctionStmt)
		if !ok {
			t.Fatalf("not a function declaration: %T", stmt)
		}
		unit, err := codegen.New().Lower(&frontend.Decl{
			Kind:   frontend.DeclFunc,
			Name:   fn.Name,
			Fn:     fn,
			Sig:    frontend.SignatureOf(fn),
			Public: true,
		}, checked)
		if err != nil {
			t.Fatalf("lower failed: %v", err)
		}
		units = append(units, unit)
	}
	return units
}

func addAll(t *testing.T, s *Session, units []*codegen.ExecutableUnit) {
	t.Helper()
	for _, u := range units {
		if err := s.AddUnit(u); err != nil {
			t.Fatalf("AddUnit(%s) failed: %v", u.Module, err)
		}
	}
}

func TestLinkerRemoveIsIdempotent(t *testing.T) {
	l := NewLinker()
	l.Remove("_EF5never")
	l.Remove("_EF5never")

	if err := l.Add(codegen.SymbolDef{Name: "x", Global: &vm.Global{Name: "x"}, Public: true}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	l.Remove("x")
	l.Remove("x")
	if l.Len() != 0 {
		t.Errorf("got %d symbols, want 0", l.Len())
	}
}

func TestLinkerDuplicateSymbol(t *testing.T) {
	l := NewLinker()
	def := codegen.SymbolDef{Name: "x", Global: &vm.Global{Name: "x"}, Public: true}
	if err := l.Add(def); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	err := l.Add(def)
	if !stderrors.Is(err, errors.NewLinkError("")) {
		t.Errorf("got %v, want a LinkError", err)
	}
}

func TestLinkerIgnoresPrivateSymbols(t *testing.T) {
	s := NewSession(nil)
	fn := &vm.Function{Name: "_EF5local", Chunk: bytecode.NewChunk()}
	fn.Chunk.WriteOp(bytecode.OpReturnNil)
	unit := &codegen.ExecutableUnit{
		Module:  "_EF5local",
		Symbols: []codegen.SymbolDef{{Name: "_EF5local", Kind: codegen.SymbolFunc, Fn: fn}},
	}
	if err := s.AddUnit(unit); err != nil {
		t.Fatalf("AddUnit failed: %v", err)
	}
	if _, ok := s.ResolveFunction("_EF5local"); ok {
		t.Error("private symbol is visible")
	}
	if _, ok := s.Slot("_EF5local"); ok {
		t.Error("private symbol got an indirection slot")
	}
	if syms := s.Symbols(); len(syms) != 0 {
		t.Errorf("symbols: got %v, want none", syms)
	}
}

func TestRewriteFlipsCallsToIndirect(t *testing.T) {
	units := lower(t, `fn inc(n: int): int { return n + 1 }
fn twice(n: int): int { return inc(inc(n)) }`, nil)
	twice := units[1]

	table := NewIndirectionTable()
	RewriteCalls(twice, table)

	fn := twice.Symbols[0].Fn
	for _, site := range twice.CallSites {
		if fn.Chunk.Code[site.Offset] != byte(bytecode.OpCallIndirect) {
			t.Errorf("offset %d not flipped to indirect", site.Offset)
		}
		slot, ok := fn.Chunk.Constants[site.ConstIndex].(*vm.Slot)
		if !ok {
			t.Fatalf("constant %d: got %#v, want *vm.Slot", site.ConstIndex, fn.Chunk.Constants[site.ConstIndex])
		}
		if slot.Symbol != "_EF3incSi" {
			t.Errorf("slot symbol: got %q", slot.Symbol)
		}
	}
	if table.Len() != 1 {
		t.Errorf("got %d slots, want 1", table.Len())
	}
}

func TestSessionInvoke(t *testing.T) {
	s := NewSession(nil)
	addAll(t, s, lower(t, "fn answer(): int { return 42 }", nil))

	got, err := s.Invoke("_EF6answer")
	if err != nil {
		t.Fatalf("invoke failed: %v", err)
	}
	if got != int64(42) {
		t.Errorf("got %v, want 42", got)
	}
}

func TestSessionRedefinitionRepointsCallers(t *testing.T) {
	s := NewSession(nil)
	addAll(t, s, lower(t, `fn f(): int { return 1 }
fn caller(): int { return f() }`, nil))

	got, err := s.Invoke("_EF6caller")
	if err != nil {
		t.Fatalf("invoke failed: %v", err)
	}
	if got != int64(1) {
		t.Errorf("before redefinition: got %v, want 1", got)
	}

	// Redefine f in a "later turn": the already-linked caller must pick up
	// the new body through its slot without being relinked.
	addAll(t, s, lower(t, "fn f(): int { return 2 }", nil))

	got, err = s.Invoke("_EF6caller")
	if err != nil {
		t.Fatalf("invoke after redefinition failed: %v", err)
	}
	if got != int64(2) {
		t.Errorf("after redefinition: got %v, want 2", got)
	}
}

func TestSessionForwardReferenceWithinTurn(t *testing.T) {
	// caller links before f does, as when a turn's units land in source
	// order; its call site gets a slot that f's unit populates later.
	units := lower(t, `fn caller(): int { return f() }
fn f(): int { return 7 }`, nil)

	s := NewSession(nil)
	addAll(t, s, units)

	got, err := s.Invoke("_EF6caller")
	if err != nil {
		t.Fatalf("invoke failed: %v", err)
	}
	if got != int64(7) {
		t.Errorf("got %v, want 7", got)
	}
}

func TestSessionUnresolvedSlotStaysUnset(t *testing.T) {
	// Only the caller links; the callee never does. The call must fail
	// with a link error naming the symbol, and linking the callee later
	// repairs the same call site.
	units := lower(t, `fn caller(): int { return f() }
fn f(): int { return 9 }`, nil)

	s := NewSession(nil)
	addAll(t, s, units[:1])

	_, err := s.Invoke("_EF6caller")
	if !stderrors.Is(err, errors.NewLinkError("")) {
		t.Fatalf("got %v, want a LinkError", err)
	}

	addAll(t, s, units[1:])
	got, err := s.Invoke("_EF6caller")
	if err != nil {
		t.Fatalf("invoke after late link failed: %v", err)
	}
	if got != int64(9) {
		t.Errorf("got %v, want 9", got)
	}
}

func TestSessionUnresolvedGlobalFailsLink(t *testing.T) {
	scope := &stubScope{globals: map[string]frontend.Type{"missing": frontend.TypeInt}}
	units := lower(t, "fn read(): int { return missing }", scope)

	s := NewSession(nil)
	err := s.AddUnit(units[0])
	if !stderrors.Is(err, errors.NewLinkError("")) {
		t.Errorf("got %v, want a LinkError", err)
	}
}

func TestSessionGlobalValue(t *testing.T) {
	s := NewSession(nil)
	cell := &vm.Global{Name: "x", Value: int64(5)}
	unit := &codegen.ExecutableUnit{
		Module:  "x",
		Symbols: []codegen.SymbolDef{{Name: "x", Kind: codegen.SymbolVar, Global: cell, Public: true}},
	}
	if err := s.AddUnit(unit); err != nil {
		t.Fatalf("AddUnit failed: %v", err)
	}
	got, ok := s.GlobalValue("x")
	if !ok || got != int64(5) {
		t.Errorf("got %v (%v), want 5", got, ok)
	}
}

func TestSessionStats(t *testing.T) {
	s := NewSession(nil)
	addAll(t, s, lower(t, `fn f(): int { return 1 }
fn caller(): int { return f() }`, nil))

	st := s.Stats()
	if st.Units != 2 {
		t.Errorf("units: got %d, want 2", st.Units)
	}
	if st.Symbols != 2 {
		t.Errorf("symbols: got %d, want 2", st.Symbols)
	}
	if st.Slots != 2 {
		t.Errorf("slots: got %d, want 2", st.Slots)
	}
	if st.CodeBytes == 0 {
		t.Error("code bytes: got 0")
	}

	syms := s.Symbols()
	if len(syms) != 2 || syms[0] != "_EF1f" || syms[1] != "_EF6caller" {
		t.Errorf("symbols: got %v", syms)
	}
}

type stubScope struct {
	globals map[string]frontend.Type
}

func (s *stubScope) GlobalType(name string) (frontend.Type, bool) {
	t, ok := s.globals[name]
	return t, ok
}

func (s *stubScope) Overloads(string) []frontend.Overload { return nil }
