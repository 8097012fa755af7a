// Package repl drives the interactive session: each input line is one
// turn, shaped into per-declaration units, screened by the redeclaration
// rules, linked into the JIT session, and run through the turn's entry
// wrapper.
package repl

import (
	"ember/internal/frontend"
)

// DeclUnit is the registry's record of one linked declaration: its
// unmangled name, its link symbol, and the synthetic module that most
// recently defined it. Redefinition reuses the record.
type DeclUnit struct {
	Name   string
	Symbol string
	Kind   frontend.DeclKind
	Module string

	Sig     frontend.FuncSig // DeclFunc
	VarType frontend.Type    // DeclVar
}

// Registry tracks every declaration by unmangled name and by link symbol.
// It answers the two questions a turn asks: what occupies a name, for the
// redeclaration rules, and what type a name has, as the checker's scope.
type Registry struct {
	byName   map[string][]*DeclUnit
	bySymbol map[string]*DeclUnit
}

func NewRegistry() *Registry {
	return &Registry{
		byName:   make(map[string][]*DeclUnit),
		bySymbol: make(map[string]*DeclUnit),
	}
}

// Lookup returns the units registered under an unmangled name, in
// registration order.
func (r *Registry) Lookup(name string) []*DeclUnit {
	return r.byName[name]
}

// LookupSymbol returns the unit registered under a link symbol.
func (r *Registry) LookupSymbol(symbol string) (*DeclUnit, bool) {
	u, ok := r.bySymbol[symbol]
	return u, ok
}

// Register records a declaration once its unit has linked. Redefining an
// existing symbol updates the record in place rather than adding a second
// entry under the name.
func (r *Registry) Register(d *frontend.Decl, symbol, module string) *DeclUnit {
	if u, ok := r.bySymbol[symbol]; ok {
		u.Module = module
		u.Sig = d.Sig
		u.VarType = d.VarType
		return u
	}
	u := &DeclUnit{
		Name:    d.Name,
		Symbol:  symbol,
		Kind:    d.Kind,
		Module:  module,
		Sig:     d.Sig,
		VarType: d.VarType,
	}
	r.bySymbol[symbol] = u
	r.byName[d.Name] = append(r.byName[d.Name], u)
	return u
}

// GlobalType resolves a global variable's type for the checker.
func (r *Registry) GlobalType(name string) (frontend.Type, bool) {
	for _, u := range r.byName[name] {
		if u.Kind == frontend.DeclVar {
			return u.VarType, true
		}
	}
	return frontend.TypeInvalid, false
}

// Overloads returns every function overload registered under name.
func (r *Registry) Overloads(name string) []frontend.Overload {
	var ovs []frontend.Overload
	for _, u := range r.byName[name] {
		if u.Kind == frontend.DeclFunc {
			ovs = append(ovs, frontend.Overload{Symbol: u.Symbol, Sig: u.Sig})
		}
	}
	return ovs
}

var _ frontend.Scope = (*Registry)(nil)
