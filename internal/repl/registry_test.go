package repl

import (
	stderrors "errors"
	"testing"

	"ember/internal/errors"
	"ember/internal/frontend"
)

func funcDecl(name string, params ...frontend.Type) *frontend.Decl {
	return &frontend.Decl{
		Kind:   frontend.DeclFunc,
		Name:   name,
		Sig:    frontend.FuncSig{Params: params, Return: frontend.TypeInt},
		Public: true,
	}
}

func varDecl(name string, t frontend.Type) *frontend.Decl {
	return &frontend.Decl{Kind: frontend.DeclVar, Name: name, VarType: t, Public: true}
}

func register(r *Registry, d *frontend.Decl, module string) *DeclUnit {
	return r.Register(d, frontend.Mangle(d), module)
}

func TestRegistryScope(t *testing.T) {
	r := NewRegistry()
	register(r, varDecl("x", frontend.TypeInt), "__repl_1")
	register(r, funcDecl("f", frontend.TypeInt), "__repl_1")
	register(r, funcDecl("f", frontend.TypeString), "__repl_2")

	if ty, ok := r.GlobalType("x"); !ok || ty != frontend.TypeInt {
		t.Errorf("GlobalType(x): got %v %v", ty, ok)
	}
	if _, ok := r.GlobalType("f"); ok {
		t.Error("GlobalType(f) resolved a function")
	}
	if got := len(r.Overloads("f")); got != 2 {
		t.Errorf("Overloads(f): got %d, want 2", got)
	}
	if got := len(r.Overloads("x")); got != 0 {
		t.Errorf("Overloads(x): got %d, want 0", got)
	}
}

func TestRegistryRedefinitionReusesUnit(t *testing.T) {
	r := NewRegistry()
	first := register(r, funcDecl("f", frontend.TypeInt), "__repl_1")
	second := register(r, funcDecl("f", frontend.TypeInt), "__repl_5")

	if first != second {
		t.Error("redefinition created a second unit for the same symbol")
	}
	if second.Module != "__repl_5" {
		t.Errorf("module: got %q, want __repl_5", second.Module)
	}
	if got := len(r.Lookup("f")); got != 1 {
		t.Errorf("Lookup(f): got %d units, want 1", got)
	}
}

func TestValidatorRules(t *testing.T) {
	r := NewRegistry()
	register(r, varDecl("x", frontend.TypeInt), "__repl_1")
	register(r, funcDecl("f", frontend.TypeInt), "__repl_1")

	v := NewValidator(r, false)

	tests := []struct {
		name   string
		decl   *frontend.Decl
		reject bool
	}{
		{"fresh variable", varDecl("y", frontend.TypeInt), false},
		{"fresh function", funcDecl("g"), false},
		{"variable over variable", varDecl("x", frontend.TypeInt), true},
		{"function over variable", funcDecl("x"), true},
		{"variable over function", varDecl("f", frontend.TypeInt), true},
		{"new overload", funcDecl("f", frontend.TypeString), false},
		{"same-signature redefinition", funcDecl("f", frontend.TypeInt), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.decl)
			if tt.reject && err == nil {
				t.Error("expected rejection, got nil")
			}
			if !tt.reject && err != nil {
				t.Errorf("unexpected rejection: %v", err)
			}
			if err != nil && !stderrors.Is(err, errors.NewRedeclarationError("")) {
				t.Errorf("got %v, want a RedeclarationError", err)
			}
		})
	}
}

func TestValidatorPlaygroundRejectsRedefinition(t *testing.T) {
	r := NewRegistry()
	register(r, funcDecl("f", frontend.TypeInt), "__repl_1")

	v := NewValidator(r, true)
	if err := v.Validate(funcDecl("f", frontend.TypeInt)); err == nil {
		t.Error("expected rejection of exact-signature redefinition")
	}
	if err := v.Validate(funcDecl("f", frontend.TypeString)); err != nil {
		t.Errorf("new overload rejected: %v", err)
	}
}
