package frontend

import (
	"ember/internal/parser"
)

// DeclKind distinguishes the two declaration families the redeclaration
// rules care about: functions (which may overload and be redefined) and
// everything else.
type DeclKind int

const (
	DeclFunc DeclKind = iota
	DeclVar
)

func (k DeclKind) String() string {
	if k == DeclFunc {
		return "function"
	}
	return "variable"
}

// FuncSig is a function's parameter and return types. Overload identity is
// the parameter list; the mangled symbol encodes exactly that.
type FuncSig struct {
	Params []Type
	Return Type
}

// Overload pairs a link symbol with its signature.
type Overload struct {
	Symbol string
	Sig    FuncSig
}

// Decl is one checked declaration, ready to be wrapped into its own
// independently linkable unit.
type Decl struct {
	Kind DeclKind
	Name string // unmangled

	// Function declarations
	Fn  *parser.FunctionStmt
	Sig FuncSig

	// Variable declarations: cell type. Globals start zero-valued; their
	// initializers run inside the turn's entry wrapper.
	VarType Type

	// Init is the initializing assignment synthesized into the entry
	// wrapper for a variable declaration. A rejected declaration's Init is
	// dropped from the wrapper, so skipping the declaration also skips its
	// effect.
	Init parser.Stmt

	// Public declarations are externally visible to the linker and to later
	// turns. Visibility promotion sets this on everything a turn declares.
	Public bool
}

// SignatureOf derives a function declaration's signature from its AST. The
// checker has already validated the type names by the time shaping calls
// this, so unknown names collapse to the invalid type.
func SignatureOf(fn *parser.FunctionStmt) FuncSig {
	sig := FuncSig{Return: TypeVoid}
	for _, p := range fn.Params {
		t, _ := TypeFromName(p.Type)
		sig.Params = append(sig.Params, t)
	}
	if fn.ReturnType != "" {
		t, _ := TypeFromName(fn.ReturnType)
		sig.Return = t
	}
	return sig
}

// Scope resolves names declared by earlier turns. The declaration registry
// implements it.
type Scope interface {
	// GlobalType returns the type of a global variable, if name is one.
	GlobalType(name string) (Type, bool)
	// Overloads returns every function overload registered under name.
	Overloads(name string) []Overload
}

// emptyScope is the zero scope used when checking the first turn of a
// session or a standalone file.
type emptyScope struct{}

func (emptyScope) GlobalType(string) (Type, bool) { return TypeInvalid, false }
func (emptyScope) Overloads(string) []Overload    { return nil }

// EmptyScope returns a scope with no prior declarations.
func EmptyScope() Scope { return emptyScope{} }
