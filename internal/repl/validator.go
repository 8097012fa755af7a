package repl

import (
	"ember/internal/errors"
	"ember/internal/frontend"
)

// Validator applies the redeclaration rules to one declaration before it
// is lowered. The rules work on unmangled names first and fall through to
// link symbols for function overloads:
//
//   - an unoccupied name is always accepted
//   - a name occupied by the other kind is rejected
//   - a variable name occupied by a variable is rejected; variables are
//     not redefinable
//   - a function joins an occupied function name as a new overload, or
//     redefines the overload whose symbol it matches exactly
//
// In playground mode exact-symbol redefinition is rejected too, which
// gives source files script semantics.
type Validator struct {
	registry   *Registry
	playground bool
}

func NewValidator(registry *Registry, playground bool) *Validator {
	return &Validator{registry: registry, playground: playground}
}

// Validate decides whether a declaration may proceed. A non-nil error
// rejects it; the caller skips the declaration and continues the turn.
func (v *Validator) Validate(d *frontend.Decl) error {
	existing := v.registry.Lookup(d.Name)
	if len(existing) == 0 {
		return nil
	}
	if existing[0].Kind != d.Kind {
		return errors.NewRedeclarationError(d.Name)
	}
	if d.Kind == frontend.DeclVar {
		return errors.NewRedeclarationError(d.Name)
	}
	if v.playground {
		if _, defined := v.registry.LookupSymbol(frontend.Mangle(d)); defined {
			return errors.NewRedeclarationError(d.Name)
		}
	}
	return nil
}
