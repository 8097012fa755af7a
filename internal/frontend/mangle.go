package frontend

import (
	"fmt"
	"strings"
)

// Link symbol scheme. Functions mangle to "_EF<len><name><param codes>" so
// that overloads occupy distinct symbols while identical signatures always
// produce the same one: add(int, int) -> _EF3addSiSi. Non-functions link
// under their source name unchanged, which is what makes function-vs-other
// collisions detectable at the unmangled level.
//
// Mangling is the single source of overload identity: two function
// declarations are "the same" exactly when their mangled symbols match.

var typeCodes = map[Type]string{
	TypeInt:    "Si",
	TypeFloat:  "Sf",
	TypeString: "SS",
	TypeBool:   "Sb",
}

// MangleFunction returns the link symbol for a function with the given
// unmangled name and parameter types.
func MangleFunction(name string, params []Type) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "_EF%d%s", len(name), name)
	for _, p := range params {
		sb.WriteString(typeCodes[p])
	}
	return sb.String()
}

// Mangle returns the link symbol for a checked declaration.
func Mangle(d *Decl) string {
	if d.Kind == DeclFunc {
		return MangleFunction(d.Name, d.Sig.Params)
	}
	return d.Name
}
