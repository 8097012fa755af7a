package frontend

// Type is the static type of an expression or declaration.
type Type int

const (
	TypeInvalid Type = iota
	TypeInt
	TypeFloat
	TypeString
	TypeBool
	TypeVoid // functions with no return annotation
)

var typeNames = map[Type]string{
	TypeInvalid: "<invalid>",
	TypeInt:     "int",
	TypeFloat:   "float",
	TypeString:  "string",
	TypeBool:    "bool",
	TypeVoid:    "void",
}

func (t Type) String() string {
	return typeNames[t]
}

// TypeFromName maps a source-level annotation to its type.
func TypeFromName(name string) (Type, bool) {
	switch name {
	case "int":
		return TypeInt, true
	case "float":
		return TypeFloat, true
	case "string":
		return TypeString, true
	case "bool":
		return TypeBool, true
	}
	return TypeInvalid, false
}

// Numeric reports whether t supports arithmetic.
func (t Type) Numeric() bool {
	return t == TypeInt || t == TypeFloat
}

// Ordered reports whether t supports < <= > >=.
func (t Type) Ordered() bool {
	return t == TypeInt || t == TypeFloat || t == TypeString
}
