package frontend

import (
	"testing"
)

func TestMangleFunction(t *testing.T) {
	tests := []struct {
		name   string
		params []Type
		want   string
	}{
		{"add", []Type{TypeInt, TypeInt}, "_EF3addSiSi"},
		{"add", []Type{TypeFloat, TypeFloat}, "_EF3addSfSf"},
		{"greet", []Type{TypeString}, "_EF5greetSS"},
		{"flag", []Type{TypeBool}, "_EF4flagSb"},
		{"main", nil, "_EF4main"},
	}
	for _, tt := range tests {
		if got := MangleFunction(tt.name, tt.params); got != tt.want {
			t.Errorf("MangleFunction(%q, %v) = %q, want %q", tt.name, tt.params, got, tt.want)
		}
	}
}

func TestMangleOverloadsDistinct(t *testing.T) {
	a := MangleFunction("f", []Type{TypeInt})
	b := MangleFunction("f", []Type{TypeFloat})
	if a == b {
		t.Errorf("overloads mangled identically: %q", a)
	}
}

func TestMangleVariable(t *testing.T) {
	d := &Decl{Kind: DeclVar, Name: "counter"}
	if got := Mangle(d); got != "counter" {
		t.Errorf("got %q, want counter", got)
	}
}
