package symbol

import "strings"

// Kind is the closed set of program element kinds a symbol can have.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindAnnotation
	KindClass
	KindConstructor
	KindEnum
	KindEnumConstant
	KindExceptionParameter
	KindField
	KindInstanceInit
	KindInterface
	KindLocalVariable
	KindMethod
	KindPackage
	KindParameter
	KindStaticInit
	KindTypeParameter
)

var kindInfo = [...]struct {
	name string
	code string
}{
	KindUnknown:            {"unknown", ""},
	KindAnnotation:         {"annotation", "an"},
	KindClass:              {"class", "cl"},
	KindConstructor:        {"constructor", "co"},
	KindEnum:               {"enum", "en"},
	KindEnumConstant:       {"enum_constant", "ec"},
	KindExceptionParameter: {"exception_parameter", "ex"},
	KindField:              {"field", "fi"},
	KindInstanceInit:       {"instance_init", "ii"},
	KindInterface:          {"interface", "it"},
	KindLocalVariable:      {"local_variable", "lv"},
	KindMethod:             {"method", "me"},
	KindPackage:            {"package", "pk"},
	KindParameter:          {"parameter", "pa"},
	KindStaticInit:         {"static_init", "si"},
	KindTypeParameter:      {"type_parameter", "tp"},
}

// Code returns the two-letter style code, or "" for KindUnknown and
// out-of-range values.
func (k Kind) Code() string {
	if int(k) >= len(kindInfo) {
		return ""
	}
	return kindInfo[k].code
}

func (k Kind) String() string {
	if int(k) >= len(kindInfo) {
		return kindInfo[KindUnknown].name
	}
	return kindInfo[k].name
}

// Valid reports whether k carries a style code.
func (k Kind) Valid() bool { return k.Code() != "" }

// IsType reports whether k names a nominal type.
func (k Kind) IsType() bool {
	switch k {
	case KindAnnotation, KindClass, KindEnum, KindInterface:
		return true
	}
	return false
}

// IsCallable reports whether k names a constructor or method.
func (k Kind) IsCallable() bool {
	return k == KindConstructor || k == KindMethod
}

// Modifiers is a set of declaration modifiers.
type Modifiers uint16

const (
	Public Modifiers = 1 << iota
	Protected
	Private
	Abstract
	Static
	Final
	Sealed
	NonSealed
	Transient
	Volatile
	Synchronized
	Native
	Strictfp
	Default
)

// modifierOrder is the canonical source order used by String.
var modifierOrder = []struct {
	mod  Modifiers
	name string
}{
	{Public, "public"},
	{Protected, "protected"},
	{Private, "private"},
	{Abstract, "abstract"},
	{Static, "static"},
	{Final, "final"},
	{Sealed, "sealed"},
	{NonSealed, "non-sealed"},
	{Transient, "transient"},
	{Volatile, "volatile"},
	{Synchronized, "synchronized"},
	{Native, "native"},
	{Strictfp, "strictfp"},
	{Default, "default"},
}

// ParseModifier maps a modifier keyword to its flag.
func ParseModifier(keyword string) (Modifiers, bool) {
	for _, m := range modifierOrder {
		if m.name == keyword {
			return m.mod, true
		}
	}
	return 0, false
}

// Has reports whether every flag in f is set.
func (m Modifiers) Has(f Modifiers) bool { return m&f == f }

func (m Modifiers) String() string {
	var parts []string
	for _, o := range modifierOrder {
		if m.Has(o.mod) {
			parts = append(parts, o.name)
		}
	}
	return strings.Join(parts, " ")
}
