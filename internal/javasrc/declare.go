package javasrc

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/srcview/internal/symbol"
)

type typeDecl struct {
	node *sitter.Node
	typ  *symbol.Type
}

type memberDecl struct {
	node    *sitter.Node
	owner   *symbol.Type
	sym     symbol.Symbol
	params  *sitter.Node
	tparams []typeVar
}

var typeKinds = map[string]symbol.Kind{
	"class_declaration":           symbol.KindClass,
	"record_declaration":          symbol.KindClass,
	"interface_declaration":       symbol.KindInterface,
	"enum_declaration":            symbol.KindEnum,
	"annotation_type_declaration": symbol.KindAnnotation,
}

// Declare creates the symbols of every type and member declared in unit
// and registers its types. A type whose qualified name is already taken by
// an earlier unit is skipped together with its members.
func (u *Universe) Declare(unit *Unit) {
	d := &declarer{universe: u, unit: unit}
	d.body(unit.Root(), nil, false)
}

type declarer struct {
	universe *Universe
	unit     *Unit
}

func (d *declarer) body(n *sitter.Node, owner *symbol.Type, inInterface bool) {
	if n == nil {
		return
	}
	for _, c := range namedChildren(n) {
		if _, ok := typeKinds[c.Type()]; ok {
			d.declType(c, owner, inInterface)
			continue
		}
		if owner == nil {
			continue
		}
		switch c.Type() {
		case "method_declaration", "annotation_type_element_declaration":
			d.declCallable(c, owner, false, inInterface)
		case "constructor_declaration", "compact_constructor_declaration":
			d.declCallable(c, owner, true, false)
		case "field_declaration", "constant_declaration":
			d.declFields(c, owner, inInterface)
		case "enum_constant":
			d.declEnumConstant(c, owner)
		case "enum_body_declarations":
			d.body(c, owner, false)
		}
	}
}

func (d *declarer) declType(n *sitter.Node, owner *symbol.Type, inInterface bool) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return
	}
	simple := d.unit.text(name)
	qualified := join(d.unit.Package, simple)
	if owner != nil {
		qualified = owner.QualifiedName() + "." + simple
	}
	if d.universe.types[qualified] != nil {
		return
	}

	kind := typeKinds[n.Type()]
	mods, deprecated := d.modifiers(n)
	if owner != nil && (kind != symbol.KindClass || n.Type() == "record_declaration" || inInterface) {
		mods |= symbol.Static
	}

	t := symbol.NewType(kind, d.unit.Package, owner, simple, mods, deprecated)
	d.universe.types[qualified] = t
	d.universe.tparams[t] = typeParams(n, d.unit.Src)
	d.unit.decls[keyOf(name)] = t
	d.unit.declared = append(d.unit.declared, t)
	d.unit.types = append(d.unit.types, typeDecl{node: n, typ: t})

	if n.Type() == "record_declaration" {
		d.declComponents(n, t)
	}
	iface := kind == symbol.KindInterface || kind == symbol.KindAnnotation
	d.body(n.ChildByFieldName("body"), t, iface)
}

// declComponents declares a record's components as fields.
func (d *declarer) declComponents(n *sitter.Node, owner *symbol.Type) {
	for _, p := range namedChildren(n.ChildByFieldName("parameters")) {
		name := p.ChildByFieldName("name")
		if p.Type() != "formal_parameter" || name == nil {
			continue
		}
		mods, deprecated := d.modifiers(p)
		f := symbol.NewField(symbol.KindField, owner, d.unit.text(name), mods|symbol.Private|symbol.Final, deprecated)
		d.addMember(name, memberDecl{node: p, owner: owner, sym: f})
	}
}

func (d *declarer) declCallable(n *sitter.Node, owner *symbol.Type, ctor, inInterface bool) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return
	}
	mods, deprecated := d.modifiers(n)
	kind, callName := symbol.KindMethod, d.unit.text(name)
	if ctor {
		kind, callName = symbol.KindConstructor, "<init>"
	}
	if inInterface && !mods.Has(symbol.Private) {
		mods |= symbol.Public
		if n.ChildByFieldName("body") == nil && !mods.Has(symbol.Static) {
			mods |= symbol.Abstract
		}
	}

	c := symbol.NewCallable(kind, owner, callName, mods, deprecated)
	md := memberDecl{
		node:    n,
		owner:   owner,
		sym:     c,
		params:  n.ChildByFieldName("parameters"),
		tparams: typeParams(n, d.unit.Src),
	}
	if n.Type() == "compact_constructor_declaration" {
		for _, td := range d.unit.types {
			if td.typ == owner {
				md.params = td.node.ChildByFieldName("parameters")
			}
		}
	}
	d.addMember(name, md)
}

func (d *declarer) declFields(n *sitter.Node, owner *symbol.Type, inInterface bool) {
	mods, deprecated := d.modifiers(n)
	if inInterface {
		mods |= symbol.Public | symbol.Static | symbol.Final
	}
	for _, v := range namedChildren(n) {
		if v.Type() != "variable_declarator" {
			continue
		}
		name := v.ChildByFieldName("name")
		if name == nil {
			continue
		}
		f := symbol.NewField(symbol.KindField, owner, d.unit.text(name), mods, deprecated)
		d.addMember(name, memberDecl{node: n, owner: owner, sym: f})
	}
}

func (d *declarer) declEnumConstant(n *sitter.Node, owner *symbol.Type) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return
	}
	mods, deprecated := d.modifiers(n)
	f := symbol.NewField(symbol.KindEnumConstant, owner, d.unit.text(name),
		mods|symbol.Public|symbol.Static|symbol.Final, deprecated)
	f.Type = owner
	d.addMember(name, memberDecl{node: n, owner: owner, sym: f})
}

func (d *declarer) addMember(name *sitter.Node, md memberDecl) {
	d.unit.decls[keyOf(name)] = md.sym
	d.unit.declared = append(d.unit.declared, md.sym)
	d.unit.members = append(d.unit.members, md)
}

// modifiers reads the modifier keywords of a declaration and whether it is
// deprecated by annotation or Javadoc tag.
func (d *declarer) modifiers(n *sitter.Node) (symbol.Modifiers, bool) {
	mods, deprecated := readModifiers(n, d.unit.Src)
	if strings.Contains(docComment(n, d.unit.Src), "@deprecated") {
		deprecated = true
	}
	return mods, deprecated
}

// readModifiers reads the modifiers child of n: keyword flags and whether
// a @Deprecated annotation is present.
func readModifiers(n *sitter.Node, src []byte) (symbol.Modifiers, bool) {
	var mods symbol.Modifiers
	deprecated := false
	m := firstNamed(n, "modifiers")
	if m == nil {
		return mods, deprecated
	}
	for i := 0; i < int(m.ChildCount()); i++ {
		child := m.Child(i)
		switch child.Type() {
		case "marker_annotation", "annotation":
			if name := child.ChildByFieldName("name"); name != nil {
				switch name.Content(src) {
				case "Deprecated", "java.lang.Deprecated":
					deprecated = true
				}
			}
		default:
			if flag, ok := symbol.ParseModifier(child.Type()); ok {
				mods |= flag
			}
		}
	}
	return mods, deprecated
}

// docComment returns the Javadoc comment directly preceding a declaration,
// or "".
func docComment(n *sitter.Node, src []byte) string {
	for prev := n.PrevSibling(); prev != nil && isComment(prev); prev = prev.PrevSibling() {
		if text := prev.Content(src); strings.HasPrefix(text, "/**") {
			return text
		}
	}
	return ""
}

// typeParams reads the type parameters of a declaration with the leftmost
// bound of each.
func typeParams(n *sitter.Node, src []byte) []typeVar {
	var vars []typeVar
	for _, tp := range namedChildren(firstNamed(n, "type_parameters")) {
		name := firstNamed(tp, "type_identifier", "identifier")
		if name == nil {
			continue
		}
		vars = append(vars, typeVar{name: name.Content(src), bound: leftmostBound(tp)})
	}
	return vars
}

// leftmostBound returns the first type of a type parameter's bound, or nil
// when it has none.
func leftmostBound(tp *sitter.Node) *sitter.Node {
	if b := firstNamed(tp, "type_bound"); b != nil {
		if types := namedChildren(b); len(types) > 0 {
			return types[0]
		}
	}
	return nil
}
