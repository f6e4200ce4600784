package javasrc

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/srcview/internal/marker"
	"github.com/jward/srcview/internal/symbol"
)

// Bindings holds the occurrences of one unit keyed by node. It implements
// marker.Binder.
type Bindings struct {
	occ map[nodeKey][]marker.Occurrence
}

var _ marker.Binder = (*Bindings)(nil)

// Occurrences returns the occurrences carried by n in source order.
func (b *Bindings) Occurrences(n *sitter.Node) []marker.Occurrence {
	return b.occ[keyOf(n)]
}

// add binds a node. The first binding of a node wins.
func (b *Bindings) add(n *sitter.Node, role marker.Role, s symbol.Symbol) {
	if n == nil || s == nil {
		return
	}
	key := keyOf(n)
	if _, ok := b.occ[key]; ok {
		return
	}
	b.occ[key] = []marker.Occurrence{{Role: role, Symbol: s, Node: n}}
}

// addToken binds a sub-span of a comment.
func (b *Bindings) addToken(comment *sitter.Node, tok marker.Token, s symbol.Symbol) {
	key := keyOf(comment)
	b.occ[key] = append(b.occ[key], marker.Occurrence{Role: marker.Reference, Symbol: s, Token: &tok})
}

type scope struct {
	parent *scope
	vars   map[string]*symbol.Variable
	tvars  map[string]*symbol.Variable
	bounds map[string]*sitter.Node
}

func (s *scope) lookup(name string) *symbol.Variable {
	for cur := s; cur != nil; cur = cur.parent {
		if v := cur.vars[name]; v != nil {
			return v
		}
	}
	return nil
}

func (s *scope) lookupTypeVar(name string) *symbol.Variable {
	for cur := s; cur != nil; cur = cur.parent {
		if v := cur.tvars[name]; v != nil {
			return v
		}
	}
	return nil
}

// typeRef is the static type of an expression. When static is set the
// expression names the type itself.
type typeRef struct {
	typ    *symbol.Type
	static bool
}

// Bind resolves every name in unit and returns its occurrences. The unit
// and every unit it refers to must have been declared and linked.
func (u *Universe) Bind(unit *Unit) *Bindings {
	b := &binder{
		universe: u,
		unit:     unit,
		out:      &Bindings{occ: make(map[nodeKey][]marker.Occurrence)},
		scope:    &scope{},
	}
	b.visit(unit.Root())
	return b.out
}

type binder struct {
	universe *Universe
	unit     *Unit
	out      *Bindings
	chain    []*symbol.Type
	scope    *scope
}

func (b *binder) push() { b.scope = &scope{parent: b.scope} }
func (b *binder) pop()  { b.scope = b.scope.parent }

func (b *binder) owner() *symbol.Type {
	if len(b.chain) == 0 {
		return nil
	}
	return b.chain[len(b.chain)-1]
}

func (b *binder) env() *env {
	e := &env{universe: b.universe, unit: b.unit, chain: b.chain}
	for cur := b.scope; cur != nil; cur = cur.parent {
		for name := range cur.tvars {
			e.vars = append([]typeVar{{name: name, bound: cur.bounds[name]}}, e.vars...)
		}
	}
	return e
}

func (b *binder) text(n *sitter.Node) string { return b.unit.text(n) }

func (b *binder) declareVar(name *sitter.Node, kind symbol.Kind, mods symbol.Modifiers, typ *symbol.Type) *symbol.Variable {
	if name == nil {
		return nil
	}
	v := symbol.NewVariable(kind, b.text(name), b.unit.Positions.CharOffset(int(name.StartByte())), mods, false)
	v.Type = typ
	if b.scope.vars == nil {
		b.scope.vars = make(map[string]*symbol.Variable)
	}
	b.scope.vars[v.Name()] = v
	b.out.add(name, marker.Declaration, v)
	return v
}

func (b *binder) children(n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		b.visit(n.NamedChild(i))
	}
}

func (b *binder) visit(n *sitter.Node) typeRef {
	if n == nil || n.IsMissing() {
		return typeRef{}
	}
	switch n.Type() {
	case "ERROR", "package_declaration", "module_declaration":
		return typeRef{}
	case "import_declaration":
		b.importDecl(n)
	case "line_comment", "block_comment", "comment":
		b.javadoc(n)
	case "class_declaration", "interface_declaration", "enum_declaration",
		"annotation_type_declaration", "record_declaration":
		b.typeDecl(n)
	case "method_declaration", "constructor_declaration",
		"compact_constructor_declaration", "annotation_type_element_declaration":
		b.callableDecl(n)
	case "field_declaration", "constant_declaration", "local_variable_declaration":
		b.variableDecl(n)
	case "enum_constant":
		b.enumConstant(n)
	case "block", "constructor_body", "switch_block", "for_statement",
		"try_with_resources_statement", "catch_clause", "try_statement":
		b.push()
		b.children(n)
		b.pop()
	case "enhanced_for_statement":
		b.enhancedFor(n)
	case "catch_formal_parameter":
		b.catchParam(n)
	case "resource":
		b.resource(n)
	case "lambda_expression":
		b.lambda(n)
	case "instanceof_expression":
		b.instanceOf(n)
	case "type_pattern", "record_pattern_component":
		b.pattern(n)
	case "labeled_statement", "break_statement", "continue_statement":
		for _, c := range namedChildren(n) {
			if c.Type() != "identifier" {
				b.visit(c)
			}
		}
	case "marker_annotation", "annotation":
		b.annotation(n)
	case "type_identifier":
		return b.typeName(n)
	case "scoped_type_identifier", "scoped_identifier":
		r := b.qualifiedType(nameLeaves(n))
		b.typeArguments(n)
		return r
	case "generic_type":
		var r typeRef
		for i, c := range namedChildren(n) {
			if i == 0 {
				r = b.visit(c)
				continue
			}
			b.visit(c)
		}
		return r
	case "identifier":
		return b.name(n)
	case "this":
		return typeRef{typ: b.owner()}
	case "super":
		return typeRef{typ: superOf(b.owner())}
	case "field_access":
		return b.fieldAccess(n)
	case "method_invocation":
		return b.methodCall(n)
	case "object_creation_expression":
		return b.newObject(n)
	case "explicit_constructor_invocation":
		b.constructorCall(n)
	case "method_reference":
		b.methodRef(n)
	case "parenthesized_expression":
		var r typeRef
		for _, c := range namedChildren(n) {
			r = b.visit(c)
		}
		return typeRef{typ: r.typ}
	case "cast_expression":
		r := b.visit(n.ChildByFieldName("type"))
		b.visit(n.ChildByFieldName("value"))
		return typeRef{typ: r.typ}
	default:
		b.children(n)
	}
	return typeRef{}
}

func superOf(t *symbol.Type) *symbol.Type {
	if t == nil {
		return nil
	}
	return t.Super
}

func (b *binder) typeDecl(n *sitter.Node) {
	name := n.ChildByFieldName("name")
	t, _ := b.unit.decls[keyOf(name)].(*symbol.Type)
	if t != nil {
		b.out.add(name, marker.Declaration, t)
	}

	b.chain = append(b.chain, t)
	b.push()
	defer func() {
		b.pop()
		b.chain = b.chain[:len(b.chain)-1]
	}()

	b.typeParams(firstNamed(n, "type_parameters"))
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "identifier", "type_parameters":
		case "formal_parameters":
			b.components(c)
		default:
			b.visit(c)
		}
	}
}

// components binds a record header: each component declares a field.
func (b *binder) components(n *sitter.Node) {
	for _, p := range namedChildren(n) {
		name := p.ChildByFieldName("name")
		if s := b.unit.decls[keyOf(name)]; s != nil {
			b.out.add(name, marker.Declaration, s)
		}
		for _, c := range namedChildren(p) {
			if name == nil || keyOf(c) != keyOf(name) {
				b.visit(c)
			}
		}
	}
}

func (b *binder) typeParams(n *sitter.Node) {
	for _, tp := range namedChildren(n) {
		name := firstNamed(tp, "type_identifier", "identifier")
		if name == nil {
			continue
		}
		v := symbol.NewVariable(symbol.KindTypeParameter, b.text(name),
			b.unit.Positions.CharOffset(int(name.StartByte())), 0, false)
		if b.scope.tvars == nil {
			b.scope.tvars = make(map[string]*symbol.Variable)
			b.scope.bounds = make(map[string]*sitter.Node)
		}
		b.scope.tvars[v.Name()] = v
		b.scope.bounds[v.Name()] = leftmostBound(tp)
		b.out.add(name, marker.Declaration, v)
		for _, c := range namedChildren(tp) {
			if keyOf(c) != keyOf(name) {
				b.visit(c)
			}
		}
	}
}

func (b *binder) callableDecl(n *sitter.Node) {
	name := n.ChildByFieldName("name")
	if s := b.unit.decls[keyOf(name)]; s != nil {
		b.out.add(name, marker.Declaration, s)
	}

	b.push()
	defer b.pop()
	b.typeParams(firstNamed(n, "type_parameters"))
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch {
		case name != nil && keyOf(c) == keyOf(name):
		case c.Type() == "type_parameters":
		case c.Type() == "formal_parameters":
			b.formalParams(c)
		default:
			b.visit(c)
		}
	}
}

func (b *binder) formalParams(n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		p := n.NamedChild(i)
		switch p.Type() {
		case "formal_parameter":
			b.visit(firstNamed(p, "modifiers"))
			r := b.visit(p.ChildByFieldName("type"))
			if p.ChildByFieldName("dimensions") != nil {
				r = typeRef{}
			}
			mods, _ := readModifiers(p, b.unit.Src)
			b.declareVar(p.ChildByFieldName("name"), symbol.KindParameter, mods, r.typ)
		case "spread_parameter":
			var name *sitter.Node
			for _, c := range namedChildren(p) {
				if c.Type() == "variable_declarator" {
					name = c.ChildByFieldName("name")
					continue
				}
				b.visit(c)
			}
			mods, _ := readModifiers(p, b.unit.Src)
			b.declareVar(name, symbol.KindParameter, mods, nil)
		default:
			b.visit(p)
		}
	}
}

func (b *binder) variableDecl(n *sitter.Node) {
	typeNode := n.ChildByFieldName("type")
	declared := b.visit(typeNode).typ
	inferred := b.text(typeNode) == "var"
	local := n.Type() == "local_variable_declaration"
	mods, _ := readModifiers(n, b.unit.Src)

	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "variable_declarator":
		case "modifiers":
			b.visit(c)
			continue
		default:
			if typeNode == nil || keyOf(c) != keyOf(typeNode) {
				b.visit(c)
			}
			continue
		}

		name := c.ChildByFieldName("name")
		value := c.ChildByFieldName("value")
		if !local {
			if s := b.unit.decls[keyOf(name)]; s != nil {
				b.out.add(name, marker.Declaration, s)
			}
			b.visit(value)
			continue
		}
		typ := declared
		if c.ChildByFieldName("dimensions") != nil {
			typ = nil
		}
		v := b.declareVar(name, symbol.KindLocalVariable, mods, typ)
		r := b.visit(value)
		if inferred && v != nil && !r.static {
			v.Type = r.typ
		}
	}
}

func (b *binder) enumConstant(n *sitter.Node) {
	name := n.ChildByFieldName("name")
	if s := b.unit.decls[keyOf(name)]; s != nil {
		b.out.add(name, marker.Declaration, s)
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if name != nil && keyOf(c) == keyOf(name) {
			continue
		}
		b.visit(c)
	}
}

func (b *binder) enhancedFor(n *sitter.Node) {
	b.push()
	defer b.pop()
	name := n.ChildByFieldName("name")
	typeNode := n.ChildByFieldName("type")
	r := b.visit(typeNode)
	mods, _ := readModifiers(n, b.unit.Src)
	b.declareVar(name, symbol.KindLocalVariable, mods, r.typ)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if (name != nil && keyOf(c) == keyOf(name)) || (typeNode != nil && keyOf(c) == keyOf(typeNode)) {
			continue
		}
		b.visit(c)
	}
}

func (b *binder) catchParam(n *sitter.Node) {
	b.visit(firstNamed(n, "modifiers"))
	var typ *symbol.Type
	if ct := firstNamed(n, "catch_type"); ct != nil {
		types := namedChildren(ct)
		for _, t := range types {
			r := b.visit(t)
			if len(types) == 1 {
				typ = r.typ
			}
		}
	}
	mods, _ := readModifiers(n, b.unit.Src)
	b.declareVar(n.ChildByFieldName("name"), symbol.KindExceptionParameter, mods, typ)
}

func (b *binder) resource(n *sitter.Node) {
	name := n.ChildByFieldName("name")
	if name == nil {
		b.children(n)
		return
	}
	b.visit(firstNamed(n, "modifiers"))
	r := b.visit(n.ChildByFieldName("type"))
	mods, _ := readModifiers(n, b.unit.Src)
	v := b.declareVar(name, symbol.KindLocalVariable, mods, r.typ)
	if value := b.visit(n.ChildByFieldName("value")); v.Type == nil && !value.static {
		v.Type = value.typ
	}
}

func (b *binder) lambda(n *sitter.Node) {
	b.push()
	defer b.pop()
	params := n.ChildByFieldName("parameters")
	if params != nil {
		switch params.Type() {
		case "identifier":
			b.declareVar(params, symbol.KindParameter, 0, nil)
		case "inferred_parameters":
			for _, p := range namedChildren(params) {
				b.declareVar(p, symbol.KindParameter, 0, nil)
			}
		case "formal_parameters":
			b.formalParams(params)
		}
	}
	b.visit(n.ChildByFieldName("body"))
}

func (b *binder) instanceOf(n *sitter.Node) {
	b.visit(n.ChildByFieldName("left"))
	r := b.visit(n.ChildByFieldName("right"))
	if name := n.ChildByFieldName("name"); name != nil {
		b.declareVar(name, symbol.KindLocalVariable, 0, r.typ)
		return
	}
	for _, c := range namedChildren(n) {
		switch c.Type() {
		case "type_pattern", "record_pattern":
			b.visit(c)
		}
	}
}

// pattern binds a type pattern: a type followed by the variable it declares.
func (b *binder) pattern(n *sitter.Node) {
	var typ typeRef
	for _, c := range namedChildren(n) {
		if c.Type() == "identifier" {
			b.declareVar(c, symbol.KindLocalVariable, 0, typ.typ)
			continue
		}
		typ = b.visit(c)
	}
}

func (b *binder) annotation(n *sitter.Node) {
	name := n.ChildByFieldName("name")
	var t *symbol.Type
	if name != nil {
		t = b.qualifiedType(nameLeaves(name)).typ
	}
	args := n.ChildByFieldName("arguments")
	for _, c := range namedChildren(args) {
		if c.Type() != "element_value_pair" {
			b.visit(c)
			continue
		}
		key := c.ChildByFieldName("key")
		if m := findMethod(t, b.text(key), 0); m != nil {
			b.out.add(key, marker.Reference, m)
		}
		b.visit(c.ChildByFieldName("value"))
	}
}

// typeName binds a simple type name: a type variable in scope or a type.
func (b *binder) typeName(n *sitter.Node) typeRef {
	name := b.text(n)
	if v := b.scope.lookupTypeVar(name); v != nil {
		b.out.add(n, marker.Reference, v)
		return typeRef{}
	}
	t := b.env().lookup(name)
	if t == nil {
		return typeRef{}
	}
	b.out.add(n, marker.Reference, t)
	return typeRef{typ: t, static: true}
}

// qualifiedType binds the segments of a dotted type name from left to
// right. Leading segments may name a package.
func (b *binder) qualifiedType(leaves []*sitter.Node) typeRef {
	var cur *symbol.Type
	names := make([]string, 0, len(leaves))
	for i, leaf := range leaves {
		name := b.text(leaf)
		names = append(names, name)
		var t *symbol.Type
		switch {
		case cur != nil:
			t = memberType(cur, name)
		case i == 0:
			if v := b.scope.lookupTypeVar(name); v != nil {
				b.out.add(leaf, marker.Reference, v)
				return typeRef{}
			}
			t = b.env().lookup(name)
		default:
			t = b.universe.Type(strings.Join(names, "."))
		}
		if t != nil {
			b.out.add(leaf, marker.Reference, t)
		}
		cur = t
	}
	if cur == nil {
		return typeRef{}
	}
	return typeRef{typ: cur, static: true}
}

// typeArguments visits the type arguments and annotations nested in a
// scoped type name.
func (b *binder) typeArguments(n *sitter.Node) {
	for _, c := range namedChildren(n) {
		switch c.Type() {
		case "type_arguments", "marker_annotation", "annotation":
			b.visit(c)
		case "scoped_type_identifier", "generic_type":
			b.typeArguments(c)
		}
	}
}

// name binds an identifier in expression position: a variable, a field of
// an enclosing type, a type, or a statically imported field.
func (b *binder) name(n *sitter.Node) typeRef {
	name := b.text(n)
	if v := b.scope.lookup(name); v != nil {
		b.out.add(n, marker.Reference, v)
		return typeRef{typ: v.Type}
	}
	for i := len(b.chain) - 1; i >= 0; i-- {
		if f := findField(b.chain[i], name); f != nil {
			b.out.add(n, marker.Reference, f)
			return typeRef{typ: f.Type}
		}
	}
	if t := b.env().lookup(name); t != nil {
		b.out.add(n, marker.Reference, t)
		return typeRef{typ: t, static: true}
	}
	for _, t := range b.staticImports(name) {
		if f := findField(t, name); f != nil {
			b.out.add(n, marker.Reference, f)
			return typeRef{typ: f.Type}
		}
	}
	return typeRef{}
}

// staticImports returns the types whose static members named name are
// imported by the unit.
func (b *binder) staticImports(name string) []*symbol.Type {
	var out []*symbol.Type
	e := b.env()
	for _, im := range b.unit.Imports {
		if !im.Static {
			continue
		}
		switch {
		case im.OnDemand:
			if t := e.qualified(im.Path); t != nil {
				out = append(out, t)
			}
		case im.Last() == name:
			if t := e.qualified(strings.TrimSuffix(im.Path, "."+name)); t != nil {
				out = append(out, t)
			}
		}
	}
	return out
}

func (b *binder) fieldAccess(n *sitter.Node) typeRef {
	obj := n.ChildByFieldName("object")
	field := n.ChildByFieldName("field")
	r := b.visit(obj)
	if field == nil {
		return typeRef{}
	}
	if field.Type() == "this" {
		return typeRef{typ: r.typ}
	}
	name := b.text(field)

	if r.typ == nil {
		// A package-qualified type name.
		if t := b.universe.Type(strings.Join(strings.Fields(b.text(n)), "")); t != nil {
			b.out.add(field, marker.Reference, t)
			return typeRef{typ: t, static: true}
		}
		return typeRef{}
	}
	if r.static {
		if t := memberType(r.typ, name); t != nil {
			b.out.add(field, marker.Reference, t)
			return typeRef{typ: t, static: true}
		}
	}
	if f := findField(r.typ, name); f != nil {
		b.out.add(field, marker.Reference, f)
		return typeRef{typ: f.Type}
	}
	return typeRef{}
}

func (b *binder) methodCall(n *sitter.Node) typeRef {
	obj := n.ChildByFieldName("object")
	name := n.ChildByFieldName("name")
	args := n.ChildByFieldName("arguments")
	argc := len(namedChildren(args))
	methodName := b.text(name)

	var c *symbol.Callable
	if obj != nil {
		c = findMethod(b.visit(obj).typ, methodName, argc)
	} else {
		for i := len(b.chain) - 1; i >= 0 && c == nil; i-- {
			c = findMethod(b.chain[i], methodName, argc)
		}
		for _, t := range b.staticImports(methodName) {
			if c != nil {
				break
			}
			c = findMethod(t, methodName, argc)
		}
	}
	if c != nil {
		b.out.add(name, marker.Reference, c)
	}
	b.visit(firstNamed(n, "type_arguments"))
	b.visit(args)
	if c == nil {
		return typeRef{}
	}
	return typeRef{typ: c.Returns}
}

func (b *binder) newObject(n *sitter.Node) typeRef {
	typeNode := n.ChildByFieldName("type")
	args := n.ChildByFieldName("arguments")
	b.visit(n.ChildByFieldName("object"))

	t := b.env().resolve(typeNode)
	if t != nil {
		if leaves := nameLeaves(typeNode); len(leaves) > 0 {
			last := leaves[len(leaves)-1]
			if c := findConstructor(t, len(namedChildren(args))); c != nil {
				b.out.add(last, marker.Reference, c)
			} else {
				b.out.add(last, marker.Reference, t)
			}
		}
	}
	b.visit(typeNode)
	b.visit(firstNamed(n, "type_arguments"))
	b.visit(args)

	if body := firstNamed(n, "class_body"); body != nil {
		b.chain = append(b.chain, t)
		b.visit(body)
		b.chain = b.chain[:len(b.chain)-1]
	}
	return typeRef{typ: t}
}

func (b *binder) constructorCall(n *sitter.Node) {
	ctor := n.ChildByFieldName("constructor")
	args := n.ChildByFieldName("arguments")
	b.visit(n.ChildByFieldName("object"))
	if ctor != nil {
		target := b.owner()
		if ctor.Type() == "super" {
			target = superOf(target)
		}
		if c := findConstructor(target, len(namedChildren(args))); c != nil {
			b.out.add(ctor, marker.Reference, c)
		}
	}
	b.visit(args)
}

func (b *binder) methodRef(n *sitter.Node) {
	children := namedChildren(n)
	if len(children) == 0 {
		return
	}
	r := b.visit(children[0])
	for _, c := range children[1:] {
		if c.Type() == "type_arguments" {
			b.visit(c)
		}
	}
	last := n.Child(int(n.ChildCount()) - 1)
	switch last.Type() {
	case "identifier":
		if m := findMethod(r.typ, b.text(last), -1); m != nil {
			b.out.add(last, marker.Reference, m)
		}
	case "new":
		if c := findConstructor(r.typ, -1); c != nil {
			b.out.add(last, marker.Reference, c)
		}
	}
}

func (b *binder) importDecl(n *sitter.Node) {
	name := firstNamed(n, "scoped_identifier", "identifier")
	if name == nil {
		return
	}
	static := false
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == "static" {
			static = true
		}
	}

	leaves := nameLeaves(name)
	names := make([]string, 0, len(leaves))
	var cur *symbol.Type
	for i, leaf := range leaves {
		seg := b.text(leaf)
		names = append(names, seg)
		if cur == nil {
			if t := b.universe.Type(strings.Join(names, ".")); t != nil {
				b.out.add(leaf, marker.Reference, t)
				cur = t
			}
			continue
		}
		if t := cur.Nested(seg); t != nil {
			b.out.add(leaf, marker.Reference, t)
			cur = t
			continue
		}
		if static && i == len(leaves)-1 {
			if f := findField(cur, seg); f != nil {
				b.out.add(leaf, marker.Reference, f)
			} else if m := firstMethodNamed(cur, seg); m != nil {
				b.out.add(leaf, marker.Reference, m)
			}
		}
		return
	}
}

// findField looks a field up in t and its supertypes.
func findField(t *symbol.Type, name string) *symbol.Field {
	var found *symbol.Field
	walkHierarchy(t, func(cur *symbol.Type) bool {
		found = cur.Field(name)
		return found == nil
	})
	return found
}

// findMethod returns the unique method signature named name that accepts
// argc arguments, searching t and its supertypes. Overrides count once.
// A negative argc matches any arity.
func findMethod(t *symbol.Type, name string, argc int) *symbol.Callable {
	var found *symbol.Callable
	ambiguous := false
	walkHierarchy(t, func(cur *symbol.Type) bool {
		for _, c := range cur.Callables() {
			if c.Kind() != symbol.KindMethod || c.Name() != name || (argc >= 0 && !c.Accepts(argc)) {
				continue
			}
			if found == nil {
				found = c
				continue
			}
			if c.ParamList() != found.ParamList() {
				ambiguous = true
				return false
			}
		}
		return true
	})
	if ambiguous {
		return nil
	}
	return found
}

func firstMethodNamed(t *symbol.Type, name string) *symbol.Callable {
	for _, c := range t.Callables() {
		if c.Kind() == symbol.KindMethod && c.Name() == name {
			return c
		}
	}
	return nil
}

// findConstructor returns the unique constructor of t accepting argc
// arguments. A negative argc matches any arity.
func findConstructor(t *symbol.Type, argc int) *symbol.Callable {
	if t == nil {
		return nil
	}
	var found *symbol.Callable
	for _, c := range t.Callables() {
		if c.Kind() != symbol.KindConstructor || (argc >= 0 && !c.Accepts(argc)) {
			continue
		}
		if found != nil {
			return nil
		}
		found = c
	}
	return found
}
