package javasrc

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/srcview/internal/symbol"
)

// Link resolves the supertypes, erased parameter types, result types and
// field types declared in unit. Every unit of the batch must have been
// declared first.
func (u *Universe) Link(unit *Unit) {
	for _, td := range unit.types {
		e := u.envFor(unit, td.typ)
		if sc := firstNamed(td.node, "superclass"); sc != nil {
			if types := namedChildren(sc); len(types) > 0 {
				td.typ.Super = notSelf(td.typ, e.resolve(types[0]))
			}
		}
		td.typ.Interfaces = nil
		if si := firstNamed(td.node, "super_interfaces", "extends_interfaces"); si != nil {
			for _, list := range namedChildren(si) {
				for _, n := range typeList(list) {
					if t := notSelf(td.typ, e.resolve(n)); t != nil {
						td.typ.Interfaces = append(td.typ.Interfaces, t)
					}
				}
			}
		}
	}

	for _, md := range unit.members {
		e := u.envFor(unit, md.owner)
		e.vars = append(e.vars, md.tparams...)
		switch s := md.sym.(type) {
		case *symbol.Callable:
			s.Params, s.Varargs = e.params(md.params)
			if rt := md.node.ChildByFieldName("type"); rt != nil {
				s.Returns = e.resolve(rt)
			}
		case *symbol.Field:
			if s.Kind() == symbol.KindEnumConstant {
				continue
			}
			s.Type = e.resolve(md.node.ChildByFieldName("type"))
		}
	}
}

// params erases a formal parameter list.
func (e *env) params(n *sitter.Node) ([]symbol.Param, bool) {
	var out []symbol.Param
	varargs := false
	for _, p := range namedChildren(n) {
		switch p.Type() {
		case "formal_parameter":
			param := e.erase(p.ChildByFieldName("type"))
			if d := p.ChildByFieldName("dimensions"); d != nil {
				param = symbol.Param{Text: param.String() + strings.Repeat("[]", strings.Count(d.Content(e.unit.Src), "["))}
			}
			out = append(out, param)
		case "spread_parameter":
			var typ *sitter.Node
			for _, c := range namedChildren(p) {
				if c.Type() != "modifiers" && c.Type() != "variable_declarator" {
					typ = c
					break
				}
			}
			out = append(out, symbol.Param{Text: e.erase(typ).String() + "[]"})
			varargs = true
		}
	}
	return out, varargs
}

// typeList flattens a type_list node; other nodes stand for themselves.
func typeList(n *sitter.Node) []*sitter.Node {
	if n.Type() == "type_list" {
		return namedChildren(n)
	}
	return []*sitter.Node{n}
}

func notSelf(self, t *symbol.Type) *symbol.Type {
	if t == self {
		return nil
	}
	return t
}
