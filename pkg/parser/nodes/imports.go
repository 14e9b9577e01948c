package nodes

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/testinglint/pkg/parser"
)

// BindingKind tells how a local name was bound by an import.
type BindingKind int

const (
	// BindingNamed is import { x } / import { x as y } / const { x } = require().
	BindingNamed BindingKind = iota
	// BindingDefault is import x from 'm'.
	BindingDefault
	// BindingNamespace is import * as x from 'm' / const x = require('m').
	BindingNamespace
)

// Binding is one local name introduced by an import or require.
type Binding struct {
	// Imported is the exported name; empty for namespace bindings.
	Imported string
	Kind     BindingKind
	Local    string
	// Node is the specifier (or pattern) node that introduced the binding.
	Node *sitter.Node
}

// UnquoteString strips JavaScript string quotes and resolves escapes.
// Text that is not a quoted literal is returned unchanged.
func UnquoteString(text string) string {
	if len(text) < 2 {
		return text
	}

	if text[0] == '`' && text[len(text)-1] == '`' {
		return text[1 : len(text)-1]
	}

	// strconv.Unquote only knows double quotes; rewrite single-quoted
	// literals first.
	if text[0] == '\'' && text[len(text)-1] == '\'' {
		inner := text[1 : len(text)-1]
		inner = strings.ReplaceAll(inner, `\'`, `'`)
		escaped := strings.ReplaceAll(inner, `"`, `\"`)
		if s, err := strconv.Unquote(`"` + escaped + `"`); err == nil {
			return s
		}
		return text
	}

	if s, err := strconv.Unquote(text); err == nil {
		return s
	}

	return text
}

// StringValue returns the value of a string literal or a template string
// without substitutions. ok is false for anything else.
func StringValue(n *sitter.Node, src []byte) (string, bool) {
	switch {
	case IsString(n):
		return UnquoteString(parser.GetNodeText(n, src)), true
	case IsTemplateString(n):
		for _, child := range parser.NamedChildren(n) {
			if child.Type() == "template_substitution" {
				return "", false
			}
		}
		return UnquoteString(parser.GetNodeText(n, src)), true
	default:
		return "", false
	}
}

// ImportSource returns the module name of an import statement.
func ImportSource(n *sitter.Node, src []byte) (string, bool) {
	if !IsImportStatement(n) {
		return "", false
	}
	return StringValue(n.ChildByFieldName("source"), src)
}

// ImportBindings lists the local names an import statement binds.
func ImportBindings(n *sitter.Node, src []byte) []Binding {
	clause := parser.FindChildByType(n, "import_clause")
	if clause == nil {
		return nil
	}

	var bindings []Binding
	for _, child := range parser.NamedChildren(clause) {
		switch child.Type() {
		case "identifier":
			bindings = append(bindings, Binding{
				Imported: "default",
				Kind:     BindingDefault,
				Local:    parser.GetNodeText(child, src),
				Node:     child,
			})
		case "namespace_import":
			if id := parser.FindChildByType(child, "identifier"); id != nil {
				bindings = append(bindings, Binding{
					Kind:  BindingNamespace,
					Local: parser.GetNodeText(id, src),
					Node:  child,
				})
			}
		case "named_imports":
			for _, spec := range parser.NamedChildren(child) {
				if spec.Type() != "import_specifier" {
					continue
				}
				name := spec.ChildByFieldName("name")
				imported := parser.GetNodeText(name, src)
				if IsString(name) {
					imported = UnquoteString(imported)
				}
				local := imported
				if alias := spec.ChildByFieldName("alias"); alias != nil {
					local = parser.GetNodeText(alias, src)
				}
				kind := BindingNamed
				if imported == "default" {
					kind = BindingDefault
				}
				bindings = append(bindings, Binding{
					Imported: imported,
					Kind:     kind,
					Local:    local,
					Node:     spec,
				})
			}
		}
	}
	return bindings
}

// RequireSource returns the module of a require('module') call.
func RequireSource(n *sitter.Node, src []byte) (string, bool) {
	if !IsCallExpression(n) || !HasName(Callee(n), src, "require") {
		return "", false
	}
	return StringValue(FirstArgument(n), src)
}

// RequireBindings lists the local names bound by the declarator that
// receives a require call: const x = require('m') and
// const { a, b: c } = require('m').
func RequireBindings(call *sitter.Node, src []byte) []Binding {
	declarator := call.Parent()
	if !IsVariableDeclarator(declarator) || !Same(declarator.ChildByFieldName("value"), call) {
		return nil
	}

	target := declarator.ChildByFieldName("name")
	switch {
	case IsIdentifier(target):
		return []Binding{{
			Kind:  BindingNamespace,
			Local: parser.GetNodeText(target, src),
			Node:  target,
		}}
	case IsObjectPattern(target):
		var bindings []Binding
		for _, prop := range parser.NamedChildren(target) {
			switch prop.Type() {
			case "shorthand_property_identifier_pattern":
				name := parser.GetNodeText(prop, src)
				bindings = append(bindings, Binding{Imported: name, Kind: BindingNamed, Local: name, Node: prop})
			case "pair_pattern":
				key := prop.ChildByFieldName("key")
				value := prop.ChildByFieldName("value")
				if IsIdentifier(key) && IsIdentifier(value) {
					bindings = append(bindings, Binding{
						Imported: parser.GetNodeText(key, src),
						Kind:     BindingNamed,
						Local:    parser.GetNodeText(value, src),
						Node:     prop,
					})
				}
			}
		}
		return bindings
	}
	return nil
}

// DestructuredNames maps destructured keys to local names for an object
// pattern: { a, b: c } yields a->a, b->c.
func DestructuredNames(pattern *sitter.Node, src []byte) map[string]string {
	if !IsObjectPattern(pattern) {
		return nil
	}
	names := make(map[string]string)
	for _, prop := range parser.NamedChildren(pattern) {
		switch prop.Type() {
		case "shorthand_property_identifier_pattern":
			name := parser.GetNodeText(prop, src)
			names[name] = name
		case "pair_pattern":
			key := prop.ChildByFieldName("key")
			value := prop.ChildByFieldName("value")
			if IsIdentifier(key) && IsIdentifier(value) {
				names[parser.GetNodeText(key, src)] = parser.GetNodeText(value, src)
			}
		case "object_assignment_pattern":
			left := prop.ChildByFieldName("left")
			if IsIdentifier(left) {
				name := parser.GetNodeText(left, src)
				names[name] = name
			}
		}
	}
	return names
}
