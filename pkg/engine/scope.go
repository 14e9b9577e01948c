package engine

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/testinglint/pkg/parser"
	"github.com/specvital/testinglint/pkg/parser/nodes"
)

// scopeIndex resolves variable references lexically: a reference is an
// identifier with the declared name inside the declaring scope that is not
// shadowed by a nested declaration or parameter of the same name.
type scopeIndex struct {
	cache map[nodes.Key][]*sitter.Node
	src   []byte
}

func newScopeIndex(file *parser.File) *scopeIndex {
	return &scopeIndex{
		cache: make(map[nodes.Key][]*sitter.Node),
		src:   file.Source,
	}
}

func (s *scopeIndex) references(declarator *sitter.Node) []*sitter.Node {
	if !nodes.IsVariableDeclarator(declarator) {
		return nil
	}
	name := declarator.ChildByFieldName("name")
	if !nodes.IsIdentifier(name) {
		return nil
	}

	key := nodes.KeyOf(declarator)
	if refs, ok := s.cache[key]; ok {
		return refs
	}

	scope := declaringScope(declarator)
	text := parser.GetNodeText(name, s.src)

	var refs []*sitter.Node
	parser.WalkTree(scope, func(n *sitter.Node) bool {
		if !isReferenceCandidate(n) || nodes.Same(n, name) {
			return true
		}
		if parser.GetNodeText(n, s.src) != text || isDeclarationName(n) {
			return true
		}
		if !s.shadowed(n, scope, text) {
			refs = append(refs, n)
		}
		return true
	})

	s.cache[key] = refs
	return refs
}

func isReferenceCandidate(n *sitter.Node) bool {
	t := n.Type()
	return t == "identifier" || t == "shorthand_property_identifier"
}

func isDeclarationName(n *sitter.Node) bool {
	parent := n.Parent()
	return nodes.IsVariableDeclarator(parent) && nodes.Same(parent.ChildByFieldName("name"), n)
}

// declaringScope returns the block holding the binding: the nearest block
// for let/const, the nearest function body for var.
func declaringScope(declarator *sitter.Node) *sitter.Node {
	hoisted := declarator.Parent() != nil && declarator.Parent().Type() == "variable_declaration"
	n := declarator.Parent()
	for depth := 0; n != nil && depth < nodes.MaxAncestorDepth; depth++ {
		switch {
		case nodes.IsProgram(n):
			return n
		case nodes.IsBlockStatement(n):
			if !hoisted || nodes.IsFunction(n.Parent()) {
				return n
			}
		case n.Type() == "for_statement", n.Type() == "for_in_statement":
			if !hoisted {
				return n
			}
		}
		if n.Parent() == nil {
			return n
		}
		n = n.Parent()
	}
	return n
}

func (s *scopeIndex) shadowed(ref, scope *sitter.Node, name string) bool {
	n := ref.Parent()
	for depth := 0; n != nil && depth < nodes.MaxAncestorDepth && !nodes.Same(n, scope); depth++ {
		switch {
		case nodes.IsFunction(n):
			if declaresParameter(n.ChildByFieldName("parameters"), s.src, name) ||
				declaresParameter(n.ChildByFieldName("parameter"), s.src, name) {
				return true
			}
		case nodes.IsBlockStatement(n):
			if declaresInBlock(n, s.src, name) {
				return true
			}
		}
		n = n.Parent()
	}
	return false
}

func declaresParameter(params *sitter.Node, src []byte, name string) bool {
	if params == nil {
		return false
	}
	found := false
	parser.WalkTree(params, func(n *sitter.Node) bool {
		if found {
			return false
		}
		// Default values are expressions, not bindings.
		if n.Type() == "assignment_pattern" || n.Type() == "object_assignment_pattern" {
			if left := n.ChildByFieldName("left"); left != nil && parser.GetNodeText(left, src) == name {
				found = true
			}
			return false
		}
		if (n.Type() == "identifier" || n.Type() == "shorthand_property_identifier_pattern") && parser.GetNodeText(n, src) == name {
			found = true
		}
		return !found
	})
	return found
}

func declaresInBlock(block *sitter.Node, src []byte, name string) bool {
	for _, stmt := range nodes.Statements(block) {
		if nodes.IsFunctionDeclaration(stmt) && nodes.FunctionName(stmt, src) == name {
			return true
		}
		for _, d := range nodes.Declarators(stmt) {
			if nodes.Name(d.ChildByFieldName("name"), src) == name {
				return true
			}
		}
	}
	return false
}
