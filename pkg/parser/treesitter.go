// Package parser turns JavaScript and TypeScript sources into tree-sitter
// trees and provides the node helpers shared by the lint packages.
package parser

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/testinglint/pkg/domain"
	"github.com/specvital/testinglint/pkg/parser/tspool"
)

const MaxTreeDepth = tspool.MaxTreeDepth

// File is a parsed source file. Close releases the tree.
type File struct {
	Language domain.Language
	Path     string
	Source   []byte
	Tree     *sitter.Tree
}

// ParseFile parses source with the grammar selected by the file extension.
func ParseFile(ctx context.Context, path string, source []byte) (*File, error) {
	lang, ok := domain.LanguageFromPath(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", tspool.ErrUnknownLanguage, path)
	}
	return ParseSource(ctx, path, lang, source)
}

// ParseSource parses source with an explicit language.
func ParseSource(ctx context.Context, path string, lang domain.Language, source []byte) (*File, error) {
	tree, err := tspool.Parse(ctx, lang, source)
	if err != nil {
		return nil, err
	}
	return &File{
		Language: lang,
		Path:     path,
		Source:   source,
		Tree:     tree,
	}, nil
}

// Root returns the program node.
func (f *File) Root() *sitter.Node {
	return f.Tree.RootNode()
}

// Close frees the underlying tree.
func (f *File) Close() {
	if f.Tree != nil {
		f.Tree.Close()
		f.Tree = nil
	}
}

// GetNodeText returns the source text for the given AST node.
// Returns empty string for a nil node or a byte range past the source length.
func GetNodeText(node *sitter.Node, source []byte) (result string) {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	sourceLen := uint32(len(source))

	if start > sourceLen || end > sourceLen || start > end {
		return ""
	}

	// Content() can still panic on slice bounds inside the C bridge.
	defer func() {
		if r := recover(); r != nil {
			result = ""
		}
	}()

	return node.Content(source)
}

// GetLocation converts a tree-sitter node position to a [domain.Location].
// Line numbers are converted to 1-based indexing.
func GetLocation(node *sitter.Node, filename string) domain.Location {
	start := node.StartPoint()
	end := node.EndPoint()

	return domain.Location{
		File:      filename,
		StartLine: int(start.Row) + 1,
		EndLine:   int(end.Row) + 1,
		StartCol:  int(start.Column),
		EndCol:    int(end.Column),
	}
}

// FindChildByType returns the first direct child with the given node type.
func FindChildByType(node *sitter.Node, nodeType string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == nodeType {
			return child
		}
	}
	return nil
}

// NamedChildren returns the named children of node.
func NamedChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	children := make([]*sitter.Node, 0, node.NamedChildCount())
	for i := 0; i < int(node.NamedChildCount()); i++ {
		children = append(children, node.NamedChild(i))
	}
	return children
}

func walkTreeWithDepth(node *sitter.Node, enter func(*sitter.Node) bool, leave func(*sitter.Node), depth int) {
	if depth > tspool.MaxTreeDepth {
		return
	}

	if !enter(node) {
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		walkTreeWithDepth(node.Child(i), enter, leave, depth+1)
	}

	if leave != nil {
		leave(node)
	}
}

// WalkTree recursively visits all nodes in the AST.
// The visitor function returns false to stop traversing into children.
func WalkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	walkTreeWithDepth(node, visitor, nil, 0)
}

// Traverse visits nodes depth-first, calling enter before and leave after
// a node's children. leave is not called for nodes whose enter returned false.
func Traverse(node *sitter.Node, enter func(*sitter.Node) bool, leave func(*sitter.Node)) {
	walkTreeWithDepth(node, enter, leave, 0)
}
