package promise

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/testinglint/pkg/domain"
	"github.com/specvital/testinglint/pkg/engine"
	"github.com/specvital/testinglint/pkg/parser/nodes"
)

const (
	awaitKeyword = "await "
	asyncKeyword = "async "
)

// Wrappers tracks the names of functions that return the promise of a
// tracked async call, plus their aliases. One instance per rule per file.
type Wrappers struct {
	names map[string]bool
	src   []byte
}

func NewWrappers(src []byte) *Wrappers {
	return &Wrappers{names: make(map[string]bool), src: src}
}

// Has reports whether name is a known wrapper.
func (w *Wrappers) Has(name string) bool {
	return name != "" && w.names[name]
}

// Detect registers the innermost function around identifier when that
// function returns the identifier's call.
func (w *Wrappers) Detect(identifier *sitter.Node) {
	fn := InnermostReturningFunction(identifier, w.src)
	if fn == nil {
		return
	}
	if name := nodes.FunctionName(fn, w.src); name != "" {
		w.names[name] = true
	}
}

// TrackDeclarator registers aliases of known wrappers: const alias = wrapper
// and const { wrapper: alias } = helpers.
func (w *Wrappers) TrackDeclarator(declarator *sitter.Node) {
	target := declarator.ChildByFieldName("name")
	if nodes.IsObjectPattern(target) {
		for key, local := range nodes.DestructuredNames(target, w.src) {
			if key != local && w.Has(key) {
				w.names[local] = true
			}
		}
		return
	}
	if !nodes.IsIdentifier(target) {
		return
	}
	value := declarator.ChildByFieldName("value")
	if value == nil {
		return
	}
	if w.Has(nodes.Name(nodes.GetDeepestIdentifier(value), w.src)) {
		w.names[nodes.Name(target, w.src)] = true
	}
}

// InnermostReturningFunction returns the function whose scope directly
// holds identifier and whose returned expression ends in identifier.
func InnermostReturningFunction(identifier *sitter.Node, src []byte) *sitter.Node {
	fn := nodes.InnermostFunctionScope(identifier)
	if fn == nil {
		return nil
	}
	returned := nodes.GetDeepestIdentifier(nodes.FunctionReturnValue(fn))
	if returned == nil || nodes.Name(returned, src) != nodes.Name(identifier, src) {
		return nil
	}
	return fn
}

// AsyncMarker remembers the functions an "async " insertion was already
// emitted for during one pass, so the keyword is inserted once.
type AsyncMarker struct {
	marked map[nodes.Key]bool
}

func NewAsyncMarker() *AsyncMarker {
	return &AsyncMarker{marked: make(map[nodes.Key]bool)}
}

// Mark records fn and reports whether it was unmarked.
func (m *AsyncMarker) Mark(fn *sitter.Node) bool {
	key := nodes.KeyOf(fn)
	if m.marked[key] {
		return false
	}
	m.marked[key] = true
	return true
}

// IsMarked reports whether fn was marked.
func (m *AsyncMarker) IsMarked(fn *sitter.Node) bool {
	return m.marked[nodes.KeyOf(fn)]
}

// AwaitTarget is the node "await " goes in front of: the member expression
// when identifier is its property, otherwise identifier.
func AwaitTarget(identifier *sitter.Node) *sitter.Node {
	parent := identifier.Parent()
	if nodes.IsMemberExpression(parent) && nodes.Same(nodes.MemberProperty(parent), identifier) {
		return parent
	}
	return identifier
}

// AwaitFix inserts "await " before target. When marker is not nil, the
// function enclosing target is also made async unless it already is or
// was made async earlier in this pass. It returns nil when there is no
// enclosing function to make async.
func AwaitFix(f *engine.Fixer, target *sitter.Node, marker *AsyncMarker) []domain.TextEdit {
	edits := []domain.TextEdit{f.InsertBefore(target, awaitKeyword)}
	if marker == nil {
		return edits
	}
	fn := nodes.FindClosestFunction(target)
	if fn == nil {
		return nil
	}
	if nodes.IsAsyncFunction(fn) || !marker.Mark(fn) {
		return edits
	}
	return append(edits, f.InsertAt(int(nodes.AsyncInsertionPoint(fn)), asyncKeyword))
}
