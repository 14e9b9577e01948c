package detection

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/testinglint/pkg/engine"
	"github.com/specvital/testinglint/pkg/parser/nodes"
	"github.com/specvital/testinglint/pkg/vocab"
)

// importRecord is one import statement or require call of interest.
type importRecord struct {
	bindings []nodes.Binding
	module   string
	node     *sitter.Node
}

// State is the per-file detection state collected while the file is
// walked. It is created by CreateRule for every rule instance and never
// shared between files.
type State struct {
	customModule     *importRecord
	libraryImports   []*importRecord
	reactDOMTestUtil *importRecord
	// renderResults holds variables assigned a render result.
	renderResults map[string]bool
	// renderDestructured maps local names destructured from a render result
	// to the destructured key.
	renderDestructured map[string]string
	settings           engine.Settings
	src                []byte
	userEvent          *importRecord
	// userEventSessions holds variables assigned userEvent.setup().
	userEventSessions map[string]bool
}

func newState(ctx *engine.Context) *State {
	return &State{
		renderDestructured: make(map[string]string),
		renderResults:      make(map[string]bool),
		settings:           ctx.Settings(),
		src:                ctx.Source(),
		userEventSessions:  make(map[string]bool),
	}
}

// Source returns the text of the file being walked.
func (s *State) Source() []byte { return s.src }

// customModuleName returns the configured utils module, or "" when unset
// or turned off.
func (s *State) customModuleName() string {
	if s.settings.UtilsModule == engine.Off {
		return ""
	}
	return s.settings.UtilsModule
}

func (s *State) trackModule(node *sitter.Node, module string, bindings []nodes.Binding) {
	record := &importRecord{bindings: bindings, module: module, node: node}

	if vocab.IsLibraryModule(module) {
		s.libraryImports = append(s.libraryImports, record)
	}
	if s.userEvent == nil && module == vocab.UserEventModule {
		s.userEvent = record
	}
	if custom := s.customModuleName(); custom != "" && s.customModule == nil && strings.HasSuffix(module, custom) {
		s.customModule = record
	}
	if s.reactDOMTestUtil == nil && module == vocab.ReactDOMTestUtilsMod {
		s.reactDOMTestUtil = record
	}
}

func (s *State) onImport(n *sitter.Node) {
	module, ok := nodes.ImportSource(n, s.src)
	if !ok {
		return
	}
	s.trackModule(n, module, nodes.ImportBindings(n, s.src))
}

func (s *State) onCall(n *sitter.Node) {
	module, ok := nodes.RequireSource(n, s.src)
	if !ok {
		return
	}
	s.trackModule(n, module, nodes.RequireBindings(n, s.src))
}

// searchable returns the imports whose bindings count as testing library
// utilities: the library modules, then the custom module.
func (s *State) searchable() []*importRecord {
	records := make([]*importRecord, 0, len(s.libraryImports)+1)
	records = append(records, s.libraryImports...)
	if s.customModule != nil {
		records = append(records, s.customModule)
	}
	return records
}

// bindingByLocal finds the binding introducing the local name.
func (s *State) bindingByLocal(local string) (nodes.Binding, *importRecord, bool) {
	if local == "" {
		return nodes.Binding{}, nil, false
	}
	for _, record := range s.searchable() {
		for _, b := range record.bindings {
			if b.Local == local {
				return b, record, true
			}
		}
	}
	return nodes.Binding{}, nil, false
}

// bindingByImported finds the binding of an exported name. A namespace
// import of a searched module matches any name.
func (s *State) bindingByImported(imported string) (nodes.Binding, bool) {
	for _, record := range s.searchable() {
		for _, b := range record.bindings {
			if b.Kind == nodes.BindingNamespace || b.Imported == imported {
				return b, true
			}
		}
	}
	return nodes.Binding{}, false
}

func (s *State) onDeclarator(n *sitter.Node, h *Helpers) {
	target := n.ChildByFieldName("name")
	if h.IsUserEventSetupCall(nodes.Unparen(n.ChildByFieldName("value"))) && nodes.IsIdentifier(target) {
		s.userEventSessions[nodes.Name(target, s.src)] = true
		return
	}
	if !h.IsRenderVariableDeclarator(n) {
		return
	}
	switch {
	case nodes.IsIdentifier(target):
		s.renderResults[nodes.Name(target, s.src)] = true
	case nodes.IsObjectPattern(target):
		for key, local := range nodes.DestructuredNames(target, s.src) {
			s.renderDestructured[local] = key
		}
	}
}
