package detection

import (
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/testinglint/pkg/parser/nodes"
	"github.com/specvital/testinglint/pkg/vocab"
)

var queryPattern = regexp.MustCompile(`^(get|query|find)(All)?By.+$`)

// Helpers are the semantic predicates handed to rule bodies. Every method
// is a pure function of the current State and its arguments.
type Helpers struct {
	state *State
}

// State returns the detection state the helpers read.
func (h *Helpers) State() *State { return h.state }

func (h *Helpers) IsAggressiveModuleReportingEnabled() bool {
	return h.state.settings.UtilsModule == ""
}

func (h *Helpers) IsAggressiveRenderReportingEnabled() bool {
	return !h.state.settings.CustomRenders.IsSet()
}

func (h *Helpers) IsAggressiveQueryReportingEnabled() bool {
	return !h.state.settings.CustomQueries.IsSet()
}

func (h *Helpers) customRenders() []string {
	if h.state.settings.CustomRenders.Off {
		return nil
	}
	return h.state.settings.CustomRenders.Values
}

func (h *Helpers) customQueries() []string {
	if h.state.settings.CustomQueries.Off {
		return nil
	}
	return h.state.settings.CustomQueries.Values
}

// IsTestingLibraryImported reports whether the file imports a library or
// custom module. Unless strict, aggressive module reporting counts as imported.
func (h *Helpers) IsTestingLibraryImported(strict bool) bool {
	imported := len(h.state.libraryImports) > 0 || h.state.customModule != nil
	return (!strict && h.IsAggressiveModuleReportingEnabled()) || imported
}

// CanReportErrors gates rule handlers.
func (h *Helpers) CanReportErrors() bool {
	return h.IsTestingLibraryImported(false)
}

// GetAllTestingLibraryImportNodes returns the import statements and
// require calls of library modules, in source order.
func (h *Helpers) GetAllTestingLibraryImportNodes() []*sitter.Node {
	out := make([]*sitter.Node, 0, len(h.state.libraryImports))
	for _, r := range h.state.libraryImports {
		out = append(out, r.node)
	}
	return out
}

// GetTestingLibraryImportName returns the module of the first library import.
func (h *Helpers) GetTestingLibraryImportName() string {
	if len(h.state.libraryImports) == 0 {
		return ""
	}
	return h.state.libraryImports[0].module
}

// GetCustomModuleImportName returns the module matched by the utils-module setting.
func (h *Helpers) GetCustomModuleImportName() string {
	if h.state.customModule == nil {
		return ""
	}
	return h.state.customModule.module
}

// GetCustomModuleImportNode returns the import of the utils module, or nil.
func (h *Helpers) GetCustomModuleImportNode() *sitter.Node {
	if h.state.customModule == nil {
		return nil
	}
	return h.state.customModule.node
}

// GetUserEventImportNode returns the import of the user-event module, or nil.
func (h *Helpers) GetUserEventImportNode() *sitter.Node {
	if h.state.userEvent == nil {
		return nil
	}
	return h.state.userEvent.node
}

func (h *Helpers) name(n *sitter.Node) string {
	return nodes.Name(n, h.state.src)
}

// FindImportedUtilSpecifier returns the binding bringing the root
// identifier of n into scope from a library or custom module import.
func (h *Helpers) FindImportedUtilSpecifier(n *sitter.Node) (nodes.Binding, bool) {
	root := nodes.GetPropertyIdentifier(n)
	b, _, ok := h.state.bindingByLocal(h.name(root))
	return b, ok
}

// IsNodeComingFromTestingLibrary reports whether the root identifier of
// n's reference chain is bound by a library or custom module import.
func (h *Helpers) IsNodeComingFromTestingLibrary(n *sitter.Node) bool {
	root := nodes.RootIdentifier(n)
	if root == nil {
		return false
	}
	_, ok := h.FindImportedUtilSpecifier(root)
	return ok
}

// isPotentialTestingLibraryFunction classifies n with match, passing its
// name and the imported name when n was renamed on import. Without
// aggressive module reporting the root identifier must come from an import.
func (h *Helpers) isPotentialTestingLibraryFunction(n *sitter.Node, match func(name, original string) bool) bool {
	if n == nil {
		return false
	}
	root := nodes.RootIdentifier(n)
	if root == nil {
		return false
	}

	original := ""
	if b, ok := h.FindImportedUtilSpecifier(root); ok && b.Kind == nodes.BindingNamed && b.Local != b.Imported {
		original = b.Imported
	}
	if !match(h.name(n), original) {
		return false
	}
	if h.IsAggressiveModuleReportingEnabled() {
		return true
	}
	return h.IsNodeComingFromTestingLibrary(root)
}

func inNames(names []string, name, original string) bool {
	return vocab.Contains(names, name) || (original != "" && vocab.Contains(names, original))
}

// IsAsyncUtil matches waitFor-style utilities, or the given names.
func (h *Helpers) IsAsyncUtil(n *sitter.Node, validNames ...string) bool {
	if len(validNames) == 0 {
		validNames = vocab.AsyncUtils
	}
	return h.isPotentialTestingLibraryFunction(n, func(name, original string) bool {
		return inNames(validNames, name, original)
	})
}

// IsFireEventUtil matches the fireEvent identifier itself.
func (h *Helpers) IsFireEventUtil(n *sitter.Node) bool {
	return h.isPotentialTestingLibraryFunction(n, func(name, original string) bool {
		return name == vocab.FireEventName || original == vocab.FireEventName
	})
}

// userEventName is the local name of the user-event default export.
func (h *Helpers) userEventName() string {
	if h.state.userEvent != nil {
		for _, b := range h.state.userEvent.bindings {
			if b.Kind == nodes.BindingDefault || b.Kind == nodes.BindingNamespace || b.Imported == vocab.UserEventName {
				return b.Local
			}
		}
	}
	return vocab.UserEventName
}

// IsUserEventUtil matches the userEvent identifier itself.
func (h *Helpers) IsUserEventUtil(n *sitter.Node) bool {
	if h.state.userEvent != nil {
		return h.name(n) == h.userEventName()
	}
	return h.name(n) == vocab.UserEventName
}

// fireEventName is the local name under which fireEvent is reachable.
func (h *Helpers) fireEventName() string {
	if b, ok := h.state.bindingByImported(vocab.FireEventName); ok && b.Kind != nodes.BindingNamespace {
		return b.Local
	}
	if h.IsAggressiveModuleReportingEnabled() {
		return vocab.FireEventName
	}
	return ""
}

// IsFireEventMethod matches the method identifier of fireEvent.click(...),
// rtl.fireEvent.click(...) and the fireEvent identifier of fireEvent(...).
func (h *Helpers) IsFireEventMethod(n *sitter.Node) bool {
	utilName := h.fireEventName()
	if utilName == "" || n == nil {
		return false
	}
	name := h.name(n)
	parent := n.Parent()

	if nodes.IsCallExpression(parent) {
		return nodes.Same(nodes.Callee(parent), n) && (name == utilName || name == vocab.FireEventName)
	}
	if !nodes.IsMemberExpression(parent) || !nodes.Same(nodes.MemberProperty(parent), n) {
		return false
	}
	if name == vocab.FireEventName || name == utilName {
		return false
	}

	object := nodes.MemberObject(parent)
	switch {
	case nodes.IsIdentifier(object):
		return nodes.IsCallExpression(parent.Parent()) && h.name(object) == utilName
	case nodes.IsMemberExpression(object):
		if h.name(nodes.MemberProperty(object)) != vocab.FireEventName {
			return false
		}
		namespace := h.name(nodes.MemberObject(object))
		return namespace == utilName || h.isNamespaceImport(namespace)
	}
	return false
}

func (h *Helpers) isNamespaceImport(local string) bool {
	b, _, ok := h.state.bindingByLocal(local)
	return ok && b.Kind == nodes.BindingNamespace
}

// IsUserEventMethod matches the method identifier of userEvent.click(...)
// or of a call on one of the setup instances named by sessions.
func (h *Helpers) IsUserEventMethod(n *sitter.Node, sessions ...string) bool {
	if n == nil {
		return false
	}
	parent := n.Parent()
	if !nodes.IsMemberExpression(parent) || !nodes.Same(nodes.MemberProperty(parent), n) {
		return false
	}
	userEvent := h.userEventName()
	name := h.name(n)
	object := nodes.MemberObject(parent)
	if name == userEvent || name == vocab.UserEventName || h.name(object) == name {
		return false
	}
	if !nodes.IsIdentifier(object) {
		return false
	}
	objectName := h.name(object)
	return objectName == userEvent || h.IsUserEventSession(objectName) || vocab.Contains(sessions, objectName)
}

// IsUserEventSetupCall matches userEvent.setup(...).
func (h *Helpers) IsUserEventSetupCall(n *sitter.Node) bool {
	callee := nodes.Callee(n)
	if !nodes.IsMemberExpression(callee) || nodes.PropertyName(callee, h.state.src) != vocab.UserEventSetupName {
		return false
	}
	object := nodes.MemberObject(callee)
	return nodes.IsIdentifier(object) && h.IsUserEventUtil(object)
}

// IsUserEventSession reports whether name holds a userEvent.setup() instance.
func (h *Helpers) IsUserEventSession(name string) bool {
	return h.state.userEventSessions[name]
}

// IsRenderUtil matches render functions: any name containing "render" under
// aggressive render reporting, otherwise render and the custom renders.
func (h *Helpers) IsRenderUtil(n *sitter.Node) bool {
	return h.isPotentialTestingLibraryFunction(n, func(name, original string) bool {
		if h.IsAggressiveRenderReportingEnabled() {
			return strings.Contains(strings.ToLower(name), vocab.RenderName)
		}
		valid := append([]string{vocab.RenderName}, h.customRenders()...)
		return inNames(valid, name, original)
	})
}

// IsRenderVariableDeclarator matches declarators initialized by a render call.
func (h *Helpers) IsRenderVariableDeclarator(n *sitter.Node) bool {
	if !nodes.IsVariableDeclarator(n) {
		return false
	}
	init := n.ChildByFieldName("value")
	if init == nil {
		return false
	}
	return h.IsRenderUtil(nodes.GetDeepestIdentifier(init))
}

// IsRenderResult reports whether name holds a render result.
func (h *Helpers) IsRenderResult(name string) bool {
	return h.state.renderResults[name]
}

// RenderDestructuredKey returns the render result property destructured
// into the local name.
func (h *Helpers) RenderDestructuredKey(local string) (string, bool) {
	key, ok := h.state.renderDestructured[local]
	return key, ok
}

// IsCreateEventUtil matches createEvent(...), createEvent.click(...) and
// rtl.createEvent.click(...).
func (h *Helpers) IsCreateEventUtil(n *sitter.Node) bool {
	match := func(name, original string) bool {
		return name == vocab.CreateEventName || original == vocab.CreateEventName
	}
	if nodes.IsCallExpression(n) {
		callee := nodes.Callee(n)
		if nodes.IsMemberExpression(callee) {
			object := nodes.MemberObject(callee)
			if nodes.IsIdentifier(object) {
				return h.isPotentialTestingLibraryFunction(object, match)
			}
			if nodes.IsMemberExpression(object) && nodes.IsIdentifier(nodes.MemberProperty(object)) {
				return h.isPotentialTestingLibraryFunction(nodes.MemberProperty(object), match)
			}
		}
	}
	return h.isPotentialTestingLibraryFunction(nodes.GetDeepestIdentifier(n), match)
}

// IsDebugUtil matches debug helpers, excluding console.debug and friends.
func (h *Helpers) IsDebugUtil(n *sitter.Node, validNames ...string) bool {
	if n == nil {
		return false
	}
	if len(validNames) == 0 {
		validNames = vocab.DebugUtils
	}
	if parent := n.Parent(); nodes.IsMemberExpression(parent) && h.name(nodes.MemberObject(parent)) == "console" {
		return false
	}
	return h.isPotentialTestingLibraryFunction(n, func(name, original string) bool {
		return inNames(validNames, name, original)
	})
}

// IsActUtil matches act from a library module or react-dom/test-utils.
func (h *Helpers) IsActUtil(n *sitter.Node) bool {
	isAct := h.isPotentialTestingLibraryFunction(n, func(name, original string) bool {
		return name == vocab.ActName || original == vocab.ActName
	})
	if isAct || h.state.reactDOMTestUtil == nil {
		return isAct
	}

	root := nodes.RootIdentifier(n)
	if root == nil {
		return false
	}
	for _, b := range h.state.reactDOMTestUtil.bindings {
		if b.Local != h.name(root) {
			continue
		}
		return h.name(n) == vocab.ActName || b.Imported == vocab.ActName
	}
	return false
}

// IsQuery matches names of the form (get|query|find)(All)?By*. Without
// aggressive query reporting only built-in and custom queries match.
func (h *Helpers) IsQuery(n *sitter.Node) bool {
	name := h.name(n)
	if !queryPattern.MatchString(name) {
		return false
	}
	if h.IsAggressiveQueryReportingEnabled() {
		return true
	}
	if vocab.IsBuiltInQuery(name) {
		return true
	}
	for _, custom := range h.customQueries() {
		if strings.HasSuffix(name, custom) {
			return true
		}
	}
	return false
}

func (h *Helpers) IsCustomQuery(n *sitter.Node) bool {
	return h.IsQuery(n) && !vocab.IsBuiltInQuery(h.name(n))
}

func (h *Helpers) IsBuiltInQuery(n *sitter.Node) bool {
	return h.IsQuery(n) && vocab.IsBuiltInQuery(h.name(n))
}

func (h *Helpers) variant(n *sitter.Node) vocab.Variant {
	if !h.IsQuery(n) {
		return vocab.VariantNone
	}
	v, _ := vocab.Classify(h.name(n))
	return v
}

func (h *Helpers) IsGetQueryVariant(n *sitter.Node) bool   { return h.variant(n) == vocab.VariantGet }
func (h *Helpers) IsQueryQueryVariant(n *sitter.Node) bool { return h.variant(n) == vocab.VariantQuery }
func (h *Helpers) IsFindQueryVariant(n *sitter.Node) bool  { return h.variant(n) == vocab.VariantFind }

// IsSyncQuery matches getBy* and queryBy* queries.
func (h *Helpers) IsSyncQuery(n *sitter.Node) bool {
	v := h.variant(n)
	return v == vocab.VariantGet || v == vocab.VariantQuery
}

// IsAsyncQuery matches findBy* queries.
func (h *Helpers) IsAsyncQuery(n *sitter.Node) bool {
	return h.IsFindQueryVariant(n)
}

// AssertInfo describes the matcher of an expect(...) member chain.
type AssertInfo struct {
	Matcher string
	Negated bool
}

// GetAssertNodeInfo reads the matcher of expect(x).matcher or
// expect(x).not.matcher from the member expression right after expect(...).
func (h *Helpers) GetAssertNodeInfo(member *sitter.Node) (AssertInfo, bool) {
	if !nodes.IsMemberExpression(member) || !nodes.IsExpectCall(nodes.MemberObject(member), h.state.src) {
		return AssertInfo{}, false
	}
	matcher := nodes.PropertyName(member, h.state.src)
	negated := matcher == "not"
	if negated {
		matcher = nodes.PropertyName(member.Parent(), h.state.src)
	}
	if matcher == "" {
		return AssertInfo{}, false
	}
	return AssertInfo{Matcher: matcher, Negated: negated}, true
}

// IsPresenceAssert matches positive presence matchers and negated absence ones.
func (h *Helpers) IsPresenceAssert(member *sitter.Node) bool {
	info, ok := h.GetAssertNodeInfo(member)
	if !ok {
		return false
	}
	if info.Negated {
		return vocab.Contains(vocab.AbsenceMatchers, info.Matcher)
	}
	return vocab.Contains(vocab.PresenceMatchers, info.Matcher)
}

// IsAbsenceAssert matches positive absence matchers and negated presence ones.
func (h *Helpers) IsAbsenceAssert(member *sitter.Node) bool {
	info, ok := h.GetAssertNodeInfo(member)
	if !ok {
		return false
	}
	if info.Negated {
		return vocab.Contains(vocab.PresenceMatchers, info.Matcher)
	}
	return vocab.Contains(vocab.AbsenceMatchers, info.Matcher)
}

// IsMatchingAssert matches expect(...).matcher and expect(...).not.matcher.
func (h *Helpers) IsMatchingAssert(member *sitter.Node, matcher string) bool {
	info, ok := h.GetAssertNodeInfo(member)
	return ok && info.Matcher == matcher
}
