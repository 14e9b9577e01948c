// Package vocab holds the static name tables of the Testing Library API:
// query variants and methods, async and debug utilities, event simulators,
// assertion matchers and module names.
//
// The tables are read-only after package initialization.
package vocab

import "strings"

const (
	RenderName           = "render"
	FireEventName        = "fireEvent"
	UserEventName        = "userEvent"
	UserEventSetupName   = "setup"
	CreateEventName      = "createEvent"
	ScreenName           = "screen"
	WithinName           = "within"
	ActName              = "act"
	CleanupName          = "cleanup"
	NoopName             = "noop"
	ExpectName           = "expect"
	WaitForName          = "waitFor"
	WaitForRemovedName   = "waitForElementToBeRemoved"
	PromiseName          = "Promise"
	UserEventModule      = "@testing-library/user-event"
	DOMModule            = "@testing-library/dom"
	LegacyDOMModule      = "dom-testing-library"
	ReactDOMTestUtilsMod = "react-dom/test-utils"
	ContainerProperty    = "container"
)

// Variant is the family a query name belongs to.
type Variant int

const (
	VariantNone Variant = iota
	// VariantGet covers getBy* and getAllBy*.
	VariantGet
	// VariantQuery covers queryBy* and queryAllBy*.
	VariantQuery
	// VariantFind covers findBy* and findAllBy*.
	VariantFind
)

// String implements fmt.Stringer.
func (v Variant) String() string {
	switch v {
	case VariantGet:
		return "sync-get"
	case VariantQuery:
		return "sync-query"
	case VariantFind:
		return "async-find"
	default:
		return "none"
	}
}

var (
	SyncQueryVariants  = []string{"getBy", "getAllBy", "queryBy", "queryAllBy"}
	AsyncQueryVariants = []string{"findBy", "findAllBy"}
	AllQueryVariants   = append(append([]string{}, SyncQueryVariants...), AsyncQueryVariants...)

	QueryMethods = []string{
		"ByLabelText",
		"ByPlaceholderText",
		"ByText",
		"ByAltText",
		"ByTitle",
		"ByDisplayValue",
		"ByRole",
		"ByTestId",
	}

	SyncQueries  = CombineQueries(SyncQueryVariants, QueryMethods)
	AsyncQueries = CombineQueries(AsyncQueryVariants, QueryMethods)
	AllQueries   = CombineQueries(AllQueryVariants, QueryMethods)

	allQueriesSet = toSet(AllQueries)
)

// CombineQueries joins every variant with every method, stripping the
// trailing "By" of the variant: getBy + ByRole = getByRole.
func CombineQueries(variants, methods []string) []string {
	combined := make([]string, 0, len(variants)*len(methods))
	for _, variant := range variants {
		prefix := strings.TrimSuffix(variant, "By")
		for _, method := range methods {
			combined = append(combined, prefix+method)
		}
	}
	return combined
}

// IsBuiltInQuery reports whether name is one of AllQueries.
func IsBuiltInQuery(name string) bool {
	return allQueriesSet[name]
}

// Classify splits a query-shaped name into its variant and method
// suffix ("findAllByRole" yields VariantFind, "ByRole"). Names that do not
// match (get|query|find)(All)?By<Something> return VariantNone.
func Classify(name string) (Variant, string) {
	for _, candidate := range []struct {
		prefix  string
		variant Variant
	}{
		{"getAllBy", VariantGet},
		{"getBy", VariantGet},
		{"queryAllBy", VariantQuery},
		{"queryBy", VariantQuery},
		{"findAllBy", VariantFind},
		{"findBy", VariantFind},
	} {
		if strings.HasPrefix(name, candidate.prefix) && len(name) > len(candidate.prefix) {
			return candidate.variant, "By" + name[len(candidate.prefix):]
		}
	}
	return VariantNone, ""
}

// Flat membership sets. Never matched by prefix or suffix.
var (
	AsyncUtils      = []string{WaitForName, WaitForRemovedName}
	DebugUtils      = []string{"debug", "logTestingPlaygroundURL", "prettyDOM", "logRoles", "logDOM", "prettyFormat"}
	EventSimulators = []string{FireEventName, UserEventName}

	PresenceMatchers = []string{"toBeOnTheScreen", "toBeInTheDocument", "toBeTruthy", "toBeDefined"}
	AbsenceMatchers  = []string{"toBeNull", "toBeFalsy"}

	// PromiseMatchers settle the promise passed to expect().
	PromiseMatchers = []string{"resolves", "rejects", "toResolve", "toReject"}
	// PromiseChainMethods consume a promise when chained on it.
	PromiseChainMethods = []string{"then", "catch", "finally"}
	PromiseCombinators  = []string{"all", "allSettled"}

	SnapshotMatchers = []string{"toMatchSnapshot", "toMatchInlineSnapshot"}

	// TestingFrameworkSetupHooks run before tests.
	TestingFrameworkSetupHooks = []string{"beforeEach", "beforeAll"}
	// TestCallbacks are the functions that declare tests and suites.
	TestCallbacks = []string{"test", "it", "describe", "fit", "xit", "xtest", "xdescribe", "fdescribe"}

	// UserEventEquivalents maps fireEvent methods to the userEvent methods
	// that cover them.
	UserEventEquivalents = map[string][]string{
		"click":        {"click", "type", "selectOptions", "deselectOptions"},
		"change":       {"upload", "type", "clear", "selectOptions", "deselectOptions"},
		"dblClick":     {"dblClick"},
		"input":        {"type", "upload", "selectOptions", "deselectOptions", "paste"},
		"keyDown":      {"type", "tab"},
		"keyPress":     {"type"},
		"keyUp":        {"type", "tab"},
		"mouseDown":    {"click", "dblClick", "selectOptions", "deselectOptions"},
		"mouseEnter":   {"hover", "selectOptions", "deselectOptions"},
		"mouseLeave":   {"unhover"},
		"mouseMove":    {"hover", "unhover", "selectOptions", "deselectOptions"},
		"mouseOut":     {"unhover"},
		"mouseOver":    {"hover", "selectOptions", "deselectOptions"},
		"mouseUp":      {"click", "dblClick", "selectOptions", "deselectOptions"},
		"paste":        {"paste"},
		"pointerDown":  {"click", "dblClick", "selectOptions", "deselectOptions"},
		"pointerEnter": {"hover", "selectOptions", "deselectOptions"},
		"pointerLeave": {"unhover"},
		"pointerMove":  {"hover", "unhover", "selectOptions", "deselectOptions"},
		"pointerOut":   {"unhover"},
		"pointerOver":  {"hover", "selectOptions", "deselectOptions"},
		"pointerUp":    {"click", "dblClick", "selectOptions", "deselectOptions"},
	}

	// PropertiesReturningNodes are DOM properties that traverse the tree.
	PropertiesReturningNodes = []string{
		"activeElement", "children", "childElementCount", "firstChild", "firstElementChild",
		"fullscreenElement", "lastChild", "lastElementChild", "nextElementSibling", "nextSibling",
		"parentElement", "parentNode", "pointerLockElement", "previousElementSibling",
		"previousSibling", "rootNode", "scripts",
	}
	// MethodsReturningNodes are DOM methods that traverse or query the tree.
	MethodsReturningNodes = []string{
		"closest", "getElementById", "getElementsByClassName", "getElementsByName",
		"getElementsByTagName", "getElementsByTagNameNS", "querySelector", "querySelectorAll",
	}
	// EventHandlerMethods are DOM methods that fire events directly.
	EventHandlerMethods = []string{"click", "focus", "blur", "select", "submit"}
)

// LibraryModules are the recognized Testing Library bindings.
var LibraryModules = []string{
	"@testing-library/dom",
	"@testing-library/angular",
	"@testing-library/react",
	"@testing-library/preact",
	"@testing-library/vue",
	"@testing-library/svelte",
	"@marko/testing-library",
}

// LegacyLibraryModules are pre-scope package names still in use.
var LegacyLibraryModules = []string{
	"dom-testing-library",
	"vue-testing-library",
	"react-testing-library",
}

var libraryModuleSet = toSet(append(append(append([]string{}, LibraryModules...), LegacyLibraryModules...), UserEventModule))

// IsLibraryModule reports whether module is one of the built-in modules.
func IsLibraryModule(module string) bool {
	return libraryModuleSet[module]
}

// Contains reports whether list holds value.
func Contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
