package engine

// Off is the settings value that turns a shared setting off explicitly.
const Off = "off"

// StringList is a shared setting that is either unset, "off", or a list.
type StringList struct {
	Off    bool
	Values []string
}

// IsSet reports whether the setting was configured at all.
func (l StringList) IsSet() bool {
	return l.Off || len(l.Values) > 0
}

// Settings are shared by every rule of a run.
type Settings struct {
	// CustomQueries lists extra query names or By* suffixes.
	CustomQueries StringList
	// CustomRenders lists extra function names that render components.
	CustomRenders StringList
	// UtilsModule is the custom module re-exporting the library. Empty means
	// unset, Off means only the built-in modules count.
	UtilsModule string
}
