// Package domain defines the core types shared by the linter packages.
package domain

import (
	"path/filepath"
	"strings"
)

// Language represents a source dialect with its own tree-sitter grammar.
type Language string

// Supported languages for linting.
const (
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageTSX        Language = "tsx"
)

// LanguageFromPath maps a file extension to its language.
// Returns false for files that are not JavaScript or TypeScript.
func LanguageFromPath(path string) (Language, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".jsx", ".mjs", ".cjs":
		return LanguageJavaScript, true
	case ".ts", ".mts", ".cts":
		return LanguageTypeScript, true
	case ".tsx":
		return LanguageTSX, true
	default:
		return "", false
	}
}

// Framework names a Testing Library binding used to pick recommended rule sets.
type Framework string

// Supported frameworks for recommended presets.
const (
	FrameworkDOM     Framework = "dom"
	FrameworkAngular Framework = "angular"
	FrameworkReact   Framework = "react"
	FrameworkVue     Framework = "vue"
	FrameworkSvelte  Framework = "svelte"
	FrameworkMarko   Framework = "marko"
)

// Frameworks lists every framework in a stable order.
var Frameworks = []Framework{
	FrameworkDOM,
	FrameworkAngular,
	FrameworkReact,
	FrameworkVue,
	FrameworkSvelte,
	FrameworkMarko,
}
