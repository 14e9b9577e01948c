// Package tspool provides tree-sitter parsers for concurrent parsing.
//
// Parsers are created fresh for every parse. Reusing a parser after a
// cancelled ParseCtx leaves its cancel flag set and later parses fail
// with "operation limit was hit".
//
// Thread-safety: parsers returned by Get are NOT safe for concurrent use.
// Each goroutine must Get its own parser or use the Parse helper.
package tspool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/specvital/testinglint/pkg/domain"
)

// MaxTreeDepth is the maximum recursion depth when walking AST trees.
const MaxTreeDepth = 1000

// ErrUnknownLanguage is returned for languages without a grammar.
var ErrUnknownLanguage = errors.New("tspool: unknown language")

var (
	jsLang  *sitter.Language
	tsLang  *sitter.Language
	tsxLang *sitter.Language

	langOnce sync.Once
)

func initLanguages() {
	langOnce.Do(func() {
		jsLang = javascript.GetLanguage()
		tsLang = typescript.GetLanguage()
		tsxLang = tsx.GetLanguage()
	})
}

// GetLanguage returns the tree-sitter grammar for the given language.
// The JavaScript grammar covers JSX; TSX has its own grammar.
func GetLanguage(lang domain.Language) (*sitter.Language, error) {
	initLanguages()
	switch lang {
	case domain.LanguageJavaScript:
		return jsLang, nil
	case domain.LanguageTypeScript:
		return tsLang, nil
	case domain.LanguageTSX:
		return tsxLang, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, lang)
	}
}

// Get returns a parser for the given language.
// Caller MUST call parser.Close() when done to free resources.
func Get(lang domain.Language) (*sitter.Parser, error) {
	grammar, err := GetLanguage(lang)
	if err != nil {
		return nil, err
	}
	parser := sitter.NewParser()
	parser.SetLanguage(grammar)
	return parser, nil
}

// Parse parses source using a fresh parser.
// Caller MUST call tree.Close() to free resources.
func Parse(ctx context.Context, lang domain.Language, source []byte) (*sitter.Tree, error) {
	parser, err := Get(lang)
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s failed: %w", lang, err)
	}

	return tree, nil
}
