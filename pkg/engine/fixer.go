package engine

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/testinglint/pkg/domain"
)

// FixFunc computes the edits of a fix. Returning no edits marks the
// finding as unfixable.
type FixFunc func(f *Fixer) []domain.TextEdit

// Fixer builds text edits against the current source.
type Fixer struct {
	src []byte
}

// NewFixer returns a fixer over src.
func NewFixer(src []byte) *Fixer {
	return &Fixer{src: src}
}

func (f *Fixer) InsertBefore(n *sitter.Node, text string) domain.TextEdit {
	return f.InsertAt(int(n.StartByte()), text)
}

func (f *Fixer) InsertAfter(n *sitter.Node, text string) domain.TextEdit {
	return f.InsertAt(int(n.EndByte()), text)
}

func (f *Fixer) InsertAt(offset int, text string) domain.TextEdit {
	return domain.TextEdit{Start: offset, End: offset, Text: text}
}

func (f *Fixer) Replace(n *sitter.Node, text string) domain.TextEdit {
	return f.ReplaceRange(int(n.StartByte()), int(n.EndByte()), text)
}

func (f *Fixer) ReplaceRange(start, end int, text string) domain.TextEdit {
	return domain.TextEdit{Start: start, End: end, Text: text}
}

func (f *Fixer) Remove(n *sitter.Node) domain.TextEdit {
	return f.ReplaceRange(int(n.StartByte()), int(n.EndByte()), "")
}

func (f *Fixer) RemoveRange(start, end int) domain.TextEdit {
	return f.ReplaceRange(start, end, "")
}

// Source returns the text the edits apply to.
func (f *Fixer) Source() []byte {
	return f.src
}
