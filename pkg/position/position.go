// Package position holds the zero-based line/character coordinates shared by
// both syntax trees, the classifier and the location builder.
package position

import (
	"fmt"
	"sort"
	"unicode/utf16"
	"unicode/utf8"
)

// Position is a zero-based line/character pair. Character counts UTF-16 code
// units, the same unit an editor client sends.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is half-open: Start is inside, End is not.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// New returns the zero-based position (line, character).
func New(line, character int) Position {
	return Position{Line: line, Character: character}
}

// NewRange builds a range from two (line, character) pairs.
func NewRange(startLine, startCharacter, endLine, endCharacter int) Range {
	return Range{
		Start: Position{Line: startLine, Character: startCharacter},
		End:   Position{Line: endLine, Character: endCharacter},
	}
}

// Compare orders positions by line, then character. It returns -1, 0 or 1.
func Compare(a, b Position) int {
	switch {
	case a.Line < b.Line:
		return -1
	case a.Line > b.Line:
		return 1
	case a.Character < b.Character:
		return -1
	case a.Character > b.Character:
		return 1
	}
	return 0
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Character)
}

// Contains reports whether pos is >= Start and < End.
func (r Range) Contains(pos Position) bool {
	return Compare(r.Start, pos) <= 0 && Compare(pos, r.End) < 0
}

func (r Range) String() string {
	return fmt.Sprintf("%s-%s", r.Start, r.End)
}

// Mapper converts between byte offsets into a text and Positions.
type Mapper struct {
	text       string
	lineStarts []int
}

func NewMapper(text string) *Mapper {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Mapper{text: text, lineStarts: starts}
}

// Position returns the Position of a byte offset. Offsets past the end of the
// text are clamped to the end.
func (m *Mapper) Position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(m.text) {
		offset = len(m.text)
	}

	line := sort.Search(len(m.lineStarts), func(i int) bool {
		return m.lineStarts[i] > offset
	}) - 1

	character := 0
	for _, r := range m.text[m.lineStarts[line]:offset] {
		character += utf16Len(r)
	}

	return Position{Line: line, Character: character}
}

func (m *Mapper) Range(start, end int) Range {
	return Range{Start: m.Position(start), End: m.Position(end)}
}

// Offset returns the byte offset of pos. A character past the end of its line
// resolves to the line end; a line past the end of the text resolves to the
// text end.
func (m *Mapper) Offset(pos Position) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(m.lineStarts) {
		return len(m.text)
	}

	offset := m.lineStarts[pos.Line]
	units := 0
	for offset < len(m.text) && units < pos.Character {
		r, size := utf8.DecodeRuneInString(m.text[offset:])
		if r == '\n' {
			break
		}
		units += utf16Len(r)
		offset += size
	}

	return offset
}

func utf16Len(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}

// UTF16Len is the length of s in UTF-16 code units, the unit LSP characters
// are counted in.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16Len(r)
	}
	return n
}
