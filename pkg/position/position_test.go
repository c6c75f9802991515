package position_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/emberls/pkg/position"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b position.Position
		want int
	}{
		{name: "earlier line", a: position.New(0, 0), b: position.New(1, 1), want: -1},
		{name: "same line earlier character", a: position.New(1, 0), b: position.New(1, 1), want: -1},
		{name: "equal", a: position.New(1, 1), b: position.New(1, 1), want: 0},
		{name: "same line later character", a: position.New(1, 1), b: position.New(1, 0), want: 1},
		{name: "later line", a: position.New(1, 1), b: position.New(0, 0), want: 1},
		{name: "line wins over character", a: position.New(0, 99), b: position.New(1, 0), want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, position.Compare(tt.a, tt.b))
			assert.Equal(t, -tt.want, position.Compare(tt.b, tt.a), "compare must be antisymmetric")
		})
	}
}

func TestCompare_TotalOrder(t *testing.T) {
	var all []position.Position
	for line := 0; line < 3; line++ {
		for char := 0; char < 3; char++ {
			all = append(all, position.New(line, char))
		}
	}

	for _, a := range all {
		for _, b := range all {
			assert.Equal(t, position.Compare(a, b), -position.Compare(b, a))
			for _, c := range all {
				if position.Compare(a, b) < 0 && position.Compare(b, c) < 0 {
					assert.Equal(t, -1, position.Compare(a, c), "%s < %s < %s", a, b, c)
				}
			}
		}
	}
}

func TestRange_Contains(t *testing.T) {
	r := position.NewRange(1, 4, 2, 3)

	assert.False(t, r.Contains(position.New(1, 3)))
	assert.True(t, r.Contains(position.New(1, 4)))
	assert.True(t, r.Contains(position.New(1, 80)))
	assert.True(t, r.Contains(position.New(2, 2)))
	assert.False(t, r.Contains(position.New(2, 3)), "end is exclusive")
	assert.False(t, position.NewRange(0, 0, 0, 0).Contains(position.New(0, 0)))
}

func TestMapper(t *testing.T) {
	text := "ab\n{{foo}}\n\nlast"
	m := position.NewMapper(text)

	tests := []struct {
		name   string
		offset int
		want   position.Position
	}{
		{name: "start", offset: 0, want: position.New(0, 0)},
		{name: "newline char belongs to its line", offset: 2, want: position.New(0, 2)},
		{name: "second line", offset: 5, want: position.New(1, 2)},
		{name: "empty line", offset: 11, want: position.New(2, 0)},
		{name: "last line", offset: 14, want: position.New(3, 2)},
		{name: "clamped", offset: 400, want: position.New(3, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Position(tt.offset)
			assert.Equal(t, tt.want, got)
			if tt.offset <= len(text) {
				assert.Equal(t, tt.offset, m.Offset(got), "offset round trip")
			}
		})
	}
}

func TestMapper_UTF16(t *testing.T) {
	text := "é😀x"
	m := position.NewMapper(text)

	// é is one UTF-16 unit, the emoji is two.
	require.Equal(t, position.New(0, 1), m.Position(2))
	require.Equal(t, position.New(0, 3), m.Position(6))
	assert.Equal(t, 6, m.Offset(position.New(0, 3)))
	assert.Equal(t, len(text), m.Offset(position.New(0, 50)))
	assert.Equal(t, len(text), m.Offset(position.New(9, 0)))
}

func TestNewRange(t *testing.T) {
	r := position.NewRange(1, 2, 3, 4)
	assert.Equal(t, position.Position{Line: 1, Character: 2}, r.Start)
	assert.Equal(t, position.Position{Line: 3, Character: 4}, r.End)
	assert.Equal(t, r.Start, position.New(1, 2))
}
