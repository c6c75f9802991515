package protocol

import "github.com/walteh/emberls/pkg/position"

func NonNilSlice[T any](x []T) []T {
	if x == nil {
		return []T{}
	}
	return x
}

// ToPosition converts an editor position. Both count UTF-16 code units.
func ToPosition(p Position) position.Position {
	return position.New(int(p.Line), int(p.Character))
}

func FromPosition(p position.Position) Position {
	return Position{Line: uint32(p.Line), Character: uint32(p.Character)}
}

func FromRange(r position.Range) Range {
	return Range{Start: FromPosition(r.Start), End: FromPosition(r.End)}
}
