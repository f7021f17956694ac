package main

import "fmt"

// MapCoord is the position of a 16x16 block inside a room's level grid.
type MapCoord struct {
	Row, Col int
}

// CoordOf returns the coordinate of the i-th block of a grid width blocks
// wide.
func CoordOf(i, width int) MapCoord {
	return MapCoord{Row: i / width, Col: i % width}
}

func (t MapCoord) String() string {
	return fmt.Sprintf("{%02x,%02x}", t.Row, t.Col)
}

// Pixel returns the top-left pixel of the block.
func (t MapCoord) Pixel() (x, y int) {
	return t.Col << 4, t.Row << 4
}

// MoveBy steps increment blocks in dir, failing when that leaves a grid of
// width by height blocks.
func (t MapCoord) MoveBy(dir Direction, increment, width, height int) (MapCoord, bool) {
	switch dir {
	case DirNorth:
		t.Row -= increment
	case DirSouth:
		t.Row += increment
	case DirWest:
		t.Col -= increment
	case DirEast:
		t.Col += increment
	default:
		return t, false
	}
	if t.Row < 0 || t.Row >= height || t.Col < 0 || t.Col >= width {
		return t, false
	}
	return t, true
}
