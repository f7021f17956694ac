package main

import (
	"fmt"

	"github.com/alttpo/smrom/internal/record"
)

// mapTilePx is the size of one area map square, which covers one screen of
// a room, in the area composite.
const mapTilePx = 32

// MapTile is the position of a room screen on its area map.
type MapTile struct {
	Area uint8
	X, Y int
}

func (m MapTile) String() string {
	return fmt.Sprintf("area %d (%d,%d)", m.Area, m.X, m.Y)
}

// RoomMapTile returns the area map square of a room's top-left screen.
func RoomMapTile(r *record.Room) MapTile {
	return MapTile{Area: r.Area, X: int(r.MapX), Y: int(r.MapY)}
}

// AbsTopLeft returns the top-left pixel of the square in the area composite.
func (m MapTile) AbsTopLeft() (x, y int) {
	return m.X * mapTilePx, m.Y * mapTilePx
}

// areaBounds returns the extent of the rooms in map squares.
func areaBounds(rooms []*record.Room) (w, h int) {
	for _, r := range rooms {
		w = max(w, int(r.MapX)+int(r.Width))
		h = max(h, int(r.MapY)+int(r.Height))
	}
	return
}
