package main

import (
	"fmt"

	"github.com/alttpo/smrom/internal/address"
	"github.com/alttpo/smrom/internal/record"
)

// Door is a door block of a level joined with the door header its BTS
// selects from the room's door list.
type Door struct {
	Pos    MapCoord
	Index  int // BTS, index into the door list
	Header address.LoRom
	Dir    Direction
	Closes bool
	To     address.LoRom
}

func (d *Door) String() string {
	s := fmt.Sprintf("door %d at %s -> room %s heading %s", d.Index, d.Pos, d.To, d.Dir)
	if d.Closes {
		s += " (closes)"
	}
	return s
}

// Blocks returns the doorway that starts at the door block: 4 blocks down
// for east and west doors, 4 blocks right for north and south doors, cut
// short at the edge of a level width by height blocks.
func (d *Door) Blocks(width, height int) []MapCoord {
	along := DirSouth
	if d.Dir == DirNorth || d.Dir == DirSouth {
		along = DirEast
	}

	blocks := []MapCoord{d.Pos}
	for t := d.Pos; len(blocks) < 4; {
		var ok bool
		if t, ok = t.MoveBy(along, 1, width, height); !ok {
			break
		}
		blocks = append(blocks, t)
	}
	return blocks
}

type doorSource interface {
	Door(addr address.LoRom) (*record.Door, bool)
}

// findDoors lists the door blocks of a level that start a doorway, joined
// with the headers they refer to. Door blocks whose BTS runs past the list
// or whose header did not load are skipped.
func findDoors(src doorSource, level *record.LevelData, width int, list record.DoorList) []Door {
	headers := list.Doors()
	doors := make([]Door, 0, len(headers))
	seen := make(map[int]bool)

	for i, b := range level.Layer1 {
		if !BlockType(b.Type).IsDoor() || i >= len(level.BTS) {
			continue
		}
		idx := int(level.BTS[i])
		if idx >= len(headers) || seen[idx] {
			continue
		}
		h, ok := src.Door(headers[idx])
		if !ok {
			continue
		}
		seen[idx] = true
		doors = append(doors, Door{
			Pos:    CoordOf(i, width),
			Index:  idx,
			Header: headers[idx],
			Dir:    DoorDirection(h.Orientation),
			Closes: ClosesBehind(h.Orientation),
			To:     h.Destination(),
		})
	}
	return doors
}
