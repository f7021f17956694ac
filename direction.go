package main

// Direction is the side of a room a door leads out of.
type Direction uint8

const (
	DirNorth Direction = iota
	DirSouth
	DirWest
	DirEast
	DirNone
)

// DoorDirection decodes a door header orientation. Bit 2 only marks doors
// that close behind Samus and does not change the direction.
func DoorDirection(orientation uint8) Direction {
	switch orientation & 3 {
	case 0:
		return DirEast
	case 1:
		return DirWest
	case 2:
		return DirSouth
	case 3:
		return DirNorth
	}
	return DirNone
}

// ClosesBehind reports whether a door with the given orientation shuts
// after Samus passes it.
func ClosesBehind(orientation uint8) bool {
	return orientation&4 != 0
}

func (d Direction) String() string {
	switch d {
	case DirNorth:
		return "north"
	case DirSouth:
		return "south"
	case DirWest:
		return "west"
	case DirEast:
		return "east"
	}
	return ""
}
