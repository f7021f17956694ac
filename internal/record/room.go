package record

import (
	"fmt"

	"github.com/alttpo/smrom/internal/address"
)

const RoomHeaderBytes = 11

// State condition codes. Each is a pointer to the bank $8F routine that
// tests it.
const (
	ConditionDefault = 0xE5E6
	ConditionDoor    = 0xE5EB
	ConditionEvent   = 0xE612
	ConditionBoss    = 0xE629
)

// Room is a room header followed by its state condition chain.
type Room struct {
	Index        uint8
	Area         uint8
	MapX         uint8
	MapY         uint8
	Width        uint8 // in screens
	Height       uint8 // in screens
	UpScroller   uint8
	DownScroller uint8
	CREBitset    uint8
	DoorList     uint16 // bank $8F

	// StateConditions ends with the ConditionDefault entry.
	StateConditions []StateCondition
}

// StateCondition selects State when Condition holds. Parameter is only
// meaningful for conditions that carry one, see ParameterSize.
type StateCondition struct {
	Condition uint16
	Parameter uint16
	State     uint16 // bank $8F
}

// ParameterSize returns the number of parameter bytes that follow a
// condition code.
func ParameterSize(condition uint16) int {
	switch condition {
	case ConditionDoor:
		return 2
	case ConditionEvent, ConditionBoss:
		return 1
	default:
		return 0
	}
}

func (sc StateCondition) String() string {
	switch ParameterSize(sc.Condition) {
	case 2:
		return fmt.Sprintf("%04X(%04X) -> %04X", sc.Condition, sc.Parameter, sc.State)
	case 1:
		return fmt.Sprintf("%04X(%02X) -> %04X", sc.Condition, sc.Parameter, sc.State)
	}
	return fmt.Sprintf("%04X -> %04X", sc.Condition, sc.State)
}

// DecodeRoom decodes the room header at addr. b must start at the header
// and extend at least past the end of its state condition chain.
//
// The default state has no pointer: its state header immediately follows
// the ConditionDefault code, so its State is synthesized from addr.
func DecodeRoom(addr address.LoRom, b []byte) (*Room, error) {
	if len(b) < RoomHeaderBytes {
		return nil, malformed("room", "header at %s is %d bytes", addr, len(b))
	}

	r := &Room{
		Index:        b[0],
		Area:         b[1],
		MapX:         b[2],
		MapY:         b[3],
		Width:        b[4],
		Height:       b[5],
		UpScroller:   b[6],
		DownScroller: b[7],
		CREBitset:    b[8],
		DoorList:     read16(b, 9),
	}

	pos := RoomHeaderBytes
	for {
		if pos+2 > len(b) {
			return nil, malformed("room", "state condition chain at %s runs past %d bytes", addr, len(b))
		}
		sc := StateCondition{Condition: read16(b, pos)}
		pos += 2

		if sc.Condition == ConditionDefault {
			sc.State = addr.Offset() + uint16(pos)
			r.StateConditions = append(r.StateConditions, sc)
			return r, nil
		}

		size := ParameterSize(sc.Condition)
		if pos+size+2 > len(b) {
			return nil, malformed("room", "state condition %04X at %s truncated", sc.Condition, addr)
		}
		switch size {
		case 2:
			sc.Parameter = read16(b, pos)
		case 1:
			sc.Parameter = uint16(b[pos])
		}
		pos += size
		sc.State = read16(b, pos)
		pos += 2

		r.StateConditions = append(r.StateConditions, sc)
	}
}

// Bytes encodes the header and the state condition chain. A room decoded
// from the image encodes to the same number of bytes it was read from.
func (r *Room) Bytes() []byte {
	out := make([]byte, 0, RoomHeaderBytes+len(r.StateConditions)*6)
	out = append(out,
		r.Index,
		r.Area,
		r.MapX,
		r.MapY,
		r.Width,
		r.Height,
		r.UpScroller,
		r.DownScroller,
		r.CREBitset,
	)
	out = append16(out, r.DoorList)

	for _, sc := range r.StateConditions {
		out = append16(out, sc.Condition)
		if sc.Condition == ConditionDefault {
			break
		}
		switch ParameterSize(sc.Condition) {
		case 2:
			out = append16(out, sc.Parameter)
		case 1:
			out = append(out, uint8(sc.Parameter))
		}
		out = append16(out, sc.State)
	}
	return out
}

// Blocks returns the room's size in 16x16 blocks.
func (r *Room) Blocks() (width, height int) {
	return int(r.Width) * 16, int(r.Height) * 16
}

// States returns the bank $8F addresses of every state of the room in chain
// order.
func (r *Room) States() []address.LoRom {
	out := make([]address.LoRom, 0, len(r.StateConditions))
	for _, sc := range r.StateConditions {
		out = append(out, address.Bank(StateBank, sc.State))
	}
	return out
}
