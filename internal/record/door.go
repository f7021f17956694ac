package record

import "github.com/alttpo/smrom/internal/address"

const (
	DoorBytes = 12

	// DoorBank holds door headers.
	DoorBank = 0x83
)

// Door is a door header: where the door leads and where Samus appears.
type Door struct {
	DestinationRoom   uint16 // bank $8F
	Elevator          uint8
	Orientation       uint8
	XLow              uint8
	YLow              uint8
	XHigh             uint8
	YHigh             uint8
	SamusDoorDistance uint16
	CustomASM         uint16 // bank $8F
}

// DecodeDoors decodes n consecutive door headers.
func DecodeDoors(n int, b []byte) ([]Door, error) {
	if len(b) < n*DoorBytes {
		return nil, malformed("door", "%d bytes for %d doors", len(b), n)
	}

	doors := make([]Door, n)
	for i := range doors {
		d := b[i*DoorBytes:]
		doors[i] = Door{
			DestinationRoom:   read16(d, 0),
			Elevator:          d[2],
			Orientation:       d[3],
			XLow:              d[4],
			YLow:              d[5],
			XHigh:             d[6],
			YHigh:             d[7],
			SamusDoorDistance: read16(d, 8),
			CustomASM:         read16(d, 10),
		}
	}
	return doors, nil
}

func (d *Door) Bytes() []byte {
	out := make([]byte, 0, DoorBytes)
	out = append16(out, d.DestinationRoom)
	out = append(out, d.Elevator, d.Orientation, d.XLow, d.YLow, d.XHigh, d.YHigh)
	out = append16(out, d.SamusDoorDistance)
	out = append16(out, d.CustomASM)
	return out
}

// Destination returns the bus address of the room the door leads to.
func (d *Door) Destination() address.LoRom {
	return address.Bank(StateBank, d.DestinationRoom)
}

// DoorList is a room's list of door header pointers into bank $83, indexed
// by the BTS of the room's door blocks.
type DoorList []uint16

func DecodeDoorList(n int, b []byte) (DoorList, error) {
	if len(b) < n*2 {
		return nil, malformed("door list", "%d bytes for %d doors", len(b), n)
	}

	dl := make(DoorList, n)
	for i := range dl {
		dl[i] = read16(b, i*2)
	}
	return dl, nil
}

func (dl DoorList) Bytes() []byte {
	out := make([]byte, 0, len(dl)*2)
	for _, p := range dl {
		out = append16(out, p)
	}
	return out
}

// Doors returns the bus addresses of every door header in the list.
func (dl DoorList) Doors() []address.LoRom {
	out := make([]address.LoRom, len(dl))
	for i, p := range dl {
		out[i] = address.Bank(DoorBank, p)
	}
	return out
}
