package record

import "github.com/alttpo/smrom/internal/address"

const (
	StateBytes = 26

	// StateBank holds state headers and door lists.
	StateBank = 0x8F
)

// State is one variant of a room: its level data, scenery and scripts.
type State struct {
	Level          address.LoRom
	Tileset        uint8
	MusicDataIndex uint8
	MusicTrack     uint8
	FX             uint16
	EnemyPop       uint16
	EnemySet       uint16
	Layer2XScroll  uint8
	Layer2YScroll  uint8
	Scroll         uint16
	SpecialXRay    uint16
	MainASM        uint16
	PLMPop         uint16
	LibraryBG      uint16
	SetupASM       uint16
}

func DecodeState(b []byte) (*State, error) {
	if len(b) < StateBytes {
		return nil, malformed("state", "%d bytes, need %d", len(b), StateBytes)
	}
	return &State{
		Level:          read24(b, 0),
		Tileset:        b[3],
		MusicDataIndex: b[4],
		MusicTrack:     b[5],
		FX:             read16(b, 6),
		EnemyPop:       read16(b, 8),
		EnemySet:       read16(b, 10),
		Layer2XScroll:  b[12],
		Layer2YScroll:  b[13],
		Scroll:         read16(b, 14),
		SpecialXRay:    read16(b, 16),
		MainASM:        read16(b, 18),
		PLMPop:         read16(b, 20),
		LibraryBG:      read16(b, 22),
		SetupASM:       read16(b, 24),
	}, nil
}

func (s *State) Bytes() []byte {
	out := make([]byte, 0, StateBytes)
	out = append24(out, s.Level)
	out = append(out, s.Tileset, s.MusicDataIndex, s.MusicTrack)
	out = append16(out, s.FX)
	out = append16(out, s.EnemyPop)
	out = append16(out, s.EnemySet)
	out = append(out, s.Layer2XScroll, s.Layer2YScroll)
	out = append16(out, s.Scroll)
	out = append16(out, s.SpecialXRay)
	out = append16(out, s.MainASM)
	out = append16(out, s.PLMPop)
	out = append16(out, s.LibraryBG)
	out = append16(out, s.SetupASM)
	return out
}

// HasLayer2 reports whether the level data of this state carries a second
// block layer. Bit 0 set in both scroll values means layer 2 is a library
// background instead.
func (s *State) HasLayer2() bool {
	return s.Layer2XScroll&s.Layer2YScroll&1 == 0
}
