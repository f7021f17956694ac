package rom

import (
	"github.com/alttpo/smrom/internal/address"
	"github.com/alttpo/smrom/internal/record"
)

// Checksum is the MD5 of the unheadered Super Metroid (JU) image.
var Checksum = [16]byte{
	0x21, 0xf3, 0xe9, 0x8d, 0xf4, 0x78, 0x0e, 0xe1,
	0xc6, 0x67, 0xb8, 0x4e, 0x57, 0xd8, 0x86, 0x75,
}

// Region is a half-open range of the image, reserved for relocated records
// or holding a table of fixed-size records.
type Region struct {
	Start address.LoRom
	End   address.LoRom
}

func (r Region) size() int {
	return int(r.End.PC()) - int(r.Start.PC())
}

func (r Region) contains(a address.LoRom) bool {
	return a.PC() >= r.Start.PC() && a.PC() < r.End.PC()
}

// DoorListRef names a door list whose length is known up front. Door lists
// of other rooms are sized by scanning for pointers into the door header
// table, then from the door blocks of their levels.
type DoorListRef struct {
	Pointer uint16 // bank $8F
	Count   int
}

// Layout holds the root tables the loader starts from and the regions the
// saver may write into.
type Layout struct {
	Checksum       [16]byte
	VerifyChecksum bool

	Tilesets     address.LoRom
	TilesetCount int
	CREGfx       address.LoRom
	CRETileTable address.LoRom

	Rooms       []address.LoRom
	DoorLists   []DoorListRef
	DoorHeaders Region

	SaveStationAreas address.LoRom
	SaveStations     address.LoRom
	Areas            int

	PaletteRegion Region
	LevelRegion   Region
}

// DefaultLayout returns the layout of the unmodified cartridge. Only the
// Crateria rooms are listed; every other room is reached through doors.
func DefaultLayout() Layout {
	return Layout{
		Checksum:       Checksum,
		VerifyChecksum: true,

		Tilesets:     0x8F_E6A2,
		TilesetCount: record.Tilesets,
		CREGfx:       0xB9_8000,
		CRETileTable: 0xB9_A09D,

		Rooms:       crateriaRooms(),
		DoorHeaders: Region{Start: 0x83_88FC, End: 0x84_8000},

		SaveStationAreas: 0x80_C4B5,
		SaveStations:     0x80_C4C5,
		Areas:            8,

		PaletteRegion: Region{Start: 0xC2_AD7C, End: 0xC2_C2BB},
		LevelRegion:   Region{Start: 0xC2_C2BB, End: 0xCF_8000},
	}
}

func crateriaRooms() []address.LoRom {
	offsets := []uint16{
		0x91F8, 0x92B3, 0x92FD, 0x93AA, 0x93D5, 0x93FE, 0x9461, 0x948C,
		0x94CC, 0x94FD, 0x9552, 0x957D, 0x95A8, 0x95D4, 0x95FF, 0x962A,
		0x965B, 0x968F, 0x96BA, 0x975C, 0x97B5, 0x9804, 0x9879, 0x990D,
		0x9938, 0x9969, 0x9994, 0x99BD, 0x99F9, 0x9A44, 0x9A90,
	}
	rooms := make([]address.LoRom, len(offsets))
	for i, o := range offsets {
		rooms[i] = address.Bank(record.StateBank, o)
	}
	return rooms
}
