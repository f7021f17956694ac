package rom

import (
	"crypto/md5"
	"errors"
	"testing"

	"github.com/alttpo/smrom/internal/address"
	"github.com/alttpo/smrom/internal/lz5"
	"github.com/alttpo/smrom/internal/record"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

// Addresses of the synthetic test image.
const (
	testTilesets     = address.LoRom(0x81_8000)
	testPalette      = address.LoRom(0x82_8000)
	testPaletteAlt   = address.LoRom(0x82_8400)
	testGfx          = address.LoRom(0x82_9000)
	testTileTable    = address.LoRom(0x82_A000)
	testCREGfx       = address.LoRom(0x82_B000)
	testCRETileTable = address.LoRom(0x82_B800)
	testDoors        = address.LoRom(0x83_8000)
	testLevel        = address.LoRom(0x84_8000)
	testBadLevel     = address.LoRom(0x84_9000)
	testRoomA        = address.LoRom(0x8F_8000)
	testRoomB        = address.LoRom(0x8F_8200)
	testStations     = address.LoRom(0x80_9010)
	testStationAreas = address.LoRom(0x80_9000)

	testImageSize    = 0x8_0000
	testTilesetCount = 0x10
)

type testImage struct {
	data []byte
}

func (ti *testImage) put(addr address.LoRom, data []byte) {
	copy(ti.data[addr.PC():], data)
}

func (ti *testImage) putCompressed(addr address.LoRom, data []byte) {
	ti.put(addr, lz5.Compress(data))
}

func testLayout() Layout {
	return Layout{
		Tilesets:     testTilesets,
		TilesetCount: testTilesetCount,
		CREGfx:       testCREGfx,
		CRETileTable: testCRETileTable,

		Rooms:       []address.LoRom{testRoomA, testRoomB},
		DoorLists:   []DoorListRef{{Pointer: 0x8310, Count: 1}},
		DoorHeaders: Region{Start: testDoors, End: testDoors + 0x100},

		SaveStationAreas: testStationAreas,
		SaveStations:     testStations,
		Areas:            3,

		PaletteRegion: Region{Start: 0x85_8000, End: 0x85_8400},
		LevelRegion:   Region{Start: 0x86_8000, End: 0x87_8000},
	}
}

func testPaletteData(seed byte) *record.Palette {
	var p record.Palette
	for i := range p {
		for j := range p[i] {
			v := seed + byte(i*16+j)
			p[i][j] = record.BGR555{R: v & 0x1F, G: (v >> 1) & 0x1F, B: (v >> 2) & 0x1F}
		}
	}
	return &p
}

func testLevelData() *record.LevelData {
	const blocks = 16 * 16
	l := &record.LevelData{
		Layer1: make([]record.Block, blocks),
		BTS:    make([]byte, blocks),
		Layer2: make([]record.Block, blocks),
	}
	for i := range l.Layer1 {
		l.Layer1[i] = record.Block{Type: record.BlockSolid, Number: uint16(i % 3)}
		l.Layer2[i] = record.Block{Number: 1}
	}
	l.Layer1[0] = record.Block{Type: record.BlockDoor, Number: 2}
	l.Layer1[15] = record.Block{Type: record.BlockDoor, XFlip: true, Number: 2}
	l.BTS[15] = 1
	return l
}

// newTestImage builds an image with two rooms sharing one level. Room A has
// a second state whose level data is corrupt, and its door list is not in
// the layout's fixed table.
func newTestImage() []byte {
	ti := &testImage{data: make([]byte, testImageSize)}

	tilesets := make([]byte, 0, testTilesetCount*record.TilesetBytes)
	for i := 0; i < testTilesetCount; i++ {
		ts := record.Tileset{TileTable: testTileTable, Gfx: testGfx, Palette: testPalette}
		if i == 1 {
			ts.Palette = testPaletteAlt
		}
		tilesets = append(tilesets, ts.Bytes()...)
	}
	ti.put(testTilesets, tilesets)

	ti.putCompressed(testPalette, testPaletteData(0).Bytes())
	ti.putCompressed(testPaletteAlt, testPaletteData(7).Bytes())

	gfx := make(record.Gfx, 2)
	gfx[0][0], gfx[1][63] = 1, 15
	ti.putCompressed(testGfx, gfx.Bytes())
	ti.putCompressed(testCREGfx, make(record.Gfx, 1).Bytes())

	tileTable := make(record.TileTable, 8)
	for i := range tileTable {
		tileTable[i] = record.Tile{SubPalette: uint8(i % 8), GfxIndex: uint16(i)}
	}
	ti.putCompressed(testTileTable, tileTable.Bytes())
	ti.putCompressed(testCRETileTable, make(record.TileTable, 4).Bytes())

	ti.putCompressed(testLevel, testLevelData().Bytes())
	ti.put(testBadLevel, []byte{0x80, 0x10, 0x00, 0xFF})

	roomA := &record.Room{
		MapX: 3, MapY: 4, Width: 1, Height: 1, DoorList: 0x8300,
		StateConditions: []record.StateCondition{
			{Condition: record.ConditionEvent, Parameter: 1, State: 0x8100},
			{Condition: record.ConditionDefault},
		},
	}
	roomABytes := roomA.Bytes()
	ti.put(testRoomA, roomABytes)
	ti.put(testRoomA+address.LoRom(len(roomABytes)), (&record.State{Level: testLevel}).Bytes())
	ti.put(address.Bank(record.StateBank, 0x8100), (&record.State{
		Level: testBadLevel, Tileset: 0x0F, Layer2XScroll: 1, Layer2YScroll: 1,
	}).Bytes())

	roomB := &record.Room{
		Area: 1, MapX: 4, MapY: 4, Width: 1, Height: 1, DoorList: 0x8310,
		StateConditions: []record.StateCondition{{Condition: record.ConditionDefault}},
	}
	roomBBytes := roomB.Bytes()
	ti.put(testRoomB, roomBBytes)
	ti.put(testRoomB+address.LoRom(len(roomBBytes)), (&record.State{Level: testLevel, Tileset: 1}).Bytes())

	ti.put(address.Bank(record.StateBank, 0x8300), record.DoorList{0x8000, 0x800C}.Bytes())
	ti.put(address.Bank(record.StateBank, 0x8310), record.DoorList{0x800C}.Bytes())
	ti.put(testDoors, (&record.Door{DestinationRoom: 0x8200, Orientation: 1}).Bytes())
	ti.put(testDoors+record.DoorBytes, (&record.Door{DestinationRoom: 0x8000, Orientation: 4}).Bytes())

	ti.put(testStationAreas, []byte{0x10, 0x90, 0x1E, 0x90, 0x1E, 0x90})
	ti.put(testStations, (&record.SaveStation{Room: 0x8000, Door: 0x8000, ScreenX: 0x0100}).Bytes())

	return ti.data
}

func loadTestImage(t *testing.T) *Store {
	t.Helper()
	s, err := LoadWithLayout(newTestImage(), testLayout(), log.NewTestLogger(t))
	assert.NoError(t, err)
	return s
}

func TestLoad(t *testing.T) {
	s := loadTestImage(t)

	assert.Len(t, s.Tilesets, testTilesetCount)
	assert.Equal(t, []address.LoRom{testPalette, testPaletteAlt}, s.PaletteAddresses())
	assert.Equal(t, []address.LoRom{testGfx}, s.GfxAddresses())
	assert.Equal(t, []address.LoRom{testTileTable}, s.TileTableAddresses())
	assert.Len(t, s.CREGfx, 1)
	assert.Len(t, s.CRETileTable, 4)

	p, ok := s.Palette(testPaletteAlt)
	assert.True(t, ok)
	assert.Equal(t, testPaletteData(7), p)

	assert.Equal(t, []address.LoRom{testRoomA, testRoomB}, s.RoomAddresses())
	assert.Len(t, s.StateAddresses(), 3)
	assert.Equal(t, []address.LoRom{testLevel}, s.LevelAddresses())
	assert.Equal(t, []address.LoRom{testBadLevel}, s.SkippedLevels())

	level, ok := s.Level(testLevel)
	assert.True(t, ok)
	assert.Equal(t, testLevelData(), level)

	dl, ok := s.DoorList(0x8F_8300)
	assert.True(t, ok)
	assert.Equal(t, record.DoorList{0x8000, 0x800C}, dl)
	assert.Equal(t, []address.LoRom{0x8F_8300, 0x8F_8310}, s.DoorListAddresses())
	assert.Equal(t, []address.LoRom{testDoors, testDoors + record.DoorBytes}, s.DoorAddresses())

	d, ok := s.Door(testDoors)
	assert.True(t, ok)
	assert.Equal(t, uint16(0x8200), d.DestinationRoom)

	assert.Len(t, s.SaveStations, 2)
	assert.Len(t, s.SaveStations[0], 1)
	assert.Empty(t, s.SaveStations[1])
	assert.Equal(t, uint16(0x0100), s.SaveStations[0][0].ScreenX)
}

func TestLoadDefaultStateAddress(t *testing.T) {
	s := loadTestImage(t)

	room, ok := s.Room(testRoomA)
	assert.True(t, ok)
	states := room.States()
	assert.Equal(t, address.LoRom(0x8F_8100), states[0])
	assert.Equal(t, testRoomA+address.LoRom(len(room.Bytes())), states[1])

	st, ok := s.State(states[1])
	assert.True(t, ok)
	assert.Equal(t, testLevel, st.Level)
}

func TestLoadChecksum(t *testing.T) {
	_, err := Load(make([]byte, 1024), log.NewTestLogger(t))
	assert.True(t, errors.Is(err, ErrChecksumMismatch))

	image := newTestImage()
	layout := testLayout()
	layout.VerifyChecksum = true
	layout.Checksum = md5.Sum(image)
	_, err = LoadWithLayout(image, layout, log.NewTestLogger(t))
	assert.NoError(t, err)

	image[0] ^= 0xFF
	_, err = LoadWithLayout(image, layout, log.NewTestLogger(t))
	assert.True(t, errors.Is(err, ErrChecksumMismatch))
}

func TestLoadRequiredRecordFails(t *testing.T) {
	image := newTestImage()
	copy(image[testGfx.PC():], []byte{0x80, 0x05, 0x00, 0xFF})

	_, err := LoadWithLayout(image, testLayout(), log.NewTestLogger(t))
	assert.True(t, errors.Is(err, lz5.ErrMalformedStream))
}

func TestLoadCopiesImage(t *testing.T) {
	image := newTestImage()
	s, err := LoadWithLayout(image, testLayout(), log.NewTestLogger(t))
	assert.NoError(t, err)

	image[0] = 0xAA
	assert.Equal(t, byte(0), s.Bytes()[0])
}

// corruptLevel makes the level shared by both rooms undecodable.
func corruptLevel(image []byte) {
	copy(image[testLevel.PC():], []byte{0x80, 0x05, 0x00, 0xFF})
}

func TestLoadDoorListsWithoutLevels(t *testing.T) {
	image := newTestImage()
	corruptLevel(image)
	layout := testLayout()
	layout.DoorLists = nil

	s, err := LoadWithLayout(image, layout, log.NewTestLogger(t))
	assert.NoError(t, err)
	assert.Empty(t, s.LevelAddresses())
	assert.Equal(t, []address.LoRom{testLevel, testBadLevel}, s.SkippedLevels())

	dl, ok := s.DoorList(0x8F_8300)
	assert.True(t, ok)
	assert.Equal(t, record.DoorList{0x8000, 0x800C}, dl)
	dl, ok = s.DoorList(0x8F_8310)
	assert.True(t, ok)
	assert.Equal(t, record.DoorList{0x800C}, dl)
	assert.Equal(t, []address.LoRom{testDoors, testDoors + record.DoorBytes}, s.DoorAddresses())
	assert.Empty(t, s.UnsizedDoorLists())
}

func TestLoadDoorListFromLevel(t *testing.T) {
	layout := testLayout()
	layout.DoorHeaders = Region{}

	s, err := LoadWithLayout(newTestImage(), layout, log.NewTestLogger(t))
	assert.NoError(t, err)

	dl, ok := s.DoorList(0x8F_8300)
	assert.True(t, ok)
	assert.Len(t, dl, 2)
	assert.Empty(t, s.UnsizedDoorLists())
}

func TestLoadUnsizedDoorList(t *testing.T) {
	image := newTestImage()
	corruptLevel(image)
	layout := testLayout()
	layout.DoorLists = nil
	layout.DoorHeaders = Region{}

	s, err := LoadWithLayout(image, layout, log.NewTestLogger(t))
	assert.NoError(t, err)
	assert.Equal(t, []address.LoRom{0x8F_8300, 0x8F_8310}, s.UnsizedDoorLists())
	assert.Empty(t, s.DoorListAddresses())
	assert.Empty(t, s.DoorAddresses())
}

func TestLoadScanStopsAtKnownRecord(t *testing.T) {
	image := newTestImage()
	// room B's list directly follows room A's
	copy(image[address.LoRom(0x8F_8304).PC():], record.DoorList{0x800C}.Bytes())
	room := &record.Room{
		Area: 1, MapX: 4, MapY: 4, Width: 1, Height: 1, DoorList: 0x8304,
		StateConditions: []record.StateCondition{{Condition: record.ConditionDefault}},
	}
	copy(image[testRoomB.PC():], room.Bytes())
	layout := testLayout()
	layout.DoorLists = []DoorListRef{{Pointer: 0x8304, Count: 1}}

	s, err := LoadWithLayout(image, layout, log.NewTestLogger(t))
	assert.NoError(t, err)

	dl, _ := s.DoorList(0x8F_8300)
	assert.Equal(t, record.DoorList{0x8000, 0x800C}, dl)
	dl, _ = s.DoorList(0x8F_8304)
	assert.Equal(t, record.DoorList{0x800C}, dl)
}

func TestLoadFollowsDoors(t *testing.T) {
	layout := testLayout()
	layout.Rooms = []address.LoRom{testRoomA}
	layout.DoorLists = nil

	s, err := LoadWithLayout(newTestImage(), layout, log.NewTestLogger(t))
	assert.NoError(t, err)

	assert.Equal(t, []address.LoRom{testRoomA, testRoomB}, s.RoomAddresses())
	assert.Len(t, s.StateAddresses(), 3)
	assert.Equal(t, []address.LoRom{0x8F_8300, 0x8F_8310}, s.DoorListAddresses())

	room, ok := s.Room(testRoomB)
	assert.True(t, ok)
	assert.Equal(t, uint8(1), room.Area)
}
