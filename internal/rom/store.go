// Package rom loads the records of a Super Metroid cartridge image into
// address-keyed maps and writes modified records back.
package rom

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"

	"github.com/alttpo/smrom/internal/address"
	"github.com/alttpo/smrom/internal/lz5"
	"github.com/alttpo/smrom/internal/record"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Store owns a cartridge image and every record decoded from it. Records
// are keyed by the bus address they were read from and may be modified in
// place before saving.
type Store struct {
	logger *log.Logger
	layout Layout
	image  []byte

	Tilesets     []record.Tileset
	CREGfx       record.Gfx
	CRETileTable record.TileTable
	SaveStations [][]record.SaveStation

	palettes   map[address.LoRom]*record.Palette
	gfx        map[address.LoRom]record.Gfx
	tileTables map[address.LoRom]record.TileTable
	levels     map[address.LoRom]*record.LevelData
	rooms      map[address.LoRom]*record.Room
	states     map[address.LoRom]*record.State
	doors      map[address.LoRom]*record.Door
	doorLists  map[address.LoRom]record.DoorList

	// encoded sizes of the in-place records as loaded
	roomSizes     map[address.LoRom]int
	doorListSizes map[address.LoRom]int

	failedLevels map[address.LoRom]struct{}
	// compressed bytes of failed levels that decompress
	rawLevels map[address.LoRom][]byte

	unsizedDoorLists map[address.LoRom]struct{}
}

// maxDoorListBytes bounds the scan for door header pointers.
const maxDoorListBytes = 0x200

// Load decodes the image with the default layout.
func Load(data []byte, logger *log.Logger) (*Store, error) {
	return LoadWithLayout(data, DefaultLayout(), logger)
}

// LoadWithLayout decodes the image starting from the root tables of layout.
// The store works on a copy of data. Level data that fails to decode is
// logged and left out; any other failure aborts the load.
func LoadWithLayout(data []byte, layout Layout, logger *log.Logger) (*Store, error) {
	if layout.VerifyChecksum {
		if sum := md5.Sum(data); sum != layout.Checksum {
			return nil, fmt.Errorf("%w: md5 %x", ErrChecksumMismatch, sum)
		}
	}

	s := &Store{
		logger:        logger,
		layout:        layout,
		image:         slices.Clone(data),
		palettes:      map[address.LoRom]*record.Palette{},
		gfx:           map[address.LoRom]record.Gfx{},
		tileTables:    map[address.LoRom]record.TileTable{},
		levels:        map[address.LoRom]*record.LevelData{},
		rooms:         map[address.LoRom]*record.Room{},
		states:        map[address.LoRom]*record.State{},
		doors:         map[address.LoRom]*record.Door{},
		doorLists:     map[address.LoRom]record.DoorList{},
		roomSizes:     map[address.LoRom]int{},
		doorListSizes: map[address.LoRom]int{},
		failedLevels:  map[address.LoRom]struct{}{},
		rawLevels:     map[address.LoRom][]byte{},

		unsizedDoorLists: map[address.LoRom]struct{}{},
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"tilesets", s.loadTilesets},
		{"CRE", s.loadCRE},
		{"door lists", s.loadFixedDoorLists},
		{"rooms", s.loadRooms},
		{"save stations", s.loadSaveStations},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			return nil, fmt.Errorf("loading %s: %w", step.name, err)
		}
	}

	logger.Debug("Loaded image",
		log.Int("palettes", len(s.palettes)),
		log.Int("gfx", len(s.gfx)),
		log.Int("tile_tables", len(s.tileTables)),
		log.Int("rooms", len(s.rooms)),
		log.Int("states", len(s.states)),
		log.Int("levels", len(s.levels)),
		log.Int("doors", len(s.doors)),
	)
	return s, nil
}

// Bytes returns the image including every save made so far.
func (s *Store) Bytes() []byte { return s.image }

// Layout returns the layout the store was loaded with.
func (s *Store) Layout() Layout { return s.layout }

// at returns the image from addr to its end.
func (s *Store) at(addr address.LoRom) ([]byte, error) {
	pc := int(addr.PC())
	if pc >= len(s.image) {
		return nil, fmt.Errorf("%w: %s maps to %s outside image of %d bytes",
			record.ErrMalformedRecord, addr, addr.PC(), len(s.image))
	}
	return s.image[pc:], nil
}

func (s *Store) decompress(addr address.LoRom) ([]byte, error) {
	b, err := s.at(addr)
	if err != nil {
		return nil, err
	}
	data, err := lz5.Decompress(b)
	if err != nil {
		return nil, fmt.Errorf("decompressing %s: %w", addr, err)
	}
	return data, nil
}

func (s *Store) loadTilesets() error {
	b, err := s.at(s.layout.Tilesets)
	if err != nil {
		return err
	}
	size := s.layout.TilesetCount * record.TilesetBytes
	if len(b) < size {
		return fmt.Errorf("%w: tileset table at %s truncated", record.ErrMalformedRecord, s.layout.Tilesets)
	}
	if s.Tilesets, err = record.DecodeTilesets(b[:size]); err != nil {
		return err
	}

	for i := range s.Tilesets {
		ts := &s.Tilesets[i]
		if err := s.loadPalette(ts.Palette); err != nil {
			return fmt.Errorf("tileset %d: %w", i, err)
		}
		if err := s.loadGfx(ts.Gfx); err != nil {
			return fmt.Errorf("tileset %d: %w", i, err)
		}
		if err := s.loadTileTable(ts.TileTable); err != nil {
			return fmt.Errorf("tileset %d: %w", i, err)
		}
	}
	return nil
}

func (s *Store) loadPalette(addr address.LoRom) error {
	if _, ok := s.palettes[addr]; ok {
		return nil
	}
	data, err := s.decompress(addr)
	if err != nil {
		return err
	}
	p, err := record.DecodePalette(data)
	if err != nil {
		return fmt.Errorf("palette %s: %w", addr, err)
	}
	s.palettes[addr] = &p
	s.logger.Debug("Loaded palette", log.Hex("address", uint32(addr)))
	return nil
}

func (s *Store) loadGfx(addr address.LoRom) error {
	if _, ok := s.gfx[addr]; ok {
		return nil
	}
	data, err := s.decompress(addr)
	if err != nil {
		return err
	}
	g, err := record.DecodeGfx(data)
	if err != nil {
		return fmt.Errorf("gfx %s: %w", addr, err)
	}
	s.gfx[addr] = g
	s.logger.Debug("Loaded gfx", log.Hex("address", uint32(addr)), log.Int("tiles", len(g)))
	return nil
}

func (s *Store) loadTileTable(addr address.LoRom) error {
	if _, ok := s.tileTables[addr]; ok {
		return nil
	}
	data, err := s.decompress(addr)
	if err != nil {
		return err
	}
	tt, err := record.DecodeTileTable(data)
	if err != nil {
		return fmt.Errorf("tile table %s: %w", addr, err)
	}
	s.tileTables[addr] = tt
	s.logger.Debug("Loaded tile table", log.Hex("address", uint32(addr)), log.Int("tiles", len(tt)))
	return nil
}

func (s *Store) loadCRE() error {
	data, err := s.decompress(s.layout.CREGfx)
	if err != nil {
		return err
	}
	if s.CREGfx, err = record.DecodeGfx(data); err != nil {
		return err
	}

	if data, err = s.decompress(s.layout.CRETileTable); err != nil {
		return err
	}
	if s.CRETileTable, err = record.DecodeTileTable(data); err != nil {
		return err
	}
	return nil
}

// loadRooms loads the rooms of the layout with their states, levels, door
// lists and doors. Doors lead to further rooms, which are loaded the same
// way until no new room turns up.
func (s *Store) loadRooms() error {
	queue := slices.Clone(s.layout.Rooms)
	for _, listAddr := range s.DoorListAddresses() {
		next, err := s.loadDoors(listAddr)
		if err != nil {
			return err
		}
		queue = append(queue, next...)
	}

	for len(queue) > 0 {
		addr := queue[0]
		queue = queue[1:]
		if _, ok := s.rooms[addr]; ok || addr.Offset() < 0x8000 {
			continue
		}

		room, err := s.loadRoom(addr)
		if err != nil {
			return err
		}
		if err = s.loadStates(addr, room); err != nil {
			return err
		}

		listAddr, ok, err := s.loadRoomDoorList(addr, room)
		if err != nil {
			return fmt.Errorf("room %s: %w", addr, err)
		}
		if !ok {
			continue
		}
		next, err := s.loadDoors(listAddr)
		if err != nil {
			return err
		}
		queue = append(queue, next...)
	}
	return nil
}

func (s *Store) loadRoom(addr address.LoRom) (*record.Room, error) {
	b, err := s.at(addr)
	if err != nil {
		return nil, err
	}
	r, err := record.DecodeRoom(addr, b)
	if err != nil {
		return nil, err
	}
	s.rooms[addr] = r
	s.roomSizes[addr] = len(r.Bytes())
	s.logger.Debug("Loaded room",
		log.Hex("address", uint32(addr)),
		log.Int("states", len(r.StateConditions)),
	)
	return r, nil
}

// loadStates walks the state conditions of a room and loads each state and
// its level data once.
func (s *Store) loadStates(roomAddr address.LoRom, room *record.Room) error {
	for _, addr := range room.States() {
		st, ok := s.states[addr]
		if !ok {
			b, err := s.at(addr)
			if err != nil {
				return err
			}
			if st, err = record.DecodeState(b); err != nil {
				return fmt.Errorf("room %s state %s: %w", roomAddr, addr, err)
			}
			s.states[addr] = st
		}
		s.loadLevel(st)
	}
	return nil
}

// loadLevel decodes the level of a state. A level that decompresses but
// does not decode keeps its compressed bytes so a save can move it intact.
func (s *Store) loadLevel(st *record.State) {
	addr := st.Level
	if _, ok := s.levels[addr]; ok {
		return
	}
	if _, ok := s.failedLevels[addr]; ok {
		return
	}

	b, err := s.at(addr)
	if err != nil {
		s.skipLevel(addr, err)
		return
	}
	data, n, err := lz5.DecompressN(b)
	if err != nil {
		s.skipLevel(addr, fmt.Errorf("decompressing %s: %w", addr, err))
		return
	}
	level, err := record.DecodeLevelData(data, st.HasLayer2())
	if err != nil {
		s.rawLevels[addr] = slices.Clone(b[:n])
		s.skipLevel(addr, err)
		return
	}

	s.levels[addr] = level
	s.logger.Debug("Loaded level data",
		log.Hex("address", uint32(addr)),
		log.Int("blocks", len(level.Layer1)),
		log.Int("compressed", n),
	)
}

func (s *Store) skipLevel(addr address.LoRom, err error) {
	s.failedLevels[addr] = struct{}{}
	s.logger.Warn("Skipping level data", log.Hex("address", uint32(addr)), log.Err(err))
}

// loadFixedDoorLists loads the door lists whose length the layout names.
func (s *Store) loadFixedDoorLists() error {
	for _, ref := range s.layout.DoorLists {
		if err := s.loadDoorList(address.Bank(record.StateBank, ref.Pointer), ref.Count); err != nil {
			return err
		}
	}
	return nil
}

// loadRoomDoorList loads the door list of a room that the layout does not
// size. Its length is the run of door header pointers at the list, or
// failing that the door blocks of the room's levels. A list that cannot be
// sized is recorded and reported false.
func (s *Store) loadRoomDoorList(roomAddr address.LoRom, room *record.Room) (address.LoRom, bool, error) {
	addr := address.Bank(record.StateBank, room.DoorList)
	if _, ok := s.doorLists[addr]; ok {
		return addr, true, nil
	}

	count := s.scanDoorList(addr)
	if count == 0 {
		count = s.roomDoorCount(room)
	}
	if count == 0 {
		s.unsizedDoorLists[addr] = struct{}{}
		s.logger.Warn("Door list length unknown",
			log.Hex("room", uint32(roomAddr)),
			log.Hex("address", uint32(addr)),
		)
		return addr, false, nil
	}
	if err := s.loadDoorList(addr, count); err != nil {
		return addr, false, err
	}
	return addr, true, nil
}

// scanDoorList counts the words at addr that point at a door header of the
// layout's door header table. The run stops at the first other word or
// where another known record starts.
func (s *Store) scanDoorList(addr address.LoRom) int {
	table := s.layout.DoorHeaders
	if table.size() <= 0 {
		return 0
	}
	b, err := s.at(addr)
	if err != nil {
		return 0
	}

	count := 0
	for i := 0; i+2 <= len(b) && i < maxDoorListBytes; i += 2 {
		if i > 0 && s.isRecordStart(addr+address.LoRom(i)) {
			break
		}
		p := address.Bank(table.Start.Bank(), binary.LittleEndian.Uint16(b[i:]))
		if !table.contains(p) || int(p-table.Start)%record.DoorBytes != 0 {
			break
		}
		count++
	}
	return count
}

func (s *Store) isRecordStart(addr address.LoRom) bool {
	if _, ok := s.rooms[addr]; ok {
		return true
	}
	if _, ok := s.states[addr]; ok {
		return true
	}
	if _, ok := s.doorLists[addr]; ok {
		return true
	}
	return slices.Contains(s.layout.Rooms, addr)
}

func (s *Store) roomDoorCount(room *record.Room) int {
	count := 0
	for _, addr := range room.States() {
		if level, ok := s.levels[s.states[addr].Level]; ok {
			count = max(count, level.DoorCount())
		}
	}
	return count
}

func (s *Store) loadDoorList(addr address.LoRom, count int) error {
	if _, ok := s.doorLists[addr]; ok {
		return nil
	}
	b, err := s.at(addr)
	if err != nil {
		return err
	}
	dl, err := record.DecodeDoorList(count, b)
	if err != nil {
		return fmt.Errorf("door list %s: %w", addr, err)
	}
	s.doorLists[addr] = dl
	s.doorListSizes[addr] = len(dl)
	return nil
}

// loadDoors loads every door header named by a door list and returns the
// rooms they lead to. Pointers below $8000 do not point at door headers and
// are skipped.
func (s *Store) loadDoors(listAddr address.LoRom) ([]address.LoRom, error) {
	var rooms []address.LoRom
	for _, addr := range s.doorLists[listAddr].Doors() {
		if addr.Offset() < 0x8000 {
			s.logger.Debug("Skipping door pointer",
				log.Hex("list", uint32(listAddr)),
				log.Hex("address", uint32(addr)),
			)
			continue
		}
		d, ok := s.doors[addr]
		if !ok {
			b, err := s.at(addr)
			if err != nil {
				return nil, err
			}
			doors, err := record.DecodeDoors(1, b)
			if err != nil {
				return nil, fmt.Errorf("door %s: %w", addr, err)
			}
			d = &doors[0]
			s.doors[addr] = d
		}
		rooms = append(rooms, d.Destination())
	}
	return rooms, nil
}

func (s *Store) loadSaveStations() error {
	table, err := s.at(s.layout.SaveStationAreas)
	if err != nil {
		return err
	}
	data, err := s.at(s.layout.SaveStations)
	if err != nil {
		return err
	}
	s.SaveStations, err = record.DecodeSaveStations(data, table, s.layout.Areas)
	return err
}

// Palette returns the palette loaded from addr.
func (s *Store) Palette(addr address.LoRom) (*record.Palette, bool) {
	p, ok := s.palettes[addr]
	return p, ok
}

func (s *Store) Gfx(addr address.LoRom) (record.Gfx, bool) {
	g, ok := s.gfx[addr]
	return g, ok
}

func (s *Store) TileTable(addr address.LoRom) (record.TileTable, bool) {
	tt, ok := s.tileTables[addr]
	return tt, ok
}

func (s *Store) Level(addr address.LoRom) (*record.LevelData, bool) {
	l, ok := s.levels[addr]
	return l, ok
}

func (s *Store) Room(addr address.LoRom) (*record.Room, bool) {
	r, ok := s.rooms[addr]
	return r, ok
}

func (s *Store) State(addr address.LoRom) (*record.State, bool) {
	st, ok := s.states[addr]
	return st, ok
}

func (s *Store) Door(addr address.LoRom) (*record.Door, bool) {
	d, ok := s.doors[addr]
	return d, ok
}

func (s *Store) DoorList(addr address.LoRom) (record.DoorList, bool) {
	dl, ok := s.doorLists[addr]
	return dl, ok
}

func (s *Store) PaletteAddresses() []address.LoRom { return sortedKeys(s.palettes) }
func (s *Store) GfxAddresses() []address.LoRom { return sortedKeys(s.gfx) }
func (s *Store) TileTableAddresses() []address.LoRom { return sortedKeys(s.tileTables) }
func (s *Store) LevelAddresses() []address.LoRom { return sortedKeys(s.levels) }
func (s *Store) RoomAddresses() []address.LoRom { return sortedKeys(s.rooms) }
func (s *Store) StateAddresses() []address.LoRom { return sortedKeys(s.states) }
func (s *Store) DoorAddresses() []address.LoRom { return sortedKeys(s.doors) }
func (s *Store) DoorListAddresses() []address.LoRom { return sortedKeys(s.doorLists) }

// SkippedLevels returns the level data addresses that failed to decode.
func (s *Store) SkippedLevels() []address.LoRom { return sortedKeys(s.failedLevels) }

// UnsizedDoorLists returns the door list addresses of rooms whose list
// length could not be determined. Their doors are not loaded.
func (s *Store) UnsizedDoorLists() []address.LoRom { return sortedKeys(s.unsizedDoorLists) }

func sortedKeys[V any](m map[address.LoRom]V) []address.LoRom {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}
