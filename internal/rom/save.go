package rom

import (
	"fmt"

	"github.com/alttpo/smrom/internal/address"
	"github.com/alttpo/smrom/internal/lz5"
	"github.com/alttpo/smrom/internal/record"
	"github.com/retroenv/retrogolib/log"
)

// Remap maps the old address of each relocated record to its new one.
type Remap map[address.LoRom]address.LoRom

// Save writes every record back into the image. Palettes and level data
// are recompressed into their regions, everything else is written in place.
// On error the image is partially written and should be discarded.
func (s *Store) Save() error {
	if _, err := s.SavePalettes(); err != nil {
		return err
	}
	if _, err := s.SaveLevels(); err != nil {
		return err
	}

	steps := []func() error{
		s.SaveStates,
		s.SaveRooms,
		s.SaveDoors,
		s.SaveDoorLists,
		s.SaveTilesets,
	}
	for _, fn := range steps {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}

// SavePalettes recompresses every palette into the palette region and
// points the tilesets at the new addresses. The store's palettes are
// rekeyed by their new addresses.
func (s *Store) SavePalettes() (Remap, error) {
	blobs := make(map[address.LoRom][]byte, len(s.palettes))
	for addr, p := range s.palettes {
		blobs[addr] = lz5.Compress(p.Bytes())
	}
	remap, err := s.relocate("palettes", blobs, s.layout.PaletteRegion)
	if err != nil {
		return nil, err
	}

	s.palettes = rekey(s.palettes, remap)
	for i := range s.Tilesets {
		ts := &s.Tilesets[i]
		if to, ok := remap[ts.Palette]; ok {
			ts.Palette = to
		}
	}
	return remap, nil
}

// SaveLevels recompresses every level into the level region and points the
// states at the new addresses. Levels that failed to decode but do
// decompress are moved with their original compressed bytes. A level that
// failed to decompress has no known length and cannot be moved, so the
// save fails before writing anything if one lies inside the region.
// The store's levels are rekeyed by their new addresses. States are only
// updated in memory; SaveStates writes them.
func (s *Store) SaveLevels() (Remap, error) {
	region := s.layout.LevelRegion
	for _, addr := range s.SkippedLevels() {
		if _, ok := s.rawLevels[addr]; !ok && region.contains(addr) {
			return nil, fmt.Errorf("%w: undecodable level %s lies in %s-%s",
				ErrRegionOccupied, addr, region.Start, region.End)
		}
	}

	blobs := make(map[address.LoRom][]byte, len(s.levels)+len(s.rawLevels))
	for addr, l := range s.levels {
		blobs[addr] = lz5.Compress(l.Bytes())
	}
	for addr, raw := range s.rawLevels {
		blobs[addr] = raw
	}
	remap, err := s.relocate("levels", blobs, region)
	if err != nil {
		return nil, err
	}

	s.levels = rekey(s.levels, remap)
	s.rawLevels = rekey(s.rawLevels, remap)
	s.failedLevels = rekey(s.failedLevels, remap)
	for _, st := range s.states {
		if to, ok := remap[st.Level]; ok {
			st.Level = to
		}
	}
	return remap, nil
}

// relocate writes the compressed blobs in ascending address order back to
// back from the start of region.
func (s *Store) relocate(kind string, blobs map[address.LoRom][]byte, region Region) (Remap, error) {
	remap := make(Remap, len(blobs))
	pc := int(region.Start.PC())
	end := int(region.End.PC())
	if end > len(s.image) {
		return nil, fmt.Errorf("%w: %s region ends at %s past image of %d bytes",
			ErrCapacityExceeded, kind, region.End, len(s.image))
	}

	used := 0
	for _, addr := range sortedKeys(blobs) {
		data := blobs[addr]
		if used+len(data) > region.size() {
			return nil, fmt.Errorf("%w: %s at %s needs %d bytes, %d left in %s-%s",
				ErrCapacityExceeded, kind, addr, len(data), region.size()-used, region.Start, region.End)
		}

		copy(s.image[pc+used:], data)
		remap[addr] = address.PC(pc + used).LoRom()
		used += len(data)
	}

	s.logger.Info("Relocated records",
		log.String("kind", kind),
		log.Int("count", len(blobs)),
		log.Hex("start", uint32(region.Start)),
		log.Int("used", used),
		log.Int("free", region.size()-used),
	)
	return remap, nil
}

func rekey[V any](records map[address.LoRom]V, remap Remap) map[address.LoRom]V {
	out := make(map[address.LoRom]V, len(records))
	for addr, v := range records {
		if to, ok := remap[addr]; ok {
			addr = to
		}
		out[addr] = v
	}
	return out
}

// SaveStates writes every state header back to its address.
func (s *Store) SaveStates() error {
	for _, addr := range s.StateAddresses() {
		if err := s.writeAt(addr, s.states[addr].Bytes(), record.StateBytes); err != nil {
			return fmt.Errorf("state %s: %w", addr, err)
		}
	}
	return nil
}

// SaveRooms writes every room header and state condition chain back to its
// address. A room whose chain changed length no longer fits and fails.
func (s *Store) SaveRooms() error {
	for _, addr := range s.RoomAddresses() {
		if err := s.writeAt(addr, s.rooms[addr].Bytes(), s.roomSizes[addr]); err != nil {
			return fmt.Errorf("room %s: %w", addr, err)
		}
	}
	return nil
}

// SaveDoors writes every door header back to its address.
func (s *Store) SaveDoors() error {
	for _, addr := range s.DoorAddresses() {
		if err := s.writeAt(addr, s.doors[addr].Bytes(), record.DoorBytes); err != nil {
			return fmt.Errorf("door %s: %w", addr, err)
		}
	}
	return nil
}

// SaveDoorLists writes every door list back to its address. Lists may not
// change length.
func (s *Store) SaveDoorLists() error {
	for _, addr := range s.DoorListAddresses() {
		if err := s.writeAt(addr, s.doorLists[addr].Bytes(), s.doorListSizes[addr]*2); err != nil {
			return fmt.Errorf("door list %s: %w", addr, err)
		}
	}
	return nil
}

// SaveTilesets writes the tileset table back to its address.
func (s *Store) SaveTilesets() error {
	data := make([]byte, 0, len(s.Tilesets)*record.TilesetBytes)
	for i := range s.Tilesets {
		data = append(data, s.Tilesets[i].Bytes()...)
	}
	return s.writeAt(s.layout.Tilesets, data, s.layout.TilesetCount*record.TilesetBytes)
}

// writeAt overwrites the slot of the given size at addr.
func (s *Store) writeAt(addr address.LoRom, data []byte, slot int) error {
	if len(data) != slot {
		return fmt.Errorf("%w: %d bytes for a slot of %d", ErrCapacityExceeded, len(data), slot)
	}
	pc := int(addr.PC())
	if pc+len(data) > len(s.image) {
		return fmt.Errorf("%w: %s past image of %d bytes", ErrCapacityExceeded, addr, len(s.image))
	}
	copy(s.image[pc:], data)
	return nil
}
