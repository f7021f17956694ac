package rom

import (
	"fmt"

	"github.com/alttpo/smrom/internal/address"
	"github.com/alttpo/smrom/internal/record"
	"golang.org/x/exp/slices"
)

// creGap is the number of blank tiles between an area's gfx and the CRE gfx
// in VRAM.
const creGap = 64

// GfxWithCRE returns the gfx at addr followed by the blank gap and the CRE
// tiles. The stored gfx is not modified.
func (s *Store) GfxWithCRE(addr address.LoRom) (record.Gfx, error) {
	g, ok := s.gfx[addr]
	if !ok {
		return nil, fmt.Errorf("%w: gfx %s", ErrNotLoaded, addr)
	}
	out := make(record.Gfx, 0, len(g)+creGap+len(s.CREGfx))
	out = append(out, g...)
	out = append(out, make(record.Gfx, creGap)...)
	out = append(out, s.CREGfx...)
	return out, nil
}

// TileTableWithCRE returns the CRE tile table followed by the tile table at
// addr. The stored tile table is not modified.
func (s *Store) TileTableWithCRE(addr address.LoRom) (record.TileTable, error) {
	tt, ok := s.tileTables[addr]
	if !ok {
		return nil, fmt.Errorf("%w: tile table %s", ErrNotLoaded, addr)
	}
	out := make(record.TileTable, 0, len(s.CRETileTable)+len(tt))
	out = append(out, s.CRETileTable...)
	out = append(out, tt...)
	return out, nil
}

// StateData is everything needed to draw one room state.
type StateData struct {
	Level     *record.LevelData
	Tileset   record.Tileset
	Palette   *record.Palette
	Gfx       record.Gfx
	TileTable record.TileTable
}

// StateData resolves the records a state refers to, with the CRE composed
// in when its tileset uses it.
func (s *Store) StateData(st *record.State) (*StateData, error) {
	level, ok := s.levels[st.Level]
	if !ok {
		return nil, fmt.Errorf("%w: level data %s", ErrNotLoaded, st.Level)
	}
	if int(st.Tileset) >= len(s.Tilesets) {
		return nil, fmt.Errorf("%w: tileset %d", ErrNotLoaded, st.Tileset)
	}
	ts := s.Tilesets[st.Tileset]

	palette, ok := s.palettes[ts.Palette]
	if !ok {
		return nil, fmt.Errorf("%w: palette %s", ErrNotLoaded, ts.Palette)
	}

	d := &StateData{
		Level:   level,
		Tileset: ts,
		Palette: palette,
	}

	var err error
	if ts.UseCRE {
		if d.Gfx, err = s.GfxWithCRE(ts.Gfx); err != nil {
			return nil, err
		}
		if d.TileTable, err = s.TileTableWithCRE(ts.TileTable); err != nil {
			return nil, err
		}
		return d, nil
	}

	g, ok := s.gfx[ts.Gfx]
	if !ok {
		return nil, fmt.Errorf("%w: gfx %s", ErrNotLoaded, ts.Gfx)
	}
	tt, ok := s.tileTables[ts.TileTable]
	if !ok {
		return nil, fmt.Errorf("%w: tile table %s", ErrNotLoaded, ts.TileTable)
	}
	d.Gfx, d.TileTable = slices.Clone(g), slices.Clone(tt)
	return d, nil
}
