package record

// Tile is one 8x8 entry of a tile table: vhu ppp cccccccccc.
type Tile struct {
	YFlip      bool
	XFlip      bool
	Unknown    bool
	SubPalette uint8
	GfxIndex   uint16
}

// TileTable maps block numbers to 16x16 blocks, four tiles per block in
// top-left, top-right, bottom-left, bottom-right order.
type TileTable []Tile

// TilesPerBlock is the number of tile table entries one 16x16 block uses.
const TilesPerBlock = 4

func DecodeTileTable(b []byte) (TileTable, error) {
	if len(b)%2 != 0 {
		return nil, malformed("tile table", "odd length %d", len(b))
	}

	tt := make(TileTable, len(b)/2)
	for i := range tt {
		w := read16(b, i*2)
		tt[i] = Tile{
			YFlip:      w&0x8000 != 0,
			XFlip:      w&0x4000 != 0,
			Unknown:    w&0x2000 != 0,
			SubPalette: uint8(w >> 10 & 0b111),
			GfxIndex:   w & 0x3FF,
		}
	}
	return tt, nil
}

func (t Tile) Uint16() (w uint16) {
	if t.YFlip {
		w |= 0x8000
	}
	if t.XFlip {
		w |= 0x4000
	}
	if t.Unknown {
		w |= 0x2000
	}
	w |= uint16(t.SubPalette&0b111) << 10
	w |= t.GfxIndex & 0x3FF
	return
}

func (tt TileTable) Bytes() []byte {
	out := make([]byte, 0, len(tt)*2)
	for _, t := range tt {
		out = append16(out, t.Uint16())
	}
	return out
}

// Block returns the four tiles of a 16x16 block, or false when the table is
// too short.
func (tt TileTable) Block(n uint16) ([TilesPerBlock]Tile, bool) {
	var q [TilesPerBlock]Tile
	i := int(n) * TilesPerBlock
	if i+TilesPerBlock > len(tt) {
		return q, false
	}
	copy(q[:], tt[i:i+TilesPerBlock])
	return q, true
}
