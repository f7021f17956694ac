package record

import "github.com/alttpo/smrom/internal/address"

const (
	TilesetBytes = 9
	Tilesets     = 0x1D

	// tilesets $0F-$13 are the Ceres station sets, which carry their own
	// common tiles instead of the CRE
	ceresFirst = 0x0F
	ceresEnd   = 0x14
)

// Tileset points at the compressed tile table, graphics and palette that
// make up one area's scenery.
type Tileset struct {
	TileTable address.LoRom
	Gfx       address.LoRom
	Palette   address.LoRom

	// UseCRE is derived from the tileset index and not stored.
	UseCRE bool
}

// DecodeTilesets decodes consecutive 9-byte tileset entries, numbering them
// from zero.
func DecodeTilesets(b []byte) ([]Tileset, error) {
	if len(b)%TilesetBytes != 0 {
		return nil, malformed("tileset", "%d bytes is not a multiple of %d", len(b), TilesetBytes)
	}

	ts := make([]Tileset, len(b)/TilesetBytes)
	for i := range ts {
		o := i * TilesetBytes
		ts[i] = Tileset{
			TileTable: read24(b, o),
			Gfx:       read24(b, o+3),
			Palette:   read24(b, o+6),
			UseCRE:    UsesCRE(i),
		}
	}
	return ts, nil
}

// UsesCRE reports whether the tileset at index i is composed with the CRE.
func UsesCRE(i int) bool {
	return !(i >= ceresFirst && i < ceresEnd)
}

func (t *Tileset) Bytes() []byte {
	out := make([]byte, 0, TilesetBytes)
	out = append24(out, t.TileTable)
	out = append24(out, t.Gfx)
	out = append24(out, t.Palette)
	return out
}
