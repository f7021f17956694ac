package record

// TileBytes is the size of one 4bpp 8x8 tile.
const TileBytes = 32

// Tile8 holds the 64 palette indices of an 8x8 tile, row-major.
type Tile8 [64]uint8

// Gfx is a sheet of 4bpp tiles.
type Gfx []Tile8

// DecodeGfx decodes SNES 4bpp planar tiles. Bytes 0-15 hold bit-planes 0
// and 1 of each row interleaved, bytes 16-31 hold bit-planes 2 and 3; the
// leftmost pixel is the most significant bit.
func DecodeGfx(b []byte) (Gfx, error) {
	if len(b)%TileBytes != 0 {
		return nil, malformed("gfx", "%d bytes leaves a partial tile", len(b))
	}

	g := make(Gfx, len(b)/TileBytes)
	for t := range g {
		src := b[t*TileBytes : (t+1)*TileBytes]
		tile := &g[t]
		for r := 0; r < 8; r++ {
			p0, p1 := src[r<<1], src[r<<1+1]
			p2, p3 := src[16+r<<1], src[16+r<<1+1]
			for c := 0; c < 8; c++ {
				bit := 7 - c
				tile[r<<3+c] = p0>>bit&1 |
					(p1>>bit&1)<<1 |
					(p2>>bit&1)<<2 |
					(p3>>bit&1)<<3
			}
		}
	}
	return g, nil
}

// Bytes encodes the tiles back into 4bpp planar form.
func (g Gfx) Bytes() []byte {
	out := make([]byte, len(g)*TileBytes)
	for t := range g {
		dst := out[t*TileBytes : (t+1)*TileBytes]
		tile := &g[t]
		for r := 0; r < 8; r++ {
			for c := 0; c < 8; c++ {
				v := tile[r<<3+c]
				bit := 7 - c
				dst[r<<1] |= (v & 1) << bit
				dst[r<<1+1] |= (v >> 1 & 1) << bit
				dst[16+r<<1] |= (v >> 2 & 1) << bit
				dst[16+r<<1+1] |= (v >> 3 & 1) << bit
			}
		}
	}
	return out
}

// Flip returns the tile mirrored horizontally and/or vertically.
func (t *Tile8) Flip(x, y bool) Tile8 {
	var out Tile8
	for r := 0; r < 8; r++ {
		sr := r
		if y {
			sr = 7 - r
		}
		for c := 0; c < 8; c++ {
			sc := c
			if x {
				sc = 7 - c
			}
			out[r<<3+c] = t[sr<<3+sc]
		}
	}
	return out
}
