package record

import (
	"bytes"
	"image/color"
)

const (
	SubPalettes       = 8
	ColorsPerPalette  = 16
	paletteColorBytes = 2
)

var tplMagic = []byte("TPL")

// TPL color depths selected by the byte after the magic.
const (
	tplRGB888 = 0
	tplBGR555 = 2
)

// BGR555 is a 15-bit SNES color. U is the unused top bit, kept so encoding
// reproduces the source word.
type BGR555 struct {
	R, G, B uint8
	U       uint8
}

// SubPalette is one of the eight 16-color palettes a tile can select.
type SubPalette [ColorsPerPalette]BGR555

// Palette is the full set of eight sub-palettes used by a tileset.
type Palette [SubPalettes]SubPalette

func bgr555(w uint16) BGR555 {
	return BGR555{
		U: uint8(w >> 15 & 0b1),
		B: uint8(w >> 10 & 0b1_1111),
		G: uint8(w >> 5 & 0b1_1111),
		R: uint8(w & 0b1_1111),
	}
}

// Uint16 packs the color back into its little-endian CGRAM word.
func (c BGR555) Uint16() uint16 {
	return uint16(c.U&1)<<15 | uint16(c.B&0x1F)<<10 | uint16(c.G&0x1F)<<5 | uint16(c.R&0x1F)
}

// NRGBA expands the 5-bit channels to 8 bits.
func (c BGR555) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: c.R<<3 | c.R>>2,
		G: c.G<<3 | c.G>>2,
		B: c.B<<3 | c.B>>2,
		A: 0xFF,
	}
}

// DecodePalette decodes a decompressed palette. Raw palettes are 2-byte
// BGR555 colors. Data starting with "TPL" and a depth byte is a tile layer
// palette file whose colors are either BGR555 (depth 2) or 8-bit RGB triples
// (depth 0). Missing sub-palettes are zero, more than eight is an error.
func DecodePalette(b []byte) (Palette, error) {
	var p Palette

	var colors []BGR555
	if bytes.HasPrefix(b, tplMagic) {
		if len(b) < len(tplMagic)+1 {
			return p, malformed("palette", "TPL header without color depth")
		}
		depth := b[len(tplMagic)]
		data := b[len(tplMagic)+1:]

		switch depth {
		case tplRGB888:
			if len(data)%3 != 0 {
				return p, malformed("palette", "%d bytes is not a whole number of RGB colors", len(data))
			}
			for i := 0; i < len(data); i += 3 {
				colors = append(colors, BGR555{R: data[i] >> 3, G: data[i+1] >> 3, B: data[i+2] >> 3})
			}
		case tplBGR555:
			var err error
			if colors, err = decodeBGR555(data); err != nil {
				return p, err
			}
		default:
			return p, malformed("palette", "unknown TPL color depth %d", depth)
		}
	} else {
		var err error
		if colors, err = decodeBGR555(b); err != nil {
			return p, err
		}
	}

	if len(colors) > SubPalettes*ColorsPerPalette {
		subs := (len(colors) + ColorsPerPalette - 1) / ColorsPerPalette
		return p, malformed("palette", "%d sub-palettes exceed %d", subs, SubPalettes)
	}

	for i, c := range colors {
		p[i/ColorsPerPalette][i%ColorsPerPalette] = c
	}
	return p, nil
}

func decodeBGR555(b []byte) ([]BGR555, error) {
	if len(b)%paletteColorBytes != 0 {
		return nil, malformed("palette", "odd length %d", len(b))
	}
	colors := make([]BGR555, 0, len(b)/paletteColorBytes)
	for i := 0; i < len(b); i += paletteColorBytes {
		colors = append(colors, bgr555(read16(b, i)))
	}
	return colors, nil
}

// Bytes encodes all eight sub-palettes as raw BGR555 words.
func (p *Palette) Bytes() []byte {
	out := make([]byte, 0, SubPalettes*ColorsPerPalette*paletteColorBytes)
	for _, sub := range p {
		for _, c := range sub {
			out = append16(out, c.Uint16())
		}
	}
	return out
}

// Colors returns every color of every sub-palette in order.
func (p *Palette) Colors() color.Palette {
	out := make(color.Palette, 0, SubPalettes*ColorsPerPalette)
	for _, sub := range p {
		for _, c := range sub {
			out = append(out, c.NRGBA())
		}
	}
	return out
}

// Sub returns the 16 colors of one sub-palette with index 0 transparent,
// ready for use with an image.Paletted.
func (p *Palette) Sub(n int) color.Palette {
	out := make(color.Palette, ColorsPerPalette)
	for i, c := range p[n&(SubPalettes-1)] {
		out[i] = c.NRGBA()
	}
	out[0] = color.Transparent
	return out
}
