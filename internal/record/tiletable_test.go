package record

import (
	"errors"
	"testing"

	"github.com/alttpo/smrom/internal/address"
	"github.com/retroenv/retrogolib/assert"
)

func TestDecodeTileTable(t *testing.T) {
	b := []byte{
		0x01, 0xE0, // y x u, palette 0, gfx 1
		0xFF, 0x1F, // palette 7, gfx $3FF
		0x2A, 0x08, // palette 2, gfx $2A
		0x00, 0x00,
	}

	tt, err := DecodeTileTable(b)
	assert.NoError(t, err)
	assert.Equal(t, TileTable{
		{YFlip: true, XFlip: true, Unknown: true, GfxIndex: 1},
		{SubPalette: 7, GfxIndex: 0x3FF},
		{SubPalette: 2, GfxIndex: 0x2A},
		{},
	}, tt)
	assert.Equal(t, b, tt.Bytes())

	q, ok := tt.Block(0)
	assert.True(t, ok)
	assert.Equal(t, tt[2], q[2])
	_, ok = tt.Block(1)
	assert.False(t, ok)

	_, err = DecodeTileTable(b[:3])
	assert.True(t, errors.Is(err, ErrMalformedRecord))
}

func TestDecodeTilesets(t *testing.T) {
	b := make([]byte, Tilesets*TilesetBytes)
	copy(b, []byte{0x7C, 0xAD, 0xC2, 0x00, 0x80, 0xBA, 0xBB, 0xC2, 0xC2})

	ts, err := DecodeTilesets(b)
	assert.NoError(t, err)
	assert.Len(t, ts, Tilesets)
	assert.Equal(t, address.LoRom(0xC2AD7C), ts[0].TileTable)
	assert.Equal(t, address.LoRom(0xBA8000), ts[0].Gfx)
	assert.Equal(t, address.LoRom(0xC2C2BB), ts[0].Palette)
	assert.Equal(t, b[:TilesetBytes], ts[0].Bytes())

	for i, want := range map[int]bool{0x00: true, 0x0E: true, 0x0F: false, 0x13: false, 0x14: true, 0x1C: true} {
		assert.Equal(t, want, ts[i].UseCRE)
	}

	_, err = DecodeTilesets(b[:10])
	assert.True(t, errors.Is(err, ErrMalformedRecord))
}
