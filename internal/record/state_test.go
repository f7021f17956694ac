package record

import (
	"errors"
	"testing"

	"github.com/alttpo/smrom/internal/address"
	"github.com/retroenv/retrogolib/assert"
)

func TestDecodeState(t *testing.T) {
	b := []byte{
		0xBB, 0xC2, 0xC2, // level
		0x01, 0x06, 0x05, // tileset, music
		0x00, 0x00, 0x83, 0x88, 0x3F, 0x80, // fx, enemies
		0x00, 0x00, // layer 2 scroll
		0x63, 0x91, 0x00, 0x00, 0x00, 0x00,
		0x02, 0x89, 0x00, 0x00, 0xC1, 0x91,
	}

	s, err := DecodeState(b)
	assert.NoError(t, err)
	assert.Equal(t, address.LoRom(0xC2C2BB), s.Level)
	assert.Equal(t, uint8(0x01), s.Tileset)
	assert.Equal(t, uint16(0x8883), s.EnemyPop)
	assert.Equal(t, uint16(0x91C1), s.SetupASM)
	assert.True(t, s.HasLayer2())
	assert.Equal(t, b, s.Bytes())

	s.Layer2XScroll, s.Layer2YScroll = 0x01, 0x01
	assert.False(t, s.HasLayer2())
	s.Layer2YScroll = 0x00
	assert.True(t, s.HasLayer2())

	_, err = DecodeState(b[:StateBytes-1])
	assert.True(t, errors.Is(err, ErrMalformedRecord))
}

func TestDecodeDoors(t *testing.T) {
	data := []byte{
		0xF8, 0x91, 0x00, 0x03, 0x00, 0x00, 0x04, 0x00, 0x00, 0x80, 0x00, 0x00,
		0xF8, 0x91, 0x01, 0x03, 0x00, 0x00, 0x04, 0x02, 0xF0, 0x80, 0xF0, 0x00,
		0xFD, 0x92, 0x02, 0x05, 0x4E, 0x06, 0x04, 0x00, 0x0F, 0x80, 0x0F, 0xF0,
	}

	doors, err := DecodeDoors(3, data)
	assert.NoError(t, err)
	assert.Equal(t, []Door{
		{DestinationRoom: 0x91F8, Orientation: 0x03, XHigh: 0x04, SamusDoorDistance: 0x8000},
		{DestinationRoom: 0x91F8, Elevator: 0x01, Orientation: 0x03, XHigh: 0x04, YHigh: 0x02, SamusDoorDistance: 0x80F0, CustomASM: 0x00F0},
		{DestinationRoom: 0x92FD, Elevator: 0x02, Orientation: 0x05, XLow: 0x4E, YLow: 0x06, XHigh: 0x04, SamusDoorDistance: 0x800F, CustomASM: 0xF00F},
	}, doors)
	assert.Equal(t, data[24:], doors[2].Bytes())
	assert.Equal(t, address.LoRom(0x8F92FD), doors[2].Destination())

	_, err = DecodeDoors(4, data)
	assert.True(t, errors.Is(err, ErrMalformedRecord))
}

func TestDecodeDoorList(t *testing.T) {
	b := []byte{0x8E, 0x88, 0x9A, 0x88, 0xFF}

	dl, err := DecodeDoorList(2, b)
	assert.NoError(t, err)
	assert.Equal(t, DoorList{0x888E, 0x889A}, dl)
	assert.Equal(t, b[:4], dl.Bytes())
	assert.Equal(t, []address.LoRom{0x83888E, 0x83889A}, dl.Doors())

	_, err = DecodeDoorList(3, b)
	assert.True(t, errors.Is(err, ErrMalformedRecord))
}
