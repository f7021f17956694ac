package address

import (
	"testing"

	"github.com/alttpo/snes/mapping/lorom"
	"github.com/retroenv/retrogolib/assert"
)

func TestToPC(t *testing.T) {
	tests := []struct {
		name string
		bus  LoRom
		want PC
	}{
		{"bank 00 rom start", 0x00_8000, 0x00_0000},
		{"bank 80 mirror", 0x80_8000, 0x00_0000},
		{"bank 8f room header", 0x8F_91F8, 0x07_91F8},
		{"bank c2 palette", 0xC2_AD7C, 0x21_2D7C},
		{"bank c2 unmirrored", 0x42_AD7C, 0x21_2D7C},
		{"reserved low half", 0x01_1234, 0x00_9234},
		{"last byte of bank", 0x80_FFFF, 0x00_7FFF},
		{"last byte below 2 MiB", 0xBF_FFFF, 0x1F_FFFF},
		{"first byte past 2 MiB", 0xC0_8000, 0x20_0000},
		{"bank df level data", 0xDF_8001, 0x2F_8001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToPC(tt.bus))
		})
	}
}

func TestToPCPastTwoMiB(t *testing.T) {
	// the lorom library folds $42 onto $02
	pak, err := lorom.BusAddressToPak(0x42_AD7C)
	assert.NoError(t, err)
	assert.Equal(t, uint32(0x01_2D7C), pak)
	assert.Equal(t, PC(0x21_2D7C), ToPC(0x42_AD7C))

	pak, err = lorom.BusAddressToPak(0x0F_91F8)
	assert.NoError(t, err)
	assert.Equal(t, PC(pak), ToPC(0x8F_91F8))
}

func TestToLoRom(t *testing.T) {
	assert.Equal(t, LoRom(0x80_8000), ToLoRom(0))
	assert.Equal(t, LoRom(0x8F_91F8), ToLoRom(0x07_91F8))
	assert.Equal(t, LoRom(0xC2_AD7C), PC(0x21_2D7C).LoRom())
}

func TestMappingRoundTrip(t *testing.T) {
	for _, a := range []LoRom{0x00_8000, 0x12_9ABC, 0x8F_E6A2, 0xB9_A09D, 0x4F_FFFF, 0xDF_8001} {
		pc := a.PC()
		// aliased banks collapse, so only the offset is stable:
		assert.Equal(t, pc, pc.LoRom().PC())
		assert.True(t, pc.LoRom().Bank() >= 0x80)
	}
}

func TestBank(t *testing.T) {
	a := Bank(0x8F, 0x91F8)
	assert.Equal(t, LoRom(0x8F_91F8), a)
	assert.Equal(t, uint8(0x8F), a.Bank())
	assert.Equal(t, uint16(0x91F8), a.Offset())
	assert.Equal(t, "$8F:91F8", a.String())
}
