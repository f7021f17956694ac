// Package address translates between SNES LoROM bus addresses and offsets
// into the flat cartridge image.
package address

import (
	"fmt"

	"github.com/alttpo/snes/mapping/lorom"
)

// LoRom is a 24-bit bus address as seen by the SNES CPU.
type LoRom uint32

// PC is an offset into the flat (unheadered) cartridge image.
type PC uint32

const (
	mirrorBit = 0x80_0000
	bankSize  = 0x8000
)

func (a LoRom) String() string {
	return fmt.Sprintf("$%02X:%04X", uint32(a)>>16, uint32(a)&0xFFFF)
}

func (p PC) String() string { return fmt.Sprintf("%#06x", uint32(p)) }

// Bank builds a bus address from a bank number and a bank-local pointer.
func Bank(bank uint8, offset uint16) LoRom {
	return LoRom(uint32(bank)<<16 | uint32(offset))
}

// Bank returns the bank byte of the address.
func (a LoRom) Bank() uint8 { return uint8(a >> 16) }

// Offset returns the bank-local 16-bit pointer of the address.
func (a LoRom) Offset() uint16 { return uint16(a) }

// PC maps the bus address to an image offset.
func (a LoRom) PC() PC { return ToPC(a) }

// LoRom maps the image offset to a bus address in the mirrored half.
func (p PC) LoRom() LoRom { return ToLoRom(p) }

// ToPC maps a bus address to an offset into the image. The mirrored upper
// half of the bus (banks $80-$FF) collapses onto banks $00-$7F.
func ToPC(a LoRom) PC {
	addr := uint32(a) &^ mirrorBit

	// the library folds banks $40-$6F onto $00-$2F; past 2 MiB the image
	// continues linearly instead
	if addr&0x8000 != 0 && addr < 0x40_0000 {
		pak, _ := lorom.BusAddressToPak(addr) // ROM window, always mapped
		return PC(pak)
	}
	return linear(addr)
}

// linear maps banks $40 and up, and the reserved $0000-$7FFF half of any
// bank, as if every bank held $8000 bytes of ROM.
func linear(addr uint32) PC {
	bank := addr >> 16
	return PC(bank*bankSize + addr&0x7FFF)
}

// ToLoRom maps an image offset back onto the bus. The result always lands in
// the mirrored half (bank >= $80) regardless of which alias was used to
// produce the offset.
func ToLoRom(p PC) LoRom {
	bank := uint32(p) / bankSize
	offset := uint32(p) % bankSize
	return LoRom(mirrorBit | bank<<16 | 0x8000 | offset)
}
