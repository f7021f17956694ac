package record

import (
	"encoding/binary"

	"github.com/alttpo/smrom/internal/address"
)

func read16(b []byte, offs int) uint16 {
	return binary.LittleEndian.Uint16(b[offs : offs+2])
}

func read24(b []byte, offs int) address.LoRom {
	return address.LoRom(uint32(b[offs]) | uint32(b[offs+1])<<8 | uint32(b[offs+2])<<16)
}

func append16(b []byte, value uint16) []byte {
	return binary.LittleEndian.AppendUint16(b, value)
}

func append24(b []byte, value address.LoRom) []byte {
	return append(b, byte(value), byte(value>>8), byte(value>>16))
}
