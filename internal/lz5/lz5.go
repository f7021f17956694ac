// Package lz5 implements the LZ5 compression format used by Super Metroid for
// graphics, palettes, tile tables and level data.
//
// A stream is a sequence of commands terminated by a $FF byte. A command
// header is either one byte CCCN_NNNN (count N+1, 1..32) or, when the top three
// bits are set, two bytes 111C_CCNN NNNN_NNNN (count N+1, 1..1024).
package lz5

import "errors"

// Operations selected by the CCC bits of a command header.
const (
	DirectCopy              = 0x00
	ByteFill                = 0x20
	WordFill                = 0x40
	IncrementingFill        = 0x60
	OffsetDictionary        = 0x80
	OffsetDictionaryInvert  = 0xA0
	SlidingDictionary       = 0xC0
	SlidingDictionaryInvert = 0xE0
)

const (
	// Terminator ends a compressed stream.
	Terminator = 0xFF

	// MaxCommandSize is the largest count the encoder emits in one command.
	// The 10-bit count field could express 1024 but the stock encoder stops
	// at 1023 and existing assets depend on that.
	MaxCommandSize = 0b11_1111_1111

	extendedHeader = 0b1110_0000
	normalMaxSize  = 0b1_1111 + 1
)

// ErrMalformedStream is returned for truncated streams and dictionary
// references outside of the already decompressed output.
var ErrMalformedStream = errors.New("malformed compressed stream")
