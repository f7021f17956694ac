package lz5

import (
	"encoding/binary"
	"fmt"
)

type decoder struct {
	src []byte
	pos int
	out []byte
}

// Decompress decodes an LZ5 stream up to and including its terminator.
// Trailing bytes after the terminator are ignored.
func Decompress(src []byte) ([]byte, error) {
	out, _, err := DecompressN(src)
	return out, err
}

// DecompressN decodes an LZ5 stream and additionally reports how many bytes
// of src the stream occupied, terminator included.
func DecompressN(src []byte) ([]byte, int, error) {
	d := decoder{src: src, out: make([]byte, 0, len(src)*2)}

	for {
		start := d.pos
		data, ok := d.next()
		if !ok {
			return nil, d.pos, d.fail(start, "missing terminator")
		}
		if data == Terminator {
			return d.out, d.pos, nil
		}

		var op byte
		var count int
		if data&extendedHeader == extendedHeader {
			lo, ok := d.next()
			if !ok {
				return nil, d.pos, d.fail(start, "truncated extended header")
			}
			op = (data & 0b0001_1100) << 3
			count = (int(data&0b11)<<8 | int(lo)) + 1
		} else {
			op = data & 0b1110_0000
			count = int(data&0b1_1111) + 1
		}

		if err := d.command(start, op, count); err != nil {
			return nil, d.pos, err
		}
	}
}

func (d *decoder) command(start int, op byte, count int) error {
	switch op {
	case DirectCopy:
		b, ok := d.take(count)
		if !ok {
			return d.fail(start, "direct copy of %d bytes", count)
		}
		d.out = append(d.out, b...)

	case ByteFill:
		v, ok := d.next()
		if !ok {
			return d.fail(start, "byte fill without value")
		}
		for i := 0; i < count; i++ {
			d.out = append(d.out, v)
		}

	case WordFill:
		w, ok := d.take(2)
		if !ok {
			return d.fail(start, "word fill without value")
		}
		// odd counts end on the low byte:
		for i := 0; i < count; i++ {
			d.out = append(d.out, w[i&1])
		}

	case IncrementingFill:
		v, ok := d.next()
		if !ok {
			return d.fail(start, "incrementing fill without value")
		}
		for i := 0; i < count; i++ {
			d.out = append(d.out, v+byte(i))
		}

	case OffsetDictionary, OffsetDictionaryInvert:
		b, ok := d.take(2)
		if !ok {
			return d.fail(start, "offset dictionary without offset")
		}
		offset := int(binary.LittleEndian.Uint16(b))
		if offset >= len(d.out) {
			return d.fail(start, "offset %#04x beyond output of %d bytes", offset, len(d.out))
		}
		d.copyDictionary(offset, count, op == OffsetDictionaryInvert)

	case SlidingDictionary, SlidingDictionaryInvert:
		distance, ok := d.next()
		if !ok {
			return d.fail(start, "sliding dictionary without distance")
		}
		offset := len(d.out) - int(distance)
		if distance == 0 || offset < 0 {
			return d.fail(start, "distance %d outside output of %d bytes", distance, len(d.out))
		}
		d.copyDictionary(offset, count, op == SlidingDictionaryInvert)
	}

	return nil
}

// copyDictionary repeats out[offset:] cyclically until count bytes were
// produced, which lets a reference overlap the bytes it is producing.
func (d *decoder) copyDictionary(offset, count int, invert bool) {
	window := len(d.out) - offset
	for i := 0; i < count; i++ {
		v := d.out[offset+i%window]
		if invert {
			v = ^v
		}
		d.out = append(d.out, v)
	}
}

func (d *decoder) next() (byte, bool) {
	if d.pos >= len(d.src) {
		return 0, false
	}
	v := d.src[d.pos]
	d.pos++
	return v, true
}

func (d *decoder) take(n int) ([]byte, bool) {
	if d.pos+n > len(d.src) {
		d.pos = len(d.src)
		return nil, false
	}
	b := d.src[d.pos : d.pos+n]
	d.pos += n
	return b, true
}

func (d *decoder) fail(start int, format string, args ...any) error {
	return fmt.Errorf("%w: command at %#x: %s", ErrMalformedStream, start, fmt.Sprintf(format, args...))
}
