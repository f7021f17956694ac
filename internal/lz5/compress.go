package lz5

// Compress encodes src greedily, left to right. At each position the longest
// of byte fill, word fill, incrementing fill and dictionary match wins; ties go
// to the earlier kind in that order. Bytes nothing compresses are gathered into
// direct copy commands.
func Compress(src []byte) []byte {
	out := make([]byte, 0, len(src)/2+1)

	pending := -1 // start of the direct copy run, if any
	flush := func(end int) {
		if pending < 0 {
			return
		}
		if n := end - pending; n > 0 {
			out = appendDirectCopy(out, src[pending:end])
		}
		pending = -1
	}

	pos := 0
	for pos < len(src) {
		op := byte(DirectCopy)
		size := 1

		rest := src[pos:]
		window, match := countDictionary(src, pos)
		for _, c := range [...]struct {
			size int
			op   byte
		}{
			{countByteFill(rest), ByteFill},
			{countWordFill(rest), WordFill},
			{countIncrementingFill(rest), IncrementingFill},
			{match, SlidingDictionary},
		} {
			if size < c.size {
				size = c.size
				op = c.op
			}
		}

		if op == DirectCopy {
			if pending < 0 {
				pending = pos
			}
			pos++
		} else {
			flush(pos)

			var n int
			switch op {
			case ByteFill:
				out, n = appendHeader(out, ByteFill, size)
				out = append(out, rest[0])
			case WordFill:
				out, n = appendHeader(out, WordFill, size)
				out = append(out, rest[0], rest[1])
			case IncrementingFill:
				out, n = appendHeader(out, IncrementingFill, size)
				out = append(out, rest[0])
			default:
				out, n = appendDictionary(out, pos, window, size)
			}
			pos += n
		}

		if pending >= 0 && pos-pending == MaxCommandSize {
			flush(pos)
		}
	}

	flush(pos)
	return append(out, Terminator)
}

// countByteFill counts repeats of the first byte. A fill costs two bytes so
// anything shorter than three is not worth it.
func countByteFill(src []byte) int {
	n := 1
	for n < len(src) && src[n] == src[0] {
		n++
	}
	if n > 2 {
		return n
	}
	return 0
}

// countWordFill counts how far the first two bytes keep alternating. A word
// fill costs three bytes.
func countWordFill(src []byte) int {
	if len(src) < 2 {
		return 0
	}
	n := 2
	for n < len(src) && src[n] == src[0] {
		n++
		if n < len(src) && src[n] == src[1] {
			n++
		} else {
			break
		}
	}
	if n > 3 {
		return n
	}
	return 0
}

func countIncrementingFill(src []byte) int {
	n := 1
	for n < len(src) && src[n] == src[0]+byte(n) {
		n++
	}
	if n > 2 {
		return n
	}
	return 0
}

// countDictionary finds the longest prefix of src[pos:] that also starts
// somewhere in src[:pos]. The match may run past pos, which the decoder
// reproduces by repeating the window. Later starts win ties.
func countDictionary(src []byte, pos int) (window int, size int) {
	for start := 0; start < pos; start++ {
		// only the one-byte backward distance can reach past $FFFF:
		if start > 0xFFFF && pos-start > 0xFF {
			continue
		}

		n := 0
		for pos+n < len(src) && src[start+n] == src[pos+n] {
			n++
		}
		if n > 0 && n >= size {
			size = n
			window = start
		}
	}
	if size > 2 {
		return window, size
	}
	return 0, 0
}

func appendDirectCopy(out, data []byte) []byte {
	out, n := appendHeader(out, DirectCopy, len(data))
	return append(out, data[:n]...)
}

// appendDictionary prefers the one-byte backward distance and falls back to
// the absolute 16-bit offset.
func appendDictionary(out []byte, pos, window, size int) ([]byte, int) {
	var n int
	if distance := pos - window; distance <= 0xFF {
		out, n = appendHeader(out, SlidingDictionary, size)
		return append(out, byte(distance)), n
	}
	out, n = appendHeader(out, OffsetDictionary, size)
	return append(out, byte(window), byte(window>>8)), n
}

// appendHeader emits the command header for size bytes, clamped to
// MaxCommandSize, and returns how many bytes the command covers.
func appendHeader(out []byte, op byte, size int) ([]byte, int) {
	total := min(size, MaxCommandSize)
	n := total - 1
	if total > normalMaxSize {
		return append(out, extendedHeader|op>>3|byte(n>>8), byte(n)), total
	}
	return append(out, op|byte(n)), total
}
