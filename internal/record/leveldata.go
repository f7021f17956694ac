package record

// Block is one 16x16 level block: tttt yx bbbbbbbbbb.
type Block struct {
	Type   uint8
	YFlip  bool
	XFlip  bool
	Number uint16
}

// LevelData is the decompressed block layout of a room. BTS holds one byte
// per layer 1 block. Layer2 is nil for rooms that scroll a background
// instead of a second block layer.
type LevelData struct {
	Layer1 []Block
	BTS    []byte
	Layer2 []Block
}

func decodeBlock(w uint16) Block {
	return Block{
		Type:   uint8(w >> 12),
		YFlip:  w&0x0800 != 0,
		XFlip:  w&0x0400 != 0,
		Number: w & 0x3FF,
	}
}

func (b Block) Uint16() (w uint16) {
	w = uint16(b.Type&0xF) << 12
	if b.YFlip {
		w |= 0x0800
	}
	if b.XFlip {
		w |= 0x0400
	}
	w |= b.Number & 0x3FF
	return
}

// DecodeLevelData decodes a level. The first word is the byte size of
// layer 1; layer 1, BTS and optionally layer 2 follow with the same number
// of blocks each.
func DecodeLevelData(b []byte, hasLayer2 bool) (*LevelData, error) {
	if len(b) < 2 {
		return nil, malformed("level data", "missing layer size")
	}
	n := int(read16(b, 0)) / 2

	need := 2 + n*3
	if hasLayer2 {
		need += n * 2
	}
	if len(b) < need {
		return nil, malformed("level data", "%d bytes for %d blocks, need %d", len(b), n, need)
	}

	l := &LevelData{
		Layer1: decodeLayer(b[2:], n),
		BTS:    make([]byte, n),
	}
	copy(l.BTS, b[2+n*2:2+n*3])
	if hasLayer2 {
		l.Layer2 = decodeLayer(b[2+n*3:], n)
	}
	return l, nil
}

func decodeLayer(b []byte, n int) []Block {
	blocks := make([]Block, n)
	for i := range blocks {
		blocks[i] = decodeBlock(read16(b, i*2))
	}
	return blocks
}

// Bytes encodes the level in the layout DecodeLevelData reads.
func (l *LevelData) Bytes() []byte {
	n := len(l.Layer1)
	out := make([]byte, 0, 2+n*3+len(l.Layer2)*2)
	out = append16(out, uint16(n*2))
	for _, b := range l.Layer1 {
		out = append16(out, b.Uint16())
	}
	out = append(out, l.BTS...)
	for _, b := range l.Layer2 {
		out = append16(out, b.Uint16())
	}
	return out
}

// DoorCount returns one more than the highest BTS of any door block, which
// is the number of door list entries the level refers to.
func (l *LevelData) DoorCount() int {
	count := 0
	for i, b := range l.Layer1 {
		if b.Type != BlockDoor || i >= len(l.BTS) {
			continue
		}
		count = max(count, int(l.BTS[i])+1)
	}
	return count
}

// Block types of the upper nibble of a level block.
const (
	BlockAir          = 0x0
	BlockSlope        = 0x1
	BlockSpikeAir     = 0x2
	BlockSpecialAir   = 0x3
	BlockShootableAir = 0x4
	BlockHorizontal   = 0x5
	BlockUnusedAir    = 0x6
	BlockBombableAir  = 0x7
	BlockSolid        = 0x8
	BlockDoor         = 0x9
	BlockSpike        = 0xA
	BlockSpecial      = 0xB
	BlockShootable    = 0xC
	BlockVertical     = 0xD
	BlockGrapple      = 0xE
	BlockBombable     = 0xF
)
