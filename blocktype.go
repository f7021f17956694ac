package main

import (
	"fmt"

	"github.com/alttpo/smrom/internal/record"
)

// BlockType is the upper nibble of a level block.
type BlockType uint8

func (t BlockType) IsDoor() bool {
	return t == record.BlockDoor
}

func (t BlockType) String() string {
	switch t {
	case record.BlockAir:
		return "air"
	case record.BlockSlope:
		return "slope"
	case record.BlockSpikeAir:
		return "spike-air"
	case record.BlockSpecialAir:
		return "special-air"
	case record.BlockShootableAir:
		return "shootable-air"
	case record.BlockHorizontal:
		return "h-extend"
	case record.BlockUnusedAir:
		return "unused-air"
	case record.BlockBombableAir:
		return "bombable-air"
	case record.BlockSolid:
		return "solid"
	case record.BlockDoor:
		return "door"
	case record.BlockSpike:
		return "spike"
	case record.BlockSpecial:
		return "special"
	case record.BlockShootable:
		return "shootable"
	case record.BlockVertical:
		return "v-extend"
	case record.BlockGrapple:
		return "grapple"
	case record.BlockBombable:
		return "bombable"
	}
	return fmt.Sprintf("$%x", uint8(t))
}
