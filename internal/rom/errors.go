package rom

import "errors"

var (
	// ErrChecksumMismatch is returned by Load for images that are not the
	// expected unheadered cartridge.
	ErrChecksumMismatch = errors.New("image checksum mismatch")

	// ErrCapacityExceeded is returned when relocated records do not fit
	// their reserved region or a record no longer fits its original slot.
	// The image is left partially written.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrNotLoaded is returned when a record refers to an address the store
	// holds nothing for.
	ErrNotLoaded = errors.New("record not loaded")

	// ErrRegionOccupied is returned when a relocation region holds a record
	// that the store cannot move out of the way.
	ErrRegionOccupied = errors.New("region holds an unmovable record")
)
