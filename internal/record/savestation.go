package record

const SaveStationBytes = 14

// SaveStation is a load station entry: the room Samus spawns in and where.
type SaveStation struct {
	Room         uint16 // bank $8F
	Door         uint16 // bank $83
	DoorBTS      uint16
	ScreenX      uint16
	ScreenY      uint16
	SamusYOffset uint16 // from the top of the screen
	SamusXOffset uint16 // from the center of the screen
}

func DecodeSaveStation(b []byte) (SaveStation, error) {
	if len(b) < SaveStationBytes {
		return SaveStation{}, malformed("save station", "%d bytes, need %d", len(b), SaveStationBytes)
	}
	return SaveStation{
		Room:         read16(b, 0),
		Door:         read16(b, 2),
		DoorBTS:      read16(b, 4),
		ScreenX:      read16(b, 6),
		ScreenY:      read16(b, 8),
		SamusYOffset: read16(b, 10),
		SamusXOffset: read16(b, 12),
	}, nil
}

// DecodeSaveStations groups the stations by area. areaTable holds one
// 16-bit pointer per area and stations starts at the first of them; each
// area runs up to the next pointer. The last area of the table only bounds
// the one before it and is not returned.
func DecodeSaveStations(stations, areaTable []byte, areas int) ([][]SaveStation, error) {
	if areas < 1 || len(areaTable) < areas*2 {
		return nil, malformed("save station", "area table of %d bytes for %d areas", len(areaTable), areas)
	}

	pointers := make([]int, areas)
	for i := range pointers {
		pointers[i] = int(read16(areaTable, i*2))
	}

	out := make([][]SaveStation, 0, areas-1)
	for i := 0; i+1 < areas; i++ {
		start, end := pointers[i], pointers[i+1]
		if end < start || (end-start)%SaveStationBytes != 0 {
			return nil, malformed("save station", "area %d spans %04X-%04X", i, start, end)
		}

		area := make([]SaveStation, 0, (end-start)/SaveStationBytes)
		for p := start; p < end; p += SaveStationBytes {
			o := p - pointers[0]
			if o < 0 || o > len(stations) {
				return nil, malformed("save station", "area %d pointer %04X outside data", i, p)
			}
			s, err := DecodeSaveStation(stations[o:])
			if err != nil {
				return nil, err
			}
			area = append(area, s)
		}
		out = append(out, area)
	}
	return out, nil
}

func (s *SaveStation) Bytes() []byte {
	out := make([]byte, 0, SaveStationBytes)
	for _, w := range [...]uint16{s.Room, s.Door, s.DoorBTS, s.ScreenX, s.ScreenY, s.SamusYOffset, s.SamusXOffset} {
		out = append16(out, w)
	}
	return out
}
