package main

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/alttpo/smrom/internal/address"
	"github.com/alttpo/smrom/internal/record"
	"github.com/alttpo/smrom/internal/rom"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/exp/slices"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"
)

const (
	tilesPerRow  = 16
	blocksPerRow = 32
	swatchPx     = 8
)

var (
	doorTint   = image.NewUniform(color.NRGBA{255, 0, 0, 64})
	yellow     = image.NewUniform(color.RGBA{255, 255, 0, 255})
	white      = image.NewUniform(color.RGBA{255, 255, 255, 255})
	outlineClr = image.NewUniform(color.RGBA{0, 255, 0, 255})
)

// levelPalette returns all 128 colors with the first color of every
// sub-palette transparent.
func levelPalette(p *record.Palette) color.Palette {
	pal := p.Colors()
	for i := 0; i < len(pal); i += record.ColorsPerPalette {
		pal[i] = color.Transparent
	}
	return pal
}

// paletteImage draws every sub-palette as a row of swatches.
func paletteImage(p *record.Palette) *image.NRGBA {
	g := image.NewNRGBA(image.Rect(0, 0, record.ColorsPerPalette*swatchPx, record.SubPalettes*swatchPx))
	for row, sub := range p {
		for col, c := range sub {
			x, y := col*swatchPx, row*swatchPx
			draw.Draw(g, image.Rect(x, y, x+swatchPx, y+swatchPx), image.NewUniform(c.NRGBA()), image.Point{}, draw.Src)
		}
	}
	return g
}

// gfxImage draws every tile of gfx with one sub-palette, 16 tiles per row.
func gfxImage(gfx record.Gfx, p *record.Palette, sub int) *image.Paletted {
	rows := (len(gfx) + tilesPerRow - 1) / tilesPerRow
	g := image.NewPaletted(image.Rect(0, 0, tilesPerRow*8, rows*8), p.Sub(sub))
	for i := range gfx {
		drawTile8(g, &gfx[i], (i%tilesPerRow)<<3, (i/tilesPerRow)<<3, 0)
	}
	return g
}

// tilesetImage draws every 16x16 block of a tile table, 32 blocks per row.
func tilesetImage(tt record.TileTable, p *record.Palette, gfx record.Gfx) *image.Paletted {
	blocks := len(tt) / record.TilesPerBlock
	rows := (blocks + blocksPerRow - 1) / blocksPerRow
	g := image.NewPaletted(image.Rect(0, 0, blocksPerRow*16, rows*16), levelPalette(p))
	for n := 0; n < blocks; n++ {
		drawBlock(g, tt, gfx, record.Block{Number: uint16(n)}, (n%blocksPerRow)<<4, (n/blocksPerRow)<<4)
	}
	return g
}

// levelImage draws layer 2 and then layer 1 of a level width by height
// blocks in size.
func levelImage(level *record.LevelData, width, height int, tt record.TileTable, p *record.Palette, gfx record.Gfx) *image.Paletted {
	g := image.NewPaletted(image.Rect(0, 0, width<<4, height<<4), levelPalette(p))
	for _, layer := range [][]record.Block{level.Layer2, level.Layer1} {
		for i, b := range layer {
			if i >= width*height {
				break
			}
			x, y := CoordOf(i, width).Pixel()
			drawBlock(g, tt, gfx, b, x, y)
		}
	}
	return g
}

// drawBlock draws the four tiles of a block. Flipping the block swaps the
// tile quadrants and flips each tile on top of its own flip bits.
func drawBlock(g *image.Paletted, tt record.TileTable, gfx record.Gfx, b record.Block, x, y int) {
	q, ok := tt.Block(b.Number)
	if !ok {
		return
	}
	for i, t := range q {
		qx, qy := i&1, i>>1
		if b.XFlip {
			qx ^= 1
		}
		if b.YFlip {
			qy ^= 1
		}
		if int(t.GfxIndex) >= len(gfx) {
			continue
		}
		tile := gfx[t.GfxIndex].Flip(t.XFlip != b.XFlip, t.YFlip != b.YFlip)
		drawTile8(g, &tile, x+qx<<3, y+qy<<3, t.SubPalette)
	}
}

func drawTile8(g *image.Paletted, t *record.Tile8, x, y int, sub uint8) {
	p := sub << 4
	for ty := 0; ty < 8; ty++ {
		for tx := 0; tx < 8; tx++ {
			i := t[ty<<3+tx]
			// transparency:
			if i == 0 {
				continue
			}
			g.SetColorIndex(x+tx, y+ty, p+i)
		}
	}
}

// roomImage draws the default state of a room with its doorways tinted and
// labeled.
func roomImage(s *rom.Store, room *record.Room) (*image.NRGBA, error) {
	states := room.States()
	if len(states) == 0 {
		return nil, fmt.Errorf("%w: room has no states", rom.ErrNotLoaded)
	}
	st, ok := s.State(states[len(states)-1])
	if !ok {
		return nil, fmt.Errorf("%w: default state of room", rom.ErrNotLoaded)
	}
	d, err := s.StateData(st)
	if err != nil {
		return nil, err
	}

	w, h := room.Blocks()
	lvl := levelImage(d.Level, w, h, d.TileTable, d.Palette, d.Gfx)
	g := image.NewNRGBA(lvl.Bounds())
	draw.Draw(g, g.Bounds(), image.Black, image.Point{}, draw.Src)
	draw.Draw(g, g.Bounds(), lvl, image.Point{}, draw.Over)

	list, _ := s.DoorList(address.Bank(record.StateBank, room.DoorList))
	doors := findDoors(s, d.Level, w, list)
	for j := range doors {
		for _, t := range doors[j].Blocks(w, h) {
			x, y := t.Pixel()
			draw.Draw(g, image.Rect(x, y, x+16, y+16), doorTint, image.Point{}, draw.Over)
		}
	}
	for j := range doors {
		x, y := doors[j].Pos.Pixel()
		drawLabel(g, yellow, x+2, y+13, fmt.Sprintf("%d", doors[j].Index))
	}
	return g, nil
}

// renderRooms draws every room in parallel. Rooms that cannot be drawn are
// logged and left out of the result.
func renderRooms(logger *log.Logger, s *rom.Store, addrs []address.LoRom) map[address.LoRom]*image.NRGBA {
	out := make(map[address.LoRom]*image.NRGBA, len(addrs))
	mu := sync.Mutex{}
	wg := sync.WaitGroup{}

	for _, addr := range addrs {
		room, ok := s.Room(addr)
		if !ok {
			logger.Warn("Room not loaded", log.Hex("address", uint32(addr)))
			continue
		}

		wg.Add(1)
		go func(addr address.LoRom, room *record.Room) {
			defer wg.Done()

			g, err := roomImage(s, room)
			if err != nil {
				logger.Warn("Skipping room render", log.Hex("address", uint32(addr)), log.Err(err))
				return
			}
			logger.Debug("Rendered room", log.Hex("address", uint32(addr)))

			mu.Lock()
			out[addr] = g
			mu.Unlock()
		}(addr, room)
	}
	wg.Wait()

	return out
}

// renderArea composites the rooms of one area by their map position, each
// scaled down to the area map grid and labeled with its address.
func renderArea(rooms map[address.LoRom]*record.Room, images map[address.LoRom]*image.NRGBA) *image.NRGBA {
	addrs := make([]address.LoRom, 0, len(rooms))
	list := make([]*record.Room, 0, len(rooms))
	for addr := range rooms {
		addrs = append(addrs, addr)
	}
	slices.Sort(addrs)
	for _, addr := range addrs {
		list = append(list, rooms[addr])
	}

	w, h := areaBounds(list)
	all := image.NewNRGBA(image.Rect(0, 0, w*mapTilePx, h*mapTilePx))
	draw.Draw(all, all.Bounds(), image.Black, image.Point{}, draw.Src)

	for i, addr := range addrs {
		r := list[i]
		x, y := RoomMapTile(r).AbsTopLeft()
		rw, rh := int(r.Width)*mapTilePx, int(r.Height)*mapTilePx
		if g, ok := images[addr]; ok {
			draw.NearestNeighbor.Scale(all, image.Rect(x, y, x+rw, y+rh), g, g.Bounds(), draw.Over, nil)
		}
		drawOutline(all, outlineClr, image.Rect(x, y, x+rw, y+rh))
	}
	for i, addr := range addrs {
		x, y := RoomMapTile(list[i]).AbsTopLeft()
		drawLabel(all, white, x+2, y+12, fmt.Sprintf("%04X", addr.Offset()))
	}
	return all
}

// renderAll writes the palettes, gfx, tilesets and room images of the store
// to dir, plus the composite of area when it is not negative.
func renderAll(logger *log.Logger, s *rom.Store, dir string, area int, only address.LoRom) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating render directory: %w", err)
	}

	for i := range s.Tilesets {
		ts := &s.Tilesets[i]
		p, ok := s.Palette(ts.Palette)
		if !ok {
			continue
		}
		if err := exportPNG(filepath.Join(dir, fmt.Sprintf("palette-%02X.png", i)), paletteImage(p)); err != nil {
			return err
		}
		if gfx, ok := s.Gfx(ts.Gfx); ok {
			if err := exportPNG(filepath.Join(dir, fmt.Sprintf("gfx-%02X.png", i)), gfxImage(gfx, p, 0)); err != nil {
				return err
			}
		}

		gfx, tt, err := tilesetData(s, ts)
		if err != nil {
			return err
		}
		if err := exportPNG(filepath.Join(dir, fmt.Sprintf("tileset-%02X.png", i)), tilesetImage(tt, p, gfx)); err != nil {
			return err
		}
	}

	addrs := s.RoomAddresses()
	if only != 0 {
		addrs = []address.LoRom{only}
	}
	images := renderRooms(logger, s, addrs)
	for addr, g := range images {
		if err := exportPNG(filepath.Join(dir, fmt.Sprintf("room-%06X.png", uint32(addr))), g); err != nil {
			return err
		}
	}

	if area < 0 {
		return nil
	}
	rooms := make(map[address.LoRom]*record.Room)
	for _, addr := range addrs {
		if r, ok := s.Room(addr); ok && int(r.Area) == area {
			rooms[addr] = r
		}
	}
	if len(rooms) == 0 {
		logger.Warn("No rooms in area", log.Int("area", area))
		return nil
	}
	return exportPNG(filepath.Join(dir, fmt.Sprintf("area-%d.png", area)), renderArea(rooms, images))
}

// tilesetData returns the gfx and tile table of a tileset with the CRE
// composed in when the tileset uses it.
func tilesetData(s *rom.Store, ts *record.Tileset) (record.Gfx, record.TileTable, error) {
	if !ts.UseCRE {
		gfx, _ := s.Gfx(ts.Gfx)
		tt, _ := s.TileTable(ts.TileTable)
		return gfx, tt, nil
	}
	gfx, err := s.GfxWithCRE(ts.Gfx)
	if err != nil {
		return nil, nil, err
	}
	tt, err := s.TileTableWithCRE(ts.TileTable)
	if err != nil {
		return nil, nil, err
	}
	return gfx, tt, nil
}

// labelShadow surrounds every label with a one pixel black border.
var labelShadow = []image.Point{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// drawLabel draws text with its baseline starting at x, y.
func drawLabel(g draw.Image, clr image.Image, x, y int, text string) {
	d := font.Drawer{Dst: g, Src: image.Black, Face: inconsolata.Bold8x16}
	for _, o := range labelShadow {
		d.Dot = fixed.P(x+o.X, y+o.Y)
		d.DrawString(text)
	}
	d.Src, d.Dot = clr, fixed.P(x, y)
	d.DrawString(text)
}

// drawOutline draws the one pixel border just inside r.
func drawOutline(g draw.Image, clr image.Image, r image.Rectangle) {
	edges := [...]image.Rectangle{
		{r.Min, image.Pt(r.Max.X, r.Min.Y+1)},
		{image.Pt(r.Max.X-1, r.Min.Y), r.Max},
		{image.Pt(r.Min.X, r.Max.Y-1), r.Max},
		{r.Min, image.Pt(r.Min.X+1, r.Max.Y)},
	}
	for _, e := range edges {
		draw.Draw(g, e, clr, image.Point{}, draw.Over)
	}
}

func exportPNG(name string, g image.Image) (err error) {
	var po *os.File

	po, err = os.OpenFile(name, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer func() {
		if cerr := po.Close(); err == nil {
			err = cerr
		}
	}()

	bo := bufio.NewWriterSize(po, 1024*1024)

	if err = png.Encode(bo, g); err != nil {
		return
	}
	return bo.Flush()
}
