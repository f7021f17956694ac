// Package main implements a Super Metroid cartridge image inspector,
// renderer and rebuilder.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alttpo/smrom/internal/address"
	"github.com/alttpo/smrom/internal/config"
	"github.com/alttpo/smrom/internal/record"
	"github.com/alttpo/smrom/internal/rom"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

func main() {
	options := readArguments()
	logger := config.CreateLogger(options.Debug, options.Quiet)

	if err := run(logger, options, os.Stdout); err != nil {
		logger.Error("Processing failed", log.Err(err))
		os.Exit(1)
	}
}

func readArguments() config.Options {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	options := config.Options{}
	var room string

	flags.StringVar(&options.Input, "rom", "", "unheadered Super Metroid cartridge image")
	flags.StringVar(&options.Output, "o", "", "write the rebuilt image to this file")
	flags.StringVar(&options.RenderDir, "render", "", "directory to write PNG renders to")
	flags.IntVar(&options.Area, "area", -1, "area to composite into one image when rendering")
	flags.StringVar(&room, "room", "", "only render the room at this hex address, e.g. 8F91F8")
	flags.BoolVar(&options.Relocate, "relocate", false, "recompress palettes and level data before writing")
	flags.BoolVar(&options.Debug, "debug", false, "enable debug logging")
	flags.BoolVar(&options.Quiet, "q", false, "perform operations quietly")

	err := flags.Parse(os.Args[1:])
	if err == nil && options.Input == "" && flags.NArg() > 0 {
		options.Input = flags.Arg(0)
	}
	if err == nil && room != "" {
		options.Room, err = parseRoom(room)
	}

	if err != nil || options.Input == "" {
		if err != nil {
			fmt.Println(err)
		}
		fmt.Printf("usage: smrom [options] -rom <image>\n\n")
		flags.PrintDefaults()
		os.Exit(1)
	}
	return options
}

// parseRoom accepts a bank:offset address in hex with optional $ and :
// separators.
func parseRoom(s string) (uint32, error) {
	s = strings.NewReplacer("$", "", ":", "", "_", "").Replace(s)
	v, err := strconv.ParseUint(s, 16, 24)
	if err != nil {
		return 0, fmt.Errorf("invalid room address '%s': %w", s, err)
	}
	return uint32(v), nil
}

func run(logger *log.Logger, options config.Options, out io.Writer) error {
	data, err := os.ReadFile(options.Input)
	if err != nil {
		return fmt.Errorf("reading file '%s': %w", options.Input, err)
	}

	s, err := rom.Load(data, logger)
	if err != nil {
		return fmt.Errorf("loading image: %w", err)
	}

	if !options.Quiet {
		printSummary(out, newStyles(), s)
		if options.Room != 0 {
			if err = printRoom(out, newStyles(), s, address.LoRom(options.Room)); err != nil {
				return err
			}
		}
	}

	if options.RenderDir != "" {
		if err = renderAll(logger, s, options.RenderDir, options.Area, address.LoRom(options.Room)); err != nil {
			return fmt.Errorf("rendering: %w", err)
		}
	}

	if options.Output == "" {
		return nil
	}
	return writeImage(logger, s, options)
}

// writeImage saves the store and writes the image. Without relocation only
// the fixed-size records are written back.
func writeImage(logger *log.Logger, s *rom.Store, options config.Options) error {
	var err error
	if options.Relocate {
		err = s.Save()
	} else {
		for _, fn := range []func() error{s.SaveStates, s.SaveRooms, s.SaveDoors, s.SaveDoorLists, s.SaveTilesets} {
			if err = fn(); err != nil {
				break
			}
		}
	}
	if err != nil {
		return fmt.Errorf("saving: %w", err)
	}

	if err = os.WriteFile(options.Output, s.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing file '%s': %w", options.Output, err)
	}
	logger.Info("Wrote image", log.String("file", options.Output), log.Int("size", len(s.Bytes())))
	return nil
}

func printSummary(w io.Writer, st styles, s *rom.Store) {
	line := func(label string, value any) {
		fmt.Fprintln(w, st.label.Render(label)+st.value.Render(fmt.Sprint(value)))
	}

	fmt.Fprintln(w, st.title.Render(" smrom "))
	line("tilesets", len(s.Tilesets))
	line("palettes", len(s.PaletteAddresses()))
	line("gfx", len(s.GfxAddresses()))
	line("tile tables", len(s.TileTableAddresses()))
	line("rooms", len(s.RoomAddresses()))
	line("states", len(s.StateAddresses()))
	line("levels", len(s.LevelAddresses()))
	line("door lists", len(s.DoorListAddresses()))
	line("doors", len(s.DoorAddresses()))

	stations := 0
	for _, area := range s.SaveStations {
		stations += len(area)
	}
	line("save stations", stations)

	for _, addr := range s.SkippedLevels() {
		fmt.Fprintln(w, st.warning.Render(fmt.Sprintf("level data at %s skipped", addr)))
	}
	for _, addr := range s.UnsizedDoorLists() {
		fmt.Fprintln(w, st.warning.Render(fmt.Sprintf("door list at %s has unknown length", addr)))
	}
}

// printRoom lists the header, state conditions and doors of a room along
// with the block types of its default state's level.
func printRoom(w io.Writer, st styles, s *rom.Store, addr address.LoRom) error {
	room, ok := s.Room(addr)
	if !ok {
		return fmt.Errorf("%w: room %s", rom.ErrNotLoaded, addr)
	}
	line := func(label string, value any) {
		fmt.Fprintln(w, st.label.Render(label)+st.value.Render(fmt.Sprint(value)))
	}

	fmt.Fprintln(w, st.title.Render(fmt.Sprintf(" room %s ", addr)))
	line("map", RoomMapTile(room))
	line("size", fmt.Sprintf("%dx%d screens", room.Width, room.Height))
	for _, c := range room.StateConditions {
		line("state", c)
	}
	listAddr := address.Bank(record.StateBank, room.DoorList)
	line("door list", listAddr)

	states := room.States()
	if len(states) == 0 {
		return nil
	}
	state, ok := s.State(states[len(states)-1])
	if !ok {
		return fmt.Errorf("%w: default state of room %s", rom.ErrNotLoaded, addr)
	}
	level, ok := s.Level(state.Level)
	if !ok {
		fmt.Fprintln(w, st.warning.Render(fmt.Sprintf("level data at %s skipped", state.Level)))
		return nil
	}

	width, _ := room.Blocks()
	list, _ := s.DoorList(listAddr)
	for _, d := range findDoors(s, level, width, list) {
		line("door", d.String())
	}

	counts := map[BlockType]int{}
	for _, b := range level.Layer1 {
		counts[BlockType(b.Type)]++
	}
	types := maps.Keys(counts)
	slices.Sort(types)
	for _, t := range types {
		line(t.String(), counts[t])
	}
	return nil
}
