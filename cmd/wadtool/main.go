// wadtool is a CLI utility for inspecting WAD archives and their levels.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/wadkit/internal/config"
	"github.com/Faultbox/wadkit/internal/logger"
	"github.com/Faultbox/wadkit/pkg/formats"
	"github.com/Faultbox/wadkit/pkg/graphics"
	"github.com/Faultbox/wadkit/pkg/wad"
)

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	fileCfg := logger.FileConfig{}
	if cfg.Logging.LogFile != "" {
		fileCfg = logger.DefaultFileConfig(cfg.Logging.LogFile)
		fileCfg.JSON = cfg.Logging.JSON
	}
	if err := logger.InitWithFileConfig(cfg.Logging.Level, fileCfg, true); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command := args[0]
	if command == "help" || command == "-h" || command == "--help" {
		printUsage()
		return
	}
	if command == "config" {
		cmdConfig(cfg, args[1:])
		return
	}

	stack, err := wad.LoadStack(cfg.Data.WADPaths...)
	if err != nil {
		logger.Error("failed to load archives", zap.Strings("paths", cfg.Data.WADPaths), zap.Error(err))
		os.Exit(1)
	}

	args = args[1:]
	switch command {
	case "info":
		cmdInfo(stack)
	case "lumps", "ls":
		cmdLumps(stack, args)
	case "levels":
		cmdLevels(stack, cfg.Data.Workers)
	case "level":
		cmdLevel(stack, args)
	case "query":
		cmdQuery(stack, args)
	case "route":
		cmdRoute(stack, args)
	case "flat", "texture", "patch":
		cmdImage(stack, cfg, command, args)
	case "endoom":
		cmdEndoom(stack)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`wadtool - WAD archive and level utility

Usage:
  wadtool [flags] <command> [options]

Flags:
  -wad a.wad,b.wad   Archives in load order, IWAD first
  -config path       Config file (default ./wadtool.yaml)
  -out dir           Image output directory
  -format png|bmp    Image format
  -scale n           Image upscale factor
  -workers n         Levels loaded in parallel
  -debug             Debug logging

Commands:
  info                          Show archive information
  lumps [-n N] [pattern]        List lumps (optional glob pattern)
  levels                        Load every level and summarize it
  level <name>                  Show a level's sectors and things
  query <name> <x> <y>          Find the sector containing a point
  route [-all] <name> <from> <to>  Shortest sector chain between sectors
  flat|texture|patch [-light L | -colormap N] <name>
                                Export an image, optionally shaded
  endoom                        Print the exit screen
  config [-user] [path]         Write the effective config

Examples:
  wadtool -wad doom.wad info
  wadtool -wad doom.wad lumps "E1M1*"
  wadtool -wad doom.wad,mod.wad query E1M1 1056 -3616
  wadtool -wad doom.wad -scale 4 texture STARTAN3
  wadtool -wad doom.wad flat -light 128 FLOOR4_8`)
}

func cmdConfig(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	user := fs.Bool("user", false, "Write to the user config directory")
	fs.Parse(args)

	var (
		path string
		err  error
	)
	switch {
	case *user:
		path, err = cfg.Save()
	case fs.NArg() > 0:
		path = fs.Arg(0)
		err = cfg.SaveTo(path)
	default:
		path = config.FileName
		err = cfg.SaveTo(path)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", path)
}

func cmdInfo(stack *wad.Stack) {
	for _, a := range stack.Archives() {
		h := a.Header()
		fmt.Printf("Archive: %s (%s)\n", a.Name(), h.Magic)
		fmt.Printf("Size:    %.2f MB\n", float64(a.Size())/(1024*1024))
		fmt.Printf("Lumps:   %d\n", len(a.Entries()))
		fmt.Printf("Levels:  %d\n", len(a.Levels()))
		if p := a.Palettes(); p != nil {
			fmt.Printf("Palettes: %d\n", p.Len())
		}
		if p := a.PatchNames(); p != nil {
			fmt.Printf("Patches: %d\n", p.Len())
		}
		for _, t := range a.TextureTables() {
			fmt.Printf("%s: %d textures\n", t.Table, t.Len())
		}
		fmt.Println()
	}
}

func cmdLumps(stack *wad.Stack, args []string) {
	fs := flag.NewFlagSet("lumps", flag.ExitOnError)
	limit := fs.Int("n", 0, "Limit output to N lumps (0 = all)")
	fs.Parse(args)

	pattern := ""
	if fs.NArg() > 0 {
		pattern = strings.ToUpper(fs.Arg(0))
	}

	count := 0
	for _, a := range stack.Archives() {
		for _, e := range a.Entries() {
			if pattern != "" {
				matched, _ := filepath.Match(pattern, strings.ToUpper(e.Name))
				if !matched {
					continue
				}
			}
			fmt.Printf("%-12s %5d %-8s %10d %8d\n", a.Name(), e.Index, e.Name, e.Offset, e.Size)
			count++
			if *limit > 0 && count >= *limit {
				return
			}
		}
	}

	if pattern != "" {
		fmt.Fprintf(os.Stderr, "\n(%d lumps matched)\n", count)
	}
}

func cmdLevels(stack *wad.Stack, workers int) {
	if err := stack.LoadLevels(workers); err != nil {
		logger.Warn("some levels failed to load", zap.Error(err))
	}

	for _, m := range stack.Levels() {
		if !m.Loaded() {
			fmt.Printf("%-8s (failed)\n", m.Name)
			continue
		}
		placed := 0
		for _, s := range m.ThingSectors {
			if s != wad.NoSector {
				placed++
			}
		}
		nodes := "BSP"
		if m.GLSubSectors != nil {
			nodes = fmt.Sprintf("GL %s", m.GLVertexes.Version())
		}
		fmt.Printf("%-8s %-12s sectors %4d  lines %5d  things %4d/%-4d  %s\n",
			m.Name, m.Archive().Name(), len(m.Topology), len(m.LineDefs.Items),
			placed, len(m.ThingSectors), nodes)
	}
}

func loadLevel(stack *wad.Stack, name string) *wad.LevelMap {
	m, err := stack.Level(strings.ToUpper(name))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := m.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return m
}

func cmdLevel(stack *wad.Stack, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: wadtool level <name>")
		os.Exit(1)
	}
	m := loadLevel(stack, args[0])

	b := m.Bounds()
	fmt.Printf("Level:   %s (%s)\n", m.Name, m.Archive().Name())
	fmt.Printf("Bounds:  (%.0f, %.0f) - (%.0f, %.0f)\n", b.Min.X, b.Min.Y, b.Max.X, b.Max.Y)
	fmt.Printf("Sectors: %d\n", len(m.Topology))
	fmt.Println()

	for i, info := range m.Topology {
		s := &m.Sectors.Items[i]
		fmt.Printf("  %4d  floor %5d %-8s  ceil %5d %-8s  light %3d  edges %3d  subsectors %3d  things %3d  #%02x%02x%02x\n",
			i, s.FloorHeight, s.FloorTexture, s.CeilingHeight, s.CeilingTexture, s.LightLevel,
			len(info.Edges), len(info.SubSectors), len(info.Things),
			info.Tint.R, info.Tint.G, info.Tint.B)
	}

	// Thing types by count
	type typeStat struct {
		typ   uint16
		count int
	}
	var stats []typeStat
	for typ, idx := range m.Things.ByType {
		stats = append(stats, typeStat{typ, len(idx)})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].count != stats[j].count {
			return stats[i].count > stats[j].count
		}
		return stats[i].typ < stats[j].typ
	})

	fmt.Println()
	fmt.Println("Things by type:")
	for _, s := range stats {
		fmt.Printf("  %-6d %d\n", s.typ, s.count)
	}
}

func cmdQuery(stack *wad.Stack, args []string) {
	if len(args) < 3 {
		fmt.Fprintln(os.Stderr, "Usage: wadtool query <name> <x> <y>")
		os.Exit(1)
	}
	x, errX := strconv.ParseFloat(args[1], 64)
	y, errY := strconv.ParseFloat(args[2], 64)
	if errX != nil || errY != nil {
		fmt.Fprintln(os.Stderr, "Error: coordinates must be numbers")
		os.Exit(1)
	}

	m := loadLevel(stack, args[0])
	loc, ok := m.Query(x, y)
	if !ok {
		fmt.Printf("(%g, %g) is outside %s\n", x, y, m.Name)
		os.Exit(1)
	}

	info := &m.Topology[loc.Sector]
	fmt.Printf("Sector:     %d\n", loc.Sector)
	fmt.Printf("Subsector:  %d\n", loc.SubSector)
	fmt.Printf("Neighbours: %v\n", info.Neighbours())
}

func cmdRoute(stack *wad.Stack, args []string) {
	fs := flag.NewFlagSet("route", flag.ExitOnError)
	all := fs.Bool("all", false, "Cross impassable lines too")
	fs.Parse(args)

	if fs.NArg() < 3 {
		fmt.Fprintln(os.Stderr, "Usage: wadtool route [-all] <name> <from> <to>")
		os.Exit(1)
	}
	from, errFrom := strconv.Atoi(fs.Arg(1))
	to, errTo := strconv.Atoi(fs.Arg(2))
	if errFrom != nil || errTo != nil {
		fmt.Fprintln(os.Stderr, "Error: sectors must be integers")
		os.Exit(1)
	}

	m := loadLevel(stack, fs.Arg(0))
	blocked := uint16(formats.LineBlocking)
	if *all {
		blocked = 0
	}

	route := m.Route(from, to, blocked)
	if route == nil {
		fmt.Printf("No route from sector %d to %d\n", from, to)
		os.Exit(1)
	}
	fmt.Printf("Route (%d sectors): %v\n", len(route), route)
}

func cmdImage(stack *wad.Stack, cfg *config.Config, kind string, args []string) {
	fs := flag.NewFlagSet(kind, flag.ExitOnError)
	light := fs.Int("light", -1, "Shade for a sector light level (0-255)")
	colormap := fs.Int("colormap", -1, "Shade through a COLORMAP index")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: wadtool %s [-light L | -colormap N] <name>\n", kind)
		os.Exit(1)
	}
	name := strings.ToUpper(fs.Arg(0))

	var k graphics.Kind
	switch kind {
	case "flat":
		k = graphics.KindFlat
	case "patch":
		k = graphics.KindPatch
	default:
		k = graphics.KindTexture
	}

	n := *colormap
	if n < 0 && *light >= 0 {
		n = formats.LightColorMap(*light)
	}
	images := stack.Images()
	if n >= 0 {
		lit, ok := stack.ColorMaps().Lit(stack.Palette(), n)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: no COLORMAP %d (needs PLAYPAL and COLORMAP)\n", n)
			os.Exit(1)
		}
		images = graphics.NewCache(graphics.WithPalette(stack, lit))
	}

	img, err := images.Image(k, name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	img = graphics.Scale(img, cfg.Export.Scale)
	path, err := graphics.WriteFile(cfg.Export.OutputDir, name, cfg.Export.Format, img)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing image: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Exported: %s (%dx%d)\n", path, img.Bounds().Dx(), img.Bounds().Dy())
}

func cmdEndoom(stack *wad.Stack) {
	e := stack.Endoom()
	if e == nil {
		fmt.Fprintln(os.Stderr, "No ENDOOM lump")
		os.Exit(1)
	}
	fmt.Print(e.Text())
}
