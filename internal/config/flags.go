package config

import (
	"flag"
	"strings"
)

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagWAD     = flag.String("wad", "", "Comma-separated WAD paths, IWAD first")
	flagOut     = flag.String("out", "", "Output directory for exported images")
	flagFormat  = flag.String("format", "", "Image export format (png, bmp)")
	flagScale   = flag.Int("scale", 0, "Image export upscale factor")
	flagWorkers = flag.Int("workers", 0, "Levels loaded in parallel")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag arguments.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWAD != "" {
		cfg.Data.WADPaths = splitList(*flagWAD)
	}
	if *flagOut != "" {
		cfg.Export.OutputDir = *flagOut
	}
	if *flagFormat != "" {
		cfg.Export.Format = strings.ToLower(*flagFormat)
	}
	if *flagScale > 0 {
		cfg.Export.Scale = *flagScale
	}
	if *flagWorkers > 0 {
		cfg.Data.Workers = *flagWorkers
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
