package main

import (
	"flag"
	"math"
	"os"

	"github.com/joho/godotenv"

	"github.com/busrasuhaydar/fluden/internal/server"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", envOr("FLUDEN_ADDR", ":8080"), "address to listen on (e.g., 127.0.0.1:8080)")
	configPath := flag.String("config", envOr("FLUDEN_CONFIG", "configs/fluden.json"), "path to animation tuning JSON")
	palettePath := flag.String("palettes", envOr("FLUDEN_PALETTES", "configs/palettes.yaml"), "path to palette override YAML")
	tickMs := flag.Float64("tick-ms", math.NaN(), "override scheduler tick period in milliseconds")
	pathFrames := flag.Float64("path-frames", math.NaN(), "override ticks per path")
	sessionKeys := flag.Float64("session-keys", math.NaN(), "override key presses per session")
	idleSeconds := flag.Float64("idle-seconds", math.NaN(), "override idle-clear threshold in seconds")
	minDistance := flag.Float64("min-distance", math.NaN(), "override minimum spawn spacing in pixels")
	spawnMargin := flag.Float64("spawn-margin", math.NaN(), "override spawn margin in pixels")
	flag.Parse()

	cfg := server.DefaultAppConfig()
	cfg.ConfigPath = *configPath
	cfg.PalettePath = *palettePath

	var overrides server.TuningOverrides

	if !math.IsNaN(*tickMs) {
		val := int(*tickMs)
		overrides.TickMs = &val
	}
	if !math.IsNaN(*pathFrames) {
		val := int(*pathFrames)
		overrides.PathFrames = &val
	}
	if !math.IsNaN(*sessionKeys) {
		val := int(*sessionKeys)
		overrides.KeysPerSession = &val
	}
	if !math.IsNaN(*idleSeconds) {
		val := *idleSeconds
		overrides.IdleSeconds = &val
	}
	if !math.IsNaN(*minDistance) {
		val := *minDistance
		overrides.MinSpawnDistance = &val
	}
	if !math.IsNaN(*spawnMargin) {
		val := *spawnMargin
		overrides.SpawnMargin = &val
	}

	cfg.Overrides = overrides

	server.StartApp(*addr, cfg)
}
