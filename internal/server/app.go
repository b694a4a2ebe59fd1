package server

import (
	"log"
	"time"

	"github.com/busrasuhaydar/fluden/internal/fluid"
)

type AppConfig struct {
	ConfigPath  string
	PalettePath string
	Overrides   TuningOverrides
}

func DefaultAppConfig() AppConfig {
	return AppConfig{
		ConfigPath:  "configs/fluden.json",
		PalettePath: "configs/palettes.yaml",
	}
}

func resolveTuning(cfg AppConfig) fluid.Tuning {
	tuning := fluid.DefaultTuning()
	loaded, err := loadTuningFromFile(cfg.ConfigPath, tuning)
	if err != nil {
		log.Printf("config: %v (using defaults)", err)
	} else {
		tuning = loaded
	}
	return cfg.Overrides.apply(tuning)
}

func resolvePalettes(cfg AppConfig) *fluid.PaletteTable {
	palettes := fluid.DefaultPaletteTable()
	if cfg.PalettePath != "" {
		if err := palettes.LoadFile(cfg.PalettePath); err != nil {
			log.Printf("palettes: %v (keeping built-ins)", err)
		}
	}
	return palettes
}

func StartApp(addr string, cfg AppConfig) {
	tuning := resolveTuning(cfg)
	palettes := resolvePalettes(cfg)
	hub := fluid.NewHub(palettes, tuning, func() int64 { return time.Now().UnixNano() })

	// Periodic cleanup of stages with no renderer attached.
	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			hub.CleanupQuietStages()
		}
	}()

	log.Printf("starting fluden on %s (tick %dms, %d frames/path, %d keys/session, %d palettes)",
		addr, tuning.TickMs, tuning.PathFrames, tuning.KeysPerSession, palettes.Len())
	startServer(hub, addr)
}
