package server

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/busrasuhaydar/fluden/internal/fluid"
)

type tuningConfig struct {
	TickMs           *int     `json:"tickMs"`
	PathFrames       *int     `json:"pathFrames"`
	KeysPerSession   *int     `json:"keysPerSession"`
	IdleSeconds      *float64 `json:"idleSeconds"`
	MinSpawnDistance *float64 `json:"minSpawnDistance"`
	SpawnMargin      *float64 `json:"spawnMargin"`
}

type appConfigFile struct {
	Animation *tuningConfig `json:"animation"`
}

// TuningOverrides represents optional command-line overrides applied on
// top of the config file.
type TuningOverrides struct {
	TickMs           *int
	PathFrames       *int
	KeysPerSession   *int
	IdleSeconds      *float64
	MinSpawnDistance *float64
	SpawnMargin      *float64
}

func (o TuningOverrides) apply(base fluid.Tuning) fluid.Tuning {
	if o.TickMs != nil {
		base.TickMs = *o.TickMs
	}
	if o.PathFrames != nil {
		base.PathFrames = *o.PathFrames
	}
	if o.KeysPerSession != nil {
		base.KeysPerSession = *o.KeysPerSession
	}
	if o.IdleSeconds != nil {
		base.IdleSeconds = *o.IdleSeconds
	}
	if o.MinSpawnDistance != nil {
		base.MinSpawnDistance = *o.MinSpawnDistance
	}
	if o.SpawnMargin != nil {
		base.SpawnMargin = *o.SpawnMargin
	}
	return fluid.SanitizeTuning(base)
}

func mergeTuningConfig(base fluid.Tuning, cfg *tuningConfig) fluid.Tuning {
	if cfg == nil {
		return base
	}
	if cfg.TickMs != nil {
		base.TickMs = *cfg.TickMs
	}
	if cfg.PathFrames != nil {
		base.PathFrames = *cfg.PathFrames
	}
	if cfg.KeysPerSession != nil {
		base.KeysPerSession = *cfg.KeysPerSession
	}
	if cfg.IdleSeconds != nil {
		base.IdleSeconds = *cfg.IdleSeconds
	}
	if cfg.MinSpawnDistance != nil {
		base.MinSpawnDistance = *cfg.MinSpawnDistance
	}
	if cfg.SpawnMargin != nil {
		base.SpawnMargin = *cfg.SpawnMargin
	}
	return fluid.SanitizeTuning(base)
}

func loadTuningFromFile(path string, base fluid.Tuning) (fluid.Tuning, error) {
	if path == "" {
		return fluid.SanitizeTuning(base), nil
	}
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fluid.SanitizeTuning(base), nil
		}
		return fluid.SanitizeTuning(base), fmt.Errorf("read config %q: %w", cleanPath, err)
	}
	var cfg appConfigFile
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fluid.SanitizeTuning(base), fmt.Errorf("parse config %q: %w", cleanPath, err)
	}
	return mergeTuningConfig(base, cfg.Animation), nil
}
