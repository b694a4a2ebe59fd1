package fluid

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// Palette is the ordered color ramp a path fades through over its life.
// Always exactly PaletteSize entries, channels normalized to [0,1].
type Palette []Color

// PaletteTable maps lowercase "<note><octave>" key identifiers (sharps
// written as "c#4") to their palettes. Keys are expected pre-normalized
// by the caller; no case folding happens here.
type PaletteTable struct {
	palettes map[string]Palette
}

func (t *PaletteTable) Lookup(keyID string) (Palette, bool) {
	p, ok := t.palettes[keyID]
	return p, ok
}

func (t *PaletteTable) Len() int { return len(t.palettes) }

// LoadFile merges palettes from a YAML file over the built-in table.
// Entries are authored as lists of [r, g, b] triples in 0-255. Entries
// that do not hold exactly PaletteSize colors are skipped with an error
// naming the offending key; valid entries are still applied.
func (t *PaletteTable) LoadFile(path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read palette file %q: %w", path, err)
	}
	var raw map[string][][3]int
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse palette file %q: %w", path, err)
	}
	var bad []string
	for key, triples := range raw {
		if len(triples) != PaletteSize {
			bad = append(bad, key)
			continue
		}
		palette := make(Palette, 0, PaletteSize)
		for _, c := range triples {
			palette = append(palette, Color{
				R: Clamp(float64(c[0]), 0, 255) / 255.0,
				G: Clamp(float64(c[1]), 0, 255) / 255.0,
				B: Clamp(float64(c[2]), 0, 255) / 255.0,
			})
		}
		t.palettes[key] = palette
	}
	if len(bad) > 0 {
		return fmt.Errorf("palette file %q: keys %v need exactly %d colors", path, bad, PaletteSize)
	}
	return nil
}

func mustPalette(hexes ...string) Palette {
	if len(hexes) != PaletteSize {
		panic(fmt.Sprintf("palette needs %d colors, got %d", PaletteSize, len(hexes)))
	}
	p := make(Palette, 0, PaletteSize)
	for _, h := range hexes {
		var r, g, b int
		if _, err := fmt.Sscanf(h, "#%02x%02x%02x", &r, &g, &b); err != nil {
			panic(fmt.Sprintf("bad palette color %q: %v", h, err))
		}
		p = append(p, Color{R: float64(r) / 255.0, G: float64(g) / 255.0, B: float64(b) / 255.0})
	}
	return p
}

// DefaultPaletteTable covers two chromatic octaves, each key stepping
// from a deep base hue out to a pale highlight.
func DefaultPaletteTable() *PaletteTable {
	return &PaletteTable{palettes: map[string]Palette{
		"c4":  mustPalette("#4b0606", "#710f0b", "#961d12", "#b92d1a", "#da4124", "#dd694c", "#e18d73", "#e7ae98", "#eeccbd", "#f6e7df"),
		"c#4": mustPalette("#4b2906", "#71420b", "#965e12", "#b97c1a", "#da9c24", "#ddb24c", "#e1c573", "#e7d698", "#eee5bd", "#f6f3df"),
		"d4":  mustPalette("#4b4b06", "#6d710b", "#8b9612", "#a6b91a", "#bdda24", "#c0dd4c", "#c7e173", "#d1e798", "#deeebd", "#eef6df"),
		"d#4": mustPalette("#294b06", "#3a710b", "#499612", "#56b91a", "#62da24", "#77dd4c", "#8fe173", "#aae798", "#c5eebd", "#e2f6df"),
		"e4":  mustPalette("#064b06", "#0b710f", "#12961d", "#1ab92d", "#24da41", "#4cdd69", "#73e18d", "#98e7ae", "#bdeecc", "#dff6e7"),
		"f4":  mustPalette("#064b29", "#0b7142", "#12965e", "#1ab97c", "#24da9c", "#4cddb2", "#73e1c5", "#98e7d6", "#bdeee5", "#dff6f3"),
		"f#4": mustPalette("#064b4b", "#0b6d71", "#128b96", "#1aa6b9", "#24bdda", "#4cc0dd", "#73c7e1", "#98d1e7", "#bddeee", "#dfeef6"),
		"g4":  mustPalette("#06294b", "#0b3a71", "#124996", "#1a56b9", "#2462da", "#4c77dd", "#738fe1", "#98aae7", "#bdc5ee", "#dfe2f6"),
		"g#4": mustPalette("#06064b", "#0f0b71", "#1d1296", "#2d1ab9", "#4124da", "#694cdd", "#8d73e1", "#ae98e7", "#ccbdee", "#e7dff6"),
		"a4":  mustPalette("#29064b", "#420b71", "#5e1296", "#7c1ab9", "#9c24da", "#b24cdd", "#c573e1", "#d698e7", "#e5bdee", "#f3dff6"),
		"a#4": mustPalette("#4b064b", "#710b6d", "#96128b", "#b91aa6", "#da24bd", "#dd4cc0", "#e173c7", "#e798d1", "#eebdde", "#f6dfee"),
		"b4":  mustPalette("#4b0629", "#710b3a", "#961249", "#b91a56", "#da2462", "#dd4c77", "#e1738f", "#e798aa", "#eebdc5", "#f6dfe2"),
		"c5":  mustPalette("#7e331b", "#9b4524", "#b75a2e", "#cb7240", "#d18d60", "#d7a680", "#dfbd9e", "#e7d2bc", "#f0e6d8", "#fbf8f4"),
		"c#5": mustPalette("#7e641b", "#9b8124", "#b79e2e", "#cbb840", "#d1c560", "#d7d280", "#dfdd9e", "#e6e7bc", "#eff0d8", "#fafbf4"),
		"d5":  mustPalette("#667e1b", "#7a9b24", "#8bb72e", "#99cb40", "#a4d160", "#b1d780", "#c0df9e", "#d1e7bc", "#e3f0d8", "#f7fbf4"),
		"d#5": mustPalette("#357e1b", "#3e9b24", "#47b72e", "#53cb40", "#6bd160", "#85d780", "#9fdf9e", "#bce7bd", "#d8f0da", "#f4fbf5"),
		"e5":  mustPalette("#1b7e33", "#249b45", "#2eb75a", "#40cb72", "#60d18d", "#80d7a6", "#9edfbd", "#bce7d2", "#d8f0e6", "#f4fbf8"),
		"f5":  mustPalette("#1b7e64", "#249b81", "#2eb79e", "#40cbb8", "#60d1c5", "#80d7d2", "#9edfdd", "#bce6e7", "#d8eff0", "#f4fafb"),
		"f#5": mustPalette("#1b667e", "#247a9b", "#2e8bb7", "#4099cb", "#60a4d1", "#80b1d7", "#9ec0df", "#bcd1e7", "#d8e3f0", "#f4f7fb"),
		"g5":  mustPalette("#1b357e", "#243e9b", "#2e47b7", "#4053cb", "#606bd1", "#8085d7", "#9e9fdf", "#bdbce7", "#dad8f0", "#f5f4fb"),
		"g#5": mustPalette("#331b7e", "#45249b", "#5a2eb7", "#7240cb", "#8d60d1", "#a680d7", "#bd9edf", "#d2bce7", "#e6d8f0", "#f8f4fb"),
		"a5":  mustPalette("#641b7e", "#81249b", "#9e2eb7", "#b840cb", "#c560d1", "#d280d7", "#dd9edf", "#e7bce6", "#f0d8ef", "#fbf4fa"),
		"a#5": mustPalette("#7e1b66", "#9b247a", "#b72e8b", "#cb4099", "#d160a4", "#d780b1", "#df9ec0", "#e7bcd1", "#f0d8e3", "#fbf4f7"),
		"b5":  mustPalette("#7e1b35", "#9b243e", "#b72e47", "#cb4053", "#d1606b", "#d78085", "#df9e9f", "#e7bdbc", "#f0dad8", "#fbf5f4"),
	}}
}
