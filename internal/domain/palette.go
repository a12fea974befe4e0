package domain

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
	"gopkg.in/yaml.v3"
)

// Palette maps each category to the colour its chart layer is drawn in.
// Alpha is carried separately from RGB so overlays can fade a whole palette.
type Palette map[Category]drawing.Color

// DefaultPalette returns the built-in colours at full opacity.
func DefaultPalette() Palette {
	return Palette{
		Nuclear:     rgb(0.29, 0.29, 0.29),
		Hydro:       rgb(0.48, 0.68, 0.9),
		ThermalCoal: rgb(0.91, 0.48, 0.46),
		ThermalGas:  rgb(0.95, 0.68, 0.46),
		ThermalOil:  rgb(0.91, 0.48, 0.29),
		Geothermal:  rgb(0.43, 0.44, 0.9),
		Wind:        rgb(0.72, 0.9, 0.54),
		Solar:       rgb(0.35, 0.65, 0.65),
		Other:       rgb(0.9, 0.82, 0.46),
	}
}

// WithAlpha returns a copy of p with every colour's opacity set to alpha (0..1).
func (p Palette) WithAlpha(alpha float64) Palette {
	a := unit(alpha)
	out := make(Palette, len(p))
	for c, col := range p {
		col.A = a
		out[c] = col
	}
	return out
}

// Merge returns a copy of p with the entries of override replacing its own.
func (p Palette) Merge(override Palette) Palette {
	out := make(Palette, len(p)+len(override))
	for c, col := range p {
		out[c] = col
	}
	for c, col := range override {
		out[c] = col
	}
	return out
}

// Subset returns the colours for cats in the given order. Categories
// without an entry get opaque black.
func (p Palette) Subset(cats []Category) []drawing.Color {
	out := make([]drawing.Color, len(cats))
	for i, c := range cats {
		col, ok := p[c]
		if !ok {
			col = drawing.Color{A: 255}
		}
		out[i] = col
	}
	return out
}

// paletteFile is the YAML layout accepted by LoadPalette:
//
//	alpha: 1.0
//	colors:
//	  Nuclear: {rgb: [0.29, 0.29, 0.29]}
//	  Hydro:   {hex: "#7aade6"}
type paletteFile struct {
	Alpha  *float64             `yaml:"alpha"`
	Colors map[string]colorSpec `yaml:"colors"`
}

type colorSpec struct {
	RGB []float64 `yaml:"rgb"`
	Hex string    `yaml:"hex"`
}

// LoadPalette reads a YAML palette override. Keys may be canonical labels or
// raw HJKS identifiers. The result holds only the entries named in the file;
// merge it over DefaultPalette to fill the rest.
func LoadPalette(r io.Reader) (Palette, error) {
	var f paletteFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode palette: %w", err)
	}

	out := make(Palette, len(f.Colors))
	for key, entry := range f.Colors {
		c, ok := ParseCategory(key)
		if !ok {
			return nil, fmt.Errorf("palette: unknown category %q", key)
		}
		col, err := entry.color()
		if err != nil {
			return nil, fmt.Errorf("palette: %s: %w", key, err)
		}
		out[c] = col
	}
	if f.Alpha != nil {
		out = out.WithAlpha(*f.Alpha)
	}
	return out, nil
}

// LoadPaletteFile returns DefaultPalette with the overrides in the YAML file
// at path applied. An empty path yields the default palette.
func LoadPaletteFile(path string) (Palette, error) {
	base := DefaultPalette()
	if path == "" {
		return base, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open palette: %w", err)
	}
	defer f.Close()

	override, err := LoadPalette(f)
	if err != nil {
		return nil, err
	}
	return base.Merge(override), nil
}

func (s colorSpec) color() (drawing.Color, error) {
	switch {
	case s.Hex != "":
		hex := strings.TrimPrefix(strings.TrimSpace(s.Hex), "#")
		if len(hex) != 6 || strings.Trim(strings.ToLower(hex), "0123456789abcdef") != "" {
			return drawing.Color{}, fmt.Errorf("hex colour %q must be #rrggbb", s.Hex)
		}
		return drawing.ColorFromHex(hex), nil
	case len(s.RGB) == 3:
		for _, v := range s.RGB {
			if v < 0 || v > 1 {
				return drawing.Color{}, fmt.Errorf("rgb components must be within 0..1")
			}
		}
		return rgb(s.RGB[0], s.RGB[1], s.RGB[2]), nil
	default:
		return drawing.Color{}, errors.New("need rgb triple or hex")
	}
}

func rgb(r, g, b float64) drawing.Color {
	return drawing.Color{R: unit(r), G: unit(g), B: unit(b), A: 255}
}

// unit converts a 0..1 component to 0..255, clamping out-of-range input.
func unit(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}
