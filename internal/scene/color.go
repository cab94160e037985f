package scene

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Color is the display color of a marker.
type Color = color.RGBA

// PendingColor is used for the unsaved marker regardless of floor.
var PendingColor = colornames.Red

// ColorNames lists the recognized color names in sorted order.
func ColorNames() []string {
	return append([]string(nil), colornames.Names...)
}

// ParseColor accepts an SVG color name (case and separator insensitive, so
// "dark-green" and "darkGreen" both work) or a #rrggbb hex value.
func ParseColor(s string) (Color, error) {
	spec := strings.ToLower(strings.TrimSpace(s))
	if spec == "" {
		return Color{}, fmt.Errorf("color cannot be empty")
	}
	if strings.HasPrefix(spec, "#") {
		if len(spec) != 7 {
			return Color{}, fmt.Errorf("invalid hex color %q", s)
		}
		v, err := strconv.ParseUint(spec[1:], 16, 32)
		if err != nil {
			return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
	}

	key := strings.NewReplacer("-", "", "_", "", " ", "").Replace(spec)
	if c, ok := colornames.Map[key]; ok {
		return c, nil
	}
	return Color{}, fmt.Errorf("unknown color %q", s)
}

// FormatColor renders a color as #rrggbb.
func FormatColor(c Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Palette maps floor numbers to permanent marker colors.
type Palette struct {
	colors   map[int]Color
	fallback Color
}

// DefaultPalette is floor 1 blue, floor 2 cyan, everything else dark green.
func DefaultPalette() Palette {
	return Palette{
		colors: map[int]Color{
			1: colornames.Blue,
			2: colornames.Cyan,
		},
		fallback: colornames.Darkgreen,
	}
}

// NewPalette layers per-floor overrides on top of the default palette.
func NewPalette(overrides map[int]Color) Palette {
	p := DefaultPalette()
	for floor, c := range overrides {
		p.colors[floor] = c
	}
	return p
}

// ParsePalette builds a palette from floor -> color strings, as found in config.
func ParsePalette(entries map[string]string) (Palette, error) {
	overrides := make(map[int]Color, len(entries))
	for k, v := range entries {
		floor, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil || floor < 1 {
			return Palette{}, fmt.Errorf("invalid palette floor %q", k)
		}
		c, err := ParseColor(v)
		if err != nil {
			return Palette{}, fmt.Errorf("palette floor %d: %w", floor, err)
		}
		overrides[floor] = c
	}
	return NewPalette(overrides), nil
}

// For returns the color assigned to a floor.
func (p Palette) For(floor int) Color {
	if c, ok := p.colors[floor]; ok {
		return c
	}
	return p.fallback
}
