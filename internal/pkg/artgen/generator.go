// internal/pkg/artgen/generator.go
package artgen

import (
	"encoding/base64"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
)

// Generator produces deterministic placeholder sticker art from a text
// prompt. The prompt is hashed with FNV-1a into a PRNG seed, so the same
// prompt yields byte-identical output on every platform.
type Generator struct {
	size     int
	palettes [][]string
}

// NewGenerator creates a generator with the default canvas size and palettes
func NewGenerator() *Generator {
	return &Generator{
		size: 512,
		palettes: [][]string{
			{"#FF6B6B", "#FFD93D", "#6BCB77", "#4D96FF"},
			{"#F72585", "#7209B7", "#3A0CA3", "#4CC9F0"},
			{"#FF9F1C", "#FFBF69", "#CBF3F0", "#2EC4B6"},
			{"#E63946", "#F1FAEE", "#A8DADC", "#457B9D"},
			{"#606C38", "#283618", "#FEFAE0", "#DDA15E"},
		},
	}
}

// GenerateSVG renders the placeholder design for a prompt as an SVG document
func (g *Generator) GenerateSVG(prompt string) string {
	rng := rand.New(rand.NewSource(seed(prompt)))
	palette := g.palettes[rng.Intn(len(g.palettes))]

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		g.size, g.size, g.size, g.size)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" rx="%d" fill="%s"/>`,
		g.size, g.size, g.size/8, palette[rng.Intn(len(palette))])

	shapes := 6 + rng.Intn(6)
	for i := 0; i < shapes; i++ {
		color := palette[rng.Intn(len(palette))]
		x := rng.Intn(g.size)
		y := rng.Intn(g.size)
		switch rng.Intn(3) {
		case 0:
			r := 16 + rng.Intn(g.size/6)
			fmt.Fprintf(&b, `<circle cx="%d" cy="%d" r="%d" fill="%s" opacity="0.8"/>`, x, y, r, color)
		case 1:
			w := 24 + rng.Intn(g.size/4)
			h := 24 + rng.Intn(g.size/4)
			fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="%d" rx="8" fill="%s" opacity="0.8" transform="rotate(%d %d %d)"/>`,
				x, y, w, h, color, rng.Intn(360), x, y)
		default:
			s := 24 + rng.Intn(g.size/5)
			fmt.Fprintf(&b, `<polygon points="%d,%d %d,%d %d,%d" fill="%s" opacity="0.8"/>`,
				x, y, x+s, y, x+s/2, y-s, color)
		}
	}

	b.WriteString(`</svg>`)
	return b.String()
}

// GenerateDataURL renders the design as an inline image data URL
func (g *Generator) GenerateDataURL(prompt string) string {
	svg := g.GenerateSVG(prompt)
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))
}

// seed hashes the prompt into a PRNG seed. Case and surrounding
// whitespace do not change the design.
func seed(prompt string) int64 {
	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(prompt))))
	return int64(h.Sum64())
}
