package artgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSVGDeterministic(t *testing.T) {
	g := NewGenerator()

	first := g.GenerateSVG("space cat")
	second := g.GenerateSVG("space cat")
	assert.Equal(t, first, second, "same prompt must produce identical output")
}

func TestGenerateSVGSeedNormalization(t *testing.T) {
	g := NewGenerator()

	assert.Equal(t, g.GenerateSVG("Space Cat"), g.GenerateSVG("space cat"))
	assert.Equal(t, g.GenerateSVG("  space cat  "), g.GenerateSVG("space cat"))
}

func TestGenerateSVGDistinctPrompts(t *testing.T) {
	g := NewGenerator()

	assert.NotEqual(t, g.GenerateSVG("space cat"), g.GenerateSVG("ocean dog"))
}

func TestGenerateSVGWellFormed(t *testing.T) {
	g := NewGenerator()

	svg := g.GenerateSVG("rainbow llama")
	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.True(t, strings.HasSuffix(svg, "</svg>"))
}

func TestGenerateDataURL(t *testing.T) {
	g := NewGenerator()

	url := g.GenerateDataURL("space cat")
	assert.True(t, strings.HasPrefix(url, "data:image/svg+xml;base64,"))
	assert.Equal(t, url, g.GenerateDataURL("space cat"))
}
