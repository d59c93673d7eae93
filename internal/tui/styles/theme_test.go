package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestPaletteAdaptsToBackground(t *testing.T) {
	for name, c := range map[string]lipgloss.AdaptiveColor{
		"primary": Primary, "secondary": Secondary, "success": Success,
		"warning": Warning, "error": Error, "muted": Muted, "text": Text,
	} {
		assert.NotEmpty(t, c.Light, name)
		assert.NotEmpty(t, c.Dark, name)
		assert.NotEqual(t, c.Light, c.Dark, name)
	}
}

func TestLabelKeepsFormColumnsAligned(t *testing.T) {
	assert.Equal(t, 14, lipgloss.Width(Label.Render("Lat:")))
}
