package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/vidstyle/internal/models"
)

var _ list.Item = styleItem{}

// styleItem wraps [models.StylePreset] to implement [list.Item].
type styleItem struct {
	preset models.StylePreset
}

func (i styleItem) FilterValue() string { return i.preset.Title }
func (i styleItem) Title() string       { return fmt.Sprintf("%s  %s", i.preset.Emoji, i.preset.Title) }
func (i styleItem) Description() string { return i.preset.Description }

func styleItems(presets []models.StylePreset) []list.Item {
	items := make([]list.Item, len(presets))
	for i, p := range presets {
		items[i] = styleItem{preset: p}
	}
	return items
}
