// Package styles holds the immutable preset catalog.
//
// A [Catalog] is built once at process start and injected into every session controller.
// Accessors return copies, so no caller can mutate an entry after construction.
package styles

import (
	"fmt"

	"github.com/desertthunder/vidstyle/internal/models"
	"github.com/desertthunder/vidstyle/internal/shared"
)

// Catalog is an ordered, read-only set of presets.
type Catalog struct {
	order   []models.StyleID
	presets map[models.StyleID]models.StylePreset
}

// NewCatalog builds a catalog from presets, preserving their order.
//
// Empty or duplicate identifiers are rejected.
func NewCatalog(presets ...models.StylePreset) (*Catalog, error) {
	c := &Catalog{
		order:   make([]models.StyleID, 0, len(presets)),
		presets: make(map[models.StyleID]models.StylePreset, len(presets)),
	}

	for _, p := range presets {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: preset without identifier", shared.ErrInvalidInput)
		}
		if _, ok := c.presets[p.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate preset %q", shared.ErrInvalidInput, p.ID)
		}
		c.order = append(c.order, p.ID)
		c.presets[p.ID] = p.Clone()
	}

	return c, nil
}

// Default returns the built-in catalog of four presets.
func Default() *Catalog {
	c, err := NewCatalog(builtin()...)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in catalog: %v", err))
	}
	return c
}

// Lookup returns the preset for id.
func (c *Catalog) Lookup(id models.StyleID) (models.StylePreset, bool) {
	p, ok := c.presets[id]
	if !ok {
		return models.StylePreset{}, false
	}
	return p.Clone(), true
}

// Must returns the preset for id or an [shared.ErrUnknownStyle] error.
func (c *Catalog) Must(id models.StyleID) (models.StylePreset, error) {
	p, ok := c.Lookup(id)
	if !ok {
		return models.StylePreset{}, fmt.Errorf("%w: %q", shared.ErrUnknownStyle, id)
	}
	return p, nil
}

// All returns every preset in catalog order.
func (c *Catalog) All() []models.StylePreset {
	out := make([]models.StylePreset, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.presets[id].Clone())
	}
	return out
}

// IDs returns the preset identifiers in catalog order.
func (c *Catalog) IDs() []models.StyleID {
	return append([]models.StyleID(nil), c.order...)
}

// Len returns the number of presets.
func (c *Catalog) Len() int { return len(c.order) }

func builtin() []models.StylePreset {
	return []models.StylePreset{
		{
			ID:          models.StyleCinematic,
			Emoji:       "🎥",
			Title:       "Cinematic Hero",
			Description: "Dramatic hero-style cinematic edit with deep shadows, neon lights, and movie-grade color grading",
			Theme:       "from-purple-600 via-pink-600 to-red-600",
			Effects:     []string{"Deep shadows", "Neon lights", "Slow-motion feel", "Movie-grade color", "Crisp details"},
		},
		{
			ID:          models.StyleAction,
			Emoji:       "⚡",
			Title:       "Action Style",
			Description: "Intense action sequence with fast-paced motion clarity and sharp edges",
			Theme:       "from-orange-600 via-red-600 to-pink-600",
			Effects:     []string{"Motion clarity", "Sharp edges", "Darker tones", "Punchy highlights", "Shake stabilization"},
		},
		{
			ID:          models.StyleAesthetic,
			Emoji:       "🌈",
			Title:       "Aesthetic Smooth",
			Description: "Modern aesthetic edit with soft pastel colors and dreamy glow",
			Theme:       "from-blue-400 via-purple-400 to-pink-400",
			Effects:     []string{"Soft pastels", "Smooth transitions", "Creamy highlights", "Clean skin", "Dreamy glow"},
		},
		{
			ID:          models.StyleRealistic,
			Emoji:       "😎",
			Title:       "Realistic AI Upgrade",
			Description: "Ultra-realistic enhancement with clean details and natural colors",
			Theme:       "from-green-600 via-teal-600 to-blue-600",
			Effects:     []string{"Clean skin details", "Sharpened faces", "Natural colors", "Realistic lighting", "4K enhancement"},
		},
	}
}
