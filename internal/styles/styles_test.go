package styles

import (
	"errors"
	"testing"

	"github.com/desertthunder/vidstyle/internal/models"
	"github.com/desertthunder/vidstyle/internal/shared"
)

func TestDefault(t *testing.T) {
	c := Default()

	if c.Len() != 4 {
		t.Fatalf("expected 4 presets, got %d", c.Len())
	}

	want := []models.StyleID{models.StyleCinematic, models.StyleAction, models.StyleAesthetic, models.StyleRealistic}
	for i, id := range c.IDs() {
		if id != want[i] {
			t.Errorf("IDs()[%d] = %s, want %s", i, id, want[i])
		}
	}

	for _, p := range c.All() {
		if p.Title == "" || p.Description == "" || p.Theme == "" || p.Emoji == "" {
			t.Errorf("preset %s has empty display fields", p.ID)
		}
		if len(p.Effects) != 5 {
			t.Errorf("preset %s has %d effects, want 5", p.ID, len(p.Effects))
		}
	}

	action, ok := c.Lookup(models.StyleAction)
	if !ok {
		t.Fatal("expected action preset")
	}
	if action.Title != "Action Style" {
		t.Errorf("expected title Action Style, got %s", action.Title)
	}
}

func TestCatalog(t *testing.T) {
	t.Run("entries are immutable", func(t *testing.T) {
		c := Default()

		p, _ := c.Lookup(models.StyleCinematic)
		p.Effects[0] = "mutated"
		p.Title = "mutated"

		all := c.All()
		all[0].Effects[1] = "mutated"

		again, _ := c.Lookup(models.StyleCinematic)
		if again.Title != "Cinematic Hero" || again.Effects[0] != "Deep shadows" || again.Effects[1] != "Neon lights" {
			t.Errorf("catalog entry was mutated: %+v", again)
		}

		ids := c.IDs()
		ids[0] = "mutated"
		if c.IDs()[0] != models.StyleCinematic {
			t.Error("IDs() should return a copy")
		}
	})

	t.Run("Must unknown style", func(t *testing.T) {
		_, err := Default().Must("noir")
		if !errors.Is(err, shared.ErrUnknownStyle) {
			t.Errorf("expected ErrUnknownStyle, got %v", err)
		}
	})

	t.Run("NewCatalog rejects duplicates", func(t *testing.T) {
		p := models.StylePreset{ID: "a", Title: "A"}
		if _, err := NewCatalog(p, p); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("NewCatalog rejects empty ID", func(t *testing.T) {
		if _, err := NewCatalog(models.StylePreset{Title: "A"}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("NewCatalog copies input", func(t *testing.T) {
		effects := []string{"one", "two"}
		c, err := NewCatalog(models.StylePreset{ID: "a", Effects: effects})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		effects[0] = "mutated"

		p, _ := c.Lookup("a")
		if p.Effects[0] != "one" {
			t.Error("catalog should not alias caller slices")
		}
	})
}

func TestGradientStops(t *testing.T) {
	for _, p := range Default().All() {
		if stops := GradientStops(p.Theme); len(stops) != 3 {
			t.Errorf("preset %s theme %q resolved to %v", p.ID, p.Theme, stops)
		}
	}

	stops := GradientStops("from-nowhere-1")
	if len(stops) != 2 || stops[0] != FallbackStops[0] {
		t.Errorf("expected fallback stops, got %v", stops)
	}
	stops[0] = "mutated"
	if FallbackStops[0] == "mutated" {
		t.Error("fallback stops were mutated")
	}
}
