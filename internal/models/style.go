package models

// StyleID identifies a preset in the fixed catalog.
type StyleID string

const (
	StyleCinematic StyleID = "cinematic"
	StyleAction    StyleID = "action"
	StyleAesthetic StyleID = "aesthetic"
	StyleRealistic StyleID = "realistic"
)

func (s StyleID) String() string { return string(s) }

// StylePreset is a named, fixed bundle of effect labels and display metadata.
type StylePreset struct {
	ID          StyleID  `json:"id"`
	Emoji       string   `json:"emoji"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Effects     []string `json:"effects"`
	Theme       string   `json:"theme"` // gradient token used for cards and the progress bar
}

// Highlights returns at most n leading effects, as shown on a preset card.
func (p StylePreset) Highlights(n int) []string {
	if n > len(p.Effects) {
		n = len(p.Effects)
	}
	if n < 0 {
		n = 0
	}
	out := make([]string, n)
	copy(out, p.Effects[:n])
	return out
}

// Clone returns a deep copy so callers cannot mutate a catalog entry.
func (p StylePreset) Clone() StylePreset {
	p.Effects = append([]string(nil), p.Effects...)
	return p
}
