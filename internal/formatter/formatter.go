// package formatter renders the style catalog and transform history as JSON, CSV, Markdown, or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/vidstyle/internal/models"
	"github.com/desertthunder/vidstyle/internal/shared"
)

// Format names an output encoding.
type Format string

const (
	JSON     Format = "json"
	CSV      Format = "csv"
	Markdown Format = "markdown"
	Text     Format = "txt"
)

// Formats lists the supported encodings in display order.
var Formats = []Format{JSON, CSV, Markdown, Text}

// ParseFormat validates a --format flag value. "md" and "text" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return JSON, nil
	case "csv":
		return CSV, nil
	case "markdown", "md":
		return Markdown, nil
	case "txt", "text":
		return Text, nil
	}
	return "", fmt.Errorf("%w: unknown format %q (want json, csv, markdown, or txt)", shared.ErrInvalidFlag, s)
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	switch f {
	case CSV:
		return ".csv"
	case Markdown:
		return ".md"
	case Text:
		return ".txt"
	default:
		return ".json"
	}
}

// HistoryRecord is the exported shape of a [models.TransformJob].
type HistoryRecord struct {
	Sequence    int        `json:"sequence"`
	ID          string     `json:"id"`
	SessionID   string     `json:"session_id"`
	Style       string     `json:"style"`
	StyleTitle  string     `json:"style_title"`
	Media       string     `json:"media"`
	MediaSize   string     `json:"media_size"`
	MediaType   string     `json:"media_type"`
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Duration    string     `json:"duration,omitempty"`
}

// ToHistoryRecord flattens a job for export.
func ToHistoryRecord(job *models.TransformJob) HistoryRecord {
	m := job.Media()
	rec := HistoryRecord{
		Sequence:    job.Sequence(),
		ID:          job.ID(),
		SessionID:   job.SessionID(),
		Style:       string(job.StyleID()),
		StyleTitle:  job.StyleTitle(),
		Media:       m.Name,
		MediaSize:   shared.FormatMegabytes(m.Size),
		MediaType:   m.ContentType,
		Status:      string(job.Status()),
		Progress:    job.Progress(),
		StartedAt:   job.StartedAt(),
		CompletedAt: job.CompletedAt(),
	}
	if job.CompletedAt() != nil {
		rec.Duration = shared.FormatDuration(job.Duration())
	}
	return rec
}

// StylesToCSV converts presets to CSV with columns: ID, Emoji, Title, Description, Effects, Theme
func StylesToCSV(presets []models.StylePreset) ([]byte, error) {
	rows := make([][]string, 0, len(presets))
	for _, p := range presets {
		rows = append(rows, []string{string(p.ID), p.Emoji, p.Title, p.Description, strings.Join(p.Effects, "; "), p.Theme})
	}
	return writeCSV([]string{"ID", "Emoji", "Title", "Description", "Effects", "Theme"}, rows)
}

// StylesToMarkdown renders one section per preset with its full effect list
func StylesToMarkdown(presets []models.StylePreset) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Video Styles\n\n")
	for _, p := range presets {
		fmt.Fprintf(&buf, "## %s %s\n\n", p.Emoji, p.Title)
		fmt.Fprintf(&buf, "%s\n\n", p.Description)
		fmt.Fprintf(&buf, "**ID**: `%s`\n\n", p.ID)
		buf.WriteString("**Effects Applied**:\n\n")
		for _, effect := range p.Effects {
			fmt.Fprintf(&buf, "- %s\n", effect)
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// StylesToText renders one line per preset followed by its highlighted effects
func StylesToText(presets []models.StylePreset) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Styles: %d\n\n", len(presets))
	for i, p := range presets {
		fmt.Fprintf(&buf, "%d. %s %-10s %s\n", i+1, p.Emoji, p.Title, p.Description)
		fmt.Fprintf(&buf, "   %s (%s)\n", strings.Join(p.Highlights(3), ", "), p.ID)
	}

	return buf.Bytes(), nil
}

// HistoryToCSV converts jobs to CSV, one row per transform
func HistoryToCSV(jobs []*models.TransformJob) ([]byte, error) {
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		rec := ToHistoryRecord(job)
		completed := ""
		if rec.CompletedAt != nil {
			completed = rec.CompletedAt.Format(time.RFC3339)
		}
		rows = append(rows, []string{
			strconv.Itoa(rec.Sequence),
			rec.ID,
			rec.Style,
			rec.Media,
			rec.MediaSize,
			rec.Status,
			strconv.Itoa(rec.Progress),
			rec.StartedAt.Format(time.RFC3339),
			completed,
		})
	}
	return writeCSV([]string{"Sequence", "ID", "Style", "Media", "Size", "Status", "Progress", "Started", "Completed"}, rows)
}

// HistoryToMarkdown renders jobs as a Markdown table
func HistoryToMarkdown(jobs []*models.TransformJob) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Transform History\n\n")
	fmt.Fprintf(&buf, "**Transforms**: %d\n\n", len(jobs))
	if len(jobs) == 0 {
		return buf.Bytes(), nil
	}

	buf.WriteString("| # | Style | Media | Size | Status | Progress | Duration |\n")
	buf.WriteString("|---|-------|-------|------|--------|----------|----------|\n")
	for _, job := range jobs {
		rec := ToHistoryRecord(job)
		fmt.Fprintf(&buf, "| %d | %s | %s | %s | %s | %d%% | %s |\n",
			rec.Sequence, rec.StyleTitle, escapeCell(rec.Media), rec.MediaSize, rec.Status, rec.Progress, orDash(rec.Duration))
	}

	return buf.Bytes(), nil
}

// HistoryToText renders one line per job
func HistoryToText(jobs []*models.TransformJob) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Transforms: %d\n\n", len(jobs))
	for _, job := range jobs {
		rec := ToHistoryRecord(job)
		fmt.Fprintf(&buf, "#%d %s %s [%s] %s %d%%\n",
			rec.Sequence, rec.StartedAt.Format(time.DateTime), rec.Media, rec.StyleTitle, rec.Status, rec.Progress)
	}

	return buf.Bytes(), nil
}

// RenderStyles encodes presets in the given format.
func RenderStyles(presets []models.StylePreset, format Format) ([]byte, error) {
	switch format {
	case CSV:
		return StylesToCSV(presets)
	case Markdown:
		return StylesToMarkdown(presets)
	case Text:
		return StylesToText(presets)
	default:
		return shared.MarshalJSON(presets, true)
	}
}

// RenderHistory encodes jobs in the given format.
func RenderHistory(jobs []*models.TransformJob, format Format) ([]byte, error) {
	switch format {
	case CSV:
		return HistoryToCSV(jobs)
	case Markdown:
		return HistoryToMarkdown(jobs)
	case Text:
		return HistoryToText(jobs)
	default:
		records := make([]HistoryRecord, 0, len(jobs))
		for _, job := range jobs {
			records = append(records, ToHistoryRecord(job))
		}
		return shared.MarshalJSON(records, true)
	}
}

// Write sends data to path, creating parent directories, or to w when path is empty.
//
// Returns the path written, or "" for w.
func Write(w io.Writer, path string, data []byte) (string, error) {
	if path == "" {
		if _, err := w.Write(data); err != nil {
			return "", fmt.Errorf("failed to write output: %w", err)
		}
		return "", nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return path, nil
}

func writeCSV(headers []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, record := range rows {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
