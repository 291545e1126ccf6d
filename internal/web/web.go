// Package web serves the browser interface for style transforms.
//
// # Architecture
//
// A single server-rendered page (html/template, embedded) drives a JSON API. The page creates a session
// on load, then reflects every change pushed over Server-Sent Events. All state lives in the
// [session.Controller] owned by the [session.Store]; the browser only renders snapshots.
//
// Routes
//
//	GET    /                              → page
//	GET    /api/styles                    → preset catalog
//	POST   /api/sessions                  → create session (201)
//	GET    /api/sessions/{id}             → snapshot
//	DELETE /api/sessions/{id}             → tear down session
//	PUT    /api/sessions/{id}/style       → {"style": "action"}
//	POST   /api/sessions/{id}/media       → multipart field "video"
//	DELETE /api/sessions/{id}/media       → clear media
//	POST   /api/sessions/{id}/transform   → start transform (202)
//	GET    /api/sessions/{id}/events      → SSE stream of "snapshot" events
//	GET    /preview/{token}               → preview bytes with Range support
//	GET    /healthz                       → liveness
//
// # Progress Streaming
//
// The events handler subscribes to the controller with a one-slot signal channel. Notifications coalesce,
// and each wake-up sends the controller's current snapshot, so a slow browser never blocks the ticker and
// always converges on the latest state. Snapshot versions are sent as SSE ids.
//
// # Errors
//
// Domain errors map to statuses in [StatusFor] and are returned as {"error": "..."}.
package web

import (
	"embed"
	"html/template"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidstyle/internal/models"
	"github.com/desertthunder/vidstyle/internal/server"
	"github.com/desertthunder/vidstyle/internal/session"
	"github.com/desertthunder/vidstyle/internal/shared"
	"github.com/desertthunder/vidstyle/internal/styles"
)

//go:embed templates/*.html
var templateFS embed.FS

const defaultHeartbeat = 15 * time.Second

// PreviewSource opens the bytes behind a live preview token.
type PreviewSource interface {
	Open(token string) (*os.File, models.Media, error)
}

// Options configures a [Handler].
type Options struct {
	Store          *session.Store  // Live sessions (required)
	Catalog        *styles.Catalog // Preset table (default: [styles.Default])
	Previews       PreviewSource   // Preview file lookup (required)
	MaxUploadBytes int64           // Upload limit; 0 disables the check
	Heartbeat      time.Duration   // SSE keep-alive period (default: 15s)
	Logger         *log.Logger
}

// Handler serves the page, the JSON API, event streams, and previews.
type Handler struct {
	store     *session.Store
	catalog   *styles.Catalog
	previews  PreviewSource
	maxUpload int64
	heartbeat time.Duration
	logger    *log.Logger
	page      *template.Template

	mux    *http.ServeMux
	routes []string
}

var _ server.Handler = (*Handler)(nil)

// New builds the handler and its route table.
func New(opts Options) (*Handler, error) {
	if opts.Store == nil || opts.Previews == nil {
		return nil, shared.ErrInvalidConfig
	}
	if opts.Catalog == nil {
		opts.Catalog = styles.Default()
	}
	if opts.Heartbeat <= 0 {
		opts.Heartbeat = defaultHeartbeat
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	page, err := template.New("index.html").Funcs(template.FuncMap{
		"gradient": func(theme string) template.CSS {
			return template.CSS(GradientCSS(theme))
		},
		"gradientText": GradientCSS,
		"highlights": func(p models.StylePreset) []string {
			return p.Highlights(3)
		},
	}).ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, err
	}

	h := &Handler{
		store:     opts.Store,
		catalog:   opts.Catalog,
		previews:  opts.Previews,
		maxUpload: opts.MaxUploadBytes,
		heartbeat: opts.Heartbeat,
		logger:    shared.WithLogger(opts.Logger, "component", "web"),
		page:      page,
		mux:       http.NewServeMux(),
	}

	h.route("GET /{$}", h.handleIndex)
	h.route("GET /healthz", h.handleHealth)
	h.route("GET /api/styles", h.handleStyles)
	h.route("POST /api/sessions", h.handleCreateSession)
	h.route("GET /api/sessions/{id}", h.handleGetSession)
	h.route("DELETE /api/sessions/{id}", h.handleDeleteSession)
	h.route("PUT /api/sessions/{id}/style", h.handleSelectStyle)
	h.route("POST /api/sessions/{id}/media", h.handleUploadMedia)
	h.route("DELETE /api/sessions/{id}/media", h.handleClearMedia)
	h.route("POST /api/sessions/{id}/transform", h.handleStartTransform)
	h.route("GET /api/sessions/{id}/events", h.handleEvents)
	h.route("GET /preview/{token}", h.handlePreview)

	return h, nil
}

func (h *Handler) route(pattern string, fn http.HandlerFunc) {
	h.mux.HandleFunc(pattern, fn)
	h.routes = append(h.routes, pattern)
}

// Routes returns the patterns registered by [New].
func (h *Handler) Routes() []string {
	return append([]string(nil), h.routes...)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}
