package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/desertthunder/vidstyle/internal/models"
	"github.com/desertthunder/vidstyle/internal/server"
	"github.com/desertthunder/vidstyle/internal/session"
	"github.com/desertthunder/vidstyle/internal/shared"
)

type styleRequest struct {
	Style models.StyleID `json:"style"`
}

type pageData struct {
	Styles    []models.StylePreset
	UploadMax string
}

type health struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := pageData{Styles: h.catalog.All(), UploadMax: uploadHint(h.maxUpload)}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.page.Execute(w, data); err != nil {
		h.logger.Error("failed to render page", "error", err)
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	server.WriteJSON(w, http.StatusOK, health{Status: "ok", Sessions: h.store.Len()})
}

func (h *Handler) handleStyles(w http.ResponseWriter, r *http.Request) {
	server.WriteJSON(w, http.StatusOK, h.catalog.All())
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	ctrl, err := h.store.Create()
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Location", "/api/sessions/"+ctrl.ID())
	server.WriteJSON(w, http.StatusCreated, ctrl.Snapshot())
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.session(w, r)
	if !ok {
		return
	}
	server.WriteJSON(w, http.StatusOK, ctrl.Snapshot())
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Close(r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSelectStyle(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.session(w, r)
	if !ok {
		return
	}

	var req styleRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<10)).Decode(&req); err != nil {
		h.writeError(w, fmt.Errorf("%w: invalid JSON body", shared.ErrInvalidInput))
		return
	}
	if req.Style == "" {
		h.writeError(w, fmt.Errorf("%w: style", shared.ErrMissingArgument))
		return
	}

	if err := ctrl.SelectStyle(req.Style); err != nil {
		h.writeError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, ctrl.Snapshot())
}

func (h *Handler) handleClearMedia(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := ctrl.ClearMedia(); err != nil {
		h.writeError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, ctrl.Snapshot())
}

func (h *Handler) handleStartTransform(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := ctrl.StartTransform(); err != nil {
		h.writeError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusAccepted, ctrl.Snapshot())
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	f, meta, err := h.previews.Open(r.PathValue("token"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.writeError(w, err)
		return
	}

	if meta.ContentType != "" {
		w.Header().Set("Content-Type", meta.ContentType)
	}
	w.Header().Set("Cache-Control", "no-store")
	http.ServeContent(w, r, meta.Name, info.ModTime(), f)
}

// session resolves the {id} path value, writing the error response when it is unknown.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Controller, bool) {
	ctrl, err := h.store.Get(r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return nil, false
	}
	return ctrl, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
		msg = "internal server error"
	}
	server.WriteError(w, status, msg)
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, shared.ErrUnsupportedMedia):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, shared.ErrMediaTooLarge), errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, shared.ErrUnknownStyle),
		errors.Is(err, shared.ErrInvalidInput),
		errors.Is(err, shared.ErrMissingArgument):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrNotReady), errors.Is(err, shared.ErrProcessing):
		return http.StatusConflict
	case errors.Is(err, shared.ErrSessionNotFound), errors.Is(err, shared.ErrPreviewNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrSessionClosed):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

// uploadHint renders the upload limit the way the page advertises it, e.g. "500MB".
func uploadHint(limit int64) string {
	if limit <= 0 {
		return "any size"
	}
	mb := limit / (1024 * 1024)
	if mb >= 1024 && mb%1024 == 0 {
		return strconv.FormatInt(mb/1024, 10) + "GB"
	}
	return strconv.FormatInt(mb, 10) + "MB"
}
