package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/desertthunder/vidstyle/internal/session"
)

// handleEvents streams the session's snapshots as Server-Sent Events until the client leaves or the
// session closes.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.session(w, r)
	if !ok {
		return
	}

	rc := http.NewResponseController(w)

	changed := make(chan struct{}, 1)
	unsubscribe := ctrl.Subscribe(func(session.Event) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	var sent uint64
	push := func() error {
		if ctrl.Closed() {
			writeEvent(w, "closed", 0, struct{}{})
			return io.EOF
		}
		snap := ctrl.Snapshot()
		if sent != 0 && snap.Version == sent {
			return nil
		}
		sent = snap.Version
		if err := writeEvent(w, "snapshot", snap.Version, snap); err != nil {
			return err
		}
		return rc.Flush()
	}

	if err := push(); err != nil {
		return
	}

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-changed:
			if err := push(); err != nil {
				rc.Flush()
				return
			}
		case <-heartbeat.C:
			if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

// writeEvent writes one SSE frame. An id of 0 is omitted.
func writeEvent(w io.Writer, event string, id uint64, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if id != 0 {
		if _, err := fmt.Fprintf(w, "id: %d\n", id); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
