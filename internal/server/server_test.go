package server

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/vidstyle/internal/shared"
)

type routesHandler struct {
	mux *http.ServeMux
}

func (h *routesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) { h.mux.ServeHTTP(w, r) }
func (h *routesHandler) Routes() []string                                 { return []string{"GET /items/{id}"} }

func newRoutesHandler() *routesHandler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /items/{id}", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "item "+r.PathValue("id"))
	})
	return &routesHandler{mux: mux}
}

func TestBasicRouter(t *testing.T) {
	t.Run("method patterns", func(t *testing.T) {
		r := NewBasicRouter()
		r.HandleFunc(http.MethodGet, "/ping", func(w http.ResponseWriter, _ *http.Request) { io.WriteString(w, "pong") })
		r.HandleFunc(http.MethodPost, "/ping", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusCreated) })

		tests := []struct {
			method string
			want   int
		}{
			{method: http.MethodGet, want: http.StatusOK},
			{method: http.MethodPost, want: http.StatusCreated},
			{method: http.MethodDelete, want: http.StatusMethodNotAllowed},
		}

		for _, tt := range tests {
			t.Run(tt.method, func(t *testing.T) {
				rec := httptest.NewRecorder()
				r.ServeHTTP(rec, httptest.NewRequest(tt.method, "/ping", nil))
				if rec.Code != tt.want {
					t.Errorf("expected %d, got %d", tt.want, rec.Code)
				}
			})
		}
	})

	t.Run("middleware order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		r := NewBasicRouter()
		r.Use(mark("first"), mark("second"))
		r.HandleFunc("", "/", func(w http.ResponseWriter, _ *http.Request) { order = append(order, "handler") })
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		if got := strings.Join(order, ","); got != "first,second,handler" {
			t.Errorf("unexpected order: %s", got)
		}
	})

	t.Run("custom handler routes", func(t *testing.T) {
		r := NewBasicRouter()
		r.Handler(newRoutesHandler())

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/42", nil))
		if rec.Body.String() != "item 42" {
			t.Errorf("unexpected body: %q", rec.Body.String())
		}
	})
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := shared.NewLogger(&buf)

	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		io.WriteString(w, "short and stout")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teapot", nil))

	out := buf.String()
	for _, want := range []string{"method=GET", "path=/teapot", "status=418", "bytes=15"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}

	t.Run("forwards flush", func(t *testing.T) {
		flushed := false
		h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			f, ok := w.(http.Flusher)
			if !ok {
				t.Fatal("wrapped writer should implement http.Flusher")
			}
			f.Flush()
			flushed = true
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		if !flushed {
			t.Error("handler did not run")
		}
	})
}

func TestRecover(t *testing.T) {
	var buf bytes.Buffer
	h := Recover(shared.NewLogger(&buf))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error":"internal server error"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
	if !strings.Contains(buf.String(), "boom") {
		t.Error("panic value should be logged")
	}
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(RateLimitOpts{Rate: 1, Burst: 2, Idle: time.Minute, Now: func() time.Time { return now }})

	h := limiter.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	do := func(remote string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if do("10.0.0.1:1000") != http.StatusOK || do("10.0.0.1:1001") != http.StatusOK {
		t.Fatal("burst requests should pass")
	}
	if code := do("10.0.0.1:1002"); code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", code)
	}
	if code := do("10.0.0.2:1000"); code != http.StatusOK {
		t.Errorf("other clients should have their own bucket, got %d", code)
	}

	now = now.Add(time.Second)
	if code := do("10.0.0.1:1003"); code != http.StatusOK {
		t.Errorf("token should refill after a second, got %d", code)
	}

	now = now.Add(2 * time.Minute)
	if n := limiter.Prune(); n != 2 {
		t.Errorf("expected 2 pruned clients, got %d", n)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "[::1]:5000"
	if got := ClientIP(req); got != "::1" {
		t.Errorf("expected ::1, got %s", got)
	}
	req.RemoteAddr = "unix"
	if got := ClientIP(req); got != "unix" {
		t.Errorf("expected unix, got %s", got)
	}
}

func TestServerLifecycle(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	router := NewBasicRouter()
	router.HandleFunc(http.MethodGet, "/healthz", func(w http.ResponseWriter, _ *http.Request) { io.WriteString(w, "ok") })
	srv := New(ln.Addr().String(), router, shared.NewLogger(io.Discard))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("unexpected body: %q", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
