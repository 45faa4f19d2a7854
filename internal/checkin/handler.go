package checkin

import (
	"embed"
	"encoding/json"
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/RazvanRotari/deadman/internal/metrics"
	"github.com/RazvanRotari/deadman/internal/store"
)

//go:embed web/ask_not_dead.html
var webFS embed.FS

// message mirrors the wire shape: {"msg": null} on success, a human-readable
// reason otherwise.
type message struct {
	Msg *string `json:"msg"`
}

// NewRouter builds the HTTP surface: the check-in endpoint, the confirmation
// page, healthz and metrics.
func NewRouter(svc *Service, m *metrics.Collector, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(recoverer(log))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("Hello, World!"))
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	// Confirmation page: lets a human trigger the POST from a browser.
	r.Get("/not_dead", func(w http.ResponseWriter, _ *http.Request) {
		page, err := webFS.ReadFile("web/ask_not_dead.html")
		if err != nil {
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	})

	r.Post("/not_dead", func(w http.ResponseWriter, req *http.Request) {
		id := req.URL.Query().Get("id")
		if id == "" {
			writeMessage(w, http.StatusBadRequest, "missing id")
			return
		}

		err := svc.CheckIn(req.Context(), id)
		switch {
		case err == nil:
			writeMessage(w, http.StatusOK, "")
		case errors.Is(err, store.ErrNotFound):
			writeMessage(w, http.StatusBadRequest, "User not found")
		default:
			writeMessage(w, http.StatusInternalServerError, "storage issue")
		}
	})

	return r
}

// writeMessage writes the JSON envelope; an empty msg encodes as null.
func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	var body message
	if msg != "" {
		body.Msg = &msg
	}
	_ = json.NewEncoder(w).Encode(body)
}

// recoverer turns a handler panic into a 500 instead of killing the process.
func recoverer(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("panic recovered",
						zap.Any("panic", rec),
						zap.String("method", req.Method),
						zap.String("path", req.URL.Path),
						zap.String("stack", string(debug.Stack())),
					)
					http.Error(w, "internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, req)
		})
	}
}
