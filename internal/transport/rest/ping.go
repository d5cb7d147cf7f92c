package rest

import (
	"context"
	"net/http"
	"time"
)

const healthTimeout = 2 * time.Second

// Pinger reports whether the broker connection is usable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func pingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

type healthHandler struct {
	pinger Pinger
}

func NewHealthHandler(pinger Pinger) http.Handler {
	return &healthHandler{pinger: pinger}
}

func (that *healthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := that.pinger.Ping(ctx); err != nil {
		http.Error(w, "broker unavailable", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
