package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/battolapablo/marketgo/internal/orders"
)

func NewRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusOf(err), map[string]string{"error": err.Error()})
}

// statusOf maps domain errors onto HTTP classes: not-found resources to 404,
// malformed or unavailable requests to 400, everything unexpected to 500.
func statusOf(err error) int {
	switch {
	case errors.Is(err, orders.ErrUserNotFound),
		errors.Is(err, orders.ErrProductNotFound),
		errors.Is(err, orders.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, orders.ErrEmptyOrder),
		errors.Is(err, orders.ErrNoAvailableProducts),
		errors.Is(err, orders.ErrInvalidPrice),
		errors.Is(err, orders.ErrInvalidAmount),
		errors.Is(err, orders.ErrEmailInUse),
		errors.Is(err, orders.ErrPasswordMismatch),
		errors.Is(err, orders.ErrBadCredentials):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
