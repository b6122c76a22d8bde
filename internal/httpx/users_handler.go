package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/battolapablo/marketgo/internal/auth"
	"github.com/battolapablo/marketgo/internal/orders"
)

type UsersHandler struct {
	Repo     *orders.Repo
	Verifier *auth.Verifier
	Policy   auth.Policy
}

func (h *UsersHandler) Register(r *chi.Mux) {
	r.With(RequireAuth(h.Verifier, h.Policy, auth.OpListUsers)).Get("/users", h.list)
	r.With(RequireAuth(h.Verifier, h.Policy, auth.OpGetUser)).Get("/users/{id}", h.get)
}

func (h *UsersHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	users, err := h.Repo.ListUsers(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UsersHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	user, err := h.Repo.UserByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Snapshot())
}
