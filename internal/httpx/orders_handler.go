package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/battolapablo/marketgo/internal/auth"
	"github.com/battolapablo/marketgo/internal/orders"
	"github.com/battolapablo/marketgo/internal/redisx"
)

type OrdersHandler struct {
	Service  *orders.Service
	Redis    *redis.Client
	Verifier *auth.Verifier
	Policy   auth.Policy
}

type createOrderReq struct {
	UserID   string `json:"user_id"`
	Products []struct {
		ID string `json:"id"`
	} `json:"products"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.With(RequireAuth(h.Verifier, h.Policy, auth.OpPlaceOrder)).Post("/orders", h.createOrder)
	r.With(RequireAuth(h.Verifier, h.Policy, auth.OpGetOrder)).Get("/orders/{id}", h.getOrder)
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	// The authenticated subject places the order; a user-supplied id in the
	// body only counts for admins, so identities cannot be spoofed.
	id, _ := auth.IdentityFrom(r.Context())
	userID := id.UserID
	if req.UserID != "" && id.HasRole(auth.RoleAdmin) {
		userID = req.UserID
	}

	productIDs := make([]string, 0, len(req.Products))
	for _, p := range req.Products {
		productIDs = append(productIDs, p.ID)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	order, err := h.Service.PlaceOrder(ctx, userID, productIDs, r.Header.Get("X-Request-Id"))
	if err != nil {
		writeError(w, err)
		return
	}

	key := fmt.Sprintf(redisx.KeyOrder, order.ID)
	_ = h.Redis.Set(ctx, key, mustJSON(order), redisx.TTLOrderCache).Err()

	writeJSON(w, http.StatusCreated, order)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrder, orderID)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	order, err := h.Service.GetOrder(ctx, orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	_ = h.Redis.Set(ctx, key, mustJSON(order), redisx.TTLOrderCache).Err()
	writeJSON(w, http.StatusOK, order)
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
