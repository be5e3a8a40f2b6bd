package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chiragjain10/avrcraft-sub000/internal/auth"
	"github.com/chiragjain10/avrcraft-sub000/internal/metric"
	"github.com/chiragjain10/avrcraft-sub000/internal/service"
)

// HeaderSessionID names an anonymous browsing session. Requests without one
// are given a fresh id in the response header of the same name.
const HeaderSessionID = "X-Session-ID"

// Session ids are namespaced so a guest id can never name a user's session.
const (
	userSessionPrefix  = "user:"
	guestSessionPrefix = "guest:"
)

// Handler handles HTTP requests for the application.
type Handler struct {
	catalog  *service.CatalogService
	orders   *service.OrderService
	sessions *service.Sessions
	auth     auth.Authenticator
}

func NewHandler(
	catalog *service.CatalogService,
	orders *service.OrderService,
	sessions *service.Sessions,
	authenticator auth.Authenticator,
) *Handler {
	return &Handler{
		catalog:  catalog,
		orders:   orders,
		sessions: sessions,
		auth:     authenticator,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.handleGetProducts)

	mux.HandleFunc("GET /api/cart", h.handleGetCart)
	mux.HandleFunc("DELETE /api/cart", h.handleClearCart)
	mux.HandleFunc("POST /api/cart/items", h.handleAddItem)
	mux.HandleFunc("PATCH /api/cart/items/{id}", h.handleUpdateQuantity)
	mux.HandleFunc("DELETE /api/cart/items/{id}", h.handleRemoveItem)
	mux.HandleFunc("GET /api/cart/breakdown", h.handleGetBreakdown)

	mux.HandleFunc("GET /api/checkout", h.requireAuth(h.handleGetCheckout))
	mux.HandleFunc("PUT /api/checkout/shipping", h.requireAuth(h.handleSetShipping))
	mux.HandleFunc("PUT /api/checkout/billing", h.requireAuth(h.handleSetBilling))
	mux.HandleFunc("PUT /api/checkout/payment", h.requireAuth(h.handleSetPayment))
	mux.HandleFunc("POST /api/checkout/next", h.requireAuth(h.handleNext))
	mux.HandleFunc("POST /api/checkout/back", h.requireAuth(h.handleBack))
	mux.HandleFunc("POST /api/checkout/submit", h.requireAuth(h.handleSubmit))
	mux.HandleFunc("POST /api/checkout/reset", h.requireAuth(h.handleReset))

	mux.HandleFunc("GET /api/orders", h.handleGetOrders)
	mux.HandleFunc("GET /api/orders/{id}/events", h.handleGetOrderEvents)

	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

func (h *Handler) handleGetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.GetProducts(r.Context())
	if err != nil {
		slog.Error("Failed to get products", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) handleGetOrders(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, 200)
	}

	orders, err := h.orders.GetRecentOrders(r.Context(), limit)
	if err != nil {
		slog.Error("Failed to get orders", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) handleGetOrderEvents(w http.ResponseWriter, r *http.Request) {
	history, err := h.orders.GetOrderHistory(r.Context(), r.PathValue("id"))
	if err != nil {
		slog.Error("Failed to get order history", "order_id", r.PathValue("id"), "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if len(history) == 0 {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// session resolves the shopper's session. Authenticated users always get
// their own session and the session header is ignored. Guests are keyed by
// the header, and a missing one is minted and echoed back.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *service.Session {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		ident, ok = h.auth.Identify(r)
	}
	if ok {
		return h.sessions.Get(r.Context(), userSessionPrefix+ident.UserID)
	}

	id := strings.TrimSpace(r.Header.Get(HeaderSessionID))
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(HeaderSessionID, id)
	return h.sessions.Get(r.Context(), guestSessionPrefix+id)
}

// requireAuth rejects anonymous requests with the login location.
func (h *Handler) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, ok := h.auth.Identify(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error":     "login required",
				"login_url": auth.LoginURL,
			})
			return
		}
		next(w, r.WithContext(auth.WithIdentity(r.Context(), ident)))
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New("empty request body")
	}
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// EnableCORS is a middleware to allow the React frontend to connect.
func EnableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+HeaderSessionID+", "+auth.HeaderUserID+", "+auth.HeaderUserEmail)
		w.Header().Set("Access-Control-Expose-Headers", HeaderSessionID)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// LogRequests logs every request and records its latency.
func LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		metric.ObserveRequest(route, elapsed, rec.status)
		slog.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", elapsed)
	})
}
