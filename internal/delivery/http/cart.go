package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/chiragjain10/avrcraft-sub000/internal/entity"
	"github.com/chiragjain10/avrcraft-sub000/internal/pricing"
	"github.com/chiragjain10/avrcraft-sub000/internal/repository"
	"github.com/chiragjain10/avrcraft-sub000/internal/service"
)

type cartResponse struct {
	Items     []entity.LineItem `json:"items"`
	ItemCount int               `json:"item_count"`
	Subtotal  decimal.Decimal   `json:"subtotal"`
}

func newCartResponse(store *service.CartStore) cartResponse {
	cart := store.Cart()
	return cartResponse{
		Items:     cart.Items(),
		ItemCount: cart.ItemCount(),
		Subtotal:  cart.Subtotal(),
	}
}

type breakdownResponse struct {
	PaymentMethod entity.PaymentMethod `json:"payment_method"`
	entity.PricingBreakdown
	FreeShippingNotice string `json:"free_shipping_notice,omitempty"`
}

func newBreakdownResponse(store *service.CartStore, method entity.PaymentMethod) breakdownResponse {
	b := store.Breakdown(method)
	return breakdownResponse{
		PaymentMethod:      method,
		PricingBreakdown:   b,
		FreeShippingNotice: pricing.FreeShippingNotice(b, store.Rules()),
	}
}

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newCartResponse(h.session(w, r).Cart))
}

func (h *Handler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	store := h.session(w, r).Cart
	store.Clear()
	writeJSON(w, http.StatusOK, newCartResponse(store))
}

type AddItemRequest struct {
	ProductID string `json:"product_id"`
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id := strings.TrimSpace(req.ProductID)
	if id == "" {
		writeError(w, http.StatusBadRequest, "product_id is required")
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), id)
	if errors.Is(err, repository.ErrProductNotFound) {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		slog.Error("Failed to get product", "product_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if product.Stock <= 0 {
		writeError(w, http.StatusConflict, "product is out of stock")
		return
	}

	store := h.session(w, r).Cart
	store.AddItem(*product)
	writeJSON(w, http.StatusOK, newCartResponse(store))
}

type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *Handler) handleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Quantity == nil {
		writeError(w, http.StatusBadRequest, "quantity is required")
		return
	}

	store := h.session(w, r).Cart
	store.UpdateQuantity(r.PathValue("id"), *req.Quantity)
	writeJSON(w, http.StatusOK, newCartResponse(store))
}

func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	store := h.session(w, r).Cart
	store.RemoveItem(r.PathValue("id"))
	writeJSON(w, http.StatusOK, newCartResponse(store))
}

func (h *Handler) handleGetBreakdown(w http.ResponseWriter, r *http.Request) {
	method := entity.PaymentCard
	if v := r.URL.Query().Get("payment_method"); v != "" {
		method = entity.PaymentMethod(v)
	}
	if !method.Valid() {
		writeError(w, http.StatusBadRequest, "payment_method must be card, upi or cod")
		return
	}
	writeJSON(w, http.StatusOK, newBreakdownResponse(h.session(w, r).Cart, method))
}
