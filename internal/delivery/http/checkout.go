package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/chiragjain10/avrcraft-sub000/internal/auth"
	"github.com/chiragjain10/avrcraft-sub000/internal/checkout"
	"github.com/chiragjain10/avrcraft-sub000/internal/entity"
	"github.com/chiragjain10/avrcraft-sub000/internal/payment"
	"github.com/chiragjain10/avrcraft-sub000/internal/service"
)

type checkoutResponse struct {
	State     checkout.State    `json:"state"`
	Breakdown breakdownResponse `json:"breakdown"`
	Error     string            `json:"error,omitempty"`
}

func newCheckoutResponse(sess *service.Session) checkoutResponse {
	state := sess.Checkout.Snapshot()
	method := state.Form.Payment.Method
	if !method.Valid() {
		method = entity.PaymentCard
	}
	return checkoutResponse{
		State:     state,
		Breakdown: newBreakdownResponse(sess.Cart, method),
	}
}

func (h *Handler) writeCheckout(w http.ResponseWriter, status int, sess *service.Session, err error) {
	resp := newCheckoutResponse(sess)
	if err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, status, resp)
}

func (h *Handler) handleGetCheckout(w http.ResponseWriter, r *http.Request) {
	h.writeCheckout(w, http.StatusOK, h.session(w, r), nil)
}

func (h *Handler) handleSetShipping(w http.ResponseWriter, r *http.Request) {
	var info entity.ShippingInfo
	if err := decodeJSON(w, r, &info); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess := h.session(w, r)
	h.writeEdit(w, sess, sess.Checkout.SetShipping(info))
}

func (h *Handler) handleSetBilling(w http.ResponseWriter, r *http.Request) {
	var info entity.BillingInfo
	if err := decodeJSON(w, r, &info); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess := h.session(w, r)
	h.writeEdit(w, sess, sess.Checkout.SetBilling(info))
}

func (h *Handler) handleSetPayment(w http.ResponseWriter, r *http.Request) {
	var info entity.PaymentInfo
	if err := decodeJSON(w, r, &info); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess := h.session(w, r)
	h.writeEdit(w, sess, sess.Checkout.SetPayment(info))
}

func (h *Handler) writeEdit(w http.ResponseWriter, sess *service.Session, err error) {
	if err != nil {
		h.writeCheckout(w, checkoutStatus(err), sess, err)
		return
	}
	h.writeCheckout(w, http.StatusOK, sess, nil)
}

func (h *Handler) handleNext(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if !sess.Checkout.Next() {
		h.writeCheckout(w, http.StatusUnprocessableEntity, sess, checkout.ErrStepInvalid)
		return
	}
	h.writeCheckout(w, http.StatusOK, sess, nil)
}

func (h *Handler) handleBack(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if !sess.Checkout.Back() {
		h.writeCheckout(w, http.StatusConflict, sess, errors.New("cannot go back from this step"))
		return
	}
	h.writeCheckout(w, http.StatusOK, sess, nil)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ident, _ := auth.FromContext(r.Context())
	sess := h.session(w, r)

	order, err := sess.Checkout.Submit(r.Context(), ident.UserID)
	if err != nil {
		status := checkoutStatus(err)
		if status >= http.StatusInternalServerError || status == http.StatusPaymentRequired {
			slog.Error("Failed to submit order", "user_id", ident.UserID, "err", err)
			err = errors.New("payment could not be completed, please try again")
		}
		h.writeCheckout(w, status, sess, err)
		return
	}

	slog.Info("Order submitted", "order_id", order.ID, "user_id", ident.UserID)
	h.writeCheckout(w, http.StatusCreated, sess, nil)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if err := sess.Checkout.Reset(); err != nil {
		h.writeCheckout(w, checkoutStatus(err), sess, err)
		return
	}
	h.writeCheckout(w, http.StatusOK, sess, nil)
}

func checkoutStatus(err error) int {
	switch {
	case errors.Is(err, checkout.ErrStepInvalid),
		errors.Is(err, checkout.ErrNotAtPayment),
		errors.Is(err, checkout.ErrEmptyCart):
		return http.StatusUnprocessableEntity
	case errors.Is(err, checkout.ErrSubmissionInProgress),
		errors.Is(err, checkout.ErrAlreadySubmitted):
		return http.StatusConflict
	case errors.Is(err, payment.ErrDeclined):
		return http.StatusPaymentRequired
	default:
		return http.StatusBadGateway
	}
}
