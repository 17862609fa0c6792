package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Addisaurus/Tallow-Website/internal/checkout"
	"github.com/Addisaurus/Tallow-Website/internal/order"
)

type CheckoutHandler struct {
	service *checkout.Service
	timeout time.Duration
}

func NewCheckoutHandler(service *checkout.Service, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		timeout: timeout,
	}
}

type CheckoutResponseDTO struct {
	CheckoutURL       string `json:"checkout_url"`
	ConfirmationToken string `json:"confirmation_token"`
}

// Checkout validates the submitted form and places the order. On success
// the client is handed the processor's payment page URL plus the token it
// will later use to view the order.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "no_session", "missing cart session")
		return
	}

	var form checkout.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if fieldErrs := form.Validate(); len(fieldErrs) > 0 {
		respondFieldErrors(w, fieldErrs)
		return
	}

	placed, err := h.service.PlaceOrder(ctx, sessionID, form)
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, CheckoutResponseDTO{
		CheckoutURL:       placed.CheckoutURL,
		ConfirmationToken: placed.Order.ConfirmationToken,
	})
}

// Success is the redirect target after the customer pays on the processor's
// page. The query carries only the opaque session id; the order is resolved
// through the session's metadata.
func (h *CheckoutHandler) Success(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	checkoutSessionID := r.URL.Query().Get("session_id")
	if checkoutSessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session_id", "session_id is required")
		return
	}

	ord, err := h.service.ConfirmSession(ctx, checkoutSessionID)
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertOrder(ord))
}

// Cancel voids a pending order. Authentication is the confirmation token in
// the path, the same unguessable credential used for order lookup.
func (h *CheckoutHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	token := pathToken(r)
	if token == "" {
		respondError(w, http.StatusBadRequest, "missing_token", "confirmation token is required")
		return
	}

	ord, err := h.service.Cancel(ctx, token)
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertOrder(ord))
}

func handleCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", "your cart is empty")
	case errors.Is(err, checkout.ErrProcessor):
		respondError(w, http.StatusBadGateway, "payment_unavailable", "payment service is unavailable, please try again")
	case errors.Is(err, checkout.ErrPaymentIncomplete):
		respondError(w, http.StatusConflict, "payment_incomplete", "payment has not completed for this order")
	case errors.Is(err, checkout.ErrAmountMismatch):
		respondError(w, http.StatusConflict, "amount_mismatch", "payment could not be verified, please contact support")
	case errors.Is(err, checkout.ErrNotCancellable):
		respondError(w, http.StatusConflict, "not_cancellable", "this order can no longer be cancelled")
	case errors.Is(err, order.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "not_found", "order not found")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "something went wrong, please try again")
	}
}
