package http

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/Addisaurus/Tallow-Website/internal/checkout"
	"github.com/Addisaurus/Tallow-Website/internal/payment"
)

type WebhookHandler struct {
	parser      *payment.EventParser
	service     *checkout.Service
	timeout     time.Duration
	maxBodySize int64
}

func NewWebhookHandler(parser *payment.EventParser, service *checkout.Service, timeout time.Duration, maxBodySize int64) *WebhookHandler {
	return &WebhookHandler{
		parser:      parser,
		service:     service,
		timeout:     timeout,
		maxBodySize: maxBodySize,
	}
}

// HandleEvent receives the processor's asynchronous notifications. A 2xx
// acknowledges the event; the processor retries anything else, so only
// transient failures return 5xx. An amount mismatch is acknowledged after
// the alert is logged, since redelivery cannot fix a wrong charge.
func (h *WebhookHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodySize))
	if err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large")
		return
	}

	ev, err := h.parser.ParseEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, payment.ErrBadSignature) {
			log.Printf("rejected payment event with bad signature: %v", err)
			respondError(w, http.StatusBadRequest, "bad_signature", "signature verification failed")
			return
		}
		log.Printf("rejected malformed payment event: %v", err)
		respondError(w, http.StatusBadRequest, "invalid_event", "could not parse event")
		return
	}

	if err := h.service.HandleEvent(ctx, ev); err != nil {
		switch {
		case errors.Is(err, checkout.ErrAmountMismatch):
			// Already alert-logged by the service; ack so the processor
			// stops redelivering.
		case errors.Is(err, checkout.ErrPaymentIncomplete):
			// Session completed without payment settled yet; the paid
			// event will follow.
			log.Printf("payment event for session %s not yet payable: %v", ev.SessionID, err)
		default:
			log.Printf("failed to handle payment event type %s session %s: %v", ev.Type, ev.SessionID, err)
			respondError(w, http.StatusInternalServerError, "internal_error", "event processing failed")
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]bool{"received": true})
}
