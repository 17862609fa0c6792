package payment

import (
	"encoding/json"
	"fmt"
	"log"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// EventParser decodes processor push notifications. With a signing secret
// configured every payload is verified against its signature header before
// anything is trusted. With no secret the payload is accepted as-is, a
// development-only posture that is logged loudly on every request.
type EventParser struct {
	signingSecret string
}

func NewEventParser(signingSecret string) *EventParser {
	return &EventParser{signingSecret: signingSecret}
}

// Insecure reports whether events are accepted without verification.
func (p *EventParser) Insecure() bool {
	return p.signingSecret == ""
}

func (p *EventParser) ParseEvent(payload []byte, sigHeader string) (*Event, error) {
	var ev stripe.Event
	if p.signingSecret != "" {
		verified, err := webhook.ConstructEvent(payload, sigHeader, p.signingSecret)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
		}
		ev = verified
	} else {
		log.Printf("INSECURE: accepting unverified payment event, no signing secret configured")
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
	}

	out := &Event{Type: string(ev.Type)}
	if out.Type == EventCheckoutCompleted {
		var session struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(ev.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("decode session payload: %w", err)
		}
		if session.ID == "" {
			return nil, fmt.Errorf("event %s carries no session id", ev.ID)
		}
		out.SessionID = session.ID
	}
	return out, nil
}
