package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Addisaurus/Tallow-Website/internal/checkout"
	"github.com/Addisaurus/Tallow-Website/internal/order"
)

type OrderHandler struct {
	service *checkout.Service
	timeout time.Duration
}

func NewOrderHandler(service *checkout.Service, timeout time.Duration) *OrderHandler {
	return &OrderHandler{
		service: service,
		timeout: timeout,
	}
}

type OrderItemDTO struct {
	ProductName string  `json:"product_name"`
	UnitPrice   float64 `json:"unit_price"`
	Size        string  `json:"size,omitempty"`
	Quantity    int     `json:"quantity"`
	Subtotal    float64 `json:"subtotal"`
}

type AddressDTO struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

type OrderResponseDTO struct {
	CustomerName      string         `json:"customer_name"`
	CustomerEmail     string         `json:"customer_email"`
	ShippingAddress   AddressDTO     `json:"shipping_address"`
	Subtotal          float64        `json:"subtotal"`
	Tax               float64        `json:"tax"`
	ShippingCost      float64        `json:"shipping_cost"`
	Total             float64        `json:"total"`
	Status            string         `json:"status"`
	ConfirmationToken string         `json:"confirmation_token"`
	Items             []OrderItemDTO `json:"items"`
	CreatedAt         string         `json:"created_at"`
}

// GetByToken serves the order confirmation page data. The only key accepted
// is the confirmation token; numeric order ids are never exposed to
// unauthenticated callers.
func (h *OrderHandler) GetByToken(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	token := pathToken(r)
	if token == "" {
		respondError(w, http.StatusBadRequest, "missing_token", "confirmation token is required")
		return
	}

	ord, err := h.service.LookupByToken(ctx, token)
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertOrder(ord))
}

func pathToken(r *http.Request) string {
	return chi.URLParam(r, "token")
}

func convertOrder(o *order.Order) OrderResponseDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ProductName: item.ProductName,
			UnitPrice:   dollars(item.UnitPrice),
			Size:        item.Size,
			Quantity:    item.Quantity,
			Subtotal:    dollars(item.Subtotal),
		})
	}

	return OrderResponseDTO{
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		ShippingAddress: AddressDTO{
			Street: o.Shipping.Street,
			City:   o.Shipping.City,
			State:  o.Shipping.State,
			Zip:    o.Shipping.Zip,
		},
		Subtotal:          dollars(o.Subtotal),
		Tax:               dollars(o.Tax),
		ShippingCost:      dollars(o.ShippingCost),
		Total:             dollars(o.Total),
		Status:            o.Status.String(),
		ConfirmationToken: o.ConfirmationToken,
		Items:             items,
		CreatedAt:         o.CreatedAt.Format(time.RFC3339),
	}
}
