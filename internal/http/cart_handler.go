package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Addisaurus/Tallow-Website/internal/cart"
	"github.com/Addisaurus/Tallow-Website/internal/catalog"
	"github.com/Addisaurus/Tallow-Website/internal/pricing"
)

type CartHandler struct {
	carts   *cart.Service
	timeout time.Duration
}

func NewCartHandler(carts *cart.Service, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	// ProductName is optional; the storefront sells one product and that is
	// the default. The price always comes from the catalog, never from the
	// client.
	ProductName string `json:"product_name,omitempty"`
	Quantity    int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartLineDTO struct {
	ProductName string  `json:"product_name"`
	UnitPrice   float64 `json:"unit_price"`
	Size        string  `json:"size"`
	Quantity    int     `json:"quantity"`
	Subtotal    float64 `json:"subtotal"`
}

type CartResponseDTO struct {
	Lines     []CartLineDTO `json:"lines"`
	ItemCount int           `json:"item_count"`
	Subtotal  float64       `json:"subtotal"`
	Tax       float64       `json:"tax"`
	Shipping  float64       `json:"shipping"`
	Total     float64       `json:"total"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "no_session", "missing cart session")
		return
	}

	c, err := h.carts.Get(ctx, sessionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load cart")
		return
	}

	respondJSON(w, http.StatusOK, convertCart(c))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "no_session", "missing cart session")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.Quantity < 1 || req.Quantity > cart.MaxLineQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", cart.ErrQuantityRange.Error())
		return
	}

	product := catalog.Featured()
	if req.ProductName != "" {
		var ok bool
		product, ok = catalog.FindByName(req.ProductName)
		if !ok {
			respondError(w, http.StatusNotFound, "unknown_product", "no such product")
			return
		}
	}

	c, err := h.carts.AddItem(ctx, sessionID, product.Name, product.PriceCents, product.Size, req.Quantity)
	if err != nil {
		handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, convertCart(c))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "no_session", "missing cart session")
		return
	}

	productName := pathProductName(r)
	if productName == "" {
		respondError(w, http.StatusBadRequest, "missing_product_name", "product_name is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	c, err := h.carts.UpdateQuantity(ctx, sessionID, productName, req.Quantity)
	if err != nil {
		handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertCart(c))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "no_session", "missing cart session")
		return
	}

	productName := pathProductName(r)
	if productName == "" {
		respondError(w, http.StatusBadRequest, "missing_product_name", "product_name is required")
		return
	}

	c, err := h.carts.RemoveItem(ctx, sessionID, productName)
	if err != nil {
		handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertCart(c))
}

func handleCartError(w http.ResponseWriter, err error) {
	if errors.Is(err, cart.ErrQuantityRange) {
		respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, "internal_error", "cart operation failed")
}

// pathProductName decodes the {product_name} URL segment; product names
// contain spaces and arrive percent-encoded.
func pathProductName(r *http.Request) string {
	raw := chi.URLParam(r, "product_name")
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

func convertCart(c *cart.Cart) CartResponseDTO {
	lines := make([]CartLineDTO, 0, len(c.Lines))
	for _, l := range c.Lines {
		lines = append(lines, CartLineDTO{
			ProductName: l.ProductName,
			UnitPrice:   dollars(l.UnitPrice),
			Size:        l.Size,
			Quantity:    l.Quantity,
			Subtotal:    dollars(l.UnitPrice * int64(l.Quantity)),
		})
	}

	totals := pricing.Compute(c.Lines)
	return CartResponseDTO{
		Lines:     lines,
		ItemCount: c.ItemCount(),
		Subtotal:  dollars(totals.Subtotal),
		Tax:       dollars(totals.Tax),
		Shipping:  dollars(totals.Shipping),
		Total:     dollars(totals.Total),
	}
}
