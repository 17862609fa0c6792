package http

import (
	"net/http"

	"github.com/Addisaurus/Tallow-Website/internal/catalog"
)

type ProductHandler struct{}

func NewProductHandler() *ProductHandler {
	return &ProductHandler{}
}

type ProductResponseDTO struct {
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Size        string   `json:"size"`
	Description string   `json:"description"`
	Ingredients []string `json:"ingredients"`
	Benefits    []string `json:"benefits"`
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p := catalog.Featured()
	respondJSON(w, http.StatusOK, ProductResponseDTO{
		Name:        p.Name,
		Price:       dollars(p.PriceCents),
		Size:        p.Size,
		Description: p.Description,
		Ingredients: p.Ingredients,
		Benefits:    p.Benefits,
	})
}
