package catalog

// Product is a catalog entry. Prices are stored in cents so the rest of the
// system never touches floating point money.
type Product struct {
	Name        string   `json:"name"`
	PriceCents  int64    `json:"price_cents"`
	Size        string   `json:"size"`
	Description string   `json:"description"`
	Ingredients []string `json:"ingredients"`
	Benefits    []string `json:"benefits"`
}

var products = []Product{
	{
		Name:       "Pure Beef Tallow Moisturizer",
		PriceCents: 2499,
		Size:       "4 oz",
		Description: "Our handcrafted beef tallow moisturizer is made from 100% grass-fed " +
			"beef tallow, whipped to perfection for a luxurious, deeply nourishing skincare experience.",
		Ingredients: []string{
			"100% Grass-Fed Beef Tallow",
			"Organic Jojoba Oil",
			"Vitamin E Oil",
			"Essential Oils (Lavender & Chamomile)",
		},
		Benefits: []string{
			"Deep hydration without greasy residue",
			"Rich in vitamins A, D, E, and K",
			"Compatible with skin's natural oils",
			"Anti-inflammatory properties",
			"Suitable for sensitive skin",
		},
	},
}

// Featured returns the product shown on the storefront.
func Featured() Product {
	return products[0]
}

// FindByName looks a product up by its exact name.
func FindByName(name string) (Product, bool) {
	for _, p := range products {
		if p.Name == name {
			return p, true
		}
	}
	return Product{}, false
}
