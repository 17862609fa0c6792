package cart

import "time"

// MaxLineQuantity caps how many units of one product a single cart may hold.
const MaxLineQuantity = 10

// Line is one product entry in a cart. UnitPrice is in cents, captured when
// the item was added.
type Line struct {
	ProductName string `json:"product_name"`
	UnitPrice   int64  `json:"unit_price"`
	Size        string `json:"size"`
	Quantity    int    `json:"quantity"`
}

// Cart holds the line items for one browser session. Product name is the
// line identity: adding the same product again merges quantities.
type Cart struct {
	SessionID string    `json:"session_id"`
	Lines     []Line    `json:"lines"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ItemCount is the sum of all line quantities. Zero for an empty cart.
func (c *Cart) ItemCount() int {
	var n int
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) findLine(productName string) *Line {
	for i := range c.Lines {
		if c.Lines[i].ProductName == productName {
			return &c.Lines[i]
		}
	}
	return nil
}
