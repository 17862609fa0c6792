package checkout

import (
	"regexp"
	"strings"
)

var (
	// 10-digit US phone, separators optional: 555-123-4567, (555) 123 4567.
	phonePattern = regexp.MustCompile(`^\(?([0-9]{3})\)?[-.\s]?([0-9]{3})[-.\s]?([0-9]{4})$`)
	// 5-digit ZIP or ZIP+4: 90210 or 90210-1234.
	zipPattern   = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// Form carries the customer and shipping fields submitted at checkout.
// The checkout service only ever sees a Form that passed Validate.
type Form struct {
	CustomerName   string `json:"customer_name"`
	CustomerEmail  string `json:"customer_email"`
	CustomerPhone  string `json:"customer_phone"`
	ShippingStreet string `json:"shipping_street"`
	ShippingCity   string `json:"shipping_city"`
	ShippingState  string `json:"shipping_state"`
	ShippingZip    string `json:"shipping_zip"`
}

// Validate checks every field and returns a field → message map. An empty
// map means the form is valid.
func (f Form) Validate() map[string]string {
	errs := make(map[string]string)

	name := strings.TrimSpace(f.CustomerName)
	if len(name) < 2 || len(name) > 100 {
		errs["customer_name"] = "name must be between 2 and 100 characters"
	}

	email := strings.TrimSpace(f.CustomerEmail)
	if email == "" || len(email) > 120 || !emailPattern.MatchString(email) {
		errs["customer_email"] = "please enter a valid email address"
	}

	if !phonePattern.MatchString(strings.TrimSpace(f.CustomerPhone)) {
		errs["customer_phone"] = "please enter a valid 10-digit US phone number"
	}

	street := strings.TrimSpace(f.ShippingStreet)
	if len(street) < 5 || len(street) > 200 {
		errs["shipping_street"] = "address must be between 5 and 200 characters"
	}

	city := strings.TrimSpace(f.ShippingCity)
	if len(city) < 2 || len(city) > 100 {
		errs["shipping_city"] = "city must be between 2 and 100 characters"
	}

	state := strings.TrimSpace(f.ShippingState)
	if len(state) < 2 || len(state) > 50 {
		errs["shipping_state"] = "state must be between 2 and 50 characters"
	}

	if !zipPattern.MatchString(strings.TrimSpace(f.ShippingZip)) {
		errs["shipping_zip"] = "please enter a valid ZIP code (e.g. 90210 or 90210-1234)"
	}

	return errs
}
