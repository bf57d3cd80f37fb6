package flows

import (
	"strings"

	"github.com/yeremiapane/venue-app/models"
)

// CustomerOption is one autocomplete entry.
type CustomerOption struct {
	UUID  string `json:"uuid"`
	Label string `json:"label"`
}

var phoneNoise = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")

// MatchCustomer reports whether query matches the customer's display label.
// Matching is case-insensitive substring. A phone-style query starting with 0
// also matches the number stored with its country code, so "0812" finds
// "Budi (+62812...)".
func MatchCustomer(c models.Customer, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	label := strings.ToLower(c.Label())
	if strings.Contains(label, q) {
		return true
	}

	compact := phoneNoise.Replace(q)
	if compact != q && compact != "" && strings.Contains(label, compact) {
		return true
	}
	if strings.HasPrefix(compact, "0") && c.PhoneCode != "" {
		local := strings.TrimLeft(compact, "0")
		if local == "" {
			return false
		}
		return strings.Contains(label, strings.ToLower(c.PhoneCode+local))
	}
	return false
}

// FilterCustomers keeps the customers matching query, preserving order.
func FilterCustomers(customers []models.Customer, query string) []models.Customer {
	out := make([]models.Customer, 0, len(customers))
	for _, c := range customers {
		if MatchCustomer(c, query) {
			out = append(out, c)
		}
	}
	return out
}

func Options(customers []models.Customer) []CustomerOption {
	opts := make([]CustomerOption, 0, len(customers))
	for _, c := range customers {
		opts = append(opts, CustomerOption{UUID: c.UUID, Label: c.Label()})
	}
	return opts
}
