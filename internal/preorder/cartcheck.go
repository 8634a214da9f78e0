// internal/preorder/cartcheck.go
//
// Cart-line validation against pre-order quantity limits.
//
// The storefront script caps the quantity input, but nothing stops a theme
// or a crafted request from adding more to the cart.  This check is the
// server-side backstop: given a shop's settings and the lines being added,
// it reports whether the addition stays within every enabled limit.
package preorder

import "fmt"

// CartLine is one variant + quantity pair being added to a cart.
type CartLine struct {
	MerchandiseID string `json:"merchandiseId"`
	Quantity      int    `json:"quantity"`
}

// CartValidation is the verdict for a batch of cart lines.
type CartValidation struct {
	Allowed  bool     `json:"allowed"`
	Messages []string `json:"messages"`
}

// ValidateCartLines checks lines against the enabled settings' quantity
// limits.  Variants without an enabled setting, or with no limit, pass
// untouched.  Messages name every violating line, not just the first.
func ValidateCartLines(settings []Setting, lines []CartLine) CartValidation {
	byVariant := make(map[string]*Setting, len(settings))
	for i := range settings {
		if settings[i].Enabled {
			byVariant[settings[i].VariantID] = &settings[i]
		}
	}

	messages := make([]string, 0)
	for _, line := range lines {
		setting, ok := byVariant[line.MerchandiseID]
		if !ok || setting.LimitQuantity == nil {
			continue
		}
		if line.Quantity > *setting.LimitQuantity {
			messages = append(messages, fmt.Sprintf(
				"Pre-order limit for variant %s is %d per order",
				line.MerchandiseID, *setting.LimitQuantity))
		}
	}

	return CartValidation{Allowed: len(messages) == 0, Messages: messages}
}
