// internal/preorder/model.go
//
// Canonical pre-order setting record and its loosely-typed wire shape.
//
// Context
// -------
// One Setting row exists per (shop_domain, variant_id) pair, unless a save
// addresses an existing row by explicit id.  A disabled setting has no
// storefront effect but is retained, so merchants can toggle a variant
// without losing its ship date, limit, or button text.
package preorder

import "time"

// Setting mirrors one row in the persistent `pre_order_setting` table.
// Nullable columns use pointer types; JSON field names match the admin
// UI and storefront script payloads.
type Setting struct {
	ID            string     `db:"id"             json:"id"`
	ShopDomain    string     `db:"shop_domain"    json:"shopDomain"`
	ProductID     string     `db:"product_id"     json:"productId"`
	VariantID     string     `db:"variant_id"     json:"variantId"`
	Enabled       bool       `db:"enabled"        json:"enabled"`
	ExpectedDate  *time.Time `db:"expected_date"  json:"expectedDate"`
	LimitQuantity *int       `db:"limit_quantity" json:"limitQuantity"`
	CustomText    *string    `db:"custom_text"    json:"customText"`
	CreatedAt     time.Time  `db:"created_at"     json:"createdAt"`
	UpdatedAt     time.Time  `db:"updated_at"     json:"updatedAt"`
}

// Raw is the untrusted payload shape accepted by the save endpoint.  Every
// field is loosely typed because the admin UI submits JSON, form-encoded
// JSON strings, and the occasional numeric id; the normalizer owns all
// coercion.  shopDomain is deliberately absent — it always comes from the
// authenticated session, never from the client.
type Raw struct {
	ID            any `json:"id"`
	ProductID     any `json:"productId"`
	VariantID     any `json:"variantId"`
	Enabled       any `json:"enabled"`
	ExpectedDate  any `json:"expectedDate"`
	LimitQuantity any `json:"limitQuantity"`
	CustomText    any `json:"customText"`
}

// Filter narrows a shop's records by optional product/variant ids.  Disabled
// records are excluded unless includeDisabled is set; this is the shape the
// public read endpoint serves to storefronts.
func Filter(records []Setting, productID, variantID string, includeDisabled bool) []Setting {
	out := make([]Setting, 0, len(records))
	for _, rec := range records {
		if !includeDisabled && !rec.Enabled {
			continue
		}
		if productID != "" && rec.ProductID != productID {
			continue
		}
		if variantID != "" && rec.VariantID != variantID {
			continue
		}
		out = append(out, rec)
	}
	return out
}
