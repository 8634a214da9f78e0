// internal/shop/model.go
//
// Per-shop rows that are not pre-order settings: the installation record
// written during auth, and the merchant's product-tagging preferences.
package shop

import "time"

// Installation mirrors one row in `shop_installation`.  One row per shop;
// is_active flips to false when the APP_UNINSTALLED webhook arrives, and
// back to true on reinstall.
type Installation struct {
	ID          string    `db:"id"           json:"id"`
	ShopDomain  string    `db:"shop_domain"  json:"shopDomain"`
	AccessToken *string   `db:"access_token" json:"-"`
	IsActive    bool      `db:"is_active"    json:"isActive"`
	CreatedAt   time.Time `db:"created_at"   json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at"   json:"updatedAt"`
}

// Preference mirrors one row in `shop_preference`.  Defaults apply when a
// shop has never saved: empty tag, no auto-publish.
type Preference struct {
	ShopDomain  string    `db:"shop_domain"  json:"shopDomain"`
	DefaultTag  string    `db:"default_tag"  json:"defaultTag"`
	AutoPublish bool      `db:"auto_publish" json:"autoPublish"`
	CreatedAt   time.Time `db:"created_at"   json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at"   json:"updatedAt"`
}
