// internal/shop/store.go
//
// Query helpers for shop installations and preferences.  Same sqlx upsert
// idiom as the pre-order store: atomic `ON DUPLICATE KEY UPDATE` against a
// unique shop_domain key.
package shop

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a shop has no installation row.
var ErrNotFound = errors.New("shop installation not found")

// Store runs shop-scoped queries against a MySQL pool.
type Store struct {
	db *sqlx.DB
}

// NewStore returns a Store bound to db.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

//
// Installations
//

// UpsertInstallation records (or reactivates) a shop's installation after
// auth, refreshing the access token.
func (s *Store) UpsertInstallation(ctx context.Context, shopDomain string, accessToken *string) error {
	const q = `
        INSERT INTO shop_installation (id, shop_domain, access_token, is_active)
        VALUES (?, ?, ?, TRUE)
        ON DUPLICATE KEY UPDATE
               access_token = VALUES(access_token),
               is_active    = TRUE`

	_, err := s.db.ExecContext(ctx, q,
		uuid.NewString(), strings.ToLower(strings.TrimSpace(shopDomain)), accessToken)
	return err
}

// Installation fetches one shop's installation row.
func (s *Store) Installation(ctx context.Context, shopDomain string) (*Installation, error) {
	const q = `
        SELECT id, shop_domain, access_token, is_active, created_at, updated_at
        FROM   shop_installation
        WHERE  shop_domain = ?
        LIMIT  1`

	var rec Installation
	if err := s.db.GetContext(ctx, &rec, q, shopDomain); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// DeactivateInstallation flips is_active off when a shop uninstalls.  A
// shop we never saw is not an error; the webhook may outlive the row.
func (s *Store) DeactivateInstallation(ctx context.Context, shopDomain string) error {
	const q = `UPDATE shop_installation SET is_active = FALSE WHERE shop_domain = ?`
	_, err := s.db.ExecContext(ctx, q, strings.ToLower(strings.TrimSpace(shopDomain)))
	return err
}

//
// Preferences
//

// Preferences returns the shop's saved preferences, or zero-value defaults
// when the shop has never saved.
func (s *Store) Preferences(ctx context.Context, shopDomain string) (*Preference, error) {
	const q = `
        SELECT shop_domain, default_tag, auto_publish, created_at, updated_at
        FROM   shop_preference
        WHERE  shop_domain = ?
        LIMIT  1`

	var rec Preference
	if err := s.db.GetContext(ctx, &rec, q, shopDomain); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &Preference{ShopDomain: shopDomain}, nil
		}
		return nil, err
	}
	return &rec, nil
}

// SavePreferences upserts the shop's preferences and returns the
// persisted row.
func (s *Store) SavePreferences(ctx context.Context, shopDomain, defaultTag string, autoPublish bool) (*Preference, error) {
	const q = `
        INSERT INTO shop_preference (shop_domain, default_tag, auto_publish)
        VALUES (?, ?, ?)
        ON DUPLICATE KEY UPDATE
               default_tag  = VALUES(default_tag),
               auto_publish = VALUES(auto_publish)`

	if _, err := s.db.ExecContext(ctx, q, shopDomain, strings.TrimSpace(defaultTag), autoPublish); err != nil {
		return nil, err
	}
	return s.Preferences(ctx, shopDomain)
}
