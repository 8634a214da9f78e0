// internal/preorder/store.go
//
// Persistence gateway for pre-order settings.
//
// Context
// -------
// Thin query helpers over sqlx, in the style of the rest of the service's
// storage code.  The interesting invariant lives in Save: a record with an
// explicit id addresses that row directly; without one, the upsert keys on
// the (shop_domain, variant_id) unique index.  `INSERT … ON DUPLICATE KEY
// UPDATE` makes the upsert atomic, so two concurrent saves racing on the
// same variant collapse to last-writer-wins instead of duplicate rows.
//
// product_id and variant_id are immutable once a row exists; the conflict
// branch only touches the mutable columns.
package preorder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func isNoRows(err error) bool { return errors.Is(err, sql.ErrNoRows) }

// Store runs pre-order setting queries against a MySQL pool.
type Store struct {
	db *sqlx.DB
}

// NewStore returns a Store bound to db.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

const settingColumns = `id, shop_domain, product_id, variant_id, enabled,
       expected_date, limit_quantity, custom_text, created_at, updated_at`

// List returns every record for a shop, most recently created first.
func (s *Store) List(ctx context.Context, shopDomain string) ([]Setting, error) {
	const q = `
        SELECT ` + settingColumns + `
        FROM   pre_order_setting
        WHERE  shop_domain = ?
        ORDER  BY created_at DESC`

	records := make([]Setting, 0, 8)
	if err := s.db.SelectContext(ctx, &records, q, shopDomain); err != nil {
		return nil, err
	}
	return records, nil
}

// Save upserts each normalized record and returns the persisted rows,
// including server-assigned ids and timestamps, in input order.  Each
// record commits independently; the first failure aborts the batch with an
// error naming the failed record, so no subset is ever silently dropped.
func (s *Store) Save(ctx context.Context, records []Setting) ([]Setting, error) {
	const upsert = `
        INSERT INTO pre_order_setting
               (id, shop_domain, product_id, variant_id, enabled,
                expected_date, limit_quantity, custom_text)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON DUPLICATE KEY UPDATE
               enabled        = VALUES(enabled),
               expected_date  = VALUES(expected_date),
               limit_quantity = VALUES(limit_quantity),
               custom_text    = VALUES(custom_text)`

	saved := make([]Setting, 0, len(records))
	for i, rec := range records {
		id := rec.ID
		if id == "" {
			id = uuid.NewString()
		}

		if _, err := s.db.ExecContext(ctx, upsert,
			id, rec.ShopDomain, rec.ProductID, rec.VariantID, rec.Enabled,
			rec.ExpectedDate, rec.LimitQuantity, rec.CustomText,
		); err != nil {
			return nil, fmt.Errorf("save record %d (variant %s): %w", i, rec.VariantID, err)
		}

		// Re-read the row the upsert landed on.  A composite-key conflict
		// keeps the existing row's id, so the lookup must use the same key
		// the upsert resolved by.
		row, err := s.reload(ctx, rec.ID, rec.ShopDomain, rec.VariantID)
		if err != nil {
			return nil, fmt.Errorf("reload record %d (variant %s): %w", i, rec.VariantID, err)
		}
		saved = append(saved, row)
	}
	return saved, nil
}

// Delete removes one of shopDomain's records by id and returns it.  A
// missing row — including a row owned by a different shop — is a
// *NotFoundError, distinguishable from generic storage failure.
func (s *Store) Delete(ctx context.Context, shopDomain, id string) (*Setting, error) {
	const q = `
        SELECT ` + settingColumns + `
        FROM   pre_order_setting
        WHERE  id = ? AND shop_domain = ?`

	var rec Setting
	if err := s.db.GetContext(ctx, &rec, q, id, shopDomain); err != nil {
		if isNoRows(err) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, err
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM pre_order_setting WHERE id = ? AND shop_domain = ?`, id, shopDomain)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Raced with another delete between the read and the write.
		return nil, &NotFoundError{ID: id}
	}
	return &rec, nil
}

func (s *Store) reload(ctx context.Context, explicitID, shopDomain, variantID string) (Setting, error) {
	var (
		rec Setting
		err error
	)
	if explicitID != "" {
		err = s.db.GetContext(ctx, &rec, `
        SELECT `+settingColumns+`
        FROM   pre_order_setting
        WHERE  id = ?`, explicitID)
	} else {
		err = s.db.GetContext(ctx, &rec, `
        SELECT `+settingColumns+`
        FROM   pre_order_setting
        WHERE  shop_domain = ? AND variant_id = ?`, shopDomain, variantID)
	}
	return rec, err
}
