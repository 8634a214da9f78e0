// Package database centralises sqlx connection helpers and the service
// schema.  The driver is go-sql-driver/mysql, which also works with MariaDB
// when configured for the MySQL wire protocol.
//
// Public entry points:
//
//	Open(dsn)                              – helper with conservative pool sizes.
//	OpenWithOptions(dsn, maxOpen, maxIdle) – fine-grained control.
//	EnsureSchema(ctx, db)                  – idempotent table creation at boot.
//
// The open helpers Ping the database before returning so callers can fail
// fast during bootstrap.  Callers should Close() the returned *sqlx.DB when
// no longer needed.
package database

import (
	"context"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// Open returns a *sqlx.DB with sane defaults: 15 max open, 5 idle, and a
// 30-minute connection lifetime.
func Open(dsn string) (*sqlx.DB, error) {
	return OpenWithOptions(dsn, 15, 5)
}

// OpenWithOptions lets callers tune maxOpen and maxIdle per pool.
func OpenWithOptions(dsn string, maxOpen, maxIdle int) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// schema lists every table the service owns.  Statements are idempotent so
// EnsureSchema can run on every boot.  The unique key on
// (shop_domain, variant_id) is what makes concurrent saves upsert instead
// of duplicating rows.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS pre_order_setting (
		id             CHAR(36)     NOT NULL,
		shop_domain    VARCHAR(255) NOT NULL,
		product_id     VARCHAR(64)  NOT NULL,
		variant_id     VARCHAR(64)  NOT NULL,
		enabled        TINYINT(1)   NOT NULL DEFAULT 0,
		expected_date  DATETIME     NULL,
		limit_quantity INT          NULL,
		custom_text    VARCHAR(255) NULL,
		created_at     TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at     TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP
		               ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uniq_shop_variant (shop_domain, variant_id),
		KEY idx_shop_created (shop_domain, created_at)
	)`,
	`CREATE TABLE IF NOT EXISTS shop_installation (
		id           CHAR(36)     NOT NULL,
		shop_domain  VARCHAR(255) NOT NULL,
		access_token VARCHAR(255) NULL,
		is_active    TINYINT(1)   NOT NULL DEFAULT 1,
		created_at   TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at   TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP
		             ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uniq_shop (shop_domain)
	)`,
	`CREATE TABLE IF NOT EXISTS shop_preference (
		shop_domain  VARCHAR(255) NOT NULL,
		default_tag  VARCHAR(255) NOT NULL DEFAULT '',
		auto_publish TINYINT(1)   NOT NULL DEFAULT 0,
		created_at   TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at   TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP
		             ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (shop_domain)
	)`,
}

// EnsureSchema creates the service tables when missing.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
