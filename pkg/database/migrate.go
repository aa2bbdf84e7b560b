package database

import (
	"context"
	"fmt"
	"log"
	"strings"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id {{ID}},
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		plan TEXT NOT NULL DEFAULT 'free',
		role TEXT NOT NULL DEFAULT 'user',
		credits INTEGER NOT NULL DEFAULT 0 CHECK (credits >= 0),
		created_at {{TS}} NOT NULL,
		updated_at {{TS}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS companies (
		id {{ID}},
		name TEXT NOT NULL,
		trade_name TEXT NOT NULL DEFAULT '',
		tax_id TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		whatsapp TEXT NOT NULL DEFAULT '',
		website TEXT NOT NULL DEFAULT '',
		linkedin TEXT NOT NULL DEFAULT '',
		instagram TEXT NOT NULL DEFAULT '',
		continent TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		sector TEXT NOT NULL DEFAULT '',
		subsector TEXT NOT NULL DEFAULT '',
		size TEXT NOT NULL DEFAULT '',
		is_importer BOOLEAN NOT NULL DEFAULT FALSE,
		is_exporter BOOLEAN NOT NULL DEFAULT FALSE,
		is_distributor BOOLEAN NOT NULL DEFAULT FALSE,
		is_manufacturer BOOLEAN NOT NULL DEFAULT FALSE,
		is_retailer BOOLEAN NOT NULL DEFAULT FALSE,
		is_wholesaler BOOLEAN NOT NULL DEFAULT FALSE,
		responsible_name TEXT NOT NULL DEFAULT '',
		responsible_title TEXT NOT NULL DEFAULT '',
		quality INTEGER NOT NULL DEFAULT 0,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at {{TS}} NOT NULL,
		updated_at {{TS}} NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_companies_email ON companies (email) WHERE email <> ''`,
	`CREATE INDEX IF NOT EXISTS idx_companies_ranking ON companies (active, quality, updated_at)`,
	`CREATE INDEX IF NOT EXISTS idx_companies_country ON companies (country)`,
	`CREATE INDEX IF NOT EXISTS idx_companies_sector ON companies (sector)`,
	`CREATE TABLE IF NOT EXISTS downloads (
		id {{ID}},
		user_id INTEGER NOT NULL REFERENCES users (id),
		filters TEXT NOT NULL DEFAULT '{}',
		record_count INTEGER NOT NULL,
		credits_used INTEGER NOT NULL,
		format TEXT NOT NULL,
		created_at {{TS}} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_downloads_user ON downloads (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS credit_purchases (
		id {{ID}},
		user_id INTEGER NOT NULL REFERENCES users (id),
		pack TEXT NOT NULL,
		credits INTEGER NOT NULL,
		reference TEXT NOT NULL UNIQUE,
		created_at {{TS}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS lists (
		id {{ID}},
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL DEFAULT 0,
		price NUMERIC(12,2) NOT NULL,
		discount_price NUMERIC(12,2),
		validation_rate INTEGER NOT NULL DEFAULT 95,
		file_url TEXT NOT NULL DEFAULT '',
		sample_url TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		featured BOOLEAN NOT NULL DEFAULT FALSE,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at {{TS}} NOT NULL,
		updated_at {{TS}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS list_values (
		list_id INTEGER NOT NULL REFERENCES lists (id) ON DELETE CASCADE,
		kind TEXT NOT NULL,
		position INTEGER NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (list_id, kind, position)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_list_values_lookup ON list_values (kind, value)`,
}

func dialectReplacer(driver string) *strings.Replacer {
	if driver == DriverSQLite {
		return strings.NewReplacer(
			"{{ID}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
			"{{TS}}", "TIMESTAMP",
		)
	}
	return strings.NewReplacer(
		"{{ID}}", "BIGSERIAL PRIMARY KEY",
		"{{TS}}", "TIMESTAMPTZ",
	)
}

// Migrate creates the schema if it does not exist yet
func (c *Client) Migrate(ctx context.Context) error {
	r := dialectReplacer(c.Driver)
	for i, stmt := range schema {
		if _, err := c.DB.ExecContext(ctx, r.Replace(stmt)); err != nil {
			return fmt.Errorf("failed applying schema statement %d: %w", i, err)
		}
	}

	log.Println("✅ Database schema up to date")
	return nil
}
