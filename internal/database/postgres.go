package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // postgres driver
)

// NewPostgresConnection opens a connection pool to Postgres and verifies it
func NewPostgresConnection(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Migrate creates the schema if it does not exist yet
func Migrate(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username VARCHAR(50) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL UNIQUE,
			avatar_url TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS friends (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			friend_user_id BIGINT REFERENCES users(id),
			name VARCHAR(100) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (user_id, friend_user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS wallets (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			name VARCHAR(100) NOT NULL,
			currency_code CHAR(3) NOT NULL DEFAULT 'SAR',
			balance NUMERIC(14,2) NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS incomes (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			wallet_id BIGINT NOT NULL REFERENCES wallets(id),
			amount NUMERIC(14,2) NOT NULL,
			currency_code CHAR(3) NOT NULL,
			description TEXT,
			reference VARCHAR(64) NOT NULL,
			occurred_on DATE NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS expenses (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			wallet_id BIGINT NOT NULL REFERENCES wallets(id),
			amount NUMERIC(14,2) NOT NULL,
			currency_code CHAR(3) NOT NULL,
			description TEXT,
			reference VARCHAR(64) NOT NULL,
			occurred_on DATE NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS collections (
			id BIGSERIAL PRIMARY KEY,
			creditor_id BIGINT REFERENCES users(id),
			creditor_name VARCHAR(100),
			debtor_id BIGINT REFERENCES users(id),
			debtor_name VARCHAR(100),
			amount NUMERIC(14,2) NOT NULL CHECK (amount > 0),
			currency_code CHAR(3) NOT NULL DEFAULT 'SAR',
			description TEXT,
			status VARCHAR(20) NOT NULL,
			created_by VARCHAR(10) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			CHECK (creditor_id IS NOT NULL OR creditor_name IS NOT NULL),
			CHECK (debtor_id IS NOT NULL OR debtor_name IS NOT NULL)
		)`,
		`CREATE TABLE IF NOT EXISTS collection_payments (
			id BIGSERIAL PRIMARY KEY,
			collection_id BIGINT NOT NULL REFERENCES collections(id),
			amount NUMERIC(14,2) NOT NULL CHECK (amount > 0),
			notes TEXT,
			paid_on DATE NOT NULL,
			creditor_income_id BIGINT REFERENCES incomes(id),
			debtor_expense_id BIGINT REFERENCES expenses(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id BIGSERIAL PRIMARY KEY,
			recipient_id BIGINT NOT NULL REFERENCES users(id),
			message TEXT NOT NULL,
			is_read BOOLEAN NOT NULL DEFAULT false,
			related_entity_type VARCHAR(30),
			related_entity_id BIGINT,
			link TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_collections_creditor ON collections(creditor_id)`,
		`CREATE INDEX IF NOT EXISTS idx_collections_debtor ON collections(debtor_id)`,
		`CREATE INDEX IF NOT EXISTS idx_collection_payments_collection ON collection_payments(collection_id)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	return nil
}
