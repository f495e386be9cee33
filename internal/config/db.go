package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ConnectDB establishes a connection to the PostgreSQL database
func ConnectDB(ctx context.Context, cfg DBConfig) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	var err error

	// Retry connecting to the database a few times
	maxRetries := 5
	retryInterval := 5 * time.Second

	for i := 0; i < maxRetries; i++ {
		pool, err = pgxpool.New(ctx, cfg.DSN())
		if err == nil {
			err = pool.Ping(ctx)
			if err == nil {
				slog.Info("Successfully connected to PostgreSQL", "host", cfg.Host, "db", cfg.Name)
				return pool, nil
			}
			pool.Close()
		}
		slog.Warn("Failed to connect to database, retrying",
			"attempt", i+1, "max_attempts", maxRetries, "error", err, "retry_in", retryInterval)
		time.Sleep(retryInterval)
	}
	return nil, fmt.Errorf("unable to connect to database after %d attempts: %w", maxRetries, err)
}

// Schema is applied at startup. Unique constraints are the authority for email, phone,
// member id and transaction id uniqueness; their names are mapped back to fields by the repository.
const Schema = `
	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		full_name TEXT NOT NULL,
		phone TEXT NOT NULL,
		email TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'MEMBER' CHECK (role IN ('MEMBER', 'ADMIN')),
		member_id CHAR(7) NOT NULL CHECK (member_id ~ '^M[0-9]{6}$'),
		membership_plan TEXT NOT NULL DEFAULT 'None',
		membership_status TEXT NOT NULL DEFAULT 'Pending'
			CHECK (membership_status IN ('Active', 'Inactive', 'Expired', 'Pending')),
		membership_expires_at TIMESTAMP WITH TIME ZONE,
		address TEXT NOT NULL DEFAULT 'Not provided',
		last_login TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT users_email_key UNIQUE (email),
		CONSTRAINT users_phone_key UNIQUE (phone),
		CONSTRAINT users_member_id_key UNIQUE (member_id)
	);

	CREATE TABLE IF NOT EXISTS payments (
		id UUID PRIMARY KEY,
		member_ref UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		member_id CHAR(7) NOT NULL,
		member_name TEXT NOT NULL,
		amount NUMERIC(12, 2) NOT NULL CHECK (amount >= 0),
		payment_date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
		status TEXT NOT NULL DEFAULT 'completed'
			CHECK (status IN ('completed', 'pending', 'failed', 'refunded')),
		payment_type TEXT NOT NULL CHECK (payment_type IN ('membership', 'supplement', 'class', 'other')),
		membership_plan TEXT,
		transaction_id TEXT,
		description TEXT,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT payments_transaction_id_key UNIQUE (transaction_id),
		CONSTRAINT payments_membership_plan_check
			CHECK (payment_type <> 'membership' OR membership_plan IS NOT NULL)
	);

	-- Indexes for the admin list, dashboard and billing queries
	CREATE INDEX IF NOT EXISTS idx_users_role_created_at ON users(role, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_users_membership_expires_at ON users(membership_expires_at);
	CREATE INDEX IF NOT EXISTS idx_payments_member_ref ON payments(member_ref);
	CREATE INDEX IF NOT EXISTS idx_payments_status_payment_date ON payments(status, payment_date);

	-- Function to update updated_at column
	CREATE OR REPLACE FUNCTION update_updated_at_column()
	RETURNS TRIGGER AS $$
	BEGIN
	   NEW.updated_at = NOW();
	   RETURN NEW;
	END;
	$$ language 'plpgsql';

	DO $$
	BEGIN
		IF NOT EXISTS (
			SELECT 1
			FROM pg_trigger
			WHERE tgname = 'set_payments_updated_at' AND tgrelid = 'payments'::regclass
		) THEN
			CREATE TRIGGER set_payments_updated_at
			BEFORE UPDATE ON payments
			FOR EACH ROW
			EXECUTE FUNCTION update_updated_at_column();
		END IF;
	END
	$$;
`

// AutoMigrate creates tables if they don't exist
func AutoMigrate(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("unable to apply migrations: %w", err)
	}

	slog.Info("AutoMigrate applied successfully")
	return nil
}
