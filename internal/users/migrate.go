package users

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

func AutoMigrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS pgcrypto`); err != nil {
		return err
	}
	_, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS approved_users (
          id          uuid PRIMARY KEY DEFAULT gen_random_uuid(),
          email       TEXT NOT NULL UNIQUE,
          status      TEXT NOT NULL DEFAULT 'pending',
          approved_by TEXT NOT NULL DEFAULT '',
          created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `)
	return err
}
