// Package migrations embeds the order-history schema.
package migrations

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	//go:embed create_tables.up.sql
	upSQL string
	//go:embed create_tables.down.sql
	downSQL string
)

// Execer is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func Up(ctx context.Context, db Execer) error {
	if _, err := db.Exec(ctx, upSQL); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}

func Down(ctx context.Context, db Execer) error {
	if _, err := db.Exec(ctx, downSQL); err != nil {
		return fmt.Errorf("drop migration: %w", err)
	}
	return nil
}
