package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// WriteMeta stamps a freshly created schema.
func WriteMeta(ctx context.Context, db *sql.DB, sqlt SQL) error {
	if _, err := db.ExecContext(ctx, sqlt.SetMeta, MetaMagicKey, MetaMagic); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx, sqlt.SetMeta, MetaVersionKey, MetaVersion)
	return err
}

// CheckMeta verifies the stamp written by WriteMeta.
func CheckMeta(ctx context.Context, db *sql.DB, sqlt SQL) error {
	var magic string
	if err := db.QueryRowContext(ctx, sqlt.GetMeta, MetaMagicKey).Scan(&magic); err != nil {
		return fmt.Errorf("read schema marker: %w", err)
	}
	if magic != MetaMagic {
		return fmt.Errorf("not a jobfilter database")
	}
	var version string
	if err := db.QueryRowContext(ctx, sqlt.GetMeta, MetaVersionKey).Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != MetaVersion {
		return fmt.Errorf("unsupported schema version %q", version)
	}
	return nil
}
