package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/meetdeck/meetdeck-cli/internal/common"
	"github.com/meetdeck/meetdeck-cli/internal/dbx"
)

// SQLiteStore keeps the token pair in a two-row key-value table.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Access(ctx context.Context) (string, error) {
	return s.get(ctx, common.AccessTokenKey)
}

func (s *SQLiteStore) Refresh(ctx context.Context) (string, error) {
	return s.get(ctx, common.RefreshTokenKey)
}

func (s *SQLiteStore) get(ctx context.Context, key string) (string, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM tokens WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get tokens[%s]: %w", key, err)
	}
	return string(value), nil
}

// SetPair writes both tokens inside one transaction so a crash between the
// two statements cannot leave a mixed pair behind.
func (s *SQLiteStore) SetPair(ctx context.Context, access, refresh string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := set(ctx, tx, common.AccessTokenKey, access); err != nil {
			return err
		}
		return set(ctx, tx, common.RefreshTokenKey, refresh)
	})
}

func set(ctx context.Context, tx dbx.DBTX, key, value string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO tokens (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, []byte(value))
	if err != nil {
		return fmt.Errorf("failed to set tokens[%s]: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tokens WHERE key IN (?, ?)`,
		common.AccessTokenKey, common.RefreshTokenKey)
	if err != nil {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}
	return nil
}
