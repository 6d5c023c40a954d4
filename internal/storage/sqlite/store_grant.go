package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/emberforge/armory/internal/storage"
)

func (s *Store) PutGrant(ctx context.Context, record storage.GrantRecord) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO mint_grants (id, recipient, issued_by, created_at)
		 VALUES (?, ?, ?, ?)`,
		record.ID, record.Recipient, record.IssuedBy, toMillis(record.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert grant: %w", err)
	}
	return nil
}

func (s *Store) GetGrant(ctx context.Context, grantID string) (storage.GrantRecord, error) {
	var rec storage.GrantRecord
	var createdAt int64
	err := s.sqlDB.QueryRowContext(ctx,
		"SELECT id, recipient, issued_by, created_at FROM mint_grants WHERE id = ?", grantID).
		Scan(&rec.ID, &rec.Recipient, &rec.IssuedBy, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.GrantRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.GrantRecord{}, fmt.Errorf("get grant: %w", err)
	}
	rec.CreatedAt = fromMillis(createdAt)
	return rec, nil
}
