package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/emberforge/armory/internal/core/filter"
	apperrors "github.com/emberforge/armory/internal/platform/errors"
	"github.com/emberforge/armory/internal/platform/pagination"
	"github.com/emberforge/armory/internal/storage"
	"github.com/emberforge/armory/internal/storage/cursor"
)

const weaponColumns = "id, name, power, creator, owner, hero_id, created_at"

func scanWeapon(row rowScanner) (storage.WeaponRecord, error) {
	var rec storage.WeaponRecord
	var createdAt int64
	err := row.Scan(&rec.ID, &rec.Name, &rec.Power, &rec.Creator,
		&rec.Owner, &rec.HeroID, &createdAt)
	if err != nil {
		return storage.WeaponRecord{}, err
	}
	rec.CreatedAt = fromMillis(createdAt)
	return rec, nil
}

// CreateWeapon inserts a weapon and increments the created-weapons counter in
// one transaction.
func (s *Store) CreateWeapon(ctx context.Context, record storage.WeaponRecord) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create weapon: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO weapons (id, name, power, creator, owner, hero_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.Name, record.Power, record.Creator,
		record.Owner, record.HeroID, toMillis(record.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert weapon: %w", err)
	}

	if err := incrementRegistry(ctx, tx, "weapons_created"); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create weapon: %w", err)
	}
	return nil
}

func (s *Store) GetWeapon(ctx context.Context, weaponID string) (storage.WeaponRecord, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT "+weaponColumns+" FROM weapons WHERE id = ?", weaponID)
	rec, err := scanWeapon(row)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.WeaponRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.WeaponRecord{}, fmt.Errorf("get weapon: %w", err)
	}
	return rec, nil
}

func (s *Store) ListWeapons(ctx context.Context, query storage.ListQuery) (storage.WeaponPage, error) {
	cond, err := filter.Weapons().Parse(query.Filter)
	if err != nil {
		return storage.WeaponPage{}, apperrors.Wrap(apperrors.CodeInvalidFilter, "invalid weapon filter", err)
	}

	pageSize := pagination.ClampPageSize(query.PageSize, listPageSizes)
	where := "1=1"
	params := []any{}
	if cond.Clause != "" {
		where = cond.Clause
		params = append(params, cond.Params...)
	}

	if query.PageToken != "" {
		cur, err := cursor.Decode(query.PageToken)
		if err != nil {
			return storage.WeaponPage{}, apperrors.Wrap(apperrors.CodeInvalidPageToken, "invalid page token", err)
		}
		if err := cursor.ValidateFilterHash(cur, query.Filter); err != nil {
			return storage.WeaponPage{}, apperrors.Wrap(apperrors.CodeInvalidPageToken, "page token filter mismatch", err)
		}
		where += " AND (created_at > ? OR (created_at = ? AND id > ?))"
		params = append(params, cur.CreatedAtMillis, cur.CreatedAtMillis, cur.ID)
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT "+weaponColumns+" FROM weapons WHERE "+where+" ORDER BY created_at, id LIMIT ?",
		append(params, pageSize+1)...)
	if err != nil {
		return storage.WeaponPage{}, fmt.Errorf("list weapons: %w", err)
	}
	defer rows.Close()

	var weapons []storage.WeaponRecord
	for rows.Next() {
		rec, err := scanWeapon(rows)
		if err != nil {
			return storage.WeaponPage{}, fmt.Errorf("scan weapon row: %w", err)
		}
		weapons = append(weapons, rec)
	}
	if err := rows.Err(); err != nil {
		return storage.WeaponPage{}, fmt.Errorf("iterate weapons: %w", err)
	}

	page := storage.WeaponPage{Weapons: weapons}
	if len(weapons) > pageSize {
		page.Weapons = weapons[:pageSize]
		last := page.Weapons[pageSize-1]
		token, err := cursor.Encode(cursor.Cursor{
			CreatedAtMillis: toMillis(last.CreatedAt),
			ID:              last.ID,
			FilterHash:      cursor.HashFilter(query.Filter),
		})
		if err != nil {
			return storage.WeaponPage{}, fmt.Errorf("encode page token: %w", err)
		}
		page.NextPageToken = token
	}
	return page, nil
}
