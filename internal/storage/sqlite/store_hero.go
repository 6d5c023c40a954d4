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

var listPageSizes = pagination.PageSizeConfig{Default: 50, Max: 200}

const heroColumns = "id, name, description, image_ref, owner, weapon_id, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHero(row rowScanner) (storage.HeroRecord, error) {
	var rec storage.HeroRecord
	var createdAt, updatedAt int64
	err := row.Scan(&rec.ID, &rec.Name, &rec.Description, &rec.ImageRef,
		&rec.Owner, &rec.WeaponID, &createdAt, &updatedAt)
	if err != nil {
		return storage.HeroRecord{}, err
	}
	rec.CreatedAt = fromMillis(createdAt)
	rec.UpdatedAt = fromMillis(updatedAt)
	return rec, nil
}

// CreateHero inserts a hero and increments the minted-heroes counter in one
// transaction so the registry never drifts from the token table.
func (s *Store) CreateHero(ctx context.Context, record storage.HeroRecord) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create hero: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO heroes (id, name, description, image_ref, owner, weapon_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.Name, record.Description, record.ImageRef,
		record.Owner, record.WeaponID, toMillis(record.CreatedAt), toMillis(record.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert hero: %w", err)
	}

	if err := incrementRegistry(ctx, tx, "heroes_minted"); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create hero: %w", err)
	}
	return nil
}

func (s *Store) GetHero(ctx context.Context, heroID string) (storage.HeroRecord, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT "+heroColumns+" FROM heroes WHERE id = ?", heroID)
	rec, err := scanHero(row)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.HeroRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.HeroRecord{}, fmt.Errorf("get hero: %w", err)
	}
	return rec, nil
}

func (s *Store) GetHeroOwned(ctx context.Context, heroID, owner string) (storage.HeroRecord, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT "+heroColumns+" FROM heroes WHERE id = ? AND owner = ?", heroID, owner)
	rec, err := scanHero(row)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.HeroRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.HeroRecord{}, fmt.Errorf("get owned hero: %w", err)
	}
	return rec, nil
}

func (s *Store) ListHeroes(ctx context.Context, query storage.ListQuery) (storage.HeroPage, error) {
	cond, err := filter.Heroes().Parse(query.Filter)
	if err != nil {
		return storage.HeroPage{}, apperrors.Wrap(apperrors.CodeInvalidFilter, "invalid hero filter", err)
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
			return storage.HeroPage{}, apperrors.Wrap(apperrors.CodeInvalidPageToken, "invalid page token", err)
		}
		if err := cursor.ValidateFilterHash(cur, query.Filter); err != nil {
			return storage.HeroPage{}, apperrors.Wrap(apperrors.CodeInvalidPageToken, "page token filter mismatch", err)
		}
		where += " AND (created_at > ? OR (created_at = ? AND id > ?))"
		params = append(params, cur.CreatedAtMillis, cur.CreatedAtMillis, cur.ID)
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT "+heroColumns+" FROM heroes WHERE "+where+" ORDER BY created_at, id LIMIT ?",
		append(params, pageSize+1)...)
	if err != nil {
		return storage.HeroPage{}, fmt.Errorf("list heroes: %w", err)
	}
	defer rows.Close()

	var heroes []storage.HeroRecord
	for rows.Next() {
		rec, err := scanHero(rows)
		if err != nil {
			return storage.HeroPage{}, fmt.Errorf("scan hero row: %w", err)
		}
		heroes = append(heroes, rec)
	}
	if err := rows.Err(); err != nil {
		return storage.HeroPage{}, fmt.Errorf("iterate heroes: %w", err)
	}

	page := storage.HeroPage{Heroes: heroes}
	if len(heroes) > pageSize {
		page.Heroes = heroes[:pageSize]
		last := page.Heroes[pageSize-1]
		token, err := cursor.Encode(cursor.Cursor{
			CreatedAtMillis: toMillis(last.CreatedAt),
			ID:              last.ID,
			FilterHash:      cursor.HashFilter(query.Filter),
		})
		if err != nil {
			return storage.HeroPage{}, fmt.Errorf("encode page token: %w", err)
		}
		page.NextPageToken = token
	}
	return page, nil
}
