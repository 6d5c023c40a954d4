package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emberforge/armory/internal/domain/registry"
)

// incrementRegistry bumps one registry counter inside a caller-owned
// transaction. The registry row must already exist.
func incrementRegistry(ctx context.Context, tx *sql.Tx, column string) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE mint_registry SET "+column+" = "+column+" + 1 WHERE id = 1")
	if err != nil {
		return fmt.Errorf("increment %s: %w", column, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment %s rows: %w", column, err)
	}
	if affected != 1 {
		return fmt.Errorf("mint registry not initialized")
	}
	return nil
}

// InitRegistry creates the singleton registry row with zeroed counters. It
// reports whether this call performed the creation, so first-boot setup can
// run exactly once.
func (s *Store) InitRegistry(ctx context.Context) (bool, error) {
	res, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO mint_registry (id, heroes_minted, weapons_created)
		 VALUES (1, 0, 0)
		 ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return false, fmt.Errorf("init registry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("init registry rows: %w", err)
	}
	return affected == 1, nil
}

func (s *Store) RegistryTotals(ctx context.Context) (registry.Totals, error) {
	var totals registry.Totals
	err := s.sqlDB.QueryRowContext(ctx,
		"SELECT heroes_minted, weapons_created FROM mint_registry WHERE id = 1").
		Scan(&totals.HeroesMinted, &totals.WeaponsCreated)
	if err != nil {
		return registry.Totals{}, fmt.Errorf("registry totals: %w", err)
	}
	return totals, nil
}
