package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/emberforge/armory/internal/domain/hero"
	"github.com/emberforge/armory/internal/storage"
)

// EquipWeapon moves a caller-owned standalone weapon into a caller-owned
// hero's empty slot. All guards run inside one transaction so a concurrent
// equip cannot double-fill the slot or double-spend the weapon.
func (s *Store) EquipWeapon(ctx context.Context, heroID, weaponID, caller string, now time.Time) (storage.WeaponRecord, error) {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.WeaponRecord{}, fmt.Errorf("begin equip: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx,
		"SELECT "+heroColumns+" FROM heroes WHERE id = ?", heroID)
	heroRec, err := scanHero(row)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.WeaponRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.WeaponRecord{}, fmt.Errorf("load hero for equip: %w", err)
	}
	if heroRec.Owner != caller {
		return storage.WeaponRecord{}, storage.ErrNotFound
	}
	if heroRec.WeaponID != "" {
		return storage.WeaponRecord{}, hero.ErrSlotOccupied
	}

	row = tx.QueryRowContext(ctx,
		"SELECT "+weaponColumns+" FROM weapons WHERE id = ?", weaponID)
	weaponRec, err := scanWeapon(row)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.WeaponRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.WeaponRecord{}, fmt.Errorf("load weapon for equip: %w", err)
	}
	// A weapon held inside another hero, or by another address, is not the
	// caller's to equip.
	if weaponRec.HeroID != "" || weaponRec.Owner != caller {
		return storage.WeaponRecord{}, storage.ErrNotFound
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE weapons SET owner = '', hero_id = ? WHERE id = ?", heroID, weaponID)
	if err != nil {
		return storage.WeaponRecord{}, fmt.Errorf("attach weapon: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		"UPDATE heroes SET weapon_id = ?, updated_at = ? WHERE id = ?",
		weaponID, toMillis(now), heroID)
	if err != nil {
		return storage.WeaponRecord{}, fmt.Errorf("fill hero slot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return storage.WeaponRecord{}, fmt.Errorf("commit equip: %w", err)
	}

	weaponRec.Owner = ""
	weaponRec.HeroID = heroID
	return weaponRec, nil
}

// UnequipWeapon empties the hero's slot and returns the weapon to the caller
// as a standalone record.
func (s *Store) UnequipWeapon(ctx context.Context, heroID, caller string, now time.Time) (storage.WeaponRecord, error) {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.WeaponRecord{}, fmt.Errorf("begin unequip: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx,
		"SELECT "+heroColumns+" FROM heroes WHERE id = ?", heroID)
	heroRec, err := scanHero(row)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.WeaponRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.WeaponRecord{}, fmt.Errorf("load hero for unequip: %w", err)
	}
	if heroRec.Owner != caller {
		return storage.WeaponRecord{}, storage.ErrNotFound
	}
	if heroRec.WeaponID == "" {
		return storage.WeaponRecord{}, hero.ErrNothingEquipped
	}

	row = tx.QueryRowContext(ctx,
		"SELECT "+weaponColumns+" FROM weapons WHERE id = ?", heroRec.WeaponID)
	weaponRec, err := scanWeapon(row)
	if err != nil {
		return storage.WeaponRecord{}, fmt.Errorf("load equipped weapon: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE weapons SET owner = ?, hero_id = '' WHERE id = ?",
		heroRec.Owner, weaponRec.ID)
	if err != nil {
		return storage.WeaponRecord{}, fmt.Errorf("detach weapon: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		"UPDATE heroes SET weapon_id = '', updated_at = ? WHERE id = ?",
		toMillis(now), heroID)
	if err != nil {
		return storage.WeaponRecord{}, fmt.Errorf("empty hero slot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return storage.WeaponRecord{}, fmt.Errorf("commit unequip: %w", err)
	}

	weaponRec.Owner = heroRec.Owner
	weaponRec.HeroID = ""
	return weaponRec, nil
}
