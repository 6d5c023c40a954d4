// Package hero provides the hero token record and its weapon slot.
package hero

import (
	"fmt"
	"time"

	"github.com/emberforge/armory/internal/domain/weapon"
	"github.com/emberforge/armory/internal/platform/errors"
	"github.com/emberforge/armory/internal/platform/id"
)

// Name length bounds, measured in bytes.
const (
	MinNameLength = 1
	MaxNameLength = 50
)

var (
	// ErrInvalidName indicates a hero name outside the 1-50 byte bounds.
	ErrInvalidName = errors.New(errors.CodeHeroInvalidName, "hero name must be between 1 and 50 bytes")
	// ErrInvalidDescription indicates an empty hero description.
	ErrInvalidDescription = errors.New(errors.CodeHeroInvalidDescription, "hero description is required")
	// ErrInvalidImageReference indicates an empty image reference.
	ErrInvalidImageReference = errors.New(errors.CodeHeroInvalidImageReference, "hero image reference is required")
	// ErrSlotOccupied indicates an equip attempt on a non-empty slot.
	ErrSlotOccupied = errors.New(errors.CodeHeroSlotOccupied, "hero already has a weapon equipped")
	// ErrNothingEquipped indicates an unequip attempt on an empty slot.
	ErrNothingEquipped = errors.New(errors.CodeHeroNothingEquipped, "hero has no weapon equipped")
)

// Hero represents a hero token. The weapon slot holds zero or one weapon by
// value: equipping moves the weapon into the hero and unequipping moves it
// back out, so an equipped weapon has no independent owner.
type Hero struct {
	ID          string
	Name        string
	Description string
	ImageRef    string
	Owner       string
	Weapon      *weapon.Weapon
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MintHeroInput describes the fields needed to mint a hero.
type MintHeroInput struct {
	Name        string
	Description string
	ImageRef    string
	Owner       string
}

// ValidateFields checks hero display fields. Each violation maps to a
// distinct error so callers can tell the failing field apart. Content is
// accepted verbatim: no trimming or sanitization is applied.
func ValidateFields(name, description, imageRef string) error {
	if len(name) < MinNameLength || len(name) > MaxNameLength {
		return ErrInvalidName
	}
	if len(description) == 0 {
		return ErrInvalidDescription
	}
	if len(imageRef) == 0 {
		return ErrInvalidImageReference
	}
	return nil
}

// MintHero creates a new hero with a generated ID, an empty weapon slot and
// creation timestamps. Field validation runs first; on violation no hero is
// constructed.
func MintHero(input MintHeroInput, now func() time.Time, idGenerator func() (string, error)) (Hero, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	if err := ValidateFields(input.Name, input.Description, input.ImageRef); err != nil {
		return Hero{}, err
	}

	heroID, err := idGenerator()
	if err != nil {
		return Hero{}, fmt.Errorf("generate hero id: %w", err)
	}

	mintedAt := now().UTC()
	return Hero{
		ID:          heroID,
		Name:        input.Name,
		Description: input.Description,
		ImageRef:    input.ImageRef,
		Owner:       input.Owner,
		Weapon:      nil,
		CreatedAt:   mintedAt,
		UpdatedAt:   mintedAt,
	}, nil
}

// Equip moves a weapon into the hero's slot. The slot must be empty;
// otherwise the hero is left unchanged.
func (h *Hero) Equip(w weapon.Weapon) error {
	if h.Weapon != nil {
		return ErrSlotOccupied
	}
	h.Weapon = &w
	return nil
}

// Unequip extracts the equipped weapon and empties the slot, returning the
// weapon as an independent value. The slot must be occupied; otherwise the
// hero is left unchanged.
func (h *Hero) Unequip() (weapon.Weapon, error) {
	if h.Weapon == nil {
		return weapon.Weapon{}, ErrNothingEquipped
	}
	w := *h.Weapon
	h.Weapon = nil
	return w, nil
}

// HasWeapon reports whether the weapon slot is occupied.
func (h *Hero) HasWeapon() bool {
	return h.Weapon != nil
}

// WeaponPower returns the equipped weapon's power, or 0 when the slot is
// empty. The zero default is deliberate: an unarmed hero has no strength
// bonus rather than an error.
func (h *Hero) WeaponPower() uint8 {
	if h.Weapon == nil {
		return 0
	}
	return h.Weapon.Power
}
