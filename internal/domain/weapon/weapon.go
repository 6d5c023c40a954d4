// Package weapon provides the weapon token record.
package weapon

import (
	"fmt"
	"time"

	"github.com/emberforge/armory/internal/platform/id"
)

// Weapon represents a standalone weapon token. A weapon is exclusively owned:
// either by an address (standalone) or by the hero it is equipped to, never
// both at once.
type Weapon struct {
	ID        string
	Name      string
	Power     uint8
	Creator   string
	CreatedAt time.Time
}

// CreateWeaponInput describes the fields needed to create a weapon.
type CreateWeaponInput struct {
	Name    string
	Power   uint8
	Creator string
}

// CreateWeapon creates a new weapon with a generated ID and timestamp.
//
// Weapon fields are accepted as-is: any name (including empty) and any power
// in the uint8 range are valid. Creation never fails for field reasons.
func CreateWeapon(input CreateWeaponInput, now func() time.Time, idGenerator func() (string, error)) (Weapon, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	weaponID, err := idGenerator()
	if err != nil {
		return Weapon{}, fmt.Errorf("generate weapon id: %w", err)
	}

	return Weapon{
		ID:        weaponID,
		Name:      input.Name,
		Power:     input.Power,
		Creator:   input.Creator,
		CreatedAt: now().UTC(),
	}, nil
}
