package hero

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/emberforge/armory/internal/domain/weapon"
)

func TestMintHero(t *testing.T) {
	fixedTime := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	input := MintHeroInput{
		Name:        "Aria Starweaver",
		Description: "A wandering duelist",
		ImageRef:    "ipfs://QmHero1",
		Owner:       "addr-1",
	}

	h, err := MintHero(input, func() time.Time { return fixedTime }, func() (string, error) {
		return "hero123", nil
	})
	if err != nil {
		t.Fatalf("mint hero: %v", err)
	}

	if h.ID != "hero123" {
		t.Fatalf("expected id hero123, got %q", h.ID)
	}
	if h.Name != input.Name || h.Description != input.Description || h.ImageRef != input.ImageRef {
		t.Fatal("expected display fields preserved verbatim")
	}
	if h.Owner != "addr-1" {
		t.Fatalf("expected owner addr-1, got %q", h.Owner)
	}
	if h.Weapon != nil {
		t.Fatal("expected empty weapon slot on mint")
	}
	if !h.CreatedAt.Equal(fixedTime) || !h.UpdatedAt.Equal(fixedTime) {
		t.Fatal("expected timestamps to match fixed time")
	}
}

func TestValidateFields(t *testing.T) {
	tests := []struct {
		name     string
		heroName string
		desc     string
		imageRef string
		wantErr  error
	}{
		{name: "valid", heroName: "Aria", desc: "d", imageRef: "i", wantErr: nil},
		{name: "name at max", heroName: strings.Repeat("a", 50), desc: "d", imageRef: "i", wantErr: nil},
		{name: "empty name", heroName: "", desc: "d", imageRef: "i", wantErr: ErrInvalidName},
		{name: "name too long", heroName: strings.Repeat("a", 51), desc: "d", imageRef: "i", wantErr: ErrInvalidName},
		{name: "empty description", heroName: "Aria", desc: "", imageRef: "i", wantErr: ErrInvalidDescription},
		{name: "empty image ref", heroName: "Aria", desc: "d", imageRef: "", wantErr: ErrInvalidImageReference},
		{name: "control characters accepted", heroName: "a\x00b", desc: "\n", imageRef: " ", wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFields(tt.heroName, tt.desc, tt.imageRef)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateFieldsCountsBytes(t *testing.T) {
	// 17 four-byte runes exceed the 50-byte cap even though the rune count
	// is well under it.
	name := strings.Repeat("\U0001F5E1", 17)
	if err := ValidateFields(name, "d", "i"); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName for %d-byte name, got %v", len(name), err)
	}
}

func TestMintHeroValidationFailure(t *testing.T) {
	_, err := MintHero(MintHeroInput{Name: "", Description: "d", ImageRef: "i"}, nil, nil)
	if !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}

func TestEquipAndUnequipRoundTrip(t *testing.T) {
	h := Hero{ID: "hero-1"}
	w := weapon.Weapon{ID: "weap-1", Name: "Ember Blade", Power: 42}

	if h.HasWeapon() {
		t.Fatal("expected empty slot before equip")
	}
	if got := h.WeaponPower(); got != 0 {
		t.Fatalf("expected power 0 for empty slot, got %d", got)
	}

	if err := h.Equip(w); err != nil {
		t.Fatalf("equip: %v", err)
	}
	if !h.HasWeapon() {
		t.Fatal("expected occupied slot after equip")
	}
	if got := h.WeaponPower(); got != 42 {
		t.Fatalf("expected power 42, got %d", got)
	}

	returned, err := h.Unequip()
	if err != nil {
		t.Fatalf("unequip: %v", err)
	}
	if returned.ID != "weap-1" || returned.Power != 42 {
		t.Fatalf("expected original weapon back, got %+v", returned)
	}
	if h.HasWeapon() {
		t.Fatal("expected empty slot after unequip")
	}
	if got := h.WeaponPower(); got != 0 {
		t.Fatalf("expected power 0 after unequip, got %d", got)
	}
}

func TestEquipOccupiedSlotFails(t *testing.T) {
	h := Hero{ID: "hero-1"}
	first := weapon.Weapon{ID: "weap-1", Power: 10}
	second := weapon.Weapon{ID: "weap-2", Power: 99}

	if err := h.Equip(first); err != nil {
		t.Fatalf("equip first: %v", err)
	}
	if err := h.Equip(second); !errors.Is(err, ErrSlotOccupied) {
		t.Fatalf("expected ErrSlotOccupied, got %v", err)
	}
	if h.Weapon == nil || h.Weapon.ID != "weap-1" {
		t.Fatal("expected original weapon to remain equipped")
	}
}

func TestUnequipEmptySlotFails(t *testing.T) {
	h := Hero{ID: "hero-1"}
	if _, err := h.Unequip(); !errors.Is(err, ErrNothingEquipped) {
		t.Fatalf("expected ErrNothingEquipped, got %v", err)
	}
	if h.HasWeapon() {
		t.Fatal("expected slot to remain empty")
	}
}
