package weapon

import (
	"errors"
	"testing"
	"time"
)

func TestCreateWeapon(t *testing.T) {
	fixedTime := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	w, err := CreateWeapon(CreateWeaponInput{
		Name:    "Ember Blade",
		Power:   120,
		Creator: "addr-smith",
	}, func() time.Time { return fixedTime }, func() (string, error) {
		return "weap123", nil
	})
	if err != nil {
		t.Fatalf("create weapon: %v", err)
	}

	if w.ID != "weap123" {
		t.Fatalf("expected id weap123, got %q", w.ID)
	}
	if w.Name != "Ember Blade" {
		t.Fatalf("expected name preserved, got %q", w.Name)
	}
	if w.Power != 120 {
		t.Fatalf("expected power 120, got %d", w.Power)
	}
	if w.Creator != "addr-smith" {
		t.Fatalf("expected creator preserved, got %q", w.Creator)
	}
	if !w.CreatedAt.Equal(fixedTime) {
		t.Fatalf("expected created at to match fixed time")
	}
}

func TestCreateWeaponAcceptsAnyFields(t *testing.T) {
	tests := []struct {
		name  string
		input CreateWeaponInput
	}{
		{name: "empty name", input: CreateWeaponInput{Name: "", Power: 1}},
		{name: "zero power", input: CreateWeaponInput{Name: "Twig", Power: 0}},
		{name: "max power", input: CreateWeaponInput{Name: "Doom Edge", Power: 255}},
		{name: "control characters", input: CreateWeaponInput{Name: "a\x00b\n", Power: 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := CreateWeapon(tt.input, nil, nil)
			if err != nil {
				t.Fatalf("create weapon: %v", err)
			}
			if w.Name != tt.input.Name {
				t.Fatalf("expected name %q verbatim, got %q", tt.input.Name, w.Name)
			}
			if w.Power != tt.input.Power {
				t.Fatalf("expected power %d, got %d", tt.input.Power, w.Power)
			}
			if w.ID == "" {
				t.Fatal("expected generated id")
			}
		})
	}
}

func TestCreateWeaponIDGeneratorError(t *testing.T) {
	boom := errors.New("entropy exhausted")
	_, err := CreateWeapon(CreateWeaponInput{Name: "x"}, nil, func() (string, error) {
		return "", boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected id generator error, got %v", err)
	}
}
