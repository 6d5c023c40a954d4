package filter

import (
	"strings"
	"testing"
)

func TestHeroesFilterEmpty(t *testing.T) {
	cond, err := Heroes().Parse("")
	if err != nil {
		t.Fatalf("parse empty: %v", err)
	}
	if cond.Clause != "" || len(cond.Params) != 0 {
		t.Fatalf("expected empty condition, got %+v", cond)
	}
}

func TestHeroesFilterEquality(t *testing.T) {
	cond, err := Heroes().Parse(`owner = "addr-1"`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cond.Clause != "owner = ?" {
		t.Fatalf("unexpected clause %q", cond.Clause)
	}
	if len(cond.Params) != 1 || cond.Params[0] != "addr-1" {
		t.Fatalf("unexpected params %+v", cond.Params)
	}
}

func TestHeroesFilterEquippedBool(t *testing.T) {
	cond, err := Heroes().Parse("equipped = true")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cond.Clause != "(weapon_id <> '') = ?" {
		t.Fatalf("unexpected clause %q", cond.Clause)
	}
	if len(cond.Params) != 1 || cond.Params[0] != int64(1) {
		t.Fatalf("unexpected params %+v", cond.Params)
	}
}

func TestHeroesFilterConjunction(t *testing.T) {
	cond, err := Heroes().Parse(`owner = "addr-1" AND equipped = false`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !strings.Contains(cond.Clause, "AND") {
		t.Fatalf("expected AND in clause %q", cond.Clause)
	}
	if len(cond.Params) != 2 {
		t.Fatalf("expected 2 params, got %+v", cond.Params)
	}
}

func TestHeroesFilterTimestamp(t *testing.T) {
	cond, err := Heroes().Parse(`created_at >= timestamp("2026-01-01T00:00:00Z")`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cond.Clause != "created_at >= ?" {
		t.Fatalf("unexpected clause %q", cond.Clause)
	}
	want := int64(1767225600000)
	if len(cond.Params) != 1 || cond.Params[0] != want {
		t.Fatalf("expected param %d, got %+v", want, cond.Params)
	}
}

func TestHeroesFilterUnknownField(t *testing.T) {
	if _, err := Heroes().Parse(`power > 10`); err == nil {
		t.Fatal("expected error for field not declared on heroes")
	}
}

func TestWeaponsFilterPowerRange(t *testing.T) {
	cond, err := Weapons().Parse("power >= 10 AND power < 200")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cond.Clause != "(power >= ? AND power < ?)" {
		t.Fatalf("unexpected clause %q", cond.Clause)
	}
	if len(cond.Params) != 2 || cond.Params[0] != int64(10) || cond.Params[1] != int64(200) {
		t.Fatalf("unexpected params %+v", cond.Params)
	}
}

func TestLedgerEventsFilterType(t *testing.T) {
	cond, err := LedgerEvents().Parse(`type = "weapon.equipped" OR type = "weapon.unequipped"`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cond.Clause != "(event_type = ? OR event_type = ?)" {
		t.Fatalf("unexpected clause %q", cond.Clause)
	}
}

func TestFilterSyntaxError(t *testing.T) {
	if _, err := Heroes().Parse("owner = = ="); err == nil {
		t.Fatal("expected parse error")
	}
}
