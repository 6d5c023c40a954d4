package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/emberforge/armory/internal/domain/hero"
	"github.com/emberforge/armory/internal/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "armory.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func openInitializedStore(t *testing.T) *Store {
	t.Helper()
	store := openTestStore(t)
	if _, err := store.InitRegistry(context.Background()); err != nil {
		t.Fatalf("init registry: %v", err)
	}
	return store
}

func testTime(offset int) time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(offset) * time.Second)
}

func heroFixture(id, owner string, offset int) storage.HeroRecord {
	return storage.HeroRecord{
		ID:          id,
		Name:        "Kael",
		Description: "A wandering blade",
		ImageRef:    "ipfs://kael",
		Owner:       owner,
		CreatedAt:   testTime(offset),
		UpdatedAt:   testTime(offset),
	}
}

func weaponFixture(id, owner string, power uint8, offset int) storage.WeaponRecord {
	return storage.WeaponRecord{
		ID:        id,
		Name:      "Emberfang",
		Power:     power,
		Creator:   owner,
		Owner:     owner,
		CreatedAt: testTime(offset),
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for blank path")
	}
}

func TestInitRegistryIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created, err := store.InitRegistry(ctx)
	if err != nil {
		t.Fatalf("first init: %v", err)
	}
	if !created {
		t.Fatal("first init should create the registry row")
	}

	created, err = store.InitRegistry(ctx)
	if err != nil {
		t.Fatalf("second init: %v", err)
	}
	if created {
		t.Fatal("second init should be a no-op")
	}

	totals, err := store.RegistryTotals(ctx)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals.HeroesMinted != 0 || totals.WeaponsCreated != 0 {
		t.Fatalf("expected zeroed totals, got %+v", totals)
	}
}

func TestCreateHeroIncrementsRegistry(t *testing.T) {
	store := openInitializedStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		rec := heroFixture(fmt.Sprintf("hero-%d", i), "addr-1", i)
		if err := store.CreateHero(ctx, rec); err != nil {
			t.Fatalf("create hero %d: %v", i, err)
		}
	}

	totals, err := store.RegistryTotals(ctx)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals.HeroesMinted != 3 {
		t.Fatalf("expected 3 heroes minted, got %d", totals.HeroesMinted)
	}
	if totals.WeaponsCreated != 0 {
		t.Fatalf("expected 0 weapons created, got %d", totals.WeaponsCreated)
	}
}

func TestCreateHeroWithoutRegistry(t *testing.T) {
	store := openTestStore(t)
	err := store.CreateHero(context.Background(), heroFixture("hero-1", "addr-1", 0))
	if err == nil {
		t.Fatal("expected error when registry row is missing")
	}

	// The failed increment must roll back the hero insert too.
	if _, err := store.GetHero(context.Background(), "hero-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found after rollback, got %v", err)
	}
}

func TestGetHeroOwned(t *testing.T) {
	store := openInitializedStore(t)
	ctx := context.Background()

	if err := store.CreateHero(ctx, heroFixture("hero-1", "addr-1", 0)); err != nil {
		t.Fatalf("create hero: %v", err)
	}

	if _, err := store.GetHeroOwned(ctx, "hero-1", "addr-1"); err != nil {
		t.Fatalf("owner lookup: %v", err)
	}
	if _, err := store.GetHeroOwned(ctx, "hero-1", "addr-2"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found for wrong owner, got %v", err)
	}
	if _, err := store.GetHero(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found for unknown id, got %v", err)
	}
}

func TestListHeroesPagination(t *testing.T) {
	store := openInitializedStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		rec := heroFixture(fmt.Sprintf("hero-%d", i), "addr-1", i)
		if err := store.CreateHero(ctx, rec); err != nil {
			t.Fatalf("create hero %d: %v", i, err)
		}
	}

	page, err := store.ListHeroes(ctx, storage.ListQuery{PageSize: 2})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(page.Heroes) != 2 {
		t.Fatalf("expected 2 heroes, got %d", len(page.Heroes))
	}
	if page.NextPageToken == "" {
		t.Fatal("expected a next page token")
	}
	if page.Heroes[0].ID != "hero-0" || page.Heroes[1].ID != "hero-1" {
		t.Fatalf("unexpected order: %s, %s", page.Heroes[0].ID, page.Heroes[1].ID)
	}

	var seen []string
	for _, h := range page.Heroes {
		seen = append(seen, h.ID)
	}
	token := page.NextPageToken
	for token != "" {
		page, err = store.ListHeroes(ctx, storage.ListQuery{PageSize: 2, PageToken: token})
		if err != nil {
			t.Fatalf("next page: %v", err)
		}
		for _, h := range page.Heroes {
			seen = append(seen, h.ID)
		}
		token = page.NextPageToken
	}
	if len(seen) != 5 {
		t.Fatalf("expected 5 heroes across pages, got %d: %v", len(seen), seen)
	}
}

func TestListHeroesFilter(t *testing.T) {
	store := openInitializedStore(t)
	ctx := context.Background()

	for i, owner := range []string{"addr-1", "addr-2", "addr-1"} {
		rec := heroFixture(fmt.Sprintf("hero-%d", i), owner, i)
		if err := store.CreateHero(ctx, rec); err != nil {
			t.Fatalf("create hero %d: %v", i, err)
		}
	}

	page, err := store.ListHeroes(ctx, storage.ListQuery{Filter: `owner = "addr-1"`})
	if err != nil {
		t.Fatalf("list with filter: %v", err)
	}
	if len(page.Heroes) != 2 {
		t.Fatalf("expected 2 heroes for addr-1, got %d", len(page.Heroes))
	}

	if _, err := store.ListHeroes(ctx, storage.ListQuery{Filter: "bogus = 1"}); err == nil {
		t.Fatal("expected error for unknown filter field")
	}
}

func TestListHeroesRejectsForeignPageToken(t *testing.T) {
	store := openInitializedStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := store.CreateHero(ctx, heroFixture(fmt.Sprintf("hero-%d", i), "addr-1", i)); err != nil {
			t.Fatalf("create hero %d: %v", i, err)
		}
	}

	page, err := store.ListHeroes(ctx, storage.ListQuery{PageSize: 1, Filter: `owner = "addr-1"`})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}

	// Reusing the token with a different filter must fail.
	_, err = store.ListHeroes(ctx, storage.ListQuery{PageSize: 1, PageToken: page.NextPageToken})
	if err == nil {
		t.Fatal("expected error for token issued under a different filter")
	}

	if _, err := store.ListHeroes(ctx, storage.ListQuery{PageToken: "not-a-token"}); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestCreateWeaponIncrementsRegistry(t *testing.T) {
	store := openInitializedStore(t)
	ctx := context.Background()

	if err := store.CreateWeapon(ctx, weaponFixture("weapon-1", "addr-1", 42, 0)); err != nil {
		t.Fatalf("create weapon: %v", err)
	}

	totals, err := store.RegistryTotals(ctx)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals.WeaponsCreated != 1 {
		t.Fatalf("expected 1 weapon created, got %d", totals.WeaponsCreated)
	}

	rec, err := store.GetWeapon(ctx, "weapon-1")
	if err != nil {
		t.Fatalf("get weapon: %v", err)
	}
	if rec.Power != 42 || rec.Owner != "addr-1" || rec.HeroID != "" {
		t.Fatalf("unexpected weapon record: %+v", rec)
	}
}

func TestListWeaponsPowerFilter(t *testing.T) {
	store := openInitializedStore(t)
	ctx := context.Background()

	for i, power := range []uint8{5, 120, 250} {
		rec := weaponFixture(fmt.Sprintf("weapon-%d", i), "addr-1", power, i)
		if err := store.CreateWeapon(ctx, rec); err != nil {
			t.Fatalf("create weapon %d: %v", i, err)
		}
	}

	page, err := store.ListWeapons(ctx, storage.ListQuery{Filter: "power >= 100"})
	if err != nil {
		t.Fatalf("list weapons: %v", err)
	}
	if len(page.Weapons) != 2 {
		t.Fatalf("expected 2 weapons with power >= 100, got %d", len(page.Weapons))
	}
}

func TestEquipWeapon(t *testing.T) {
	store := openInitializedStore(t)
	ctx := context.Background()

	if err := store.CreateHero(ctx, heroFixture("hero-1", "addr-1", 0)); err != nil {
		t.Fatalf("create hero: %v", err)
	}
	if err := store.CreateWeapon(ctx, weaponFixture("weapon-1", "addr-1", 10, 1)); err != nil {
		t.Fatalf("create weapon: %v", err)
	}

	equipped, err := store.EquipWeapon(ctx, "hero-1", "weapon-1", "addr-1", testTime(2))
	if err != nil {
		t.Fatalf("equip: %v", err)
	}
	if equipped.HeroID != "hero-1" || equipped.Owner != "" {
		t.Fatalf("expected weapon held by hero, got %+v", equipped)
	}

	heroRec, err := store.GetHero(ctx, "hero-1")
	if err != nil {
		t.Fatalf("get hero: %v", err)
	}
	if heroRec.WeaponID != "weapon-1" {
		t.Fatalf("expected slot filled with weapon-1, got %q", heroRec.WeaponID)
	}
	if !heroRec.UpdatedAt.Equal(testTime(2)) {
		t.Fatalf("expected updated_at %v, got %v", testTime(2), heroRec.UpdatedAt)
	}
}

func TestEquipWeaponGuards(t *testing.T) {
	store := openInitializedStore(t)
	ctx := context.Background()

	if err := store.CreateHero(ctx, heroFixture("hero-1", "addr-1", 0)); err != nil {
		t.Fatalf("create hero: %v", err)
	}
	if err := store.CreateWeapon(ctx, weaponFixture("weapon-1", "addr-1", 10, 1)); err != nil {
		t.Fatalf("create weapon: %v", err)
	}
	if err := store.CreateWeapon(ctx, weaponFixture("weapon-2", "addr-1", 20, 2)); err != nil {
		t.Fatalf("create weapon: %v", err)
	}
	if err := store.CreateWeapon(ctx, weaponFixture("weapon-3", "addr-2", 30, 3)); err != nil {
		t.Fatalf("create weapon: %v", err)
	}

	tests := []struct {
		name     string
		heroID   string
		weaponID string
		caller   string
		setup    func(t *testing.T)
		wantErr  error
	}{
		{
			name:     "unknown hero",
			heroID:   "missing",
			weaponID: "weapon-1",
			caller:   "addr-1",
			wantErr:  storage.ErrNotFound,
		},
		{
			name:     "hero owned by someone else",
			heroID:   "hero-1",
			weaponID: "weapon-1",
			caller:   "addr-2",
			wantErr:  storage.ErrNotFound,
		},
		{
			name:     "weapon owned by someone else",
			heroID:   "hero-1",
			weaponID: "weapon-3",
			caller:   "addr-1",
			wantErr:  storage.ErrNotFound,
		},
		{
			name:     "slot already occupied",
			heroID:   "hero-1",
			weaponID: "weapon-2",
			caller:   "addr-1",
			setup: func(t *testing.T) {
				if _, err := store.EquipWeapon(ctx, "hero-1", "weapon-1", "addr-1", testTime(4)); err != nil {
					t.Fatalf("setup equip: %v", err)
				}
			},
			wantErr: hero.ErrSlotOccupied,
		},
		{
			name:     "weapon already inside a hero",
			heroID:   "hero-2",
			weaponID: "weapon-1",
			caller:   "addr-1",
			setup: func(t *testing.T) {
				if err := store.CreateHero(ctx, heroFixture("hero-2", "addr-1", 5)); err != nil {
					t.Fatalf("setup hero: %v", err)
				}
			},
			wantErr: storage.ErrNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setup != nil {
				tc.setup(t)
			}
			_, err := store.EquipWeapon(ctx, tc.heroID, tc.weaponID, tc.caller, testTime(10))
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestUnequipWeapon(t *testing.T) {
	store := openInitializedStore(t)
	ctx := context.Background()

	if err := store.CreateHero(ctx, heroFixture("hero-1", "addr-1", 0)); err != nil {
		t.Fatalf("create hero: %v", err)
	}
	if err := store.CreateWeapon(ctx, weaponFixture("weapon-1", "addr-1", 10, 1)); err != nil {
		t.Fatalf("create weapon: %v", err)
	}
	if _, err := store.EquipWeapon(ctx, "hero-1", "weapon-1", "addr-1", testTime(2)); err != nil {
		t.Fatalf("equip: %v", err)
	}

	returned, err := store.UnequipWeapon(ctx, "hero-1", "addr-1", testTime(3))
	if err != nil {
		t.Fatalf("unequip: %v", err)
	}
	if returned.ID != "weapon-1" || returned.Owner != "addr-1" || returned.HeroID != "" {
		t.Fatalf("expected standalone weapon back, got %+v", returned)
	}

	heroRec, err := store.GetHero(ctx, "hero-1")
	if err != nil {
		t.Fatalf("get hero: %v", err)
	}
	if heroRec.WeaponID != "" {
		t.Fatalf("expected empty slot, got %q", heroRec.WeaponID)
	}

	// A second unequip finds nothing in the slot.
	if _, err := store.UnequipWeapon(ctx, "hero-1", "addr-1", testTime(4)); !errors.Is(err, hero.ErrNothingEquipped) {
		t.Fatalf("expected nothing-equipped, got %v", err)
	}
}

func TestUnequipWeaponGuards(t *testing.T) {
	store := openInitializedStore(t)
	ctx := context.Background()

	if err := store.CreateHero(ctx, heroFixture("hero-1", "addr-1", 0)); err != nil {
		t.Fatalf("create hero: %v", err)
	}

	if _, err := store.UnequipWeapon(ctx, "missing", "addr-1", testTime(1)); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found for unknown hero, got %v", err)
	}
	if _, err := store.UnequipWeapon(ctx, "hero-1", "addr-2", testTime(1)); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found for wrong owner, got %v", err)
	}
	if _, err := store.UnequipWeapon(ctx, "hero-1", "addr-1", testTime(1)); !errors.Is(err, hero.ErrNothingEquipped) {
		t.Fatalf("expected nothing-equipped for empty slot, got %v", err)
	}
}

func TestGrantRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rec := storage.GrantRecord{
		ID:        "grant-1",
		Recipient: "addr-9",
		IssuedBy:  "publisher",
		CreatedAt: testTime(0),
	}
	if err := store.PutGrant(ctx, rec); err != nil {
		t.Fatalf("put grant: %v", err)
	}

	got, err := store.GetGrant(ctx, "grant-1")
	if err != nil {
		t.Fatalf("get grant: %v", err)
	}
	if got.Recipient != "addr-9" || got.IssuedBy != "publisher" {
		t.Fatalf("unexpected grant: %+v", got)
	}
	if !got.CreatedAt.Equal(testTime(0)) {
		t.Fatalf("expected created_at %v, got %v", testTime(0), got.CreatedAt)
	}

	if _, err := store.GetGrant(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found for unknown grant, got %v", err)
	}
}
