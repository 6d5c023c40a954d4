// Package storage defines the persistence records and store contracts for
// the armory service.
package storage

import (
	"context"
	"time"

	"github.com/emberforge/armory/internal/domain/registry"
	"github.com/emberforge/armory/internal/ledger"
	apperrors "github.com/emberforge/armory/internal/platform/errors"
)

// ErrNotFound indicates a requested persistence record is missing. Ownership
// is part of the lookup: asking for a token another address holds also
// reports not found, matching "you cannot present what you do not hold".
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// HeroRecord captures persisted hero token state. WeaponID is empty when the
// slot is empty.
type HeroRecord struct {
	ID          string
	Name        string
	Description string
	ImageRef    string
	Owner       string
	WeaponID    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// WeaponRecord captures persisted weapon token state. Exactly one of Owner
// and HeroID is set: Owner while the weapon is standalone, HeroID while it
// is equipped.
type WeaponRecord struct {
	ID        string
	Name      string
	Power     uint8
	Creator   string
	Owner     string
	HeroID    string
	CreatedAt time.Time
}

// GrantRecord captures a persisted mint capability.
type GrantRecord struct {
	ID        string
	Recipient string
	IssuedBy  string
	CreatedAt time.Time
}

// AuditEvent captures one operational audit record with trace correlation.
type AuditEvent struct {
	EventName     string
	Severity      string
	CallerAddress string
	RequestID     string
	TraceID       string
	SpanID        string
	Attributes    map[string]any
	Timestamp     time.Time
}

// HeroPage is one page of hero records plus the cursor for the next page.
type HeroPage struct {
	Heroes        []HeroRecord
	NextPageToken string
}

// WeaponPage is one page of weapon records plus the cursor for the next page.
type WeaponPage struct {
	Weapons       []WeaponRecord
	NextPageToken string
}

// LedgerPage is one page of ledger events plus the cursor for the next page.
type LedgerPage struct {
	Events        []ledger.Event
	NextPageToken string
}

// ListQuery carries shared list parameters. Filter is an AIP-160 expression
// over the entity's declared fields.
type ListQuery struct {
	PageSize  int
	PageToken string
	Filter    string
}

// HeroStore persists hero token records.
type HeroStore interface {
	// CreateHero inserts a hero and increments the minted-heroes counter in
	// the same transaction.
	CreateHero(ctx context.Context, record HeroRecord) error
	// GetHero fetches a hero by id regardless of owner.
	GetHero(ctx context.Context, heroID string) (HeroRecord, error)
	// GetHeroOwned fetches a hero by id scoped to its owner.
	GetHeroOwned(ctx context.Context, heroID, owner string) (HeroRecord, error)
	// ListHeroes returns a filtered page of heroes.
	ListHeroes(ctx context.Context, query ListQuery) (HeroPage, error)
}

// WeaponStore persists weapon token records.
type WeaponStore interface {
	// CreateWeapon inserts a weapon and increments the created-weapons
	// counter in the same transaction.
	CreateWeapon(ctx context.Context, record WeaponRecord) error
	// GetWeapon fetches a weapon by id regardless of holder.
	GetWeapon(ctx context.Context, weaponID string) (WeaponRecord, error)
	// ListWeapons returns a filtered page of weapons.
	ListWeapons(ctx context.Context, query ListQuery) (WeaponPage, error)
}

// EquipStore performs the slot transitions. Both operations are atomic: on
// any guard failure the records are left unchanged.
type EquipStore interface {
	// EquipWeapon moves a caller-owned standalone weapon into a caller-owned
	// hero's empty slot and returns the equipped weapon.
	EquipWeapon(ctx context.Context, heroID, weaponID, caller string, now time.Time) (WeaponRecord, error)
	// UnequipWeapon empties the hero's slot and returns the weapon to the
	// caller as a standalone record.
	UnequipWeapon(ctx context.Context, heroID, caller string, now time.Time) (WeaponRecord, error)
}

// RegistryStore persists the shared mint statistics.
type RegistryStore interface {
	// InitRegistry creates the registry row with zeroed counters. It reports
	// whether this call performed the creation.
	InitRegistry(ctx context.Context) (created bool, err error)
	// RegistryTotals returns the current counter snapshot.
	RegistryTotals(ctx context.Context) (registry.Totals, error)
}

// GrantStore persists mint capabilities.
type GrantStore interface {
	PutGrant(ctx context.Context, record GrantRecord) error
	// GetGrant fetches a grant by id. An unknown id means the presented
	// capability is invalid.
	GetGrant(ctx context.Context, grantID string) (GrantRecord, error)
}

// LedgerStore persists and serves the mutation event feed.
type LedgerStore interface {
	ledger.Sink
	ListLedgerEvents(ctx context.Context, query ListQuery) (LedgerPage, error)
}

// AuditEventStore persists operational audit events.
type AuditEventStore interface {
	AppendAuditEvent(ctx context.Context, evt AuditEvent) error
}

// Store aggregates every store contract the service needs.
type Store interface {
	HeroStore
	WeaponStore
	EquipStore
	RegistryStore
	GrantStore
	LedgerStore
	AuditEventStore
}
