// Package ledger provides the fire-and-forget mutation event feed.
//
// Every successful mutation emits exactly one event describing it. Emission
// is best-effort observability for off-system indexers: a failed append is
// logged by the caller and never rolls back the mutation it describes.
package ledger

import (
	"context"
	"time"

	"github.com/emberforge/armory/internal/domain/hero"
	"github.com/emberforge/armory/internal/domain/weapon"
)

// Type identifies the shape of a ledger event.
type Type string

const (
	// TypeHeroMinted records a hero mint, including who minted and who received.
	TypeHeroMinted Type = "hero.minted"
	// TypeWeaponCreated records a standalone weapon creation.
	TypeWeaponCreated Type = "weapon.created"
	// TypeWeaponEquipped records a weapon moving into a hero's slot.
	TypeWeaponEquipped Type = "weapon.equipped"
	// TypeWeaponUnequipped records a weapon leaving a hero's slot.
	TypeWeaponUnequipped Type = "weapon.unequipped"
)

// Event is a flat, indexer-friendly record of one mutation. Fields not
// meaningful for a given type are left at their zero value.
type Event struct {
	Seq         uint64
	Type        Type
	HeroID      string
	WeaponID    string
	Name        string
	Description string
	ImageRef    string
	Power       uint8
	Recipient   string
	MintedBy    string
	Creator     string
	Timestamp   time.Time
}

// Sink is the append-only port ledger events are written to.
type Sink interface {
	AppendLedgerEvent(ctx context.Context, evt Event) error
}

// Emitter writes ledger events to a sink. It is nil-safe so callers can run
// without a configured sink.
type Emitter struct {
	sink  Sink
	clock func() time.Time
}

// NewEmitter creates a ledger emitter.
func NewEmitter(sink Sink) *Emitter {
	return &Emitter{sink: sink, clock: time.Now}
}

// Emit records a ledger event. It is a no-op when the sink is nil.
func (e *Emitter) Emit(ctx context.Context, evt Event) error {
	if e == nil || e.sink == nil {
		return nil
	}
	if evt.Timestamp.IsZero() {
		if e.clock == nil {
			evt.Timestamp = time.Now().UTC()
		} else {
			evt.Timestamp = e.clock().UTC()
		}
	}
	return e.sink.AppendLedgerEvent(ctx, evt)
}

// HeroMinted builds the mint event for a hero. Recipient and minter are
// recorded distinctly so delegated mints stay attributable.
func HeroMinted(h hero.Hero, recipient, mintedBy string) Event {
	return Event{
		Type:        TypeHeroMinted,
		HeroID:      h.ID,
		Name:        h.Name,
		Description: h.Description,
		ImageRef:    h.ImageRef,
		Recipient:   recipient,
		MintedBy:    mintedBy,
	}
}

// WeaponCreated builds the creation event for a standalone weapon.
func WeaponCreated(w weapon.Weapon) Event {
	return Event{
		Type:     TypeWeaponCreated,
		WeaponID: w.ID,
		Name:     w.Name,
		Power:    w.Power,
		Creator:  w.Creator,
	}
}

// WeaponEquipped builds the equip event for a hero/weapon pair.
func WeaponEquipped(heroID string, w weapon.Weapon) Event {
	return Event{
		Type:     TypeWeaponEquipped,
		HeroID:   heroID,
		WeaponID: w.ID,
		Name:     w.Name,
	}
}

// WeaponUnequipped builds the unequip event for a hero/weapon pair.
func WeaponUnequipped(heroID, weaponID string) Event {
	return Event{
		Type:     TypeWeaponUnequipped,
		HeroID:   heroID,
		WeaponID: weaponID,
	}
}
