// Package mint is the application service for the armory: it coordinates the
// domain rules, the store, the ledger feed and the audit trail for every
// token operation.
package mint

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log"
	"time"

	"github.com/emberforge/armory/internal/domain/grant"
	"github.com/emberforge/armory/internal/domain/hero"
	"github.com/emberforge/armory/internal/domain/registry"
	"github.com/emberforge/armory/internal/domain/weapon"
	"github.com/emberforge/armory/internal/ledger"
	"github.com/emberforge/armory/internal/observability/audit"
	"github.com/emberforge/armory/internal/observability/audit/events"
	apperrors "github.com/emberforge/armory/internal/platform/errors"
	"github.com/emberforge/armory/internal/platform/id"
	"github.com/emberforge/armory/internal/storage"
)

var (
	// ErrMintUnauthorized indicates an admin mint without a recognized grant.
	ErrMintUnauthorized = apperrors.New(apperrors.CodeMintUnauthorized, "mint grant not recognized")
	// ErrWrongPublisher indicates a grant issuance with a bad publisher key.
	ErrWrongPublisher = apperrors.New(apperrors.CodeGrantWrongPublisher, "publisher key mismatch")
)

// Config wires the service's dependencies. Clock and IDGenerator default to
// the real implementations when nil.
type Config struct {
	Store        storage.Store
	Ledger       *ledger.Emitter
	Audit        *audit.Emitter
	PublisherKey string
	Clock        func() time.Time
	IDGenerator  func() (string, error)
}

// Service implements the armory token operations.
type Service struct {
	store        storage.Store
	ledger       *ledger.Emitter
	audit        *audit.Emitter
	publisherKey string
	clock        func() time.Time
	idGen        func() (string, error)
}

// NewService creates the mint service.
func NewService(cfg Config) *Service {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := cfg.IDGenerator
	if idGen == nil {
		idGen = id.NewID
	}
	return &Service{
		store:        cfg.Store,
		ledger:       cfg.Ledger,
		audit:        cfg.Audit,
		publisherKey: cfg.PublisherKey,
		clock:        clock,
		idGen:        idGen,
	}
}

// MintInput carries the hero display fields for a mint.
type MintInput struct {
	Name        string
	Description string
	ImageRef    string
}

// emitLedger appends a ledger event, logging instead of failing the mutation
// it describes.
func (s *Service) emitLedger(ctx context.Context, evt ledger.Event) {
	if err := s.ledger.Emit(ctx, evt); err != nil {
		log.Printf("append ledger event %s: %v", evt.Type, err)
	}
}

// emitAudit records an audit event, logging on failure.
func (s *Service) emitAudit(ctx context.Context, evt storage.AuditEvent) {
	if err := s.audit.Emit(ctx, evt); err != nil {
		log.Printf("append audit event %s: %v", evt.EventName, err)
	}
}

// MintHero mints a hero to the caller's own address.
func (s *Service) MintHero(ctx context.Context, caller string, input MintInput) (storage.HeroRecord, error) {
	return s.mintHeroTo(ctx, caller, caller, input)
}

// AdminMintHero mints a hero to an arbitrary recipient. The caller must hold
// the presented grant: an unknown grant id, or one held by another address,
// both fail the same way so grant ids cannot be probed.
func (s *Service) AdminMintHero(ctx context.Context, caller, grantID, recipient string, input MintInput) (storage.HeroRecord, error) {
	decision := storage.AuditEvent{
		EventName:     events.MintDecision,
		Severity:      string(audit.SeverityWarn),
		CallerAddress: caller,
		Attributes:    map[string]any{"decision": "deny", "recipient": recipient},
	}

	if grantID == "" {
		s.emitAudit(ctx, decision)
		return storage.HeroRecord{}, ErrMintUnauthorized
	}
	g, err := s.store.GetGrant(ctx, grantID)
	if err != nil || g.Recipient != caller {
		s.emitAudit(ctx, decision)
		return storage.HeroRecord{}, ErrMintUnauthorized
	}

	decision.Severity = string(audit.SeverityInfo)
	decision.Attributes["decision"] = "allow"
	s.emitAudit(ctx, decision)
	return s.mintHeroTo(ctx, caller, recipient, input)
}

func (s *Service) mintHeroTo(ctx context.Context, mintedBy, owner string, input MintInput) (storage.HeroRecord, error) {
	h, err := hero.MintHero(hero.MintHeroInput{
		Name:        input.Name,
		Description: input.Description,
		ImageRef:    input.ImageRef,
		Owner:       owner,
	}, s.clock, s.idGen)
	if err != nil {
		return storage.HeroRecord{}, err
	}

	rec := storage.HeroRecord{
		ID:          h.ID,
		Name:        h.Name,
		Description: h.Description,
		ImageRef:    h.ImageRef,
		Owner:       h.Owner,
		CreatedAt:   h.CreatedAt,
		UpdatedAt:   h.UpdatedAt,
	}
	if err := s.store.CreateHero(ctx, rec); err != nil {
		return storage.HeroRecord{}, fmt.Errorf("persist hero: %w", err)
	}

	s.emitLedger(ctx, ledger.HeroMinted(h, owner, mintedBy))
	return rec, nil
}

// CreateWeaponInput carries the weapon fields for a creation. Fields are
// accepted verbatim.
type CreateWeaponInput struct {
	Name  string
	Power uint8
}

// CreateWeapon creates a standalone weapon held by the caller.
func (s *Service) CreateWeapon(ctx context.Context, caller string, input CreateWeaponInput) (storage.WeaponRecord, error) {
	w, err := weapon.CreateWeapon(weapon.CreateWeaponInput{
		Name:    input.Name,
		Power:   input.Power,
		Creator: caller,
	}, s.clock, s.idGen)
	if err != nil {
		return storage.WeaponRecord{}, err
	}

	rec := storage.WeaponRecord{
		ID:        w.ID,
		Name:      w.Name,
		Power:     w.Power,
		Creator:   w.Creator,
		Owner:     caller,
		CreatedAt: w.CreatedAt,
	}
	if err := s.store.CreateWeapon(ctx, rec); err != nil {
		return storage.WeaponRecord{}, fmt.Errorf("persist weapon: %w", err)
	}

	s.emitLedger(ctx, ledger.WeaponCreated(w))
	return rec, nil
}

// Equip moves a caller-held weapon into a caller-owned hero's empty slot.
func (s *Service) Equip(ctx context.Context, caller, heroID, weaponID string) (storage.WeaponRecord, error) {
	rec, err := s.store.EquipWeapon(ctx, heroID, weaponID, caller, s.clock().UTC())
	if err != nil {
		return storage.WeaponRecord{}, err
	}

	s.emitLedger(ctx, ledger.WeaponEquipped(heroID, weapon.Weapon{
		ID:        rec.ID,
		Name:      rec.Name,
		Power:     rec.Power,
		Creator:   rec.Creator,
		CreatedAt: rec.CreatedAt,
	}))
	return rec, nil
}

// Unequip empties the hero's slot and returns the weapon to the caller.
func (s *Service) Unequip(ctx context.Context, caller, heroID string) (storage.WeaponRecord, error) {
	rec, err := s.store.UnequipWeapon(ctx, heroID, caller, s.clock().UTC())
	if err != nil {
		return storage.WeaponRecord{}, err
	}

	s.emitLedger(ctx, ledger.WeaponUnequipped(heroID, rec.ID))
	return rec, nil
}

// IssueGrant creates a new mint grant for recipient. Only callers presenting
// the publisher key may issue grants.
func (s *Service) IssueGrant(ctx context.Context, caller, presentedKey, recipient string) (grant.Grant, error) {
	if s.publisherKey == "" ||
		subtle.ConstantTimeCompare([]byte(presentedKey), []byte(s.publisherKey)) != 1 {
		s.emitAudit(ctx, storage.AuditEvent{
			EventName:     events.MintDecision,
			Severity:      string(audit.SeverityWarn),
			CallerAddress: caller,
			Attributes:    map[string]any{"decision": "deny", "reason": "wrong_publisher"},
		})
		return grant.Grant{}, ErrWrongPublisher
	}

	g, err := grant.Issue(recipient, caller, s.clock, s.idGen)
	if err != nil {
		return grant.Grant{}, err
	}
	if err := s.store.PutGrant(ctx, storage.GrantRecord{
		ID:        g.ID,
		Recipient: g.Recipient,
		IssuedBy:  g.IssuedBy,
		CreatedAt: g.CreatedAt,
	}); err != nil {
		return grant.Grant{}, fmt.Errorf("persist grant: %w", err)
	}

	s.emitAudit(ctx, storage.AuditEvent{
		EventName:     events.MintDecision,
		Severity:      string(audit.SeverityInfo),
		CallerAddress: caller,
		Attributes:    map[string]any{"decision": "allow", "recipient": recipient},
	})
	return g, nil
}

// Initialize sets up the registry row on first boot and issues the deployer's
// grant exactly once. The returned grant is only populated when created is
// true; its id is never recoverable afterwards.
func (s *Service) Initialize(ctx context.Context, deployer string) (grant.Grant, bool, error) {
	created, err := s.store.InitRegistry(ctx)
	if err != nil {
		return grant.Grant{}, false, err
	}
	if !created {
		return grant.Grant{}, false, nil
	}

	g, err := grant.Issue(deployer, "system", s.clock, s.idGen)
	if err != nil {
		return grant.Grant{}, false, fmt.Errorf("issue deployer grant: %w", err)
	}
	if err := s.store.PutGrant(ctx, storage.GrantRecord{
		ID:        g.ID,
		Recipient: g.Recipient,
		IssuedBy:  g.IssuedBy,
		CreatedAt: g.CreatedAt,
	}); err != nil {
		return grant.Grant{}, false, fmt.Errorf("persist deployer grant: %w", err)
	}
	return g, true, nil
}

// HeroView is a hero with its equipped weapon resolved.
type HeroView struct {
	Hero   storage.HeroRecord
	Weapon *storage.WeaponRecord
}

// WeaponPower returns the equipped weapon's power, or 0 when the slot is
// empty.
func (v HeroView) WeaponPower() uint8 {
	if v.Weapon == nil {
		return 0
	}
	return v.Weapon.Power
}

// GetHero fetches a hero and resolves its equipped weapon.
func (s *Service) GetHero(ctx context.Context, heroID string) (HeroView, error) {
	rec, err := s.store.GetHero(ctx, heroID)
	if err != nil {
		return HeroView{}, err
	}

	view := HeroView{Hero: rec}
	if rec.WeaponID != "" {
		w, err := s.store.GetWeapon(ctx, rec.WeaponID)
		if err != nil {
			return HeroView{}, fmt.Errorf("resolve equipped weapon: %w", err)
		}
		view.Weapon = &w
	}
	return view, nil
}

// GetWeapon fetches a weapon by id.
func (s *Service) GetWeapon(ctx context.Context, weaponID string) (storage.WeaponRecord, error) {
	return s.store.GetWeapon(ctx, weaponID)
}

// RegistryTotals returns the mint counter snapshot.
func (s *Service) RegistryTotals(ctx context.Context) (registry.Totals, error) {
	return s.store.RegistryTotals(ctx)
}

// ListHeroes returns a filtered page of heroes.
func (s *Service) ListHeroes(ctx context.Context, query storage.ListQuery) (storage.HeroPage, error) {
	return s.store.ListHeroes(ctx, query)
}

// ListWeapons returns a filtered page of weapons.
func (s *Service) ListWeapons(ctx context.Context, query storage.ListQuery) (storage.WeaponPage, error) {
	return s.store.ListWeapons(ctx, query)
}

// ListLedgerEvents returns a filtered page of the mutation feed.
func (s *Service) ListLedgerEvents(ctx context.Context, query storage.ListQuery) (storage.LedgerPage, error) {
	return s.store.ListLedgerEvents(ctx, query)
}
