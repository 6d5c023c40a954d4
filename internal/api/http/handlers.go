// Package httpapi exposes the armory operations over a JSON HTTP API.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/emberforge/armory/internal/mint"
	apperrors "github.com/emberforge/armory/internal/platform/errors"
	"github.com/emberforge/armory/internal/platform/requestctx"
	"github.com/emberforge/armory/internal/storage"
)

// errCallerMissing rejects mutations that arrive without a caller address.
var errCallerMissing = apperrors.New(apperrors.CodeCallerAddressMissing, "caller address header is required")

// Handler serves the armory HTTP API.
type Handler struct {
	service *mint.Service
}

// NewHandler creates the API handler.
func NewHandler(service *mint.Service) *Handler {
	return &Handler{service: service}
}

type heroResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	ImageRef    string          `json:"image_ref"`
	Owner       string          `json:"owner"`
	Weapon      *weaponResponse `json:"weapon,omitempty"`
	WeaponPower uint8           `json:"weapon_power"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type weaponResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Power     uint8     `json:"power"`
	Creator   string    `json:"creator"`
	Owner     string    `json:"owner,omitempty"`
	HeroID    string    `json:"hero_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func heroFromRecord(rec storage.HeroRecord) heroResponse {
	return heroResponse{
		ID:          rec.ID,
		Name:        rec.Name,
		Description: rec.Description,
		ImageRef:    rec.ImageRef,
		Owner:       rec.Owner,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}

func weaponFromRecord(rec storage.WeaponRecord) weaponResponse {
	return weaponResponse{
		ID:        rec.ID,
		Name:      rec.Name,
		Power:     rec.Power,
		Creator:   rec.Creator,
		Owner:     rec.Owner,
		HeroID:    rec.HeroID,
		CreatedAt: rec.CreatedAt,
	}
}

func decodeBody(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return apperrors.Wrap(apperrors.CodeUnknown, "invalid request body", err)
	}
	return nil
}

// requireCaller extracts the caller address for mutations.
func requireCaller(r *http.Request) (string, error) {
	caller := requestctx.CallerAddressFromContext(r.Context())
	if caller == "" {
		return "", errCallerMissing
	}
	return caller, nil
}

func listQueryFromRequest(r *http.Request) storage.ListQuery {
	query := storage.ListQuery{
		PageToken: r.URL.Query().Get("page_token"),
		Filter:    r.URL.Query().Get("filter"),
	}
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil {
			query.PageSize = size
		}
	}
	return query
}

type mintHeroRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageRef    string `json:"image_ref"`
}

// HandleMintHero mints a hero to the caller's own address.
func (h *Handler) HandleMintHero(w http.ResponseWriter, r *http.Request) {
	caller, err := requireCaller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req mintHeroRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: string(apperrors.CodeUnknown), Message: err.Error()})
		return
	}

	rec, err := h.service.MintHero(r.Context(), caller, mint.MintInput{
		Name:        req.Name,
		Description: req.Description,
		ImageRef:    req.ImageRef,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, heroFromRecord(rec))
}

type adminMintHeroRequest struct {
	GrantID     string `json:"grant_id"`
	Recipient   string `json:"recipient"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageRef    string `json:"image_ref"`
}

// HandleAdminMintHero mints a hero to an arbitrary recipient under a grant.
func (h *Handler) HandleAdminMintHero(w http.ResponseWriter, r *http.Request) {
	caller, err := requireCaller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req adminMintHeroRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: string(apperrors.CodeUnknown), Message: err.Error()})
		return
	}

	rec, err := h.service.AdminMintHero(r.Context(), caller, req.GrantID, req.Recipient, mint.MintInput{
		Name:        req.Name,
		Description: req.Description,
		ImageRef:    req.ImageRef,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, heroFromRecord(rec))
}

// HandleGetHero returns a hero with its equipped weapon resolved.
func (h *Handler) HandleGetHero(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetHero(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := heroFromRecord(view.Hero)
	resp.WeaponPower = view.WeaponPower()
	if view.Weapon != nil {
		weaponResp := weaponFromRecord(*view.Weapon)
		resp.Weapon = &weaponResp
	}
	writeJSON(w, http.StatusOK, resp)
}

type heroListResponse struct {
	Heroes        []heroResponse `json:"heroes"`
	NextPageToken string         `json:"next_page_token,omitempty"`
}

// HandleListHeroes returns a filtered page of heroes.
func (h *Handler) HandleListHeroes(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListHeroes(r.Context(), listQueryFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := heroListResponse{Heroes: make([]heroResponse, 0, len(page.Heroes)), NextPageToken: page.NextPageToken}
	for _, rec := range page.Heroes {
		resp.Heroes = append(resp.Heroes, heroFromRecord(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

type createWeaponRequest struct {
	Name  string `json:"name"`
	Power uint8  `json:"power"`
}

// HandleCreateWeapon creates a standalone weapon held by the caller.
func (h *Handler) HandleCreateWeapon(w http.ResponseWriter, r *http.Request) {
	caller, err := requireCaller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req createWeaponRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: string(apperrors.CodeUnknown), Message: err.Error()})
		return
	}

	rec, err := h.service.CreateWeapon(r.Context(), caller, mint.CreateWeaponInput{
		Name:  req.Name,
		Power: req.Power,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, weaponFromRecord(rec))
}

// HandleGetWeapon returns a weapon by id.
func (h *Handler) HandleGetWeapon(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.GetWeapon(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, weaponFromRecord(rec))
}

type weaponListResponse struct {
	Weapons       []weaponResponse `json:"weapons"`
	NextPageToken string           `json:"next_page_token,omitempty"`
}

// HandleListWeapons returns a filtered page of weapons.
func (h *Handler) HandleListWeapons(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListWeapons(r.Context(), listQueryFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := weaponListResponse{Weapons: make([]weaponResponse, 0, len(page.Weapons)), NextPageToken: page.NextPageToken}
	for _, rec := range page.Weapons {
		resp.Weapons = append(resp.Weapons, weaponFromRecord(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

type equipRequest struct {
	WeaponID string `json:"weapon_id"`
}

// HandleEquip moves a caller-held weapon into the hero's slot.
func (h *Handler) HandleEquip(w http.ResponseWriter, r *http.Request) {
	caller, err := requireCaller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req equipRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: string(apperrors.CodeUnknown), Message: err.Error()})
		return
	}

	rec, err := h.service.Equip(r.Context(), caller, r.PathValue("id"), req.WeaponID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, weaponFromRecord(rec))
}

// HandleUnequip empties the hero's slot and returns the weapon to the caller.
func (h *Handler) HandleUnequip(w http.ResponseWriter, r *http.Request) {
	caller, err := requireCaller(r)
	if err != nil {
		writeError(w, err)
		return
	}

	rec, err := h.service.Unequip(r.Context(), caller, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, weaponFromRecord(rec))
}

type issueGrantRequest struct {
	PublisherKey string `json:"publisher_key"`
	Recipient    string `json:"recipient"`
}

type grantResponse struct {
	ID        string    `json:"id"`
	Recipient string    `json:"recipient"`
	IssuedBy  string    `json:"issued_by"`
	CreatedAt time.Time `json:"created_at"`
}

// HandleIssueGrant issues a mint grant. The grant id in the response is the
// capability secret and is never returned again.
func (h *Handler) HandleIssueGrant(w http.ResponseWriter, r *http.Request) {
	caller, err := requireCaller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req issueGrantRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: string(apperrors.CodeUnknown), Message: err.Error()})
		return
	}

	g, err := h.service.IssueGrant(r.Context(), caller, req.PublisherKey, req.Recipient)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, grantResponse{
		ID:        g.ID,
		Recipient: g.Recipient,
		IssuedBy:  g.IssuedBy,
		CreatedAt: g.CreatedAt,
	})
}

type registryResponse struct {
	HeroesMinted   uint64 `json:"heroes_minted"`
	WeaponsCreated uint64 `json:"weapons_created"`
}

// HandleRegistry returns the mint counter snapshot.
func (h *Handler) HandleRegistry(w http.ResponseWriter, r *http.Request) {
	totals, err := h.service.RegistryTotals(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, registryResponse{
		HeroesMinted:   totals.HeroesMinted,
		WeaponsCreated: totals.WeaponsCreated,
	})
}

type ledgerEventResponse struct {
	Seq         uint64    `json:"seq"`
	Type        string    `json:"type"`
	HeroID      string    `json:"hero_id,omitempty"`
	WeaponID    string    `json:"weapon_id,omitempty"`
	Name        string    `json:"name,omitempty"`
	Description string    `json:"description,omitempty"`
	ImageRef    string    `json:"image_ref,omitempty"`
	Power       uint8     `json:"power,omitempty"`
	Recipient   string    `json:"recipient,omitempty"`
	MintedBy    string    `json:"minted_by,omitempty"`
	Creator     string    `json:"creator,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type ledgerListResponse struct {
	Events        []ledgerEventResponse `json:"events"`
	NextPageToken string                `json:"next_page_token,omitempty"`
}

// HandleListEvents returns a filtered page of the mutation feed.
func (h *Handler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListLedgerEvents(r.Context(), listQueryFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := ledgerListResponse{Events: make([]ledgerEventResponse, 0, len(page.Events)), NextPageToken: page.NextPageToken}
	for _, evt := range page.Events {
		resp.Events = append(resp.Events, ledgerEventResponse{
			Seq:         evt.Seq,
			Type:        string(evt.Type),
			HeroID:      evt.HeroID,
			WeaponID:    evt.WeaponID,
			Name:        evt.Name,
			Description: evt.Description,
			ImageRef:    evt.ImageRef,
			Power:       evt.Power,
			Recipient:   evt.Recipient,
			MintedBy:    evt.MintedBy,
			Creator:     evt.Creator,
			Timestamp:   evt.Timestamp,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleHealth reports service liveness.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
