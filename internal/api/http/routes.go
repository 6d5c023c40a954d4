package httpapi

import "net/http"

// RegisterRoutes wires the armory API routes into the provided mux.
func RegisterRoutes(mux *http.ServeMux, handler *Handler) {
	if mux == nil || handler == nil {
		return
	}
	mux.HandleFunc("GET /healthz", handler.HandleHealth)

	mux.HandleFunc("POST /v1/heroes", handler.HandleMintHero)
	mux.HandleFunc("POST /v1/heroes:adminMint", handler.HandleAdminMintHero)
	mux.HandleFunc("GET /v1/heroes", handler.HandleListHeroes)
	mux.HandleFunc("GET /v1/heroes/{id}", handler.HandleGetHero)
	mux.HandleFunc("POST /v1/heroes/{id}/equip", handler.HandleEquip)
	mux.HandleFunc("POST /v1/heroes/{id}/unequip", handler.HandleUnequip)

	mux.HandleFunc("POST /v1/weapons", handler.HandleCreateWeapon)
	mux.HandleFunc("GET /v1/weapons", handler.HandleListWeapons)
	mux.HandleFunc("GET /v1/weapons/{id}", handler.HandleGetWeapon)

	mux.HandleFunc("POST /v1/grants", handler.HandleIssueGrant)
	mux.HandleFunc("GET /v1/registry", handler.HandleRegistry)
	mux.HandleFunc("GET /v1/events", handler.HandleListEvents)
}
