// Package registry provides the shared mint statistics counters.
package registry

import "sync"

// Totals is a point-in-time snapshot of the registry counters.
type Totals struct {
	HeroesMinted   uint64
	WeaponsCreated uint64
}

// Registry tracks global mint statistics shared by every creation operation.
// Counters only ever move forward: each successful mint or creation adds
// exactly one, and no operation decrements or resets them.
type Registry struct {
	mu     sync.Mutex
	totals Totals
}

// New returns a registry with both counters at zero.
func New() *Registry {
	return &Registry{}
}

// RecordHeroMinted increments the hero counter and returns the new total.
func (r *Registry) RecordHeroMinted() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.totals.HeroesMinted++
	return r.totals.HeroesMinted
}

// RecordWeaponCreated increments the weapon counter and returns the new total.
func (r *Registry) RecordWeaponCreated() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.totals.WeaponsCreated++
	return r.totals.WeaponsCreated
}

// Totals returns a snapshot of both counters.
func (r *Registry) Totals() Totals {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.totals
}
