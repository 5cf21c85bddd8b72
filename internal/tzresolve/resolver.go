// Package tzresolve resolves a stable IANA timezone for an account.
package tzresolve

import (
	"context"
	"strings"
	"sync"
	"time"

	logx "todohook/pkg/logx"
)

// Source looks up an account's stored timezone preference.
// An empty string means "no preference".
type Source interface {
	AccountTimezone(ctx context.Context, accountID string) (string, error)
}

type SourceFunc func(ctx context.Context, accountID string) (string, error)

func (f SourceFunc) AccountTimezone(ctx context.Context, accountID string) (string, error) {
	return f(ctx, accountID)
}

// Resolver resolves accounts to valid zone identifiers.
//
// A Resolver is scoped to one event batch: results are cached for its
// lifetime and the whole object is discarded afterwards. Durable storage
// of preferences is the account store's job, not this cache's.
type Resolver struct {
	src Source
	def string
	log logx.Logger

	mu    sync.Mutex
	cache map[string]entry
}

type entry struct {
	zone string
	loc  *time.Location
}

// DefaultZone is used when no default is configured.
const DefaultZone = "Asia/Jerusalem"

func New(src Source, defaultZone string, log logx.Logger) *Resolver {
	def := strings.TrimSpace(defaultZone)
	if def == "" {
		def = DefaultZone
	}
	if _, err := time.LoadLocation(def); err != nil {
		// A broken configured default must not break resolution.
		def = "UTC"
	}
	return &Resolver{src: src, def: def, log: log, cache: map[string]entry{}}
}

// Resolve returns a valid IANA zone id for the account.
//
// Order: batch cache, stored preference (when present and recognized),
// configured default. Source failures fall back to the default rather than
// failing the operation.
func (r *Resolver) Resolve(ctx context.Context, accountID string) string {
	zone, _ := r.Location(ctx, accountID)
	return zone
}

// Location is Resolve plus the loaded *time.Location.
func (r *Resolver) Location(ctx context.Context, accountID string) (string, *time.Location) {
	r.mu.Lock()
	if e, ok := r.cache[accountID]; ok {
		r.mu.Unlock()
		return e.zone, e.loc
	}
	r.mu.Unlock()

	zone, loc := r.lookup(ctx, accountID)

	r.mu.Lock()
	r.cache[accountID] = entry{zone: zone, loc: loc}
	r.mu.Unlock()
	return zone, loc
}

func (r *Resolver) lookup(ctx context.Context, accountID string) (string, *time.Location) {
	if r.src != nil {
		pref, err := r.src.AccountTimezone(ctx, accountID)
		if err != nil {
			if !r.log.IsZero() {
				r.log.Warn("timezone lookup failed; using default",
					logx.String("account", accountID), logx.Err(err), logx.String("zone", r.def))
			}
			return r.defLocation()
		}
		pref = strings.TrimSpace(pref)
		if pref != "" {
			if loc, err := time.LoadLocation(pref); err == nil {
				return pref, loc
			}
			if !r.log.IsZero() {
				r.log.Warn("stored timezone not recognized; using default",
					logx.String("account", accountID), logx.String("zone", pref))
			}
		}
	}
	return r.defLocation()
}

func (r *Resolver) defLocation() (string, *time.Location) {
	loc, err := time.LoadLocation(r.def)
	if err != nil {
		return "UTC", time.UTC
	}
	return r.def, loc
}
