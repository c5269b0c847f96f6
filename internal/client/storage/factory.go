package storage

import (
	"context"

	"github.com/lingopal/lingopal-client/internal/dbx"
	"github.com/lingopal/lingopal-client/internal/logging"
)

// Set bundles the backend chosen for each slot group. Callers receive a Set
// from NewSet and must not assume which concrete implementation is behind
// each field.
type Set struct {
	// Access and Refresh hold the token slots; they may be two distinct
	// secure namespaces or, on platforms without a usable secure store,
	// namespaced slots of the general backend.
	Access  Backend
	Refresh Backend
	// General holds boot flags and other non-sensitive state.
	General Backend
}

// NewSet selects backends at process start. The secure (sealed-file) store
// is preferred for token slots; when the platform cannot host one (e.g. the
// data directory is read-only) the token slots transparently fall back to
// namespaced slots in the settings database, mirroring the long-lived
// cookie storage used in browser contexts.
func NewSet(ctx context.Context, dataDir string, db dbx.DBTX, log logging.Logger) *Set {
	general := NewSQLiteBackend(db)

	access, err := NewSecureBackend(dataDir, ServiceAccess)
	if err != nil {
		log.Warn(ctx, "secure store unavailable, falling back to settings db", "err", err)
		return &Set{
			Access:  NewNamespaced(general, ServiceAccess),
			Refresh: NewNamespaced(general, ServiceRefresh),
			General: general,
		}
	}

	refresh, err := NewSecureBackend(dataDir, ServiceRefresh)
	if err != nil {
		log.Warn(ctx, "secure store unavailable, falling back to settings db", "err", err)
		return &Set{
			Access:  NewNamespaced(general, ServiceAccess),
			Refresh: NewNamespaced(general, ServiceRefresh),
			General: general,
		}
	}

	return &Set{Access: access, Refresh: refresh, General: general}
}

// Namespaced prefixes every key with a service identifier, letting one
// underlying backend host several isolated slot groups.
type Namespaced struct {
	inner   Backend
	service string
}

func NewNamespaced(inner Backend, service string) *Namespaced {
	return &Namespaced{inner: inner, service: service}
}

func (n *Namespaced) key(key string) string { return n.service + "." + key }

func (n *Namespaced) Set(ctx context.Context, key, value string) error {
	return n.inner.Set(ctx, n.key(key), value)
}

func (n *Namespaced) Get(ctx context.Context, key string) (string, error) {
	return n.inner.Get(ctx, n.key(key))
}

func (n *Namespaced) Remove(ctx context.Context, key string) error {
	return n.inner.Remove(ctx, n.key(key))
}
