// Package credentials persists the session's durable state (tokens and the
// serialized profile) in a local SQLite key-value table, so a login survives
// process restarts.
package credentials

import "context"

// Storage keys. KeyAccess is the current token key; KeyLegacyToken is kept
// readable and cleared for compatibility with state written by older builds.
const (
	KeyAccess      = "access"
	KeyLegacyToken = "token"
	KeyUser        = "user"
	KeyRefresh     = "refresh"
)

// Repository is the durable key-value store behind the session.
//
// Get returns (nil, nil) when the key is absent; Delete and Clear are
// idempotent.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
