// Package store persists small control-plane values (boot attempt counts,
// safe mode flags) across process restarts and power loss.
package store

// Store is a namespaced key/value store for controller state. Get methods
// return the provided default when the key is absent or unreadable: the
// controller must keep running on a broken store, it just loses crash-loop
// protection.
type Store interface {
	GetInt(key string, def int64) int64
	PutInt(key string, value int64) error
	GetBool(key string, def bool) bool
	PutBool(key string, value bool) error
	Close() error
}

// Well-known keys.
const (
	KeyBootAttempts = "boot_attempts"
	KeySafeMode     = "safe_mode"
)
