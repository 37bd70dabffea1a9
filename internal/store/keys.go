package store

import "sync"

// Key prefixes.
//
//	profile:{profileID}:{key}  raw session value (key is one of session.Keys)
//	meta:{name}                store bookkeeping
const (
	profilePrefix = "profile:"
	metaPrefix    = "meta:"
)

// keyPool provides reusable byte slices for building database keys.
var keyPool = sync.Pool{
	New: func() any {
		// "profile:" + uuid + ":" + "secretshows_bookings" fits comfortably.
		return make([]byte, 0, 128)
	},
}

// buildKey constructs a database key from prefix and suffix using a pooled buffer.
// The returned slice is valid until releaseKey is called.
// Callers MUST call releaseKey when done with the key.
//
// Usage:
//
//	key := buildKey(prefix, session.KeyUser)
//	defer releaseKey(key)
//	item, err := txn.Get(key)
func buildKey(prefix, suffix string) []byte {
	buf, _ := keyPool.Get().([]byte)
	buf = buf[:0] // Reset length, keep capacity
	buf = append(buf, prefix...)
	buf = append(buf, suffix...)
	return buf
}

// releaseKey returns a key buffer to the pool for reuse.
// After calling this, the key slice must not be used.
func releaseKey(key []byte) {
	// Only pool buffers that have reasonable capacity
	if cap(key) <= 512 {
		keyPool.Put(key[:0])
	}
}
