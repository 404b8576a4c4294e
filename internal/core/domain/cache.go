package domain

import "time"

// CacheEntry maps a provisioning fingerprint to a previously materialized
// environment set. The payload is opaque to the store; the provisioner owns
// its encoding. Entries are written once per unique fingerprint and read many
// times; concurrent writers for the same fingerprint produce identical
// payloads, so last-writer-wins is safe.
type CacheEntry struct {
	Key       string    `json:"key,omitzero"`
	Payload   []byte    `json:"payload,omitzero"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}
