// Package metadata stores small key/value records in the local client
// database. The session token lives here under a fixed key.
package metadata

import (
	"context"
)

// Repository is a byte-valued key/value store.
//
// Get returns (nil, nil) when the key is absent.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
