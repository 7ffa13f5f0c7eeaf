// Package storage provides the object-store boundary used for template
// assets, fonts, canvas settings documents, user inputs, and render outputs.
package storage

import (
	"context"
	"errors"
)

// ErrObjectNotFound is returned when a key does not exist in the store.
var ErrObjectNotFound = errors.New("storage: object not found")

// ObjectStore is the blob-storage contract. Keys are slash-separated paths;
// see keys.go for the layout.
type ObjectStore interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]string, error)
	DeletePrefix(ctx context.Context, prefix string) error
}
