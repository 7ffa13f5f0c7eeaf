package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// ReadJSON fetches an object and decodes it into out.
func ReadJSON(ctx context.Context, store ObjectStore, key string, out any) error {
	data, err := store.Read(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("storage: decode %s: %w", key, err)
	}
	return nil
}

// WriteJSON marshals v with indentation and stores it at key. Indented output
// keeps settings documents hand-editable by template authors.
func WriteJSON(ctx context.Context, store ObjectStore, key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", key, err)
	}
	if _, err := store.Write(ctx, key, data); err != nil {
		return err
	}
	return nil
}
