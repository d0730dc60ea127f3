// ABOUTME: Field document CRUD on Charm KV
// ABOUTME: Implements storage.Repository with one JSON document per key

package charm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/charmbracelet/charm/kv"
	"github.com/google/uuid"
	"github.com/harper/cropfit/internal/models"
	"github.com/harper/cropfit/internal/storage"
)

// Compile-time check that Client implements storage.Repository.
var _ storage.Repository = (*Client)(nil)

func userPrefix(userID string) []byte {
	return []byte(FieldPrefix + url.QueryEscape(userID) + ":")
}

func fieldKey(userID, id string) []byte {
	return append(userPrefix(userID), id...)
}

// CreateField writes a new document with a generated id.
func (c *Client) CreateField(ctx context.Context, userID, name string, center models.Coordinate, boundary []models.Coordinate) (*models.Field, error) {
	if err := storage.RequireUser(userID); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := storage.NewDocument(name, center, boundary)
	id := uuid.NewString()
	if err := c.put(userID, id, doc); err != nil {
		return nil, fmt.Errorf("create field: %w", err)
	}
	return doc.Field(id), nil
}

// ImportField writes a record keeping its id, timestamp and favourite flag.
func (c *Client) ImportField(ctx context.Context, userID string, field *models.Field) error {
	if err := storage.RequireUser(userID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	id := field.ID
	if id == "" {
		id = uuid.NewString()
	}
	if err := c.put(userID, id, storage.DocumentFromField(field)); err != nil {
		return fmt.Errorf("import field: %w", err)
	}
	return nil
}

func (c *Client) put(userID, id string, doc storage.Document) error {
	body, err := doc.Encode()
	if err != nil {
		return err
	}
	return c.Do(func(k *kv.KV) error {
		return k.Set(fieldKey(userID, id), body)
	})
}

// GetField retrieves one field by id.
func (c *Client) GetField(ctx context.Context, userID, id string) (*models.Field, error) {
	if err := storage.RequireUser(userID); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var body []byte
	err := c.DoReadOnly(func(k *kv.KV) error {
		var err error
		body, err = k.Get(fieldKey(userID, id))
		return err
	})
	if errors.Is(err, kv.ErrMissingKey) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get field: %w", err)
	}

	field, _ := storage.DecodeDocument(id, body)
	return field, nil
}

// ListFields returns every field of the user, oldest first.
// Uses a single read-only connection for all reads.
func (c *Client) ListFields(ctx context.Context, userID string) ([]*models.Field, error) {
	if err := storage.RequireUser(userID); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := userPrefix(userID)
	docs := map[string][]byte{}
	err := c.DoReadOnly(func(k *kv.KV) error {
		keys, err := k.Keys()
		if err != nil {
			return err
		}
		for _, key := range keys {
			if !bytes.HasPrefix(key, prefix) {
				continue
			}
			body, err := k.Get(key)
			if err != nil {
				continue // Skip keys that vanished between Keys and Get
			}
			docs[string(bytes.TrimPrefix(key, prefix))] = body
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}

	return storage.DecodeFields(docs), nil
}

// UpdateFavorite overwrites only the favourite key of the document.
func (c *Client) UpdateFavorite(ctx context.Context, userID, id string, favorite bool) error {
	if err := storage.RequireUser(userID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	key := fieldKey(userID, id)
	err := c.Do(func(k *kv.KV) error {
		body, err := k.Get(key)
		if err != nil {
			return err
		}
		patched, err := storage.PatchFavourite(body, favorite)
		if err != nil {
			return err
		}
		return k.Set(key, patched)
	})
	if errors.Is(err, kv.ErrMissingKey) {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update favourite: %w", err)
	}
	return nil
}

// DeleteField removes one document.
func (c *Client) DeleteField(ctx context.Context, userID, id string) error {
	if err := storage.RequireUser(userID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	key := fieldKey(userID, id)
	err := c.Do(func(k *kv.KV) error {
		if _, err := k.Get(key); err != nil {
			return err
		}
		return k.Delete(key)
	})
	if errors.Is(err, kv.ErrMissingKey) {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete field: %w", err)
	}
	return nil
}

// Reset deletes every document of the user. Other users' documents and
// the rest of the database are left alone.
func (c *Client) Reset(ctx context.Context, userID string) error {
	if err := storage.RequireUser(userID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	prefix := userPrefix(userID)
	return c.Do(func(k *kv.KV) error {
		keys, err := k.Keys()
		if err != nil {
			return err
		}
		for _, key := range keys {
			if !bytes.HasPrefix(key, prefix) {
				continue
			}
			if err := k.Delete(key); err != nil {
				return fmt.Errorf("delete %s: %w", key, err)
			}
		}
		return nil
	})
}
