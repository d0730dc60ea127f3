// ABOUTME: Badger storage implementation for field documents
// ABOUTME: Embedded key/value store with one JSON document per key

package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
	"github.com/harper/cropfit/internal/models"
)

// badgerKeyPrefix namespaces field documents in the key space.
const badgerKeyPrefix = "field/"

// BadgerStore implements Repository on top of an embedded Badger database.
// Keys are field/<escaped user id>/<field id>.
type BadgerStore struct {
	db   *badger.DB
	path string
}

// Compile-time check that BadgerStore implements Repository.
var _ Repository = (*BadgerStore)(nil)

// NewBadgerStore opens (or creates) a Badger database in dir.
func NewBadgerStore(dir string) (*BadgerStore, error) {
	if err := os.MkdirAll(dir, 0750); err != nil { //nolint:gosec // 0750 is appropriate for user data directory
		return nil, fmt.Errorf("create directory: %w", err)
	}
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db, path: dir}, nil
}

// NewInMemoryBadgerStore opens a Badger database that lives only in memory.
func NewInMemoryBadgerStore() (*BadgerStore, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func badgerUserPrefix(userID string) []byte {
	return []byte(badgerKeyPrefix + url.PathEscape(userID) + "/")
}

func badgerKey(userID, id string) []byte {
	return append(badgerUserPrefix(userID), id...)
}

// Close closes the database.
func (b *BadgerStore) Close() error {
	return b.db.Close()
}

// Sync flushes pending writes to disk.
func (b *BadgerStore) Sync() error {
	return b.db.Sync()
}

// Reset deletes every document of the user.
func (b *BadgerStore) Reset(ctx context.Context, userID string) error {
	if err := RequireUser(userID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.DropPrefix(badgerUserPrefix(userID))
}

// CreateField writes a new document with a generated id.
func (b *BadgerStore) CreateField(ctx context.Context, userID, name string, center models.Coordinate, boundary []models.Coordinate) (*models.Field, error) {
	if err := RequireUser(userID); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := NewDocument(name, center, boundary)
	id := uuid.NewString()
	if err := b.put(userID, id, doc); err != nil {
		return nil, fmt.Errorf("create field: %w", err)
	}
	return doc.Field(id), nil
}

// ImportField writes a record keeping its id, timestamp and favourite flag.
func (b *BadgerStore) ImportField(ctx context.Context, userID string, field *models.Field) error {
	if err := RequireUser(userID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	id := field.ID
	if id == "" {
		id = uuid.NewString()
	}
	if err := b.put(userID, id, DocumentFromField(field)); err != nil {
		return fmt.Errorf("import field: %w", err)
	}
	return nil
}

func (b *BadgerStore) put(userID, id string, doc Document) error {
	body, err := doc.Encode()
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(userID, id), body)
	})
}

// GetField retrieves one field by id.
func (b *BadgerStore) GetField(ctx context.Context, userID, id string) (*models.Field, error) {
	if err := RequireUser(userID); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var body []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(userID, id))
		if err != nil {
			return err
		}
		body, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get field: %w", err)
	}

	field, _ := DecodeDocument(id, body)
	return field, nil
}

// ListFields returns every field of the user, oldest first.
func (b *BadgerStore) ListFields(ctx context.Context, userID string) ([]*models.Field, error) {
	if err := RequireUser(userID); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := badgerUserPrefix(userID)
	docs := map[string][]byte{}
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			body, err := item.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("read %s: %w", item.Key(), err)
			}
			id := strings.TrimPrefix(string(item.Key()), string(prefix))
			docs[id] = body
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}

	return DecodeFields(docs), nil
}

// UpdateFavorite overwrites only the favourite key of the document.
func (b *BadgerStore) UpdateFavorite(ctx context.Context, userID, id string, favorite bool) error {
	if err := RequireUser(userID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	key := badgerKey(userID, id)
	err := b.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		body, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		patched, err := PatchFavourite(body, favorite)
		if err != nil {
			return err
		}
		return txn.Set(key, patched)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update favourite: %w", err)
	}
	return nil
}

// DeleteField removes one document.
func (b *BadgerStore) DeleteField(ctx context.Context, userID, id string) error {
	if err := RequireUser(userID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	key := badgerKey(userID, id)
	err := b.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete field: %w", err)
	}
	return nil
}
