package store

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"collectionbuilder/querybuilder/pkg/config"
	"collectionbuilder/querybuilder/pkg/query/codec"

	bolt "go.etcd.io/bbolt"
)

// Keys inside each query's bucket.
var (
	boltKeyFormat    = []byte("format")
	boltKeyDocument  = []byte("document")
	boltKeyUpdatedAt = []byte("updated_at")
)

// BoltBackend stores documents in a BoltDB file. Each query is a nested
// bucket under the configured top-level bucket holding its format, document
// and update time.
type BoltBackend struct {
	bucket []byte
	db     *bolt.DB
	logger *slog.Logger
}

// NewBoltBackend opens (or creates) the database file and its bucket.
func NewBoltBackend(cfg config.BoltStorageConfig) (*BoltBackend, error) {
	if cfg.Path == "" {
		return nil, NewStorageError("bolt", "open", "", errors.New("db path cannot be empty"))
	}
	if cfg.Bucket == "" {
		cfg.Bucket = config.DefaultBoltBucket
	}
	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, NewStorageError("bolt", "open", "", err)
		}
	}

	db, err := bolt.Open(cfg.Path, 0o600, &bolt.Options{Timeout: cfg.OpenTimeout})
	if err != nil {
		return nil, NewStorageError("bolt", "open", "", err)
	}

	bucketKey := []byte(cfg.Bucket)
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketKey)
		return err
	})
	if err != nil {
		db.Close()
		return nil, NewStorageError("bolt", "create_bucket", "", err)
	}

	logger := slog.Default().With("component", "store.bolt")
	logger.Info("BoltDB storage initialized", "path", cfg.Path, "bucket", cfg.Bucket)

	return &BoltBackend{
		bucket: bucketKey,
		db:     db,
		logger: logger,
	}, nil
}

// Name implements Backend.
func (b *BoltBackend) Name() string {
	return "bolt"
}

// Get implements Backend.
func (b *BoltBackend) Get(ctx context.Context, name string) (Record, error) {
	rec := Record{Name: name}
	found := false

	err := b.db.View(func(tx *bolt.Tx) error {
		qb := tx.Bucket(b.bucket).Bucket([]byte(name))
		if qb == nil {
			return nil
		}
		found = true

		// Allow the bytes to live outside the transaction by copy
		rec.Format = codec.Format(qb.Get(boltKeyFormat))
		rec.Document = append([]byte(nil), qb.Get(boltKeyDocument)...)
		return rec.UpdatedAt.UnmarshalText(qb.Get(boltKeyUpdatedAt))
	})
	if err != nil {
		return Record{}, NewStorageError(b.Name(), "get", name, err)
	}
	if !found {
		return Record{}, notFound(b.Name(), "get", name)
	}
	return rec, nil
}

// Put implements Backend.
func (b *BoltBackend) Put(ctx context.Context, rec Record) error {
	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	stamp, err := updatedAt.MarshalText()
	if err != nil {
		return NewStorageError(b.Name(), "put", rec.Name, err)
	}

	err = b.db.Update(func(tx *bolt.Tx) error {
		qb, err := tx.Bucket(b.bucket).CreateBucketIfNotExists([]byte(rec.Name))
		if err != nil {
			return err
		}
		if err := qb.Put(boltKeyFormat, []byte(rec.Format)); err != nil {
			return err
		}
		if err := qb.Put(boltKeyDocument, rec.Document); err != nil {
			return err
		}
		return qb.Put(boltKeyUpdatedAt, stamp)
	})
	if err != nil {
		return NewStorageError(b.Name(), "put", rec.Name, err)
	}
	return nil
}

// Delete implements Backend.
func (b *BoltBackend) Delete(ctx context.Context, name string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(b.bucket).DeleteBucket([]byte(name))
	})
	if errors.Is(err, bolt.ErrBucketNotFound) {
		return notFound(b.Name(), "delete", name)
	}
	if err != nil {
		return NewStorageError(b.Name(), "delete", name, err)
	}
	return nil
}

// List implements Backend. Keys are iterated in byte order, which is name order.
func (b *BoltBackend) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry

	err := b.db.View(func(tx *bolt.Tx) error {
		parent := tx.Bucket(b.bucket)
		return parent.ForEach(func(k, v []byte) error {
			// Nested buckets have nil values
			if v != nil {
				return nil
			}
			entry := Entry{Name: string(k)}
			if stamp := parent.Bucket(k).Get(boltKeyUpdatedAt); stamp != nil {
				if err := entry.UpdatedAt.UnmarshalText(stamp); err != nil {
					return err
				}
			}
			entries = append(entries, entry)
			return nil
		})
	})
	if err != nil {
		return nil, NewStorageError(b.Name(), "list", "", err)
	}
	return entries, nil
}

// Close implements Backend.
func (b *BoltBackend) Close() error {
	return b.db.Close()
}
