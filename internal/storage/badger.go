package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
	"github.com/sirupsen/logrus"

	"tubetrack/internal/domain"
)

// maxTxnAttempts bounds retries of a transaction that lost an optimistic
// concurrency conflict.
const maxTxnAttempts = 5

// BadgerRepository implements the Repository interface using BadgerDB.
// Documents are stored as JSON under "<kind>/<id>" keys.
type BadgerRepository struct {
	db  *badger.DB
	log logrus.FieldLogger
}

// NewBadgerRepository creates and initializes a new BadgerDB repository.
// It opens the database at the specified path.
func NewBadgerRepository(dbPath string, logger logrus.FieldLogger) (*BadgerRepository, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = &badgerLogger{logger.WithField("component", "badgerdb")}

	db, err := badger.Open(opts)
	if err != nil {
		logger.WithError(err).Error("Failed to open BadgerDB")
		return nil, fmt.Errorf("failed to open badger db at %s: %w", dbPath, err)
	}
	logger.WithField("path", dbPath).Info("BadgerDB opened")

	return &BadgerRepository{
		db:  db,
		log: logger.WithField("component", "repository"),
	}, nil
}

// Close closes the BadgerDB database connection.
func (r *BadgerRepository) Close() error {
	r.log.Info("Closing BadgerDB...")
	if err := r.db.Close(); err != nil {
		r.log.WithError(err).Error("Error closing BadgerDB")
		return err
	}
	r.log.Info("BadgerDB closed.")
	return nil
}

func docKey(kind, id string) []byte {
	return []byte(kind + "/" + id)
}

func kindPrefix(kind string) []byte {
	return []byte(kind + "/")
}

// update runs fn in a read-write transaction, retrying when another
// transaction committed a conflicting write first.
func (r *BadgerRepository) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := r.db.Update(fn)
		switch {
		case err == nil:
			return struct{}{}, nil
		case errors.Is(err, badger.ErrConflict):
			r.log.Debug("Transaction conflict, retrying")
			return struct{}{}, err
		default:
			return struct{}{}, backoff.Permanent(err)
		}
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(maxTxnAttempts))
	if errors.Is(err, ErrNoChange) {
		return nil
	}
	return err
}

func getDoc(txn *badger.Txn, kind, id string, v any) error {
	item, err := txn.Get(docKey(kind, id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return notFound(kind, id)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s/%s: %w", kind, id, err)
	}
	return item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, v); err != nil {
			return fmt.Errorf("failed to unmarshal %s/%s: %w", kind, id, err)
		}
		return nil
	})
}

func setDoc(txn *badger.Txn, kind, id string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s/%s: %w", kind, id, err)
	}
	return txn.SetEntry(badger.NewEntry(docKey(kind, id), b))
}

// scan decodes every document of kind, in key order.
func scan[T any](db *badger.DB, kind string) ([]T, error) {
	var docs []T
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := kindPrefix(kind)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var doc T
				if err := json.Unmarshal(val, &doc); err != nil {
					return fmt.Errorf("failed to unmarshal %s: %w", string(item.Key()), err)
				}
				docs = append(docs, doc)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return docs, err
}

// ListCollections returns every collection in key order.
func (r *BadgerRepository) ListCollections(_ context.Context) ([]domain.Collection, error) {
	cols, err := scan[domain.Collection](r.db, CollectionsKind)
	if err != nil {
		r.log.WithError(err).Error("Failed to list collections")
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return cols, nil
}

// GetCollection returns one collection or ErrNotFound.
func (r *BadgerRepository) GetCollection(_ context.Context, id string) (domain.Collection, error) {
	var c domain.Collection
	err := r.db.View(func(txn *badger.Txn) error {
		return getDoc(txn, CollectionsKind, id, &c)
	})
	if err != nil {
		return domain.Collection{}, err
	}
	c.ID = id
	return c, nil
}

// CreateCollection stores a new collection, failing with ErrExists.
func (r *BadgerRepository) CreateCollection(ctx context.Context, c domain.Collection) error {
	log := r.log.WithField("collection_id", c.ID)
	err := r.update(ctx, func(txn *badger.Txn) error {
		_, err := txn.Get(docKey(CollectionsKind, c.ID))
		if err == nil {
			return fmt.Errorf("%s/%s: %w", CollectionsKind, c.ID, ErrExists)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return setDoc(txn, CollectionsKind, c.ID, c)
	})
	if err != nil {
		return err
	}
	log.Info("Collection created")
	return nil
}

// AppendLink adds link to the end of the collection's links. Badger has no
// server-side array union, so this is a short transaction of its own.
func (r *BadgerRepository) AppendLink(ctx context.Context, collectionID string, link domain.Link, at time.Time) error {
	return r.update(ctx, func(txn *badger.Txn) error {
		var c domain.Collection
		if err := getDoc(txn, CollectionsKind, collectionID, &c); err != nil {
			return err
		}
		c.ID = collectionID
		c.Links = append(c.Links, link)
		c.UpdatedAt = at
		return setDoc(txn, CollectionsKind, collectionID, c)
	})
}

// UpdateCollections loads, transforms and writes several collections in a
// single transaction.
func (r *BadgerRepository) UpdateCollections(ctx context.Context, ids []string, fn func(cols []*domain.Collection) error) error {
	return r.update(ctx, func(txn *badger.Txn) error {
		cols := make([]*domain.Collection, len(ids))
		for i, id := range ids {
			c := &domain.Collection{}
			if err := getDoc(txn, CollectionsKind, id, c); err != nil {
				return err
			}
			c.ID = id
			cols[i] = c
		}
		if err := fn(cols); err != nil {
			return err
		}
		for _, c := range cols {
			if err := setDoc(txn, CollectionsKind, c.ID, c); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListMonths returns every month in key order.
func (r *BadgerRepository) ListMonths(_ context.Context) ([]domain.Month, error) {
	months, err := scan[domain.Month](r.db, MonthsKind)
	if err != nil {
		r.log.WithError(err).Error("Failed to list months")
		return nil, fmt.Errorf("failed to list months: %w", err)
	}
	return months, nil
}

// GetMonth returns one month or ErrNotFound.
func (r *BadgerRepository) GetMonth(_ context.Context, id string) (domain.Month, error) {
	var m domain.Month
	err := r.db.View(func(txn *badger.Txn) error {
		return getDoc(txn, MonthsKind, id, &m)
	})
	if err != nil {
		return domain.Month{}, err
	}
	m.ID = id
	return m, nil
}

// PutMonth creates or replaces a month.
func (r *BadgerRepository) PutMonth(ctx context.Context, m domain.Month) error {
	return r.update(ctx, func(txn *badger.Txn) error {
		return setDoc(txn, MonthsKind, m.ID, m)
	})
}

// UpdateMonth loads, transforms and writes one month in a transaction.
func (r *BadgerRepository) UpdateMonth(ctx context.Context, id string, fn func(m *domain.Month) error) error {
	return r.update(ctx, func(txn *badger.Txn) error {
		m := &domain.Month{}
		if err := getDoc(txn, MonthsKind, id, m); err != nil {
			return err
		}
		m.ID = id
		if err := fn(m); err != nil {
			return err
		}
		return setDoc(txn, MonthsKind, id, m)
	})
}

// Backup writes a zstd-compressed full backup of the database to w.
func (r *BadgerRepository) Backup(w io.Writer) error {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	version, err := r.db.Backup(enc, 0)
	if err != nil {
		_ = enc.Close()
		return fmt.Errorf("failed to back up badger db: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to flush backup: %w", err)
	}
	r.log.WithField("version", version).Info("Backup written")
	return nil
}

// Restore loads a backup produced by Backup into the database.
func (r *BadgerRepository) Restore(rd io.Reader) error {
	dec, err := zstd.NewReader(rd)
	if err != nil {
		return fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer dec.Close()
	if err := r.db.Load(dec, 256); err != nil {
		return fmt.Errorf("failed to restore badger db: %w", err)
	}
	r.log.Info("Backup restored")
	return nil
}

// badgerLogger adapts logrus.FieldLogger to Badger's logger interface.
type badgerLogger struct {
	logger logrus.FieldLogger
}

func (l *badgerLogger) Errorf(f string, v ...interface{}) {
	l.logger.Errorf(f, v...)
}
func (l *badgerLogger) Warningf(f string, v ...interface{}) {
	l.logger.Warningf(f, v...)
}
func (l *badgerLogger) Infof(f string, v ...interface{}) {
	l.logger.Infof(f, v...)
}
func (l *badgerLogger) Debugf(f string, v ...interface{}) {
	l.logger.Debugf(f, v...)
}
