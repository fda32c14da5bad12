package storage

import (
	"context"
	"errors"
	"time"

	"tubetrack/internal/domain"
)

// Store key spaces, shared by every backend.
const (
	CollectionsKind = "videoCollections"
	MonthsKind      = "trainingMonths"
)

var (
	// ErrNotFound is returned when a referenced document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrExists is returned when creating a document whose key is taken.
	ErrExists = errors.New("document already exists")

	// ErrNoChange may be returned by an update callback to end the
	// transaction without writing anything. Update then returns nil.
	ErrNoChange = errors.New("no change")
)

// NotFoundError names the missing document. It matches ErrNotFound.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string { return e.Kind + "/" + e.ID + ": " + ErrNotFound.Error() }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func notFound(kind, id string) error { return &NotFoundError{Kind: kind, ID: id} }

// CollectionStore persists video collections.
type CollectionStore interface {
	// ListCollections returns every collection in key order.
	ListCollections(ctx context.Context) ([]domain.Collection, error)

	// GetCollection returns one collection or ErrNotFound.
	GetCollection(ctx context.Context, id string) (domain.Collection, error)

	// CreateCollection stores a new collection, failing with ErrExists.
	CreateCollection(ctx context.Context, c domain.Collection) error

	// AppendLink adds link to the end of the collection's links without
	// reading the list first, and stamps updatedAt.
	AppendLink(ctx context.Context, collectionID string, link domain.Link, at time.Time) error

	// UpdateCollections loads the collections with the given ids, calls fn
	// with them in the same order and writes them back, all in one
	// transaction. A missing id fails with ErrNotFound before fn runs.
	// fn may be called more than once when the transaction is retried.
	UpdateCollections(ctx context.Context, ids []string, fn func(cols []*domain.Collection) error) error
}

// MonthStore persists training months.
type MonthStore interface {
	ListMonths(ctx context.Context) ([]domain.Month, error)
	GetMonth(ctx context.Context, id string) (domain.Month, error)

	// PutMonth creates or replaces a month.
	PutMonth(ctx context.Context, m domain.Month) error

	// UpdateMonth is the single-document counterpart of UpdateCollections.
	UpdateMonth(ctx context.Context, id string, fn func(m *domain.Month) error) error
}

// Repository defines the interface for data storage operations.
// This allows us to swap storage implementations (BadgerDB, Firestore)
// without changing the operations that use it.
type Repository interface {
	CollectionStore
	MonthStore

	// Close gracefully shuts down the repository connection.
	Close() error
}
