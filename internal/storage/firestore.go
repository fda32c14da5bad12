package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"tubetrack/internal/domain"
)

// FirestoreRepository implements the Repository interface on Cloud Firestore.
// Read-modify-write updates run in Firestore transactions, which retry on
// contention by themselves.
type FirestoreRepository struct {
	client *firestore.Client
	log    logrus.FieldLogger
}

// NewFirestoreRepository connects to Firestore in the given project. The
// FIRESTORE_EMULATOR_HOST environment variable is honoured by the client.
func NewFirestoreRepository(ctx context.Context, projectID string, logger logrus.FieldLogger) (*FirestoreRepository, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		logger.WithError(err).Error("Failed to create Firestore client")
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	logger.WithField("project", projectID).Info("Firestore client created")
	return &FirestoreRepository{
		client: client,
		log:    logger.WithField("component", "repository"),
	}, nil
}

// Close releases the Firestore client.
func (r *FirestoreRepository) Close() error {
	if err := r.client.Close(); err != nil {
		r.log.WithError(err).Error("Error closing Firestore client")
		return err
	}
	return nil
}

func mapFirestoreErr(kind, id string, err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return notFound(kind, id)
	case codes.AlreadyExists:
		return fmt.Errorf("%s/%s: %w", kind, id, ErrExists)
	}
	return fmt.Errorf("%s/%s: %w", kind, id, err)
}

func (r *FirestoreRepository) collections() *firestore.CollectionRef {
	return r.client.Collection(CollectionsKind)
}

func (r *FirestoreRepository) months() *firestore.CollectionRef {
	return r.client.Collection(MonthsKind)
}

// ListCollections returns every collection in document id order.
func (r *FirestoreRepository) ListCollections(ctx context.Context) ([]domain.Collection, error) {
	iter := r.collections().Documents(ctx)
	defer iter.Stop()

	var cols []domain.Collection
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list collections: %w", err)
		}
		var c domain.Collection
		if err := doc.DataTo(&c); err != nil {
			return nil, fmt.Errorf("failed to decode collection %s: %w", doc.Ref.ID, err)
		}
		c.ID = doc.Ref.ID
		cols = append(cols, c)
	}
	return cols, nil
}

// GetCollection returns one collection or ErrNotFound.
func (r *FirestoreRepository) GetCollection(ctx context.Context, id string) (domain.Collection, error) {
	snap, err := r.collections().Doc(id).Get(ctx)
	if err != nil {
		return domain.Collection{}, mapFirestoreErr(CollectionsKind, id, err)
	}
	var c domain.Collection
	if err := snap.DataTo(&c); err != nil {
		return domain.Collection{}, fmt.Errorf("failed to decode collection %s: %w", id, err)
	}
	c.ID = id
	return c, nil
}

// CreateCollection stores a new collection, failing with ErrExists.
func (r *FirestoreRepository) CreateCollection(ctx context.Context, c domain.Collection) error {
	if _, err := r.collections().Doc(c.ID).Create(ctx, c); err != nil {
		return mapFirestoreErr(CollectionsKind, c.ID, err)
	}
	r.log.WithField("collection_id", c.ID).Info("Collection created")
	return nil
}

// AppendLink uses Firestore's server-side array union, so concurrent
// appends to the same collection do not overwrite each other.
func (r *FirestoreRepository) AppendLink(ctx context.Context, collectionID string, link domain.Link, at time.Time) error {
	_, err := r.collections().Doc(collectionID).Update(ctx, []firestore.Update{
		{Path: "links", Value: firestore.ArrayUnion(link)},
		{Path: "updatedAt", Value: at},
	})
	if err != nil {
		return mapFirestoreErr(CollectionsKind, collectionID, err)
	}
	return nil
}

// UpdateCollections transforms several collections in one transaction.
func (r *FirestoreRepository) UpdateCollections(ctx context.Context, ids []string, fn func(cols []*domain.Collection) error) error {
	refs := make([]*firestore.DocumentRef, len(ids))
	for i, id := range ids {
		refs[i] = r.collections().Doc(id)
	}
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snaps, err := tx.GetAll(refs)
		if err != nil {
			return err
		}
		cols := make([]*domain.Collection, len(snaps))
		for i, snap := range snaps {
			if !snap.Exists() {
				return notFound(CollectionsKind, ids[i])
			}
			c := &domain.Collection{}
			if err := snap.DataTo(c); err != nil {
				return fmt.Errorf("failed to decode collection %s: %w", ids[i], err)
			}
			c.ID = ids[i]
			cols[i] = c
		}
		if err := fn(cols); err != nil {
			return err
		}
		for i, c := range cols {
			if err := tx.Set(refs[i], c); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, ErrNoChange) {
		return nil
	}
	return err
}

// ListMonths returns every month in document id order.
func (r *FirestoreRepository) ListMonths(ctx context.Context) ([]domain.Month, error) {
	docs, err := r.months().Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list months: %w", err)
	}
	months := make([]domain.Month, len(docs))
	for i, doc := range docs {
		if err := doc.DataTo(&months[i]); err != nil {
			return nil, fmt.Errorf("failed to decode month %s: %w", doc.Ref.ID, err)
		}
		months[i].ID = doc.Ref.ID
	}
	return months, nil
}

// GetMonth returns one month or ErrNotFound.
func (r *FirestoreRepository) GetMonth(ctx context.Context, id string) (domain.Month, error) {
	snap, err := r.months().Doc(id).Get(ctx)
	if err != nil {
		return domain.Month{}, mapFirestoreErr(MonthsKind, id, err)
	}
	var m domain.Month
	if err := snap.DataTo(&m); err != nil {
		return domain.Month{}, fmt.Errorf("failed to decode month %s: %w", id, err)
	}
	m.ID = id
	return m, nil
}

// PutMonth creates or replaces a month.
func (r *FirestoreRepository) PutMonth(ctx context.Context, m domain.Month) error {
	if _, err := r.months().Doc(m.ID).Set(ctx, m); err != nil {
		return mapFirestoreErr(MonthsKind, m.ID, err)
	}
	return nil
}

// UpdateMonth transforms one month in a transaction.
func (r *FirestoreRepository) UpdateMonth(ctx context.Context, id string, fn func(m *domain.Month) error) error {
	ref := r.months().Doc(id)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return mapFirestoreErr(MonthsKind, id, err)
		}
		m := &domain.Month{}
		if err := snap.DataTo(m); err != nil {
			return fmt.Errorf("failed to decode month %s: %w", id, err)
		}
		m.ID = id
		if err := fn(m); err != nil {
			return err
		}
		return tx.Set(ref, m)
	})
	if errors.Is(err, ErrNoChange) {
		return nil
	}
	return err
}
