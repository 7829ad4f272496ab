package domain

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewStore interface {
	Insert(ctx context.Context, review *Review) (*Review, error)
	Get(ctx context.Context, id primitive.ObjectID) (*Review, error)
	// GetMany resolves the given review ids, silently skipping ids whose
	// document no longer exists.
	GetMany(ctx context.Context, ids []primitive.ObjectID) ([]*Review, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
