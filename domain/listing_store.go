package domain

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ListingStore interface {
	GetAll(ctx context.Context) ([]*Listing, error)
	Get(ctx context.Context, id primitive.ObjectID) (*Listing, error)
	Insert(ctx context.Context, listing *Listing) (*Listing, error)
	Update(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	PushReview(ctx context.Context, listingID, reviewID primitive.ObjectID) error
	PullReview(ctx context.Context, listingID, reviewID primitive.ObjectID) error
}
