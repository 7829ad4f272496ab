package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel/trace"

	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/domain"
	apperrors "github.com/jeffrin-samuel/RoyalRetreats-FullStack/errors"
)

const REVIEW_COLLECTION = "reviews"

type ReviewMongoDBStore struct {
	reviews *mongo.Collection
	tracer  trace.Tracer
}

func NewReviewMongoDBStore(client *mongo.Client, tracer trace.Tracer) domain.ReviewStore {
	reviews := client.Database(DATABASE).Collection(REVIEW_COLLECTION)
	return &ReviewMongoDBStore{
		reviews: reviews,
		tracer:  tracer,
	}
}

func (store *ReviewMongoDBStore) Insert(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	ctx, span := store.tracer.Start(ctx, "ReviewStore.Insert")
	defer span.End()

	review.ID = primitive.NewObjectID()
	result, err := store.reviews.InsertOne(ctx, review)
	if err != nil {
		return nil, err
	}
	review.ID = result.InsertedID.(primitive.ObjectID)
	return review, nil
}

func (store *ReviewMongoDBStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.Review, error) {
	ctx, span := store.tracer.Start(ctx, "ReviewStore.Get")
	defer span.End()

	var review domain.Review
	err := store.reviews.FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &review, nil
}

// GetMany resolves review references in the order they were given. Ids
// without a backing document are skipped, so a half-finished review
// deletion never breaks a listing read.
func (store *ReviewMongoDBStore) GetMany(ctx context.Context, ids []primitive.ObjectID) ([]*domain.Review, error) {
	ctx, span := store.tracer.Start(ctx, "ReviewStore.GetMany")
	defer span.End()

	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := store.reviews.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	byID := make(map[primitive.ObjectID]*domain.Review, len(ids))
	for cursor.Next(ctx) {
		var review domain.Review
		if err := cursor.Decode(&review); err != nil {
			return nil, err
		}
		byID[review.ID] = &review
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return orderReviews(ids, byID), nil
}

// $in makes no ordering promise, so reviews are put back in the sequence
// the listing references them.
func orderReviews(ids []primitive.ObjectID, byID map[primitive.ObjectID]*domain.Review) []*domain.Review {
	var ordered []*domain.Review
	for _, id := range ids {
		if review, ok := byID[id]; ok {
			ordered = append(ordered, review)
		}
	}
	return ordered
}

func (store *ReviewMongoDBStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := store.tracer.Start(ctx, "ReviewStore.Delete")
	defer span.End()

	result, err := store.reviews.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
