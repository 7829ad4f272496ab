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

const LISTING_COLLECTION = "listings"

type ListingMongoDBStore struct {
	listings *mongo.Collection
	tracer   trace.Tracer
}

func NewListingMongoDBStore(client *mongo.Client, tracer trace.Tracer) domain.ListingStore {
	listings := client.Database(DATABASE).Collection(LISTING_COLLECTION)
	return &ListingMongoDBStore{
		listings: listings,
		tracer:   tracer,
	}
}

func (store *ListingMongoDBStore) GetAll(ctx context.Context) ([]*domain.Listing, error) {
	ctx, span := store.tracer.Start(ctx, "ListingStore.GetAll")
	defer span.End()

	cursor, err := store.listings.Find(ctx, bson.D{{}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	return decodeListings(ctx, cursor)
}

func (store *ListingMongoDBStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.Listing, error) {
	ctx, span := store.tracer.Start(ctx, "ListingStore.Get")
	defer span.End()

	var listing domain.Listing
	err := store.listings.FindOne(ctx, bson.M{"_id": id}).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &listing, nil
}

func (store *ListingMongoDBStore) Insert(ctx context.Context, listing *domain.Listing) (*domain.Listing, error) {
	ctx, span := store.tracer.Start(ctx, "ListingStore.Insert")
	defer span.End()

	listing.ID = primitive.NewObjectID()
	if listing.Reviews == nil {
		listing.Reviews = []primitive.ObjectID{}
	}

	result, err := store.listings.InsertOne(ctx, listing)
	if err != nil {
		return nil, err
	}
	listing.ID = result.InsertedID.(primitive.ObjectID)
	return listing, nil
}

func (store *ListingMongoDBStore) Update(ctx context.Context, listing *domain.Listing) error {
	ctx, span := store.tracer.Start(ctx, "ListingStore.Update")
	defer span.End()

	updateData := bson.M{
		"title":       listing.Title,
		"description": listing.Description,
		"location":    listing.Location,
		"country":     listing.Country,
		"price":       listing.Price,
		"category":    listing.Category,
		"image":       listing.Image,
	}

	result, err := store.listings.UpdateOne(ctx, bson.M{"_id": listing.ID}, bson.M{"$set": updateData})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (store *ListingMongoDBStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := store.tracer.Start(ctx, "ListingStore.Delete")
	defer span.End()

	result, err := store.listings.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (store *ListingMongoDBStore) PushReview(ctx context.Context, listingID, reviewID primitive.ObjectID) error {
	ctx, span := store.tracer.Start(ctx, "ListingStore.PushReview")
	defer span.End()

	update := bson.M{"$push": bson.M{"reviews": reviewID}}
	result, err := store.listings.UpdateOne(ctx, bson.M{"_id": listingID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (store *ListingMongoDBStore) PullReview(ctx context.Context, listingID, reviewID primitive.ObjectID) error {
	ctx, span := store.tracer.Start(ctx, "ListingStore.PullReview")
	defer span.End()

	update := bson.M{"$pull": bson.M{"reviews": reviewID}}
	result, err := store.listings.UpdateOne(ctx, bson.M{"_id": listingID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func decodeListings(ctx context.Context, cursor *mongo.Cursor) (listings []*domain.Listing, err error) {
	for cursor.Next(ctx) {
		var listing domain.Listing
		err = cursor.Decode(&listing)
		if err != nil {
			return
		}
		listings = append(listings, &listing)
	}
	err = cursor.Err()
	return
}
