package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/trace"

	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/domain"
	apperrors "github.com/jeffrin-samuel/RoyalRetreats-FullStack/errors"
)

const (
	DATABASE        = "royalretreats"
	USER_COLLECTION = "users"
)

type UserMongoDBStore struct {
	users  *mongo.Collection
	tracer trace.Tracer
}

func NewUserMongoDBStore(ctx context.Context, client *mongo.Client, tracer trace.Tracer) (domain.UserStore, error) {
	users := client.Database(DATABASE).Collection(USER_COLLECTION)
	if _, err := users.Indexes().CreateMany(ctx, userIndexModels()); err != nil {
		return nil, err
	}
	return &UserMongoDBStore{
		users:  users,
		tracer: tracer,
	}, nil
}

// Username and email are unique per account. The indexes are what makes
// the duplicate-key mapping in Register and UpdateProfile fire, and they
// keep GetByEmail and GetByResetCode unambiguous.
func userIndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
}

func (store *UserMongoDBStore) Register(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, span := store.tracer.Start(ctx, "UserStore.Register")
	defer span.End()

	user.ID = primitive.NewObjectID()
	if user.Wishlist == nil {
		user.Wishlist = []primitive.ObjectID{}
	}
	if user.Bookings == nil {
		user.Bookings = []domain.Booking{}
	}

	result, err := store.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.ErrConflict
		}
		return nil, err
	}
	user.ID = result.InsertedID.(primitive.ObjectID)
	return user, nil
}

func (store *UserMongoDBStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	ctx, span := store.tracer.Start(ctx, "UserStore.Get")
	defer span.End()

	return store.filterOne(ctx, bson.M{"_id": id})
}

func (store *UserMongoDBStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	ctx, span := store.tracer.Start(ctx, "UserStore.GetByUsername")
	defer span.End()

	return store.filterOne(ctx, bson.M{"username": username})
}

func (store *UserMongoDBStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, span := store.tracer.Start(ctx, "UserStore.GetByEmail")
	defer span.End()

	return store.filterOne(ctx, bson.M{"email": email})
}

func (store *UserMongoDBStore) GetByResetCode(ctx context.Context, code string) (*domain.User, error) {
	ctx, span := store.tracer.Start(ctx, "UserStore.GetByResetCode")
	defer span.End()

	return store.filterOne(ctx, bson.M{"resetOtp": code})
}

func (store *UserMongoDBStore) UpdateProfile(ctx context.Context, id primitive.ObjectID, username, email string) error {
	ctx, span := store.tracer.Start(ctx, "UserStore.UpdateProfile")
	defer span.End()

	update := bson.M{"$set": bson.M{"username": username, "email": email}}
	result, err := store.users.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.ErrConflict
		}
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (store *UserMongoDBStore) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	ctx, span := store.tracer.Start(ctx, "UserStore.UpdatePassword")
	defer span.End()

	update := bson.M{"$set": bson.M{"password": passwordHash}}
	result, err := store.users.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (store *UserMongoDBStore) UpdateResetCode(ctx context.Context, id primitive.ObjectID, code string, expiry int64) error {
	ctx, span := store.tracer.Start(ctx, "UserStore.UpdateResetCode")
	defer span.End()

	update := bson.M{"$set": bson.M{"resetOtp": code, "resetOtpExpireAt": expiry}}
	result, err := store.users.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateWishlist replaces the whole membership array. Deliberately a plain
// overwrite, not compare-and-swap: concurrent toggles are last-write-wins.
func (store *UserMongoDBStore) UpdateWishlist(ctx context.Context, id primitive.ObjectID, wishlist []primitive.ObjectID) error {
	ctx, span := store.tracer.Start(ctx, "UserStore.UpdateWishlist")
	defer span.End()

	if wishlist == nil {
		wishlist = []primitive.ObjectID{}
	}
	update := bson.M{"$set": bson.M{"wishlist": wishlist}}
	result, err := store.users.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (store *UserMongoDBStore) AppendBooking(ctx context.Context, id primitive.ObjectID, booking domain.Booking) error {
	ctx, span := store.tracer.Start(ctx, "UserStore.AppendBooking")
	defer span.End()

	update := bson.M{"$push": bson.M{"bookings": booking}}
	result, err := store.users.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (store *UserMongoDBStore) RemoveBookingsForListing(ctx context.Context, listingID primitive.ObjectID) error {
	ctx, span := store.tracer.Start(ctx, "UserStore.RemoveBookingsForListing")
	defer span.End()

	update := bson.M{"$pull": bson.M{"bookings": bson.M{"listing": listingID}}}
	_, err := store.users.UpdateMany(ctx, bson.M{}, update)
	return err
}

func (store *UserMongoDBStore) filterOne(ctx context.Context, filter interface{}) (*domain.User, error) {
	var user domain.User
	err := store.users.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
