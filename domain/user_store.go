package domain

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserStore interface {
	Register(ctx context.Context, user *User) (*User, error)
	Get(ctx context.Context, id primitive.ObjectID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByResetCode(ctx context.Context, code string) (*User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, username, email string) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
	UpdateResetCode(ctx context.Context, id primitive.ObjectID, code string, expiry int64) error
	UpdateWishlist(ctx context.Context, id primitive.ObjectID, wishlist []primitive.ObjectID) error
	AppendBooking(ctx context.Context, id primitive.ObjectID, booking Booking) error
	// RemoveBookingsForListing pulls every booking referencing the listing
	// from every user document. Runs after the listing itself is deleted;
	// the two writes are not atomic and readers tolerate the window.
	RemoveBookingsForListing(ctx context.Context, listingID primitive.ObjectID) error
}
