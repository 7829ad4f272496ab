package application

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"

	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/domain"
	apperrors "github.com/jeffrin-samuel/RoyalRetreats-FullStack/errors"
)

type UserService struct {
	users    domain.UserStore
	listings domain.ListingStore
	logger   *logrus.Logger
	tracer   trace.Tracer
}

func NewUserService(users domain.UserStore, listings domain.ListingStore, logger *logrus.Logger, tracer trace.Tracer) *UserService {
	return &UserService{
		users:    users,
		listings: listings,
		logger:   logger,
		tracer:   tracer,
	}
}

// ToggleWishlist adds the listing to the user's wishlist when absent and
// removes it when present, reporting which happened. Plain read-modify-
// write: concurrent toggles from the same user are last-write-wins.
func (service *UserService) ToggleWishlist(ctx context.Context, userID, listingID primitive.ObjectID) (bool, error) {
	ctx, span := service.tracer.Start(ctx, "UserService.ToggleWishlist")
	defer span.End()

	user, err := service.users.Get(ctx, userID)
	if err != nil {
		if err == apperrors.ErrNotFound {
			return false, apperrors.New(apperrors.ErrNotFound, apperrors.UserNotFound)
		}
		return false, err
	}

	index := -1
	for i, id := range user.Wishlist {
		if id == listingID {
			index = i
			break
		}
	}

	var added bool
	var wishlist []primitive.ObjectID
	if index == -1 {
		wishlist = append(user.Wishlist, listingID)
		added = true
	} else {
		wishlist = append(user.Wishlist[:index], user.Wishlist[index+1:]...)
	}

	if err := service.users.UpdateWishlist(ctx, userID, wishlist); err != nil {
		return false, err
	}
	return added, nil
}

// GetWishlist resolves the saved listing references, skipping any that
// point at listings deleted since they were saved.
func (service *UserService) GetWishlist(ctx context.Context, userID primitive.ObjectID) ([]*domain.Listing, error) {
	ctx, span := service.tracer.Start(ctx, "UserService.GetWishlist")
	defer span.End()

	user, err := service.users.Get(ctx, userID)
	if err != nil {
		if err == apperrors.ErrNotFound {
			return nil, apperrors.New(apperrors.ErrNotFound, apperrors.UserNotFound)
		}
		return nil, err
	}

	listings := []*domain.Listing{}
	for _, id := range user.Wishlist {
		listing, err := service.listings.Get(ctx, id)
		if err == apperrors.ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}
	return listings, nil
}

// GetTrips returns the user's bookings with listings resolved. Bookings
// whose listing was deleted out from under them are filtered, never
// trusted to exist.
func (service *UserService) GetTrips(ctx context.Context, userID primitive.ObjectID) ([]domain.Trip, error) {
	ctx, span := service.tracer.Start(ctx, "UserService.GetTrips")
	defer span.End()

	user, err := service.users.Get(ctx, userID)
	if err != nil {
		if err == apperrors.ErrNotFound {
			return nil, apperrors.New(apperrors.ErrNotFound, apperrors.UserNotFound)
		}
		return nil, err
	}

	trips := []domain.Trip{}
	for _, booking := range user.Bookings {
		listing, err := service.listings.Get(ctx, booking.Listing)
		if err == apperrors.ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		trips = append(trips, domain.Trip{Booking: booking, Listing: *listing})
	}
	return trips, nil
}

func (service *UserService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, payload domain.ProfilePayload) error {
	ctx, span := service.tracer.Start(ctx, "UserService.UpdateProfile")
	defer span.End()

	if err := domain.Validate(payload); err != nil {
		return err
	}

	err := service.users.UpdateProfile(ctx, userID, strings.TrimSpace(payload.Username), strings.TrimSpace(payload.Email))
	if err != nil {
		if err == apperrors.ErrConflict {
			return apperrors.New(apperrors.ErrConflict, apperrors.ProfileAlreadyExists)
		}
		if err == apperrors.ErrNotFound {
			return apperrors.New(apperrors.ErrNotFound, apperrors.UserNotFound)
		}
		return err
	}
	return nil
}
