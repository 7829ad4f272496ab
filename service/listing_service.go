package application

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"

	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/domain"
	apperrors "github.com/jeffrin-samuel/RoyalRetreats-FullStack/errors"
)

type ListingService struct {
	listings domain.ListingStore
	reviews  domain.ReviewStore
	users    domain.UserStore
	logger   *logrus.Logger
	tracer   trace.Tracer
}

func NewListingService(listings domain.ListingStore, reviews domain.ReviewStore, users domain.UserStore, logger *logrus.Logger, tracer trace.Tracer) *ListingService {
	return &ListingService{
		listings: listings,
		reviews:  reviews,
		users:    users,
		logger:   logger,
		tracer:   tracer,
	}
}

// Search fetches all listings and narrows them in memory: free-text match,
// then exact category, then price range. Each step is an AND over the
// previous result, so the order matters.
func (service *ListingService) Search(ctx context.Context, query, category, priceRange string) ([]*domain.Listing, error) {
	ctx, span := service.tracer.Start(ctx, "ListingService.Search")
	defer span.End()

	listings, err := service.listings.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	if query != "" {
		q := strings.ToLower(query)
		listings = filterListings(listings, func(l *domain.Listing) bool {
			return strings.Contains(strings.ToLower(l.Title), q) ||
				strings.Contains(strings.ToLower(l.Description), q) ||
				strings.Contains(strings.ToLower(l.Location), q) ||
				strings.Contains(strings.ToLower(l.Category), q)
		})
	}

	if category != "" {
		listings = filterListings(listings, func(l *domain.Listing) bool {
			return l.Category == category
		})
	}

	min, max := parsePriceRange(priceRange)
	listings = filterListings(listings, func(l *domain.Listing) bool {
		return l.Price >= min && l.Price <= max
	})

	return listings, nil
}

// parsePriceRange parses a "min-max" token. Absent or malformed input falls
// back to [0, +Inf), it never drops everything.
func parsePriceRange(priceRange string) (float64, float64) {
	min, max := 0.0, math.Inf(1)

	if priceRange == "" || !strings.Contains(priceRange, "-") {
		return min, max
	}

	parts := strings.SplitN(priceRange, "-", 2)
	low, errLow := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	high, errHigh := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errLow != nil || errHigh != nil {
		return min, max
	}

	return low, high
}

func filterListings(listings []*domain.Listing, keep func(*domain.Listing) bool) []*domain.Listing {
	filtered := listings[:0:0]
	for _, l := range listings {
		if keep(l) {
			filtered = append(filtered, l)
		}
	}
	return filtered
}

// Get returns the listing with owner, reviews and review authors resolved.
// Dangling review or author references are skipped, not errors. When a
// caller identity is supplied, IsBooked reports whether that user holds a
// booking for this listing.
func (service *ListingService) Get(ctx context.Context, id primitive.ObjectID, currentUser *primitive.ObjectID) (*domain.PopulatedListing, error) {
	ctx, span := service.tracer.Start(ctx, "ListingService.Get")
	defer span.End()

	listing, err := service.listings.Get(ctx, id)
	if err != nil {
		if err == apperrors.ErrNotFound {
			return nil, apperrors.New(apperrors.ErrNotFound, apperrors.ListingNotFound)
		}
		return nil, err
	}

	populated := &domain.PopulatedListing{
		Listing: *listing,
		Reviews: []domain.PopulatedReview{},
	}

	if owner, err := service.users.Get(ctx, listing.Owner); err == nil {
		populated.Owner = owner
	} else if err != apperrors.ErrNotFound {
		return nil, err
	}

	reviews, err := service.reviews.GetMany(ctx, listing.Reviews)
	if err != nil {
		return nil, err
	}
	for _, review := range reviews {
		populatedReview := domain.PopulatedReview{Review: *review}
		if author, err := service.users.Get(ctx, review.Author); err == nil {
			populatedReview.Author = author
		} else if err != apperrors.ErrNotFound {
			return nil, err
		}
		populated.Reviews = append(populated.Reviews, populatedReview)
	}

	if currentUser != nil {
		user, err := service.users.Get(ctx, *currentUser)
		if err == nil {
			for _, booking := range user.Bookings {
				if booking.Listing == listing.ID {
					populated.IsBooked = true
					break
				}
			}
		} else if err != apperrors.ErrNotFound {
			return nil, err
		}
	}

	return populated, nil
}

func (service *ListingService) Create(ctx context.Context, owner primitive.ObjectID, payload domain.ListingPayload, image domain.Image) (*domain.Listing, error) {
	ctx, span := service.tracer.Start(ctx, "ListingService.Create")
	defer span.End()

	if err := domain.Validate(payload); err != nil {
		return nil, err
	}

	listing := &domain.Listing{
		Title:       payload.Title,
		Description: payload.Description,
		Location:    payload.Location,
		Country:     payload.Country,
		Price:       payload.Price,
		Category:    payload.Category,
		Image:       image,
		Owner:       owner,
	}

	return service.listings.Insert(ctx, listing)
}

// Update merges the payload into the listing. A nil image keeps the stored
// image untouched; the owner is never reassigned.
func (service *ListingService) Update(ctx context.Context, id primitive.ObjectID, payload domain.ListingPayload, image *domain.Image) (*domain.Listing, error) {
	ctx, span := service.tracer.Start(ctx, "ListingService.Update")
	defer span.End()

	if err := domain.Validate(payload); err != nil {
		return nil, err
	}

	listing, err := service.listings.Get(ctx, id)
	if err != nil {
		if err == apperrors.ErrNotFound {
			return nil, apperrors.New(apperrors.ErrNotFound, apperrors.ListingNotFound)
		}
		return nil, err
	}

	listing.Title = payload.Title
	listing.Description = payload.Description
	listing.Location = payload.Location
	listing.Country = payload.Country
	listing.Price = payload.Price
	listing.Category = payload.Category
	if image != nil {
		listing.Image = *image
	}

	if err := service.listings.Update(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// Delete removes the listing, then strips matching bookings from every
// user. The two writes are independent; a reader may observe a dangling
// booking in between and has to tolerate it.
func (service *ListingService) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := service.tracer.Start(ctx, "ListingService.Delete")
	defer span.End()

	listing, err := service.listings.Get(ctx, id)
	if err != nil {
		if err == apperrors.ErrNotFound {
			return apperrors.New(apperrors.ErrNotFound, apperrors.ListingNotFound)
		}
		return err
	}

	if err := service.listings.Delete(ctx, listing.ID); err != nil {
		return err
	}

	if err := service.users.RemoveBookingsForListing(ctx, listing.ID); err != nil {
		service.logger.WithError(err).WithField("listing", listing.ID.Hex()).
			Error("Booking cascade after listing delete failed")
		return err
	}

	return nil
}
