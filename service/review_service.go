package application

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"

	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/domain"
	apperrors "github.com/jeffrin-samuel/RoyalRetreats-FullStack/errors"
)

type ReviewService struct {
	reviews  domain.ReviewStore
	listings domain.ListingStore
	logger   *logrus.Logger
	tracer   trace.Tracer
}

func NewReviewService(reviews domain.ReviewStore, listings domain.ListingStore, logger *logrus.Logger, tracer trace.Tracer) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		listings: listings,
		logger:   logger,
		tracer:   tracer,
	}
}

func (service *ReviewService) Create(ctx context.Context, listingID, author primitive.ObjectID, payload domain.ReviewPayload) (*domain.Review, error) {
	ctx, span := service.tracer.Start(ctx, "ReviewService.Create")
	defer span.End()

	if err := domain.Validate(payload); err != nil {
		return nil, err
	}

	if _, err := service.listings.Get(ctx, listingID); err != nil {
		if err == apperrors.ErrNotFound {
			return nil, apperrors.New(apperrors.ErrNotFound, apperrors.ListingNotFound)
		}
		return nil, err
	}

	review := &domain.Review{
		Rating:  payload.Rating,
		Comment: payload.Comment,
		Author:  author,
	}

	review, err := service.reviews.Insert(ctx, review)
	if err != nil {
		return nil, err
	}

	if err := service.listings.PushReview(ctx, listingID, review.ID); err != nil {
		return nil, err
	}

	return review, nil
}

// Delete pulls the reference from the listing first, then removes the
// review document, in that order and without a transaction. Readers skip
// references that resolve to nothing, so the window is harmless.
func (service *ReviewService) Delete(ctx context.Context, listingID, reviewID primitive.ObjectID) error {
	ctx, span := service.tracer.Start(ctx, "ReviewService.Delete")
	defer span.End()

	if err := service.listings.PullReview(ctx, listingID, reviewID); err != nil && err != apperrors.ErrNotFound {
		return err
	}

	if err := service.reviews.Delete(ctx, reviewID); err != nil {
		if err == apperrors.ErrNotFound {
			return apperrors.New(apperrors.ErrNotFound, apperrors.ReviewNotFound)
		}
		return err
	}

	return nil
}
