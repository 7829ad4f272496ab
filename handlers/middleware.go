package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/authorization"
	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/domain"
	apperrors "github.com/jeffrin-samuel/RoyalRetreats-FullStack/errors"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// ClaimsFromContext returns the identity RequireLogin stored for this
// request. The bool is false on routes that never went through the guard.
func ClaimsFromContext(ctx context.Context) (*authorization.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*authorization.Claims)
	return claims, ok
}

// Guards holds everything the route guards need to resolve identity and
// ownership. Ownership checks hit the stores directly so a guard decision
// is always made against the current document, not a cached copy.
type Guards struct {
	tokens   *authorization.TokenManager
	cache    domain.TokenCache
	listings domain.ListingStore
	reviews  domain.ReviewStore
	logger   *logrus.Logger
}

func NewGuards(tokens *authorization.TokenManager, cache domain.TokenCache, listings domain.ListingStore, reviews domain.ReviewStore, logger *logrus.Logger) *Guards {
	return &Guards{
		tokens:   tokens,
		cache:    cache,
		listings: listings,
		reviews:  reviews,
		logger:   logger,
	}
}

// RequireLogin authenticates the request. API clients that ask for JSON get
// a 401 body; browser-shaped requests get bounced to the login page with
// the original URL preserved so they land back where they started.
func (guards *Guards) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, req *http.Request) {
		raw, ok := authorization.ExtractBearer(req.Header.Get("Authorization"))
		if !ok {
			guards.denyLogin(writer, req)
			return
		}

		claims, err := guards.tokens.Verify(raw)
		if err != nil {
			guards.denyLogin(writer, req)
			return
		}

		blocked, err := guards.cache.IsTokenBlocked(req.Context(), raw)
		if err != nil {
			guards.logger.WithError(err).Error("Token blocklist lookup failed")
			errorResponse(writer, err)
			return
		}
		if blocked {
			guards.denyLogin(writer, req)
			return
		}

		ctx := context.WithValue(req.Context(), claimsContextKey, claims)
		next.ServeHTTP(writer, req.WithContext(ctx))
	})
}

func (guards *Guards) denyLogin(writer http.ResponseWriter, req *http.Request) {
	if strings.Contains(req.Header.Get("Accept"), "application/json") {
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusUnauthorized)
		jsonResponse(errorBody{Error: apperrors.LoginRequired}, writer)
		return
	}
	http.Redirect(writer, req, "/login?redirect="+url.QueryEscape(req.URL.RequestURI()), http.StatusFound)
}

// RequireListingOwner admits only the owner of the listing in the route.
// Runs after RequireLogin.
func (guards *Guards) RequireListingOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, req *http.Request) {
		claims, ok := ClaimsFromContext(req.Context())
		if !ok {
			guards.denyLogin(writer, req)
			return
		}

		listing, done := guards.loadListing(writer, req)
		if done {
			return
		}

		if listing.Owner.Hex() != claims.UserID {
			errorResponse(writer, apperrors.New(apperrors.ErrForbidden, apperrors.NotListingOwner))
			return
		}
		next.ServeHTTP(writer, req)
	})
}

// RequireNotListingOwner blocks the owner from acting on their own listing,
// booking it or wishlisting it. Existence is checked before ownership so a
// missing listing reads as 404, never as a permission problem.
func (guards *Guards) RequireNotListingOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, req *http.Request) {
		claims, ok := ClaimsFromContext(req.Context())
		if !ok {
			guards.denyLogin(writer, req)
			return
		}

		listing, done := guards.loadListing(writer, req)
		if done {
			return
		}

		if listing.Owner.Hex() == claims.UserID {
			errorResponse(writer, apperrors.New(apperrors.ErrForbidden, apperrors.OwnListingAction))
			return
		}
		next.ServeHTTP(writer, req)
	})
}

// RequireReviewAuthor admits only the author of the review in the route.
// Runs after RequireLogin.
func (guards *Guards) RequireReviewAuthor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, req *http.Request) {
		claims, ok := ClaimsFromContext(req.Context())
		if !ok {
			guards.denyLogin(writer, req)
			return
		}

		reviewID, err := primitive.ObjectIDFromHex(mux.Vars(req)["reviewId"])
		if err != nil {
			badRequest(writer, apperrors.InvalidRequestFormat)
			return
		}

		review, err := guards.reviews.Get(req.Context(), reviewID)
		if err != nil {
			if err == apperrors.ErrNotFound {
				errorResponse(writer, apperrors.New(apperrors.ErrNotFound, apperrors.ReviewNotFound))
				return
			}
			errorResponse(writer, err)
			return
		}

		if review.Author.Hex() != claims.UserID {
			errorResponse(writer, apperrors.New(apperrors.ErrForbidden, apperrors.NotReviewAuthor))
			return
		}
		next.ServeHTTP(writer, req)
	})
}

// loadListing resolves the {id} route variable. The bool reports whether a
// response was already written and the caller should stop.
func (guards *Guards) loadListing(writer http.ResponseWriter, req *http.Request) (*domain.Listing, bool) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(req)["id"])
	if err != nil {
		badRequest(writer, apperrors.InvalidRequestFormat)
		return nil, true
	}

	listing, err := guards.listings.Get(req.Context(), id)
	if err != nil {
		if err == apperrors.ErrNotFound {
			errorResponse(writer, apperrors.New(apperrors.ErrNotFound, apperrors.ListingNotFound))
			return nil, true
		}
		errorResponse(writer, err)
		return nil, true
	}
	return listing, false
}

func ExtractTraceInfoMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
