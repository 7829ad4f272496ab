package application

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"

	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/domain"
	apperrors "github.com/jeffrin-samuel/RoyalRetreats-FullStack/errors"
	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/mail"
	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/payments"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testTracer() trace.Tracer {
	return trace.NewNoopTracerProvider().Tracer("test")
}

type fakeUserStore struct {
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[primitive.ObjectID]*domain.User{}}
}

func (store *fakeUserStore) add(user *domain.User) *domain.User {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	store.users[user.ID] = user
	return user
}

func (store *fakeUserStore) Register(ctx context.Context, user *domain.User) (*domain.User, error) {
	for _, existing := range store.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return nil, apperrors.ErrConflict
		}
	}
	return store.add(user), nil
}

func (store *fakeUserStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, ok := store.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return user, nil
}

func (store *fakeUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, user := range store.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (store *fakeUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range store.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (store *fakeUserStore) GetByResetCode(ctx context.Context, code string) (*domain.User, error) {
	for _, user := range store.users {
		if user.ResetCode != "" && user.ResetCode == code {
			return user, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (store *fakeUserStore) UpdateProfile(ctx context.Context, id primitive.ObjectID, username, email string) error {
	user, ok := store.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	for _, existing := range store.users {
		if existing.ID != id && (existing.Email == email || existing.Username == username) {
			return apperrors.ErrConflict
		}
	}
	user.Username = username
	user.Email = email
	return nil
}

func (store *fakeUserStore) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	user, ok := store.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	user.Password = passwordHash
	return nil
}

func (store *fakeUserStore) UpdateResetCode(ctx context.Context, id primitive.ObjectID, code string, expiry int64) error {
	user, ok := store.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	user.ResetCode = code
	user.ResetCodeExpiry = expiry
	return nil
}

func (store *fakeUserStore) UpdateWishlist(ctx context.Context, id primitive.ObjectID, wishlist []primitive.ObjectID) error {
	user, ok := store.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	user.Wishlist = wishlist
	return nil
}

func (store *fakeUserStore) AppendBooking(ctx context.Context, id primitive.ObjectID, booking domain.Booking) error {
	user, ok := store.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	user.Bookings = append(user.Bookings, booking)
	return nil
}

func (store *fakeUserStore) RemoveBookingsForListing(ctx context.Context, listingID primitive.ObjectID) error {
	for _, user := range store.users {
		kept := user.Bookings[:0:0]
		for _, booking := range user.Bookings {
			if booking.Listing != listingID {
				kept = append(kept, booking)
			}
		}
		user.Bookings = kept
	}
	return nil
}

type fakeListingStore struct {
	listings map[primitive.ObjectID]*domain.Listing
}

func newFakeListingStore() *fakeListingStore {
	return &fakeListingStore{listings: map[primitive.ObjectID]*domain.Listing{}}
}

func (store *fakeListingStore) add(listing *domain.Listing) *domain.Listing {
	if listing.ID.IsZero() {
		listing.ID = primitive.NewObjectID()
	}
	store.listings[listing.ID] = listing
	return listing
}

func (store *fakeListingStore) GetAll(ctx context.Context) ([]*domain.Listing, error) {
	all := []*domain.Listing{}
	for _, listing := range store.listings {
		all = append(all, listing)
	}
	return all, nil
}

func (store *fakeListingStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.Listing, error) {
	listing, ok := store.listings[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return listing, nil
}

func (store *fakeListingStore) Insert(ctx context.Context, listing *domain.Listing) (*domain.Listing, error) {
	return store.add(listing), nil
}

func (store *fakeListingStore) Update(ctx context.Context, listing *domain.Listing) error {
	if _, ok := store.listings[listing.ID]; !ok {
		return apperrors.ErrNotFound
	}
	store.listings[listing.ID] = listing
	return nil
}

func (store *fakeListingStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := store.listings[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(store.listings, id)
	return nil
}

func (store *fakeListingStore) PushReview(ctx context.Context, listingID, reviewID primitive.ObjectID) error {
	listing, ok := store.listings[listingID]
	if !ok {
		return apperrors.ErrNotFound
	}
	listing.Reviews = append(listing.Reviews, reviewID)
	return nil
}

func (store *fakeListingStore) PullReview(ctx context.Context, listingID, reviewID primitive.ObjectID) error {
	listing, ok := store.listings[listingID]
	if !ok {
		return apperrors.ErrNotFound
	}
	kept := listing.Reviews[:0:0]
	for _, id := range listing.Reviews {
		if id != reviewID {
			kept = append(kept, id)
		}
	}
	listing.Reviews = kept
	return nil
}

type fakeReviewStore struct {
	reviews map[primitive.ObjectID]*domain.Review
}

func newFakeReviewStore() *fakeReviewStore {
	return &fakeReviewStore{reviews: map[primitive.ObjectID]*domain.Review{}}
}

func (store *fakeReviewStore) Insert(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	store.reviews[review.ID] = review
	return review, nil
}

func (store *fakeReviewStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.Review, error) {
	review, ok := store.reviews[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return review, nil
}

func (store *fakeReviewStore) GetMany(ctx context.Context, ids []primitive.ObjectID) ([]*domain.Review, error) {
	found := []*domain.Review{}
	for _, id := range ids {
		if review, ok := store.reviews[id]; ok {
			found = append(found, review)
		}
	}
	return found, nil
}

func (store *fakeReviewStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := store.reviews[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(store.reviews, id)
	return nil
}

type fakeTokenCache struct {
	blocked map[string]bool
}

func newFakeTokenCache() *fakeTokenCache {
	return &fakeTokenCache{blocked: map[string]bool{}}
}

func (cache *fakeTokenCache) BlockToken(ctx context.Context, token string, ttl time.Duration) error {
	if ttl > 0 {
		cache.blocked[token] = true
	}
	return nil
}

func (cache *fakeTokenCache) IsTokenBlocked(ctx context.Context, token string) (bool, error) {
	return cache.blocked[token], nil
}

type fakeGateway struct {
	orders  []createdOrder
	fail    error
	orderID string
}

type createdOrder struct {
	amount  int64
	receipt string
	notes   map[string]interface{}
}

func (gateway *fakeGateway) CreateOrder(ctx context.Context, amount int64, receipt string, notes map[string]interface{}) (*payments.Order, error) {
	if gateway.fail != nil {
		return nil, gateway.fail
	}
	gateway.orders = append(gateway.orders, createdOrder{amount: amount, receipt: receipt, notes: notes})
	id := gateway.orderID
	if id == "" {
		id = "order_test"
	}
	return &payments.Order{ID: id, Amount: amount}, nil
}

type sentPayment struct {
	to      string
	payment mail.PaymentDetails
	listing mail.ListingDetails
	guests  int
	start   time.Time
	end     time.Time
}

type fakeMailer struct {
	welcomes []string
	codes    map[string]string
	payments []sentPayment
	fail     error
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{codes: map[string]string{}}
}

func (mailer *fakeMailer) SendWelcomeEmail(to string) error {
	if mailer.fail != nil {
		return mailer.fail
	}
	mailer.welcomes = append(mailer.welcomes, to)
	return nil
}

func (mailer *fakeMailer) SendResetCodeEmail(to, code string) error {
	if mailer.fail != nil {
		return mailer.fail
	}
	mailer.codes[to] = code
	return nil
}

func (mailer *fakeMailer) SendPaymentSuccessEmail(to string, payment mail.PaymentDetails, listing mail.ListingDetails, guests int, start, end time.Time) error {
	if mailer.fail != nil {
		return mailer.fail
	}
	mailer.payments = append(mailer.payments, sentPayment{
		to:      to,
		payment: payment,
		listing: listing,
		guests:  guests,
		start:   start,
		end:     end,
	})
	return nil
}
