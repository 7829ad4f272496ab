package application

import (
	"context"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"

	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/domain"
	apperrors "github.com/jeffrin-samuel/RoyalRetreats-FullStack/errors"
	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/mail"
	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/payments"
)

// OrderRequest is the client's ask for a provider-side payment order.
// Amount is in the provider's smallest unit (paise).
type OrderRequest struct {
	Amount int64 `json:"amount"`
	Guests int   `json:"guests"`
}

// VerifyPaymentRequest carries what the client got back from the provider
// checkout, plus the stay being booked. The signature is the only part the
// server trusts, and only after recomputing it.
type VerifyPaymentRequest struct {
	OrderID   string    `json:"razorpay_order_id"`
	PaymentID string    `json:"razorpay_payment_id"`
	Signature string    `json:"razorpay_signature"`
	ListingID string    `json:"listingId"`
	Guests    int       `json:"guests"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

type BookingResult struct {
	Success     bool   `json:"success"`
	RedirectURL string `json:"redirectUrl,omitempty"`
	Message     string `json:"message,omitempty"`
}

type BookingService struct {
	users    domain.UserStore
	listings domain.ListingStore
	gateway  payments.Gateway
	mailer   mail.Sender
	secret   string
	logger   *logrus.Logger
	tracer   trace.Tracer
}

func NewBookingService(users domain.UserStore, listings domain.ListingStore, gateway payments.Gateway, mailer mail.Sender, secret string, logger *logrus.Logger, tracer trace.Tracer) *BookingService {
	return &BookingService{
		users:    users,
		listings: listings,
		gateway:  gateway,
		mailer:   mailer,
		secret:   secret,
		logger:   logger,
		tracer:   tracer,
	}
}

// CreateOrder asks the payment provider for an order keyed by amount and
// the listing id as receipt; the listing id and guest count ride along in
// the order notes for later correlation.
func (service *BookingService) CreateOrder(ctx context.Context, listingID primitive.ObjectID, req OrderRequest) (*payments.Order, error) {
	ctx, span := service.tracer.Start(ctx, "BookingService.CreateOrder")
	defer span.End()

	if _, err := service.listings.Get(ctx, listingID); err != nil {
		if err == apperrors.ErrNotFound {
			return nil, apperrors.New(apperrors.ErrNotFound, apperrors.ListingNotFound)
		}
		return nil, err
	}

	notes := map[string]interface{}{
		"listingId": listingID.Hex(),
		"guests":    req.Guests,
	}

	order, err := service.gateway.CreateOrder(ctx, req.Amount, listingID.Hex(), notes)
	if err != nil {
		service.logger.WithError(err).Error("Error creating order")
		return nil, err
	}
	return order, nil
}

// VerifyPayment is the trust boundary of the whole booking flow: the
// booking is persisted only when the submitted signature matches the
// locally recomputed one. A mismatch is a normal outcome, not a fault;
// the caller gets a failure result and no booking is written.
//
// Nights are the absolute day difference between the submitted dates;
// end-before-start is not rejected here, a known gap kept as-is.
func (service *BookingService) VerifyPayment(ctx context.Context, userID primitive.ObjectID, req VerifyPaymentRequest) (*BookingResult, error) {
	ctx, span := service.tracer.Start(ctx, "BookingService.VerifyPayment")
	defer span.End()

	if !payments.VerifySignature(req.OrderID, req.PaymentID, req.Signature, service.secret) {
		service.logger.WithField("orderId", req.OrderID).Warn("Payment signature mismatch")
		return &BookingResult{Success: false, Message: apperrors.PaymentVerifyFailed}, nil
	}

	listingID, err := primitive.ObjectIDFromHex(req.ListingID)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrNotFound, apperrors.UserOrListingNotFound)
	}

	user, err := service.users.Get(ctx, userID)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrNotFound, apperrors.UserOrListingNotFound)
	}

	listing, err := service.listings.Get(ctx, listingID)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrNotFound, apperrors.UserOrListingNotFound)
	}

	booking := domain.Booking{
		Listing: listing.ID,
		DateRange: domain.DateRange{
			Start: req.StartDate,
			End:   req.EndDate,
		},
		PaymentInfo: domain.PaymentInfo{
			OrderID:   req.OrderID,
			PaymentID: req.PaymentID,
			Status:    domain.PaymentStatusSuccess,
		},
	}

	if err := service.users.AppendBooking(ctx, user.ID, booking); err != nil {
		return nil, err
	}

	nights := math.Abs(req.EndDate.Sub(req.StartDate).Hours()) / 24
	total := listing.Price * float64(req.Guests) * nights

	// Confirmation mail is best effort; the booking stands either way.
	err = service.mailer.SendPaymentSuccessEmail(
		user.Email,
		mail.PaymentDetails{OrderID: req.OrderID, PaymentID: req.PaymentID, Amount: total},
		mail.ListingDetails{Name: listing.Title, Location: listing.Location},
		req.Guests,
		req.StartDate,
		req.EndDate,
	)
	if err != nil {
		service.logger.WithError(err).Error("Error sending payment success email")
	}

	return &BookingResult{Success: true, RedirectURL: "/booked-trips"}, nil
}
