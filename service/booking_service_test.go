package application

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/domain"
	apperrors "github.com/jeffrin-samuel/RoyalRetreats-FullStack/errors"
)

const bookingSecret = "booking_test_secret"

func sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(bookingSecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func newBookingFixture() (*BookingService, *fakeUserStore, *fakeListingStore, *fakeGateway, *fakeMailer) {
	users := newFakeUserStore()
	listings := newFakeListingStore()
	gateway := &fakeGateway{}
	mailer := newFakeMailer()
	service := NewBookingService(users, listings, gateway, mailer, bookingSecret, testLogger(), testTracer())
	return service, users, listings, gateway, mailer
}

func TestCreateOrderPassesListingAndGuestsAlong(t *testing.T) {
	service, _, listings, gateway, _ := newBookingFixture()
	listing := listings.add(&domain.Listing{Title: "Beach Hut", Price: 1200})

	order, err := service.CreateOrder(context.Background(), listing.ID, OrderRequest{Amount: 360000, Guests: 3})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.Amount != 360000 {
		t.Fatalf("order amount = %d, want 360000", order.Amount)
	}

	if len(gateway.orders) != 1 {
		t.Fatalf("gateway calls = %d, want 1", len(gateway.orders))
	}
	created := gateway.orders[0]
	if created.receipt != listing.ID.Hex() {
		t.Errorf("receipt = %q, want listing id", created.receipt)
	}
	if created.notes["listingId"] != listing.ID.Hex() {
		t.Errorf("notes listingId = %v, want listing id", created.notes["listingId"])
	}
	if created.notes["guests"] != 3 {
		t.Errorf("notes guests = %v, want 3", created.notes["guests"])
	}
}

func TestCreateOrderUnknownListing(t *testing.T) {
	service, _, _, gateway, _ := newBookingFixture()

	_, err := service.CreateOrder(context.Background(), primitive.NewObjectID(), OrderRequest{Amount: 100, Guests: 1})
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	if len(gateway.orders) != 0 {
		t.Fatal("no order should be created for a missing listing")
	}
}

func TestVerifyPaymentTamperedSignature(t *testing.T) {
	service, users, listings, _, mailer := newBookingFixture()
	user := users.add(&domain.User{Username: "mina", Email: "mina@example.com"})
	listing := listings.add(&domain.Listing{Title: "Villa", Price: 5000})

	result, err := service.VerifyPayment(context.Background(), user.ID, VerifyPaymentRequest{
		OrderID:   "order_1",
		PaymentID: "pay_1",
		Signature: "definitely-not-valid",
		ListingID: listing.ID.Hex(),
		Guests:    2,
		StartDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("VerifyPayment: %v", err)
	}

	if result.Success {
		t.Fatal("tampered signature must not verify")
	}
	if result.Message != apperrors.PaymentVerifyFailed {
		t.Errorf("message = %q, want %q", result.Message, apperrors.PaymentVerifyFailed)
	}
	if len(user.Bookings) != 0 {
		t.Fatal("no booking may be written on a failed verification")
	}
	if len(mailer.payments) != 0 {
		t.Fatal("no confirmation mail on a failed verification")
	}
}

func TestVerifyPaymentBooksAndNotifies(t *testing.T) {
	service, users, listings, _, mailer := newBookingFixture()
	user := users.add(&domain.User{Username: "mina", Email: "mina@example.com"})
	listing := listings.add(&domain.Listing{Title: "Villa", Location: "Goa", Price: 5000})

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)

	result, err := service.VerifyPayment(context.Background(), user.ID, VerifyPaymentRequest{
		OrderID:   "order_1",
		PaymentID: "pay_1",
		Signature: sign("order_1", "pay_1"),
		ListingID: listing.ID.Hex(),
		Guests:    2,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		t.Fatalf("VerifyPayment: %v", err)
	}
	if !result.Success {
		t.Fatalf("verification failed: %s", result.Message)
	}
	if result.RedirectURL != "/booked-trips" {
		t.Errorf("redirect = %q, want /booked-trips", result.RedirectURL)
	}

	if len(user.Bookings) != 1 {
		t.Fatalf("bookings = %d, want 1", len(user.Bookings))
	}
	booking := user.Bookings[0]
	if booking.Listing != listing.ID {
		t.Errorf("booking listing = %v, want %v", booking.Listing, listing.ID)
	}
	if booking.PaymentInfo.Status != domain.PaymentStatusSuccess {
		t.Errorf("status = %q, want %q", booking.PaymentInfo.Status, domain.PaymentStatusSuccess)
	}
	if !booking.DateRange.Start.Equal(start) || !booking.DateRange.End.Equal(end) {
		t.Errorf("date range = %v..%v, want %v..%v", booking.DateRange.Start, booking.DateRange.End, start, end)
	}

	if len(mailer.payments) != 1 {
		t.Fatalf("payment mails = %d, want 1", len(mailer.payments))
	}
	sent := mailer.payments[0]
	if sent.to != user.Email {
		t.Errorf("mail to = %q, want %q", sent.to, user.Email)
	}
	// 3 nights x 2 guests x 5000
	if sent.payment.Amount != 30000 {
		t.Errorf("mail amount = %v, want 30000", sent.payment.Amount)
	}
	if sent.listing.Name != "Villa" || sent.listing.Location != "Goa" {
		t.Errorf("mail listing = %+v", sent.listing)
	}
}

func TestVerifyPaymentMissingUserOrListing(t *testing.T) {
	service, users, listings, _, _ := newBookingFixture()
	user := users.add(&domain.User{Username: "mina", Email: "mina@example.com"})
	listing := listings.add(&domain.Listing{Title: "Villa", Price: 5000})

	valid := VerifyPaymentRequest{
		OrderID:   "order_1",
		PaymentID: "pay_1",
		Signature: sign("order_1", "pay_1"),
		ListingID: listing.ID.Hex(),
		Guests:    1,
		StartDate: time.Now(),
		EndDate:   time.Now().AddDate(0, 0, 1),
	}

	_, err := service.VerifyPayment(context.Background(), primitive.NewObjectID(), valid)
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("missing user: err = %v, want not found", err)
	}

	missingListing := valid
	missingListing.ListingID = primitive.NewObjectID().Hex()
	_, err = service.VerifyPayment(context.Background(), user.ID, missingListing)
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("missing listing: err = %v, want not found", err)
	}
}

func TestVerifyPaymentMailFailureSwallowed(t *testing.T) {
	service, users, listings, _, mailer := newBookingFixture()
	mailer.fail = errors.New("smtp down")
	user := users.add(&domain.User{Username: "mina", Email: "mina@example.com"})
	listing := listings.add(&domain.Listing{Title: "Villa", Price: 5000})

	result, err := service.VerifyPayment(context.Background(), user.ID, VerifyPaymentRequest{
		OrderID:   "order_1",
		PaymentID: "pay_1",
		Signature: sign("order_1", "pay_1"),
		ListingID: listing.ID.Hex(),
		Guests:    1,
		StartDate: time.Now(),
		EndDate:   time.Now().AddDate(0, 0, 2),
	})
	if err != nil {
		t.Fatalf("VerifyPayment: %v", err)
	}
	if !result.Success {
		t.Fatal("mail failure must not fail the booking")
	}
	if len(user.Bookings) != 1 {
		t.Fatal("booking must be persisted despite the mail failure")
	}
}
