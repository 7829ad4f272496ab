package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/jeffrin-samuel/RoyalRetreats-FullStack/errors"
)

// Currency is fixed; the provider settles everything in INR.
const Currency = "INR"

type Order struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
}

// Gateway creates provider-side payment orders. The signing secret never
// leaves the process; signature checks happen locally, see VerifySignature.
type Gateway interface {
	CreateOrder(ctx context.Context, amount int64, receipt string, notes map[string]interface{}) (*Order, error)
}

type RazorpayGateway struct {
	client *razorpay.Client
	logger *logrus.Logger
	tracer trace.Tracer
	cb     *gobreaker.CircuitBreaker
}

func NewRazorpayGateway(keyID, keySecret string, logger *logrus.Logger, tracer trace.Tracer) *RazorpayGateway {
	return &RazorpayGateway{
		client: razorpay.NewClient(keyID, keySecret),
		logger: logger,
		tracer: tracer,
		cb:     CircuitBreaker("razorpay"),
	}
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, amount int64, receipt string, notes map[string]interface{}) (*Order, error) {
	ctx, span := g.tracer.Start(ctx, "RazorpayGateway.CreateOrder")
	defer span.End()

	data := map[string]interface{}{
		"amount":   amount,
		"currency": Currency,
		"receipt":  receipt,
		"notes":    notes,
	}

	result, err := g.cb.Execute(func() (interface{}, error) {
		return g.client.Order.Create(data, nil)
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		g.logger.WithError(err).Error("Error creating order")
		return nil, apperrors.New(apperrors.ErrUpstream, "order creation failed")
	}

	body, ok := result.(map[string]interface{})
	if !ok {
		return nil, apperrors.New(apperrors.ErrUpstream, "unexpected order response")
	}

	id, _ := body["id"].(string)
	if id == "" {
		return nil, apperrors.New(apperrors.ErrUpstream, "order response missing id")
	}

	return &Order{ID: id, Amount: amount}, nil
}

// VerifySignature recomputes the provider signature, HMAC-SHA256 over
// "orderID|paymentID" keyed with the signing secret, and compares it in
// constant time. Callers get a bare yes/no, never which half differed.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func CircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(
		gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     10 * time.Second,
			Interval:    0,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 2
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				logrus.Infof("Circuit Breaker '%s' changed from '%s' to '%s'", name, from, to)
			},
		},
	)
}
