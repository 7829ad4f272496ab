package domain

import (
	"context"
	"time"
)

// TokenCache blocklists session tokens on logout until their natural expiry.
type TokenCache interface {
	BlockToken(ctx context.Context, token string, ttl time.Duration) error
	IsTokenBlocked(ctx context.Context, token string) (bool, error)
}
