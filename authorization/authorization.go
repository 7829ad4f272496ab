package authorization

import (
	"strings"
	"time"

	"github.com/cristalhq/jwt/v4"

	apperrors "github.com/jeffrin-samuel/RoyalRetreats-FullStack/errors"
)

// Claims carried by a session token. UserID is the hex form of the user's
// ObjectID so guards can compare it against document owners directly.
type Claims struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

const RoleUser = "User"

type TokenManager struct {
	signer   jwt.Signer
	verifier jwt.Verifier
	lifetime time.Duration
}

func NewTokenManager(secret string, lifetime time.Duration) (*TokenManager, error) {
	key := []byte(secret)
	signer, err := jwt.NewSignerHS(jwt.HS256, key)
	if err != nil {
		return nil, err
	}
	verifier, err := jwt.NewVerifierHS(jwt.HS256, key)
	if err != nil {
		return nil, err
	}
	return &TokenManager{
		signer:   signer,
		verifier: verifier,
		lifetime: lifetime,
	}, nil
}

func (tm *TokenManager) Generate(userID, username string) (string, error) {
	builder := jwt.NewBuilder(tm.signer)

	claims := &Claims{
		UserID:    userID,
		Username:  username,
		Role:      RoleUser,
		ExpiresAt: time.Now().Add(tm.lifetime),
	}

	token, err := builder.Build(claims)
	if err != nil {
		return "", err
	}
	return token.String(), nil
}

// Verify parses and validates a raw token and returns its claims. Expired
// tokens are reported as unauthorized, same as tampered ones.
func (tm *TokenManager) Verify(raw string) (*Claims, error) {
	token, err := jwt.Parse([]byte(raw), tm.verifier)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	var claims Claims
	if err := jwt.ParseClaims(token.Bytes(), tm.verifier, &claims); err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	if time.Now().After(claims.ExpiresAt) {
		return nil, apperrors.ErrUnauthorized
	}

	return &claims, nil
}

// ExtractBearer pulls the raw token out of an Authorization header value.
func ExtractBearer(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.Split(header, "Bearer ")
	if len(parts) != 2 {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
