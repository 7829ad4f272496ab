package casbinAuthorization

import (
	"errors"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/casbin/casbin"
	"github.com/cristalhq/jwt/v4"
	"github.com/sirupsen/logrus"

	apperrors "github.com/jeffrin-samuel/RoyalRetreats-FullStack/errors"
)

var jwtKey = []byte(os.Getenv("SECRET_KEY"))

var verifier, _ = jwt.NewVerifierHS(jwt.HS256, jwtKey)

// RoleUnauthenticated is the subject used for requests that carry no
// Authorization header at all. Requests with a broken token are rejected
// outright instead of being downgraded to this role.
const RoleUnauthenticated = "Unauthenticated"

func parseToken(tokenString string) (*jwt.Token, error) {
	token, err := jwt.Parse([]byte(tokenString), verifier)
	if err != nil {
		logrus.WithError(err).Warn("Error parsing token")
		return nil, err
	}
	return token, nil
}

func extractRole(r *http.Request) (string, error) {
	bearer := r.Header.Get("Authorization")
	if bearer == "" {
		return RoleUnauthenticated, nil
	}

	bearerToken := strings.Split(bearer, "Bearer ")
	if len(bearerToken) != 2 {
		return "", errors.New("invalid token format")
	}

	token, err := parseToken(bearerToken[1])
	if err != nil {
		return "", err
	}

	claims := extractClaims(token)
	role, ok := claims["role"]
	if !ok {
		logrus.Warn("role claim not found in token")
		return "", errors.New("role claim not found in token")
	}

	return role, nil
}

func extractClaims(token *jwt.Token) map[string]string {
	var claims map[string]string

	err := jwt.ParseClaims(token.Bytes(), verifier, &claims)
	if err != nil {
		logrus.WithError(err).Warn("Error parsing claims")
	}

	return claims
}

// CasbinMiddleware gates every route by (role, path, method) against the
// loaded policy. An anonymous request denied here gets the same treatment
// the login guard gives it, JSON 401 for API clients and a login redirect
// for everyone else, so the two layers stay indistinguishable to callers.
func CasbinMiddleware(e *casbin.Enforcer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			userRole, err := extractRole(r)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			res, err := e.EnforceSafe(userRole, r.URL.Path, r.Method)
			if err != nil {
				logrus.WithError(err).Error("enforce error")
				http.Error(w, "unauthorized user", http.StatusUnauthorized)
				return
			}

			if res {
				next.ServeHTTP(w, r)
				return
			}

			if userRole == RoleUnauthenticated {
				denyAnonymous(w, r)
				return
			}
			http.Error(w, "forbidden", http.StatusForbidden)
		}

		return http.HandlerFunc(fn)
	}
}

func denyAnonymous(w http.ResponseWriter, r *http.Request) {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"` + apperrors.LoginRequired + `"}`))
		return
	}
	http.Redirect(w, r, "/login?redirect="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
}
