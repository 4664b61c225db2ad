package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"tableorder/internal/core/domain/model/identity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const callerKey = "caller"

// Claims are the custom JWT claims issued by the authentication service.
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator validates HS256 bearer tokens and attaches the caller to the request.
type Authenticator struct {
	secret []byte
	leeway time.Duration
}

func NewAuthenticator(secret string) (*Authenticator, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	return &Authenticator{secret: []byte(secret), leeway: 30 * time.Second}, nil
}

// IssueToken signs a token for the given user. The service itself does not log
// users in; this is used by tooling and tests.
func (a *Authenticator) IssueToken(userID string, role identity.Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Role:   role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Middleware reads the token from the Authorization header, or from the token
// query parameter (browsers cannot set headers on a websocket handshake).
func (a *Authenticator) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c.Request())
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, Error{
					Code:    http.StatusUnauthorized,
					Message: "missing token",
				})
			}

			caller, err := a.parse(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, Error{
					Code:    http.StatusUnauthorized,
					Message: "invalid token",
				})
			}

			c.Set(callerKey, caller)
			return next(c)
		}
	}
}

func (a *Authenticator) parse(raw string) (identity.Caller, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	}, jwt.WithLeeway(a.leeway))
	if err != nil {
		return identity.Caller{}, err
	}
	if !token.Valid {
		return identity.Caller{}, jwt.ErrTokenInvalidClaims
	}

	return identity.NewCaller(claims.UserID, claims.Role)
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get(echo.HeaderAuthorization); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return r.URL.Query().Get("token")
}

// callerFrom returns the caller set by the auth middleware. Routes outside the
// authenticated group get the zero Caller, which has no role.
func callerFrom(c echo.Context) identity.Caller {
	caller, _ := c.Get(callerKey).(identity.Caller)
	return caller
}
