package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/task-management/internal"
	"github.com/golang-jwt/jwt/v5"
)

const (
	HeaderUserID   = "X-User-Id"
	HeaderUserRole = "X-User-Role"
)

// IdentityResolver extracts the caller identity from trusted request metadata.
// Failures are internal.ErrMissingIdentity or internal.ErrInvalidIdentity.
type IdentityResolver interface {
	Resolve(r *http.Request) (Identity, error)
}

// HeaderResolver reads the identity from headers set by an upstream gateway.
type HeaderResolver struct{}

func NewHeaderResolver() *HeaderResolver {
	return &HeaderResolver{}
}

func (HeaderResolver) Resolve(r *http.Request) (Identity, error) {
	rawID := strings.TrimSpace(r.Header.Get(HeaderUserID))
	rawRole := strings.TrimSpace(r.Header.Get(HeaderUserRole))
	if rawID == "" || rawRole == "" {
		return Identity{}, internal.ErrMissingIdentity
	}

	callerID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return Identity{}, internal.ErrInvalidIdentity.WithCause(err)
	}
	role, err := ParseRole(rawRole)
	if err != nil {
		return Identity{}, internal.ErrInvalidIdentity.WithCause(err)
	}

	id, err := NewIdentity(callerID, role)
	if err != nil {
		return Identity{}, internal.ErrInvalidIdentity.WithCause(err)
	}
	return id, nil
}

// Claims carried by identity tokens. The subject is the caller id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTResolver reads the identity from an HS256 bearer token.
type JWTResolver struct {
	secret []byte
	issuer string
}

func NewJWTResolver(secret, issuer string) *JWTResolver {
	return &JWTResolver{secret: []byte(secret), issuer: issuer}
}

func (j *JWTResolver) Resolve(r *http.Request) (Identity, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return Identity{}, internal.ErrMissingIdentity
	}
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return Identity{}, internal.ErrInvalidIdentity
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(header[7:]), claims, func(t *jwt.Token) (interface{}, error) {
		return j.secret, nil
	}, opts...)
	if err != nil {
		return Identity{}, internal.ErrInvalidIdentity.WithCause(err)
	}

	callerID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return Identity{}, internal.ErrInvalidIdentity.WithCause(err)
	}
	role, err := ParseRole(claims.Role)
	if err != nil {
		return Identity{}, internal.ErrInvalidIdentity.WithCause(err)
	}
	id, err := NewIdentity(callerID, role)
	if err != nil {
		return Identity{}, internal.ErrInvalidIdentity.WithCause(err)
	}
	return id, nil
}

// IssueToken signs an identity token understood by JWTResolver.
func IssueToken(secret, issuer string, id Identity, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("jwt secret is empty")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	now := time.Now()
	claims := Claims{
		Role: id.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(id.CallerID, 10),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}
