// Package auth issues and verifies the session tokens handed out after a
// successful OTP check.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mori-tea/mori/internal/common"
	"github.com/mori-tea/mori/internal/server/models"
)

const (
	DefaultAccessTTL  = 5 * time.Minute
	DefaultRefreshTTL = 12 * time.Hour
)

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// Identity is who a token speaks for. CentraID is set for Centra users and
// WarehouseID for XYZ users, resolved by the caller before issuance.
type Identity struct {
	UserID      int64
	Role        models.Role
	Name        string
	CentraID    *int64
	WarehouseID *int64
}

// Claims is the JWT payload.
type Claims struct {
	jwt.RegisteredClaims
	Role        models.Role `json:"role"`
	Name        string      `json:"name"`
	CentraID    *int64      `json:"centralID,omitempty"`
	WarehouseID *int64      `json:"warehouse_id,omitempty"`
	Type        TokenType   `json:"typ"`
}

func (c *Claims) Identity() (Identity, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return Identity{}, common.ErrInvalidToken
	}
	return Identity{
		UserID:      id,
		Role:        c.Role,
		Name:        c.Name,
		CentraID:    c.CentraID,
		WarehouseID: c.WarehouseID,
	}, nil
}

// Token is a signed token together with the metadata callers may persist.
type Token struct {
	Value     string
	ID        string
	ExpiresAt time.Time
}

type Option func(*Issuer)

// WithClock replaces time.Now, for tests that simulate expiry.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

// Issuer signs and verifies tokens with a single HMAC secret. It is
// immutable after construction.
type Issuer struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

var supportedAlgorithms = map[string]bool{"HS256": true, "HS384": true, "HS512": true}

func NewIssuer(secret []byte, algorithm string, accessTTL, refreshTTL time.Duration, opts ...Option) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwt secret is required")
	}
	if !supportedAlgorithms[algorithm] {
		return nil, fmt.Errorf("unsupported jwt algorithm %q", algorithm)
	}
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}

	i := &Issuer{
		secret:     secret,
		method:     jwt.GetSigningMethod(algorithm),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, o := range opts {
		o(i)
	}
	return i, nil
}

func (i *Issuer) IssueAccess(id Identity) (*Token, error) {
	return i.issue(id, AccessToken, i.accessTTL)
}

func (i *Issuer) IssueRefresh(id Identity) (*Token, error) {
	return i.issue(id, RefreshToken, i.refreshTTL)
}

func (i *Issuer) issue(id Identity, typ TokenType, ttl time.Duration) (*Token, error) {
	now := i.now()
	jti := uuid.NewString()
	exp := now.Add(ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.FormatInt(id.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Role: id.Role,
		Name: id.Name,
		Type: typ,
	}

	switch id.Role {
	case models.RoleCentra:
		claims.CentraID = id.CentraID
	case models.RoleXYZ:
		claims.WarehouseID = id.WarehouseID
	}

	signed, err := jwt.NewWithClaims(i.method, claims).SignedString(i.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &Token{Value: signed, ID: jti, ExpiresAt: exp.Truncate(time.Second)}, nil
}

// Verify checks signature, algorithm and expiry. Expired tokens yield
// common.ErrTokenExpired, everything else common.ErrInvalidToken.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{i.method.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

func (i *Issuer) VerifyAccess(tokenString string) (*Claims, error) {
	return i.verifyType(tokenString, AccessToken)
}

func (i *Issuer) VerifyRefresh(tokenString string) (*Claims, error) {
	return i.verifyType(tokenString, RefreshToken)
}

func (i *Issuer) verifyType(tokenString string, typ TokenType) (*Claims, error) {
	claims, err := i.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != typ {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}
