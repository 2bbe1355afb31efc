package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"taxi-booking-service/internal/model"
)

const issuer = "taxi-booking-service"

type Claims struct {
	AccountID uuid.UUID      `json:"account_id"`
	Role      model.UserRole `json:"role"`
	ProfileID *uuid.UUID     `json:"profile_id,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) Principal() model.Principal {
	return model.Principal{
		AccountID: c.AccountID,
		Role:      c.Role,
		ProfileID: c.ProfileID,
	}
}

type Parser struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewParser(secret string, ttl time.Duration) *Parser {
	return &Parser{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs an HS256 access token for the principal.
func (p *Parser) Issue(principal model.Principal) (string, time.Time, error) {
	now := p.now()
	expiresAt := now.Add(p.ttl)
	claims := Claims{
		AccountID: principal.AccountID,
		Role:      principal.Role,
		ProfileID: principal.ProfileID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.AccountID.String(),
			Issuer:    issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (p *Parser) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if !claims.Role.Valid() {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return claims, nil
}
