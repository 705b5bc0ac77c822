package processor

import (
	"errors"

	"voice-bridge/internal/observability"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "voice-bridge"

// RoleOperator is the only role allowed on the operator API.
const RoleOperator = "operator"

var ErrInvalidJWTToken = errors.New("invalid jwt token")

var ErrParseJWTToken = errors.New("failed to parse jwt token")

var ErrExpiredToken = errors.New("token expired")

var ErrForbiddenRole = errors.New("token does not carry the operator role")

var ErrMissingSecret = errors.New("jwt secret is not configured")

type AuthProcessor struct {
	jwtSecret string
	logger    *observability.Logger
}

func New(jwtSecret string, logger *observability.Logger) AuthProcessor {
	return AuthProcessor{
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

type BaseClaims struct {
	ExpirationTime *jwt.NumericDate `json:"exp"`
	IssuedAt       *jwt.NumericDate `json:"iat"`
	NotBefore      *jwt.NumericDate `json:"nbf"`
	Issuer         string           `json:"iss"`
	Subject        string           `json:"sub"`
	Audience       jwt.ClaimStrings `json:"aud"`
	Role           string           `json:"role"`
}
