package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/roadsafety/backend/libs/auth"
)

const accessTokenType = "access"

// accessClaims is the payload of an access token
type accessClaims struct {
	UserID *int   `json:"user_id"`
	Role   *int   `json:"role"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

// TokenGenerator signs and validates HS256 access tokens
type TokenGenerator struct {
	secret            []byte
	accessTokenExpiry time.Duration
	now               func() time.Time
}

// NewTokenGenerator creates a new token generator
func NewTokenGenerator(secret string, accessExpiry time.Duration) *TokenGenerator {
	return &TokenGenerator{
		secret:            []byte(secret),
		accessTokenExpiry: accessExpiry,
		now:               time.Now,
	}
}

// GenerateAccessToken signs an access token holding the user ID and role
func (tg *TokenGenerator) GenerateAccessToken(userID int, role auth.Role) (string, error) {
	now := tg.now()
	r := int(role)
	claims := accessClaims{
		UserID: &userID,
		Role:   &r,
		Type:   accessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tg.accessTokenExpiry)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tg.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// ValidateAccessToken validates an access token and returns the userID and role
func (tg *TokenGenerator) ValidateAccessToken(tokenString string) (int, auth.Role, error) {
	var claims accessClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return tg.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return 0, 0, fmt.Errorf("token is invalid")
	}
	if claims.Type != accessTokenType {
		return 0, 0, fmt.Errorf("token is not an access token")
	}
	if claims.UserID == nil {
		return 0, 0, fmt.Errorf("user_id not found in token")
	}
	if claims.Role == nil {
		return 0, 0, fmt.Errorf("role not found in token")
	}

	return *claims.UserID, auth.Role(*claims.Role), nil
}

// Authenticate resolves a bearer token to a principal
func (tg *TokenGenerator) Authenticate(tokenString string) (auth.Principal, error) {
	userID, role, err := tg.ValidateAccessToken(tokenString)
	if err != nil {
		return auth.Principal{}, err
	}
	return auth.Principal{UserID: userID, Role: role}, nil
}
