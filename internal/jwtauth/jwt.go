// Package jwtauth issues and validates the HS256 bearer tokens officers
// authenticate with.
package jwtauth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "github.com/teddybearwork/pickme/pkg/domain"
	dErrors "github.com/teddybearwork/pickme/pkg/domain-errors"
)

const (
	issuer   = "pickme"
	audience = "pickme-api"
)

// Claims are the token claims carried by an officer session.
type Claims struct {
	OfficerID   string `json:"officer_id"`
	BadgeNumber string `json:"badge_number"`
	jwt.RegisteredClaims
}

// Service handles token creation and validation.
type Service struct {
	signingKey []byte
}

func NewService(signingKey string) (*Service, error) {
	if signingKey == "" {
		return nil, errors.New("signing key is required")
	}
	return &Service{signingKey: []byte(signingKey)}, nil
}

// Generate issues a token for the officer, valid for expiresIn.
func (s *Service) Generate(officerID id.OfficerID, badgeNumber string, expiresIn time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		OfficerID:   officerID.String(),
		BadgeNumber: badgeNumber,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    issuer,
			Audience:  []string{audience},
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.signingKey)
}

// Validate parses and verifies a token, returning its claims.
func (s *Service) Validate(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// ExtractOfficerID validates the token and returns the officer it belongs to.
func (s *Service) ExtractOfficerID(tokenString string) (id.OfficerID, error) {
	claims, err := s.Validate(tokenString)
	if err != nil {
		return id.OfficerID{}, err
	}
	return id.ParseOfficerID(claims.OfficerID)
}
