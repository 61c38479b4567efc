package service

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/campushq/college-portal-api/internal/models"
	appErrors "github.com/campushq/college-portal-api/pkg/errors"
)

// TokenService verifies access tokens issued by the campus identity
// provider. Tokens are never minted here; this service only checks the
// signature and extracts the college-scoped claims.
type TokenService struct {
	secret []byte
	logger *zap.Logger
}

// NewTokenService constructs a TokenService with the shared HS256 secret.
func NewTokenService(secret string, logger *zap.Logger) *TokenService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenService{secret: []byte(secret), logger: logger}
}

// ValidateToken parses and validates an access token returning the claims.
func (s *TokenService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if claims.CollegeID == "" && claims.Role != models.RoleSuperAdmin {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token is missing college scope")
	}

	return claims, nil
}
