package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"learning-service/internal/middleware"
	"learning-service/internal/models"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// JWTService issues and verifies HS256 access tokens.
type JWTService struct {
	secret []byte
	expiry time.Duration
	issuer string
}

func NewJWTService(secret string, expiry time.Duration) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		expiry: expiry,
		issuer: "learning-service",
	}
}

func (s *JWTService) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := middleware.Claims{
		UserID: user.ID.Hex(),
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   user.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *JWTService) Verify(tokenStr string) (*middleware.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &middleware.Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*middleware.Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Expiry reports the configured token lifetime, used for cookie max-age.
func (s *JWTService) Expiry() time.Duration {
	return s.expiry
}
