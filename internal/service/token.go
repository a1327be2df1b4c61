package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pribylovaa/blog-service/internal/pkg/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidToken — access-токен некорректен по формату/подписи или истёк.
var ErrInvalidToken = errors.New("invalid token")

type accessClaims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// generateAccessToken генерирует access-токен (HS256, claim id = _id пользователя).
func (s *Service) generateAccessToken(ctx context.Context, userID primitive.ObjectID, now time.Time) (string, error) {
	const op = "service/token/generateAccessToken"

	claims := accessClaims{
		UserID: userID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.Auth.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.cfg.Auth.Issuer,
			Subject:   userID.Hex(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Auth.JWTSecret))
	if err != nil {
		log.From(ctx).Error("access token sign failed", "op", op, "err", err)

		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// ValidateAccessToken проверяет access-токен и возвращает _id пользователя.
// Любая проблема с токеном — ErrInvalidToken.
func (s *Service) ValidateAccessToken(tokenStr string) (primitive.ObjectID, error) {
	const op = "service/token/ValidateAccessToken"

	token, err := jwt.ParseWithClaims(tokenStr, &accessClaims{},
		func(t *jwt.Token) (any, error) {
			return []byte(s.cfg.Auth.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(5*time.Second),
		jwt.WithIssuer(s.cfg.Auth.Issuer),
	)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%s: %w: %v", op, ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return primitive.NilObjectID, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	uid, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return uid, nil
}
