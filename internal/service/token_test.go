package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAccessToken_RoundTrip(t *testing.T) {
	t.Parallel()

	svc := New(nil, nil, testCfg())
	uid := primitive.NewObjectID()

	tok, err := svc.generateAccessToken(context.Background(), uid, time.Now())
	require.NoError(t, err)

	got, err := svc.ValidateAccessToken(tok)
	require.NoError(t, err)
	require.Equal(t, uid, got)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	t.Parallel()

	svc := New(nil, nil, testCfg())

	tok, err := svc.generateAccessToken(context.Background(), primitive.NewObjectID(), time.Now().Add(-2*svc.cfg.Auth.TokenTTL))
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_WrongSecretOrIssuer(t *testing.T) {
	t.Parallel()

	svc := New(nil, nil, testCfg())
	uid := primitive.NewObjectID()

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		UserID:           uid.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{Issuer: svc.cfg.Auth.Issuer, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	signed, err := foreign.SignedString([]byte("another-secret-0123456789"))
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(signed)
	require.ErrorIs(t, err, ErrInvalidToken)

	otherIssuer := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		UserID:           uid.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	signed, err = otherIssuer.SignedString([]byte(svc.cfg.Auth.JWTSecret))
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(signed)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateAccessToken("garbage")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_RejectsNoneAlg(t *testing.T) {
	t.Parallel()

	svc := New(nil, nil, testCfg())

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, accessClaims{
		UserID:           primitive.NewObjectID().Hex(),
		RegisteredClaims: jwt.RegisteredClaims{Issuer: svc.cfg.Auth.Issuer},
	})
	signed, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}
