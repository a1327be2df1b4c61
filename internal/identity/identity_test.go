package identity

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	tok *auth.Token
	err error
}

func (f fakeVerifier) VerifyIDToken(context.Context, string) (*auth.Token, error) {
	return f.tok, f.err
}

func TestVerifyIDToken_ExtractsClaims(t *testing.T) {
	t.Parallel()

	v := &Verifier{client: fakeVerifier{tok: &auth.Token{Claims: map[string]any{
		"email":   "ann@example.com",
		"name":    "Ann Lee",
		"picture": "https://lh3.googleusercontent.com/a/photo=s96-c",
	}}}}

	id, err := v.VerifyIDToken(context.Background(), "token")
	require.NoError(t, err)
	require.Equal(t, "ann@example.com", id.Email)
	require.Equal(t, "Ann Lee", id.Name)
	require.Equal(t, "https://lh3.googleusercontent.com/a/photo=s96-c", id.Picture)
}

func TestVerifyIDToken_Invalid(t *testing.T) {
	t.Parallel()

	v := &Verifier{client: fakeVerifier{err: errors.New("signature mismatch")}}

	_, err := v.VerifyIDToken(context.Background(), "token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyIDToken_NoEmail(t *testing.T) {
	t.Parallel()

	v := &Verifier{client: fakeVerifier{tok: &auth.Token{Claims: map[string]any{"name": "x"}}}}

	_, err := v.VerifyIDToken(context.Background(), "token")
	require.ErrorIs(t, err, ErrNoEmail)
}
