// identity проверяет ID-токены Google через Firebase Auth.
package identity

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/pribylovaa/blog-service/internal/config"
	"github.com/pribylovaa/blog-service/internal/models"
	"google.golang.org/api/option"
)

var (
	// ErrInvalidToken — токен не прошёл проверку (подпись, срок, аудитория).
	ErrInvalidToken = errors.New("invalid id token")
	// ErrNoEmail — в токене нет подтверждённого email.
	ErrNoEmail = errors.New("id token has no email")
)

// tokenVerifier — часть *auth.Client, которая нужна Verifier.
type tokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// Verifier проверяет ID-токены и извлекает из них Identity.
type Verifier struct {
	client tokenVerifier
}

// New создаёт Verifier по файлу учётных данных сервисного аккаунта.
func New(ctx context.Context, cfg config.FirebaseConfig) (*Verifier, error) {
	const op = "identity/New"

	app, err := firebase.NewApp(ctx,
		&firebase.Config{ProjectID: cfg.ProjectID},
		option.WithCredentialsFile(cfg.CredentialsFile),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Verifier{client: client}, nil
}

// VerifyIDToken проверяет токен и возвращает email, имя и аватар пользователя.
func (v *Verifier) VerifyIDToken(ctx context.Context, idToken string) (*models.Identity, error) {
	const op = "identity/VerifyIDToken"

	tok, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrInvalidToken, err)
	}

	return claimsIdentity(tok.Claims, op)
}

func claimsIdentity(claims map[string]any, op string) (*models.Identity, error) {
	str := func(k string) string {
		s, _ := claims[k].(string)
		return s
	}

	id := &models.Identity{
		Email:   str("email"),
		Name:    str("name"),
		Picture: str("picture"),
	}

	if id.Email == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNoEmail)
	}

	return id, nil
}
