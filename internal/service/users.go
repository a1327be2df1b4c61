package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/pribylovaa/blog-service/internal/models"
	"github.com/pribylovaa/blog-service/internal/pkg/log"
	"github.com/pribylovaa/blog-service/internal/pkg/sanitize"
	"github.com/pribylovaa/blog-service/internal/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	maxBioLen = 150

	msgUsernameShort = "Username should be at least 3 letters long"
	msgBioLong       = "Bio should not be more than 150 characters"
	msgUsernameTaken = "Username is already taken"
	msgImgURL        = "You must provide a valid image url"
	userAbsent       = "User not found"
)

// socialNetworks — порядок проверки ссылок профиля.
var socialNetworks = []string{"youtube", "instagram", "facebook", "twitter", "github", "website"}

// Profile возвращает публичный профиль по username.
func (s *Service) Profile(ctx context.Context, username string) (*models.User, error) {
	const op = "service/users/Profile"

	lg := log.From(ctx).With("op", op, "username", username)

	user, err := s.storage.UserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, fromStorage(lg, err, userAbsent))
	}

	return user, nil
}

// SearchUsers ищет пользователей по подстроке username.
func (s *Service) SearchUsers(ctx context.Context, query string) ([]models.AuthorRef, error) {
	const op = "service/users/SearchUsers"

	lg := log.From(ctx).With("op", op, "query", query)

	query = sanitize.Text(query)
	if query == "" {
		return []models.AuthorRef{}, nil
	}

	out, err := s.storage.SearchUsers(ctx, query, s.cfg.Limits.Users)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, fromStorage(lg, err, ""))
	}

	return out, nil
}

// UpdateProfileImg заменяет аватар и возвращает новую ссылку.
func (s *Service) UpdateProfileImg(ctx context.Context, userID primitive.ObjectID, imgURL string) (string, error) {
	const op = "service/users/UpdateProfileImg"

	lg := log.From(ctx).With("op", op, "user_id", userID.Hex())

	imgURL = strings.TrimSpace(imgURL)
	if u, err := url.Parse(imgURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		lg.Warn("invalid argument: image url")

		return "", fmt.Errorf("%s: %w", op, newError(ErrInvalidArgument, msgImgURL))
	}

	if err := s.storage.UpdateProfileImg(ctx, userID, imgURL); err != nil {
		return "", fmt.Errorf("%s: %w", op, fromStorage(lg, err, userAbsent))
	}

	return imgURL, nil
}

// UpdateProfile обновляет username, bio и ссылки на соцсети.
//
// Валидация:
//   - username не короче 3 символов, bio не длиннее 150;
//   - ссылка соцсети — полный https URL, хост которого содержит имя сети
//     (website — любой http/https URL).
//
// Поведение:
//   - занятый username — ErrConflict ("Username is already taken").
func (s *Service) UpdateProfile(ctx context.Context, userID primitive.ObjectID, update models.ProfileUpdate) (string, error) {
	const op = "service/users/UpdateProfile"

	lg := log.From(ctx).With("op", op, "user_id", userID.Hex())

	update.Username = strings.TrimSpace(update.Username)
	update.Bio = sanitize.Text(update.Bio)

	if utf8.RuneCountInString(update.Username) < 3 {
		lg.Warn("invalid argument: short username")

		return "", fmt.Errorf("%s: %w", op, newError(ErrInvalidArgument, msgUsernameShort))
	}

	if utf8.RuneCountInString(update.Bio) > maxBioLen {
		lg.Warn("invalid argument: long bio")

		return "", fmt.Errorf("%s: %w", op, newError(ErrInvalidArgument, msgBioLong))
	}

	if err := validateSocialLinks(update.SocialLinks); err != nil {
		lg.Warn("invalid argument: social links", "err", err)

		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.UpdateProfile(ctx, userID, update); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			lg.Warn("username already taken")

			return "", fmt.Errorf("%s: %w", op, newError(ErrConflict, msgUsernameTaken))
		}

		return "", fmt.Errorf("%s: %w", op, fromStorage(lg, err, userAbsent))
	}

	return update.Username, nil
}

func validateSocialLinks(links models.SocialLinks) error {
	all := links.Map()

	for _, network := range socialNetworks {
		raw := strings.TrimSpace(all[network])
		if raw == "" {
			continue
		}

		u, err := url.Parse(raw)
		if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
			return newError(ErrInvalidArgument, "You must provide full social links with http(s) included")
		}

		if network == "website" {
			continue
		}

		if u.Scheme != "https" || !strings.Contains(strings.ToLower(u.Hostname()), network+".com") {
			return newError(ErrInvalidArgument, fmt.Sprintf("%s link is invalid. You must enter a full link", network))
		}
	}

	return nil
}
