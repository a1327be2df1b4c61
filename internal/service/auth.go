package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pribylovaa/blog-service/internal/models"
	"github.com/pribylovaa/blog-service/internal/pkg/log"
	"github.com/pribylovaa/blog-service/internal/pkg/redact"
	"github.com/pribylovaa/blog-service/internal/pkg/sanitize"
	"github.com/pribylovaa/blog-service/internal/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgFullnameShort   = "Fullname must be at least 3 letters long"
	msgEmailEmpty      = "Enter Email"
	msgEmailInvalid    = "Email is invalid"
	msgPasswordWeak    = "Password should be 6 to 20 characters long with a numeric, 1 lowercase and 1 uppercase letters"
	msgEmailTaken      = "Email already exists"
	msgEmailNotFound   = "Email not found"
	msgUseGoogle       = "Account was created using google. Try logging in with google."
	msgWrongPassword   = "Incorrect password"
	msgUsePassword     = "This email was signed up without google. Please log in with password to access the account"
	msgGoogleFailed    = "Failed to authenticate you with google. Try with some other google account"
	msgGoogleDisabled  = "Google authentication is not configured"
	msgGooglePassword  = "You can't change account's password because you logged in through google"
	msgCurrentPassword = "Incorrect current password"
)

var emailRe = regexp.MustCompile(`^\w+([\.-]?\w+)*@\w+([\.-]?\w+)*(\.\w{2,3})+$`)

// Session — результат входа: access-токен и пользователь.
type Session struct {
	AccessToken string
	User        *models.User
}

// SignUp регистрирует пользователя по email и паролю.
//
// Валидация:
//   - fullname не короче 3 символов;
//   - email в допустимом формате;
//   - пароль 6–20 символов, минимум одна цифра, строчная и заглавная буква.
//
// Поведение:
//   - занятый email — ErrConflict ("Email already exists");
//   - username берётся из локальной части email (с коротким суффиксом, если занят);
//   - аватар по умолчанию выбирается случайно.
func (s *Service) SignUp(ctx context.Context, fullname, email, password string) (*Session, error) {
	const op = "service/auth/SignUp"

	email = normalizeEmail(email)
	lg := log.From(ctx).With("op", op, "email", redact.Email(email))

	fullname = sanitize.Text(fullname)
	if utf8.RuneCountInString(fullname) < 3 {
		lg.Warn("invalid argument: short fullname")

		return nil, fmt.Errorf("%s: %w", op, newError(ErrInvalidArgument, msgFullnameShort))
	}

	if err := validateEmail(email); err != nil {
		lg.Warn("invalid argument: email")

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !validPassword(password) {
		lg.Warn("invalid argument: weak password")

		return nil, fmt.Errorf("%s: %w", op, newError(ErrInvalidArgument, msgPasswordWeak))
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		lg.Error("hash password failed", "err", err)

		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	user, err := s.createUser(ctx, models.User{
		PersonalInfo: models.PersonalInfo{
			Fullname:   fullname,
			Email:      email,
			Password:   hash,
			ProfileImg: defaultProfileImg(),
		},
	})
	if err != nil {
		if errors.Is(err, storage.ErrUsernameTaken) {
			lg.Error("no free username", "err", err)

			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}

		if errors.Is(err, storage.ErrConflict) {
			lg.Warn("email already exists")

			return nil, fmt.Errorf("%s: %w", op, newError(ErrConflict, msgEmailTaken))
		}

		return nil, fmt.Errorf("%s: %w", op, fromStorage(lg, err, ""))
	}

	lg.Info("user signed up", "user_id", user.ID.Hex())

	return s.issueSession(ctx, user)
}

// SignIn выполняет вход по email и паролю.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	const op = "service/auth/SignIn"

	email = normalizeEmail(email)
	lg := log.From(ctx).With("op", op, "email", redact.Email(email))

	user, err := s.storage.UserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storageError(lg, err, ErrInvalidArgument, msgEmailNotFound))
	}

	if user.GoogleAuth {
		lg.Warn("password sign in for google account")

		return nil, fmt.Errorf("%s: %w", op, newError(ErrInvalidArgument, msgUseGoogle))
	}

	if !checkPassword(user.PersonalInfo.Password, password) {
		lg.Warn("incorrect password")

		return nil, fmt.Errorf("%s: %w", op, newError(ErrInvalidArgument, msgWrongPassword))
	}

	return s.issueSession(ctx, user)
}

// GoogleAuth выполняет вход по Google ID-токену.
// Пользователь без google_auth (зарегистрированный по паролю) получает ошибку;
// новый пользователь создаётся с google_auth=true.
func (s *Service) GoogleAuth(ctx context.Context, idToken string) (*Session, error) {
	const op = "service/auth/GoogleAuth"

	lg := log.From(ctx).With("op", op)

	if s.identity == nil {
		lg.Warn("google auth is disabled")

		return nil, fmt.Errorf("%s: %w", op, newError(ErrUnauthenticated, msgGoogleDisabled))
	}

	id, err := s.identity.VerifyIDToken(ctx, idToken)
	if err != nil {
		lg.Warn("id token rejected", "err", err)

		return nil, fmt.Errorf("%s: %w", op, newError(ErrUnauthenticated, msgGoogleFailed))
	}

	email := normalizeEmail(id.Email)
	lg = lg.With("email", redact.Email(email))

	user, err := s.storage.UserByEmail(ctx, email)
	switch {
	case err == nil:
		if !user.GoogleAuth {
			lg.Warn("google sign in for password account")

			return nil, fmt.Errorf("%s: %w", op, newError(ErrInvalidArgument, msgUsePassword))
		}

		return s.issueSession(ctx, user)
	case !errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("%s: %w", op, fromStorage(lg, err, ""))
	}

	fullname := sanitize.Text(id.Name)
	if fullname == "" {
		fullname, _, _ = strings.Cut(email, "@")
	}

	// Аватар Google в большем разрешении.
	picture := strings.Replace(id.Picture, "s96-c", "s384-c", 1)
	if picture == "" {
		picture = defaultProfileImg()
	}

	user, err = s.createUser(ctx, models.User{
		PersonalInfo: models.PersonalInfo{
			Fullname:   fullname,
			Email:      email,
			ProfileImg: picture,
		},
		GoogleAuth: true,
	})
	if err != nil {
		if errors.Is(err, storage.ErrUsernameTaken) {
			lg.Error("no free username", "err", err)

			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}

		if errors.Is(err, storage.ErrConflict) {
			lg.Warn("concurrent sign up for the same email")

			return nil, fmt.Errorf("%s: %w", op, newError(ErrConflict, msgEmailTaken))
		}

		return nil, fmt.Errorf("%s: %w", op, fromStorage(lg, err, ""))
	}

	lg.Info("user signed up with google", "user_id", user.ID.Hex())

	return s.issueSession(ctx, user)
}

// ChangePassword меняет пароль после проверки текущего.
// Аккаунты Google пароля не имеют — ErrForbidden.
func (s *Service) ChangePassword(ctx context.Context, userID primitive.ObjectID, current, next string) error {
	const op = "service/auth/ChangePassword"

	lg := log.From(ctx).With("op", op, "user_id", userID.Hex())

	if !validPassword(current) || !validPassword(next) {
		lg.Warn("invalid argument: weak password")

		return fmt.Errorf("%s: %w", op, newError(ErrInvalidArgument, msgPasswordWeak))
	}

	user, err := s.storage.UserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, fromStorage(lg, err, "User not found"))
	}

	if user.GoogleAuth {
		lg.Warn("password change for google account")

		return fmt.Errorf("%s: %w", op, newError(ErrForbidden, msgGooglePassword))
	}

	if !checkPassword(user.PersonalInfo.Password, current) {
		lg.Warn("incorrect current password")

		return fmt.Errorf("%s: %w", op, newError(ErrForbidden, msgCurrentPassword))
	}

	hash, err := s.hashPassword(next)
	if err != nil {
		lg.Error("hash password failed", "err", err)

		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if err := s.storage.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("%s: %w", op, fromStorage(lg, err, "User not found"))
	}

	return nil
}

// issueSession выпускает access-токен для пользователя.
func (s *Service) issueSession(ctx context.Context, user *models.User) (*Session, error) {
	const op = "service/auth/issueSession"

	token, err := s.generateAccessToken(ctx, user.ID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return &Session{AccessToken: token, User: user}, nil
}

// usernameAttempts — сколько раз createUser пробует новый суффикс,
// если username заняли между проверкой и вставкой.
const usernameAttempts = 3

// createUser подбирает username по email и сохраняет пользователя.
// Ошибки хранилища возвращаются как есть.
func (s *Service) createUser(ctx context.Context, user models.User) (*models.User, error) {
	base, _, _ := strings.Cut(user.PersonalInfo.Email, "@")

	username, err := s.generateUsername(ctx, base)
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		user.PersonalInfo.Username = username

		created, err := s.storage.CreateUser(ctx, user)
		if !errors.Is(err, storage.ErrUsernameTaken) || attempt == usernameAttempts {
			return created, err
		}

		log.From(ctx).Debug("username taken concurrently, retrying", "username", username)
		username = base + usernameSuffix()
	}
}

// generateUsername возвращает base или, если имя занято, base с коротким суффиксом.
func (s *Service) generateUsername(ctx context.Context, base string) (string, error) {
	taken, err := s.storage.UsernameExists(ctx, base)
	if err != nil {
		return "", err
	}

	if taken {
		return base + usernameSuffix(), nil
	}

	return base, nil
}

func usernameSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:5]
}

func (s *Service) hashPassword(password string) (string, error) {
	cost := s.cfg.Auth.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

func checkPassword(hash, password string) bool {
	if hash == "" {
		return false
	}

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func validateEmail(email string) error {
	if email == "" {
		return newError(ErrInvalidArgument, msgEmailEmpty)
	}

	if !emailRe.MatchString(email) {
		return newError(ErrInvalidArgument, msgEmailInvalid)
	}

	return nil
}

// validPassword: 6–20 символов, минимум одна цифра, строчная и заглавная буква.
func validPassword(pw string) bool {
	n := utf8.RuneCountInString(pw)
	if n < 6 || n > 20 {
		return false
	}

	var hasLower, hasUpper, hasDigit bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	return hasLower && hasUpper && hasDigit
}

var (
	avatarCollections = []string{"notionists-neutral", "adventurer-neutral", "fun-emoji"}
	avatarSeeds       = []string{
		"Garfield", "Tinkerbell", "Annie", "Loki", "Cleo", "Angel", "Bob", "Mia", "Coco", "Gracie",
		"Bear", "Bella", "Abby", "Harley", "Cali", "Leo", "Luna", "Jack", "Felix", "Kiki",
	}
)

func defaultProfileImg() string {
	return fmt.Sprintf("https://api.dicebear.com/6.x/%s/svg?seed=%s",
		avatarCollections[rand.IntN(len(avatarCollections))],
		avatarSeeds[rand.IntN(len(avatarSeeds))],
	)
}
