package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/pribylovaa/blog-service/internal/models"
	"github.com/pribylovaa/blog-service/internal/storage"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func mustHash(t *testing.T, pw string) string {
	t.Helper()

	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)

	return string(h)
}

func TestSignUp_Validation(t *testing.T) {
	d := newServiceWithMocks(t)
	ctx := context.Background()

	_, err := d.svc.SignUp(ctx, "ab", "a@b.com", "Secret123")
	requireMessage(t, err, ErrInvalidArgument, msgFullnameShort)

	_, err = d.svc.SignUp(ctx, "Alice", "", "Secret123")
	requireMessage(t, err, ErrInvalidArgument, msgEmailEmpty)

	_, err = d.svc.SignUp(ctx, "Alice", "not-an-email", "Secret123")
	requireMessage(t, err, ErrInvalidArgument, msgEmailInvalid)

	for _, pw := range []string{"Ab1", "alllower123", "ALLUPPER123", "NoDigitsHere", strings.Repeat("Ab1", 7)} {
		_, err = d.svc.SignUp(ctx, "Alice", "alice@example.com", pw)
		requireMessage(t, err, ErrInvalidArgument, msgPasswordWeak)
	}
}

func TestSignUp_OK(t *testing.T) {
	d := newServiceWithMocks(t)

	d.storage.EXPECT().UsernameExists(gomock.Any(), "alice").Return(true, nil)
	d.storage.EXPECT().
		CreateUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u models.User) (*models.User, error) {
			require.Equal(t, "alice@example.com", u.PersonalInfo.Email)
			require.Equal(t, "Alice Doe", u.PersonalInfo.Fullname)
			require.True(t, strings.HasPrefix(u.PersonalInfo.Username, "alice"))
			require.Len(t, u.PersonalInfo.Username, len("alice")+5)
			require.NotEmpty(t, u.PersonalInfo.ProfileImg)
			require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PersonalInfo.Password), []byte("Secret123")))
			require.False(t, u.GoogleAuth)

			u.ID = primitive.NewObjectID()
			return &u, nil
		})

	sess, err := d.svc.SignUp(context.Background(), "  Alice Doe ", " Alice@Example.com ", "Secret123")
	require.NoError(t, err)
	require.NotEmpty(t, sess.AccessToken)

	uid, err := d.svc.ValidateAccessToken(sess.AccessToken)
	require.NoError(t, err)
	require.Equal(t, sess.User.ID, uid)
}

// Повторный email: конфликт, пользователь не создаётся.
func TestSignUp_DuplicateEmail(t *testing.T) {
	d := newServiceWithMocks(t)

	d.storage.EXPECT().UsernameExists(gomock.Any(), "alice").Return(false, nil)
	d.storage.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(nil, storage.ErrConflict)

	sess, err := d.svc.SignUp(context.Background(), "Alice", "alice@example.com", "Secret123")
	require.Nil(t, sess)
	requireMessage(t, err, ErrConflict, msgEmailTaken)
}

// Username заняли между проверкой и вставкой: повтор с новым суффиксом, а не "Email already exists".
func TestSignUp_UsernameTakenConcurrently_Retries(t *testing.T) {
	d := newServiceWithMocks(t)

	var tried []string
	d.storage.EXPECT().UsernameExists(gomock.Any(), "alice").Return(false, nil)
	d.storage.EXPECT().
		CreateUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u models.User) (*models.User, error) {
			tried = append(tried, u.PersonalInfo.Username)
			if len(tried) == 1 {
				return nil, fmt.Errorf("insert: %w", storage.ErrUsernameTaken)
			}

			u.ID = primitive.NewObjectID()
			return &u, nil
		}).
		Times(2)

	sess, err := d.svc.SignUp(context.Background(), "Alice", "alice@example.com", "Secret123")
	require.NoError(t, err)
	require.Equal(t, "alice", tried[0])
	require.True(t, strings.HasPrefix(tried[1], "alice"))
	require.Len(t, tried[1], len("alice")+5)
	require.Equal(t, tried[1], sess.User.PersonalInfo.Username)
}

func TestSignUp_UsernameAttemptsExhausted(t *testing.T) {
	d := newServiceWithMocks(t)

	d.storage.EXPECT().UsernameExists(gomock.Any(), "alice").Return(false, nil)
	d.storage.EXPECT().
		CreateUser(gomock.Any(), gomock.Any()).
		Return(nil, storage.ErrUsernameTaken).
		Times(usernameAttempts)

	_, err := d.svc.SignUp(context.Background(), "Alice", "alice@example.com", "Secret123")
	require.ErrorIs(t, err, ErrInternal)

	var se *Error
	require.False(t, errors.As(err, &se))
}

func TestSignUp_StorageFailure(t *testing.T) {
	d := newServiceWithMocks(t)

	d.storage.EXPECT().UsernameExists(gomock.Any(), gomock.Any()).Return(false, errors.New("db down"))

	_, err := d.svc.SignUp(context.Background(), "Alice", "alice@example.com", "Secret123")
	require.ErrorIs(t, err, ErrInternal)
}

func TestSignIn(t *testing.T) {
	d := newServiceWithMocks(t)
	ctx := context.Background()

	user := &models.User{
		ID:           primitive.NewObjectID(),
		PersonalInfo: models.PersonalInfo{Email: "bob@example.com", Password: mustHash(t, "Secret123")},
	}

	d.storage.EXPECT().UserByEmail(gomock.Any(), "nobody@example.com").Return(nil, storage.ErrNotFound)
	_, err := d.svc.SignIn(ctx, "nobody@example.com", "Secret123")
	requireMessage(t, err, ErrInvalidArgument, msgEmailNotFound)

	d.storage.EXPECT().UserByEmail(gomock.Any(), "bob@example.com").Return(user, nil)
	_, err = d.svc.SignIn(ctx, "bob@example.com", "Wrong123")
	requireMessage(t, err, ErrInvalidArgument, msgWrongPassword)

	d.storage.EXPECT().UserByEmail(gomock.Any(), "g@example.com").Return(&models.User{GoogleAuth: true}, nil)
	_, err = d.svc.SignIn(ctx, "g@example.com", "Secret123")
	requireMessage(t, err, ErrInvalidArgument, msgUseGoogle)

	d.storage.EXPECT().UserByEmail(gomock.Any(), "bob@example.com").Return(user, nil)
	sess, err := d.svc.SignIn(ctx, "BOB@example.com", "Secret123")
	require.NoError(t, err)
	require.Equal(t, user.ID, sess.User.ID)
}

// Google-вход для аккаунта с паролем: ошибка, пользователь не создаётся.
func TestGoogleAuth_PasswordAccount(t *testing.T) {
	d := newServiceWithMocks(t)

	d.identity.EXPECT().
		VerifyIDToken(gomock.Any(), "id-token").
		Return(&models.Identity{Email: "bob@example.com", Name: "Bob"}, nil)
	d.storage.EXPECT().
		UserByEmail(gomock.Any(), "bob@example.com").
		Return(&models.User{ID: primitive.NewObjectID(), GoogleAuth: false}, nil)

	_, err := d.svc.GoogleAuth(context.Background(), "id-token")
	requireMessage(t, err, ErrInvalidArgument, msgUsePassword)
}

func TestGoogleAuth_CreatesUser(t *testing.T) {
	d := newServiceWithMocks(t)

	d.identity.EXPECT().
		VerifyIDToken(gomock.Any(), "id-token").
		Return(&models.Identity{Email: "new@example.com", Name: "New User", Picture: "https://lh3/a=s96-c"}, nil)
	d.storage.EXPECT().UserByEmail(gomock.Any(), "new@example.com").Return(nil, storage.ErrNotFound)
	d.storage.EXPECT().UsernameExists(gomock.Any(), "new").Return(false, nil)
	d.storage.EXPECT().
		CreateUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u models.User) (*models.User, error) {
			require.True(t, u.GoogleAuth)
			require.Empty(t, u.PersonalInfo.Password)
			require.Equal(t, "new", u.PersonalInfo.Username)
			require.Equal(t, "https://lh3/a=s384-c", u.PersonalInfo.ProfileImg)

			u.ID = primitive.NewObjectID()
			return &u, nil
		})

	sess, err := d.svc.GoogleAuth(context.Background(), "id-token")
	require.NoError(t, err)
	require.NotEmpty(t, sess.AccessToken)
}

func TestGoogleAuth_ExistingGoogleUser(t *testing.T) {
	d := newServiceWithMocks(t)

	user := &models.User{ID: primitive.NewObjectID(), GoogleAuth: true}
	d.identity.EXPECT().VerifyIDToken(gomock.Any(), gomock.Any()).Return(&models.Identity{Email: "g@example.com"}, nil)
	d.storage.EXPECT().UserByEmail(gomock.Any(), "g@example.com").Return(user, nil)

	sess, err := d.svc.GoogleAuth(context.Background(), "id-token")
	require.NoError(t, err)
	require.Equal(t, user.ID, sess.User.ID)
}

func TestGoogleAuth_Rejected(t *testing.T) {
	d := newServiceWithMocks(t)

	d.identity.EXPECT().VerifyIDToken(gomock.Any(), gomock.Any()).Return(nil, errors.New("bad token"))

	_, err := d.svc.GoogleAuth(context.Background(), "id-token")
	requireMessage(t, err, ErrUnauthenticated, msgGoogleFailed)
}

func TestGoogleAuth_Disabled(t *testing.T) {
	t.Parallel()

	svc := New(nil, nil, testCfg())

	_, err := svc.GoogleAuth(context.Background(), "id-token")
	requireMessage(t, err, ErrUnauthenticated, msgGoogleDisabled)
}

func TestChangePassword(t *testing.T) {
	d := newServiceWithMocks(t)
	ctx := context.Background()
	uid := primitive.NewObjectID()

	err := d.svc.ChangePassword(ctx, uid, "Secret123", "weak")
	requireMessage(t, err, ErrInvalidArgument, msgPasswordWeak)

	d.storage.EXPECT().UserByID(gomock.Any(), uid).Return(&models.User{ID: uid, GoogleAuth: true}, nil)
	err = d.svc.ChangePassword(ctx, uid, "Secret123", "Secret456")
	requireMessage(t, err, ErrForbidden, msgGooglePassword)

	user := &models.User{ID: uid, PersonalInfo: models.PersonalInfo{Password: mustHash(t, "Secret123")}}

	d.storage.EXPECT().UserByID(gomock.Any(), uid).Return(user, nil)
	err = d.svc.ChangePassword(ctx, uid, "Other1234", "Secret456")
	requireMessage(t, err, ErrForbidden, msgCurrentPassword)

	d.storage.EXPECT().UserByID(gomock.Any(), uid).Return(user, nil)
	d.storage.EXPECT().
		UpdatePassword(gomock.Any(), uid, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ primitive.ObjectID, hash string) error {
			require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("Secret456")))
			return nil
		})
	require.NoError(t, d.svc.ChangePassword(ctx, uid, "Secret123", "Secret456"))
}
