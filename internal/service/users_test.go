package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/pribylovaa/blog-service/internal/models"
	"github.com/pribylovaa/blog-service/internal/storage"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUpdateProfile_Validation(t *testing.T) {
	d := newServiceWithMocks(t)
	ctx := context.Background()
	uid := primitive.NewObjectID()

	_, err := d.svc.UpdateProfile(ctx, uid, models.ProfileUpdate{Username: "ab"})
	requireMessage(t, err, ErrInvalidArgument, msgUsernameShort)

	_, err = d.svc.UpdateProfile(ctx, uid, models.ProfileUpdate{Username: "alice", Bio: strings.Repeat("b", 151)})
	requireMessage(t, err, ErrInvalidArgument, msgBioLong)

	_, err = d.svc.UpdateProfile(ctx, uid, models.ProfileUpdate{
		Username:    "alice",
		SocialLinks: models.SocialLinks{Github: "https://gitlab.com/alice"},
	})
	requireMessage(t, err, ErrInvalidArgument, "github link is invalid. You must enter a full link")

	_, err = d.svc.UpdateProfile(ctx, uid, models.ProfileUpdate{
		Username:    "alice",
		SocialLinks: models.SocialLinks{Youtube: "youtube.com/alice"},
	})
	requireMessage(t, err, ErrInvalidArgument, "You must provide full social links with http(s) included")

	_, err = d.svc.UpdateProfile(ctx, uid, models.ProfileUpdate{
		Username:    "alice",
		SocialLinks: models.SocialLinks{Twitter: "http://twitter.com/alice"},
	})
	requireMessage(t, err, ErrInvalidArgument, "twitter link is invalid. You must enter a full link")
}

func TestUpdateProfile_OK(t *testing.T) {
	d := newServiceWithMocks(t)
	uid := primitive.NewObjectID()

	links := models.SocialLinks{
		Github:  "https://github.com/alice",
		Website: "http://alice.dev",
	}

	d.storage.EXPECT().
		UpdateProfile(gomock.Any(), uid, models.ProfileUpdate{Username: "alice", Bio: "gopher", SocialLinks: links}).
		Return(nil)

	name, err := d.svc.UpdateProfile(context.Background(), uid, models.ProfileUpdate{
		Username: " alice ", Bio: "<i>gopher</i>", SocialLinks: links,
	})
	require.NoError(t, err)
	require.Equal(t, "alice", name)
}

func TestUpdateProfile_UsernameTaken(t *testing.T) {
	d := newServiceWithMocks(t)

	d.storage.EXPECT().UpdateProfile(gomock.Any(), gomock.Any(), gomock.Any()).Return(storage.ErrConflict)

	_, err := d.svc.UpdateProfile(context.Background(), primitive.NewObjectID(), models.ProfileUpdate{Username: "bob"})
	requireMessage(t, err, ErrConflict, msgUsernameTaken)
}

func TestUpdateProfileImg(t *testing.T) {
	d := newServiceWithMocks(t)
	ctx := context.Background()
	uid := primitive.NewObjectID()

	_, err := d.svc.UpdateProfileImg(ctx, uid, "not a url")
	requireMessage(t, err, ErrInvalidArgument, msgImgURL)

	d.storage.EXPECT().UpdateProfileImg(gomock.Any(), uid, "https://cdn.local/a.png").Return(nil)
	got, err := d.svc.UpdateProfileImg(ctx, uid, " https://cdn.local/a.png ")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.local/a.png", got)
}

func TestProfileAndSearchUsers(t *testing.T) {
	d := newServiceWithMocks(t)
	ctx := context.Background()

	d.storage.EXPECT().UserByUsername(gomock.Any(), "ghost").Return(nil, storage.ErrNotFound)
	_, err := d.svc.Profile(ctx, " ghost ")
	requireMessage(t, err, ErrNotFound, userAbsent)

	refs := []models.AuthorRef{{ID: primitive.NewObjectID()}}
	d.storage.EXPECT().SearchUsers(gomock.Any(), "ali", int64(50)).Return(refs, nil)
	got, err := d.svc.SearchUsers(ctx, "ali")
	require.NoError(t, err)
	require.Equal(t, refs, got)

	got, err = d.svc.SearchUsers(ctx, "  ")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestUploadURL(t *testing.T) {
	d := newServiceWithMocks(t)
	ctx := context.Background()

	info := &storage.UploadInfo{UploadURL: "http://minio/images/x.jpg?sig", Key: "images/x.jpg", Expires: time.Minute}
	d.uploads.EXPECT().ImageUploadURL(gomock.Any(), "image/jpeg").Return(info, nil)
	got, err := d.svc.UploadURL(ctx, "")
	require.NoError(t, err)
	require.Equal(t, info, got)

	d.uploads.EXPECT().ImageUploadURL(gomock.Any(), "image/gif").Return(nil, storage.ErrInvalidArgument)
	_, err = d.svc.UploadURL(ctx, "IMAGE/GIF")
	requireMessage(t, err, ErrInvalidArgument, "Unsupported image type")

	d.uploads.EXPECT().ImageUploadURL(gomock.Any(), "image/png").Return(nil, errors.New("minio down"))
	_, err = d.svc.UploadURL(ctx, "image/png")
	require.ErrorIs(t, err, ErrInternal)
}
