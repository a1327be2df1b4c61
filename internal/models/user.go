// Package models содержит доменные сущности blog-service (документы MongoDB).
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User — учётная запись автора/читателя.
// Важно:
//   - Email и Username уникальны (уникальные индексы в storage/mongo);
//   - Password пуст у аккаунтов, созданных через Google (GoogleAuth=true);
//   - AccountInfo — денормализованные счётчики, меняются вместе с блогами.
type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	PersonalInfo PersonalInfo         `bson:"personal_info" json:"personal_info"`
	SocialLinks  SocialLinks          `bson:"social_links" json:"social_links"`
	AccountInfo  AccountInfo          `bson:"account_info" json:"account_info"`
	GoogleAuth   bool                 `bson:"google_auth" json:"-"`
	Blogs        []primitive.ObjectID `bson:"blogs" json:"-"`
	JoinedAt     time.Time            `bson:"joinedAt" json:"joinedAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"-"`
}

// PersonalInfo — личные данные. Email и Password в JSON не попадают никогда.
type PersonalInfo struct {
	Fullname   string `bson:"fullname" json:"fullname"`
	Email      string `bson:"email" json:"-"`
	Password   string `bson:"password,omitempty" json:"-"`
	Username   string `bson:"username" json:"username"`
	Bio        string `bson:"bio" json:"bio"`
	ProfileImg string `bson:"profile_img" json:"profile_img"`
}

type SocialLinks struct {
	Youtube   string `bson:"youtube" json:"youtube"`
	Instagram string `bson:"instagram" json:"instagram"`
	Facebook  string `bson:"facebook" json:"facebook"`
	Twitter   string `bson:"twitter" json:"twitter"`
	Github    string `bson:"github" json:"github"`
	Website   string `bson:"website" json:"website"`
}

// Map возвращает ссылки по имени сети (для валидации в цикле).
func (s SocialLinks) Map() map[string]string {
	return map[string]string{
		"youtube":   s.Youtube,
		"instagram": s.Instagram,
		"facebook":  s.Facebook,
		"twitter":   s.Twitter,
		"github":    s.Github,
		"website":   s.Website,
	}
}

type AccountInfo struct {
	TotalPosts int64 `bson:"total_posts" json:"total_posts"`
	TotalReads int64 `bson:"total_reads" json:"total_reads"`
}

// AuthorRef — «populate»-проекция пользователя для карточек блогов,
// комментариев и уведомлений.
type AuthorRef struct {
	ID           primitive.ObjectID `bson:"_id" json:"_id,omitempty"`
	PersonalInfo AuthorInfo         `bson:"personal_info" json:"personal_info"`
}

type AuthorInfo struct {
	Fullname   string `bson:"fullname" json:"fullname"`
	Username   string `bson:"username" json:"username"`
	ProfileImg string `bson:"profile_img" json:"profile_img"`
}

// Ref возвращает проекцию пользователя.
func (u *User) Ref() AuthorRef {
	return AuthorRef{
		ID: u.ID,
		PersonalInfo: AuthorInfo{
			Fullname:   u.PersonalInfo.Fullname,
			Username:   u.PersonalInfo.Username,
			ProfileImg: u.PersonalInfo.ProfileImg,
		},
	}
}

// ProfileUpdate — изменяемые поля профиля.
type ProfileUpdate struct {
	Username    string
	Bio         string
	SocialLinks SocialLinks
}

// Identity — проверенные данные внешнего провайдера (Google/Firebase).
type Identity struct {
	Email   string
	Name    string
	Picture string
}
