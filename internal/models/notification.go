package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType — вид события.
type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationReply   NotificationType = "reply"
)

// Valid сообщает, известен ли тип.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationLike, NotificationComment, NotificationReply:
		return true
	default:
		return false
	}
}

// Notification — событие для получателя NotificationFor от пользователя User.
// Для like на пару (User, Blog) существует не более одной записи.
type Notification struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Type             NotificationType    `bson:"type" json:"type"`
	Blog             primitive.ObjectID  `bson:"blog" json:"-"`
	NotificationFor  primitive.ObjectID  `bson:"notification_for" json:"-"`
	User             primitive.ObjectID  `bson:"user" json:"-"`
	Comment          *primitive.ObjectID `bson:"comment,omitempty" json:"-"`
	Reply            *primitive.ObjectID `bson:"reply,omitempty" json:"-"`
	RepliedOnComment *primitive.ObjectID `bson:"replied_on_comment,omitempty" json:"-"`
	Seen             bool                `bson:"seen" json:"seen"`
	CreatedAt        time.Time           `bson:"createdAt" json:"createdAt"`

	// Проекции заполняются при чтении списка.
	UserInfo             *AuthorRef  `bson:"-" json:"user,omitempty"`
	BlogInfo             *BlogRef    `bson:"-" json:"blog,omitempty"`
	CommentInfo          *CommentRef `bson:"-" json:"comment,omitempty"`
	ReplyInfo            *CommentRef `bson:"-" json:"reply,omitempty"`
	RepliedOnCommentInfo *CommentRef `bson:"-" json:"replied_on_comment,omitempty"`
}

// NotificationQuery — выборка уведомлений получателя.
// Type пуст — все типы. События, вызванные самим получателем, не попадают в выдачу.
type NotificationQuery struct {
	For   primitive.ObjectID
	Type  NotificationType
	Skip  int64
	Limit int64
}
