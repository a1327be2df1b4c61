package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment — комментарий или ответ.
// Важно:
//   - Parent == nil у корневых комментариев (IsReply=false);
//   - Children — прямые ответы; всегда совпадает с множеством комментариев,
//     у которых Parent указывает на этот комментарий;
//   - глубина дерева не ограничена.
type Comment struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	BlogID      primitive.ObjectID   `bson:"blog_id" json:"blog_id"`
	BlogAuthor  primitive.ObjectID   `bson:"blog_author" json:"blog_author"`
	Comment     string               `bson:"comment" json:"comment"`
	Children    []primitive.ObjectID `bson:"children" json:"children"`
	CommentedBy primitive.ObjectID   `bson:"commented_by" json:"-"`
	IsReply     bool                 `bson:"isReply" json:"isReply"`
	Parent      *primitive.ObjectID  `bson:"parent,omitempty" json:"parent,omitempty"`
	CommentedAt time.Time            `bson:"commentedAt" json:"commentedAt"`

	// CommentedByInfo заполняется при чтении (populate).
	CommentedByInfo *AuthorRef `bson:"-" json:"commented_by,omitempty"`
}

// NewComment — вход storage для создания комментария.
//   - ReplyingTo — родитель (nil для корня);
//   - NotificationID — уведомление, к которому прикрепляется ответ (reply).
type NewComment struct {
	BlogID         primitive.ObjectID
	BlogAuthor     primitive.ObjectID
	Comment        string
	CommentedBy    primitive.ObjectID
	ReplyingTo     *primitive.ObjectID
	NotificationID *primitive.ObjectID
}

// CommentRef — проекция комментария в уведомлениях.
type CommentRef struct {
	ID      primitive.ObjectID `bson:"_id" json:"_id"`
	Comment string             `bson:"comment" json:"comment"`
}
