package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Blog — публикация или черновик.
// Важно:
//   - BlogID — человекочитаемый slug, уникален; наружу ссылки строятся по нему;
//   - Activity.TotalComments/TotalParentComments всегда равны числу
//     комментариев блога (всех/корневых), см. storage/mongo;
//   - Comments — идентификаторы всех комментариев блога (включая ответы).
type Blog struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	BlogID      string               `bson:"blog_id" json:"blog_id"`
	Title       string               `bson:"title" json:"title"`
	Banner      string               `bson:"banner" json:"banner"`
	Des         string               `bson:"des" json:"des"`
	Content     []BlogContent        `bson:"content" json:"content"`
	Tags        []string             `bson:"tags" json:"tags"`
	Author      primitive.ObjectID   `bson:"author" json:"-"`
	Activity    Activity             `bson:"activity" json:"activity"`
	Comments    []primitive.ObjectID `bson:"comments" json:"-"`
	Draft       bool                 `bson:"draft" json:"draft"`
	PublishedAt time.Time            `bson:"publishedAt" json:"publishedAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"-"`

	// AuthorInfo заполняется при чтении (populate), в БД не хранится.
	AuthorInfo *AuthorRef `bson:"-" json:"author,omitempty"`
}

// BlogContent — документ редактора (time/blocks/version).
type BlogContent struct {
	Time    int64          `bson:"time,omitempty" json:"time,omitempty"`
	Blocks  []ContentBlock `bson:"blocks" json:"blocks"`
	Version string         `bson:"version,omitempty" json:"version,omitempty"`
}

// ContentBlock — блок редактора; Data хранится как есть.
type ContentBlock struct {
	ID   string         `bson:"id,omitempty" json:"id,omitempty"`
	Type string         `bson:"type" json:"type"`
	Data map[string]any `bson:"data" json:"data"`
}

type Activity struct {
	TotalLikes          int64 `bson:"total_likes" json:"total_likes"`
	TotalComments       int64 `bson:"total_comments" json:"total_comments"`
	TotalReads          int64 `bson:"total_reads" json:"total_reads"`
	TotalParentComments int64 `bson:"total_parent_comments" json:"total_parent_comments"`
}

// BlogRef — проекция блога в уведомлениях.
type BlogRef struct {
	ID     primitive.ObjectID `bson:"_id" json:"_id"`
	BlogID string             `bson:"blog_id" json:"blog_id"`
	Title  string             `bson:"title" json:"title"`
}

// BlogSort — порядок выдачи.
type BlogSort int

const (
	// SortLatest — сначала новые (publishedAt DESC).
	SortLatest BlogSort = iota
	// SortTrending — total_reads DESC, total_likes DESC, publishedAt DESC.
	SortTrending
)

// BlogQuery — фильтр и пагинация списков блогов.
// Из Tag/Query/Author storage применяет не более одного (в этом порядке).
type BlogQuery struct {
	Draft         bool
	AuthorOnly    bool // выдача «своих» блогов: Author обязателен, Draft учитывается как есть
	Tag           string
	Query         string
	Author        primitive.ObjectID
	ExcludeBlogID string
	Sort          BlogSort
	Skip          int64
	Limit         int64
}
