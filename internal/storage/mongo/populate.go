package mongo

import (
	"context"
	"fmt"

	"github.com/pribylovaa/blog-service/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// uniqueIDs убирает дубликаты и нулевые идентификаторы, сохраняя порядок.
func uniqueIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if id.IsZero() {
			continue
		}

		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}

// authorRefs загружает проекции пользователей по списку id.
func (m *Mongo) authorRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.AuthorRef, error) {
	out := make(map[primitive.ObjectID]models.AuthorRef, len(ids))
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}

	opts := options.Find().SetProjection(bson.D{
		{Key: "personal_info.fullname", Value: 1},
		{Key: "personal_info.username", Value: 1},
		{Key: "personal_info.profile_img", Value: 1},
	})

	cur, err := m.users.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}

	var refs []models.AuthorRef
	if err := cur.All(ctx, &refs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	for _, r := range refs {
		out[r.ID] = r
	}

	return out, nil
}

func (m *Mongo) blogRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.BlogRef, error) {
	out := make(map[primitive.ObjectID]models.BlogRef, len(ids))
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}

	opts := options.Find().SetProjection(bson.D{{Key: "blog_id", Value: 1}, {Key: "title", Value: 1}})

	cur, err := m.blogs.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find blogs: %w", err)
	}

	var refs []models.BlogRef
	if err := cur.All(ctx, &refs); err != nil {
		return nil, fmt.Errorf("decode blogs: %w", err)
	}

	for _, r := range refs {
		out[r.ID] = r
	}

	return out, nil
}

func (m *Mongo) commentRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.CommentRef, error) {
	out := make(map[primitive.ObjectID]models.CommentRef, len(ids))
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}

	opts := options.Find().SetProjection(bson.D{{Key: "comment", Value: 1}})

	cur, err := m.comments.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find comments: %w", err)
	}

	var refs []models.CommentRef
	if err := cur.All(ctx, &refs); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}

	for _, r := range refs {
		out[r.ID] = r
	}

	return out, nil
}

// populateBlogs заполняет AuthorInfo у каждого блога.
func (m *Mongo) populateBlogs(ctx context.Context, blogs []models.Blog) error {
	ids := make([]primitive.ObjectID, 0, len(blogs))
	for _, b := range blogs {
		ids = append(ids, b.Author)
	}

	refs, err := m.authorRefs(ctx, ids)
	if err != nil {
		return err
	}

	for i := range blogs {
		if r, ok := refs[blogs[i].Author]; ok {
			blogs[i].AuthorInfo = &r
		}
	}

	return nil
}

// populateComments заполняет CommentedByInfo.
func (m *Mongo) populateComments(ctx context.Context, comments []models.Comment) error {
	ids := make([]primitive.ObjectID, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.CommentedBy)
	}

	refs, err := m.authorRefs(ctx, ids)
	if err != nil {
		return err
	}

	for i := range comments {
		if r, ok := refs[comments[i].CommentedBy]; ok {
			comments[i].CommentedByInfo = &r
		}
	}

	return nil
}

// populateNotifications заполняет автора события, блог и связанные комментарии.
func (m *Mongo) populateNotifications(ctx context.Context, items []models.Notification) error {
	var userIDs, blogIDs, commentIDs []primitive.ObjectID
	for _, n := range items {
		userIDs = append(userIDs, n.User)
		blogIDs = append(blogIDs, n.Blog)
		for _, p := range []*primitive.ObjectID{n.Comment, n.Reply, n.RepliedOnComment} {
			if p != nil {
				commentIDs = append(commentIDs, *p)
			}
		}
	}

	users, err := m.authorRefs(ctx, userIDs)
	if err != nil {
		return err
	}

	blogs, err := m.blogRefs(ctx, blogIDs)
	if err != nil {
		return err
	}

	comments, err := m.commentRefs(ctx, commentIDs)
	if err != nil {
		return err
	}

	commentRef := func(p *primitive.ObjectID) *models.CommentRef {
		if p == nil {
			return nil
		}

		if r, ok := comments[*p]; ok {
			return &r
		}

		return nil
	}

	for i := range items {
		n := &items[i]
		if r, ok := users[n.User]; ok {
			n.UserInfo = &r
		}

		if r, ok := blogs[n.Blog]; ok {
			n.BlogInfo = &r
		}

		n.CommentInfo = commentRef(n.Comment)
		n.ReplyInfo = commentRef(n.Reply)
		n.RepliedOnCommentInfo = commentRef(n.RepliedOnComment)
	}

	return nil
}
