// internal/app/store/posts/poststore.go
package poststore

import (
	"context"
	"fmt"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/robacademy/robohub/internal/domain/models"
)

// Store wraps the posts collection and its companion post_likes collection.
type Store struct {
	posts *mongo.Collection
	likes *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		posts: db.Collection("posts"),
		likes: db.Collection("post_likes"),
	}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Post, error) {
	var post models.Post
	err := s.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		return models.Post{}, err
	}
	return post, nil
}

// Create inserts a post in Pending status awaiting moderation.
func (s *Store) Create(ctx context.Context, post models.Post) (models.Post, error) {
	post.ID = primitive.NewObjectID()
	post.Status = models.PostPending
	post.Likes = 0
	post.Comments = nil
	post.CreatedAt = time.Now().UTC()

	if _, err := s.posts.InsertOne(ctx, post); err != nil {
		return models.Post{}, fmt.Errorf("insert post: %w", err)
	}
	return post, nil
}

// SetStatus flips one post's moderation status.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := s.posts.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return fmt.Errorf("update post status: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AddComment appends to the post's embedded comment list, oldest first.
func (s *Store) AddComment(ctx context.Context, postID primitive.ObjectID, comment models.Comment) error {
	comment.CreatedAt = time.Now().UTC()
	res, err := s.posts.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$push": bson.M{"comments": comment}},
	)
	if err != nil {
		return fmt.Errorf("add comment: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// InsertLike records the like edge. wafflemongo.IsDup on the returned
// error means this user already liked the post.
func (s *Store) InsertLike(ctx context.Context, postID, userID primitive.ObjectID) error {
	_, err := s.likes.InsertOne(ctx, models.PostLike{
		ID:        primitive.NewObjectID(),
		PostID:    postID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	})
	return err
}

// DeleteLike removes the like edge, reporting whether it existed.
func (s *Store) DeleteLike(ctx context.Context, postID, userID primitive.ObjectID) (bool, error) {
	res, err := s.likes.DeleteOne(ctx, bson.M{"post_id": postID, "user_id": userID})
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// IncLikes adjusts the post's cached like counter.
func (s *Store) IncLikes(ctx context.Context, postID primitive.ObjectID, delta int64) error {
	_, err := s.posts.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$inc": bson.M{"likes": delta}},
	)
	if err != nil {
		return fmt.Errorf("adjust post likes: %w", err)
	}
	return nil
}

// HasLiked reports whether the user has liked the post.
func (s *Store) HasLiked(ctx context.Context, postID, userID primitive.ObjectID) (bool, error) {
	err := s.likes.FindOne(ctx, bson.M{"post_id": postID, "user_id": userID},
		options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check like: %w", err)
	}
	return true, nil
}

// LikedSet returns which of the given posts the user has liked.
func (s *Store) LikedSet(ctx context.Context, userID primitive.ObjectID, postIDs []primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	liked := make(map[primitive.ObjectID]bool, len(postIDs))
	if len(postIDs) == 0 {
		return liked, nil
	}

	cur, err := s.likes.Find(ctx, bson.M{
		"user_id": userID,
		"post_id": bson.M{"$in": postIDs},
	})
	if err != nil {
		return nil, fmt.Errorf("find likes: %w", err)
	}
	defer cur.Close(ctx)

	var edges []models.PostLike
	if err := cur.All(ctx, &edges); err != nil {
		return nil, fmt.Errorf("decode likes: %w", err)
	}
	for _, e := range edges {
		liked[e.PostID] = true
	}
	return liked, nil
}

// DeleteByAuthor removes all of one author's posts and their like edges,
// returning the post ids that were removed.
func (s *Store) DeleteByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.posts.Find(ctx, bson.M{"author_id": authorID},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("find author posts: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode author posts: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]primitive.ObjectID, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}

	if _, err := s.posts.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return nil, fmt.Errorf("delete author posts: %w", err)
	}
	if _, err := s.likes.DeleteMany(ctx, bson.M{"post_id": bson.M{"$in": ids}}); err != nil {
		return nil, fmt.Errorf("delete author post likes: %w", err)
	}
	return ids, nil
}

// Delete removes one post and its like edges.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.posts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	if _, err := s.likes.DeleteMany(ctx, bson.M{"post_id": id}); err != nil {
		return fmt.Errorf("delete post likes: %w", err)
	}
	return nil
}

func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Post, error) {
	cur, err := s.posts.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}
	defer cur.Close(ctx)

	var posts []models.Post
	if err := cur.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return posts, nil
}

func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	n, err := s.posts.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

// IsDupLike reports whether err is the duplicate-key rejection from the
// unique (post_id, user_id) index.
func IsDupLike(err error) bool {
	return wafflemongo.IsDup(err)
}
