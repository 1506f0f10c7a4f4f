// internal/domain/models/post.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post status values. New posts start Pending and become visible in the
// community feed only after a moderator approves them.
const (
	PostPending  = "Pending"
	PostApproved = "Approved"
)

// Post is a community feed entry. Author fields are denormalized at create
// time so the feed survives author deletion (rendered as "Deleted User").
type Post struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AuthorID     primitive.ObjectID `bson:"author_id" json:"author_id"`
	AuthorName   string             `bson:"author_name" json:"author_name"`
	AuthorHandle string             `bson:"author_handle" json:"author_handle"`
	AuthorAvatar string             `bson:"author_avatar,omitempty" json:"author_avatar,omitempty"`
	Content      string             `bson:"content" json:"content"`
	ImageURL     string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
	ImageHint    string             `bson:"image_hint,omitempty" json:"image_hint,omitempty"`
	Likes        int64              `bson:"likes" json:"likes"`
	Comments     []Comment          `bson:"comments,omitempty" json:"comments,omitempty"`
	Status       string             `bson:"status" json:"status"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}

// Comment is embedded in its post, oldest first.
type Comment struct {
	UserID     primitive.ObjectID `bson:"user_id" json:"user_id"`
	UserName   string             `bson:"user_name" json:"user_name"`
	UserAvatar string             `bson:"user_avatar,omitempty" json:"user_avatar,omitempty"`
	Text       string             `bson:"text" json:"text"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}

// PostLike records one user's like on one post; (post_id, user_id) is
// unique. The post's likes counter and this collection are updated together.
type PostLike struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	PostID    primitive.ObjectID `bson:"post_id"`
	UserID    primitive.ObjectID `bson:"user_id"`
	CreatedAt time.Time          `bson:"created_at"`
}
