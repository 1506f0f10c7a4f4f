// Package postpolicy provides authorization policies for the community
// feed.
//
// Authorization rules:
//   - Any signed-in user can create posts, comment, and like
//   - Admins moderate: they see the pending queue, approve, and delete
//   - Authors can delete their own posts
//   - Visitors can read the approved feed only
package postpolicy

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/robacademy/robohub/internal/app/system/authz"
	"github.com/robacademy/robohub/internal/domain/models"
)

// CanCreatePost reports whether the current user may submit a post.
func CanCreatePost(r *http.Request) bool {
	_, _, _, ok := authz.UserCtx(r)
	return ok
}

// CanModerate reports whether the current user may approve pending posts.
func CanModerate(r *http.Request) bool {
	return authz.IsAdmin(r)
}

// CanViewPost reports whether the current user may see the given post.
// Pending posts are visible to their author and to moderators.
func CanViewPost(r *http.Request, post models.Post) bool {
	if post.Status == models.PostApproved {
		return true
	}
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		return false
	}
	return role == "admin" || post.AuthorID == userID
}

// CanDeletePost reports whether the current user may delete the given
// post.
func CanDeletePost(r *http.Request, post models.Post) bool {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		return false
	}
	return role == "admin" || post.AuthorID == userID
}

// CanInteract reports whether the current user may like or comment. Only
// approved posts accept interactions.
func CanInteract(r *http.Request, post models.Post) (primitive.ObjectID, bool) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok || post.Status != models.PostApproved {
		return primitive.NilObjectID, false
	}
	return userID, true
}
