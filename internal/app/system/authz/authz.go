// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/robacademy/robohub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), name, Mongo ObjectID, and a
// found flag. If no user is present in context or the user ID is malformed,
// it returns "visitor", "", NilObjectID, false. This ensures callers can
// trust that ok=true means a valid, authenticated user with a valid
// ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// Actor is the explicit caller identity handed to registry operations so
// their authorization checks never reach back into an ambient session.
type Actor struct {
	ID   primitive.ObjectID
	Role string
}

// ActorCtx extracts the caller identity for registry operations.
func ActorCtx(r *http.Request) (Actor, bool) {
	role, _, id, ok := UserCtx(r)
	if !ok {
		return Actor{}, false
	}
	return Actor{ID: id, Role: role}, true
}

// IsAdmin reports whether the current request's user is a platform admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "admin"
}

// IsSchoolAdmin reports whether the current request's user is a school admin.
func IsSchoolAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "school_admin"
}

// IsCoach reports whether the current request's user is a coach.
func IsCoach(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "coach"
}

// IsStudent reports whether the current request's user is a student.
func IsStudent(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "student"
}

// UserSchoolID returns the school the current user administers.
// Returns NilObjectID if the user is not logged in or has no school binding.
func UserSchoolID(r *http.Request) primitive.ObjectID {
	user, ok := auth.CurrentUser(r)
	if !ok || user.SchoolID == "" {
		return primitive.NilObjectID
	}
	oid, err := primitive.ObjectIDFromHex(user.SchoolID)
	if err != nil {
		return primitive.NilObjectID
	}
	return oid
}

// UserSchoolName returns the current user's school display name, or "".
func UserSchoolName(r *http.Request) string {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return ""
	}
	return user.School
}
