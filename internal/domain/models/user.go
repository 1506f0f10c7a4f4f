// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role values stored on User.Role. Exactly one of these is the account's
// role at any time.
const (
	RoleStudent     = "student"
	RoleCoach       = "coach"
	RoleSchoolAdmin = "school_admin"
	RoleAdmin       = "admin"
)

// NoSchool is the legacy sentinel for "no school selected". New writes keep
// the school field empty instead, but documents migrated from the original
// deployment still carry it, so reads must treat both as unset.
const NoSchool = "Not Set"

// User represents every account: students, coaches, school admins, and
// platform admins.
//
// NOTE:
//   - School affiliation is the display name string (legacy name-join).
//     SchoolID is set only while the user is a school_admin and is the
//     id-keyed binding to the school they administer.
//   - Coach-only data lives in the coaches collection, keyed by the same
//     ObjectID (see CoachProfile).
type User struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	FullName     string              `bson:"full_name" json:"full_name"`
	FullNameCI   string              `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Email        string              `bson:"email" json:"email"`
	Phone        string              `bson:"phone,omitempty" json:"phone,omitempty"`
	PasswordHash string              `bson:"password_hash,omitempty" json:"-"`
	AuthMethod   string              `bson:"auth_method,omitempty" json:"auth_method,omitempty"` // password | google
	Role         string              `bson:"role" json:"role"`
	School       string              `bson:"school,omitempty" json:"school,omitempty"`
	SchoolID     *primitive.ObjectID `bson:"school_id,omitempty" json:"school_id,omitempty"`
	AvatarURL    string              `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`

	// Contributions is incremented once per approved post and once per
	// submitted comment. It never decreases.
	Contributions int64 `bson:"contributions" json:"contributions"`

	Status string `bson:"status,omitempty" json:"status,omitempty"` // active | disabled

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasSchool reports whether the account has a usable school affiliation,
// treating the legacy sentinel as unset.
func (u *User) HasSchool() bool {
	return u.School != "" && u.School != NoSchool
}

// Handle derives the community handle shown on posts and comments.
func (u *User) Handle() string {
	if u.Email == "" {
		return "@" + u.ID.Hex()
	}
	at := 0
	for i, c := range u.Email {
		if c == '@' {
			at = i
			break
		}
	}
	if at == 0 {
		return "@" + u.Email
	}
	return "@" + u.Email[:at]
}
