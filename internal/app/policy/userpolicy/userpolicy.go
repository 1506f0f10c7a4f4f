// Package userpolicy provides authorization policies for account
// management.
//
// Authorization rules:
//   - Admins can list, promote, demote, and delete any account
//   - School admins can view accounts affiliated with their school
//   - Everyone can view and delete their own account
//   - Students and coaches cannot manage other accounts
package userpolicy

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/robacademy/robohub/internal/app/system/authz"
)

// ListScope represents the scope of accounts the current user can list.
type ListScope struct {
	// CanList indicates whether the user can list accounts at all.
	CanList bool
	// AllSchools indicates whether the user sees accounts from every school.
	AllSchools bool
	// School is the school name the listing is restricted to.
	School string
}

// CanListUsers determines what scope of accounts the current user can list.
func CanListUsers(r *http.Request) ListScope {
	role, _, _, ok := authz.UserCtx(r)
	if !ok {
		return ListScope{}
	}

	switch role {
	case "admin":
		return ListScope{CanList: true, AllSchools: true}
	case "school_admin":
		school := authz.UserSchoolName(r)
		if school == "" {
			return ListScope{}
		}
		return ListScope{CanList: true, School: school}
	default:
		return ListScope{}
	}
}

// CanChangeRole reports whether the current user may promote or demote
// accounts. Only platform admins may; nobody can change their own role.
func CanChangeRole(r *http.Request, targetID primitive.ObjectID) bool {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok || role != "admin" {
		return false
	}
	return userID != targetID
}

// CanViewUser reports whether the current user may view the target's
// account page.
func CanViewUser(r *http.Request, targetID primitive.ObjectID, targetSchool string) bool {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		return false
	}
	if userID == targetID || role == "admin" {
		return true
	}
	if role == "school_admin" {
		school := authz.UserSchoolName(r)
		return school != "" && school == targetSchool
	}
	return false
}

// CanDeleteUser reports whether the current user may delete the target
// account. Admins can delete anyone; everyone else only themselves.
func CanDeleteUser(r *http.Request, targetID primitive.ObjectID) bool {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		return false
	}
	return role == "admin" || userID == targetID
}
