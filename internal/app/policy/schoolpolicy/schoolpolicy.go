// Package schoolpolicy provides authorization policies for school and
// team management.
//
// Authorization rules:
//   - Admins can create, edit, and delete any school or team
//   - School admins can edit their own school and manage its teams
//   - Coaches can create teams at their own school
//   - Students and visitors have read-only access to the directories
package schoolpolicy

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/robacademy/robohub/internal/app/system/authz"
	"github.com/robacademy/robohub/internal/domain/models"
)

// CanCreateSchool reports whether the current user may create schools.
func CanCreateSchool(r *http.Request) bool {
	return authz.IsAdmin(r)
}

// CanEditSchool reports whether the current user may edit the given
// school. School admins are matched by the id binding, not by name.
func CanEditSchool(r *http.Request, school models.School) bool {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		return false
	}
	if role == "admin" {
		return true
	}
	if role == "school_admin" {
		return school.AdminID != nil && *school.AdminID == userID
	}
	return false
}

// CanManageTeams reports whether the current user may create or delete
// teams at the given school. Coaches qualify by name affiliation, school
// admins by id binding.
func CanManageTeams(r *http.Request, school models.School) bool {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		return false
	}
	switch role {
	case "admin":
		return true
	case "school_admin":
		return school.AdminID != nil && *school.AdminID == userID
	case "coach":
		name := authz.UserSchoolName(r)
		return name != "" && name == school.Name
	default:
		return false
	}
}

// CanRegisterTeam reports whether the current user may register the given
// team for a competition. The team's coach and platform admins may.
func CanRegisterTeam(r *http.Request, team models.Team) bool {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		return false
	}
	if role == "admin" {
		return true
	}
	return role == "coach" && team.CoachID == userID
}

// CanApproveRegistrations reports whether the current user may approve
// competition registrations.
func CanApproveRegistrations(r *http.Request) bool {
	return authz.IsAdmin(r)
}

// IsOwnTeamCoach reports whether userID coaches the given team.
func IsOwnTeamCoach(userID primitive.ObjectID, team models.Team) bool {
	return team.CoachID == userID
}
