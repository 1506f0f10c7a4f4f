// internal/domain/models/competition.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Competition status values, derived from the event date at create/update.
const (
	CompetitionUpcoming  = "Upcoming"
	CompetitionCompleted = "Completed"
)

// Registration status values.
const (
	RegistrationPending  = "Pending"
	RegistrationApproved = "Approved"
)

type Competition struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"name_ci"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Date        time.Time          `bson:"date" json:"date"`
	Status      string             `bson:"status" json:"status"`

	// Teams counts approved registrations.
	Teams int64 `bson:"teams" json:"teams"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Registration is one team's entry for one competition. The original system
// kept these in a per-competition subcollection; here they are a flat
// collection with a unique (competition_id, team_id) index.
type Registration struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CompetitionID primitive.ObjectID `bson:"competition_id" json:"competition_id"`
	TeamID        primitive.ObjectID `bson:"team_id" json:"team_id"`
	TeamName      string             `bson:"team_name" json:"team_name"`
	CoachName     string             `bson:"coach_name,omitempty" json:"coach_name,omitempty"`
	Status        string             `bson:"status" json:"status"`
	RegisteredBy  primitive.ObjectID `bson:"registered_by" json:"registered_by"`
	RegisteredAt  time.Time          `bson:"registered_at" json:"registered_at"`
}

// CompetitionStatus derives Upcoming/Completed from the event date measured
// against the start of today.
func CompetitionStatus(date, now time.Time) string {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if date.Before(today) {
		return CompetitionCompleted
	}
	return CompetitionUpcoming
}
