// internal/domain/models/school.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NoCoachAssigned is the display value for a school with no promoted coach.
const NoCoachAssigned = "Not Assigned"

// School includes case/diacritic-insensitive fields for search/sort.
//
// Name is the join key used by User.School and CoachProfile.School (a name
// string, not an id — a legacy of the original schema). AdminID is the
// id-keyed back-reference to the account currently bound as the school's
// admin; it is nil when no school admin is assigned.
type School struct {
	ID       primitive.ObjectID  `bson:"_id"`
	Name     string              `bson:"name"`
	NameCI   string              `bson:"name_ci"` // ← always stored
	Location string              `bson:"location"`
	About    string              `bson:"about,omitempty"`
	Coach    string              `bson:"coach,omitempty"` // display name, best-effort
	AdminID  *primitive.ObjectID `bson:"admin_id,omitempty"`

	// Teams counts the school's teams. Maintained by the teams store.
	Teams int64 `bson:"teams"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}
