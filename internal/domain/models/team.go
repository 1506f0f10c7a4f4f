// internal/domain/models/team.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Team carries denormalized school and coach names so list screens render
// without joins. The id references are authoritative; the names are caches.
type Team struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name       string               `bson:"name" json:"name"`
	NameCI     string               `bson:"name_ci" json:"name_ci"`
	SchoolID   primitive.ObjectID   `bson:"school_id" json:"school_id"`
	SchoolName string               `bson:"school_name" json:"school_name"`
	CoachID    primitive.ObjectID   `bson:"coach_id" json:"coach_id"`
	CoachName  string               `bson:"coach_name" json:"coach_name"`
	MemberIDs  []primitive.ObjectID `bson:"member_ids,omitempty" json:"member_ids,omitempty"`
	CreatedBy  primitive.ObjectID   `bson:"created_by" json:"created_by"`
	CreatedAt  time.Time            `bson:"created_at" json:"created_at"`
}
