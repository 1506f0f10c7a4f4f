// internal/domain/models/coach.go
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultExpertise seeds a newly promoted coach's profile until they edit it.
const DefaultExpertise = "VEX, Arduino, Python"

// DefaultAvatarURL is used wherever an account or profile has no avatar.
const DefaultAvatarURL = "https://placehold.co/100x100.png"

// CoachProfile is the auxiliary record that exists exactly when the user
// with the same ObjectID has role coach. Name, school, and avatar are
// denormalized copies taken from the user at promotion time; they are
// refreshed on the next mutation that touches them, not kept strictly in
// sync.
type CoachProfile struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Name      string             `bson:"name" json:"name"`
	NameCI    string             `bson:"name_ci" json:"name_ci"`
	School    string             `bson:"school,omitempty" json:"school,omitempty"`
	AvatarURL string             `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	Expertise string             `bson:"expertise,omitempty" json:"expertise,omitempty"`
	About     string             `bson:"about,omitempty" json:"about,omitempty"`
}
