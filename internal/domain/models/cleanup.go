// internal/domain/models/cleanup.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IdentityCleanupTask is queued when an account is deleted. The external
// identity provider has no programmatic deletion hook, so an operator works
// this queue by hand and marks each task done.
type IdentityCleanupTask struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Token       string             `bson:"token"` // uuid, quoted in the operator runbook
	UserID      primitive.ObjectID `bson:"user_id"`
	Email       string             `bson:"email"`
	RequestedBy primitive.ObjectID `bson:"requested_by"`
	RequestedAt time.Time          `bson:"requested_at"`
	Done        bool               `bson:"done"`
}
