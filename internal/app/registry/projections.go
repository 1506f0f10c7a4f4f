package registry

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/robacademy/robohub/internal/domain/models"
)

// AccountWithSchool is the display projection of one account plus the
// school record its free-text affiliation resolves to, when it resolves.
type AccountWithSchool struct {
	User     models.User
	SchoolID *primitive.ObjectID
}

// PendingRegistration annotates a registration with its competition's name
// for the flat moderation queue.
type PendingRegistration struct {
	models.Registration
	CompetitionName string
}

// GetAccountWithSchool loads an account and resolves its school by the
// legacy name join. SchoolID is nil when the affiliation is unset or does
// not match any school.
func (reg *Registry) GetAccountWithSchool(ctx context.Context, accountID primitive.ObjectID) (AccountWithSchool, error) {
	user, err := reg.loadUser(ctx, accountID)
	if err != nil {
		return AccountWithSchool{}, err
	}

	out := AccountWithSchool{User: user}
	if !user.HasSchool() {
		return out, nil
	}

	school, err := reg.schools.GetByName(ctx, user.School)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Stale affiliation; the account keeps its display name only.
		return out, nil
	}
	if err != nil {
		return AccountWithSchool{}, fmt.Errorf("resolve school: %w", err)
	}
	out.SchoolID = &school.ID
	return out, nil
}

// ListCoachesForSchool returns profiles whose denormalized school name
// matches, ordered by name. Coach affiliation is name-matched while admin
// binding is id-referenced, so the two views can diverge.
func (reg *Registry) ListCoachesForSchool(ctx context.Context, schoolName string) ([]models.CoachProfile, error) {
	return reg.coaches.FindBySchool(ctx, schoolName)
}

// ListPendingRegistrations flattens every competition's Pending
// registrations into one moderation queue. Cost is linear in competitions
// times registrations, fine for a single-academy deployment.
func (reg *Registry) ListPendingRegistrations(ctx context.Context) ([]PendingRegistration, error) {
	comps, err := reg.comps.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}

	var queue []PendingRegistration
	for _, comp := range comps {
		regs, err := reg.comps.ListPending(ctx, comp.ID)
		if err != nil {
			return nil, err
		}
		for _, r := range regs {
			queue = append(queue, PendingRegistration{Registration: r, CompetitionName: comp.Name})
		}
	}
	return queue, nil
}

// TopContributors returns accounts ordered by contribution count for the
// leaderboard.
func (reg *Registry) TopContributors(ctx context.Context, limit int64) ([]models.User, error) {
	return reg.users.Find(ctx, bson.M{},
		options.Find().
			SetSort(bson.D{{Key: "contributions", Value: -1}, {Key: "_id", Value: 1}}).
			SetLimit(limit))
}
