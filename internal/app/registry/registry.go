// Package registry owns role transitions and the consistency rules across
// the denormalized user, coach, and school records. Every operation takes
// the caller's identity explicitly; nothing here reads an ambient session.
package registry

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	cleanupstore "github.com/robacademy/robohub/internal/app/store/cleanup"
	coachstore "github.com/robacademy/robohub/internal/app/store/coaches"
	compstore "github.com/robacademy/robohub/internal/app/store/competitions"
	poststore "github.com/robacademy/robohub/internal/app/store/posts"
	schoolstore "github.com/robacademy/robohub/internal/app/store/schools"
	userstore "github.com/robacademy/robohub/internal/app/store/users"
	"github.com/robacademy/robohub/internal/app/system/authz"
	"github.com/robacademy/robohub/internal/app/system/txn"
	"github.com/robacademy/robohub/internal/domain/models"
)

// Error taxonomy surfaced to callers. Store and network failures pass
// through wrapped; everything else maps onto one of these.
var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("not allowed")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Warning records a best-effort secondary write that failed after the
// primary write succeeded.
type Warning struct {
	Op  string
	Err error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %v", w.Op, w.Err)
}

// Result reports a completed operation. Warnings is non-empty when a
// secondary write failed; the primary invariant still holds.
type Result struct {
	Warnings []Warning
}

// Applied reports whether the operation completed with no secondary
// failures.
func (r Result) Applied() bool {
	return len(r.Warnings) == 0
}

// Registry performs role transitions, the contribution counter updates,
// and the read projections built over them.
type Registry struct {
	client  *mongo.Client
	users   *userstore.Store
	coaches *coachstore.Store
	schools *schoolstore.Store
	comps   *compstore.Store
	posts   *poststore.Store
	cleanup *cleanupstore.Store
	logger  *zap.Logger
}

func New(db *mongo.Database, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		client:  db.Client(),
		users:   userstore.New(db),
		coaches: coachstore.New(db),
		schools: schoolstore.New(db),
		comps:   compstore.New(db),
		posts:   poststore.New(db),
		cleanup: cleanupstore.New(db),
		logger:  logger,
	}
}

func (reg *Registry) warn(res *Result, op string, err error) {
	res.Warnings = append(res.Warnings, Warning{Op: op, Err: err})
	reg.logger.Warn("best-effort write failed", zap.String("op", op), zap.Error(err))
}

func (reg *Registry) loadUser(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	user, err := reg.users.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	return *user, nil
}

// PromoteToCoach flips the account to coach and creates its profile in one
// batch. Updating the school's display coach is best effort; its failure
// surfaces as a warning, never as an error.
func (reg *Registry) PromoteToCoach(ctx context.Context, actor authz.Actor, accountID primitive.ObjectID) (Result, error) {
	var res Result
	if actor.Role != models.RoleAdmin {
		return res, ErrUnauthorized
	}

	user, err := reg.loadUser(ctx, accountID)
	if err != nil {
		return res, err
	}

	profile := models.CoachProfile{
		ID:        user.ID,
		Name:      user.FullName,
		School:    user.School,
		AvatarURL: user.AvatarURL,
		Expertise: models.DefaultExpertise,
		About:     "An experienced coach from " + user.School,
	}
	if !user.HasSchool() {
		profile.School = ""
		profile.About = "An experienced robotics coach"
	}

	err = txn.Run(ctx, reg.client, func(ctx context.Context) error {
		if err := reg.users.SetRole(ctx, user.ID, models.RoleCoach); err != nil {
			return err
		}
		return reg.coaches.Upsert(ctx, profile)
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return res, ErrNotFound
	}
	if err != nil {
		return res, fmt.Errorf("promote to coach: %w", err)
	}

	if user.HasSchool() {
		if err := reg.schools.SetCoachName(ctx, user.School, user.FullName); err != nil {
			reg.warn(&res, "update school coach display name", err)
		}
	}
	return res, nil
}

// DemoteCoach returns the account to student and removes its profile.
// Demoting an account that is already a student is a no-op.
func (reg *Registry) DemoteCoach(ctx context.Context, actor authz.Actor, accountID primitive.ObjectID) (Result, error) {
	var res Result
	if actor.Role != models.RoleAdmin {
		return res, ErrUnauthorized
	}

	user, err := reg.loadUser(ctx, accountID)
	if err != nil {
		return res, err
	}

	err = txn.Run(ctx, reg.client, func(ctx context.Context) error {
		if err := reg.users.SetRole(ctx, user.ID, models.RoleStudent); err != nil {
			return err
		}
		return reg.coaches.Delete(ctx, user.ID)
	})
	if err != nil {
		return res, fmt.Errorf("demote coach: %w", err)
	}
	return res, nil
}

// PromoteToSchoolAdmin binds the account as the school's admin. An
// existing binding is silently displaced; the displaced account keeps its
// stale school pointer. Displacement semantics are intentional, see the
// demotion guard below.
func (reg *Registry) PromoteToSchoolAdmin(ctx context.Context, actor authz.Actor, accountID, schoolID primitive.ObjectID) (Result, error) {
	var res Result
	if actor.Role != models.RoleAdmin {
		return res, ErrUnauthorized
	}
	if schoolID == primitive.NilObjectID {
		return res, ErrInvalidArgument
	}

	user, err := reg.loadUser(ctx, accountID)
	if err != nil {
		return res, err
	}
	school, err := reg.schools.GetByID(ctx, schoolID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return res, ErrNotFound
	}
	if err != nil {
		return res, fmt.Errorf("load school: %w", err)
	}

	err = txn.Run(ctx, reg.client, func(ctx context.Context) error {
		if err := reg.users.BindSchoolAdmin(ctx, user.ID, school.ID, school.Name); err != nil {
			return err
		}
		return reg.schools.SetAdmin(ctx, school.ID, user.ID)
	})
	if err != nil {
		return res, fmt.Errorf("promote to school admin: %w", err)
	}
	return res, nil
}

// DemoteSchoolAdmin returns the account to student and clears the school's
// admin binding only while it still points at this account. A binding
// displaced by a later promotion is left alone. Demoting an account that
// does not hold school_admin is a no-op, so a coach's role and profile
// survive a stray call.
func (reg *Registry) DemoteSchoolAdmin(ctx context.Context, actor authz.Actor, accountID primitive.ObjectID) (Result, error) {
	var res Result
	if actor.Role != models.RoleAdmin {
		return res, ErrUnauthorized
	}

	user, err := reg.loadUser(ctx, accountID)
	if err != nil {
		return res, err
	}
	if user.Role != models.RoleSchoolAdmin {
		return res, nil
	}

	err = txn.Run(ctx, reg.client, func(ctx context.Context) error {
		if err := reg.users.UnbindSchoolAdmin(ctx, user.ID); err != nil {
			return err
		}
		if user.SchoolID == nil {
			return nil
		}
		return reg.schools.ClearAdminIf(ctx, *user.SchoolID, user.ID)
	})
	if err != nil {
		return res, fmt.Errorf("demote school admin: %w", err)
	}
	return res, nil
}

// DeleteAccount removes the account, its coach profile, and its posts, and
// queues the identity-provider cleanup task. A school admin binding
// pointing at the deleted account is left in place; the admin screens
// render it as vacant. Admins may delete anyone, everyone else only
// themselves.
func (reg *Registry) DeleteAccount(ctx context.Context, actor authz.Actor, accountID primitive.ObjectID) (Result, error) {
	var res Result
	if actor.Role != models.RoleAdmin && actor.ID != accountID {
		return res, ErrUnauthorized
	}

	user, err := reg.loadUser(ctx, accountID)
	if err != nil {
		return res, err
	}

	err = txn.Run(ctx, reg.client, func(ctx context.Context) error {
		if _, err := reg.users.Delete(ctx, user.ID); err != nil {
			return err
		}
		if err := reg.coaches.Delete(ctx, user.ID); err != nil {
			return err
		}
		if _, err := reg.posts.DeleteByAuthor(ctx, user.ID); err != nil {
			return err
		}
		_, err := reg.cleanup.Enqueue(ctx, user.ID, actor.ID, user.Email)
		return err
	})
	if err != nil {
		return res, fmt.Errorf("delete account: %w", err)
	}
	return res, nil
}

// ApprovePost publishes a pending post and credits the author's
// contribution counter. Approving an already approved post changes
// nothing.
func (reg *Registry) ApprovePost(ctx context.Context, actor authz.Actor, postID primitive.ObjectID) (Result, error) {
	var res Result
	if actor.Role != models.RoleAdmin {
		return res, ErrUnauthorized
	}

	post, err := reg.posts.GetByID(ctx, postID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return res, ErrNotFound
	}
	if err != nil {
		return res, fmt.Errorf("load post: %w", err)
	}
	if post.Status == models.PostApproved {
		return res, nil
	}

	err = txn.Run(ctx, reg.client, func(ctx context.Context) error {
		if err := reg.posts.SetStatus(ctx, post.ID, models.PostApproved); err != nil {
			return err
		}
		// Credit survives author deletion checks: a deleted author simply
		// matches no document and the increment is skipped.
		if err := reg.users.IncrementContributions(ctx, post.AuthorID, 1); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("approve post: %w", err)
	}
	return res, nil
}

// AddComment attaches a comment to a post and credits the commenter's
// contribution counter. Any signed-in account may comment on an approved
// post.
func (reg *Registry) AddComment(ctx context.Context, actor authz.Actor, postID primitive.ObjectID, text string) (Result, error) {
	var res Result
	if actor.ID == primitive.NilObjectID {
		return res, ErrUnauthorized
	}
	if text == "" {
		return res, ErrInvalidArgument
	}

	commenter, err := reg.loadUser(ctx, actor.ID)
	if err != nil {
		return res, err
	}
	post, err := reg.posts.GetByID(ctx, postID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return res, ErrNotFound
	}
	if err != nil {
		return res, fmt.Errorf("load post: %w", err)
	}

	comment := models.Comment{
		UserID:     commenter.ID,
		UserName:   commenter.FullName,
		UserAvatar: commenter.AvatarURL,
		Text:       text,
	}
	err = txn.Run(ctx, reg.client, func(ctx context.Context) error {
		if err := reg.posts.AddComment(ctx, post.ID, comment); err != nil {
			return err
		}
		return reg.users.IncrementContributions(ctx, commenter.ID, 1)
	})
	if err != nil {
		return res, fmt.Errorf("add comment: %w", err)
	}
	return res, nil
}
