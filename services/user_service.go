package services

import (
	"context"

	"github.com/luma-learn/luma-api/model"
	"github.com/luma-learn/luma-api/utils/middleware"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserService mirrors identity-provider users into the local store. The
// local row is the system of record for role; the provider's claim only
// seeds brand-new rows.
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Ensure creates the local row for an identity if it does not exist yet
// and returns it. An existing row is left untouched, role included, so
// the call is a safe idempotent upsert for both the checkout path and the
// webhook path. defaultRole applies only when the identity carries no
// usable role claim.
func (s *UserService) Ensure(ctx context.Context, identity *middleware.Identity, defaultRole string) (*model.User, error) {
	role := defaultRole
	if identity.RoleClaim == model.RoleStudent || identity.RoleClaim == model.RoleInstructor {
		role = identity.RoleClaim
	}

	user := model.User{
		ID:    identity.UserID,
		Email: identity.Email,
		Role:  role,
	}
	if identity.Email == "" {
		user.Email = "no-email"
	}
	if identity.Name != "" {
		user.Name = &identity.Name
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&user).Error
	if err != nil {
		return nil, err
	}

	// Reload so callers see the stored row, not the insert candidate.
	if err := s.db.WithContext(ctx).First(&user, "id = ?", identity.UserID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// EnsureByID is the webhook-side variant of Ensure: only the user id is
// known, everything else comes later if the user ever signs in.
func (s *UserService) EnsureByID(ctx context.Context, userID string) error {
	user := model.User{
		ID:    userID,
		Email: "no-email",
		Role:  model.RoleStudent,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&user).Error
}

// SetRole records the role a user picked at onboarding. It writes only
// the local store; the identity provider's claim is treated as a cached
// mirror and never written back.
func (s *UserService) SetRole(ctx context.Context, identity *middleware.Identity, role string) (*model.User, error) {
	user := model.User{
		ID:    identity.UserID,
		Email: identity.Email,
		Role:  role,
	}
	if identity.Email == "" {
		user.Email = "no-email"
	}
	if identity.Name != "" {
		user.Name = &identity.Name
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role", "email", "name", "updated_at"}),
		}).
		Create(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}
