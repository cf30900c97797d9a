package app

import (
	"context"
	"errors"
	"time"

	"classquiz/internal/domain"
)

// UserRepository abstracts the principal directory: the mapping from a
// verified identity to a stored profile with role and class.
type UserRepository interface {
	Insert(ctx context.Context, user domain.User) (domain.User, error)
	FindByAuthUID(ctx context.Context, authUID string) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	Update(ctx context.Context, user domain.User) error
	FindAll(ctx context.Context) ([]domain.User, error)
}

// RegisterInput is the profile payload sent right after the identity
// provider has verified the caller.
type RegisterInput struct {
	Name  string
	Role  domain.Role
	Class string
}

// UserService maintains the principal directory.
type UserService struct {
	users UserRepository
	now   func() time.Time
}

func NewUserService(users UserRepository) *UserService {
	return NewUserServiceWithClock(users, time.Now)
}

// NewUserServiceWithClock allows deterministic timestamps in tests.
func NewUserServiceWithClock(users UserRepository, now func() time.Time) *UserService {
	return &UserService{users: users, now: now}
}

// Register creates or refreshes the profile for a verified identity.
// Registering again with the same role is idempotent and backfills any
// missing fields; asking for a different role is rejected. A profile
// found under the same email but a stale identity is re-bound to the
// verified one.
func (s *UserService) Register(ctx context.Context, authUID, email string, input RegisterInput) (domain.User, error) {
	if input.Name == "" {
		return domain.User{}, domain.Validationf("name is required")
	}
	if input.Role != domain.RoleTeacher && input.Role != domain.RoleStudent {
		return domain.User{}, domain.Validationf("role must be teacher or student")
	}
	if input.Role == domain.RoleStudent && input.Class == "" {
		return domain.User{}, domain.Validationf("class is required for students")
	}
	if input.Role == domain.RoleTeacher {
		input.Class = ""
	}

	now := s.now()

	existing, err := s.users.FindByAuthUID(ctx, authUID)
	switch {
	case err == nil:
		if existing.Role != input.Role {
			return domain.User{}, domain.ErrRoleConflict
		}
		changed := false
		if existing.Name == "" && input.Name != "" {
			existing.Name = input.Name
			changed = true
		}
		if existing.Email == "" && email != "" {
			existing.Email = email
			changed = true
		}
		if existing.Role == domain.RoleStudent && existing.Class == "" && input.Class != "" {
			existing.Class = input.Class
			changed = true
		}
		if changed {
			existing.UpdatedAt = now
			if err := s.users.Update(ctx, existing); err != nil {
				return domain.User{}, err
			}
		}
		return existing, nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return domain.User{}, err
	}

	if email != "" {
		byEmail, err := s.users.FindByEmail(ctx, email)
		switch {
		case err == nil:
			byEmail.AuthUID = authUID
			byEmail.Role = input.Role
			byEmail.Class = input.Class
			byEmail.UpdatedAt = now
			if err := s.users.Update(ctx, byEmail); err != nil {
				return domain.User{}, err
			}
			return byEmail, nil
		case !errors.Is(err, domain.ErrUserNotFound):
			return domain.User{}, err
		}
	}

	return s.users.Insert(ctx, domain.User{
		AuthUID:   authUID,
		Email:     email,
		Name:      input.Name,
		Role:      input.Role,
		Class:     input.Class,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// Profile resolves a verified identity to its stored profile.
func (s *UserService) Profile(ctx context.Context, authUID string) (domain.User, error) {
	return s.users.FindByAuthUID(ctx, authUID)
}

// UpdateProfile changes the caller's display name and, for students,
// their class label.
func (s *UserService) UpdateProfile(ctx context.Context, principal domain.User, name, class string) (domain.User, error) {
	if name != "" {
		principal.Name = name
	}
	if class != "" && principal.Role == domain.RoleStudent {
		principal.Class = class
	}
	principal.UpdatedAt = s.now()
	if err := s.users.Update(ctx, principal); err != nil {
		return domain.User{}, err
	}
	return principal, nil
}

// ListUsers returns every registered profile.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.FindAll(ctx)
}
