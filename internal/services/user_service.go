package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"panini/internal/core"
	"panini/internal/storage"
)

// UserService manages household members.
type UserService struct {
	repo  *storage.SQLiteRepository
	now   func() time.Time
	newID func() string
}

// NewUserService creates a user service.
func NewUserService(repo *storage.SQLiteRepository) *UserService {
	return &UserService{repo: repo, now: time.Now, newID: uuid.NewString}
}

func normalizeUser(u core.User) core.User {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Name = strings.TrimSpace(u.Name)
	return u
}

// Create normalises the email and stores the member under a new id.
func (s *UserService) Create(ctx context.Context, u core.User) (core.User, error) {
	u = normalizeUser(u)
	if errs := u.Validate(); len(errs) > 0 {
		return core.User{}, errs
	}
	u.ID = s.newID()
	if err := s.repo.CreateUser(ctx, u, s.now()); err != nil {
		return core.User{}, err
	}
	return u, nil
}

// Update changes the name and email of an existing member.
func (s *UserService) Update(ctx context.Context, u core.User) (core.User, error) {
	u = normalizeUser(u)
	if errs := u.Validate(); len(errs) > 0 {
		return core.User{}, errs
	}
	if err := s.repo.UpdateUser(ctx, u); err != nil {
		return core.User{}, err
	}
	return u, nil
}

// Delete fails with a constraint error while transactions or payments reference the user.
func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteUser(ctx, id)
}

// Get returns core.ErrNotFound for unknown ids.
func (s *UserService) Get(ctx context.Context, id string) (core.User, error) {
	return s.repo.GetUser(ctx, id)
}

// GetByEmail matches the email case-insensitively.
func (s *UserService) GetByEmail(ctx context.Context, email string) (core.User, error) {
	return s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// List returns every member ordered by name.
func (s *UserService) List(ctx context.Context) ([]core.User, error) {
	return s.repo.ListUsers(ctx)
}
