package memory

import (
	"context"
	"strings"

	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/usecase"
)

// UserRepository implements usecase.UserRepository.
type UserRepository struct {
	store *Store
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

// Create inserts a user. Emails are unique, case-insensitively.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.store.autocommit(ctx, func(s *state) error {
		for _, u := range s.users {
			if strings.EqualFold(u.Email, user.Email) {
				return domain.ErrDuplicateEmail
			}
		}
		s.users[user.ID] = *user
		return nil
	})
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := r.store.read(func(s *state) error {
		u, ok := s.users[id]
		if !ok {
			return domain.ErrUserNotFound
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmailForUpdate(_ context.Context, tx usecase.Transaction, email string) (*domain.User, error) {
	var user *domain.User
	err := r.store.write(tx, func(s *state) error {
		for _, u := range s.users {
			if strings.EqualFold(u.Email, email) {
				user = &u
				return nil
			}
		}
		return domain.ErrUserNotFound
	})
	return user, err
}

// UpdateSecurity stores the sign in counters.
func (r *UserRepository) UpdateSecurity(_ context.Context, tx usecase.Transaction, user *domain.User) error {
	return r.store.write(tx, func(s *state) error {
		stored, ok := s.users[user.ID]
		if !ok {
			return domain.ErrUserNotFound
		}
		stored.FailedAttempts = user.FailedAttempts
		stored.LockedUntil = user.LockedUntil
		stored.LastLoginAt = user.LastLoginAt
		stored.UpdatedAt = user.UpdatedAt
		s.users[user.ID] = stored
		return nil
	})
}

// UpdateTOTP stores the user's second factor settings.
func (r *UserRepository) UpdateTOTP(ctx context.Context, user *domain.User) error {
	return r.store.autocommit(ctx, func(s *state) error {
		stored, ok := s.users[user.ID]
		if !ok {
			return domain.ErrUserNotFound
		}
		stored.TOTPSecret = user.TOTPSecret
		stored.TOTPEnabled = user.TOTPEnabled
		stored.UpdatedAt = user.UpdatedAt
		s.users[user.ID] = stored
		return nil
	})
}

func (r *UserRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.store.autocommit(ctx, func(s *state) error {
		stored, ok := s.users[id]
		if !ok {
			return domain.ErrUserNotFound
		}
		stored.Active = active
		s.users[id] = stored
		return nil
	})
}
