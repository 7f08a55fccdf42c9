// Package user is the read-only directory the engine consults when walking
// referral chains. Account management lives elsewhere.
package user

import (
	"context"
	"errors"

	"github.com/MineVault/MineVault-Backend/db/store"
)

const (
	StatusActive    = "active"
	StatusSuspended = "suspended"

	RoleUser  = "user"
	RoleAdmin = "admin"
)

var ErrUserNotFound = errors.New("user not found")

type User struct {
	ID         int64
	Email      string
	ReferredBy int64 // zero when the user has no referrer
	Status     string
	Role       string
}

type Service struct {
	store store.Store
}

func NewUserService(store store.Store) *Service {
	return &Service{store: store}
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	u, err := s.store.GetUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return toUser(u), nil
}

func toUser(u store.User) *User {
	out := &User{
		ID:     u.ID,
		Email:  u.Email,
		Status: u.Status,
		Role:   u.Role,
	}
	if u.ReferredBy.Valid {
		out.ReferredBy = u.ReferredBy.Int64
	}
	return out
}
