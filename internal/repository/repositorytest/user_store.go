// Package repositorytest provides in-memory repository implementations for
// tests.
package repositorytest

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/fleet-service/internal/domain"
)

// UserStore is an in-memory UserRepository.
type UserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User
}

// NewUserStore creates an empty store.
func NewUserStore() *UserStore {
	return &UserStore{nextID: 1, users: make(map[int64]*domain.User)}
}

// Add inserts a user directly, assigning an id when missing.
func (s *UserStore) Add(user *domain.User) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == 0 {
		user.ID = s.nextID
		s.nextID++
	} else if user.ID >= s.nextID {
		s.nextID = user.ID + 1
	}
	if user.Status == "" {
		user.Status = domain.UserStatusActive
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = user
	return user
}

// Remove deletes a user, simulating account deletion between token issue
// and validation.
func (s *UserStore) Remove(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

func (s *UserStore) Create(_ context.Context, user *domain.User) error {
	s.Add(user)
	return nil
}

func (s *UserStore) Update(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now()
	s.users[user.ID] = user
	return nil
}

func (s *UserStore) GetByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *UserStore) ListByRole(_ context.Context, role domain.UserRole) ([]*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var users []*domain.User
	for _, user := range s.users {
		if user.Role == role {
			users = append(users, user)
		}
	}
	return users, nil
}
