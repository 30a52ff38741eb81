package users

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/joao-fontenele/plantnet-market/internal/domain"
)

type memoryRepository struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemoryRepository(seed ...domain.User) *memoryRepository {
	r := &memoryRepository{users: make(map[string]*domain.User)}
	for _, u := range seed {
		u := u
		r.users[u.Email] = &u
	}
	return r
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (r *memoryRepository) Create(_ context.Context, user *domain.User) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Email]; ok {
		return false, nil
	}
	user.ID = uuid.New().String()
	copied := *user
	r.users[user.Email] = &copied
	return true, nil
}

func (r *memoryRepository) ListExcept(_ context.Context, email string) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := []domain.User{}
	for _, u := range r.users {
		if u.Email != email {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (r *memoryRepository) MarkRequested(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok || u.Status == domain.UserStatusRequested {
		return false, nil
	}
	u.Status = domain.UserStatusRequested
	return true, nil
}

func (r *memoryRepository) SetRole(_ context.Context, email string, role domain.Role) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return false, nil
	}
	u.Role = role
	u.Status = domain.UserStatusVerified
	return true, nil
}
