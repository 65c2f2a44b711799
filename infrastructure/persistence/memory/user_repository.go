// Package memory holds the stub API's in-process user and sweet tables.
package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sweetshop/sweetshop/domain/entity"
)

var ErrEmailTaken = errors.New("email already registered")

// UserRecord is a stored account, including its password hash.
type UserRecord struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         entity.Role
	CreatedAt    time.Time
}

func (u *UserRecord) Profile() entity.UserProfile {
	return *entity.NewUserProfile(u.ID, u.Name, u.Email, u.Role)
}

type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*UserRecord
	byEmail map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]*UserRecord),
		byEmail: make(map[string]string),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create assigns an ID and creation time when they are unset.
func (r *UserRepository) Create(_ context.Context, user *UserRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := emailKey(user.Email)
	if _, taken := r.byEmail[key]; taken {
		return ErrEmailTaken
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	stored := *user
	r.byID[stored.ID] = &stored
	r.byEmail[key] = stored.ID
	return nil
}

// FindByEmail returns nil, nil when no account matches.
func (r *UserRepository) FindByEmail(_ context.Context, email string) (*UserRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[emailKey(email)]
	if !ok {
		return nil, nil
	}
	u := *r.byID[id]
	return &u, nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*UserRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}
