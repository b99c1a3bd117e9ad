// Package users holds the application's own accounts and their link to pod users.
package users

import (
	"context"
	"sync"

	"github.com/turtacn/appauth/internal/config"
	"github.com/turtacn/appauth/internal/domain/models"
	"github.com/turtacn/appauth/internal/domain/service"
	"github.com/turtacn/appauth/pkg/errors"
)

// MemoryUserDirectory is a read-mostly user store seeded from configuration.
type MemoryUserDirectory struct {
	mu    sync.RWMutex
	users map[string]models.User
}

var _ service.UserDirectory = (*MemoryUserDirectory)(nil)

// NewMemoryUserDirectory indexes users by username. Later entries replace earlier ones.
func NewMemoryUserDirectory(users []config.UserConfig) *MemoryUserDirectory {
	d := &MemoryUserDirectory{users: make(map[string]models.User, len(users))}
	d.Replace(users)
	return d
}

// Replace swaps the whole user set, used on configuration reload.
func (d *MemoryUserDirectory) Replace(users []config.UserConfig) {
	next := make(map[string]models.User, len(users))
	for _, u := range users {
		if u.Username == "" {
			continue
		}
		next[u.Username] = models.User{
			Username:    u.Username,
			DisplayName: u.DisplayName,
			Email:       u.Email,
			PodUserID:   u.PodUserID,
		}
	}
	d.mu.Lock()
	d.users = next
	d.mu.Unlock()
}

// Get returns the user with username or a user_not_found error.
func (d *MemoryUserDirectory) Get(ctx context.Context, username string) (*models.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[username]
	if !ok {
		return nil, errors.ErrUserNotFound(username)
	}
	return &u, nil
}

// FindByPodUserID returns the user linked to the pod user ID, if any.
func (d *MemoryUserDirectory) FindByPodUserID(ctx context.Context, podUserID string) (*models.User, bool) {
	if podUserID == "" {
		return nil, false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, u := range d.users {
		if u.PodUserID == podUserID {
			found := u
			return &found, true
		}
	}
	return nil, false
}
