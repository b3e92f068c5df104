package mock

import (
	"context"
	"sync"
	"time"

	"github.com/zenthra/zenthra-api/internal/domain"
)

// Directory is an in-memory users table. It is seeded with the demo
// admin profiles and accepts synthesized profiles for anyone else.
type Directory struct {
	mu   sync.Mutex
	byID map[string]*domain.UserProfile
}

// NewDirectory seeds the demo profiles.
func NewDirectory(now time.Time) *Directory {
	d := &Directory{
		byID: make(map[string]*domain.UserProfile),
	}
	for _, u := range SampleUsers(now) {
		u := u
		d.byID[u.ID] = &u
	}
	return d
}

func (d *Directory) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.byID[userID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "profile", ID: userID}
	}
	clone := *p
	return &clone, nil
}

func (d *Directory) CreateProfile(ctx context.Context, profile *domain.UserProfile) (*domain.UserProfile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	stored := *profile
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	d.byID[stored.ID] = &stored

	clone := stored
	return &clone, nil
}
