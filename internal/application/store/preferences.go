package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/khoahotran/pathwise/internal/application/service"
	"github.com/khoahotran/pathwise/pkg/apperror"
)

const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// PreferenceStore holds small scalar preferences backed only by the cache.
type PreferenceStore struct {
	mu     sync.RWMutex
	theme  string
	userID uuid.UUID
	cache  service.PreferenceCache
}

func NewPreferenceStore(userID uuid.UUID, cache service.PreferenceCache) *PreferenceStore {
	return &PreferenceStore{theme: ThemeSystem, userID: userID, cache: cache}
}

func (s *PreferenceStore) Hydrate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	raw, found, err := s.cache.Get(ctx, s.userID, service.KeyTheme)
	if err != nil || !found {
		return err
	}
	if validTheme(string(raw)) {
		s.mu.Lock()
		s.theme = string(raw)
		s.mu.Unlock()
	}
	return nil
}

func (s *PreferenceStore) Theme() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

func (s *PreferenceStore) SetTheme(ctx context.Context, theme string) error {
	if !validTheme(theme) {
		return apperror.NewValidation("Theme must be one of: light, dark, system")
	}
	s.mu.Lock()
	s.theme = theme
	s.mu.Unlock()
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Set(ctx, s.userID, service.KeyTheme, []byte(theme)); err != nil {
		return apperror.NewInternal("failed to persist theme", err)
	}
	return nil
}

func validTheme(t string) bool {
	return t == ThemeLight || t == ThemeDark || t == ThemeSystem
}
