package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/khoahotran/pathwise/internal/domain/course"
	"github.com/khoahotran/pathwise/internal/domain/pathway"
	"github.com/khoahotran/pathwise/internal/domain/profile"
	"github.com/khoahotran/pathwise/pkg/logger"
)

// Session bundles the stores of one user.
type Session struct {
	UserID      uuid.UUID
	Profile     *ProfileStore
	Courses     *CourseStore
	Pathways    *PathwayStore
	Careers     *CareerStore
	Preferences *PreferenceStore

	ready    chan struct{}
	lastUsed time.Time
}

type Repositories struct {
	Profiles profile.Repository
	Courses  course.Repository
	Pathways pathway.Repository
}

// Manager hands out one Session per user, creating and hydrating it on
// first use.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	repos    Repositories
	deps     Deps
	log      logger.Logger
	now      func() time.Time
}

func NewManager(repos Repositories, deps Deps) *Manager {
	log := deps.Logger
	if log == nil {
		log = logger.NewNop()
		deps.Logger = log
	}
	return &Manager{
		sessions: make(map[uuid.UUID]*Session),
		repos:    repos,
		deps:     deps,
		log:      log.Named("sessions"),
		now:      time.Now,
	}
}

func (m *Manager) newSession(userID uuid.UUID) *Session {
	return &Session{
		UserID:      userID,
		Profile:     NewProfileStore(userID, m.repos.Profiles, m.deps),
		Courses:     NewCourseStore(userID, m.repos.Courses, m.deps),
		Pathways:    NewPathwayStore(userID, m.repos.Pathways, m.deps),
		Careers:     NewCareerStore(userID, m.deps),
		Preferences: NewPreferenceStore(userID, m.deps.Cache),
		ready:       make(chan struct{}),
	}
}

// Get returns the user's session, waiting for the first hydration to finish.
// A session idle for longer than Deps.SessionIdleTTL is replaced, so the
// stores reload from the remote store.
func (m *Manager) Get(ctx context.Context, userID uuid.UUID) (*Session, error) {
	m.mu.Lock()
	now := m.now()
	s, ok := m.sessions[userID]
	if ok && m.expired(s, now) {
		m.log.Info("Session expired", zap.String("user_id", userID.String()))
		ok = false
	}
	if !ok {
		s = m.newSession(userID)
		m.sessions[userID] = s
	}
	s.lastUsed = now
	m.mu.Unlock()

	if !ok {
		m.start(context.WithoutCancel(ctx), s)
	}

	select {
	case <-s.ready:
		return s, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Drop forgets a user's session; the next Get starts from the cache again.
func (m *Manager) Drop(userID uuid.UUID) {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
}

// Len reports how many sessions are held.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) expired(s *Session, now time.Time) bool {
	return m.deps.SessionIdleTTL > 0 && now.Sub(s.lastUsed) > m.deps.SessionIdleTTL
}

// Sweep evicts idle sessions and returns how many were dropped.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	n := 0
	for id, s := range m.sessions {
		if m.expired(s, now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// RunJanitor sweeps idle sessions every interval until ctx is done.
func (m *Manager) RunJanitor(ctx context.Context, interval time.Duration) {
	if m.deps.SessionIdleTTL <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.log.Info("Evicted idle sessions", zap.Int("count", n))
			}
		}
	}
}

// start hydrates every store from the cache, then refreshes the remote ones.
// Store failures end up in each store's State, so the group never fails.
func (m *Manager) start(ctx context.Context, s *Session) {
	defer close(s.ready)

	log := m.log.With(zap.String("user_id", s.UserID.String()))
	hydrateThenLoad := func(name string, hydrate func(context.Context) error, load func(context.Context)) func() error {
		return func() error {
			if err := hydrate(ctx); err != nil {
				log.Warn("Hydrating store from cache failed", zap.String("store", name), zap.Error(err))
			}
			if load != nil {
				load(ctx)
			}
			return nil
		}
	}

	var g errgroup.Group
	g.Go(hydrateThenLoad("profile", s.Profile.Hydrate, s.Profile.Load))
	g.Go(hydrateThenLoad("courses", s.Courses.Hydrate, s.Courses.Load))
	g.Go(hydrateThenLoad("pathways", s.Pathways.Hydrate, s.Pathways.Load))
	g.Go(hydrateThenLoad("careers", s.Careers.Hydrate, nil))
	g.Go(hydrateThenLoad("preferences", s.Preferences.Hydrate, nil))
	_ = g.Wait()

	log.Info("Session ready")
}
