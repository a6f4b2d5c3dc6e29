package http

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/pathwise/internal/domain/course"
	"github.com/khoahotran/pathwise/internal/domain/pathway"
	"github.com/khoahotran/pathwise/internal/domain/profile"
	"github.com/khoahotran/pathwise/internal/domain/recommendation"
	"github.com/khoahotran/pathwise/internal/domain/user"
	"github.com/khoahotran/pathwise/pkg/apperror"
)

type stubGateway struct {
	mu    sync.Mutex
	raw   string
	err   error
	calls int
	last  *recommendation.ProfileInput
}

func (g *stubGateway) GenerateRecommendations(_ context.Context, p *recommendation.ProfileInput) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.last = p
	return g.raw, g.err
}

type memUsers struct {
	mu    sync.Mutex
	users map[string]*user.User
}

func (r *memUsers) FindByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[strings.ToLower(email)]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUsers) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Email]; ok {
		return apperror.NewConflict("user", "email", u.Email)
	}
	cp := *u
	r.users[u.Email] = &cp
	return nil
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (c *memCache) Get(_ context.Context, userID uuid.UUID, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[userID.String()+key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, userID uuid.UUID, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[userID.String()+key] = value
	return nil
}

type memProfiles struct {
	mu      sync.Mutex
	rows    map[uuid.UUID]*profile.Profile
	failUpd bool
}

func (r *memProfiles) GetByUserID(_ context.Context, userID uuid.UUID) (*profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.rows {
		if p.UserID == userID {
			return p.Clone(), nil
		}
	}
	return nil, nil
}

func (r *memProfiles) Add(_ context.Context, userID uuid.UUID, p *profile.Profile) (*profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.New()
	created := p.Clone()
	created.DBID = &id
	created.UserID = userID
	r.rows[id] = created
	return created.Clone(), nil
}

func (r *memProfiles) Update(_ context.Context, dbID uuid.UUID, patch profile.Patch) (*profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpd {
		return nil, errors.New("remote unavailable")
	}
	p, ok := r.rows[dbID]
	if !ok {
		return nil, apperror.NewNotFound("profile", dbID.String())
	}
	p.Apply(patch)
	return p.Clone(), nil
}

type memCourses struct {
	mu      sync.Mutex
	rows    map[uuid.UUID]*course.Bookmark
	failDel bool
}

func (r *memCourses) GetByUserID(_ context.Context, userID uuid.UUID) ([]*course.Bookmark, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*course.Bookmark{}
	for _, b := range r.rows {
		if b.UserID == userID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memCourses) Add(_ context.Context, userID uuid.UUID, c course.Course) (*course.Bookmark, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.New()
	b := &course.Bookmark{Course: c, DBID: &id, UserID: userID, BookmarkedAt: time.Now().UTC()}
	r.rows[id] = b
	cp := *b
	return &cp, nil
}

func (r *memCourses) Update(_ context.Context, dbID uuid.UUID, patch course.Patch) (*course.Bookmark, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.rows[dbID]
	if !ok {
		return nil, apperror.NewNotFound("bookmark", dbID.String())
	}
	b.Apply(patch)
	cp := *b
	return &cp, nil
}

func (r *memCourses) Delete(_ context.Context, dbID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failDel {
		return errors.New("remote unavailable")
	}
	delete(r.rows, dbID)
	return nil
}

type memPathways struct {
	mu     sync.Mutex
	rows   map[uuid.UUID]*pathway.Membership
	owners map[uuid.UUID]uuid.UUID
}

func (r *memPathways) GetByUserID(_ context.Context, userID uuid.UUID) ([]*pathway.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*pathway.Membership{}
	for id, m := range r.rows {
		if r.owners[id] == userID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memPathways) Add(_ context.Context, userID uuid.UUID, m pathway.Membership) (*pathway.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.New()
	m.DBID = &id
	r.rows[id] = &m
	r.owners[id] = userID
	cp := m
	return &cp, nil
}

func (r *memPathways) Update(_ context.Context, dbID uuid.UUID, patch pathway.Patch) (*pathway.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.rows[dbID]
	if !ok {
		return nil, apperror.NewNotFound("pathway", dbID.String())
	}
	m.Apply(patch)
	cp := *m
	return &cp, nil
}

func (r *memPathways) Delete(_ context.Context, dbID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, dbID)
	delete(r.owners, dbID)
	return nil
}
