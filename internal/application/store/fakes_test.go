package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/pathwise/internal/application/service"
	"github.com/khoahotran/pathwise/internal/domain/course"
	"github.com/khoahotran/pathwise/internal/domain/pathway"
	"github.com/khoahotran/pathwise/internal/domain/profile"
)

var errRemote = errors.New("remote unavailable")

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, userID uuid.UUID, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[userID.String()+":"+key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, userID uuid.UUID, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[userID.String()+":"+key] = value
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []service.ReconcileEvent
}

func (p *recordingPublisher) PublishReconcile(_ context.Context, ev service.ReconcileEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Events() []service.ReconcileEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]service.ReconcileEvent(nil), p.events...)
}

type fakeCourseRepo struct {
	mu       sync.Mutex
	rows     map[uuid.UUID]*course.Bookmark
	failGet  bool
	failAdd  bool
	failDel  bool
	failUpd  bool
	getDelay time.Duration
	deletes  int
	addCalls int
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{rows: map[uuid.UUID]*course.Bookmark{}}
}

func (r *fakeCourseRepo) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*course.Bookmark, error) {
	if r.getDelay > 0 {
		select {
		case <-time.After(r.getDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failGet {
		return nil, errRemote
	}
	out := []*course.Bookmark{}
	for _, b := range r.rows {
		if b.UserID == userID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeCourseRepo) Add(_ context.Context, userID uuid.UUID, c course.Course) (*course.Bookmark, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addCalls++
	if r.failAdd {
		return nil, errRemote
	}
	id := uuid.New()
	b := &course.Bookmark{Course: c, DBID: &id, UserID: userID, BookmarkedAt: time.Now().UTC()}
	r.rows[id] = b
	cp := *b
	return &cp, nil
}

func (r *fakeCourseRepo) Update(_ context.Context, dbID uuid.UUID, patch course.Patch) (*course.Bookmark, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpd {
		return nil, errRemote
	}
	b, ok := r.rows[dbID]
	if !ok {
		return nil, errors.New("not found")
	}
	b.Apply(patch)
	cp := *b
	return &cp, nil
}

func (r *fakeCourseRepo) Delete(_ context.Context, dbID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes++
	if r.failDel {
		return errRemote
	}
	delete(r.rows, dbID)
	return nil
}

func (r *fakeCourseRepo) setFail(get, add, del, upd bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failGet, r.failAdd, r.failDel, r.failUpd = get, add, del, upd
}

type fakePathwayRepo struct {
	mu      sync.Mutex
	rows    map[uuid.UUID]*pathway.Membership
	owners  map[uuid.UUID]uuid.UUID
	failAdd bool
	failUpd bool
	updates int
}

func newFakePathwayRepo() *fakePathwayRepo {
	return &fakePathwayRepo{rows: map[uuid.UUID]*pathway.Membership{}, owners: map[uuid.UUID]uuid.UUID{}}
}

func (r *fakePathwayRepo) GetByUserID(_ context.Context, userID uuid.UUID) ([]*pathway.Membership, error) {
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

func (r *fakePathwayRepo) Add(_ context.Context, userID uuid.UUID, m pathway.Membership) (*pathway.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAdd {
		return nil, errRemote
	}
	id := uuid.New()
	m.DBID = &id
	r.rows[id] = &m
	r.owners[id] = userID
	cp := m
	return &cp, nil
}

func (r *fakePathwayRepo) Update(_ context.Context, dbID uuid.UUID, patch pathway.Patch) (*pathway.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	if r.failUpd {
		return nil, errRemote
	}
	m, ok := r.rows[dbID]
	if !ok {
		return nil, errors.New("not found")
	}
	m.Apply(patch)
	cp := *m
	return &cp, nil
}

func (r *fakePathwayRepo) Delete(_ context.Context, dbID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, dbID)
	delete(r.owners, dbID)
	return nil
}

type fakeProfileRepo struct {
	mu      sync.Mutex
	stored  *profile.Profile
	failAdd bool
	failUpd bool
	adds    int
	patches []profile.Patch
}

func (r *fakeProfileRepo) GetByUserID(_ context.Context, _ uuid.UUID) (*profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stored == nil {
		return nil, nil
	}
	return r.stored.Clone(), nil
}

func (r *fakeProfileRepo) Add(_ context.Context, userID uuid.UUID, p *profile.Profile) (*profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adds++
	if r.failAdd {
		return nil, errRemote
	}
	id := uuid.New()
	created := p.Clone()
	created.DBID = &id
	created.UserID = userID
	created.UpdatedAt = time.Now().UTC()
	r.stored = created
	return created.Clone(), nil
}

func (r *fakeProfileRepo) Update(_ context.Context, _ uuid.UUID, patch profile.Patch) (*profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patches = append(r.patches, patch)
	if r.failUpd {
		return nil, errRemote
	}
	r.stored.Apply(patch)
	return r.stored.Clone(), nil
}
