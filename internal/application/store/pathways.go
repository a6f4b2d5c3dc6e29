package store

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/pathwise/internal/application/service"
	"github.com/khoahotran/pathwise/internal/domain/pathway"
	"github.com/khoahotran/pathwise/pkg/apperror"
)

// PathwayStore mirrors the user's pathway memberships and completion.
type PathwayStore struct {
	*base[[]pathway.Membership]
	repo pathway.Repository
	now  func() time.Time
}

func NewPathwayStore(userID uuid.UUID, repo pathway.Repository, deps Deps) *PathwayStore {
	return &PathwayStore{
		base: newBase(userID, service.CollectionPathways, service.KeySkillProgress,
			[]pathway.Membership{}, slices.Clone[[]pathway.Membership], deps),
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *PathwayStore) Load(ctx context.Context) {
	s.load(ctx, func(ctx context.Context) ([]pathway.Membership, error) {
		rows, err := s.repo.GetByUserID(ctx, s.userID)
		if err != nil {
			return nil, err
		}
		items := make([]pathway.Membership, 0, len(rows))
		for _, r := range rows {
			items = append(items, *r)
		}
		return items, nil
	}, "Failed to load your pathway progress. Please try again.")
}

func (s *PathwayStore) IsPathwayCompleted(pathwayID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(pathwayID)
	return i >= 0 && s.data[i].Completed
}

// Progress is the completed share of a catalog of total pathways, in percent.
func (s *PathwayStore) Progress(total int) int {
	s.mu.RLock()
	completed := 0
	for _, m := range s.data {
		if m.Completed {
			completed++
		}
	}
	s.mu.RUnlock()
	return pathway.Progress(completed, total)
}

// Toggle flips completion of an existing membership optimistically, or
// creates a completed membership when none exists.
func (s *PathwayStore) Toggle(ctx context.Context, pathwayID string) error {
	p, ok := pathway.Lookup(pathwayID)
	if !ok {
		return apperror.NewValidation("Unknown pathway: " + pathwayID)
	}

	s.mu.Lock()
	i := s.indexOf(pathwayID)
	if i < 0 {
		s.mu.Unlock()
		now := s.now()
		return s.Add(ctx, pathway.Membership{PathwayID: p.ID, Name: p.Name, Completed: true, CompletedAt: &now})
	}
	completed := !s.data[i].Completed
	patch := pathway.Patch{Completed: &completed}
	if completed {
		now := s.now()
		patch.CompletedAt = &now
	}
	s.data[i].Apply(patch)
	dbID := s.data[i].DBID
	s.errMsg = ""
	s.mu.Unlock()

	s.flush(ctx)
	s.pushUpdate(ctx, pathwayID, dbID, patch)
	return nil
}

// Add creates the membership remotely before it becomes visible in memory.
func (s *PathwayStore) Add(ctx context.Context, m pathway.Membership) error {
	p, ok := pathway.Lookup(m.PathwayID)
	if !ok {
		return apperror.NewValidation("Unknown pathway: " + m.PathwayID)
	}
	m.Name = p.Name
	s.clearError()

	callCtx, cancel := s.callCtx(ctx)
	created, err := s.repo.Add(callCtx, s.userID, m)
	cancel()
	if err != nil {
		s.setError("Failed to save pathway progress. Please try again.", err)
		return nil
	}

	s.mu.Lock()
	if i := s.indexOf(created.PathwayID); i >= 0 {
		s.data[i] = *created
	} else {
		s.data = append(s.data, *created)
	}
	s.mu.Unlock()
	s.flush(ctx)
	return nil
}

// Update writes the patch remotely, then applies it in memory.
func (s *PathwayStore) Update(ctx context.Context, pathwayID string, patch pathway.Patch) error {
	s.mu.RLock()
	i := s.indexOf(pathwayID)
	var dbID *uuid.UUID
	if i >= 0 {
		dbID = s.data[i].DBID
	}
	s.mu.RUnlock()
	if i < 0 {
		return apperror.NewNotFound("pathway membership", pathwayID)
	}

	if dbID == nil {
		s.mu.Lock()
		if j := s.indexOf(pathwayID); j >= 0 {
			s.data[j].Apply(patch)
		}
		s.mu.Unlock()
		s.flush(ctx)
		s.pushUpdate(ctx, pathwayID, nil, patch)
		return nil
	}

	s.clearError()
	callCtx, cancel := s.callCtx(ctx)
	updated, err := s.repo.Update(callCtx, *dbID, patch)
	cancel()
	if err != nil {
		s.setError("Failed to update pathway progress. Please try again.", err)
		return nil
	}
	s.mu.Lock()
	if j := s.indexOf(pathwayID); j >= 0 {
		s.data[j] = *updated
	}
	s.mu.Unlock()
	s.flush(ctx)
	return nil
}

// Remove drops the membership immediately; remote failures are not reverted.
func (s *PathwayStore) Remove(ctx context.Context, pathwayID string) error {
	s.mu.Lock()
	i := s.indexOf(pathwayID)
	if i < 0 {
		s.mu.Unlock()
		return apperror.NewNotFound("pathway membership", pathwayID)
	}
	removed := s.data[i]
	s.data = slices.Delete(s.data, i, i+1)
	s.errMsg = ""
	s.mu.Unlock()

	s.flush(ctx)

	if removed.DBID == nil {
		return nil
	}
	callCtx, cancel := s.callCtx(ctx)
	err := s.repo.Delete(callCtx, *removed.DBID)
	cancel()
	if err != nil {
		s.setError("Failed to remove pathway on the server. It may reappear after a refresh.", err)
		s.markPending(ctx, pathwayID, service.OpDelete, removed.DBID, nil, err.Error())
	}
	return nil
}

// pushUpdate sends an already-applied patch to the remote store. Failures
// keep the local flip and are recorded as pending.
func (s *PathwayStore) pushUpdate(ctx context.Context, pathwayID string, dbID *uuid.UUID, patch pathway.Patch) {
	if dbID == nil {
		s.log.Warn("Pathway membership has no remote row yet, change kept local only", zap.String("pathway_id", pathwayID))
		s.markPending(ctx, pathwayID, service.OpUpdate, nil, patch, "no remote row identifier")
		return
	}
	callCtx, cancel := s.callCtx(ctx)
	_, err := s.repo.Update(callCtx, *dbID, patch)
	cancel()
	if err != nil {
		s.setError("Failed to update pathway progress. Please try again.", err)
		s.markPending(ctx, pathwayID, service.OpUpdate, dbID, patch, err.Error())
	}
}

func (s *PathwayStore) indexOf(pathwayID string) int {
	return slices.IndexFunc(s.data, func(m pathway.Membership) bool { return m.PathwayID == pathwayID })
}
