package store

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/pathwise/internal/application/service"
	"github.com/khoahotran/pathwise/internal/domain/course"
	"github.com/khoahotran/pathwise/pkg/apperror"
)

// CourseStore mirrors the user's bookmarked courses.
type CourseStore struct {
	*base[[]course.Bookmark]
	repo course.Repository
}

func NewCourseStore(userID uuid.UUID, repo course.Repository, deps Deps) *CourseStore {
	return &CourseStore{
		base: newBase(userID, service.CollectionCourses, service.KeyBookmarkedCourses,
			[]course.Bookmark{}, slices.Clone[[]course.Bookmark], deps),
		repo: repo,
	}
}

func (s *CourseStore) Load(ctx context.Context) {
	s.load(ctx, func(ctx context.Context) ([]course.Bookmark, error) {
		rows, err := s.repo.GetByUserID(ctx, s.userID)
		if err != nil {
			return nil, err
		}
		items := make([]course.Bookmark, 0, len(rows))
		for _, r := range rows {
			items = append(items, *r)
		}
		return items, nil
	}, "Failed to load your bookmarked courses. Please try again.")
}

func (s *CourseStore) IsBookmarked(courseID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(courseID) >= 0
}

// Toggle removes the bookmark when present and adds it otherwise.
func (s *CourseStore) Toggle(ctx context.Context, c course.Course) error {
	if s.IsBookmarked(c.ID) {
		return s.Remove(ctx, c.ID)
	}
	return s.Add(ctx, c)
}

// Add persists the bookmark first and only then appends the created row.
func (s *CourseStore) Add(ctx context.Context, c course.Course) error {
	if err := c.Validate(); err != nil {
		return apperror.NewValidation(err.Error())
	}
	if s.IsBookmarked(c.ID) {
		return nil
	}
	s.clearError()

	callCtx, cancel := s.callCtx(ctx)
	created, err := s.repo.Add(callCtx, s.userID, c)
	cancel()
	if err != nil {
		s.setError("Failed to bookmark course. Please try again.", err)
		return nil
	}

	s.mu.Lock()
	if i := s.indexOf(created.ID); i >= 0 {
		s.data[i] = *created
	} else {
		s.data = append(s.data, *created)
	}
	s.mu.Unlock()

	s.flush(ctx)
	return nil
}

// Remove drops the bookmark from memory immediately. The remote delete only
// happens for persisted rows and a failure does not restore the bookmark.
func (s *CourseStore) Remove(ctx context.Context, courseID string) error {
	s.mu.Lock()
	i := s.indexOf(courseID)
	if i < 0 {
		s.mu.Unlock()
		return apperror.NewNotFound("bookmark", courseID)
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
		s.setError("Failed to remove bookmark on the server. It may reappear after a refresh.", err)
		s.markPending(ctx, courseID, service.OpDelete, removed.DBID, nil, err.Error())
	}
	return nil
}

// Update writes the patch remotely, then applies it in memory. A bookmark
// without a remote row is patched in memory only and flagged as pending.
func (s *CourseStore) Update(ctx context.Context, courseID string, patch course.Patch) error {
	s.mu.RLock()
	i := s.indexOf(courseID)
	var dbID *uuid.UUID
	if i >= 0 {
		dbID = s.data[i].DBID
	}
	s.mu.RUnlock()
	if i < 0 {
		return apperror.NewNotFound("bookmark", courseID)
	}

	if dbID == nil {
		s.log.Warn("Bookmark has no remote row yet, update kept local only", zap.String("course_id", courseID))
		s.patchLocal(courseID, patch)
		s.flush(ctx)
		s.markPending(ctx, courseID, service.OpUpdate, nil, patch, "no remote row identifier")
		return nil
	}

	s.clearError()
	callCtx, cancel := s.callCtx(ctx)
	updated, err := s.repo.Update(callCtx, *dbID, patch)
	cancel()
	if err != nil {
		s.setError("Failed to update course. Please try again.", err)
		return nil
	}

	s.mu.Lock()
	if j := s.indexOf(courseID); j >= 0 {
		s.data[j] = *updated
	}
	s.mu.Unlock()
	s.flush(ctx)
	return nil
}

func (s *CourseStore) patchLocal(courseID string, patch course.Patch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(courseID); i >= 0 {
		s.data[i].Apply(patch)
	}
}

// indexOf must be called with the lock held.
func (s *CourseStore) indexOf(courseID string) int {
	return slices.IndexFunc(s.data, func(b course.Bookmark) bool { return b.ID == courseID })
}
