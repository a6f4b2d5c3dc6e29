package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/khoahotran/pathwise/internal/application/service"
	"github.com/khoahotran/pathwise/internal/domain/course"
	"github.com/khoahotran/pathwise/internal/domain/pathway"
	"github.com/khoahotran/pathwise/internal/domain/profile"
	"github.com/khoahotran/pathwise/pkg/apperror"
	"github.com/khoahotran/pathwise/pkg/logger"
)

type mockCourseReplayer struct{ mock.Mock }

func (m *mockCourseReplayer) UpdateIfUnchangedSince(ctx context.Context, dbID uuid.UUID, patch course.Patch, at time.Time) (*course.Bookmark, error) {
	return &course.Bookmark{}, m.Called(ctx, dbID, patch, at).Error(0)
}

func (m *mockCourseReplayer) DeleteIfUnchangedSince(ctx context.Context, dbID uuid.UUID, at time.Time) error {
	return m.Called(ctx, dbID, at).Error(0)
}

type mockPathwayReplayer struct{ mock.Mock }

func (m *mockPathwayReplayer) UpdateIfUnchangedSince(ctx context.Context, dbID uuid.UUID, patch pathway.Patch, at time.Time) (*pathway.Membership, error) {
	return &pathway.Membership{}, m.Called(ctx, dbID, patch, at).Error(0)
}

func (m *mockPathwayReplayer) DeleteIfUnchangedSince(ctx context.Context, dbID uuid.UUID, at time.Time) error {
	return m.Called(ctx, dbID, at).Error(0)
}

type mockProfileReplayer struct{ mock.Mock }

func (m *mockProfileReplayer) UpdateIfUnchangedSince(ctx context.Context, dbID uuid.UUID, patch profile.Patch, at time.Time) (*profile.Profile, error) {
	return &profile.Profile{}, m.Called(ctx, dbID, patch, at).Error(0)
}

func newReplay() (*ReplayUseCase, *mockProfileReplayer, *mockCourseReplayer, *mockPathwayReplayer) {
	pr, cr, pw := new(mockProfileReplayer), new(mockCourseReplayer), new(mockPathwayReplayer)
	return NewReplayUseCase(pr, cr, pw, logger.NewNop()), pr, cr, pw
}

var failedAt = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func TestReplayCourseDelete(t *testing.T) {
	uc, _, courses, _ := newReplay()
	dbID := uuid.New()
	courses.On("DeleteIfUnchangedSince", mock.Anything, dbID, failedAt).Return(nil).Once()

	err := uc.Execute(context.Background(), service.ReconcileEvent{
		Collection: service.CollectionCourses, Op: service.OpDelete, DBID: &dbID, At: failedAt,
	})

	assert.NoError(t, err)
	courses.AssertExpectations(t)
}

func TestReplayPathwayUpdateDecodesPatch(t *testing.T) {
	uc, _, _, pathways := newReplay()
	dbID := uuid.New()
	pathways.On("UpdateIfUnchangedSince", mock.Anything, dbID, mock.MatchedBy(func(p pathway.Patch) bool {
		return p.Completed != nil && !*p.Completed
	}), failedAt).Return(nil).Once()

	err := uc.Execute(context.Background(), service.ReconcileEvent{
		Collection: service.CollectionPathways, Op: service.OpUpdate, DBID: &dbID, At: failedAt,
		Fields: json.RawMessage(`{"completed":false}`),
	})

	assert.NoError(t, err)
	pathways.AssertExpectations(t)
}

func TestReplayProfileUpdate(t *testing.T) {
	uc, profiles, _, _ := newReplay()
	dbID := uuid.New()
	profiles.On("UpdateIfUnchangedSince", mock.Anything, dbID, mock.MatchedBy(func(p profile.Patch) bool {
		return p.Bio != nil && *p.Bio == "hello"
	}), failedAt).Return(nil).Once()

	err := uc.Execute(context.Background(), service.ReconcileEvent{
		Collection: service.CollectionProfile, Op: service.OpUpdate, DBID: &dbID, At: failedAt,
		Fields: json.RawMessage(`{"bio":"hello"}`),
	})

	assert.NoError(t, err)
	profiles.AssertExpectations(t)
}

func TestReplayRejectsUnreplayableEvents(t *testing.T) {
	dbID := uuid.New()
	tests := []struct {
		name string
		ev   service.ReconcileEvent
	}{
		{"no remote row", service.ReconcileEvent{Collection: service.CollectionCourses, Op: service.OpDelete, At: failedAt}},
		{"no timestamp", service.ReconcileEvent{Collection: service.CollectionCourses, Op: service.OpDelete, DBID: &dbID}},
		{"unknown collection", service.ReconcileEvent{Collection: "careers", Op: service.OpDelete, DBID: &dbID, At: failedAt}},
		{"profile delete", service.ReconcileEvent{Collection: service.CollectionProfile, Op: service.OpDelete, DBID: &dbID, At: failedAt}},
		{"missing fields", service.ReconcileEvent{Collection: service.CollectionCourses, Op: service.OpUpdate, DBID: &dbID, At: failedAt}},
		{"malformed fields", service.ReconcileEvent{Collection: service.CollectionPathways, Op: service.OpUpdate, DBID: &dbID, At: failedAt, Fields: json.RawMessage(`[1]`)}},
		{"empty profile patch", service.ReconcileEvent{Collection: service.CollectionProfile, Op: service.OpUpdate, DBID: &dbID, At: failedAt, Fields: json.RawMessage(`{}`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, _, _, _ := newReplay()
			assert.ErrorIs(t, uc.Execute(context.Background(), tt.ev), apperror.ErrValidation)
		})
	}
}

func TestReplayRemoteFailureIsRetryable(t *testing.T) {
	uc, _, courses, _ := newReplay()
	dbID := uuid.New()
	courses.On("DeleteIfUnchangedSince", mock.Anything, dbID, failedAt).Return(errors.New("db down"))

	err := uc.Execute(context.Background(), service.ReconcileEvent{
		Collection: service.CollectionCourses, Op: service.OpDelete, DBID: &dbID, At: failedAt,
	})

	assert.ErrorIs(t, err, apperror.ErrRemoteStore)
}

func TestReplayMissingRowIsNotRetryable(t *testing.T) {
	uc, _, courses, _ := newReplay()
	dbID := uuid.New()
	courses.On("DeleteIfUnchangedSince", mock.Anything, dbID, failedAt).Return(apperror.NewNotFound("bookmark", dbID.String()))

	err := uc.Execute(context.Background(), service.ReconcileEvent{
		Collection: service.CollectionCourses, Op: service.OpDelete, DBID: &dbID, At: failedAt,
	})

	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.NotErrorIs(t, err, apperror.ErrRemoteStore)
}

func TestReplayStaleEventIsSkipped(t *testing.T) {
	uc, _, _, pathways := newReplay()
	dbID := uuid.New()
	stale := apperror.NewAppError(apperror.ErrConflict, "pathway changed after the failed write", "", nil)
	pathways.On("UpdateIfUnchangedSince", mock.Anything, dbID, mock.Anything, failedAt).Return(stale).Once()

	err := uc.Execute(context.Background(), service.ReconcileEvent{
		Collection: service.CollectionPathways, Op: service.OpUpdate, DBID: &dbID, At: failedAt,
		Fields: json.RawMessage(`{"completed":true}`),
	})

	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.NotErrorIs(t, err, apperror.ErrRemoteStore)
	pathways.AssertExpectations(t)
}
