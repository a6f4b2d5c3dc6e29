package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/pathwise/internal/application/service"
	"github.com/khoahotran/pathwise/internal/domain/pathway"
	"github.com/khoahotran/pathwise/pkg/apperror"
)

func newTestPathwayStore(t *testing.T) (*PathwayStore, *fakePathwayRepo, *recordingPublisher) {
	t.Helper()
	repo := newFakePathwayRepo()
	pub := &recordingPublisher{}
	return NewPathwayStore(uuid.New(), repo, Deps{Cache: newMemCache(), Publisher: pub}), repo, pub
}

func TestPathwayToggleTwiceRestoresCompletion(t *testing.T) {
	ctx := context.Background()
	s, repo, _ := newTestPathwayStore(t)

	require.NoError(t, s.Toggle(ctx, "data-science"))
	assert.True(t, s.IsPathwayCompleted("data-science"))
	items := s.Snapshot().Items
	require.Len(t, items, 1)
	assert.NotNil(t, items[0].DBID)
	assert.NotNil(t, items[0].CompletedAt)
	assert.Equal(t, "Data Science", items[0].Name)

	require.NoError(t, s.Toggle(ctx, "data-science"))
	assert.False(t, s.IsPathwayCompleted("data-science"))
	assert.Nil(t, s.Snapshot().Items[0].CompletedAt)
	assert.Equal(t, 1, repo.updates)
}

func TestPathwayToggleFailureKeepsOptimisticFlip(t *testing.T) {
	ctx := context.Background()
	s, repo, pub := newTestPathwayStore(t)
	require.NoError(t, s.Toggle(ctx, "ux-design"))

	repo.failUpd = true
	require.NoError(t, s.Toggle(ctx, "ux-design"))

	assert.False(t, s.IsPathwayCompleted("ux-design"))
	assert.NotEmpty(t, s.Snapshot().Error)
	require.Len(t, s.Pending(), 1)
	events := pub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, service.OpUpdate, events[0].Op)
	assert.JSONEq(t, `{"completed":false}`, string(events[0].Fields))
	assert.False(t, events[0].At.IsZero())
	assert.Equal(t, s.Pending()[0].At, events[0].At)
}

func TestPathwayAddFailureAddsNothing(t *testing.T) {
	ctx := context.Background()
	s, repo, _ := newTestPathwayStore(t)
	repo.failAdd = true

	require.NoError(t, s.Toggle(ctx, "cybersecurity"))

	assert.Empty(t, s.Snapshot().Items)
	assert.NotEmpty(t, s.Snapshot().Error)
	assert.False(t, s.IsPathwayCompleted("cybersecurity"))
}

func TestPathwayToggleUnknown(t *testing.T) {
	s, _, _ := newTestPathwayStore(t)
	err := s.Toggle(context.Background(), "basket-weaving")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestPathwayProgress(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestPathwayStore(t)
	total := len(pathway.Catalog())

	assert.Equal(t, 0, s.Progress(total))
	assert.Equal(t, 0, s.Progress(0))

	require.NoError(t, s.Toggle(ctx, "data-science"))
	require.NoError(t, s.Toggle(ctx, "ux-design"))
	assert.Equal(t, pathway.Progress(2, total), s.Progress(total))
	assert.Equal(t, 50, s.Progress(4))

	require.NoError(t, s.Toggle(ctx, "ux-design"))
	assert.Equal(t, 25, s.Progress(4))
}

func TestPathwayLoadAndRemove(t *testing.T) {
	ctx := context.Background()
	s, repo, _ := newTestPathwayStore(t)
	require.NoError(t, s.Toggle(ctx, "cloud-engineering"))

	other := NewPathwayStore(s.userID, repo, Deps{})
	other.Load(ctx)
	assert.True(t, other.IsPathwayCompleted("cloud-engineering"))

	require.NoError(t, other.Remove(ctx, "cloud-engineering"))
	assert.Empty(t, other.Snapshot().Items)
	assert.Empty(t, repo.rows)

	assert.ErrorIs(t, other.Remove(ctx, "cloud-engineering"), apperror.ErrNotFound)
}
