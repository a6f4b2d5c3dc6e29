package store

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/khoahotran/pathwise/internal/application/service"
	"github.com/khoahotran/pathwise/internal/domain/career"
	"github.com/khoahotran/pathwise/pkg/apperror"
)

// CareerStore keeps the user's career goals. It has no remote counterpart;
// the preference cache is its only persistence.
type CareerStore struct {
	*base[career.Goals]
}

func NewCareerStore(userID uuid.UUID, deps Deps) *CareerStore {
	return &CareerStore{
		base: newBase(userID, "careers", service.KeyCareerGoals, career.Goals{Goals: []string{}}, cloneGoals, deps),
	}
}

func cloneGoals(g career.Goals) career.Goals {
	out := career.Goals{Goals: slices.Clone(g.Goals)}
	if g.Selected != nil {
		sel := *g.Selected
		out.Selected = &sel
	}
	return out
}

func (s *CareerStore) IsGoal(careerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.data.Goals, careerID)
}

// ToggleGoal adds the career to the goal set or removes it when present.
// It returns whether the career is a goal afterwards.
func (s *CareerStore) ToggleGoal(ctx context.Context, careerID string) (bool, error) {
	if _, ok := career.Lookup(careerID); !ok {
		return false, apperror.NewValidation("Unknown career: " + careerID)
	}
	s.mu.Lock()
	i := slices.Index(s.data.Goals, careerID)
	isGoal := i < 0
	if isGoal {
		s.data.Goals = append(s.data.Goals, careerID)
	} else {
		s.data.Goals = slices.Delete(s.data.Goals, i, i+1)
	}
	s.mu.Unlock()

	s.flush(ctx)
	return isGoal, nil
}

func (s *CareerStore) Select(ctx context.Context, careerID string) (career.Career, error) {
	c, ok := career.Lookup(careerID)
	if !ok {
		return career.Career{}, apperror.NewValidation("Unknown career: " + careerID)
	}
	s.mu.Lock()
	s.data.Selected = &c.ID
	s.mu.Unlock()

	s.flush(ctx)
	return c, nil
}

func (s *CareerStore) ClearSelected(ctx context.Context) {
	s.mu.Lock()
	s.data.Selected = nil
	s.mu.Unlock()
	s.flush(ctx)
}

// Goals returns the goal ids in selection order.
func (s *CareerStore) Goals() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.data.Goals)
}
