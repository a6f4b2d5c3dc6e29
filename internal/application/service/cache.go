package service

import (
	"context"

	"github.com/google/uuid"
)

// Fixed keys of the local preference cache.
const (
	KeyTheme             = "theme"
	KeyBookmarkedCourses = "bookmarked-courses"
	KeySkillProgress     = "skill-progress"
	KeyCareerGoals       = "career-goals"
	KeyProfile           = "profile"
)

// PreferenceCache is a small per-user key/value store. Get reports found=false
// for a missing key.
type PreferenceCache interface {
	Get(ctx context.Context, userID uuid.UUID, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, userID uuid.UUID, key string, value []byte) error
}
