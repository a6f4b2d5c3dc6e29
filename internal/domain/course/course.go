package course

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Course is the catalog metadata a user can bookmark.
type Course struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Platform    string `json:"platform"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	Level       string `json:"level,omitempty"`
	Duration    string `json:"duration,omitempty"`
}

func (c Course) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return errors.New("course id is required")
	}
	if strings.TrimSpace(c.Title) == "" {
		return errors.New("course title is required")
	}
	return nil
}

// Bookmark is a user's saved course. DBID is set once the remote row exists.
type Bookmark struct {
	Course
	DBID         *uuid.UUID `json:"$dbId,omitempty"`
	UserID       uuid.UUID  `json:"userId"`
	Completed    bool       `json:"completed"`
	BookmarkedAt time.Time  `json:"bookmarkedAt"`
}

type Patch struct {
	Completed *bool `json:"completed,omitempty"`
}

func (b *Bookmark) Apply(p Patch) {
	if p.Completed != nil {
		b.Completed = *p.Completed
	}
}

type Repository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*Bookmark, error)
	Add(ctx context.Context, userID uuid.UUID, c Course) (*Bookmark, error)
	Update(ctx context.Context, dbID uuid.UUID, patch Patch) (*Bookmark, error)
	Delete(ctx context.Context, dbID uuid.UUID) error
}

// Replayer re-applies a failed write only if the row has not been written
// since at. A skipped write returns an apperror.ErrConflict.
type Replayer interface {
	UpdateIfUnchangedSince(ctx context.Context, dbID uuid.UUID, patch Patch, at time.Time) (*Bookmark, error)
	DeleteIfUnchangedSince(ctx context.Context, dbID uuid.UUID, at time.Time) error
}
