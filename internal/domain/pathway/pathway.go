package pathway

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

type Pathway struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var catalog = []Pathway{
	{ID: "frontend-development", Name: "Frontend Development", Description: "HTML, CSS, JavaScript and a modern UI framework."},
	{ID: "backend-development", Name: "Backend Development", Description: "APIs, databases and server-side languages."},
	{ID: "data-science", Name: "Data Science", Description: "Statistics, Python and machine learning fundamentals."},
	{ID: "cloud-engineering", Name: "Cloud Engineering", Description: "Cloud platforms, containers and infrastructure as code."},
	{ID: "ux-design", Name: "UX Design", Description: "User research, prototyping and interaction design."},
	{ID: "cybersecurity", Name: "Cybersecurity", Description: "Networking, threat modeling and secure systems."},
	{ID: "product-management", Name: "Product Management", Description: "Discovery, roadmapping and delivery."},
	{ID: "mobile-development", Name: "Mobile Development", Description: "Native and cross-platform mobile apps."},
}

// Catalog returns a copy of the static pathway catalog.
func Catalog() []Pathway {
	return append([]Pathway(nil), catalog...)
}

func Lookup(id string) (Pathway, bool) {
	for _, p := range catalog {
		if p.ID == id {
			return p, true
		}
	}
	return Pathway{}, false
}

// Membership is a user's progress on one catalog pathway.
type Membership struct {
	PathwayID   string     `json:"pathwayId"`
	Name        string     `json:"name"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	DBID        *uuid.UUID `json:"$dbId,omitempty"`
}

type Patch struct {
	Completed   *bool      `json:"completed,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func (m *Membership) Apply(p Patch) {
	if p.Completed != nil {
		m.Completed = *p.Completed
		if !m.Completed {
			m.CompletedAt = nil
		}
	}
	if p.CompletedAt != nil {
		t := *p.CompletedAt
		m.CompletedAt = &t
	}
}

// Record is the raw row shape read from the remote store.
type Record struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	PathwayID   string
	Completed   bool
	CompletedAt *time.Time
}

var (
	ErrUnknownPathway = errors.New("unknown pathway")
	ErrMalformedRow   = errors.New("malformed pathway row")
)

// Decode maps a Record into a Membership. Rows that do not reference a
// catalog pathway or carry no identifier are rejected.
func Decode(r Record) (*Membership, error) {
	if r.ID == uuid.Nil || r.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing identifier", ErrMalformedRow)
	}
	p, ok := Lookup(r.PathwayID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPathway, r.PathwayID)
	}
	if !r.Completed && r.CompletedAt != nil {
		return nil, fmt.Errorf("%w: completedAt set on incomplete pathway", ErrMalformedRow)
	}
	id := r.ID
	return &Membership{
		PathwayID:   p.ID,
		Name:        p.Name,
		Completed:   r.Completed,
		CompletedAt: r.CompletedAt,
		DBID:        &id,
	}, nil
}

// Progress is round(100*completed/total), 0 for an empty catalog.
func Progress(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	pct := int(math.Round(float64(completed) * 100 / float64(total)))
	return min(pct, 100)
}

type Repository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*Membership, error)
	Add(ctx context.Context, userID uuid.UUID, m Membership) (*Membership, error)
	Update(ctx context.Context, dbID uuid.UUID, patch Patch) (*Membership, error)
	Delete(ctx context.Context, dbID uuid.UUID) error
}

// Replayer re-applies a failed write only if the row has not been written
// since at. A skipped write returns an apperror.ErrConflict.
type Replayer interface {
	UpdateIfUnchangedSince(ctx context.Context, dbID uuid.UUID, patch Patch, at time.Time) (*Membership, error)
	DeleteIfUnchangedSince(ctx context.Context, dbID uuid.UUID, at time.Time) error
}
