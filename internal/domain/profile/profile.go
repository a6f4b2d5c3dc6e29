package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type SkillLevel string

const (
	LevelBeginner     SkillLevel = "beginner"
	LevelIntermediate SkillLevel = "intermediate"
	LevelAdvanced     SkillLevel = "advanced"
)

func (l SkillLevel) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

type Education struct {
	School string  `json:"school"`
	Degree string  `json:"degree"`
	Year   string  `json:"year"`
	GPA    *string `json:"gpa,omitempty"`
}

type Skill struct {
	Name  string     `json:"name"`
	Level SkillLevel `json:"level"`
}

type Experience struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Duration    string   `json:"duration"`
	TechStack   []string `json:"techStack"`
}

type Profile struct {
	DBID             *uuid.UUID         `json:"$dbId,omitempty"`
	UserID           uuid.UUID          `json:"userId"`
	Bio              string             `json:"bio"`
	Education        []Education        `json:"education"`
	Skills           []Skill            `json:"skills"`
	Experience       []Experience       `json:"experience"`
	AssessmentScores map[string]float64 `json:"assessmentScores,omitempty"`
	UpdatedAt        time.Time          `json:"updatedAt"`
}

// Patch holds the fields of a partial profile update; nil means unchanged.
type Patch struct {
	Bio              *string             `json:"bio,omitempty"`
	Education        *[]Education        `json:"education,omitempty"`
	Skills           *[]Skill            `json:"skills,omitempty"`
	Experience       *[]Experience       `json:"experience,omitempty"`
	AssessmentScores *map[string]float64 `json:"assessmentScores,omitempty"`
}

func (p Patch) Empty() bool {
	return p.Bio == nil && p.Education == nil && p.Skills == nil && p.Experience == nil && p.AssessmentScores == nil
}

// Apply copies every set field of the patch onto the profile.
func (p *Profile) Apply(patch Patch) {
	if patch.Bio != nil {
		p.Bio = *patch.Bio
	}
	if patch.Education != nil {
		p.Education = *patch.Education
	}
	if patch.Skills != nil {
		p.Skills = *patch.Skills
	}
	if patch.Experience != nil {
		p.Experience = *patch.Experience
	}
	if patch.AssessmentScores != nil {
		p.AssessmentScores = *patch.AssessmentScores
	}
}

// FullPatch returns a patch that rewrites every field from p.
func (p *Profile) FullPatch() Patch {
	bio := p.Bio
	edu := p.Education
	skills := p.Skills
	exp := p.Experience
	patch := Patch{Bio: &bio, Education: &edu, Skills: &skills, Experience: &exp}
	if p.AssessmentScores != nil {
		scores := p.AssessmentScores
		patch.AssessmentScores = &scores
	}
	return patch
}

// Clone deep-copies the slices and map so callers can mutate the result.
func (p *Profile) Clone() *Profile {
	c := *p
	if p.DBID != nil {
		id := *p.DBID
		c.DBID = &id
	}
	c.Education = append([]Education(nil), p.Education...)
	c.Skills = append([]Skill(nil), p.Skills...)
	c.Experience = make([]Experience, len(p.Experience))
	for i, e := range p.Experience {
		e.TechStack = append([]string(nil), e.TechStack...)
		c.Experience[i] = e
	}
	if p.AssessmentScores != nil {
		c.AssessmentScores = make(map[string]float64, len(p.AssessmentScores))
		for k, v := range p.AssessmentScores {
			c.AssessmentScores[k] = v
		}
	}
	return &c
}

// CompletionPercent gives 25 points for each of bio, education, skills and experience.
func CompletionPercent(p *Profile) int {
	if p == nil {
		return 0
	}
	score := 0
	if p.Bio != "" {
		score += 25
	}
	if len(p.Education) > 0 {
		score += 25
	}
	if len(p.Skills) > 0 {
		score += 25
	}
	if len(p.Experience) > 0 {
		score += 25
	}
	return min(score, 100)
}

// ParseTechStack turns "React, , Node.js ," into ["React", "Node.js"].
func ParseTechStack(raw string) []string {
	return NormalizeTags(strings.Split(raw, ","))
}

func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

var (
	ErrSkillNameRequired   = errors.New("skill name is required")
	ErrDuplicateSkill      = errors.New("skill already exists")
	ErrEducationIncomplete = errors.New("school and degree are required")
	ErrExperienceTitle     = errors.New("experience title is required")
)

func (s Skill) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrSkillNameRequired
	}
	if !s.Level.Valid() {
		return fmt.Errorf("invalid skill level %q: must be beginner, intermediate or advanced", s.Level)
	}
	return nil
}

func (e Education) Validate() error {
	if strings.TrimSpace(e.School) == "" || strings.TrimSpace(e.Degree) == "" {
		return ErrEducationIncomplete
	}
	return nil
}

func (e Experience) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrExperienceTitle
	}
	return nil
}

type Repository interface {
	// GetByUserID returns nil, nil when the user has no stored profile yet.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)
	Add(ctx context.Context, userID uuid.UUID, p *Profile) (*Profile, error)
	Update(ctx context.Context, dbID uuid.UUID, patch Patch) (*Profile, error)
}

// Replayer re-applies a failed patch only if the row has not been written
// since at. A skipped write returns an apperror.ErrConflict.
type Replayer interface {
	UpdateIfUnchangedSince(ctx context.Context, dbID uuid.UUID, patch Patch, at time.Time) (*Profile, error)
}
