package recommendation

import (
	"strings"

	"github.com/khoahotran/pathwise/internal/domain/profile"
)

// ProfileInput is the profile a client submits for recommendations.
type ProfileInput struct {
	UserID           string               `json:"userId"`
	Bio              string               `json:"bio,omitempty"`
	Skills           []profile.Skill      `json:"skills,omitempty"`
	Education        []profile.Education  `json:"education,omitempty"`
	Experience       []profile.Experience `json:"experience,omitempty"`
	AssessmentScores map[string]float64   `json:"assessmentScores,omitempty"`
	Interests        []string             `json:"interests,omitempty"`
	CareerGoals      []string             `json:"careerGoals,omitempty"`
}

// Sufficient reports whether the profile carries enough signal to recommend on.
// An empty but present assessment map counts.
func (p *ProfileInput) Sufficient() bool {
	return len(p.Skills) > 0 || len(p.Education) > 0 || len(p.Experience) > 0 || p.AssessmentScores != nil
}

func FromProfile(p *profile.Profile, careerGoals []string) *ProfileInput {
	return &ProfileInput{
		UserID:           p.UserID.String(),
		Bio:              p.Bio,
		Skills:           p.Skills,
		Education:        p.Education,
		Experience:       p.Experience,
		AssessmentScores: p.AssessmentScores,
		CareerGoals:      careerGoals,
	}
}

// Recommendation is one item of the AI answer, forwarded as the provider
// returned it. Only the object shape is checked; field types are not.
type Recommendation map[string]any

// Text returns the string value of key, or "" when absent or not a string.
func (r Recommendation) Text(key string) string {
	s, _ := r[key].(string)
	return s
}

func (r Recommendation) Title() string { return r.Text("title") }

// Complete reports whether the item has the fields the prompt asks for.
func (r Recommendation) Complete() bool {
	return strings.TrimSpace(r.Text("title")) != "" &&
		strings.TrimSpace(r.Text("reasoning")) != "" &&
		strings.TrimSpace(r.Text("summary")) != ""
}
