package http

import (
	"github.com/khoahotran/pathwise/internal/application/store"
	"github.com/khoahotran/pathwise/internal/domain/course"
	"github.com/khoahotran/pathwise/internal/domain/pathway"
	"github.com/khoahotran/pathwise/internal/domain/profile"
	"github.com/khoahotran/pathwise/internal/domain/recommendation"
)

// Auth DTOs
type registerRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"displayName" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

// Recommendation DTOs
type recommendRequest struct {
	Profile *recommendation.ProfileInput `json:"profile"`
}

type recommendForMeRequest struct {
	Interests []string `json:"interests"`
}

// Profile DTOs
type ProfileDTO struct {
	Profile    profile.Profile `json:"profile"`
	Completion int             `json:"completion"`
	IsLoading  bool            `json:"isLoading"`
	Error      string          `json:"error,omitempty"`
	Pending    []store.Pending `json:"pending,omitempty"`
}

// updateProfileRequest replaces each list that is present; absent or null
// fields are left as they are.
type updateProfileRequest struct {
	Bio              *string               `json:"bio"`
	Education        *[]profile.Education  `json:"education"`
	Skills           *[]profile.Skill      `json:"skills"`
	Experience       *[]profile.Experience `json:"experience"`
	AssessmentScores *map[string]float64   `json:"assessmentScores"`
}

func (r updateProfileRequest) toPatch() profile.Patch {
	return profile.Patch{
		Bio:              r.Bio,
		Education:        r.Education,
		Skills:           r.Skills,
		Experience:       r.Experience,
		AssessmentScores: r.AssessmentScores,
	}
}

type addExperienceRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
	TechStack   string `json:"techStack"`
}

type assessmentRequest struct {
	Scores map[string]float64 `json:"scores" binding:"required"`
}

func toProfileDTO(s *store.ProfileStore) ProfileDTO {
	state := s.Snapshot()
	return ProfileDTO{
		Profile:    state.Items,
		Completion: profile.CompletionPercent(&state.Items),
		IsLoading:  state.IsLoading,
		Error:      state.Error,
		Pending:    s.Pending(),
	}
}

// Course DTOs
type CoursesDTO struct {
	Items     []course.Bookmark `json:"items"`
	IsLoading bool              `json:"isLoading"`
	Error     string            `json:"error,omitempty"`
	Pending   []store.Pending   `json:"pending,omitempty"`
}

type updateCourseRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

func toCoursesDTO(s *store.CourseStore) CoursesDTO {
	state := s.Snapshot()
	return CoursesDTO{Items: state.Items, IsLoading: state.IsLoading, Error: state.Error, Pending: s.Pending()}
}

// Pathway DTOs
type PathwaysDTO struct {
	Items     []pathway.Membership `json:"items"`
	Progress  int                  `json:"progress"`
	IsLoading bool                 `json:"isLoading"`
	Error     string               `json:"error,omitempty"`
	Pending   []store.Pending      `json:"pending,omitempty"`
}

func toPathwaysDTO(s *store.PathwayStore) PathwaysDTO {
	state := s.Snapshot()
	return PathwaysDTO{
		Items:     state.Items,
		Progress:  s.Progress(len(pathway.Catalog())),
		IsLoading: state.IsLoading,
		Error:     state.Error,
		Pending:   s.Pending(),
	}
}

// Career and preference DTOs
type selectCareerRequest struct {
	CareerID *string `json:"careerId"`
}

type themeRequest struct {
	Theme string `json:"theme" binding:"required"`
}
