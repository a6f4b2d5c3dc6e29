package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/pathwise/internal/application/store"
	"github.com/khoahotran/pathwise/internal/domain/profile"
	"github.com/khoahotran/pathwise/pkg/apperror"
	"github.com/khoahotran/pathwise/pkg/logger"
)

type ProfileHandler struct {
	sessions *store.Manager
	logger   logger.Logger
}

func NewProfileHandler(sessions *store.Manager, log logger.Logger) *ProfileHandler {
	return &ProfileHandler{sessions: sessions, logger: log}
}

// withProfile runs op against the caller's profile store and answers with
// the resulting state.
func (h *ProfileHandler) withProfile(c *gin.Context, op func(s *store.ProfileStore) error) {
	sess, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	if op != nil {
		if err := op(sess.Profile); err != nil {
			c.Error(err)
			return
		}
	}
	respond(c, http.StatusOK, toProfileDTO(sess.Profile))
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	if c.Query("refresh") != "true" {
		h.withProfile(c, nil)
		return
	}
	h.withProfile(c, func(s *store.ProfileStore) error {
		s.Load(c.Request.Context())
		return nil
	})
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for profile update", err))
		return
	}
	h.withProfile(c, func(s *store.ProfileStore) error {
		return s.Update(c.Request.Context(), req.toPatch())
	})
}

func (h *ProfileHandler) AddSkill(c *gin.Context) {
	var req profile.Skill
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for skill", err))
		return
	}
	h.withProfile(c, func(s *store.ProfileStore) error {
		return s.AddSkill(c.Request.Context(), req)
	})
}

func (h *ProfileHandler) RemoveSkill(c *gin.Context) {
	name := c.Param("name")
	h.withProfile(c, func(s *store.ProfileStore) error {
		return s.RemoveSkill(c.Request.Context(), name)
	})
}

func (h *ProfileHandler) AddEducation(c *gin.Context) {
	var req profile.Education
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for education", err))
		return
	}
	h.withProfile(c, func(s *store.ProfileStore) error {
		return s.AddEducation(c.Request.Context(), req)
	})
}

func (h *ProfileHandler) RemoveEducation(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}
	h.withProfile(c, func(s *store.ProfileStore) error {
		return s.RemoveEducation(c.Request.Context(), index)
	})
}

func (h *ProfileHandler) AddExperience(c *gin.Context) {
	var req addExperienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for experience", err))
		return
	}
	exp := profile.Experience{Title: req.Title, Description: req.Description, Duration: req.Duration}
	h.withProfile(c, func(s *store.ProfileStore) error {
		return s.AddExperience(c.Request.Context(), exp, req.TechStack)
	})
}

func (h *ProfileHandler) RemoveExperience(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}
	h.withProfile(c, func(s *store.ProfileStore) error {
		return s.RemoveExperience(c.Request.Context(), index)
	})
}

func (h *ProfileHandler) SetAssessment(c *gin.Context) {
	var req assessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for assessment", err))
		return
	}
	h.withProfile(c, func(s *store.ProfileStore) error {
		return s.SetAssessmentScores(c.Request.Context(), req.Scores)
	})
}

func indexParam(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("index must be an integer", err))
		return 0, false
	}
	return index, true
}
