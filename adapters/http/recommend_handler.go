package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/pathwise/internal/application/store"
	recommendUC "github.com/khoahotran/pathwise/internal/application/usecase/recommendation"
	"github.com/khoahotran/pathwise/pkg/apperror"
	"github.com/khoahotran/pathwise/pkg/logger"
)

type RecommendHandler struct {
	useCase  *recommendUC.RecommendUseCase
	sessions *store.Manager
	logger   logger.Logger
}

func NewRecommendHandler(uc *recommendUC.RecommendUseCase, sessions *store.Manager, log logger.Logger) *RecommendHandler {
	return &RecommendHandler{useCase: uc, sessions: sessions, logger: log}
}

// Recommend handles POST /recommend-pathways with body {"profile": {...}}.
func (h *RecommendHandler) Recommend(c *gin.Context) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if errors.Is(err, io.EOF) {
			c.Error(apperror.NewValidation(recommendUC.MsgProfileRequired))
			return
		}
		c.Error(apperror.NewInvalidInput("request body is not valid JSON", err))
		return
	}

	output, err := h.useCase.Execute(c.Request.Context(), recommendUC.RecommendInput{Profile: req.Profile})
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, output)
}

// RecommendForMe recommends on the caller's stored profile and career goals.
func (h *RecommendHandler) RecommendForMe(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req recommendForMeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(apperror.NewInvalidInput("request body is not valid JSON", err))
			return
		}
	}

	p := sess.Profile.Profile()
	p.UserID = sess.UserID
	output, err := h.useCase.ExecuteForUser(c.Request.Context(), &p, sess.Careers.Goals(), req.Interests...)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, output)
}

// Describe handles GET /recommend-pathways.
func (h *RecommendHandler) Describe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"endpoint":    "/api/recommend-pathways",
		"method":      "POST",
		"description": "Generates AI career pathway recommendations for a learner profile.",
		"body": gin.H{
			"profile": gin.H{
				"required":    []string{"userId"},
				"atLeastOne":  []string{"skills", "education", "experience", "assessmentScores"},
				"recommended": []string{"bio", "interests", "careerGoals"},
			},
		},
		"response": gin.H{
			"success": "boolean",
			"data":    gin.H{"recommendations": "array of {title, reasoning, summary, matchScore, keySkills, nextSteps, pathwayId}"},
			"error":   "string, present when success is false",
		},
	})
}

func (h *RecommendHandler) session(c *gin.Context) (*store.Session, bool) {
	return sessionFor(c, h.sessions)
}
