package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/pathwise/internal/application/store"
	"github.com/khoahotran/pathwise/internal/domain/career"
	"github.com/khoahotran/pathwise/pkg/apperror"
	"github.com/khoahotran/pathwise/pkg/logger"
)

type CareerHandler struct {
	sessions *store.Manager
	logger   logger.Logger
}

func NewCareerHandler(sessions *store.Manager, log logger.Logger) *CareerHandler {
	return &CareerHandler{sessions: sessions, logger: log}
}

func (h *CareerHandler) Catalog(c *gin.Context) {
	respond(c, http.StatusOK, career.Catalog())
}

func (h *CareerHandler) Goals(c *gin.Context) {
	sess, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	respond(c, http.StatusOK, sess.Careers.Snapshot().Items)
}

func (h *CareerHandler) ToggleGoal(c *gin.Context) {
	sess, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	isGoal, err := sess.Careers.ToggleGoal(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, gin.H{"isGoal": isGoal, "goals": sess.Careers.Goals()})
}

// SelectCareer sets the selected career, or clears it when careerId is null.
func (h *CareerHandler) SelectCareer(c *gin.Context) {
	var req selectCareerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for career selection", err))
		return
	}
	sess, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	if req.CareerID == nil {
		sess.Careers.ClearSelected(c.Request.Context())
	} else if _, err := sess.Careers.Select(c.Request.Context(), *req.CareerID); err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, sess.Careers.Snapshot().Items)
}
