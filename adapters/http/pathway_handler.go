package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/pathwise/internal/application/store"
	"github.com/khoahotran/pathwise/internal/domain/pathway"
	"github.com/khoahotran/pathwise/pkg/logger"
)

type PathwayHandler struct {
	sessions *store.Manager
	logger   logger.Logger
}

func NewPathwayHandler(sessions *store.Manager, log logger.Logger) *PathwayHandler {
	return &PathwayHandler{sessions: sessions, logger: log}
}

func (h *PathwayHandler) Catalog(c *gin.Context) {
	respond(c, http.StatusOK, pathway.Catalog())
}

func (h *PathwayHandler) ListPathways(c *gin.Context) {
	sess, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	if c.Query("refresh") == "true" {
		sess.Pathways.Load(c.Request.Context())
	}
	respond(c, http.StatusOK, toPathwaysDTO(sess.Pathways))
}

func (h *PathwayHandler) TogglePathway(c *gin.Context) {
	sess, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	if err := sess.Pathways.Toggle(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, toPathwaysDTO(sess.Pathways))
}

func (h *PathwayHandler) Progress(c *gin.Context) {
	sess, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	total := len(pathway.Catalog())
	respond(c, http.StatusOK, gin.H{
		"progress": sess.Pathways.Progress(total),
		"total":    total,
	})
}
