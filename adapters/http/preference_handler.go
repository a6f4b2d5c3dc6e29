package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/pathwise/internal/application/store"
	"github.com/khoahotran/pathwise/pkg/apperror"
)

type PreferenceHandler struct {
	sessions *store.Manager
}

func NewPreferenceHandler(sessions *store.Manager) *PreferenceHandler {
	return &PreferenceHandler{sessions: sessions}
}

func (h *PreferenceHandler) GetTheme(c *gin.Context) {
	sess, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	respond(c, http.StatusOK, gin.H{"theme": sess.Preferences.Theme()})
}

func (h *PreferenceHandler) SetTheme(c *gin.Context) {
	var req themeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for theme", err))
		return
	}
	sess, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	if err := sess.Preferences.SetTheme(c.Request.Context(), req.Theme); err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, gin.H{"theme": sess.Preferences.Theme()})
}
