package http

import (
	"github.com/gin-gonic/gin"

	"github.com/khoahotran/pathwise/internal/application/store"
	"github.com/khoahotran/pathwise/pkg/apperror"
)

// sessionFor resolves the caller's store session. On failure the error is
// attached to c and false is returned.
func sessionFor(c *gin.Context, sessions *store.Manager) (*store.Session, bool) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("userID not found in context", nil))
		return nil, false
	}
	sess, err := sessions.Get(c.Request.Context(), userID)
	if err != nil {
		c.Error(apperror.NewInternal("cannot open store session", err))
		return nil, false
	}
	return sess, true
}
