package http

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/pathwise/pkg/apperror"
	"github.com/khoahotran/pathwise/pkg/auth"
	"github.com/khoahotran/pathwise/pkg/logger"
)

const (
	GinContextKeyUserID = "userID"
)

func AuthMiddleware(jwtSvc *auth.JWTService, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Authorization header is required")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			abortUnauthorized(c, "Invalid token format")
			return
		}

		claims, err := jwtSvc.ValidateToken(tokenString)
		if err != nil {
			log.Debug("Rejected token", zap.Error(err))
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(GinContextKeyUserID, claims.UserID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": msg})
}

func GetUserIDFromGinContext(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := c.Get(GinContextKeyUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := userID.(uuid.UUID)
	if !ok {
		return uuid.Nil, false
	}
	return id, true
}

// ErrorMiddleware renders the last error a handler attached with c.Error.
// Details and causes are logged, never returned.
func ErrorMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status := apperror.ToHTTPStatus(err)

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
		}
		if status >= http.StatusInternalServerError {
			log.Error("Request failed", err, fields...)
		} else {
			log.Warn("Request rejected", append(fields, zap.Error(err))...)
		}

		c.JSON(status, gin.H{"success": false, "error": apperror.Message(err)})
	}
}

func CORS(allowedOrigins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	})
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}
