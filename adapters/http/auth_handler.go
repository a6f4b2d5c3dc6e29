package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/pathwise/internal/application/store"
	"github.com/khoahotran/pathwise/internal/application/usecase/auth"
	"github.com/khoahotran/pathwise/pkg/apperror"
	"github.com/khoahotran/pathwise/pkg/logger"
)

type AuthHandler struct {
	loginUseCase    *auth.LoginUseCase
	registerUseCase *auth.RegisterUseCase
	sessions        *store.Manager
	logger          logger.Logger
}

func NewAuthHandler(loginUC *auth.LoginUseCase, registerUC *auth.RegisterUseCase, sessions *store.Manager, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		loginUseCase:    loginUC,
		registerUseCase: registerUC,
		sessions:        sessions,
		logger:          log,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for register", err))
		return
	}

	output, err := h.registerUseCase.Execute(c.Request.Context(), auth.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		c.Error(err)
		return
	}

	respond(c, http.StatusCreated, tokenResponse{
		AccessToken: output.AccessToken,
		UserID:      output.User.ID.String(),
		DisplayName: output.User.DisplayName,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for login", err))
		return
	}

	output, err := h.loginUseCase.Execute(c.Request.Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		c.Error(err)
		return
	}
	// A fresh login starts from the remote store.
	if h.sessions != nil {
		h.sessions.Drop(output.User.ID)
	}

	respond(c, http.StatusOK, tokenResponse{
		AccessToken: output.AccessToken,
		UserID:      output.User.ID.String(),
		DisplayName: output.User.DisplayName,
	})
}
