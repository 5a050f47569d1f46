package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "kidtimer/internal/errors"
	"kidtimer/internal/service"
)

// AuthHandler serves account creation, sign-in and the current account.
type AuthHandler struct {
	auth *service.AuthService
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type credentialsFunc func(ctx context.Context, email, password string) (*service.AuthResult, *apperrors.APIError)

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register answers 201 with a token and the new account.
func (h *AuthHandler) Register(c *gin.Context) {
	h.withCredentials(c, http.StatusCreated, h.auth.Register)
}

// Login answers 200 with a fresh token.
func (h *AuthHandler) Login(c *gin.Context) {
	h.withCredentials(c, http.StatusOK, h.auth.Login)
}

func (h *AuthHandler) User(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	account, apiErr := h.auth.GetUser(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": account})
}

func (h *AuthHandler) withCredentials(c *gin.Context, status int, fn credentialsFunc) {
	var body credentials
	if c.ShouldBindJSON(&body) != nil {
		writeInvalidJSON(c)
		return
	}
	result, apiErr := fn(c.Request.Context(), body.Email, body.Password)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(status, result)
}
