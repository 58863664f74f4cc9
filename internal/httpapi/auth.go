package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"uniattend/internal/auth"
	"uniattend/internal/users"
)

// SignUp creates an account and signs it in.
func (h *Handler) SignUp(c *gin.Context) {
	var req struct {
		Name     string     `json:"name" binding:"required"`
		Email    string     `json:"email" binding:"required"`
		Password string     `json:"password" binding:"required"`
		Role     users.Role `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return
	}
	u, pair, err := h.auth.SignUp(c.Request.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, users.ErrDuplicateEmail) {
			status = http.StatusConflict
		}
		h.fail(c, status, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": u, "tokens": pair})
}

// SignIn verifies credentials.
func (h *Handler) SignIn(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return
	}
	u, pair, err := h.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrBadCredentials) {
			h.fail(c, http.StatusUnauthorized, err)
			return
		}
		h.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u, "tokens": pair})
}

// Refresh rotates the refresh token.
func (h *Handler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return
	}
	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrTokenInvalid) {
			h.fail(c, http.StatusUnauthorized, err)
			return
		}
		h.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": pair})
}

// SignOut revokes the refresh token.
func (h *Handler) SignOut(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return
	}
	if err := h.auth.SignOut(c.Request.Context(), req.RefreshToken); err != nil {
		h.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "signed out"})
}

// PasswordReset records a reset token; the response never reveals whether
// the email exists.
func (h *Handler) PasswordReset(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return
	}
	if err := h.auth.SendPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reset email sent if the account exists"})
}

// Me returns the authenticated account.
func (h *Handler) Me(c *gin.Context) {
	u, ok := h.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// Onboard completes the one-time profile step.
func (h *Handler) Onboard(c *gin.Context) {
	var req users.Profile
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return
	}
	claims := auth.CurrentClaims(c)
	u, err := h.onboarding.Onboard(c.Request.Context(), claims.Subject, req)
	if err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}
