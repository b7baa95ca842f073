package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tradewire/tradewire-api/internal/application"
	"github.com/tradewire/tradewire-api/pkg/helpers"
	"github.com/tradewire/tradewire-api/pkg/response"
	"github.com/tradewire/tradewire-api/pkg/validation"
)

type AuthHandler struct {
	Svc     *application.AuthService
	Tokens  *helpers.TokenManager
	Logger  *logrus.Logger
	Cookies *helpers.CookieManager
}

func NewAuthHandler(svc *application.AuthService, tokens *helpers.TokenManager, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Svc: svc, Tokens: tokens, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Name     string `json:"name" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "missing required fields", validation.ToDetails(err))
		return
	}
	u, sess, err := h.Svc.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, application.ErrEmailTaken) {
			response.Error[any](c, http.StatusBadRequest, "user already exists", nil)
			return
		}
		helpers.LogError(h.Logger, "registration failed", err, logrus.Fields{"email": req.Email})
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	h.Cookies.SetSession(c, sess.Token, sess.ExpiresAt)
	response.Success(c, http.StatusCreated, gin.H{"email": u.Email, "name": u.Name}, "user registered successfully", nil)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "missing required fields", validation.ToDetails(err))
		return
	}
	u, sess, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
			return
		}
		helpers.LogError(h.Logger, "login failed", err, logrus.Fields{"email": req.Email})
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	h.Cookies.SetSession(c, sess.Token, sess.ExpiresAt)
	response.Success(c, http.StatusOK, gin.H{"email": u.Email, "name": u.Name}, "login successful", nil)
}

// Logout POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Cookies.ClearSession(c)
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out successfully", nil)
}

// Check GET /api/auth/check reports whether the session cookie verifies.
// No store lookup: this answers "is the token valid", not "what can you do".
func (h *AuthHandler) Check(c *gin.Context) {
	claims := h.verifiedClaims(c)
	if claims == nil {
		response.Error[any](c, http.StatusUnauthorized, "not authenticated", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"authenticated": true,
		"user":          gin.H{"email": claims.Email, "name": claims.Name},
	}, "authenticated", nil)
}

// UserRole GET /api/auth/user-role resolves the caller's stored role.
// 401 when the token is absent/invalid, 404 when the record is gone.
func (h *AuthHandler) UserRole(c *gin.Context) {
	claims := h.verifiedClaims(c)
	if claims == nil {
		response.Error[any](c, http.StatusUnauthorized, "not authenticated", nil)
		return
	}
	u, err := h.Svc.GetUser(c.Request.Context(), claims.Email)
	if err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
			return
		}
		helpers.LogError(h.Logger, "user role lookup failed", err, logrus.Fields{"email": claims.Email})
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"authenticated": true,
		"role":          u.Role,
		"email":         u.Email,
		"name":          u.Name,
	}, "user role", nil)
}

func (h *AuthHandler) verifiedClaims(c *gin.Context) *helpers.SessionClaims {
	token, err := c.Cookie(helpers.SessionCookieName)
	if err != nil || token == "" {
		return nil
	}
	return h.Tokens.Verify(token)
}
