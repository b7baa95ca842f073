package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tradewire/tradewire-api/internal/container"
	handlers "github.com/tradewire/tradewire-api/internal/interface/http"
	"github.com/tradewire/tradewire-api/internal/interface/middleware"
)

// AuthModule wires registration, login and session inspection routes.
// Register/login get tight per-IP limits; the read-only checks are softer.
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	checkLimiter := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), nil)

	rg.POST("/auth/register", registerLimiter, m.Handler.Register)
	rg.POST("/auth/login", loginLimiter, m.Handler.Login)
	rg.POST("/auth/logout", m.Handler.Logout)
	rg.GET("/auth/check", checkLimiter, m.Handler.Check)
	rg.GET("/auth/user-role", checkLimiter, m.Handler.UserRole)
}
