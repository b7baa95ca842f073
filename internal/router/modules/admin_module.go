package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tradewire/tradewire-api/internal/container"
	"github.com/tradewire/tradewire-api/internal/domain/repository"
	handlers "github.com/tradewire/tradewire-api/internal/interface/http"
	"github.com/tradewire/tradewire-api/internal/interface/middleware"
	"github.com/tradewire/tradewire-api/pkg/helpers"
)

// AdminModule wires the role-management endpoints. Authentication happens
// here; the admin-role requirement is enforced by the policy evaluator in
// the handler.
type AdminModule struct {
	Handler *handlers.AdminHandler
	Tokens  *helpers.TokenManager
	Users   repository.UserRepository
}

func NewAdminModule(h *handlers.AdminHandler, tokens *helpers.TokenManager, users repository.UserRepository) *AdminModule {
	return &AdminModule{Handler: h, Tokens: tokens, Users: users}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	limiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByEmail(), nil)

	admin := rg.Group("/admin")
	admin.Use(middleware.Auth(m.Tokens, m.Users), limiter)
	{
		admin.POST("/update-user-roles", m.Handler.UpdateUserRoles)
		admin.GET("/update-user-roles", m.Handler.ListUserRoles)
	}
}
