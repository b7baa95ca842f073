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

// BlogModule wires blog CRUD and search.
// Reads resolve the caller opportunistically (anonymous is fine, the policy
// decides); writes require a session and a live user record.
type BlogModule struct {
	Handler *handlers.BlogHandler
	Tokens  *helpers.TokenManager
	Users   repository.UserRepository
}

func NewBlogModule(h *handlers.BlogHandler, tokens *helpers.TokenManager, users repository.UserRepository) *BlogModule {
	return &BlogModule{Handler: h, Tokens: tokens, Users: users}
}

func (m *BlogModule) Register(rg *gin.RouterGroup) {
	optional := middleware.OptionalAuth(m.Tokens, m.Users)

	rg.GET("/blog", optional, m.Handler.List)
	rg.GET("/blog/search", m.Handler.Search)
	rg.GET("/blog/:id", optional, m.Handler.Get)

	writeLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByEmail(), nil)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Tokens, m.Users), writeLimiter)
	{
		auth.POST("/blog", m.Handler.Create)
		auth.PUT("/blog/:id", m.Handler.Update)
		auth.DELETE("/blog/:id", m.Handler.Delete)
	}
}
