package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tradewire/tradewire-api/internal/container"
	handlers "github.com/tradewire/tradewire-api/internal/interface/http"
	"github.com/tradewire/tradewire-api/internal/interface/middleware"
)

// NewsModule wires the public ticker feed and the cron-triggered refresh.
type NewsModule struct {
	News *handlers.NewsHandler
	Cron *handlers.CronHandler
}

func NewNewsModule(news *handlers.NewsHandler, cron *handlers.CronHandler) *NewsModule {
	return &NewsModule{News: news, Cron: cron}
}

func (m *NewsModule) Register(rg *gin.RouterGroup) {
	feedLimiter := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), nil)
	rg.GET("/news", feedLimiter, m.News.List)

	// The scheduler calls this from inside the network; private IPs bypass
	// the limiter so a stalled run can be retried immediately.
	cronLimiter := middleware.RateLimit(container.GetRedis(), 6, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())
	rg.GET("/cron", cronLimiter, m.Cron.Trigger)
}
