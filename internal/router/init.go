package router

import (
	"github.com/tradewire/tradewire-api/internal/application"
	"github.com/tradewire/tradewire-api/internal/container"
	"github.com/tradewire/tradewire-api/internal/infrastructure/mongodb"
	handlers "github.com/tradewire/tradewire-api/internal/interface/http"
	"github.com/tradewire/tradewire-api/internal/router/modules"
)

// InitModules builds repositories, services and handlers from the container
// singletons and registers every feature module.
// Call once during startup, after the container is populated.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	tokens := container.GetTokens()

	users := mongodb.NewUserRepository(container.GetMongo(), cfg.MongoUsersDB, cfg.MongoUsersCollection)
	posts := mongodb.NewPostRepository(container.GetMongo(), cfg.MongoBlogDB, cfg.MongoBlogCollection)
	news := mongodb.NewNewsRepository(container.GetMongo(), cfg.MongoNewsDB, cfg.MongoNewsCollection)

	authSvc := application.NewAuthService(users, tokens, emailQueue(), logger, cfg.AppName, cfg.MailSendEnabled)
	blogSvc := application.NewBlogService(posts, container.GetES(), cfg.ESPostsIndex, logger)
	newsSvc := application.NewNewsService(news, container.GetRedis(), cfg.NewsCacheTTL, logger)

	authHandler := handlers.NewAuthHandler(authSvc, tokens, logger, cfg.CookieDomain, cfg.CookieSecure)
	blogHandler := handlers.NewBlogHandler(blogSvc, logger)
	newsHandler := handlers.NewNewsHandler(newsSvc, logger)
	adminHandler := handlers.NewAdminHandler(users, logger)
	cronHandler := handlers.NewCronHandler(cfg.CronSecret, newsQueue(), logger)

	r.Add(modules.NewAuthModule(authHandler))
	r.Add(modules.NewBlogModule(blogHandler, tokens, users))
	r.Add(modules.NewNewsModule(newsHandler, cronHandler))
	r.Add(modules.NewAdminModule(adminHandler, tokens, users))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}

// The publishers may be nil when RabbitMQ is not configured; the services
// treat a nil queue as "feature disabled". A typed nil interface would
// defeat their nil checks, hence the explicit conversion.
func emailQueue() application.JobPublisher {
	if p := container.GetEmailPub(); p != nil {
		return p
	}
	return nil
}

func newsQueue() application.JobPublisher {
	if p := container.GetNewsPub(); p != nil {
		return p
	}
	return nil
}
