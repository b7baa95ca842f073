package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tradewire/tradewire-api/config"
	"github.com/tradewire/tradewire-api/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	mongoClient *mongo.Client
	redisClient *redis.Client
	esClient    *elasticsearch.Client

	tokenManager *helpers.TokenManager

	newsPub  *helpers.RabbitPublisher
	emailPub *helpers.RabbitPublisher
)

func SetConfig(c *config.Config)      { cfg = c }
func GetConfig() *config.Config       { return cfg }
func SetLogger(l *logrus.Logger)      { logger = l }
func GetLogger() *logrus.Logger       { return logger }
func SetMongo(m *mongo.Client)        { mongoClient = m }
func GetMongo() *mongo.Client         { return mongoClient }
func SetRedis(r *redis.Client)        { redisClient = r }
func GetRedis() *redis.Client         { return redisClient }
func SetES(c *elasticsearch.Client)   { esClient = c }
func GetES() *elasticsearch.Client    { return esClient }
func SetTokens(m *helpers.TokenManager) { tokenManager = m }
func GetTokens() *helpers.TokenManager {
	if tokenManager != nil {
		return tokenManager
	}
	return helpers.DefaultTokens()
}

func SetNewsPub(p *helpers.RabbitPublisher)  { newsPub = p }
func GetNewsPub() *helpers.RabbitPublisher   { return newsPub }
func SetEmailPub(p *helpers.RabbitPublisher) { emailPub = p }
func GetEmailPub() *helpers.RabbitPublisher  { return emailPub }
