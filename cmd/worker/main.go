package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tradewire/tradewire-api/config"
	"github.com/tradewire/tradewire-api/internal/application"
	"github.com/tradewire/tradewire-api/internal/infrastructure/mongodb"
	handlers "github.com/tradewire/tradewire-api/internal/interface/http"
	"github.com/tradewire/tradewire-api/pkg/helpers"
	"github.com/tradewire/tradewire-api/pkg/mailer"
	tpl "github.com/tradewire/tradewire-api/pkg/mailer/templates"
)

// The worker drains two durable queues: welcome emails enqueued at
// registration, and news-refresh jobs enqueued by the cron trigger.
func main() {
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-worker", cfg.Env)

	if cfg.RabbitMQURL == "" {
		log.Fatal("RabbitMQ not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ctx := context.Background()

	mongoClient, err := mongodb.NewClient(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()

	newsRepo := mongodb.NewNewsRepository(mongoClient, cfg.MongoNewsDB, cfg.MongoNewsCollection)
	newsSvc := application.NewNewsService(newsRepo, rdb, cfg.NewsCacheTTL, logger)

	var wg sync.WaitGroup

	// News refresh consumer
	newsCh, err := openConsumer(conn, cfg.RabbitMQNewsQueue)
	if err != nil {
		log.Fatalf("news queue: %v", err)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for msg := range newsCh {
			var job handlers.NewsRefreshJob
			if err := json.Unmarshal(msg.Body, &job); err != nil {
				logger.WithError(err).Warn("bad news refresh message")
				_ = msg.Nack(false, false)
				continue
			}
			if cfg.NewsFeedURL == "" {
				logger.Warn("NEWS_FEED_URL not configured, dropping refresh job")
				_ = msg.Ack(false)
				continue
			}
			c, cancel := context.WithTimeout(ctx, 2*time.Minute)
			stored, err := newsSvc.Ingest(c, cfg.NewsFeedURL)
			cancel()
			if err != nil {
				logger.WithError(err).Error("news ingest failed")
				_ = msg.Nack(false, true)
				continue
			}
			logger.WithField("stored", stored).Info("news ingest complete")
			_ = msg.Ack(false)
		}
	}()

	// Welcome email consumer
	if cfg.MailSendEnabled && cfg.MailgunDomain != "" && cfg.MailgunAPIKey != "" && cfg.MailgunSender != "" {
		emailCh, err := openConsumer(conn, cfg.RabbitMQEmailQueue)
		if err != nil {
			log.Fatalf("email queue: %v", err)
		}
		mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for msg := range emailCh {
				var job mailer.EmailJob
				if err := json.Unmarshal(msg.Body, &job); err != nil {
					logger.WithError(err).Warn("bad email message")
					_ = msg.Nack(false, false)
					continue
				}

				subject, text, html := job.Subject, job.Text, job.HTML
				if job.Template != "" {
					s, t, h, rerr := tpl.Render(job.Template, job.Data)
					if rerr != nil {
						logger.WithError(rerr).WithField("template", job.Template).Warn("render failed")
						_ = msg.Nack(false, false)
						continue
					}
					subject, text, html = s, t, h
				}

				c, cancel := context.WithTimeout(ctx, 15*time.Second)
				err := mg.Send(c, job.To, subject, text, html)
				cancel()
				if err != nil {
					logger.WithError(err).WithField("to", job.To).Error("email send failed")
					_ = msg.Nack(false, true)
					continue
				}
				_ = msg.Ack(false)
			}
		}()
	} else {
		logger.Info("mail sending disabled or mailgun not configured; email queue not consumed")
	}

	logger.WithField("news_queue", cfg.RabbitMQNewsQueue).Info("worker running")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down...")
	_ = conn.Close()

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
	}
}

func openConsumer(conn *amqp.Connection, queue string) (<-chan amqp.Delivery, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	// Prefetch for fair dispatch
	if err := ch.Qos(16, 0, false); err != nil {
		return nil, err
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, err
	}
	return ch.Consume(queue, "", false, false, false, false, nil)
}
