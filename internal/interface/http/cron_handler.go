package handlers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tradewire/tradewire-api/internal/application"
	"github.com/tradewire/tradewire-api/pkg/helpers"
	"github.com/tradewire/tradewire-api/pkg/response"
)

// NewsRefreshJob is the payload put on the news queue; the worker picks it
// up and re-ingests the upstream feed.
type NewsRefreshJob struct {
	Type        string    `json:"type"`
	RequestedAt time.Time `json:"requested_at"`
}

type CronHandler struct {
	Secret string
	Queue  application.JobPublisher
	Logger *logrus.Logger
}

func NewCronHandler(secret string, queue application.JobPublisher, logger *logrus.Logger) *CronHandler {
	return &CronHandler{Secret: secret, Queue: queue, Logger: logger}
}

// Trigger GET /api/cron enqueues a news refresh. Guarded by a shared bearer
// secret; an unset secret disables the endpoint rather than opening it.
func (h *CronHandler) Trigger(c *gin.Context) {
	auth := c.GetHeader("Authorization")
	expected := "Bearer " + h.Secret
	if h.Secret == "" || subtle.ConstantTimeCompare([]byte(auth), []byte(expected)) != 1 {
		response.Error[any](c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	if h.Queue == nil {
		response.Error[any](c, http.StatusServiceUnavailable, "news refresh unavailable", nil)
		return
	}
	job := NewsRefreshJob{Type: "news_refresh", RequestedAt: time.Now().UTC()}
	if err := h.Queue.PublishJSON(c.Request.Context(), job); err != nil {
		helpers.LogError(h.Logger, "news refresh enqueue failed", err, nil)
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"ok": true}, "news refresh scheduled", nil)
}
