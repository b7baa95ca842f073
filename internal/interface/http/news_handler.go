package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tradewire/tradewire-api/internal/application"
	"github.com/tradewire/tradewire-api/pkg/helpers"
	"github.com/tradewire/tradewire-api/pkg/response"
)

type NewsHandler struct {
	Svc    *application.NewsService
	Logger *logrus.Logger
}

func NewNewsHandler(svc *application.NewsService, logger *logrus.Logger) *NewsHandler {
	return &NewsHandler{Svc: svc, Logger: logger}
}

// List GET /api/news returns the latest ticker headlines, newest first.
func (h *NewsHandler) List(c *gin.Context) {
	news, err := h.Svc.Latest(c.Request.Context())
	if err != nil {
		helpers.LogError(h.Logger, "news fetch failed", err, nil)
		response.Error[any](c, http.StatusInternalServerError, "unable to fetch news feed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"news": news}, "news", nil)
}
