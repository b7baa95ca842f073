package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewire/tradewire-api/pkg/helpers"
)

func doCron(env *testEnv, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/cron", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestCronTriggerRequiresSecret(t *testing.T) {
	env := newTestEnv(t)

	for name, header := range map[string]string{
		"no header":       "",
		"wrong secret":    "Bearer wrong",
		"missing scheme":  "cron-secret",
		"trailing junk":   "Bearer cron-secret ",
		"case mismatch":   "bearer cron-secret",
	} {
		w := doCron(env, header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, name)
	}
	assert.Zero(t, env.cron.count())
}

func TestCronTriggerEnqueuesRefresh(t *testing.T) {
	env := newTestEnv(t)

	w := doCron(env, "Bearer cron-secret")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, env.cron.count())

	job, ok := env.cron.jobs[0].(NewsRefreshJob)
	require.True(t, ok)
	assert.Equal(t, "news_refresh", job.Type)
	assert.False(t, job.RequestedAt.IsZero())
}

func TestCronTriggerDisabledWithoutSecret(t *testing.T) {
	logger := helpers.NewLogger("test", "test")
	h := NewCronHandler("", &recordingPublisher{}, logger)

	r := gin.New()
	r.GET("/api/cron", h.Trigger)

	// With no secret configured nothing authorizes, not even an empty bearer.
	for _, header := range []string{"", "Bearer ", "Bearer anything"} {
		req := httptest.NewRequest(http.MethodGet, "/api/cron", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
}

func TestCronTriggerWithoutQueue(t *testing.T) {
	logger := helpers.NewLogger("test", "test")
	h := NewCronHandler("cron-secret", nil, logger)

	r := gin.New()
	r.GET("/api/cron", h.Trigger)

	req := httptest.NewRequest(http.MethodGet, "/api/cron", nil)
	req.Header.Set("Authorization", "Bearer cron-secret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
