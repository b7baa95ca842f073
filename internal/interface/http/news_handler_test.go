package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewire/tradewire-api/internal/domain/entity"
)

func TestNewsListIsPublic(t *testing.T) {
	env := newTestEnv(t)
	env.news.items = []entity.NewsItem{
		{ID: "n2", Title: "Fed holds rates", Timestamp: "2026-08-28 14:00:02"},
		{ID: "n1", Title: "CPI comes in hot", Timestamp: "2026-08-28 13:30:00"},
	}

	// No cookie needed; the ticker is world readable.
	w := env.do(t, http.MethodGet, "/api/news", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	items, ok := data["news"].([]any)
	require.True(t, ok)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	assert.Equal(t, "Fed holds rates", first["title"])
	assert.Equal(t, "2026-08-28 14:00:02", first["timestamp"])
}

func TestNewsListEmptyFeed(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/news", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData(t, w)["news"], 0)
}
