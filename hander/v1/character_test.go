package V1

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"demo/config"
	"demo/domain"
	"demo/hander"
	"demo/pkg/log"
	"demo/serve"
	"demo/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCharacterServer(t *testing.T) (*serve.HttpServer, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "armor"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "armor", "装甲通常.mp4"), []byte("mp4"), 0o644))

	c := &config.Config{Assets: config.AssetsConfig{Source: "static", Dir: dir, Prefix: "/videos"}}
	l := log.NewDiscard()
	assets, err := usecase.NewAssetUsecase(l, c, nil)
	require.NoError(t, err)
	chat, err := usecase.NewChatUsecase(l, c)
	require.NoError(t, err)

	s := serve.NewHttpServer(l, c)
	NewHealthHander(s)
	NewIndexHander(s)
	NewCharacterHander(s, c, hander.NewBaseHandler(), l, assets, usecase.NewWsUseCase(l, c, chat, assets, usecase.NewCommandMatcher(c)))
	return s, dir
}

func get(s *serve.HttpServer, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthAndIndex(t *testing.T) {
	s, _ := newCharacterServer(t)

	rec := get(s, "/v1/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = get(s, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/v1/ws")
	assert.Contains(t, rec.Body.String(), `id="v1"`)
}

func TestMetrics(t *testing.T) {
	s, _ := newCharacterServer(t)
	get(s, "/v1/health")

	rec := get(s, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestClips(t *testing.T) {
	s, _ := newCharacterServer(t)

	rec := get(s, "/v1/clips")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool               `json:"success"`
		Data    domain.ClipCatalog `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "armor/装甲通常.mp4", resp.Data.Table["armor"]["idle"])
	assert.Equal(t, "/videos/armor/%E8%A3%85%E7%94%B2%E9%80%9A%E5%B8%B8.mp4", resp.Data.URLs["armor/装甲通常.mp4"])
	assert.NotContains(t, resp.Data.Missing, "armor/装甲通常.mp4")
	assert.Contains(t, resp.Data.Missing, "normal/通常.mp4")
}

func TestStaticClipServed(t *testing.T) {
	s, _ := newCharacterServer(t)

	rec := get(s, "/videos/armor/%E8%A3%85%E7%94%B2%E9%80%9A%E5%B8%B8.mp4")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "mp4", rec.Body.String())
}
