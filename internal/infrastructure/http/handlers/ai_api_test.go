package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartcooking/api/internal/infrastructure/aiproxy"
	"github.com/smartcooking/api/internal/infrastructure/config"
)

func newAIHandlers(t *testing.T, upstreamURL string) *AIHandlers {
	t.Helper()
	cfg := &config.Config{}
	cfg.AIService.BaseURL = upstreamURL
	cfg.AIService.Timeout = 2 * time.Second
	client := aiproxy.NewClient(cfg, zap.NewNop())
	return NewAIHandlers(client, testMetrics, zap.NewNop())
}

func TestChat_UpstreamDown_ServesFallbackWith200(t *testing.T) {
	h := newAIHandlers(t, "http://127.0.0.1:1")

	rec := postJSON(t, h.Chat, "/api/ai/chat", map[string]string{"message": "xin chào"})

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Xin lỗi, tôi đang gặp sự cố kỹ thuật. Vui lòng thử lại sau.", data["response"])
	assert.Equal(t, "fallback", data["model"])
}

func TestChat_UpstreamAnswers_PassesResponseThrough(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ai/chat", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"response":"Chào bạn!","model":"gpt"}`))
	}))
	defer upstream.Close()
	h := newAIHandlers(t, upstream.URL)

	rec := postJSON(t, h.Chat, "/api/ai/chat", map[string]string{"message": "xin chào"})

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Chào bạn!", body["response"])
	assert.Equal(t, "gpt", body["model"])
}

func TestGenerateRecipe_FallbackEchoesIngredients(t *testing.T) {
	h := newAIHandlers(t, "http://127.0.0.1:1")

	rec := postJSON(t, h.GenerateRecipe, "/api/ai/generate-recipe", map[string]interface{}{
		"ingredients": []string{"thịt bò", "hành"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	recipe, ok := data["recipe"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, []interface{}{"thịt bò", "hành"}, recipe["ingredients"])
}

func TestVoice_FallbackReportsFailure(t *testing.T) {
	h := newAIHandlers(t, "http://127.0.0.1:1")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("audio", "clip.wav")
	require.NoError(t, err)
	_, err = part.Write([]byte("RIFF...."))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/ai/voice", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Voice(rec, req)

	// Unlike the other features, a voice transcript cannot be faked,
	// so the fallback reports failure in the body while still
	// answering 200.
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
}

func TestVoice_MissingAudioField_Returns400(t *testing.T) {
	h := newAIHandlers(t, "http://127.0.0.1:1")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("language", "vi"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/ai/voice", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Voice(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVision_FallbackCarriesFilename(t *testing.T) {
	h := newAIHandlers(t, "http://127.0.0.1:1")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "pho.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte{0xFF, 0xD8, 0xFF})
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/ai/vision", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Vision(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "pho.jpg", body["filename"])
}

func TestAIHealth_Unreachable_Returns503(t *testing.T) {
	h := newAIHandlers(t, "http://127.0.0.1:1")

	req := httptest.NewRequest(http.MethodGet, "/api/ai/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unreachable", body["ai_service_status"])
	assert.NotEmpty(t, body["error"])
}

func TestAIHealth_Reachable_ReportsStatusCode(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer upstream.Close()
	h := newAIHandlers(t, upstream.URL)

	req := httptest.NewRequest(http.MethodGet, "/api/ai/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["ai_service_status"])
	assert.EqualValues(t, 200, body["response_code"])
}
