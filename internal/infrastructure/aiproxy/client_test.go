package aiproxy

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartcooking/api/internal/infrastructure/config"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	cfg := &config.Config{
		AIService: config.AIServiceConfig{
			BaseURL: baseURL,
			Timeout: 2 * time.Second,
		},
	}
	return NewClient(cfg, zap.NewNop())
}

func TestForwardJSON_PassesThroughUpstreamResponse(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ai/chat", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "phở bò nấu thế nào?", body["message"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":  true,
			"response": "Ninh xương bò với gừng nướng.",
			"model":    "gpt-4o-mini",
		})
	}))
	defer upstream.Close()

	client := newTestClient(t, upstream.URL)
	result, err := client.ForwardJSON(context.Background(), FeatureChat, map[string]interface{}{
		"message": "phở bò nấu thế nào?",
	})
	require.NoError(t, err)
	assert.Equal(t, true, result["success"])
	assert.Equal(t, "Ninh xương bò với gừng nướng.", result["response"])
	assert.Equal(t, "gpt-4o-mini", result["model"])
}

func TestForwardJSON_ErrorStatusReportsFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	client := newTestClient(t, upstream.URL)
	_, err := client.ForwardJSON(context.Background(), FeatureChat, map[string]interface{}{})
	assert.Error(t, err)
}

func TestForwardJSON_UnreachableUpstream(t *testing.T) {
	client := newTestClient(t, "http://127.0.0.1:1")
	_, err := client.ForwardJSON(context.Background(), FeatureChat, map[string]interface{}{})
	assert.Error(t, err)
}

func TestForwardJSON_NonJSONBodyReportsFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>not json</html>")
	}))
	defer upstream.Close()

	client := newTestClient(t, upstream.URL)
	_, err := client.ForwardJSON(context.Background(), FeatureNutrition, map[string]interface{}{})
	assert.Error(t, err)
}

func TestForwardMultipart_RewrapsFileAndFields(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ai/voice", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "vi", r.FormValue("language"))

		file, header, err := r.FormFile("audio")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "note.wav", header.Filename)

		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, []byte("RIFF-audio-bytes"), content)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"text":    "cho tôi công thức phở",
		})
	}))
	defer upstream.Close()

	client := newTestClient(t, upstream.URL)
	result, err := client.ForwardMultipart(context.Background(), FeatureVoice,
		[]FilePart{{FieldName: "audio", FileName: "note.wav", Content: []byte("RIFF-audio-bytes")}},
		map[string]string{"language": "vi"},
	)
	require.NoError(t, err)
	assert.Equal(t, true, result["success"])
	assert.Equal(t, "cho tôi công thức phở", result["text"])
}

func TestHealth_ReachableUpstream(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "healthy"})
	}))
	defer upstream.Close()

	client := newTestClient(t, upstream.URL)
	status := client.Health(context.Background())
	assert.True(t, status.Reachable)
	assert.Equal(t, http.StatusOK, status.StatusCode)
	assert.Equal(t, "healthy", status.ResponseBody["status"])
}

func TestHealth_UnreachableUpstream(t *testing.T) {
	client := newTestClient(t, "http://127.0.0.1:1")
	status := client.Health(context.Background())
	assert.False(t, status.Reachable)
	assert.Equal(t, 0, status.StatusCode)
}

func TestFallbacks_Shapes(t *testing.T) {
	chat := ChatFallback()
	assert.Equal(t, true, chat["success"])
	chatData := chat["data"].(map[string]interface{})
	assert.Equal(t, "Xin lỗi, tôi đang gặp sự cố kỹ thuật. Vui lòng thử lại sau.", chatData["response"])
	assert.Equal(t, "fallback", chatData["model"])

	rec := RecipeFallback([]string{"thịt gà", "sả"})
	assert.Equal(t, true, rec["success"])
	recData := rec["data"].(map[string]interface{})
	assert.Equal(t, "fallback", recData["model"])
	recipe := recData["recipe"].(map[string]interface{})
	assert.Equal(t, "Món ăn đơn giản", recipe["title"])
	assert.Equal(t, []string{"thịt gà", "sả"}, recipe["ingredients"])
	assert.Equal(t, 30, recipe["cook_time"])
	assert.Equal(t, "Trung bình", recipe["difficulty"])
	assert.Len(t, recipe["instructions"], 3)

	vision := VisionFallback("dinner.jpg")
	assert.Equal(t, true, vision["success"])
	assert.Equal(t, "dinner.jpg", vision["filename"])
	foods := vision["detected_foods"].([]map[string]interface{})
	require.Len(t, foods, 1)
	assert.Equal(t, "Món ăn Việt Nam", foods[0]["name"])
	assert.Equal(t, 0.8, foods[0]["confidence"])

	voice := VoiceFallback()
	assert.Equal(t, false, voice["success"])
	assert.Equal(t, "Không thể xử lý giọng nói. Vui lòng thử lại.", voice["error"])

	nutrition := NutritionFallback()
	assert.Equal(t, true, nutrition["success"])
	nutritionData := nutrition["data"].(map[string]interface{})
	perServing := nutritionData["per_serving"].(map[string]interface{})
	assert.Equal(t, 300, perServing["calories"])

	path := LearningPathFallback()["data"].(map[string]interface{})
	assert.Equal(t, "Lộ trình nấu ăn cơ bản", path["title"])
	assert.Equal(t, 8, path["duration_weeks"])
	assert.Equal(t, 16, path["total_dishes"])
}
