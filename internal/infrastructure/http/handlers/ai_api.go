package handlers

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/smartcooking/api/internal/infrastructure/aiproxy"
	"github.com/smartcooking/api/internal/infrastructure/monitoring"
)

// maxUploadSize caps image and audio uploads forwarded upstream.
const maxUploadSize = 10 << 20

// AIHandlers proxies requests to the AI microservice. Every feature
// endpoint answers 200 with a canned payload when the upstream is
// unavailable so clients never see a proxy failure.
type AIHandlers struct {
	client  *aiproxy.Client
	metrics *monitoring.MetricsCollector
	logger  *zap.Logger
}

// NewAIHandlers creates AI proxy handlers.
func NewAIHandlers(client *aiproxy.Client, metrics *monitoring.MetricsCollector, logger *zap.Logger) *AIHandlers {
	return &AIHandlers{client: client, metrics: metrics, logger: logger.Named("ai-api")}
}

// forwardJSON sends the request body upstream and falls back to the
// given payload on any failure. The fallback is always written with
// HTTP 200.
func (h *AIHandlers) forwardJSON(w http.ResponseWriter, r *http.Request, feature aiproxy.Feature, fallback func(body map[string]interface{}) map[string]interface{}) {
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		body = map[string]interface{}{}
	}

	start := time.Now()
	result, err := h.client.ForwardJSON(r.Context(), feature, body)
	if err != nil {
		h.logger.Warn("AI request failed, serving fallback",
			zap.String("feature", string(feature)), zap.Error(err))
		h.metrics.RecordAIRequest(string(feature), true, time.Since(start))
		writeJSON(h.logger, w, http.StatusOK, fallback(body))
		return
	}

	h.metrics.RecordAIRequest(string(feature), false, time.Since(start))
	writeJSON(h.logger, w, http.StatusOK, result)
}

// Chat handles POST /api/ai/chat
func (h *AIHandlers) Chat(w http.ResponseWriter, r *http.Request) {
	h.forwardJSON(w, r, aiproxy.FeatureChat, func(map[string]interface{}) map[string]interface{} {
		return aiproxy.ChatFallback()
	})
}

// GenerateRecipe handles POST /api/ai/generate-recipe
func (h *AIHandlers) GenerateRecipe(w http.ResponseWriter, r *http.Request) {
	h.forwardJSON(w, r, aiproxy.FeatureRecipe, func(body map[string]interface{}) map[string]interface{} {
		return aiproxy.RecipeFallback(stringSliceField(body, "ingredients"))
	})
}

// IngredientSuggestions handles POST /api/ai/ingredient-suggestions
func (h *AIHandlers) IngredientSuggestions(w http.ResponseWriter, r *http.Request) {
	h.forwardJSON(w, r, aiproxy.FeatureIngredients, func(map[string]interface{}) map[string]interface{} {
		return aiproxy.IngredientsFallback()
	})
}

// LearningPath handles POST /api/ai/learning-path
func (h *AIHandlers) LearningPath(w http.ResponseWriter, r *http.Request) {
	h.forwardJSON(w, r, aiproxy.FeatureLearning, func(map[string]interface{}) map[string]interface{} {
		return aiproxy.LearningPathFallback()
	})
}

// Nutrition handles POST /api/ai/nutrition-analysis
func (h *AIHandlers) Nutrition(w http.ResponseWriter, r *http.Request) {
	h.forwardJSON(w, r, aiproxy.FeatureNutrition, func(map[string]interface{}) map[string]interface{} {
		return aiproxy.NutritionFallback()
	})
}

// Vision handles POST /api/ai/vision. The uploaded image arrives in
// the "file" form field and is re-wrapped for the upstream.
func (h *AIHandlers) Vision(w http.ResponseWriter, r *http.Request) {
	file, header, err := h.formFile(w, r, "file")
	if err != nil {
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	start := time.Now()
	result, err := h.client.ForwardMultipart(r.Context(), aiproxy.FeatureVision,
		[]aiproxy.FilePart{{FieldName: "file", FileName: header.Filename, Content: content}}, nil)
	if err != nil {
		h.logger.Warn("AI vision request failed, serving fallback", zap.Error(err))
		h.metrics.RecordAIRequest(string(aiproxy.FeatureVision), true, time.Since(start))
		writeJSON(h.logger, w, http.StatusOK, aiproxy.VisionFallback(header.Filename))
		return
	}

	h.metrics.RecordAIRequest(string(aiproxy.FeatureVision), false, time.Since(start))
	writeJSON(h.logger, w, http.StatusOK, result)
}

// Voice handles POST /api/ai/voice. The recording arrives in the
// "audio" form field; the optional "language" field defaults to "vi".
func (h *AIHandlers) Voice(w http.ResponseWriter, r *http.Request) {
	file, header, err := h.formFile(w, r, "audio")
	if err != nil {
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	language := r.FormValue("language")
	if language == "" {
		language = "vi"
	}

	start := time.Now()
	result, err := h.client.ForwardMultipart(r.Context(), aiproxy.FeatureVoice,
		[]aiproxy.FilePart{{FieldName: "audio", FileName: header.Filename, Content: content}},
		map[string]string{"language": language})
	if err != nil {
		h.logger.Warn("AI voice request failed, serving fallback", zap.Error(err))
		h.metrics.RecordAIRequest(string(aiproxy.FeatureVoice), true, time.Since(start))
		writeJSON(h.logger, w, http.StatusOK, aiproxy.VoiceFallback())
		return
	}

	h.metrics.RecordAIRequest(string(aiproxy.FeatureVoice), false, time.Since(start))
	writeJSON(h.logger, w, http.StatusOK, result)
}

// Health handles GET /api/ai/health. Unlike the feature endpoints it
// surfaces upstream unavailability with a 503.
func (h *AIHandlers) Health(w http.ResponseWriter, r *http.Request) {
	status := h.client.Health(r.Context())
	if !status.Reachable {
		writeJSON(h.logger, w, http.StatusServiceUnavailable, map[string]interface{}{
			"ai_service_status": "unreachable",
			"ai_service_url":    status.ServiceURL,
			"error":             "AI service is not responding",
		})
		return
	}

	state := "healthy"
	if status.StatusCode < 200 || status.StatusCode >= 300 {
		state = "unhealthy"
	}
	writeJSON(h.logger, w, http.StatusOK, map[string]interface{}{
		"ai_service_status": state,
		"ai_service_url":    status.ServiceURL,
		"response_code":     status.StatusCode,
	})
}

func (h *AIHandlers) formFile(w http.ResponseWriter, r *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "Invalid multipart form")
		return nil, nil, err
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "Missing form file: "+field)
		return nil, nil, err
	}
	return file, header, nil
}

func stringSliceField(body map[string]interface{}, key string) []string {
	raw, ok := body[key].([]interface{})
	if !ok {
		return nil
	}
	values := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			values = append(values, s)
		}
	}
	return values
}
