// Package aiproxy forwards AI feature requests to the upstream AI
// microservice and degrades to canned responses when it is down.
package aiproxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/smartcooking/api/internal/infrastructure/config"
)

// Feature identifies an upstream AI capability.
type Feature string

const (
	FeatureChat        Feature = "chat"
	FeatureRecipe      Feature = "generate-recipe"
	FeatureVision      Feature = "vision"
	FeatureIngredients Feature = "ingredient-suggestions"
	FeatureLearning    Feature = "learning-path"
	FeatureNutrition   Feature = "nutrition-analysis"
	FeatureVoice       Feature = "voice"
)

// FilePart is an uploaded file forwarded as-is to the upstream.
type FilePart struct {
	FieldName string
	FileName  string
	Content   []byte
}

// HealthStatus describes the upstream AI service state.
type HealthStatus struct {
	Reachable    bool
	StatusCode   int
	ServiceURL   string
	ResponseBody map[string]interface{}
}

// Client proxies requests to the AI microservice.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates an AI proxy client from configuration.
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		baseURL: cfg.AIService.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.AIService.Timeout,
		},
		logger: logger,
	}
}

// ForwardJSON posts a JSON body to the upstream feature endpoint and
// returns the decoded response. Any transport error, non-2xx status
// or undecodable body is reported as an error so callers can fall
// back.
func (c *Client) ForwardJSON(ctx context.Context, feature Feature, body map[string]interface{}) (map[string]interface{}, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.featureURL(feature), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, feature)
}

// ForwardMultipart re-wraps uploaded files and form fields into a new
// multipart body and posts it to the upstream feature endpoint.
func (c *Client) ForwardMultipart(ctx context.Context, feature Feature, files []FilePart, fields map[string]string) (map[string]interface{}, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, file := range files {
		part, err := writer.CreateFormFile(file.FieldName, file.FileName)
		if err != nil {
			return nil, fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := part.Write(file.Content); err != nil {
			return nil, fmt.Errorf("failed to write form file: %w", err)
		}
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("failed to write form field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.featureURL(feature), &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req, feature)
}

// Health probes the upstream /health endpoint. Reachable is false
// only when the request itself fails; a non-2xx answer still counts
// as reachable and carries its status code.
func (c *Client) Health(ctx context.Context) HealthStatus {
	status := HealthStatus{ServiceURL: c.baseURL}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return status
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("AI service health probe failed", zap.Error(err))
		return status
	}
	defer resp.Body.Close()

	status.Reachable = true
	status.StatusCode = resp.StatusCode

	var body map[string]interface{}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err == nil {
		status.ResponseBody = body
	}
	return status
}

func (c *Client) do(req *http.Request, feature Feature) (map[string]interface{}, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("AI service request failed",
			zap.String("feature", string(feature)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("ai service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("AI service returned error status",
			zap.String("feature", string(feature)),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("ai service returned status %d", resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode ai response: %w", err)
	}

	c.logger.Debug("AI service request completed",
		zap.String("feature", string(feature)),
		zap.Duration("duration", time.Since(start)),
	)
	return result, nil
}

func (c *Client) featureURL(feature Feature) string {
	return c.baseURL + "/api/ai/" + string(feature)
}
