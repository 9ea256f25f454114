// Package factory is the client for the external video production service:
// per-post production requests, premium curation batches, health, and
// performance stats. Every request carries the shared API key; production
// outcomes are mirrored into the local production queue.
package factory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
)

// ErrNoAPIKey is returned by New when no API key is configured. The process
// fails fast at startup rather than discovering this mid-cycle.
var ErrNoAPIKey = errors.New("FACTORY_API_KEY not set")

// ErrRejected is returned when the service answers but declines the request.
// The response error message is attached.
var ErrRejected = errors.New("production service rejected request")

// QueueStore is the slice of the content store that tracks production state.
type QueueStore interface {
	EnqueueProduction(ctx context.Context, postID int64, videoType string) error
	CompleteProduction(ctx context.Context, postID int64, videoPath, thumbnailPath string) error
	FailProduction(ctx context.Context, postID int64, errorMsg string) error
}

// Config holds production service client configuration.
type Config struct {
	// BaseURL of the production service. If empty, read from FACTORY_API_URL,
	// defaulting to http://localhost:5001.
	BaseURL string

	// APIKey authenticates every request. If empty, read from FACTORY_API_KEY.
	APIKey string

	// Timeout bounds each call. Default: 30s.
	Timeout time.Duration
}

// DefaultConfig returns the default client configuration with environment
// overrides applied.
func DefaultConfig() Config {
	cfg := Config{
		BaseURL: "http://localhost:5001",
		Timeout: 30 * time.Second,
	}
	if url := os.Getenv("FACTORY_API_URL"); url != "" {
		cfg.BaseURL = url
	}
	cfg.APIKey = os.Getenv("FACTORY_API_KEY")
	return cfg
}

// apiKeyTransport stamps the shared key onto every outbound request.
type apiKeyTransport struct {
	key  string
	base http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("X-API-Key", t.key)
	return t.base.RoundTrip(clone)
}

// Client talks to the production service.
type Client struct {
	http    *http.Client
	baseURL string
	store   QueueStore
	log     *zap.Logger
}

// New creates a production service client. Returns ErrNoAPIKey when no key is
// available.
func New(cfg Config, store QueueStore, log *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("FACTORY_API_KEY")
		if cfg.APIKey == "" {
			return nil, ErrNoAPIKey
		}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfig().BaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}

	return &Client{
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: &apiKeyTransport{key: cfg.APIKey, base: http.DefaultTransport},
		},
		baseURL: cfg.BaseURL,
		store:   store,
		log:     log.Named("factory"),
	}, nil
}

type productionData struct {
	VideoPath     string `json:"video_path"`
	ThumbnailPath string `json:"thumbnail_path"`
}

type apiResponse struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// RequestProduction enqueues the post locally, asks the service to produce a
// video for it, and records the outcome in the queue. A failure here never
// affects the committed post; the queue row carries the state for retries.
func (c *Client) RequestProduction(ctx context.Context, postID int64, videoType string) error {
	if err := c.store.EnqueueProduction(ctx, postID, videoType); err != nil {
		return fmt.Errorf("enqueue production: %w", err)
	}

	resp, err := c.post(ctx, "/api/generate", map[string]any{
		"post_id":    postID,
		"video_type": videoType,
	})
	if err != nil {
		c.markFailed(ctx, postID, err.Error())
		return err
	}
	if !resp.Success {
		c.markFailed(ctx, postID, resp.Error)
		return fmt.Errorf("%w: %s", ErrRejected, resp.Error)
	}

	var data productionData
	if len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, &data); err != nil {
			c.log.Warn("unparseable production data", zap.Int64("post_id", postID), zap.Error(err))
		}
	}
	if err := c.store.CompleteProduction(ctx, postID, data.VideoPath, data.ThumbnailPath); err != nil {
		c.log.Warn("queue completion update failed", zap.Int64("post_id", postID), zap.Error(err))
	}

	c.log.Info("production request accepted",
		zap.Int64("post_id", postID),
		zap.String("video_type", videoType),
		zap.String("video_path", data.VideoPath))
	return nil
}

// CurationRequest asks for quality-thresholded post batches per category.
type CurationRequest struct {
	AgroCount       int     `json:"agro_count"`
	InfoCount       int     `json:"info_count"`
	MinQualityScore float64 `json:"min_quality_score"`
}

// DefaultCurationRequest returns the standard daily batch sizes.
func DefaultCurationRequest() CurationRequest {
	return CurationRequest{AgroCount: 2, InfoCount: 2, MinQualityScore: 6.5}
}

type curationItem struct {
	PostID int64 `json:"post_id"`
}

// CurationResult lists the selected post IDs per category.
type CurationResult struct {
	Agro []int64
	Info []int64
}

// RequestCuration asks the service to select the best recent posts.
func (c *Client) RequestCuration(ctx context.Context, req CurationRequest) (*CurationResult, error) {
	resp, err := c.post(ctx, "/api/curate/premium", req)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: %s", ErrRejected, resp.Error)
	}

	var data struct {
		Agro []curationItem `json:"agro"`
		Info []curationItem `json:"info"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("parse curation data: %w", err)
	}

	result := &CurationResult{}
	for _, item := range data.Agro {
		result.Agro = append(result.Agro, item.PostID)
	}
	for _, item := range data.Info {
		result.Info = append(result.Info, item.PostID)
	}
	return result, nil
}

// Status reports the service health map.
func (c *Client) Status(ctx context.Context) (map[string]any, error) {
	return c.get(ctx, "/api/status")
}

// PerformanceStats reports aggregate production stats over the given window.
func (c *Client) PerformanceStats(ctx context.Context, days int) (map[string]any, error) {
	return c.get(ctx, fmt.Sprintf("/api/performance/stats?days=%d", days))
}

func (c *Client) markFailed(ctx context.Context, postID int64, msg string) {
	if err := c.store.FailProduction(ctx, postID, msg); err != nil {
		c.log.Warn("queue failure update failed", zap.Int64("post_id", postID), zap.Error(err))
	}
}

func (c *Client) post(ctx context.Context, path string, body any) (*apiResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("production service call: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("production service: status %d", httpResp.StatusCode)
	}

	var resp apiResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &resp, nil
}

func (c *Client) get(ctx context.Context, path string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("production service call: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		return nil, fmt.Errorf("production service: status %d: %s", httpResp.StatusCode, bytes.TrimSpace(body))
	}

	var out map[string]any
	if err := json.NewDecoder(httpResp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}
