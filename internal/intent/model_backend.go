package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/kaptinlin/jsonrepair"

	pipeerrors "suri/internal/errors"
	"suri/internal/logging"
	"suri/internal/types"
)

// ModelConfig configures the HTTP model backend.
type ModelConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// HTTPModelBackend adapts a locally served scoring model to the ModelBackend
// interface. The endpoint contract is a single-shot generate call returning
// a JSON object of label scores; malformed JSON is repaired before parsing.
type HTTPModelBackend struct {
	config ModelConfig
	client *http.Client
	logger logging.Logger

	mu        sync.Mutex
	checkedAt time.Time
	healthy   bool
}

// NewHTTPModelBackend creates the primary-tier adapter.
func NewHTTPModelBackend(config ModelConfig, logger logging.Logger) *HTTPModelBackend {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPModelBackend{
		config: config,
		client: &http.Client{Timeout: timeout},
		logger: logging.OrNop(logger),
	}
}

// Name implements ModelBackend.
func (b *HTTPModelBackend) Name() string { return "model:" + b.config.Model }

// Available probes the backend health endpoint, caching the result briefly
// so batch classification does not probe per item.
func (b *HTTPModelBackend) Available(ctx context.Context) bool {
	b.mu.Lock()
	if time.Since(b.checkedAt) < 30*time.Second {
		healthy := b.healthy
		b.mu.Unlock()
		return healthy
	}
	b.mu.Unlock()

	healthy := b.probe(ctx)

	b.mu.Lock()
	b.checkedAt = time.Now()
	b.healthy = healthy
	b.mu.Unlock()
	return healthy
}

func (b *HTTPModelBackend) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.config.BaseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := b.client.Do(req)
	if err != nil {
		b.logger.Debug("model backend probe failed: %v", err)
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}

type scoreRequest struct {
	Model  string   `json:"model"`
	Text   string   `json:"text"`
	Labels []string `json:"labels"`
}

type scoreResponse struct {
	Scores map[string]float64 `json:"scores"`
}

// Predict implements ModelBackend. Transient HTTP failures are retried with
// backoff; anything left over surfaces as a DegradedError so the classifier
// falls back instead of failing.
func (b *HTTPModelBackend) Predict(ctx context.Context, text string) (map[types.Intent]float64, error) {
	labels := make([]string, 0, len(types.Intents()))
	for _, l := range types.Intents() {
		labels = append(labels, string(l))
	}
	payload, err := json.Marshal(scoreRequest{Model: b.config.Model, Text: text, Labels: labels})
	if err != nil {
		return nil, fmt.Errorf("marshal score request: %w", err)
	}

	var body []byte
	call := func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.config.BaseURL+"/api/score", bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := b.client.Do(req)
		if err != nil {
			return &pipeerrors.TransientError{Err: err}
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return &pipeerrors.TransientError{Err: err}
		}
		if resp.StatusCode != http.StatusOK {
			if pipeerrors.IsTransientHTTPStatus(resp.StatusCode) {
				return &pipeerrors.TransientError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("model backend returned %d", resp.StatusCode)}
			}
			return &pipeerrors.PermanentError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("model backend returned %d", resp.StatusCode)}
		}
		body = data
		return nil
	}

	retryCfg := pipeerrors.RetryConfig{MaxAttempts: 2, BaseDelay: 200 * time.Millisecond, MaxDelay: 2 * time.Second, JitterFactor: 0.2}
	if err := pipeerrors.RetryWithLog(ctx, retryCfg, call, b.logger); err != nil {
		return nil, &pipeerrors.DegradedError{Err: err, Fallback: "keyword", Message: "model backend unavailable"}
	}

	return b.parseScores(body)
}

// parseScores decodes the score payload, repairing malformed JSON the way
// small local models tend to produce it.
func (b *HTTPModelBackend) parseScores(body []byte) (map[types.Intent]float64, error) {
	var parsed scoreResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(string(body))
		if repairErr != nil {
			return nil, &pipeerrors.DegradedError{Err: err, Fallback: "keyword", Message: "model backend returned unparseable scores"}
		}
		if err := json.Unmarshal([]byte(repaired), &parsed); err != nil {
			return nil, &pipeerrors.DegradedError{Err: err, Fallback: "keyword", Message: "model backend returned unparseable scores"}
		}
		b.logger.Warn("model backend scores needed JSON repair")
	}

	scores := make(map[types.Intent]float64, len(parsed.Scores))
	for label, score := range parsed.Scores {
		if score < 0 {
			score = 0
		}
		if score > 1 {
			score = 1
		}
		scores[types.Intent(label)] = score
	}
	return scores, nil
}
