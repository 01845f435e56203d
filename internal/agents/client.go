package agents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/answerdesk/orchestrator/internal/tracing"
)

// Config configures the agent service HTTP client.
type Config struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DefaultConfig reads the service endpoint from the environment with a
// compose-friendly fallback.
func DefaultConfig() Config {
	base := os.Getenv("AGENT_SERVICE_URL")
	if base == "" {
		base = "http://agent-service:8000"
	}
	return Config{BaseURL: base, Timeout: 120 * time.Second}
}

// Client talks to the agent service over HTTP. It implements all three
// collaborator interfaces.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient builds a Client from cfg, filling unset fields from defaults.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// agentResponse is the service's reply envelope.
type agentResponse struct {
	Success      bool     `json:"success"`
	Response     string   `json:"response"`
	CitationURLs []string `json:"citation_urls,omitempty"`
	Error        string   `json:"error,omitempty"`
	ModelUsed    string   `json:"model_used,omitempty"`
	Provider     string   `json:"provider,omitempty"`
}

// query POSTs one agent request and decodes the envelope. Transport errors
// and non-2xx statuses are returned as errors; the caller decides whether
// they are fatal.
func (c *Client) query(ctx context.Context, agentID, prompt string, extra map[string]interface{}) (*agentResponse, error) {
	reqBody := map[string]interface{}{
		"query":    prompt,
		"agent_id": agentID,
	}
	for k, v := range extra {
		reqBody[k] = v
	}

	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/agent/query", c.baseURL)
	ctx, span := tracing.StartHTTPSpan(ctx, http.MethodPost, url)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqJSON))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Agent-ID", agentID)
	tracing.InjectTraceparent(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("agent service call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("agent service returned HTTP %d", resp.StatusCode)
	}

	var out agentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

// Generate asks the service for a candidate answer. Service-side failure is
// reported through GenerateResponse.Status, not an error, so the caller can
// distinguish "generator said no" from "could not ask the generator" if it
// needs to; transport failures still return an error.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	prompt := buildGeneratePrompt(req)

	resp, err := c.query(ctx, "answer_generator", prompt, map[string]interface{}{
		"temperature": 0.3,
		"context": map[string]interface{}{
			"char_limit": req.CharLimit,
		},
	})
	if err != nil {
		return nil, err
	}

	if !resp.Success {
		c.logger.Warn("Answer generation failed on the agent side",
			zap.String("error", resp.Error))
		return &GenerateResponse{Status: StatusFailed, Error: resp.Error}, nil
	}

	return &GenerateResponse{
		Text:         resp.Response,
		CitationURLs: resp.CitationURLs,
		Status:       StatusCompleted,
	}, nil
}

// CheckAnswer asks the service to review an answer and parses the verdict.
func (c *Client) CheckAnswer(ctx context.Context, question, answer string) (Verdict, error) {
	prompt := buildCheckPrompt(question, answer)

	resp, err := c.query(ctx, "answer_checker", prompt, map[string]interface{}{
		"temperature": 0.0,
	})
	if err != nil {
		return Verdict{}, err
	}
	if !resp.Success {
		return Verdict{}, fmt.Errorf("answer checker failed: %s", resp.Error)
	}

	return ParseVerdict(resp.Response), nil
}

// ClassifyColumns asks the service to classify sheet headers and returns the
// raw three-line reply for the columns package to parse.
func (c *Client) ClassifyColumns(ctx context.Context, headers []string, samples [][]string) (string, error) {
	prompt := buildClassifyPrompt(headers, samples)

	resp, err := c.query(ctx, "column_classifier", prompt, map[string]interface{}{
		"temperature": 0.0,
	})
	if err != nil {
		return "", err
	}
	if !resp.Success {
		return "", fmt.Errorf("column classifier failed: %s", resp.Error)
	}
	return resp.Response, nil
}
