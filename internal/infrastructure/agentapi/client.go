package agentapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"shopqa/internal/application/port/output"

	"golang.org/x/time/rate"
)

var _ output.AgentPort = (*Client)(nil)

const (
	DefaultURL     = "https://frwxt5uwb5da2wbtyx4p3wk4qm0sydut.lambda-url.us-east-1.on.aws/agent/a-gaurav-expy-agent/send_message"
	DefaultAPIKey  = "your_api_key_here"
	DefaultUserID  = "test_user_001"
	DefaultTimeout = 90 * time.Second

	maxResponseBody = 8 << 20
)

type Config struct {
	URL    string
	APIKey string
	UserID string
	// Metadata is merged into the "input" object of every request.
	Metadata map[string]string
	// Timeout bounds one call. Zero leaves it to the caller's context.
	Timeout time.Duration
	// RateLimit caps requests per second across all callers. Zero disables it.
	RateLimit  float64
	HTTPClient *http.Client
	Logger     output.LoggerPort
}

func DefaultConfig() Config {
	return Config{
		URL:     DefaultURL,
		APIKey:  DefaultAPIKey,
		UserID:  DefaultUserID,
		Timeout: DefaultTimeout,
	}
}

// Client speaks the agent's send_message protocol: one POST per call, no retries.
// Its fields are set once in NewClient and never mutated.
type Client struct {
	url      string
	apiKey   string
	userID   string
	metadata map[string]string
	timeout  time.Duration
	limiter  *rate.Limiter
	http     *http.Client
	logger   output.LoggerPort
}

func NewClient(cfg Config) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.Logger != nil {
		base := httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		httpClient = &http.Client{
			Transport:     &loggingTransport{base: base, logger: cfg.Logger},
			CheckRedirect: httpClient.CheckRedirect,
			Jar:           httpClient.Jar,
			Timeout:       httpClient.Timeout,
		}
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	metadata := make(map[string]string, len(cfg.Metadata))
	for k, v := range cfg.Metadata {
		metadata[k] = v
	}

	return &Client{
		url:      cfg.URL,
		apiKey:   cfg.APIKey,
		userID:   cfg.UserID,
		metadata: metadata,
		timeout:  cfg.Timeout,
		limiter:  limiter,
		http:     httpClient,
		logger:   cfg.Logger,
	}
}

func (c *Client) Send(ctx context.Context, req output.AgentRequest) (*output.AgentReply, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	payload, err := c.buildBody(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set(headerUserID, c.userID)
	httpReq.Header.Set(headerAuth, authScheme+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("agent request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read agent response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if c.logger != nil {
			c.logger.Error("Agent returned error status",
				"requestId", req.RequestID,
				"conversationId", req.ConversationID,
				"statusCode", resp.StatusCode,
				"body", truncate(string(body), maxLoggedBody),
			)
		}
		return nil, &output.AgentStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return &output.AgentReply{
		Text:       ExtractMessage(body),
		StatusCode: resp.StatusCode,
	}, nil
}

func (c *Client) buildBody(req output.AgentRequest) ([]byte, error) {
	input := make(map[string]any, len(c.metadata)+2)
	for k, v := range c.metadata {
		input[k] = v
	}
	input["message"] = req.Message
	input["conversationId"] = req.ConversationID

	return json.Marshal(map[string]any{"input": input})
}

// ExtractMessage returns output.message from an agent body. A string message
// is returned verbatim and a structured one re-encoded as JSON. Any other
// body, including an empty message, is returned whole.
func ExtractMessage(body []byte) string {
	var envelope struct {
		Output *struct {
			Message json.RawMessage `json:"message"`
		} `json:"output"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Output == nil {
		return string(body)
	}

	msg := bytes.TrimSpace(envelope.Output.Message)
	if len(msg) == 0 || bytes.Equal(msg, []byte("null")) {
		return string(body)
	}

	var text string
	if err := json.Unmarshal(msg, &text); err == nil {
		if text == "" {
			return string(body)
		}
		return text
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, msg); err != nil {
		return string(msg)
	}
	return compact.String()
}
