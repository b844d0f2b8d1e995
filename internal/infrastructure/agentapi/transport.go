package agentapi

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"shopqa/internal/application/port/output"
)

const (
	headerUserID = "x-user-id"
	headerAuth   = "x-authentication"
	authScheme   = "api-key "

	maxLoggedBody = 4000
)

// RedactKey keeps a short prefix of the API key for diagnostics.
func RedactKey(key string) string {
	if len(key) <= 4 {
		return "***"
	}
	return key[:4] + "***"
}

// loggingTransport logs every agent exchange with the API key redacted.
type loggingTransport struct {
	base   http.RoundTripper
	logger output.LoggerPort
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var reqBody []byte
	if req.Body != nil {
		reqBody, _ = io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewBuffer(reqBody))
	}

	t.logger.Debug("Agent request",
		"method", req.Method,
		"url", req.URL.String(),
		"userId", req.Header.Get(headerUserID),
		"auth", authScheme+RedactKey(strings.TrimPrefix(req.Header.Get(headerAuth), authScheme)),
		"body", truncate(string(reqBody), maxLoggedBody),
	)

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		t.logger.Debug("Agent transport error", "error", err)
		return nil, err
	}

	t.logger.Debug("Agent response",
		"status", resp.Status,
		"statusCode", resp.StatusCode,
	)
	return resp, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "... (truncated)"
}
