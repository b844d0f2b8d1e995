package output

import (
	"context"
	"errors"
	"fmt"
)

// AgentPort sends one prompt to the remote AI agent and returns its reply.
// Implementations must not retry.
type AgentPort interface {
	Send(ctx context.Context, req AgentRequest) (*AgentReply, error)
}

type AgentRequest struct {
	RequestID      string
	Message        string
	ConversationID string
}

type AgentReply struct {
	// Text is output.message when present, otherwise the whole body.
	Text       string
	StatusCode int
}

// ErrAgentStatus matches every AgentStatusError.
var ErrAgentStatus = errors.New("agent returned non-2xx status")

// AgentStatusError reports a reply with a non-2xx status.
type AgentStatusError struct {
	StatusCode int
	Body       string
}

func (e *AgentStatusError) Error() string {
	return fmt.Sprintf("agent api error: %d", e.StatusCode)
}

func (e *AgentStatusError) Is(target error) bool {
	return target == ErrAgentStatus
}
