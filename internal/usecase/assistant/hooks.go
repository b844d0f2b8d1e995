package assistant

import "github.com/zoobzio/capitan"

// Signals emitted around every agent call. Listeners observe failures without
// changing what callers receive.
const (
	RequestStarted   = capitan.Signal("assistant.request.started")
	RequestCompleted = capitan.Signal("assistant.request.completed")
	RequestFailed    = capitan.Signal("assistant.request.failed")
	FallbackUsed     = capitan.Signal("assistant.response.fallback")
)

var (
	RequestIDKey      = capitan.NewStringKey("assistant.request.id")
	OperationKey      = capitan.NewStringKey("assistant.operation")
	ConversationIDKey = capitan.NewStringKey("assistant.conversation.id")
	FailureKindKey    = capitan.NewStringKey("assistant.failure.kind")
	ErrorKey          = capitan.NewStringKey("assistant.error")
	StatusCodeKey     = capitan.NewIntKey("assistant.http.status.code")
	ResponseLengthKey = capitan.NewIntKey("assistant.response.length")
	DurationMsKey     = capitan.NewIntKey("assistant.duration.ms")
)

type FailureKind string

const (
	FailureTransport FailureKind = "transport"
	FailureStatus    FailureKind = "status"
	FailureEmpty     FailureKind = "empty"
	FailureParse     FailureKind = "parse"
)
