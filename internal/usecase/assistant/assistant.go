// Package assistant turns testing needs into agent prompts and always returns
// a usable result: when the agent cannot be reached, answers with an error
// status, or answers with something unparseable, a static fallback of the
// same shape is returned instead.
package assistant

import (
	"context"
	"errors"
	"strings"
	"time"

	"shopqa/internal/application/port/input"
	"shopqa/internal/application/port/output"
	"shopqa/internal/domain/entity"
	"shopqa/internal/infrastructure/prompts"

	"github.com/google/uuid"
	"github.com/zoobzio/capitan"
)

var _ input.Assistant = (*Assistant)(nil)

const (
	DefaultSiteURL   = "https://www.saucedemo.com"
	defaultDataCount = 5
)

type Operation string

const (
	OpTestData      Operation = "generate_test_data"
	OpTestScenarios Operation = "generate_test_scenarios"
	OpAnalyze       Operation = "analyze_failure"
	OpLocator       Operation = "suggest_locator"
	OpLocators      Operation = "suggest_locators"
	OpTestSteps     Operation = "generate_test_steps"
	OpQuestion      Operation = "ask_question"
)

// conversationTags group related prompts on the agent side.
var conversationTags = map[Operation]string{
	OpTestData:      "test_data_generation",
	OpTestScenarios: "test_scenarios",
	OpAnalyze:       "failure_analysis",
	OpLocator:       "locator_suggestion",
	OpLocators:      "locator_help",
	OpTestSteps:     "step_generation",
	OpQuestion:      "qa_assistance",
}

type Options struct {
	// SessionID prefixes every conversation tag, e.g. "run-42:test_scenarios".
	SessionID string
	SiteURL   string
}

// Assistant is safe for concurrent use; it holds no mutable state.
type Assistant struct {
	agent     output.AgentPort
	users     output.UserCatalog
	logger    output.LoggerPort
	sessionID string
	siteURL   string
}

func New(agent output.AgentPort, users output.UserCatalog, logger output.LoggerPort, opts Options) *Assistant {
	if opts.SiteURL == "" {
		opts.SiteURL = DefaultSiteURL
	}
	return &Assistant{
		agent:     agent,
		users:     users,
		logger:    logger,
		sessionID: opts.SessionID,
		siteURL:   opts.SiteURL,
	}
}

// ConversationID returns the conversation tag used for op.
func (a *Assistant) ConversationID(op Operation) string {
	tag := conversationTags[op]
	if a.sessionID == "" {
		return tag
	}
	return a.sessionID + ":" + tag
}

// GenerateTestData asks for realistic data items. count only shapes the
// prompt; the size of the result is whatever the agent returns.
func (a *Assistant) GenerateTestData(ctx context.Context, kind string, count int) entity.DataSet {
	if count < 1 {
		count = defaultDataCount
	}

	products := make([]prompts.Product, 0, len(saucedemoProducts))
	for _, p := range saucedemoProducts {
		products = append(products, prompts.Product{Name: p.Name, Price: p.Price})
	}

	text, ok := a.call(ctx, OpTestData, prompts.TestData, prompts.TestDataInput{
		Kind:     kind,
		Count:    count,
		SiteURL:  a.siteURL,
		Users:    a.users.Usernames(),
		Password: a.users.CommonPassword(),
		Products: products,
	})
	if !ok {
		return testDataFallback(kind, a.users)
	}

	records, err := decodeArray[entity.Record](text)
	if err != nil {
		a.fallback(ctx, OpTestData, FailureParse, err)
		return testDataFallback(kind, a.users)
	}
	return entity.DataSet(records)
}

func (a *Assistant) GenerateTestScenarios(ctx context.Context, functionality string) []entity.Scenario {
	text, ok := a.call(ctx, OpTestScenarios, prompts.TestScenarios, prompts.ScenariosInput{
		Functionality: functionality,
	})
	if !ok {
		return scenariosFallback()
	}

	scenarios, err := decodeArray[entity.Scenario](text)
	if err != nil {
		a.fallback(ctx, OpTestScenarios, FailureParse, err)
		return scenariosFallback()
	}
	return scenarios
}

// AnalyzeFailure returns root causes and fixes for a failed test. A reply
// without any object literal yields the generic Medium analysis; every other
// failure yields the High "Unknown error" analysis.
func (a *Assistant) AnalyzeFailure(ctx context.Context, details entity.ErrorDetails) entity.FailureAnalysis {
	text, ok := a.call(ctx, OpAnalyze, prompts.FailureAnalysis, prompts.FailureInput{
		Error:       details.Error,
		TestName:    details.TestName,
		CurrentPage: details.CurrentPage,
		Browser:     details.Browser,
		Username:    details.Username,
		Expected:    details.Expected,
		Actual:      details.Actual,
		PageExcerpt: details.PageExcerpt,
		SiteURL:     a.siteURL,
	})
	if !ok {
		return analysisFallback()
	}

	analysis, err := decodeObject[entity.FailureAnalysis](text)
	if errors.Is(err, errNoLiteral) {
		a.fallback(ctx, OpAnalyze, FailureParse, err)
		return analysisProseFallback()
	}
	if err != nil {
		a.fallback(ctx, OpAnalyze, FailureParse, err)
		return analysisFallback()
	}
	return normalizeAnalysis(analysis)
}

// SuggestLocator returns the agent's recommendation as plain text.
func (a *Assistant) SuggestLocator(ctx context.Context, description string) string {
	text, ok := a.call(ctx, OpLocator, prompts.Locator, prompts.LocatorInput{
		Description: description,
	})
	if !ok {
		return LocatorNotFound
	}
	return strings.TrimSpace(text)
}

// SuggestLocators asks for ranked locator options. A reply without an array
// yields two generic suggestions; a failed call or malformed array yields none.
func (a *Assistant) SuggestLocators(ctx context.Context, description, pageContext string) []entity.LocatorSuggestion {
	text, ok := a.call(ctx, OpLocators, prompts.LocatorList, prompts.LocatorInput{
		Description: description,
		PageContext: pageContext,
	})
	if !ok {
		return []entity.LocatorSuggestion{}
	}

	suggestions, err := decodeArray[entity.LocatorSuggestion](text)
	if errors.Is(err, errNoLiteral) {
		a.fallback(ctx, OpLocators, FailureParse, err)
		return locatorsFallback()
	}
	if err != nil {
		a.fallback(ctx, OpLocators, FailureParse, err)
		return []entity.LocatorSuggestion{}
	}
	return suggestions
}

// GenerateTestSteps converts a scenario into executable step records.
// There are no fallback steps: any failure yields an empty slice.
// Unknown actions are kept as returned by the agent.
func (a *Assistant) GenerateTestSteps(ctx context.Context, scenario string) []entity.Step {
	text, ok := a.call(ctx, OpTestSteps, prompts.TestSteps, prompts.StepsInput{
		Scenario: scenario,
	})
	if !ok {
		return []entity.Step{}
	}

	steps, err := decodeArray[entity.Step](text)
	if err != nil {
		a.fallback(ctx, OpTestSteps, FailureParse, err)
		return []entity.Step{}
	}

	for _, s := range steps {
		if !s.Action.IsKnown() {
			a.logger.Warn("Agent returned unknown step action", "action", s.Action.String())
		}
	}
	return steps
}

func (a *Assistant) AskQuestion(ctx context.Context, question string) string {
	text, ok := a.call(ctx, OpQuestion, prompts.Question, prompts.QuestionInput{
		Question: question,
	})
	if !ok {
		return QuestionUnavailable
	}
	return text
}

// call renders the prompt and performs exactly one agent request. It reports
// false after logging and signalling the failure; the caller then picks its
// fallback.
func (a *Assistant) call(ctx context.Context, op Operation, name prompts.Name, data any) (string, bool) {
	requestID := uuid.New().String()
	conversationID := a.ConversationID(op)
	log := a.logger.WithFields(map[string]any{
		"requestId":      requestID,
		"operation":      string(op),
		"conversationId": conversationID,
	})

	message, err := prompts.Render(name, data)
	if err != nil {
		log.Error("Failed to render prompt", "error", err)
		a.fallback(ctx, op, FailureParse, err)
		return "", false
	}

	capitan.Info(ctx, RequestStarted,
		RequestIDKey.Field(requestID),
		OperationKey.Field(string(op)),
		ConversationIDKey.Field(conversationID),
	)

	start := time.Now()
	reply, err := a.agent.Send(ctx, output.AgentRequest{
		RequestID:      requestID,
		Message:        message,
		ConversationID: conversationID,
	})
	duration := time.Since(start).Milliseconds()

	if err != nil {
		kind, status := classify(err)
		log.Error("Agent call failed",
			"failureKind", string(kind),
			"statusCode", status,
			"error", err,
			"durationMs", duration,
		)
		capitan.Error(ctx, RequestFailed,
			RequestIDKey.Field(requestID),
			OperationKey.Field(string(op)),
			ConversationIDKey.Field(conversationID),
			FailureKindKey.Field(string(kind)),
			StatusCodeKey.Field(status),
			ErrorKey.Field(err.Error()),
			DurationMsKey.Field(int(duration)),
		)
		a.fallback(ctx, op, kind, err)
		return "", false
	}

	if strings.TrimSpace(reply.Text) == "" {
		log.Warn("Agent returned empty response", "statusCode", reply.StatusCode)
		a.fallback(ctx, op, FailureEmpty, errors.New("empty response"))
		return "", false
	}

	log.Info("Agent call completed",
		"statusCode", reply.StatusCode,
		"responseLength", len(reply.Text),
		"durationMs", duration,
	)
	capitan.Info(ctx, RequestCompleted,
		RequestIDKey.Field(requestID),
		OperationKey.Field(string(op)),
		ConversationIDKey.Field(conversationID),
		StatusCodeKey.Field(reply.StatusCode),
		ResponseLengthKey.Field(len(reply.Text)),
		DurationMsKey.Field(int(duration)),
	)
	return reply.Text, true
}

func (a *Assistant) fallback(ctx context.Context, op Operation, kind FailureKind, err error) {
	a.logger.Warn("Using fallback result",
		"operation", string(op),
		"failureKind", string(kind),
		"error", err,
	)
	capitan.Error(ctx, FallbackUsed,
		OperationKey.Field(string(op)),
		ConversationIDKey.Field(a.ConversationID(op)),
		FailureKindKey.Field(string(kind)),
		ErrorKey.Field(err.Error()),
	)
}

func classify(err error) (FailureKind, int) {
	var statusErr *output.AgentStatusError
	if errors.As(err, &statusErr) {
		return FailureStatus, statusErr.StatusCode
	}
	return FailureTransport, 0
}

func normalizeAnalysis(in entity.FailureAnalysis) entity.FailureAnalysis {
	if in.PossibleCauses == nil {
		in.PossibleCauses = []string{}
	}
	if in.SuggestedFixes == nil {
		in.SuggestedFixes = []string{}
	}
	switch strings.ToLower(string(in.Severity)) {
	case "low":
		in.Severity = entity.SeverityLow
	case "high", "critical":
		in.Severity = entity.SeverityHigh
	case "medium", "":
		in.Severity = entity.SeverityMedium
	}
	return in
}
