package input

import (
	"context"

	"shopqa/internal/domain/entity"
)

// Assistant is the AI assistance surface used by page objects and suites.
// No method returns an error: failures degrade to static fallbacks.
type Assistant interface {
	GenerateTestData(ctx context.Context, kind string, count int) entity.DataSet
	GenerateTestScenarios(ctx context.Context, functionality string) []entity.Scenario
	AnalyzeFailure(ctx context.Context, details entity.ErrorDetails) entity.FailureAnalysis
	SuggestLocator(ctx context.Context, description string) string
	SuggestLocators(ctx context.Context, description, pageContext string) []entity.LocatorSuggestion
	GenerateTestSteps(ctx context.Context, scenario string) []entity.Step
	AskQuestion(ctx context.Context, question string) string
}
