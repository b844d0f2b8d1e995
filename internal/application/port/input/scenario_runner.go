package input

import (
	"context"

	"shopqa/internal/domain/entity"
)

type ScenarioRunner interface {
	Execute(ctx context.Context, scenario string) (*RunResult, error)
}

type RunResult struct {
	Success    bool                    `json:"success"`
	Steps      []entity.Step           `json:"steps"`
	Executed   int                     `json:"executed"`
	Skipped    int                     `json:"skipped"`
	FailedStep *entity.Step            `json:"failedStep,omitempty"`
	Error      string                  `json:"error,omitempty"`
	Screenshot string                  `json:"screenshot,omitempty"`
	Analysis   *entity.FailureAnalysis `json:"analysis,omitempty"`
}
