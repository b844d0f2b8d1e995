// Package runner executes agent-generated test steps against a page and
// turns the first failing step into a failure analysis.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shopqa/internal/application/port/input"
	"shopqa/internal/application/port/output"
	"shopqa/internal/application/service"
	"shopqa/internal/domain/entity"
	"shopqa/internal/infrastructure/browser/htmlclean"
)

var _ input.ScenarioRunner = (*Runner)(nil)

// ErrNoSteps is returned when the assistant produced no executable plan.
var ErrNoSteps = errors.New("no steps generated for scenario")

const browserName = "chromium"

type Config struct {
	// ArtifactsDir receives failure screenshots; empty disables them.
	ArtifactsDir string
	// Username is reported in failure analysis. When empty, the username of
	// the last login step that ran is used.
	Username string
}

type Runner struct {
	assistant input.Assistant
	registry  *service.StepRegistry
	browser   output.BrowserPort
	logger    output.LoggerPort
	cfg       Config
	now       func() time.Time
}

func New(assistant input.Assistant, registry *service.StepRegistry, browser output.BrowserPort, logger output.LoggerPort, cfg Config) *Runner {
	return &Runner{
		assistant: assistant,
		registry:  registry,
		browser:   browser,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Execute asks for steps and runs them in order. Step failures are reported
// in the result; the returned error is reserved for an empty plan and for
// cancellation.
func (r *Runner) Execute(ctx context.Context, scenario string) (*input.RunResult, error) {
	log := r.logger.WithField("scenario", scenario)

	steps := r.assistant.GenerateTestSteps(ctx, scenario)
	result := &input.RunResult{Steps: steps}
	if len(steps) == 0 {
		log.Warn("Refusing to run empty plan")
		result.Error = ErrNoSteps.Error()
		return result, ErrNoSteps
	}

	log.Info("Running scenario", "steps", len(steps))

	username := r.cfg.Username
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			result.Error = err.Error()
			return result, err
		}

		stepLog := log.WithFields(map[string]any{"step": i + 1, "action": step.Action.String()})
		if step.Action == entity.ActionLogin && r.cfg.Username == "" {
			username = step.Param("username", "user")
		}
		ran, err := r.registry.Execute(ctx, step)
		if !ran {
			stepLog.Warn("Skipping unknown step action")
			result.Skipped++
			continue
		}
		if err != nil {
			stepLog.Error("Step failed", "error", err)
			r.fail(ctx, result, scenario, username, i, step, err)
			return result, nil
		}
		stepLog.Debug("Step completed")
		result.Executed++
	}

	result.Success = true
	log.Info("Scenario passed", "executed", result.Executed, "skipped", result.Skipped)
	return result, nil
}

func (r *Runner) fail(ctx context.Context, result *input.RunResult, scenario, username string, index int, step entity.Step, stepErr error) {
	failed := step
	result.FailedStep = &failed
	result.Error = stepErr.Error()

	details := entity.ErrorDetails{
		Error:    stepErr.Error(),
		TestName: scenario,
		Browser:  browserName,
		Username: username,
		Expected: "Successful execution",
		Actual:   fmt.Sprintf("Step %d (%s) failed", index+1, step.Action),
	}

	if r.browser != nil && r.browser.IsReady() {
		details.CurrentPage = r.browser.CurrentURL()
		if html, err := r.browser.HTML(ctx); err == nil {
			details.PageExcerpt = htmlclean.Clean(html, nil)
		} else {
			r.logger.Warn("Failed to capture page HTML", "error", err)
		}
		if path, err := r.saveScreenshot(ctx, scenario, index); err == nil {
			result.Screenshot = path
		} else if !errors.Is(err, errNoArtifacts) {
			r.logger.Warn("Failed to capture screenshot", "error", err)
		}
	}

	analysis := r.assistant.AnalyzeFailure(ctx, details)
	result.Analysis = &analysis
}

var errNoArtifacts = errors.New("artifacts disabled")

func (r *Runner) saveScreenshot(ctx context.Context, scenario string, index int) (string, error) {
	if r.cfg.ArtifactsDir == "" {
		return "", errNoArtifacts
	}
	shot, err := r.browser.Screenshot(ctx)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(r.cfg.ArtifactsDir, 0o755); err != nil {
		return "", fmt.Errorf("create artifacts dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s_step%d.%s",
		r.now().Format("20060102_150405"), fileSafe(scenario), index+1, shot.Format)
	path := filepath.Join(r.cfg.ArtifactsDir, name)
	if err := os.WriteFile(path, shot.Data, 0o644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}
	r.logger.Info("Saved failure screenshot", "path", path)
	return path, nil
}

func fileSafe(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "_"):
			b.WriteByte('_')
		}
		if b.Len() >= 40 {
			break
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "scenario"
	}
	return out
}
