package di

import (
	"context"
	"fmt"

	"shopqa/internal/adapter/page"
	"shopqa/internal/application/port/input"
	"shopqa/internal/application/port/output"
	"shopqa/internal/application/service"
	"shopqa/internal/infrastructure/agentapi"
	"shopqa/internal/infrastructure/browser/rod"
	"shopqa/internal/infrastructure/llm/openrouter"
	"shopqa/internal/infrastructure/logger"
	"shopqa/internal/infrastructure/testusers"
	"shopqa/internal/usecase/assistant"
	"shopqa/internal/usecase/runner"
)

// Container wires the assistant eagerly and the browser side on demand,
// so commands that only talk to the agent never launch Chrome.
type Container struct {
	Config    Config
	Logger    output.LoggerPort
	Users     *testusers.Catalog
	Agent     output.AgentPort
	Assistant input.Assistant

	Browser output.BrowserPort
	Page    *page.SauceDemoPage
	Steps   *service.StepRegistry
	Runner  input.ScenarioRunner
}

func NewContainer(cfg Config) (*Container, error) {
	log, err := logger.NewLoggerAdapter(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	users := testusers.Default()
	if cfg.UsersFile != "" {
		users, err = testusers.Load(cfg.UsersFile)
		if err != nil {
			log.Close()
			return nil, fmt.Errorf("failed to load test users: %w", err)
		}
	}

	agent, err := newAgent(cfg, log)
	if err != nil {
		log.Close()
		return nil, err
	}

	a := assistant.New(agent, users, log, assistant.Options{
		SessionID: cfg.SessionID,
		SiteURL:   cfg.SiteURL,
	})

	return &Container{
		Config:    cfg,
		Logger:    log,
		Users:     users,
		Agent:     agent,
		Assistant: a,
	}, nil
}

func newAgent(cfg Config, log output.LoggerPort) (output.AgentPort, error) {
	switch cfg.Backend {
	case "", BackendAgent:
		agentCfg := cfg.Agent
		agentCfg.Logger = log
		return agentapi.NewClient(agentCfg), nil
	case BackendOpenRouter:
		if cfg.OpenRouterAPIKey == "" {
			return nil, fmt.Errorf("OPENROUTER_API_KEY is required for the %s backend", BackendOpenRouter)
		}
		orCfg := openrouter.DefaultConfig(cfg.OpenRouterAPIKey, cfg.OpenRouterModel)
		orCfg.Timeout = cfg.Timeout()
		orCfg.Logger = log
		return openrouter.NewOpenRouterAdapter(orCfg), nil
	default:
		return nil, fmt.Errorf("unknown AI backend %q", cfg.Backend)
	}
}

// StartBrowser launches Chrome and wires the page object, step registry
// and scenario runner. It is a no-op when the browser is already running.
func (c *Container) StartBrowser(ctx context.Context) error {
	if c.Browser != nil {
		return nil
	}

	browser, err := rod.NewBrowserAdapter(ctx, c.Config.Browser)
	if err != nil {
		return fmt.Errorf("failed to create browser: %w", err)
	}
	return c.attachBrowser(browser)
}

func (c *Container) attachBrowser(browser output.BrowserPort) error {
	p, err := page.NewSauceDemoPage(browser, c.Assistant, c.Logger, c.Config.SiteURL)
	if err != nil {
		browser.Close()
		return fmt.Errorf("failed to create page: %w", err)
	}

	steps := service.NewStepRegistry()
	p.RegisterSteps(steps)

	c.Browser = browser
	c.Page = p
	c.Steps = steps
	c.Runner = runner.New(c.Assistant, steps, browser, c.Logger, runner.Config{
		ArtifactsDir: c.Config.ArtifactsDir,
	})
	return nil
}

func (c *Container) Close() {
	if c.Browser != nil {
		c.Browser.Close()
	}
	if c.Logger != nil {
		c.Logger.Close()
	}
}
