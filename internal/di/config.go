package di

import (
	"strings"
	"time"

	"shopqa/internal/application/port/output"
	"shopqa/internal/infrastructure/agentapi"
	"shopqa/internal/infrastructure/browser/rod"
	"shopqa/internal/infrastructure/logger"
	"shopqa/internal/usecase/assistant"
)

const (
	BackendAgent      = "agent"
	BackendOpenRouter = "openrouter"
)

type Config struct {
	Backend string
	Agent   agentapi.Config

	OpenRouterAPIKey string
	OpenRouterModel  string

	SessionID string
	SiteURL   string
	// UsersFile overrides the embedded test-user catalog.
	UsersFile string

	Log          logger.Config
	Browser      rod.BrowserConfig
	ArtifactsDir string
}

// LoadConfig reads the whole configuration once. A missing API key never
// fails here: the agent answers 401 and callers get fallbacks.
func LoadConfig(env output.ConfigPort, runName string) Config {
	agent := agentapi.DefaultConfig()
	agent.URL = env.GetWithDefault("AI_AGENT_URL", agentapi.DefaultURL)
	agent.APIKey = env.GetWithDefault("AI_AGENT_API_KEY", agentapi.DefaultAPIKey)
	agent.UserID = env.GetWithDefault("AI_USER_ID", agentapi.DefaultUserID)
	agent.Timeout = env.GetDuration("AI_AGENT_TIMEOUT", agentapi.DefaultTimeout)
	agent.RateLimit = env.GetFloat("AI_AGENT_RATE_LIMIT", 0)

	sessionID := env.Get("AI_SESSION_ID")
	if sessionID != "" {
		agent.Metadata = map[string]string{"sessionId": sessionID}
	}

	logCfg := logger.DefaultConfig(runName)
	logCfg.Dir = env.GetWithDefault("LOG_DIR", logCfg.Dir)
	logCfg.Level = env.GetWithDefault("LOG_LEVEL", logCfg.Level)
	logCfg.Console = env.GetBool("LOG_CONSOLE", logCfg.Console)

	browser := rod.DefaultConfig()
	browser.Headless = env.GetBool("HEADLESS", true)
	browser.SlowMotion = env.GetDuration("SLOW_MOTION", 0)
	browser.Timeout = env.GetDuration("BROWSER_TIMEOUT", browser.Timeout)
	browser.NoSandbox = env.GetBool("BROWSER_NO_SANDBOX", false)

	return Config{
		Backend:          strings.ToLower(env.GetWithDefault("AI_BACKEND", BackendAgent)),
		Agent:            agent,
		OpenRouterAPIKey: env.Get("OPENROUTER_API_KEY"),
		OpenRouterModel:  env.GetWithDefault("OPENROUTER_MODEL_NAME", "openai/gpt-4o-mini"),
		SessionID:        sessionID,
		SiteURL:          env.GetWithDefault("SAUCEDEMO_URL", assistant.DefaultSiteURL),
		UsersFile:        env.Get("TEST_USERS_FILE"),
		Log:              logCfg,
		Browser:          browser,
		ArtifactsDir:     env.GetWithDefault("ARTIFACTS_DIR", "artifacts"),
	}
}

// Timeout is the per-call agent deadline regardless of backend.
func (c Config) Timeout() time.Duration {
	return c.Agent.Timeout
}
