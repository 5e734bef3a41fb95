// Package config provides centralized configuration management for the relay
// and the remote endpoint set.
package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// DefaultAppURL is the deployment the relay talks to when nothing is configured.
const DefaultAppURL = "https://grokcode-30wnt049r-sean-mcdonnells-projects-4fbf31ab.vercel.app"

// Config holds the complete configuration for the application
type Config struct {
	// Remote app the relay forwards to
	App struct {
		URL     string
		APIKey  string
		Timeout time.Duration
	}

	// Local relay transport
	Relay struct {
		Transport string
		Addr      string
		BaseURL   string
	}

	// Local repository used for diffs and history
	Git struct {
		RepoPath string
	}

	// Remote endpoint set
	API struct {
		Addr  string
		Token string
	}

	// Agent capability
	Agent struct {
		Provider     string
		Model        string
		SystemPrompt string
	}

	OpenAI struct {
		APIKey string
	}

	Grok struct {
		APIKey  string
		BaseURL string
	}

	Anthropic struct {
		APIKey string
	}

	// Page scraping
	Scrape struct {
		Browser  bool
		MaxChars int
	}

	// Static project context served as a resource
	Project struct {
		Preferences map[string]any
		Notes       []string
		Conventions []string
		Team        map[string]any
	}

	Log struct {
		Level  string
		Format string
	}
}

var (
	once   sync.Once
	config *Config
	global = viper.New()
)

// Viper exposes the process-wide viper instance so commands can bind flags
// and config files before Load is called.
func Viper() *viper.Viper {
	return global
}

// Load initializes and loads the configuration from environment variables,
// an optional config file, and bound flags. The result is memoised.
func Load() *Config {
	once.Do(func() {
		config = FromViper(global)
	})

	return config
}

// SetDefaults registers defaults and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("app.url", DefaultAppURL)
	v.SetDefault("app.timeout", time.Duration(0))
	v.SetDefault("relay.transport", "stdio")
	v.SetDefault("relay.addr", ":8080")
	v.SetDefault("git.repo_path", ".")
	v.SetDefault("api.addr", ":3000")
	v.SetDefault("agent.provider", "placeholder")
	v.SetDefault("agent.system_prompt", "You are a helpful coding assistant.")
	v.SetDefault("grok.base_url", "https://api.x.ai/v1")
	v.SetDefault("scrape.max_chars", 1000)
	v.SetDefault("project.preferences", map[string]any{
		"language":  "typescript",
		"framework": "nextjs",
	})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Names used by the original deployment.
	_ = v.BindEnv("app.url", "VERCEL_APP_URL")
	_ = v.BindEnv("app.api_key", "API_KEY")
	_ = v.BindEnv("app.timeout", "APP_TIMEOUT")
	_ = v.BindEnv("relay.transport", "RELAY_TRANSPORT")
	_ = v.BindEnv("relay.addr", "RELAY_ADDR")
	_ = v.BindEnv("relay.base_url", "RELAY_BASE_URL")
	_ = v.BindEnv("git.repo_path", "GIT_REPO_PATH")
	_ = v.BindEnv("api.token", "MCP_TOKEN")
	_ = v.BindEnv("agent.provider", "AGENT_PROVIDER")
	_ = v.BindEnv("agent.model", "AGENT_MODEL")
	_ = v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("grok.api_key", "GROK_API_KEY")
	_ = v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("scrape.browser", "SCRAPE_BROWSER")
}

// FromViper builds a Config from v. It is used directly by tests.
func FromViper(v *viper.Viper) *Config {
	SetDefaults(v)

	c := &Config{}

	c.App.URL = strings.TrimRight(v.GetString("app.url"), "/")
	c.App.APIKey = v.GetString("app.api_key")
	c.App.Timeout = v.GetDuration("app.timeout")

	c.Relay.Transport = strings.ToLower(v.GetString("relay.transport"))
	c.Relay.Addr = v.GetString("relay.addr")
	c.Relay.BaseURL = v.GetString("relay.base_url")

	c.Git.RepoPath = v.GetString("git.repo_path")

	c.API.Addr = v.GetString("api.addr")
	// PORT is what hosting platforms hand us.
	if port := v.GetString("port"); port != "" {
		c.API.Addr = ":" + port
	}
	c.API.Token = v.GetString("api.token")

	c.Agent.Provider = strings.ToLower(v.GetString("agent.provider"))
	c.Agent.Model = v.GetString("agent.model")
	c.Agent.SystemPrompt = v.GetString("agent.system_prompt")

	c.OpenAI.APIKey = v.GetString("openai.api_key")
	c.Grok.APIKey = v.GetString("grok.api_key")
	c.Grok.BaseURL = v.GetString("grok.base_url")
	c.Anthropic.APIKey = v.GetString("anthropic.api_key")

	c.Scrape.Browser = v.GetBool("scrape.browser")
	c.Scrape.MaxChars = v.GetInt("scrape.max_chars")

	c.Project.Preferences = v.GetStringMap("project.preferences")
	c.Project.Notes = v.GetStringSlice("project.notes")
	c.Project.Conventions = v.GetStringSlice("project.conventions")
	c.Project.Team = v.GetStringMap("project.team")

	c.Log.Level = v.GetString("log.level")
	c.Log.Format = v.GetString("log.format")

	return c
}

// Validate checks if all required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.App.URL == "" {
		errs = append(errs, errors.New("app url is empty"))
	}

	switch c.Relay.Transport {
	case "stdio", "sse", "http":
	default:
		errs = append(errs, fmt.Errorf("unknown relay transport %q", c.Relay.Transport))
	}

	switch c.Agent.Provider {
	case "placeholder":
	case "openai":
		if c.OpenAI.APIKey == "" {
			errs = append(errs, errors.New("OpenAI API key is required for the openai agent provider"))
		}
	case "grok":
		if c.Grok.APIKey == "" {
			errs = append(errs, errors.New("Grok API key is required for the grok agent provider"))
		}
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			errs = append(errs, errors.New("Anthropic API key is required for the anthropic agent provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown agent provider %q", c.Agent.Provider))
	}

	if c.Scrape.MaxChars <= 0 {
		errs = append(errs, errors.New("scrape max chars must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %w", errors.Join(errs...))
	}

	return nil
}
