package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/crs-platform/orchestrator/internal/llm"
)

// ConfigurationError reports an invalid or missing setting at startup. It is
// fatal: the process must halt before any query is processed.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// ProviderProfile is one model-serving backend profile.
type ProviderProfile struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
}

// Config is the process configuration, resolved once at startup and passed
// by reference into component constructors. No runtime switching.
type Config struct {
	// Provider selects the backend profile for all agents: "ollama", "groq"
	// or "custom" (routing/keywords on ollama, search/summary on groq).
	Provider string `mapstructure:"provider"`

	Providers struct {
		Ollama ProviderProfile `mapstructure:"ollama"`
		Groq   ProviderProfile `mapstructure:"groq"`
	} `mapstructure:"providers"`

	Search struct {
		BraveAPIKey           string `mapstructure:"brave_api_key"`
		MaxResults            int    `mapstructure:"max_results"`
		SessionTimeoutSeconds int    `mapstructure:"session_timeout_seconds"`
	} `mapstructure:"search"`

	Session struct {
		RedisAddr string `mapstructure:"redis_addr"`
		TTLHours  int    `mapstructure:"ttl_hours"`
		MaxTurns  int    `mapstructure:"max_turns"`
	} `mapstructure:"session"`

	Temporal struct {
		HostPort  string `mapstructure:"host_port"`
		Namespace string `mapstructure:"namespace"`
		TaskQueue string `mapstructure:"task_queue"`
	} `mapstructure:"temporal"`

	Server struct {
		Port        int `mapstructure:"port"`
		MetricsPort int `mapstructure:"metrics_port"`
	} `mapstructure:"server"`

	// AgentOverridesPath optionally points at a YAML file with per-agent
	// provider/model overrides (see overrides.go).
	AgentOverridesPath string `mapstructure:"agent_overrides_path"`

	overrides *AgentOverrides
}

// Load reads configuration from CONFIG_PATH (default ./config.yaml, the file
// is optional) plus environment overrides, and validates the provider
// selection.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("provider", "groq")
	v.SetDefault("providers.ollama.base_url", "http://localhost:11434/v1")
	v.SetDefault("providers.ollama.model", "qwen3:4b")
	v.SetDefault("providers.groq.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("providers.groq.model", "moonshotai/kimi-k2-instruct")
	v.SetDefault("search.max_results", 5)
	v.SetDefault("search.session_timeout_seconds", 30)
	v.SetDefault("session.redis_addr", "localhost:6379")
	v.SetDefault("session.ttl_hours", 24)
	v.SetDefault("session.max_turns", 6)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "crs-pipeline")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.metrics_port", 2112)

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	if _, err := os.Stat(cfgPath); err == nil {
		v.SetConfigFile(cfgPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.AgentOverridesPath != "" {
		overrides, err := LoadAgentOverrides(cfg.AgentOverridesPath)
		if err != nil {
			return nil, err
		}
		cfg.overrides = overrides
	}

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&cfg.Provider, "AGENT_PROVIDER")
	set(&cfg.Providers.Ollama.BaseURL, "OLLAMA_BASE_URL")
	set(&cfg.Providers.Ollama.APIKey, "OLLAMA_API_KEY")
	set(&cfg.Providers.Ollama.Model, "OLLAMA_MODEL")
	set(&cfg.Providers.Groq.BaseURL, "GROQ_BASE_URL")
	set(&cfg.Providers.Groq.APIKey, "GROQ_API_KEY")
	set(&cfg.Providers.Groq.Model, "GROQ_MODEL")
	set(&cfg.Search.BraveAPIKey, "BRAVE_SEARCH_API_KEY")
	set(&cfg.Session.RedisAddr, "REDIS_ADDR")
	set(&cfg.Temporal.HostPort, "TEMPORAL_HOST_PORT")
	set(&cfg.AgentOverridesPath, "AGENT_OVERRIDES_PATH")
}

func (c *Config) validate() error {
	switch c.Provider {
	case "ollama", "groq", "custom":
	default:
		return &ConfigurationError{Reason: fmt.Sprintf("invalid provider %q (want ollama, groq or custom)", c.Provider)}
	}
	if c.Session.MaxTurns <= 0 {
		return &ConfigurationError{Reason: "session.max_turns must be positive"}
	}
	return nil
}

func (c *Config) profile(name string) (llm.Provider, error) {
	var p ProviderProfile
	switch name {
	case "ollama":
		p = c.Providers.Ollama
	case "groq":
		p = c.Providers.Groq
	default:
		return llm.Provider{}, &ConfigurationError{Reason: fmt.Sprintf("unknown provider profile %q", name)}
	}
	if p.BaseURL == "" {
		return llm.Provider{}, &ConfigurationError{Reason: fmt.Sprintf("provider %s has no base_url", name)}
	}
	if p.Model == "" {
		return llm.Provider{}, &ConfigurationError{Reason: fmt.Sprintf("provider %s has no model", name)}
	}
	return llm.Provider{Name: name, BaseURL: p.BaseURL, APIKey: p.APIKey, Model: p.Model}, nil
}

// AgentProviders holds the resolved backend profile for each agent role.
type AgentProviders struct {
	Router     llm.Provider
	Keywords   llm.Provider
	WebSearch  llm.Provider
	Summarizer llm.Provider
}

// ResolveAgentProviders maps the provider selection (plus any per-agent
// overrides) to concrete profiles. "custom" runs routing and keyword agents
// on ollama and the search/summary agents on groq.
func (c *Config) ResolveAgentProviders() (AgentProviders, error) {
	routingName, searchName := c.Provider, c.Provider
	if c.Provider == "custom" {
		routingName, searchName = "ollama", "groq"
	}

	var out AgentProviders
	var err error
	if out.Router, err = c.resolveRole(RoleRouter, routingName); err != nil {
		return AgentProviders{}, err
	}
	if out.Keywords, err = c.resolveRole(RoleKeywords, routingName); err != nil {
		return AgentProviders{}, err
	}
	if out.WebSearch, err = c.resolveRole(RoleWebSearch, searchName); err != nil {
		return AgentProviders{}, err
	}
	if out.Summarizer, err = c.resolveRole(RoleSummarizer, searchName); err != nil {
		return AgentProviders{}, err
	}
	return out, nil
}

func (c *Config) resolveRole(role AgentRole, defaultProfile string) (llm.Provider, error) {
	name := defaultProfile
	model := ""
	if c.overrides != nil {
		if o, ok := c.overrides.Agents[role]; ok {
			if o.Provider != "" {
				name = o.Provider
			}
			model = o.Model
		}
	}
	p, err := c.profile(name)
	if err != nil {
		return llm.Provider{}, err
	}
	if model != "" {
		p.Model = model
	}
	return p, nil
}
