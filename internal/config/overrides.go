package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AgentRole identifies one agent in the pipeline for configuration purposes.
type AgentRole string

const (
	RoleRouter     AgentRole = "router"
	RoleKeywords   AgentRole = "keywords"
	RoleWebSearch  AgentRole = "websearch"
	RoleSummarizer AgentRole = "summarizer"
)

// AgentOverride pins one agent to a provider profile and/or model,
// overriding the global provider selection.
type AgentOverride struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

// AgentOverrides is the parsed per-agent overrides file.
type AgentOverrides struct {
	Agents map[AgentRole]AgentOverride `yaml:"agents"`
}

// LoadAgentOverrides reads a YAML overrides file, e.g.:
//
//	agents:
//	  router:     {provider: ollama}
//	  summarizer: {provider: groq, model: llama-3.3-70b-versatile}
//
// Unknown roles are rejected so typos fail at startup instead of silently
// keeping the default.
func LoadAgentOverrides(path string) (*AgentOverrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("read agent overrides %s: %v", path, err)}
	}

	var overrides AgentOverrides
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("parse agent overrides %s: %v", path, err)}
	}

	for role := range overrides.Agents {
		switch role {
		case RoleRouter, RoleKeywords, RoleWebSearch, RoleSummarizer:
		default:
			return nil, &ConfigurationError{Reason: fmt.Sprintf("agent overrides: unknown role %q", role)}
		}
	}
	return &overrides, nil
}
