package common

import (
	"fmt"
	"os"

	"github.com/bitrise-io/pr-review-bot/logger"
	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
)

const (
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel             = "openai/gpt-4o-mini"
	DefaultLogFile           = "pr_review_bot.log"
)

// SettingsFilenames are looked up in the working directory when no explicit path is given
var SettingsFilenames = []string{"review.bot.yml", "review.bot.yaml"}

type LLMSettings struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`
	Timeout     int     `yaml:"timeout"` // in seconds
}

type GitHubSettings struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"` // in seconds
}

type Limits struct {
	MaxPatchBytes  int `yaml:"max_patch_bytes"`
	MaxPromptBytes int `yaml:"max_prompt_bytes"`
}

type RetrySettings struct {
	Max     int `yaml:"max"`
	WaitMin int `yaml:"wait_min"` // in seconds
	WaitMax int `yaml:"wait_max"` // in seconds
}

type LogSettings struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type Settings struct {
	LLM    LLMSettings    `yaml:"llm"`
	GitHub GitHubSettings `yaml:"github"`
	Limits Limits         `yaml:"limits"`
	Retry  RetrySettings  `yaml:"retry"`
	Log    LogSettings    `yaml:"log"`
}

func WithDefaultSettings() Settings {
	return Settings{
		LLM: LLMSettings{
			// No model: each provider picks its own default
			Provider: ProviderOpenRouter,
			Timeout:  120,
		},
		GitHub: GitHubSettings{
			Timeout: 60,
		},
		Limits: Limits{
			MaxPatchBytes:  20000,
			MaxPromptBytes: 200000,
		},
		Retry: RetrySettings{
			Max:     3,
			WaitMin: 1,
			WaitMax: 5,
		},
		Log: LogSettings{
			Level: "info",
			File:  DefaultLogFile,
		},
	}
}

// SettingsSource describes where the settings came from
type SettingsSource struct {
	// Path is the settings file that was found, empty when none was
	Path string
	// Warning is set when a file found by lookup could not be used and the defaults were kept
	Warning error
}

// LoadSettings reads settings from path, or from the first SettingsFilenames entry found
// in the working directory when path is empty.
// A broken file found by lookup falls back to the defaults and is reported as a warning
// in the returned source; a broken explicit path is an error.
func LoadSettings(path string) (Settings, SettingsSource, error) {
	settings := WithDefaultSettings()

	explicit := path != ""
	if !explicit {
		for _, name := range SettingsFilenames {
			if _, err := os.Stat(name); err == nil {
				path = name
				break
			}
		}
	}
	source := SettingsSource{Path: path}
	if path == "" {
		return settings, source, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if explicit {
			return settings, source, &ConfigurationError{Message: "failed to read settings file " + path, Err: err}
		}
		source.Warning = fmt.Errorf("failed to read YAML file %s: %w", path, err)
		return settings, source, nil
	}

	parsed := settings
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		if explicit {
			return settings, source, &ConfigurationError{Message: "failed to parse settings file " + path, Err: err}
		}
		source.Warning = fmt.Errorf("failed to parse YAML file %s: %w", path, err)
		return settings, source, nil
	}

	return parsed, source, nil
}

// APIKeyEnv returns the environment variable that holds the API key of the given provider
func APIKeyEnv(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	}
	return "OPENROUTER_API_KEY"
}

// ModelAPIKeyEnv returns the variable configured for the model API key
func (s Settings) ModelAPIKeyEnv() string {
	if s.LLM.APIKeyEnv != "" {
		return s.LLM.APIKeyEnv
	}
	return APIKeyEnv(s.LLM.Provider)
}

// GitHubBaseURL resolves the GitHub API base URL, preferring the settings over GITHUB_API_URL
func (s Settings) GitHubBaseURL() string {
	if s.GitHub.BaseURL != "" {
		return s.GitHub.BaseURL
	}
	return os.Getenv("GITHUB_API_URL")
}

// LogSummary logs the effective settings, without secrets
func (s Settings) LogSummary(source SettingsSource) {
	switch {
	case source.Warning != nil:
		logger.Warnf("%v. Using default settings.", source.Warning)
	case source.Path != "":
		logger.Infof("Using settings from YAML file: %s", source.Path)
	default:
		logger.Info("No settings file found. Using default settings.")
	}
	logger.Debugf("Settings: %+v", s)
}
