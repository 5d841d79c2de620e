package llm

import (
	"context"
	"fmt"

	"github.com/bitrise-io/pr-review-bot/common"
	"github.com/bitrise-io/pr-review-bot/logger"
)

// OptionType defines the type of option
type OptionType string

// Available option types
const (
	ModelNameOption   OptionType = "model"
	MaxTokensOption   OptionType = "max_tokens"
	APITimeoutOption  OptionType = "api_timeout"
	BaseURLOption     OptionType = "base_url"
	TemperatureOption OptionType = "temperature"
	RetryOption       OptionType = "retry"
)

// Option represents a generic configuration option for any LLM provider
type Option struct {
	Type  OptionType
	Value any
}

// WithModel creates an option to set the model name
func WithModel(model string) Option {
	return Option{
		Type:  ModelNameOption,
		Value: model,
	}
}

// WithMaxTokens creates an option to set the max tokens
func WithMaxTokens(maxTokens int) Option {
	return Option{
		Type:  MaxTokensOption,
		Value: maxTokens,
	}
}

// WithAPITimeout creates an option to set the API timeout in seconds
func WithAPITimeout(timeout int) Option {
	return Option{
		Type:  APITimeoutOption,
		Value: timeout,
	}
}

// WithBaseURL creates an option to point the client at a different API endpoint
func WithBaseURL(baseURL string) Option {
	return Option{
		Type:  BaseURLOption,
		Value: baseURL,
	}
}

// WithTemperature creates an option to set the sampling temperature
func WithTemperature(temperature float32) Option {
	return Option{
		Type:  TemperatureOption,
		Value: temperature,
	}
}

// WithRetry creates an option to set the retry policy of the HTTP client
func WithRetry(config common.RetryConfig) Option {
	return Option{
		Type:  RetryOption,
		Value: config,
	}
}

// Request represents the data needed to generate a prompt for the LLM
type Request struct {
	SystemPrompt string
	UserPrompt   string
}

// Response represents the response from the LLM
type Response struct {
	Content string
	Error   error
}

// LLM defines the interface for language model prompting
type LLM interface {
	// Prompt sends a request to the language model and returns its response
	Prompt(ctx context.Context, req Request) Response
}

// config collects the options shared by all providers
type config struct {
	modelName   string
	maxTokens   int
	apiTimeout  int // in seconds
	baseURL     string
	temperature float32
	retry       common.RetryConfig
}

func newConfig(modelName string, opts ...Option) config {
	c := config{
		modelName:  modelName,
		apiTimeout: 120,
		retry:      common.DefaultRetryConfig(),
	}

	for _, opt := range opts {
		switch opt.Type {
		case ModelNameOption:
			if modelName, ok := opt.Value.(string); ok && modelName != "" {
				c.modelName = modelName
			}
		case MaxTokensOption:
			if maxTokens, ok := opt.Value.(int); ok {
				c.maxTokens = maxTokens
			}
		case APITimeoutOption:
			if timeout, ok := opt.Value.(int); ok {
				c.apiTimeout = timeout
			}
		case BaseURLOption:
			if baseURL, ok := opt.Value.(string); ok && baseURL != "" {
				c.baseURL = baseURL
			}
		case TemperatureOption:
			if temperature, ok := opt.Value.(float32); ok {
				c.temperature = temperature
			}
		case RetryOption:
			if retry, ok := opt.Value.(common.RetryConfig); ok {
				c.retry = retry
			}
		}
	}

	return c
}

// NewLLM creates the client for the given provider
func NewLLM(providerName, apiKey string, opts ...Option) (LLM, error) {
	var llmClient LLM
	var err error

	switch providerName {
	case common.ProviderOpenRouter, common.ProviderOpenAI:
		var model *OpenAIModel
		if model, err = NewOpenAI(providerName, apiKey, opts...); err == nil {
			llmClient = model
		}
	case common.ProviderAnthropic:
		var model *AnthropicModel
		if model, err = NewAnthropic(apiKey, opts...); err == nil {
			llmClient = model
		}
	default:
		err = fmt.Errorf("unsupported provider: %s", providerName)
	}

	if err == nil {
		logger.Infof("Using LLM Provider: %s", providerName)
	}

	return llmClient, err
}
