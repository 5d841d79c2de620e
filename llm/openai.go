package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bitrise-io/pr-review-bot/common"
	"github.com/bitrise-io/pr-review-bot/logger"
	"github.com/sashabaranov/go-openai"
)

// OpenAIModel implements the LLM interface on the OpenAI chat completion API.
// OpenRouter exposes the same API under its own base URL.
type OpenAIModel struct {
	client      *openai.Client
	capture     *failureCapture
	modelName   string
	maxTokens   int
	temperature float32
	apiTimeout  int // in seconds
}

// NewOpenAI creates a new client for the openai or openrouter provider
func NewOpenAI(providerName, apiKey string, opts ...Option) (*OpenAIModel, error) {
	if apiKey == "" {
		errMsg := "OpenAI API key cannot be empty"
		logger.Error(errMsg)
		return nil, errors.New(errMsg)
	}

	defaultModel := "gpt-4o-mini"
	defaultBaseURL := ""
	if providerName == common.ProviderOpenRouter {
		defaultModel = common.DefaultModel
		defaultBaseURL = common.DefaultOpenRouterBaseURL
	}

	c := newConfig(defaultModel, opts...)
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}

	// Create retryable HTTP client with exponential backoff
	retryClient := common.NewRetryableClient(c.retry)
	capture := newFailureCapture(retryClient.StandardClient().Transport)

	config := openai.DefaultConfig(apiKey)
	if c.baseURL != "" {
		config.BaseURL = c.baseURL
	}
	config.HTTPClient = &http.Client{Transport: capture}

	model := &OpenAIModel{
		client:      openai.NewClientWithConfig(config),
		capture:     capture,
		modelName:   c.modelName,
		maxTokens:   c.maxTokens,
		temperature: c.temperature,
		apiTimeout:  c.apiTimeout,
	}

	logger.Debugf("OpenAI client initialized with base URL: %s, model: %s, max tokens: %d, timeout: %d seconds",
		config.BaseURL, model.modelName, model.maxTokens, model.apiTimeout)

	return model, nil
}

// Prompt sends a request to the chat completion endpoint and returns the first choice
func (o *OpenAIModel) Prompt(ctx context.Context, req Request) Response {
	logger.Debugf("Sending prompt to model: %s", o.modelName)

	if o.apiTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(o.apiTimeout)*time.Second)
		defer cancel()
	}

	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: req.UserPrompt,
		},
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       o.modelName,
		Messages:    messages,
		MaxTokens:   o.maxTokens,
		Temperature: o.temperature,
	}

	logger.Infof("Sending request with model %s, prompt size %d bytes", o.modelName, len(req.SystemPrompt)+len(req.UserPrompt))

	resp, err := o.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return Response{
			Error: fmt.Errorf("failed to create chat completion: %w", o.capture.requestError(err)),
		}
	}

	if len(resp.Choices) == 0 {
		return Response{
			Error: &common.AIRequestError{
				StatusCode: http.StatusOK,
				Message:    "response contained no choices",
			},
		}
	}

	return Response{
		Content: resp.Choices[0].Message.Content,
	}
}
