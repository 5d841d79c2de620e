package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/bitrise-io/pr-review-bot/common"
	"github.com/bitrise-io/pr-review-bot/logger"
)

// AnthropicModel implements the LLM interface using Anthropic's API
type AnthropicModel struct {
	client     anthropic.Client
	capture    *failureCapture
	modelName  string
	maxTokens  int
	apiTimeout int // in seconds
}

// NewAnthropic creates a new Anthropic client
func NewAnthropic(apiKey string, opts ...Option) (*AnthropicModel, error) {
	if apiKey == "" {
		return nil, errors.New("Anthropic API key cannot be empty")
	}

	c := newConfig(string(anthropic.ModelClaude3_7SonnetLatest), opts...)
	if c.maxTokens <= 0 {
		// The messages API requires an explicit limit
		c.maxTokens = 4000
	}

	// Retries are done by the retryable client, not by the SDK
	retryClient := common.NewRetryableClient(c.retry)
	capture := newFailureCapture(retryClient.StandardClient().Transport)

	requestOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Transport: capture}),
		option.WithMaxRetries(0),
	}
	if c.baseURL != "" {
		requestOpts = append(requestOpts, option.WithBaseURL(c.baseURL))
	}

	model := &AnthropicModel{
		client:     anthropic.NewClient(requestOpts...),
		capture:    capture,
		modelName:  c.modelName,
		maxTokens:  c.maxTokens,
		apiTimeout: c.apiTimeout,
	}

	logger.Debugf("Anthropic client initialized with model: %s, max tokens: %d, timeout: %d seconds",
		model.modelName, model.maxTokens, model.apiTimeout)

	return model, nil
}

// Prompt sends a request to Anthropic and returns the response
func (a *AnthropicModel) Prompt(ctx context.Context, req Request) Response {
	if a.apiTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(a.apiTimeout)*time.Second)
		defer cancel()
	}

	messageParams := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.modelName),
		MaxTokens: int64(a.maxTokens),
		System: []anthropic.TextBlockParam{
			{Text: req.SystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserPrompt)),
		},
	}

	logger.Infof("Sending request with model %s, prompt size %d bytes", a.modelName, len(req.SystemPrompt)+len(req.UserPrompt))

	message, err := a.client.Messages.New(ctx, messageParams)
	if err != nil {
		return Response{
			Error: fmt.Errorf("failed to create message: %w", a.capture.requestError(err)),
		}
	}

	// Extract text content from the response
	var content string
	var hasText bool
	for _, block := range message.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			content += b.Text
			hasText = true
		}
	}

	if !hasText {
		return Response{
			Error: &common.AIRequestError{
				StatusCode: http.StatusOK,
				Message:    "response contained no text content",
			},
		}
	}

	return Response{
		Content: content,
	}
}
