package review

import (
	"context"
	"fmt"

	"github.com/bitrise-io/pr-review-bot/common"
	"github.com/bitrise-io/pr-review-bot/logger"
)

const (
	// ProviderGitHub represents the GitHub provider
	ProviderGitHub = "github"
)

// OptionType defines the type of option for review providers
type OptionType string

// Available option types
const (
	APITokenOption OptionType = "api_token"
	TimeoutOption  OptionType = "timeout"
	BaseURLOption  OptionType = "base_url"
	RetryOption    OptionType = "retry"
)

// Option represents a generic configuration option for any review provider
type Option struct {
	Type  OptionType
	Value any
}

// WithAPIToken creates an option to set the API token
func WithAPIToken(token string) Option {
	return Option{
		Type:  APITokenOption,
		Value: token,
	}
}

// WithTimeout creates an option to set the API timeout in seconds
func WithTimeout(timeout int) Option {
	return Option{
		Type:  TimeoutOption,
		Value: timeout,
	}
}

// WithBaseURL creates an option to set the base URL for GitHub Enterprise
func WithBaseURL(baseURL string) Option {
	return Option{
		Type:  BaseURLOption,
		Value: baseURL,
	}
}

// WithRetry creates an option to set the retry policy of the API client
func WithRetry(config common.RetryConfig) Option {
	return Option{
		Type:  RetryOption,
		Value: config,
	}
}

// Reviewer defines the interface for pull request interactions on the hosting platform
type Reviewer interface {
	// ListFileDiffs returns the changed files of the pull request in listing order
	ListFileDiffs(ctx context.Context, ref common.PullRequestRef) ([]common.FileDiff, error)
	// PostComment creates a new issue comment on the pull request
	PostComment(ctx context.Context, ref common.PullRequestRef, body string) error
}

// NewReviewer creates a new review provider client
func NewReviewer(providerName, apiToken string, opts ...Option) (Reviewer, error) {
	var reviewer Reviewer
	var err error

	options := []Option{
		WithAPIToken(apiToken),
		WithTimeout(60),
	}
	options = append(options, opts...)

	switch providerName {
	case ProviderGitHub:
		var gh *GitHub
		if gh, err = NewGitHub(options...); err == nil {
			reviewer = gh
		}
	default:
		err = fmt.Errorf("unsupported review provider: %s", providerName)
	}

	if err == nil {
		logger.Infof("Using Review Provider: %s", providerName)
	}

	return reviewer, err
}
