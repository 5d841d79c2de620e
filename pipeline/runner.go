// Package pipeline runs a single review: load credentials, collect the pull
// request diffs, request a review from the model and publish it as a comment.
package pipeline

import (
	"context"
	"fmt"

	"github.com/bitrise-io/pr-review-bot/common"
	"github.com/bitrise-io/pr-review-bot/llm"
	"github.com/bitrise-io/pr-review-bot/logger"
	"github.com/bitrise-io/pr-review-bot/prompt"
	"github.com/bitrise-io/pr-review-bot/review"
)

// Options holds everything a run needs besides the pull request reference
type Options struct {
	Settings       common.Settings
	EnvFile        string
	RequireEnvFile bool
	// DryRun skips publishing; the review is only returned and logged
	DryRun bool
}

// Result describes a finished run
type Result struct {
	Files     []string
	Review    string
	Published bool
}

// Runner executes the review pipeline
type Runner struct {
	opts Options

	newReviewer func(token string) (review.Reviewer, error)
	newLLM      func(apiKey string) (llm.LLM, error)
}

// NewRunner creates a Runner building its clients from the settings
func NewRunner(opts Options) *Runner {
	r := &Runner{opts: opts}
	r.newReviewer = r.defaultReviewer
	r.newLLM = r.defaultLLM
	return r
}

func (r *Runner) defaultReviewer(token string) (review.Reviewer, error) {
	s := r.opts.Settings
	options := []review.Option{
		review.WithRetry(common.RetryConfigFromSettings(s.Retry)),
	}
	if s.GitHub.Timeout > 0 {
		options = append(options, review.WithTimeout(s.GitHub.Timeout))
	}
	if baseURL := s.GitHubBaseURL(); baseURL != "" {
		options = append(options, review.WithBaseURL(baseURL))
	}
	return review.NewReviewer(review.ProviderGitHub, token, options...)
}

func (r *Runner) defaultLLM(apiKey string) (llm.LLM, error) {
	s := r.opts.Settings.LLM
	return llm.NewLLM(s.Provider, apiKey,
		llm.WithModel(s.Model),
		llm.WithBaseURL(s.BaseURL),
		llm.WithMaxTokens(s.MaxTokens),
		llm.WithTemperature(s.Temperature),
		llm.WithAPITimeout(s.Timeout),
		llm.WithRetry(common.RetryConfigFromSettings(r.opts.Settings.Retry)),
	)
}

// Run reviews the pull request. Every step gates the next one; the first
// failure is logged and returned, and nothing is posted after it.
func (r *Runner) Run(ctx context.Context, ref common.PullRequestRef) (Result, error) {
	result, err := r.run(ctx, ref)
	if err != nil {
		logger.Errorw(fmt.Sprintf("An error occurred while processing PR #%d", ref.Number),
			"pull_request", ref.String(),
			"error", err,
			"exit_code", common.ExitCode(err),
		)
	}
	return result, err
}

func (r *Runner) run(ctx context.Context, ref common.PullRequestRef) (Result, error) {
	var result Result

	creds, err := common.LoadCredentials(common.CredentialOptions{
		EnvFile:        r.opts.EnvFile,
		RequireEnvFile: r.opts.RequireEnvFile,
		ModelAPIKeyEnv: r.opts.Settings.ModelAPIKeyEnv(),
	})
	if err != nil {
		return result, err
	}
	logger.Info("Tokens loaded successfully. Bot is running...")

	reviewer, err := r.newReviewer(creds.HostingToken)
	if err != nil {
		return result, fmt.Errorf("failed to create review provider: %w", err)
	}
	llmClient, err := r.newLLM(creds.ModelAPIKey)
	if err != nil {
		return result, fmt.Errorf("failed to create client for provider: %w", err)
	}

	diffs, err := reviewer.ListFileDiffs(ctx, ref)
	if err != nil {
		return result, fmt.Errorf("failed to collect diffs: %w", err)
	}
	result.Files = common.Filenames(diffs)

	logger.Infof("Changed files in PR #%d:", ref.Number)
	for _, name := range result.Files {
		logger.Infof("   - %s", name)
	}

	userPrompt, err := prompt.BuildReviewPrompt(diffs, r.opts.Settings.Limits)
	if err != nil {
		return result, err
	}

	logger.Info("Requesting AI suggestions...")
	resp := llmClient.Prompt(ctx, llm.Request{
		SystemPrompt: prompt.GetSystemPrompt(),
		UserPrompt:   userPrompt,
	})
	if resp.Error != nil {
		return result, fmt.Errorf("error getting response from provider: %w", resp.Error)
	}
	result.Review = resp.Content
	logger.Info("AI suggestions generated successfully.")
	logger.Debug(resp.Content)

	if r.opts.DryRun {
		logger.Infof("Dry run, not posting to PR #%d", ref.Number)
		return result, nil
	}

	if err := reviewer.PostComment(ctx, ref, resp.Content); err != nil {
		return result, fmt.Errorf("failed to post review: %w", err)
	}
	result.Published = true
	logger.Infof("AI suggestions posted to PR #%d successfully!", ref.Number)

	return result, nil
}
