package review

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bitrise-io/pr-review-bot/common"
	"github.com/bitrise-io/pr-review-bot/logger"
	"github.com/google/go-github/v48/github"
	"golang.org/x/oauth2"
)

// filesPerPage is the largest page size the pull request files endpoint accepts
const filesPerPage = 100

// GitHub implements the Reviewer interface for GitHub PRs
type GitHub struct {
	client   *github.Client
	apiToken string
	timeout  int
	baseURL  string
	retry    common.RetryConfig
}

// NewGitHub creates a new GitHub reviewer client
func NewGitHub(opts ...Option) (*GitHub, error) {
	gh := &GitHub{
		timeout: 60, // Default timeout
		retry:   common.DefaultRetryConfig(),
	}

	// Apply options
	for _, opt := range opts {
		switch opt.Type {
		case APITokenOption:
			if token, ok := opt.Value.(string); ok {
				gh.apiToken = token
			}
		case TimeoutOption:
			if timeout, ok := opt.Value.(int); ok {
				gh.timeout = timeout
			}
		case BaseURLOption:
			if baseURL, ok := opt.Value.(string); ok {
				gh.baseURL = baseURL
			}
		case RetryOption:
			if retry, ok := opt.Value.(common.RetryConfig); ok {
				gh.retry = retry
			}
		}
	}

	// Validate required options
	if gh.apiToken == "" {
		return nil, fmt.Errorf("API token is required for GitHub")
	}

	retry := gh.retry
	retry.CheckRetry = common.WriteSafeRetryPolicy
	retryClient := common.NewRetryableClient(retry)

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: gh.apiToken})
	tc := &http.Client{
		Transport: &oauth2.Transport{
			Source: ts,
			Base:   retryClient.StandardClient().Transport,
		},
	}
	gh.client = github.NewClient(tc)

	if gh.baseURL != "" {
		if !strings.HasSuffix(gh.baseURL, "/") {
			gh.baseURL += "/"
		}
		u, err := url.Parse(gh.baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub base URL %q: %w", gh.baseURL, err)
		}
		gh.client.BaseURL = u
		logger.Debugf("Using GitHub API base URL: %s", gh.baseURL)
	}

	return gh, nil
}

func (gh *GitHub) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if gh.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Duration(gh.timeout)*time.Second)
}

// ListFileDiffs resolves the pull request and lists its changed files, following pagination
func (gh *GitHub) ListFileDiffs(ctx context.Context, ref common.PullRequestRef) ([]common.FileDiff, error) {
	ctx, cancel := gh.withTimeout(ctx)
	defer cancel()

	pr, _, err := gh.client.PullRequests.Get(ctx, ref.Owner, ref.Name, ref.Number)
	if err != nil {
		return nil, hostingError("get pull request", err)
	}
	logger.Infof("Connected to repo '%s', PR #%d: %s", ref.Repo(), ref.Number, pr.GetTitle())

	diffs := make([]common.FileDiff, 0, pr.GetChangedFiles())
	opts := &github.ListOptions{PerPage: filesPerPage}

	for {
		files, resp, err := gh.client.PullRequests.ListFiles(ctx, ref.Owner, ref.Name, ref.Number, opts)
		if err != nil {
			return nil, hostingError("list pull request files", err)
		}

		for _, f := range files {
			// Binary and oversized files come without a patch
			diffs = append(diffs, common.FileDiff{
				Filename: f.GetFilename(),
				Patch:    f.GetPatch(),
			})
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return diffs, nil
}

// PostComment creates a new issue comment on the pull request
func (gh *GitHub) PostComment(ctx context.Context, ref common.PullRequestRef, body string) error {
	ctx, cancel := gh.withTimeout(ctx)
	defer cancel()

	comment := &github.IssueComment{
		Body: &body,
	}

	created, _, err := gh.client.Issues.CreateComment(
		ctx,
		ref.Owner,
		ref.Name,
		ref.Number,
		comment,
	)
	if err != nil {
		err = hostingError("create comment", err)

		// A review that could not be published is a publish failure, whatever the cause
		var hostingErr *common.HostingAPIError
		if !errors.As(err, &hostingErr) {
			err = &common.HostingAPIError{Op: "create comment", Err: err}
		}
		return err
	}

	logger.Debugf("Created comment %s", created.GetHTMLURL())
	return nil
}

// hostingError wraps errors the GitHub API answered with into a HostingAPIError.
// Transport errors are returned unchanged; PostComment wraps those itself.
func hostingError(op string, err error) error {
	var errResp *github.ErrorResponse
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError

	var resp *http.Response
	switch {
	case errors.As(err, &errResp):
		resp = errResp.Response
	case errors.As(err, &rateErr):
		resp = rateErr.Response
	case errors.As(err, &abuseErr):
		resp = abuseErr.Response
	default:
		return err
	}

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}

	return &common.HostingAPIError{
		Op:         op,
		StatusCode: status,
		Err:        err,
	}
}
