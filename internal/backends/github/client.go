package github

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"radar/internal/config"
	radarerrors "radar/internal/errors"
	"radar/internal/hotspots"
	"radar/internal/logging"
)

// BackendID is the unique identifier for the GitHub backend
const BackendID = "github"

// Options configures a Client.
type Options struct {
	Owner          string
	Repo           string
	Token          string
	RequestsPerSec float64
	Burst          int
	Workers        int
	MaxCommits     int
	WindowDays     int
	// BaseURL overrides the API endpoint, e.g. for GitHub Enterprise.
	BaseURL string
}

// OptionsFromConfig builds Options from the github and source sections.
func OptionsFromConfig(cfg *config.Config, token string) Options {
	return Options{
		Owner:          cfg.GitHub.Owner,
		Repo:           cfg.GitHub.Repo,
		Token:          token,
		RequestsPerSec: cfg.GitHub.RequestsPerSec,
		Burst:          cfg.GitHub.Burst,
		Workers:        cfg.GitHub.Workers,
		MaxCommits:     cfg.GitHub.MaxCommits,
		WindowDays:     cfg.Source.WindowDays,
	}
}

// Client wraps the GitHub API client with rate limiting and concurrency
type Client struct {
	client      *github.Client
	rateLimiter *rate.Limiter
	owner       string
	repo        string
	maxWorkers  int
	maxCommits  int
	windowDays  int
	logger      *logging.Logger
	now         func() time.Time
}

// NewClient creates a new GitHub client with rate limiting
func NewClient(opts Options, logger *logging.Logger) (*Client, error) {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if opts.Owner == "" || opts.Repo == "" {
		return nil, radarerrors.NewRadarError(
			radarerrors.ConfigInvalid,
			"GitHub owner and repository are required",
			nil,
			nil,
		)
	}

	gh := github.NewClient(nil)
	if opts.Token != "" {
		gh = gh.WithAuthToken(opts.Token)
	}
	if opts.BaseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/") + "/")
		if err != nil {
			return nil, radarerrors.NewRadarError(radarerrors.ConfigInvalid, "invalid GitHub base URL", err, nil)
		}
		gh.BaseURL = base
	}

	if opts.RequestsPerSec <= 0 {
		opts.RequestsPerSec = 10
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.Workers <= 0 {
		opts.Workers = 8
	}
	if opts.WindowDays <= 0 {
		opts.WindowDays = 365
	}

	return &Client{
		client:      gh,
		rateLimiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSec), opts.Burst),
		owner:       opts.Owner,
		repo:        opts.Repo,
		maxWorkers:  opts.Workers,
		maxCommits:  opts.MaxCommits,
		windowDays:  opts.WindowDays,
		logger:      logger.With(map[string]interface{}{"backend": BackendID}),
		now:         time.Now,
	}, nil
}

// ID returns the backend identifier
func (c *Client) ID() string {
	return BackendID
}

// Repository returns "owner/repo".
func (c *Client) Repository() string {
	return c.owner + "/" + c.repo
}

type commitRef struct {
	sha    string
	author string
	when   time.Time
}

// TopChangedFiles lists the commits inside the window, fetches each
// commit's file list, and counts how many commits touched every file.
func (c *Client) TopChangedFiles(ctx context.Context, limit int) ([]hotspots.FileChange, error) {
	since := c.now().AddDate(0, 0, -c.windowDays)

	commits, err := c.listCommits(ctx, since)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("Listed commits", map[string]interface{}{
		"commits": len(commits),
		"since":   since.Format(time.RFC3339),
	})

	files := make([][]*github.CommitFile, len(commits))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxWorkers)
	for i, ref := range commits {
		g.Go(func() error {
			commitFiles, err := c.commitFiles(gctx, ref.sha)
			if err != nil {
				if isFatal(gctx, err) {
					return err
				}
				// A commit that cannot be fetched is left out of the count.
				c.logger.Warn("Skipping commit", map[string]interface{}{
					"sha":   ref.sha,
					"error": err.Error(),
				})
				return nil
			}
			files[i] = commitFiles
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Fold in listing order so the result does not depend on scheduling.
	counter := hotspots.NewChangeCounter()
	for i, ref := range commits {
		counter.StartCommit()
		for _, f := range files[i] {
			counter.Add(f.GetFilename(), ref.author, ref.when, f.GetAdditions(), f.GetDeletions())
		}
	}
	return counter.Top(limit), nil
}

// commitFiles fetches every page of a commit's file list.
func (c *Client) commitFiles(ctx context.Context, sha string) ([]*github.CommitFile, error) {
	opts := &github.ListOptions{PerPage: 100}

	var files []*github.CommitFile
	for {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		commit, resp, err := c.client.Repositories.GetCommit(ctx, c.owner, c.repo, sha, opts)
		if err != nil {
			return nil, c.translate(err, "fetch commit "+sha)
		}
		files = append(files, commit.Files...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return files, nil
}

// isFatal reports whether a per-commit failure must abort the whole listing.
func isFatal(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return radarerrors.HasCode(err, radarerrors.RateLimited) || radarerrors.HasCode(err, radarerrors.TokenMissing)
}

func (c *Client) listCommits(ctx context.Context, since time.Time) ([]commitRef, error) {
	opts := &github.CommitsListOptions{
		Since: since,
		ListOptions: github.ListOptions{
			PerPage: 100,
		},
	}

	var refs []commitRef
	for {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		commits, resp, err := c.client.Repositories.ListCommits(ctx, c.owner, c.repo, opts)
		if err != nil {
			return nil, c.translate(err, "list commits")
		}

		for _, commit := range commits {
			author := commit.GetAuthor().GetLogin()
			if author == "" {
				author = commit.GetCommit().GetAuthor().GetName()
			}
			refs = append(refs, commitRef{
				sha:    commit.GetSHA(),
				author: author,
				when:   commit.GetCommit().GetAuthor().GetDate().Time,
			})
			if c.maxCommits > 0 && len(refs) >= c.maxCommits {
				c.logger.Warn("Commit listing truncated", map[string]interface{}{"maxCommits": c.maxCommits})
				return refs, nil
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return refs, nil
}

// ReadFile fetches a file from the default branch via the contents API.
func (c *Client) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	file, _, _, err := c.client.Repositories.GetContents(ctx, c.owner, c.repo, path, nil)
	if err != nil {
		var errResp *github.ErrorResponse
		if errors.As(err, &errResp) && errResp.Response != nil && errResp.Response.StatusCode == http.StatusNotFound {
			return nil, radarerrors.NewRadarError(
				radarerrors.SourceUnreadable,
				"file not found on default branch",
				fmt.Errorf("%w: %s", fs.ErrNotExist, path),
				nil,
			).WithPath(path)
		}
		return nil, c.translate(err, "fetch contents").WithPath(path)
	}
	if file == nil {
		return nil, radarerrors.NewRadarError(radarerrors.SourceUnreadable, "path is a directory", nil, nil).WithPath(path)
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, radarerrors.NewRadarError(radarerrors.SourceUnreadable, "failed to decode file content", err, nil).WithPath(path)
	}
	return []byte(content), nil
}

// translate maps go-github errors onto radar error codes.
func (c *Client) translate(err error, op string) *radarerrors.RadarError {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	var errResp *github.ErrorResponse

	switch {
	case errors.As(err, &rateErr), errors.As(err, &abuseErr):
		return radarerrors.NewRadarError(
			radarerrors.RateLimited,
			"GitHub API rate limit exceeded during "+op,
			err,
			radarerrors.GetSuggestedFixes(radarerrors.RateLimited),
		)
	case errors.As(err, &errResp) && errResp.Response != nil && errResp.Response.StatusCode == http.StatusUnauthorized:
		return radarerrors.NewRadarError(
			radarerrors.TokenMissing,
			"GitHub rejected the token",
			err,
			radarerrors.GetSuggestedFixes(radarerrors.TokenMissing),
		)
	case errors.As(err, &errResp) && errResp.Response != nil && errResp.Response.StatusCode == http.StatusNotFound:
		return radarerrors.NewRadarError(
			radarerrors.BackendUnavailable,
			fmt.Sprintf("repository %s not found", c.Repository()),
			err,
			nil,
		)
	case errors.Is(err, context.DeadlineExceeded):
		return radarerrors.NewRadarError(radarerrors.Timeout, op+" timed out", err, nil)
	default:
		return radarerrors.NewRadarError(radarerrors.BackendUnavailable, op+" failed", err, nil)
	}
}
