// Package gateway provides a gateway to the GitHub GraphQL API,
// abstracting away the underlying client setup and pagination.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/preocts/daystats/internal/domain"
)

const (
	// DefaultAPIURL is the public GitHub GraphQL endpoint.
	DefaultAPIURL = "https://api.github.com/graphql"

	userAgent    = "egg-daystats"
	httpsTimeout = 10 * time.Second
)

// Fetcher defines the behavior of a gateway for fetching daily stats from GitHub.
type Fetcher interface {
	FetchContributions(ctx context.Context, login string, window domain.Window) (domain.Contributions, error)
	FetchPullRequests(ctx context.Context, author string, repo domain.Repo, window domain.Window) ([]domain.PullRequest, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	client *githubv4.Client
	logger *logrus.Logger
}

// contributionsQuery is the aggregate one-day activity query.
type contributionsQuery struct {
	User struct {
		ContributionsCollection struct {
			TotalCommitContributions             int
			TotalIssueContributions              int
			TotalPullRequestContributions        int
			TotalPullRequestReviewContributions  int
			PullRequestContributionsByRepository []struct {
				Repository struct {
					Owner struct {
						Login string
					}
					Name string
				}
			}
		} `graphql:"contributionsCollection(from: $from, to: $to)"`
	} `graphql:"user(login: $login)"`
}

// pullRequestsQuery pages through a repository's pull requests newest-first.
type pullRequestsQuery struct {
	Repository struct {
		PullRequests struct {
			TotalCount int
			PageInfo   struct {
				EndCursor   githubv4.String
				HasNextPage bool
			}
			Nodes []struct {
				Author struct {
					Login string
				}
				CreatedAt    githubv4.DateTime
				Additions    int
				Deletions    int
				ChangedFiles int
				URL          string
				Number       int
			}
		} `graphql:"pullRequests(orderBy: {field: CREATED_AT, direction: DESC}, first: 25, after: $cursor)"`
	} `graphql:"repository(name: $name, owner: $owner)"`
}

// userAgentTransport stamps the fixed product identifier on every request.
type userAgentTransport struct {
	base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", userAgent)
	return t.base.RoundTrip(req)
}

// NewGitHubGateway creates a new GitHubGateway carrying the given bearer
// token. Any apiURL other than the default is treated as an enterprise or
// proxy endpoint.
func NewGitHubGateway(token, apiURL string, logger *logrus.Logger) *GitHubGateway {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Timeout: httpsTimeout,
		Transport: &oauth2.Transport{
			Base:   &userAgentTransport{base: http.DefaultTransport},
			Source: ts,
		},
	}

	var client *githubv4.Client
	if apiURL == "" || apiURL == DefaultAPIURL {
		client = githubv4.NewClient(httpClient)
	} else {
		client = githubv4.NewEnterpriseClient(apiURL, httpClient)
	}

	return &GitHubGateway{
		client: client,
		logger: logger,
	}
}

// FetchContributions runs the aggregate contributions query for one login
// over the given window and collects the distinct set of repositories the
// user opened pull requests against.
//
// The window holds local wall-clock times that go out on the wire labeled
// as Zulu. Odd as that is, GitHub returns the correct day's activity for
// the mislabeled range, so it stays.
func (g *GitHubGateway) FetchContributions(ctx context.Context, login string, window domain.Window) (domain.Contributions, error) {
	g.logger.Debugf("Contribution window: %s - %s", window.Start, window.End)

	var q contributionsQuery
	variables := map[string]interface{}{
		"login": githubv4.String(login),
		"from":  githubv4.DateTime{Time: window.Start},
		"to":    githubv4.DateTime{Time: window.End},
	}

	if err := g.client.Query(ctx, &q, variables); err != nil {
		return domain.Contributions{}, fmt.Errorf("failed to query contributions for %s: %w", login, err)
	}

	collection := q.User.ContributionsCollection
	prRepos := make(map[domain.Repo]struct{})
	for _, contribution := range collection.PullRequestContributionsByRepository {
		repo := domain.Repo{
			Owner: contribution.Repository.Owner.Login,
			Name:  contribution.Repository.Name,
		}
		prRepos[repo] = struct{}{}
	}

	return domain.Contributions{
		Commits:      collection.TotalCommitContributions,
		Issues:       collection.TotalIssueContributions,
		PullRequests: collection.TotalPullRequestContributions,
		Reviews:      collection.TotalPullRequestReviewContributions,
		PRRepos:      prRepos,
	}, nil
}

// FetchPullRequests pages through one repository's pull requests newest-first
// and keeps those authored by author and created strictly inside the window.
// The window here must already be corrected to UTC: unlike the contributions
// query, createdAt timestamps come back as true UTC.
//
// A node outside the window resets the continuation signal to
// "created after window start". Pages are sorted newest-first, so once a
// node is at or before the start everything after it is older and paging
// stops. Author mismatches are skipped without touching the signal.
func (g *GitHubGateway) FetchPullRequests(ctx context.Context, author string, repo domain.Repo, window domain.Window) ([]domain.PullRequest, error) {
	g.logger.Debugf("Pull request window: %s - %s", window.Start, window.End)

	variables := map[string]interface{}{
		"owner":  githubv4.String(repo.Owner),
		"name":   githubv4.String(repo.Name),
		"cursor": (*githubv4.String)(nil),
	}

	var prs []domain.PullRequest
	for more := true; more; {
		var q pullRequestsQuery
		if err := g.client.Query(ctx, &q, variables); err != nil {
			return nil, fmt.Errorf("failed to query pull requests for %s/%s: %w", repo.Owner, repo.Name, err)
		}

		page := q.Repository.PullRequests
		more = page.PageInfo.HasNextPage
		variables["cursor"] = githubv4.NewString(page.PageInfo.EndCursor)

		for _, node := range page.Nodes {
			if !strings.EqualFold(node.Author.Login, author) {
				g.logger.Debugf("Author %s does not match, skipping PR #%d", node.Author.Login, node.Number)
				continue
			}

			createdAt := node.CreatedAt.Time
			if !createdAt.After(window.Start) || !createdAt.Before(window.End) {
				g.logger.Debugf("Create date not in range - %s", createdAt)
				more = createdAt.After(window.Start)
				continue
			}

			prs = append(prs, domain.PullRequest{
				RepoName:  repo.Name,
				Additions: node.Additions,
				Deletions: node.Deletions,
				Files:     node.ChangedFiles,
				CreatedAt: createdAt.UTC().Format(time.RFC3339),
				Number:    node.Number,
				URL:       node.URL,
			})
		}
	}

	return prs, nil
}
