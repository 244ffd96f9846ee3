package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preocts/daystats/internal/domain"
)

// setupTestGateway creates a GitHubGateway that communicates with a mock HTTP server.
func setupTestGateway(t *testing.T, handler http.Handler) *GitHubGateway {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return &GitHubGateway{
		client: githubv4.NewEnterpriseClient(server.URL, server.Client()),
		logger: logger,
	}
}

// localWindow builds a naive wall-clock window for one day, the form the
// contributions query sends on the wire.
func localWindow(year int, month time.Month, day int) domain.Window {
	return domain.Window{
		Start: time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year, month, day, 23, 59, 59, 0, time.UTC),
	}
}

const contributionsResponse = `{"data":{"user":{"contributionsCollection":{
	"totalCommitContributions":5,
	"totalIssueContributions":1,
	"totalPullRequestContributions":2,
	"totalPullRequestReviewContributions":0,
	"pullRequestContributionsByRepository":[
		{"repository":{"owner":{"login":"Preocts"},"name":"daystats"}},
		{"repository":{"owner":{"login":"Preocts"},"name":"daystats"}}
	]}}}}`

func TestGitHubGateway_FetchContributions(t *testing.T) {
	testCases := []struct {
		name           string
		responseBody   string
		expected       domain.Contributions
		expectError    bool
		expectedErrMsg string
	}{
		{
			name:         "happy path - counters verbatim and repos deduplicated",
			responseBody: contributionsResponse,
			expected: domain.Contributions{
				Commits:      5,
				Issues:       1,
				PullRequests: 2,
				Reviews:      0,
				PRRepos: map[domain.Repo]struct{}{
					{Owner: "Preocts", Name: "daystats"}: {},
				},
			},
			expectError: false,
		},
		{
			name:           "error case - GraphQL error payload without data",
			responseBody:   `{"errors":[{"message":"Something went wrong"}]}`,
			expectError:    true,
			expectedErrMsg: "failed to query contributions",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				body, err := io.ReadAll(r.Body)
				require.NoError(t, err)

				// The window goes out labeled as Zulu even though it holds
				// local wall-clock values.
				assert.Contains(t, string(body), `"from":"1998-12-31T00:00:00Z"`)
				assert.Contains(t, string(body), `"to":"1998-12-31T23:59:59Z"`)
				assert.Contains(t, string(body), "contributionsCollection")

				w.WriteHeader(http.StatusOK)
				fmt.Fprint(w, tc.responseBody)
			}
			g := setupTestGateway(t, http.HandlerFunc(handler))

			result, err := g.FetchContributions(context.Background(), "preocts", localWindow(1998, time.December, 31))

			if tc.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErrMsg)
				assert.Zero(t, result)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, result)
			}
		})
	}
}

// prWindow is the UTC-corrected window for 1 September 2023 in UTC-5.
func prWindow() domain.Window {
	return domain.Window{
		Start: time.Date(2023, time.August, 31, 19, 0, 0, 0, time.UTC),
		End:   time.Date(2023, time.September, 1, 18, 59, 59, 0, time.UTC),
	}
}

func prPage(endCursor string, hasNextPage bool, nodes string) string {
	return fmt.Sprintf(`{"data":{"repository":{"pullRequests":{
		"totalCount":5,
		"pageInfo":{"endCursor":%q,"hasNextPage":%t},
		"nodes":[%s]}}}}`, endCursor, hasNextPage, nodes)
}

func prNode(login, createdAt string, additions, deletions, files, number int) string {
	return fmt.Sprintf(
		`{"author":{"login":%q},"createdAt":%q,"additions":%d,"deletions":%d,"changedFiles":%d,"url":"https://github.com/Preocts/daystats/pull/%d","number":%d}`,
		login, createdAt, additions, deletions, files, number, number,
	)
}

func TestGitHubGateway_FetchPullRequests_PagesAndStopsEarly(t *testing.T) {
	pages := []string{
		prPage("c1", true,
			prNode("Preocts", "2023-09-01T04:51:04Z", 47, 286, 10, 5)+","+
				prNode("Preocts", "2023-09-01T03:00:00Z", 10, 2, 3, 4)),
		// The last node is at or before the window start, so paging must
		// stop here even though the server reports another page.
		prPage("c2", true,
			prNode("someone-else", "2023-09-01T02:00:00Z", 1, 1, 1, 3)+","+
				prNode("preocts", "2023-08-31T23:30:00Z", 3, 4, 2, 2)+","+
				prNode("Preocts", "2023-08-30T12:00:00Z", 9, 9, 9, 1)),
	}

	var requests int
	handler := func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "first: 25")

		switch requests {
		case 0:
			assert.Contains(t, string(body), `"cursor":null`)
		case 1:
			assert.Contains(t, string(body), `"cursor":"c1"`)
		default:
			t.Errorf("unexpected request %d: early stop did not fire", requests+1)
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, pages[requests])
		requests++
	}
	g := setupTestGateway(t, http.HandlerFunc(handler))

	repo := domain.Repo{Owner: "preocts", Name: "daystats"}
	result, err := g.FetchPullRequests(context.Background(), "preocts", repo, prWindow())

	require.NoError(t, err)
	assert.Equal(t, 2, requests)
	require.Len(t, result, 3)

	// Author matching is case-insensitive, server order is preserved.
	assert.Equal(t, domain.PullRequest{
		RepoName:  "daystats",
		Additions: 47,
		Deletions: 286,
		Files:     10,
		CreatedAt: "2023-09-01T04:51:04Z",
		Number:    5,
		URL:       "https://github.com/Preocts/daystats/pull/5",
	}, result[0])
	assert.Equal(t, 4, result[1].Number)
	assert.Equal(t, 2, result[2].Number)
}

func TestGitHubGateway_FetchPullRequests_BoundariesAreExclusive(t *testing.T) {
	page := prPage("c1", false,
		prNode("Preocts", "2023-09-01T18:59:59Z", 1, 1, 1, 9)+","+
			prNode("Preocts", "2023-09-01T10:00:00Z", 2, 2, 2, 8)+","+
			prNode("Preocts", "2023-08-31T19:00:00Z", 3, 3, 3, 7))

	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, page)
	}
	g := setupTestGateway(t, http.HandlerFunc(handler))

	repo := domain.Repo{Owner: "preocts", Name: "daystats"}
	result, err := g.FetchPullRequests(context.Background(), "preocts", repo, prWindow())

	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, 8, result[0].Number)
}

func TestGitHubGateway_FetchPullRequests_NoPartialResults(t *testing.T) {
	firstPage := prPage("c1", true,
		prNode("Preocts", "2023-09-01T04:51:04Z", 47, 286, 10, 5))

	var requests int
	handler := func(w http.ResponseWriter, r *http.Request) {
		if requests == 0 {
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, firstPage)
		} else {
			w.WriteHeader(http.StatusInternalServerError)
		}
		requests++
	}
	g := setupTestGateway(t, http.HandlerFunc(handler))

	repo := domain.Repo{Owner: "preocts", Name: "daystats"}
	result, err := g.FetchPullRequests(context.Background(), "preocts", repo, prWindow())

	// The first page had already collected a record; a later page failure
	// still discards everything.
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query pull requests for preocts/daystats")
	assert.Nil(t, result)
}
