// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/preocts/daystats/internal/domain"
	"github.com/preocts/daystats/internal/gateway"
)

// Reporter is the use case for pulling one day of GitHub activity.
// It orchestrates the two fetch phases and applies the soft-fail policy:
// fetch errors degrade to empty data so the report still renders, and only
// an invalid date aborts the run.
type Reporter struct {
	fetcher gateway.Fetcher
	logger  *logrus.Logger
	now     func() time.Time
}

// NewReporter creates a new Reporter instance.
func NewReporter(fetcher gateway.Fetcher, logger *logrus.Logger) *Reporter {
	return &Reporter{
		fetcher: fetcher,
		logger:  logger,
		now:     time.Now,
	}
}

// Report fetches the contribution summary for the given day, then the pull
// requests authored in each repository the summary discovered. Zero-valued
// year/month/day default to today. Repositories are processed one at a time
// in set order; each repository's results are appended in page order.
//
// The contributions query takes the window as-is, while pull request
// timestamps come back as true UTC, so only the second phase gets the
// window shifted by the machine's UTC offset.
func (r *Reporter) Report(ctx context.Context, login string, year, month, day int) (domain.Contributions, []domain.PullRequest, error) {
	now := r.now()

	window, err := BuildWindow(now, year, month, day)
	if err != nil {
		return domain.Contributions{}, nil, err
	}

	_, offset := now.Zone() // seconds east of UTC
	utcWindow := window.Shift(-time.Duration(offset) * time.Second)

	r.logger.Debugf("Window: %s - %s", window.Start, window.End)
	r.logger.Debugf("UTC offset: %ds", -offset)

	contribs, err := r.fetcher.FetchContributions(ctx, login, window)
	if err != nil {
		r.logger.WithError(err).Error("Fetch contributions failed")
		contribs = domain.Contributions{PRRepos: map[domain.Repo]struct{}{}}
	}

	var prs []domain.PullRequest
	for repo := range contribs.PRRepos {
		repoPRs, err := r.fetcher.FetchPullRequests(ctx, login, repo, utcWindow)
		if err != nil {
			r.logger.WithError(err).Errorf("Fetch pull requests failed for %s/%s", repo.Owner, repo.Name)
			continue
		}
		prs = append(prs, repoPRs...)
	}

	return contribs, prs, nil
}
