// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// Repo identifies a repository by its owner login and name.
// Both fields are case-sensitive; equality is by the pair.
type Repo struct {
	Owner string
	Name  string
}

// Contributions holds a user's aggregate activity counts for one day,
// plus the set of repositories they opened pull requests against.
type Contributions struct {
	Commits      int
	Issues       int
	PullRequests int
	Reviews      int
	PRRepos      map[Repo]struct{}
}

// PullRequest is a single authored pull request as reported by the API.
// CreatedAt keeps the API's ISO-8601 form with the trailing "Z".
type PullRequest struct {
	RepoName  string
	Additions int
	Deletions int
	Files     int
	CreatedAt string
	Number    int
	URL       string
}

// Window is a (start, end) pair of instants spanning one calendar day,
// 00:00:00 through 23:59:59 with zero sub-second precision. The times are
// naive wall-clock values carried in the UTC location so they format with
// a trailing "Z".
type Window struct {
	Start time.Time
	End   time.Time
}

// Shift returns a copy of the window with d added to both ends.
func (w Window) Shift(d time.Duration) Window {
	return Window{Start: w.Start.Add(d), End: w.End.Add(d)}
}
