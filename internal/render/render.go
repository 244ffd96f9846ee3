// Package render formats the collected stats as a plain-text or Markdown report.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/preocts/daystats/internal/domain"
)

// Output renders the daily report. The default is a fixed-width text table;
// markdown switches to a copy-paste-ready Markdown table.
func Output(contribs domain.Contributions, prs []domain.PullRequest, markdown bool) string {
	if markdown {
		return toMarkdown(contribs, prs)
	}
	return toText(contribs, prs)
}

func toMarkdown(contribs domain.Contributions, prs []domain.PullRequest) string {
	adds, dels, files := totals(prs)

	lines := []string{
		"\n**Daily GitHub Summary**:\n",
		"| Contribution | Count | Metric | Total |",
		"| -- | -- | -- | -- |",
		fmt.Sprintf("| Reviews | %d | Files Changed | %d |", contribs.Reviews, files),
		fmt.Sprintf("| Issues | %d | Additions | %d |", contribs.Issues, adds),
		fmt.Sprintf("| Commits | %d | Deletions | %d |", contribs.Commits, dels),
		fmt.Sprintf("| Pull Requests | %d | Median Adds | %s |", contribs.PullRequests, medianAdditions(prs)),
		"\n**Pull Request Breakdown**:\n",
		"| Repo | Addition | Deletion | Files | Number |",
		"| -- | -- | -- | -- | -- |",
	}
	for _, pr := range prs {
		lines = append(lines, fmt.Sprintf(
			"| %s | %d | %d | %d | [see: #%d](%s) |",
			pr.RepoName, pr.Additions, pr.Deletions, pr.Files, pr.Number, pr.URL,
		))
	}

	return strings.Join(lines, "\n")
}

func toText(contribs domain.Contributions, prs []domain.PullRequest) string {
	adds, dels, files := totals(prs)

	lines := []string{
		fmt.Sprintf("\nDaily GitHub Summary:\n|%s|%s|%s|%s|",
			center("Contribution", 20), center("Count", 7), center("Metric", 15), center("Total", 7)),
		strings.Repeat("-", 20+7+15+7+5),
		fmt.Sprintf("|%-20s|%s|%-15s|%s|",
			" Reviews", center(strconv.Itoa(contribs.Reviews), 7), " Files Changed", center(strconv.Itoa(files), 7)),
		fmt.Sprintf("|%-20s|%s|%-15s|%s|",
			" Issue", center(strconv.Itoa(contribs.Issues), 7), " Additions", center(strconv.Itoa(adds), 7)),
		fmt.Sprintf("|%-20s|%s|%-15s|%s|",
			" Commits", center(strconv.Itoa(contribs.Commits), 7), " Deletions", center(strconv.Itoa(dels), 7)),
		fmt.Sprintf("|%-20s|%s|%-15s|%s|",
			" Pull Requests", center(strconv.Itoa(contribs.PullRequests), 7), " Median Adds", center(medianAdditions(prs), 7)),
		"\nPull Request Breakdown:\n",
		fmt.Sprintf("|%s|%s|%s|%s| Url",
			center("Addition", 10), center("Deletion", 10), center("Files", 7), center("Number", 8)),
		strings.Repeat("-", 10+10+7+8+5),
	}
	for _, pr := range prs {
		lines = append(lines, fmt.Sprintf("|%s|%s|%s|%s| %s",
			center(strconv.Itoa(pr.Additions), 10),
			center(strconv.Itoa(pr.Deletions), 10),
			center(strconv.Itoa(pr.Files), 7),
			center(strconv.Itoa(pr.Number), 8),
			pr.URL,
		))
	}

	return strings.Join(lines, "\n")
}

func totals(prs []domain.PullRequest) (adds, dels, files int) {
	for _, pr := range prs {
		adds += pr.Additions
		dels += pr.Deletions
		files += pr.Files
	}
	return adds, dels, files
}

// medianAdditions is the median line-addition count across the collected
// pull requests, "0" when there are none.
func medianAdditions(prs []domain.PullRequest) string {
	if len(prs) == 0 {
		return "0"
	}
	values := make([]float64, 0, len(prs))
	for _, pr := range prs {
		values = append(values, float64(pr.Additions))
	}
	median, err := stats.Median(values)
	if err != nil {
		return "0"
	}
	return strconv.FormatFloat(median, 'f', -1, 64)
}

// center pads s with spaces to width, extra space on the right when uneven.
func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	left := (width - len(s)) / 2
	right := width - len(s) - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}
