// Package cmd contains the CLI command for the application,
// built using the Cobra library.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/preocts/daystats/internal/gateway"
	"github.com/preocts/daystats/internal/render"
	"github.com/preocts/daystats/internal/usecase"
)

// tokenKey is the environment variable consulted when --token is not given.
const tokenKey = "DAYSTATS_TOKEN"

var rootCmd = &cobra.Command{
	Use:   "daystats <loginname>",
	Short: "Pull daily stats from GitHub.",
	Long: `daystats pulls one day of GitHub activity (commits, issues, pull requests,
reviews) for a login name, plus the pull requests they authored that day,
and prints a text or Markdown summary.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// A .env file is optional; the environment may already carry the token.
		_ = godotenv.Load()

		year, _ := cmd.Flags().GetInt("year")
		month, _ := cmd.Flags().GetInt("month")
		day, _ := cmd.Flags().GetInt("day")
		apiURL, _ := cmd.Flags().GetString("url")
		token, _ := cmd.Flags().GetString("token")
		markdown, _ := cmd.Flags().GetBool("markdown")
		debug, _ := cmd.Flags().GetBool("debug")

		logger := logrus.New()
		logger.SetOutput(os.Stderr)
		if debug {
			logger.SetLevel(logrus.DebugLevel)
		}

		if token == "" {
			token = os.Getenv(tokenKey)
		}

		githubGateway := gateway.NewGitHubGateway(token, apiURL, logger)
		reporter := usecase.NewReporter(githubGateway, logger)

		contribs, prs, err := reporter.Report(cmd.Context(), args[0], year, month, day)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), render.Output(contribs, prs, markdown))
		return nil
	},
}

// Execute runs the root command. An invalid date exits with code 2 so
// scripts can tell bad input apart from other failures.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		var dateErr *usecase.InvalidDateError
		if errors.As(err, &dateErr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Int("year", 0, "Year to query (default: today)")
	rootCmd.Flags().Int("month", 0, "Month of the year to query (default: today)")
	rootCmd.Flags().Int("day", 0, "Day of the month to query (default: today)")
	rootCmd.Flags().String("url", gateway.DefaultAPIURL, "Override the GitHub GraphQL API url")
	rootCmd.Flags().String("token", "", "GitHub Personal Access Token with read-only access for public repos (default: $"+tokenKey+")")
	rootCmd.Flags().Bool("markdown", false, "Changes the text output to a Markdown table for copy/paste")
	rootCmd.Flags().Bool("debug", false, "Turn debug logging on. Use with care, will expose token!")
}
