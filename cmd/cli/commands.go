package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(roundCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(validateCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/health", nil)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/metrics", nil)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats [session-id]",
	Short: "Show the stored activity tallies, overall or for one session",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			return performRequest(http.MethodGet, "/sessions/"+args[0]+"/stats", nil)
		}
		return performRequest(http.MethodGet, "/stats", nil)
	},
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions [id]",
	Short: "List sessions, or show one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			return performRequest(http.MethodGet, "/sessions/"+args[0], nil)
		}
		return performRequest(http.MethodGet, "/sessions", nil)
	},
}

var createCmd = &cobra.Command{
	Use:   "create <request.json>",
	Short: "Create a session from a JSON create request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		return performRequest(http.MethodPost, "/sessions", body)
	},
}

var roundCmd = &cobra.Command{
	Use:   "round <session>",
	Short: "Start a new round, reassigning every court",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/sessions/"+args[0]+"/round"+dryRunQuery(cmd), nil)
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete <session> <court>",
	Short: "Mark the match on a court as finished",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/sessions/"+args[0]+"/courts/"+args[1]+"/complete"+dryRunQuery(cmd), nil)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <session>",
	Short: "Run the integrity check on a stored session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/sessions/"+args[0]+"/validate", nil)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{roundCmd, completeCmd} {
		cmd.Flags().Bool("dry-run", false, "Skip posting to Slack")
	}
}

func dryRunQuery(cmd *cobra.Command) string {
	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		return "?dry_run=true"
	}
	return ""
}

func performRequest(method, endpoint string, body []byte) error {
	url := host + endpoint
	fmt.Printf("Making %s request to %s\n", method, url)

	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(respBody))

	return nil
}
