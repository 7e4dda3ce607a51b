package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	httpserver "github.com/fyrsmithlabs/voicaj/internal/http"
	"github.com/fyrsmithlabs/voicaj/internal/record"
)

func (c *cli) classifyCmd() *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "classify <text...>",
		Short: "Classify a message into records",
		Long: `Classify a message into structured records.

Examples:
  voicaj classify tomorrow I need to send the report to my manager
  voicaj classify --session work "call the client and also book the venue"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp httpserver.ClassifyResponse
			err := c.do("POST", "/api/v1/classify", httpserver.ClassifyRequest{
				Text:      strings.Join(args, " "),
				SessionID: sessionID,
			}, &resp)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "session id for conversation context")
	return cmd
}

func (c *cli) learnCmd() *cobra.Command {
	var text, outputFile, feedback string
	cmd := &cobra.Command{
		Use:   "learn",
		Short: "Correct a previous classification",
		Long: `Send feedback about records returned for a message. The correction is
stored as an exemplar and applied to similar messages later.

--output-file holds the records to correct, either a JSON array or the
output of "voicaj classify".

Examples:
  voicaj classify I should call the dentist > out.json
  voicaj learn --text "I should call the dentist" --output-file out.json --feedback "this is high priority"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prior, err := readRecords(cmd.InOrStdin(), outputFile)
			if err != nil {
				return err
			}
			var resp httpserver.LearnResponse
			err = c.do("POST", "/api/v1/learn", httpserver.LearnRequest{
				Text:     text,
				Output:   prior,
				Feedback: feedback,
			}, &resp)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "the original message")
	cmd.Flags().StringVar(&outputFile, "output-file", "", "JSON file with the records to correct (- for stdin)")
	cmd.Flags().StringVar(&feedback, "feedback", "", "what is wrong with the records")
	_ = cmd.MarkFlagRequired("text")
	_ = cmd.MarkFlagRequired("output-file")
	_ = cmd.MarkFlagRequired("feedback")
	return cmd
}

// readRecords accepts a bare record array or a classify response.
func readRecords(stdin io.Reader, path string) ([]record.Record, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var records []record.Record
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}
	var wrapped httpserver.ClassifyResponse
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse records in %s: %w", path, err)
	}
	return wrapped.Records, nil
}

func (c *cli) historyCmd() *cobra.Command {
	var (
		sessionID string
		limit     int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the turns of a session, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{"session_id": {sessionID}}
			if limit > 0 {
				q.Set("limit", strconv.Itoa(limit))
			}
			var resp httpserver.HistoryResponse
			if err := c.do("GET", "/api/v1/history?"+q.Encode(), nil, &resp); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(resp.History) == 0 {
				fmt.Fprintln(out, "No history for session", sessionID)
				return nil
			}
			for _, h := range resp.History {
				fmt.Fprintf(out, "[%s] %s\n", h.Timestamp.Format("2006-01-02 15:04"), h.User)
				for _, r := range h.Assistant {
					fmt.Fprintf(out, "  -> %s: %s (%s)\n", r.Type, r.Title, r.Priority)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "default", "session id")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of turns")
	return cmd
}

func (c *cli) clearCmd() *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the history of a session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp httpserver.ClearResponse
			q := url.Values{"session_id": {sessionID}}
			if err := c.do("DELETE", "/api/v1/history?"+q.Encode(), nil, &resp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d turn(s) from session %s\n", resp.Cleared, sessionID)
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "default", "session id")
	return cmd
}

func (c *cli) modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models of the configured provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp httpserver.ModelsResponse
			if err := c.do("GET", "/api/v1/models", nil, &resp); err != nil {
				return err
			}
			for _, m := range resp.Models {
				fmt.Fprintln(cmd.OutOrStdout(), m)
			}
			return nil
		},
	}
}

func (c *cli) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check voicajd server health",
		Long: `Check the health status of the voicajd HTTP server.

Examples:
  voicaj health
  voicaj health --server http://localhost:8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp httpserver.HealthResponse
			if err := c.do("GET", "/health", nil, &resp); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Server Status: %s\n", resp.Status)
			fmt.Fprintf(out, "Server URL: %s\n", c.serverURL)
			names := make([]string, 0, len(resp.Checks))
			for name := range resp.Checks {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(out, "  %s: %s\n", name, resp.Checks[name])
			}
			return nil
		},
	}
}
