// Package main implements the voicaj CLI for the voicajd HTTP API and the
// local exemplar store.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// version is set via ldflags during build.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// cli carries the persistent flags shared by all subcommands.
type cli struct {
	serverURL  string
	configPath string
	timeout    time.Duration
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "voicaj",
		Short: "CLI for the voicaj classification service",
		Long: `voicaj turns short personal messages into tasks, moods, habits, goals,
health notes and workouts.

Most commands talk to a running voicajd over HTTP. The exemplars commands
work on the local exemplar file directly.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVar(&c.serverURL, "server", "http://localhost:9090", "voicajd server URL")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to config.yaml (default ~/.config/voicaj/config.yaml)")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 60*time.Second, "request timeout")

	root.AddCommand(
		c.classifyCmd(),
		c.learnCmd(),
		c.historyCmd(),
		c.clearCmd(),
		c.modelsCmd(),
		c.healthCmd(),
		c.exemplarsCmd(),
	)
	return root
}

// do sends a JSON request and decodes a JSON response into out.
func (c *cli) do(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	url := strings.TrimRight(c.serverURL, "/") + path
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: c.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("server returned status %d (failed to read response body: %w)", resp.StatusCode, readErr)
		}
		var apiErr struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("server returned status %d: %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
