package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fyrsmithlabs/voicaj/internal/config"
	"github.com/fyrsmithlabs/voicaj/internal/exemplar"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func (c *cli) exemplarsCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "exemplars",
		Short: "Inspect and maintain the local exemplar store",
		Long: `Inspect and maintain the exemplar file written by voicajd.

The file comes from --path, or exemplars.path in the config file.`,
	}
	cmd.PersistentFlags().StringVar(&path, "path", "", "exemplar file (overrides the config)")

	open := func() (*exemplar.Store, exemplar.RetentionPolicy, error) {
		cfg, err := config.LoadWithFile(c.configPath)
		if err != nil {
			return nil, exemplar.RetentionPolicy{}, err
		}
		ec := cfg.Exemplars
		if path != "" {
			ec.Path = path
		}
		if ec.Path == "" {
			return nil, exemplar.RetentionPolicy{}, fmt.Errorf("no exemplar file configured")
		}
		store, err := exemplar.Open(exemplar.Config{Path: ec.Path})
		return store, ec.Retention, err
	}

	cmd.AddCommand(exemplarsListCmd(open), exemplarsExportCmd(open), exemplarsPruneCmd(open))
	return cmd
}

type openStore func() (*exemplar.Store, exemplar.RetentionPolicy, error)

func exemplarsListCmd(open openStore) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored exemplars, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := open()
			if err != nil {
				return err
			}
			return writeTable(cmd.OutOrStdout(), store.All())
		},
	}
}

func writeTable(w io.Writer, entries []exemplar.Exemplar) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No exemplars stored")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSAVED\tRECORDS\tINPUT\tFEEDBACK")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			e.ID.String()[:8],
			e.Timestamp.Format("2006-01-02 15:04"),
			len(e.Expected),
			truncate(e.Input, 40),
			truncate(e.Feedback, 40),
		)
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func exemplarsExportCmd(open openStore) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every exemplar to stdout as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := open()
			if err != nil {
				return err
			}
			entries := store.All()
			if entries == nil {
				entries = []exemplar.Exemplar{}
			}

			out := cmd.OutOrStdout()
			switch strings.ToLower(format) {
			case formatJSON:
				return printJSON(out, entries)
			case formatYAML:
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(entries); err != nil {
					return fmt.Errorf("failed to encode yaml: %w", err)
				}
				return enc.Close()
			default:
				return fmt.Errorf("unknown format %q (want json or yaml)", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", formatJSON, "output format: json or yaml")
	return cmd
}

func exemplarsPruneCmd(open openStore) *cobra.Command {
	var (
		maxEntries int
		maxAge     time.Duration
		dedupe     bool
	)
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Apply a retention policy to the store",
		Long: `Evict exemplars by the configured retention policy. Flags override
the matching exemplars.retention settings.

Examples:
  voicaj exemplars prune --max-entries 500
  voicaj exemplars prune --max-age 2160h --dedupe`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, policy, err := open()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("max-entries") {
				policy.MaxEntries = maxEntries
			}
			if flags.Changed("max-age") {
				policy.MaxAge = maxAge
			}
			if flags.Changed("dedupe") {
				policy.DedupeInputs = dedupe
			}

			before := store.Len()
			evicted, err := store.Prune(cmd.Context(), policy)
			if err != nil {
				return fmt.Errorf("prune failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Evicted %d of %d exemplar(s)\n", evicted, before)
			return nil
		},
	}
	cmd.Flags().IntVar(&maxEntries, "max-entries", 0, "keep only the newest N exemplars")
	cmd.Flags().DurationVar(&maxAge, "max-age", 0, "drop exemplars older than this")
	cmd.Flags().BoolVar(&dedupe, "dedupe", false, "keep only the newest exemplar per input")
	return cmd
}
