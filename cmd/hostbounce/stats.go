package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hostbounce/hostbounce/pkg/config"
	"github.com/hostbounce/hostbounce/pkg/hitlog"
)

func newStatsCmd() *cobra.Command {
	var (
		configPath string
		since      time.Duration
		top        int
		recent     int
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show redirect traffic statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			hits, err := hitlog.New(cfg.HitLog.DBPath, cfg.HitLog.RetentionDays)
			if err != nil {
				return err
			}
			defer func() { _ = hits.Close() }()

			ctx := context.Background()

			// Recent hit detail view
			if recent > 0 {
				list, err := hits.Recent(ctx, recent)
				if err != nil {
					return err
				}
				if len(list) == 0 {
					fmt.Println("No hits recorded.")
					return nil
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "TIME\tHOSTNAME\tMETHOD\tPATH\tTARGET")
				for _, h := range list {
					tgt := h.Target
					if !h.Matched {
						tgt = "(no match)"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
						h.CreatedAt.Format("2006-01-02T15:04:05"), h.Hostname, h.Method, h.Path, tgt)
				}
				return w.Flush()
			}

			// Default: per-hostname summary
			stats, err := hits.TopHosts(ctx, time.Now().UTC().Add(-since), top)
			if err != nil {
				return err
			}
			if len(stats) == 0 {
				fmt.Println("No hits recorded in the window.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "HOSTNAME\tHITS\tMATCHED\tUNMATCHED")
			for _, s := range stats {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", s.Hostname, s.Hits, s.Matched, s.Hits-s.Matched)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hostbounce.yaml", "path to config file")
	cmd.Flags().DurationVar(&since, "since", 24*time.Hour, "aggregation window")
	cmd.Flags().IntVar(&top, "top", 20, "number of hostnames to show")
	cmd.Flags().IntVar(&recent, "recent", 0, "show the N most recent hits instead of the summary")
	return cmd
}
