package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hostbounce/hostbounce/pkg/config"
	"github.com/hostbounce/hostbounce/pkg/target"
)

func newRoutesCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Manage hostname redirect mappings",
	}

	addCmd := &cobra.Command{
		Use:   "add <hostname> <target>",
		Short: "Add or replace a redirect mapping",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			host, err := target.NormalizeHost(args[0])
			if err != nil {
				return fmt.Errorf("invalid hostname %q: %w", args[0], err)
			}
			// Validate before writing so a bad row never reaches the store,
			// but keep the operator's raw value: schemeless targets are
			// legal and resolved on read.
			if _, err := target.Normalize(args[1]); err != nil {
				return fmt.Errorf("invalid target %q: %w", args[1], err)
			}

			ctx := context.Background()
			st, err := openStore(ctx, cfg.Store)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			if err := st.Put(ctx, host, args[1]); err != nil {
				return err
			}
			fmt.Printf("%s -> %s\n", host, args[1])
			return nil
		},
	}

	rmCmd := &cobra.Command{
		Use:   "rm <hostname>",
		Short: "Remove a redirect mapping",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			host, err := target.NormalizeHost(args[0])
			if err != nil {
				return fmt.Errorf("invalid hostname %q: %w", args[0], err)
			}

			ctx := context.Background()
			st, err := openStore(ctx, cfg.Store)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			if err := st.Delete(ctx, host); err != nil {
				return err
			}
			fmt.Printf("removed %s\n", host)
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all redirect mappings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			ctx := context.Background()
			st, err := openStore(ctx, cfg.Store)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			entries, err := st.List(ctx)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No redirect mappings found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "HOSTNAME\tTARGET\tUPDATED")
			for _, e := range entries {
				updated := "-"
				if !e.UpdatedAt.IsZero() {
					updated = e.UpdatedAt.Format("2006-01-02T15:04:05")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.Hostname, e.TargetURL, updated)
			}
			return w.Flush()
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "hostbounce.yaml", "path to config file")
	cmd.AddCommand(addCmd, rmCmd, listCmd)
	return cmd
}
