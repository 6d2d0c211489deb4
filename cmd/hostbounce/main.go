package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:     "hostbounce",
		Short:   "hostbounce — hostname-based HTTP redirector",
		Version: version,
	}

	root.AddCommand(
		newServeCmd(),
		newRoutesCmd(),
		newStatsCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
