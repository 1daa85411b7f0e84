package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adforge/adforge/config"
	"github.com/adforge/adforge/internal/server"
)

func main() {
	root := &cobra.Command{
		Use:   "adforge",
		Short: "Ad content backend: businesses, products, and generated ad imagery",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return server.Run(config.Load())
			},
		},
		&cobra.Command{
			Use:   "queue:work",
			Short: "Run queue workers without the HTTP server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return server.RunWorker(config.Load())
			},
		},
		&cobra.Command{
			Use:   "indexes",
			Short: "Create MongoDB indexes and exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				return server.EnsureIndexes(config.Load())
			},
		},
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
