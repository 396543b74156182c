package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "contentd",
		Short: "Versioned content service with read-before-write protection",
		Long: `contentd serves documents, activities and UI templates to human and agent
editors. Every write must follow a fresh read, patches apply all-or-nothing and
template schemas are versioned so existing activities keep rendering.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				return os.Setenv("CONFIG_FILE", configFile)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file (overrides CONFIG_FILE)")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newMigrateCommand())
	rootCmd.AddCommand(newTokenCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "contentd:", err)
		os.Exit(1)
	}
}
