// Package cmd implements the command-line interface for libingest.
// It provides the root command and subcommands for running the ingestion
// service and its one-shot pipelines.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cmdacquire "github.com/jonesrussell/libingest/cmd/acquire"
	cmdbundle "github.com/jonesrussell/libingest/cmd/bundle"
	"github.com/jonesrussell/libingest/cmd/httpd"
	"github.com/jonesrussell/libingest/internal/config"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// debug enables debug logging for all commands.
	debug bool

	// rootCmd represents the root command for the libingest CLI.
	rootCmd = &cobra.Command{
		Use:   "libingest",
		Short: "Content-library ingestion service",
		Long: `libingest acquires remote resources into a content library:
single-URL downloads with a scrape fallback, and selective extraction
and upload of archive bundles.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Parse flags early so --config is known before Viper reads anything.
	_ = rootCmd.ParseFlags(os.Args[1:])

	if err := initConfig(); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is ./config.yaml or ./config/config.yaml)",
	)
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("libingest version %s\n", "1.0.0")
		},
	})

	rootCmd.AddCommand(httpd.Command())
	rootCmd.AddCommand(cmdacquire.Command())
	rootCmd.AddCommand(cmdbundle.Command())
}

// initConfig prepares Viper from the config file, .env, and environment
// variables.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := config.InitializeViper(); err != nil {
		return err
	}

	if debug {
		viper.Set("logger.level", "debug")
		viper.Set("logger.development", true)
	}

	return nil
}
