// Package cmd implements the command-line interface for newsmill. It
// provides the root command and subcommands for running the scrape pipeline.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cmdretry "github.com/newsmill/newsmill/cmd/retry"
	"github.com/newsmill/newsmill/cmd/scheduler"
	"github.com/newsmill/newsmill/cmd/scrape"
	"github.com/newsmill/newsmill/cmd/scrapers"
	"github.com/newsmill/newsmill/cmd/serve"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// Debug enables debug mode for all commands
	Debug bool

	// rootCmd represents the root command for the newsmill CLI.
	rootCmd = &cobra.Command{
		Use:   "newsmill",
		Short: "A news scraping and rewriting pipeline",
		Long: `A pipeline that discovers articles on third-party news sites,
extracts their content, rewrites it via an LLM backend, and republishes the
result to a downstream site.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command
func Execute() error {
	// Load .env file early so environment variables are available
	_ = godotenv.Load()

	// Parse flags early to get debug flag before creating logger
	_ = rootCmd.ParseFlags(os.Args[1:])

	if err := initConfig(); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	return rootCmd.ExecuteContext(context.Background())
}

// init initializes the root command and its subcommands.
func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is ./config.yaml or ./config/config.yaml)",
	)
	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "enable debug mode")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("newsmill version %s\n", "1.0.0")
		},
	})

	rootCmd.AddCommand(scrape.Command(&Debug))
	rootCmd.AddCommand(cmdretry.Command(&Debug))
	rootCmd.AddCommand(scrapers.Command(&Debug))
	rootCmd.AddCommand(scheduler.Command(&Debug))
	rootCmd.AddCommand(serve.Command(&Debug))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	// Enable automatic environment variable reading before reading the
	// config file so environment variables take precedence.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Config file is optional: configuration can come entirely from
	// environment variables and defaults.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return nil
}
