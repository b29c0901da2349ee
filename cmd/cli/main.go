package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/9endu/Dealicious/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dealicious",
	Short: "Dealicious CLI - offer verification tool",
	Long: `A CLI for scoring deal offers locally. It runs the same verification
engine as the HTTP service against a source URL, offer text and an optional
screenshot, and prints the result as JSON.`,
	SilenceUsage:      true,
	PersistentPreRunE: persistentPreRun,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml or ./config.yaml)")
}

// persistentPreRun loads config and installs the logger before each command
func persistentPreRun(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "version" {
		return nil
	}

	var err error
	cfg, err = config.LoadFile(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	initLogger(cmd.ErrOrStderr())
	return nil
}

// initLogger logs to stderr so stdout carries only command output
func initLogger(out io.Writer) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.WarnLevel
	if cfg != nil && cfg.Logging.Level != "" {
		if parsedLevel, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil && parsedLevel > level {
			level = parsedLevel
		}
	}

	var output io.Writer = out
	if cfg == nil || cfg.Logging.Format != "json" {
		noColor := cfg != nil && cfg.Logging.NoColor
		output = zerolog.ConsoleWriter{Out: out, NoColor: noColor}
	}

	log.Logger = zerolog.New(output).Level(level).With().Timestamp().Logger()
}

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
