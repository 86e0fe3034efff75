package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/LeJamon/binform/internal/config"
	"github.com/spf13/cobra"
)

var (
	configFile string
	debug      bool
	quiet      bool

	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "binform",
	Short: "binform - a declarative binary format engine",
	Long: `binform compiles a small declarative format language into a spec tree
that an incremental streaming parser and its inverse encoder both work from.
This is a Go-native implementation, not a translation of another runtime.`,
	Version: "0.1.0-dev",
}

// Execute adds all child commands to the root command and runs it. Called
// once from main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "set the config's log_level to debug")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
}

// initConfig loads the configuration once, before any subcommand runs.
func initConfig() {
	loaded, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if debug {
		loaded.LogLevel = "debug"
	}
	cfg = loaded

	log.SetFlags(0)
	if quiet {
		log.SetOutput(os.Stderr)
	}
}
