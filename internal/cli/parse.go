package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/LeJamon/binform/internal/speccache"
	"github.com/LeJamon/binform/internal/stream"
	"github.com/spf13/cobra"
)

var (
	parseFormat string
	parsePrefix string
)

var parseCmd = &cobra.Command{
	Use:   "parse <input-file>",
	Short: "Decode a binary file against a format string",
	Long: `Compile --format into a Spec and run the whole input file through
a single incremental Parser. Use "-" as the input file to read from stdin.

Example:
    binform parse --format '<3I%I2Is' capture.bin`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVar(&parseFormat, "format", "", "format string (required)")
	parseCmd.Flags().StringVar(&parsePrefix, "prefix", "", "auto-naming prefix (defaults to the config's name_prefix)")
	parseCmd.MarkFlagRequired("format")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	data, err := readInput(args[0])
	if err != nil {
		return err
	}

	prefix := parsePrefix
	if prefix == "" && cfg != nil {
		prefix = cfg.NamePrefix
	}

	maxEntries := 256
	if cfg != nil {
		maxEntries = cfg.Cache.MaxEntries
	}
	cache, err := speccache.New(speccache.Config{MaxEntries: maxEntries})
	if err != nil {
		return fmt.Errorf("spec cache: %w", err)
	}

	spec, err := cache.Compile(parseFormat, prefix)
	if err != nil {
		return fmt.Errorf("compiling format: %w", err)
	}

	p := stream.New(spec)
	p.Supply(data)
	out := p.Next()
	if !out.Done {
		return fmt.Errorf("input is incomplete: need at least %d more bytes", out.NeedMore)
	}

	fmt.Println(renderValue(out.Value, 0))
	if remaining := p.Remaining().Len(); remaining > 0 {
		fmt.Fprintf(os.Stderr, "note: %d trailing bytes were not consumed\n", remaining)
	}
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
