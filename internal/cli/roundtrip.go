package cli

import (
	"bytes"
	"fmt"

	"github.com/LeJamon/binform/internal/encoder"
	"github.com/LeJamon/binform/internal/speccache"
	"github.com/LeJamon/binform/internal/stream"
	"github.com/spf13/cobra"
)

var roundtripPrefix string

var roundtripCmd = &cobra.Command{
	Use:   "roundtrip <input-file>",
	Short: "Decode a file then re-encode it, and report whether the bytes match",
	Long: `Decodes --format against the input file with a single Parser, then runs
the resulting Value back through Encode and compares the result to the
original bytes byte-for-byte. A mismatch almost always means the format
description under-specifies the layout (for example, a Skip over non-zero
bytes, which re-encodes as zeros, or an Until whose content does not fill
its declared length and is re-encoded with zero padding).`,
	Args: cobra.ExactArgs(1),
	RunE: runRoundtrip,
}

func init() {
	roundtripCmd.Flags().StringVar(&parseFormat, "format", "", "format string (required)")
	roundtripCmd.Flags().StringVar(&roundtripPrefix, "prefix", "", "auto-naming prefix (defaults to the config's name_prefix)")
	roundtripCmd.MarkFlagRequired("format")
	rootCmd.AddCommand(roundtripCmd)
}

func runRoundtrip(cmd *cobra.Command, args []string) error {
	data, err := readInput(args[0])
	if err != nil {
		return err
	}

	prefix := roundtripPrefix
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
	consumed := len(data) - p.Remaining().Len()

	encoded := encoder.Encode(spec, out.Value).Bytes()
	if bytes.Equal(data[:consumed], encoded) {
		fmt.Printf("ok: %d bytes round-trip exactly\n", consumed)
		return nil
	}

	fmt.Printf("mismatch: decoded %d bytes, re-encoded %d bytes\n", consumed, len(encoded))
	n := consumed
	if len(encoded) < n {
		n = len(encoded)
	}
	for i := 0; i < n; i++ {
		if data[i] != encoded[i] {
			fmt.Printf("first difference at offset %d: original 0x%02x, re-encoded 0x%02x\n", i, data[i], encoded[i])
			break
		}
	}
	return fmt.Errorf("round-trip mismatch")
}
