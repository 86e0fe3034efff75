package cli

import (
	"fmt"
	"net/http"

	"github.com/LeJamon/binform/internal/examples/adbframe"
	"github.com/spf13/cobra"
)

var (
	servePort int
	serveBind string
)

// serveCmd represents the serve command (default action): it runs the
// adbframe demo WebSocket server, the one worked example of the format
// engine driven over a real transport.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the adbframe demo WebSocket server",
	Long: `Run a WebSocket server that decodes adbframe messages incrementally
(binary messages may split one frame across any number of WebSocket frames)
and echoes back every complete message it assembles.

This is the default command when no subcommand is specified.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	}

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "port to listen on (defaults to the config's serve.port)")
	serveCmd.Flags().StringVar(&serveBind, "bind", "", "address to bind to (default: all interfaces)")
}

func runServe(cmd *cobra.Command, args []string) error {
	port := servePort
	bind := serveBind
	if cfg != nil {
		if port == 0 {
			port = cfg.Serve.Port
		}
		if bind == "" {
			bind = cfg.Serve.BindAddr
		}
	}
	if port == 0 {
		port = 8088
	}

	mux := http.NewServeMux()
	mux.Handle("/adbframe", adbframe.NewServer())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"binform"}`))
	})

	listenAddr := fmt.Sprintf("%s:%d", bind, port)

	if !quiet {
		fmt.Println("Starting binform serve")
		fmt.Printf("  - adbframe WebSocket: ws://localhost:%d/adbframe\n", port)
		fmt.Printf("  - Health check:       http://localhost:%d/health\n", port)
	}

	if err := http.ListenAndServe(listenAddr, mux); err != nil {
		return fmt.Errorf("serve: failed to start: %w", err)
	}
	return nil
}
