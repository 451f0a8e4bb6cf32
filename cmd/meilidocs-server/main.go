package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/radutopala/meilidocs/internal/config"
	"github.com/radutopala/meilidocs/internal/docsearch"
	"github.com/radutopala/meilidocs/internal/mcp"
	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code, so that
// deferred cleanup finishes before main exits.
func run(args []string, stdout, stderr io.Writer) int {
	// .env values feed both flag defaults and config
	dotenvErr := godotenv.Load()

	flags := pflag.NewFlagSet("meilidocs-server", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "Path to the JSON config file (default $MEILIDOCS_CONFIG or .meilidocs.json)")
	transport := flags.String("transport", envOr("MCP_TRANSPORT", "stdio"), "MCP transport: stdio or http")
	addr := flags.String("addr", envOr("MCP_HTTP_ADDR", ":8080"), "Listen address for the http transport")
	logPath := flags.String("log-file", envOr("MCP_LOG_FILE", "/tmp/meilidocs-server.log"), "Log file path")
	logLevel := flags.String("log-level", envOr("MCP_LOG_LEVEL", "info"), "Log level: debug, info, warn, error")
	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: meilidocs-server [flags]\n       meilidocs-server [flags] query <text>\n\nFlags:\n")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	// Open log file
	var logOut io.Writer = stderr
	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err == nil {
		defer logFile.Close()
		logOut = logFile
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{
		Level: level,
	}))

	if dotenvErr != nil && !os.IsNotExist(dotenvErr) {
		logger.Warn("Failed to load .env file", "error", dotenvErr)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		fmt.Fprintln(stderr, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if rest := flags.Args(); len(rest) > 0 {
		if rest[0] != "query" || len(rest) < 2 {
			flags.Usage()
			return 2
		}
		return runQuery(ctx, cfg, strings.Join(rest[1:], " "), logger, stdout, stderr)
	}

	serverName := envOr("MCP_SERVER_NAME", "meilidocs")
	serverVersion := envOr("MCP_SERVER_VERSION", "0.1.0")

	server, err := mcp.NewServer(serverName, serverVersion, cfg, logger)
	if err != nil {
		logger.Error("Failed to create meilidocs server", "error", err)
		return 1
	}

	switch *transport {
	case "stdio":
		logger.Info("Starting meilidocs server over stdio...", "name", serverName, "version", serverVersion)
		if err := server.Run(ctx, &mcpsdk.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("meilidocs server failed", "error", err)
			return 1
		}
	case "http":
		logger.Info("Starting meilidocs server over Streamable HTTP...", "name", serverName, "version", serverVersion, "addr", *addr)
		if err := serveHTTP(ctx, *addr, server.HTTPHandler()); err != nil {
			logger.Error("meilidocs server failed", "error", err)
			return 1
		}
	default:
		logger.Error("Unknown transport", "transport", *transport)
		fmt.Fprintf(stderr, "unknown transport %q: want stdio or http\n", *transport)
		return 2
	}
	logger.Info("meilidocs server finished")
	return 0
}

// runQuery performs one search and prints the result, with status events on stderr.
func runQuery(ctx context.Context, cfg config.Config, query string, logger *slog.Logger, stdout, stderr io.Writer) int {
	tool := docsearch.New(cfg, logger)
	result := tool.SearchDocs(ctx, query, func(_ context.Context, event docsearch.Event) error {
		_, err := fmt.Fprintf(stderr, "[%s] %s\n", event.Type, event.Data.Description)
		return err
	})

	fmt.Fprintln(stdout, result)
	if docsearch.IsFailure(result) {
		return 1
	}
	return 0
}

func serveHTTP(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: handler}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
