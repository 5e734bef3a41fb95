// Package relay assembles the local MCP server and runs it over the chosen
// transport.
package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/server"
	"github.com/theapemachine/grok-agent-mcp/core/middleware"
	"github.com/theapemachine/grok-agent-mcp/pkg/resources"
	"github.com/theapemachine/grok-agent-mcp/pkg/tools"
)

const (
	Name    = "grok-agent-mcp"
	Version = "1.0.0"
)

// StreamablePath is where the streamable HTTP transport listens.
const StreamablePath = "/mcp"

// Transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
	TransportHTTP  = "http"
)

// Relay is the local MCP server plus the registries it serves.
type Relay struct {
	mcp       *server.MCPServer
	tools     *tools.Registry
	resources *resources.Registry
	log       *log.Logger
}

func New(toolRegistry *tools.Registry, resourceRegistry *resources.Registry, logger *log.Logger) *Relay {
	if logger == nil {
		logger = log.Default()
	}

	mcpServer := server.NewMCPServer(
		Name,
		Version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
		server.WithLogging(),
		server.WithToolHandlerMiddleware(middleware.Logging(logger)),
	)

	toolRegistry.Attach(mcpServer)
	resourceRegistry.Attach(mcpServer)

	return &Relay{
		mcp:       mcpServer,
		tools:     toolRegistry,
		resources: resourceRegistry,
		log:       logger,
	}
}

// MCPServer exposes the underlying server, mainly for tests.
func (relay *Relay) MCPServer() *server.MCPServer {
	return relay.mcp
}

// ServeOptions selects the transport. Addr and BaseURL apply to sse and http.
type ServeOptions struct {
	Transport string
	Addr      string
	BaseURL   string
	Stdin     io.Reader
	Stdout    io.Writer
}

// Serve blocks until ctx is cancelled or the transport fails.
func (relay *Relay) Serve(ctx context.Context, opts ServeOptions) error {
	switch opts.Transport {
	case "", TransportStdio:
		return relay.serveStdio(ctx, opts)
	case TransportSSE:
		sse := server.NewSSEServer(relay.mcp, server.WithBaseURL(opts.BaseURL))
		return relay.serveHTTP(ctx, opts.Addr, "sse", sse.Start, sse.Shutdown)
	case TransportHTTP:
		mux := http.NewServeMux()
		streamable := server.NewStreamableHTTPServer(
			relay.mcp,
			server.WithEndpointPath(StreamablePath),
			server.WithLogger(relay.log),
			server.WithStreamableHTTPServer(&http.Server{
				Addr:              opts.Addr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}),
		)
		mux.Handle(StreamablePath, relay.interceptHTTP(streamable))
		return relay.serveHTTP(ctx, opts.Addr, "streamable http", streamable.Start, streamable.Shutdown)
	}

	return fmt.Errorf("unknown transport %q", opts.Transport)
}

func (relay *Relay) serveStdio(ctx context.Context, opts ServeOptions) error {
	stdin, stdout := opts.Stdin, opts.Stdout
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}

	out := &lockedWriter{w: stdout}

	stdio := server.NewStdioServer(relay.mcp)
	stdio.SetErrorLogger(relay.log.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel}))

	relay.log.Info("Relay running on stdio", "tools", len(relay.tools.ListTools()))

	err := stdio.Listen(ctx, relay.filterStdin(ctx, stdin, out), out)
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (relay *Relay) serveHTTP(
	ctx context.Context,
	addr, kind string,
	start func(string) error,
	shutdown func(context.Context) error,
) error {
	errc := make(chan error, 1)
	go func() {
		relay.log.Info("Relay listening", "transport", kind, "addr", addr)
		errc <- start(addr)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down %s transport: %w", kind, err)
	}

	return nil
}
