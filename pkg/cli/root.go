// Package cli provides the command-line interface for the relay and the
// remote endpoint set.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/theapemachine/grok-agent-mcp/pkg/config"
	"github.com/theapemachine/grok-agent-mcp/pkg/logging"
)

// app carries what PersistentPreRunE resolves for the subcommands.
type app struct {
	cfgFile string
	cfg     *config.Config
	logger  *log.Logger
}

// NewRootCommand builds the command tree. Flags bind into the process-wide
// viper instance that config.Load reads.
func NewRootCommand() *cobra.Command {
	a := &app{}
	v := config.Viper()

	root := &cobra.Command{
		Use:   "grok-agent-mcp",
		Short: "MCP relay for a remote coding agent",
		Long: `grok-agent-mcp exposes query_agent, git_review_and_commit and
process_browser_content as MCP tools, plus the project://history and
project://context resources, and forwards every call to a remote app.

Run 'grok-agent-mcp serve' next to your editor and 'grok-agent-mcp upstream'
wherever the remote app should live.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(v)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default: ./grok-agent-mcp.yaml)")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "text", "log format (text, json, logfmt)")

	_ = v.BindPFlag("log.level", root.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("log.format", root.PersistentFlags().Lookup("log-format"))

	root.AddCommand(
		newServeCommand(a, v),
		newUpstreamCommand(a, v),
		newToolsCommand(),
		newContractCommand(),
	)

	return root
}

// Execute runs the root command with a context for graceful shutdown.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func (a *app) init(v *viper.Viper) error {
	if err := readConfigFile(v, a.cfgFile); err != nil {
		return err
	}

	a.cfg = config.Load()

	logger, err := logging.New(logging.Options{
		Level:  a.cfg.Log.Level,
		Format: a.cfg.Log.Format,
		Prefix: "grok-agent-mcp",
	})
	if err != nil {
		return err
	}
	a.logger = logger

	return nil
}

func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("grok-agent-mcp")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "grok-agent-mcp"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	return nil
}
