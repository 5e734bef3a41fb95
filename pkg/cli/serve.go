package cli

import (
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/theapemachine/grok-agent-mcp/pkg/git"
	"github.com/theapemachine/grok-agent-mcp/pkg/relay"
	"github.com/theapemachine/grok-agent-mcp/pkg/resources"
	"github.com/theapemachine/grok-agent-mcp/pkg/tools"
	"github.com/theapemachine/grok-agent-mcp/pkg/upstream"
)

func newServeCommand(a *app, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local MCP relay",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			client := upstream.NewClient(
				a.cfg.App.URL,
				upstream.Credential{Token: a.cfg.App.APIKey},
				&http.Client{Timeout: a.cfg.App.Timeout},
			)

			var diffs tools.DiffSource
			if repo, err := git.Open(a.cfg.Git.RepoPath); err != nil {
				a.logger.Warn("No local repository, git_review_and_commit needs an explicit diff", "error", err)
			} else {
				a.logger.Debug("Using repository", "root", repo.Root())
				diffs = repo
			}

			r := relay.New(
				tools.NewDefaultRegistry(client, diffs),
				resources.NewDefaultRegistry(client),
				a.logger,
			)

			a.logger.Info("Starting relay", "upstream", client.BaseURL(), "transport", a.cfg.Relay.Transport)

			return r.Serve(cmd.Context(), relay.ServeOptions{
				Transport: a.cfg.Relay.Transport,
				Addr:      a.cfg.Relay.Addr,
				BaseURL:   a.cfg.Relay.BaseURL,
			})
		},
	}

	cmd.Flags().String("transport", "stdio", "transport (stdio, sse, http)")
	cmd.Flags().String("addr", ":8080", "listen address for the sse and http transports")
	cmd.Flags().String("base-url", "", "public base URL advertised by the sse transport")

	_ = v.BindPFlag("relay.transport", cmd.Flags().Lookup("transport"))
	_ = v.BindPFlag("relay.addr", cmd.Flags().Lookup("addr"))
	_ = v.BindPFlag("relay.base_url", cmd.Flags().Lookup("base-url"))

	return cmd
}
