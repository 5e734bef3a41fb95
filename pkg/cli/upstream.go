package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/theapemachine/grok-agent-mcp/pkg/agent"
	"github.com/theapemachine/grok-agent-mcp/pkg/api"
	"github.com/theapemachine/grok-agent-mcp/pkg/git"
	"github.com/theapemachine/grok-agent-mcp/pkg/scrape"
	"github.com/theapemachine/grok-agent-mcp/pkg/tools"
)

func newUpstreamCommand(a *app, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upstream",
		Short: "Run the remote endpoint set the relay forwards to",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			model, err := agent.New(a.cfg)
			if err != nil {
				return err
			}

			opts := api.ServiceOptions{
				Agent:   model,
				Scraper: scrape.New(a.cfg.Scrape.Browser, a.logger),
				Project: api.Project{
					Preferences: a.cfg.Project.Preferences,
					Notes:       a.cfg.Project.Notes,
					Conventions: a.cfg.Project.Conventions,
					Team:        a.cfg.Project.Team,
				},
				MaxChars: a.cfg.Scrape.MaxChars,
				Logger:   a.logger,
			}

			var diffs tools.DiffSource
			if repo, err := git.Open(a.cfg.Git.RepoPath); err != nil {
				a.logger.Warn("No repository, project history will be empty", "error", err)
			} else {
				opts.History = repo
				diffs = repo
			}

			server := api.New(api.Options{
				Service: api.NewService(opts),
				Diffs:   diffs,
				Token:   a.cfg.API.Token,
				Logger:  a.logger,
			})

			a.logger.Info("Starting remote endpoints", "agent", a.cfg.Agent.Provider, "browser", a.cfg.Scrape.Browser)

			return server.ListenAndServe(cmd.Context(), a.cfg.API.Addr)
		},
	}

	cmd.Flags().String("addr", ":3000", "listen address")
	_ = v.BindPFlag("api.addr", cmd.Flags().Lookup("addr"))

	return cmd
}
