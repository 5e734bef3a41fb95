package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/theapemachine/grok-agent-mcp/pkg/tools"
	"github.com/theapemachine/grok-agent-mcp/pkg/upstream"
)

func newToolsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the tool descriptors as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Listing never calls the backend.
			out, err := tools.Descriptor(tools.NewDefaultRegistry(nil, nil).ListTools())
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
}

func newContractCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "contract",
		Short: "Print the versioned request and reply schemas",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := json.MarshalIndent(upstream.NewContract(), "", "  ")
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
}
