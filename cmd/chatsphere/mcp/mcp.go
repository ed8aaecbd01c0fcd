package mcpcmder

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/chatsphere/cmd/chatsphere/cliconfig"
	"github.com/papercomputeco/chatsphere/mcpserver"
	"github.com/papercomputeco/chatsphere/pkg/app"
	"github.com/papercomputeco/chatsphere/pkg/logger"
	"github.com/papercomputeco/chatsphere/pkg/session"
)

const mcpLongDesc string = `Serve ChatSphere as MCP tools over stdio.

Exposes two tools to an agent host:
  ask     send a query and get the normalized reply
  reset   clear the session transcript

Stdout carries the protocol; logs go to stderr.

Examples:
  chatsphere mcp
  chatsphere mcp --backend hosted`

const mcpShortDesc string = "Serve MCP tools over stdio"

type mcpCommander struct{}

func NewMCPCmd() *cobra.Command {
	cmder := &mcpCommander{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: mcpShortDesc,
		Long:  mcpLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	return cmd
}

func (c *mcpCommander) run(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := cliconfig.Load(cmd)
	if err != nil {
		return err
	}

	log := logger.NewWriterLogger(cfg.Log.Debug, cmd.ErrOrStderr())
	defer func() { _ = log.Sync() }()

	deps, err := app.Build(cfg, log)
	if err != nil {
		return err
	}

	srv := mcpserver.New(session.NewHolder(cfg.Theme()), deps.Inputs, log)
	return srv.Run(ctx)
}
