package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/chatsphere/cmd/chatsphere/ask"
	chatcmder "github.com/papercomputeco/chatsphere/cmd/chatsphere/chat"
	"github.com/papercomputeco/chatsphere/cmd/chatsphere/cliconfig"
	mcpcmder "github.com/papercomputeco/chatsphere/cmd/chatsphere/mcp"
	servecmder "github.com/papercomputeco/chatsphere/cmd/chatsphere/serve"
)

const rootLongDesc string = `ChatSphere is a conversational assistant.

Each query is wrapped in a persona prompt, sent to a hosted or local
language model, and the reply is cleaned up and kept in the session
transcript. The same session can be driven from a web page, the
terminal, a single command, or an MCP agent host.`

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "chatsphere",
		Short:         "ChatSphere conversational assistant",
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cliconfig.AddPersistentFlags(cmd)

	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(mcpcmder.NewMCPCmd())

	return cmd
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
