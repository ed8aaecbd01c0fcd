package askcmder

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/chatsphere/cmd/chatsphere/cliconfig"
	"github.com/papercomputeco/chatsphere/pkg/app"
	"github.com/papercomputeco/chatsphere/pkg/conversation"
	"github.com/papercomputeco/chatsphere/pkg/logger"
	"github.com/papercomputeco/chatsphere/pkg/session"
)

const askLongDesc string = `Ask ChatSphere a single question.

Runs exactly one turn against a fresh session and prints the
transcript. A failed backend call is printed as the assistant's
error entry and the command exits non-zero.

Examples:
  chatsphere ask "What is the capital of France?"
  chatsphere ask --backend hosted --model bigscience/bloom-560m hello there`

const askShortDesc string = "Ask a single question"

type askCommander struct{}

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <query>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, strings.Join(args, " "))
		},
	}

	return cmd
}

func (c *askCommander) run(ctx context.Context, cmd *cobra.Command, query string) error {
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

	sess := session.New(cfg.Theme())
	outcome := deps.Inputs.SubmitText(ctx, sess, query)

	writeTranscript(cmd.OutOrStdout(), deps.Controller.Persona(), sess.Conversation.Utterances())

	if outcome.Err != nil {
		cmd.SilenceUsage = true
		return fmt.Errorf("turn failed: %w", outcome.Err)
	}
	return nil
}

func writeTranscript(w io.Writer, persona string, utterances []conversation.Utterance) {
	for i, u := range utterances {
		if i > 0 {
			fmt.Fprintln(w)
		}
		name := "You"
		if u.Sender == conversation.Assistant {
			name = persona
		}
		fmt.Fprintf(w, "%s %s [%s]\n%s\n", u.Sender.Glyph(), name, u.Clock(), u.Text)
	}
}
