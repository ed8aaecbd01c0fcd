package chatcmder

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/papercomputeco/chatsphere/cmd/chatsphere/cliconfig"
	"github.com/papercomputeco/chatsphere/pkg/app"
	"github.com/papercomputeco/chatsphere/pkg/logger"
	"github.com/papercomputeco/chatsphere/pkg/session"
	"github.com/papercomputeco/chatsphere/tui"
)

const chatLongDesc string = `Chat with ChatSphere in the terminal.

Opens a full-screen chat with the same controls as the web page:
  enter    send the query
  ctrl+t   switch between dark and light theme
  ctrl+r   reset the conversation
  ctrl+s   speak a query (when a microphone is available)
  esc      quit

Logs go to log.file from the config, or nowhere.

Examples:
  chatsphere chat
  chatsphere chat --theme auto --backend hosted`

const chatShortDesc string = "Chat in the terminal"

// themeAuto picks the theme from the terminal background.
const themeAuto = "auto"

var errNotTerminal = errors.New("chat needs an interactive terminal; use \"chatsphere ask\" instead")

type chatCommander struct {
	theme string
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.theme, "theme", "t", "", "Theme: dark, light or auto (default from config)")

	return cmd
}

func (c *chatCommander) run(ctx context.Context, cmd *cobra.Command) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errNotTerminal
	}

	cfg, err := cliconfig.Load(cmd)
	if err != nil {
		return err
	}

	theme, err := c.resolveTheme(cfg.Theme())
	if err != nil {
		return err
	}

	log, closeLog, err := logger.NewFileLogger(cfg.Log.Debug, cfg.Log.File)
	if err != nil {
		return fmt.Errorf("could not open log file: %w", err)
	}
	defer func() { _ = closeLog() }()

	deps, err := app.Build(cfg, log)
	if err != nil {
		return err
	}

	log.Info("starting terminal chat", zap.String("theme", string(theme)))
	sess := session.New(theme)
	return tui.Run(ctx, tui.New(ctx, sess, deps.Inputs))
}

func (c *chatCommander) resolveTheme(configured session.Theme) (session.Theme, error) {
	switch c.theme {
	case "":
		return configured, nil
	case themeAuto:
		return tui.DetectTheme(), nil
	default:
		t, err := session.ParseTheme(c.theme)
		if err != nil {
			return "", fmt.Errorf("invalid --theme: %w", err)
		}
		return t, nil
	}
}
