// Package mcpserver exposes a ChatSphere session to agent hosts as MCP tools.
package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/papercomputeco/chatsphere/pkg/input"
	"github.com/papercomputeco/chatsphere/pkg/logger"
	"github.com/papercomputeco/chatsphere/pkg/session"
)

const (
	serverName    = "chatsphere"
	serverVersion = "v0.1.0"
)

// AskInput is the argument of the ask tool.
type AskInput struct {
	Query string `json:"query" jsonschema:"the message to send to the assistant"`
}

// AskOutput is the result of the ask tool.
type AskOutput struct {
	State    string `json:"state" jsonschema:"completed, failed, or idle when the query was blank"`
	Reply    string `json:"reply,omitempty" jsonschema:"the assistant's normalized reply"`
	Error    string `json:"error,omitempty" jsonschema:"the backend failure, also recorded in the transcript"`
	Messages int    `json:"messages" jsonschema:"number of utterances in the transcript"`
	Head     string `json:"head,omitempty" jsonschema:"digest of the transcript after this turn"`
}

// ResetInput is the argument of the reset tool.
type ResetInput struct{}

// ResetOutput is the result of the reset tool.
type ResetOutput struct {
	Cleared int `json:"cleared" jsonschema:"number of utterances removed"`
}

// Server serves the ask and reset tools for one session holder.
type Server struct {
	sessions *session.Holder
	inputs   *input.Sources
	logger   *zap.Logger
	server   *mcp.Server
}

// New creates a new Server.
func New(sessions *session.Holder, inputs *input.Sources, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		sessions: sessions,
		inputs:   inputs,
		logger:   logger,
		server:   mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil),
	}

	persona := inputs.Controller().Persona()
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: fmt.Sprintf("Send a message to %s and get its reply. The exchange is kept in the session transcript.", persona),
	}, s.handleAsk)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reset",
		Description: "Clear the session transcript.",
	}, s.handleReset)

	return s
}

// MCP returns the underlying server, for connecting custom transports.
func (s *Server) MCP() *mcp.Server {
	return s.server
}

// Run serves over stdin/stdout until the client disconnects or ctx ends.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting MCP server", zap.String("transport", "stdio"))

	if err := s.server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, in AskInput) (*mcp.CallToolResult, AskOutput, error) {
	sess := s.sessions.Get()
	outcome := s.inputs.SubmitText(ctx, sess, in.Query)

	out := AskOutput{
		State:    outcome.State.String(),
		Reply:    outcome.Reply,
		Messages: sess.Conversation.Len(),
		Head:     sess.Conversation.Head(),
	}
	if outcome.Err != nil {
		out.Error = outcome.Err.Error()
	}

	s.logger.Debug("ask tool handled",
		zap.String("state", out.State),
		zap.String("query_preview", logger.Truncate(outcome.Query, 50)),
		zap.Int("messages", out.Messages),
	)
	return nil, out, nil
}

func (s *Server) handleReset(_ context.Context, _ *mcp.CallToolRequest, _ ResetInput) (*mcp.CallToolResult, ResetOutput, error) {
	sess := s.sessions.Get()
	cleared := sess.Conversation.Len()
	sess.Reset()

	s.logger.Debug("reset tool handled", zap.Int("cleared", cleared))
	return nil, ResetOutput{Cleared: cleared}, nil
}
