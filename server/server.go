// Package server is the browser surface of ChatSphere: a single chat page
// plus a small JSON API over the same session.
package server

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/chatsphere/pkg/conversation"
	"github.com/papercomputeco/chatsphere/pkg/input"
	"github.com/papercomputeco/chatsphere/pkg/llm"
	"github.com/papercomputeco/chatsphere/pkg/logger"
	"github.com/papercomputeco/chatsphere/pkg/session"
	"github.com/papercomputeco/chatsphere/pkg/speech"
	"github.com/papercomputeco/chatsphere/pkg/turn"
)

// Server serves the chat page for the process's single session.
type Server struct {
	config   Config
	sessions *session.Holder
	inputs   *input.Sources
	logger   *zap.Logger
	page     *template.Template
	server   *fiber.App
}

// New creates a new Server.
func New(config Config, sessions *session.Holder, inputs *input.Sources, logger *zap.Logger) (*Server, error) {
	page, err := parsePage()
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		// Form values end up in the transcript, so they must not alias
		// fasthttp's reused request buffers.
		Immutable: true,
	})

	s := &Server{
		config:   config,
		sessions: sessions,
		inputs:   inputs,
		logger:   logger,
		page:     page,
		server:   app,
	}

	// Page and form posts
	app.Get("/", s.handlePage)
	app.Post("/turn", s.handleFormTurn)
	app.Post("/speak", s.handleFormSpeak)
	app.Post("/reset", s.handleFormReset)
	app.Post("/theme", s.handleFormTheme)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})

	// JSON API
	api := app.Group("/api")
	api.Get("/session", s.handleGetSession)
	api.Delete("/session", s.handleEndSession)
	api.Get("/conversation", s.handleGetConversation)
	api.Post("/turn", s.handleTurn)
	api.Post("/speak", s.handleSpeak)
	api.Post("/reset", s.handleReset)
	api.Put("/theme", s.handleSetTheme)

	return s, nil
}

// Run starts the server on the configured listening address.
func (s *Server) Run() error {
	s.logger.Info("starting chat server",
		zap.String("listen", s.config.ListenAddr),
		zap.String("persona", s.inputs.Controller().Persona()),
		zap.Bool("speech", s.inputs.SpeechAvailable()),
	)

	return s.server.Listen(s.config.ListenAddr)
}

// Shutdown stops the server, waiting for in-flight requests up to ctx's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.ShutdownWithContext(ctx)
}

// Handler exposes the routes as a net/http handler.
func (s *Server) Handler() http.Handler {
	return adaptor.FiberApp(s.server)
}

func (s *Server) handlePage(c *fiber.Ctx) error {
	body, err := s.renderPage(s.sessions.Get())
	if err != nil {
		s.logger.Error("failed to render page", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "internal error"})
	}

	c.Type("html", "utf-8")
	return c.Send(body)
}

func (s *Server) handleFormTurn(c *fiber.Ctx) error {
	sess := s.sessions.Get()
	s.submit(c.UserContext(), sess, c.FormValue("query"))
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (s *Server) handleFormSpeak(c *fiber.Ctx) error {
	// Failures are surfaced on the page as a notice.
	outcome, err := s.inputs.Speak(c.UserContext(), s.sessions.Get())
	if err != nil {
		s.logger.Debug("speech input failed", zap.Error(err))
	} else {
		s.logger.Debug("spoken turn handled",
			zap.Stringer("state", outcome.State),
			zap.Int("appended", outcome.Appended),
		)
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (s *Server) handleFormReset(c *fiber.Ctx) error {
	s.sessions.Get().Reset()
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (s *Server) handleFormTheme(c *fiber.Ctx) error {
	theme, err := session.ParseTheme(c.FormValue("theme"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: err.Error()})
	}
	s.sessions.Get().SetTheme(theme)
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (s *Server) submit(ctx context.Context, sess *session.Session, query string) turn.Outcome {
	startTime := time.Now()
	outcome := s.inputs.SubmitText(ctx, sess, query)
	if !outcome.Skipped() {
		s.logger.Debug("turn handled",
			zap.Stringer("state", outcome.State),
			zap.String("query_preview", logger.Truncate(outcome.Query, 50)),
			zap.Int("appended", outcome.Appended),
			zap.Duration("duration", time.Since(startTime)),
		)
	}
	return outcome
}

// sessionResponse describes the active session.
type sessionResponse struct {
	ID              string    `json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	Persona         string    `json:"persona"`
	Theme           string    `json:"theme"`
	SpeechAvailable bool      `json:"speech_available"`
	SpeechReason    string    `json:"speech_reason,omitempty"`
	Messages        int       `json:"messages"`
	Head            string    `json:"head,omitempty"`
}

// conversationResponse is the transcript with its digest chain.
type conversationResponse struct {
	Head    string               `json:"head,omitempty"`
	Count   int                  `json:"count"`
	Entries []conversation.Entry `json:"entries"`
}

// turnRequest is the body of POST /api/turn.
type turnRequest struct {
	Query string `json:"query"`
}

// turnResponse reports the outcome of one turn.
type turnResponse struct {
	State    string          `json:"state"`
	Query    string          `json:"query,omitempty"`
	Reply    string          `json:"reply,omitempty"`
	Error    string          `json:"error,omitempty"`
	Appended int             `json:"appended"`
	Head     string          `json:"head,omitempty"`
	Notice   *session.Notice `json:"notice,omitempty"`
}

// themeRequest is the body of PUT /api/theme.
type themeRequest struct {
	Theme string `json:"theme"`
}

func (s *Server) handleGetSession(c *fiber.Ctx) error {
	sess := s.sessions.Get()
	capability := s.inputs.SpeechCapability()

	return c.JSON(sessionResponse{
		ID:              sess.ID.String(),
		CreatedAt:       sess.CreatedAt,
		Persona:         s.inputs.Controller().Persona(),
		Theme:           string(sess.Theme()),
		SpeechAvailable: capability.Available,
		SpeechReason:    capability.Reason,
		Messages:        sess.Conversation.Len(),
		Head:            sess.Conversation.Head(),
	})
}

func (s *Server) handleEndSession(c *fiber.Ctx) error {
	s.sessions.End()
	s.logger.Info("session ended")
	return c.SendStatus(fiber.StatusNoContent)
}

// handleGetConversation returns the transcript. The head digest doubles as
// the ETag, so an unchanged transcript answers 304.
func (s *Server) handleGetConversation(c *fiber.Ctx) error {
	entries := s.sessions.Get().Conversation.Entries()

	head := ""
	if n := len(entries); n > 0 {
		head = entries[n-1].Hash
	}

	etag := `"` + head + `"`
	c.Set(fiber.HeaderETag, etag)
	if match := c.Get(fiber.HeaderIfNoneMatch); match != "" && match == etag {
		return c.SendStatus(fiber.StatusNotModified)
	}

	return c.JSON(conversationResponse{
		Head:    head,
		Count:   len(entries),
		Entries: entries,
	})
}

func (s *Server) handleTurn(c *fiber.Ctx) error {
	var req turnRequest
	if err := c.BodyParser(&req); err != nil {
		s.logger.Error("failed to parse request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}

	sess := s.sessions.Get()
	outcome := s.submit(c.UserContext(), sess, req.Query)
	return s.writeOutcome(c, sess, outcome)
}

func (s *Server) handleSpeak(c *fiber.Ctx) error {
	sess := s.sessions.Get()

	outcome, err := s.inputs.Speak(c.UserContext(), sess)
	if err != nil {
		status := fiber.StatusUnprocessableEntity
		if errors.Is(err, speech.ErrUnavailable) {
			status = fiber.StatusNotFound
		}
		sess.TakeNotice()
		return c.Status(status).JSON(llm.ErrorResponse{Error: err.Error()})
	}

	return s.writeOutcome(c, sess, outcome)
}

// writeOutcome answers a turn. Backend failures are recorded in the
// transcript and reported as 502 with the same error text.
func (s *Server) writeOutcome(c *fiber.Ctx, sess *session.Session, outcome turn.Outcome) error {
	resp := turnResponse{
		State:    outcome.State.String(),
		Query:    outcome.Query,
		Reply:    outcome.Reply,
		Appended: outcome.Appended,
		Head:     sess.Conversation.Head(),
		Notice:   sess.TakeNotice(),
	}

	if outcome.Err != nil {
		resp.Error = outcome.Err.Error()
		return c.Status(fiber.StatusBadGateway).JSON(resp)
	}
	return c.JSON(resp)
}

func (s *Server) handleReset(c *fiber.Ctx) error {
	s.sessions.Get().Reset()
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleSetTheme(c *fiber.Ctx) error {
	var req themeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}

	theme, err := session.ParseTheme(req.Theme)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: err.Error()})
	}

	s.sessions.Get().SetTheme(theme)
	return c.JSON(map[string]string{"theme": string(theme)})
}
