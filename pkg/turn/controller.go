// Package turn runs one chat interaction: read the pending input, ask the
// backend, normalize the reply and record the exchange.
package turn

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/chatsphere/pkg/conversation"
	"github.com/papercomputeco/chatsphere/pkg/logger"
	"github.com/papercomputeco/chatsphere/pkg/session"
)

// State is a step of the turn state machine.
type State int

const (
	Idle State = iota
	AwaitingBackend
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingBackend:
		return "awaiting_backend"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrorMarker prefixes the assistant entry recorded for a failed turn.
const ErrorMarker = "⚠️ Error: "

// Outcome describes what a call to Submit did.
type Outcome struct {
	// State is the terminal branch reached: Completed, Failed, or Idle when
	// the input was empty and no turn ran.
	State State

	// Query is the trimmed input that was sent.
	Query string

	// Reply is the normalized assistant text on success.
	Reply string

	// Appended counts utterances added to the conversation.
	Appended int

	// Err is the backend failure, if any. It has already been recorded in
	// the transcript.
	Err error
}

// Skipped reports whether the input was empty and nothing happened.
func (o Outcome) Skipped() bool {
	return o.State == Idle
}

// Option configures a Controller.
type Option func(*Controller)

// WithRecordUserOnFailure sets whether a failed turn records the user's
// utterance before the error entry. Enabled by default.
func WithRecordUserOnFailure(record bool) Option {
	return func(c *Controller) { c.recordUserOnFailure = record }
}

// WithClock replaces time.Now for utterance timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithTransitionHook is called on every state change.
func WithTransitionHook(hook func(from, to State)) Option {
	return func(c *Controller) { c.hook = hook }
}

// WithLogger sets the controller's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// Controller is the only writer of turn results to a session.
type Controller struct {
	pipeline            Pipeline
	recordUserOnFailure bool
	now                 func() time.Time
	hook                func(from, to State)
	logger              *zap.Logger
}

// NewController builds a Controller around pipeline.
func NewController(pipeline Pipeline, opts ...Option) *Controller {
	c := &Controller{
		pipeline:            pipeline,
		recordUserOnFailure: true,
		now:                 time.Now,
		logger:              zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit runs one turn against the session's pending input. Turns on the
// same session never overlap.
func (c *Controller) Submit(ctx context.Context, sess *session.Session) Outcome {
	unlock := sess.LockTurn()
	defer unlock()

	return c.run(ctx, sess)
}

// SubmitText places text in the pending slot and runs a turn, the same
// entry point every input source uses.
func (c *Controller) SubmitText(ctx context.Context, sess *session.Session, text string) Outcome {
	unlock := sess.LockTurn()
	defer unlock()

	sess.SetPending(text)
	return c.run(ctx, sess)
}

func (c *Controller) run(ctx context.Context, sess *session.Session) Outcome {
	query := strings.TrimSpace(sess.Pending())
	if query == "" {
		return Outcome{State: Idle}
	}

	c.transition(Idle, AwaitingBackend)
	defer sess.ClearPending()

	startTime := time.Now()
	reply, err := c.pipeline.Run(ctx, query)
	log := sess.Conversation

	if err != nil {
		c.logger.Warn("turn failed",
			zap.String("session", sess.ID.String()),
			zap.String("query_preview", logger.Truncate(query, 50)),
			zap.Duration("duration", time.Since(startTime)),
			zap.Error(err),
		)

		appended := 0
		if c.recordUserOnFailure {
			log.Append(conversation.NewUtterance(conversation.User, query, c.now()))
			appended++
		}
		log.Append(conversation.NewUtterance(conversation.Assistant, ErrorMarker+err.Error(), c.now()))
		appended++

		c.transition(AwaitingBackend, Failed)
		c.transition(Failed, Idle)
		return Outcome{State: Failed, Query: query, Appended: appended, Err: err}
	}

	log.Append(
		conversation.NewUtterance(conversation.User, query, c.now()),
		conversation.NewUtterance(conversation.Assistant, reply, c.now()),
	)

	c.logger.Info("turn completed",
		zap.String("session", sess.ID.String()),
		zap.String("query_preview", logger.Truncate(query, 50)),
		zap.String("reply_preview", logger.Truncate(reply, 50)),
		zap.Duration("duration", time.Since(startTime)),
	)

	c.transition(AwaitingBackend, Completed)
	c.transition(Completed, Idle)
	return Outcome{State: Completed, Query: query, Reply: reply, Appended: 2}
}

func (c *Controller) transition(from, to State) {
	c.logger.Debug("turn state", zap.Stringer("from", from), zap.Stringer("to", to))
	if c.hook != nil {
		c.hook(from, to)
	}
}

// Persona is the assistant name shown next to replies.
func (c *Controller) Persona() string {
	return c.pipeline.Template.Persona()
}
