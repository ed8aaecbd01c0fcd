// Package input routes typed and spoken queries into the turn controller.
package input

import (
	"context"

	"go.uber.org/zap"

	"github.com/papercomputeco/chatsphere/pkg/session"
	"github.com/papercomputeco/chatsphere/pkg/speech"
	"github.com/papercomputeco/chatsphere/pkg/turn"
)

// User-facing speech messages.
const (
	MsgListening    = "🎙️ Listening... Speak now..."
	MsgTranscribed  = "✅ Transcribed successfully!"
	MsgUnavailable  = "🎙️ Microphone support is not available."
	msgFailedPrefix = "Transcription failed: "
)

// Sources is the set of input paths available to a UI surface.
type Sources struct {
	controller *turn.Controller
	recognizer speech.Recognizer
	capability speech.Capability
	logger     *zap.Logger
}

// New builds Sources. recognizer may be nil when capability is unavailable.
func New(controller *turn.Controller, recognizer speech.Recognizer, capability speech.Capability, logger *zap.Logger) *Sources {
	if recognizer == nil {
		capability.Available = false
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sources{
		controller: controller,
		recognizer: recognizer,
		capability: capability,
		logger:     logger,
	}
}

// Controller exposes the underlying turn controller.
func (s *Sources) Controller() *turn.Controller {
	return s.controller
}

// SpeechAvailable reports the capability flag detected at startup.
func (s *Sources) SpeechAvailable() bool {
	return s.capability.Available
}

// SpeechCapability returns the detected capability and its reason.
func (s *Sources) SpeechCapability() speech.Capability {
	return s.capability
}

// SubmitText runs a turn for typed input.
func (s *Sources) SubmitText(ctx context.Context, sess *session.Session, text string) turn.Outcome {
	return s.controller.SubmitText(ctx, sess, text)
}

// Speak listens once and, on success, runs a turn with the transcript. On
// failure it sets an inline notice, runs no turn and returns the error.
func (s *Sources) Speak(ctx context.Context, sess *session.Session) (turn.Outcome, error) {
	if !s.capability.Available {
		sess.Notify(session.NoticeWarning, MsgUnavailable)
		return turn.Outcome{State: turn.Idle}, speech.ErrUnavailable
	}

	text, err := s.recognizer.Listen(ctx)
	if err != nil {
		s.logger.Warn("speech recognition failed", zap.Error(err))
		sess.Notify(session.NoticeError, msgFailedPrefix+err.Error())
		return turn.Outcome{State: turn.Idle}, err
	}

	sess.Notify(session.NoticeSuccess, MsgTranscribed)
	return s.controller.SubmitText(ctx, sess, text), nil
}
