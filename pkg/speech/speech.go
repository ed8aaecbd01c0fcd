// Package speech captures one spoken query from the microphone and turns it
// into text. The capability is optional and detected once at startup.
package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable is returned when speech input is not supported here.
var ErrUnavailable = errors.New("microphone support is not available")

// ErrNoSpeech is the cause recorded when a recording yields no words.
var ErrNoSpeech = errors.New("could not understand audio")

// Error is a failed recognition: capture failed, the audio was ambiguous,
// or the transcription service was unreachable.
type Error struct {
	Stage string // "capture" or "transcribe"
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Capability records whether speech input can be offered.
type Capability struct {
	Available bool
	Reason    string
}

// Capturer records audio until the speaker stops.
type Capturer interface {
	Capture(ctx context.Context) ([]byte, error)
}

// Transcriber turns recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Recognizer listens once and returns the transcript.
type Recognizer interface {
	Listen(ctx context.Context) (string, error)
}

// Service pairs a Capturer with a Transcriber.
type Service struct {
	capturer    Capturer
	transcriber Transcriber
}

// NewService builds a Service.
func NewService(c Capturer, t Transcriber) *Service {
	return &Service{capturer: c, transcriber: t}
}

// Listen blocks while recording, then transcribes. Every failure comes back
// as an *Error.
func (s *Service) Listen(ctx context.Context) (string, error) {
	audio, err := s.capturer.Capture(ctx)
	if err != nil {
		return "", &Error{Stage: "capture", Cause: err}
	}
	if len(audio) == 0 {
		return "", &Error{Stage: "capture", Cause: ErrNoSpeech}
	}

	text, err := s.transcriber.Transcribe(ctx, audio)
	if err != nil {
		return "", &Error{Stage: "transcribe", Cause: err}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", &Error{Stage: "transcribe", Cause: ErrNoSpeech}
	}
	return text, nil
}
