// Package app assembles the components every ChatSphere surface shares.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/papercomputeco/chatsphere/pkg/backend"
	"github.com/papercomputeco/chatsphere/pkg/config"
	"github.com/papercomputeco/chatsphere/pkg/input"
	"github.com/papercomputeco/chatsphere/pkg/normalize"
	"github.com/papercomputeco/chatsphere/pkg/prompt"
	"github.com/papercomputeco/chatsphere/pkg/speech"
	"github.com/papercomputeco/chatsphere/pkg/turn"
)

// Deps bundles the runtime dependencies of a surface.
type Deps struct {
	Config     config.Config
	Log        *zap.Logger
	Backend    backend.Backend
	Controller *turn.Controller
	Inputs     *input.Sources
}

// Build validates cfg and wires the backend, pipeline, controller and
// input sources.
func Build(cfg config.Config, log *zap.Logger) (Deps, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return Deps{}, fmt.Errorf("invalid configuration: %w", err)
	}

	b, err := BuildBackend(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize backend: %w", err)
	}
	return BuildWithBackend(cfg, log, b), nil
}

// BuildWithBackend wires everything around an existing backend.
func BuildWithBackend(cfg config.Config, log *zap.Logger, b backend.Backend) Deps {
	if log == nil {
		log = zap.NewNop()
	}

	controller := turn.NewController(
		turn.Pipeline{
			Template:   prompt.New(cfg.Persona),
			Backend:    b,
			Normalizer: normalize.New(),
		},
		turn.WithRecordUserOnFailure(cfg.RecordUserOnFailure),
		turn.WithLogger(log),
	)

	recognizer, capability := buildSpeech(cfg, log)

	return Deps{
		Config:     cfg,
		Log:        log,
		Backend:    b,
		Controller: controller,
		Inputs:     input.New(controller, recognizer, capability, log),
	}
}

// BuildBackend picks the adapter named by backend.kind.
func BuildBackend(cfg config.Config, log *zap.Logger) (backend.Backend, error) {
	params := cfg.BackendParams()

	switch backend.Kind(cfg.Backend.Kind) {
	case backend.KindHosted:
		b, err := backend.NewHosted(cfg.Backend.URL, cfg.Backend.APIKey, params, log)
		if err != nil {
			return nil, err
		}
		log.Info("using hosted backend", zap.String("model", params.Model), zap.String("url", orDefault(cfg.Backend.URL, backend.DefaultHostedURL)))
		return b, nil
	case backend.KindLocal:
		b, err := backend.NewLocal(cfg.Backend.URL, params, log)
		if err != nil {
			return nil, err
		}
		log.Info("using local backend", zap.String("model", params.Model), zap.String("url", orDefault(cfg.Backend.URL, backend.DefaultLocalURL)))
		return b, nil
	default:
		return nil, fmt.Errorf("invalid backend kind: %s (valid options: hosted, local)", cfg.Backend.Kind)
	}
}

// buildSpeech detects the capability once. Failures only disable speech.
func buildSpeech(cfg config.Config, log *zap.Logger) (speech.Recognizer, speech.Capability) {
	capturer := speech.NewSoxCapturer(cfg.Speech.Command)

	var transcriber speech.Transcriber
	if cfg.Speech.APIKey != "" {
		t, err := speech.NewWhisperTranscriber(cfg.Speech.URL, cfg.Speech.APIKey, cfg.Speech.Model)
		if err != nil {
			log.Warn("speech transcriber unavailable", zap.Error(err))
		} else {
			transcriber = t
		}
	}

	capability := speech.Detect(cfg.Speech.Enabled, capturer, transcriber)
	if !capability.Available {
		log.Info("speech input disabled", zap.String("reason", capability.Reason))
		return nil, capability
	}

	log.Info("speech input enabled", zap.String("recorder", cfg.Speech.Command))
	return speech.NewService(capturer, transcriber), capability
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
