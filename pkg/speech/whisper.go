package speech

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// DefaultTranscriptionModel is the transcription model requested by default.
const DefaultTranscriptionModel = "whisper-1"

// WhisperTranscriber calls an OpenAI-compatible audio/transcriptions endpoint.
type WhisperTranscriber struct {
	model  string
	client *openai.Client
}

// NewWhisperTranscriber builds a transcriber. An empty baseURL uses the
// client's default endpoint.
func NewWhisperTranscriber(baseURL, apiKey, model string) (*WhisperTranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("transcription: api key required")
	}
	if model == "" {
		model = DefaultTranscriptionModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	cli := openai.NewClient(opts...)
	return &WhisperTranscriber{model: model, client: &cli}, nil
}

// Transcribe uploads the WAV audio and returns the recognized text.
func (w *WhisperTranscriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	resp, err := w.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(audio), "speech.wav", "audio/wav"),
		Model: openai.AudioModel(w.model),
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
