package backend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"github.com/papercomputeco/chatsphere/pkg/llm"
	"github.com/papercomputeco/chatsphere/pkg/logger"
)

// DefaultHostedURL is the Hugging Face inference router, which speaks the
// OpenAI chat-completions protocol.
const DefaultHostedURL = "https://router.huggingface.co/v1"

// Hosted calls an OpenAI-compatible chat-completions endpoint with an API
// credential.
type Hosted struct {
	params Params
	client *openai.Client
	logger *zap.Logger
}

// NewHosted builds a Hosted backend. Client-side retries are disabled.
func NewHosted(baseURL, apiKey string, params Params, logger *zap.Logger) (*Hosted, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("hosted backend: api key required")
	}
	if params.Model == "" {
		return nil, fmt.Errorf("hosted backend: model required")
	}
	if baseURL == "" {
		baseURL = DefaultHostedURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cli := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	)
	return &Hosted{
		params: params,
		client: &cli,
		logger: logger,
	}, nil
}

// Name implements Backend.
func (h *Hosted) Name() string { return string(KindHosted) }

// Generate sends one chat-completions request.
func (h *Hosted) Generate(ctx context.Context, messages []llm.Message) (string, error) {
	startTime := time.Now()

	resp, err := h.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(h.params.Model),
		Messages:    toParams(messages),
		Temperature: openai.Float(h.params.Temperature),
		MaxTokens:   openai.Int(int64(h.params.MaxTokens)),
	})
	if err != nil {
		return "", &Error{Backend: h.Name(), Model: h.params.Model, Cause: err}
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &Error{Backend: h.Name(), Model: h.params.Model, Cause: ErrEmptyCompletion}
	}

	content := resp.Choices[0].Message.Content
	h.logger.Debug("received completion from hosted backend",
		zap.String("model", h.params.Model),
		zap.String("content_preview", logger.Truncate(content, 100)),
		zap.Duration("duration", time.Since(startTime)),
	)
	return content, nil
}

func toParams(messages []llm.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem:
			out = append(out, openai.ChatCompletionMessageParamUnion{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(m.Content),
					},
				},
			})
		case llm.RoleAssistant:
			out = append(out, openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Content: openai.ChatCompletionAssistantMessageParamContentUnion{
						OfString: openai.String(m.Content),
					},
				},
			})
		default:
			out = append(out, openai.ChatCompletionMessageParamUnion{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(m.Content),
					},
				},
			})
		}
	}
	return out
}
