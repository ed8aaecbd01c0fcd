package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/chatsphere/pkg/llm"
	"github.com/papercomputeco/chatsphere/pkg/logger"
)

// DefaultLocalURL is where a local Ollama server listens by default.
const DefaultLocalURL = "http://localhost:11434"

// Local talks to a locally addressable, Ollama-compatible model server.
type Local struct {
	baseURL    string
	params     Params
	httpClient *http.Client
	logger     *zap.Logger
}

// NewLocal builds a Local backend. An empty baseURL uses DefaultLocalURL.
func NewLocal(baseURL string, params Params, logger *zap.Logger) (*Local, error) {
	if params.Model == "" {
		return nil, fmt.Errorf("local backend: model name required")
	}
	if baseURL == "" {
		baseURL = DefaultLocalURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Local{
		baseURL: strings.TrimRight(baseURL, "/"),
		params:  params,
		logger:  logger,
		httpClient: &http.Client{
			// Local models can be slow to load and generate
			Timeout: 5 * time.Minute,
		},
	}, nil
}

// Name implements Backend.
func (l *Local) Name() string { return string(KindLocal) }

// Generate sends one non-streaming /api/chat request.
func (l *Local) Generate(ctx context.Context, messages []llm.Message) (string, error) {
	resp, err := l.chat(ctx, messages)
	if err != nil {
		return "", &Error{Backend: l.Name(), Model: l.params.Model, Cause: err}
	}
	if resp.Message.Content == "" {
		return "", &Error{Backend: l.Name(), Model: l.params.Model, Cause: ErrEmptyCompletion}
	}
	return resp.Message.Content, nil
}

func (l *Local) chat(ctx context.Context, messages []llm.Message) (*llm.ChatResponse, error) {
	req := llm.NewChatRequest(l.params.Model, messages, llm.NewOptions(l.params.Temperature, l.params.MaxTokens))

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := l.baseURL + "/api/chat"
	l.logger.Debug("sending request to local model server",
		zap.String("url", url),
		zap.String("model", l.params.Model),
		zap.Int("body_size", len(reqBody)),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	startTime := time.Now()
	httpResp, err := l.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		var errResp llm.ErrorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return nil, fmt.Errorf("model server returned %d: %s", httpResp.StatusCode, errResp.Error)
		}
		return nil, fmt.Errorf("model server returned %d: %s", httpResp.StatusCode, string(body))
	}

	var resp llm.ChatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	l.logger.Debug("received response from local model server",
		zap.String("model", resp.Model),
		zap.String("content_preview", logger.Truncate(resp.Message.Content, 100)),
		zap.Int("eval_count", resp.EvalCount),
		zap.Duration("duration", time.Since(startTime)),
	)

	return &resp, nil
}
