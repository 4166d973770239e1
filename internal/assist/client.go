// Package assist talks to an OpenAI-compatible chat completion endpoint and
// exposes the response as a cancelable stream of text deltas.
package assist

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"taskflow-cli/internal/model"
)

// Message is one chat turn on the wire.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Client issues streaming chat completion requests.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewClient builds a client from the stored assistant settings.
func NewClient(s model.UserSettings) *Client {
	base := strings.TrimRight(strings.TrimSpace(s.OpenAIBaseURL), "/")
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	mdl := strings.TrimSpace(s.OpenAIModel)
	if mdl == "" {
		mdl = "gpt-3.5-turbo"
	}
	return &Client{
		apiKey:  strings.TrimSpace(s.OpenAIAPIKey),
		baseURL: base,
		model:   mdl,
		client:  &http.Client{},
	}
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Stream delivers response text incrementally. Recv returns io.EOF after the
// end-of-stream marker; canceling the request context aborts mid-stream.
type Stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	done    bool
}

// ErrNoAPIKey reports a missing API key before any request is made.
var ErrNoAPIKey = errors.New("no API key configured; set one with: taskflow settings set openai.key <key>")

// Chat starts a streaming completion request. The caller must drain or Close
// the returned stream.
func (c *Client) Chat(ctx context.Context, messages []Message) (*Stream, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	body, err := json.Marshal(chatRequest{Model: c.model, Messages: messages, Stream: true})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		resp.Body.Close()
		var ae apiError
		if json.Unmarshal(respBody, &ae) == nil && ae.Error.Message != "" {
			return nil, fmt.Errorf("chat API error (%d): %s", resp.StatusCode, ae.Error.Message)
		}
		return nil, fmt.Errorf("chat API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Stream{body: resp.Body, scanner: sc}, nil
}

// Recv returns the next text delta. Empty deltas are skipped internally.
func (s *Stream) Recv() (string, error) {
	if s.done {
		return "", io.EOF
	}
	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")
		if payload == "[DONE]" {
			s.done = true
			return "", io.EOF
		}
		var chunk chatChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			// Skip fragments that are not chunk objects (e.g. keepalives).
			continue
		}
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}
		return chunk.Choices[0].Delta.Content, nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	s.done = true
	return "", io.EOF
}

func (s *Stream) Close() error {
	s.done = true
	return s.body.Close()
}

// Collect drains the stream into the full response text, calling onDelta
// (when non-nil) for each fragment as it arrives.
func Collect(stream *Stream, onDelta func(string)) (string, error) {
	defer stream.Close()
	var b strings.Builder
	for {
		delta, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return b.String(), nil
		}
		if err != nil {
			return "", err
		}
		b.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	}
}
