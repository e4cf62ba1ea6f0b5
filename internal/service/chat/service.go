package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/MoNabawy-2003/al-safaa-hospital/internal/model"
)

var ErrNotConfigured = errors.New("chat assistant is not configured")

// systemPrompt keeps the assistant on hospital topics and away from
// diagnoses.
const systemPrompt = "You are a helpful assistant for Al-Safaa Hospital patients. " +
	"Answer general questions about appointments, visiting hours and hospital services. " +
	"Never provide a medical diagnosis; direct clinical questions to the patient's assigned doctor."

type Config struct {
	APIURL  string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Service proxies patient conversations to an external chat-completion API.
// The API key never reaches the client.
type Service struct {
	client *http.Client
	cfg    Config
	logger *zerolog.Logger
}

func NewService(cfg Config, logger *zerolog.Logger) *Service {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Service{
		client: &http.Client{Timeout: timeout},
		cfg:    cfg,
		logger: logger,
	}
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiRequest struct {
	Model    string       `json:"model"`
	Messages []apiMessage `json:"messages"`
}

type apiResponse struct {
	Choices []struct {
		Message apiMessage `json:"message"`
	} `json:"choices"`
}

// Complete forwards the conversation, prefixed with the system prompt, and
// returns the assistant's reply.
func (s *Service) Complete(ctx context.Context, messages []model.ChatMessage) (string, error) {
	if s.cfg.APIURL == "" || s.cfg.APIKey == "" {
		return "", ErrNotConfigured
	}

	payload := apiRequest{
		Model:    s.cfg.Model,
		Messages: make([]apiMessage, 0, len(messages)+1),
	}
	payload.Messages = append(payload.Messages, apiMessage{Role: "system", Content: systemPrompt})
	for _, m := range messages {
		payload.Messages = append(payload.Messages, apiMessage{Role: string(m.Role), Content: m.Content})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		s.logger.Warn().Int("status", resp.StatusCode).Bytes("body", raw).Msg("chat completion API error")
		return "", fmt.Errorf("chat completion API returned %d", resp.StatusCode)
	}

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
