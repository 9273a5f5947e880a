package services

import (
	"context"
	"errors"

	"gemini-relay/internal/models"
)

// Generator produces text for a single prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type ChatService struct {
	generator Generator
}

func NewChatService(generator Generator) (*ChatService, error) {
	if generator == nil {
		return nil, errors.New("chat service: generator must not be nil")
	}
	return &ChatService{generator: generator}, nil
}

// Reply forwards message as the sole prompt. It never returns an error;
// failures are carried in the result.
func (s *ChatService) Reply(ctx context.Context, message string) models.ChatResult {
	text, err := s.generator.Generate(ctx, message)
	if err != nil {
		return models.ChatResult{Kind: models.ChatResultFailed, Err: err}
	}
	if text == "" {
		return models.ChatResult{Kind: models.ChatResultEmpty}
	}
	return models.ChatResult{Kind: models.ChatResultText, Text: text}
}
