package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/varsilias/persona-proxy/pkg/types"
)

// ErrNoContent is returned when Gemini produces no candidate text.
var ErrNoContent = errors.New("no content generated")

type GeminiEngine struct {
	client *genai.Client
}

func NewGeminiEngine(ctx context.Context, apiKey string) (*GeminiEngine, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return &GeminiEngine{client: client}, nil
}

func (e *GeminiEngine) Generate(ctx context.Context, model string, input []types.Message) (string, time.Duration, error) {
	system, contents := toGeminiContents(input)

	var cfg *genai.GenerateContentConfig
	if system != nil {
		cfg = &genai.GenerateContentConfig{SystemInstruction: system}
	}

	start := time.Now()
	result, err := e.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", time.Since(start), err
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", time.Since(start), ErrNoContent
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", time.Since(start), ErrNoContent
	}
	return sb.String(), time.Since(start), nil
}

// toGeminiContents moves system entries into the system instruction and maps
// the assistant role to Gemini's "model" role. Conversation order is kept.
// Gemini requires at least one content, so a conversation holding only the
// system prompt is sent as a single user turn instead.
func toGeminiContents(input []types.Message) (*genai.Content, []*genai.Content) {
	var (
		system   *genai.Content
		contents = make([]*genai.Content, 0, len(input))
	)
	for _, m := range input {
		switch m.Role {
		case types.RoleSystem:
			if system == nil {
				system = &genai.Content{}
			}
			system.Parts = append(system.Parts, &genai.Part{Text: m.Content})
		case types.RoleAssistant:
			contents = append(contents, &genai.Content{Role: "model", Parts: []*genai.Part{{Text: m.Content}}})
		default:
			contents = append(contents, &genai.Content{Role: "user", Parts: []*genai.Part{{Text: m.Content}}})
		}
	}
	if len(contents) == 0 && system != nil {
		contents = append(contents, &genai.Content{Role: "user", Parts: system.Parts})
		system = nil
	}
	return system, contents
}
