// Package llm wraps the text-completion capability behind a small interface
// so the fixer can be exercised against fakes. The real implementation rides
// Eino's chat-model abstraction with Google Gemini as the provider.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	gemini "github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"

	"seoauditor/internal/logger"
)

// CompleteOptions bound a single completion call.
type CompleteOptions struct {
	MaxTokens int
	ForceJSON bool
}

// Completer is the text-completion capability consumed by the fixer.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts CompleteOptions) (string, error)
}

type Config struct {
	Provider string
	APIKey   string
	Model    string
}

type Service struct {
	config    Config
	chatModel model.BaseChatModel
	log       *logger.Logger
}

// NewService initializes the configured provider. Only gemini is wired; the
// switch matches how providers get added.
func NewService(config Config) (*Service, error) {
	s := &Service{config: config, log: logger.New("LLM")}

	switch strings.ToLower(config.Provider) {
	case "gemini":
		if err := s.initGemini(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported provider: %s. Supported: gemini", config.Provider)
	}
	return s, nil
}

func (s *Service) initGemini() error {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: s.config.APIKey,
	})
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}
	chatModel, err := gemini.NewChatModel(context.Background(), &gemini.Config{
		Client: client,
		Model:  s.config.Model,
	})
	if err != nil {
		return fmt.Errorf("failed to create Gemini chat model: %w", err)
	}
	s.chatModel = chatModel
	return nil
}

const strictJSONSystem = `You are a precise assistant that returns structured data.

CRITICAL REQUIREMENTS:
1. Return ONLY a valid JSON object matching the fields requested by the user
2. Do NOT include explanations, markdown formatting, or additional text
3. Use null for anything you cannot produce
4. The response must be parseable as valid JSON`

// Complete sends the prompt and returns the raw completion text. With
// ForceJSON the call carries a strict-JSON system message and markdown code
// fences are stripped from the response.
func (s *Service) Complete(ctx context.Context, prompt string, opts CompleteOptions) (string, error) {
	if s.chatModel == nil {
		return "", fmt.Errorf("chat model not initialized")
	}

	messages := []*schema.Message{}
	if opts.ForceJSON {
		messages = append(messages, schema.SystemMessage(strictJSONSystem))
	}
	messages = append(messages, schema.UserMessage(prompt))

	var callOpts []model.Option
	if opts.MaxTokens > 0 {
		callOpts = append(callOpts, model.WithMaxTokens(opts.MaxTokens))
	}

	response, err := s.chatModel.Generate(ctx, messages, callOpts...)
	if err != nil {
		return "", fmt.Errorf("llm generation failed: %w", err)
	}

	content := response.Content
	if opts.ForceJSON {
		content = StripFences(content)
	}
	return content, nil
}

// StripFences removes markdown code fences models wrap JSON in despite
// instructions.
func StripFences(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

// IsRateLimited classifies rate-limit-class errors so retry backoff can
// widen instead of hammering the provider.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	es := strings.ToLower(err.Error())
	return strings.Contains(es, "429") ||
		strings.Contains(es, "too many requests") ||
		strings.Contains(es, "rate limit") ||
		strings.Contains(es, "resource exhausted") ||
		strings.Contains(es, "quota")
}
