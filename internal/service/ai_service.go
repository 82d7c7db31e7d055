package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"qa_forum_backend/internal/config"
	"qa_forum_backend/internal/util"
	"qa_forum_backend/pkg/logger"
	"qa_forum_backend/pkg/monitoring"
	"qa_forum_backend/pkg/tracing"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	aiTimeout        = 60 * time.Second
	maxSuggestedTags = 5
	maxImprovements  = 5
)

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// OpenAIGenerator talks to any OpenAI compatible chat completion endpoint.
type OpenAIGenerator struct {
	mu     sync.RWMutex
	cfg    config.AIConfig
	client *openai.Client
}

func NewOpenAIGenerator(cfg config.AIConfig) *OpenAIGenerator {
	g := &OpenAIGenerator{}
	g.SetConfig(cfg)
	return g
}

// SetConfig rebuilds the client, e.g. after a config reload.
func (g *OpenAIGenerator) SetConfig(cfg config.AIConfig) {
	var client *openai.Client
	if cfg.APIKey != "" {
		clientCfg := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
		client = openai.NewClientWithConfig(clientCfg)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.cfg = cfg
	g.client = client
}

func (g *OpenAIGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	g.mu.RLock()
	client, model := g.client, g.cfg.Model
	g.mu.RUnlock()

	if client == nil {
		return "", util.ErrAIUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, aiTimeout)
	defer cancel()

	messages := []openai.ChatCompletionMessage{}
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

const forumSystemPrompt = "You are a helpful assistant for a programming Q&A forum. Answer clearly and concisely using Markdown."

type AIService struct {
	Generator Generator
}

func NewAIService(gen Generator) *AIService {
	return &AIService{Generator: gen}
}

var errAIUpstream = util.NewAppError(http.StatusBadGateway, "AI service error")

func (s *AIService) generate(ctx context.Context, feature, system, prompt string) (string, error) {
	if s.Generator == nil {
		return "", util.ErrAIUnavailable
	}

	ctx, span := tracing.StartSpan(ctx, "ai."+feature)
	defer span.End()

	out, err := s.Generator.Generate(ctx, system, prompt)
	if err != nil {
		var appErr *util.AppError
		if errors.As(err, &appErr) {
			monitoring.AIRequests.WithLabelValues(feature, "unavailable").Inc()
			return "", err
		}
		span.RecordError(err)
		monitoring.AIRequests.WithLabelValues(feature, "error").Inc()
		logger.Log.Error("AI request failed", zap.String("feature", feature), zap.Error(err))
		return "", errAIUpstream
	}
	monitoring.AIRequests.WithLabelValues(feature, "ok").Inc()
	return out, nil
}

func (s *AIService) SuggestAnswer(ctx context.Context, title, body string, tags []string) (string, error) {
	if strings.TrimSpace(title) == "" && strings.TrimSpace(body) == "" {
		return "", util.ErrBadRequest("Question title or body is required")
	}
	prompt := fmt.Sprintf("Suggest a helpful answer to this question.\n\nTitle: %s\n\nDetails:\n%s", title, body)
	if len(tags) > 0 {
		prompt += "\n\nTags: " + strings.Join(tags, ", ")
	}
	return s.generate(ctx, "suggest_answer", forumSystemPrompt, prompt)
}

func (s *AIService) SuggestTags(ctx context.Context, title, body string) ([]string, error) {
	if strings.TrimSpace(title) == "" {
		return nil, util.ErrBadRequest("Question title is required")
	}
	prompt := fmt.Sprintf("Suggest up to %d short lowercase tags for this question. Reply with a comma separated list only.\n\nTitle: %s\n\nDetails:\n%s",
		maxSuggestedTags, title, body)
	out, err := s.generate(ctx, "suggest_tags", "", prompt)
	if err != nil {
		return nil, err
	}
	return ParseTags(out), nil
}

func (s *AIService) ImproveQuestion(ctx context.Context, title, body string) ([]string, error) {
	if strings.TrimSpace(title) == "" && strings.TrimSpace(body) == "" {
		return nil, util.ErrBadRequest("Question title or body is required")
	}
	prompt := fmt.Sprintf("Give up to %d short suggestions, one per line, to make this question clearer and easier to answer.\n\nTitle: %s\n\nDetails:\n%s",
		maxImprovements, title, body)
	out, err := s.generate(ctx, "improve_question", forumSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}
	return ParseSuggestions(out), nil
}

func (s *AIService) Chat(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", util.ErrBadRequest("Message is required")
	}
	return s.generate(ctx, "chat", forumSystemPrompt, message)
}

// ParseTags splits a comma separated reply into at most five clean tags.
func ParseTags(raw string) []string {
	raw = strings.ReplaceAll(raw, "\n", ",")
	return util.NormalizeTags(strings.Split(raw, ","), maxSuggestedTags)
}

var bulletPrefix = regexp.MustCompile(`^\s*(?:[-*•]+|\d+[.)])\s*`)

// ParseSuggestions keeps up to five non-empty lines without list markers.
func ParseSuggestions(raw string) []string {
	out := []string{}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(bulletPrefix.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == maxImprovements {
			break
		}
	}
	return out
}
