package service

import (
	"context"
	"errors"
	"net/http"
	"qa_forum_backend/internal/util"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	args := m.Called(ctx, system, prompt)
	return args.String(0), args.Error(1)
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"go", "concurrency", "channels"}, ParseTags("Go, #concurrency,\nchannels, go"))
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ParseTags("a,b,c,d,e,f,g"))
	assert.Empty(t, ParseTags(""))
}

func TestParseSuggestions(t *testing.T) {
	raw := "1. Add the Go version\n- Show the error output\n\n* Include a minimal example\n2) State what you tried"
	assert.Equal(t, []string{
		"Add the Go version",
		"Show the error output",
		"Include a minimal example",
		"State what you tried",
	}, ParseSuggestions(raw))

	assert.Len(t, ParseSuggestions("a\nb\nc\nd\ne\nf"), maxImprovements)
}

func TestSuggestTags(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, "", mock.AnythingOfType("string")).Return("golang, goroutines", nil)
	svc := NewAIService(gen)

	tags, err := svc.SuggestTags(context.Background(), "How do goroutines work?", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"golang", "goroutines"}, tags)
	gen.AssertExpectations(t)
}

func TestAIInputValidation(t *testing.T) {
	gen := new(MockGenerator)
	svc := NewAIService(gen)
	ctx := context.Background()

	_, err := svc.SuggestTags(ctx, " ", "body")
	assertStatus(t, err, http.StatusBadRequest)
	_, err = svc.SuggestAnswer(ctx, "", "", nil)
	assertStatus(t, err, http.StatusBadRequest)
	_, err = svc.ImproveQuestion(ctx, "", " ")
	assertStatus(t, err, http.StatusBadRequest)
	_, err = svc.Chat(ctx, "")
	assertStatus(t, err, http.StatusBadRequest)

	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestAIWithoutGenerator(t *testing.T) {
	svc := NewAIService(nil)

	_, err := svc.Chat(context.Background(), "hello")
	assert.Equal(t, util.ErrAIUnavailable, err)
}

func TestAIUpstreamFailure(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, forumSystemPrompt, "hello").Return("", errors.New("connection reset"))
	svc := NewAIService(gen)

	_, err := svc.Chat(context.Background(), "hello")
	assertStatus(t, err, http.StatusBadGateway)
}

func TestSuggestAnswerIncludesTags(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, forumSystemPrompt, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "Title: Closing channels") && strings.Contains(prompt, "Tags: go, channels")
	})).Return("Close from the sender side.", nil)
	svc := NewAIService(gen)

	out, err := svc.SuggestAnswer(context.Background(), "Closing channels", "Who closes?", []string{"go", "channels"})
	require.NoError(t, err)
	assert.Equal(t, "Close from the sender side.", out)
	gen.AssertExpectations(t)
}
