package wrapper

import (
	"context"
	"fmt"
	"strings"

	"git.ruekov.eu/ruakij/chat-relay/cmd/api/models"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/ssestream"
)

// ChunkStream is a pull-based sequence of upstream completion chunks
type ChunkStream interface {
	Next() bool
	// Delta returns the text of the current chunk, empty for role-only or control chunks
	Delta() string
	Err() error
	Close() error
}

// Upstream opens streamed chat completions
type Upstream interface {
	StreamChat(ctx context.Context, messages []models.Message) (ChunkStream, error)
	Model() string
}

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// Identify the calling application to OpenRouter
	Referer string
	Title   string
}

type OpenRouterWrapper struct {
	client openai.Client
	model  string
}

func NewOpenRouterWrapper(cfg Config) *OpenRouterWrapper {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithMaxRetries(0),
	}
	if strings.TrimSpace(cfg.Referer) != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.Referer))
	}
	if strings.TrimSpace(cfg.Title) != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.Title))
	}

	// Streams are unbounded, so no client timeout is set
	client := openai.NewClient(opts...)

	return &OpenRouterWrapper{
		client: client,
		model:  cfg.Model,
	}
}

func (wrapper *OpenRouterWrapper) Model() string {
	return wrapper.model
}

// StreamChat requests an incremental completion for messages. Errors returned here happened
// before any chunk was received.
func (wrapper *OpenRouterWrapper) StreamChat(ctx context.Context, messages []models.Message) (ChunkStream, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(wrapper.model),
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)),
	}
	for _, message := range messages {
		param, err := toChatMessageParam(message)
		if err != nil {
			return nil, err
		}
		params.Messages = append(params.Messages, param)
	}

	stream := wrapper.client.Chat.Completions.NewStreaming(ctx, params)
	if err := stream.Err(); err != nil {
		return nil, err
	}

	return &openRouterStream{stream: stream}, nil
}

func toChatMessageParam(message models.Message) (openai.ChatCompletionMessageParamUnion, error) {
	switch strings.ToLower(strings.TrimSpace(string(message.Role))) {
	case string(models.RoleSystem):
		return openai.SystemMessage(message.Content), nil
	case string(models.RoleUser):
		return openai.UserMessage(message.Content), nil
	case string(models.RoleAssistant):
		return openai.AssistantMessage(message.Content), nil
	case "developer":
		return openai.DeveloperMessage(message.Content), nil
	default:
		return openai.ChatCompletionMessageParamUnion{}, fmt.Errorf("unsupported role: %q", message.Role)
	}
}

type openRouterStream struct {
	stream *ssestream.Stream[openai.ChatCompletionChunk]
}

func (s *openRouterStream) Next() bool {
	return s.stream.Next()
}

func (s *openRouterStream) Delta() string {
	chunk := s.stream.Current()
	if len(chunk.Choices) == 0 {
		return ""
	}
	return chunk.Choices[0].Delta.Content
}

func (s *openRouterStream) Err() error {
	return s.stream.Err()
}

func (s *openRouterStream) Close() error {
	return s.stream.Close()
}

var _ Upstream = (*OpenRouterWrapper)(nil)
