package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"git.ruekov.eu/ruakij/chat-relay/cmd/api/logger"
	"git.ruekov.eu/ruakij/chat-relay/cmd/api/models"
	"git.ruekov.eu/ruakij/chat-relay/cmd/api/prompt"
	"git.ruekov.eu/ruakij/chat-relay/cmd/api/telemetry"
	"git.ruekov.eu/ruakij/chat-relay/cmd/api/wrapper"
	"git.ruekov.eu/ruakij/chat-relay/lib/advancedmap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"storj.io/common/uuid"
)

var ErrNotConversation = errors.New("Invalid input: data should be an array of messages.")

type ChatService struct {
	upstream wrapper.Upstream
	streams  *advancedmap.AdvancedMap[string, models.StreamInfo]
	tracer   trace.Tracer
}

func NewChatService(upstream wrapper.Upstream) *ChatService {
	streams := advancedmap.NewAdvancedMap[string, models.StreamInfo]()
	streams.SetPutHook(func(id string, item advancedmap.Item[models.StreamInfo]) {
		logger.Info.Printf("Stream %s opened (%s, %d messages)", id, item.Data.Transport, item.Data.Messages)
	})
	streams.SetRemoveHook(func(id string, item advancedmap.Item[models.StreamInfo]) {
		logger.Info.Printf("Stream %s closed after %s", id, time.Since(item.Data.Started).Round(time.Millisecond))
	})

	return &ChatService{
		upstream: upstream,
		streams:  streams,
		tracer:   otel.Tracer("git.ruekov.eu/ruakij/chat-relay/cmd/api/service"),
	}
}

func (service *ChatService) Model() string {
	return service.upstream.Model()
}

func (service *ChatService) ActiveStreams() int {
	return service.streams.Len()
}

func (service *ChatService) Streams() []models.StreamInfo {
	return service.streams.Values()
}

// Stream looks up an in-flight relay by its ID
func (service *ChatService) Stream(id string) (models.StreamInfo, bool) {
	return service.streams.Get(id)
}

// ParseConversation decodes a request body that must be a JSON array of messages.
// Only the top-level shape is checked.
func (service *ChatService) ParseConversation(body []byte) ([]models.Message, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &RelayError{Kind: ValidationError, Err: fmt.Errorf("invalid JSON body: %w", err)}
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, &RelayError{Kind: ValidationError, Err: ErrNotConversation}
	}

	var conversation []models.Message
	if err := json.Unmarshal(raw, &conversation); err != nil {
		return nil, &RelayError{Kind: ValidationError, Err: err}
	}
	return conversation, nil
}

// BuildConversation returns the system prompt followed by conversation, leaving conversation untouched
func BuildConversation(conversation []models.Message) []models.Message {
	messages := make([]models.Message, 0, len(conversation)+1)
	messages = append(messages, models.Message{Role: models.RoleSystem, Content: prompt.SystemPrompt})
	return append(messages, conversation...)
}

// ProcessChatRequestStream opens the upstream stream and relays its text deltas through the
// returned channel, one chunk at a time. A returned error means nothing was streamed. A chunk
// with Err set is the last one before the channel closes.
func (service *ChatService) ProcessChatRequestStream(ctx context.Context, request models.ChatRequest) (<-chan models.StreamChunk, error) {
	id, err := newStreamID()
	if err != nil {
		return nil, &RelayError{Kind: UpstreamSetupError, Err: err}
	}
	messages := BuildConversation(request.Messages)

	ctx, span := service.tracer.Start(ctx, "chat.relay", trace.WithAttributes(
		attribute.String("relay.id", id),
		attribute.String("relay.transport", request.Transport),
		attribute.String("relay.model", service.upstream.Model()),
		attribute.Int("relay.messages", len(messages)),
	))

	stream, err := service.upstream.StreamChat(ctx, messages)
	if err != nil {
		err = &RelayError{Kind: UpstreamSetupError, Err: err}
		telemetry.End(span, err)
		return nil, err
	}

	service.streams.Put(id, models.StreamInfo{
		ID:        id,
		Transport: request.Transport,
		Messages:  len(messages),
		Started:   time.Now(),
	})

	outputCh := make(chan models.StreamChunk)
	go func() {
		var streamErr error
		chunkCount := 0

		defer close(outputCh)
		defer func() {
			span.SetAttributes(attribute.Int("relay.chunks", chunkCount))
			telemetry.End(span, streamErr)
		}()
		defer service.streams.Remove(id)
		defer stream.Close()

		for stream.Next() {
			text := stream.Delta()
			if text == "" {
				continue
			}

			select {
			case <-ctx.Done():
				streamErr = ctx.Err()
				return
			case outputCh <- models.StreamChunk{Text: text}:
				chunkCount++
			}
		}

		if err := stream.Err(); err != nil {
			streamErr = &RelayError{Kind: StreamInterrupted, Err: err}
			select {
			case <-ctx.Done():
			case outputCh <- models.StreamChunk{Err: streamErr}:
			}
		}
	}()

	return outputCh, nil
}

func newStreamID() (string, error) {
	id, err := uuid.New()
	if err != nil {
		return "", fmt.Errorf("generating stream id: %w", err)
	}
	return id.String(), nil
}
