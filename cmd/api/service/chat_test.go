package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"git.ruekov.eu/ruakij/chat-relay/cmd/api/models"
	"git.ruekov.eu/ruakij/chat-relay/cmd/api/prompt"
	"git.ruekov.eu/ruakij/chat-relay/cmd/api/wrapper/wrappertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"storj.io/common/uuid"
)

func drain(t *testing.T, ch <-chan models.StreamChunk) (string, error) {
	t.Helper()
	var text strings.Builder
	var err error
	timeout := time.After(5 * time.Second)
	for {
		select {
		case chunk, ok := <-ch:
			if !ok {
				return text.String(), err
			}
			if chunk.Err != nil {
				err = chunk.Err
				continue
			}
			text.WriteString(chunk.Text)
		case <-timeout:
			t.Fatal("stream did not finish")
		}
	}
}

func TestParseConversation(t *testing.T) {
	service := NewChatService(wrappertest.Static())

	t.Run("accepts an array of messages", func(t *testing.T) {
		conversation, err := service.ParseConversation([]byte(` [{"role":"user","content":"hi"},{"role":"assistant","content":"hello"}] `))
		require.NoError(t, err)
		assert.Equal(t, []models.Message{
			{Role: models.RoleUser, Content: "hi"},
			{Role: models.RoleAssistant, Content: "hello"},
		}, conversation)
	})

	t.Run("accepts an empty array", func(t *testing.T) {
		conversation, err := service.ParseConversation([]byte(`[]`))
		require.NoError(t, err)
		assert.Empty(t, conversation)
	})

	t.Run("does not validate element shape", func(t *testing.T) {
		conversation, err := service.ParseConversation([]byte(`[{}, {"role":"user"}]`))
		require.NoError(t, err)
		assert.Len(t, conversation, 2)
	})

	for name, body := range map[string]string{
		"object": `{"role":"user","content":"hi"}`,
		"string": `"hello"`,
		"null":   `null`,
		"number": `42`,
	} {
		t.Run("rejects "+name, func(t *testing.T) {
			_, err := service.ParseConversation([]byte(body))
			require.Error(t, err)
			kind, ok := KindOf(err)
			require.True(t, ok)
			assert.Equal(t, ValidationError, kind)
			assert.ErrorIs(t, err, ErrNotConversation)
		})
	}

	for name, body := range map[string]string{
		"empty body":   ``,
		"invalid JSON": `[{"role":`,
	} {
		t.Run("rejects "+name, func(t *testing.T) {
			_, err := service.ParseConversation([]byte(body))
			require.Error(t, err)
			kind, ok := KindOf(err)
			require.True(t, ok)
			assert.Equal(t, ValidationError, kind)
		})
	}
}

func TestBuildConversation(t *testing.T) {
	conversation := []models.Message{
		{Role: models.RoleUser, Content: "first"},
		{Role: models.RoleAssistant, Content: "second"},
		{Role: models.RoleUser, Content: "third"},
	}
	before := append([]models.Message(nil), conversation...)

	messages := BuildConversation(conversation)

	require.Len(t, messages, 4)
	assert.Equal(t, models.Message{Role: models.RoleSystem, Content: prompt.SystemPrompt}, messages[0])
	assert.Equal(t, conversation, messages[1:])
	assert.Equal(t, before, conversation)

	assert.Equal(t, []models.Message{{Role: models.RoleSystem, Content: prompt.SystemPrompt}}, BuildConversation(nil))
}

func TestProcessChatRequestStream(t *testing.T) {
	upstream := wrappertest.Static(wrappertest.Deltas("Hel", "lo, ", "world!")...)
	service := NewChatService(upstream)

	conversation := []models.Message{{Role: models.RoleUser, Content: "hi"}}
	ch, err := service.ProcessChatRequestStream(context.Background(), models.ChatRequest{Messages: conversation, Transport: "http"})
	require.NoError(t, err)

	text, streamErr := drain(t, ch)
	assert.NoError(t, streamErr)
	assert.Equal(t, "Hello, world!", text)

	requests := upstream.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, BuildConversation(conversation), requests[0])

	assert.Equal(t, 0, service.ActiveStreams())
	assert.True(t, upstream.Streams()[0].Closed())
}

func TestProcessChatRequestStreamSkipsEmptyDeltas(t *testing.T) {
	upstream := wrappertest.Static(wrappertest.Deltas("", "A", "", "B")...)
	service := NewChatService(upstream)

	ch, err := service.ProcessChatRequestStream(context.Background(), models.ChatRequest{})
	require.NoError(t, err)

	text, streamErr := drain(t, ch)
	assert.NoError(t, streamErr)
	assert.Equal(t, "AB", text)
}

func TestProcessChatRequestStreamSetupError(t *testing.T) {
	upstream := wrappertest.Static()
	upstream.SetupErr = errors.New("401 Unauthorized")
	service := NewChatService(upstream)

	ch, err := service.ProcessChatRequestStream(context.Background(), models.ChatRequest{})
	require.Error(t, err)
	assert.Nil(t, ch)

	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, UpstreamSetupError, kind)
	assert.Equal(t, "401 Unauthorized", err.Error())
	assert.Equal(t, 0, service.ActiveStreams())
}

func TestProcessChatRequestStreamInterrupted(t *testing.T) {
	boom := errors.New("connection reset")
	upstream := wrappertest.Static(wrappertest.Chunk{Delta: "partial"}, wrappertest.Chunk{Err: boom})
	service := NewChatService(upstream)

	ch, err := service.ProcessChatRequestStream(context.Background(), models.ChatRequest{})
	require.NoError(t, err)

	text, streamErr := drain(t, ch)
	assert.Equal(t, "partial", text)
	require.Error(t, streamErr)
	kind, ok := KindOf(streamErr)
	require.True(t, ok)
	assert.Equal(t, StreamInterrupted, kind)
	assert.ErrorIs(t, streamErr, boom)
	assert.Equal(t, 0, service.ActiveStreams())
}

func TestProcessChatRequestStreamConsumerGone(t *testing.T) {
	upstream := wrappertest.Static(wrappertest.Deltas("one", "two", "three")...)
	service := NewChatService(upstream)

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := service.ProcessChatRequestStream(ctx, models.ChatRequest{Transport: "http"})
	require.NoError(t, err)

	first := <-ch
	assert.Equal(t, "one", first.Text)
	assert.Equal(t, 1, service.ActiveStreams())
	info := service.Streams()[0]
	assert.Equal(t, "http", info.Transport)
	assert.Equal(t, 1, info.Messages)
	found, ok := service.Stream(info.ID)
	require.True(t, ok)
	assert.Equal(t, info, found)

	cancel()

	assert.Eventually(t, func() bool {
		return service.ActiveStreams() == 0 && upstream.Streams()[0].Closed()
	}, time.Second, 5*time.Millisecond)
	_, ok = service.Stream(info.ID)
	assert.False(t, ok)
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "ValidationError", ValidationError.String())
	assert.Equal(t, "UpstreamSetupError", UpstreamSetupError.String())
	assert.Equal(t, "StreamInterrupted", StreamInterrupted.String())

	_, ok := KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestNewStreamID(t *testing.T) {
	first, err := newStreamID()
	require.NoError(t, err)
	second, err := newStreamID()
	require.NoError(t, err)

	_, err = uuid.FromString(first)
	assert.NoError(t, err)
	assert.NotEqual(t, first, second)
}
