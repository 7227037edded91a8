// Package wrappertest provides a scripted Upstream for tests.
package wrappertest

import (
	"context"
	"sync"

	"git.ruekov.eu/ruakij/chat-relay/cmd/api/models"
	"git.ruekov.eu/ruakij/chat-relay/cmd/api/wrapper"
)

// Chunk is one scripted upstream chunk. A non-nil Err ends the stream with that error.
type Chunk struct {
	Delta string
	Err   error
	// Wait, when set, holds the chunk back until it is closed
	Wait <-chan struct{}
}

// Deltas scripts a stream that emits each text in order
func Deltas(texts ...string) []Chunk {
	chunks := make([]Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = Chunk{Delta: text}
	}
	return chunks
}

type Upstream struct {
	ModelName string
	// SetupErr is returned from StreamChat instead of opening a stream
	SetupErr error
	// Respond scripts the chunks for a request
	Respond func(messages []models.Message) []Chunk

	mu       sync.Mutex
	requests [][]models.Message
	streams  []*Stream
}

// Static returns an Upstream answering every request with chunks
func Static(chunks ...Chunk) *Upstream {
	return &Upstream{
		ModelName: "fake-model",
		Respond: func([]models.Message) []Chunk {
			return chunks
		},
	}
}

func (u *Upstream) Model() string {
	return u.ModelName
}

func (u *Upstream) StreamChat(ctx context.Context, messages []models.Message) (wrapper.ChunkStream, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.requests = append(u.requests, append([]models.Message(nil), messages...))
	if u.SetupErr != nil {
		return nil, u.SetupErr
	}

	var chunks []Chunk
	if u.Respond != nil {
		chunks = u.Respond(messages)
	}
	stream := &Stream{ctx: ctx, chunks: chunks, index: -1}
	u.streams = append(u.streams, stream)
	return stream, nil
}

// Requests returns the message lists received so far
func (u *Upstream) Requests() [][]models.Message {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([][]models.Message(nil), u.requests...)
}

// Streams returns the streams handed out so far
func (u *Upstream) Streams() []*Stream {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]*Stream(nil), u.streams...)
}

type Stream struct {
	ctx    context.Context
	chunks []Chunk
	index  int
	err    error

	mu     sync.Mutex
	closed bool
}

func (s *Stream) Next() bool {
	if s.err != nil {
		return false
	}
	if err := s.ctx.Err(); err != nil {
		s.err = err
		return false
	}
	s.index++
	if s.index >= len(s.chunks) {
		return false
	}
	if wait := s.chunks[s.index].Wait; wait != nil {
		select {
		case <-wait:
		case <-s.ctx.Done():
			s.err = s.ctx.Err()
			return false
		}
	}
	if err := s.chunks[s.index].Err; err != nil {
		s.err = err
		return false
	}
	return true
}

func (s *Stream) Delta() string {
	if s.index < 0 || s.index >= len(s.chunks) {
		return ""
	}
	return s.chunks[s.index].Delta
}

func (s *Stream) Err() error {
	return s.err
}

func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Stream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

var _ wrapper.Upstream = (*Upstream)(nil)
