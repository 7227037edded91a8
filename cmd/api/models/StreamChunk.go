package models

import "time"

// StreamChunk carries either a text delta or the error that ended the stream
type StreamChunk struct {
	Text string
	Err  error
}

type StreamInfo struct {
	ID        string    `json:"id"`
	Transport string    `json:"transport"`
	Messages  int       `json:"messages"`
	Started   time.Time `json:"started"`
}
