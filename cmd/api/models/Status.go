package models

type Status struct {
	Object        string       `json:"object"`
	Model         string       `json:"model"`
	ActiveStreams int          `json:"active_streams"`
	Streams       []StreamInfo `json:"streams"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
