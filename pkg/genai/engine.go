package genai

import (
	"context"
	"log/slog"
)

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a chat history.
type Message struct {
	Role    string
	Content string
}

// StreamStatus is what a Streamer tells the engine after each fragment.
type StreamStatus int

const (
	// StreamRunning continues generation.
	StreamRunning StreamStatus = 0
	// StreamStop ends generation and keeps what was produced.
	StreamStop StreamStatus = 1
	// StreamCancel ends generation and drops the turn from the chat history.
	StreamCancel StreamStatus = 2
)

// Streamer receives decoded text fragments as they are produced.
type Streamer func(fragment string) StreamStatus

// TextRequest is a single text generation call.
type TextRequest struct {
	Prompt string
	// History holds earlier turns when the pipeline is in a chat session.
	History  []Message
	Config   GenerationConfig
	Streamer Streamer
}

// Emit forwards a fragment to the streamer, if any.
func (r TextRequest) Emit(fragment string) StreamStatus {
	if r.Streamer == nil || fragment == "" {
		return StreamRunning
	}
	return r.Streamer(fragment)
}

// Messages returns History followed by the prompt as a user turn.
func (r TextRequest) Messages() []Message {
	msgs := make([]Message, 0, len(r.History)+1)
	msgs = append(msgs, r.History...)
	return append(msgs, Message{Role: RoleUser, Content: r.Prompt})
}

// SpeechEngine runs speech recognition on 16 kHz mono samples.
type SpeechEngine interface {
	Transcribe(ctx context.Context, samples []float32, cfg WhisperGenerationConfig) (*WhisperDecodedResults, error)
	Close() error
}

// TextEngine runs text generation. Engines are stateless with respect to
// chat; the pipeline passes the history on every call.
type TextEngine interface {
	Generate(ctx context.Context, req TextRequest) (*DecodedResults, error)
	Close() error
}

// ModelSpec is what a backend factory receives.
type ModelSpec struct {
	// Path is the models_path argument: a directory, a model file, a
	// hf://org/repo/file reference or a model id, depending on the backend.
	Path   string
	Device string
	// Properties are the caller's key/value pairs minus PropBackend.
	Properties Properties
	Logger     *slog.Logger
}
