// Package genai is the Go-native pipeline layer behind the C bridge.
//
// A WhisperPipeline turns 16 kHz mono float samples into text and an
// LLMPipeline turns a prompt into a continuation, optionally inside a chat
// session. Both delegate the actual inference to an engine picked from the
// backend registry (see RegisterSpeechBackend and RegisterTextBackend) and
// own the generation config, chat history and performance accounting.
package genai

import "errors"

// Backends used when neither the caller nor the configuration names one.
// Both load real models; the stub backend is only reachable by name.
const (
	DefaultSpeechBackend = "whispercpp"
	DefaultTextBackend   = "candle"
)

// PropBackend is the reserved property key that selects the engine backend
// for a single pipeline. It is stripped before the properties reach the engine.
const PropBackend = "GENAI_BACKEND"

// SampleRate is the sample rate speech engines expect, in Hz.
const SampleRate = 16000

var (
	// ErrUnknownBackend is returned when a pipeline names an unregistered backend.
	ErrUnknownBackend = errors.New("genai: unknown backend")
	// ErrInvalidConfig wraps every generation-config validation failure.
	ErrInvalidConfig = errors.New("genai: invalid generation config")
	// ErrBusy is returned when a pipeline is already generating.
	ErrBusy = errors.New("genai: pipeline busy")
	// ErrClosed is returned by operations on a closed pipeline.
	ErrClosed = errors.New("genai: pipeline closed")
	// ErrOddProperties is returned when property arguments are not key/value pairs.
	ErrOddProperties = errors.New("genai: property arguments must come in key/value pairs")
	// ErrUnsupportedDevice is returned by engines that cannot run on the requested device.
	ErrUnsupportedDevice = errors.New("genai: unsupported device")
)
