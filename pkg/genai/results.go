package genai

import "strings"

// Chunk is a timestamped piece of a transcript. Times are in seconds.
type Chunk struct {
	StartTime float32
	EndTime   float32
	Text      string
}

// WhisperDecodedResults is the output of a speech generation.
type WhisperDecodedResults struct {
	Texts       []string
	Scores      []float32
	Chunks      []Chunk
	Raw         RawPerfMetrics
	PerfMetrics PerfMetrics
}

// String joins all texts, one per line.
func (r *WhisperDecodedResults) String() string {
	if r == nil {
		return ""
	}
	return strings.Join(r.Texts, "\n")
}

// DecodedResults is the output of a text generation.
type DecodedResults struct {
	Texts       []string
	Scores      []float32
	Raw         RawPerfMetrics
	PerfMetrics PerfMetrics
}

// String joins all texts, one per line.
func (r *DecodedResults) String() string {
	if r == nil {
		return ""
	}
	return strings.Join(r.Texts, "\n")
}
