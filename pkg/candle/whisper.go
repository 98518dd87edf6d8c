package candle

/*
#include "candle.h"
*/
import "C"
import (
	"encoding/json"
	"errors"
	"runtime"
	"sync"
	"unsafe"
)

// WhisperConfig configures a whisper pipeline. The model is fetched from the
// Hugging Face Hub by the binding.
type WhisperConfig struct {
	ModelID  string `json:"model_id"`
	CacheDir string `json:"cache_dir,omitempty"`
	Device   string `json:"device,omitempty"`
}

// TranscribeOpts are per-call transcription parameters.
type TranscribeOpts struct {
	Temperature float64 `json:"temperature,omitempty"`
	// Language code such as "en"; empty lets the model detect it.
	Language   string `json:"language,omitempty"`
	Task       string `json:"task,omitempty"`
	Timestamps bool   `json:"timestamps,omitempty"`
}

// WhisperSegment is a timestamped piece of a transcription, in seconds.
type WhisperSegment struct {
	Text  string
	Start float64
	End   float64
}

// TranscribeResult is the full transcription.
type TranscribeResult struct {
	Text     string
	Segments []WhisperSegment
}

// WhisperPipeline wraps a binding whisper pipeline. Calls are serialized.
type WhisperPipeline struct {
	mu  sync.Mutex
	ptr *C.WhisperPipelineWrapper
}

// NewWhisperPipeline loads a whisper model. Load must have succeeded.
func NewWhisperPipeline(cfg WhisperConfig) (*WhisperPipeline, error) {
	if !Loaded() {
		return nil, errors.New("candle: library not loaded")
	}
	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	cConfig := C.CString(string(configJSON))
	defer C.free(unsafe.Pointer(cConfig))

	ptr := C.call_new_whisper_pipeline(fnNewWhisperPipeline, cConfig)
	if ptr == nil {
		return nil, errors.New(lastError())
	}
	p := &WhisperPipeline{ptr: ptr}
	runtime.SetFinalizer(p, (*WhisperPipeline).Close)
	return p, nil
}

// Transcribe runs the model on a 16 kHz WAV file.
func (p *WhisperPipeline) Transcribe(audioPath string, opts TranscribeOpts) (*TranscribeResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ptr == nil {
		return nil, errors.New("candle: pipeline is closed")
	}

	paramsJSON, err := json.Marshal(opts)
	if err != nil {
		return nil, err
	}
	cPath := C.CString(audioPath)
	defer C.free(unsafe.Pointer(cPath))
	cParams := C.CString(string(paramsJSON))
	defer C.free(unsafe.Pointer(cParams))

	res := C.call_run_whisper_transcribe(fnRunWhisperTranscribe, p.ptr, cPath, cParams)
	if res == nil {
		return nil, errors.New(lastError())
	}
	defer C.call_free_whisper_result(fnFreeWhisperResult, res)

	out := &TranscribeResult{Text: C.GoString(res.text)}
	if n := int(res.segment_count); n > 0 {
		segs := unsafe.Slice(res.segments, n)
		out.Segments = make([]WhisperSegment, n)
		for i, s := range segs {
			out.Segments[i] = WhisperSegment{
				Text:  C.GoString(s.text),
				Start: float64(s.start),
				End:   float64(s.end),
			}
		}
	}
	return out, nil
}

// Close frees the pipeline. Safe to call multiple times.
func (p *WhisperPipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ptr != nil {
		C.call_free_whisper_pipeline(fnFreeWhisperPipeline, p.ptr)
		p.ptr = nil
	}
}
