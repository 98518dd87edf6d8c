// Package candle drives the candle native binding library, a Rust build of
// Hugging Face candle exposing whisper and causal-LM pipelines over a small
// C ABI. The library is loaded with dlopen on first use; see Load.
//
// The package also registers the "candle" speech and text backends.
package candle

/*
#include "candle.h"
*/
import "C"
import "unsafe"

// Function pointers resolved by loadSymbols.
var (
	fnCandleLastError      unsafe.Pointer
	fnCandleBindingVersion unsafe.Pointer

	fnNewTextGenerationPipeline  unsafe.Pointer
	fnRunTextGeneration          unsafe.Pointer
	fnFreeTextGenerationPipeline unsafe.Pointer
	fnFreeTextGenerationResult   unsafe.Pointer

	fnNewWhisperPipeline   unsafe.Pointer
	fnRunWhisperTranscribe unsafe.Pointer
	fnFreeWhisperPipeline  unsafe.Pointer
	fnFreeWhisperResult    unsafe.Pointer
)

// lastError returns the binding's thread-local error message.
func lastError() string {
	if fnCandleLastError == nil {
		return "candle: library not loaded"
	}
	cStr := C.call_candle_last_error(fnCandleLastError)
	if cStr == nil {
		return "candle: unknown error"
	}
	return "candle: " + C.GoString(cStr)
}

// Version returns the binding version, or "unknown" before Load.
func Version() string {
	if !Loaded() || fnCandleBindingVersion == nil {
		return "unknown"
	}
	cStr := C.call_candle_binding_version(fnCandleBindingVersion)
	if cStr == nil {
		return "unknown"
	}
	return C.GoString(cStr)
}
