// Command libgenai builds the C shared library exposing speech and text
// pipelines through opaque handles and ov_status_e codes.
//
//	go build -buildmode=c-shared -o libgenai.so ./cmd/libgenai
//
// The public API is declared in include/genai_common.h,
// include/whisper_pipeline.h and include/llm_pipeline.h. Every export is a
// thin conversion onto pkg/capi.
package main

/*
#include "genai_c.h"
*/
import "C"

import (
	"github.com/soundprediction/go-genai-capi/pkg/capi"
)

func init() {
	capi.SetDefaultAllocator(cAllocator{})
}

func bridge() *capi.Bridge { return capi.Default() }

//export ov_genai_bridge_version
func ov_genai_bridge_version(output *C.char, outputSize *C.size_t) C.int {
	return twoPhase(output, outputSize, bridge().BridgeVersion)
}

//export ov_genai_get_last_error_message
func ov_genai_get_last_error_message(output *C.char, outputSize *C.size_t) C.int {
	return twoPhase(output, outputSize, bridge().LastErrorMessage)
}

//export ov_genai_metrics_text
func ov_genai_metrics_text(output *C.char, outputSize *C.size_t) C.int {
	return twoPhase(output, outputSize, bridge().MetricsText)
}

func main() {}
