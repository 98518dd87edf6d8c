package main

/*
#include <stdlib.h>
#include <string.h>
#include "genai_c.h"

int ov_genai_whisper_pipeline_create(const char* models_path, const char* device,
                                     const size_t property_args_size, uintptr_t* pipe, ...);
int ov_genai_llm_pipeline_create(const char* models_path, const char* device,
                                 const size_t property_args_size, uintptr_t* pipe, ...);

// Fixed-arity entry points into the variadic create shims. n says how many
// of the four trailing strings the shim reads.
static int whisper_create4(const char* m, const char* d, size_t n, uintptr_t* pipe,
                           const char* a0, const char* a1, const char* a2, const char* a3) {
    return ov_genai_whisper_pipeline_create(m, d, n, pipe, a0, a1, a2, a3);
}

static int llm_create4(const char* m, const char* d, size_t n, uintptr_t* pipe,
                       const char* a0, const char* a1, const char* a2, const char* a3) {
    return ov_genai_llm_pipeline_create(m, d, n, pipe, a0, a1, a2, a3);
}

typedef struct {
    char text[512];
    size_t len;
    int calls;
    int stop_after;
    int code;
} recorder;

// record appends each fragment and answers code once stop_after fragments
// have arrived, 0 before that.
static int record(const char* str, void* args) {
    recorder* r = (recorder*)args;
    size_t n = strlen(str);
    if (r->len + n < sizeof r->text) {
        memcpy(r->text + r->len, str, n);
        r->len += n;
        r->text[r->len] = 0;
    }
    r->calls++;
    return r->calls >= r->stop_after ? r->code : 0;
}

static streamer_callback* new_recorder(int stop_after, int code) {
    recorder* r = calloc(1, sizeof(recorder));
    streamer_callback* s = calloc(1, sizeof(streamer_callback));
    r->stop_after = stop_after;
    r->code = code;
    s->callback = record;
    s->args = r;
    return s;
}

static const char* recorder_text(streamer_callback* s) { return ((recorder*)s->args)->text; }
static int recorder_calls(streamer_callback* s) { return ((recorder*)s->args)->calls; }

static void free_recorder(streamer_callback* s) {
    free(s->args);
    free(s);
}
*/
import "C"

import (
	"unsafe"

	"github.com/soundprediction/go-genai-capi/pkg/capi"
)

// Drivers that call the exports the way a C program does: C strings, C
// buffers and the variadic create shims. The exports themselves are plain Go
// functions, so these only convert arguments.

type twoPhaseFn = func(*C.char, *C.size_t) C.int

// readString runs one two-phase call. bufSize < 0 passes a NULL buffer with
// *output_size 0; nullSize passes a NULL output_size. It returns the status,
// the buffer contents up to the terminator and the final *output_size.
func readString(fn twoPhaseFn, bufSize int, nullSize bool) (capi.Status, string, uint) {
	var (
		buf  *C.char
		size C.size_t
	)
	if bufSize >= 0 {
		buf = (*C.char)(C.calloc(C.size_t(bufSize)+1, 1))
		defer C.free(unsafe.Pointer(buf))
		size = C.size_t(bufSize)
	}
	sizep := &size
	if nullSize {
		sizep = nil
	}
	st := capi.Status(fn(buf, sizep))
	text := ""
	if buf != nil {
		text = C.GoString(buf)
	}
	return st, text, uint(size)
}

// onHandle binds a handle-taking two-phase export to h.
func onHandle(fn func(C.uintptr_t, *C.char, *C.size_t) C.int, h uintptr) twoPhaseFn {
	return func(out *C.char, n *C.size_t) C.int { return fn(C.uintptr_t(h), out, n) }
}

func bridgeVersion() twoPhaseFn    { return ov_genai_bridge_version }
func lastErrorMessage() twoPhaseFn { return ov_genai_get_last_error_message }

func llmResultString(h uintptr) twoPhaseFn {
	return onHandle(ov_genai_decoded_results_get_string, h)
}

func whisperResultString(h uintptr) twoPhaseFn {
	return onHandle(ov_genai_whisper_decoded_results_get_string, h)
}

// createPipeline goes through the variadic shim with n of args. A nil pipe
// passes a NULL out-handle.
func createPipeline(llm bool, modelsPath, device string, n int, args []string, pipe *uintptr) capi.Status {
	m, d := C.CString(modelsPath), C.CString(device)
	defer C.free(unsafe.Pointer(m))
	defer C.free(unsafe.Pointer(d))
	var cargs [4]*C.char
	for i, a := range args {
		cargs[i] = C.CString(a)
		defer C.free(unsafe.Pointer(cargs[i]))
	}
	var h C.uintptr_t
	hp := &h
	if pipe == nil {
		hp = nil
	} else {
		h = C.uintptr_t(*pipe)
	}
	var rc C.int
	if llm {
		rc = C.llm_create4(m, d, C.size_t(n), hp, cargs[0], cargs[1], cargs[2], cargs[3])
	} else {
		rc = C.whisper_create4(m, d, C.size_t(n), hp, cargs[0], cargs[1], cargs[2], cargs[3])
	}
	if pipe != nil {
		*pipe = uintptr(h)
	}
	return capi.Status(rc)
}

// createWithNullArgs passes a NULL property array with a count of n.
func createWithNullArgs(modelsPath string, n int, pipe *uintptr) capi.Status {
	m, d := C.CString(modelsPath), C.CString("CPU")
	defer C.free(unsafe.Pointer(m))
	defer C.free(unsafe.Pointer(d))
	h := C.uintptr_t(*pipe)
	st := capi.Status(ov_genai_whisper_pipeline_create_with_properties(m, d, C.size_t(n), nil, &h))
	*pipe = uintptr(h)
	return st
}

// streamed is what a C streamer callback saw during one generate call.
type streamed struct {
	Text  string
	Calls int
}

// llmGenerate runs generate with a C streamer that answers code after
// stopAfter fragments. stopAfter 0 passes a NULL streamer.
func llmGenerate(pipe uintptr, prompt string, stopAfter, code int, results *uintptr) (capi.Status, streamed) {
	in := C.CString(prompt)
	defer C.free(unsafe.Pointer(in))
	var s *C.streamer_callback
	if stopAfter > 0 {
		s = C.new_recorder(C.int(stopAfter), C.int(code))
		defer C.free_recorder(s)
	}
	h := C.uintptr_t(*results)
	st := capi.Status(ov_genai_llm_pipeline_generate(C.uintptr_t(pipe), in, 0, s, &h))
	*results = uintptr(h)
	var got streamed
	if s != nil {
		got = streamed{Text: C.GoString(C.recorder_text(s)), Calls: int(C.recorder_calls(s))}
	}
	return st, got
}

// whisperGenerate transcribes samples with timestamps on or off.
func whisperGenerate(pipe uintptr, samples []float32, timestamps bool, results *uintptr) capi.Status {
	var cfg C.uintptr_t
	if st := capi.Status(ov_genai_whisper_generation_config_create(&cfg)); st != capi.StatusOK {
		return st
	}
	defer ov_genai_whisper_generation_config_free(cfg)
	if st := capi.Status(ov_genai_whisper_generation_config_set_return_timestamps(cfg, C.bool(timestamps))); st != capi.StatusOK {
		return st
	}
	var in *C.float
	if len(samples) > 0 {
		in = (*C.float)(unsafe.Pointer(&samples[0]))
	}
	h := C.uintptr_t(*results)
	st := capi.Status(ov_genai_whisper_pipeline_generate(C.uintptr_t(pipe), in, C.size_t(len(samples)), cfg, &h))
	*results = uintptr(h)
	return st
}

// chunkAt reads one chunk. The text pointer is owned by the results handle.
func chunkAt(results uintptr, index int) (capi.Status, float32, float32, string) {
	var c C.whisper_result_chunk
	st := capi.Status(ov_genai_whisper_decoded_results_get_chunk_at(C.uintptr_t(results), C.size_t(index), &c))
	if st != capi.StatusOK {
		return st, 0, 0, ""
	}
	text := ""
	if c.text != nil {
		text = C.GoString(c.text)
	}
	return st, float32(c.start_time), float32(c.end_time), text
}

// textsSize reads the text count. nullOut passes a NULL size pointer.
func textsSize(results uintptr, nullOut bool) (capi.Status, uint) {
	var n C.size_t
	np := &n
	if nullOut {
		np = nil
	}
	st := capi.Status(ov_genai_whisper_decoded_results_get_texts_size(C.uintptr_t(results), np))
	return st, uint(n)
}

// generateDuration reads the (mean, std) pair. nullStd passes a NULL std.
func generateDuration(results uintptr, nullStd bool) capi.Status {
	var m C.uintptr_t
	if st := capi.Status(ov_genai_decoded_results_get_perf_metrics(C.uintptr_t(results), &m)); st != capi.StatusOK {
		return st
	}
	defer ov_genai_decoded_results_perf_metrics_free(m)
	var mean, std C.float
	sp := &std
	if nullStd {
		sp = nil
	}
	return capi.Status(ov_genai_decoded_results_perf_metrics_get_generate_duration(m, &mean, sp))
}

func freeLLM(pipe, results uintptr) {
	ov_genai_decoded_results_free(C.uintptr_t(results))
	ov_genai_llm_pipeline_free(C.uintptr_t(pipe))
}

func freeWhisper(pipe, results uintptr) {
	ov_genai_whisper_decoded_results_free(C.uintptr_t(results))
	ov_genai_whisper_pipeline_free(C.uintptr_t(pipe))
}
