package main

/*
#include <stdlib.h>
#include "genai_c.h"
*/
import "C"

import (
	"unsafe"

	"github.com/soundprediction/go-genai-capi/pkg/capi"
	"github.com/soundprediction/go-genai-capi/pkg/genai"
)

// Conversions between C arguments and the Go types pkg/capi expects. Handles
// travel as uintptr_t, which shares the ABI of the void* the headers declare.

func status(st capi.Status) C.int { return C.int(st) }

func handle(h C.uintptr_t) capi.Handle { return capi.Handle(h) }

// newHandle runs a handle-producing call and stores the handle only on
// success, leaving *out untouched otherwise.
func newHandle(out *C.uintptr_t, fn func(*capi.Handle) capi.Status) C.int {
	if out == nil {
		return status(fn(nil))
	}
	var h capi.Handle
	st := fn(&h)
	if st == capi.StatusOK {
		*out = C.uintptr_t(h)
	}
	return status(st)
}

func goString(p *C.char) *string {
	if p == nil {
		return nil
	}
	s := C.GoString(p)
	return &s
}

// goStrings copies a C string array. A NULL array with a non-zero count
// becomes n NULL elements so the bridge rejects it.
func goStrings(p **C.char, n C.size_t) []*string {
	if p == nil {
		if n == 0 {
			return nil
		}
		return make([]*string, n)
	}
	cs := unsafe.Slice(p, int(n))
	out := make([]*string, len(cs))
	for i, c := range cs {
		out[i] = goString(c)
	}
	return out
}

// twoPhase adapts a (char* output, size_t* output_size) pair.
func twoPhase(output *C.char, outputSize *C.size_t, fn func([]byte, *uint) capi.Status) C.int {
	if outputSize == nil {
		return status(fn(nil, nil))
	}
	n := uint(*outputSize)
	var buf []byte
	if output != nil {
		buf = unsafe.Slice((*byte)(unsafe.Pointer(output)), int(n))
	}
	st := fn(buf, &n)
	if st == capi.StatusOK && output == nil {
		*outputSize = C.size_t(n)
	}
	return status(st)
}

// outValue adapts a scalar output parameter, converting on success.
func outValue[G, T any](p *T, conv func(G) T, fn func(*G) capi.Status) C.int {
	if p == nil {
		return status(fn(nil))
	}
	var v G
	st := fn(&v)
	if st == capi.StatusOK {
		*p = conv(v)
	}
	return status(st)
}

func toSize(v uint) C.size_t { return C.size_t(v) }
func toFloat(v float32) C.float { return C.float(v) }
func toBool(v bool) C.bool { return C.bool(v) }
func toInt64(v int64) C.int64_t { return C.int64_t(v) }

// outPair adapts a (float* mean, float* std) pair.
func outPair(mean, std *C.float, fn func(*float32, *float32) capi.Status) C.int {
	if mean == nil || std == nil {
		return status(fn(nil, nil))
	}
	var m, s float32
	st := fn(&m, &s)
	if st == capi.StatusOK {
		*mean, *std = C.float(m), C.float(s)
	}
	return status(st)
}

// streamerFrom wraps a C streamer_callback. The callback runs on the calling
// thread; return codes other than STOP and CANCEL continue generation.
func streamerFrom(s *C.streamer_callback) genai.Streamer {
	if s == nil || s.callback == nil {
		return nil
	}
	return func(fragment string) genai.StreamStatus {
		cs := C.CString(fragment)
		defer C.free(unsafe.Pointer(cs))
		switch genai.StreamStatus(C.genai_call_streamer(s, cs)) {
		case genai.StreamStop:
			return genai.StreamStop
		case genai.StreamCancel:
			return genai.StreamCancel
		default:
			return genai.StreamRunning
		}
	}
}

// cAllocator backs chunk text pointers with malloc so C callers can read
// them after the call returns.
type cAllocator struct{}

func (cAllocator) Alloc(s string) unsafe.Pointer { return unsafe.Pointer(C.CString(s)) }

func (cAllocator) Free(p unsafe.Pointer) { C.free(p) }
