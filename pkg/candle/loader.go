package candle

/*
#cgo LDFLAGS: -ldl
#include <stdlib.h>
#include <dlfcn.h>
#include "candle.h"

static void* open_lib(const char* path) {
    return dlopen(path, RTLD_LAZY | RTLD_GLOBAL);
}

static void* get_sym(void* handle, const char* name) {
    return dlsym(handle, name);
}

static const char* get_dlerror(void) {
    return dlerror();
}
*/
import "C"
import (
	"context"
	"fmt"
	"os"
	"sync"
	"unsafe"
)

// EnvLibPath names a binding library to load instead of the released one.
const EnvLibPath = "CANDLE_LIB_PATH"

var (
	loadMu      sync.Mutex
	initialized bool
	dlHandle    unsafe.Pointer
)

// Loaded reports whether the binding library is ready.
func Loaded() bool {
	loadMu.Lock()
	defer loadMu.Unlock()
	return initialized
}

// Load dlopens the binding library. CANDLE_LIB_PATH wins; otherwise the
// release for this platform is downloaded into the cache. Once a load
// succeeds further calls are no-ops; failures are retried on the next call.
func Load(ctx context.Context) error {
	loadMu.Lock()
	defer loadMu.Unlock()
	if initialized {
		return nil
	}

	path := os.Getenv(EnvLibPath)
	if path == "" {
		p, err := DownloadLibrary(ctx, "", "")
		if err != nil {
			return fmt.Errorf("candle: fetch binding library: %w", err)
		}
		path = p
	}
	if err := openLibrary(path); err != nil {
		return err
	}
	initialized = true
	return nil
}

// Init is Load without a deadline.
func Init() error { return Load(context.Background()) }

func openLibrary(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("candle: binding library: %w", err)
	}
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))
	h := C.open_lib(cPath)
	if h == nil {
		return fmt.Errorf("candle: dlopen %s: %s", path, C.GoString(C.get_dlerror()))
	}
	dlHandle = h
	return loadSymbols()
}

func loadSym(name string) (unsafe.Pointer, error) {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))
	sym := C.get_sym(dlHandle, cName)
	if sym == nil {
		return nil, fmt.Errorf("candle: symbol not found: %s", name)
	}
	return sym, nil
}

func loadSymbols() error {
	table := []struct {
		name string
		dst  *unsafe.Pointer
	}{
		{"candle_last_error", &fnCandleLastError},
		{"candle_binding_version", &fnCandleBindingVersion},

		{"new_text_generation_pipeline", &fnNewTextGenerationPipeline},
		{"run_text_generation", &fnRunTextGeneration},
		{"free_text_generation_pipeline", &fnFreeTextGenerationPipeline},
		{"free_text_generation_result", &fnFreeTextGenerationResult},

		{"new_whisper_pipeline", &fnNewWhisperPipeline},
		{"run_whisper_transcribe", &fnRunWhisperTranscribe},
		{"free_whisper_pipeline", &fnFreeWhisperPipeline},
		{"free_whisper_result", &fnFreeWhisperResult},
	}
	for _, s := range table {
		p, err := loadSym(s.name)
		if err != nil {
			return err
		}
		*s.dst = p
	}
	return nil
}
