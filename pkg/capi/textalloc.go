package capi

import (
	"sync"
	"unsafe"
)

// TextAllocator provides the NUL-terminated strings referenced from chunk
// records. Each pointer stays valid until Free is called on it, which the
// bridge does when the owning results handle is freed.
type TextAllocator interface {
	Alloc(s string) unsafe.Pointer
	Free(p unsafe.Pointer)
}

// goAllocator keeps the strings in Go memory. It is only suitable when the
// reader is Go code; the shared library installs a C allocator instead.
type goAllocator struct {
	mu   sync.Mutex
	live map[unsafe.Pointer][]byte
}

func newGoAllocator() *goAllocator {
	return &goAllocator{live: make(map[unsafe.Pointer][]byte)}
}

func (a *goAllocator) Alloc(s string) unsafe.Pointer {
	b := make([]byte, len(s)+1)
	copy(b, s)
	p := unsafe.Pointer(&b[0])
	a.mu.Lock()
	a.live[p] = b
	a.mu.Unlock()
	return p
}

func (a *goAllocator) Free(p unsafe.Pointer) {
	a.mu.Lock()
	delete(a.live, p)
	a.mu.Unlock()
}

func (a *goAllocator) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.live)
}

// GoString reads a NUL-terminated string at p. It is meant for Go callers
// inspecting chunk records, such as tests and the samples.
func GoString(p unsafe.Pointer) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(p, n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(p), n))
}
