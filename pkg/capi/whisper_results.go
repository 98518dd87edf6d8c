package capi

import (
	"sync"
	"unsafe"

	"github.com/soundprediction/go-genai-capi/pkg/genai"
)

// ChunkRecord mirrors ov_genai_whisper_decoded_result_chunk. Text points to
// a NUL-terminated string owned by the results handle.
type ChunkRecord struct {
	StartTime float32
	EndTime   float32
	Text      unsafe.Pointer
}

// whisperResults owns one speech result and the C-visible chunk strings
// derived from it.
type whisperResults struct {
	res   *genai.WhisperDecodedResults
	alloc TextAllocator

	mu    sync.Mutex
	texts []unsafe.Pointer // per chunk, allocated on first access
}

func newWhisperResults(res *genai.WhisperDecodedResults, alloc TextAllocator) *whisperResults {
	if res == nil {
		res = &genai.WhisperDecodedResults{}
	}
	return &whisperResults{res: res, alloc: alloc, texts: make([]unsafe.Pointer, len(res.Chunks))}
}

func (r *whisperResults) chunkText(i int) unsafe.Pointer {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.texts[i] == nil {
		r.texts[i] = r.alloc.Alloc(r.res.Chunks[i].Text)
	}
	return r.texts[i]
}

func (r *whisperResults) free() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.texts {
		if p != nil {
			r.alloc.Free(p)
			r.texts[i] = nil
		}
	}
}

// WhisperDecodedResultsCreate returns an empty results handle.
func (b *Bridge) WhisperDecodedResultsCreate(results *Handle) Status {
	return b.call("whisper_decoded_results_create", func() error {
		if results == nil {
			return null("results")
		}
		b.register(kindWhisperResults, newWhisperResults(nil, b.alloc), results)
		return nil
	})
}

// WhisperDecodedResultsFree releases the results and every chunk text
// pointer handed out from them.
func (b *Bridge) WhisperDecodedResultsFree(results Handle) {
	if r, ok := b.release(results, kindWhisperResults).(*whisperResults); ok {
		r.free()
	}
}

func (b *Bridge) withWhisperResults(op string, h Handle, fn func(*whisperResults) error) Status {
	return b.call(op, func() error {
		r, err := lookup[*whisperResults](b.handles, h, kindWhisperResults)
		if err != nil {
			return err
		}
		return fn(r)
	})
}

// WhisperDecodedResultsGetPerfMetrics returns a metrics handle holding a copy
// of the result's metrics.
func (b *Bridge) WhisperDecodedResultsGetPerfMetrics(results Handle, metrics *Handle) Status {
	return b.withWhisperResults("whisper_decoded_results_get_perf_metrics", results, func(r *whisperResults) error {
		if metrics == nil {
			return null("metrics")
		}
		pm := r.res.PerfMetrics
		b.register(kindWhisperMetrics, &pm, metrics)
		return nil
	})
}

func (b *Bridge) WhisperDecodedResultsGetTextsSize(results Handle, size *uint) Status {
	return b.withWhisperResults("whisper_decoded_results_get_texts_size", results, func(r *whisperResults) error {
		return out(size, uint(len(r.res.Texts)), "texts_size")
	})
}

// WhisperDecodedResultsGetTextAt writes the text of one segment, two-phase.
func (b *Bridge) WhisperDecodedResultsGetTextAt(results Handle, index uint, output []byte, outputSize *uint) Status {
	return b.withWhisperResults("whisper_decoded_results_get_text_at", results, func(r *whisperResults) error {
		if index >= uint(len(r.res.Texts)) {
			return statusErrorf(StatusOutOfBounds, "text index %d, have %d", index, len(r.res.Texts))
		}
		return writeString(r.res.Texts[index], output, outputSize)
	})
}

func (b *Bridge) WhisperDecodedResultsGetChunksSize(results Handle, size *uint) Status {
	return b.withWhisperResults("whisper_decoded_results_get_chunks_size", results, func(r *whisperResults) error {
		return out(size, uint(len(r.res.Chunks)), "chunks_size")
	})
}

// WhisperDecodedResultsGetChunkAt copies one chunk record by value.
func (b *Bridge) WhisperDecodedResultsGetChunkAt(results Handle, index uint, chunk *ChunkRecord) Status {
	return b.withWhisperResults("whisper_decoded_results_get_chunk_at", results, func(r *whisperResults) error {
		if chunk == nil {
			return null("chunk")
		}
		if index >= uint(len(r.res.Chunks)) {
			return statusErrorf(StatusOutOfBounds, "chunk index %d, have %d", index, len(r.res.Chunks))
		}
		c := r.res.Chunks[index]
		*chunk = ChunkRecord{StartTime: c.StartTime, EndTime: c.EndTime, Text: r.chunkText(int(index))}
		return nil
	})
}

func (b *Bridge) WhisperDecodedResultsGetScoresSize(results Handle, size *uint) Status {
	return b.withWhisperResults("whisper_decoded_results_get_scores_size", results, func(r *whisperResults) error {
		return out(size, uint(len(r.res.Scores)), "scores_size")
	})
}

// WhisperDecodedResultsGetScores copies every score into scores, whose
// length is the caller's capacity.
func (b *Bridge) WhisperDecodedResultsGetScores(results Handle, scores []float32) Status {
	return b.withWhisperResults("whisper_decoded_results_get_scores", results, func(r *whisperResults) error {
		if scores == nil {
			return null("scores")
		}
		if len(scores) < len(r.res.Scores) {
			return statusErrorf(StatusOutOfBounds, "scores capacity %d, have %d", len(scores), len(r.res.Scores))
		}
		copy(scores, r.res.Scores)
		return nil
	})
}

// WhisperDecodedResultsGetString writes all texts joined by newlines.
func (b *Bridge) WhisperDecodedResultsGetString(results Handle, output []byte, outputSize *uint) Status {
	return b.withWhisperResults("whisper_decoded_results_get_string", results, func(r *whisperResults) error {
		return writeString(r.res.String(), output, outputSize)
	})
}
