package capi

import (
	"github.com/soundprediction/go-genai-capi/pkg/genai"
)

// DecodedResultsCreate returns an empty text results handle.
func (b *Bridge) DecodedResultsCreate(results *Handle) Status {
	return b.call("decoded_results_create", func() error {
		if results == nil {
			return null("results")
		}
		b.register(kindDecodedResults, &genai.DecodedResults{}, results)
		return nil
	})
}

func (b *Bridge) DecodedResultsFree(results Handle) {
	b.release(results, kindDecodedResults)
}

func (b *Bridge) DecodedResultsGetPerfMetrics(results Handle, metrics *Handle) Status {
	return b.call("decoded_results_get_perf_metrics", func() error {
		r, err := lookup[*genai.DecodedResults](b.handles, results, kindDecodedResults)
		if err != nil {
			return err
		}
		if metrics == nil {
			return null("metrics")
		}
		pm := r.PerfMetrics
		b.register(kindLLMMetrics, &pm, metrics)
		return nil
	})
}

// DecodedResultsGetString writes the generated text, two-phase. Multiple
// texts are joined by newlines.
func (b *Bridge) DecodedResultsGetString(results Handle, output []byte, outputSize *uint) Status {
	return b.call("decoded_results_get_string", func() error {
		r, err := lookup[*genai.DecodedResults](b.handles, results, kindDecodedResults)
		if err != nil {
			return err
		}
		return writeString(r.String(), output, outputSize)
	})
}
