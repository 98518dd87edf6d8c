package main

/*
#include "genai_c.h"
*/
import "C"

import (
	"slices"
	"unsafe"

	"github.com/soundprediction/go-genai-capi/pkg/capi"
)

//export ov_genai_whisper_pipeline_create_with_properties
func ov_genai_whisper_pipeline_create_with_properties(modelsPath, device *C.char, n C.size_t, args **C.char, pipe *C.uintptr_t) C.int {
	props := goStrings(args, n)
	return newHandle(pipe, func(h *capi.Handle) capi.Status {
		return bridge().WhisperPipelineCreate(goString(modelsPath), goString(device), props, h)
	})
}

//export ov_genai_whisper_pipeline_free
func ov_genai_whisper_pipeline_free(pipe C.uintptr_t) {
	bridge().WhisperPipelineFree(handle(pipe))
}

//export ov_genai_whisper_pipeline_generate
func ov_genai_whisper_pipeline_generate(pipe C.uintptr_t, input *C.float, n C.size_t, config C.uintptr_t, results *C.uintptr_t) C.int {
	var samples []float32
	if input != nil {
		samples = slices.Clone(unsafe.Slice((*float32)(unsafe.Pointer(input)), int(n)))
	}
	return newHandle(results, func(h *capi.Handle) capi.Status {
		return bridge().WhisperPipelineGenerate(handle(pipe), samples, handle(config), h)
	})
}

//export ov_genai_whisper_pipeline_get_generation_config
func ov_genai_whisper_pipeline_get_generation_config(pipe C.uintptr_t, config *C.uintptr_t) C.int {
	return newHandle(config, func(h *capi.Handle) capi.Status {
		return bridge().WhisperPipelineGetGenerationConfig(handle(pipe), h)
	})
}

//export ov_genai_whisper_pipeline_set_generation_config
func ov_genai_whisper_pipeline_set_generation_config(pipe, config C.uintptr_t) C.int {
	return status(bridge().WhisperPipelineSetGenerationConfig(handle(pipe), handle(config)))
}

// Generation config.

//export ov_genai_whisper_generation_config_create
func ov_genai_whisper_generation_config_create(config *C.uintptr_t) C.int {
	return newHandle(config, bridge().WhisperGenerationConfigCreate)
}

//export ov_genai_whisper_generation_config_free
func ov_genai_whisper_generation_config_free(config C.uintptr_t) {
	bridge().WhisperGenerationConfigFree(handle(config))
}

//export ov_genai_whisper_generation_config_set_language
func ov_genai_whisper_generation_config_set_language(config C.uintptr_t, language *C.char) C.int {
	return status(bridge().WhisperGenerationConfigSetLanguage(handle(config), goString(language)))
}

//export ov_genai_whisper_generation_config_set_task
func ov_genai_whisper_generation_config_set_task(config C.uintptr_t, task *C.char) C.int {
	return status(bridge().WhisperGenerationConfigSetTask(handle(config), goString(task)))
}

//export ov_genai_whisper_generation_config_set_return_timestamps
func ov_genai_whisper_generation_config_set_return_timestamps(config C.uintptr_t, v C.bool) C.int {
	return status(bridge().WhisperGenerationConfigSetReturnTimestamps(handle(config), bool(v)))
}

//export ov_genai_whisper_generation_config_set_initial_prompt
func ov_genai_whisper_generation_config_set_initial_prompt(config C.uintptr_t, prompt *C.char) C.int {
	return status(bridge().WhisperGenerationConfigSetInitialPrompt(handle(config), goString(prompt)))
}

//export ov_genai_whisper_generation_config_set_hotwords
func ov_genai_whisper_generation_config_set_hotwords(config C.uintptr_t, hotwords *C.char) C.int {
	return status(bridge().WhisperGenerationConfigSetHotwords(handle(config), goString(hotwords)))
}

//export ov_genai_whisper_generation_config_set_max_initial_timestamp_index
func ov_genai_whisper_generation_config_set_max_initial_timestamp_index(config C.uintptr_t, v C.size_t) C.int {
	return status(bridge().WhisperGenerationConfigSetMaxInitialTimestampIndex(handle(config), uint(v)))
}

//export ov_genai_whisper_generation_config_set_decoder_start_token_id
func ov_genai_whisper_generation_config_set_decoder_start_token_id(config C.uintptr_t, v C.int64_t) C.int {
	return status(bridge().WhisperGenerationConfigSetDecoderStartTokenID(handle(config), int64(v)))
}

func int64s(p *C.int64_t, n C.size_t) []int64 {
	if p == nil {
		return nil
	}
	return slices.Clone(unsafe.Slice((*int64)(unsafe.Pointer(p)), int(n)))
}

//export ov_genai_whisper_generation_config_set_suppress_tokens
func ov_genai_whisper_generation_config_set_suppress_tokens(config C.uintptr_t, tokens *C.int64_t, n C.size_t) C.int {
	return status(bridge().WhisperGenerationConfigSetSuppressTokens(handle(config), int64s(tokens, n)))
}

//export ov_genai_whisper_generation_config_set_begin_suppress_tokens
func ov_genai_whisper_generation_config_set_begin_suppress_tokens(config C.uintptr_t, tokens *C.int64_t, n C.size_t) C.int {
	return status(bridge().WhisperGenerationConfigSetBeginSuppressTokens(handle(config), int64s(tokens, n)))
}

//export ov_genai_whisper_generation_config_set_max_new_tokens
func ov_genai_whisper_generation_config_set_max_new_tokens(config C.uintptr_t, v C.size_t) C.int {
	return status(bridge().WhisperGenerationConfigSetMaxNewTokens(handle(config), uint(v)))
}

//export ov_genai_whisper_generation_config_get_language
func ov_genai_whisper_generation_config_get_language(config C.uintptr_t, output *C.char, outputSize *C.size_t) C.int {
	return twoPhase(output, outputSize, func(o []byte, n *uint) capi.Status {
		return bridge().WhisperGenerationConfigGetLanguage(handle(config), o, n)
	})
}

//export ov_genai_whisper_generation_config_get_task
func ov_genai_whisper_generation_config_get_task(config C.uintptr_t, output *C.char, outputSize *C.size_t) C.int {
	return twoPhase(output, outputSize, func(o []byte, n *uint) capi.Status {
		return bridge().WhisperGenerationConfigGetTask(handle(config), o, n)
	})
}

//export ov_genai_whisper_generation_config_get_initial_prompt
func ov_genai_whisper_generation_config_get_initial_prompt(config C.uintptr_t, output *C.char, outputSize *C.size_t) C.int {
	return twoPhase(output, outputSize, func(o []byte, n *uint) capi.Status {
		return bridge().WhisperGenerationConfigGetInitialPrompt(handle(config), o, n)
	})
}

//export ov_genai_whisper_generation_config_get_hotwords
func ov_genai_whisper_generation_config_get_hotwords(config C.uintptr_t, output *C.char, outputSize *C.size_t) C.int {
	return twoPhase(output, outputSize, func(o []byte, n *uint) capi.Status {
		return bridge().WhisperGenerationConfigGetHotwords(handle(config), o, n)
	})
}

//export ov_genai_whisper_generation_config_get_return_timestamps
func ov_genai_whisper_generation_config_get_return_timestamps(config C.uintptr_t, v *C.bool) C.int {
	return outValue(v, toBool, func(p *bool) capi.Status {
		return bridge().WhisperGenerationConfigGetReturnTimestamps(handle(config), p)
	})
}

//export ov_genai_whisper_generation_config_get_max_initial_timestamp_index
func ov_genai_whisper_generation_config_get_max_initial_timestamp_index(config C.uintptr_t, v *C.size_t) C.int {
	return outValue(v, toSize, func(p *uint) capi.Status {
		return bridge().WhisperGenerationConfigGetMaxInitialTimestampIndex(handle(config), p)
	})
}

//export ov_genai_whisper_generation_config_get_decoder_start_token_id
func ov_genai_whisper_generation_config_get_decoder_start_token_id(config C.uintptr_t, v *C.int64_t) C.int {
	return outValue(v, toInt64, func(p *int64) capi.Status {
		return bridge().WhisperGenerationConfigGetDecoderStartTokenID(handle(config), p)
	})
}

//export ov_genai_whisper_generation_config_get_max_new_tokens
func ov_genai_whisper_generation_config_get_max_new_tokens(config C.uintptr_t, v *C.size_t) C.int {
	return outValue(v, toSize, func(p *uint) capi.Status {
		return bridge().WhisperGenerationConfigGetMaxNewTokens(handle(config), p)
	})
}

// Decoded results.

//export ov_genai_whisper_decoded_results_create
func ov_genai_whisper_decoded_results_create(results *C.uintptr_t) C.int {
	return newHandle(results, bridge().WhisperDecodedResultsCreate)
}

//export ov_genai_whisper_decoded_results_free
func ov_genai_whisper_decoded_results_free(results C.uintptr_t) {
	bridge().WhisperDecodedResultsFree(handle(results))
}

//export ov_genai_whisper_decoded_results_get_perf_metrics
func ov_genai_whisper_decoded_results_get_perf_metrics(results C.uintptr_t, metrics *C.uintptr_t) C.int {
	return newHandle(metrics, func(h *capi.Handle) capi.Status {
		return bridge().WhisperDecodedResultsGetPerfMetrics(handle(results), h)
	})
}

//export ov_genai_whisper_decoded_results_get_texts_size
func ov_genai_whisper_decoded_results_get_texts_size(results C.uintptr_t, size *C.size_t) C.int {
	return outValue(size, toSize, func(p *uint) capi.Status {
		return bridge().WhisperDecodedResultsGetTextsSize(handle(results), p)
	})
}

//export ov_genai_whisper_decoded_results_get_text_at
func ov_genai_whisper_decoded_results_get_text_at(results C.uintptr_t, index C.size_t, output *C.char, outputSize *C.size_t) C.int {
	return twoPhase(output, outputSize, func(o []byte, n *uint) capi.Status {
		return bridge().WhisperDecodedResultsGetTextAt(handle(results), uint(index), o, n)
	})
}

//export ov_genai_whisper_decoded_results_get_chunks_size
func ov_genai_whisper_decoded_results_get_chunks_size(results C.uintptr_t, size *C.size_t) C.int {
	return outValue(size, toSize, func(p *uint) capi.Status {
		return bridge().WhisperDecodedResultsGetChunksSize(handle(results), p)
	})
}

//export ov_genai_whisper_decoded_results_get_chunk_at
func ov_genai_whisper_decoded_results_get_chunk_at(results C.uintptr_t, index C.size_t, chunk *C.whisper_result_chunk) C.int {
	if chunk == nil {
		return status(bridge().WhisperDecodedResultsGetChunkAt(handle(results), uint(index), nil))
	}
	var rec capi.ChunkRecord
	st := bridge().WhisperDecodedResultsGetChunkAt(handle(results), uint(index), &rec)
	if st == capi.StatusOK {
		chunk.start_time = C.float(rec.StartTime)
		chunk.end_time = C.float(rec.EndTime)
		chunk.text = (*C.char)(rec.Text)
	}
	return status(st)
}

//export ov_genai_whisper_decoded_results_get_scores_size
func ov_genai_whisper_decoded_results_get_scores_size(results C.uintptr_t, size *C.size_t) C.int {
	return outValue(size, toSize, func(p *uint) capi.Status {
		return bridge().WhisperDecodedResultsGetScoresSize(handle(results), p)
	})
}

//export ov_genai_whisper_decoded_results_get_scores
func ov_genai_whisper_decoded_results_get_scores(results C.uintptr_t, scores *C.float, n C.size_t) C.int {
	var buf []float32
	if scores != nil {
		buf = unsafe.Slice((*float32)(unsafe.Pointer(scores)), int(n))
	}
	return status(bridge().WhisperDecodedResultsGetScores(handle(results), buf))
}

//export ov_genai_whisper_decoded_results_get_string
func ov_genai_whisper_decoded_results_get_string(results C.uintptr_t, output *C.char, outputSize *C.size_t) C.int {
	return twoPhase(output, outputSize, func(o []byte, n *uint) capi.Status {
		return bridge().WhisperDecodedResultsGetString(handle(results), o, n)
	})
}

// Perf metrics.

//export ov_genai_whisper_perf_metrics_free
func ov_genai_whisper_perf_metrics_free(metrics C.uintptr_t) {
	bridge().WhisperPerfMetricsFree(handle(metrics))
}

//export ov_genai_whisper_perf_metrics_get_load_time
func ov_genai_whisper_perf_metrics_get_load_time(metrics C.uintptr_t, v *C.float) C.int {
	return outValue(v, toFloat, func(p *float32) capi.Status {
		return bridge().WhisperPerfMetricsGetLoadTime(handle(metrics), p)
	})
}

//export ov_genai_whisper_perf_metrics_get_features_extraction_duration
func ov_genai_whisper_perf_metrics_get_features_extraction_duration(metrics C.uintptr_t, mean, std *C.float) C.int {
	return outPair(mean, std, func(m, s *float32) capi.Status {
		return bridge().WhisperPerfMetricsGetFeaturesExtractionDuration(handle(metrics), m, s)
	})
}

//export ov_genai_whisper_perf_metrics_get_generate_duration
func ov_genai_whisper_perf_metrics_get_generate_duration(metrics C.uintptr_t, mean, std *C.float) C.int {
	return outPair(mean, std, func(m, s *float32) capi.Status {
		return bridge().WhisperPerfMetricsGetGenerateDuration(handle(metrics), m, s)
	})
}

//export ov_genai_whisper_perf_metrics_get_ttft
func ov_genai_whisper_perf_metrics_get_ttft(metrics C.uintptr_t, mean, std *C.float) C.int {
	return outPair(mean, std, func(m, s *float32) capi.Status {
		return bridge().WhisperPerfMetricsGetTTFT(handle(metrics), m, s)
	})
}

//export ov_genai_whisper_perf_metrics_get_tpot
func ov_genai_whisper_perf_metrics_get_tpot(metrics C.uintptr_t, mean, std *C.float) C.int {
	return outPair(mean, std, func(m, s *float32) capi.Status {
		return bridge().WhisperPerfMetricsGetTPOT(handle(metrics), m, s)
	})
}

//export ov_genai_whisper_perf_metrics_get_throughput
func ov_genai_whisper_perf_metrics_get_throughput(metrics C.uintptr_t, mean, std *C.float) C.int {
	return outPair(mean, std, func(m, s *float32) capi.Status {
		return bridge().WhisperPerfMetricsGetThroughput(handle(metrics), m, s)
	})
}

//export ov_genai_whisper_perf_metrics_get_num_generated_tokens
func ov_genai_whisper_perf_metrics_get_num_generated_tokens(metrics C.uintptr_t, v *C.size_t) C.int {
	return outValue(v, toSize, func(p *uint) capi.Status {
		return bridge().WhisperPerfMetricsGetNumGeneratedTokens(handle(metrics), p)
	})
}

//export ov_genai_whisper_perf_metrics_get_num_input_tokens
func ov_genai_whisper_perf_metrics_get_num_input_tokens(metrics C.uintptr_t, v *C.size_t) C.int {
	return outValue(v, toSize, func(p *uint) capi.Status {
		return bridge().WhisperPerfMetricsGetNumInputTokens(handle(metrics), p)
	})
}
