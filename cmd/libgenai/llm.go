package main

/*
#include "genai_c.h"
*/
import "C"

import (
	"github.com/soundprediction/go-genai-capi/pkg/capi"
)

//export ov_genai_llm_pipeline_create_with_properties
func ov_genai_llm_pipeline_create_with_properties(modelsPath, device *C.char, n C.size_t, args **C.char, pipe *C.uintptr_t) C.int {
	props := goStrings(args, n)
	return newHandle(pipe, func(h *capi.Handle) capi.Status {
		return bridge().LLMPipelineCreate(goString(modelsPath), goString(device), props, h)
	})
}

//export ov_genai_llm_pipeline_free
func ov_genai_llm_pipeline_free(pipe C.uintptr_t) {
	bridge().LLMPipelineFree(handle(pipe))
}

//export ov_genai_llm_pipeline_generate
func ov_genai_llm_pipeline_generate(pipe C.uintptr_t, inputs *C.char, config C.uintptr_t, streamer *C.streamer_callback, results *C.uintptr_t) C.int {
	return newHandle(results, func(h *capi.Handle) capi.Status {
		return bridge().LLMPipelineGenerate(handle(pipe), goString(inputs), handle(config), streamerFrom(streamer), h)
	})
}

//export ov_genai_llm_pipeline_start_chat
func ov_genai_llm_pipeline_start_chat(pipe C.uintptr_t) C.int {
	return status(bridge().LLMPipelineStartChat(handle(pipe)))
}

//export ov_genai_llm_pipeline_start_chat_with_system_message
func ov_genai_llm_pipeline_start_chat_with_system_message(pipe C.uintptr_t, systemMessage *C.char) C.int {
	return status(bridge().LLMPipelineStartChatWithSystemMessage(handle(pipe), goString(systemMessage)))
}

//export ov_genai_llm_pipeline_finish_chat
func ov_genai_llm_pipeline_finish_chat(pipe C.uintptr_t) C.int {
	return status(bridge().LLMPipelineFinishChat(handle(pipe)))
}

//export ov_genai_llm_pipeline_get_generation_config
func ov_genai_llm_pipeline_get_generation_config(pipe C.uintptr_t, config *C.uintptr_t) C.int {
	return newHandle(config, func(h *capi.Handle) capi.Status {
		return bridge().LLMPipelineGetGenerationConfig(handle(pipe), h)
	})
}

//export ov_genai_llm_pipeline_set_generation_config
func ov_genai_llm_pipeline_set_generation_config(pipe, config C.uintptr_t) C.int {
	return status(bridge().LLMPipelineSetGenerationConfig(handle(pipe), handle(config)))
}

// Generation config.

//export ov_genai_generation_config_create
func ov_genai_generation_config_create(config *C.uintptr_t) C.int {
	return newHandle(config, bridge().GenerationConfigCreate)
}

//export ov_genai_generation_config_create_from_json
func ov_genai_generation_config_create_from_json(json *C.char, config *C.uintptr_t) C.int {
	return newHandle(config, func(h *capi.Handle) capi.Status {
		return bridge().GenerationConfigCreateFromJSON(goString(json), h)
	})
}

//export ov_genai_generation_config_free
func ov_genai_generation_config_free(config C.uintptr_t) {
	bridge().GenerationConfigFree(handle(config))
}

//export ov_genai_generation_config_validate
func ov_genai_generation_config_validate(config C.uintptr_t) C.int {
	return status(bridge().GenerationConfigValidate(handle(config)))
}

//export ov_genai_generation_config_set_max_new_tokens
func ov_genai_generation_config_set_max_new_tokens(config C.uintptr_t, v C.size_t) C.int {
	return status(bridge().GenerationConfigSetMaxNewTokens(handle(config), uint(v)))
}

//export ov_genai_generation_config_set_max_length
func ov_genai_generation_config_set_max_length(config C.uintptr_t, v C.size_t) C.int {
	return status(bridge().GenerationConfigSetMaxLength(handle(config), uint(v)))
}

//export ov_genai_generation_config_set_temperature
func ov_genai_generation_config_set_temperature(config C.uintptr_t, v C.float) C.int {
	return status(bridge().GenerationConfigSetTemperature(handle(config), float32(v)))
}

//export ov_genai_generation_config_set_top_p
func ov_genai_generation_config_set_top_p(config C.uintptr_t, v C.float) C.int {
	return status(bridge().GenerationConfigSetTopP(handle(config), float32(v)))
}

//export ov_genai_generation_config_set_top_k
func ov_genai_generation_config_set_top_k(config C.uintptr_t, v C.size_t) C.int {
	return status(bridge().GenerationConfigSetTopK(handle(config), uint(v)))
}

//export ov_genai_generation_config_set_do_sample
func ov_genai_generation_config_set_do_sample(config C.uintptr_t, v C.bool) C.int {
	return status(bridge().GenerationConfigSetDoSample(handle(config), bool(v)))
}

//export ov_genai_generation_config_set_repetition_penalty
func ov_genai_generation_config_set_repetition_penalty(config C.uintptr_t, v C.float) C.int {
	return status(bridge().GenerationConfigSetRepetitionPenalty(handle(config), float32(v)))
}

//export ov_genai_generation_config_set_presence_penalty
func ov_genai_generation_config_set_presence_penalty(config C.uintptr_t, v C.float) C.int {
	return status(bridge().GenerationConfigSetPresencePenalty(handle(config), float32(v)))
}

//export ov_genai_generation_config_set_frequency_penalty
func ov_genai_generation_config_set_frequency_penalty(config C.uintptr_t, v C.float) C.int {
	return status(bridge().GenerationConfigSetFrequencyPenalty(handle(config), float32(v)))
}

//export ov_genai_generation_config_set_stop_strings
func ov_genai_generation_config_set_stop_strings(config C.uintptr_t, strs **C.char, n C.size_t) C.int {
	return status(bridge().GenerationConfigSetStopStrings(handle(config), goStrings(strs, n)))
}

//export ov_genai_generation_config_get_max_new_tokens
func ov_genai_generation_config_get_max_new_tokens(config C.uintptr_t, v *C.size_t) C.int {
	return outValue(v, toSize, func(p *uint) capi.Status {
		return bridge().GenerationConfigGetMaxNewTokens(handle(config), p)
	})
}

//export ov_genai_generation_config_get_max_length
func ov_genai_generation_config_get_max_length(config C.uintptr_t, v *C.size_t) C.int {
	return outValue(v, toSize, func(p *uint) capi.Status {
		return bridge().GenerationConfigGetMaxLength(handle(config), p)
	})
}

//export ov_genai_generation_config_get_temperature
func ov_genai_generation_config_get_temperature(config C.uintptr_t, v *C.float) C.int {
	return outValue(v, toFloat, func(p *float32) capi.Status {
		return bridge().GenerationConfigGetTemperature(handle(config), p)
	})
}

//export ov_genai_generation_config_get_top_p
func ov_genai_generation_config_get_top_p(config C.uintptr_t, v *C.float) C.int {
	return outValue(v, toFloat, func(p *float32) capi.Status {
		return bridge().GenerationConfigGetTopP(handle(config), p)
	})
}

//export ov_genai_generation_config_get_top_k
func ov_genai_generation_config_get_top_k(config C.uintptr_t, v *C.size_t) C.int {
	return outValue(v, toSize, func(p *uint) capi.Status {
		return bridge().GenerationConfigGetTopK(handle(config), p)
	})
}

//export ov_genai_generation_config_get_do_sample
func ov_genai_generation_config_get_do_sample(config C.uintptr_t, v *C.bool) C.int {
	return outValue(v, toBool, func(p *bool) capi.Status {
		return bridge().GenerationConfigGetDoSample(handle(config), p)
	})
}

//export ov_genai_generation_config_get_repetition_penalty
func ov_genai_generation_config_get_repetition_penalty(config C.uintptr_t, v *C.float) C.int {
	return outValue(v, toFloat, func(p *float32) capi.Status {
		return bridge().GenerationConfigGetRepetitionPenalty(handle(config), p)
	})
}

//export ov_genai_generation_config_get_presence_penalty
func ov_genai_generation_config_get_presence_penalty(config C.uintptr_t, v *C.float) C.int {
	return outValue(v, toFloat, func(p *float32) capi.Status {
		return bridge().GenerationConfigGetPresencePenalty(handle(config), p)
	})
}

//export ov_genai_generation_config_get_frequency_penalty
func ov_genai_generation_config_get_frequency_penalty(config C.uintptr_t, v *C.float) C.int {
	return outValue(v, toFloat, func(p *float32) capi.Status {
		return bridge().GenerationConfigGetFrequencyPenalty(handle(config), p)
	})
}

//export ov_genai_generation_config_get_stop_strings_size
func ov_genai_generation_config_get_stop_strings_size(config C.uintptr_t, v *C.size_t) C.int {
	return outValue(v, toSize, func(p *uint) capi.Status {
		return bridge().GenerationConfigGetStopStringsSize(handle(config), p)
	})
}

//export ov_genai_generation_config_get_stop_string_at
func ov_genai_generation_config_get_stop_string_at(config C.uintptr_t, index C.size_t, output *C.char, outputSize *C.size_t) C.int {
	return twoPhase(output, outputSize, func(o []byte, n *uint) capi.Status {
		return bridge().GenerationConfigGetStopStringAt(handle(config), uint(index), o, n)
	})
}

// Decoded results.

//export ov_genai_decoded_results_create
func ov_genai_decoded_results_create(results *C.uintptr_t) C.int {
	return newHandle(results, bridge().DecodedResultsCreate)
}

//export ov_genai_decoded_results_free
func ov_genai_decoded_results_free(results C.uintptr_t) {
	bridge().DecodedResultsFree(handle(results))
}

//export ov_genai_decoded_results_get_perf_metrics
func ov_genai_decoded_results_get_perf_metrics(results C.uintptr_t, metrics *C.uintptr_t) C.int {
	return newHandle(metrics, func(h *capi.Handle) capi.Status {
		return bridge().DecodedResultsGetPerfMetrics(handle(results), h)
	})
}

//export ov_genai_decoded_results_get_string
func ov_genai_decoded_results_get_string(results C.uintptr_t, output *C.char, outputSize *C.size_t) C.int {
	return twoPhase(output, outputSize, func(o []byte, n *uint) capi.Status {
		return bridge().DecodedResultsGetString(handle(results), o, n)
	})
}

// Perf metrics.

//export ov_genai_decoded_results_perf_metrics_free
func ov_genai_decoded_results_perf_metrics_free(metrics C.uintptr_t) {
	bridge().DecodedResultsPerfMetricsFree(handle(metrics))
}

//export ov_genai_decoded_results_perf_metrics_get_load_time
func ov_genai_decoded_results_perf_metrics_get_load_time(metrics C.uintptr_t, v *C.float) C.int {
	return outValue(v, toFloat, func(p *float32) capi.Status {
		return bridge().DecodedResultsPerfMetricsGetLoadTime(handle(metrics), p)
	})
}

//export ov_genai_decoded_results_perf_metrics_get_generate_duration
func ov_genai_decoded_results_perf_metrics_get_generate_duration(metrics C.uintptr_t, mean, std *C.float) C.int {
	return outPair(mean, std, func(m, s *float32) capi.Status {
		return bridge().DecodedResultsPerfMetricsGetGenerateDuration(handle(metrics), m, s)
	})
}

//export ov_genai_decoded_results_perf_metrics_get_ttft
func ov_genai_decoded_results_perf_metrics_get_ttft(metrics C.uintptr_t, mean, std *C.float) C.int {
	return outPair(mean, std, func(m, s *float32) capi.Status {
		return bridge().DecodedResultsPerfMetricsGetTTFT(handle(metrics), m, s)
	})
}

//export ov_genai_decoded_results_perf_metrics_get_tpot
func ov_genai_decoded_results_perf_metrics_get_tpot(metrics C.uintptr_t, mean, std *C.float) C.int {
	return outPair(mean, std, func(m, s *float32) capi.Status {
		return bridge().DecodedResultsPerfMetricsGetTPOT(handle(metrics), m, s)
	})
}

//export ov_genai_decoded_results_perf_metrics_get_throughput
func ov_genai_decoded_results_perf_metrics_get_throughput(metrics C.uintptr_t, mean, std *C.float) C.int {
	return outPair(mean, std, func(m, s *float32) capi.Status {
		return bridge().DecodedResultsPerfMetricsGetThroughput(handle(metrics), m, s)
	})
}

//export ov_genai_decoded_results_perf_metrics_get_num_generated_tokens
func ov_genai_decoded_results_perf_metrics_get_num_generated_tokens(metrics C.uintptr_t, v *C.size_t) C.int {
	return outValue(v, toSize, func(p *uint) capi.Status {
		return bridge().DecodedResultsPerfMetricsGetNumGeneratedTokens(handle(metrics), p)
	})
}

//export ov_genai_decoded_results_perf_metrics_get_num_input_tokens
func ov_genai_decoded_results_perf_metrics_get_num_input_tokens(metrics C.uintptr_t, v *C.size_t) C.int {
	return outValue(v, toSize, func(p *uint) capi.Status {
		return bridge().DecodedResultsPerfMetricsGetNumInputTokens(handle(metrics), p)
	})
}
