package capi

import (
	"github.com/soundprediction/go-genai-capi/pkg/genai"
)

// Speech and text metrics handles hold the same genai.PerfMetrics copy; only
// the handle kind differs, so each C getter is a thin wrapper over these.

func (b *Bridge) perfPair(op string, h Handle, k kind, mean, std *float32, pick func(*genai.PerfMetrics) genai.MeanStd) Status {
	return b.call(op, func() error {
		pm, err := lookup[*genai.PerfMetrics](b.handles, h, k)
		if err != nil {
			return err
		}
		if mean == nil || std == nil {
			return null("mean/std")
		}
		v := pick(pm)
		*mean, *std = v.Mean, v.Std
		return nil
	})
}

func (b *Bridge) perfValue(op string, h Handle, k kind, fn func(*genai.PerfMetrics) error) Status {
	return b.call(op, func() error {
		pm, err := lookup[*genai.PerfMetrics](b.handles, h, k)
		if err != nil {
			return err
		}
		return fn(pm)
	})
}

func generateDuration(pm *genai.PerfMetrics) genai.MeanStd { return pm.GenerateDuration }
func featuresExtraction(pm *genai.PerfMetrics) genai.MeanStd {
	return pm.FeaturesExtractionDuration
}
func ttft(pm *genai.PerfMetrics) genai.MeanStd       { return pm.TTFT }
func tpot(pm *genai.PerfMetrics) genai.MeanStd       { return pm.TPOT }
func throughput(pm *genai.PerfMetrics) genai.MeanStd { return pm.Throughput }

// Speech.

func (b *Bridge) WhisperPerfMetricsFree(metrics Handle) {
	b.release(metrics, kindWhisperMetrics)
}

func (b *Bridge) WhisperPerfMetricsGetFeaturesExtractionDuration(metrics Handle, mean, std *float32) Status {
	return b.perfPair("whisper_perf_metrics_get_features_extraction_duration", metrics, kindWhisperMetrics, mean, std, featuresExtraction)
}

func (b *Bridge) WhisperPerfMetricsGetGenerateDuration(metrics Handle, mean, std *float32) Status {
	return b.perfPair("whisper_perf_metrics_get_generate_duration", metrics, kindWhisperMetrics, mean, std, generateDuration)
}

func (b *Bridge) WhisperPerfMetricsGetTTFT(metrics Handle, mean, std *float32) Status {
	return b.perfPair("whisper_perf_metrics_get_ttft", metrics, kindWhisperMetrics, mean, std, ttft)
}

func (b *Bridge) WhisperPerfMetricsGetTPOT(metrics Handle, mean, std *float32) Status {
	return b.perfPair("whisper_perf_metrics_get_tpot", metrics, kindWhisperMetrics, mean, std, tpot)
}

func (b *Bridge) WhisperPerfMetricsGetThroughput(metrics Handle, mean, std *float32) Status {
	return b.perfPair("whisper_perf_metrics_get_throughput", metrics, kindWhisperMetrics, mean, std, throughput)
}

func (b *Bridge) WhisperPerfMetricsGetLoadTime(metrics Handle, loadTime *float32) Status {
	return b.perfValue("whisper_perf_metrics_get_load_time", metrics, kindWhisperMetrics, func(pm *genai.PerfMetrics) error {
		return out(loadTime, pm.LoadTime, "load_time")
	})
}

func (b *Bridge) WhisperPerfMetricsGetNumGeneratedTokens(metrics Handle, n *uint) Status {
	return b.perfValue("whisper_perf_metrics_get_num_generated_tokens", metrics, kindWhisperMetrics, func(pm *genai.PerfMetrics) error {
		return out(n, uint(pm.NumGeneratedTokens), "num_generated_tokens")
	})
}

func (b *Bridge) WhisperPerfMetricsGetNumInputTokens(metrics Handle, n *uint) Status {
	return b.perfValue("whisper_perf_metrics_get_num_input_tokens", metrics, kindWhisperMetrics, func(pm *genai.PerfMetrics) error {
		return out(n, uint(pm.NumInputTokens), "num_input_tokens")
	})
}

// Text.

func (b *Bridge) DecodedResultsPerfMetricsFree(metrics Handle) {
	b.release(metrics, kindLLMMetrics)
}

func (b *Bridge) DecodedResultsPerfMetricsGetGenerateDuration(metrics Handle, mean, std *float32) Status {
	return b.perfPair("decoded_results_perf_metrics_get_generate_duration", metrics, kindLLMMetrics, mean, std, generateDuration)
}

func (b *Bridge) DecodedResultsPerfMetricsGetTTFT(metrics Handle, mean, std *float32) Status {
	return b.perfPair("decoded_results_perf_metrics_get_ttft", metrics, kindLLMMetrics, mean, std, ttft)
}

func (b *Bridge) DecodedResultsPerfMetricsGetTPOT(metrics Handle, mean, std *float32) Status {
	return b.perfPair("decoded_results_perf_metrics_get_tpot", metrics, kindLLMMetrics, mean, std, tpot)
}

func (b *Bridge) DecodedResultsPerfMetricsGetThroughput(metrics Handle, mean, std *float32) Status {
	return b.perfPair("decoded_results_perf_metrics_get_throughput", metrics, kindLLMMetrics, mean, std, throughput)
}

func (b *Bridge) DecodedResultsPerfMetricsGetLoadTime(metrics Handle, loadTime *float32) Status {
	return b.perfValue("decoded_results_perf_metrics_get_load_time", metrics, kindLLMMetrics, func(pm *genai.PerfMetrics) error {
		return out(loadTime, pm.LoadTime, "load_time")
	})
}

func (b *Bridge) DecodedResultsPerfMetricsGetNumGeneratedTokens(metrics Handle, n *uint) Status {
	return b.perfValue("decoded_results_perf_metrics_get_num_generated_tokens", metrics, kindLLMMetrics, func(pm *genai.PerfMetrics) error {
		return out(n, uint(pm.NumGeneratedTokens), "num_generated_tokens")
	})
}

func (b *Bridge) DecodedResultsPerfMetricsGetNumInputTokens(metrics Handle, n *uint) Status {
	return b.perfValue("decoded_results_perf_metrics_get_num_input_tokens", metrics, kindLLMMetrics, func(pm *genai.PerfMetrics) error {
		return out(n, uint(pm.NumInputTokens), "num_input_tokens")
	})
}
