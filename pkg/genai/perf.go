package genai

import (
	"math"
	"time"
)

// MeanStd is a mean and population standard deviation pair.
// Durations are in milliseconds, throughput in tokens per second.
type MeanStd struct {
	Mean float32
	Std  float32
}

// PerfMetrics is the summary attached to a finished generation.
type PerfMetrics struct {
	// LoadTime is the model load time of the owning pipeline, in milliseconds.
	LoadTime                   float32
	GenerateDuration           MeanStd
	FeaturesExtractionDuration MeanStd
	TTFT                       MeanStd
	TPOT                       MeanStd
	Throughput                 MeanStd
	NumGeneratedTokens         int
	NumInputTokens             int
}

// RawPerfMetrics are the measurements engines and pipelines collect while
// generating. Summarize turns them into PerfMetrics.
type RawPerfMetrics struct {
	LoadTime                    time.Duration
	GenerateDurations           []time.Duration
	FeaturesExtractionDurations []time.Duration
	// TokenTimes holds the offset from generation start at which each token
	// or streamed fragment became available.
	TokenTimes         []time.Duration
	NumGeneratedTokens int
	NumInputTokens     int
}

// Summarize computes the mean/std pairs.
func (r RawPerfMetrics) Summarize() PerfMetrics {
	m := PerfMetrics{
		LoadTime:                   ms(r.LoadTime),
		GenerateDuration:           durationStats(r.GenerateDurations),
		FeaturesExtractionDuration: durationStats(r.FeaturesExtractionDurations),
		NumGeneratedTokens:         r.NumGeneratedTokens,
		NumInputTokens:             r.NumInputTokens,
	}

	if len(r.TokenTimes) > 0 {
		m.TTFT = MeanStd{Mean: ms(r.TokenTimes[0])}
	}

	var gaps, rates []float64
	for i := 1; i < len(r.TokenTimes); i++ {
		gap := float64(r.TokenTimes[i]-r.TokenTimes[i-1]) / float64(time.Millisecond)
		gaps = append(gaps, gap)
		if gap > 0 {
			rates = append(rates, 1000/gap)
		}
	}
	switch {
	case len(gaps) > 0:
		m.TPOT = meanStd(gaps)
		m.Throughput = meanStd(rates)
	case r.NumGeneratedTokens > 0 && len(r.GenerateDurations) > 0:
		// No per-token timing: spread the total evenly.
		total := float64(r.GenerateDurations[len(r.GenerateDurations)-1]) / float64(time.Millisecond)
		if total > 0 {
			tpot := total / float64(r.NumGeneratedTokens)
			m.TPOT = MeanStd{Mean: float32(tpot)}
			m.Throughput = MeanStd{Mean: float32(1000 / tpot)}
		}
	}
	return m
}

func durationStats(ds []time.Duration) MeanStd {
	if len(ds) == 0 {
		return MeanStd{}
	}
	vals := make([]float64, len(ds))
	for i, d := range ds {
		vals[i] = float64(d) / float64(time.Millisecond)
	}
	return meanStd(vals)
}

func meanStd(vals []float64) MeanStd {
	if len(vals) == 0 {
		return MeanStd{}
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(len(vals))
	var sq float64
	for _, v := range vals {
		sq += (v - mean) * (v - mean)
	}
	return MeanStd{Mean: float32(mean), Std: float32(math.Sqrt(sq / float64(len(vals))))}
}

func ms(d time.Duration) float32 {
	return float32(float64(d) / float64(time.Millisecond))
}
