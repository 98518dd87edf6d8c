package main

// Engine backends compiled into the library. Each registers itself with
// pkg/genai; GENAI_BACKEND or the config file picks one per pipeline.
import (
	_ "github.com/soundprediction/go-genai-capi/pkg/anyllm"
	_ "github.com/soundprediction/go-genai-capi/pkg/candle"
	_ "github.com/soundprediction/go-genai-capi/pkg/openai"
	_ "github.com/soundprediction/go-genai-capi/pkg/whispercpp"
)
