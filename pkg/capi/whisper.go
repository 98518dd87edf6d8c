package capi

import (
	"context"

	"github.com/soundprediction/go-genai-capi/pkg/genai"
)

// WhisperPipelineCreate loads a speech pipeline. props holds the trailing
// key/value C strings in order; its length must be even.
func (b *Bridge) WhisperPipelineCreate(modelsPath, device *string, props []*string, pipe *Handle) Status {
	return b.call("whisper_pipeline_create", func() error {
		if modelsPath == nil {
			return null("models_path")
		}
		if device == nil {
			return null("device")
		}
		if pipe == nil {
			return null("pipe")
		}
		pp, err := propertyList(props)
		if err != nil {
			return err
		}
		p, err := genai.NewWhisperPipeline(context.Background(), *modelsPath, *device, pp,
			genai.WithBackend(b.speech), genai.WithLogger(b.log), genai.WithMetrics(b.metrics))
		if err != nil {
			return err
		}
		b.register(kindWhisperPipeline, p, pipe)
		return nil
	})
}

// WhisperPipelineFree releases the pipeline and its engine.
func (b *Bridge) WhisperPipelineFree(pipe Handle) {
	p, ok := b.release(pipe, kindWhisperPipeline).(*genai.WhisperPipeline)
	if !ok {
		return
	}
	if err := p.Close(); err != nil {
		b.log.Warn("closing speech pipeline", "error", err)
	}
}

// WhisperPipelineGenerate transcribes 16 kHz mono samples. A zero config
// uses the pipeline's current config. input is nil for a NULL pointer.
func (b *Bridge) WhisperPipelineGenerate(pipe Handle, input []float32, config Handle, results *Handle) Status {
	return b.call("whisper_pipeline_generate", func() error {
		p, err := lookup[*genai.WhisperPipeline](b.handles, pipe, kindWhisperPipeline)
		if err != nil {
			return err
		}
		if input == nil {
			return null("input")
		}
		if results == nil {
			return null("results")
		}
		var cfg *genai.WhisperGenerationConfig
		if config != 0 {
			if cfg, err = lookup[*genai.WhisperGenerationConfig](b.handles, config, kindWhisperConfig); err != nil {
				return err
			}
		}
		res, err := p.Generate(context.Background(), input, cfg)
		if err != nil {
			return err
		}
		b.register(kindWhisperResults, newWhisperResults(res, b.alloc), results)
		return nil
	})
}

// WhisperPipelineGetGenerationConfig returns a new config handle holding a
// copy of the pipeline's config.
func (b *Bridge) WhisperPipelineGetGenerationConfig(pipe Handle, config *Handle) Status {
	return b.call("whisper_pipeline_get_generation_config", func() error {
		p, err := lookup[*genai.WhisperPipeline](b.handles, pipe, kindWhisperPipeline)
		if err != nil {
			return err
		}
		if config == nil {
			return null("config")
		}
		cfg := p.GenerationConfig()
		b.register(kindWhisperConfig, &cfg, config)
		return nil
	})
}

// WhisperPipelineSetGenerationConfig copies config into the pipeline.
func (b *Bridge) WhisperPipelineSetGenerationConfig(pipe, config Handle) Status {
	return b.call("whisper_pipeline_set_generation_config", func() error {
		p, err := lookup[*genai.WhisperPipeline](b.handles, pipe, kindWhisperPipeline)
		if err != nil {
			return err
		}
		cfg, err := lookup[*genai.WhisperGenerationConfig](b.handles, config, kindWhisperConfig)
		if err != nil {
			return err
		}
		p.SetGenerationConfig(*cfg)
		return nil
	})
}

// propertyList converts trailing C strings to pairs. A NULL element or an
// odd count is a contract violation.
func propertyList(args []*string) (genai.Properties, error) {
	flat := make([]string, len(args))
	for i, a := range args {
		if a == nil {
			return nil, statusErrorf(StatusInvalidCParam, "property argument %d is null", i)
		}
		flat[i] = *a
	}
	props, err := genai.ParseProperties(flat)
	if err != nil {
		return nil, statusErrorf(StatusInvalidCParam, "%v", err)
	}
	return props, nil
}
