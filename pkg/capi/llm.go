package capi

import (
	"context"

	"github.com/soundprediction/go-genai-capi/pkg/genai"
)

// LLMPipelineCreate loads a text pipeline. props follows the same rules as
// WhisperPipelineCreate.
func (b *Bridge) LLMPipelineCreate(modelsPath, device *string, props []*string, pipe *Handle) Status {
	return b.call("llm_pipeline_create", func() error {
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
		p, err := genai.NewLLMPipeline(context.Background(), *modelsPath, *device, pp,
			genai.WithBackend(b.text), genai.WithLogger(b.log), genai.WithMetrics(b.metrics))
		if err != nil {
			return err
		}
		b.register(kindLLMPipeline, p, pipe)
		return nil
	})
}

func (b *Bridge) LLMPipelineFree(pipe Handle) {
	p, ok := b.release(pipe, kindLLMPipeline).(*genai.LLMPipeline)
	if !ok {
		return
	}
	if err := p.Close(); err != nil {
		b.log.Warn("closing text pipeline", "error", err)
	}
}

// LLMPipelineGenerate generates a reply to input. config may be zero to use
// the pipeline's config; streamer may be nil.
func (b *Bridge) LLMPipelineGenerate(pipe Handle, input *string, config Handle, streamer genai.Streamer, results *Handle) Status {
	return b.call("llm_pipeline_generate", func() error {
		p, err := lookup[*genai.LLMPipeline](b.handles, pipe, kindLLMPipeline)
		if err != nil {
			return err
		}
		if input == nil {
			return null("inputs")
		}
		if results == nil {
			return null("results")
		}
		var cfg *genai.GenerationConfig
		if config != 0 {
			if cfg, err = lookup[*genai.GenerationConfig](b.handles, config, kindGenerationConfig); err != nil {
				return err
			}
		}
		res, err := p.Generate(context.Background(), *input, cfg, streamer)
		if err != nil {
			return err
		}
		b.register(kindDecodedResults, res, results)
		return nil
	})
}

// LLMPipelineStartChat begins a conversation without a system turn.
func (b *Bridge) LLMPipelineStartChat(pipe Handle) Status {
	return b.call("llm_pipeline_start_chat", func() error {
		p, err := lookup[*genai.LLMPipeline](b.handles, pipe, kindLLMPipeline)
		if err != nil {
			return err
		}
		p.StartChat("")
		return nil
	})
}

// LLMPipelineStartChatWithSystemMessage begins a conversation whose first
// turn is systemMessage. An empty message behaves like LLMPipelineStartChat.
func (b *Bridge) LLMPipelineStartChatWithSystemMessage(pipe Handle, systemMessage *string) Status {
	return b.call("llm_pipeline_start_chat_with_system_message", func() error {
		if systemMessage == nil {
			return null("system_message")
		}
		p, err := lookup[*genai.LLMPipeline](b.handles, pipe, kindLLMPipeline)
		if err != nil {
			return err
		}
		p.StartChat(*systemMessage)
		return nil
	})
}

func (b *Bridge) LLMPipelineFinishChat(pipe Handle) Status {
	return b.call("llm_pipeline_finish_chat", func() error {
		p, err := lookup[*genai.LLMPipeline](b.handles, pipe, kindLLMPipeline)
		if err != nil {
			return err
		}
		p.FinishChat()
		return nil
	})
}

func (b *Bridge) LLMPipelineGetGenerationConfig(pipe Handle, config *Handle) Status {
	return b.call("llm_pipeline_get_generation_config", func() error {
		p, err := lookup[*genai.LLMPipeline](b.handles, pipe, kindLLMPipeline)
		if err != nil {
			return err
		}
		if config == nil {
			return null("config")
		}
		cfg := p.GenerationConfig()
		b.register(kindGenerationConfig, &cfg, config)
		return nil
	})
}

func (b *Bridge) LLMPipelineSetGenerationConfig(pipe, config Handle) Status {
	return b.call("llm_pipeline_set_generation_config", func() error {
		p, err := lookup[*genai.LLMPipeline](b.handles, pipe, kindLLMPipeline)
		if err != nil {
			return err
		}
		cfg, err := lookup[*genai.GenerationConfig](b.handles, config, kindGenerationConfig)
		if err != nil {
			return err
		}
		p.SetGenerationConfig(*cfg)
		return nil
	})
}
