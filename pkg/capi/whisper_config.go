package capi

import (
	"slices"

	"github.com/soundprediction/go-genai-capi/pkg/genai"
)

// WhisperGenerationConfigCreate returns a config handle with the speech
// defaults.
func (b *Bridge) WhisperGenerationConfigCreate(config *Handle) Status {
	return b.call("whisper_generation_config_create", func() error {
		if config == nil {
			return null("config")
		}
		cfg := genai.DefaultWhisperGenerationConfig()
		b.register(kindWhisperConfig, &cfg, config)
		return nil
	})
}

// WhisperGenerationConfigFree releases a config handle.
func (b *Bridge) WhisperGenerationConfigFree(config Handle) {
	b.release(config, kindWhisperConfig)
}

// withWhisperConfig runs fn on the config behind h inside the guard.
func (b *Bridge) withWhisperConfig(op string, h Handle, fn func(*genai.WhisperGenerationConfig) error) Status {
	return b.call(op, func() error {
		cfg, err := lookup[*genai.WhisperGenerationConfig](b.handles, h, kindWhisperConfig)
		if err != nil {
			return err
		}
		return fn(cfg)
	})
}

func (b *Bridge) WhisperGenerationConfigSetLanguage(config Handle, language *string) Status {
	return b.withWhisperConfig("whisper_generation_config_set_language", config, func(c *genai.WhisperGenerationConfig) error {
		if language == nil {
			return null("language")
		}
		c.Language = *language
		return nil
	})
}

func (b *Bridge) WhisperGenerationConfigSetTask(config Handle, task *string) Status {
	return b.withWhisperConfig("whisper_generation_config_set_task", config, func(c *genai.WhisperGenerationConfig) error {
		if task == nil {
			return null("task")
		}
		c.Task = genai.Task(*task)
		return nil
	})
}

func (b *Bridge) WhisperGenerationConfigSetReturnTimestamps(config Handle, v bool) Status {
	return b.withWhisperConfig("whisper_generation_config_set_return_timestamps", config, func(c *genai.WhisperGenerationConfig) error {
		c.ReturnTimestamps = v
		return nil
	})
}

func (b *Bridge) WhisperGenerationConfigSetInitialPrompt(config Handle, prompt *string) Status {
	return b.withWhisperConfig("whisper_generation_config_set_initial_prompt", config, func(c *genai.WhisperGenerationConfig) error {
		if prompt == nil {
			return null("initial_prompt")
		}
		c.InitialPrompt = *prompt
		return nil
	})
}

func (b *Bridge) WhisperGenerationConfigSetHotwords(config Handle, hotwords *string) Status {
	return b.withWhisperConfig("whisper_generation_config_set_hotwords", config, func(c *genai.WhisperGenerationConfig) error {
		if hotwords == nil {
			return null("hotwords")
		}
		c.Hotwords = *hotwords
		return nil
	})
}

func (b *Bridge) WhisperGenerationConfigSetMaxInitialTimestampIndex(config Handle, v uint) Status {
	return b.withWhisperConfig("whisper_generation_config_set_max_initial_timestamp_index", config, func(c *genai.WhisperGenerationConfig) error {
		c.MaxInitialTimestampIndex = v
		return nil
	})
}

func (b *Bridge) WhisperGenerationConfigSetDecoderStartTokenID(config Handle, v int64) Status {
	return b.withWhisperConfig("whisper_generation_config_set_decoder_start_token_id", config, func(c *genai.WhisperGenerationConfig) error {
		c.DecoderStartTokenID = v
		return nil
	})
}

// WhisperGenerationConfigSetSuppressTokens replaces the suppress list. A
// nil slice stands for a NULL array; an empty one clears the list.
func (b *Bridge) WhisperGenerationConfigSetSuppressTokens(config Handle, tokens []int64) Status {
	return b.withWhisperConfig("whisper_generation_config_set_suppress_tokens", config, func(c *genai.WhisperGenerationConfig) error {
		if tokens == nil {
			return null("suppress_tokens")
		}
		c.SuppressTokens = slices.Clone(tokens)
		return nil
	})
}

func (b *Bridge) WhisperGenerationConfigSetBeginSuppressTokens(config Handle, tokens []int64) Status {
	return b.withWhisperConfig("whisper_generation_config_set_begin_suppress_tokens", config, func(c *genai.WhisperGenerationConfig) error {
		if tokens == nil {
			return null("begin_suppress_tokens")
		}
		c.BeginSuppressTokens = slices.Clone(tokens)
		return nil
	})
}

func (b *Bridge) WhisperGenerationConfigSetMaxNewTokens(config Handle, v uint) Status {
	return b.withWhisperConfig("whisper_generation_config_set_max_new_tokens", config, func(c *genai.WhisperGenerationConfig) error {
		c.MaxNewTokens = v
		return nil
	})
}

// Getters.

func (b *Bridge) WhisperGenerationConfigGetLanguage(config Handle, output []byte, outputSize *uint) Status {
	return b.withWhisperConfig("whisper_generation_config_get_language", config, func(c *genai.WhisperGenerationConfig) error {
		return writeString(c.Language, output, outputSize)
	})
}

func (b *Bridge) WhisperGenerationConfigGetTask(config Handle, output []byte, outputSize *uint) Status {
	return b.withWhisperConfig("whisper_generation_config_get_task", config, func(c *genai.WhisperGenerationConfig) error {
		return writeString(string(c.Task), output, outputSize)
	})
}

func (b *Bridge) WhisperGenerationConfigGetInitialPrompt(config Handle, output []byte, outputSize *uint) Status {
	return b.withWhisperConfig("whisper_generation_config_get_initial_prompt", config, func(c *genai.WhisperGenerationConfig) error {
		return writeString(c.InitialPrompt, output, outputSize)
	})
}

func (b *Bridge) WhisperGenerationConfigGetHotwords(config Handle, output []byte, outputSize *uint) Status {
	return b.withWhisperConfig("whisper_generation_config_get_hotwords", config, func(c *genai.WhisperGenerationConfig) error {
		return writeString(c.Hotwords, output, outputSize)
	})
}

func (b *Bridge) WhisperGenerationConfigGetReturnTimestamps(config Handle, v *bool) Status {
	return b.withWhisperConfig("whisper_generation_config_get_return_timestamps", config, func(c *genai.WhisperGenerationConfig) error {
		return out(v, c.ReturnTimestamps, "return_timestamps")
	})
}

func (b *Bridge) WhisperGenerationConfigGetMaxInitialTimestampIndex(config Handle, v *uint) Status {
	return b.withWhisperConfig("whisper_generation_config_get_max_initial_timestamp_index", config, func(c *genai.WhisperGenerationConfig) error {
		return out(v, c.MaxInitialTimestampIndex, "max_initial_timestamp_index")
	})
}

func (b *Bridge) WhisperGenerationConfigGetDecoderStartTokenID(config Handle, v *int64) Status {
	return b.withWhisperConfig("whisper_generation_config_get_decoder_start_token_id", config, func(c *genai.WhisperGenerationConfig) error {
		return out(v, c.DecoderStartTokenID, "decoder_start_token_id")
	})
}

func (b *Bridge) WhisperGenerationConfigGetMaxNewTokens(config Handle, v *uint) Status {
	return b.withWhisperConfig("whisper_generation_config_get_max_new_tokens", config, func(c *genai.WhisperGenerationConfig) error {
		return out(v, c.MaxNewTokens, "max_new_tokens")
	})
}

// out stores v through a required output pointer.
func out[T any](dst *T, v T, name string) error {
	if dst == nil {
		return null(name)
	}
	*dst = v
	return nil
}
