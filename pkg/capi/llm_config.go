package capi

import (
	"github.com/soundprediction/go-genai-capi/pkg/genai"
)

func (b *Bridge) GenerationConfigCreate(config *Handle) Status {
	return b.call("generation_config_create", func() error {
		if config == nil {
			return null("config")
		}
		cfg := genai.DefaultGenerationConfig()
		b.register(kindGenerationConfig, &cfg, config)
		return nil
	})
}

// GenerationConfigCreateFromJSON builds a config from a JSON object using the
// keys of genai.GenerationConfig. Omitted keys keep their defaults.
func (b *Bridge) GenerationConfigCreateFromJSON(json *string, config *Handle) Status {
	return b.call("generation_config_create_from_json", func() error {
		if json == nil {
			return null("json")
		}
		if config == nil {
			return null("config")
		}
		cfg, err := genai.ParseGenerationConfig([]byte(*json))
		if err != nil {
			return err
		}
		b.register(kindGenerationConfig, &cfg, config)
		return nil
	})
}

func (b *Bridge) GenerationConfigFree(config Handle) {
	b.release(config, kindGenerationConfig)
}

func (b *Bridge) withGenerationConfig(op string, h Handle, fn func(*genai.GenerationConfig) error) Status {
	return b.call(op, func() error {
		cfg, err := lookup[*genai.GenerationConfig](b.handles, h, kindGenerationConfig)
		if err != nil {
			return err
		}
		return fn(cfg)
	})
}

// GenerationConfigValidate runs the range checks generate applies.
func (b *Bridge) GenerationConfigValidate(config Handle) Status {
	return b.withGenerationConfig("generation_config_validate", config, func(c *genai.GenerationConfig) error {
		return c.Validate()
	})
}

func (b *Bridge) GenerationConfigSetMaxNewTokens(config Handle, v uint) Status {
	return b.withGenerationConfig("generation_config_set_max_new_tokens", config, func(c *genai.GenerationConfig) error {
		c.MaxNewTokens = v
		return nil
	})
}

func (b *Bridge) GenerationConfigSetMaxLength(config Handle, v uint) Status {
	return b.withGenerationConfig("generation_config_set_max_length", config, func(c *genai.GenerationConfig) error {
		c.MaxLength = v
		return nil
	})
}

func (b *Bridge) GenerationConfigSetTemperature(config Handle, v float32) Status {
	return b.withGenerationConfig("generation_config_set_temperature", config, func(c *genai.GenerationConfig) error {
		c.Temperature = v
		return nil
	})
}

func (b *Bridge) GenerationConfigSetTopP(config Handle, v float32) Status {
	return b.withGenerationConfig("generation_config_set_top_p", config, func(c *genai.GenerationConfig) error {
		c.TopP = v
		return nil
	})
}

func (b *Bridge) GenerationConfigSetTopK(config Handle, v uint) Status {
	return b.withGenerationConfig("generation_config_set_top_k", config, func(c *genai.GenerationConfig) error {
		c.TopK = v
		return nil
	})
}

func (b *Bridge) GenerationConfigSetDoSample(config Handle, v bool) Status {
	return b.withGenerationConfig("generation_config_set_do_sample", config, func(c *genai.GenerationConfig) error {
		c.DoSample = v
		return nil
	})
}

func (b *Bridge) GenerationConfigSetRepetitionPenalty(config Handle, v float32) Status {
	return b.withGenerationConfig("generation_config_set_repetition_penalty", config, func(c *genai.GenerationConfig) error {
		c.RepetitionPenalty = v
		return nil
	})
}

func (b *Bridge) GenerationConfigSetPresencePenalty(config Handle, v float32) Status {
	return b.withGenerationConfig("generation_config_set_presence_penalty", config, func(c *genai.GenerationConfig) error {
		c.PresencePenalty = v
		return nil
	})
}

func (b *Bridge) GenerationConfigSetFrequencyPenalty(config Handle, v float32) Status {
	return b.withGenerationConfig("generation_config_set_frequency_penalty", config, func(c *genai.GenerationConfig) error {
		c.FrequencyPenalty = v
		return nil
	})
}

// GenerationConfigSetStopStrings replaces the stop list. strs is nil for a
// NULL array; any NULL element is rejected.
func (b *Bridge) GenerationConfigSetStopStrings(config Handle, strs []*string) Status {
	return b.withGenerationConfig("generation_config_set_stop_strings", config, func(c *genai.GenerationConfig) error {
		if strs == nil {
			return null("strs")
		}
		stops := make([]string, len(strs))
		for i, s := range strs {
			if s == nil {
				return statusErrorf(StatusInvalidCParam, "stop string %d is null", i)
			}
			stops[i] = *s
		}
		c.StopStrings = stops
		return nil
	})
}

func (b *Bridge) GenerationConfigGetMaxNewTokens(config Handle, v *uint) Status {
	return b.withGenerationConfig("generation_config_get_max_new_tokens", config, func(c *genai.GenerationConfig) error {
		return out(v, c.MaxNewTokens, "max_new_tokens")
	})
}

func (b *Bridge) GenerationConfigGetMaxLength(config Handle, v *uint) Status {
	return b.withGenerationConfig("generation_config_get_max_length", config, func(c *genai.GenerationConfig) error {
		return out(v, c.MaxLength, "max_length")
	})
}

func (b *Bridge) GenerationConfigGetTemperature(config Handle, v *float32) Status {
	return b.withGenerationConfig("generation_config_get_temperature", config, func(c *genai.GenerationConfig) error {
		return out(v, c.Temperature, "temperature")
	})
}

func (b *Bridge) GenerationConfigGetTopP(config Handle, v *float32) Status {
	return b.withGenerationConfig("generation_config_get_top_p", config, func(c *genai.GenerationConfig) error {
		return out(v, c.TopP, "top_p")
	})
}

func (b *Bridge) GenerationConfigGetTopK(config Handle, v *uint) Status {
	return b.withGenerationConfig("generation_config_get_top_k", config, func(c *genai.GenerationConfig) error {
		return out(v, c.TopK, "top_k")
	})
}

func (b *Bridge) GenerationConfigGetDoSample(config Handle, v *bool) Status {
	return b.withGenerationConfig("generation_config_get_do_sample", config, func(c *genai.GenerationConfig) error {
		return out(v, c.DoSample, "do_sample")
	})
}

func (b *Bridge) GenerationConfigGetRepetitionPenalty(config Handle, v *float32) Status {
	return b.withGenerationConfig("generation_config_get_repetition_penalty", config, func(c *genai.GenerationConfig) error {
		return out(v, c.RepetitionPenalty, "repetition_penalty")
	})
}

func (b *Bridge) GenerationConfigGetPresencePenalty(config Handle, v *float32) Status {
	return b.withGenerationConfig("generation_config_get_presence_penalty", config, func(c *genai.GenerationConfig) error {
		return out(v, c.PresencePenalty, "presence_penalty")
	})
}

func (b *Bridge) GenerationConfigGetFrequencyPenalty(config Handle, v *float32) Status {
	return b.withGenerationConfig("generation_config_get_frequency_penalty", config, func(c *genai.GenerationConfig) error {
		return out(v, c.FrequencyPenalty, "frequency_penalty")
	})
}

func (b *Bridge) GenerationConfigGetStopStringsSize(config Handle, size *uint) Status {
	return b.withGenerationConfig("generation_config_get_stop_strings_size", config, func(c *genai.GenerationConfig) error {
		return out(size, uint(len(c.StopStrings)), "stop_strings_size")
	})
}

// GenerationConfigGetStopStringAt writes one stop string, two-phase.
func (b *Bridge) GenerationConfigGetStopStringAt(config Handle, index uint, output []byte, outputSize *uint) Status {
	return b.withGenerationConfig("generation_config_get_stop_string_at", config, func(c *genai.GenerationConfig) error {
		if index >= uint(len(c.StopStrings)) {
			return statusErrorf(StatusOutOfBounds, "stop string index %d, have %d", index, len(c.StopStrings))
		}
		return writeString(c.StopStrings[index], output, outputSize)
	})
}
