package vosk

import (
	"github.com/kbukum/voicescribe/provider"
	"github.com/kbukum/voicescribe/transcription"
)

func init() {
	transcription.Models.RegisterFactory(ProviderName, Factory())
}

// Factory returns a provider.Factory that loads a model from a config map
// with "model_path" and optional "log_level" keys.
func Factory() provider.Factory[transcription.Model] {
	return func(m map[string]any) (transcription.Model, error) {
		cfg := configFromMap(m)
		cfg.ApplyDefaults()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		model, err := Load(cfg)
		if err != nil {
			return nil, err
		}
		return model, nil
	}
}
