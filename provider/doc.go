// Package provider holds the small generic contracts behind voicescribe's
// swappable backends: the audio download (RequestResponse) and the speech
// model's segment stream (Stream).
//
// Registry maps backend names from config to factories:
//
//	reg := provider.NewRegistry[transcription.Model]()
//	reg.RegisterFactory("vosk", vosk.Factory)
//	model, err := reg.Create("vosk", map[string]any{"model_path": "model"})
//
// One-shot providers can be wrapped with middleware:
//
//	download := provider.Chain(
//	    provider.WithLogging[string, []byte](log),
//	    provider.WithMetrics[string, []byte](metrics),
//	    provider.WithTracing[string, []byte]("voicescribe"),
//	)(fetcher)
package provider
