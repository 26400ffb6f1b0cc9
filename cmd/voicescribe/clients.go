package main

import (
	"context"

	"github.com/kbukum/voicescribe/conversion/convertio"
	"github.com/kbukum/voicescribe/fetch"
	"github.com/kbukum/voicescribe/logger"
	"github.com/kbukum/voicescribe/observability"
	"github.com/kbukum/voicescribe/provider"
)

// clientSet holds the outbound HTTP clients of the pipeline.
type clientSet struct {
	fetcher   *fetch.Fetcher
	download  provider.RequestResponse[string, []byte]
	converter *convertio.Client
}

// newClients builds the downloader and the Convertio client. Downloads
// are logged, traced and measured; the converter reuses the same
// downloader to retrieve its output.
func newClients(cfg *AppConfig, metrics *observability.Metrics, log *logger.Logger) (*clientSet, error) {
	fetcher, err := fetch.New(cfg.Fetch, log)
	if err != nil {
		return nil, err
	}

	download := provider.Chain(
		provider.WithLogging[string, []byte](log),
		provider.WithMetrics[string, []byte](metrics),
		provider.WithTracing[string, []byte](cfg.Name),
	)(fetcher)

	converter, err := convertio.New(cfg.Convertio, download, log, convertio.WithMetrics(metrics))
	if err != nil {
		return nil, err
	}
	return &clientSet{fetcher: fetcher, download: download, converter: converter}, nil
}

// Close releases idle connections of every client.
func (s *clientSet) Close(ctx context.Context) {
	_ = s.converter.Close(ctx)
	_ = s.fetcher.Close(ctx)
}
