package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/knadh/koanf/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tgk/tipstream/internal/pipeline"
	"github.com/tgk/tipstream/internal/store"
	"github.com/tgk/tipstream/internal/window"
	"github.com/tgk/tipstream/server"
	"github.com/tgk/tipstream/sinks"
	"github.com/tgk/tipstream/sources"
)

var (
	buildString = "unknown"
	ko          = koanf.New(".")
)

func main() {

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	initFlags(ko)

	if ko.Bool("version") {
		fmt.Println(buildString)
		os.Exit(0)
	}
	log.Info().Msgf("Build Version: %s", buildString)

	if ko.Bool("debug") {
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	}

	// This way the command line arguments are overridden by the remote/other configs
	if ko.Bool("override") {
		if initError := initConfig(ko); initError != nil {
			log.Err(initError).Msg("Error when initializing the config!")
		}
	}

	windowSize := ko.Duration("window")
	if windowSize <= 0 {
		windowSize = window.DefaultSize
	}

	var sourceConfig sources.SourceConfig
	if err := ko.Unmarshal("source", &sourceConfig); err != nil {
		log.Fatal().Err(err).Msg("Error parsing source config")
	}
	var sinkConfig sinks.SinkConfig
	if err := ko.Unmarshal("sink", &sinkConfig); err != nil {
		log.Fatal().Err(err).Msg("Error parsing sink config")
	}

	source, err := dataSourceFactory(sourceConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating source")
	}
	sink, err := dataSinkFactory(sinkConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating sink")
	}
	winnersStore := winnersStoreFor(sink)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := pipeline.NewMetrics(registry)

	dp := pipeline.NewDataPipeline(source, sink, windowSize, metrics)
	log.Info().
		Str("pipeline", dp.Key()).
		Dur("window", windowSize).
		Msgf("Creating and running pipeline: %s -> %s", source.Info(), sink.Info())

	// Run the admin server
	go func(ko *koanf.Koanf) {
		log.Info().Msg("Starting the admin server...")
		server.Init(ko)
		server.Run(ko, registry, dp, winnersStore)
	}(ko)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := dp.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Pipeline terminated with error")
	}
	log.Info().Msg("Pipeline finished")
}

// winnersStoreFor returns the store shared between the badger sink and the
// admin API, or nil when the sink does not record winners locally.
func winnersStoreFor(sink pipeline.DataSink) *store.DB {
	if b, ok := sink.(*sinks.BadgerSink); ok {
		return b.Store()
	}
	return nil
}
