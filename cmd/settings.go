package main

import (
	"fmt"

	"github.com/tgk/tipstream/internal/pipeline"
	sinks "github.com/tgk/tipstream/sinks"
	sources "github.com/tgk/tipstream/sources"
)

func dataSourceFactory(config sources.SourceConfig) (pipeline.DataSource, error) {
	var source pipeline.DataSource
	switch config.ConnectionType {
	case "", "generator":
		source = &sources.GeneratorSource{}
	case "kafka":
		source = &sources.KafkaSource{}
	case "mongo":
		source = &sources.MongoSource{}
	default:
		return nil, fmt.Errorf("unknown source type: %s", config.ConnectionType)
	}
	if err := source.Init(config); err != nil {
		return nil, err
	}
	return source, nil
}

func dataSinkFactory(config sinks.SinkConfig) (pipeline.DataSink, error) {
	var sink pipeline.DataSink
	switch config.ConnectionType {
	case "", "stdout":
		sink = &sinks.StdoutSink{}
	case "file":
		sink = &sinks.FileSink{}
	case "kafka":
		sink = &sinks.KafkaSink{}
	case "elasticsearch":
		sink = &sinks.ElasticSink{}
	case "badger":
		sink = &sinks.BadgerSink{}
	default:
		return nil, fmt.Errorf("unknown sink type: %s", config.ConnectionType)
	}
	if err := sink.Init(config); err != nil {
		return nil, err
	}
	return sink, nil
}
