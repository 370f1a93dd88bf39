package sinks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/rs/zerolog/log"
	"github.com/tgk/tipstream/internal/models"
)

// ElasticSink indexes winners, one document per window end.
type ElasticSink struct {
	pipelineKey            string
	pipelineName           string
	pipelineConnectionType string

	elasticCloudId string
	elasticUrl     string
	elasticApiKey  string
	elasticIndex   string

	client *elasticsearch.Client
}

func (e *ElasticSink) Init(args SinkConfig) error {
	e.pipelineKey = args.Key
	e.pipelineName = args.Name
	e.pipelineConnectionType = args.ConnectionType
	e.elasticCloudId = args.Config["cloud_id"]
	e.elasticUrl = args.Config["url"]
	e.elasticApiKey = args.Config["api_key"]
	e.elasticIndex = args.Config["index_name"]

	if e.elasticIndex == "" {
		log.Error().Msg("Missing index_name in config")
		return fmt.Errorf("missing index_name")
	}
	if e.elasticUrl == "" && e.elasticCloudId == "" {
		log.Error().Msg("Missing url or cloud_id in config")
		return fmt.Errorf("missing url or cloud_id")
	}
	return nil
}

func (e *ElasticSink) Connect(ctx context.Context) error {
	log.Trace().Msg("Connecting to elasticsearch...")

	cfg := elasticsearch.Config{
		CloudID: e.elasticCloudId,
		APIKey:  e.elasticApiKey,
	}
	if e.elasticUrl != "" {
		cfg.Addresses = []string{e.elasticUrl}
	}

	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		log.Err(err).Msg("Error when creating the elasticsearch client!")
		return err
	}
	e.client = client
	return nil
}

func (e *ElasticSink) Write(ctx context.Context, wg *sync.WaitGroup, winners <-chan models.TipTotal) error {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for winner := range winners {
			doc, err := json.Marshal(winner)
			if err != nil {
				log.Err(err).Msg("Failed to encode winner")
				continue
			}
			res, err := e.client.Index(
				e.elasticIndex,
				bytes.NewReader(doc),
				e.client.Index.WithContext(ctx),
				e.client.Index.WithDocumentID(strconv.FormatInt(winner.WindowEnd, 10)),
			)
			if err != nil {
				log.Err(err).Msg("Failed to index winner")
				continue
			}
			if res.IsError() {
				log.Error().Str("status", res.Status()).Msg("Elasticsearch rejected winner document")
			}
			res.Body.Close()
		}
		log.Trace().Msg("Elasticsearch sink drained")
	}()
	return nil
}

func (e *ElasticSink) Key() (string, error) {
	if e.pipelineKey == "" {
		return "", fmt.Errorf("error no pipeline key is set")
	}
	return e.pipelineKey, nil
}

func (e *ElasticSink) Name() string {
	return e.pipelineName
}

func (e *ElasticSink) Info() string {
	return fmt.Sprintf("elasticsearch sink [%s] index %s", e.pipelineName, e.elasticIndex)
}

func (e *ElasticSink) Disconnect() error {
	return nil
}
