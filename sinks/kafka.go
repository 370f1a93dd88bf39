package sinks

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/tgk/tipstream/internal/models"
	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaSink produces each winner to a topic as JSON, keyed by window end so
// downstream compacted topics keep one winner per window.
type KafkaSink struct {
	pipelineKey            string
	pipelineName           string
	pipelineConnectionType string

	bootstrapServers string
	topic            string

	kafkaProducerClient *kgo.Client
}

func (k *KafkaSink) Init(args SinkConfig) error {
	k.pipelineKey = args.Key
	k.pipelineName = args.Name
	k.pipelineConnectionType = args.ConnectionType

	if args.Config["bootstrap_servers"] == "" || args.Config["topic"] == "" {
		log.Error().Msg("Error missing config values")
		return fmt.Errorf("error missing config values")
	}
	log.Debug().
		Str("bootstrap_servers", args.Config["bootstrap_servers"]).
		Str("topic", args.Config["topic"]).
		Send()

	k.bootstrapServers = args.Config["bootstrap_servers"]
	k.topic = args.Config["topic"]

	return nil
}

func (k *KafkaSink) Connect(ctx context.Context) error {
	log.Trace().Msg("Connecting to kafka cluster as a sink...")
	opts := []kgo.Opt{
		kgo.SeedBrokers(k.bootstrapServers),
		kgo.DefaultProduceTopic(k.topic),
		kgo.AllowAutoTopicCreation(),
	}
	client, err := kgo.NewClient(opts...)
	if err != nil {
		log.Err(err).Msg("Error when creating a kafka producer!")
		return err
	}
	k.kafkaProducerClient = client

	return nil
}

func (k *KafkaSink) Write(ctx context.Context, wg *sync.WaitGroup, winners <-chan models.TipTotal) error {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for winner := range winners {
			val, err := json.Marshal(winner)
			if err != nil {
				log.Err(err).Msg("Failed to encode winner")
				continue
			}
			record := &kgo.Record{
				Key:   []byte(strconv.FormatInt(winner.WindowEnd, 10)),
				Value: val,
			}
			k.kafkaProducerClient.Produce(ctx, record, func(record *kgo.Record, err error) {
				if err != nil {
					log.Err(err).Interface("record", record).Msg("record had a produce error")
				}
			})
		}
		if err := k.kafkaProducerClient.Flush(context.Background()); err != nil {
			log.Err(err).Msg("Failed to flush kafka producer")
		}
		log.Trace().Msg("Kafka sink drained")
	}()
	return nil
}

func (k *KafkaSink) Key() (string, error) {
	if k.pipelineKey == "" {
		return "", fmt.Errorf("error no pipeline key is set")
	}
	return k.pipelineKey, nil
}

func (k *KafkaSink) Name() string {
	return k.pipelineName
}

func (k *KafkaSink) Info() string {
	return fmt.Sprintf("kafka sink [%s] topic %s", k.pipelineName, k.topic)
}

func (k *KafkaSink) Disconnect() error {
	if k.kafkaProducerClient != nil {
		k.kafkaProducerClient.Close()
	}
	return nil
}
