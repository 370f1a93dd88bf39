package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/tgk/tipstream/internal/models"
	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaSource consumes JSON fare events from a topic.
type KafkaSource struct {
	pipelineKey            string
	pipelineName           string
	pipelineConnectionType string

	bootstrapServers string
	consumerGroup    string
	topic            string

	kafkaConsumerClient *kgo.Client
}

func (k *KafkaSource) Init(args SourceConfig) error {
	k.pipelineKey = args.Key
	k.pipelineName = args.Name
	k.pipelineConnectionType = args.ConnectionType

	if args.Config["bootstrap_servers"] == "" || args.Config["group"] == "" || args.Config["topic"] == "" {
		log.Error().Msg("Error missing config values")
		return fmt.Errorf("error missing config values")
	}
	log.Debug().
		Str("bootstrap_servers", args.Config["bootstrap_servers"]).
		Str("topic", args.Config["topic"]).
		Str("group", args.Config["group"]).
		Send()

	k.bootstrapServers = args.Config["bootstrap_servers"]
	k.consumerGroup = args.Config["group"]
	k.topic = args.Config["topic"]

	return nil
}

func (k *KafkaSource) Connect(ctx context.Context) error {
	log.Trace().Msg("Connecting to kafka cluster as a source...")
	opts := []kgo.Opt{
		kgo.SeedBrokers(k.bootstrapServers),
		kgo.ConsumerGroup(k.consumerGroup),
		kgo.ConsumeTopics(k.topic),
		kgo.AutoCommitMarks(),
	}
	client, err := kgo.NewClient(opts...)
	if err != nil {
		log.Err(err).Msg("Error when creating a kafka consumer!")
		return err
	}
	k.kafkaConsumerClient = client

	return nil
}

func (k *KafkaSource) Read(ctx context.Context, wg *sync.WaitGroup) (<-chan models.FareEvent, error) {
	out := make(chan models.FareEvent)

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(out)

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			fetches := k.kafkaConsumerClient.PollFetches(ctx)
			if fetches.IsClientClosed() {
				return
			}
			fetches.EachError(func(t string, p int32, err error) {
				log.Err(err).Msgf("fetch err topic %s partition %d", t, p)
			})
			fetches.EachRecord(func(record *kgo.Record) {
				var ev models.FareEvent
				if err := json.Unmarshal(record.Value, &ev); err != nil {
					log.Warn().Err(err).Msg("Skipping undecodable fare record")
					return
				}
				select {
				case out <- ev:
				case <-ctx.Done():
				}
			})
			k.kafkaConsumerClient.MarkCommitRecords(fetches.Records()...)
		}
	}()

	return out, nil
}

func (k *KafkaSource) Key() (string, error) {
	if k.pipelineKey == "" {
		return "", fmt.Errorf("error no pipeline key is set")
	}
	return k.pipelineKey, nil
}

func (k *KafkaSource) Name() string {
	return k.pipelineName
}

func (k *KafkaSource) Info() string {
	return fmt.Sprintf("kafka source [%s] topic %s", k.pipelineName, k.topic)
}

func (k *KafkaSource) Disconnect() error {
	if k.kafkaConsumerClient != nil {
		k.kafkaConsumerClient.Close()
	}
	return nil
}
