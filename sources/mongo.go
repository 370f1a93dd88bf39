package sources

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/tgk/tipstream/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSource streams fare documents out of a collection, sorted by event
// time so the feed is approximately ordered the way the pipeline expects.
type MongoSource struct {
	pipelineKey            string
	pipelineName           string
	pipelineConnectionType string

	mongoDbUri string
	mongoDbDb  string
	mongoDbCol string

	client *mongo.Client
}

func (m *MongoSource) Init(args SourceConfig) error {
	m.pipelineKey = args.Key
	m.pipelineName = args.Name
	m.pipelineConnectionType = args.ConnectionType

	if args.Config["uri"] == "" || args.Config["database"] == "" || args.Config["collection"] == "" {
		log.Error().Msg("Error missing config values")
		return fmt.Errorf("error missing config values")
	}

	m.mongoDbUri = args.Config["uri"]
	m.mongoDbDb = args.Config["database"]
	m.mongoDbCol = args.Config["collection"]
	return nil
}

func (m *MongoSource) Connect(ctx context.Context) error {
	log.Trace().Msg("Connecting to mongodb...")
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(m.mongoDbUri))
	if err != nil {
		log.Err(err).Msg("Error when connecting to mongodb database!")
		return fmt.Errorf("connecting to mongodb: %w", err)
	}
	m.client = client
	return nil
}

func (m *MongoSource) Read(ctx context.Context, wg *sync.WaitGroup) (<-chan models.FareEvent, error) {
	col := m.client.Database(m.mongoDbDb).Collection(m.mongoDbCol)

	cursor, err := col.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "event_time", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("querying fares: %w", err)
	}

	out := make(chan models.FareEvent)

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(out)
		defer cursor.Close(ctx)

		for cursor.Next(ctx) {
			var ev models.FareEvent
			if derr := cursor.Decode(&ev); derr != nil {
				log.Warn().Err(derr).Msg("Skipping undecodable fare document")
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
		if cerr := cursor.Err(); cerr != nil {
			log.Err(cerr).Msg("Cursor error while reading fares")
		}
	}()

	return out, nil
}

func (m *MongoSource) Key() (string, error) {
	if m.pipelineKey == "" {
		return "", fmt.Errorf("error no pipeline key is set")
	}
	return m.pipelineKey, nil
}

func (m *MongoSource) Name() string {
	return m.pipelineName
}

func (m *MongoSource) Info() string {
	return fmt.Sprintf("mongo source [%s] %s.%s", m.pipelineName, m.mongoDbDb, m.mongoDbCol)
}

func (m *MongoSource) Disconnect() error {
	if m.client != nil {
		if err := m.client.Disconnect(context.TODO()); err != nil {
			log.Err(err).Msg("Error when disconnecting from mongodb database!")
			return err
		}
	}
	return nil
}
