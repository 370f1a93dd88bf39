package sinks

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/tgk/tipstream/internal/models"
	"github.com/tgk/tipstream/internal/store"
)

// BadgerSink records winners in the local store so the admin API can serve
// them after the fact.
type BadgerSink struct {
	pipelineKey            string
	pipelineName           string
	pipelineConnectionType string

	db *store.DB
}

// NewBadgerSink wraps an already-constructed store. The store may be shared
// with the admin server.
func NewBadgerSink(db *store.DB) *BadgerSink {
	return &BadgerSink{db: db}
}

func (b *BadgerSink) Init(args SinkConfig) error {
	b.pipelineKey = args.Key
	b.pipelineName = args.Name
	b.pipelineConnectionType = args.ConnectionType

	if b.db == nil {
		b.db = store.New(&store.Config{Dir: args.Config["dir"]})
	}
	return nil
}

func (b *BadgerSink) Connect(ctx context.Context) error {
	return b.db.Open()
}

func (b *BadgerSink) Write(ctx context.Context, wg *sync.WaitGroup, winners <-chan models.TipTotal) error {
	wg.Add(1)
	go func() {
		defer wg.Done()
		for winner := range winners {
			if err := b.db.Put(winner); err != nil {
				log.Err(err).Int64("window_end", winner.WindowEnd).Msg("Failed to store winner")
			}
		}
		log.Trace().Msg("Badger sink drained")
	}()
	return nil
}

func (b *BadgerSink) Key() (string, error) {
	if b.pipelineKey == "" {
		return "", fmt.Errorf("error no pipeline key is set")
	}
	return b.pipelineKey, nil
}

func (b *BadgerSink) Name() string {
	return b.pipelineName
}

func (b *BadgerSink) Info() string {
	return fmt.Sprintf("badger sink [%s]", b.pipelineName)
}

func (b *BadgerSink) Disconnect() error {
	return b.db.Close()
}

// Store exposes the underlying winners store.
func (b *BadgerSink) Store() *store.DB {
	return b.db
}
