package pipeline

import (
	"context"
	"sync"

	"github.com/tgk/tipstream/internal/models"
	"github.com/tgk/tipstream/sinks"
	"github.com/tgk/tipstream/sources"
)

type DataSource interface {

	// Parse and configure the Source
	Init(args sources.SourceConfig) error

	// Connect to the Source
	Connect(context.Context) error

	// Read creates the event channel, owns it, and closes it when the
	// source is exhausted or the context is cancelled. Delivery is
	// push-based, one event at a time.
	Read(context.Context, *sync.WaitGroup) (<-chan models.FareEvent, error)

	// Get the key
	Key() (string, error)

	// Name of the Source
	Name() string

	// Info about the Source
	Info() string

	// Disconnect the application from the source
	Disconnect() error
}

type DataSink interface {

	// Parse and configure the Sink
	Init(args sinks.SinkConfig) error

	// Connect to the Sink
	Connect(context.Context) error

	// Write drains the upstream winner channel until it closes. It
	// registers its own goroutine on wg and returns immediately.
	Write(context.Context, *sync.WaitGroup, <-chan models.TipTotal) error

	// Get the key
	Key() (string, error)

	// Name of the Sink
	Name() string

	// Info about the Sink
	Info() string

	// Disconnect the application from the sink
	Disconnect() error
}
