package sources

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tgk/tipstream/internal/models"
)

// GeneratorSource produces synthetic fare events in-process, the stand-in
// for a live fare feed during development and testing. Event times advance
// monotonically with a bounded random stride, so the stream is ordered
// approximately by event time the way a real feed is. A fixed seed makes a
// run reproducible.
type GeneratorSource struct {
	pipelineKey            string
	pipelineName           string
	pipelineConnectionType string

	drivers   int64
	count     int64 // 0 means unbounded
	startTime int64
	maxStride int64
	throttle  time.Duration
	seed      int64
}

func (g *GeneratorSource) Init(args SourceConfig) error {
	g.pipelineKey = args.Key
	g.pipelineName = args.Name
	g.pipelineConnectionType = args.ConnectionType

	g.drivers = parseInt(args.Config["drivers"], 10)
	g.count = parseInt(args.Config["events"], 0)
	g.startTime = parseInt(args.Config["start_time"], time.Now().UnixMilli())
	g.maxStride = parseInt(args.Config["max_stride_ms"], 60_000)
	g.seed = parseInt(args.Config["seed"], 42)
	g.throttle = time.Duration(parseInt(args.Config["throttle_ms"], 0)) * time.Millisecond

	if g.drivers <= 0 {
		return fmt.Errorf("generator needs at least one driver, got %d", g.drivers)
	}
	if g.maxStride <= 0 {
		return fmt.Errorf("generator stride must be positive, got %d", g.maxStride)
	}
	return nil
}

func (g *GeneratorSource) Connect(ctx context.Context) error {
	log.Trace().Int64("drivers", g.drivers).Int64("events", g.count).Msg("Starting fare generator")
	return nil
}

func (g *GeneratorSource) Read(ctx context.Context, wg *sync.WaitGroup) (<-chan models.FareEvent, error) {
	out := make(chan models.FareEvent)

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(out)

		rng := rand.New(rand.NewSource(g.seed))
		eventTime := g.startTime

		for i := int64(0); g.count == 0 || i < g.count; i++ {
			ev := models.FareEvent{
				DriverID:        1 + rng.Int63n(g.drivers),
				Tip:             math.Round(rng.Float64()*1000) / 100,
				EventTimeMillis: eventTime,
			}
			eventTime += 1 + rng.Int63n(g.maxStride)

			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}

			if g.throttle > 0 {
				select {
				case <-time.After(g.throttle):
				case <-ctx.Done():
					return
				}
			}
		}
		log.Trace().Msg("Fare generator exhausted")
	}()

	return out, nil
}

func (g *GeneratorSource) Key() (string, error) {
	if g.pipelineKey == "" {
		return "", fmt.Errorf("error no pipeline key is set")
	}
	return g.pipelineKey, nil
}

func (g *GeneratorSource) Name() string {
	return g.pipelineName
}

func (g *GeneratorSource) Info() string {
	return fmt.Sprintf("generator source [%s]", g.pipelineName)
}

func (g *GeneratorSource) Disconnect() error {
	return nil
}

func parseInt(s string, fallback int64) int64 {
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		log.Warn().Str("value", s).Msg("Ignoring unparseable integer config value")
		return fallback
	}
	return v
}
