package sources

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgk/tipstream/internal/models"
)

func generatorConfig(overrides map[string]string) SourceConfig {
	config := map[string]string{
		"drivers":    "5",
		"events":     "100",
		"start_time": "1000",
		"seed":       "1",
	}
	for k, v := range overrides {
		config[k] = v
	}
	return SourceConfig{
		Name:           "test-generator",
		ConnectionType: "generator",
		Config:         config,
		Key:            "gen",
	}
}

func drainGenerator(t *testing.T, g *GeneratorSource) []models.FareEvent {
	t.Helper()

	ctx := context.Background()
	require.NoError(t, g.Connect(ctx))

	var wg sync.WaitGroup
	out, err := g.Read(ctx, &wg)
	require.NoError(t, err)

	var events []models.FareEvent
	for ev := range out {
		events = append(events, ev)
	}
	wg.Wait()
	return events
}

func TestGeneratorProducesRequestedCount(t *testing.T) {
	g := &GeneratorSource{}
	require.NoError(t, g.Init(generatorConfig(nil)))

	events := drainGenerator(t, g)
	assert.Len(t, events, 100)
}

func TestGeneratorEventsAreValidAndOrdered(t *testing.T) {
	g := &GeneratorSource{}
	require.NoError(t, g.Init(generatorConfig(nil)))

	events := drainGenerator(t, g)
	require.NotEmpty(t, events)

	prev := int64(0)
	for _, ev := range events {
		assert.NoError(t, ev.Validate())
		assert.GreaterOrEqual(t, ev.DriverID, int64(1))
		assert.LessOrEqual(t, ev.DriverID, int64(5))
		assert.Greater(t, ev.EventTimeMillis, prev)
		prev = ev.EventTimeMillis
	}
}

func TestGeneratorIsDeterministicPerSeed(t *testing.T) {
	first := &GeneratorSource{}
	require.NoError(t, first.Init(generatorConfig(nil)))
	second := &GeneratorSource{}
	require.NoError(t, second.Init(generatorConfig(nil)))

	assert.Equal(t, drainGenerator(t, first), drainGenerator(t, second))
}

func TestGeneratorDifferentSeedsDiffer(t *testing.T) {
	first := &GeneratorSource{}
	require.NoError(t, first.Init(generatorConfig(nil)))
	second := &GeneratorSource{}
	require.NoError(t, second.Init(generatorConfig(map[string]string{"seed": "2"})))

	assert.NotEqual(t, drainGenerator(t, first), drainGenerator(t, second))
}

func TestGeneratorRejectsBadConfig(t *testing.T) {
	g := &GeneratorSource{}
	err := g.Init(generatorConfig(map[string]string{"drivers": "0"}))
	assert.Error(t, err)
}

func TestGeneratorCancellation(t *testing.T) {
	g := &GeneratorSource{}
	// Unbounded stream; only cancellation ends it.
	require.NoError(t, g.Init(generatorConfig(map[string]string{"events": "0"})))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, g.Connect(ctx))

	var wg sync.WaitGroup
	out, err := g.Read(ctx, &wg)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		<-out
	}
	cancel()
	wg.Wait()
}
