package sinks

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgk/tipstream/internal/models"
)

func TestStdoutSinkPrintsTuples(t *testing.T) {
	sink := &StdoutSink{}
	require.NoError(t, sink.Init(SinkConfig{Name: "s", ConnectionType: "stdout", Key: "out"}))

	var buf bytes.Buffer
	sink.out = &buf

	in := make(chan models.TipTotal, 2)
	in <- models.TipTotal{WindowEnd: 3_600_000, DriverID: 1, TipSum: 7.0}
	in <- models.TipTotal{WindowEnd: 7_200_000, DriverID: 2, TipSum: 3.0}
	close(in)

	var wg sync.WaitGroup
	require.NoError(t, sink.Write(context.Background(), &wg, in))
	wg.Wait()

	assert.Equal(t, "(3600000,1,7)\n(7200000,2,3)\n", buf.String())
}
