package sinks

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgk/tipstream/internal/models"
)

func TestFileSinkRequiresPath(t *testing.T) {
	sink := &FileSink{}
	err := sink.Init(SinkConfig{Name: "f", ConnectionType: "file", Config: map[string]string{}})
	assert.Error(t, err)
}

func TestFileSinkWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "winners", "out.jsonl")

	sink := &FileSink{}
	require.NoError(t, sink.Init(SinkConfig{
		Name:           "f",
		ConnectionType: "file",
		Config:         map[string]string{"file_path": path},
		Key:            "file",
	}))
	require.NoError(t, sink.Connect(context.Background()))

	winners := []models.TipTotal{
		{WindowEnd: 3_600_000, DriverID: 1, TipSum: 7.0},
		{WindowEnd: 7_200_000, DriverID: 2, TipSum: 3.5},
	}

	in := make(chan models.TipTotal, len(winners))
	for _, w := range winners {
		in <- w
	}
	close(in)

	var wg sync.WaitGroup
	require.NoError(t, sink.Write(context.Background(), &wg, in))
	wg.Wait()
	require.NoError(t, sink.Disconnect())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var got []models.TipTotal
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var w models.TipTotal
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &w))
		got = append(got, w)
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, winners, got)
}
