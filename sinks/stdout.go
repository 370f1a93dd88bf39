package sinks

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/tgk/tipstream/internal/models"
)

// StdoutSink prints each winner to standard output, one tuple per line.
type StdoutSink struct {
	pipelineKey            string
	pipelineName           string
	pipelineConnectionType string

	out io.Writer
}

func (s *StdoutSink) Init(args SinkConfig) error {
	s.pipelineKey = args.Key
	s.pipelineName = args.Name
	s.pipelineConnectionType = args.ConnectionType
	s.out = os.Stdout
	return nil
}

func (s *StdoutSink) Connect(ctx context.Context) error {
	return nil
}

func (s *StdoutSink) Write(ctx context.Context, wg *sync.WaitGroup, winners <-chan models.TipTotal) error {
	wg.Add(1)
	go func() {
		defer wg.Done()
		for winner := range winners {
			fmt.Fprintln(s.out, winner)
		}
		log.Trace().Msg("Stdout sink drained")
	}()
	return nil
}

func (s *StdoutSink) Key() (string, error) {
	if s.pipelineKey == "" {
		return "", fmt.Errorf("error no pipeline key is set")
	}
	return s.pipelineKey, nil
}

func (s *StdoutSink) Name() string {
	return s.pipelineName
}

func (s *StdoutSink) Info() string {
	return fmt.Sprintf("stdout sink [%s]", s.pipelineName)
}

func (s *StdoutSink) Disconnect() error {
	return nil
}
