package sinks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/tgk/tipstream/internal/models"
)

// FileSink appends winners to a file as JSON lines.
type FileSink struct {
	pipelineKey            string
	pipelineName           string
	pipelineConnectionType string

	filePath string
	file     *os.File
}

func (f *FileSink) Init(args SinkConfig) error {
	f.pipelineKey = args.Key
	f.pipelineName = args.Name
	f.pipelineConnectionType = args.ConnectionType

	if args.Config["file_path"] == "" {
		log.Error().Msg("Missing file_path in config")
		return fmt.Errorf("missing file_path")
	}

	f.filePath = args.Config["file_path"]
	return nil
}

func (f *FileSink) Connect(ctx context.Context) error {
	log.Trace().Str("file_path", f.filePath).Msg("Preparing to open file for writing")

	dir := filepath.Dir(f.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Err(err).Str("directory", dir).Msg("Failed to create parent directories")
		return fmt.Errorf("failed to create parent directories: %w", err)
	}

	if _, err := os.Stat(f.filePath); err == nil {
		log.Warn().Str("file_path", f.filePath).Msg("File already exists; appending to it")
	}

	file, err := os.OpenFile(f.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Err(err).Str("file_path", f.filePath).Msg("Failed to open file")
		return fmt.Errorf("failed to open file: %w", err)
	}

	f.file = file
	return nil
}

func (f *FileSink) Write(ctx context.Context, wg *sync.WaitGroup, winners <-chan models.TipTotal) error {
	wg.Add(1)
	go func() {
		defer wg.Done()

		enc := json.NewEncoder(f.file)
		for winner := range winners {
			if err := enc.Encode(winner); err != nil {
				log.Err(err).Msg("Failed to write winner to file")
			}
		}
		log.Trace().Msg("File sink drained")
	}()
	return nil
}

func (f *FileSink) Key() (string, error) {
	if f.pipelineKey == "" {
		return "", fmt.Errorf("error no pipeline key is set")
	}
	return f.pipelineKey, nil
}

func (f *FileSink) Name() string {
	return f.pipelineName
}

func (f *FileSink) Info() string {
	return fmt.Sprintf("file sink [%s] %s", f.pipelineName, f.filePath)
}

func (f *FileSink) Disconnect() error {
	if f.file != nil {
		return f.file.Close()
	}
	return nil
}
