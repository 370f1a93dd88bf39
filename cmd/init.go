package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"
)

func initFlags(ko *koanf.Koanf) {
	f := flag.NewFlagSet("config", flag.ContinueOnError)
	f.Usage = func() {
		fmt.Println(f.FlagUsages())
		os.Exit(0)
	}

	f.StringSlice("config", nil, "path to one or more config files (will be merged in order)")
	f.String("port", "8080", "port to host the admin server on")
	f.Duration("window", time.Hour, "tumbling window size for the hourly aggregation")
	f.Bool("debug", false, "enable trace logging")
	f.Bool("version", false, "show current version of the build")
	f.Bool("override", false, "override the command line arguments with the specified config file")

	if err := f.Parse(os.Args[1:]); err != nil {
		log.Fatal().Msgf("error loading flags: %v", err)
	}

	override, _ := f.GetBool("override")
	if !override {
		configs, _ := f.GetStringSlice("config")
		for _, cf := range configs {
			log.Debug().Msgf("Reading config from %s", cf)
			parser, err := parserFor(cf)
			if err != nil {
				log.Fatal().Err(err).Str("config", cf).Msg("unsupported config file")
			}
			if err := ko.Load(file.Provider(cf), parser); err != nil {
				log.Fatal().Msgf("error reading config: %v", err)
			}
		}
	}

	if err := ko.Load(posflag.Provider(f, ".", ko), nil); err != nil {
		log.Fatal().Msgf("error reading flag config: %v", err)
	}
}

func initConfig(ko *koanf.Koanf) error {
	log.Info().Msg("Loading configs")
	for _, cf := range ko.Strings("config") {
		log.Debug().Msgf("Reading config from %s", cf)
		parser, err := parserFor(cf)
		if err != nil {
			return err
		}
		if err := ko.Load(file.Provider(cf), parser); err != nil {
			log.Fatal().Msgf("error reading config: %v", err)
		}
	}
	return nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch path[strings.LastIndex(path, ".")+1:] {
	case "yaml", "yml":
		return yaml.Parser(), nil
	case "json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported file extension")
	}
}
