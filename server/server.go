package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/knadh/koanf/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/tgk/tipstream/internal/pipeline"
	"github.com/tgk/tipstream/internal/store"
)

func Init(config *koanf.Koanf) {
	log.Info().Msgf("Running the admin server on port: %s", config.String("port"))
}

// Run serves the admin API: health, prometheus metrics, pipeline stats, and
// the recorded winners. Blocks until the listener fails.
func Run(config *koanf.Koanf, registry *prometheus.Registry, dp *pipeline.DataPipeline, winners *store.DB) {

	serverPort := config.String("port")

	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Heartbeat("/health"))
	router.Use(middleware.CleanPath)
	router.Use(middleware.RequestID)

	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	router.Get("/stats", statsHandler(dp))
	router.Mount("/winners", WinnersRouter(winners))

	log.Error().Msg(http.ListenAndServe(":"+serverPort, router).Error())
}

func statsHandler(dp *pipeline.DataPipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if dp == nil {
			SendResponseWithHeader(w, false, nil, "no pipeline running", http.StatusServiceUnavailable, nil)
			return
		}
		payload := struct {
			Key             string         `json:"key"`
			Running         bool           `json:"running"`
			WatermarkMillis int64          `json:"watermark_millis"`
			Counters        pipeline.Stats `json:"counters"`
		}{
			Key:             dp.Key(),
			Running:         dp.IsOpen(),
			WatermarkMillis: dp.Watermark(),
			Counters:        dp.Stats(),
		}
		SendResponse(w, true, payload, "")
	}
}
