package commands

import (
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/TotalLag/developer-docs/internal/metrics"
	"github.com/TotalLag/developer-docs/internal/preview"
	"github.com/TotalLag/developer-docs/internal/site"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Port     int    `short:"p" help:"Override the HTTP port"`
	Schedule string `help:"Cron expression for periodic rebuilds"`
	Metrics  bool   `help:"Expose Prometheus metrics at /metrics"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, logger, err := root.loadConfig()
	if err != nil {
		return err
	}
	if s.Port != 0 {
		cfg.Serve.Port = s.Port
	}
	if s.Schedule != "" {
		cfg.Serve.RebuildSchedule = s.Schedule
	}
	if s.Metrics {
		cfg.Serve.Metrics = true
	}

	st, err := openState(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	genOpts := []site.Option{site.WithLogger(logger), site.WithStateStore(st)}
	var previewOpts []preview.Option
	if cfg.Serve.Metrics {
		reg := prom.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		genOpts = append(genOpts, site.WithRecorder(metrics.NewPrometheusRecorder(reg)))
		previewOpts = append(previewOpts, preview.WithMetricsHandler(metrics.HTTPHandler(reg)))
	}
	previewOpts = append(previewOpts, preview.WithLogger(logger))

	gen := site.NewGenerator(cfg, genOpts...)
	return preview.New(gen, cfg, previewOpts...).Run(g.Ctx)
}
