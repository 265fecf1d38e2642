// Package metrics provides build observability hooks.
//
// Components receive a Recorder through their options and default to
// NoopRecorder, so no call site needs a nil check:
//
//	gen := site.NewGenerator(cfg, site.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// PrometheusRecorder registers its collectors on the registry it is given;
// HTTPHandler exposes that registry for scraping (the preview server mounts it
// at /metrics).
package metrics
