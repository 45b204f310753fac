// Package metrics records HTTP request counts and latencies through an
// OpenTelemetry meter and exposes them in the Prometheus text format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	export "go.opentelemetry.io/otel/sdk/export/metric"
	"go.opentelemetry.io/otel/sdk/metric/aggregator/histogram"
	controller "go.opentelemetry.io/otel/sdk/metric/controller/basic"
	processor "go.opentelemetry.io/otel/sdk/metric/processor/basic"
	selector "go.opentelemetry.io/otel/sdk/metric/selector/simple"
)

type Recorder struct {
	exporter *prometheus.Exporter
	requests metric.Int64Counter
	latency  metric.Float64ValueRecorder
}

func NewRecorder(serviceName string) (*Recorder, error) {
	config := prometheus.Config{}
	c := controller.New(
		processor.New(
			selector.NewWithHistogramDistribution(
				histogram.WithExplicitBoundaries(config.DefaultHistogramBoundaries),
			),
			export.CumulativeExportKindSelector(),
			processor.WithMemory(true),
		),
	)
	exporter, err := prometheus.New(config, c)
	if err != nil {
		return nil, err
	}

	meter := metric.Must(exporter.MeterProvider().Meter(serviceName))

	return &Recorder{
		exporter: exporter,
		requests: meter.NewInt64Counter(
			"http_server_requests",
			metric.WithDescription("Count of completed requests, by method, route and response status"),
		),
		latency: meter.NewFloat64ValueRecorder(
			"http_server_duration_seconds",
			metric.WithDescription("Request latency in seconds, by method and route"),
		),
	}, nil
}

// Middleware records every request once the handler chain has run.
func (r *Recorder) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		labels := []attribute.KeyValue{
			attribute.String("method", c.Request.Method),
			attribute.String("route", route),
		}

		ctx := c.Request.Context()
		r.latency.Record(ctx, time.Since(start).Seconds(), labels...)
		r.requests.Add(ctx, 1, append(labels, attribute.String("status", strconv.Itoa(c.Writer.Status())))...)
	}
}

// Handler serves the collected metrics.
func (r *Recorder) Handler() http.Handler {
	return r.exporter
}
