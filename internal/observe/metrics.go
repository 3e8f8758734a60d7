// Package observe provides application-wide observability primitives:
// OpenTelemetry metrics, tracing helpers, structured logging enrichment,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all metrics.
const meterName = "github.com/hummat/fifo-whisper-ptt"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use; the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// STTDuration tracks speech-to-text transcription latency. Use with
	// attributes:
	//   attribute.String("provider", ...), attribute.String("status", ...)
	STTDuration metric.Float64Histogram

	// SessionDuration tracks wall-clock length of a dictation session, from
	// START to the end of text delivery.
	SessionDuration metric.Float64Histogram

	// Sessions counts completed dictation sessions. Use with attribute:
	//   attribute.String("status", ...) with "completed", "empty", "error"
	//   or "discarded"
	Sessions metric.Int64Counter

	// Commands counts control commands by name, including unknown ones.
	Commands metric.Int64Counter

	// AudioBlocks counts captured audio blocks appended to the session
	// buffer.
	AudioBlocks metric.Int64Counter

	// Corrections counts dictionary corrections applied to transcripts.
	Corrections metric.Int64Counter

	// Listening is 1 while a capture session is live, 0 otherwise.
	Listening metric.Int64UpDownCounter

	// HTTPRequestDuration tracks HTTP request processing time. Use with
	// attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// transcription latencies, which range from tens of milliseconds on a warm
// local model to tens of seconds over a slow API.
var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.STTDuration, err = m.Float64Histogram("ptt.stt.duration",
		metric.WithDescription("Latency of speech-to-text transcription."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SessionDuration, err = m.Float64Histogram("ptt.session.duration",
		metric.WithDescription("Wall-clock duration of a dictation session."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Sessions, err = m.Int64Counter("ptt.sessions",
		metric.WithDescription("Total dictation sessions by final status."),
	); err != nil {
		return nil, err
	}
	if met.Commands, err = m.Int64Counter("ptt.control.commands",
		metric.WithDescription("Total control commands received by name."),
	); err != nil {
		return nil, err
	}
	if met.AudioBlocks, err = m.Int64Counter("ptt.audio.blocks",
		metric.WithDescription("Total audio blocks appended to the session buffer."),
	); err != nil {
		return nil, err
	}
	if met.Corrections, err = m.Int64Counter("ptt.transcript.corrections",
		metric.WithDescription("Total dictionary corrections applied to transcripts."),
	); err != nil {
		return nil, err
	}
	if met.Listening, err = m.Int64UpDownCounter("ptt.listening",
		metric.WithDescription("Whether a capture session is currently live."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("ptt.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordSTT records one transcription attempt with its latency and outcome.
func (m *Metrics) RecordSTT(ctx context.Context, provider, status string, d time.Duration) {
	m.STTDuration.Record(ctx, d.Seconds(),
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("status", status),
		),
	)
}

// RecordSession records one finished session with its duration and final
// status.
func (m *Metrics) RecordSession(ctx context.Context, status string, d time.Duration) {
	m.SessionDuration.Record(ctx, d.Seconds())
	m.Sessions.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
}

// RecordCommand records one received control command.
func (m *Metrics) RecordCommand(ctx context.Context, command string) {
	m.Commands.Add(ctx, 1,
		metric.WithAttributes(attribute.String("command", command)),
	)
}
