// Package otel adapts logtape to OpenTelemetry's log data model: a Sink
// that translates each core.Record into an otel/log Record and forwards
// it to a caller-supplied otel/log.Logger, obtained from whatever
// otel/sdk/log LoggerProvider and exporter (OTLP/gRPC, OTLP/HTTP,
// stdout, ...) the application has already configured.
//
// Only the translation lives here: batching, retry, TLS, and transport
// selection are the exporter's concern (configured by the caller via
// otel/sdk/log and otel/exporters/otlp/...), not this sink's.
package otel

import (
	"context"

	olog "go.opentelemetry.io/otel/log"

	"github.com/logtape-go/logtape/core"
	"github.com/logtape-go/logtape/level"
)

// Sink forwards records to an OpenTelemetry log.Logger.
type Sink struct {
	logger            olog.Logger
	includeCategory   bool
	categoryAttribute string
}

// Option configures a Sink.
type Option func(*Sink)

// WithCategoryAttribute sets the attribute key a record's category is
// recorded under (default "logtape.category"). Pass an empty string, or
// use WithoutCategoryAttribute, to omit it entirely, e.g. when the category is
// already carried by the Logger's instrumentation scope name.
func WithCategoryAttribute(key string) Option {
	return func(s *Sink) {
		s.categoryAttribute = key
		s.includeCategory = key != ""
	}
}

// WithoutCategoryAttribute omits the category attribute from exported
// records.
func WithoutCategoryAttribute() Option {
	return func(s *Sink) { s.includeCategory = false }
}

// New creates a Sink that emits through logger. Obtain logger from an
// otel/sdk/log LoggerProvider, e.g.:
//
//	exporter, _ := otlploggrpc.New(ctx)
//	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)))
//	s := otel.New(provider.Logger("my-app"))
func New(logger olog.Logger, opts ...Option) *Sink {
	s := &Sink{
		logger:            logger,
		includeCategory:   true,
		categoryAttribute: "logtape.category",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Emit converts record to an otel/log Record and forwards it.
func (s *Sink) Emit(record *core.Record) {
	var rec olog.Record
	rec.SetTimestamp(record.Timestamp)
	rec.SetBody(olog.StringValue(record.RenderMessage()))
	rec.SetSeverity(mapSeverity(record.Level))
	rec.SetSeverityText(record.Level.String())

	attrs := make([]olog.KeyValue, 0, len(record.Properties)+1)
	if s.includeCategory {
		attrs = append(attrs, olog.String(s.categoryAttribute, record.Category.String()))
	}
	for k, v := range record.Properties {
		attrs = append(attrs, attributeFor(k, v))
	}
	rec.AddAttributes(attrs...)

	s.logger.Emit(context.Background(), rec)
}

func attributeFor(key string, value any) olog.KeyValue {
	switch v := value.(type) {
	case string:
		return olog.String(key, v)
	case bool:
		return olog.Bool(key, v)
	case int:
		return olog.Int(key, v)
	case int64:
		return olog.Int64(key, v)
	case float64:
		return olog.Float64(key, v)
	case error:
		return olog.String(key, v.Error())
	default:
		// core.Record.RenderMessage stringifies an interpolated value the
		// same way; round-trip a one-value record through it so an
		// attribute and a rendered message never disagree on how a value
		// prints.
		r := core.Record{Message: []any{"", v, ""}}
		return olog.String(key, r.RenderMessage())
	}
}

// mapSeverity maps logtape's six levels onto otel/log's twenty-four-value
// severity scale, using the "N1" (least severe within the band) member of
// each band.
func mapSeverity(lvl level.Level) olog.Severity {
	switch lvl {
	case level.Trace:
		return olog.SeverityTrace1
	case level.Debug:
		return olog.SeverityDebug1
	case level.Info:
		return olog.SeverityInfo1
	case level.Warning:
		return olog.SeverityWarn1
	case level.Error:
		return olog.SeverityError1
	case level.Fatal:
		return olog.SeverityFatal1
	default:
		return olog.SeverityUndefined
	}
}
