// Package logr adapts a logtape.Logger into a logr.LogSink, so libraries
// that only know how to log through go-logr/logr (client-go,
// controller-runtime, etc.) route their output through logtape's tree
// instead of logr's own discard-by-default implementation. WithName
// descends the category tree, so logr's dot-joined logger names map
// onto category segments.
package logr

import (
	"github.com/go-logr/logr"
	"github.com/logtape-go/logtape"
)

// Sink implements logr.LogSink backed by a *logtape.Logger.
type Sink struct {
	logger *logtape.Logger
	name   string
	values []interface{}
}

var _ logr.LogSink = (*Sink)(nil)

// New creates a logr.LogSink that writes through log. Pass the result to
// logr.New to obtain a logr.Logger:
//
//	log := logtape.GetLogger("controller")
//	logrLogger := logr.New(logradapter.New(log))
func New(log *logtape.Logger) *Sink {
	return &Sink{logger: log}
}

// Init is a no-op: logtape's caller/source metadata, if any is ever
// added, would come from a sink-side enricher, not from logr's
// RuntimeInfo.
func (s *Sink) Init(logr.RuntimeInfo) {}

// Enabled always reports true: the threshold gate for the level a given
// V-level maps to is evaluated inside logtape's own dispatch pipeline
// when Info is actually called, which is also where a configured
// threshold blocks a lazy-properties callback. Reporting the gate
// twice here would just duplicate that check without saving any work,
// since keysAndValues are already a plain slice, not a callback.
func (s *Sink) Enabled(int) bool { return true }

// Info logs a non-error message. logr V-levels are inverted (0 is least
// verbose); V(0) maps to Info, V(1) to Debug, V(2) and above to Trace.
func (s *Sink) Info(level int, msg string, keysAndValues ...interface{}) {
	props := s.properties(keysAndValues...)
	switch {
	case level <= 0:
		s.logger.Info(msg, props)
	case level == 1:
		s.logger.Debug(msg, props)
	default:
		s.logger.Trace(msg, props)
	}
}

// Error logs an error message via logtape's error-shortcut dispatch
// shape.
func (s *Sink) Error(err error, msg string, keysAndValues ...interface{}) {
	props := s.properties(keysAndValues...)
	s.logger.AtError().Err(err, msg, props)
}

// WithValues returns a new Sink carrying additional persistent
// properties, applied to every call it makes from here on.
func (s *Sink) WithValues(keysAndValues ...interface{}) logr.LogSink {
	return &Sink{
		logger: s.logger,
		name:   s.name,
		values: append(append([]interface{}(nil), s.values...), keysAndValues...),
	}
}

// WithName returns a new Sink whose category gains name as a child
// segment, mirroring logr's dot-joined logger-name hierarchy with
// logtape's own category tree.
func (s *Sink) WithName(name string) logr.LogSink {
	return &Sink{
		logger: s.logger.GetChild(name),
		name:   joinName(s.name, name),
		values: s.values,
	}
}

func joinName(base, seg string) string {
	if base == "" {
		return seg
	}
	return base + "." + seg
}

func (s *Sink) properties(keysAndValues ...interface{}) map[string]any {
	all := append(append([]interface{}(nil), s.values...), keysAndValues...)
	props := make(map[string]any, len(all)/2)
	for i := 0; i+1 < len(all); i += 2 {
		key, ok := all[i].(string)
		if !ok {
			continue
		}
		props[key] = all[i+1]
	}
	return props
}
