package observe

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/felixgeelhaar/bolt/v3"
	"github.com/felixgeelhaar/memlog/internal/config"
	"github.com/felixgeelhaar/memlog/internal/events"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("memlog")

// Observer handles logging and tracing
type Observer struct {
	log *bolt.Logger
}

// New creates an Observer writing to out. cfg.JSON selects the JSON handler
// over the console one; unless cfg.Verbose is set only warnings and errors
// are shown.
func New(out io.Writer, cfg config.Log) *Observer {
	var l *bolt.Logger
	if cfg.JSON {
		l = bolt.New(bolt.NewJSONHandler(out))
	} else {
		l = bolt.New(bolt.NewConsoleHandler(out))
	}

	if !cfg.Verbose {
		l.SetLevel(bolt.WARN)
	}

	return &Observer{log: l}
}

// Log returns the underlying logger
func (o *Observer) Log() *bolt.Logger {
	return o.log
}

// StartSpan starts a new OTel span
func (o *Observer) StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name)
}

// LogEvent writes a bus event at info level. It is meant to be passed to
// events.Bus.SubscribeAll.
func (o *Observer) LogEvent(e events.Event) {
	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entry := o.log.Info().Str("event", string(e.Type)).Str("source", e.Source)
	for _, k := range keys {
		entry = entry.Str(k, fmt.Sprint(e.Data[k]))
	}
	entry.Msg("event")
}

func (o *Observer) Close() error {
	return nil
}
