// Package logging provides the slog loggers used by the CLI and the query
// logger installed on a database.Registry in debug mode.
package logging

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/samuelmaurice/sculptor/database"
	"github.com/samuelmaurice/sculptor/nanoid"
	"github.com/samuelmaurice/sculptor/query"
)

// PrettyJSONHandler is a custom handler that pretty prints JSON in development
type PrettyJSONHandler struct {
	*slog.JSONHandler
	writer io.Writer
	attrs  []slog.Attr
}

// NewPrettyJSONHandler creates a pretty JSON handler writing to w.
func NewPrettyJSONHandler(w io.Writer) *PrettyJSONHandler {
	return &PrettyJSONHandler{
		JSONHandler: slog.NewJSONHandler(w, nil),
		writer:      w,
	}
}

func (h *PrettyJSONHandler) Handle(ctx context.Context, r slog.Record) error {
	fields := make(map[string]any, r.NumAttrs()+len(h.attrs)+3)
	for _, a := range h.attrs {
		fields[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		fields[a.Key] = a.Value.Resolve().Any()
		return true
	})

	fields["time"] = r.Time.Format(time.RFC3339)
	fields["level"] = r.Level.String()
	fields["msg"] = r.Message

	out, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return err
	}
	_, err = h.writer.Write(append(out, '\n'))
	return err
}

// WithAttrs keeps attributes added with Logger.With.
func (h *PrettyJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &PrettyJSONHandler{
		JSONHandler: h.JSONHandler,
		writer:      h.writer,
		attrs:       append(append([]slog.Attr(nil), h.attrs...), attrs...),
	}
}

var ProdLogger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

var DevLogger = slog.New(NewPrettyJSONHandler(os.Stdout))

// ForFormat returns DevLogger for "pretty" and ProdLogger otherwise.
func ForFormat(format string) *slog.Logger {
	if format == "pretty" {
		return DevLogger
	}
	return ProdLogger
}

// QueryLogger returns a database.QueryLogFunc that logs every compiled
// statement with its bindings and a per-statement id.
func QueryLogger(logger *slog.Logger) database.QueryLogFunc {
	return func(ctx context.Context, connection, sql string, bindings query.Bindings) {
		args := make(map[string]string, len(bindings))
		for _, b := range bindings {
			args[b.Name] = b.Value.String()
		}
		logger.InfoContext(ctx, "query",
			"query_id", nanoid.New(),
			"connection", connection,
			"sql", sql,
			"bindings", args,
		)
	}
}
