// Package logs configures the reader's slog output: a text handler for the
// terminal, optionally fanned out to a JSON file handler, with a shared level
// var and a wrapping handler that stamps records with the active section.
package logs

import (
	"context"
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// Level is the process-wide log level, adjustable from flags.
var Level = new(slog.LevelVar)

type sectionKeyType struct{}

// SectionKey carries the slug of the section being rendered.
var SectionKey sectionKeyType

// WithSection tags a context with the section slug for log correlation.
func WithSection(ctx context.Context, slug string) context.Context {
	return context.WithValue(ctx, SectionKey, slug)
}

// Handler decorates records with the section slug from the context.
type Handler struct {
	slog.Handler
}

func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	if v := ctx.Value(SectionKey); v != nil {
		record.Add("section", v.(string))
	}
	return h.Handler.Handle(ctx, record)
}

// New builds the reader's logger. Terminal output goes to w as text; when
// filePath is non-empty a JSON handler writing there is fanned in as well.
func New(w io.Writer, filePath string) (*slog.Logger, error) {
	handlers := []slog.Handler{
		slog.NewTextHandler(w, &slog.HandlerOptions{Level: Level}),
	}
	if filePath != "" {
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: Level}))
	}
	return slog.New(&Handler{Handler: slogmulti.Fanout(handlers...)}), nil
}
