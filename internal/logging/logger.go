package logging

import (
	"io"
	"log/slog"
	"os"
)

// Setup installs the JSON logger writing to stdout and returns its handler
// so it can later be combined with the database sink.
func Setup() slog.Handler {
	return setup(os.Stdout)
}

func setup(w io.Writer) slog.Handler {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	return handler
}
