package httpclient

import (
	"io"
	"log/slog"
	"strings"
)

func bodyReader(s string) io.Reader {
	return strings.NewReader(s)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
