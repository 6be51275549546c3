package safe

import (
	"context"
	"io"
	"log/slog"

	"github.com/secmon-lab/chronicle/pkg/utils/logging"
)

// Close closes an io.Closer and logs the error instead of returning it.
// It is meant for deferred cleanup of rows, files and store handles.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Error("Failed to close", slog.Any("error", err))
	}
}

// Write writes data to w and logs the error instead of returning it.
// A nil writer is a no-op.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	if _, err := w.Write(data); err != nil {
		logging.From(ctx).Error("Failed to write", slog.Any("error", err))
	}
}
