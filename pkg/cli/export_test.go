package cli

import (
	"context"
	"io"
)

// RunForTest runs the app with its output written to w
func RunForTest(ctx context.Context, w io.Writer, args ...string) error {
	app := newApp("test")
	app.Writer = w
	return app.Run(ctx, args)
}

// IndexConfig is exported for testing
var IndexConfig = indexConfig

// Replay is exported for testing
var Replay = replay
