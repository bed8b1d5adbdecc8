package httpapi

import (
	"context"
)

// serverBaseCtx is the process-level context handlers fold into every request
// so a daemon shutdown cancels in-flight work. Background until installed.
var serverBaseCtx = context.Background()

// SetBaseContext installs the process-level base context used by handlers.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// joinContexts derives a child of primary that is additionally canceled when
// secondary ends. Values and deadlines of primary are preserved. The returned
// cancel must be called when the handler finishes to release the watcher.
func joinContexts(primary, secondary context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(primary)
	stop := context.AfterFunc(secondary, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
