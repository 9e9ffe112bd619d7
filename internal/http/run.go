package http

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Runnable is a server with a blocking Start and a graceful Shutdown.
type Runnable interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// RunServers starts every server and blocks until ctx is cancelled or one of
// them fails, then shuts all of them down. shutdownCtx builds the context
// given to each Shutdown call.
func RunServers(
	ctx context.Context,
	shutdownCtx func() (context.Context, context.CancelFunc),
	logger *slog.Logger,
	servers ...Runnable,
) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, srv := range servers {
		g.Go(func() error {
			return srv.Start(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down servers")

		sctx, cancel := shutdownCtx()
		defer cancel()

		var firstErr error
		for _, srv := range servers {
			if err := srv.Shutdown(sctx); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	})

	return g.Wait()
}
