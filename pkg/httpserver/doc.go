// Package httpserver wraps net/http with context-driven graceful shutdown,
// env-loadable timeouts, lifecycle hooks, and a combined liveness/readiness
// handler.
//
// The binary owns signal handling; Run only watches its context:
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// Listen failures are wrapped with ErrStart and shutdown failures with
// ErrShutdown so callers can classify them with errors.Is.
package httpserver
