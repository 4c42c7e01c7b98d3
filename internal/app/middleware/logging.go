package middleware

import (
	"context"
	"log/slog"
	"time"

	"courtside/internal/app/commands"
	"courtside/internal/app/queries"
)

// CommandLogging records every dispatched command with duration and outcome.
func CommandLogging(log *slog.Logger) CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			start := time.Now()
			res, err := nextFn(ctx, cmd)
			if log != nil {
				if err != nil {
					log.Warn("command failed", "key", cmd.Key(), "duration", time.Since(start), "error", err)
				} else {
					log.Info("command handled", "key", cmd.Key(), "duration", time.Since(start))
				}
			}
			return res, err
		})
	}
}

// QueryLogging records slow or failing queries.
func QueryLogging(log *slog.Logger) QueryMiddleware {
	return func(next queries.Bus) queries.Bus {
		nextFn := wrapQuery(next)
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			start := time.Now()
			res, err := nextFn(ctx, q)
			if log != nil && err != nil {
				log.Warn("query failed", "key", q.Key(), "duration", time.Since(start), "error", err)
			}
			return res, err
		})
	}
}
