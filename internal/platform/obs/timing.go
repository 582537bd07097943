package obs

import (
	"context"
	"log/slog"
	"time"
)

// Time returns a deferred closure that logs the duration of the named
// operation, including the error the surrounding function returned:
//
//	func (g *Generator) Generate(ctx ...) (_ *Itinerary, err error) {
//		defer obs.Time(ctx, "generator.Generate")(&err)
//		...
//	}
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			slog.ErrorContext(ctx, "op failed",
				"op", name,
				"duration_ms", dur.Milliseconds(),
				"error", *errp,
			)
			return
		}
		slog.DebugContext(ctx, "op",
			"op", name,
			"duration_ms", dur.Milliseconds(),
		)
	}
}
