package bot

import (
	"context"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"kavapos/internal/logger"
)

const keepAliveInterval = 5 * time.Minute

// keepAlive periodically calls getMe so hosting platforms that idle out
// quiet processes see traffic. Failures are logged and the next tick
// tries again.
func keepAlive(ctx context.Context, b *tele.Bot) {
	if b == nil {
		return
	}
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := b.Raw("getMe", nil); err != nil {
				logger.Warn(ctx, "app", "keepalive failed",
					slog.String("err", err.Error()),
				)
				continue
			}
			logger.Debug(ctx, "app", "keepalive ok")
		}
	}
}
