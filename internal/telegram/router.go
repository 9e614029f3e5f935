package telegram

import (
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"kavapos/internal/logger"
)

// Route declares a single bot handler bound to an arbitrary endpoint.
// Endpoint values are passed directly to tele.Bot.Handle.
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// CallbackRoute returns the OnCallback route that dispatches button
// presses through the registry.
func CallbackRoute(reg *Registry) Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		cb := c.Callback()
		if cb == nil {
			return nil
		}

		action := ActionID(cb)
		_ = c.Respond()

		h, ok := reg.Resolve(action)
		if !ok {
			h = reg.CallbackNotFound()
		}
		if h == nil {
			return nil
		}

		err := h(c)
		logHandled(c, "callback", start, err, slog.String("action", logger.SanitizeLimit(action, 128)))
		return err
	}
	return Route{
		Endpoint: tele.OnCallback,
		Handler:  RecoverMiddleware(LoggerMiddleware(handler)),
	}
}

// TextRoute returns the OnText route. Every non-command message flows to
// the given handler, which owns the conversation state machine.
func TextRoute(handler tele.HandlerFunc) Route {
	wrapped := func(c tele.Context) error {
		start := time.Now()
		err := handler(c)
		logHandled(c, "text", start, err)
		return err
	}
	return Route{
		Endpoint: tele.OnText,
		Handler:  RecoverMiddleware(LoggerMiddleware(wrapped)),
	}
}

func logHandled(c tele.Context, handlerName string, start time.Time, err error, extras ...slog.Attr) {
	ctx := WithHandler(c, handlerName)
	attrs := []slog.Attr{
		slog.String("status", logger.Status(err)),
		slog.String("handler", handlerName),
		slog.Int64("duration_ms", logger.Took(start).Milliseconds()),
	}
	if err != nil {
		attrs = append(attrs, slog.String("err", logger.SanitizeLimit(err.Error(), 256)))
	}
	attrs = append(attrs, extras...)
	logger.Info(ctx, "tg", "handler.handled", attrs...)
}
