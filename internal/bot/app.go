// Package bot wires the conversation engine to the Telegram transport:
// callback registrations, keyboards, texts, and the runtime lifecycle.
package bot

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"

	"kavapos/internal/config"
	"kavapos/internal/engine"
	"kavapos/internal/ledger"
	"kavapos/internal/logger"
	"kavapos/internal/menu"
	"kavapos/internal/session"
	"kavapos/internal/telegram"
)

// App owns the bot's services and handler wiring.
type App struct {
	cfg      *config.Config
	engine   *engine.Engine
	registry *telegram.Registry
}

// New builds the application over an open database handle.
func New(cfg *config.Config, db *sqlx.DB) *App {
	a := &App{
		cfg: cfg,
		engine: engine.New(
			menu.NewStore(db),
			ledger.New(db),
			session.NewMemoryStore(),
			cfg.Admin.Password,
		),
		registry: telegram.NewRegistry(),
	}
	a.registerCallbacks()
	return a
}

func (a *App) registerCallbacks() {
	reg := a.registry
	_ = reg.RegisterCallback(actionChooseCoffee, a.cbChooseCoffee)
	_ = reg.RegisterCallback(actionPayCash, a.payHandler(ledger.PaymentCash))
	_ = reg.RegisterCallback(actionPayCard, a.payHandler(ledger.PaymentCard))
	_ = reg.RegisterCallback(actionStats, a.cbStats)
	_ = reg.RegisterCallback(actionEnterPassword, a.cbEnterPassword)
	_ = reg.RegisterCallback(actionAddCoffee, a.cbAddCoffee)
	_ = reg.RegisterCallback(actionRemoveCoffee, a.cbRemoveCoffee)
	_ = reg.RegisterCallback(actionUndoOrder, a.cbUndo)
	_ = reg.RegisterCallback(actionEditStats, a.cbEditStats)
	_ = reg.RegisterCallback(actionBackMain, a.cbBack)
	_ = reg.RegisterCallbackPrefix(actionOrderPrefix, a.cbOrder)
	_ = reg.RegisterCallbackPrefix(actionDeletePrefix, a.cbDelete)

	logger.Info(context.Background(), "tg.wire", "wiring complete",
		slog.Int("callbacks", len(reg.Actions())),
	)
}

func (a *App) routes() []telegram.Route {
	return []telegram.Route{
		{
			Endpoint: "/start",
			Handler:  telegram.RecoverMiddleware(telegram.LoggerMiddleware(a.onStart)),
		},
		telegram.TextRoute(a.onText),
		telegram.CallbackRoute(a.registry),
	}
}

// Run starts the Telegram runtime and blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	return telegram.Run(ctx, telegram.RunOptions{
		Config:      a.cfg,
		Middlewares: telegram.DefaultMiddlewares(a.cfg, nil),
		Routes:      a.routes(),
		OnStart: func(ctx context.Context, rt telegram.Runtime) error {
			go keepAlive(ctx, rt.Bot)
			logger.Info(ctx, "app", "bot ready",
				slog.String("username", botUsername(rt.Bot)),
			)
			return nil
		},
		OnStop: func(ctx context.Context, rt telegram.Runtime) error {
			logger.Info(ctx, "app", "shutting down")
			return nil
		},
	})
}

func botUsername(b *tele.Bot) string {
	if b == nil || b.Me == nil {
		return ""
	}
	return b.Me.Username
}
