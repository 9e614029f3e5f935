package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"kavapos/internal/engine"
	"kavapos/internal/ledger"
	"kavapos/internal/telegram"
)

func (a *App) onStart(c tele.Context) error {
	a.engine.Reset(c.Sender().ID)
	return telegram.SendText(c, msgWelcome, mainMenu())
}

func (a *App) onText(c tele.Context) error {
	ctx := telegram.BuildContext(c)
	res, err := a.engine.HandleText(ctx, c.Sender().ID, c.Text())
	if err != nil {
		return a.replyError(c, err)
	}

	switch res.Kind {
	case engine.PasswordAccepted:
		return telegram.SendText(c, msgPasswordOK, adminMenu())
	case engine.PasswordRejected:
		return telegram.SendText(c, msgPasswordBad)
	case engine.DrinkAdded:
		text := fmt.Sprintf("✅ Drink added: %s — %d", res.Item.Name, res.Item.Price)
		return telegram.SendText(c, text, adminMenu())
	case engine.EditDrinkFound:
		text := fmt.Sprintf("☕ Found drink: %s. Enter how many orders to remove:", res.Item.Name)
		return telegram.SendText(c, text)
	case engine.StatsZeroed:
		return telegram.SendText(c, msgStatsZeroed, adminMenu())
	case engine.StatsReduced:
		text := fmt.Sprintf("✅ Stats reduced by %d orders.", res.Count)
		return telegram.SendText(c, text, adminMenu())
	}

	// Idle free text matches nothing; ignored by policy.
	return nil
}

func (a *App) cbChooseCoffee(c tele.Context) error {
	ctx := telegram.BuildContext(c)
	items, err := a.engine.Drinks(ctx)
	if err != nil {
		return a.replyError(c, err)
	}
	if len(items) == 0 {
		return telegram.SendText(c, msgMenuEmpty, mainMenu())
	}
	return telegram.SendText(c, msgChooseDrink, drinkMenu(items))
}

func (a *App) cbOrder(c tele.Context, key string) error {
	ctx := telegram.BuildContext(c)
	item, err := a.engine.SelectDrink(ctx, c.Sender().ID, key)
	if err != nil {
		return a.replyError(c, err)
	}
	text := fmt.Sprintf("You picked: %s — %d.\nChoose a payment method:", item.Name, item.Price)
	return telegram.SendText(c, text, paymentMenu())
}

func (a *App) payHandler(payment string) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := telegram.BuildContext(c)
		order, err := a.engine.Pay(ctx, c.Sender().ID, payment)
		if err != nil {
			return a.replyError(c, err)
		}
		text := fmt.Sprintf("☕ Order added: %s, payment: %s.", order.Item.Name, paymentLabel(order.Payment))
		return telegram.SendText(c, text, mainMenu())
	}
}

func (a *App) cbStats(c tele.Context) error {
	ctx := telegram.BuildContext(c)
	rows, total, err := a.engine.StatsToday(ctx)
	if err != nil {
		return a.replyError(c, err)
	}
	return telegram.SendText(c, a.formatStats(ctx, rows, total), mainMenu())
}

func (a *App) formatStats(ctx context.Context, rows []ledger.Row, total int) string {
	names := make(map[string]string)
	if items, err := a.engine.Drinks(ctx); err == nil {
		for _, it := range items {
			names[it.Key] = it.Name
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Stats for %s:\n", ledger.Today())
	for _, r := range rows {
		name, ok := names[r.DrinkKey]
		if !ok {
			name = r.DrinkKey
		}
		fmt.Fprintf(&b, "☕ %s (%s) — %d pcs. (%d)\n", name, paymentLabel(r.Payment), r.Count, r.Revenue)
	}
	fmt.Fprintf(&b, "\n💰 Total revenue: %d", total)
	return b.String()
}

func (a *App) cbEnterPassword(c tele.Context) error {
	a.engine.RequestPassword(c.Sender().ID)
	return telegram.SendText(c, msgEnterPassword)
}

func (a *App) cbAddCoffee(c tele.Context) error {
	if err := a.engine.RequestNewDrink(c.Sender().ID); err != nil {
		return a.replyError(c, err)
	}
	return telegram.SendText(c, msgEnterNewDrink)
}

func (a *App) cbRemoveCoffee(c tele.Context) error {
	if !a.engine.IsAdmin(c.Sender().ID) {
		return telegram.SendText(c, msgAdminRequired)
	}
	ctx := telegram.BuildContext(c)
	items, err := a.engine.Drinks(ctx)
	if err != nil {
		return a.replyError(c, err)
	}
	if len(items) == 0 {
		return telegram.SendText(c, msgMenuEmpty, adminMenu())
	}
	return telegram.SendText(c, msgPickToDelete, deleteMenu(items))
}

func (a *App) cbDelete(c tele.Context, key string) error {
	ctx := telegram.BuildContext(c)
	if err := a.engine.RemoveDrink(ctx, c.Sender().ID, key); err != nil {
		return a.replyError(c, err)
	}
	return telegram.SendText(c, msgDrinkDeleted, adminMenu())
}

func (a *App) cbUndo(c tele.Context) error {
	ctx := telegram.BuildContext(c)
	if err := a.engine.Undo(ctx, c.Sender().ID); err != nil {
		return a.replyError(c, err)
	}
	return telegram.SendText(c, msgOrderUndone, adminMenu())
}

func (a *App) cbEditStats(c tele.Context) error {
	if err := a.engine.RequestEditStats(c.Sender().ID); err != nil {
		return a.replyError(c, err)
	}
	return telegram.SendText(c, msgEnterEditName)
}

func (a *App) cbBack(c tele.Context) error {
	a.engine.Reset(c.Sender().ID)
	return telegram.SendText(c, msgBackMain, mainMenu())
}

// replyError maps domain errors to user-facing messages. Unmapped errors
// are reported generically and propagated so the router logs them; the
// session is left as the engine left it, so the user can retry.
func (a *App) replyError(c tele.Context, err error) error {
	switch {
	case errors.Is(err, engine.ErrBadFormat):
		return telegram.SendText(c, msgBadDrinkFormat)
	case errors.Is(err, engine.ErrBadPrice):
		return telegram.SendText(c, msgBadDrinkPrice)
	case errors.Is(err, engine.ErrInvalidCount):
		return telegram.SendText(c, msgBadEditCount, adminMenu())
	case errors.Is(err, engine.ErrDrinkNotFound):
		return telegram.SendText(c, msgDrinkNotFound, adminMenu())
	case errors.Is(err, engine.ErrNoDrinkSelected):
		return telegram.SendText(c, msgPickDrinkFirst)
	case errors.Is(err, engine.ErrNoLastOrder):
		return telegram.SendText(c, msgNoLastOrder, adminMenu())
	case errors.Is(err, engine.ErrNotAdmin):
		return telegram.SendText(c, msgAdminRequired)
	case errors.Is(err, ledger.ErrRecordNotFound):
		return telegram.SendText(c, msgNoStatsToday, adminMenu())
	}
	_ = telegram.SendText(c, msgGenericFailure)
	return err
}

func paymentLabel(payment string) string {
	switch payment {
	case ledger.PaymentCash:
		return "cash"
	case ledger.PaymentCard:
		return "card"
	}
	return payment
}
