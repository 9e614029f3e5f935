package bot

import (
	"fmt"

	tele "gopkg.in/telebot.v4"

	"kavapos/internal/menu"
	"kavapos/internal/telegram/keyboard"
)

func mainMenu() *tele.ReplyMarkup {
	return keyboard.Inline(
		keyboard.Btn{Text: "☕ Pick a drink", Data: actionChooseCoffee},
		keyboard.Btn{Text: "📊 Today's stats", Data: actionStats},
		keyboard.Btn{Text: "🔧 Enter password (admin)", Data: actionEnterPassword},
	)
}

func adminMenu() *tele.ReplyMarkup {
	return keyboard.Inline(
		keyboard.Btn{Text: "➕ Add drink", Data: actionAddCoffee},
		keyboard.Btn{Text: "🗑 Remove drink", Data: actionRemoveCoffee},
		keyboard.Btn{Text: "✏️ Edit stats", Data: actionEditStats},
		keyboard.Btn{Text: "⏪ Undo last order", Data: actionUndoOrder},
		keyboard.Btn{Text: "🔙 Back", Data: actionBackMain},
	)
}

func drinkMenu(items []menu.Item) *tele.ReplyMarkup {
	buttons := make([]keyboard.Btn, 0, len(items)+1)
	for _, it := range items {
		buttons = append(buttons, keyboard.Btn{
			Text: fmt.Sprintf("☕ %s — %d", it.Name, it.Price),
			Data: actionOrderPrefix + it.Key,
		})
	}
	buttons = append(buttons, keyboard.Btn{Text: "🔙 Back", Data: actionBackMain})
	return keyboard.Inline(buttons...)
}

func paymentMenu() *tele.ReplyMarkup {
	return keyboard.InlineRows(
		[]keyboard.Btn{
			{Text: "💵 Cash", Data: actionPayCash},
			{Text: "💳 Card", Data: actionPayCard},
		},
		[]keyboard.Btn{{Text: "🔙 Back", Data: actionChooseCoffee}},
	)
}

func deleteMenu(items []menu.Item) *tele.ReplyMarkup {
	buttons := make([]keyboard.Btn, 0, len(items)+1)
	for _, it := range items {
		buttons = append(buttons, keyboard.Btn{
			Text: "❌ " + it.Name,
			Data: actionDeletePrefix + it.Key,
		})
	}
	buttons = append(buttons, keyboard.Btn{Text: "🔙 Back", Data: actionBackMain})
	return keyboard.Inline(buttons...)
}
