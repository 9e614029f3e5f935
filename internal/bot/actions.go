package bot

// Callback action identifiers. This vocabulary is the wire contract
// between the rendered keyboards and the callback router; changing an id
// breaks buttons already on screen in old chats.
const (
	actionChooseCoffee  = "choose_coffee"
	actionOrderPrefix   = "order_"
	actionPayCash       = "pay_cash"
	actionPayCard       = "pay_card"
	actionStats         = "stats"
	actionEnterPassword = "enter_password"
	actionAddCoffee     = "add_coffee"
	actionRemoveCoffee  = "remove_coffee"
	actionDeletePrefix  = "delete_coffee_"
	actionUndoOrder     = "undo_order"
	actionEditStats     = "edit_stats"
	actionBackMain      = "back_main"
)
