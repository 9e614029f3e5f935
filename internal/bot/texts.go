package bot

const (
	msgWelcome        = "Hi! Pick an action:"
	msgBackMain       = "🔙 Back to the main menu."
	msgChooseDrink    = "☕ Pick a drink:"
	msgMenuEmpty      = "⛔ No drinks on the menu yet."
	msgPickDrinkFirst = "⛔ Pick a drink first!"
	msgEnterPassword  = "🔑 Enter the password:"
	msgPasswordOK     = "✅ Password accepted!"
	msgPasswordBad    = "❌ Wrong password!"
	msgEnterNewDrink  = "Enter the drink name and price (example: Latte - 45):"
	msgBadDrinkFormat = "❌ Wrong format. Use: Name - Price"
	msgBadDrinkPrice  = "❌ The price must be a number!"
	msgPickToDelete   = "Pick a drink to delete:"
	msgDrinkDeleted   = "✅ Drink deleted!"
	msgEnterEditName  = "✏️ Enter the drink name to correct today's stats:"
	msgDrinkNotFound  = "⛔ Drink not found on the menu."
	msgBadEditCount   = "⛔ Enter a positive number!"
	msgNoStatsToday   = "⛔ No stats found for that drink today."
	msgStatsZeroed    = "✅ Stats zeroed and the record deleted."
	msgNoLastOrder    = "⛔ Last order not found."
	msgOrderUndone    = "✅ Last order cancelled."
	msgAdminRequired  = "⛔ Admin access required. Enter the password first."
	msgGenericFailure = "⚠️ Something went wrong. Please try again."
)
