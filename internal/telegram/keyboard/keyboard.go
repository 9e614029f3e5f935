// Package keyboard builds inline reply markups from plain button
// descriptions. Callback data is sent raw, so the data string is the
// action id the router dispatches on.
package keyboard

import tele "gopkg.in/telebot.v4"

// Btn describes one inline button: a label and its action id.
type Btn struct {
	Text string
	Data string
}

// Inline builds an inline keyboard where each button is placed on its own row.
func Inline(buttons ...Btn) *tele.ReplyMarkup {
	rows := make([][]Btn, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, []Btn{b})
	}
	return InlineRows(rows...)
}

// InlineRows builds an inline keyboard from rows of Btn.
func InlineRows(rows ...[]Btn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, len(rows))
	for i, row := range rows {
		r := make([]tele.InlineButton, len(row))
		for j, btn := range row {
			r[j] = tele.InlineButton{Text: btn.Text, Data: btn.Data}
		}
		inline[i] = r
	}
	markup.InlineKeyboard = inline
	return markup
}
