package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

func TestRegistryExactAndPrefix(t *testing.T) {
	reg := NewRegistry()

	var hit string
	require.NoError(t, reg.RegisterCallback("stats", func(c tele.Context) error {
		hit = "stats"
		return nil
	}))
	require.NoError(t, reg.RegisterCallbackPrefix("order_", func(c tele.Context, arg string) error {
		hit = "order:" + arg
		return nil
	}))

	h, ok := reg.Resolve("stats")
	require.True(t, ok)
	require.NoError(t, h(nil))
	assert.Equal(t, "stats", hit)

	h, ok = reg.Resolve("order_latte")
	require.True(t, ok)
	require.NoError(t, h(nil))
	assert.Equal(t, "order:latte", hit)

	_, ok = reg.Resolve("unknown_action")
	assert.False(t, ok)
}

func TestRegistryLongestPrefixWins(t *testing.T) {
	reg := NewRegistry()

	var hit string
	require.NoError(t, reg.RegisterCallbackPrefix("delete_", func(c tele.Context, arg string) error {
		hit = "short:" + arg
		return nil
	}))
	require.NoError(t, reg.RegisterCallbackPrefix("delete_coffee_", func(c tele.Context, arg string) error {
		hit = "long:" + arg
		return nil
	}))

	h, ok := reg.Resolve("delete_coffee_latte")
	require.True(t, ok)
	require.NoError(t, h(nil))
	assert.Equal(t, "long:latte", hit)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	noop := func(c tele.Context) error { return nil }

	require.NoError(t, reg.RegisterCallback("stats", noop))
	assert.Error(t, reg.RegisterCallback("stats", noop))

	prefix := func(c tele.Context, arg string) error { return nil }
	require.NoError(t, reg.RegisterCallbackPrefix("order_", prefix))
	assert.Error(t, reg.RegisterCallbackPrefix("order_", prefix))
}

func TestRegistryActionsSorted(t *testing.T) {
	reg := NewRegistry()
	noop := func(c tele.Context) error { return nil }
	for _, a := range []string{"stats", "back_main", "pay_cash"} {
		require.NoError(t, reg.RegisterCallback(a, noop))
	}
	assert.Equal(t, []string{"back_main", "pay_cash", "stats"}, reg.Actions())
}

func TestActionID(t *testing.T) {
	assert.Empty(t, ActionID(nil))
	assert.Equal(t, "pay_cash", ActionID(&tele.Callback{Data: "pay_cash"}))
	assert.Equal(t, "pay_cash", ActionID(&tele.Callback{Data: "\fpay_cash"}))
	assert.Equal(t, "order_latte", ActionID(&tele.Callback{Data: " order_latte "}))
	assert.Equal(t, "stats", ActionID(&tele.Callback{Unique: "stats", Data: "ignored"}))
}
