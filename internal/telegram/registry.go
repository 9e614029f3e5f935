package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	tele "gopkg.in/telebot.v4"

	"kavapos/internal/logger"
)

// PrefixHandler handles a callback whose action id starts with a
// registered prefix; arg is the remainder after the prefix.
type PrefixHandler func(c tele.Context, arg string) error

type prefixRoute struct {
	prefix  string
	handler PrefixHandler
}

// Registry holds callback action handlers. Action ids are the raw
// callback data strings; parameterized actions (order_<key>,
// delete_coffee_<key>) are matched by prefix.
type Registry struct {
	mu       sync.RWMutex
	exact    map[string]tele.HandlerFunc
	prefixes []prefixRoute
	notFound tele.HandlerFunc
}

// NewRegistry creates an empty Registry with a default not-found reply.
func NewRegistry() *Registry {
	return &Registry{
		exact: make(map[string]tele.HandlerFunc),
		notFound: func(c tele.Context) error {
			return c.Send("Unsupported action.")
		},
	}
}

// RegisterCallback adds a handler for an exact action id.
func (r *Registry) RegisterCallback(action string, handler tele.HandlerFunc) error {
	if r == nil || action == "" || handler == nil {
		return errors.New("invalid callback registration")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.exact[action]; exists {
		logger.Warn(context.Background(), "tg.wire", "register.callback.duplicate",
			slog.String("action", action),
		)
		return fmt.Errorf("callback already registered: %s", action)
	}
	r.exact[action] = handler
	return nil
}

// RegisterCallbackPrefix adds a handler for action ids beginning with
// prefix. Longer prefixes win over shorter ones.
func (r *Registry) RegisterCallbackPrefix(prefix string, handler PrefixHandler) error {
	if r == nil || prefix == "" || handler == nil {
		return errors.New("invalid callback prefix registration")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.prefixes {
		if p.prefix == prefix {
			return fmt.Errorf("callback prefix already registered: %s", prefix)
		}
	}
	r.prefixes = append(r.prefixes, prefixRoute{prefix: prefix, handler: handler})
	sort.Slice(r.prefixes, func(i, j int) bool {
		return len(r.prefixes[i].prefix) > len(r.prefixes[j].prefix)
	})
	return nil
}

// Resolve maps an action id to its handler. Exact matches win, then the
// longest matching prefix.
func (r *Registry) Resolve(action string) (tele.HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if h, ok := r.exact[action]; ok {
		return h, true
	}
	for _, p := range r.prefixes {
		if strings.HasPrefix(action, p.prefix) {
			arg := strings.TrimPrefix(action, p.prefix)
			handler := p.handler
			return func(c tele.Context) error { return handler(c, arg) }, true
		}
	}
	return nil, false
}

// Actions returns sorted registered exact action ids (for diagnostics).
func (r *Registry) Actions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.exact))
	for k := range r.exact {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// SetCallbackNotFound replaces the fallback handler for unknown actions.
func (r *Registry) SetCallbackNotFound(h tele.HandlerFunc) {
	if h != nil {
		r.notFound = h
	}
}

// CallbackNotFound returns the current fallback handler.
func (r *Registry) CallbackNotFound() tele.HandlerFunc {
	return r.notFound
}

// ActionID extracts the action id from a callback. Buttons are built
// with raw callback data, so the id is the data itself; the telebot
// "\f" marker is stripped when present.
func ActionID(cb *tele.Callback) string {
	if cb == nil {
		return ""
	}
	if cb.Unique != "" {
		return cb.Unique
	}
	return strings.TrimSpace(strings.TrimPrefix(cb.Data, "\f"))
}
