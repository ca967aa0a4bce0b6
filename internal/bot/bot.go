// Package bot wires the catalog, prompt, gateway, and sessions into chat
// turns. Initialization happens once; every user action afterwards goes
// through an explicit handler (Turn, Reload, or a session control).
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/metric"

	"BukuBot/internal/catalog"
	"BukuBot/internal/config"
	"BukuBot/internal/order"
	"BukuBot/internal/orderlog"
	"BukuBot/internal/prompt"
	"BukuBot/internal/session"
)

// Responder is the assistant gateway seen by the bot. The gateway client
// implements it; tests substitute fakes.
type Responder interface {
	Respond(ctx context.Context, transcript []session.Message) (string, error)
	SetSystemPrompt(prompt string)
}

// Bot is the per-process orchestrator. Sessions are owned by callers; the
// bot owns the shared, read-only-after-load catalog and the composed prompt.
type Bot struct {
	cfg       config.Config
	store     *catalog.Store
	responder Responder
	journal   *orderlog.Journal // may be nil; journaling is best-effort
	logger    *slog.Logger

	turns    metric.Int64Counter
	orders   metric.Int64Counter
	failures metric.Int64Counter

	mu           sync.RWMutex
	systemPrompt string
}

// New loads the catalog, composes the system prompt, and configures the
// responder with it. Catalog load errors fail startup entirely.
func New(cfg config.Config, store *catalog.Store, responder Responder, journal *orderlog.Journal, logger *slog.Logger, meter metric.Meter) (*Bot, error) {
	cat, err := store.Get()
	if err != nil {
		return nil, err
	}

	turns, err := meter.Int64Counter("chat.turns",
		metric.WithDescription("Completed chat turns"))
	if err != nil {
		return nil, fmt.Errorf("failed to create turns counter: %w", err)
	}
	orders, err := meter.Int64Counter("chat.orders.detected",
		metric.WithDescription("Order markers detected in assistant replies"))
	if err != nil {
		return nil, fmt.Errorf("failed to create orders counter: %w", err)
	}
	failures, err := meter.Int64Counter("chat.gateway.failures",
		metric.WithDescription("Failed gateway calls"))
	if err != nil {
		return nil, fmt.Errorf("failed to create failures counter: %w", err)
	}

	b := &Bot{
		cfg:       cfg,
		store:     store,
		responder: responder,
		journal:   journal,
		logger:    logger,
		turns:     turns,
		orders:    orders,
		failures:  failures,
	}

	b.systemPrompt = prompt.Compose(cat)
	responder.SetSystemPrompt(b.systemPrompt)
	logger.Info("catalog loaded", "entries", len(cat))
	return b, nil
}

// Turn runs one chat turn: append the user message, call the gateway, and
// append the reply. On a gateway failure the pending user message is rolled
// back and a failure notice is appended for the transcript, so the strict
// user/assistant alternation survives.
func (b *Bot) Turn(ctx context.Context, sess *session.Session, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("message must not be empty")
	}

	sess.AppendUser(text)

	reply, err := b.responder.Respond(ctx, sess.Messages)
	if err != nil {
		sess.Rollback()
		sess.AppendError(err.Error())
		b.failures.Add(ctx, 1)
		b.logger.Error("gateway call failed", "session_id", sess.ID, "error", err)
		return "", err
	}

	sess.AppendAssistant(reply)
	b.turns.Add(ctx, 1)

	if parsed := order.Parse(reply); len(parsed) > 0 {
		b.orders.Add(ctx, int64(len(parsed)))
		b.journalOrders(sess.ID, parsed)
	}

	return reply, nil
}

// journalOrders records parsed markers; failures are logged, never surfaced.
func (b *Bot) journalOrders(sessionID string, parsed []order.Order) {
	if b.journal == nil {
		return
	}
	for _, o := range parsed {
		if err := b.journal.Record(sessionID, o); err != nil {
			b.logger.Warn("failed to journal order", "session_id", sessionID, "error", err)
		}
	}
}

// Reload discards the cached catalog, re-reads the source, recomposes the
// system prompt, and reconfigures the responder.
func (b *Bot) Reload(ctx context.Context) (catalog.Catalog, error) {
	cat, err := b.store.Reload()
	if err != nil {
		return nil, err
	}

	p := prompt.Compose(cat)
	b.mu.Lock()
	b.systemPrompt = p
	b.mu.Unlock()
	b.responder.SetSystemPrompt(p)

	b.logger.Info("catalog reloaded", "entries", len(cat))
	return cat, nil
}

// Catalog returns the cached catalog.
func (b *Bot) Catalog() (catalog.Catalog, error) {
	return b.store.Get()
}

// SystemPrompt returns the currently composed system instruction.
func (b *Bot) SystemPrompt() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.systemPrompt
}

// RecentOrders returns the newest journaled orders, or nothing when the
// journal is disabled.
func (b *Bot) RecentOrders(limit int) ([]orderlog.Entry, error) {
	if b.journal == nil {
		return []orderlog.Entry{}, nil
	}
	return b.journal.Recent(limit)
}

// LowStockThreshold exposes the configured warning threshold.
func (b *Bot) LowStockThreshold() int {
	return b.cfg.LowStockThreshold
}
