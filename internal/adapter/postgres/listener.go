package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"airdrop-ledger/internal/core/domain"
)

// EventListener follows ledger events published on EventsChannel. It uses
// a dedicated lib/pq connection because LISTEN has to outlive any pooled
// connection.
type EventListener struct {
	dsn    string
	logger *slog.Logger

	minReconnect time.Duration
	maxReconnect time.Duration
	pingEvery    time.Duration
}

// NewEventListener returns a listener connecting to dsn.
func NewEventListener(dsn string, logger *slog.Logger) *EventListener {
	return &EventListener{
		dsn:          dsn,
		logger:       logger,
		minReconnect: 10 * time.Second,
		maxReconnect: time.Minute,
		pingEvery:    90 * time.Second,
	}
}

// Listen calls fn for every event committed after Listen started, until
// ctx is done or fn returns an error. Notifications missed while the
// connection was down are not replayed; use the events view to catch up.
func (l *EventListener) Listen(ctx context.Context, fn func(domain.Event) error) error {
	listener := pq.NewListener(l.dsn, l.minReconnect, l.maxReconnect, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			l.logger.Warn("event listener connection", slog.Int("event", int(ev)), slog.Any("error", err))
		}
	})
	defer listener.Close()

	if err := listener.Listen(EventsChannel); err != nil {
		return fmt.Errorf("listen %s: %w", EventsChannel, err)
	}

	ticker := time.NewTicker(l.pingEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			// nil after a reconnect
			if n == nil {
				l.logger.Info("event listener reconnected")
				continue
			}
			e, err := DecodeNotification(n.Extra)
			if err != nil {
				l.logger.Warn("skip malformed notification", slog.Any("error", err))
				continue
			}
			if err = fn(e); err != nil {
				return err
			}
		case <-ticker.C:
			if err := listener.Ping(); err != nil {
				l.logger.Warn("event listener ping", slog.Any("error", err))
			}
		}
	}
}

// DecodeNotification parses a notification payload into an event.
func DecodeNotification(payload string) (domain.Event, error) {
	var e domain.Event
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		return e, fmt.Errorf("decode notification: %w", err)
	}
	return e, nil
}
