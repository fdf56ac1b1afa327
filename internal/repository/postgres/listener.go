package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/dafibh/moneymanager/moneymanager-backend/internal/domain"
	"github.com/rs/zerolog"
)

// ChangeChannel is the NOTIFY channel fed by the record triggers
const ChangeChannel = "moneymanager_changes"

// parseNotification splits a "<owner>:<table>" payload. Owner identifiers may
// themselves contain colons; table names never do.
func parseNotification(payload string) (ownerID, table string, ok bool) {
	i := strings.LastIndex(payload, ":")
	if i <= 0 || i == len(payload)-1 {
		return "", "", false
	}
	return payload[:i], payload[i+1:], true
}

// subscribe streams fetch results for one owner and table, re-running fetch each
// time the notifier reports a change
func subscribe[T any](
	ctx context.Context,
	notifier *Notifier,
	logger zerolog.Logger,
	entity domain.EntityKind,
	table, ownerID string,
	fetch func(ctx context.Context) ([]T, error),
) (*domain.Subscription[T], error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthenticated
	}

	// Registered before the first fetch so no change between the two is missed
	l, err := notifier.register(ownerID, table)
	if err != nil {
		return nil, err
	}

	sub, producerCtx := domain.NewSubscription[T](ctx)
	logger = logger.With().Str("owner_id", ownerID).Str("table", table).Logger()

	go func() {
		defer func() {
			notifier.unregister(ownerID, table, l)
			logger.Debug().Msg("Subscription released")
		}()

		finish := func(err error) {
			if producerCtx.Err() != nil || errors.Is(err, context.Canceled) {
				sub.Finish(nil)
				return
			}
			logger.Error().Err(err).Msg("Subscription failed")
			sub.Finish(err)
		}

		publish := func() bool {
			snapshot, err := fetch(producerCtx)
			if err != nil {
				finish(storeError(entity, "", err))
				return false
			}
			sub.Publish(snapshot)
			return true
		}

		if !publish() {
			return
		}
		for {
			select {
			case <-producerCtx.Done():
				sub.Finish(nil)
				return
			case err := <-l.failed:
				finish(err)
				return
			case <-l.changed:
				if !publish() {
					return
				}
			}
		}
	}()

	logger.Debug().Msg("Subscription started")
	return sub, nil
}
