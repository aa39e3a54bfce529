package server

import "github.com/cardroomhq/cardroom/internal/game"

// Notifier is told about every committed table transition. Implementations
// render per-player views from the table, so each recipient only ever sees
// their own hole cards.
type Notifier interface {
	TableChanged(t *game.Table)
}

// NopNotifier discards notifications.
type NopNotifier struct{}

func (NopNotifier) TableChanged(*game.Table) {}
