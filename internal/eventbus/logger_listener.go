package eventbus

import (
	"context"

	"github.com/annel0/terrain-noise/internal/logging"
)

// StartLoggingListener подписывается на все события и пишет их в лог.
// Функция неблокирующая.
func StartLoggingListener(bus EventBus) (Subscription, error) {
	sub, err := bus.Subscribe(context.Background(), Filter{}, func(ctx context.Context, ev *Envelope) {
		if tile, err := DecodeTile(ev); err == nil && ev.Source == SourceTerrain {
			logging.Debug("[EventBus] %s %s tile=(%d,%d) octaves=%d..%d side=%d %.1fms",
				ev.ID, ev.EventType, tile.Row, tile.Col, tile.FirstOctave, tile.LastOctave, tile.Side, tile.DurationMs)
			return
		}
		logging.Debug("[EventBus] %s %s src=%s prio=%d size=%dB", ev.ID, ev.EventType, ev.Source, ev.Priority, len(ev.Payload))
	})
	if err != nil {
		return nil, err
	}
	logging.Info("LoggingListener: подписка на все события активирована")
	return sub, nil
}
