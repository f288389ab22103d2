package eventbus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Типы событий сервиса.
const (
	EventTileGenerated = "tile.generated"
	EventTileServed    = "tile.served"
)

// SourceTerrain - имя источника событий генератора.
const SourceTerrain = "terrain"

// TileGenerated - полезная нагрузка события о готовом тайле.
type TileGenerated struct {
	RunID       string  `json:"run_id"`
	Seed        uint32  `json:"seed"`
	Omega       float32 `json:"omega"`
	Row         int     `json:"row"`
	Col         int     `json:"col"`
	FirstOctave int     `json:"first_octave"`
	LastOctave  int     `json:"last_octave"`
	Side        int     `json:"side"`
	Scale       float32 `json:"scale"`
	Cached      bool    `json:"cached"`
	DurationMs  float64 `json:"duration_ms"`
}

// NewEnvelope упаковывает полезную нагрузку в конверт с новым UUID.
func NewEnvelope(eventType, correlationID string, payload any) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", eventType, err)
	}
	return &Envelope{
		ID:            uuid.NewString(),
		Timestamp:     time.Now().UTC(),
		Source:        SourceTerrain,
		EventType:     eventType,
		Version:       1,
		CorrelationID: correlationID,
		Payload:       data,
	}, nil
}

// NewTileEnvelope создаёт конверт tile.generated или tile.served.
func NewTileEnvelope(ev TileGenerated) (*Envelope, error) {
	eventType := EventTileGenerated
	if ev.Cached {
		eventType = EventTileServed
	}
	return NewEnvelope(eventType, ev.RunID, ev)
}

// DecodeTile разбирает полезную нагрузку тайлового события.
func DecodeTile(ev *Envelope) (TileGenerated, error) {
	var out TileGenerated
	if err := json.Unmarshal(ev.Payload, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", ev.EventType, err)
	}
	return out, nil
}
