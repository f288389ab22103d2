// Package runs ведёт журнал запусков генерации тайлов.
package runs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run - запись об одной генерации (или выдаче из хранилища) тайла.
type Run struct {
	ID          string        `json:"id" bson:"run_id"`
	Seed        uint32        `json:"seed" bson:"seed"`
	Omega       float32       `json:"omega" bson:"omega"`
	Row         int           `json:"row" bson:"row"`
	Col         int           `json:"col" bson:"col"`
	FirstOctave int           `json:"first_octave" bson:"first_octave"`
	LastOctave  int           `json:"last_octave" bson:"last_octave"`
	Side        int           `json:"side" bson:"side"`
	Octaves     int           `json:"octaves" bson:"octaves"`
	Scale       float32       `json:"scale" bson:"scale"`
	Cached      bool          `json:"cached" bson:"cached"`
	WallTime    time.Duration `json:"wall_time_ns" bson:"wall_time_ns"`
	CPUTime     time.Duration `json:"cpu_time_ns" bson:"cpu_time_ns"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at"`
}

// NewRun создаёт запись с новым идентификатором и текущим временем.
func NewRun() *Run {
	return &Run{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
}

// Validate проверяет обязательные поля записи.
func (r *Run) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("пустой идентификатор запуска")
	}
	if r.Side <= 0 {
		return fmt.Errorf("недействительная сторона тайла: %d", r.Side)
	}
	if r.FirstOctave > r.LastOctave {
		return fmt.Errorf("недействительный диапазон октав: %d..%d", r.FirstOctave, r.LastOctave)
	}
	return nil
}

// Repository определяет интерфейс для журнала запусков.
//
// Использование:
//
//	repo := NewMemoryRepo()
//	err := repo.Record(ctx, run)
//	recent, err := repo.Recent(ctx, 20)
type Repository interface {
	// Record сохраняет запись о запуске.
	Record(ctx context.Context, run *Run) error

	// Recent возвращает не более limit последних записей, новые первыми.
	Recent(ctx context.Context, limit int) ([]Run, error)

	// Close закрывает соединение с хранилищем.
	Close() error
}
