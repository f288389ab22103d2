package runs

import (
	"context"
	"sync"
)

// DefaultMemoryCapacity - сколько записей хранит MemoryRepo по умолчанию.
const DefaultMemoryCapacity = 1024

// MemoryRepo реализует Repository в памяти.
// Используется как fallback, когда база недоступна, или для локальной разработки.
// Хранит не более capacity последних записей.
type MemoryRepo struct {
	mu       sync.RWMutex
	runs     []Run
	capacity int
}

// NewMemoryRepo создаёт журнал в памяти.
func NewMemoryRepo() *MemoryRepo {
	return NewMemoryRepoWithCapacity(DefaultMemoryCapacity)
}

// NewMemoryRepoWithCapacity создаёт журнал с ограничением числа записей.
func NewMemoryRepoWithCapacity(capacity int) *MemoryRepo {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryRepo{capacity: capacity}
}

// Record сохраняет запись, вытесняя самую старую при переполнении.
func (r *MemoryRepo) Record(ctx context.Context, run *Run) error {
	if err := run.Validate(); err != nil {
		return err
	}

	// Проверяем контекст на отмену
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.runs) == r.capacity {
		copy(r.runs, r.runs[1:])
		r.runs = r.runs[:len(r.runs)-1]
	}
	r.runs = append(r.runs, *run)
	return nil
}

// Recent возвращает последние записи, новые первыми.
func (r *MemoryRepo) Recent(ctx context.Context, limit int) ([]Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > len(r.runs) {
		limit = len(r.runs)
	}
	out := make([]Run, 0, limit)
	for i := len(r.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.runs[i])
	}
	return out, nil
}

// Count возвращает количество сохранённых записей (для мониторинга).
func (r *MemoryRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.runs)
}

// Close для совместимости с интерфейсом.
func (r *MemoryRepo) Close() error {
	return nil
}
