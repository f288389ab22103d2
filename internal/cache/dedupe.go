package cache

import (
	"sync"
	"time"
)

// dedupe помнит недавно обработанные ключи.
type dedupe struct {
	window    time.Duration
	mu        sync.Mutex
	seen      map[string]time.Time
	lastSweep time.Time
}

func newDedupe(window time.Duration) *dedupe {
	return &dedupe{window: window, seen: make(map[string]time.Time)}
}

// check возвращает true, если ключ уже встречался в окне, иначе запоминает его.
// Раз в окно check заодно удаляет устаревшие записи.
func (d *dedupe) check(key string, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if now.Sub(d.lastSweep) > d.window {
		d.sweep(now)
	}
	if last, ok := d.seen[key]; ok && now.Sub(last) < d.window {
		return true
	}
	d.seen[key] = now
	return false
}

// cleanup удаляет записи старше окна и возвращает число оставшихся.
func (d *dedupe) cleanup(now time.Time) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sweep(now)
	return len(d.seen)
}

func (d *dedupe) sweep(now time.Time) {
	for k, t := range d.seen {
		if now.Sub(t) > d.window {
			delete(d.seen, k)
		}
	}
	d.lastSweep = now
}
