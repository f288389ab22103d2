package logging

import (
	"fmt"
	"os"
	"sync"
)

// LoggerManager раздаёт логгеры компонентов (terrain, api, storage) с общими
// настройками: порог консоли и запись в файлы logs/<component>_*.log.
type LoggerManager struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
	level   LogLevel
	toFile  bool
}

var globalManager = &LoggerManager{loggers: make(map[string]*Logger), level: INFO}

// Configure задаёт порог консоли и запись в файлы для всех компонентов.
// Уже выданные логгеры получают новый порог; файлы открываются только у новых.
func Configure(level LogLevel, toFile bool, dir string) {
	globalManager.mu.Lock()
	defer globalManager.mu.Unlock()
	globalManager.level = level
	globalManager.toFile = toFile
	if dir != "" {
		LogDir = dir
	}
	for _, l := range globalManager.loggers {
		l.SetLevel(level, TRACE)
	}
}

// component возвращает логгер компонента, создавая его при первом обращении.
// Если файл открыть не удалось, логгер пишет только в консоль.
func (lm *LoggerManager) component(name string) *Logger {
	lm.mu.RLock()
	l, ok := lm.loggers[name]
	lm.mu.RUnlock()
	if ok {
		return l
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()
	if l, ok := lm.loggers[name]; ok {
		return l
	}

	if lm.toFile {
		var err error
		if l, err = NewLogger(name); err != nil {
			fmt.Fprintf(os.Stderr, "логгер %s без файла: %v\n", name, err)
			l = nil
		}
	}
	if l == nil {
		l = NewConsoleLogger(name, os.Stdout)
	}
	l.SetLevel(lm.level, TRACE)
	lm.loggers[name] = l
	return l
}

// CloseAll закрывает файлы всех логгеров компонентов.
func CloseAll() error {
	globalManager.mu.Lock()
	defer globalManager.mu.Unlock()

	var lastErr error
	for name, l := range globalManager.loggers {
		if err := l.Close(); err != nil {
			lastErr = fmt.Errorf("закрытие логгера %s: %w", name, err)
		}
	}
	globalManager.loggers = make(map[string]*Logger)
	return lastErr
}

// GetComponentLogger возвращает логгер произвольного компонента.
func GetComponentLogger(component string) *Logger {
	return globalManager.component(component)
}

func GetTerrainLogger() *Logger { return GetComponentLogger("terrain") }

func GetAPILogger() *Logger { return GetComponentLogger("api") }
