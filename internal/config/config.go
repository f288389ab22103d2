package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации приложения.
type Config struct {
	Generator GeneratorConfig `yaml:"generator"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Runs      RunsConfig      `yaml:"runs"`
	EventBus  EventBusConfig  `yaml:"eventbus"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// GeneratorConfig параметры генератора рельефа
type GeneratorConfig struct {
	TileSide    int     `yaml:"tile_side"`    // сторона тайла, степень двойки
	Seed        uint32  `yaml:"seed"`         // сид хеша
	Omega       float32 `yaml:"omega"`        // множитель хвоста, [0,1]
	FirstOctave int     `yaml:"first_octave"` // m0
	LastOctave  int     `yaml:"last_octave"`  // m1
	Altitude    float32 `yaml:"altitude"`     // потолок высоты в метрах
	CellSize    float32 `yaml:"cell_size"`    // шаг сетки DEM в метрах
}

type ServerConfig struct {
	RESTPort    int `yaml:"rest_port"`
	MetricsPort int `yaml:"metrics_port"`
}

// StorageConfig хранилище тайлов: memory | badger | redis | cached (redis поверх badger)
type StorageConfig struct {
	Backend     string `yaml:"backend"`
	BadgerPath  string `yaml:"badger_path"`
	RedisAddr   string `yaml:"redis_addr"`
	RedisDB     int    `yaml:"redis_db"`
	TTLSeconds  int    `yaml:"ttl_seconds"`
	Compression bool   `yaml:"compression"`
}

// RunsConfig журнал генераций: memory | maria | mongo
type RunsConfig struct {
	Backend  string `yaml:"backend"`
	DSN      string `yaml:"dsn"`
	MongoURI string `yaml:"mongo_uri"`
	Database string `yaml:"database"`
}

type EventBusConfig struct {
	URL       string `yaml:"url"`
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
	Endpoint    string `yaml:"endpoint"` // host:port OTLP/HTTP, пусто - localhost:4318
}

type LoggingConfig struct {
	Level   string `yaml:"level"`
	ToFile  bool   `yaml:"to_file"`
	LogsDir string `yaml:"dir"`
}

// Default возвращает конфигурацию по умолчанию: тайл 4096, октавы 5..12,
// omega 0.3, потолок 5000 м, шаг сетки 5 м.
func Default() *Config {
	return &Config{
		Generator: GeneratorConfig{
			TileSide:    4096,
			Seed:        9999,
			Omega:       0.3,
			FirstOctave: 5,
			LastOctave:  12,
			Altitude:    5000,
			CellSize:    5,
		},
		Storage: StorageConfig{
			Backend:     "memory",
			BadgerPath:  "data",
			RedisAddr:   "localhost:6379",
			TTLSeconds:  3600,
			Compression: true,
		},
		Runs: RunsConfig{
			Backend:  "memory",
			Database: "terrain",
		},
		EventBus: EventBusConfig{
			Stream:    "TERRAIN",
			Retention: 24,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "terrain-noise",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogsDir: "logs",
		},
	}
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "TERRAIN_REST_PORT", 8088)
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "TERRAIN_METRICS_PORT", 2112)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать из ENV TERRAIN_CONFIG или возвращает Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("TERRAIN_CONFIG")
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение конфигурации %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации %s: %w", path, err)
	}

	return cfg, nil
}

// Validate проверяет предусловия генератора. Omega вне [0,1] не ошибка:
// генератор обрежет её сам, поэтому здесь возвращается только предупреждение.
func (g *GeneratorConfig) Validate() (warnings []string, err error) {
	if g.TileSide < 2 || g.TileSide&(g.TileSide-1) != 0 {
		return nil, fmt.Errorf("tile_side должен быть степенью двойки >= 2, получено %d", g.TileSide)
	}
	if g.FirstOctave < 1 || g.LastOctave < g.FirstOctave {
		return nil, fmt.Errorf("некорректный диапазон октав %d..%d", g.FirstOctave, g.LastOctave)
	}
	if g.TileSide>>(g.FirstOctave-1) < 2 {
		return nil, fmt.Errorf("first_octave %d слишком велик для тайла %d", g.FirstOctave, g.TileSide)
	}
	if g.Altitude <= 0 {
		return nil, fmt.Errorf("altitude должен быть больше 0, получено %v", g.Altitude)
	}
	if g.Omega < 0 || g.Omega > 1 {
		warnings = append(warnings, fmt.Sprintf("omega %v вне [0,1], будет обрезана", g.Omega))
	}
	return warnings, nil
}
