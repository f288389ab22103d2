package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/annel0/terrain-noise/internal/config"
	"github.com/annel0/terrain-noise/internal/dem"
	"github.com/annel0/terrain-noise/internal/logging"
	"github.com/annel0/terrain-noise/internal/middleware"
	"github.com/annel0/terrain-noise/internal/runs"
	"github.com/annel0/terrain-noise/internal/terrain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Version - версия API сервера
const Version = "v0.1.0"

// RestServer представляет REST API сервер тайлов
type RestServer struct {
	router   *gin.Engine
	service  *terrain.Service
	defaults config.GeneratorConfig
	port     string
	metrics  *ServerMetrics
	httpSrv  *http.Server
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port          string                 // адрес для запуска сервера, например ":8088"
	Service       *terrain.Service       // сервис генерации
	Defaults      config.GeneratorConfig // значения параметров запроса по умолчанию
	Registry      *prometheus.Registry   // реестр метрик для /metrics; nil - без /metrics
	MaxConcurrent int                    // предел одновременных генераций, 0 - без предела
	Logger        *logging.Logger
}

// NewRestServer создает новый REST API сервер
func NewRestServer(cfg Config) *RestServer {
	if cfg.Port == "" {
		cfg.Port = ":8088"
	}

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	router.Use(otelgin.Middleware("terrain_api"))
	router.Use(middleware.NewRequestLogger(cfg.Logger).Handler())

	if cfg.Registry != nil {
		promMw := middleware.NewPrometheusMiddleware("terrain_api", cfg.Registry)
		router.Use(promMw.Handler())
		promMw.RegisterMetricsEndpoint(router, cfg.Registry)
	}

	rs := &RestServer{
		router:   router,
		service:  cfg.Service,
		defaults: cfg.Defaults,
		port:     cfg.Port,
		metrics:  NewServerMetrics(),
	}
	rs.httpSrv = &http.Server{
		Addr:              cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	rs.setupRoutes(cfg.MaxConcurrent)
	return rs
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes(maxConcurrent int) {
	rs.router.Use(corsMiddleware())

	api := rs.router.Group("/api")
	{
		api.GET("/tiles/:row/:col", generationLimiter(maxConcurrent), rs.handleTile)
		api.DELETE("/tiles/:row/:col", rs.handleInvalidate)
		api.GET("/runs", rs.handleRuns)
		api.GET("/server", rs.handleServerInfo)
	}

	rs.router.GET("/health", rs.handleHealth)
}

// Handler возвращает http.Handler сервера (для тестов и встраивания)
func (rs *RestServer) Handler() http.Handler {
	return rs.router
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// TileResponse - тайл в формате JSON
type TileResponse struct {
	RunID       string      `json:"run_id"`
	Row         int         `json:"row"`
	Col         int         `json:"col"`
	FirstOctave int         `json:"first_octave"`
	LastOctave  int         `json:"last_octave"`
	Side        int         `json:"side"`
	Octaves     int         `json:"octaves"`
	Scale       float32     `json:"scale"`
	Cached      bool        `json:"cached"`
	Altitude    float32     `json:"altitude"`
	Elevations  [][]float32 `json:"elevations"`
}

// tileQuery - параметры запроса тайла
type tileQuery struct {
	req      terrain.Request
	altitude float32
	format   string
}

func (rs *RestServer) parseTileQuery(c *gin.Context) (tileQuery, error) {
	q := tileQuery{
		req: terrain.Request{
			FirstOctave: rs.defaults.FirstOctave,
			LastOctave:  rs.defaults.LastOctave,
			Side:        rs.defaults.TileSide,
		},
		altitude: rs.defaults.Altitude,
		format:   c.DefaultQuery("format", "json"),
	}

	var err error
	if q.req.Row, err = strconv.Atoi(c.Param("row")); err != nil {
		return q, fmt.Errorf("row: %w", err)
	}
	if q.req.Col, err = strconv.Atoi(c.Param("col")); err != nil {
		return q, fmt.Errorf("col: %w", err)
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"m0", &q.req.FirstOctave},
		{"m1", &q.req.LastOctave},
		{"side", &q.req.Side},
	}
	for _, p := range ints {
		if v, ok := c.GetQuery(p.name); ok {
			if *p.dst, err = strconv.Atoi(v); err != nil {
				return q, fmt.Errorf("%s: %w", p.name, err)
			}
		}
	}

	if v, ok := c.GetQuery("altitude"); ok {
		a, err := strconv.ParseFloat(v, 32)
		if err != nil || a <= 0 {
			return q, fmt.Errorf("altitude должен быть больше 0")
		}
		q.altitude = float32(a)
	}

	if q.format != "json" && q.format != "asc" {
		return q, fmt.Errorf("неизвестный формат %q", q.format)
	}
	return q, nil
}

// handleTile генерирует тайл или отдаёт его из хранилища
func (rs *RestServer) handleTile(c *gin.Context) {
	q, err := rs.parseTileQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{Success: false, Message: err.Error()})
		return
	}

	logging.LogTileRequest(c.ClientIP(), q.req.Row, q.req.Col, q.req.FirstOctave, q.req.LastOctave, q.req.Side)

	res, err := rs.service.GenerateTile(c.Request.Context(), q.req)
	switch {
	case errors.Is(err, terrain.ErrInvalidRequest), errors.Is(err, terrain.ErrInsufficientGranularity):
		c.JSON(http.StatusBadRequest, GenericResponse{Success: false, Message: err.Error()})
		return
	case err != nil:
		c.Error(err)
		c.JSON(http.StatusInternalServerError, GenericResponse{Success: false, Message: "Ошибка генерации тайла"})
		return
	}

	elevations := res.Elevations(q.altitude)
	c.Header("X-Run-ID", res.RunID)
	c.Header("X-Rescale-Factor", strconv.FormatFloat(float64(res.Scale), 'f', 6, 32))

	if q.format == "asc" {
		c.Header("Content-Type", "text/plain; charset=utf-8")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=tile_%d_%d.asc", q.req.Row, q.req.Col))
		c.Status(http.StatusOK)
		cellSize := float64(rs.defaults.CellSize)
		if cellSize <= 0 {
			cellSize = dem.DefaultCellSize
		}
		if err := dem.Write(c.Writer, dem.NewHeader(res.Tile.Side(), cellSize), elevations); err != nil {
			c.Error(err)
		}
		return
	}

	c.JSON(http.StatusOK, TileResponse{
		RunID:       res.RunID,
		Row:         q.req.Row,
		Col:         q.req.Col,
		FirstOctave: q.req.FirstOctave,
		LastOctave:  q.req.LastOctave,
		Side:        q.req.Side,
		Octaves:     res.Octaves,
		Scale:       res.Scale,
		Cached:      res.Cached,
		Altitude:    q.altitude,
		Elevations:  elevations,
	})
}

// handleInvalidate удаляет тайл из хранилища на всех узлах
func (rs *RestServer) handleInvalidate(c *gin.Context) {
	q, err := rs.parseTileQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{Success: false, Message: err.Error()})
		return
	}

	err = rs.service.InvalidateTile(c.Request.Context(), q.req)
	switch {
	case errors.Is(err, terrain.ErrInvalidRequest), errors.Is(err, terrain.ErrInsufficientGranularity):
		c.JSON(http.StatusBadRequest, GenericResponse{Success: false, Message: err.Error()})
	case err != nil:
		c.Error(err)
		c.JSON(http.StatusInternalServerError, GenericResponse{Success: false, Message: "Ошибка инвалидации тайла"})
	default:
		c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Тайл инвалидирован"})
	}
}

// handleRuns возвращает последние запуски генерации
func (rs *RestServer) handleRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 1000 {
		c.JSON(http.StatusBadRequest, GenericResponse{Success: false, Message: "limit должен быть от 1 до 1000"})
		return
	}

	recent, err := rs.service.RecentRuns(c.Request.Context(), limit)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, GenericResponse{Success: false, Message: "Журнал запусков недоступен"})
		return
	}
	if recent == nil {
		recent = []runs.Run{}
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Последние запуски",
		Data:    recent,
	})
}

// handleServerInfo возвращает параметры генератора и метрики процесса
func (rs *RestServer) handleServerInfo(c *gin.Context) {
	cpuTime, _ := rs.metrics.GetCPUTime()

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Информация о сервере",
		Data: map[string]interface{}{
			"version":      Version,
			"seed":         rs.service.Seed(),
			"omega":        rs.service.Omega(),
			"tile_side":    rs.defaults.TileSide,
			"first_octave": rs.defaults.FirstOctave,
			"last_octave":  rs.defaults.LastOctave,
			"altitude":     rs.defaults.Altitude,
			"uptime":       rs.metrics.GetUptime(),
			"memory_mb":    fmt.Sprintf("%.1f", rs.metrics.GetMemoryUsage()),
			"cpu_time":     cpuTime.String(),
			"memory":       rs.metrics.GetDetailedMemoryStats(),
		},
	})
}

// handleHealth проверка состояния сервера
func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": rs.metrics.GetUptime(),
		"time":   time.Now().Unix(),
	})
}

// Start запускает REST сервер; возвращает http.ErrServerClosed после Stop
func (rs *RestServer) Start() error {
	logging.Info("REST API слушает %s", rs.port)
	return rs.httpSrv.ListenAndServe()
}

// Stop корректно останавливает сервер
func (rs *RestServer) Stop(ctx context.Context) error {
	return rs.httpSrv.Shutdown(ctx)
}
