package runs

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MariaRepo реализует Repository для MariaDB/MySQL.
// Использует таблицу terrain_runs.
type MariaRepo struct {
	db *sql.DB
}

// NewMariaRepo подключается к базе и создаёт таблицу, если её нет.
//
// Параметры:
//
//	dsn - строка подключения (user:pass@tcp(host:port)/dbname?parseTime=true)
func NewMariaRepo(dsn string) (*MariaRepo, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к MariaDB: %w", err)
	}

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось проверить соединение с MariaDB: %w", err)
	}

	repo := &MariaRepo{db: db}
	if err := repo.createTable(); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось создать таблицу: %w", err)
	}

	return repo, nil
}

func (r *MariaRepo) createTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS terrain_runs (
			run_id       CHAR(36)    PRIMARY KEY,
			seed         INT UNSIGNED NOT NULL,
			omega        FLOAT       NOT NULL,
			tile_row     INT         NOT NULL,
			tile_col     INT         NOT NULL,
			first_octave INT         NOT NULL,
			last_octave  INT         NOT NULL,
			side         INT         NOT NULL,
			octaves      INT         NOT NULL,
			scale        FLOAT       NOT NULL,
			cached       BOOLEAN     NOT NULL DEFAULT FALSE,
			wall_time_ns BIGINT      NOT NULL,
			cpu_time_ns  BIGINT      NOT NULL,
			created_at   DATETIME(6) NOT NULL,
			INDEX idx_created_at (created_at)
		) ENGINE=InnoDB
	`

	if _, err := r.db.Exec(query); err != nil {
		return fmt.Errorf("ошибка создания таблицы terrain_runs: %w", err)
	}
	return nil
}

// Record сохраняет запись о запуске.
func (r *MariaRepo) Record(ctx context.Context, run *Run) error {
	if err := run.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO terrain_runs
			(run_id, seed, omega, tile_row, tile_col, first_octave, last_octave,
			 side, octaves, scale, cached, wall_time_ns, cpu_time_ns, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.Seed, run.Omega, run.Row, run.Col, run.FirstOctave, run.LastOctave,
		run.Side, run.Octaves, run.Scale, run.Cached,
		run.WallTime.Nanoseconds(), run.CPUTime.Nanoseconds(), run.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка сохранения запуска %s: %w", run.ID, err)
	}
	return nil
}

// Recent возвращает последние записи.
func (r *MariaRepo) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT run_id, seed, omega, tile_row, tile_col, first_octave, last_octave,
		       side, octaves, scale, cached, wall_time_ns, cpu_time_ns, created_at
		FROM terrain_runs
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения журнала запусков: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var run Run
		var wall, cpu int64
		err := rows.Scan(&run.ID, &run.Seed, &run.Omega, &run.Row, &run.Col,
			&run.FirstOctave, &run.LastOctave, &run.Side, &run.Octaves, &run.Scale,
			&run.Cached, &wall, &cpu, &run.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("ошибка разбора записи: %w", err)
		}
		run.WallTime = time.Duration(wall)
		run.CPUTime = time.Duration(cpu)
		out = append(out, run)
	}
	return out, rows.Err()
}

// Close закрывает соединение с базой данных.
func (r *MariaRepo) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
