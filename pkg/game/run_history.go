package game

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Outcome 一局战斗的结果
type Outcome int

const (
	// OutcomeNone 战斗仍在进行
	OutcomeNone Outcome = iota
	// OutcomeVictory 所有波次发完且场上无敌方数据包
	OutcomeVictory
	// OutcomeDefeat 玩家生命值耗尽
	OutcomeDefeat
)

// String 返回结果名称(同时作为数据库中的存储值)
func (o Outcome) String() string {
	switch o {
	case OutcomeVictory:
		return "victory"
	case OutcomeDefeat:
		return "defeat"
	default:
		return "none"
	}
}

func parseOutcome(s string) Outcome {
	switch s {
	case "victory":
		return OutcomeVictory
	case "defeat":
		return OutcomeDefeat
	default:
		return OutcomeNone
	}
}

// RunRecord 一局已结束战斗的记录
type RunRecord struct {
	ID           string
	LevelID      string
	Outcome      Outcome
	Duration     float64 // 秒
	HealthLeft   int
	CurrencyLeft int
	Kills        int
	FinishedAt   time.Time
}

// finishedAtLayout 定宽时间格式,字符串排序即时间排序
const finishedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RunHistory 基于 SQLite 的战绩记录
// 只在战斗结束时写入一次,不在模拟循环中访问
type RunHistory struct {
	db *sql.DB
}

// OpenRunHistory 打开(必要时创建)战绩数据库
// 参数:
//
//	path - 数据库文件路径;":memory:" 表示内存数据库
func OpenRunHistory(path string) (*RunHistory, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initRunPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initRunSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &RunHistory{db: db}, nil
}

func initRunPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func initRunSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			level_id TEXT NOT NULL,
			outcome TEXT NOT NULL,
			duration_s REAL NOT NULL,
			health_left INTEGER NOT NULL,
			currency_left INTEGER NOT NULL,
			kills INTEGER NOT NULL,
			finished_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS runs_level_idx ON runs(level_id, outcome);`,
		`CREATE INDEX IF NOT EXISTS runs_finished_idx ON runs(finished_at);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Record 写入一条记录
// ID 为空时生成新的 UUID,FinishedAt 为零值时使用当前时间
// 返回: 实际写入的记录
func (h *RunHistory) Record(ctx context.Context, r RunRecord) (RunRecord, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now()
	}
	r.FinishedAt = r.FinishedAt.UTC()

	_, err := h.db.ExecContext(ctx,
		`INSERT INTO runs(id,level_id,outcome,duration_s,health_left,currency_left,kills,finished_at) VALUES(?,?,?,?,?,?,?,?)`,
		r.ID, r.LevelID, r.Outcome.String(), r.Duration, r.HealthLeft, r.CurrencyLeft, r.Kills,
		r.FinishedAt.Format(finishedAtLayout),
	)
	if err != nil {
		return r, fmt.Errorf("insert run: %w", err)
	}
	log.Printf("[RunHistory] Recorded %s run on %s (%.1fs, health %d)", r.Outcome, r.LevelID, r.Duration, r.HealthLeft)
	return r, nil
}

// Best 返回某关卡的最佳胜利记录(剩余生命最高,其次用时最短)
// 没有胜利记录时返回 ok=false
func (h *RunHistory) Best(ctx context.Context, levelID string) (RunRecord, bool, error) {
	row := h.db.QueryRowContext(ctx,
		`SELECT id,level_id,outcome,duration_s,health_left,currency_left,kills,finished_at FROM runs
		 WHERE level_id=? AND outcome=? ORDER BY health_left DESC, duration_s ASC LIMIT 1`,
		levelID, OutcomeVictory.String())
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, false, nil
	}
	if err != nil {
		return RunRecord{}, false, err
	}
	return r, true, nil
}

// Recent 返回最近 n 条记录,按结束时间倒序
func (h *RunHistory) Recent(ctx context.Context, n int) ([]RunRecord, error) {
	if n <= 0 {
		n = 20
	}
	rows, err := h.db.QueryContext(ctx,
		`SELECT id,level_id,outcome,duration_s,health_left,currency_left,kills,finished_at FROM runs
		 ORDER BY finished_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close 关闭数据库
func (h *RunHistory) Close() error {
	if h == nil || h.db == nil {
		return nil
	}
	return h.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(s rowScanner) (RunRecord, error) {
	var r RunRecord
	var outcome, finished string
	if err := s.Scan(&r.ID, &r.LevelID, &outcome, &r.Duration, &r.HealthLeft, &r.CurrencyLeft, &r.Kills, &finished); err != nil {
		return RunRecord{}, err
	}
	r.Outcome = parseOutcome(outcome)
	t, err := time.Parse(finishedAtLayout, finished)
	if err != nil {
		return RunRecord{}, fmt.Errorf("parse finished_at %q: %w", finished, err)
	}
	r.FinishedAt = t
	return r, nil
}
