package storage

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/lad94220/ML-Lab1/pkg/common"
	"github.com/lad94220/ML-Lab1/pkg/logging"

	_ "modernc.org/sqlite"
)

// Grouping columns accepted by AverageBy.
const (
	GroupCut     = "cut"
	GroupColor   = "color"
	GroupClarity = "clarity"
)

type Backend interface {
	BatchWrite(rows []common.Diamond) error
	Count() (int, error)
	AverageBy(column string) (map[int]float64, error)
	Close()
	Truncate() error
}

type SQLiteBackend struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteBackend opens (or creates) the diamonds table at path. ":memory:"
// keeps the table in process memory.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// every pooled connection to ":memory:" would get its own empty database
	db.SetMaxOpenConns(1)

	query := `
	CREATE TABLE IF NOT EXISTS diamonds (
		id      INTEGER PRIMARY KEY AUTOINCREMENT,
		carat   REAL    NOT NULL,
		cut     INTEGER NOT NULL,
		color   INTEGER NOT NULL,
		clarity INTEGER NOT NULL,
		price   REAL    NOT NULL
	);`
	if _, err := db.Exec(query); err != nil {
		db.Close()
		return nil, fmt.Errorf("init diamonds table: %w", err)
	}

	if path != ":memory:" {
		if _, err := db.Exec(`
			PRAGMA journal_mode = WAL;
			PRAGMA synchronous = NORMAL;
		`); err != nil {
			logging.Warn().Err(err).Msg("failed to set sqlite pragmas")
		}
	}

	return &SQLiteBackend{db: db}, nil
}

func (s *SQLiteBackend) BatchWrite(rows []common.Diamond) error {
	if len(rows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare("INSERT INTO diamonds (carat, cut, color, clarity, price) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, d := range rows {
		if _, err := stmt.Exec(d.Carat, d.Cut, d.Color, d.Clarity, d.Price); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteBackend) Count() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM diamonds").Scan(&n)
	return n, err
}

// AverageBy returns the mean price keyed by the rank in column.
func (s *SQLiteBackend) AverageBy(column string) (map[int]float64, error) {
	switch column {
	case GroupCut, GroupColor, GroupClarity:
	default:
		return nil, fmt.Errorf("storage: cannot group by %q", column)
	}

	rows, err := s.db.Query("SELECT " + column + ", AVG(price) FROM diamonds GROUP BY " + column)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int]float64)
	for rows.Next() {
		var rank int
		var avg float64
		if err := rows.Scan(&rank, &avg); err != nil {
			return nil, err
		}
		out[rank] = avg
	}
	return out, rows.Err()
}

func (s *SQLiteBackend) Truncate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec("DELETE FROM diamonds")
	return err
}

func (s *SQLiteBackend) Close() {
	s.db.Close()
}
