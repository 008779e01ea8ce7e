package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	_ "modernc.org/sqlite" // driver: sqlite

	"github.com/eatprep/cbt-player/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS question_sets (
  id             TEXT PRIMARY KEY,
  questions_json TEXT NOT NULL,
  created_at     INTEGER NOT NULL
);
`

// OpenSQLite opens (or creates) the embedded question database and
// ensures the schema exists.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return db, nil
}

// SQLiteQuestionRepository serves question sets from an embedded
// SQLite database. Each set is stored as one row with its questions
// as a JSON document, preserving order.
type SQLiteQuestionRepository struct {
	db *sql.DB
}

// NewSQLiteQuestionRepository creates a repository over an open DB.
func NewSQLiteQuestionRepository(db *sql.DB) *SQLiteQuestionRepository {
	return &SQLiteQuestionRepository{db: db}
}

// ListAvailableSets summarizes every stored set, sorted by ID.
func (r *SQLiteQuestionRepository) ListAvailableSets(ctx context.Context) ([]model.SetInfo, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, questions_json FROM question_sets`)
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}
	defer rows.Close()

	var infos []model.SetInfo
	for rows.Next() {
		var id, qjson string
		if err := rows.Scan(&id, &qjson); err != nil {
			return nil, err
		}
		var questions []model.Question
		if err := json.Unmarshal([]byte(qjson), &questions); err != nil {
			return nil, fmt.Errorf("parse set %q: %w", id, err)
		}
		infos = append(infos, setInfo(id, questions))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}

// LoadQuestionSet returns the ordered questions of one stored set.
func (r *SQLiteQuestionRepository) LoadQuestionSet(ctx context.Context, id string) ([]model.Question, error) {
	var qjson string
	err := r.db.QueryRowContext(ctx,
		`SELECT questions_json FROM question_sets WHERE id = ?`, id,
	).Scan(&qjson)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrSetNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load set %q: %w", id, err)
	}

	var questions []model.Question
	if err := json.Unmarshal([]byte(qjson), &questions); err != nil {
		return nil, fmt.Errorf("parse set %q: %w", id, err)
	}
	if err := ValidateSet(id, questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// ImportSet validates and stores (or replaces) a set. Used by the
// seeding CLI to load JSON set files into the database.
func (r *SQLiteQuestionRepository) ImportSet(ctx context.Context, id string, questions []model.Question) error {
	if err := ValidateSet(id, questions); err != nil {
		return err
	}
	qjson, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("marshal set %q: %w", id, err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO question_sets (id, questions_json, created_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET questions_json = EXCLUDED.questions_json`,
		id, string(qjson), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("store set %q: %w", id, err)
	}
	return nil
}
