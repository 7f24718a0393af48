package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/okian/duelo/internal/domain/model"
	"github.com/okian/duelo/internal/domain/rating"
)

const defaultBusyTimeout = 5 * time.Second

const schema = `
CREATE TABLE IF NOT EXISTS files (
    id     INTEGER PRIMARY KEY,
    path   TEXT UNIQUE NOT NULL,
    elo    REAL NOT NULL DEFAULT 1000,
    wins   INTEGER NOT NULL DEFAULT 0,
    losses INTEGER NOT NULL DEFAULT 0,
    ties   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS games (
    id        INTEGER PRIMARY KEY,
    file_a_id INTEGER NOT NULL,
    file_b_id INTEGER NOT NULL,
    result    TEXT NOT NULL,
    timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (file_a_id) REFERENCES files(id),
    FOREIGN KEY (file_b_id) REFERENCES files(id)
);

CREATE TABLE IF NOT EXISTS knockout_state (
    file_id       INTEGER PRIMARY KEY,
    eliminated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (file_id) REFERENCES files(id)
);

CREATE TABLE IF NOT EXISTS knockout_pool (
    file_id INTEGER PRIMARY KEY,
    run_id  TEXT NOT NULL,
    FOREIGN KEY (file_id) REFERENCES files(id)
);
`

// SQLiteStore implements Store on a single SQLite database file kept next
// to the ranked files. SQLite's transactional guarantees provide the
// atomicity the engine requires; no additional locking is layered on top.
type SQLiteStore struct {
	db          *sql.DB
	busyTimeout time.Duration
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(path string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{busyTimeout: defaultBusyTimeout}
	for _, opt := range opts {
		opt(s)
	}

	dsn := fmt.Sprintf("%s?_busy_timeout=%d&_foreign_keys=on", path, s.busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	s.db = db
	return s, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Upsert inserts a new entrant with the default rating; existing paths are
// left untouched.
func (s *SQLiteStore) Upsert(ctx context.Context, path string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO files (path, elo) VALUES (?, ?)`,
		path, rating.DefaultElo)
	return err
}

// Entrant returns the entrant by id.
func (s *SQLiteStore) Entrant(ctx context.Context, id int64) (model.Entrant, error) {
	var e model.Entrant
	err := s.db.QueryRowContext(ctx,
		`SELECT id, path, elo, wins, losses, ties FROM files WHERE id = ?`, id).
		Scan(&e.ID, &e.Path, &e.Elo, &e.Wins, &e.Losses, &e.Ties)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Entrant{}, fmt.Errorf("entrant %d: %w", id, ErrUnknownEntrant)
	}
	return e, err
}

// Entrants lists all entrants passing the keep filter.
func (s *SQLiteStore) Entrants(ctx context.Context, keep func(model.Entrant) bool) ([]model.Entrant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, path, elo, wins, losses, ties FROM files ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Entrant
	for rows.Next() {
		var e model.Entrant
		if err := rows.Scan(&e.ID, &e.Path, &e.Elo, &e.Wins, &e.Losses, &e.Ties); err != nil {
			return nil, err
		}
		if keep == nil || keep(e) {
			out = append(out, e)
		}
	}
	return out, rows.Err()
}

// counterColumn maps a base result to the counter each side increments.
func counterColumn(result model.Result) (colA, colB string) {
	switch result {
	case model.ResultA:
		return "wins", "losses"
	case model.ResultB:
		return "losses", "wins"
	default:
		return "ties", "ties"
	}
}

// ApplyBout writes both rating rows and the game record in one transaction.
func (s *SQLiteStore) ApplyBout(ctx context.Context, idA, idB int64, newEloA, newEloB float64, result model.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	colA, colB := counterColumn(result)

	// Column names come from counterColumn, never from input.
	resA, err := tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE files SET elo = ?, %s = %s + 1 WHERE id = ?`, colA, colA),
		newEloA, idA)
	if err != nil {
		return err
	}
	resB, err := tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE files SET elo = ?, %s = %s + 1 WHERE id = ?`, colB, colB),
		newEloB, idB)
	if err != nil {
		return err
	}

	for _, res := range []sql.Result{resA, resB} {
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("bout %d vs %d: %w", idA, idB, ErrUnknownEntrant)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO games (file_a_id, file_b_id, result) VALUES (?, ?, ?)`,
		idA, idB, string(result)); err != nil {
		return err
	}

	return tx.Commit()
}

// MarkEliminated records an elimination mark, ignoring duplicates.
func (s *SQLiteStore) MarkEliminated(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO knockout_state (file_id) VALUES (?)`, id)
	return err
}

// Eliminations returns all elimination marks.
func (s *SQLiteStore) Eliminations(ctx context.Context) (map[int64]time.Time, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT file_id, eliminated_at FROM knockout_state`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	marks := make(map[int64]time.Time)
	for rows.Next() {
		var id int64
		var at time.Time
		if err := rows.Scan(&id, &at); err != nil {
			return nil, err
		}
		marks[id] = at
	}
	return marks, rows.Err()
}

// ClearEliminations removes every elimination mark.
func (s *SQLiteStore) ClearEliminations(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM knockout_state`)
	return err
}

// SavePool replaces the persisted pool with the given membership.
func (s *SQLiteStore) SavePool(ctx context.Context, runID string, ids []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM knockout_pool`); err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO knockout_pool (file_id, run_id) VALUES (?, ?)`, id, runID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadPool returns the persisted pool or ErrNoPool.
func (s *SQLiteStore) LoadPool(ctx context.Context) (*model.Pool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT file_id, run_id FROM knockout_pool`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pool := &model.Pool{Members: make(map[int64]struct{})}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id, &pool.RunID); err != nil {
			return nil, err
		}
		pool.Members[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(pool.Members) == 0 {
		return nil, ErrNoPool
	}
	return pool, nil
}

// ClearPool removes the persisted pool.
func (s *SQLiteStore) ClearPool(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM knockout_pool`)
	return err
}

// Remove deletes the entrant, its game history, and its elimination mark in
// one transaction. Pool membership is left alone: the pool is immutable
// until reset and eligibility filtering hides the gone member.
func (s *SQLiteStore) Remove(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM knockout_state WHERE file_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM games WHERE file_a_id = ? OR file_b_id = ?`, id, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("remove %d: %w", id, ErrUnknownEntrant)
	}
	return tx.Commit()
}

// ShiftRatings adds share to every entrant except excludeID.
func (s *SQLiteStore) ShiftRatings(ctx context.Context, share float64, excludeID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE files SET elo = elo + ? WHERE id != ?`, share, excludeID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Rankings returns rank positions keyed by entrant id.
func (s *SQLiteStore) Rankings(ctx context.Context) (map[int64]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM files ORDER BY elo DESC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ranks := make(map[int64]int)
	pos := 0
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		pos++
		ranks[id] = pos
	}
	return ranks, rows.Err()
}

// KnockoutResults returns every entrant in winner ordering.
func (s *SQLiteStore) KnockoutResults(ctx context.Context) ([]KnockoutRow, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT f.id, f.path, f.elo, f.wins, f.losses, f.ties, k.eliminated_at
          FROM files f
          LEFT JOIN knockout_state k ON f.id = k.file_id
         ORDER BY
             CASE WHEN k.eliminated_at IS NULL THEN 0 ELSE 1 END,
             k.eliminated_at DESC,
             f.elo DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []KnockoutRow
	for rows.Next() {
		var r KnockoutRow
		var at sql.NullTime
		if err := rows.Scan(&r.Entrant.ID, &r.Entrant.Path, &r.Entrant.Elo,
			&r.Entrant.Wins, &r.Entrant.Losses, &r.Entrant.Ties, &at); err != nil {
			return nil, err
		}
		if at.Valid {
			t := at.Time
			r.EliminatedAt = &t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Rename changes an entrant's display identifier.
func (s *SQLiteStore) Rename(ctx context.Context, oldPath, newPath string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE files SET path = ? WHERE path = ?`, newPath, oldPath)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("rename %q: %w", oldPath, ErrUnknownEntrant)
	}
	return nil
}

// Count returns the number of entrants tracked.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&n)
	return n, err
}
