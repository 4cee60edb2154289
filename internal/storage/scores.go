package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// ScoreEntry is one finished episode: a human game or a policy replay.
type ScoreEntry struct {
	ID        int64
	EnvID     string
	PolicyID  int64 // 0 for human play
	Score     int
	CreatedAt time.Time
}

// SaveScore records a score. policyID 0 means no policy (human play).
// Returns the ID of the inserted record.
func (s *Store) SaveScore(envID string, policyID int64, score int) (int64, error) {
	var pid sql.NullInt64
	if policyID > 0 {
		pid = sql.NullInt64{Int64: policyID, Valid: true}
	}

	result, err := s.db.Exec(
		"INSERT INTO scores (env_id, policy_id, score) VALUES (?, ?, ?)",
		envID, pid, score,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save score: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// TopScores retrieves the top N scores for the given environment.
// Results are ordered by score descending.
func (s *Store) TopScores(envID string, limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, env_id, policy_id, score, created_at
		 FROM scores
		 WHERE env_id = ?
		 ORDER BY score DESC, id ASC
		 LIMIT ?`,
		envID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		var pid sql.NullInt64
		var createdAt any
		if err := rows.Scan(&e.ID, &e.EnvID, &pid, &e.Score, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		if pid.Valid {
			e.PolicyID = pid.Int64
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// HighScore returns the highest score for the given environment.
// Returns 0 if no scores exist.
func (s *Store) HighScore(envID string) (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(score) FROM scores WHERE env_id = ?",
		envID,
	).Scan(&score)

	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}

	if !score.Valid {
		return 0, nil
	}

	return int(score.Int64), nil
}

// ClearScores deletes all scores for the given environment.
func (s *Store) ClearScores(envID string) error {
	_, err := s.db.Exec("DELETE FROM scores WHERE env_id = ?", envID)
	if err != nil {
		return fmt.Errorf("storage: cannot clear scores: %w", err)
	}
	return nil
}

// ScoreStats contains aggregated statistics for an environment.
type ScoreStats struct {
	EnvID      string
	Episodes   int
	HighScore  int
	AvgScore   float64
	LastPlayed time.Time
}

// Stats retrieves aggregated score statistics for an environment.
func (s *Store) Stats(envID string) (*ScoreStats, error) {
	stats := &ScoreStats{EnvID: envID}

	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(AVG(score), 0), MAX(created_at)
		 FROM scores WHERE env_id = ?`,
		envID,
	).Scan(&stats.Episodes, &stats.HighScore, &stats.AvgScore, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)

	return stats, nil
}
