package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrPolicyNotFound is returned when no stored policy matches.
var ErrPolicyNotFound = errors.New("storage: policy not found")

// PolicyEntry is a trained policy and how it was found.
type PolicyEntry struct {
	ID        int64
	EnvID     string
	Weights   []float64
	Reward    float64
	Seed      int64
	Restarts  int
	CreatedAt time.Time
}

// SavePolicy stores a trained policy. Returns the ID of the inserted record.
func (s *Store) SavePolicy(p PolicyEntry) (int64, error) {
	if len(p.Weights) == 0 {
		return 0, errors.New("storage: cannot save policy without weights")
	}
	weights, err := json.Marshal(p.Weights)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot encode weights: %w", err)
	}

	result, err := s.db.Exec(
		`INSERT INTO policies (env_id, weights, reward, seed, restarts)
		 VALUES (?, ?, ?, ?, ?)`,
		p.EnvID, string(weights), p.Reward, p.Seed, p.Restarts,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save policy: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

const policyColumns = `id, env_id, weights, reward, seed, restarts, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPolicy(row rowScanner) (PolicyEntry, error) {
	var p PolicyEntry
	var weights string
	var createdAt any
	if err := row.Scan(&p.ID, &p.EnvID, &weights, &p.Reward, &p.Seed, &p.Restarts, &createdAt); err != nil {
		return p, err
	}
	if err := json.Unmarshal([]byte(weights), &p.Weights); err != nil {
		return p, fmt.Errorf("storage: policy %d has corrupt weights: %w", p.ID, err)
	}
	p.CreatedAt = parseTime(createdAt)
	return p, nil
}

// PolicyByID retrieves a policy by its ID.
func (s *Store) PolicyByID(id int64) (PolicyEntry, error) {
	p, err := scanPolicy(s.db.QueryRow(
		`SELECT `+policyColumns+` FROM policies WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return p, fmt.Errorf("%w: id %d", ErrPolicyNotFound, id)
	}
	if err != nil {
		return p, fmt.Errorf("storage: cannot query policy: %w", err)
	}
	return p, nil
}

// BestPolicy returns the highest-reward policy for the environment.
// Ties go to the most recent one.
func (s *Store) BestPolicy(envID string) (PolicyEntry, error) {
	p, err := scanPolicy(s.db.QueryRow(
		`SELECT `+policyColumns+`
		 FROM policies
		 WHERE env_id = ?
		 ORDER BY reward DESC, id DESC
		 LIMIT 1`,
		envID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return p, fmt.Errorf("%w: no policies for %s", ErrPolicyNotFound, envID)
	}
	if err != nil {
		return p, fmt.Errorf("storage: cannot query best policy: %w", err)
	}
	return p, nil
}

// TopPolicies retrieves the top N policies by reward.
func (s *Store) TopPolicies(envID string, limit int) ([]PolicyEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT `+policyColumns+`
		 FROM policies
		 WHERE env_id = ?
		 ORDER BY reward DESC, id DESC
		 LIMIT ?`,
		envID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query policies: %w", err)
	}
	defer rows.Close()

	var entries []PolicyEntry
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		entries = append(entries, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}
