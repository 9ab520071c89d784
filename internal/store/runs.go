package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/rigidify/internal/rigidify"
	"github.com/banshee-data/rigidify/internal/timeutil"
)

// ErrRunNotFound is returned by Get for an unknown run ID.
var ErrRunNotFound = errors.New("rigidify run not found")

// Run is a persisted rigidification.
type Run struct {
	RunID      string    `json:"run_id"`
	SourceID   string    `json:"source_id"`
	Name       string    `json:"name"`
	PointCount int       `json:"point_count"`
	FreeCount  int       `json:"free_count"`
	GroupCount int       `json:"group_count"`
	IndexPairs []int     `json:"index_pairs,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	Bodies     []RunBody `json:"bodies,omitempty"`
}

// RunBody is one persisted rigid body: its frame in x, y, z, qx, qy, qz, qw
// layout and its global indices.
type RunBody struct {
	Ordinal int        `json:"ordinal"`
	Frame   [7]float64 `json:"frame"`
	Indices []int      `json:"indices"`
}

// RunStore persists rigidify runs.
type RunStore struct {
	db    *sql.DB
	clock timeutil.Clock
}

// NewRunStore creates a RunStore over a migrated database.
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db, clock: timeutil.RealClock{}}
}

// WithClock sets the clock used for created_at and returns s.
func (s *RunStore) WithClock(c timeutil.Clock) *RunStore {
	s.clock = c
	return s
}

// Insert stores d as a new run and returns its generated ID.
func (s *RunStore) Insert(d *rigidify.Descriptor) (string, error) {
	return s.insert(d, false)
}

// InsertRigidified stores d and marks its source as rigidified in the same
// transaction. If the source is already marked nothing is written and the
// error wraps rigidify.ErrAlreadyRigidified.
func (s *RunStore) InsertRigidified(d *rigidify.Descriptor) (string, error) {
	return s.insert(d, true)
}

func (s *RunStore) insert(d *rigidify.Descriptor, mark bool) (string, error) {
	if d == nil {
		return "", fmt.Errorf("insert rigidify run: nil descriptor")
	}
	pairs, err := json.Marshal(d.IndexPairs)
	if err != nil {
		return "", fmt.Errorf("marshal index pairs: %w", err)
	}

	runID := uuid.New().String()
	now := s.clock.Now().UnixNano()
	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if mark {
		if err := markRigidified(tx, d.SourceID, now); err != nil {
			return "", err
		}
	}

	_, err = tx.Exec(`
		INSERT INTO rigidify_runs (
			run_id, source_id, name, point_count, free_count, group_count,
			index_pairs, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, d.SourceID, d.Name, d.PointCount, len(d.FreePositions), len(d.RigidBodies),
		string(pairs), now,
	)
	if err != nil {
		return "", fmt.Errorf("insert rigidify run: %w", err)
	}

	for _, rb := range d.RigidBodies {
		idx, err := json.Marshal([]int(rb.Indices))
		if err != nil {
			return "", fmt.Errorf("marshal indices: %w", err)
		}
		f := rb.Frame.Rigid3()
		_, err = tx.Exec(`
			INSERT INTO rigid_bodies (
				run_id, ordinal, px, py, pz, qx, qy, qz, qw, indices
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, rb.Ordinal, f[0], f[1], f[2], f[3], f[4], f[5], f[6], string(idx),
		)
		if err != nil {
			return "", fmt.Errorf("insert rigid body %d: %w", rb.Ordinal, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit rigidify run: %w", err)
	}
	return runID, nil
}

// Get loads a run with its bodies and index pairs.
func (s *RunStore) Get(runID string) (*Run, error) {
	var (
		r       Run
		pairs   string
		created int64
	)
	err := s.db.QueryRow(`
		SELECT run_id, source_id, name, point_count, free_count, group_count,
		       index_pairs, created_at
		FROM rigidify_runs WHERE run_id = ?`, runID,
	).Scan(&r.RunID, &r.SourceID, &r.Name, &r.PointCount, &r.FreeCount, &r.GroupCount, &pairs, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("get rigidify run: %w", err)
	}
	r.CreatedAt = time.Unix(0, created)
	if err := json.Unmarshal([]byte(pairs), &r.IndexPairs); err != nil {
		return nil, fmt.Errorf("decode index pairs: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT ordinal, px, py, pz, qx, qy, qz, qw, indices
		FROM rigid_bodies WHERE run_id = ? ORDER BY ordinal`, runID)
	if err != nil {
		return nil, fmt.Errorf("query rigid bodies: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			b   RunBody
			idx string
		)
		f := &b.Frame
		if err := rows.Scan(&b.Ordinal, &f[0], &f[1], &f[2], &f[3], &f[4], &f[5], &f[6], &idx); err != nil {
			return nil, fmt.Errorf("scan rigid body: %w", err)
		}
		if err := json.Unmarshal([]byte(idx), &b.Indices); err != nil {
			return nil, fmt.Errorf("decode indices: %w", err)
		}
		r.Bodies = append(r.Bodies, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rigid bodies: %w", err)
	}
	return &r, nil
}

// List returns run summaries, newest first, optionally filtered by source.
// Bodies and index pairs are not loaded.
func (s *RunStore) List(sourceID string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT run_id, source_id, name, point_count, free_count, group_count, created_at
		FROM rigidify_runs`
	args := []interface{}{}
	if sourceID != "" {
		query += ` WHERE source_id = ?`
		args = append(args, sourceID)
	}
	query += ` ORDER BY created_at DESC, run_id LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list rigidify runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r       Run
			created int64
		)
		if err := rows.Scan(&r.RunID, &r.SourceID, &r.Name, &r.PointCount, &r.FreeCount, &r.GroupCount, &created); err != nil {
			return nil, fmt.Errorf("scan rigidify run: %w", err)
		}
		r.CreatedAt = time.Unix(0, created)
		out = append(out, r)
	}
	return out, rows.Err()
}
