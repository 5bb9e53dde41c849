package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MrSavageBanana/Study-Assistant/internal/annotation"
	"github.com/MrSavageBanana/Study-Assistant/internal/graph"

	_ "github.com/mattn/go-sqlite3"
)

const snapshotTimeLayout = "2006-01-02 15:04:05"

type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS pairs (
			pair_id TEXT PRIMARY KEY,
			name TEXT,
			description TEXT,
			pdf1_path TEXT,
			pdf2_path TEXT,
			created_at TEXT,
			updated_at TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS selections (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			selection_id TEXT NOT NULL,
			pair_id TEXT NOT NULL,
			side TEXT NOT NULL,
			page INTEGER,
			x REAL,
			y REAL,
			width REAL,
			height REAL,
			state TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS links (
			question_id TEXT PRIMARY KEY,
			answer_id TEXT,
			stem_id TEXT,
			is_stem INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			taken_at TEXT,
			pairs INTEGER,
			selections INTEGER,
			links INTEGER
		);`,
		`CREATE INDEX IF NOT EXISTS idx_selections_id ON selections(selection_id);`,
		`CREATE INDEX IF NOT EXISTS idx_selections_pair ON selections(pair_id);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// SaveSnapshot replaces pairs, selections and links with snap. Rows absent
// from snap are removed; a failure rolls everything back.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"pairs", "selections", "links"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	pairStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pairs (pair_id, name, description, pdf1_path, pdf2_path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer pairStmt.Close()

	for _, p := range snap.Pairs {
		if _, err := pairStmt.ExecContext(ctx, p.PairID, p.Name, p.Description, p.PDF1Path, p.PDF2Path, p.CreatedAt, p.UpdatedAt); err != nil {
			return fmt.Errorf("failed to save pair %s: %w", p.PairID, err)
		}
	}

	selStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO selections (selection_id, pair_id, side, page, x, y, width, height, state)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer selStmt.Close()

	for _, r := range snap.Selections {
		if _, err := selStmt.ExecContext(ctx, r.SelectionID, r.PairID, string(r.Side), r.Page, r.X, r.Y, r.Width, r.Height, string(r.State)); err != nil {
			return fmt.Errorf("failed to save selection %s: %w", r.SelectionID, err)
		}
	}

	linkStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO links (question_id, answer_id, stem_id, is_stem) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer linkStmt.Close()

	for _, l := range snap.Links {
		if _, err := linkStmt.ExecContext(ctx, l.QuestionID, nullable(l.AnswerID), nullable(l.StemID), l.IsStem); err != nil {
			return fmt.Errorf("failed to save link %s: %w", l.QuestionID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO snapshots (taken_at, pairs, selections, links) VALUES (?, ?, ?, ?)",
		s.now().Format(snapshotTimeLayout), len(snap.Pairs), len(snap.Selections), len(snap.Links),
	); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStore) LoadSnapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}

	rows, err := s.db.QueryContext(ctx, "SELECT pair_id, name, description, pdf1_path, pdf2_path, created_at, updated_at FROM pairs ORDER BY pair_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query pairs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p PairRow
		if err := rows.Scan(&p.PairID, &p.Name, &p.Description, &p.PDF1Path, &p.PDF2Path, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pair: %w", err)
		}
		snap.Pairs = append(snap.Pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	snap.Selections, err = s.querySelections(ctx, "")
	if err != nil {
		return nil, err
	}

	linkRows, err := s.db.QueryContext(ctx, "SELECT question_id, answer_id, stem_id, is_stem FROM links ORDER BY question_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer linkRows.Close()

	for linkRows.Next() {
		var l LinkRow
		var answer, stem sql.NullString
		if err := linkRows.Scan(&l.QuestionID, &answer, &stem, &l.IsStem); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		l.AnswerID = answer.String
		l.StemID = stem.String
		snap.Links = append(snap.Links, l)
	}
	return snap, linkRows.Err()
}

func (s *SQLiteStore) GetSelection(ctx context.Context, id string) (*SelectionRow, error) {
	row := s.db.QueryRowContext(ctx, selectSelections+" WHERE selection_id = ? ORDER BY seq LIMIT 1", id)

	var r SelectionRow
	if err := scanSelection(row, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *SQLiteStore) FindSelectionsByPair(ctx context.Context, pairID string) ([]SelectionRow, error) {
	return s.querySelections(ctx, pairID)
}

func (s *SQLiteStore) History(ctx context.Context) ([]SnapshotInfo, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, taken_at, pairs, selections, links FROM snapshots ORDER BY id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		if err := rows.Scan(&info.ID, &info.TakenAt, &info.Pairs, &info.Selections, &info.Links); err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

const selectSelections = "SELECT selection_id, pair_id, side, page, x, y, width, height, state FROM selections"

type scanner interface {
	Scan(dest ...any) error
}

func scanSelection(sc scanner, r *SelectionRow) error {
	var side, state string
	if err := sc.Scan(&r.SelectionID, &r.PairID, &side, &r.Page, &r.X, &r.Y, &r.Width, &r.Height, &state); err != nil {
		return err
	}
	r.Side = annotation.Side(side)
	r.State = graph.LinkState(state)
	return nil
}

// querySelections returns selections in insertion order, optionally
// restricted to one pair.
func (s *SQLiteStore) querySelections(ctx context.Context, pairID string) ([]SelectionRow, error) {
	query := selectSelections
	var args []any
	if pairID != "" {
		query += " WHERE pair_id = ?"
		args = append(args, pairID)
	}
	query += " ORDER BY seq"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query selections: %w", err)
	}
	defer rows.Close()

	var out []SelectionRow
	for rows.Next() {
		var r SelectionRow
		if err := scanSelection(rows, &r); err != nil {
			return nil, fmt.Errorf("failed to scan selection: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
