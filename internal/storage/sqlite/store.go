package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"

	"pedalboard/internal/models"
	"pedalboard/internal/pedals"
)

// Store wraps access to the SQLite database and exposes high level helpers.
type Store struct {
	db     *sql.DB
	now    func() time.Time
	logger *slog.Logger
}

// Option customises a Store.
type Option func(*Store)

// WithClock replaces time.Now as the source of timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open initializes a new SQLite store and runs the required migrations.
func Open(dsn string, logger *slog.Logger, opts ...Option) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty database dsn")
	}

	if logger == nil {
		logger = slog.Default()
	}

	if err := ensureDir(dsn); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite3", withPragmas(dsn))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// One connection keeps a shared-cache memory database alive and
	// serialises writers.
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	s := &Store{db: conn, now: time.Now, logger: logger.With("component", "sqlite-store")}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the database resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func withPragmas(dsn string) string {
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_busy_timeout=5000&_foreign_keys=ON"
}

func ensureDir(dsn string) error {
	path, _, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
	if path == ":memory:" || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS pedalboards (
            seq INTEGER PRIMARY KEY AUTOINCREMENT,
            id TEXT NOT NULL UNIQUE,
            name TEXT NOT NULL,
            description TEXT,
            favorite INTEGER NOT NULL DEFAULT 0,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS pedals (
            pedalboard_id TEXT NOT NULL,
            id TEXT NOT NULL,
            name TEXT NOT NULL,
            brand TEXT NOT NULL,
            type TEXT NOT NULL,
            position INTEGER NOT NULL,
            notes TEXT,
            settings TEXT NOT NULL DEFAULT '{}',
            PRIMARY KEY(pedalboard_id, id),
            FOREIGN KEY(pedalboard_id) REFERENCES pedalboards(id) ON DELETE CASCADE
        );`,
		`CREATE INDEX IF NOT EXISTS idx_pedals_board_position ON pedals(pedalboard_id, position);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

const boardColumns = `id, name, description, favorite, created_at, updated_at`

const pedalColumns = `pedalboard_id, id, name, brand, type, position, notes, settings`

// List retrieves all pedalboards in insertion order.
func (s *Store) List(ctx context.Context) ([]models.Pedalboard, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+boardColumns+` FROM pedalboards ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("list pedalboards: %w", err)
	}
	defer rows.Close()

	boards := []models.Pedalboard{}
	byID := map[string]int{}
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		byID[b.ID] = len(boards)
		boards = append(boards, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	prow, err := s.db.QueryContext(ctx, `SELECT `+pedalColumns+` FROM pedals ORDER BY pedalboard_id, position`)
	if err != nil {
		return nil, fmt.Errorf("list pedals: %w", err)
	}
	defer prow.Close()

	for prow.Next() {
		boardID, p, err := scanPedal(prow)
		if err != nil {
			return nil, err
		}
		if idx, ok := byID[boardID]; ok {
			boards[idx].Pedals = append(boards[idx].Pedals, p)
		}
	}
	return boards, prow.Err()
}

// Get fetches a single pedalboard with its pedals.
func (s *Store) Get(ctx context.Context, id string) (models.Pedalboard, error) {
	b, err := scanBoard(s.db.QueryRowContext(ctx, `SELECT `+boardColumns+` FROM pedalboards WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Pedalboard{}, models.PedalboardNotFound(id)
	}
	if err != nil {
		return models.Pedalboard{}, fmt.Errorf("get pedalboard: %w", err)
	}

	b.Pedals, err = queryPedals(ctx, s.db, id)
	if err != nil {
		return models.Pedalboard{}, err
	}
	return b, nil
}

// Create persists a new pedalboard together with any supplied pedals.
func (s *Store) Create(ctx context.Context, in models.CreatePedalboardInput) (models.Pedalboard, error) {
	if err := in.Validate(); err != nil {
		return models.Pedalboard{}, err
	}

	seq := models.NormalizePedals(in.Pedals)
	pedals.Renumber(seq)
	pedals.AssertPositions(seq)

	id := models.NewID()
	now := s.now()

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO pedalboards(id, name, description, favorite, created_at, updated_at) VALUES(?, ?, ?, 0, ?, ?)`,
			id, strings.TrimSpace(in.Name), nullString(models.TrimOrNil(in.Description)), now, now)
		if err != nil {
			return fmt.Errorf("insert pedalboard: %w", err)
		}
		return insertPedals(ctx, tx, id, seq)
	})
	if err != nil {
		return models.Pedalboard{}, err
	}

	s.logger.InfoContext(ctx, "pedalboard created",
		slog.String("pedalboard_id", id),
		slog.Int("pedals", len(seq)),
	)
	return s.Get(ctx, id)
}

// Update renames a pedalboard and/or changes its description.
func (s *Store) Update(ctx context.Context, id string, in models.UpdatePedalboardInput) (models.Pedalboard, error) {
	if err := in.Validate(); err != nil {
		return models.Pedalboard{}, err
	}

	sets := []string{"updated_at = ?"}
	args := []any{s.now()}
	if in.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, strings.TrimSpace(*in.Name))
	}
	if in.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, nullString(models.TrimOrNil(in.Description)))
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, `UPDATE pedalboards SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return models.Pedalboard{}, fmt.Errorf("update pedalboard: %w", err)
	}
	if err := expectAffected(res, id); err != nil {
		return models.Pedalboard{}, err
	}

	s.logger.InfoContext(ctx, "pedalboard updated", slog.String("pedalboard_id", id))
	return s.Get(ctx, id)
}

// Delete removes a pedalboard along with its pedals.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM pedalboards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete pedalboard: %w", err)
	}
	if err := expectAffected(res, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "pedalboard deleted", slog.String("pedalboard_id", id))
	return nil
}

// ToggleFavorite flips the favorite flag.
func (s *Store) ToggleFavorite(ctx context.Context, id string) (models.Pedalboard, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE pedalboards SET favorite = NOT favorite, updated_at = ? WHERE id = ?`, s.now(), id)
	if err != nil {
		return models.Pedalboard{}, fmt.Errorf("toggle favorite: %w", err)
	}
	if err := expectAffected(res, id); err != nil {
		return models.Pedalboard{}, err
	}

	b, err := s.Get(ctx, id)
	if err != nil {
		return models.Pedalboard{}, err
	}
	s.logger.InfoContext(ctx, "pedalboard favorite toggled",
		slog.String("pedalboard_id", id),
		slog.Bool("favorite", b.Favorite),
	)
	return b, nil
}

// SetPedals replaces the pedal sequence in one transaction. Positions are
// rewritten from sequence order whatever the caller supplied.
func (s *Store) SetPedals(ctx context.Context, id string, seq []models.Pedal) (models.Pedalboard, error) {
	return s.EditPedals(ctx, id, pedals.Replace(seq))
}

// EditPedals reads the board's pedals, applies edit and writes the result
// back inside one transaction. An unknown board is reported before edit runs.
func (s *Store) EditPedals(ctx context.Context, id string, edit pedals.Edit) (models.Pedalboard, error) {
	var count int
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE pedalboards SET updated_at = ? WHERE id = ?`, s.now(), id)
		if err != nil {
			return fmt.Errorf("touch pedalboard: %w", err)
		}
		if err := expectAffected(res, id); err != nil {
			return err
		}

		current, err := queryPedals(ctx, tx, id)
		if err != nil {
			return err
		}
		seq, err := edit(current)
		if err != nil {
			return err
		}
		if err := models.ValidatePedals(seq); err != nil {
			return err
		}

		normalized := models.NormalizePedals(seq)
		pedals.Renumber(normalized)
		pedals.AssertPositions(normalized)
		count = len(normalized)

		if _, err := tx.ExecContext(ctx, `DELETE FROM pedals WHERE pedalboard_id = ?`, id); err != nil {
			return fmt.Errorf("clear pedals: %w", err)
		}
		return insertPedals(ctx, tx, id, normalized)
	})
	if err != nil {
		return models.Pedalboard{}, err
	}

	s.logger.InfoContext(ctx, "pedalboard pedals replaced",
		slog.String("pedalboard_id", id),
		slog.Int("pedals", count),
	)
	return s.Get(ctx, id)
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func insertPedals(ctx context.Context, tx *sql.Tx, boardID string, seq []models.Pedal) error {
	for _, p := range seq {
		settings, err := json.Marshal(p.Settings)
		if err != nil {
			return fmt.Errorf("encode settings: %w", err)
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO pedals(`+pedalColumns+`) VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
			boardID, p.ID, p.Name, p.Brand, string(p.Type), p.Position, nullString(p.Notes), string(settings))
		if err != nil {
			return fmt.Errorf("insert pedal: %w", err)
		}
	}
	return nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryPedals(ctx context.Context, q querier, boardID string) ([]models.Pedal, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+pedalColumns+` FROM pedals WHERE pedalboard_id = ? ORDER BY position`, boardID)
	if err != nil {
		return nil, fmt.Errorf("list pedals: %w", err)
	}
	defer rows.Close()

	seq := []models.Pedal{}
	for rows.Next() {
		_, p, err := scanPedal(rows)
		if err != nil {
			return nil, err
		}
		seq = append(seq, p)
	}
	return seq, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBoard(row scanner) (models.Pedalboard, error) {
	var (
		b    models.Pedalboard
		desc sql.NullString
	)
	if err := row.Scan(&b.ID, &b.Name, &desc, &b.Favorite, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return b, err
		}
		return b, fmt.Errorf("scan pedalboard: %w", err)
	}
	if desc.Valid {
		b.Description = &desc.String
	}
	b.Pedals = []models.Pedal{}
	return b, nil
}

func scanPedal(row scanner) (string, models.Pedal, error) {
	var (
		boardID  string
		p        models.Pedal
		notes    sql.NullString
		settings string
	)
	if err := row.Scan(&boardID, &p.ID, &p.Name, &p.Brand, &p.Type, &p.Position, &notes, &settings); err != nil {
		return "", p, fmt.Errorf("scan pedal: %w", err)
	}
	if notes.Valid {
		p.Notes = &notes.String
	}
	if err := json.Unmarshal([]byte(settings), &p.Settings); err != nil {
		return "", p, fmt.Errorf("decode settings: %w", err)
	}
	p.Settings = p.Settings.Clone()
	return boardID, p, nil
}

func expectAffected(res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.PedalboardNotFound(id)
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
