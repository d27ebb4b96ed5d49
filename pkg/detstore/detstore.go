package detstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/trackpoint"
)

// SQLite archive of recognized points, one row per point
type DB struct {
	*sql.DB
}

type Row struct {
	Run    uuid.UUID
	Frame  uint64
	Time   time.Time
	Method string
	Point  trackpoint.ExportedPoint
}

func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("Can't open detection store %s: %w", path, err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS frames (
			run TEXT NOT NULL,
			frame BIGINT NOT NULL,
			captured_ns BIGINT NOT NULL,
			method TEXT NOT NULL,
			points INTEGER NOT NULL,
			PRIMARY KEY (run, frame)
		);
		CREATE TABLE IF NOT EXISTS points (
			run TEXT NOT NULL,
			frame BIGINT NOT NULL,
			x DOUBLE NOT NULL,
			y DOUBLE NOT NULL,
			quality INTEGER NOT NULL,
			color_x DOUBLE,
			color_y DOUBLE,
			color TEXT,
			marker_id INTEGER,
			FOREIGN KEY(run, frame) REFERENCES frames(run, frame)
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("Can't create detection tables: %w", err)
	}
	return &DB{db}, nil
}

// Stores all points of one frame in a single transaction
func (db *DB) RecordFrame(ctx context.Context, run uuid.UUID, frame uint64, t time.Time, method string, points []trackpoint.TrackPoint) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO frames (run, frame, captured_ns, method, points) VALUES (?, ?, ?, ?, ?)",
		run.String(), int64(frame), t.UnixNano(), method, len(points)); err != nil {
		return fmt.Errorf("Can't record frame %d: %w", frame, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO points (run, frame, x, y, quality, color_x, color_y, color, marker_id) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range trackpoint.ExportAll(points) {
		var cx, cy sql.NullFloat64
		if p.ColorX != nil && p.ColorY != nil {
			cx = sql.NullFloat64{Float64: *p.ColorX, Valid: true}
			cy = sql.NullFloat64{Float64: *p.ColorY, Valid: true}
		}
		col := sql.NullString{String: p.Color, Valid: p.Color != ""}
		var id sql.NullInt64
		if p.MarkerID != nil {
			id = sql.NullInt64{Int64: int64(*p.MarkerID), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, run.String(), int64(frame), p.X, p.Y, p.Quality, cx, cy, col, id); err != nil {
			return fmt.Errorf("Can't record point of frame %d: %w", frame, err)
		}
	}
	return tx.Commit()
}

// Points of one frame in insertion order
func (db *DB) Points(ctx context.Context, run uuid.UUID, frame uint64) ([]Row, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT f.captured_ns, f.method, p.x, p.y, p.quality, p.color_x, p.color_y, p.color, p.marker_id
		FROM points p JOIN frames f ON f.run = p.run AND f.frame = p.frame
		WHERE p.run = ? AND p.frame = ?
		ORDER BY p.rowid`, run.String(), int64(frame))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Row
	for rows.Next() {
		r := Row{Run: run, Frame: frame}
		var cx, cy sql.NullFloat64
		var col sql.NullString
		var id sql.NullInt64
		var captured int64
		if err := rows.Scan(&captured, &r.Method, &r.Point.X, &r.Point.Y, &r.Point.Quality, &cx, &cy, &col, &id); err != nil {
			return nil, err
		}
		if cx.Valid && cy.Valid {
			r.Point.ColorX, r.Point.ColorY = &cx.Float64, &cy.Float64
		}
		r.Time = time.Unix(0, captured).UTC()
		r.Point.Color = col.String
		if id.Valid {
			v := int(id.Int64)
			r.Point.MarkerID = &v
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// Number of recorded frames of a run
func (db *DB) Frames(ctx context.Context, run uuid.UUID) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM frames WHERE run = ?", run.String()).Scan(&n)
	return n, err
}
