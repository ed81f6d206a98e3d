package config

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/signalsfoundry/omnivox/model"
)

// BodiesSchema creates the body table read by LoadBodiesSQL. Orbit columns
// are NULL for root bodies.
const BodiesSchema = `CREATE TABLE IF NOT EXISTS bodies (
	id                   TEXT PRIMARY KEY,
	name                 TEXT NOT NULL DEFAULT '',
	mass_kg              REAL NOT NULL DEFAULT 0,
	radius_m             REAL NOT NULL DEFAULT 0,
	luminosity_w         REAL NOT NULL DEFAULT 0,
	rotation_period_s    REAL NOT NULL DEFAULT 0,
	rotation_phase_deg   REAL NOT NULL DEFAULT 0,
	tilt_deg             REAL NOT NULL DEFAULT 0,
	tilt_orientation_deg REAL NOT NULL DEFAULT 0,
	parent               TEXT,
	semi_major_axis_m    REAL,
	period_s             REAL,
	inclination_deg      REAL,
	phase_deg            REAL,
	ascending_node_deg   REAL
)`

const bodyColumns = `id, name, mass_kg, radius_m, luminosity_w, rotation_period_s,
	rotation_phase_deg, tilt_deg, tilt_orientation_deg, parent, semi_major_axis_m,
	period_s, inclination_deg, phase_deg, ascending_node_deg`

// OpenBodiesDB opens a SQLite database holding a bodies table, creating the
// table when absent.
func OpenBodiesDB(ctx context.Context, path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("bodies db path is required")
	}
	db, err := sql.Open("sqlite", filepath.Clean(path)+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, BodiesSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bodies table: %w", err)
	}
	return db, nil
}

// LoadBodiesSQL reads every row of the bodies table, ordered by id.
func LoadBodiesSQL(ctx context.Context, db *sql.DB) ([]model.BodyDefinition, error) {
	rows, err := db.QueryContext(ctx, "SELECT "+bodyColumns+" FROM bodies ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query bodies: %w", err)
	}
	defer rows.Close()

	var out []model.BodyDefinition
	for rows.Next() {
		var (
			b                            model.BodyDefinition
			parent                       sql.NullString
			axis, period, incl, ph, node sql.NullFloat64
		)
		if err := rows.Scan(&b.ID, &b.Name, &b.Mass, &b.Radius, &b.Luminosity,
			&b.RotationPeriod, &b.RotationPhase, &b.TiltMagnitude, &b.TiltOrientation,
			&parent, &axis, &period, &incl, &ph, &node); err != nil {
			return nil, fmt.Errorf("scan body: %w", err)
		}
		if parent.Valid && parent.String != "" {
			b.Orbit = &model.OrbitDefinition{
				Parent:        parent.String,
				SemiMajorAxis: axis.Float64,
				Period:        period.Float64,
				Inclination:   incl.Float64,
				Phase:         ph.Float64,
				AscendingNode: node.Float64,
			}
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bodies: %w", err)
	}
	return out, nil
}

// SaveBodiesSQL upserts bodies in a single transaction.
func SaveBodiesSQL(ctx context.Context, db *sql.DB, bodies []model.BodyDefinition) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, "INSERT OR REPLACE INTO bodies ("+bodyColumns+
		") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range bodies {
		var (
			parent                       sql.NullString
			axis, period, incl, ph, node sql.NullFloat64
		)
		if o := b.Orbit; o != nil {
			parent = sql.NullString{String: o.Parent, Valid: true}
			axis = sql.NullFloat64{Float64: o.SemiMajorAxis, Valid: true}
			period = sql.NullFloat64{Float64: o.Period, Valid: true}
			incl = sql.NullFloat64{Float64: o.Inclination, Valid: true}
			ph = sql.NullFloat64{Float64: o.Phase, Valid: true}
			node = sql.NullFloat64{Float64: o.AscendingNode, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, b.ID, b.Name, b.Mass, b.Radius, b.Luminosity,
			b.RotationPeriod, b.RotationPhase, b.TiltMagnitude, b.TiltOrientation,
			parent, axis, period, incl, ph, node); err != nil {
			return fmt.Errorf("insert body %q: %w", b.ID, err)
		}
	}
	return tx.Commit()
}
