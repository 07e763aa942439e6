package sink

import (
	"database/sql"
	"embed"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/LdDl/motion-features/motion"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store keeps feature vectors and finalized trajectories in a sqlite database
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// StoredVector is a feature vector read back from Store
type StoredVector struct {
	Frame  int
	Values []float64
}

// TrajectoryRecord is a finalized trajectory read back from Store
type TrajectoryRecord struct {
	ID         string
	FirstFrame int
	LastFrame  int
	Samples    int
	Valid      bool
	Scale      float64
	Stats      motion.Stats
}

// Open opens (creating if needed) sqlite database at path and applies pending migrations
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't open database %s", path)
	}
	// Pragmas are per connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "Can't enable foreign keys")
	}
	store := &Store{
		db:     db,
		logger: logger,
	}
	if err := store.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (store *Store) migrateUp() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return errors.Wrap(err, "Can't read embedded migrations")
	}
	driver, err := sqlite.WithInstance(store.db, &sqlite.Config{})
	if err != nil {
		return errors.Wrap(err, "Can't create sqlite migration driver")
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return errors.Wrap(err, "Can't create migrate instance")
	}
	m.Log = &migrateLogger{logger: store.logger}
	// m is not closed: that would close the shared connection
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "Migration up failed")
	}
	return nil
}

// migrateLogger implements migrate.Logger on top of slog
type migrateLogger struct {
	logger *slog.Logger
}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	l.logger.Debug("migrate", "message", strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *migrateLogger) Verbose() bool {
	return false
}

// Write stores a feature vector emitted on frame
func (store *Store) Write(frame int, row []float64) error {
	tx, err := store.db.Begin()
	if err != nil {
		return errors.Wrap(err, "Can't begin transaction")
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO feature_vectors (frame, width) VALUES (?, ?)`, frame, len(row))
	if err != nil {
		return errors.Wrap(err, "Can't insert feature vector")
	}
	vectorID, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "Can't get feature vector id")
	}
	stmt, err := tx.Prepare(`INSERT INTO feature_values (vector_id, idx, value) VALUES (?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "Can't prepare feature values insert")
	}
	defer stmt.Close()
	for idx, value := range row {
		if _, err := stmt.Exec(vectorID, idx, value); err != nil {
			return errors.Wrapf(err, "Can't insert feature value %d", idx)
		}
	}
	return errors.Wrap(tx.Commit(), "Can't commit feature vector")
}

// SaveTrajectory stores finalized trajectory with its statistics
func (store *Store) SaveTrajectory(traj *motion.Trajectory, valid bool) error {
	samples := traj.Samples()
	st := traj.Stats()
	_, err := store.db.Exec(`
		INSERT OR REPLACE INTO trajectories (
			trajectory_id, first_frame, last_frame, samples, valid, scale,
			velocity_long, velocity_lat, accel_long, accel_lat, curvature, direction, length
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		traj.ID().String(), samples[0].Frame, samples[len(samples)-1].Frame, len(samples), valid, traj.Scale(),
		st.VelocityLong, st.VelocityLat, st.AccelLong, st.AccelLat, st.Curvature, st.Direction, st.Length,
	)
	return errors.Wrapf(err, "Can't save trajectory %s", traj.ID())
}

// Features returns stored feature vectors in insertion order
func (store *Store) Features() ([]StoredVector, error) {
	rows, err := store.db.Query(`
		SELECT v.vector_id, v.frame, fv.value
		FROM feature_vectors v
		JOIN feature_values fv ON fv.vector_id = v.vector_id
		ORDER BY v.vector_id, fv.idx`)
	if err != nil {
		return nil, errors.Wrap(err, "Can't query feature vectors")
	}
	defer rows.Close()

	var out []StoredVector
	lastID := int64(-1)
	for rows.Next() {
		var vectorID int64
		var frame int
		var value float64
		if err := rows.Scan(&vectorID, &frame, &value); err != nil {
			return nil, errors.Wrap(err, "Can't scan feature value")
		}
		if vectorID != lastID {
			out = append(out, StoredVector{Frame: frame})
			lastID = vectorID
		}
		out[len(out)-1].Values = append(out[len(out)-1].Values, value)
	}
	return out, errors.Wrap(rows.Err(), "Can't iterate feature values")
}

// Trajectories returns stored trajectories ordered by last frame
func (store *Store) Trajectories() ([]TrajectoryRecord, error) {
	rows, err := store.db.Query(`
		SELECT trajectory_id, first_frame, last_frame, samples, valid, scale,
			velocity_long, velocity_lat, accel_long, accel_lat, curvature, direction, length
		FROM trajectories
		ORDER BY last_frame, trajectory_id`)
	if err != nil {
		return nil, errors.Wrap(err, "Can't query trajectories")
	}
	defer rows.Close()

	var out []TrajectoryRecord
	for rows.Next() {
		rec := TrajectoryRecord{}
		err := rows.Scan(
			&rec.ID, &rec.FirstFrame, &rec.LastFrame, &rec.Samples, &rec.Valid, &rec.Scale,
			&rec.Stats.VelocityLong, &rec.Stats.VelocityLat, &rec.Stats.AccelLong, &rec.Stats.AccelLat,
			&rec.Stats.Curvature, &rec.Stats.Direction, &rec.Stats.Length,
		)
		if err != nil {
			return nil, errors.Wrap(err, "Can't scan trajectory")
		}
		out = append(out, rec)
	}
	return out, errors.Wrap(rows.Err(), "Can't iterate trajectories")
}

// Close closes database
func (store *Store) Close() error {
	return store.db.Close()
}
