// Package migration applies the embedded SQL migrations with golang-migrate.
package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

// State is the schema version recorded in schema_migrations
type State struct {
	Version uint
	Dirty   bool
}

// Empty reports whether no migration has been applied yet
func (s State) Empty() bool { return s.Version == 0 && !s.Dirty }

func (s State) String() string {
	switch {
	case s.Empty():
		return "none"
	case s.Dirty:
		return fmt.Sprintf("%06d (dirty)", s.Version)
	default:
		return fmt.Sprintf("%06d", s.Version)
	}
}

// Migrator runs the letter schema migrations against one postgres database.
// Closing it also closes the *sql.DB it was built from.
type Migrator struct {
	m      *migrate.Migrate
	logger *zap.Logger
}

// New builds a migrator over the migrations in fsys, usually migrations.FS
func New(db *sql.DB, fsys fs.FS, logger *zap.Logger) (*Migrator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	src, err := iofs.New(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("open migration source: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return &Migrator{m: m, logger: logger}, nil
}

// Up applies every pending migration
func (m *Migrator) Up() (State, error) {
	return m.apply("up", m.m.Up)
}

// Down rolls every migration back
func (m *Migrator) Down() (State, error) {
	return m.apply("down", m.m.Down)
}

// Steps moves n migrations forward, or back when n is negative
func (m *Migrator) Steps(n int) (State, error) {
	if n == 0 {
		return m.State()
	}
	return m.apply(fmt.Sprintf("step %+d", n), func() error { return m.m.Steps(n) })
}

// Force records version as applied and clean without running anything. It is
// the way out of a dirty state after a failed migration was fixed by hand.
func (m *Migrator) Force(version int) (State, error) {
	m.logger.Warn("Forcing schema version", zap.Int("version", version))
	return m.apply("force", func() error { return m.m.Force(version) })
}

// State reads the current schema version
func (m *Migrator) State() (State, error) {
	version, dirty, err := m.m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return State{}, nil
	case err != nil:
		return State{}, fmt.Errorf("read schema version: %w", err)
	}
	return State{Version: version, Dirty: dirty}, nil
}

// Close releases the source and the database
func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	return errors.Join(srcErr, dbErr)
}

func (m *Migrator) apply(op string, run func() error) (State, error) {
	before, err := m.State()
	if err != nil {
		return State{}, err
	}
	if before.Dirty && op != "force" {
		return before, fmt.Errorf("migrate %s: schema is dirty at %s, repair it and force a version", op, before)
	}

	err = run()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return before, fmt.Errorf("migrate %s: %w", op, err)
	}

	after, stateErr := m.State()
	if stateErr != nil {
		return before, stateErr
	}
	if after == before {
		m.logger.Info("Schema already current", zap.String("op", op), zap.Stringer("version", after))
	} else {
		m.logger.Info("Schema migrated",
			zap.String("op", op),
			zap.Stringer("from", before),
			zap.Stringer("to", after),
		)
	}
	return after, nil
}
