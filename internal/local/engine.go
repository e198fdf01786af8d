package local

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	_ "modernc.org/sqlite"

	"github.com/forgo/travelog/api/internal/repository"
)

// Config holds local adapter settings.
type Config struct {
	// DataDir is where the durable snapshot slot lives.
	DataDir string
	// DebounceWindow overrides DefaultDebounceWindow when positive.
	DebounceWindow time.Duration
	// Fs is the filesystem for the snapshot slot. Defaults to the OS
	// filesystem; tests use afero.NewMemMapFs.
	Fs afero.Fs
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Store is the local adapter: the explicit engine handle implementing
// repository.Store. One Store owns one embedded engine for the session.
type Store struct {
	db     *sql.DB
	slot   *slotStore
	snaps  *snapshotter
	logger *slog.Logger
}

var _ repository.Store = (*Store)(nil)

// Open starts the embedded engine: restores a prior snapshot when one
// exists, otherwise initializes a fresh schema and persists an immediate
// first snapshot. The returned handle must be closed to flush the final
// snapshot.
func Open(cfg Config) (*Store, error) {
	fs := cfg.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		slot:   newSlotStore(fs, cfg.DataDir),
		logger: logger,
	}
	s.snaps = newSnapshotter(cfg.DebounceWindow, s.snapshot, logger)

	db, err := openEngine()
	if err != nil {
		return nil, err
	}
	s.db = db

	image, ok, err := s.slot.Get()
	if err != nil {
		return nil, err
	}
	if ok {
		if err := restore(db, image); err != nil {
			// A corrupt or incompatible snapshot must not brick the
			// client: fall back to a fresh engine.
			logger.Warn("snapshot restore failed, starting fresh",
				slog.String("error", err.Error()))
			_ = db.Close()
			if db, err = openEngine(); err != nil {
				return nil, err
			}
			s.db = db
			ok = false
		}
	}
	if !ok {
		if err := s.snapshot(); err != nil {
			logger.Warn("initial snapshot save failed", slog.String("error", err.Error()))
		}
	}
	return s, nil
}

// openEngine opens the in-memory engine on a single connection and applies
// the schema. One connection keeps the engine single-writer/single-reader
// and makes the foreign-key pragma stick.
func openEngine() (*sql.DB, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open engine: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open engine: %w", err)
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// conn returns the live engine or fails fast once the store is closed.
func (s *Store) conn() (*sql.DB, error) {
	if s.db == nil {
		return nil, repository.ErrNotInitialized
	}
	return s.db, nil
}

// mutated schedules a debounced snapshot. Called after every successful
// mutation; never blocks the caller on persistence.
func (s *Store) mutated() {
	s.snaps.Schedule()
}

// snapshot serializes the full engine state into the durable slot.
func (s *Store) snapshot() error {
	db := s.db
	if db == nil {
		return repository.ErrNotInitialized
	}
	image, err := serialize(db)
	if err != nil {
		return err
	}
	return s.slot.Put(image)
}

// serialize produces the engine's binary image via VACUUM INTO a scratch
// file. The scratch file always uses the OS temp dir; only the slot store
// goes through the configured filesystem.
func serialize(db *sql.DB) ([]byte, error) {
	scratch := filepath.Join(os.TempDir(), "travelog-snap-"+uuid.NewString()+".db")
	if _, err := db.Exec("VACUUM INTO ?", scratch); err != nil {
		return nil, fmt.Errorf("serialize engine: %w", err)
	}
	defer os.Remove(scratch)
	image, err := os.ReadFile(scratch)
	if err != nil {
		return nil, fmt.Errorf("serialize engine: %w", err)
	}
	return image, nil
}

// restore copies a snapshot image into the live engine by attaching it and
// replaying every table in dependency order.
func restore(db *sql.DB, image []byte) error {
	scratch := filepath.Join(os.TempDir(), "travelog-restore-"+uuid.NewString()+".db")
	if err := os.WriteFile(scratch, image, 0o600); err != nil {
		return fmt.Errorf("restore engine: %w", err)
	}
	defer os.Remove(scratch)

	if _, err := db.Exec("ATTACH DATABASE ? AS snap", scratch); err != nil {
		return fmt.Errorf("restore engine: attach: %w", err)
	}
	copyAll := func() error {
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		for _, table := range snapshotTables {
			stmt := fmt.Sprintf("INSERT INTO main.%s SELECT * FROM snap.%s", table, table)
			if _, err := tx.Exec(stmt); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("copy %s: %w", table, err)
			}
		}
		return tx.Commit()
	}
	copyErr := copyAll()
	if _, err := db.Exec("DETACH DATABASE snap"); err != nil && copyErr == nil {
		copyErr = fmt.Errorf("restore engine: detach: %w", err)
	}
	if copyErr != nil {
		return fmt.Errorf("restore engine: %w", copyErr)
	}
	return nil
}

// Members returns the member repository.
func (s *Store) Members() repository.MemberRepository { return &memberRepo{s: s} }

// Places returns the place repository.
func (s *Store) Places() repository.PlaceRepository { return &placeRepo{s: s} }

// Reviews returns the review repository.
func (s *Store) Reviews() repository.ReviewRepository { return &reviewRepo{s: s} }

// Posts returns the post repository.
func (s *Store) Posts() repository.PostRepository { return &postRepo{s: s} }

// Wishlists returns the wishlist repository.
func (s *Store) Wishlists() repository.WishlistRepository { return &wishlistRepo{s: s} }

// Checkpoint persists a snapshot immediately, superseding any pending
// debounced save.
func (s *Store) Checkpoint() error {
	if s.db == nil {
		return repository.ErrNotInitialized
	}
	return s.snaps.Flush()
}

// ResetSnapshot clears the durable slot. The next Open starts from an empty
// engine unless a later snapshot replaces it.
func (s *Store) ResetSnapshot() error {
	return s.slot.Reset()
}

// Ping reports whether the engine is open and responsive.
func (s *Store) Ping(ctx context.Context) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

// Close flushes a final snapshot and shuts the engine down. Further
// operations fail with repository.ErrNotInitialized.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	if err := s.snaps.Flush(); err != nil {
		s.logger.Warn("final snapshot save failed", slog.String("error", err.Error()))
	}
	s.snaps.Stop()
	err := s.db.Close()
	s.db = nil
	return err
}
