package store

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/nimasrn/retail-ledger/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type txContextKey string

const txKey txContextKey = "trx"

// Config describes where the database image lives on the device.
// Path is the working image; MirrorPath is the durable copy rewritten
// after every committed transaction.
type Config struct {
	Path       string `env:"PATH"`
	MirrorPath string `env:"MIRROR_PATH"`
	Debug      bool   `env:"DEBUG"`
}

// DB is the process-wide store handle. It is created once at startup and
// shared by every repository; sqlite serializes the single writer behind it.
// Import swaps the gorm handle, so the field is guarded: readers take the
// read side (transactions and flushes hold it for their whole duration),
// the swap takes the write side and therefore waits them out.
type DB struct {
	mu  sync.RWMutex
	db  *gorm.DB
	cfg Config
}

func Open(cfg Config) (*DB, error) {
	if cfg.Path == "" {
		cfg.Path = ":memory:"
	}

	if err := restoreFromMirror(cfg); err != nil {
		return nil, err
	}

	db, err := openHandle(cfg)
	if err != nil {
		if cfg.Path == ":memory:" {
			return nil, err
		}
		// A file that will not even open gets the same treatment as one
		// that fails verification.
		logger.Warn("store image failed to open", "path", cfg.Path, "error", err)
		return recoverCorrupt(cfg)
	}

	d := &DB{db: db, cfg: cfg}
	if err := d.verify(); err != nil {
		logger.Warn("store image failed verification", "path", cfg.Path, "error", err)
		_ = d.Close()
		d, err = recoverCorrupt(cfg)
		if err != nil {
			return nil, err
		}
	}
	return d, nil
}

func openHandle(cfg Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{}
	if !cfg.Debug {
		gcfg.Logger = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), gcfg)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", cfg.Path, err)
	}
	if cfg.Debug {
		db = db.Debug()
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// One connection keeps the single-writer model honest and keeps an
	// in-memory database from evaporating between pooled connections.
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, err
	}
	return db, nil
}

// restoreFromMirror copies the mirror image over the working path when the
// working image is absent. Fresh installs have neither and fall through.
func restoreFromMirror(cfg Config) error {
	if cfg.Path == ":memory:" || cfg.MirrorPath == "" {
		return nil
	}
	if _, err := os.Stat(cfg.Path); err == nil {
		return nil
	}
	data, err := os.ReadFile(cfg.MirrorPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	logger.Info("restoring database image from mirror", "mirror", cfg.MirrorPath)
	return writeFileAtomic(cfg.Path, data)
}

func recoverCorrupt(cfg Config) (*DB, error) {
	if cfg.Path == ":memory:" {
		return nil, fmt.Errorf("in-memory store failed verification")
	}

	// Keep the bad image around for forensics.
	_ = os.Rename(cfg.Path, cfg.Path+".corrupt")

	if cfg.MirrorPath != "" {
		if data, err := os.ReadFile(cfg.MirrorPath); err == nil {
			if err := writeFileAtomic(cfg.Path, data); err != nil {
				return nil, err
			}
			db, err := openHandle(cfg)
			if err == nil {
				d := &DB{db: db, cfg: cfg}
				if d.verify() == nil {
					logger.Info("recovered database image from mirror", "mirror", cfg.MirrorPath)
					return d, nil
				}
				_ = d.Close()
			}
			_ = os.Remove(cfg.Path)
		}
	}

	logger.Warn("starting with a fresh database image", "path", cfg.Path)
	db, err := openHandle(cfg)
	if err != nil {
		return nil, err
	}
	return &DB{db: db, cfg: cfg}, nil
}

func (d *DB) verify() error {
	var result string
	if err := d.db.Raw("PRAGMA quick_check").Scan(&result).Error; err != nil {
		return err
	}
	if result != "ok" {
		return fmt.Errorf("quick_check: %s", result)
	}
	return nil
}

// handle returns the current gorm handle under the read lock. Callers
// that must not interleave with an image swap hold the lock themselves.
func (d *DB) handle() *gorm.DB {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.db
}

// WithinTransaction runs fn inside a single transaction. The transaction
// rides the context, so every repository call made with that context joins
// it; any error returned by fn rolls the whole transaction back. The read
// lock is held until commit or rollback, keeping image swaps out.
func (d *DB) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ctx = context.WithValue(ctx, txKey, tx)
		return fn(ctx)
	})
}

func (d *DB) Write(ctx context.Context) *gorm.DB {
	tx, ok := ctx.Value(txKey).(*gorm.DB)
	if ok {
		return tx
	}
	return d.handle().WithContext(ctx)
}

func (d *DB) Read(ctx context.Context) *gorm.DB {
	tx, ok := ctx.Value(txKey).(*gorm.DB)
	if ok {
		return tx
	}
	return d.handle().WithContext(ctx)
}

func (d *DB) Close() error {
	sqlDB, err := d.handle().DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
