package store

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// sqliteMagic is the 16-byte header every well-formed image starts with.
var sqliteMagic = []byte("SQLite format 3\x00")

// Export serializes the full database image to bytes. VACUUM INTO writes a
// consistent snapshot even while the handle stays open; the read lock only
// keeps an image swap from pulling the handle away mid-copy.
func (d *DB) Export(ctx context.Context) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	tmp := filepath.Join(os.TempDir(), "ledger-export-"+uuid.New().String()+".db")
	defer os.Remove(tmp)

	if err := d.db.WithContext(ctx).Exec("VACUUM INTO ?", tmp).Error; err != nil {
		return nil, fmt.Errorf("vacuum into: %w", err)
	}
	data, err := os.ReadFile(tmp)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Import replaces the entire database image with data and reopens the
// handle. The current image is untouched when data is not a sqlite file.
// The write lock waits out in-flight transactions and flushes before the
// handle is swapped.
func (d *DB) Import(ctx context.Context, data []byte) error {
	if len(data) < len(sqliteMagic) || !bytes.Equal(data[:len(sqliteMagic)], sqliteMagic) {
		return fmt.Errorf("import: not a sqlite database image")
	}
	if d.cfg.Path == ":memory:" {
		return fmt.Errorf("import: in-memory store cannot be replaced")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil {
		return err
	}
	if err := writeFileAtomic(d.cfg.Path, data); err != nil {
		return err
	}

	db, err := openHandle(d.cfg)
	if err != nil {
		return err
	}
	d.db = db
	if err := d.verify(); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	return nil
}

// Flush writes the full image to the mirror path. Called after committed
// transactions; a failure here never unwinds the commit, the working image
// stays authoritative until the next attempt.
func (d *DB) Flush(ctx context.Context) error {
	if d.cfg.MirrorPath == "" {
		return nil
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	tmp := d.cfg.MirrorPath + ".tmp"
	_ = os.Remove(tmp) // VACUUM INTO refuses to overwrite

	if err := d.db.WithContext(ctx).Exec("VACUUM INTO ?", tmp).Error; err != nil {
		return fmt.Errorf("flush vacuum: %w", err)
	}
	if err := os.Rename(tmp, d.cfg.MirrorPath); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
