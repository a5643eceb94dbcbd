package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noteEntity struct {
	ID   int64  `gorm:"primaryKey;autoIncrement;column:id"`
	Body string `gorm:"column:body"`
}

func (noteEntity) TableName() string {
	return "notes"
}

func openTestDB(t *testing.T, cfg Config) *DB {
	t.Helper()

	db, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	require.NoError(t, db.Write(context.Background()).AutoMigrate(&noteEntity{}))
	return db
}

func countNotes(t *testing.T, db *DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Read(context.Background()).Model(&noteEntity{}).Count(&n).Error)
	return n
}

func TestWithinTransaction_Commit(t *testing.T) {
	db := openTestDB(t, Config{Path: ":memory:"})
	ctx := context.Background()

	err := db.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := db.Write(ctx).Create(&noteEntity{Body: "one"}).Error; err != nil {
			return err
		}
		return db.Write(ctx).Create(&noteEntity{Body: "two"}).Error
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), countNotes(t, db))
}

func TestWithinTransaction_RollbackOnError(t *testing.T) {
	db := openTestDB(t, Config{Path: ":memory:"})
	ctx := context.Background()

	boom := errors.New("boom")
	err := db.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := db.Write(ctx).Create(&noteEntity{Body: "doomed"}).Error; err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// nothing from the failed transaction is visible
	assert.Equal(t, int64(0), countNotes(t, db))
}

func TestExportImport_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	db := openTestDB(t, Config{Path: filepath.Join(dir, "ledger.db")})
	require.NoError(t, db.Write(ctx).Create(&noteEntity{Body: "keep me"}).Error)

	image, err := db.Export(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, image)

	// mutate after the export, then restore the image
	require.NoError(t, db.Write(ctx).Create(&noteEntity{Body: "transient"}).Error)
	require.Equal(t, int64(2), countNotes(t, db))

	require.NoError(t, db.Import(ctx, image))
	assert.Equal(t, int64(1), countNotes(t, db))
}

func TestImport_RejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	db := openTestDB(t, Config{Path: filepath.Join(dir, "ledger.db")})
	require.NoError(t, db.Write(ctx).Create(&noteEntity{Body: "survivor"}).Error)

	err := db.Import(ctx, []byte("definitely not a database"))
	require.Error(t, err)

	// the current image is untouched
	assert.Equal(t, int64(1), countNotes(t, db))
}

func TestImport_ConcurrentWithFlush(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	db := openTestDB(t, Config{
		Path:       filepath.Join(dir, "ledger.db"),
		MirrorPath: filepath.Join(dir, "ledger.mirror.db"),
	})
	require.NoError(t, db.Write(ctx).Create(&noteEntity{Body: "stable"}).Error)

	image, err := db.Export(ctx)
	require.NoError(t, err)

	// flushes and image swaps race for the handle; the lock serializes them
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 25; i++ {
			assert.NoError(t, db.Flush(ctx))
		}
	}()

	for i := 0; i < 10; i++ {
		require.NoError(t, db.Import(ctx, image))
	}
	<-done

	assert.Equal(t, int64(1), countNotes(t, db))
}

func TestFlush_WritesMirror(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	mirror := filepath.Join(dir, "ledger.mirror.db")
	db := openTestDB(t, Config{
		Path:       filepath.Join(dir, "ledger.db"),
		MirrorPath: mirror,
	})
	require.NoError(t, db.Write(ctx).Create(&noteEntity{Body: "durable"}).Error)

	require.NoError(t, db.Flush(ctx))

	info, err := os.Stat(mirror)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestOpen_RestoresFromMirror(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	path := filepath.Join(dir, "ledger.db")
	mirror := filepath.Join(dir, "ledger.mirror.db")

	db := openTestDB(t, Config{Path: path, MirrorPath: mirror})
	require.NoError(t, db.Write(ctx).Create(&noteEntity{Body: "from the mirror"}).Error)
	require.NoError(t, db.Flush(ctx))
	require.NoError(t, db.Close())

	// lose the working image, the mirror brings the data back
	require.NoError(t, os.Remove(path))

	restored, err := Open(Config{Path: path, MirrorPath: mirror})
	require.NoError(t, err)
	defer restored.Close()

	assert.Equal(t, int64(1), countNotes(t, restored))
}

func TestOpen_RecoversCorruptImage(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	path := filepath.Join(dir, "ledger.db")
	mirror := filepath.Join(dir, "ledger.mirror.db")

	db := openTestDB(t, Config{Path: path, MirrorPath: mirror})
	require.NoError(t, db.Write(ctx).Create(&noteEntity{Body: "safe copy"}).Error)
	require.NoError(t, db.Flush(ctx))
	require.NoError(t, db.Close())

	// stomp the working image with garbage that still looks like a file
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))

	recovered, err := Open(Config{Path: path, MirrorPath: mirror})
	require.NoError(t, err)
	defer recovered.Close()

	assert.Equal(t, int64(1), countNotes(t, recovered))
}
