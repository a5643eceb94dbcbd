package repository

import (
	"context"
	"testing"

	"github.com/nimasrn/retail-ledger/pkg/store"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *store.DB {
	t.Helper()

	db, err := store.Open(store.Config{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	err = db.Write(context.Background()).AutoMigrate(
		&ProductEntity{},
		&OrderEntity{},
		&ProductSnapshotEntity{},
		&ProductOrderEntity{},
		&BorrowerEntity{},
		&OrderSnapshotEntity{},
		&OrderSnapshotProductEntity{},
	)
	require.NoError(t, err)

	return db
}
