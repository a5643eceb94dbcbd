package model

// PruneResult reports how many rows each retention step removed.
type PruneResult struct {
	OrderSnapshots      int64 `json:"order_snapshots"`
	ProductSnapshots    int64 `json:"product_snapshots"`
	Orders              int64 `json:"orders"`
	OrphanSnapshotLines int64 `json:"orphan_snapshot_lines"`
	OrphanJunctionRows  int64 `json:"orphan_junction_rows"`
}
