package services

// Persister schedules an async flush of the database image to device
// storage. Enqueue is called only after a commit.
type Persister interface {
	Enqueue()
}

// StatsInvalidator drops cached statistics after a mutation that changes
// them.
type StatsInvalidator interface {
	Invalidate()
}

// commitHooks is what every mutating service does right after a committed
// transaction. Both hooks are optional so tests can leave them nil.
type commitHooks struct {
	flusher Persister
	cache   StatsInvalidator
}

func (h commitHooks) afterCommit() {
	if h.flusher != nil {
		h.flusher.Enqueue()
	}
	if h.cache != nil {
		h.cache.Invalidate()
	}
}
