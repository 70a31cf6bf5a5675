package store

import "time"

// Setting is one key/value display preference.
type Setting struct {
	Key   string
	Value string
}

// SnapshotInfo describes a stored snapshot without its body.
type SnapshotInfo struct {
	Name      string
	Size      int
	UpdatedAt time.Time
}
