package core

import (
	"github.com/mikey-austin/tag_utopia/internal/library"
	"github.com/mikey-austin/tag_utopia/internal/rename"
)

// ScanResult summarizes a library scan for output.
type ScanResult struct {
	Report *library.ScanReport
}

// TrackListResult holds an ordered track listing.
type TrackListResult struct {
	Query  string
	Tracks []*library.Track
}

// TrackShowResult holds one track with its full record.
type TrackShowResult struct {
	Track *library.Track
}

// SavedResult reports a completed tag write.
type SavedResult struct {
	RequestID uint64
	Track     *library.Track
}

// SaveItem reports the outcome for one file in a save batch.
type SaveItem struct {
	Path string
	Err  error
}

// BatchSavedResult reports a completed multi-file tag write.
type BatchSavedResult struct {
	RequestID uint64
	Items     []SaveItem
}

// Saved counts the items written successfully.
func (r BatchSavedResult) Saved() int {
	n := 0
	for _, item := range r.Items {
		if item.Err == nil {
			n++
		}
	}
	return n
}

// Failed counts the items that could not be written.
func (r BatchSavedResult) Failed() int {
	return len(r.Items) - r.Saved()
}

// RenameResult holds a rename batch report.
type RenameResult struct {
	Report *rename.Report
}

// RawResult holds arbitrary data for JSON output.
type RawResult struct {
	Data any
}
